package macro

import (
	"fmt"
	"strconv"
)

// DefaultDelaySeconds is the delay applied after a command unless the
// command overrides it.
const DefaultDelaySeconds = 1.0

// CurrentCommandVersion is the schema version of newly created commands.
const CurrentCommandVersion = 1

// Command is one recorded step of a macro.
type Command struct {
	commandType     CommandType
	controlType     ControlType
	version         int
	name            string
	descriptiveName string
	toolTip         string
	operationName   string
	delaySeconds    float64
	params          []*Parameter
	pointer         *PointerEventRecord
	modified        bool
}

// NewControlCommand creates a command that changes the value of the named
// control. The control type must not be ControlInvalid.
func NewControlCommand(controlType ControlType, name, descriptiveName, toolTip string) (*Command, error) {
	if controlType == ControlInvalid || controlType >= controlTypeCount {
		return nil, fmt.Errorf("control %q has invalid control type: %w", name, ErrInvalidCommand)
	}
	return newCommand(CommandControl, controlType, name, descriptiveName, toolTip), nil
}

// NewPointerCommand creates a command that replays a pointer event on the
// named control. The command takes ownership of rec.
func NewPointerCommand(controlType ControlType, name, descriptiveName, toolTip string, rec *PointerEventRecord) (*Command, error) {
	if rec == nil {
		return nil, fmt.Errorf("pointer command for %q has no pointer event: %w", name, ErrInvalidCommand)
	}
	c := newCommand(CommandPointer, controlType, name, descriptiveName, toolTip)
	c.pointer = rec
	return c, nil
}

// NewCustomCommand creates a custom operation command. Custom operations do
// not target a control, so they have no control type.
func NewCustomCommand(operationName, descriptiveName, toolTip string) (*Command, error) {
	if operationName == "" {
		return nil, fmt.Errorf("custom command has no operation name: %w", ErrInvalidCommand)
	}
	c := newCommand(CommandCustom, ControlInvalid, operationName, descriptiveName, toolTip)
	c.operationName = operationName
	return c, nil
}

func newCommand(ct CommandType, t ControlType, name, descriptive, tip string) *Command {
	return &Command{
		commandType:     ct,
		controlType:     t,
		version:         CurrentCommandVersion,
		name:            name,
		descriptiveName: descriptive,
		toolTip:         tip,
		delaySeconds:    DefaultDelaySeconds,
		modified:        true,
	}
}

// CommandType returns the kind of command.
func (c *Command) CommandType() CommandType { return c.commandType }

// ControlType returns the type of the targeted control.
func (c *Command) ControlType() ControlType { return c.controlType }

// Version returns the command schema version.
func (c *Command) Version() int { return c.version }

// SetVersion sets the command schema version. Used by decoders.
func (c *Command) SetVersion(v int) {
	if c.version != v {
		c.version = v
		c.modified = true
	}
}

// Name returns the name of the targeted control.
func (c *Command) Name() string { return c.name }

// DescriptiveName returns the user-facing name of the control.
func (c *Command) DescriptiveName() string { return c.descriptiveName }

// SetDescriptiveName changes the user-facing name.
func (c *Command) SetDescriptiveName(name string) {
	if c.descriptiveName != name {
		c.descriptiveName = name
		c.modified = true
	}
}

// ToolTip returns the help text of the control.
func (c *Command) ToolTip() string { return c.toolTip }

// SetToolTip changes the help text.
func (c *Command) SetToolTip(tip string) {
	if c.toolTip != tip {
		c.toolTip = tip
		c.modified = true
	}
}

// OperationName returns the custom operation type name, or "" for other
// command types.
func (c *Command) OperationName() string { return c.operationName }

// DelaySeconds returns the delay applied after the command runs.
func (c *Command) DelaySeconds() float64 { return c.delaySeconds }

// SetDelaySeconds changes the delay. Negative values are clamped to zero.
func (c *Command) SetDelaySeconds(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	if c.delaySeconds != seconds {
		c.delaySeconds = seconds
		c.modified = true
	}
}

// Pointer returns the pointer event of a pointer command, or nil.
func (c *Command) Pointer() *PointerEventRecord { return c.pointer }

// AddParameter appends a parameter. Parameter order is significant and is
// fixed by the command's schema.
func (c *Command) AddParameter(p *Parameter) {
	c.params = append(c.params, p)
	c.modified = true
}

// AddNewParameter creates and appends a parameter.
func (c *Command) AddNewParameter(dataType DataType, name string, value Value) (*Parameter, error) {
	p, err := NewParameter(dataType, name, value)
	if err != nil {
		return nil, err
	}
	c.AddParameter(p)
	return p, nil
}

// NumParameters returns the number of parameters.
func (c *Command) NumParameters() int { return len(c.params) }

// Parameter returns the parameter at index.
func (c *Command) Parameter(index int) (*Parameter, error) {
	if index < 0 || index >= len(c.params) {
		return nil, rangeError("parameter", index, len(c.params))
	}
	return c.params[index], nil
}

// Parameters returns the parameters in order. The slice must not be modified.
func (c *Command) Parameters() []*Parameter { return c.params }

// ParameterValue returns the value at index, or nil when there is none.
func (c *Command) ParameterValue(index int) Value {
	if index < 0 || index >= len(c.params) {
		return nil
	}
	return c.params[index].Value()
}

// SetParameterValue replaces the value of the parameter at index.
func (c *Command) SetParameterValue(index int, v Value) error {
	p, err := c.Parameter(index)
	if err != nil {
		return err
	}
	return p.SetValue(v)
}

// IsPointerMoveMatch reports whether c and other are pointer moves that can
// share one trajectory: same button, masks and surface size.
func (c *Command) IsPointerMoveMatch(other *Command) bool {
	if other == nil || c.commandType != CommandPointer || other.commandType != CommandPointer {
		return false
	}
	return c.pointer.SameStream(other.pointer)
}

// Title returns the text shown for the command in editors: the descriptive
// name when set, otherwise a summary derived from the control type and the
// first two parameter values followed by the control name.
func (c *Command) Title() string {
	if c.commandType == CommandPointer && c.pointer != nil {
		return pointerTitle(c.pointer.Kind) + c.name
	}
	if c.descriptiveName != "" {
		return c.descriptiveName
	}
	if c.commandType == CommandCustom {
		return c.operationName
	}

	v1 := c.ParameterValue(0)
	v2 := c.ParameterValue(1)
	var title string
	switch c.controlType {
	case ControlAction, ControlActionCheckable, ControlCheckBox,
		ControlPushButtonCheckable, ControlToolButtonCheckable:
		if AsBool(v1) {
			title = "Turn On"
		} else {
			title = "Turn Off"
		}
	case ControlActionGroup, ControlButtonGroup, ControlComboBox, ControlListWidget,
		ControlMenu, ControlTabBar, ControlTabWidget:
		title = "Select Name " + AsString(v1) + " else  index " + strconv.FormatInt(AsInt(v2), 10)
	case ControlDoubleSpinBox:
		title = "Set to value " + strconv.FormatFloat(AsFloat(v1), 'g', -1, 64)
	case ControlLineEdit:
		title = "Set to text " + AsString(v1)
	case ControlPushButton, ControlRadioButton, ControlToolButton:
		title = "Click Button"
	case ControlSlider:
		title = "Move to " + strconv.FormatInt(AsInt(v1), 10)
	case ControlSpinBox:
		title = "Set to " + strconv.FormatInt(AsInt(v1), 10)
	case ControlDataAction:
		title = "Set to " + AsString(v1)
	default:
		title = "Unknown"
	}
	return title + " " + c.name
}

func pointerTitle(k PointerEventKind) string {
	switch k {
	case PointerPress:
		return "Mouse Press "
	case PointerRelease:
		return "Mouse Release "
	case PointerDoubleClick:
		return "Mouse Double Click "
	default:
		return "Mouse Move "
	}
}

// Copy returns a deep copy of the command.
func (c *Command) Copy() *Command {
	out := *c
	out.params = make([]*Parameter, len(c.params))
	for i, p := range c.params {
		out.params[i] = p.Copy()
	}
	out.pointer = c.pointer.Copy()
	return &out
}

// IsModified returns true if the command or any parameter changed.
func (c *Command) IsModified() bool {
	if c.modified {
		return true
	}
	for _, p := range c.params {
		if p.IsModified() {
			return true
		}
	}
	return false
}

// ClearModified resets the modified flag of the command and its parameters.
func (c *Command) ClearModified() {
	c.modified = false
	for _, p := range c.params {
		p.ClearModified()
	}
}

// String implements fmt.Stringer.
func (c *Command) String() string {
	return fmt.Sprintf("%s %s %q", c.commandType, c.controlType, c.name)
}
