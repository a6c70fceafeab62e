package macro

import "fmt"

// CommandType identifies the kind of a recorded command.
type CommandType uint8

const (
	// CommandControl is a value change on a named control.
	CommandControl CommandType = iota
	// CommandPointer is a pointer event on a pointer-capture surface.
	CommandPointer
	// CommandCustom is a host-defined multi-parameter operation.
	CommandCustom
)

var commandTypeNames = map[CommandType]string{
	CommandControl: "WIDGET",
	CommandPointer: "MOUSE",
	CommandCustom:  "CUSTOM_OPERATION",
}

// String returns the wire name of the command type.
func (t CommandType) String() string {
	if name, ok := commandTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("CommandType(%d)", uint8(t))
}

// ParseCommandType converts a wire name into a CommandType.
func ParseCommandType(name string) (CommandType, bool) {
	for t, n := range commandTypeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// ControlType identifies the kind of control a command targets.
type ControlType uint8

// Control types. The zero value is ControlInvalid.
const (
	ControlInvalid ControlType = iota
	ControlAction
	ControlActionCheckable
	ControlActionGroup
	ControlButtonGroup
	ControlCheckBox
	ControlComboBox
	ControlDoubleSpinBox
	ControlLineEdit
	ControlListWidget
	ControlDataAction
	ControlMenu
	ControlPushButton
	ControlPushButtonCheckable
	ControlRadioButton
	ControlSlider
	ControlSpinBox
	ControlTabBar
	ControlTabWidget
	ControlToolButton
	ControlToolButtonCheckable

	controlTypeCount
)

var controlTypeNames = [controlTypeCount]string{
	ControlInvalid:             "INVALID",
	ControlAction:              "ACTION",
	ControlActionCheckable:     "ACTION_CHECKABLE",
	ControlActionGroup:         "ACTION_GROUP",
	ControlButtonGroup:         "BUTTON_GROUP",
	ControlCheckBox:            "CHECK_BOX",
	ControlComboBox:            "COMBO_BOX",
	ControlDoubleSpinBox:       "DOUBLE_SPIN_BOX",
	ControlLineEdit:            "LINE_EDIT",
	ControlListWidget:          "LIST_WIDGET",
	ControlDataAction:          "MACRO_WIDGET_ACTION",
	ControlMenu:                "MENU",
	ControlPushButton:          "PUSH_BUTTON",
	ControlPushButtonCheckable: "PUSH_BUTTON_CHECKABLE",
	ControlRadioButton:         "RADIO_BUTTON",
	ControlSlider:              "SLIDER",
	ControlSpinBox:             "SPIN_BOX",
	ControlTabBar:              "TAB_BAR",
	ControlTabWidget:           "TAB_WIDGET",
	ControlToolButton:          "TOOL_BUTTON",
	ControlToolButtonCheckable: "TOOL_BUTTON_CHECKABLE",
}

// String returns the wire name of the control type.
func (t ControlType) String() string {
	if t < controlTypeCount {
		return controlTypeNames[t]
	}
	return fmt.Sprintf("ControlType(%d)", uint8(t))
}

// ParseControlType converts a wire name into a ControlType.
func ParseControlType(name string) (ControlType, bool) {
	for i, n := range controlTypeNames {
		if n == name {
			return ControlType(i), true
		}
	}
	return ControlInvalid, false
}

// NumControlTypes is the number of control types including ControlInvalid.
const NumControlTypes = int(controlTypeCount)

// AllControlTypes returns every valid control type, excluding ControlInvalid.
func AllControlTypes() []ControlType {
	types := make([]ControlType, 0, controlTypeCount-1)
	for t := ControlAction; t < controlTypeCount; t++ {
		types = append(types, t)
	}
	return types
}

// DataType identifies the type of a parameter value.
type DataType uint8

// Data types. The zero value is DataInvalid.
const (
	DataInvalid DataType = iota
	DataAxis
	DataBoolean
	DataCustom
	DataFloat
	DataInteger
	DataPointer
	DataNone
	DataString
	DataStringList

	dataTypeCount
)

var dataTypeNames = [dataTypeCount]string{
	DataInvalid:    "INVALID",
	DataAxis:       "AXIS",
	DataBoolean:    "BOOLEAN",
	DataCustom:     "CUSTOM_DATA",
	DataFloat:      "FLOAT",
	DataInteger:    "INTEGER",
	DataPointer:    "MOUSE",
	DataNone:       "NONE",
	DataString:     "STRING",
	DataStringList: "STRING_LIST",
}

// String returns the wire name of the data type.
func (t DataType) String() string {
	if t < dataTypeCount {
		return dataTypeNames[t]
	}
	return fmt.Sprintf("DataType(%d)", uint8(t))
}

// ParseDataType converts a wire name into a DataType.
func ParseDataType(name string) (DataType, bool) {
	for i, n := range dataTypeNames {
		if n == name {
			return DataType(i), true
		}
	}
	return DataInvalid, false
}

// Axis is an enumerated spatial axis.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// String returns the wire name of the axis.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return fmt.Sprintf("Axis(%d)", uint8(a))
	}
}

// ParseAxis converts a wire name into an Axis.
func ParseAxis(name string) (Axis, bool) {
	switch name {
	case "X":
		return AxisX, true
	case "Y":
		return AxisY, true
	case "Z":
		return AxisZ, true
	default:
		return AxisX, false
	}
}

// ShortcutKey is the optional key that launches a macro.
// Valid keys are KeyNone and the letters A through Z.
type ShortcutKey uint8

const (
	// KeyNone means the macro has no shortcut.
	KeyNone ShortcutKey = 0
	// KeyA is the first letter key; KeyA+n is the n-th letter.
	KeyA ShortcutKey = 1
	// KeyZ is the last letter key.
	KeyZ ShortcutKey = 26
)

// String returns the wire name of the key ("Key_None", "Key_A" ...).
func (k ShortcutKey) String() string {
	if k == KeyNone {
		return "Key_None"
	}
	if k >= KeyA && k <= KeyZ {
		return "Key_" + string(rune('A'+k-KeyA))
	}
	return fmt.Sprintf("ShortcutKey(%d)", uint8(k))
}

// Letter returns the letter of the key, or 0 for KeyNone and invalid keys.
func (k ShortcutKey) Letter() rune {
	if k >= KeyA && k <= KeyZ {
		return rune('A' + k - KeyA)
	}
	return 0
}

// ShortcutKeyForLetter returns the key for a letter. Lowercase letters are
// accepted. Returns KeyNone, false for anything else.
func ShortcutKeyForLetter(r rune) (ShortcutKey, bool) {
	if r >= 'a' && r <= 'z' {
		r = r - 'a' + 'A'
	}
	if r < 'A' || r > 'Z' {
		return KeyNone, false
	}
	return KeyA + ShortcutKey(r-'A'), true
}

// ParseShortcutKey converts a wire name into a ShortcutKey.
func ParseShortcutKey(name string) (ShortcutKey, bool) {
	if name == "Key_None" {
		return KeyNone, true
	}
	if len(name) == 5 && name[:4] == "Key_" {
		r := rune(name[4])
		if r >= 'A' && r <= 'Z' {
			return KeyA + ShortcutKey(r-'A'), true
		}
	}
	return KeyNone, false
}

// PointerEventKind identifies a recorded pointer event.
type PointerEventKind uint8

const (
	PointerPress PointerEventKind = iota
	PointerRelease
	PointerDoubleClick
	PointerMove
)

var pointerKindNames = map[PointerEventKind]string{
	PointerPress:       "BUTTON_PRESS",
	PointerRelease:     "BUTTON_RELEASE",
	PointerDoubleClick: "DOUBLE_CLICKED",
	PointerMove:        "MOVE",
}

// String returns the wire name of the pointer event kind.
func (k PointerEventKind) String() string {
	if name, ok := pointerKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("PointerEventKind(%d)", uint8(k))
}

// ParsePointerEventKind converts a wire name into a PointerEventKind.
func ParsePointerEventKind(name string) (PointerEventKind, bool) {
	for k, n := range pointerKindNames {
		if n == name {
			return k, true
		}
	}
	return PointerMove, false
}
