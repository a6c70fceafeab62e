package codec

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dshills/uimacro/internal/macro"
)

// Decode replaces the contents of g with the group encoded in data.
//
// Recoverable problems are returned as warnings alongside a nil error. On a
// fatal problem the error is a *DecodeError and g is left empty. On success
// g is marked unmodified.
func Decode(data []byte, g *macro.Group) (Warnings, error) {
	g.Clear()
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &DecodeError{
			Message: "String that should contain XML is empty.",
			Err:     ErrEmptyInput,
		}
	}
	return decode(bytes.NewReader(data), g)
}

// ReadFrom decodes a group from r. See Decode.
func ReadFrom(r io.Reader, g *macro.Group) (Warnings, error) {
	g.Clear()
	return decode(r, g)
}

func decode(src io.Reader, g *macro.Group) (Warnings, error) {
	r := &reader{dec: xml.NewDecoder(src)}
	if err := r.document(g); err != nil {
		g.Clear()
		return r.warnings, err
	}
	g.ClearModified()
	return r.warnings, nil
}

type reader struct {
	dec          *xml.Decoder
	warnings     Warnings
	missingNames int
}

func (r *reader) warn(format string, args ...any) {
	line, col := r.dec.InputPos()
	r.warnings = append(r.warnings, Warning{
		Line:    line,
		Column:  col,
		Message: fmt.Sprintf(format, args...),
	})
}

func (r *reader) fail(kind error, format string, args ...any) *DecodeError {
	line, col := r.dec.InputPos()
	return &DecodeError{
		Line:    line,
		Column:  col,
		Message: fmt.Sprintf(format, args...),
		Err:     kind,
	}
}

// token returns the next token. Reaching the end of input here is always an
// error because callers are inside an open element.
func (r *reader) token() (xml.Token, error) {
	tok, err := r.dec.Token()
	if err == nil {
		return tok, nil
	}
	return nil, r.tokenError(err)
}

func (r *reader) tokenError(err error) error {
	var syn *xml.SyntaxError
	switch {
	case errors.Is(err, io.EOF):
		return r.fail(ErrMalformed, "unexpected end of document")
	case errors.As(err, &syn):
		return &DecodeError{Line: syn.Line, Message: syn.Msg, Err: ErrMalformed}
	default:
		return &DecodeError{Message: err.Error(), Err: ErrMalformed}
	}
}

// unexpected records a warning for an unknown element and skips it.
func (r *reader) unexpected(se xml.StartElement) error {
	r.warn("Unexpected element=%s", se.Name.Local)
	if err := r.dec.Skip(); err != nil {
		return r.tokenError(err)
	}
	return nil
}

func get(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (r *reader) document(g *macro.Group) error {
	for {
		tok, err := r.dec.Token()
		if errors.Is(err, io.EOF) {
			return r.fail(ErrEmptyInput, "No XML elements found")
		}
		if err != nil {
			return r.tokenError(err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			return r.group(se, g)
		}
	}
}

func (r *reader) group(se xml.StartElement, g *macro.Group) error {
	if se.Name.Local != elemGroup {
		return r.fail(ErrMalformed, "Element should be %q but is %q while reading %s",
			elemGroup, se.Name.Local, elemGroup)
	}

	version := get(se, attrVersion)
	switch version {
	case "":
		return r.fail(ErrMissingVersion, "%s is missing from element %s", attrVersion, elemGroup)
	case "1":
		id := get(se, attrID)
		if id == "" {
			r.warn("%s is missing attribute or value is empty: %s", elemGroup, attrID)
			id = macro.NewIdentifier()
		}
		g.SetName(get(se, attrName))
		g.SetID(id)
		return r.versionOne(g)
	default:
		e := r.fail(ErrUnsupportedVersion, "%s=%s is not supported by %s.  Check for software update.",
			attrVersion, version, elemGroup)
		e.Version = version
		return e
	}
}

func (r *reader) versionOne(g *macro.Group) error {
	for {
		tok, err := r.token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != elemMacro {
				if err := r.unexpected(t); err != nil {
					return err
				}
				continue
			}
			m, err := r.macro(t)
			if err != nil {
				return err
			}
			g.Append(m)
		case xml.EndElement:
			return nil
		}
	}
}

func (r *reader) macro(se xml.StartElement) (*macro.Macro, error) {
	name := get(se, attrName)
	if name == "" {
		r.warn("%s is missing attribute or value is empty: %s", elemMacro, attrName)
		r.missingNames++
		name = "Missing Name_" + strconv.Itoa(r.missingNames)
	}

	shortcut := macro.KeyNone
	if s := get(se, attrShortcut); s == "" {
		r.warn("%s is missing attribute or value is empty: %s", elemMacro, attrShortcut)
	} else if k, ok := macro.ParseShortcutKey(s); ok {
		shortcut = k
	} else {
		r.warn("%s attribute %s has invalid value %s", elemMacro, attrShortcut, s)
	}

	id := get(se, attrID)
	if id == "" {
		r.warn("%s is missing attribute or value is empty: %s", elemMacro, attrID)
		id = macro.NewIdentifier()
	}

	m := macro.New(name)
	m.SetID(id)
	m.SetShortcut(shortcut)

	for {
		tok, err := r.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case elemCommand:
				cmd, err := r.command(t)
				if err != nil {
					return nil, err
				}
				m.Append(cmd)
			case elemDescription:
				text, err := r.text()
				if err != nil {
					return nil, err
				}
				m.SetDescription(text)
			default:
				if err := r.unexpected(t); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			return m, nil
		}
	}
}

// text reads character data up to the end of the current element. Nested
// elements are reported and skipped.
func (r *reader) text() (string, error) {
	var b strings.Builder
	for {
		tok, err := r.token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			if err := r.unexpected(t); err != nil {
				return "", err
			}
		case xml.EndElement:
			return b.String(), nil
		}
	}
}

type commandAttrs struct {
	commandType macro.CommandType
	controlType macro.ControlType
	name        string
	descriptive string
	operation   string
	version     int
	delay       float64
}

func (r *reader) commandAttributes(se xml.StartElement) (commandAttrs, error) {
	var ca commandAttrs

	var missing []string
	ctName := get(se, attrCommandType)
	if ctName == "" {
		missing = append(missing, attrCommandType)
	}
	wtName := get(se, attrControlType)
	if wtName == "" {
		missing = append(missing, attrControlType)
	}
	if len(missing) > 0 {
		return ca, r.fail(ErrMissingAttribute, "%s is missing attribute(s): %s",
			elemCommand, strings.Join(missing, " "))
	}

	var ok bool
	if ca.commandType, ok = macro.ParseCommandType(ctName); !ok {
		return ca, r.fail(ErrInvalidAttribute, "%s is not valid for attribute %s", ctName, attrCommandType)
	}
	if ca.controlType, ok = macro.ParseControlType(wtName); !ok {
		return ca, r.fail(ErrInvalidAttribute, "%s is not valid for attribute %s", wtName, attrControlType)
	}

	ca.name = get(se, attrName)
	ca.descriptive = get(se, attrDescriptiveName)
	ca.operation = get(se, attrOperation)

	ca.version = macro.CurrentCommandVersion
	if v := get(se, attrVersion); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			r.warn("%s attribute %s has invalid value %s", elemCommand, attrVersion, v)
		} else {
			ca.version = n
		}
	}

	ca.delay = macro.DefaultDelaySeconds
	if d := get(se, attrDelay); d == "" {
		r.warn("%s is missing attribute or value is empty: %s", elemCommand, attrDelay)
	} else if f, err := strconv.ParseFloat(d, 64); err != nil {
		r.warn("%s attribute %s has invalid value %s", elemCommand, attrDelay, d)
	} else {
		ca.delay = f
	}
	return ca, nil
}

func (r *reader) command(se xml.StartElement) (*macro.Command, error) {
	if get(se, attrCommandType) == "" && get(se, attrLegacyClass) != "" {
		return r.legacyCommand(se)
	}

	ca, err := r.commandAttributes(se)
	if err != nil {
		return nil, err
	}

	var (
		toolTip string
		rec     *macro.PointerEventRecord
		params  []*macro.Parameter
	)
	for done := false; !done; {
		tok, err := r.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case elemToolTip:
				if toolTip, err = r.text(); err != nil {
					return nil, err
				}
			case elemPointer:
				if rec, err = r.pointer(t); err != nil {
					return nil, err
				}
			case elemParameter:
				p, err := r.parameter(t)
				if err != nil {
					return nil, err
				}
				params = append(params, p)
			default:
				if err := r.unexpected(t); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			done = true
		}
	}

	var cmd *macro.Command
	switch ca.commandType {
	case macro.CommandControl, macro.CommandPointer:
		if ca.name == "" {
			return nil, r.fail(ErrMissingAttribute, "%s is missing attribute(s): %s", elemCommand, attrName)
		}
		if ca.commandType == macro.CommandControl {
			cmd, err = macro.NewControlCommand(ca.controlType, ca.name, ca.descriptive, toolTip)
		} else {
			if rec == nil {
				return nil, r.fail(ErrMissingAttribute, "%s %q of type %s has no %s",
					elemCommand, ca.name, ca.commandType, elemPointer)
			}
			cmd, err = macro.NewPointerCommand(ca.controlType, ca.name, ca.descriptive, toolTip, rec)
		}
	case macro.CommandCustom:
		if ca.operation == "" {
			return nil, r.fail(ErrMissingAttribute, "%s is missing attribute(s): %s", elemCommand, attrOperation)
		}
		cmd, err = macro.NewCustomCommand(ca.operation, ca.descriptive, toolTip)
	}
	if err != nil {
		return nil, r.fail(ErrInvalidAttribute, "%s %q: %v", elemCommand, ca.name, err)
	}

	cmd.SetVersion(ca.version)
	cmd.SetDelaySeconds(ca.delay)
	for _, p := range params {
		cmd.AddParameter(p)
	}
	return cmd, nil
}

func (r *reader) parameter(se xml.StartElement) (*macro.Parameter, error) {
	dtName := get(se, attrDataType)
	if dtName == "" {
		return nil, r.fail(ErrMissingAttribute, "%s is missing attribute(s): %s", elemParameter, attrDataType)
	}
	dt, ok := macro.ParseDataType(dtName)
	if !ok {
		return nil, r.fail(ErrInvalidAttribute, "%s is not valid for attribute %s", dtName, attrDataType)
	}
	name := get(se, attrName)

	value := r.scalar(dt, name, get(se, attrValue))
	var items []string
	for done := false; !done; {
		tok, err := r.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == elemListItem && dt == macro.DataStringList:
				s, err := r.text()
				if err != nil {
					return nil, err
				}
				items = append(items, s)
			case t.Name.Local == elemPointer && dt == macro.DataPointer:
				rec, err := r.pointer(t)
				if err != nil {
					return nil, err
				}
				value = macro.Pointer{Record: rec}
			default:
				if err := r.unexpected(t); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			done = true
		}
	}
	if dt == macro.DataStringList {
		value = macro.StringList(items)
	}

	p, err := macro.NewParameter(dt, name, value)
	if err != nil {
		return nil, r.fail(ErrInvalidAttribute, "%s %q: %v", elemParameter, name, err)
	}
	p.SetCustomType(get(se, attrCustomType))
	return p, nil
}

// scalar converts an attribute value for data types stored inline. Values
// that do not parse fall back to the zero value with a warning.
func (r *reader) scalar(dt macro.DataType, name, raw string) macro.Value {
	switch dt {
	case macro.DataBoolean:
		if raw != valueTrue && raw != valueFalse {
			r.warn("%s %q has invalid %s value %q", elemParameter, name, dt, raw)
		}
		return macro.Bool(raw == valueTrue)
	case macro.DataInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			r.warn("%s %q has invalid %s value %q", elemParameter, name, dt, raw)
		}
		return macro.Int(n)
	case macro.DataFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			r.warn("%s %q has invalid %s value %q", elemParameter, name, dt, raw)
			f = 0
		}
		return macro.Float(f)
	case macro.DataString:
		return macro.String(raw)
	case macro.DataCustom:
		return macro.Custom(raw)
	case macro.DataAxis:
		a, ok := macro.ParseAxis(raw)
		if !ok {
			r.warn("%s %q has invalid %s value %q", elemParameter, name, dt, raw)
		}
		return macro.AxisValue(a)
	default:
		return macro.ZeroValue(dt)
	}
}

var requiredPointerAttrs = []string{
	attrPointerKind, attrButton, attrButtonMask, attrModifierMask, attrWidth, attrHeight,
}

func (r *reader) pointer(se xml.StartElement) (*macro.PointerEventRecord, error) {
	var missing []string
	for _, name := range requiredPointerAttrs {
		if get(se, name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, r.fail(ErrMissingAttribute, "%s is missing required attribute(s): %s",
			elemPointer, strings.Join(missing, " "))
	}

	kindName := get(se, attrPointerKind)
	kind, ok := macro.ParsePointerEventKind(kindName)
	if !ok {
		return nil, r.fail(ErrInvalidAttribute, "%s is not valid for attribute %s", kindName, attrPointerKind)
	}

	var nums [5]uint64
	for i, name := range requiredPointerAttrs[1:] {
		n, err := strconv.ParseUint(get(se, name), 10, 32)
		if err != nil {
			return nil, r.fail(ErrInvalidAttribute, "%s attribute %s has invalid value %s",
				elemPointer, name, get(se, name))
		}
		nums[i] = n
	}
	rec := macro.NewPointerEventRecord(kind,
		uint32(nums[0]), uint32(nums[1]), uint32(nums[2]), int(nums[3]), int(nums[4]))

	if xs, ys := get(se, attrLocalX), get(se, attrLocalY); xs != "" && ys != "" {
		x, errX := strconv.Atoi(xs)
		y, errY := strconv.Atoi(ys)
		if errX != nil || errY != nil {
			return nil, r.fail(ErrInvalidAttribute, "%s has invalid %s/%s %s,%s",
				elemPointer, attrLocalX, attrLocalY, xs, ys)
		}
		rec.AddPoint(x, y)
	}

	text, err := r.text()
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(text)
	if len(fields)%2 != 0 {
		r.warn("%s trajectory has an unpaired coordinate", elemPointer)
		fields = fields[:len(fields)-1]
	}
	for i := 0; i < len(fields); i += 2 {
		x, errX := strconv.Atoi(fields[i])
		y, errY := strconv.Atoi(fields[i+1])
		if errX != nil || errY != nil {
			return nil, r.fail(ErrInvalidAttribute, "%s trajectory has invalid coordinate %s %s",
				elemPointer, fields[i], fields[i+1])
		}
		rec.AddPoint(x, y)
	}
	return rec, nil
}
