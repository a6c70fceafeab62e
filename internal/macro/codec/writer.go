package codec

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/dshills/uimacro/internal/macro"
)

// Encode returns the XML form of g using the current version. The output for
// an unchanged group is byte-for-byte stable.
func Encode(g *macro.Group) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteTo(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo writes the XML form of g to w.
func WriteTo(w io.Writer, g *macro.Group) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")

	wr := &writer{enc: enc}
	wr.group(g)
	if wr.err != nil {
		return wr.err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// writer emits tokens and keeps the first error; later calls are no-ops.
type writer struct {
	enc *xml.Encoder
	err error
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func (w *writer) start(name string, attrs ...xml.Attr) {
	if w.err != nil {
		return
	}
	w.err = w.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs})
}

func (w *writer) end(name string) {
	if w.err != nil {
		return
	}
	w.err = w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}})
}

func (w *writer) text(name, s string) {
	w.start(name)
	if w.err == nil && s != "" {
		w.err = w.enc.EncodeToken(xml.CharData(s))
	}
	w.end(name)
}

func (w *writer) group(g *macro.Group) {
	w.start(elemGroup,
		attr(attrName, g.Name()),
		attr(attrID, g.ID()),
		attr(attrVersion, CurrentVersion))
	for _, m := range g.Macros() {
		w.macro(m)
	}
	w.end(elemGroup)
}

func (w *writer) macro(m *macro.Macro) {
	w.start(elemMacro,
		attr(attrName, m.Name()),
		attr(attrShortcut, m.Shortcut().String()),
		attr(attrID, m.ID()))
	w.text(elemDescription, m.Description())
	for _, c := range m.Commands() {
		w.command(c)
	}
	w.end(elemMacro)
}

func (w *writer) command(c *macro.Command) {
	attrs := []xml.Attr{
		attr(attrName, c.Name()),
		attr(attrCommandType, c.CommandType().String()),
		attr(attrControlType, c.ControlType().String()),
		attr(attrVersion, strconv.Itoa(c.Version())),
		attr(attrDescriptiveName, c.DescriptiveName()),
		attr(attrDelay, strconv.FormatFloat(c.DelaySeconds(), 'f', 2, 64)),
	}
	if c.CommandType() == macro.CommandCustom {
		attrs = append(attrs, attr(attrOperation, c.OperationName()))
	}
	w.start(elemCommand, attrs...)
	w.text(elemToolTip, c.ToolTip())
	if rec := c.Pointer(); rec != nil {
		w.pointer(rec)
	}
	for _, p := range c.Parameters() {
		w.parameter(p)
	}
	w.end(elemCommand)
}

func (w *writer) parameter(p *macro.Parameter) {
	attrs := []xml.Attr{
		attr(attrDataType, p.DataType().String()),
		attr(attrName, p.Name()),
	}
	if p.CustomType() != "" {
		attrs = append(attrs, attr(attrCustomType, p.CustomType()))
	}

	switch v := p.Value().(type) {
	case macro.StringList:
		w.start(elemParameter, attrs...)
		for _, item := range v {
			w.text(elemListItem, item)
		}
		w.end(elemParameter)
	case macro.Pointer:
		w.start(elemParameter, attrs...)
		if v.Record != nil {
			w.pointer(v.Record)
		}
		w.end(elemParameter)
	default:
		attrs = append(attrs, attr(attrValue, formatValue(v)))
		w.start(elemParameter, attrs...)
		w.end(elemParameter)
	}
}

func (w *writer) pointer(rec *macro.PointerEventRecord) {
	w.start(elemPointer,
		attr(attrPointerKind, rec.Kind.String()),
		attr(attrButton, strconv.FormatUint(uint64(rec.Button), 10)),
		attr(attrButtonMask, strconv.FormatUint(uint64(rec.ButtonMask), 10)),
		attr(attrModifierMask, strconv.FormatUint(uint64(rec.ModifierMask), 10)),
		attr(attrWidth, strconv.Itoa(rec.Width)),
		attr(attrHeight, strconv.Itoa(rec.Height)))
	if w.err == nil && len(rec.Points) > 0 {
		w.err = w.enc.EncodeToken(xml.CharData(formatTrajectory(rec.Points)))
	}
	w.end(elemPointer)
}

// formatValue renders scalar values. Numbers never depend on locale.
func formatValue(v macro.Value) string {
	switch val := v.(type) {
	case macro.Bool:
		if val {
			return valueTrue
		}
		return valueFalse
	case macro.Int:
		return strconv.FormatInt(int64(val), 10)
	case macro.Float:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case macro.String:
		return string(val)
	case macro.Custom:
		return string(val)
	case macro.AxisValue:
		return macro.Axis(val).String()
	case macro.None, nil:
		return ""
	default:
		return v.String()
	}
}

func formatTrajectory(points []macro.Point) string {
	var b strings.Builder
	for i, p := range points {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(p.X))
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(p.Y))
	}
	return b.String()
}
