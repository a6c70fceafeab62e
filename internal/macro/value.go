package macro

import (
	"strconv"
	"strings"
)

// Value is a parameter value. It is a closed set of variants; use a type
// switch over the concrete types defined in this file.
type Value interface {
	// DataType returns the data type the variant represents.
	DataType() DataType
	// String returns a human readable form of the value.
	String() string

	isValue()
}

// Bool is a boolean value.
type Bool bool

// Int is an integer value.
type Int int64

// Float is a floating point value.
type Float float64

// String is a text value.
type String string

// StringList is an ordered list of strings.
type StringList []string

// AxisValue is an enumerated axis value.
type AxisValue Axis

// Pointer wraps a pointer-event record.
type Pointer struct {
	Record *PointerEventRecord
}

// Custom is an opaque value whose meaning is defined by the parameter's
// custom type name.
type Custom string

// None is the empty value of parameters that carry no data.
type None struct{}

func (Bool) DataType() DataType       { return DataBoolean }
func (Int) DataType() DataType        { return DataInteger }
func (Float) DataType() DataType      { return DataFloat }
func (String) DataType() DataType     { return DataString }
func (StringList) DataType() DataType { return DataStringList }
func (AxisValue) DataType() DataType  { return DataAxis }
func (Pointer) DataType() DataType    { return DataPointer }
func (Custom) DataType() DataType     { return DataCustom }
func (None) DataType() DataType       { return DataNone }

func (v Bool) String() string {
	if v {
		return "true"
	}
	return "false"
}

func (v Int) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v Float) String() string  { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v String) String() string { return string(v) }

func (v StringList) String() string { return strings.Join(v, ", ") }
func (v AxisValue) String() string  { return Axis(v).String() }

func (v Pointer) String() string {
	if v.Record == nil {
		return ""
	}
	return v.Record.String()
}

func (v Custom) String() string { return string(v) }
func (None) String() string     { return "" }

func (Bool) isValue()       {}
func (Int) isValue()        {}
func (Float) isValue()      {}
func (String) isValue()     {}
func (StringList) isValue() {}
func (AxisValue) isValue()  {}
func (Pointer) isValue()    {}
func (Custom) isValue()     {}
func (None) isValue()       {}

// ZeroValue returns the zero value of the variant used for a data type.
// DataInvalid and DataNone both map to None.
func ZeroValue(t DataType) Value {
	switch t {
	case DataAxis:
		return AxisValue(AxisX)
	case DataBoolean:
		return Bool(false)
	case DataCustom:
		return Custom("")
	case DataFloat:
		return Float(0)
	case DataInteger:
		return Int(0)
	case DataPointer:
		return Pointer{}
	case DataString:
		return String("")
	case DataStringList:
		return StringList(nil)
	default:
		return None{}
	}
}

// CopyValue returns a deep copy of v. Variants holding references
// (StringList, Pointer) are duplicated.
func CopyValue(v Value) Value {
	switch val := v.(type) {
	case StringList:
		if val == nil {
			return StringList(nil)
		}
		out := make(StringList, len(val))
		copy(out, val)
		return out
	case Pointer:
		if val.Record == nil {
			return Pointer{}
		}
		return Pointer{Record: val.Record.Copy()}
	case nil:
		return None{}
	default:
		return v
	}
}

// ValuesEqual reports whether two values hold the same variant and data.
func ValuesEqual(a, b Value) bool {
	switch va := a.(type) {
	case StringList:
		vb, ok := b.(StringList)
		if !ok || len(va) != len(vb) {
			return false
		}
		for i := range va {
			if va[i] != vb[i] {
				return false
			}
		}
		return true
	case Pointer:
		vb, ok := b.(Pointer)
		if !ok {
			return false
		}
		if va.Record == nil || vb.Record == nil {
			return va.Record == vb.Record
		}
		return va.Record.Equal(vb.Record)
	default:
		return a == b
	}
}

// AsBool returns the value as a bool. Integers are true when non-zero.
func AsBool(v Value) bool {
	switch val := v.(type) {
	case Bool:
		return bool(val)
	case Int:
		return val != 0
	case String:
		return val == "true"
	default:
		return false
	}
}

// AsInt returns the value as an integer. Floats are truncated and strings
// parsed; anything else yields 0.
func AsInt(v Value) int64 {
	switch val := v.(type) {
	case Int:
		return int64(val)
	case Float:
		return int64(val)
	case Bool:
		if val {
			return 1
		}
		return 0
	case String:
		n, _ := strconv.ParseInt(string(val), 10, 64)
		return n
	default:
		return 0
	}
}

// AsFloat returns the value as a float64.
func AsFloat(v Value) float64 {
	switch val := v.(type) {
	case Float:
		return float64(val)
	case Int:
		return float64(val)
	case String:
		f, _ := strconv.ParseFloat(string(val), 64)
		return f
	default:
		return 0
	}
}

// AsString returns the textual form of the value.
func AsString(v Value) string {
	if v == nil {
		return ""
	}
	return v.String()
}
