package macro

import "fmt"

// Parameter is one named, typed value attached to a command.
type Parameter struct {
	dataType   DataType
	name       string
	value      Value
	customType string
	modified   bool
}

// NewParameter creates a parameter. The value's variant must match the data
// type; DataNone and DataInvalid accept any value. A nil value is replaced by
// the zero value of the data type.
func NewParameter(dataType DataType, name string, value Value) (*Parameter, error) {
	if value == nil {
		value = ZeroValue(dataType)
	}
	if !valueFits(dataType, value) {
		return nil, fmt.Errorf("parameter %q: %s value for %s: %w",
			name, value.DataType(), dataType, ErrTypeMismatch)
	}
	return &Parameter{
		dataType: dataType,
		name:     name,
		value:    value,
		modified: true,
	}, nil
}

// MustParameter is like NewParameter but panics on a type mismatch.
// Intended for static schema tables.
func MustParameter(dataType DataType, name string, value Value) *Parameter {
	p, err := NewParameter(dataType, name, value)
	if err != nil {
		panic(err)
	}
	return p
}

func valueFits(t DataType, v Value) bool {
	switch t {
	case DataNone, DataInvalid:
		return true
	default:
		return v.DataType() == t
	}
}

// DataType returns the declared data type.
func (p *Parameter) DataType() DataType {
	return p.dataType
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// SetName changes the parameter name.
func (p *Parameter) SetName(name string) {
	if p.name != name {
		p.name = name
		p.modified = true
	}
}

// Value returns the parameter value.
func (p *Parameter) Value() Value {
	return p.value
}

// SetValue replaces the value. Returns ErrTypeMismatch if the variant does
// not match the declared data type.
func (p *Parameter) SetValue(v Value) error {
	if v == nil {
		v = ZeroValue(p.dataType)
	}
	if !valueFits(p.dataType, v) {
		return fmt.Errorf("parameter %q: %s value for %s: %w",
			p.name, v.DataType(), p.dataType, ErrTypeMismatch)
	}
	if !ValuesEqual(p.value, v) {
		p.value = v
		p.modified = true
	}
	return nil
}

// CustomType returns the custom type name, or "" when the parameter has
// ordinary semantics.
func (p *Parameter) CustomType() string {
	return p.customType
}

// SetCustomType sets the custom type name.
func (p *Parameter) SetCustomType(name string) {
	if p.customType != name {
		p.customType = name
		p.modified = true
	}
}

// Copy returns a deep copy of the parameter.
func (p *Parameter) Copy() *Parameter {
	return &Parameter{
		dataType:   p.dataType,
		name:       p.name,
		value:      CopyValue(p.value),
		customType: p.customType,
		modified:   p.modified,
	}
}

// Equal reports whether two parameters hold the same type, name, custom type
// and value. The modified flag is ignored.
func (p *Parameter) Equal(other *Parameter) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.dataType == other.dataType &&
		p.name == other.name &&
		p.customType == other.customType &&
		ValuesEqual(p.value, other.value)
}

// IsModified returns true if the parameter changed since ClearModified.
func (p *Parameter) IsModified() bool {
	return p.modified
}

// ClearModified resets the modified flag.
func (p *Parameter) ClearModified() {
	p.modified = false
}

// ParamSpec describes one slot of a parameter schema.
type ParamSpec struct {
	Name       string
	DataType   DataType
	CustomType string
	Default    Value
}

// NewParameter creates a parameter initialized with the slot's default.
func (s ParamSpec) NewParameter() *Parameter {
	v := ZeroValue(s.DataType)
	if s.Default != nil {
		v = CopyValue(s.Default)
	}
	p := MustParameter(s.DataType, s.Name, v)
	p.customType = s.CustomType
	return p
}

// ParametersFromSchema creates one default parameter per schema slot.
func ParametersFromSchema(specs []ParamSpec) []*Parameter {
	params := make([]*Parameter, len(specs))
	for i, s := range specs {
		params[i] = s.NewParameter()
	}
	return params
}

// ValidateParameters checks that params follow specs positionally: the same
// count, and the same data type at every index.
func ValidateParameters(specs []ParamSpec, params []*Parameter) error {
	if len(specs) != len(params) {
		return fmt.Errorf("expected %d parameters, have %d: %w",
			len(specs), len(params), ErrSchemaMismatch)
	}
	for i, s := range specs {
		p := params[i]
		if p == nil {
			return fmt.Errorf("parameter %d (%s) is missing: %w", i, s.Name, ErrSchemaMismatch)
		}
		if p.DataType() != s.DataType {
			return fmt.Errorf("parameter %d (%s) should be %s but is %s: %w",
				i, s.Name, s.DataType, p.DataType(), ErrSchemaMismatch)
		}
		if s.CustomType != "" && p.CustomType() != s.CustomType {
			return fmt.Errorf("parameter %d (%s) should have custom type %s but has %q: %w",
				i, s.Name, s.CustomType, p.CustomType(), ErrSchemaMismatch)
		}
	}
	return nil
}
