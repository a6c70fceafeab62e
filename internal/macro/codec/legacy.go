package codec

import (
	"encoding/xml"

	"github.com/dshills/uimacro/internal/macro"
)

// legacyCommand reads a command written with the older attribute scheme:
//
//	<MacroCommand Name="x" ObjectClass="CHECK_BOX"
//	    ObjectDataType="BOOLEAN" ObjectValue="true"
//	    ObjectDataTypeTwo="INTEGER" ObjectValueTwo="0"/>
//
// Pointer commands use ObjectClass="MOUSE_USER_EVENT" with a nested
// MouseEventInfo element. Values become the command's first and second
// parameters.
func (r *reader) legacyCommand(se xml.StartElement) (*macro.Command, error) {
	name := get(se, attrName)
	class := get(se, attrLegacyClass)
	if name == "" {
		return nil, r.fail(ErrMissingAttribute, "%s is missing attribute(s): %s", elemCommand, attrName)
	}
	r.warn("%s %q uses the legacy %s attribute scheme", elemCommand, name, attrLegacyClass)

	if class == legacyPointerClassName {
		return r.legacyPointerCommand(name)
	}

	ct, ok := macro.ParseControlType(class)
	if !ok || ct == macro.ControlInvalid {
		return nil, r.fail(ErrInvalidAttribute, "%s is not valid for attribute %s", class, attrLegacyClass)
	}

	dtName := get(se, attrLegacyDataType)
	if dtName == "" {
		return nil, r.fail(ErrMissingAttribute, "%s is missing attribute(s): %s", elemCommand, attrLegacyDataType)
	}
	dt, ok := macro.ParseDataType(dtName)
	if !ok {
		return nil, r.fail(ErrInvalidAttribute, "%s is not valid for attribute %s", dtName, attrLegacyDataType)
	}

	dtTwo := macro.DataNone
	if s := get(se, attrLegacyDataTypeTwo); s != "" {
		if dtTwo, ok = macro.ParseDataType(s); !ok {
			return nil, r.fail(ErrInvalidAttribute, "%s is not valid for attribute %s", s, attrLegacyDataTypeTwo)
		}
	}

	if err := r.skipChildren(); err != nil {
		return nil, err
	}

	cmd, err := macro.NewControlCommand(ct, name, "", "")
	if err != nil {
		return nil, r.fail(ErrInvalidAttribute, "%s %q: %v", elemCommand, name, err)
	}
	if err := r.legacyParameter(cmd, dt, "Value", get(se, attrLegacyValue)); err != nil {
		return nil, err
	}
	if dtTwo != macro.DataNone && dtTwo != macro.DataInvalid {
		if err := r.legacyParameter(cmd, dtTwo, "Value Two", get(se, attrLegacyValueTwo)); err != nil {
			return nil, err
		}
	}
	return cmd, nil
}

func (r *reader) legacyParameter(cmd *macro.Command, dt macro.DataType, name, raw string) error {
	if _, err := cmd.AddNewParameter(dt, name, r.scalar(dt, name, raw)); err != nil {
		return r.fail(ErrInvalidAttribute, "%s %q: %v", elemCommand, cmd.Name(), err)
	}
	return nil
}

func (r *reader) legacyPointerCommand(name string) (*macro.Command, error) {
	var rec *macro.PointerEventRecord
	for {
		tok, err := r.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == elemPointer && rec == nil {
				if rec, err = r.pointer(t); err != nil {
					return nil, err
				}
				continue
			}
			if err := r.unexpected(t); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if rec == nil {
				return nil, r.fail(ErrMissingAttribute, "%s %q of class %s has no %s",
					elemCommand, name, legacyPointerClassName, elemPointer)
			}
			return macro.NewPointerCommand(macro.ControlInvalid, name, "", "", rec)
		}
	}
}

// skipChildren consumes the remainder of the current element, reporting any
// child elements.
func (r *reader) skipChildren() error {
	for {
		tok, err := r.token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := r.unexpected(t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}
