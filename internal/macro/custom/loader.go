package custom

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dshills/uimacro/internal/macro"
)

// ScriptExtension is the file extension of Lua operation scripts.
const ScriptExtension = ".lua"

// Header directives are Lua comments at the top of a script.
const (
	directiveOperation   = "operation:"
	directiveDescription = "description:"
	directiveParam       = "param:"
)

// ParseScript reads the header of a Lua operation script. The operation
// name defaults to fallbackName.
//
// Header lines have the forms:
//
//	-- operation: NAME
//	-- description: free text
//	-- param: NAME DATA_TYPE [CUSTOM_TYPE]
//
// The header ends at the first line that is not a comment.
func ParseScript(fallbackName, source string) (*LuaOperation, error) {
	name := fallbackName
	var description string
	var schema []macro.ParamSpec

	sc := bufio.NewScanner(strings.NewReader(source))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if !strings.HasPrefix(text, "--") {
			break
		}
		text = strings.TrimSpace(strings.TrimPrefix(text, "--"))
		switch {
		case strings.HasPrefix(text, directiveOperation):
			name = strings.TrimSpace(strings.TrimPrefix(text, directiveOperation))
		case strings.HasPrefix(text, directiveDescription):
			description = strings.TrimSpace(strings.TrimPrefix(text, directiveDescription))
		case strings.HasPrefix(text, directiveParam):
			spec, err := parseParam(strings.TrimPrefix(text, directiveParam))
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", fallbackName, line, err)
			}
			schema = append(schema, spec)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if description == "" {
		description = name
	}
	return NewLuaOperation(name, description, schema, source)
}

func parseParam(s string) (macro.ParamSpec, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 || len(fields) > 3 {
		return macro.ParamSpec{}, fmt.Errorf("param needs NAME DATA_TYPE [CUSTOM_TYPE], have %q", strings.TrimSpace(s))
	}
	dt, ok := macro.ParseDataType(fields[1])
	if !ok || dt == macro.DataInvalid || dt == macro.DataPointer {
		return macro.ParamSpec{}, fmt.Errorf("param %s has unsupported data type %q", fields[0], fields[1])
	}
	spec := macro.ParamSpec{
		Name:     fields[0],
		DataType: dt,
		Default:  macro.ZeroValue(dt),
	}
	if len(fields) == 3 {
		spec.CustomType = fields[2]
	}
	return spec, nil
}

// LoadDir parses every script in dir. Files are read in name order.
func LoadDir(dir string) ([]*LuaOperation, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ScriptExtension) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	ops := make([]*LuaOperation, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		base := strings.ToUpper(strings.TrimSuffix(name, filepath.Ext(name)))
		op, err := ParseScript(base, string(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		op.chunkName = name
		ops = append(ops, op)
	}
	return ops, nil
}

// RegisterDir loads every script in dir into r.
func (r *Registry) RegisterDir(dir string) ([]string, error) {
	ops, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ops))
	for _, op := range ops {
		if err := r.Register(op); err != nil {
			return names, err
		}
		names = append(names, op.Name())
	}
	return names, nil
}
