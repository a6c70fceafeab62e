package custom

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/uimacro/internal/macro"
)

// ErrScript is wrapped by every error raised inside a Lua script.
var ErrScript = errors.New("lua script failed")

// LuaOperation is an operation implemented by a Lua script. Each execution
// runs in a fresh, restricted Lua state with these globals:
//
//	params     table of parameter values keyed by parameter name
//	sleep(s)   wait s seconds; returns false when playback was stopped
//	log(msg)   write msg to the macro log
//	stopped()  true when playback was asked to stop
type LuaOperation struct {
	name        string
	description string
	schema      []macro.ParamSpec
	source      string
	chunkName   string
}

// NewLuaOperation creates an operation from script source. The source is
// compiled once here so syntax errors surface at load time.
func NewLuaOperation(name, description string, schema []macro.ParamSpec, source string) (*LuaOperation, error) {
	if name == "" {
		return nil, fmt.Errorf("lua operation has no name: %w", macro.ErrInvalidCommand)
	}
	op := &LuaOperation{
		name:        name,
		description: description,
		schema:      schema,
		source:      source,
		chunkName:   name,
	}
	L := newLuaState()
	defer L.Close()
	if _, err := op.load(L); err != nil {
		return nil, fmt.Errorf("operation %s: %w: %v", name, ErrScript, err)
	}
	return op, nil
}

// Name implements Operation.
func (o *LuaOperation) Name() string { return o.name }

// Description implements Operation.
func (o *LuaOperation) Description() string { return o.description }

// Schema implements Operation.
func (o *LuaOperation) Schema() []macro.ParamSpec { return o.schema }

// Execute implements Operation.
func (o *LuaOperation) Execute(ctx context.Context, env *Env, params []*macro.Parameter) (err error) {
	L := newLuaState()
	defer L.Close()
	L.SetContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("operation %s: %w: %v", o.name, ErrScript, r)
		}
	}()

	L.SetGlobal("params", paramsTable(L, params))
	o.installHost(L, ctx, env)

	fn, err := o.load(L)
	if err != nil {
		return fmt.Errorf("operation %s: %w: %v", o.name, ErrScript, err)
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("operation %s: %w: %v", o.name, ErrScript, err)
	}
	return nil
}

func (o *LuaOperation) load(L *lua.LState) (*lua.LFunction, error) {
	return L.Load(strings.NewReader(o.source), o.chunkName)
}

func (o *LuaOperation) installHost(L *lua.LState, ctx context.Context, env *Env) {
	log := env.logger().WithField("operation", o.name)

	L.SetGlobal("log", L.NewFunction(func(L *lua.LState) int {
		log.Info("%s", L.CheckString(1))
		return 0
	}))
	L.SetGlobal("stopped", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(env.stopped()))
		return 1
	}))
	L.SetGlobal("sleep", L.NewFunction(func(L *lua.LState) int {
		secs := float64(L.CheckNumber(1))
		if env.stopped() {
			L.Push(lua.LFalse)
			return 1
		}
		if err := env.sleep(ctx, seconds(secs)); err != nil {
			L.RaiseError("sleep interrupted: %v", err)
			return 0
		}
		L.Push(lua.LBool(!env.stopped()))
		return 1
	}))
}

// newLuaState opens only the libraries a script needs for arithmetic and
// string handling.
func newLuaState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

func paramsTable(L *lua.LState, params []*macro.Parameter) *lua.LTable {
	t := L.NewTable()
	for _, p := range params {
		t.RawSetString(p.Name(), toLua(L, p.Value()))
	}
	return t
}

func toLua(L *lua.LState, v macro.Value) lua.LValue {
	switch v := v.(type) {
	case macro.Bool:
		return lua.LBool(v)
	case macro.Int:
		return lua.LNumber(v)
	case macro.Float:
		return lua.LNumber(v)
	case macro.String:
		return lua.LString(v)
	case macro.Custom:
		return lua.LString(v)
	case macro.AxisValue:
		return lua.LString(macro.Axis(v).String())
	case macro.StringList:
		t := L.NewTable()
		for _, s := range v {
			t.Append(lua.LString(s))
		}
		return t
	default:
		return lua.LNil
	}
}
