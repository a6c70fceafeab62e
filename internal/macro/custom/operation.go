package custom

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dshills/uimacro/internal/logging"
	"github.com/dshills/uimacro/internal/macro"
)

// Registry errors.
var (
	ErrDuplicateOperation = errors.New("custom operation already registered")
	ErrUnknownOperation   = errors.New("unknown custom operation")
	ErrNotCustom          = errors.New("command is not a custom operation")
	ErrStopped            = errors.New("custom operation stopped")
)

// Env is what a running operation may use from its host.
type Env struct {
	Logger *logging.Logger

	// Stopped reports whether playback was asked to stop. May be nil.
	Stopped func() bool

	// Sleep waits for d. May be nil, in which case a timer is used.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (e *Env) logger() *logging.Logger {
	if e == nil {
		return logging.Nop()
	}
	return logging.OrNop(e.Logger)
}

func (e *Env) stopped() bool {
	return e != nil && e.Stopped != nil && e.Stopped()
}

func (e *Env) sleep(ctx context.Context, d time.Duration) error {
	if e != nil && e.Sleep != nil {
		return e.Sleep(ctx, d)
	}
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Operation is a custom macro operation.
type Operation interface {
	// Name is the operation type name stored in commands.
	Name() string
	Description() string
	Schema() []macro.ParamSpec
	// Execute runs the operation. params follow Schema.
	Execute(ctx context.Context, env *Env, params []*macro.Parameter) error
}

// Registry holds the available custom operations.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Operation
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]Operation)}
}

// NewDefaultRegistry creates a registry holding the built-in operations.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(Delay{})
	return r
}

// Register adds an operation.
func (r *Registry) Register(op Operation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := op.Name()
	if _, exists := r.ops[name]; exists {
		return fmt.Errorf("%q: %w", name, ErrDuplicateOperation)
	}
	r.ops[name] = op
	return nil
}

// Lookup returns the named operation.
func (r *Registry) Lookup(name string) (Operation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[name]
	return op, ok
}

// Names returns the registered operation names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewCommand creates a command for the named operation with every
// parameter set to its default.
func (r *Registry) NewCommand(name string) (*macro.Command, error) {
	op, ok := r.Lookup(name)
	if !ok {
		return nil, unknown(name)
	}
	cmd, err := macro.NewCustomCommand(op.Name(), op.Description(), op.Description())
	if err != nil {
		return nil, err
	}
	for _, p := range macro.ParametersFromSchema(op.Schema()) {
		cmd.AddParameter(p)
	}
	return cmd, nil
}

// Validate checks that cmd names a registered operation and that its
// parameters follow the operation's schema.
func (r *Registry) Validate(cmd *macro.Command) (Operation, error) {
	if cmd.CommandType() != macro.CommandCustom {
		return nil, fmt.Errorf("%s: %w", cmd, ErrNotCustom)
	}
	op, ok := r.Lookup(cmd.OperationName())
	if !ok {
		return nil, unknown(cmd.OperationName())
	}
	if err := macro.ValidateParameters(op.Schema(), cmd.Parameters()); err != nil {
		return nil, fmt.Errorf("custom operation %s: %w", op.Name(), err)
	}
	return op, nil
}

// Execute validates and runs a custom command.
func (r *Registry) Execute(ctx context.Context, env *Env, cmd *macro.Command) error {
	op, err := r.Validate(cmd)
	if err != nil {
		return err
	}
	return op.Execute(ctx, env, cmd.Parameters())
}

func unknown(name string) error {
	return fmt.Errorf("%q is not a valid name for a custom macro command: %w", name, ErrUnknownOperation)
}
