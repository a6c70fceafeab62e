package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/dshills/uimacro/internal/control"
	"github.com/dshills/uimacro/internal/macro"
	"github.com/dshills/uimacro/internal/macro/codec"
	"github.com/dshills/uimacro/internal/macro/custom"
	"github.com/dshills/uimacro/internal/store"
)

func (c *cli) check(_ context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(c.stderr, "Error: check needs at least one file")
		return 2
	}
	reg, err := c.registry()
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}

	code := 0
	for _, path := range args {
		g := macro.NewGroup("")
		ws, err := store.LoadFile(path, g, nil)
		for _, w := range ws {
			fmt.Fprintf(c.stdout, "%s: warning: %s\n", path, w)
		}
		if err != nil {
			fmt.Fprintf(c.stdout, "%s: error: %v\n", path, err)
			code = 1
			continue
		}
		problems := schemaProblems(g, reg)
		for _, p := range problems {
			fmt.Fprintf(c.stdout, "%s: %s\n", path, p)
		}
		if len(problems) > 0 {
			code = 1
			continue
		}
		fmt.Fprintf(c.stdout, "%s: ok (%d macros)\n", path, g.Len())
	}
	return code
}

// schemaProblems lists commands whose parameters do not match the schema of
// their control type or custom operation.
func schemaProblems(g *macro.Group, reg *custom.Registry) []string {
	var problems []string
	for _, m := range g.Macros() {
		for i, cmd := range m.Commands() {
			var err error
			switch cmd.CommandType() {
			case macro.CommandCustom:
				_, err = reg.Validate(cmd)
			case macro.CommandControl:
				h, ok := control.Lookup(cmd.ControlType())
				if !ok {
					err = fmt.Errorf("no handler for control type %s", cmd.ControlType())
				} else {
					err = macro.ValidateParameters(h.Schema, cmd.Parameters())
				}
			}
			if err != nil {
				problems = append(problems, fmt.Sprintf("macro %q command %d (%s): %v", m.Name(), i, cmd.Title(), err))
			}
		}
	}
	return problems
}

func (c *cli) format(_ context.Context, args []string) int {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	dryRun := fs.Bool("n", false, "Print the result instead of rewriting the file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(c.stderr, "Error: fmt needs at least one file")
		return 2
	}

	code := 0
	for _, path := range fs.Args() {
		g := macro.NewGroup("")
		if _, err := store.LoadFile(path, g, c.logger); err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			code = 1
			continue
		}
		if *dryRun {
			if err := codec.WriteTo(c.stdout, g); err != nil {
				fmt.Fprintf(c.stderr, "Error: %v\n", err)
				code = 1
			}
			continue
		}
		if err := store.SaveFile(path, g); err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			code = 1
		}
	}
	return code
}

func (c *cli) info(_ context.Context, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(c.stderr, "Error: info needs exactly one file")
		return 2
	}
	g := macro.NewGroup("")
	if _, err := store.LoadFile(args[0], g, c.logger); err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprint(c.stdout, describeGroup(g))
	return 0
}

func describeGroup(g *macro.Group) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Group %q (%s), %d macros\n", g.Name(), g.ID(), g.Len())
	for _, m := range g.Macros() {
		fmt.Fprintf(&b, "  Macro %q", m.Name())
		if m.Shortcut() != macro.KeyNone {
			fmt.Fprintf(&b, " [%s]", m.Shortcut())
		}
		fmt.Fprintf(&b, ", %d commands\n", m.Len())
		if d := m.Description(); d != "" {
			for _, line := range strings.Split(d, "\n") {
				fmt.Fprintf(&b, "    # %s\n", line)
			}
		}
		for i, cmd := range m.Commands() {
			fmt.Fprintf(&b, "    %3d  %-8s %s (delay %gs)\n", i, cmd.CommandType(), cmd.Title(), cmd.DelaySeconds())
		}
	}
	return b.String()
}

func (c *cli) list(_ context.Context, _ []string) int {
	names, err := c.store.List()
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
	for _, name := range names {
		fmt.Fprintln(c.stdout, name)
	}
	return 0
}

func (c *cli) ops(_ context.Context, _ []string) int {
	reg, err := c.registry()
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
	for _, name := range reg.Names() {
		op, _ := reg.Lookup(name)
		fmt.Fprintf(c.stdout, "%s  %s\n", name, op.Description())
		for _, p := range op.Schema() {
			fmt.Fprintf(c.stdout, "    %s %s", p.Name, p.DataType)
			if p.CustomType != "" {
				fmt.Fprintf(c.stdout, " (%s)", p.CustomType)
			}
			if p.Default != nil {
				fmt.Fprintf(c.stdout, " = %v", p.Default)
			}
			fmt.Fprintln(c.stdout)
		}
	}
	return 0
}

func (c *cli) watch(ctx context.Context, _ []string) int {
	err := c.store.Watch(ctx, func(ch store.Change) {
		fmt.Fprintf(c.stdout, "%s %s\n", ch.Kind, ch.Name)
	})
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
	c.logger.Info("Watching %s", c.store.Dir())
	<-ctx.Done()
	return 0
}
