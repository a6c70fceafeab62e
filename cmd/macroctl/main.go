// Package main is the entry point for macroctl, the macro file tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/uimacro/internal/config"
	"github.com/dshills/uimacro/internal/logging"
	"github.com/dshills/uimacro/internal/macro/custom"
	"github.com/dshills/uimacro/internal/store"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// cli carries what every subcommand needs.
type cli struct {
	cfg    config.Config
	logger *logging.Logger
	store  *store.Store
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	name  string
	usage string
	run   func(c *cli, ctx context.Context, args []string) int
}

var commands = []command{
	{"check", "check FILE...         decode files and report warnings and schema problems", (*cli).check},
	{"fmt", "fmt [-n] FILE...      rewrite files in the current format", (*cli).format},
	{"info", "info FILE             show the macros and commands of a file", (*cli).info},
	{"list", "list                  list macro files in the store", (*cli).list},
	{"ops", "ops                   list custom operations", (*cli).ops},
	{"watch", "watch                 report macro file changes in the store", (*cli).watch},
	{"record", "record [-file NAME]   record and replay pointer macros in the terminal", (*cli).record},
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("macroctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var configPath, logLevel, storeDir string
	var showVersion bool
	fs.StringVar(&configPath, "config", "", "Path to configuration file (.toml, .yaml)")
	fs.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&storeDir, "store", "", "Macro store directory")
	fs.BoolVar(&showVersion, "version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "macroctl - inspect, convert and record UI macros\n\n")
		fmt.Fprintf(stderr, "Usage: macroctl [options] COMMAND [args]\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		for _, cmd := range commands {
			fmt.Fprintf(stderr, "  %s\n", cmd.usage)
		}
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if showVersion {
		fmt.Fprintf(stdout, "macroctl %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if storeDir != "" {
		cfg.Store.Dir = storeDir
	}
	logger, err := cfg.Log.Logger(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	c := &cli{
		cfg:    cfg,
		logger: logger,
		store:  store.New(cfg.Store.Dir, store.WithLogger(logger)),
		stdout: stdout,
		stderr: stderr,
	}

	name := fs.Arg(0)
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd.run(c, ctx, fs.Args()[1:])
		}
	}
	if name == "" {
		fs.Usage()
	} else {
		fmt.Fprintf(stderr, "Error: unknown command %q\n", name)
	}
	return 2
}

// registry returns the default operations plus the configured scripts.
func (c *cli) registry() (*custom.Registry, error) {
	reg := custom.NewDefaultRegistry()
	if c.cfg.Scripts.Dir == "" {
		return reg, nil
	}
	names, err := reg.RegisterDir(c.cfg.Scripts.Dir)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Loaded %d script operations from %s", len(names), c.cfg.Scripts.Dir)
	return reg, nil
}
