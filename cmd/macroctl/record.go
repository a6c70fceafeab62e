package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/uimacro/internal/control"
	"github.com/dshills/uimacro/internal/host/term"
	"github.com/dshills/uimacro/internal/logging"
	"github.com/dshills/uimacro/internal/macro"
	"github.com/dshills/uimacro/internal/macro/manager"
	"github.com/dshills/uimacro/internal/macro/playback"
	"github.com/dshills/uimacro/internal/store"
)

const canvasName = "canvas"

// session is an interactive recording session on a terminal canvas.
type session struct {
	screen tcell.Screen
	canvas *term.Surface
	router *term.Router
	mgr    *manager.Manager
	group  *macro.Group
	store  *store.Store
	file   string
	logger *logging.Logger
	last   *macro.Macro

	mu     sync.Mutex
	status string
}

func (s *session) setStatus(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = fmt.Sprintf(format, args...)
}

func (c *cli) record(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("record", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	file := fs.String("file", "recorded", "Store file that receives recorded macros")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	group, _, err := c.store.Load(*file)
	if errors.Is(err, os.ErrNotExist) {
		group, err = macro.NewGroup(*file), nil
	}
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
	reg, err := c.registry()
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(c.stderr, "Error: failed to initialize terminal: %v\n", err)
		return 1
	}
	defer screen.Fini()
	screen.EnableMouse()

	s := &session{
		screen: screen,
		canvas: term.NewSurface(canvasName, screen),
		router: term.NewRouter(),
		group:  group,
		store:  c.store,
		file:   *file,
		logger: c.logger.WithComponent("record"),
	}
	s.router.Add(s.canvas)
	s.layout()

	s.mgr = manager.New(manager.Config{
		Tree:              s.router,
		EventLoop:         playback.EventLoopFunc(screen.Show),
		Indicator:         s,
		Registry:          reg,
		Logger:            c.logger,
		Helper:            s,
		Options:           c.cfg.Playback.Options(),
		MergePointerMoves: c.cfg.Capture.MergePointerMoves,
		Strict:            c.cfg.Playback.Strict,
	})
	if err := s.mgr.Recorder().BindPointer(s.canvas, "Canvas", "Drawing area"); err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
	s.canvas.OnPointer(s.paint)

	if c.cfg.Store.Watch {
		if err := s.watch(ctx); err != nil {
			c.logger.Warn("Not watching the store: %v", err)
		}
	}

	s.setStatus("r record  s stop  p play  space pause  x halt  c clear  q quit")
	s.redraw()
	return s.loop(ctx)
}

func (s *session) loop(ctx context.Context) int {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go s.screen.ChannelEvents(events, quit)
	defer close(quit)

	for {
		select {
		case <-ctx.Done():
			s.mgr.Stop()
			return 0
		case ev, ok := <-events:
			if !ok {
				return 0
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				s.layout()
				s.screen.Sync()
				s.redraw()
			case *tcell.EventMouse:
				s.router.Dispatch(ev)
				s.screen.Show()
			case *tcell.EventKey:
				if !s.key(ctx, ev) {
					s.mgr.Stop()
					return 0
				}
				s.redraw()
			}
		}
	}
}

func (s *session) key(ctx context.Context, ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		return false
	}
	switch ev.Rune() {
	case 'q':
		return false
	case 'r':
		m, err := s.mgr.StartRecordingNew(s.group, "")
		if err != nil {
			s.setStatus("%v", err)
			return true
		}
		s.last = m
		s.setStatus("Recording %s", m.Name())
	case 's':
		if _, err := s.mgr.StopRecording(); err != nil {
			s.setStatus("%v", err)
		}
	case 'p':
		if s.last == nil && s.group.Len() > 0 {
			s.last = s.group.Macros()[s.group.Len()-1]
		}
		if s.last == nil {
			s.setStatus("Nothing to play")
			return true
		}
		m := s.last
		s.clear()
		go func() {
			_, err := s.mgr.RunMacro(ctx, m, nil, nil)
			if err != nil {
				s.setStatus("%v", err)
			} else {
				s.setStatus("Played %s", m.Name())
			}
			_ = s.screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 0, tcell.ModNone))
		}()
	case ' ':
		s.setStatus("Playback %s", s.mgr.PauseContinue())
	case 'x':
		s.mgr.Stop()
	case 'c':
		s.clear()
	}
	return true
}

// watch reports changes made to the session's file by other programs.
func (s *session) watch(ctx context.Context) error {
	if err := os.MkdirAll(s.store.Dir(), 0o755); err != nil {
		return err
	}
	path, err := s.store.Path(s.file)
	if err != nil {
		return err
	}
	return s.store.Watch(ctx, func(ch store.Change) {
		if ch.Path != path || ch.Kind == store.Modified {
			return
		}
		s.setStatus("%s was %s on disk", ch.Name, ch.Kind)
		_ = s.screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 0, tcell.ModNone))
	})
}

func (s *session) layout() {
	w, h := s.screen.Size()
	s.canvas.SetBounds(0, 1, w, h-1)
}

func (s *session) paint(ev control.PointerEvent) {
	if ev.Buttons == 0 && ev.Kind != macro.PointerPress {
		return
	}
	x, y, _, _ := s.canvas.Bounds()
	s.screen.SetContent(x+ev.X, y+ev.Y, '█', nil, tcell.StyleDefault)
}

func (s *session) clear() {
	w, h := s.screen.Size()
	for y := 1; y < h; y++ {
		for x := 0; x < w; x++ {
			s.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault)
		}
	}
}

func (s *session) redraw() {
	w, _ := s.screen.Size()
	s.mu.Lock()
	line := []rune(fmt.Sprintf("[%s] %s", s.mgr.Mode(), s.status))
	s.mu.Unlock()
	style := tcell.StyleDefault.Reverse(true)
	for x := 0; x < w; x++ {
		r := ' '
		if x < len(line) {
			r = line[x]
		}
		s.screen.SetContent(x, 0, r, nil, style)
	}
	s.screen.Show()
}

// MoveTo implements playback.Indicator.
func (s *session) MoveTo(x, y int) {
	s.screen.ShowCursor(x, y)
}

// MacroWasModified implements manager.Helper by saving the group.
func (s *session) MacroWasModified(m *macro.Macro) {
	if err := s.store.Save(s.file, s.group); err != nil {
		s.logger.Error("Unable to save %s: %v", s.file, err)
		s.setStatus("%v", err)
		return
	}
	s.setStatus("Saved %s with %d commands", m.Name(), m.Len())
}

// ExecutionStarting implements manager.Helper.
func (s *session) ExecutionStarting(m *macro.Macro, _ playback.Options) {
	s.setStatus("Playing %s", m.Name())
	_ = s.screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 0, tcell.ModNone))
}

// ExecutionEnding implements manager.Helper.
func (s *session) ExecutionEnding(*macro.Macro, playback.Options) {
	s.screen.HideCursor()
}

// ResetMacro implements manager.Helper by clearing the canvas between
// loops.
func (s *session) ResetMacro(_ context.Context, m *macro.Macro) (*macro.Macro, error) {
	s.clear()
	return m, nil
}
