// Package term hosts macro pointer capture and replay in a tcell terminal.
//
// A Surface is a rectangular region of the screen that behaves as one
// pointer-capable control. Mouse events read from the screen are routed to
// surfaces with a Router; replayed events are posted back to the screen's
// event queue so they travel the same path as real input.
package term

import (
	"math/bits"
	"sort"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/uimacro/internal/control"
	"github.com/dshills/uimacro/internal/macro"
)

// Button bits stored in recorded pointer events.
const (
	ButtonLeft   uint32 = 0x1
	ButtonRight  uint32 = 0x2
	ButtonMiddle uint32 = 0x4
)

// Modifier bits stored in recorded pointer events.
const (
	ModShift uint32 = 0x02000000
	ModCtrl  uint32 = 0x04000000
	ModAlt   uint32 = 0x08000000
	ModMeta  uint32 = 0x10000000
)

// DoubleClickInterval is the longest gap between two presses of the same
// button at the same cell that still counts as a double click.
const DoubleClickInterval = 400 * time.Millisecond

// Poster accepts synthesized events. tcell.Screen implements it.
type Poster interface {
	PostEvent(ev tcell.Event) error
}

func convertButtons(b tcell.ButtonMask) uint32 {
	var result uint32
	if b&tcell.Button1 != 0 {
		result |= ButtonLeft
	}
	if b&tcell.Button2 != 0 {
		result |= ButtonMiddle
	}
	if b&tcell.Button3 != 0 {
		result |= ButtonRight
	}
	return result
}

func toTcellButtons(b uint32) tcell.ButtonMask {
	var result tcell.ButtonMask
	if b&ButtonLeft != 0 {
		result |= tcell.Button1
	}
	if b&ButtonMiddle != 0 {
		result |= tcell.Button2
	}
	if b&ButtonRight != 0 {
		result |= tcell.Button3
	}
	return result
}

func convertMod(m tcell.ModMask) uint32 {
	var result uint32
	if m&tcell.ModShift != 0 {
		result |= ModShift
	}
	if m&tcell.ModCtrl != 0 {
		result |= ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		result |= ModAlt
	}
	if m&tcell.ModMeta != 0 {
		result |= ModMeta
	}
	return result
}

func toTcellMod(m uint32) tcell.ModMask {
	var result tcell.ModMask
	if m&ModShift != 0 {
		result |= tcell.ModShift
	}
	if m&ModCtrl != 0 {
		result |= tcell.ModCtrl
	}
	if m&ModAlt != 0 {
		result |= tcell.ModAlt
	}
	if m&ModMeta != 0 {
		result |= tcell.ModMeta
	}
	return result
}

const wheelButtons = tcell.WheelUp | tcell.WheelDown | tcell.WheelLeft | tcell.WheelRight

func lowestBit(mask uint32) uint32 {
	if mask == 0 {
		return 0
	}
	return 1 << bits.TrailingZeros32(mask)
}

// Surface is a named screen region that reports and accepts pointer events.
type Surface struct {
	mu     sync.Mutex
	name   string
	x, y   int
	width  int
	height int
	poster Poster

	blocked bool
	subs    map[int]func(control.PointerEvent)
	nextID  int

	buttons   uint32
	lastPress time.Time
	pressX    int
	pressY    int
	pressBtn  uint32
}

// NewSurface creates a surface. Replayed events are posted to poster; a nil
// poster drops them.
func NewSurface(name string, poster Poster) *Surface {
	return &Surface{
		name:   name,
		poster: poster,
		subs:   make(map[int]func(control.PointerEvent)),
	}
}

// SetBounds places the surface on screen.
func (s *Surface) SetBounds(x, y, width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.x, s.y, s.width, s.height = x, y, width, height
}

// Bounds returns the screen position and size of the surface.
func (s *Surface) Bounds() (x, y, width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.x, s.y, s.width, s.height
}

// Name implements control.Control.
func (s *Surface) Name() string { return s.name }

// Type implements control.Control. Surfaces only take pointer commands.
func (s *Surface) Type() macro.ControlType { return macro.ControlInvalid }

// NotificationsBlocked implements control.Control.
func (s *Surface) NotificationsBlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blocked
}

// SetBlocked suppresses pointer reports while b is true.
func (s *Surface) SetBlocked(b bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocked = b
}

// Size implements control.PointerTarget.
func (s *Surface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// ScreenCenter implements control.Locatable.
func (s *Surface) ScreenCenter() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.x + s.width/2, s.y + s.height/2
}

// Contains reports whether the screen cell x, y is inside the surface.
func (s *Surface) Contains(x, y int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contains(x, y)
}

func (s *Surface) contains(x, y int) bool {
	return x >= s.x && x < s.x+s.width && y >= s.y && y < s.y+s.height
}

// OnPointer implements control.PointerSource.
func (s *Surface) OnPointer(fn func(control.PointerEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// HandleMouse translates a screen mouse event into a local pointer event
// and reports it to subscribers. Events outside the surface are ignored
// unless a button pressed inside it is still held. It returns false when
// the event was not for this surface.
func (s *Surface) HandleMouse(ev *tcell.EventMouse) bool {
	gx, gy := ev.Position()
	cur := convertButtons(ev.Buttons())

	s.mu.Lock()
	if !s.contains(gx, gy) && s.buttons == 0 {
		s.mu.Unlock()
		return false
	}
	prev := s.buttons
	if cur == prev && cur == 0 && ev.Buttons()&wheelButtons != 0 {
		s.mu.Unlock()
		return false
	}

	pe := control.PointerEvent{
		Kind:      macro.PointerMove,
		X:         gx - s.x,
		Y:         gy - s.y,
		Buttons:   cur,
		Modifiers: convertMod(ev.Modifiers()),
	}
	switch pressed, released := cur&^prev, prev&^cur; {
	case pressed != 0:
		pe.Kind = macro.PointerPress
		pe.Button = lowestBit(pressed)
		when := ev.When()
		if pe.Button == s.pressBtn && pe.X == s.pressX && pe.Y == s.pressY &&
			!s.lastPress.IsZero() && when.Sub(s.lastPress) <= DoubleClickInterval {
			pe.Kind = macro.PointerDoubleClick
			s.lastPress = time.Time{}
		} else {
			s.lastPress = when
		}
		s.pressX, s.pressY, s.pressBtn = pe.X, pe.Y, pe.Button
	case released != 0:
		pe.Kind = macro.PointerRelease
		pe.Button = lowestBit(released)
	}
	s.buttons = cur

	if s.blocked {
		s.mu.Unlock()
		return true
	}
	subs := make([]func(control.PointerEvent), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(pe)
	}
	return true
}

// HandlePointer implements control.PointerTarget by posting the event, in
// screen coordinates, to the poster.
func (s *Surface) HandlePointer(ev control.PointerEvent) {
	s.mu.Lock()
	poster := s.poster
	gx, gy := s.x+ev.X, s.y+ev.Y
	s.mu.Unlock()
	if poster == nil {
		return
	}

	mod := toTcellMod(ev.Modifiers)
	switch ev.Kind {
	case macro.PointerDoubleClick:
		press := toTcellButtons(ev.Buttons | ev.Button)
		_ = poster.PostEvent(tcell.NewEventMouse(gx, gy, press, mod))
		_ = poster.PostEvent(tcell.NewEventMouse(gx, gy, tcell.ButtonNone, mod))
		_ = poster.PostEvent(tcell.NewEventMouse(gx, gy, press, mod))
	default:
		_ = poster.PostEvent(tcell.NewEventMouse(gx, gy, toTcellButtons(ev.Buttons), mod))
	}
}

// Router sends mouse events to the surfaces under them and finds surfaces
// by name for playback.
type Router struct {
	mu       sync.RWMutex
	surfaces []*Surface
	grab     *Surface
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{}
}

// Add registers a surface. Later surfaces are on top of earlier ones.
func (r *Router) Add(s *Surface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.surfaces = append(r.surfaces, s)
}

// Names returns the surface names, sorted.
func (r *Router) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.surfaces))
	for i, s := range r.surfaces {
		names[i] = s.Name()
	}
	sort.Strings(names)
	return names
}

// FindByName implements control.Tree.
func (r *Router) FindByName(name string) control.Control {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.surfaces {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// Dispatch routes ev. Non-mouse events are ignored. A surface that received
// a press keeps receiving events until all buttons are released. It
// reports whether a surface took the event.
func (r *Router) Dispatch(ev tcell.Event) bool {
	me, ok := ev.(*tcell.EventMouse)
	if !ok {
		return false
	}

	r.mu.Lock()
	target := r.grab
	if target == nil {
		x, y := me.Position()
		for i := len(r.surfaces) - 1; i >= 0; i-- {
			if r.surfaces[i].Contains(x, y) {
				target = r.surfaces[i]
				break
			}
		}
	}
	if target != nil && convertButtons(me.Buttons()) != 0 {
		r.grab = target
	} else {
		r.grab = nil
	}
	r.mu.Unlock()

	if target == nil {
		return false
	}
	return target.HandleMouse(me)
}
