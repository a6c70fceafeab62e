package macro

import (
	"fmt"
	"math"
)

// Point is a coordinate local to the surface that produced a pointer event.
type Point struct {
	X int
	Y int
}

// PointerEventRecord is a captured pointer interaction.
//
// Coordinates are local to the originating surface, and the size of that
// surface at capture time is recorded with them so playback can rescale the
// trajectory onto a surface of a different size. A record normally holds one
// point; consecutive drag moves are merged into a longer trajectory.
type PointerEventRecord struct {
	Kind         PointerEventKind
	Button       uint32
	ButtonMask   uint32
	ModifierMask uint32
	Width        int
	Height       int
	Points       []Point
}

// NewPointerEventRecord creates a record without any points.
func NewPointerEventRecord(kind PointerEventKind, button, buttonMask, modifierMask uint32, width, height int) *PointerEventRecord {
	return &PointerEventRecord{
		Kind:         kind,
		Button:       button,
		ButtonMask:   buttonMask,
		ModifierMask: modifierMask,
		Width:        width,
		Height:       height,
	}
}

// AddPoint appends a local coordinate to the trajectory.
func (r *PointerEventRecord) AddPoint(x, y int) {
	r.Points = append(r.Points, Point{X: x, Y: y})
}

// NumPoints returns the number of points in the trajectory.
func (r *PointerEventRecord) NumPoints() int {
	return len(r.Points)
}

// Rescale maps a point recorded on this record's surface onto a surface of
// the given size, preserving its normalized position. Rescaling to the
// capture size returns the point unchanged.
func (r *PointerEventRecord) Rescale(p Point, width, height int) Point {
	return Point{
		X: rescaleAxis(p.X, r.Width, width),
		Y: rescaleAxis(p.Y, r.Height, height),
	}
}

// RescaledPoints returns the whole trajectory mapped onto a surface of the
// given size.
func (r *PointerEventRecord) RescaledPoints(width, height int) []Point {
	out := make([]Point, len(r.Points))
	for i, p := range r.Points {
		out[i] = r.Rescale(p, width, height)
	}
	return out
}

func rescaleAxis(v, from, to int) int {
	if from == to || from <= 0 || to <= 0 {
		return v
	}
	return int(math.Round(float64(v) * float64(to) / float64(from)))
}

// Normalized returns the point as fractions of the capture surface size.
// Returns (0, 0) for a degenerate surface.
func (r *PointerEventRecord) Normalized(p Point) (float64, float64) {
	if r.Width <= 0 || r.Height <= 0 {
		return 0, 0
	}
	return float64(p.X) / float64(r.Width), float64(p.Y) / float64(r.Height)
}

// SameStream reports whether other belongs to the same uninterrupted drag:
// both are moves with identical buttons, modifiers and surface size.
func (r *PointerEventRecord) SameStream(other *PointerEventRecord) bool {
	if r == nil || other == nil {
		return false
	}
	return r.Kind == PointerMove &&
		other.Kind == PointerMove &&
		r.Button == other.Button &&
		r.ButtonMask == other.ButtonMask &&
		r.ModifierMask == other.ModifierMask &&
		r.Width == other.Width &&
		r.Height == other.Height
}

// Copy returns a deep copy of the record.
func (r *PointerEventRecord) Copy() *PointerEventRecord {
	if r == nil {
		return nil
	}
	c := *r
	if r.Points != nil {
		c.Points = make([]Point, len(r.Points))
		copy(c.Points, r.Points)
	}
	return &c
}

// Equal reports whether two records are identical.
func (r *PointerEventRecord) Equal(other *PointerEventRecord) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.Kind != other.Kind ||
		r.Button != other.Button ||
		r.ButtonMask != other.ButtonMask ||
		r.ModifierMask != other.ModifierMask ||
		r.Width != other.Width ||
		r.Height != other.Height ||
		len(r.Points) != len(other.Points) {
		return false
	}
	for i := range r.Points {
		if r.Points[i] != other.Points[i] {
			return false
		}
	}
	return true
}

// String returns a short description of the record.
func (r *PointerEventRecord) String() string {
	return fmt.Sprintf("%s button=%d buttons=%d modifiers=%d size=%dx%d points=%d",
		r.Kind, r.Button, r.ButtonMask, r.ModifierMask, r.Width, r.Height, len(r.Points))
}
