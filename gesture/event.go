package gesture

import (
	"fmt"
	"time"
)

type Action int

const (
	Down Action = iota
	Move
	Up
	// Cancel aborts the gesture without firing anything.
	Cancel
)

func (a Action) String() string {
	switch a {
	case Down:
		return "down"
	case Move:
		return "move"
	case Up:
		return "up"
	case Cancel:
		return "cancel"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Touch is one pointer sample in screen coordinates.
type Touch struct {
	Action  Action
	Pointer int
	X, Y    float64
	Time    time.Time
}

// Event is the output of the interpreter: Tap, LongPress or PanZoom.
type Event interface {
	event()
}

// Tap is a short single-finger press on a cell.
type Tap struct {
	Row, Col int
	Empty    bool
}

// LongPress is a single-finger press held past the long-press threshold.
type LongPress struct {
	Row, Col int
	Empty    bool
}

// PanZoom asks for a new view: absolute scale and offset, before clamping.
// For a pinch, MapX/MapY is the unscaled map point that must stay under the
// finger midpoint FocusX/FocusY.
type PanZoom struct {
	Scale            float64
	OffsetX, OffsetY float64

	Pinch          bool
	FocusX, FocusY float64
	MapX, MapY     float64
}

// OffsetAt returns the offset for the view at scale. A pan keeps its offset;
// a pinch recomputes it so the focal map point stays under the midpoint.
func (p PanZoom) OffsetAt(scale float64) (float64, float64) {
	if !p.Pinch {
		return p.OffsetX, p.OffsetY
	}
	return p.FocusX - p.MapX*scale, p.FocusY - p.MapY*scale
}

func (Tap) event()       {}
func (LongPress) event() {}
func (PanZoom) event()   {}
