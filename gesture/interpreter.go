// Package gesture turns a stream of touch samples into taps, long presses
// and pan/zoom requests.
package gesture

import (
	"fmt"
	"math"
	"time"

	"github.com/milk9111/tilemap/tilemap"
)

type State int

const (
	Idle State = iota
	SingleDown
	SingleUpShort
	SingleUpLong
	PromotedMulti
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case SingleDown:
		return "single-down"
	case SingleUpShort:
		return "single-up-short"
	case SingleUpLong:
		return "single-up-long"
	case PromotedMulti:
		return "promoted-multi"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config holds the classification thresholds.
type Config struct {
	TileSize  float64
	MinMove   float64
	LongPress time.Duration
}

func DefaultConfig(tileSize float64) Config {
	return Config{TileSize: tileSize, MinMove: 8, LongPress: 500 * time.Millisecond}
}

// Grid is the part of the map the interpreter reads.
type Grid interface {
	CellAt(x, y, tileSize float64) (row, col int, ok bool)
	Cell(row, col int) (tilemap.Cell, error)
	View() (scale, offsetX, offsetY float64)
}

type point struct{ x, y float64 }

func dist(a, b point) float64 { return math.Hypot(a.x-b.x, a.y-b.y) }
func mid(a, b point) point    { return point{(a.x + b.x) / 2, (a.y + b.y) / 2} }

// anchor is the view and finger geometry a pan or pinch is measured from.
type anchor struct {
	scale   float64
	offset  point
	finger  point
	spread  float64
	pinched bool
}

// Interpreter classifies one touch session at a time. It is not safe for
// concurrent use.
type Interpreter struct {
	cfg   Config
	state State

	pointers map[int]point
	order    []int

	down     point
	downAt   time.Time
	dragging bool
	anchor   anchor
}

func NewInterpreter(cfg Config) *Interpreter {
	return &Interpreter{cfg: cfg, pointers: make(map[int]point)}
}

func (in *Interpreter) State() State { return in.state }

// Config returns the thresholds in use.
func (in *Interpreter) Config() Config { return in.cfg }

// SetConfig replaces the thresholds. The current gesture is dropped.
func (in *Interpreter) SetConfig(cfg Config) {
	in.cfg = cfg
	in.Reset()
}

// Reset drops the current gesture.
func (in *Interpreter) Reset() {
	in.state = Idle
	clear(in.pointers)
	in.order = in.order[:0]
	in.dragging = false
}

// Feed consumes one touch sample and returns the events it produced.
func (in *Interpreter) Feed(t Touch, g Grid) []Event {
	switch t.Action {
	case Down:
		return in.onDown(t, g)
	case Move:
		return in.onMove(t)
	case Up:
		return in.onUp(t, g)
	case Cancel:
		in.Reset()
	}
	return nil
}

func (in *Interpreter) onDown(t Touch, g Grid) []Event {
	p := point{t.X, t.Y}
	if _, ok := in.pointers[t.Pointer]; ok {
		in.pointers[t.Pointer] = p
		return nil
	}
	in.pointers[t.Pointer] = p
	in.order = append(in.order, t.Pointer)

	switch len(in.order) {
	case 1:
		in.state = SingleDown
		in.down = p
		in.downAt = t.Time
		in.dragging = false
		in.anchorSingle(g, p)
	case 2:
		in.state = PromotedMulti
		in.anchorPinch(g)
	}
	return nil
}

func (in *Interpreter) onMove(t Touch) []Event {
	if _, ok := in.pointers[t.Pointer]; !ok {
		return nil
	}
	in.pointers[t.Pointer] = point{t.X, t.Y}

	switch in.state {
	case SingleDown:
		if t.Pointer != in.order[0] {
			return nil
		}
		if !in.dragging && dist(in.down, in.pointers[t.Pointer]) < in.cfg.MinMove {
			return nil
		}
		in.dragging = true
		return []Event{in.pan(in.pointers[t.Pointer])}
	case PromotedMulti:
		if in.anchor.pinched {
			return []Event{in.pinch()}
		}
		return []Event{in.pan(in.pointers[in.order[0]])}
	}
	return nil
}

func (in *Interpreter) onUp(t Touch, g Grid) []Event {
	if _, ok := in.pointers[t.Pointer]; !ok {
		return nil
	}
	p := point{t.X, t.Y}
	delete(in.pointers, t.Pointer)
	for i, id := range in.order {
		if id == t.Pointer {
			in.order = append(in.order[:i], in.order[i+1:]...)
			break
		}
	}

	switch in.state {
	case SingleDown:
		if len(in.order) > 0 {
			return nil
		}
		return in.classify(p, t.Time, g)
	case PromotedMulti:
		switch len(in.order) {
		case 0:
			in.state = Idle
		case 1:
			in.anchorSingle(g, in.pointers[in.order[0]])
		default:
			in.anchorPinch(g)
		}
	}
	return nil
}

// classify decides what a finished single-finger gesture was.
func (in *Interpreter) classify(up point, at time.Time, g Grid) []Event {
	in.state = Idle
	if in.dragging || dist(in.down, up) >= in.cfg.MinMove {
		return nil
	}
	row, col, ok := g.CellAt(up.x, up.y, in.cfg.TileSize)
	if !ok {
		return nil
	}
	cell, err := g.Cell(row, col)
	if err != nil {
		return nil
	}
	if at.Sub(in.downAt) >= in.cfg.LongPress {
		in.state = SingleUpLong
		return []Event{LongPress{Row: row, Col: col, Empty: cell.Empty()}}
	}
	in.state = SingleUpShort
	return []Event{Tap{Row: row, Col: col, Empty: cell.Empty()}}
}

func (in *Interpreter) anchorSingle(g Grid, finger point) {
	scale, ox, oy := g.View()
	in.anchor = anchor{scale: scale, offset: point{ox, oy}, finger: finger}
}

func (in *Interpreter) anchorPinch(g Grid) {
	a, b := in.pointers[in.order[0]], in.pointers[in.order[1]]
	scale, ox, oy := g.View()
	in.anchor = anchor{
		scale:   scale,
		offset:  point{ox, oy},
		finger:  mid(a, b),
		spread:  dist(a, b),
		pinched: true,
	}
}

func (in *Interpreter) pan(finger point) PanZoom {
	return PanZoom{
		Scale:   in.anchor.scale,
		OffsetX: in.anchor.offset.x + finger.x - in.anchor.finger.x,
		OffsetY: in.anchor.offset.y + finger.y - in.anchor.finger.y,
	}
}

// pinch scales by the change in finger spread and keeps the map point that
// was under the starting midpoint under the current midpoint.
func (in *Interpreter) pinch() PanZoom {
	a, b := in.pointers[in.order[0]], in.pointers[in.order[1]]
	m := mid(a, b)
	scale := in.anchor.scale
	if in.anchor.spread > 0 {
		scale = in.anchor.scale * dist(a, b) / in.anchor.spread
	}
	// map-space point under the starting midpoint
	px := (in.anchor.finger.x - in.anchor.offset.x) / in.anchor.scale
	py := (in.anchor.finger.y - in.anchor.offset.y) / in.anchor.scale
	pz := PanZoom{Scale: scale, Pinch: true, FocusX: m.x, FocusY: m.y, MapX: px, MapY: py}
	pz.OffsetX, pz.OffsetY = pz.OffsetAt(scale)
	return pz
}
