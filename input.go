package main

import (
	"slices"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/tilemap/gesture"
)

// mousePointer is the pointer id used for the left mouse button. Touch ids
// are shifted by one so they never collide with it.
const mousePointer = 0

type point struct{ x, y float64 }

// Input turns ebiten's polled touch and mouse state into pointer samples.
type Input struct {
	down map[int]point

	// key edges for the current frame
	Save, Export, Thumbnail, Share bool
	ToggleGrid, Rename, Quit       bool

	Wheel            float64
	CursorX, CursorY float64

	touchIDs []ebiten.TouchID
}

func NewInput() *Input {
	return &Input{down: make(map[int]point)}
}

// Update polls the devices and returns the pointer samples since the last
// frame.
func (i *Input) Update(now time.Time) []gesture.Touch {
	cx, cy := ebiten.CursorPosition()
	i.CursorX, i.CursorY = float64(cx), float64(cy)
	_, i.Wheel = ebiten.Wheel()

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	i.Save = ctrl && inpututil.IsKeyJustPressed(ebiten.KeyS)
	i.Export = ctrl && inpututil.IsKeyJustPressed(ebiten.KeyE)
	i.Thumbnail = ctrl && inpututil.IsKeyJustPressed(ebiten.KeyT)
	i.Share = ctrl && inpututil.IsKeyJustPressed(ebiten.KeyC)
	i.ToggleGrid = inpututil.IsKeyJustPressed(ebiten.KeyG)
	i.Rename = inpututil.IsKeyJustPressed(ebiten.KeyF2)
	i.Quit = inpututil.IsKeyJustPressed(ebiten.KeyEscape)

	cur := make(map[int]point, len(i.down))
	i.touchIDs = ebiten.AppendTouchIDs(i.touchIDs[:0])
	for _, id := range i.touchIDs {
		x, y := ebiten.TouchPosition(id)
		cur[int(id)+1] = point{float64(x), float64(y)}
	}
	if len(i.touchIDs) == 0 && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		cur[mousePointer] = point{i.CursorX, i.CursorY}
	}

	out := diffPointers(i.down, cur, now)
	i.down = cur
	return out
}

// diffPointers compares two frames of pointer positions. Moves come first,
// then lifts, then new pointers, each in pointer id order.
func diffPointers(prev, cur map[int]point, now time.Time) []gesture.Touch {
	var moves, ups, downs []gesture.Touch
	for id, p := range prev {
		q, ok := cur[id]
		switch {
		case !ok:
			ups = append(ups, gesture.Touch{Action: gesture.Up, Pointer: id, X: p.x, Y: p.y, Time: now})
		case q != p:
			moves = append(moves, gesture.Touch{Action: gesture.Move, Pointer: id, X: q.x, Y: q.y, Time: now})
		}
	}
	for id, q := range cur {
		if _, ok := prev[id]; !ok {
			downs = append(downs, gesture.Touch{Action: gesture.Down, Pointer: id, X: q.x, Y: q.y, Time: now})
		}
	}
	byPointer := func(a, b gesture.Touch) int { return a.Pointer - b.Pointer }
	slices.SortFunc(moves, byPointer)
	slices.SortFunc(ups, byPointer)
	slices.SortFunc(downs, byPointer)

	out := make([]gesture.Touch, 0, len(moves)+len(ups)+len(downs))
	out = append(out, moves...)
	out = append(out, ups...)
	return append(out, downs...)
}
