// Package tilemap holds the in-memory model of a tile map: a fixed-size grid
// of cells, each optionally holding a tile identifier and a quarter-turn
// rotation, plus the pan and zoom state of the view onto it.
package tilemap

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDimension = errors.New("tilemap: invalid dimension")
	ErrIndexOutOfRange  = errors.New("tilemap: index out of range")
	ErrCorruptData      = errors.New("tilemap: corrupt data")
)

// Rotation is a clockwise rotation in quarter turns (0..3).
type Rotation uint8

// Next returns the rotation a quarter turn further clockwise.
func (r Rotation) Next() Rotation { return (r + 1) % 4 }

// Degrees returns the rotation in degrees.
func (r Rotation) Degrees() float64 { return float64(r%4) * 90 }

// Cell is one grid position. An empty Tile means the cell holds nothing.
type Cell struct {
	Tile     string
	Rotation Rotation
}

func (c Cell) Empty() bool { return c.Tile == "" }

// MaxCells caps rows*columns for any map.
const MaxCells = 1 << 20

// Map is a rectangular grid of cells together with its view state.
type Map struct {
	Name    string
	Rows    int
	Columns int

	// view state
	Scale   float64
	OffsetX float64
	OffsetY float64

	cells []Cell
}

// New returns an empty map of the given size at scale 1 and no pan.
func New(rows, columns int) (*Map, error) {
	if rows <= 0 || columns <= 0 {
		return nil, fmt.Errorf("tilemap: create %dx%d: %w", rows, columns, ErrInvalidDimension)
	}
	if rows > MaxCells/columns {
		return nil, fmt.Errorf("tilemap: create %dx%d: more than %d cells: %w", rows, columns, MaxCells, ErrInvalidDimension)
	}
	return &Map{
		Rows:    rows,
		Columns: columns,
		Scale:   1,
		cells:   make([]Cell, rows*columns),
	}, nil
}

func (m *Map) index(row, col int) (int, error) {
	if row < 0 || col < 0 || row >= m.Rows || col >= m.Columns {
		return 0, fmt.Errorf("tilemap: cell (%d,%d) in %dx%d: %w", row, col, m.Rows, m.Columns, ErrIndexOutOfRange)
	}
	return row*m.Columns + col, nil
}

// Contains reports whether (row, col) is inside the grid.
func (m *Map) Contains(row, col int) bool {
	_, err := m.index(row, col)
	return err == nil
}

func (m *Map) Cell(row, col int) (Cell, error) {
	idx, err := m.index(row, col)
	if err != nil {
		return Cell{}, err
	}
	return m.cells[idx], nil
}

// SetCell places tile at (row, col) with the given rotation. An empty tile
// clears the cell, which also resets its rotation.
func (m *Map) SetCell(row, col int, tile string, rot Rotation) error {
	idx, err := m.index(row, col)
	if err != nil {
		return err
	}
	if tile == "" {
		m.cells[idx] = Cell{}
		return nil
	}
	m.cells[idx] = Cell{Tile: tile, Rotation: rot % 4}
	return nil
}

func (m *Map) ClearCell(row, col int) error {
	return m.SetCell(row, col, "", 0)
}

// RotateCell turns an occupied cell a quarter turn clockwise and returns the
// new rotation. Empty cells are left alone.
func (m *Map) RotateCell(row, col int) (Rotation, error) {
	idx, err := m.index(row, col)
	if err != nil {
		return 0, err
	}
	c := &m.cells[idx]
	if c.Empty() {
		return 0, nil
	}
	c.Rotation = c.Rotation.Next()
	return c.Rotation, nil
}

// Occupied calls fn for every non-empty cell in row-major order.
func (m *Map) Occupied(fn func(row, col int, c Cell)) {
	for i, c := range m.cells {
		if c.Empty() {
			continue
		}
		fn(i/m.Columns, i%m.Columns, c)
	}
}

// Count returns the number of occupied cells.
func (m *Map) Count() int {
	n := 0
	for _, c := range m.cells {
		if !c.Empty() {
			n++
		}
	}
	return n
}

// Clone returns a deep copy that shares nothing with m.
func (m *Map) Clone() *Map {
	out := *m
	out.cells = make([]Cell, len(m.cells))
	copy(out.cells, m.cells)
	return &out
}
