package tilemap

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	cases := []struct {
		name    string
		rows    int
		cols    int
		wantErr error
	}{
		{"one_by_one", 1, 1, nil},
		{"wide", 2, 20, nil},
		{"zero_rows", 0, 3, ErrInvalidDimension},
		{"negative_cols", 3, -1, ErrInvalidDimension},
		{"at_cell_cap", 1, MaxCells, nil},
		{"over_cell_cap", 1025, 1024, ErrInvalidDimension},
		{"overflow", 3000000000, 3000000000, ErrInvalidDimension},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m, err := New(c.rows, c.cols)
			if c.wantErr != nil {
				if !errors.Is(err, c.wantErr) {
					t.Fatalf("expected %v, got %v", c.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m.Scale != 1 || m.OffsetX != 0 || m.OffsetY != 0 {
				t.Fatalf("expected scale 1 and no pan, got %v (%v,%v)", m.Scale, m.OffsetX, m.OffsetY)
			}
			if m.Count() != 0 {
				t.Fatalf("expected empty map, got %d occupied", m.Count())
			}
		})
	}
}

func TestRotateCellCycle(t *testing.T) {
	m, _ := New(2, 2)
	if err := m.SetCell(0, 1, "assets:grass/a.png", 3); err != nil {
		t.Fatalf("SetCell: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, err := m.RotateCell(0, 1); err != nil {
			t.Fatalf("RotateCell: %v", err)
		}
	}
	c, _ := m.Cell(0, 1)
	if c.Rotation != 3 {
		t.Fatalf("expected rotation 3 after four turns, got %d", c.Rotation)
	}

	rot, err := m.RotateCell(1, 1)
	if err != nil {
		t.Fatalf("RotateCell on empty: %v", err)
	}
	empty, _ := m.Cell(1, 1)
	if rot != 0 || !empty.Empty() || empty.Rotation != 0 {
		t.Fatalf("expected empty cell untouched, got %+v", empty)
	}
}

func TestCellBounds(t *testing.T) {
	cases := []struct {
		name     string
		row, col int
	}{
		{"row_negative", -1, 0},
		{"col_negative", 0, -1},
		{"row_past_end", 3, 0},
		{"col_past_end", 0, 2},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m, _ := New(3, 2)
			_ = m.SetCell(1, 1, "assets:a.png", 1)
			before := m.Clone()

			if err := m.SetCell(c.row, c.col, "assets:b.png", 0); !errors.Is(err, ErrIndexOutOfRange) {
				t.Fatalf("SetCell: expected ErrIndexOutOfRange, got %v", err)
			}
			if _, err := m.RotateCell(c.row, c.col); !errors.Is(err, ErrIndexOutOfRange) {
				t.Fatalf("RotateCell: expected ErrIndexOutOfRange, got %v", err)
			}
			if !equalMaps(before, m) {
				t.Fatalf("map changed after failed call")
			}
		})
	}
}

func TestSetCellClears(t *testing.T) {
	m, _ := New(1, 1)
	_ = m.SetCell(0, 0, "assets:a.png", 2)
	if err := m.ClearCell(0, 0); err != nil {
		t.Fatalf("ClearCell: %v", err)
	}
	c, _ := m.Cell(0, 0)
	if !c.Empty() || c.Rotation != 0 {
		t.Fatalf("expected empty cell with rotation 0, got %+v", c)
	}
}

func TestClone(t *testing.T) {
	m, _ := New(2, 2)
	_ = m.SetCell(0, 0, "assets:a.png", 0)
	cp := m.Clone()
	_ = m.SetCell(0, 0, "assets:b.png", 1)

	c, _ := cp.Cell(0, 0)
	if c.Tile != "assets:a.png" || c.Rotation != 0 {
		t.Fatalf("clone shares cells with original: %+v", c)
	}
}

func equalMaps(a, b *Map) bool {
	if a.Name != b.Name || a.Rows != b.Rows || a.Columns != b.Columns {
		return false
	}
	if a.Scale != b.Scale || a.OffsetX != b.OffsetX || a.OffsetY != b.OffsetY {
		return false
	}
	if len(a.cells) != len(b.cells) {
		return false
	}
	for i := range a.cells {
		if a.cells[i] != b.cells[i] {
			return false
		}
	}
	return true
}
