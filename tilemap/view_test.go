package tilemap

import (
	"math"
	"testing"
)

func TestClampScale(t *testing.T) {
	p := DefaultViewPolicy(64)
	cases := []struct {
		name       string
		rows, cols int
		vp         Viewport
		current    float64
		requested  float64
		want       float64
	}{
		{"shrink_below_viewport_snaps_to_fit", 2, 2, Viewport{300, 200}, 1, 0.5, 300.0 / 128},
		{"shrink_still_larger_accepted", 10, 10, Viewport{300, 300}, 1, 0.8, 0.8},
		{"grow_past_tile_bound", 10, 10, Viewport{300, 300}, 1, 10, 300.0 / 96},
		{"grow_past_tile_bound_uses_wider_axis", 10, 10, Viewport{480, 300}, 1, 10, 480.0 / 96},
		{"grow_within_bound_accepted", 10, 10, Viewport{300, 300}, 1, 1.2, 1.2},
		{"non_positive_ignored", 10, 10, Viewport{300, 300}, 1, 0, 1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m, _ := New(c.rows, c.cols)
			m.Scale = c.current
			got := m.ClampScale(c.vp, p, c.requested)
			if got != c.want {
				t.Fatalf("expected scale %v, got %v", c.want, got)
			}
		})
	}
}

func TestClampPanLargeMap(t *testing.T) {
	p := DefaultViewPolicy(64)
	vp := Viewport{300, 300}
	deltas := [][2]float64{{50, 50}, {-1000, -1000}, {-100, 40}, {10000, -3}, {-339, -339}, {0, -341}}

	for _, d := range deltas {
		m, _ := New(10, 10)
		dx, dy := m.ClampPan(vp, p, d[0], d[1])
		m.OffsetX += dx
		m.OffsetY += dy
		b := m.Bounds(p.TileSize)
		if b.X > 0 || b.Y > 0 || b.Right() < vp.Width || b.Bottom() < vp.Height {
			t.Fatalf("delta %v left a gap: bounds %+v", d, b)
		}
	}
}

func TestClampPanSmallMap(t *testing.T) {
	p := DefaultViewPolicy(64)
	vp := Viewport{300, 300}
	deltas := [][2]float64{{500, 0}, {-50, -50}, {100, 100}, {172, 172}, {400, -400}}

	for _, d := range deltas {
		m, _ := New(2, 2)
		dx, dy := m.ClampPan(vp, p, d[0], d[1])
		m.OffsetX += dx
		m.OffsetY += dy
		b := m.Bounds(p.TileSize)
		if b.X < 0 || b.Y < 0 || b.Right() > vp.Width || b.Bottom() > vp.Height {
			t.Fatalf("delta %v pushed the map out of view: bounds %+v", d, b)
		}
	}

	m, _ := New(2, 2)
	dx, dy := m.ClampPan(vp, p, 500, 0)
	if dx != 172 || dy != 0 {
		t.Fatalf("expected (172,0), got (%v,%v)", dx, dy)
	}
}

func TestUpdateViewRedraw(t *testing.T) {
	p := DefaultViewPolicy(64)
	vp := Viewport{300, 300}

	m, _ := New(2, 2)
	m.OffsetX, m.OffsetY = 100, 100

	if m.UpdateView(vp, p, 1, 100.5, 100.5) {
		t.Fatalf("sub-epsilon pan should not redraw")
	}
	if m.OffsetX != 100 || m.OffsetY != 100 {
		t.Fatalf("sub-epsilon pan moved the map to (%v,%v)", m.OffsetX, m.OffsetY)
	}
	if !m.UpdateView(vp, p, 1, 110, 90) {
		t.Fatalf("pan beyond epsilon should redraw")
	}
	if m.OffsetX != 110 || m.OffsetY != 90 {
		t.Fatalf("expected offset (110,90), got (%v,%v)", m.OffsetX, m.OffsetY)
	}
	if !m.UpdateView(vp, p, 1.5, m.OffsetX, m.OffsetY) {
		t.Fatalf("scale change should redraw")
	}
	if m.Scale != 1.5 {
		t.Fatalf("expected scale 1.5, got %v", m.Scale)
	}
}

func TestCellAt(t *testing.T) {
	m, _ := New(3, 3)
	m.Scale = 2
	m.OffsetX, m.OffsetY = 10, 20

	cases := []struct {
		name     string
		x, y     float64
		row, col int
		ok       bool
	}{
		{"origin", 10, 20, 0, 0, true},
		{"second_column", 139, 21, 0, 1, true},
		{"last_cell", 10 + 383, 20 + 383, 2, 2, true},
		{"left_of_map", 5, 25, 0, 0, false},
		{"past_bottom", 50, 20 + 384, 0, 0, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			row, col, ok := m.CellAt(c.x, c.y, 64)
			if ok != c.ok || row != c.row || col != c.col {
				t.Fatalf("expected (%d,%d,%v), got (%d,%d,%v)", c.row, c.col, c.ok, row, col, ok)
			}
		})
	}
}

func TestRectIntersect(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 5, Y: -5, Width: 10, Height: 10}
	got, ok := a.Intersect(b)
	if !ok {
		t.Fatalf("expected overlap")
	}
	if math.Abs(got.Width-5) > 1e-9 || math.Abs(got.Height-5) > 1e-9 || got.X != 5 || got.Y != 0 {
		t.Fatalf("unexpected intersection %+v", got)
	}
	if _, ok := a.Intersect(Rect{X: 10, Y: 0, Width: 1, Height: 1}); ok {
		t.Fatalf("touching edges must not intersect")
	}
}
