package tilemap

import (
	"math"
)

// Viewport is the visible screen area the map is drawn into.
type Viewport struct {
	Width, Height float64
}

func (v Viewport) Rect() Rect { return Rect{Width: v.Width, Height: v.Height} }

// ViewPolicy holds the pan and zoom limits.
type ViewPolicy struct {
	// TileSize is the unscaled edge of one cell in pixels.
	TileSize float64
	// MaxTileFactor bounds zooming in: a single tile may grow until
	// MaxTileFactor tiles span the viewport.
	MaxTileFactor float64
	// RedrawEpsilon is the smallest pan that triggers a redraw.
	RedrawEpsilon float64
}

func DefaultViewPolicy(tileSize float64) ViewPolicy {
	return ViewPolicy{TileSize: tileSize, MaxTileFactor: 1.5, RedrawEpsilon: 1.2}
}

// View returns the current zoom and pan.
func (m *Map) View() (scale, offsetX, offsetY float64) {
	return m.Scale, m.OffsetX, m.OffsetY
}

// Bounds returns the map's rectangle on screen under the current pan and zoom.
func (m *Map) Bounds(tileSize float64) Rect {
	return Rect{
		X:      m.OffsetX,
		Y:      m.OffsetY,
		Width:  float64(m.Columns) * tileSize * m.Scale,
		Height: float64(m.Rows) * tileSize * m.Scale,
	}
}

// CellRect returns the screen rectangle covered by (row, col).
func (m *Map) CellRect(row, col int, tileSize float64) Rect {
	size := tileSize * m.Scale
	return Rect{
		X:      m.OffsetX + float64(col)*size,
		Y:      m.OffsetY + float64(row)*size,
		Width:  size,
		Height: size,
	}
}

// CellAt maps a screen point to the cell under it. ok is false when the
// point lies outside the grid.
func (m *Map) CellAt(x, y, tileSize float64) (row, col int, ok bool) {
	scale := m.Scale
	if scale == 0 {
		scale = 1
	}
	cx := (x - m.OffsetX) / scale
	cy := (y - m.OffsetY) / scale
	col = int(math.Floor(cx / tileSize))
	row = int(math.Floor(cy / tileSize))
	if !m.Contains(row, col) {
		return 0, 0, false
	}
	return row, col, true
}

// ClampScale applies the zoom limits to a requested scale. Shrinking below
// the viewport on both axes snaps to the larger fit ratio; growing a single
// tile past the viewport on both axes snaps to the upper bound.
func (m *Map) ClampScale(vp Viewport, p ViewPolicy, requested float64) float64 {
	if requested <= 0 || math.IsNaN(requested) || math.IsInf(requested, 0) {
		return m.Scale
	}
	ts := p.TileSize
	w := float64(m.Columns) * ts * requested
	h := float64(m.Rows) * ts * requested
	if requested < m.Scale && w < vp.Width && h < vp.Height {
		return math.Max(vp.Width/(float64(m.Columns)*ts), vp.Height/(float64(m.Rows)*ts))
	}
	tile := p.MaxTileFactor * ts * requested
	if requested > m.Scale && tile > vp.Width && tile > vp.Height {
		return math.Max(vp.Width/(p.MaxTileFactor*ts), vp.Height/(p.MaxTileFactor*ts))
	}
	return requested
}

// ClampPan adjusts a proposed offset delta so that the map, at its current
// scale, leaves no gap at a viewport edge when it is larger than the
// viewport and stays inside the viewport when it is smaller.
func (m *Map) ClampPan(vp Viewport, p ViewPolicy, dx, dy float64) (float64, float64) {
	dr := m.Bounds(p.TileSize)
	dr.X += dx
	dr.Y += dy

	up := math.Min(vp.Height-dr.Bottom(), -dr.Y)
	down := math.Max(vp.Height-dr.Bottom(), -dr.Y)
	left := math.Min(-dr.X, vp.Width-dr.Right())
	right := math.Max(-dr.X, vp.Width-dr.Right())
	if up > 0 {
		dy += up
	}
	if down < 0 {
		dy += down
	}
	if left > 0 {
		dx += left
	}
	if right < 0 {
		dx += right
	}
	return dx, dy
}

// UpdateView moves the view toward the requested scale and offset under
// the policy limits. It reports whether the change warrants a redraw.
func (m *Map) UpdateView(vp Viewport, p ViewPolicy, scale, offsetX, offsetY float64) bool {
	redraw := false
	if scale != m.Scale {
		next := m.ClampScale(vp, p, scale)
		if next != m.Scale {
			m.Scale = next
			redraw = true
		}
	}

	dx := offsetX - m.OffsetX
	dy := offsetY - m.OffsetY
	if dx == 0 && dy == 0 && !redraw {
		return false
	}
	dx, dy = m.ClampPan(vp, p, dx, dy)
	if redraw || math.Hypot(dx, dy) > p.RedrawEpsilon {
		m.OffsetX += dx
		m.OffsetY += dy
		redraw = true
	}
	return redraw
}
