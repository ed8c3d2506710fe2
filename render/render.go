// Package render draws a tile map onto a canvas and produces export images.
package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/math/f64"

	"github.com/milk9111/tilemap/tilecache"
	"github.com/milk9111/tilemap/tilemap"
)

// Canvas is a drawing surface. Coordinates are in canvas pixels.
type Canvas interface {
	Fill(r tilemap.Rect, c color.Color)
	DrawTile(img image.Image, t f64.Aff3)
	Line(x0, y0, x1, y1, width float64, c color.Color)
}

// Images supplies the image placed in each cell.
type Images interface {
	Image(row, col int) (image.Image, bool)
}

type Options struct {
	TileSize   int
	EmptyColor color.Color
	GridColor  color.Color
	GridWidth  float64
	ShowGrid   bool
	ExportGrid bool
	ThumbSize  int
	// MaxPixels caps the size of full-resolution renders. Zero means no cap.
	MaxPixels int64
}

func DefaultOptions() Options {
	return Options{
		TileSize:   64,
		EmptyColor: color.RGBA{0x44, 0x44, 0x44, 0xff},
		GridColor:  color.NRGBA{0xff, 0xff, 0xff, 0x80},
		GridWidth:  1.5,
		ShowGrid:   true,
		ExportGrid: true,
		ThumbSize:  64,
		MaxPixels:  64 << 20,
	}
}

type Renderer struct {
	opts Options
}

func New(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

func (r *Renderer) Options() Options { return r.opts }

func (r *Renderer) SetOptions(opts Options) { r.opts = opts }

// DrawViewport draws the cells of m that intersect the viewport and returns
// how many tiles it drew.
func (r *Renderer) DrawViewport(c Canvas, vp tilemap.Viewport, m *tilemap.Map, imgs Images) int {
	ts := float64(r.opts.TileSize)
	view := vp.Rect()
	bounds := m.Bounds(ts)
	visible, ok := bounds.Intersect(view)
	if !ok {
		return 0
	}
	c.Fill(visible, r.opts.EmptyColor)

	size := ts * m.Scale
	r0, r1 := span(m.OffsetY, size, view.Y, view.Bottom(), m.Rows)
	c0, c1 := span(m.OffsetX, size, view.X, view.Right(), m.Columns)

	drawn := 0
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			cell, err := m.Cell(row, col)
			if err != nil || cell.Empty() {
				continue
			}
			rect := m.CellRect(row, col, ts)
			if !rect.Intersects(view) {
				continue
			}
			img, ok := imgs.Image(row, col)
			if !ok {
				continue
			}
			c.DrawTile(img, tilecache.Transform(uint8(cell.Rotation), m.Scale, r.opts.TileSize, rect.X, rect.Y))
			drawn++
		}
	}

	if r.opts.ShowGrid {
		drawGrid(c, bounds, m.Rows, m.Columns, size, r.opts.GridWidth, r.opts.GridColor)
	}
	return drawn
}

// span returns the inclusive index range of cells along one axis that may
// overlap [lo, hi).
func span(offset, size, lo, hi float64, n int) (int, int) {
	first := int(math.Floor((lo - offset) / size))
	last := int(math.Floor((hi - offset) / size))
	return max(first, 0), min(last, n-1)
}

func drawGrid(c Canvas, b tilemap.Rect, rows, cols int, size, width float64, col color.Color) {
	for i := 0; i <= rows; i++ {
		y := b.Y + float64(i)*size
		c.Line(b.X, y, b.Right(), y, width, col)
	}
	for i := 0; i <= cols; i++ {
		x := b.X + float64(i)*size
		c.Line(x, b.Y, x, b.Bottom(), width, col)
	}
}
