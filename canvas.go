package main

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/math/f64"

	"github.com/milk9111/tilemap/tilemap"
)

// screenCanvas draws onto the ebiten screen. Tile images are uploaded to the
// GPU once and dropped when a frame no longer uses them.
type screenCanvas struct {
	screen *ebiten.Image
	images map[image.Image]*ebiten.Image
	used   map[image.Image]bool
}

func newScreenCanvas() *screenCanvas {
	return &screenCanvas{
		images: make(map[image.Image]*ebiten.Image),
		used:   make(map[image.Image]bool),
	}
}

func (c *screenCanvas) begin(screen *ebiten.Image) {
	c.screen = screen
	clear(c.used)
}

func (c *screenCanvas) end() {
	for src, img := range c.images {
		if !c.used[src] {
			img.Deallocate()
			delete(c.images, src)
		}
	}
	c.screen = nil
}

func (c *screenCanvas) Fill(r tilemap.Rect, col color.Color) {
	vector.DrawFilledRect(c.screen, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), col, false)
}

func (c *screenCanvas) DrawTile(src image.Image, t f64.Aff3) {
	img, ok := c.images[src]
	if !ok {
		img = ebiten.NewImageFromImage(src)
		c.images[src] = img
	}
	c.used[src] = true

	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM(t)
	op.Filter = ebiten.FilterLinear
	c.screen.DrawImage(img, op)
}

func (c *screenCanvas) Line(x0, y0, x1, y1, width float64, col color.Color) {
	vector.StrokeLine(c.screen, float32(x0), float32(y0), float32(x1), float32(y1), float32(width), col, true)
}

func geoM(t f64.Aff3) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, t[0])
	g.SetElement(0, 1, t[1])
	g.SetElement(0, 2, t[2])
	g.SetElement(1, 0, t[3])
	g.SetElement(1, 1, t[4])
	g.SetElement(1, 2, t[5])
	return g
}
