package render

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/milk9111/tilemap/tilemap"
)

// RasterCanvas draws into an in-memory RGBA image.
type RasterCanvas struct {
	dc *gg.Context
}

func NewRasterCanvas(w, h int) *RasterCanvas {
	return &RasterCanvas{dc: gg.NewContext(w, h)}
}

func (rc *RasterCanvas) Fill(r tilemap.Rect, c color.Color) {
	rc.dc.SetColor(c)
	rc.dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	rc.dc.Fill()
}

func (rc *RasterCanvas) DrawTile(img image.Image, t f64.Aff3) {
	dst, ok := rc.dc.Image().(*image.RGBA)
	if !ok {
		return
	}
	draw.NearestNeighbor.Transform(dst, t, img, img.Bounds(), draw.Over, nil)
}

func (rc *RasterCanvas) Line(x0, y0, x1, y1, width float64, c color.Color) {
	rc.dc.SetColor(c)
	rc.dc.SetLineWidth(width)
	rc.dc.DrawLine(x0, y0, x1, y1)
	rc.dc.Stroke()
}

func (rc *RasterCanvas) Image() image.Image { return rc.dc.Image() }

// Context exposes the underlying gg context for callers that need text or paths.
func (rc *RasterCanvas) Context() *gg.Context { return rc.dc }
