package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"strings"

	"golang.org/x/image/draw"

	"github.com/milk9111/tilemap/tilecache"
	"github.com/milk9111/tilemap/tilemap"
)

var (
	ErrOutOfMemory       = errors.New("render: out of memory")
	ErrUnsupportedFormat = errors.New("render: unsupported format")
)

type Format int

const (
	PNG Format = iota
	JPEG
)

func (f Format) String() string {
	if f == JPEG {
		return "jpeg"
	}
	return "png"
}

// Ext returns the file extension for the format, with the dot.
func (f Format) Ext() string {
	if f == JPEG {
		return ".jpg"
	}
	return ".png"
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	default:
		return PNG, fmt.Errorf("render: format %q: %w", s, ErrUnsupportedFormat)
	}
}

// CheckBudget fails with ErrOutOfMemory when a w x h RGBA buffer cannot be
// allocated within the pixel budget.
func CheckBudget(w, h int, maxPixels int64) error {
	if w <= 0 || h <= 0 || w > math.MaxInt32 || h > math.MaxInt32 {
		return fmt.Errorf("render: %dx%d: %w", w, h, ErrOutOfMemory)
	}
	px := int64(w) * int64(h)
	if px > math.MaxInt64/4 || (maxPixels > 0 && px > maxPixels) {
		return fmt.Errorf("render: %dx%d exceeds %d pixels: %w", w, h, maxPixels, ErrOutOfMemory)
	}
	return nil
}

// Compose renders the whole map at 1:1 tile size, ignoring the view.
func (r *Renderer) Compose(m *tilemap.Map, imgs Images, grid bool) (image.Image, error) {
	ts := r.opts.TileSize
	w, h := m.Columns*ts, m.Rows*ts
	if err := CheckBudget(w, h, r.opts.MaxPixels); err != nil {
		return nil, err
	}

	rc := NewRasterCanvas(w, h)
	rc.Fill(tilemap.Rect{Width: float64(w), Height: float64(h)}, r.opts.EmptyColor)
	m.Occupied(func(row, col int, cell tilemap.Cell) {
		img, ok := imgs.Image(row, col)
		if !ok {
			return
		}
		rc.DrawTile(img, tilecache.Transform(uint8(cell.Rotation), 1, ts, float64(col*ts), float64(row*ts)))
	})
	if grid {
		b := tilemap.Rect{Width: float64(w), Height: float64(h)}
		drawGrid(rc, b, m.Rows, m.Columns, float64(ts), r.opts.GridWidth, r.opts.GridColor)
	}
	return rc.Image(), nil
}

// ExportFull renders the whole map at 1:1 and encodes it.
func (r *Renderer) ExportFull(m *tilemap.Map, imgs Images, f Format, quality int) ([]byte, error) {
	img, err := r.Compose(m, imgs, r.opts.ExportGrid)
	if err != nil {
		return nil, err
	}
	return Encode(img, f, quality)
}

// ThumbnailSize returns the thumbnail dimensions for a rows x cols map: the
// longer side gets size pixels and the aspect ratio is kept.
func ThumbnailSize(rows, cols, size int) (int, int) {
	w, h := size, size
	switch {
	case rows > cols:
		w = size * cols / rows
	case rows < cols:
		h = size * rows / cols
	}
	return max(w, 1), max(h, 1)
}

// ExportThumbnail renders the map without grid lines and scales it down so
// its longer side is ThumbSize pixels.
func (r *Renderer) ExportThumbnail(m *tilemap.Map, imgs Images, f Format, quality int) ([]byte, error) {
	full, err := r.Compose(m, imgs, false)
	if err != nil {
		return nil, err
	}
	w, h := ThumbnailSize(m.Rows, m.Columns, r.opts.ThumbSize)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), full, full.Bounds(), draw.Src, nil)
	return Encode(dst, f, quality)
}

// Encode writes img in the given format. PNG ignores quality; JPEG quality
// is clamped to 1..100.
func Encode(img image.Image, f Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch f {
	case PNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("render: encode png: %w", err)
		}
	case JPEG:
		q := min(max(quality, 1), 100)
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return nil, fmt.Errorf("render: encode jpeg: %w", err)
		}
	default:
		return nil, fmt.Errorf("render: encode %v: %w", f, ErrUnsupportedFormat)
	}
	return buf.Bytes(), nil
}
