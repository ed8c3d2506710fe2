// Package tilecache decodes tile images once per identifier, scales them to
// the grid's cell size and tracks which cells reference them.
package tilecache

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var (
	ErrDecodeFailure = errors.New("tilecache: decode failure")
	ErrUnknownTile   = errors.New("tilecache: unknown tile")
)

// Source supplies the raw bytes for a tile identifier.
type Source interface {
	Open(id string) ([]byte, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(id string) ([]byte, error)

func (f SourceFunc) Open(id string) ([]byte, error) { return f(id) }

// Pos addresses one grid cell.
type Pos struct {
	Row, Col int
}

type entry struct {
	img  *image.RGBA
	refs int
}

// Cache owns decoded tile images keyed by identifier. Images are shared by
// every cell that references the same identifier and dropped when the last
// reference goes away. Decoded pixels are never modified after scaling.
type Cache struct {
	src      Source
	tileSize int

	entries map[string]*entry
	cells   map[Pos]string
}

func New(src Source, tileSize int) *Cache {
	return &Cache{
		src:      src,
		tileSize: tileSize,
		entries:  make(map[string]*entry),
		cells:    make(map[Pos]string),
	}
}

func (c *Cache) TileSize() int { return c.tileSize }

// SetSource swaps the byte source. Images already decoded are kept.
func (c *Cache) SetSource(src Source) { c.src = src }

// Resolve returns the scaled image for id, decoding it on first use.
func (c *Cache) Resolve(id string) (*image.RGBA, error) {
	if e, ok := c.entries[id]; ok {
		return e.img, nil
	}
	if c.src == nil {
		return nil, fmt.Errorf("tilecache: resolve %s: no source: %w", id, ErrUnknownTile)
	}
	data, err := c.src.Open(id)
	if err != nil {
		return nil, fmt.Errorf("tilecache: open %s: %w", id, errors.Join(ErrUnknownTile, err))
	}
	img, err := Decode(data, c.tileSize)
	if err != nil {
		return nil, fmt.Errorf("tilecache: resolve %s: %w", id, err)
	}
	c.entries[id] = &entry{img: img}
	return img, nil
}

// Decode decodes raw image bytes and scales the result to size x size.
func Decode(data []byte, size int) (*image.RGBA, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrDecodeFailure)
	}
	return Scale(src, size), nil
}

// Scale draws src into a new size x size RGBA image.
func Scale(src image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	if src.Bounds().Dx() == size && src.Bounds().Dy() == size {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
		return dst
	}
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// Place makes (row, col) reference id. The image is resolved first, so on
// failure the cell keeps whatever it referenced before.
func (c *Cache) Place(row, col int, id string) (*image.RGBA, error) {
	img, err := c.Resolve(id)
	if err != nil {
		return nil, err
	}
	p := Pos{row, col}
	if prev, ok := c.cells[p]; ok {
		if prev == id {
			return img, nil
		}
		c.Release(row, col)
	}
	c.cells[p] = id
	c.entries[id].refs++
	return img, nil
}

// Release drops the reference held by (row, col). The image is freed once
// no cell references it.
func (c *Cache) Release(row, col int) {
	p := Pos{row, col}
	id, ok := c.cells[p]
	if !ok {
		return
	}
	delete(c.cells, p)
	e, ok := c.entries[id]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		e.img = nil
		delete(c.entries, id)
	}
}

// ReleaseAll drops every reference and image.
func (c *Cache) ReleaseAll() {
	for id, e := range c.entries {
		e.img = nil
		delete(c.entries, id)
	}
	clear(c.cells)
}

// Image returns the image placed at (row, col).
func (c *Cache) Image(row, col int) (image.Image, bool) {
	id, ok := c.cells[Pos{row, col}]
	if !ok {
		return nil, false
	}
	e, ok := c.entries[id]
	if !ok || e.img == nil {
		return nil, false
	}
	return e.img, true
}

// ID returns the identifier referenced by (row, col).
func (c *Cache) ID(row, col int) (string, bool) {
	id, ok := c.cells[Pos{row, col}]
	return id, ok
}

// Refs returns how many cells reference id.
func (c *Cache) Refs(id string) int {
	if e, ok := c.entries[id]; ok {
		return e.refs
	}
	return 0
}

// Len returns the number of decoded images held.
func (c *Cache) Len() int { return len(c.entries) }

// Frozen is a point-in-time view of the cell images. It is safe to read
// from another goroutine while the cache keeps changing.
type Frozen map[Pos]image.Image

func (f Frozen) Image(row, col int) (image.Image, bool) {
	img, ok := f[Pos{row, col}]
	return img, ok
}

// Snapshot captures the current cell images.
func (c *Cache) Snapshot() Frozen {
	out := make(Frozen, len(c.cells))
	for p, id := range c.cells {
		if e, ok := c.entries[id]; ok && e.img != nil {
			out[p] = e.img
		}
	}
	return out
}
