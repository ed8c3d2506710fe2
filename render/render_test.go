package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/math/f64"

	"github.com/milk9111/tilemap/tilecache"
	"github.com/milk9111/tilemap/tilemap"
)

var (
	red  = color.RGBA{255, 0, 0, 255}
	blue = color.RGBA{0, 0, 255, 255}
)

func solid(size int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// halves is red on top and blue on the bottom.
func halves(size int) *image.RGBA {
	img := solid(size, blue)
	for y := 0; y < size/2; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, red)
		}
	}
	return img
}

func sameRGB(a, b color.Color) bool {
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	return ar>>8 == br>>8 && ag>>8 == bg>>8 && ab>>8 == bb>>8
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.ExportGrid = false
	return opts
}

func TestExportFullQuadrants(t *testing.T) {
	m, _ := tilemap.New(2, 2)
	_ = m.SetCell(0, 0, "assets:red.png", 0)
	_ = m.SetCell(1, 1, "assets:red.png", 0)
	imgs := tilecache.Frozen{
		{Row: 0, Col: 0}: solid(64, red),
		{Row: 1, Col: 1}: solid(64, red),
	}

	r := New(testOptions())
	data, err := r.ExportFull(m, imgs, PNG, 90)
	if err != nil {
		t.Fatalf("ExportFull: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 128, 128) {
		t.Fatalf("expected 128x128, got %v", img.Bounds())
	}

	empty := testOptions().EmptyColor
	cases := []struct {
		x, y int
		want color.Color
	}{
		{32, 32, red},
		{96, 96, red},
		{96, 32, empty},
		{32, 96, empty},
		{0, 0, red},
		{127, 0, empty},
	}
	for _, c := range cases {
		if got := img.At(c.x, c.y); !sameRGB(got, c.want) {
			t.Fatalf("pixel (%d,%d): expected %v, got %v", c.x, c.y, c.want, got)
		}
	}
}

func TestExportRotation(t *testing.T) {
	m, _ := tilemap.New(1, 1)
	_ = m.SetCell(0, 0, "assets:halves.png", 1)
	imgs := tilecache.Frozen{{Row: 0, Col: 0}: halves(64)}

	img, err := New(testOptions()).Compose(m, imgs, false)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	// a quarter turn clockwise moves the red top half to the right
	if !sameRGB(img.At(54, 32), red) || !sameRGB(img.At(10, 32), blue) {
		t.Fatalf("unexpected rotation: right %v left %v", img.At(54, 32), img.At(10, 32))
	}
}

func TestExportGridLines(t *testing.T) {
	m, _ := tilemap.New(2, 2)
	imgs := tilecache.Frozen{}

	plain, _ := New(testOptions()).Compose(m, imgs, false)
	gridded, _ := New(testOptions()).Compose(m, imgs, true)
	if sameRGB(plain.At(64, 20), gridded.At(64, 20)) {
		t.Fatalf("expected grid line at x=64")
	}
	if !sameRGB(plain.At(32, 20), gridded.At(32, 20)) {
		t.Fatalf("grid leaked into cell interior")
	}
}

func TestExportBudget(t *testing.T) {
	m, _ := tilemap.New(20, 20)
	_ = m.SetCell(3, 3, "assets:red.png", 2)
	before, _ := m.Serialize()

	opts := testOptions()
	opts.MaxPixels = 1000
	_, err := New(opts).ExportFull(m, tilecache.Frozen{}, PNG, 90)
	if !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("expected ErrOutOfMemory, got %v", err)
	}
	after, _ := m.Serialize()
	if !bytes.Equal(before, after) {
		t.Fatalf("failed export changed the map")
	}

	if err := CheckBudget(1<<31, 2, 0); !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("expected overflow to fail, got %v", err)
	}
}

func TestThumbnail(t *testing.T) {
	cases := []struct {
		name       string
		rows, cols int
		w, h       int
	}{
		{"square", 3, 3, 64, 64},
		{"wide", 2, 4, 64, 32},
		{"tall", 5, 1, 12, 64},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m, _ := tilemap.New(c.rows, c.cols)
			_ = m.SetCell(0, 0, "assets:red.png", 0)
			imgs := tilecache.Frozen{{Row: 0, Col: 0}: solid(64, red)}
			data, err := New(testOptions()).ExportThumbnail(m, imgs, PNG, 9)
			if err != nil {
				t.Fatalf("ExportThumbnail: %v", err)
			}
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if img.Bounds().Dx() != c.w || img.Bounds().Dy() != c.h {
				t.Fatalf("expected %dx%d, got %v", c.w, c.h, img.Bounds())
			}
		})
	}
}

func TestEncodeFormats(t *testing.T) {
	img := solid(8, red)
	if _, err := Encode(img, JPEG, 0); err != nil {
		t.Fatalf("jpeg: %v", err)
	}
	if _, err := Encode(img, Format(7), 90); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if f, err := ParseFormat("JPG"); err != nil || f != JPEG {
		t.Fatalf("ParseFormat: %v %v", f, err)
	}
	if _, err := ParseFormat("tiff"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

type recordingCanvas struct {
	fills []tilemap.Rect
	tiles []f64.Aff3
	lines int
}

func (rc *recordingCanvas) Fill(r tilemap.Rect, _ color.Color)          { rc.fills = append(rc.fills, r) }
func (rc *recordingCanvas) DrawTile(_ image.Image, t f64.Aff3)          { rc.tiles = append(rc.tiles, t) }
func (rc *recordingCanvas) Line(_, _, _, _, _ float64, _ color.Color) { rc.lines++ }

func TestDrawViewportCulls(t *testing.T) {
	m, _ := tilemap.New(10, 10)
	imgs := tilecache.Frozen{}
	tile := solid(64, red)
	for r := 0; r < 10; r++ {
		for c := 0; c < 10; c++ {
			_ = m.SetCell(r, c, "assets:red.png", 0)
			imgs[tilecache.Pos{Row: r, Col: c}] = tile
		}
	}

	cases := []struct {
		name      string
		offX      float64
		scale     float64
		wantTiles int
	}{
		{"origin", 0, 1, 4},
		{"shifted", -64, 1, 4},
		{"zoomed_out", 0, 0.5, 16},
		{"off_grid_edge", -600, 1, 2},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m.OffsetX, m.OffsetY, m.Scale = c.offX, 0, c.scale
			rc := &recordingCanvas{}
			n := New(DefaultOptions()).DrawViewport(rc, tilemap.Viewport{Width: 100, Height: 100}, m, imgs)
			if n != c.wantTiles || len(rc.tiles) != c.wantTiles {
				t.Fatalf("expected %d tiles, got %d (%d recorded)", c.wantTiles, n, len(rc.tiles))
			}
			if rc.lines != 22 {
				t.Fatalf("expected 22 grid lines, got %d", rc.lines)
			}
			if len(rc.fills) != 1 {
				t.Fatalf("expected one background fill, got %d", len(rc.fills))
			}
		})
	}
}

func TestDrawViewportHiddenGrid(t *testing.T) {
	m, _ := tilemap.New(2, 2)
	opts := DefaultOptions()
	opts.ShowGrid = false
	rc := &recordingCanvas{}
	New(opts).DrawViewport(rc, tilemap.Viewport{Width: 500, Height: 500}, m, tilecache.Frozen{})
	if rc.lines != 0 {
		t.Fatalf("expected no grid lines, got %d", rc.lines)
	}
	want := tilemap.Rect{Width: 128, Height: 128}
	if len(rc.fills) != 1 || rc.fills[0] != want {
		t.Fatalf("expected fill %v, got %v", want, rc.fills)
	}
}

func TestRandomBadge(t *testing.T) {
	img := RandomBadge(solid(16, blue), 48)
	if img.Bounds() != image.Rect(0, 0, 48, 48) {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	if !sameRGB(img.At(1, 1), blue) {
		t.Fatalf("expected base tile in corner, got %v", img.At(1, 1))
	}
}
