package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
	"testing/fstest"
	"time"

	"github.com/milk9111/tilemap/catalog"
	"github.com/milk9111/tilemap/gesture"
	"github.com/milk9111/tilemap/tilecache"
)

func TestDiffPointers(t *testing.T) {
	now := time.Unix(100, 0)
	tests := []struct {
		name      string
		prev, cur map[int]point
		expected  []gesture.Touch
	}{
		{
			name: "first finger down",
			prev: map[int]point{},
			cur:  map[int]point{1: {10, 20}},
			expected: []gesture.Touch{
				{Action: gesture.Down, Pointer: 1, X: 10, Y: 20, Time: now},
			},
		},
		{
			name:     "still finger reports nothing",
			prev:     map[int]point{1: {10, 20}},
			cur:      map[int]point{1: {10, 20}},
			expected: []gesture.Touch{},
		},
		{
			name: "move then second finger",
			prev: map[int]point{1: {10, 20}},
			cur:  map[int]point{1: {15, 20}, 2: {100, 100}},
			expected: []gesture.Touch{
				{Action: gesture.Move, Pointer: 1, X: 15, Y: 20, Time: now},
				{Action: gesture.Down, Pointer: 2, X: 100, Y: 100, Time: now},
			},
		},
		{
			name: "lift reports last position",
			prev: map[int]point{1: {15, 20}, 2: {100, 100}},
			cur:  map[int]point{2: {110, 100}},
			expected: []gesture.Touch{
				{Action: gesture.Move, Pointer: 2, X: 110, Y: 100, Time: now},
				{Action: gesture.Up, Pointer: 1, X: 15, Y: 20, Time: now},
			},
		},
		{
			name: "lifts sorted by pointer",
			prev: map[int]point{3: {1, 1}, 0: {2, 2}},
			cur:  map[int]point{},
			expected: []gesture.Touch{
				{Action: gesture.Up, Pointer: 0, X: 2, Y: 2, Time: now},
				{Action: gesture.Up, Pointer: 3, X: 1, Y: 1, Time: now},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := diffPointers(tt.prev, tt.cur, now)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d samples, got %d: %+v", len(tt.expected), len(got), got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Fatalf("sample %d: expected %+v, got %+v", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestGeoMMatchesTransform(t *testing.T) {
	for rot := uint8(0); rot < 4; rot++ {
		aff := tilecache.Transform(rot, 1.5, 64, 30, 40)
		g := geoM(aff)
		for _, p := range [][2]float64{{0, 0}, {64, 0}, {0, 64}, {64, 64}, {10, 50}} {
			ex, ey := tilecache.Apply(aff, p[0], p[1])
			gx, gy := g.Apply(p[0], p[1])
			if math.Abs(ex-gx) > 1e-9 || math.Abs(ey-gy) > 1e-9 {
				t.Fatalf("rot %d point %v: expected (%v,%v), got (%v,%v)", rot, p, ex, ey, gx, gy)
			}
		}
	}
}

func solidPNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestPreviewImage(t *testing.T) {
	cat := catalog.New()
	err := cat.AddFS(fstest.MapFS{
		"water/blue.png": {Data: solidPNG(t, color.RGBA{0, 0, 255, 255})},
		"junk/bad.png":   {Data: []byte("not an image")},
	})
	if err != nil {
		t.Fatalf("AddFS: %v", err)
	}

	for i, it := range cat.Items() {
		img, err := previewImage(cat, i, 32)
		switch {
		case it.Group == "junk" && !it.Random():
			if err == nil {
				t.Fatalf("expected decode error for %s", it.ID)
			}
			continue
		case err != nil:
			t.Fatalf("preview %s: %v", it.ID, err)
		}
		if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 32 {
			t.Fatalf("preview %s: expected 32x32, got %v", it.ID, b)
		}
	}

	if _, err := previewImage(cat, cat.Len(), 32); err == nil {
		t.Fatalf("expected error for index past the end")
	}
}

func TestPreviewRandomMarkersPerGroup(t *testing.T) {
	cat := catalog.New()
	err := cat.AddFS(fstest.MapFS{
		"lava/red.png":   {Data: solidPNG(t, color.RGBA{255, 0, 0, 255})},
		"water/blue.png": {Data: solidPNG(t, color.RGBA{0, 0, 255, 255})},
	})
	if err != nil {
		t.Fatalf("AddFS: %v", err)
	}

	var markers []int
	for i, it := range cat.Items() {
		if it.Random() {
			markers = append(markers, i)
		}
	}
	if len(markers) != 2 {
		t.Fatalf("expected 2 random markers, got %d", len(markers))
	}
	a, _ := cat.Item(markers[0])
	b, _ := cat.Item(markers[1])
	if a.ID != b.ID || a.Group == b.Group {
		t.Fatalf("expected one shared id across two groups, got %+v and %+v", a, b)
	}

	corner := func(i int) color.RGBA {
		img, err := previewImage(cat, i, 32)
		if err != nil {
			t.Fatalf("preview %d: %v", i, err)
		}
		r, g, b, a := img.At(1, 1).RGBA()
		return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
	}
	if ca, cb := corner(markers[0]), corner(markers[1]); ca == cb {
		t.Fatalf("expected distinct previews per group, both %v", ca)
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		n, per, expected int
	}{
		{0, 24, 1},
		{1, 24, 1},
		{24, 24, 1},
		{25, 24, 2},
		{49, 24, 3},
	}
	for _, tt := range tests {
		if got := pageCount(tt.n, tt.per); got != tt.expected {
			t.Fatalf("pageCount(%d, %d): expected %d, got %d", tt.n, tt.per, tt.expected, got)
		}
	}
}
