package catalog

import (
	"bytes"
	"log"
	"math"
	"sync"

	"github.com/fogleman/gg"
)

const builtinSize = 64

type painter func(dc *gg.Context, s float64)

var builtinPainters = []struct {
	name  string
	paint painter
}{
	{"grass", paintGrass},
	{"water", paintWater},
	{"sand", paintSand},
	{"stone", paintStone},
	{"dirt", paintDirt},
	{"road", paintRoad},
}

var (
	builtinOnce  sync.Once
	builtinBytes map[string][]byte
)

// BuiltinGroup returns the generated tile set that ships with the editor.
func BuiltinGroup() Group {
	g := Group{Name: "builtin"}
	for _, p := range builtinPainters {
		g.Tiles = append(g.Tiles, BuiltinPrefix+p.name)
	}
	return g
}

func builtinTile(name string) ([]byte, bool) {
	builtinOnce.Do(func() {
		builtinBytes = make(map[string][]byte, len(builtinPainters))
		for _, p := range builtinPainters {
			dc := gg.NewContext(builtinSize, builtinSize)
			p.paint(dc, builtinSize)
			var buf bytes.Buffer
			if err := dc.EncodePNG(&buf); err != nil {
				log.Printf("catalog: encode builtin %s: %v", p.name, err)
				continue
			}
			builtinBytes[p.name] = buf.Bytes()
		}
	})
	data, ok := builtinBytes[name]
	return data, ok
}

func paintGrass(dc *gg.Context, s float64) {
	dc.SetRGB255(76, 140, 56)
	dc.Clear()
	dc.SetRGB255(52, 110, 40)
	dc.SetLineWidth(2)
	for i := 0; i < 8; i++ {
		x := s/16 + float64(i)*s/8
		y := s/4 + float64((i*37)%5)*s/8
		dc.DrawLine(x, y, x+s/32, y-s/8)
	}
	dc.Stroke()
}

func paintWater(dc *gg.Context, s float64) {
	dc.SetRGB255(48, 96, 180)
	dc.Clear()
	dc.SetRGBA255(200, 220, 255, 160)
	dc.SetLineWidth(2)
	for row := 1; row < 4; row++ {
		y := float64(row) * s / 4
		dc.DrawArc(s/4, y, s/8, math.Pi, 2*math.Pi)
		dc.Stroke()
		dc.DrawArc(3*s/4, y, s/8, math.Pi, 2*math.Pi)
		dc.Stroke()
	}
}

func paintSand(dc *gg.Context, s float64) {
	dc.SetRGB255(220, 200, 140)
	dc.Clear()
	dc.SetRGB255(190, 165, 105)
	for i := 0; i < 12; i++ {
		x := math.Mod(float64(i*23), s)
		y := math.Mod(float64(i*41), s)
		dc.DrawCircle(x, y, 1.5)
	}
	dc.Fill()
}

func paintStone(dc *gg.Context, s float64) {
	dc.SetRGB255(128, 128, 128)
	dc.Clear()
	dc.SetRGB255(90, 90, 90)
	dc.SetLineWidth(2)
	h := s / 4
	for row := 0; row < 4; row++ {
		y := float64(row) * h
		dc.DrawLine(0, y, s, y)
		shift := 0.0
		if row%2 == 1 {
			shift = s / 4
		}
		for x := shift; x < s; x += s / 2 {
			dc.DrawLine(x, y, x, y+h)
		}
	}
	dc.Stroke()
}

func paintDirt(dc *gg.Context, s float64) {
	dc.SetRGB255(120, 84, 50)
	dc.Clear()
	dc.SetRGB255(96, 64, 36)
	for i := 0; i < 6; i++ {
		x := math.Mod(float64(i*29+7), s)
		y := math.Mod(float64(i*17+11), s)
		dc.DrawEllipse(x, y, 4, 2.5)
	}
	dc.Fill()
}

// road runs top to bottom, so rotating it is visible
func paintRoad(dc *gg.Context, s float64) {
	dc.SetRGB255(76, 140, 56)
	dc.Clear()
	dc.SetRGB255(70, 70, 70)
	dc.DrawRectangle(s/4, 0, s/2, s)
	dc.Fill()
	dc.SetRGB255(240, 220, 60)
	dc.DrawRectangle(s/2-2, s/8, 4, s/4)
	dc.Fill()
	dc.SetRGB255(240, 240, 240)
	dc.DrawRectangle(s/4, 0, s/2, s/16)
	dc.Fill()
}
