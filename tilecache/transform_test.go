package tilecache

import (
	"testing"
)

func TestTransformCorners(t *testing.T) {
	cases := []struct {
		name   string
		rot    uint8
		scale  float64
		x, y   float64
		wantTL [2]float64 // where the source top-left corner lands
	}{
		{"none", 0, 1, 0, 0, [2]float64{0, 0}},
		{"quarter", 1, 1, 0, 0, [2]float64{64, 0}},
		{"half", 2, 1, 0, 0, [2]float64{64, 64}},
		{"three_quarters", 3, 1, 0, 0, [2]float64{0, 64}},
		{"quarter_scaled_offset", 1, 2, 10, 20, [2]float64{138, 20}},
		{"wraps", 5, 1, 0, 0, [2]float64{64, 0}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tr := Transform(c.rot, c.scale, 64, c.x, c.y)
			x, y := Apply(tr, 0, 0)
			if x != c.wantTL[0] || y != c.wantTL[1] {
				t.Fatalf("expected top-left at %v, got (%v,%v)", c.wantTL, x, y)
			}
			// the tile always covers the same destination square
			cx, cy := Apply(tr, 32, 32)
			wantC := [2]float64{c.x + 32*c.scale, c.y + 32*c.scale}
			if cx != wantC[0] || cy != wantC[1] {
				t.Fatalf("expected centre at %v, got (%v,%v)", wantC, cx, cy)
			}
		})
	}
}
