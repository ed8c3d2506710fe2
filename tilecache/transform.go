package tilecache

import (
	"golang.org/x/image/math/f64"
)

// quarter turns as exact (cos, sin) pairs
var quarterTurns = [4][2]float64{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}

// Transform returns the affine map from tile pixel space to destination
// space: rotate clockwise by rot quarter turns about the tile centre, scale
// by scale, then move the tile's top-left corner to (x, y).
func Transform(rot uint8, scale float64, tileSize int, x, y float64) f64.Aff3 {
	cs := quarterTurns[rot%4]
	cos, sin := cs[0], cs[1]
	cx := float64(tileSize) / 2
	cy := cx
	return f64.Aff3{
		scale * cos, -scale * sin, scale*(cx-cos*cx+sin*cy) + x,
		scale * sin, scale * cos, scale*(cy-sin*cx-cos*cy) + y,
	}
}

// Apply maps the point (x, y) through t.
func Apply(t f64.Aff3, x, y float64) (float64, float64) {
	return t[0]*x + t[1]*y + t[2], t[3]*x + t[4]*y + t[5]
}
