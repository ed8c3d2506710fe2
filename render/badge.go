package render

import (
	"image"
	"log"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	badgeFontOnce sync.Once
	badgeFont     *truetype.Font
)

func loadBadgeFont() *truetype.Font {
	badgeFontOnce.Do(func() {
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			log.Printf("render: parse badge font: %v", err)
			return
		}
		badgeFont = f
	})
	return badgeFont
}

// RandomBadge draws base at size x size with a "?" mark over it. It is the
// picker preview for a random group.
func RandomBadge(base image.Image, size int) image.Image {
	dc := gg.NewContext(size, size)
	if base != nil {
		dst := dc.Image().(*image.RGBA)
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), base, base.Bounds(), draw.Over, nil)
	}

	s := float64(size)
	dc.SetRGBA255(0, 0, 0, 140)
	dc.DrawCircle(s/2, s/2, s/3)
	dc.Fill()

	if f := loadBadgeFont(); f != nil {
		dc.SetFontFace(truetype.NewFace(f, &truetype.Options{
			Size:    s / 2,
			DPI:     72,
			Hinting: font.HintingFull,
		}))
		dc.SetRGB255(255, 255, 255)
		dc.DrawStringAnchored("?", s/2, s/2, 0.5, 0.35)
	}
	return dc.Image()
}
