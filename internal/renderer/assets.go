package renderer

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

var (
	monoOnce sync.Once
	monoFont *truetype.Font
	monoErr  error
)

// parseMono parses the embedded Go Mono TrueType font once
func parseMono() (*truetype.Font, error) {
	monoOnce.Do(func() {
		monoFont, monoErr = truetype.Parse(gomono.TTF)
		if monoErr != nil {
			monoErr = fmt.Errorf("parse Go Mono: %w", monoErr)
		}
	})
	return monoFont, monoErr
}

// LoadFont returns a Go Mono face at size points
func LoadFont(size float64) (font.Face, error) {
	f, err := parseMono()
	if err != nil {
		return nil, err
	}

	face := truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	return face, nil
}

// DrawText draws text with its baseline at (x, y)
func DrawText(img *image.RGBA, face font.Face, c color.RGBA, text string, x, y int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  freetype.Pt(x, y),
	}
	d.DrawString(text)
}

// DrawTextTopRight draws text inset by margin from the top right corner
func DrawTextTopRight(img *image.RGBA, face font.Face, c color.RGBA, text string, margin int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
	}

	// Measure text dimensions
	bounds, _ := d.BoundString(text)
	textWidth := (bounds.Max.X - bounds.Min.X).Ceil()
	textHeight := (bounds.Max.Y - bounds.Min.Y).Ceil()

	x := img.Bounds().Dx() - textWidth - margin
	y := textHeight + margin

	d.Dot = freetype.Pt(x, y)
	d.DrawString(text)
}
