package renderer

import (
	"image"
	"image/color"
	"testing"
)

func TestLoadFont(t *testing.T) {
	face, err := LoadFont(18)
	if err != nil {
		t.Fatalf("LoadFont: %v", err)
	}
	defer face.Close()

	if h := face.Metrics().Height.Ceil(); h <= 0 {
		t.Errorf("font height = %d, want positive", h)
	}
}

func TestDrawTextTopRight(t *testing.T) {
	face, err := LoadFont(18)
	if err != nil {
		t.Fatalf("LoadFont: %v", err)
	}
	defer face.Close()

	img := image.NewRGBA(image.Rect(0, 0, 200, 60))
	ink := color.RGBA{R: 0, G: 255, B: 65, A: 255}
	DrawTextTopRight(img, face, ink, "1:23.45", 10)

	// Some glyph pixels land in the right half, none in the left quarter
	var right, left int
	for y := 0; y < 60; y++ {
		for x := 0; x < 200; x++ {
			if img.RGBAAt(x, y).G == 0 {
				continue
			}
			if x >= 100 {
				right++
			}
			if x < 50 {
				left++
			}
		}
	}
	if right == 0 {
		t.Error("no text pixels in the right half")
	}
	if left != 0 {
		t.Errorf("%d text pixels in the left quarter, want 0", left)
	}
}

func TestDrawText(t *testing.T) {
	face, err := LoadFont(12)
	if err != nil {
		t.Fatalf("LoadFont: %v", err)
	}
	defer face.Close()

	img := image.NewRGBA(image.Rect(0, 0, 80, 20))
	DrawText(img, face, color.RGBA{R: 255, A: 255}, "NO SIGNAL", 2, 14)

	var inked int
	for _, v := range img.Pix {
		if v != 0 {
			inked++
		}
	}
	if inked == 0 {
		t.Error("DrawText left the image blank")
	}
}
