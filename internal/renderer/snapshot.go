package renderer

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/linuxmatters/flux/internal/audio"
	"github.com/linuxmatters/flux/internal/config"
	"golang.org/x/image/draw"
)

// WriteSnapshot renders one labelled frame of buf and encodes it as PNG to w.
// The position and duration timecodes go in the top right and any selection
// span in the bottom left.
func WriteSnapshot(w io.Writer, buf *audio.Buffer, state State, width, height int, palette Palette) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid snapshot size %dx%d", width, height)
	}

	frame := NewFrame(width, height, palette)
	defer frame.Release()

	// Copy out of the frame so the pooled raster can be returned
	img := Scale(frame.Draw(buf, state), width, height)

	face, err := LoadFont(config.LabelFontSize)
	if err != nil {
		return fmt.Errorf("failed to load label font: %w", err)
	}
	defer face.Close()

	label := FormatTimecode(state.Position) + " / " + FormatTimecode(state.Duration)
	DrawTextTopRight(img, face, palette.Trace, label, config.LabelMargin)

	if state.SelectionEnd > state.SelectionStart {
		sel := "SEL " + FormatTimecode(state.SelectionStart) + " - " + FormatTimecode(state.SelectionEnd)
		DrawText(img, face, palette.Trace, sel, config.LabelMargin, height-config.LabelMargin)
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// Scale resamples src to width × height with bilinear filtering
func Scale(src *image.RGBA, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	if width <= 0 || height <= 0 {
		return dst
	}

	if src.Bounds().Dx() == width && src.Bounds().Dy() == height {
		draw.Copy(dst, image.Point{}, src, src.Bounds(), draw.Src, nil)
		return dst
	}

	// ApproxBiLinear is the fastest bilinear implementation
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
