package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

// PreviewConfig holds the size of the terminal waveform display
type PreviewConfig struct {
	Width  int // Width in terminal cells
	Height int // Height in terminal cells
}

// DefaultPreviewConfig returns the display size used before the first
// window size message arrives
func DefaultPreviewConfig() PreviewConfig {
	return PreviewConfig{
		Width:  76,
		Height: 14,
	}
}

// PixelSize returns the raster size that maps one pixel to each half cell.
// Every cell shows two vertically stacked pixels with the ▀ glyph.
func (c PreviewConfig) PixelSize() (width, height int) {
	return c.Width, c.Height * 2
}

// DownsampleFrame reduces a raster to Width × 2·Height pixels. Each output
// pixel averages the source region it covers; at the native pixel size it is
// a straight copy.
func DownsampleFrame(frame *image.RGBA, config PreviewConfig) [][]color.RGBA {
	bounds := frame.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	outWidth, outHeight := config.PixelSize()
	if outWidth <= 0 || outHeight <= 0 || srcWidth == 0 || srcHeight == 0 {
		return nil
	}

	preview := make([][]color.RGBA, outHeight)
	for row := 0; row < outHeight; row++ {
		preview[row] = make([]color.RGBA, outWidth)

		// Source region covered by this output row
		y0 := row * srcHeight / outHeight
		y1 := max((row+1)*srcHeight/outHeight, y0+1)

		for col := 0; col < outWidth; col++ {
			x0 := col * srcWidth / outWidth
			x1 := max((col+1)*srcWidth/outWidth, x0+1)

			// Average all pixels in the region
			var sumR, sumG, sumB uint32
			pixelCount := uint32(0)

			for y := y0; y < y1 && y < srcHeight; y++ {
				for x := x0; x < x1 && x < srcWidth; x++ {
					off := frame.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
					p := frame.Pix[off : off+3 : off+3]
					sumR += uint32(p[0])
					sumG += uint32(p[1])
					sumB += uint32(p[2])
					pixelCount++
				}
			}

			if pixelCount > 0 {
				preview[row][col] = color.RGBA{
					R: uint8(sumR / pixelCount),
					G: uint8(sumG / pixelCount),
					B: uint8(sumB / pixelCount),
					A: 255,
				}
			}
		}
	}

	return preview
}

// RenderPreview converts a pixel grid to lines of ▀ cells using ANSI 24-bit
// colour: the foreground paints the upper pixel and the background the lower
func RenderPreview(preview [][]color.RGBA) string {
	if len(preview) == 0 {
		return ""
	}

	var sb strings.Builder
	for row := 0; row+1 < len(preview); row += 2 {
		if row > 0 {
			sb.WriteByte('\n')
		}
		top, bottom := preview[row], preview[row+1]
		for x := range top {
			t, b := top[x], bottom[x]
			fmt.Fprintf(&sb, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀", t.R, t.G, t.B, b.R, b.G, b.B)
		}
		sb.WriteString("\x1b[0m")
	}

	return sb.String()
}

// RenderBlank returns a Height-line block of spaces with text centred on the
// middle line, used when there is no raster to show
func RenderBlank(config PreviewConfig, text string) string {
	lines := make([]string, max(config.Height, 1))
	blank := strings.Repeat(" ", max(config.Width, 0))
	for i := range lines {
		lines[i] = blank
	}

	mid := len(lines) / 2
	pad := max((config.Width-len([]rune(text)))/2, 0)
	line := strings.Repeat(" ", pad) + text
	if n := len([]rune(line)); n < config.Width {
		line += strings.Repeat(" ", config.Width-n)
	}
	lines[mid] = line

	return strings.Join(lines, "\n")
}
