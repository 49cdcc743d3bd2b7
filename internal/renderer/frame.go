package renderer

import (
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/linuxmatters/flux/internal/audio"
	"github.com/linuxmatters/flux/internal/config"
)

// State is the transport snapshot a frame is drawn from
type State struct {
	Position       float64
	SelectionStart float64
	SelectionEnd   float64
	Duration       float64
}

// Palette holds the layer colours. Grid and Selection carry their own alpha.
type Palette struct {
	Background color.RGBA
	Trace      color.RGBA
	Grid       color.RGBA
	Playhead   color.RGBA
	Selection  color.RGBA
}

// NewPalette builds the phosphor palette, applying any runtime overrides
func NewPalette(rc *config.RuntimeConfig) Palette {
	tr, tg, tb := rc.GetTraceColor()
	pr, pg, pb := rc.GetPlayheadColor()
	return Palette{
		Background: color.RGBA{R: config.BackgroundColorR, G: config.BackgroundColorG, B: config.BackgroundColorB, A: 255},
		Trace:      color.RGBA{R: tr, G: tg, B: tb, A: 255},
		Grid:       color.RGBA{R: tr, G: tg, B: tb, A: alphaByte(config.GridAlpha)},
		Playhead:   color.RGBA{R: pr, G: pg, B: pb, A: 255},
		Selection: color.RGBA{
			R: config.SelectionColorR, G: config.SelectionColorG, B: config.SelectionColorB,
			A: alphaByte(config.SelectionAlpha),
		},
	}
}

func alphaByte(a float64) uint8 {
	return uint8(math.Round(a * 255))
}

var framePool = sync.Pool{
	New: func() interface{} {
		return image.NewRGBA(image.Rect(0, 0, config.DefaultWidth, config.DefaultHeight))
	},
}

// Frame renders waveform rasters at a fixed viewport size
type Frame struct {
	img     *image.RGBA
	width   int
	height  int
	palette Palette
	peaks   *PeakCache

	// Pre-computed background row for fast clears
	bgRow []byte
}

// NewFrame creates a frame renderer for a width × height viewport
func NewFrame(width, height int, palette Palette) *Frame {
	f := &Frame{
		palette: palette,
		peaks:   &PeakCache{},
	}
	f.Resize(width, height)
	return f
}

// Resize changes the viewport. The raster is reused when the size is unchanged.
func (f *Frame) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if f.img != nil && width == f.width && height == f.height {
		return
	}
	f.Release()

	f.width, f.height = width, height

	img := framePool.Get().(*image.RGBA)
	if img.Bounds().Dx() != width || img.Bounds().Dy() != height {
		img = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	f.img = img

	bg := f.palette.Background
	f.bgRow = make([]byte, width*4)
	for x := 0; x < width; x++ {
		copy(f.bgRow[x*4:], []byte{bg.R, bg.G, bg.B, 255})
	}
}

// Size returns the viewport dimensions
func (f *Frame) Size() (width, height int) {
	return f.width, f.height
}

// Peaks exposes the frame's column cache
func (f *Frame) Peaks() *PeakCache {
	return f.peaks
}

// Draw renders buf under state and returns the raster. The returned image is
// owned by the frame and overwritten by the next Draw.
func (f *Frame) Draw(buf *audio.Buffer, state State) *image.RGBA {
	if f.width == 0 || f.height == 0 {
		return f.img
	}

	f.clear()
	f.drawGrid()

	if buf == nil {
		return f.img
	}

	f.drawTrace(f.peaks.Get(buf, f.width))

	if state.Duration > 0 {
		f.drawPlayhead(state)
		f.drawSelection(state)
	}

	return f.img
}

// Release returns the raster to the pool
func (f *Frame) Release() {
	if f.img != nil {
		framePool.Put(f.img)
		f.img = nil
	}
}

// clear fills the raster with the background colour row by row
func (f *Frame) clear() {
	for y := 0; y < f.height; y++ {
		off := y * f.img.Stride
		copy(f.img.Pix[off:off+f.width*4], f.bgRow)
	}
}

func (f *Frame) drawGrid() {
	c := f.palette.Grid
	for i := 0; i < config.GridColumns; i++ {
		f.blendVLine(i*f.width/config.GridColumns, 0, f.height, c)
	}
	for i := 0; i < config.GridRows; i++ {
		f.blendHLine(i*f.height/config.GridRows, c)
	}
}

func (f *Frame) drawTrace(cols []Column) {
	center := float64(f.height) / 2
	amp := float64(f.height) / config.AmplitudeHeadroom

	for x, col := range cols {
		if col.N == 0 {
			continue
		}
		y0 := int(math.Round(center + float64(col.Min)*amp))
		y1 := int(math.Round(center + float64(col.Max)*amp))
		if y0 > y1 {
			y0, y1 = y1, y0
		}
		f.fillVLine(x, y0, y1+1, f.palette.Trace)
	}
}

func (f *Frame) drawPlayhead(state State) {
	x := columnAt(TimeToX(state.Position, f.width, state.Duration), f.width)
	if x < 0 {
		return
	}
	f.fillVLine(x, 0, f.height, f.palette.Playhead)
}

func (f *Frame) drawSelection(state State) {
	startX := TimeToX(state.SelectionStart, f.width, state.Duration)
	endX := TimeToX(state.SelectionEnd, f.width, state.Duration)
	if endX < startX {
		startX, endX = endX, startX
	}

	// Fill covers every column the range touches
	lo := max(int(math.Floor(startX)), 0)
	hi := min(int(math.Ceil(endX)), f.width)
	for x := lo; x < hi; x++ {
		f.blendVLine(x, 0, f.height, f.palette.Selection)
	}

	// Dashed borders in the trace colour
	for _, bx := range []float64{startX, endX} {
		x := columnAt(bx, f.width)
		if x < 0 {
			continue
		}
		period := config.SelectionDashOn + config.SelectionDashOff
		for y := 0; y < f.height; y++ {
			if y%period < config.SelectionDashOn {
				f.setPixel(x, y, f.palette.Trace)
			}
		}
	}
}

// fillVLine writes an opaque vertical run [y0, y1) at column x, clipped
func (f *Frame) fillVLine(x, y0, y1 int, c color.RGBA) {
	if x < 0 || x >= f.width {
		return
	}
	y0, y1 = max(y0, 0), min(y1, f.height)
	for y := y0; y < y1; y++ {
		f.setPixel(x, y, c)
	}
}

// blendVLine composites c over column x for rows [y0, y1)
func (f *Frame) blendVLine(x, y0, y1 int, c color.RGBA) {
	if x < 0 || x >= f.width {
		return
	}
	y0, y1 = max(y0, 0), min(y1, f.height)
	for y := y0; y < y1; y++ {
		f.blendPixel(x, y, c)
	}
}

// blendHLine composites c over the whole of row y
func (f *Frame) blendHLine(y int, c color.RGBA) {
	if y < 0 || y >= f.height {
		return
	}
	for x := 0; x < f.width; x++ {
		f.blendPixel(x, y, c)
	}
}

func (f *Frame) setPixel(x, y int, c color.RGBA) {
	off := y*f.img.Stride + x*4
	pix := f.img.Pix[off : off+4 : off+4]
	pix[0], pix[1], pix[2], pix[3] = c.R, c.G, c.B, 255
}

// blendPixel applies source-over with c.A as a straight alpha
func (f *Frame) blendPixel(x, y int, c color.RGBA) {
	off := y*f.img.Stride + x*4
	pix := f.img.Pix[off : off+4 : off+4]
	a := uint32(c.A)
	inv := 255 - a
	pix[0] = uint8((uint32(c.R)*a + uint32(pix[0])*inv + 127) / 255)
	pix[1] = uint8((uint32(c.G)*a + uint32(pix[1])*inv + 127) / 255)
	pix[2] = uint8((uint32(c.B)*a + uint32(pix[2])*inv + 127) / 255)
	pix[3] = 255
}
