// Package ui is the interactive deck: a bubbletea model that drives a
// session from key and mouse input and paints its raster into the terminal.
package ui

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/linuxmatters/flux/internal/audio"
	"github.com/linuxmatters/flux/internal/cli"
	"github.com/linuxmatters/flux/internal/config"
	"github.com/linuxmatters/flux/internal/renderer"
	"github.com/linuxmatters/flux/internal/session"
	"github.com/linuxmatters/flux/internal/transport"
)

// Screen furniture around the waveform: border and left padding
const (
	borderSize  = 1
	paddingLeft = 1
	headerLines = 1
	footerLines = 4 // counter, position bar, profile, status
)

// frameMsg drives the frame loop once per display refresh
type frameMsg time.Time

// loadedMsg carries the result of decoding a file
type loadedMsg struct {
	path string
	buf  *audio.Buffer
	err  error
}

// exportDoneMsg reports a finished export
type exportDoneMsg struct {
	path string
	size int
	err  error
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusWarn
	statusError
)

// Options configures the deck
type Options struct {
	Path   string // File to load on start, may be empty
	OutDir string // Directory exports are written to
}

// Model implements the bubbletea model for the deck
type Model struct {
	sess *session.Session
	loop *transport.FrameLoop

	keys keyMap
	help help.Model
	bar  progress.Model

	path   string
	name   string
	outDir string

	width  int
	height int

	status     string
	statusKind statusKind

	now func() time.Time
}

// NewModel creates a deck over sess. loop must be the scheduler sess's
// transport was built with.
func NewModel(sess *session.Session, loop *transport.FrameLoop, opts Options) *Model {
	bar := progress.New(
		progress.WithGradient(string(cli.PhosphorDim), string(cli.PhosphorBright)),
		progress.WithoutPercentage(),
	)

	m := &Model{
		sess:   sess,
		loop:   loop,
		keys:   newKeyMap(),
		help:   help.New(),
		bar:    bar,
		path:   opts.Path,
		outDir: opts.OutDir,
		now:    time.Now,
	}

	preview := DefaultPreviewConfig()
	m.width = preview.Width + 2*borderSize + paddingLeft + 1
	m.height = preview.Height + 2*borderSize + headerLines + footerLines + 1

	if !sess.PlaybackAvailable() {
		m.keys.setPlayback(false)
		m.setWarning("playback unavailable")
	}
	return m
}

// Init starts the frame clock and loads the initial file
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	if m.path != "" {
		cmds = append(cmds, loadCmd(m.path))
	}
	return tea.Batch(cmds...)
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/config.FPS, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func loadCmd(path string) tea.Cmd {
	return func() tea.Msg {
		buf, err := audio.DecodeFile(path)
		return loadedMsg{path: path, buf: buf, err: err}
	}
}

// exportCmd runs a captured session export off the update loop
func exportCmd(export func() ([]byte, error), path string) tea.Cmd {
	return func() tea.Msg {
		data, err := export()
		if err != nil {
			return exportDoneMsg{err: err}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return exportDoneMsg{err: fmt.Errorf("failed to write export: %w", err)}
		}
		return exportDoneMsg{path: path, size: len(data)}
	}
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case frameMsg:
		m.loop.Flush()
		return m, tick()

	case loadedMsg:
		m.handleLoaded(msg)
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			log.Error("export failed", "err", msg.err)
			m.setError("Export Failed: " + msg.err.Error())
			return m, nil
		}
		log.Info("exported", "path", msg.path, "bytes", msg.size)
		m.setStatus(fmt.Sprintf("Exported %s (%s)", filepath.Base(msg.path), cli.FormatBytes(int64(msg.size))))
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleLoaded(msg loadedMsg) {
	if msg.err != nil {
		// Keep whatever was loaded before
		log.Error("load failed", "path", msg.path, "err", msg.err)
		m.setError("Load Failed: " + msg.err.Error())
		return
	}

	m.sess.LoadBuffer(msg.buf)
	m.path = msg.path
	m.name = strings.ToUpper(filepath.Base(msg.path))
	if m.sess.PlaybackAvailable() {
		m.setStatus("Loaded " + filepath.Base(msg.path))
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit

	case key.Matches(msg, m.keys.Play):
		if err := m.sess.Toggle(); err != nil {
			log.Error("play failed", "err", err)
			m.setError(err.Error())
		}

	case key.Matches(msg, m.keys.Stop):
		m.sess.Stop()

	case key.Matches(msg, m.keys.Rewind):
		m.sess.Seek(0)

	case key.Matches(msg, m.keys.Back):
		m.sess.Seek(m.sess.Position() - config.SeekStep)

	case key.Matches(msg, m.keys.Forward):
		m.sess.Seek(m.sess.Position() + config.SeekStep)

	case key.Matches(msg, m.keys.MarkIn):
		m.sess.MarkSelectionStart()

	case key.Matches(msg, m.keys.MarkOut):
		m.sess.MarkSelectionEnd()

	case key.Matches(msg, m.keys.SelectAll):
		m.sess.SelectAll()

	case key.Matches(msg, m.keys.Export):
		return m.export()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *Model) export() tea.Cmd {
	export := m.sess.SelectionExport()
	if export == nil {
		return nil
	}
	path := filepath.Join(m.outDir, session.ExportFileName(m.now()))
	m.setStatus("Exporting…")
	return exportCmd(export, path)
}

// handleMouse seeks to the column under a left press or drag
func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Button != tea.MouseButtonLeft {
		return
	}
	if msg.Action != tea.MouseActionPress && msg.Action != tea.MouseActionMotion {
		return
	}

	left, top, cfg := m.layout()
	x, y := msg.X-left, msg.Y-top
	if y < 0 || y >= cfg.Height || x < 0 || x >= cfg.Width {
		return
	}
	m.sess.SeekToX(float64(x), cfg.Width)
}

// layout returns the screen origin of the waveform and its size in cells
func (m *Model) layout() (left, top int, cfg PreviewConfig) {
	helpLines := lipgloss.Height(m.help.View(m.keys))
	cfg = PreviewConfig{
		Width:  max(m.width-2*borderSize-2*paddingLeft, 10),
		Height: max(m.height-2*borderSize-headerLines-footerLines-helpLines, 2),
	}
	return borderSize + paddingLeft, borderSize + headerLines, cfg
}

func (m *Model) setStatus(s string) {
	m.status, m.statusKind = s, statusInfo
}

func (m *Model) setError(s string) {
	m.status, m.statusKind = s, statusError
}

func (m *Model) setWarning(s string) {
	m.status, m.statusKind = s, statusWarn
}

// View renders the deck
func (m *Model) View() string {
	_, _, cfg := m.layout()
	st := m.sess.State()

	var s strings.Builder
	s.WriteString(m.renderHeader())
	s.WriteString("\n")
	s.WriteString(m.renderWave(cfg))
	s.WriteString("\n")
	s.WriteString(m.renderCounter(st))
	s.WriteString("\n")
	s.WriteString(m.renderPositionBar(cfg, st))
	s.WriteString("\n")
	s.WriteString(m.renderProfile())
	s.WriteString("\n")
	s.WriteString(m.renderStatus())
	s.WriteString("\n")
	s.WriteString(m.help.View(m.keys))

	return frameStyle.Render(s.String())
}

func (m *Model) renderHeader() string {
	title := titleStyle.Render(cli.Title)
	if m.sess.Buffer() == nil {
		return title + " " + noSignalStyle.Render("NO SIGNAL")
	}
	return title + " " + nameStyle.Render(m.name)
}

func (m *Model) renderWave(cfg PreviewConfig) string {
	buf := m.sess.Buffer()
	if buf == nil {
		return insertStyle.Render(RenderBlank(cfg, "INSERT TAPE TO BEGIN"))
	}

	// Redrawn every frame; the peak cache keeps this bounded by the width
	w, h := cfg.PixelSize()
	return RenderPreview(DownsampleFrame(m.sess.RenderFrame(w, h), cfg))
}

func (m *Model) renderCounter(st transport.State) string {
	badge := stopBadge.Render("■ STOP")
	if st.Playing {
		badge = playBadge.Render("▶ PLAY")
	}

	counter := counterStyle.Render(
		renderer.FormatTimecode(st.Position) + " / " + renderer.FormatTimecode(st.Duration))

	sel := labelStyle.Render("SEL ") + valueStyle.Render(
		renderer.FormatTimecode(st.SelectionStart)+"-"+renderer.FormatTimecode(st.SelectionEnd))

	return badge + "  " + counter + "  " + sel
}

func (m *Model) renderPositionBar(cfg PreviewConfig, st transport.State) string {
	m.bar.Width = cfg.Width
	ratio := 0.0
	if st.Duration > 0 {
		ratio = st.Position / st.Duration
	}
	return m.bar.ViewAs(ratio)
}

func (m *Model) renderProfile() string {
	if m.sess.Buffer() == nil {
		return labelStyle.Render("Audio │ ") + labelStyle.Italic(true).Render("no tape")
	}

	p := m.sess.Profile()
	var s strings.Builder
	s.WriteString(labelStyle.Bold(true).Render("Audio"))
	s.WriteString(labelStyle.Render(" │ "))
	s.WriteString(valueStyle.Render(fmt.Sprintf("%.1f kHz %dch", float64(p.SampleRate)/1000, p.Channels)))
	s.WriteString("  ")
	s.WriteString(labelStyle.Render("Peak:"))
	s.WriteString(" ")
	s.WriteString(valueStyle.Render(formatDB(p.Peak)))
	s.WriteString("  ")
	s.WriteString(labelStyle.Render("RMS:"))
	s.WriteString(" ")
	s.WriteString(valueStyle.Render(formatDB(p.RMS)))
	s.WriteString("  ")
	s.WriteString(labelStyle.Render("Range:"))
	s.WriteString(" ")
	s.WriteString(valueStyle.Render(formatDB(p.DynamicRange)))
	if p.ClippedSamples > 0 {
		s.WriteString("  ")
		s.WriteString(warnStyle.Render(fmt.Sprintf("CLIP %d", p.ClippedSamples)))
	}
	if p.DominantFrequency > 0 {
		s.WriteString("  ")
		s.WriteString(labelStyle.Render("Tone:"))
		s.WriteString(" ")
		s.WriteString(valueStyle.Render(fmt.Sprintf("%.0f Hz", p.DominantFrequency)))
	}
	return s.String()
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	switch m.statusKind {
	case statusError:
		return errorStyle.Render(m.status)
	case statusWarn:
		return warnStyle.Render(m.status)
	default:
		return statusStyle.Render(m.status)
	}
}

// formatDB converts a linear level or ratio to decibels
func formatDB(level float64) string {
	if level <= 0 {
		return "-inf dB"
	}
	return fmt.Sprintf("%.1f dB", 20*math.Log10(level))
}
