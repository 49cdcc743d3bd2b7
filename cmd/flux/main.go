package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/linuxmatters/flux/internal/audio"
	"github.com/linuxmatters/flux/internal/cli"
	"github.com/linuxmatters/flux/internal/config"
	"github.com/linuxmatters/flux/internal/device"
	"github.com/linuxmatters/flux/internal/encoder"
	"github.com/linuxmatters/flux/internal/renderer"
	"github.com/linuxmatters/flux/internal/session"
	"github.com/linuxmatters/flux/internal/transport"
	"github.com/linuxmatters/flux/internal/ui"
)

// version is set via ldflags at build time
// Local dev builds: "dev"
// Release builds: git tag (e.g. "v0.1.0")
var version = "dev"

var CLI struct {
	Input         string  `arg:"" name:"input" help:"Audio file to load (wav, mp3, flac, ogg, aiff)" optional:""`
	Export        string  `help:"Export --from..--to of <input> to this WAV file and exit" placeholder:"out.wav" group:"headless"`
	From          float64 `help:"Export start in seconds" default:"0" group:"headless"`
	To            float64 `help:"Export end in seconds, negative for the end of the file" default:"-1" group:"headless"`
	Snapshot      string  `help:"Render one frame of <input> to this PNG file and exit" placeholder:"out.png" group:"headless"`
	At            float64 `help:"Playhead position for --snapshot in seconds" default:"0" group:"headless"`
	Width         int     `help:"Snapshot width in pixels" default:"${width}" group:"headless"`
	Height        int     `help:"Snapshot height in pixels" default:"${height}" group:"headless"`
	Backend       string  `help:"Audio backend: speaker or oto" default:"speaker" enum:"speaker,oto" group:"deck"`
	OutDir        string  `help:"Directory for exports made in the deck" default:"." type:"path" group:"deck"`
	TraceColor    string  `help:"Waveform colour as #RRGGBB" placeholder:"#00FF41"`
	PlayheadColor string  `help:"Playhead colour as #RRGGBB" placeholder:"#FFFFFF"`
	LogFile       string  `help:"Write logs to this file while the deck is running" type:"path" group:"deck"`
	Debug         bool    `help:"Log at debug level"`
	Version       bool    `help:"Show version information"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("flux"),
		kong.Description(cli.Tagline),
		kong.Vars{
			"version": version,
			"width":   strconv.Itoa(config.DefaultWidth),
			"height":  strconv.Itoa(config.DefaultHeight),
		},
		kong.ExplicitGroups([]kong.Group{
			{Key: "headless", Title: "Headless"},
			{Key: "deck", Title: "Deck"},
		}),
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if CLI.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	_ = ctx // Kong context available for future use

	if CLI.Debug {
		log.SetLevel(log.DebugLevel)
	}

	rc := &config.RuntimeConfig{}
	if CLI.TraceColor != "" {
		if err := rc.SetTraceColor(CLI.TraceColor); err != nil {
			cli.PrintError(fmt.Sprintf("invalid --trace-color: %v", err))
			os.Exit(1)
		}
	}
	if CLI.PlayheadColor != "" {
		if err := rc.SetPlayheadColor(CLI.PlayheadColor); err != nil {
			cli.PrintError(fmt.Sprintf("invalid --playhead-color: %v", err))
			os.Exit(1)
		}
	}
	palette := renderer.NewPalette(rc)

	// Validate input file exists
	if CLI.Input != "" {
		if _, err := os.Stat(CLI.Input); os.IsNotExist(err) {
			cli.PrintError(fmt.Sprintf("input file does not exist: %s", CLI.Input))
			os.Exit(1)
		}
	}

	headless := CLI.Export != "" || CLI.Snapshot != ""
	if headless && CLI.Input == "" {
		cli.PrintError("<input> is required with --export or --snapshot")
		os.Exit(1)
	}

	if CLI.Export != "" {
		if err := exportFile(CLI.Input, CLI.Export, CLI.From, CLI.To); err != nil {
			cli.PrintError(err.Error())
			os.Exit(1)
		}
	}
	if CLI.Snapshot != "" {
		if err := snapshotFile(CLI.Input, CLI.Snapshot, CLI.At, palette); err != nil {
			cli.PrintError(err.Error())
			os.Exit(1)
		}
	}
	if headless {
		return
	}

	if err := runDeck(palette); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

// loadHeadless decodes input into a session with no audio device
func loadHeadless(input string, palette renderer.Palette) (*session.Session, error) {
	meta, err := audio.Probe(input)
	if err != nil {
		return nil, fmt.Errorf("load failed: %w", err)
	}
	cli.PrintInfo("Input", fmt.Sprintf("%s, %s, %d Hz, %d ch",
		filepath.Base(input), strings.ToUpper(meta.Format), meta.SampleRate, meta.Channels))

	buf, err := audio.DecodeFile(input)
	if err != nil {
		return nil, fmt.Errorf("load failed: %w", err)
	}

	sess, err := session.New(nil, transport.NewFrameLoop(), palette)
	if err != nil {
		return nil, err
	}
	sess.LoadBuffer(buf)
	return sess, nil
}

func exportFile(input, output string, from, to float64) error {
	start := time.Now()

	sess, err := loadHeadless(input, renderer.NewPalette(nil))
	if err != nil {
		return err
	}
	defer sess.Close()

	duration := sess.State().Duration
	if to < 0 {
		to = duration
	}
	if to > duration || from < 0 {
		cli.PrintWarning(fmt.Sprintf("range clamped to %s - %s",
			renderer.FormatTimecode(max(from, 0)), renderer.FormatTimecode(min(to, duration))))
	}

	data, err := sess.ExportRange(from, to)
	if err != nil {
		return fmt.Errorf("exporting %s..%s: %w",
			renderer.FormatTimecode(from), renderer.FormatTimecode(to), err)
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	header, err := encoder.ParseHeader(data)
	if err != nil {
		return fmt.Errorf("verifying export: %w", err)
	}

	cli.PrintExportSummary(
		output,
		renderer.FormatTimecode(from)+" - "+renderer.FormatTimecode(to),
		fmt.Sprintf("%d × %d ch @ %d Hz", header.NumFrames(), header.NumChannels, header.SampleRate),
		cli.FormatBytes(int64(len(data))),
		time.Since(start),
	)
	return nil
}

func snapshotFile(input, output string, at float64, palette renderer.Palette) error {
	sess, err := loadHeadless(input, palette)
	if err != nil {
		return err
	}
	defer sess.Close()

	sess.Seek(at)
	state := session.RendererState(sess.State())

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}

	if err := renderer.WriteSnapshot(f, sess.Buffer(), state, CLI.Width, CLI.Height, palette); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing snapshot: %w", err)
	}

	cli.PrintSuccess(fmt.Sprintf("Snapshot at %s: %s", renderer.FormatTimecode(state.Position), output))
	return nil
}

func runDeck(palette renderer.Palette) error {
	// The deck owns the terminal, so logs go to a file or nowhere
	if CLI.LogFile != "" {
		f, err := os.OpenFile(CLI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
		log.SetReportTimestamp(true)
	} else {
		log.SetOutput(io.Discard)
	}

	outDir, err := filepath.Abs(CLI.OutDir)
	if err != nil {
		return fmt.Errorf("resolving --out-dir: %w", err)
	}

	backend, err := device.ParseBackend(CLI.Backend)
	if err != nil {
		return err
	}
	cfg := device.DefaultConfig()
	cfg.Backend = backend

	// Without a device the deck still views and exports
	var out transport.Output
	dev, err := device.Acquire(cfg)
	if err != nil {
		log.Warn("audio device unavailable", "backend", backend, "err", err)
	} else {
		out = dev
		defer func() {
			if err := device.Release(); err != nil {
				log.Error("releasing audio device", "err", err)
			}
		}()
	}

	loop := transport.NewFrameLoop()
	sess, err := session.New(out, loop, palette)
	if err != nil {
		return err
	}
	defer sess.Close()

	model := ui.NewModel(sess, loop, ui.Options{Path: CLI.Input, OutDir: outDir})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}
