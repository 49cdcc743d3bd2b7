package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{88244, "86.2 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(250 * time.Millisecond); got != "250ms" {
		t.Errorf("FormatDuration(250ms) = %q", got)
	}
	if got := FormatDuration(1500 * time.Millisecond); got != "1.50s" {
		t.Errorf("FormatDuration(1.5s) = %q", got)
	}
}

func TestRenderFieldsAligns(t *testing.T) {
	out := RenderFields([]Field{
		{Key: "Output", Value: "a.wav"},
		{Key: "Size", Value: "1 KiB"},
	})

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lipgloss.Width(lines[0]) != lipgloss.Width("Output: a.wav") {
		t.Errorf("first line width = %d", lipgloss.Width(lines[0]))
	}
	// Values start in the same column
	if a, b := strings.Index(stripped(lines[0]), "a.wav"), strings.Index(stripped(lines[1]), "1 KiB"); a != b {
		t.Errorf("value columns differ: %d vs %d", a, b)
	}
}

func TestStyledHelpGroupsFlags(t *testing.T) {
	var cli struct {
		Input  string `arg:"" optional:"" help:"File to load"`
		Export string `help:"Export target" placeholder:"out.wav" group:"headless"`
		Debug  bool   `help:"Log at debug level"`
	}

	var out strings.Builder
	parser, err := kong.New(&cli,
		kong.Name("flux"),
		kong.Writers(&out, &out),
		kong.Exit(func(int) {}),
		kong.ExplicitGroups([]kong.Group{{Key: "headless", Title: "Headless"}}),
		kong.Help(StyledHelpPrinter(kong.HelpOptions{})),
	)
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}
	_, _ = parser.Parse([]string{"--help"})

	help := stripped(out.String())
	for _, want := range []string{"Usage:", "flux [<input>] [flags]", "Arguments:", "Flags:", "--debug", "Headless:", "--export=OUT.WAV"} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q:\n%s", want, help)
		}
	}
	if strings.Index(help, "--debug") > strings.Index(help, "Headless:") {
		t.Error("ungrouped flags should precede grouped sections")
	}
}

// stripped removes ANSI escape sequences
func stripped(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
