package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Branding shared by the help printer and TUI header
const (
	Title   = "FLUX ▌"
	Tagline = "A phosphor waveform deck: play, scrub, select and export 16-bit WAV from the terminal."
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PhosphorBright).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PhosphorBright)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(RedAlert)

	// Warnings and values the user should double check
	HighlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AmberAlert)

	KeyStyle = lipgloss.NewStyle().
			Foreground(GhostGray)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PhosphorMid)

	// Readout frame around headless results
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(PhosphorDim).
			Padding(0, 2).
			MarginTop(1)
)

// Field is one labelled line of a readout
type Field struct {
	Key   string
	Value string
}

// PrintVersion prints version information
func PrintVersion(version string) {
	fmt.Println(TitleStyle.Render(Title))
	fmt.Printf("%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
}

// PrintError prints an error message to stderr
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("ERR"), message)
}

// PrintWarning prints a warning to stderr
func PrintWarning(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", HighlightStyle.Render("WARN"), message)
}

func PrintSuccess(message string) {
	fmt.Printf("%s %s\n", SuccessStyle.Render("▶"), message)
}

func PrintInfo(key, value string) {
	fmt.Printf("%s %s\n", KeyStyle.Render(key+":"), ValueStyle.Render(value))
}

// FormatDuration formats an elapsed wall time as ms below a second
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// FormatBytes formats a byte count with binary prefixes
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// RenderFields lays out fields as an aligned key/value column
func RenderFields(fields []Field) string {
	keyWidth := 0
	for _, f := range fields {
		keyWidth = max(keyWidth, lipgloss.Width(f.Key))
	}

	lines := make([]string, len(fields))
	for i, f := range fields {
		pad := strings.Repeat(" ", keyWidth-lipgloss.Width(f.Key)+1)
		lines[i] = KeyStyle.Render(f.Key+":") + pad + ValueStyle.Render(f.Value)
	}
	return strings.Join(lines, "\n")
}

// PrintReadout prints a heading and its fields inside a frame
func PrintReadout(heading string, fields []Field) {
	body := SuccessStyle.Render(heading) + "\n\n" + RenderFields(fields)
	fmt.Println(BoxStyle.Render(body))
}

// PrintExportSummary prints a finished export
func PrintExportSummary(path, span, frames, size string, elapsed time.Duration) {
	PrintReadout("EXPORT WRITTEN", []Field{
		{Key: "Output", Value: path},
		{Key: "Range", Value: span},
		{Key: "Frames", Value: frames},
		{Key: "Size", Value: size},
		{Key: "Took", Value: FormatDuration(elapsed)},
	})
}
