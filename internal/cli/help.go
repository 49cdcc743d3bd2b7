package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

var (
	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(PhosphorMid).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(PhosphorBright).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(AmberAlert).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(GhostGray).
				Italic(true)
)

// helpRow is one line of a help section: the styled left column and its help
type helpRow struct {
	left  string
	style lipgloss.Style
	help  string
	def   string
}

type helpSection struct {
	title string
	rows  []helpRow
}

// StyledHelpPrinter renders kong help in the phosphor theme. Flags are
// listed under their kong group, ungrouped flags first.
func StyledHelpPrinter(kong.HelpOptions) kong.HelpPrinter {
	return func(_ kong.HelpOptions, ctx *kong.Context) error {
		sections := []helpSection{{title: "Arguments"}}
		for _, arg := range ctx.Model.Node.Positional {
			sections[0].rows = append(sections[0].rows, helpRow{
				left:  arg.Summary(),
				style: helpArgStyle,
				help:  arg.Help,
			})
		}
		sections = append(sections, flagSections(ctx.Model.Node.Flags)...)

		return writeHelp(ctx.Stdout, ctx.Model.Name, sections)
	}
}

// flagSections groups flags in declaration order, keeping the first-seen
// order of groups
func flagSections(flags []*kong.Flag) []helpSection {
	general := helpSection{title: "Flags"}
	general.rows = append(general.rows, helpRow{
		left:  "-h, --help",
		style: helpFlagStyle,
		help:  "Show context-sensitive help.",
	})

	var grouped []helpSection
	index := map[string]int{}

	for _, f := range flags {
		if f.Name == "help" || f.Hidden {
			continue
		}
		row := helpRow{left: flagLabel(f), style: helpFlagStyle, help: f.Help, def: flagDefault(f)}

		if f.Group == nil {
			general.rows = append(general.rows, row)
			continue
		}
		i, ok := index[f.Group.Key]
		if !ok {
			i = len(grouped)
			index[f.Group.Key] = i
			grouped = append(grouped, helpSection{title: f.Group.Title})
		}
		grouped[i].rows = append(grouped[i].rows, row)
	}

	return append([]helpSection{general}, grouped...)
}

func flagLabel(f *kong.Flag) string {
	label := "--" + f.Name
	if f.Short != 0 {
		label = fmt.Sprintf("-%c, %s", f.Short, label)
	}
	if !f.IsBool() && f.PlaceHolder != "" {
		label += "=" + strings.ToUpper(f.PlaceHolder)
	}
	return label
}

// flagDefault hides kong's type placeholders and boolean defaults
func flagDefault(f *kong.Flag) string {
	if !f.HasDefault || f.IsBool() {
		return ""
	}
	switch f.Default {
	case "", "STRING", "BOOL":
		return ""
	}
	return f.Default
}

func writeHelp(w io.Writer, name string, sections []helpSection) error {
	// One left column width across sections keeps the help text aligned
	width := 0
	for _, s := range sections {
		for _, r := range s.rows {
			width = max(width, lipgloss.Width(r.left))
		}
	}

	var sb strings.Builder
	sb.WriteString(TitleStyle.Render(Title))
	sb.WriteString("\n")
	sb.WriteString(KeyStyle.Italic(true).Render(Tagline))
	sb.WriteString("\n")

	sb.WriteString(helpSectionStyle.Render("Usage:"))
	fmt.Fprintf(&sb, "\n  %s [<input>] [flags]\n", name)

	for _, s := range sections {
		if len(s.rows) == 0 {
			continue
		}
		sb.WriteString(helpSectionStyle.Render(s.title + ":"))
		sb.WriteString("\n")
		for _, r := range s.rows {
			pad := strings.Repeat(" ", width-lipgloss.Width(r.left)+2)
			sb.WriteString("  " + r.style.Render(r.left) + pad + r.help)
			if r.def != "" {
				sb.WriteString(" " + helpDefaultStyle.Render("(default: "+r.def+")"))
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
