package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/flux/internal/cli"
)

var (
	frameStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(cli.PhosphorDim).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(cli.PhosphorBright)

	nameStyle = lipgloss.NewStyle().
			Foreground(cli.PhosphorMid)

	noSignalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(cli.AmberAlert)

	counterStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(cli.PhosphorBright)

	labelStyle = lipgloss.NewStyle().Foreground(cli.GhostGray)
	valueStyle = lipgloss.NewStyle().Foreground(cli.PhosphorMid)

	playBadge = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#050A05")).
			Background(cli.PhosphorBright).
			Padding(0, 1)

	stopBadge = lipgloss.NewStyle().
			Bold(true).
			Foreground(cli.PhosphorBright).
			Background(cli.PhosphorDark).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().Foreground(cli.PhosphorMid).Italic(true)
	errorStyle  = lipgloss.NewStyle().Foreground(cli.RedAlert).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(cli.AmberAlert)

	insertStyle = lipgloss.NewStyle().Foreground(cli.PhosphorDim).Bold(true)
)
