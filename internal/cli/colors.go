package cli

import "github.com/charmbracelet/lipgloss"

// Phosphor colour palette
// Shared terminal-green theme for consistent branding across CLI and TUI
var (
	// Core phosphor colours (dim to bright)
	PhosphorBright = lipgloss.Color("#00FF41") // Trace green
	PhosphorMid    = lipgloss.Color("#00C832") // Body text
	PhosphorDim    = lipgloss.Color("#0A6B1E") // Borders and rules
	PhosphorDark   = lipgloss.Color("#05300D") // Empty bar cells

	// Accent colours
	AmberAlert = lipgloss.Color("#FFB000") // Warnings and the playhead badge
	RedAlert   = lipgloss.Color("#FF3B30") // Errors
	GhostGray  = lipgloss.Color("#6B7F6B") // Subtle text
)
