package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary   = lipgloss.Color("39")  // Blue
	colorSecondary = lipgloss.Color("245") // Gray
	colorError     = lipgloss.Color("196") // Red
	colorMuted     = lipgloss.Color("240") // Dark gray
)

// styles are bound to the writer they render for, so output that is not a
// terminal stays plain.
type styles struct {
	dir     lipgloss.Style
	file    lipgloss.Style
	size    lipgloss.Style
	muted   lipgloss.Style
	err     lipgloss.Style
	heading lipgloss.Style
	label   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		dir: r.NewStyle().
			Bold(true).
			Foreground(colorPrimary),
		file: r.NewStyle(),
		size: r.NewStyle().
			Foreground(colorSecondary).
			Width(10).
			Align(lipgloss.Right),
		muted: r.NewStyle().
			Foreground(colorMuted),
		err: r.NewStyle().
			Foreground(colorError),
		heading: r.NewStyle().
			Bold(true).
			Foreground(colorPrimary),
		label: r.NewStyle().
			Foreground(colorSecondary).
			Width(12),
	}
}
