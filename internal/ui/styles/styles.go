package styles

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// palette
var (
	accent = lipgloss.Color("#7DCE13")
	muted  = lipgloss.Color("#999999")
	dim    = lipgloss.Color("#6C6C6C")
	red    = lipgloss.Color("#FF5F87")
	amber  = lipgloss.Color("#FFAF00")
	green  = lipgloss.Color("#5FD7AF")
)

var (
	Title     = lipgloss.NewStyle().Bold(true)
	TabActive = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(accent)
	Tab       = lipgloss.NewStyle().Foreground(muted)
	Header    = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).Bold(true)
	Footer    = lipgloss.NewStyle().Foreground(dim)
	Box       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(dim).Padding(0, 1)

	// status colouring of job results and worker spread
	Danger = lipgloss.NewStyle().Foreground(red)
	Warn   = lipgloss.NewStyle().Foreground(amber)
	Good   = lipgloss.NewStyle().Foreground(green)
	Faint  = lipgloss.NewStyle().Foreground(dim).Italic(true)
)

// Table is the report list style: bold header, accent selection.
func Table() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(dim)
	s.Selected = s.Selected.Foreground(lipgloss.Color("#000000")).Background(accent)
	return s
}
