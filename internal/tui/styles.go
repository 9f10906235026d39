package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/estatelens/estatelens/internal/chart"
	"github.com/estatelens/estatelens/internal/theme"
)

// Styles holds every lipgloss style derived from one palette.
type Styles struct {
	Title         lipgloss.Style
	Muted         lipgloss.Style
	Label         lipgloss.Style
	Section       lipgloss.Style
	ActiveSection lipgloss.Style
	SectionTitle  lipgloss.Style
	Success       lipgloss.Style
	Error         lipgloss.Style
	UserLine      lipgloss.Style
	AILine        lipgloss.Style
	Table         table.Styles
}

// NewStyles builds the styles for p.
func NewStyles(p theme.Palette) Styles {
	text := lipgloss.Color(p.Text)
	muted := lipgloss.Color(p.Muted)
	accent := lipgloss.Color(p.Accent)
	border := lipgloss.Color(p.Border)

	section := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Foreground(text).
		Padding(0, 1)

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		Bold(true).
		Foreground(text).
		Background(lipgloss.Color(p.HeaderBg)).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(border).
		BorderBottom(true)
	ts.Cell = ts.Cell.Foreground(text)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color(p.Surface)).
		Background(accent).
		Bold(false)

	return Styles{
		Title:         lipgloss.NewStyle().Bold(true).Foreground(accent),
		Muted:         lipgloss.NewStyle().Foreground(muted),
		Label:         lipgloss.NewStyle().Foreground(text).Bold(true),
		Section:       section,
		ActiveSection: section.BorderForeground(accent),
		SectionTitle:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		Success:       lipgloss.NewStyle().Foreground(lipgloss.Color(p.Success)),
		Error:         lipgloss.NewStyle().Foreground(lipgloss.Color(p.Error)),
		UserLine:      lipgloss.NewStyle().Foreground(accent).Bold(true),
		AILine:        lipgloss.NewStyle().Foreground(text),
		Table:         ts,
	}
}

// seriesStyle paints a bar or legend swatch in the series color.
func seriesStyle(hue int) lipgloss.Style {
	c := lipgloss.Color(chart.TerminalColor(hue))
	return lipgloss.NewStyle().Foreground(c).Background(c)
}
