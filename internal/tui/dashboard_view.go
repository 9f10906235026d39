package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/estatelens/estatelens/internal/render"
	"github.com/estatelens/estatelens/internal/session"
)

// sectionChrome is border plus title line.
const sectionChrome = 3

// bodyHeight is what remains for the result sections after header, inputs,
// status line and help line.
func (m *DashboardModel) bodyHeight() int {
	return max(0, m.height-5)
}

// layoutHeights splits the body between the sections that are present.
// Absent sections get zero.
func (m *DashboardModel) layoutHeights() (summaryH, chartH, tableH int) {
	body := m.bodyHeight()
	hasTable := len(m.sections.Table) > 0

	if m.sections.Summary != "" {
		summaryH = min(8, max(4, body/4))
	}
	rest := body - summaryH
	if m.sections.Chart != nil {
		if hasTable {
			chartH = max(8, rest/2)
		} else {
			chartH = rest
		}
	}
	if hasTable {
		tableH = max(sectionChrome+2, rest-chartH)
	}
	return summaryH, chartH, tableH
}

func (m *DashboardModel) resize() {
	inner := max(10, m.width-4)
	m.uploadInput.Width = max(10, m.width-len(m.uploadInput.Prompt)-2)
	m.queryInput.Width = max(10, m.width-len(m.queryInput.Prompt)-2)

	summaryH, _, tableH := m.layoutHeights()
	m.summary.Width = inner
	m.summary.Height = max(1, summaryH-sectionChrome)
	m.table.SetWidth(inner)
	m.table.SetHeight(max(2, tableH-sectionChrome))
	m.syncSummary()
}

// View renders the dashboard
func (m *DashboardModel) View(width, height int) string {
	if width > 0 && height > 0 && (width != m.width || height != m.height) {
		m.width, m.height = width, height
		m.resize()
	}
	if m.width <= 0 || m.height <= 0 {
		return "Initializing dashboard..."
	}

	parts := []string{
		m.renderHeader(),
		m.uploadInput.View(),
		m.queryInput.View(),
		m.renderBody(),
		m.renderStatusLine(),
		m.renderHelp(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *DashboardModel) renderHeader() string {
	title := m.styles.Title.Render("EstateLens")
	if len(m.state.Categories) == 0 {
		return title
	}
	return title + "  " + m.styles.Muted.Render(render.AreasPreview(m.state.Categories))
}

func (m *DashboardModel) busyText() string {
	op := m.pending
	if op == session.OpNone {
		op = m.state.Op
	}
	if op == session.OpUpload {
		return render.BusyUpload
	}
	return render.BusyQuery
}

func (m *DashboardModel) renderBody() string {
	h := m.bodyHeight()
	if m.busy() {
		return renderLoadingPlaceholder(m.spinner.View(), m.busyText(), m.styles, m.width, h)
	}
	if m.sections.Empty() {
		return renderEmptyPlaceholder(render.EmptyState, m.styles, m.width, h)
	}

	summaryH, chartH, tableH := m.layoutHeights()
	var blocks []string
	if summaryH > 0 {
		blocks = append(blocks, m.renderSection("Summary", m.summary.View(), summaryH, m.focus == FieldSummary))
	}
	if chartH > 0 {
		body := renderChartPanel(m.sections.Chart, m.width-4, chartH-sectionChrome, m.styles)
		blocks = append(blocks, m.renderSection("Chart", body, chartH, false))
	}
	if tableH > 0 {
		blocks = append(blocks, m.renderSection("Table", m.table.View(), tableH, m.focus == FieldTable))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func (m *DashboardModel) renderSection(title, body string, height int, active bool) string {
	style := m.styles.Section
	if active {
		style = m.styles.ActiveSection
	}
	content := m.styles.SectionTitle.Render(title) + "\n" + body
	return style.Width(max(1, m.width-2)).Height(max(1, height-2)).MaxHeight(height).Render(content)
}

// renderStatusLine shows the latest notice.
func (m *DashboardModel) renderStatusLine() string {
	n, ok := m.deps.Notices.Latest()
	if !ok {
		return ""
	}
	style := m.styles.Success
	if n.Level == session.LevelError {
		style = m.styles.Error
	}
	return style.Render(truncate(n.Text, m.width))
}

func (m *DashboardModel) renderHelp() string {
	h := help.New()
	h.Styles.ShortKey = m.styles.Label
	h.Styles.ShortDesc = m.styles.Muted
	h.Styles.ShortSeparator = m.styles.Muted
	h.Width = m.width
	return h.ShortHelpView(m.keys.ShortHelp())
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return strings.TrimSpace(string(r[:width-3])) + "..."
}
