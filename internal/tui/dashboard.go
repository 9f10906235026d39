package tui

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/estatelens/estatelens/internal/export"
	"github.com/estatelens/estatelens/internal/render"
	"github.com/estatelens/estatelens/internal/session"
	"github.com/estatelens/estatelens/internal/theme"
)

// Field is a focusable dashboard element.
type Field int

const (
	FieldUpload Field = iota // dataset path input
	FieldQuery               // query input
	FieldSummary             // summary scroll
	FieldTable               // table scroll
	fieldCount
)

const maxColumnWidth = 28

// Deps wires the dashboard to the session.
type Deps struct {
	Controller *session.Controller
	Notices    *session.NoticeLog
	Assistant  *session.Assistant // optional
	Skin       theme.Skin
	ExportDir  string
	Export     export.Options
}

// DashboardModel is the main page: upload, query and the three result
// sections.
type DashboardModel struct {
	deps   Deps
	keys   KeyMap
	styles Styles

	uploadInput textinput.Model
	queryInput  textinput.Model
	summary     viewport.Model
	table       table.Model
	spinner     spinner.Model

	focus    Field
	pending  session.Op // set between submit and completion
	state    session.State
	sections render.Sections

	width  int
	height int
}

// NewDashboardModel builds the dashboard.
func NewDashboardModel(deps Deps) *DashboardModel {
	if deps.Notices == nil {
		deps.Notices = session.NewNoticeLog(0)
	}
	if deps.Skin.Name == "" {
		deps.Skin = theme.Default
	}

	up := textinput.New()
	up.Prompt = "Dataset: "
	up.Placeholder = "path/to/prices.xlsx"
	up.CharLimit = 1024

	q := textinput.New()
	q.Prompt = "Query:   "
	q.Placeholder = "e.g. price trend in Wakad since 2020"
	q.CharLimit = 2000

	m := &DashboardModel{
		deps:        deps,
		keys:        DefaultKeyMap(),
		uploadInput: up,
		queryInput:  q,
		summary:     viewport.New(0, 0),
		table:       table.New(table.WithHeight(5)),
	}
	m.refresh()
	m.spinner = newSpinner(m.styles)
	m.setFocus(FieldUpload)
	return m
}

func (m *DashboardModel) ID() string { return DashboardPageID }

func (m *DashboardModel) Init() tea.Cmd {
	m.refresh()
	if len(m.state.Categories) > 0 {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, loadCategoriesCmd(m.deps.Controller))
}

// busy reports whether an upload or query is in flight.
func (m *DashboardModel) busy() bool {
	return m.pending != session.OpNone || m.state.Loading
}

// refresh pulls the latest snapshot and rebuilds derived views.
func (m *DashboardModel) refresh() {
	m.state = m.deps.Controller.Snapshot()
	m.sections = render.Build(m.state.Result)
	m.styles = NewStyles(m.deps.Skin.Palette(m.state.Dark))
	m.table.SetStyles(m.styles.Table)
	m.syncTable()
	m.syncSummary()
}

func (m *DashboardModel) syncTable() {
	headers := m.sections.DisplayHeaders()
	cells := m.sections.Cells()

	cols := make([]table.Column, len(headers))
	for i, h := range headers {
		w := len([]rune(h))
		for _, row := range cells {
			w = max(w, len([]rune(row[i])))
		}
		cols[i] = table.Column{Title: h, Width: min(w, maxColumnWidth)}
	}
	rows := make([]table.Row, len(cells))
	for i, r := range cells {
		rows[i] = table.Row(r)
	}

	// Rows first: stale rows must never outnumber the new columns.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
}

func (m *DashboardModel) syncSummary() {
	text := m.sections.Summary
	if m.summary.Width > 0 {
		text = m.styles.AILine.Width(m.summary.Width).Render(text)
	}
	m.summary.SetContent(text)
	m.summary.GotoTop()
}

func (m *DashboardModel) setFocus(f Field) tea.Cmd {
	m.focus = f
	m.uploadInput.Blur()
	m.queryInput.Blur()
	m.table.Blur()

	switch f {
	case FieldUpload:
		return m.uploadInput.Focus()
	case FieldQuery:
		return m.queryInput.Focus()
	case FieldTable:
		m.table.Focus()
	}
	return nil
}

func (m *DashboardModel) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return nil, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case categoriesMsg:
		m.refresh()
		return nil, nil

	case uploadDoneMsg:
		m.pending = session.OpNone
		m.refresh()
		if msg.err == nil {
			m.uploadInput.SetValue("")
		}
		return nil, nil

	case queryDoneMsg:
		m.pending = session.OpNone
		m.refresh()
		m.resize()
		return nil, nil

	case exportDoneMsg:
		m.noteExport(msg)
		return nil, nil

	case spinner.TickMsg:
		if !m.busy() {
			return nil, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		// Pick up Loading set by the worker goroutine.
		m.state = m.deps.Controller.Snapshot()
		return cmd, nil
	}

	return m.forward(msg), nil
}

func (m *DashboardModel) handleKeyPress(msg tea.KeyMsg) (tea.Cmd, *PageNav) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit, nil

	case key.Matches(msg, m.keys.NextField):
		return m.setFocus((m.focus + 1) % fieldCount), nil

	case key.Matches(msg, m.keys.PrevField):
		return m.setFocus((m.focus + fieldCount - 1) % fieldCount), nil

	case key.Matches(msg, m.keys.Theme):
		m.deps.Controller.ToggleTheme()
		m.refresh()
		return nil, nil

	case key.Matches(msg, m.keys.Assistant):
		// Completion messages only reach the active page.
		if m.deps.Assistant == nil || m.busy() {
			return nil, nil
		}
		return nil, &PageNav{PageID: AssistantPageID}

	case key.Matches(msg, m.keys.Export):
		if !m.state.Result.HasTable() {
			return nil, nil
		}
		return exportCmd(m.state.Result.Table, m.deps.ExportDir, m.deps.Export), nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit(), nil
	}

	return m.forward(msg), nil
}

// submit starts the operation owned by the focused input. Submissions while
// busy are dropped.
func (m *DashboardModel) submit() tea.Cmd {
	if m.busy() {
		return nil
	}
	switch m.focus {
	case FieldUpload:
		m.pending = session.OpUpload
		return tea.Batch(uploadCmd(m.deps.Controller, m.deps.Notices, m.uploadInput.Value()), m.spinner.Tick)
	case FieldQuery:
		m.pending = session.OpQuery
		return tea.Batch(queryCmd(m.deps.Controller, m.queryInput.Value()), m.spinner.Tick)
	}
	return nil
}

// forward hands msg to the focused component.
func (m *DashboardModel) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case FieldUpload:
		m.uploadInput, cmd = m.uploadInput.Update(msg)
	case FieldQuery:
		m.queryInput, cmd = m.queryInput.Update(msg)
	case FieldSummary:
		m.summary, cmd = m.summary.Update(msg)
	case FieldTable:
		m.table, cmd = m.table.Update(msg)
	}
	return cmd
}

func (m *DashboardModel) noteExport(msg exportDoneMsg) {
	n := session.Notice{At: time.Now()}
	if msg.err != nil {
		log.Printf("tui: export: %v", msg.err)
		n.Level = session.LevelError
		n.Text = "Export failed"
	} else {
		names := make([]string, len(msg.paths))
		for i, p := range msg.paths {
			names[i] = filepath.Base(p)
		}
		n.Level = session.LevelSuccess
		n.Text = fmt.Sprintf("Saved %s", strings.Join(names, ", "))
	}
	m.deps.Notices.Notify(n)
}
