package tui

import tea "github.com/charmbracelet/bubbletea"

// App switches between the dashboard and the assistant. Keys go to the page
// on screen; results of background work go to the page that started it.
type App struct {
	pages  map[string]Page
	order  []string
	active string
	width  int
	height int
}

// NewApp registers pages in order; the first one is shown at startup.
func NewApp(pages ...Page) *App {
	a := &App{pages: make(map[string]Page, len(pages))}
	for _, p := range pages {
		a.pages[p.ID()] = p
		a.order = append(a.order, p.ID())
	}
	if len(a.order) > 0 {
		a.active = a.order[0]
	}
	return a
}

// ActivePage returns the ID of the page on screen.
func (a *App) ActivePage() string { return a.active }

func (a *App) Init() tea.Cmd {
	if p, ok := a.pages[a.active]; ok {
		return p.Init()
	}
	return nil
}

// owner names the page that consumes msg while another page is shown.
func owner(msg tea.Msg) string {
	switch msg.(type) {
	case categoriesMsg, uploadDoneMsg, queryDoneMsg, exportDoneMsg:
		return DashboardPageID
	case assistantReplyMsg:
		return AssistantPageID
	}
	return ""
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		a.width, a.height = wsm.Width, wsm.Height
		cmds := make([]tea.Cmd, 0, len(a.order))
		for _, id := range a.order {
			cmd, _ := a.pages[id].Update(msg)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)
	}

	target := a.active
	if id := owner(msg); id != "" {
		if _, ok := a.pages[id]; ok {
			target = id
		}
	}
	p, ok := a.pages[target]
	if !ok {
		return a, nil
	}

	cmd, nav := p.Update(msg)
	// Only the page on screen may navigate.
	if nav == nil || target != a.active {
		return a, cmd
	}
	next, ok := a.pages[nav.PageID]
	if !ok {
		return a, cmd
	}
	a.active = nav.PageID
	return a, tea.Batch(cmd, next.Init())
}

func (a *App) View() string {
	if p, ok := a.pages[a.active]; ok {
		return p.View(a.width, a.height)
	}
	return "No active page"
}
