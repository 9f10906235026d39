package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/estatelens/estatelens/internal/model"
	"github.com/estatelens/estatelens/internal/session"
)

func TestApp_NavigatesBetweenPages(t *testing.T) {
	t.Parallel()

	dash := newTestDashboard(t, &fakeAPI{})
	app := NewApp(dash, NewAssistantPage(dash.deps))
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 30})

	if got := app.ActivePage(); got != DashboardPageID {
		t.Fatalf("initial page = %q", got)
	}
	app.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	if got := app.ActivePage(); got != AssistantPageID {
		t.Fatalf("page after ctrl+a = %q", got)
	}
	if view := app.View(); !strings.Contains(view, "Assistant") {
		t.Errorf("assistant view:\n%s", view)
	}
	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if got := app.ActivePage(); got != DashboardPageID {
		t.Fatalf("page after esc = %q", got)
	}
}

func TestAssistantPage_AskShowsReply(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{result: model.QueryResult{Summary: "Wakad leads on growth"}}
	deps := Deps{
		Controller: session.NewController(api),
		Assistant:  session.NewAssistant(api),
	}
	p := NewAssistantPage(deps)
	p.Update(tea.WindowSizeMsg{Width: 80, Height: 20})

	p.input.SetValue("   ")
	if cmd, _ := p.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatal("blank prompt produced a command")
	}

	p.input.SetValue("which area grew fastest?")
	cmd, _ := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !p.waiting {
		t.Fatal("page not waiting after submit")
	}
	for _, msg := range runCmd(cmd) {
		p.Update(msg)
	}

	view := p.View(80, 20)
	for _, want := range []string{"which area grew fastest?", "Wakad leads on growth"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if p.waiting {
		t.Error("still waiting after reply")
	}
}

func TestApp_ReplyReachesAssistantOffScreen(t *testing.T) {
	t.Parallel()

	dash := newTestDashboard(t, &fakeAPI{result: model.QueryResult{Summary: "Baner is cheaper"}})
	asst := NewAssistantPage(dash.deps)
	app := NewApp(dash, asst)
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 30})

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	asst.input.SetValue("compare Baner and Wakad")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if got := app.ActivePage(); got != DashboardPageID {
		t.Fatalf("page after esc = %q", got)
	}

	for _, msg := range runCmd(cmd) {
		app.Update(msg)
	}
	if asst.waiting {
		t.Error("assistant still waiting after reply")
	}
	if !strings.Contains(asst.transcript.View(), "Baner is cheaper") {
		t.Errorf("transcript missing reply:\n%s", asst.transcript.View())
	}
}
