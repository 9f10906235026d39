package tui

import (
	"errors"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/estatelens/estatelens/internal/session"
	"github.com/estatelens/estatelens/internal/theme"
)

// AssistantPage is a chat transcript over the query endpoint.
type AssistantPage struct {
	deps   Deps
	keys   KeyMap
	styles Styles

	input      textinput.Model
	transcript viewport.Model
	spinner    spinner.Model
	waiting    bool

	width  int
	height int
}

// NewAssistantPage builds the assistant page. deps.Assistant must be set.
func NewAssistantPage(deps Deps) *AssistantPage {
	if deps.Skin.Name == "" {
		deps.Skin = theme.Default
	}
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "Ask about the uploaded data"
	in.CharLimit = 2000

	p := &AssistantPage{
		deps:       deps,
		keys:       DefaultKeyMap(),
		input:      in,
		transcript: viewport.New(0, 0),
	}
	p.restyle()
	p.spinner = newSpinner(p.styles)
	return p
}

func (p *AssistantPage) ID() string { return AssistantPageID }

// Init runs on every switch to the page so the theme follows the dashboard.
func (p *AssistantPage) Init() tea.Cmd {
	p.restyle()
	if p.deps.Assistant != nil {
		// A reply that landed on another page is already in the transcript.
		p.waiting = p.deps.Assistant.Busy()
	}
	p.syncTranscript()
	return p.input.Focus()
}

func (p *AssistantPage) restyle() {
	dark := p.deps.Controller != nil && p.deps.Controller.Snapshot().Dark
	p.styles = NewStyles(p.deps.Skin.Palette(dark))
}

func (p *AssistantPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width, p.height = msg.Width, msg.Height
		p.input.Width = max(10, p.width-4)
		p.transcript.Width = max(10, p.width-2)
		p.transcript.Height = max(1, p.height-4)
		p.syncTranscript()
		return nil, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Quit):
			return tea.Quit, nil
		case key.Matches(msg, p.keys.Escape):
			p.input.Blur()
			return nil, &PageNav{PageID: DashboardPageID}
		case key.Matches(msg, p.keys.Up), key.Matches(msg, p.keys.Down),
			key.Matches(msg, p.keys.PageUp), key.Matches(msg, p.keys.PageDown):
			var cmd tea.Cmd
			p.transcript, cmd = p.transcript.Update(msg)
			return cmd, nil
		case key.Matches(msg, p.keys.Submit):
			return p.submit(), nil
		}

	case assistantReplyMsg:
		p.waiting = false
		if msg.err != nil && !errors.Is(msg.err, session.ErrBusy) {
			log.Printf("tui: assistant: %v", msg.err)
		}
		p.syncTranscript()
		return nil, nil

	case spinner.TickMsg:
		if !p.waiting {
			return nil, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return cmd, nil
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd, nil
}

// submit sends the prompt. Blank prompts and prompts sent while waiting are
// ignored.
func (p *AssistantPage) submit() tea.Cmd {
	prompt := strings.TrimSpace(p.input.Value())
	if prompt == "" || p.waiting || p.deps.Assistant == nil {
		return nil
	}
	p.waiting = true
	p.input.SetValue("")
	return tea.Batch(askCmd(p.deps.Assistant, prompt), p.spinner.Tick)
}

func (p *AssistantPage) syncTranscript() {
	if p.deps.Assistant == nil {
		return
	}
	msgs := p.deps.Assistant.Transcript()
	lines := make([]string, 0, len(msgs))
	wrap := lipgloss.NewStyle().Width(max(10, p.transcript.Width-5))
	for _, m := range msgs {
		if m.Sender == session.SenderUser {
			lines = append(lines, p.styles.UserLine.Render("You: ")+wrap.Render(m.Text))
		} else {
			lines = append(lines, p.styles.AILine.Render("AI:  ")+wrap.Render(m.Text))
		}
	}
	p.transcript.SetContent(strings.Join(lines, "\n"))
	p.transcript.GotoBottom()
}

func (p *AssistantPage) View(width, height int) string {
	if width > 0 && height > 0 && (width != p.width || height != p.height) {
		p.Update(tea.WindowSizeMsg{Width: width, Height: height})
	}
	if p.width <= 0 || p.height <= 0 {
		return "Initializing assistant..."
	}

	title := p.styles.Title.Render("Assistant") + "  " + p.styles.Muted.Render("esc back")
	status := ""
	if p.waiting {
		status = p.styles.Muted.Render(p.spinner.View() + " " + "Thinking...")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		p.transcript.View(),
		status,
		p.input.View(),
	)
}
