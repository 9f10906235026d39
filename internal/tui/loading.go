package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// newSpinner returns the braille spinner shown while an operation runs.
func newSpinner(st Styles) spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Spinner{Frames: spinnerFrames, FPS: 120 * time.Millisecond}),
		spinner.WithStyle(st.Muted),
	)
}

// renderLoadingPlaceholder centers the spinner frame and busy text.
func renderLoadingPlaceholder(frame, text string, st Styles, width, height int) string {
	line := st.Muted.Italic(true).Render(frame + " " + text)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, line)
}

// renderEmptyPlaceholder centers a muted hint.
func renderEmptyPlaceholder(text string, st Styles, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, st.Muted.Render(text))
}
