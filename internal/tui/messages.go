package tui

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/estatelens/estatelens/internal/export"
	"github.com/estatelens/estatelens/internal/model"
	"github.com/estatelens/estatelens/internal/session"
)

// categoriesMsg reports the initial category fetch.
type categoriesMsg struct{ err error }

// uploadDoneMsg reports a finished upload.
type uploadDoneMsg struct{ err error }

// queryDoneMsg reports a finished query.
type queryDoneMsg struct{ err error }

// exportDoneMsg lists the files written by an export.
type exportDoneMsg struct {
	paths []string
	err   error
}

// assistantReplyMsg carries one assistant answer.
type assistantReplyMsg struct {
	reply session.Message
	err   error
}

func loadCategoriesCmd(ctrl *session.Controller) tea.Cmd {
	return func() tea.Msg {
		return categoriesMsg{err: ctrl.LoadCategories(context.Background())}
	}
}

// uploadCmd reads path and uploads it. Validation and the missing-file notice
// stay with the controller.
func uploadCmd(ctrl *session.Controller, notices session.Notifier, path string) tea.Cmd {
	return func() tea.Msg {
		var f *model.DatasetFile
		if path = strings.TrimSpace(path); path != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				log.Printf("tui: read %s: %v", path, err)
				notices.Notify(session.Notice{
					Level: session.LevelError,
					Text:  fmt.Sprintf("Cannot read %s", path),
					At:    time.Now(),
				})
				return uploadDoneMsg{err: err}
			}
			f = &model.DatasetFile{Name: filepath.Base(path), Data: data}
		}
		return uploadDoneMsg{err: ctrl.Upload(context.Background(), f)}
	}
}

func queryCmd(ctrl *session.Controller, text string) tea.Cmd {
	return func() tea.Msg {
		_, err := ctrl.Query(context.Background(), text)
		return queryDoneMsg{err: err}
	}
}

func exportCmd(rows model.RowSet, dir string, opts export.Options) tea.Cmd {
	return func() tea.Msg {
		em := &export.DirEmitter{Dir: dir}
		err := export.Export(context.Background(), rows, em, opts)
		return exportDoneMsg{paths: em.Written, err: err}
	}
}

func askCmd(a *session.Assistant, prompt string) tea.Cmd {
	return func() tea.Msg {
		reply, err := a.Ask(context.Background(), prompt)
		return assistantReplyMsg{reply: reply, err: err}
	}
}
