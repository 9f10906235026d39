package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// User-facing notice texts.
const (
	NoticeSelectFile    = "Select a file"
	NoticeInvalidFile   = "Select an .xlsx or .xls file"
	NoticeUploaded      = "Dataset uploaded!"
	NoticeUploadFailed  = "Upload failed"
	NoticeQueryFailed   = "Query failed"
	DefaultNoticeBuffer = 20
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a transient toast-style message.
type Notice struct {
	ID    string    `json:"id"`
	Level Level     `json:"level"`
	Text  string    `json:"text"`
	At    time.Time `json:"at"`
}

func newNotice(level Level, text string, at time.Time) Notice {
	return Notice{ID: uuid.NewString(), Level: level, Text: text, At: at}
}

// Notifier receives notices as they are raised.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// NoticeLog keeps the most recent notices in arrival order.
type NoticeLog struct {
	mu    sync.Mutex
	max   int
	items []Notice
}

// NewNoticeLog returns a log holding at most max notices.
func NewNoticeLog(max int) *NoticeLog {
	if max <= 0 {
		max = DefaultNoticeBuffer
	}
	return &NoticeLog{max: max}
}

func (l *NoticeLog) Notify(n Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, n)
	if over := len(l.items) - l.max; over > 0 {
		l.items = append([]Notice(nil), l.items[over:]...)
	}
}

// Recent returns a copy of the retained notices, oldest first.
func (l *NoticeLog) Recent() []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Notice(nil), l.items...)
}

// Latest returns the newest notice.
func (l *NoticeLog) Latest() (Notice, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.items) == 0 {
		return Notice{}, false
	}
	return l.items[len(l.items)-1], true
}
