// Package session owns the client-side interaction state.
//
// State transitions are pure (Reduce); the Controller is the shell that
// performs backend calls and feeds their outcomes back as events.
package session

import "github.com/estatelens/estatelens/internal/model"

// Op names the operation holding the busy flag.
type Op int

const (
	OpNone Op = iota
	OpUpload
	OpQuery
)

func (o Op) String() string {
	switch o {
	case OpUpload:
		return "upload"
	case OpQuery:
		return "query"
	default:
		return "idle"
	}
}

// State is the whole session. Result is nil until the first successful query.
type State struct {
	Categories []string
	Result     *model.QueryResult
	Loading    bool
	Op         Op
	Dark       bool
}

// Clone deep-copies the state so callers can read it without locking.
func (s State) Clone() State {
	out := s
	if s.Categories != nil {
		out.Categories = append([]string(nil), s.Categories...)
	}
	out.Result = s.Result.Clone()
	return out
}

// Event is an input to Reduce.
type Event interface {
	event()
}

type (
	// CategoriesLoaded replaces the category list outside an upload.
	CategoriesLoaded struct{ Areas []string }

	UploadStarted   struct{}
	UploadSucceeded struct{ Areas []string }
	UploadFailed    struct{ Err error }

	QueryStarted   struct{ Text string }
	QuerySucceeded struct{ Result model.QueryResult }
	QueryFailed    struct{ Err error }

	ThemeToggled struct{}
)

func (CategoriesLoaded) event() {}
func (UploadStarted) event()    {}
func (UploadSucceeded) event()  {}
func (UploadFailed) event()     {}
func (QueryStarted) event()     {}
func (QuerySucceeded) event()   {}
func (QueryFailed) event()      {}
func (ThemeToggled) event()     {}

// Reduce applies e to s and returns the next state. It never mutates s's
// slices in place.
func Reduce(s State, e Event) State {
	switch ev := e.(type) {
	case CategoriesLoaded:
		s.Categories = copyAreas(ev.Areas)
	case UploadStarted:
		s.Loading, s.Op = true, OpUpload
	case UploadSucceeded:
		s.Categories = copyAreas(ev.Areas)
		s.Loading, s.Op = false, OpNone
	case UploadFailed:
		s.Loading, s.Op = false, OpNone
	case QueryStarted:
		s.Loading, s.Op = true, OpQuery
	case QuerySucceeded:
		res := ev.Result
		s.Result = res.Clone()
		s.Loading, s.Op = false, OpNone
	case QueryFailed:
		s.Loading, s.Op = false, OpNone
	case ThemeToggled:
		s.Dark = !s.Dark
	}
	return s
}

func copyAreas(a []string) []string {
	if a == nil {
		return []string{}
	}
	return append([]string(nil), a...)
}
