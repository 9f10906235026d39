package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/estatelens/estatelens/internal/dataset"
	"github.com/estatelens/estatelens/internal/model"
)

var (
	// ErrBusy is returned when an operation starts while another holds the
	// busy flag.
	ErrBusy = errors.New("session: another operation is in progress")
	// ErrNoFile is returned by Upload when no file was selected.
	ErrNoFile = errors.New("session: no file selected")
)

// Backend is the subset of the analytics API the controller drives.
type Backend = model.AnalyticsAPI

// Controller serialises every state change and is the only caller of the
// backend.
type Controller struct {
	api      Backend
	notifier Notifier
	onResult func(model.QueryResult)
	now      func() time.Time

	mu    sync.Mutex
	state State
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier routes notices to n.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithResultHook is called, outside the lock, after each successful query.
func WithResultHook(fn func(model.QueryResult)) Option {
	return func(c *Controller) { c.onResult = fn }
}

// WithDarkTheme sets the initial theme.
func WithDarkTheme(dark bool) Option {
	return func(c *Controller) { c.state.Dark = dark }
}

// WithClock overrides the notice timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController returns an idle controller with an empty category list.
func NewController(api Backend, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		notifier: NotifierFunc(func(Notice) {}),
		now:      time.Now,
		state:    State{Categories: []string{}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dispatch applies e and returns a snapshot of the resulting state.
func (c *Controller) Dispatch(e Event) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, e)
	return c.state.Clone()
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// begin takes the busy flag or fails with ErrBusy.
func (c *Controller) begin(started Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Loading {
		return ErrBusy
	}
	c.state = Reduce(c.state, started)
	return nil
}

func (c *Controller) notify(level Level, text string) {
	c.notifier.Notify(newNotice(level, text, c.now()))
}

// LoadCategories fetches the category list. Failures are logged and leave
// the list untouched.
func (c *Controller) LoadCategories(ctx context.Context) error {
	areas, err := c.api.Areas(ctx)
	if err != nil {
		log.Printf("session: load categories: %v", err)
		return err
	}
	c.Dispatch(CategoriesLoaded{Areas: areas})
	return nil
}

// Upload sends f to the backend and refreshes the category list.
// A nil or empty selection fails with ErrNoFile without touching state.
func (c *Controller) Upload(ctx context.Context, f *model.DatasetFile) (err error) {
	if f == nil || (f.Name == "" && len(f.Data) == 0) {
		c.notify(LevelError, NoticeSelectFile)
		return ErrNoFile
	}
	if err := dataset.Validate(f); err != nil {
		c.notify(LevelError, NoticeInvalidFile)
		return err
	}
	if err := c.begin(UploadStarted{}); err != nil {
		return err
	}

	released := false
	defer func() {
		if !released {
			c.Dispatch(UploadFailed{Err: err})
		}
	}()

	if err = c.api.Upload(ctx, *f); err != nil {
		log.Printf("session: upload %s: %v", f.Name, err)
		c.notify(LevelError, NoticeUploadFailed)
		return err
	}
	areas, err := c.api.Areas(ctx)
	if err != nil {
		log.Printf("session: refresh categories after upload: %v", err)
		c.notify(LevelError, NoticeUploadFailed)
		return err
	}

	c.Dispatch(UploadSucceeded{Areas: areas})
	released = true
	c.notify(LevelSuccess, NoticeUploaded)
	return nil
}

// Query submits text and replaces the stored result on success. On failure
// the previous result stays in place.
func (c *Controller) Query(ctx context.Context, text string) (res model.QueryResult, err error) {
	if err := c.begin(QueryStarted{Text: text}); err != nil {
		return model.QueryResult{}, err
	}

	released := false
	defer func() {
		if !released {
			c.Dispatch(QueryFailed{Err: err})
		}
	}()

	res, err = c.api.Query(ctx, text)
	if err != nil {
		log.Printf("session: query: %v", err)
		c.notify(LevelError, NoticeQueryFailed)
		return model.QueryResult{}, err
	}

	c.Dispatch(QuerySucceeded{Result: res})
	released = true
	if c.onResult != nil {
		c.onResult(res)
	}
	return res, nil
}

// ToggleTheme flips the theme and returns the new value.
func (c *Controller) ToggleTheme() bool {
	return c.Dispatch(ThemeToggled{}).Dark
}
