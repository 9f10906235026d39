// Package httpserver exposes the session over a local HTTP API so a browser
// or script can drive uploads, queries and table downloads.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/estatelens/estatelens/internal/backend"
	"github.com/estatelens/estatelens/internal/chart"
	"github.com/estatelens/estatelens/internal/dataset"
	"github.com/estatelens/estatelens/internal/duckdb"
	"github.com/estatelens/estatelens/internal/export"
	"github.com/estatelens/estatelens/internal/model"
	"github.com/estatelens/estatelens/internal/session"
)

const (
	// maxUploadBytes caps the uploaded dataset.
	maxUploadBytes = 64 << 20
	// multipartOverhead bounds the form framing around the file part.
	multipartOverhead = 1 << 20
)

// Workspace is the narrow SQL workspace contract required by the HTTP API.
type Workspace interface {
	ExecuteQuery(ctx context.Context, query string) (model.RowSet, error)
	Columns(ctx context.Context) ([]duckdb.Column, error)
	TableRowCounts(ctx context.Context) (map[string]int64, error)
}

// Deps wires the server to the session.
type Deps struct {
	Controller *session.Controller
	Notices    *session.NoticeLog
	Assistant  *session.Assistant
	Workspace  Workspace // optional
	Export     export.Options
}

// Server provides the companion HTTP API.
type Server struct {
	addr      string
	deps      Deps
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
	maxUpload int64
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, deps Deps) *Server {
	if addr == "" {
		addr = model.DefaultListenAddr
	}
	if deps.Notices == nil {
		deps.Notices = session.NewNoticeLog(0)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      addr,
		deps:      deps,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
		maxUpload: maxUploadBytes,
	}
}

// Handler builds the route table.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/session", s.handleSession)
	api.GET("/areas", s.handleAreas)
	api.POST("/upload", s.handleUpload)
	api.POST("/query", s.handleQuery)
	api.POST("/theme/toggle", s.handleThemeToggle)
	api.GET("/chart", s.handleChart)
	api.GET("/chart.png", s.handleChartPNG)
	api.GET("/export/:kind", s.handleExport)
	api.GET("/assistant", s.handleTranscript)
	api.POST("/assistant", s.handleAssistant)
	api.GET("/table/schema", s.handleTableSchema)
	api.POST("/table/sql", s.handleTableSQL)
	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      90 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.addr = listener.Addr().String()
	s.startTime = time.Now()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("httpserver: serve: %v", err)
		}
	}()
	return nil
}

// Addr returns the listen address, resolved once Start has run.
func (s *Server) Addr() string { return s.addr }

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var se *backend.StatusError
	switch {
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, session.ErrNoFile),
		errors.Is(err, session.ErrEmptyPrompt),
		errors.Is(err, dataset.ErrUnsupportedType),
		errors.Is(err, dataset.ErrEmpty),
		errors.Is(err, duckdb.ErrRejectedQuery):
		return http.StatusBadRequest
	case errors.Is(err, export.ErrHeterogeneousRows):
		return http.StatusUnprocessableEntity
	case errors.Is(err, export.ErrUnknownFormat):
		return http.StatusNotFound
	case errors.As(err, &se), errors.Is(err, context.DeadlineExceeded):
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func (s *Server) handleHealth(c *gin.Context) {
	snap := s.deps.Controller.Snapshot()
	body := gin.H{
		"status":  "ok",
		"uptime":  time.Since(s.startTime).String(),
		"loading": snap.Loading,
	}
	if s.deps.Workspace != nil {
		if counts, err := s.deps.Workspace.TableRowCounts(c.Request.Context()); err == nil {
			body["workspace"] = counts
		}
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleSession(c *gin.Context) {
	snap := s.deps.Controller.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"categories": snap.Categories,
		"loading":    snap.Loading,
		"op":         snap.Op.String(),
		"dark":       snap.Dark,
		"result":     snap.Result,
		"notices":    s.deps.Notices.Recent(),
	})
}

func (s *Server) handleAreas(c *gin.Context) {
	if c.Query("refresh") != "" {
		if err := s.deps.Controller.LoadCategories(c.Request.Context()); err != nil {
			writeError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"areas": s.deps.Controller.Snapshot().Categories})
}

func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload+multipartOverhead)

	var file *model.DatasetFile
	hdr, err := c.FormFile("file")
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		s.uploadTooLarge(c)
		return
	case err == nil:
		f, err := hdr.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, s.maxUpload+1))
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
			return
		}
		if int64(len(data)) > s.maxUpload {
			s.uploadTooLarge(c)
			return
		}
		file = &model.DatasetFile{Name: hdr.Filename, Data: data}
	}

	if err := s.deps.Controller.Upload(c.Request.Context(), file); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"areas": s.deps.Controller.Snapshot().Categories})
}

func (s *Server) uploadTooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{
		"error": fmt.Sprintf("dataset exceeds %d bytes", s.maxUpload),
	})
}

func (s *Server) handleQuery(c *gin.Context) {
	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	res, err := s.deps.Controller.Query(c.Request.Context(), req.Query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleThemeToggle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"dark": s.deps.Controller.ToggleTheme()})
}

// currentSpec returns the synthesized chart of the current result.
func (s *Server) currentSpec() (*chart.Spec, bool) {
	snap := s.deps.Controller.Snapshot()
	if snap.Result == nil {
		return nil, false
	}
	return chart.Synthesize(snap.Result.Chart)
}

func (s *Server) handleChart(c *gin.Context) {
	spec, ok := s.currentSpec()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, spec)
}

func intQuery(c *gin.Context, name string, def, lo, hi int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return max(lo, min(hi, n))
}

func (s *Server) handleChartPNG(c *gin.Context) {
	spec, ok := s.currentSpec()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	w := intQuery(c, "width", 960, 200, 4000)
	h := intQuery(c, "height", 480, 150, 3000)
	img, err := chart.RenderPNG(spec, w, h)
	if err != nil {
		if errors.Is(err, chart.ErrNoPoints) {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

// attachment emits a file as an HTTP download.
type attachment struct{ c *gin.Context }

func (a attachment) Emit(_ context.Context, f export.File) error {
	a.c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Name))
	a.c.Data(http.StatusOK, f.ContentType, f.Data)
	return nil
}

func (s *Server) handleExport(c *gin.Context) {
	snap := s.deps.Controller.Snapshot()
	if !snap.Result.HasTable() {
		c.Status(http.StatusNoContent)
		return
	}
	f, err := export.Build(snap.Result.Table, c.Param("kind"), s.deps.Export)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := (attachment{c}).Emit(c.Request.Context(), f); err != nil {
		writeError(c, err)
	}
}

func (s *Server) handleTranscript(c *gin.Context) {
	if s.deps.Assistant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assistant disabled"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": s.deps.Assistant.Transcript()})
}

func (s *Server) handleAssistant(c *gin.Context) {
	if s.deps.Assistant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assistant disabled"})
		return
	}
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	reply, err := s.deps.Assistant.Ask(c.Request.Context(), req.Prompt)
	if err != nil && (errors.Is(err, session.ErrEmptyPrompt) || errors.Is(err, session.ErrBusy)) {
		writeError(c, err)
		return
	}
	// Backend failures still produce a reply line for the transcript.
	c.JSON(http.StatusOK, gin.H{"reply": reply, "messages": s.deps.Assistant.Transcript()})
}

func (s *Server) handleTableSchema(c *gin.Context) {
	if s.deps.Workspace == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "workspace disabled"})
		return
	}
	cols, err := s.deps.Workspace.Columns(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read workspace schema"})
		return
	}
	counts, err := s.deps.Workspace.TableRowCounts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read table row counts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"table":      duckdb.ResultTable,
		"columns":    cols,
		"row_counts": counts,
	})
}

func (s *Server) handleTableSQL(c *gin.Context) {
	if s.deps.Workspace == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "workspace disabled"})
		return
	}
	var req struct {
		SQL string `json:"sql" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body or missing sql field"})
		return
	}

	rows, err := s.deps.Workspace.ExecuteQuery(c.Request.Context(), req.SQL)
	if err != nil {
		if errors.Is(err, duckdb.ErrRejectedQuery) {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"columns":   rows.Headers(),
		"rows":      rows,
		"row_count": len(rows),
	})
}
