// Package backend is the HTTP client for the analytics backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/estatelens/estatelens/internal/model"
)

// APIPrefix is prepended to every route.
const APIPrefix = "/api"

// ErrStatus is wrapped by StatusError for non-2xx responses.
var ErrStatus = errors.New("backend: unexpected status")

// StatusError carries the HTTP status and a trimmed body of a failed call.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend: status %d", e.Code)
	}
	return fmt.Sprintf("backend: status %d: %s", e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// Client implements model.AnalyticsAPI over HTTP.
type Client struct {
	base string
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the overall per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New returns a client for the backend at baseURL (without the /api prefix).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("backend: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("backend: base url %q must be an absolute http(s) url", baseURL)
	}
	c := &Client{
		base: strings.TrimRight(u.String(), "/") + APIPrefix,
		http: &http.Client{Timeout: model.DefaultRequestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the resolved API root including the /api prefix.
func (c *Client) BaseURL() string { return c.base }

// do sends req and decodes a JSON response body into dest when non-nil.
func (c *Client) do(req *http.Request, dest interface{}) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if dest == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("backend: decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

// Areas returns the known category list.
func (c *Client) Areas(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/areas/", nil)
	if err != nil {
		return nil, fmt.Errorf("backend: build request: %w", err)
	}
	var result struct {
		Areas []string `json:"areas"`
	}
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	if result.Areas == nil {
		return []string{}, nil
	}
	return result.Areas, nil
}

// Upload sends the dataset as multipart form field "file".
func (c *Client) Upload(ctx context.Context, f model.DatasetFile) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", f.Name)
	if err != nil {
		return fmt.Errorf("backend: build upload: %w", err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return fmt.Errorf("backend: build upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("backend: build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/upload/", &body)
	if err != nil {
		return fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req, nil)
}

// Query submits free text and returns the backend's result.
func (c *Client) Query(ctx context.Context, text string) (model.QueryResult, error) {
	payload, err := json.Marshal(map[string]string{"query": text})
	if err != nil {
		return model.QueryResult{}, fmt.Errorf("backend: marshal query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/query/", bytes.NewReader(payload))
	if err != nil {
		return model.QueryResult{}, fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result model.QueryResult
	if err := c.do(req, &result); err != nil {
		return model.QueryResult{}, err
	}
	return result, nil
}
