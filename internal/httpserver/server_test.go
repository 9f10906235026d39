package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/estatelens/estatelens/internal/backend"
	"github.com/estatelens/estatelens/internal/duckdb"
	"github.com/estatelens/estatelens/internal/export"
	"github.com/estatelens/estatelens/internal/model"
	"github.com/estatelens/estatelens/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAPI struct {
	areas  []string
	result model.QueryResult
	err    error
}

func (s *stubAPI) Areas(ctx context.Context) ([]string, error) { return s.areas, nil }

func (s *stubAPI) Upload(ctx context.Context, f model.DatasetFile) error { return s.err }

func (s *stubAPI) Query(ctx context.Context, text string) (model.QueryResult, error) {
	if s.err != nil {
		return model.QueryResult{}, s.err
	}
	return s.result, nil
}

func sampleResult() model.QueryResult {
	return model.QueryResult{
		Summary: "Prices rose",
		Chart: &model.ChartPayload{
			Labels:   []string{"2020", "2021"},
			Datasets: []model.Dataset{{Label: "Wakad", Data: []float64{100, 120}}},
		},
		Table: model.RowSet{
			{{Key: "area", Value: "Wakad"}, {Key: "price", Value: json.Number("100")}},
			{{Key: "area", Value: "Baner"}, {Key: "price", Value: json.Number("120")}},
		},
	}
}

func newTestServer(t *testing.T, api *stubAPI) (*Server, *gin.Engine) {
	t.Helper()
	store, err := duckdb.NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	notices := session.NewNoticeLog(0)
	ctrl := session.NewController(api,
		session.WithNotifier(notices),
		session.WithResultHook(func(r model.QueryResult) {
			if err := store.LoadResult(context.Background(), r.Table); err != nil {
				t.Errorf("LoadResult: %v", err)
			}
		}),
	)

	srv := NewServer("", Deps{
		Controller: ctrl,
		Notices:    notices,
		Assistant:  session.NewAssistant(api),
		Workspace:  store,
		Export:     export.Options{XLSXFormat: export.FormatWorkbook},
	})
	srv.startTime = time.Now()
	return srv, srv.Handler()
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	_, r := newTestServer(t, &stubAPI{})

	w := doJSON(r, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if _, ok := resp["workspace"]; !ok {
		t.Error("missing workspace row counts")
	}
}

func TestQueryThenDownloads(t *testing.T) {
	_, r := newTestServer(t, &stubAPI{result: sampleResult()})

	w := doJSON(r, http.MethodPost, "/api/query", `{"query":"price trend"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("query status = %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"summary":"Prices rose"`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}

	w = doJSON(r, http.MethodGet, "/api/export/csv", "")
	if w.Code != http.StatusOK {
		t.Fatalf("csv status = %d", w.Code)
	}
	want := "\"area\",\"price\"\n\"Wakad\",\"100\"\n\"Baner\",\"120\""
	if w.Body.String() != want {
		t.Errorf("csv = %q, want %q", w.Body.String(), want)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, export.CSVFileName) {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if ct := w.Header().Get("Content-Type"); ct != export.CSVContentType {
		t.Errorf("Content-Type = %q", ct)
	}

	w = doJSON(r, http.MethodGet, "/api/export/xlsx", "")
	if w.Code != http.StatusOK || !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Errorf("xlsx status = %d, zip header missing", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/api/export/pdf", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown kind status = %d, want 404", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/api/chart", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"borderColor":"hsl(0, 70%, 45%)"`) {
		t.Errorf("chart status = %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodGet, "/api/chart.png?width=300&height=200", "")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Errorf("chart.png status = %d type %q", w.Code, w.Header().Get("Content-Type"))
	}
}

func TestNoResultMeansNoContent(t *testing.T) {
	_, r := newTestServer(t, &stubAPI{})

	for _, path := range []string{"/api/chart", "/api/chart.png", "/api/export/csv"} {
		if w := doJSON(r, http.MethodGet, path, ""); w.Code != http.StatusNoContent {
			t.Errorf("%s status = %d, want 204", path, w.Code)
		}
	}
}

func TestQueryFailureMapsToBadGateway(t *testing.T) {
	srv, r := newTestServer(t, &stubAPI{err: &backend.StatusError{Code: 500, Body: "boom"}})

	w := doJSON(r, http.MethodPost, "/api/query", `{"query":"x"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	n, ok := srv.deps.Notices.Latest()
	if !ok || n.Text != session.NoticeQueryFailed {
		t.Errorf("latest notice = %+v", n)
	}
}

func TestQueryInvalidJSON(t *testing.T) {
	_, r := newTestServer(t, &stubAPI{})
	if w := doJSON(r, http.MethodPost, "/api/query", "{"); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func multipartBody(t *testing.T, name string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUploadEndpoint(t *testing.T) {
	_, r := newTestServer(t, &stubAPI{areas: []string{"Wakad", "Baner"}})

	body, ct := multipartBody(t, "prices.xls", []byte("legacy"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"areas":["Wakad","Baner"]`) {
		t.Errorf("body = %s", w.Body.String())
	}

	body, ct = multipartBody(t, "notes.txt", []byte("hello"))
	req = httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unsupported file status = %d, want 400", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/api/upload", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing file status = %d, want 400", w.Code)
	}
}

func TestUploadEndpoint_TooLarge(t *testing.T) {
	api := &stubAPI{areas: []string{"Wakad"}}
	srv, r := newTestServer(t, api)
	srv.maxUpload = 16

	body, ct := multipartBody(t, "prices.xls", bytes.Repeat([]byte("x"), 17))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413: %s", w.Code, w.Body.String())
	}

	body, ct = multipartBody(t, "prices.xls", bytes.Repeat([]byte("x"), 16))
	req = httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status at limit = %d: %s", w.Code, w.Body.String())
	}
}

func TestSessionAndTheme(t *testing.T) {
	_, r := newTestServer(t, &stubAPI{})

	w := doJSON(r, http.MethodPost, "/api/theme/toggle", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"dark":true`) {
		t.Fatalf("toggle = %d %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodGet, "/api/session", "")
	var resp struct {
		Dark    bool `json:"dark"`
		Loading bool `json:"loading"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Dark || resp.Loading {
		t.Errorf("session = %+v", resp)
	}
}

func TestTableSQL(t *testing.T) {
	_, r := newTestServer(t, &stubAPI{result: sampleResult()})

	if w := doJSON(r, http.MethodPost, "/api/query", `{"query":"q"}`); w.Code != http.StatusOK {
		t.Fatalf("query status = %d", w.Code)
	}

	w := doJSON(r, http.MethodPost, "/api/table/sql", `{"sql":"SELECT area FROM result ORDER BY price DESC"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("sql status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		RowCount int `json:"row_count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.RowCount != 2 || !strings.Contains(w.Body.String(), "Baner") {
		t.Errorf("unexpected sql body %s", w.Body.String())
	}

	w = doJSON(r, http.MethodPost, "/api/table/sql", `{"sql":"DROP TABLE result"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("write statement status = %d, want 400", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/api/table/sql", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing sql status = %d, want 400", w.Code)
	}
}

func TestAssistantEndpoint(t *testing.T) {
	_, r := newTestServer(t, &stubAPI{result: model.QueryResult{Summary: "Wakad leads"}})

	w := doJSON(r, http.MethodPost, "/api/assistant", `{"prompt":"which area?"}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Wakad leads") {
		t.Fatalf("assistant = %d %s", w.Code, w.Body.String())
	}
	if w := doJSON(r, http.MethodPost, "/api/assistant", `{"prompt":"  "}`); w.Code != http.StatusBadRequest {
		t.Errorf("blank prompt status = %d, want 400", w.Code)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{session.ErrBusy, http.StatusConflict},
		{session.ErrNoFile, http.StatusBadRequest},
		{duckdb.ErrRejectedQuery, http.StatusBadRequest},
		{export.ErrHeterogeneousRows, http.StatusUnprocessableEntity},
		{errors.New("dial tcp: refused"), http.StatusBadGateway},
	}
	for _, c := range cases {
		if got := statusFor(c.err); got != c.want {
			t.Errorf("statusFor(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}
