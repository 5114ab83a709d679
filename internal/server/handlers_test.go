package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/ppiankov/trackmatch/internal/model"
	"github.com/ppiankov/trackmatch/internal/pipeline"
)

type mockPipeline struct {
	identifyErr error
	selectErr   error
	lastURL     string
	lastPage    model.Page
	selected    []string
}

func (m *mockPipeline) Identify(ctx context.Context, url string) (*model.Report, error) {
	m.lastURL = url
	if m.identifyErr != nil {
		return nil, m.identifyErr
	}
	return &model.Report{SourceURL: url, Status: model.StatusNoMatch, Message: model.MessageNoMatch}, nil
}

func (m *mockPipeline) Run(ctx context.Context, page model.Page) *model.Report {
	m.lastPage = page
	return &model.Report{Subject: page.Title, Status: model.StatusUnidentified, Message: model.MessageUnidentified}
}

func (m *mockPipeline) Select(ctx context.Context, c model.SearchCandidate) (*model.AddResult, error) {
	if m.selectErr != nil {
		return nil, m.selectErr
	}
	m.selected = append(m.selected, c.URI)
	return &model.AddResult{URI: c.URI, PlaylistID: "pl1", OK: true}, nil
}

func newTestServer(m *mockPipeline) http.Handler {
	return NewServer(m, &model.ServerConfig{Host: "127.0.0.1", Port: 0}, zap.NewNop()).Router()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := do(t, newTestServer(&mockPipeline{}), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["status"] != "ok" {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHandleIdentify(t *testing.T) {
	m := &mockPipeline{}
	rec := do(t, newTestServer(m), http.MethodPost, "/api/v1/identify", `{"url":"https://www.youtube.com/watch?v=abc"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if m.lastURL != "https://www.youtube.com/watch?v=abc" {
		t.Errorf("unexpected url passed through: %q", m.lastURL)
	}
	var report model.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if report.Status != model.StatusNoMatch {
		t.Errorf("unexpected status %s", report.Status)
	}
}

func TestHandleIdentify_BadRequests(t *testing.T) {
	h := newTestServer(&mockPipeline{})
	for _, body := range []string{`not json`, `{"url":""}`, `{"url":"ftp://x/y"}`, `{"url":"/relative"}`} {
		if rec := do(t, h, http.MethodPost, "/api/v1/identify", body); rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestHandleIdentify_Errors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("fetch: %w", pipeline.ErrDisallowed), http.StatusForbidden},
		{errors.New("fetch: unexpected status: 500"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		rec := do(t, newTestServer(&mockPipeline{identifyErr: tt.err}), http.MethodPost, "/api/v1/identify", `{"url":"https://example.com/v"}`)
		if rec.Code != tt.want {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.want, rec.Code)
		}
	}
}

func TestHandleResolve(t *testing.T) {
	m := &mockPipeline{}
	h := newTestServer(m)

	rec := do(t, h, http.MethodPost, "/api/v1/resolve", `{"page":{"title":"Daft Punk - Get Lucky","metadata_rows":[{"title":"Song","content":"Get Lucky"}]}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if m.lastPage.Title != "Daft Punk - Get Lucky" || len(m.lastPage.MetadataRows) != 1 {
		t.Errorf("page not decoded: %+v", m.lastPage)
	}

	if rec := do(t, h, http.MethodPost, "/api/v1/resolve", `{"page":{}}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty page, got %d", rec.Code)
	}
}

func TestHandleSelect(t *testing.T) {
	m := &mockPipeline{}
	h := newTestServer(m)

	rec := do(t, h, http.MethodPost, "/api/v1/select", `{"candidate":{"uri":"spotify:track:1","name":"Get Lucky"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(m.selected) != 1 || m.selected[0] != "spotify:track:1" {
		t.Errorf("unexpected selection %v", m.selected)
	}

	if rec := do(t, h, http.MethodPost, "/api/v1/select", `{"candidate":{}}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without uri, got %d", rec.Code)
	}
}

func TestHandleSelect_Errors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{pipeline.ErrNoPlaylist, http.StatusNotImplemented},
		{pipeline.ErrNoAdder, http.StatusNotImplemented},
		{errors.New("add to playlist: forbidden"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		rec := do(t, newTestServer(&mockPipeline{selectErr: tt.err}), http.MethodPost, "/api/v1/select", `{"candidate":{"uri":"u1"}}`)
		if rec.Code != tt.want {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.want, rec.Code)
		}
	}
}

func TestStop_NotStarted(t *testing.T) {
	s := NewServer(&mockPipeline{}, &model.ServerConfig{}, nil)
	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}
