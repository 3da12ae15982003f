package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pdl/provider"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	registry := provider.NewRegistry(nil, &provider.RegistryConfig{})
	return New(registry, nil, ".")
}

func TestHandleRun_SimpleLiteral(t *testing.T) {
	s := newTestServer(t)

	body, _ := json.Marshal(runRequest{Program: `"hello {{ NAME }}"`, Scope: map[string]any{"NAME": "world"}})
	req := httptest.NewRequest(http.MethodPost, "/run", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp runResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Document != "hello world" {
		t.Errorf("document = %q, want %q", resp.Document, "hello world")
	}
}

func TestHandleRun_ParseError(t *testing.T) {
	s := newTestServer(t)

	body, _ := json.Marshal(runRequest{Program: `function: greet
params: []
body: "hi"`})
	req := httptest.NewRequest(http.MethodPost, "/run", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", w.Code, w.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}
