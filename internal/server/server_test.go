package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ayusman/sixseven/internal/gesture"
	"github.com/ayusman/sixseven/internal/metrics"
)

// fakeState is a StateSource driven by the test.
type fakeState struct {
	mu      sync.Mutex
	latest  gesture.DetectionState
	enabled bool
	subs    map[chan gesture.DetectionState]struct{}
}

func newFakeState() *fakeState {
	return &fakeState{
		enabled: true,
		latest:  gesture.DetectionState{Phase: gesture.PhaseNoHands, Message: "Show both hands"},
		subs:    make(map[chan gesture.DetectionState]struct{}),
	}
}

func (f *fakeState) Latest() gesture.DetectionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest
}

func (f *fakeState) Subscribe() <-chan gesture.DetectionState {
	ch := make(chan gesture.DetectionState, 8)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()
	return ch
}

func (f *fakeState) Unsubscribe(ch <-chan gesture.DetectionState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for c := range f.subs {
		if c == ch {
			delete(f.subs, c)
			close(c)
		}
	}
}

func (f *fakeState) SetEnabled(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = enabled
}

func (f *fakeState) IsEnabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

func (f *fakeState) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *fakeState) push(state gesture.DetectionState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest = state
	for ch := range f.subs {
		ch <- state
	}
}

// closeAll mimics the pipeline shutting down.
func (f *fakeState) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs {
		delete(f.subs, ch)
		close(ch)
	}
}

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	t.Run("returns 200 with JSON response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", ct)
		}

		var response map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response["status"] != "ok" {
			t.Errorf("expected status 'ok', got %v", response["status"])
		}
		if _, exists := response["uptime"]; !exists {
			t.Error("expected 'uptime' field in response")
		}
	})

	t.Run("only allows GET method", func(t *testing.T) {
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
			req := httptest.NewRequest(method, "/api/health", nil)
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})
}

func TestServer_NotFound(t *testing.T) {
	s := New(Config{})

	for _, path := range []string{"/api/nonexistent", "/api/status", "/api/actions", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected status %d, got %d", path, http.StatusNotFound, rec.Code)
		}
	}
}

func TestServer_Status(t *testing.T) {
	state := newFakeState()
	s := New(Config{State: state})

	state.push(gesture.DetectionState{
		Detected: true,
		Message:  "6-7 detected",
		Phase:    gesture.PhaseDetected,
		History:  30,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var got gesture.DetectionState
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !got.Detected || got.Phase != gesture.PhaseDetected || got.History != 30 {
		t.Errorf("unexpected state %+v", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/status", nil)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST: expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestServer_Enabled(t *testing.T) {
	state := newFakeState()
	s := New(Config{State: state})

	tests := []struct {
		name   string
		method string
		body   string
		code   int
		want   bool
	}{
		{"get", http.MethodGet, "", http.StatusOK, true},
		{"disable", http.MethodPut, `{"enabled":false}`, http.StatusOK, false},
		{"missing field", http.MethodPut, `{}`, http.StatusBadRequest, false},
		{"enable", http.MethodPut, `{"enabled":true}`, http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/enabled", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)

			if rec.Code != tt.code {
				t.Fatalf("expected status %d, got %d", tt.code, rec.Code)
			}
			if state.IsEnabled() != tt.want {
				t.Errorf("enabled = %v, want %v", state.IsEnabled(), tt.want)
			}
		})
	}
}

func TestServer_Metrics(t *testing.T) {
	m := metrics.NewManager()
	m.RecordDetection()
	s := New(Config{Metrics: m.Handler()})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "sixseven_detections_total 1") {
		t.Errorf("metrics body missing detections counter:\n%s", rec.Body.String())
	}
}

func TestServer_StaticFiles(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "index.html"), []byte("<h1>sixseven</h1>"), 0644); err != nil {
		t.Fatalf("failed to write static file: %v", err)
	}

	s := New(Config{StaticDir: tmpDir})

	req := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if string(body) != "<h1>sixseven</h1>" {
		t.Errorf("unexpected body %q", body)
	}
}
