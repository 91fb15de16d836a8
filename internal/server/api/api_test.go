package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/sixseven/internal/plugin"
	"github.com/ayusman/sixseven/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// fakePlugins knows one plugin with a fixed set of actions.
type fakePlugins struct {
	plugins []*plugin.Plugin
}

func newFakePlugins() *fakePlugins {
	return &fakePlugins{plugins: []*plugin.Plugin{{
		Manifest: plugin.Manifest{
			Name:        "system-control",
			Version:     "1.0.0",
			Description: "volume",
			Actions:     []string{"volume-up", "volume-down"},
		},
	}}}
}

func (f *fakePlugins) Resolve(name, action string) (*plugin.Plugin, error) {
	for _, p := range f.plugins {
		if p.Manifest.Name != name {
			continue
		}
		if !p.Manifest.Supports(action) {
			return nil, plugin.ErrUnsupportedAction
		}
		return p, nil
	}
	return nil, plugin.ErrPluginNotFound
}

func (f *fakePlugins) List() []*plugin.Plugin {
	return f.plugins
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
}
