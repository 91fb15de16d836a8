package api

import (
	"net/http"
	"testing"

	"github.com/ayusman/sixseven/internal/store"
)

func TestActionHandler_Create(t *testing.T) {
	h := NewActionHandler(newTestStore(t), newFakePlugins())

	rec := do(t, h, http.MethodPost, "/api/actions",
		`{"plugin_name":"system-control","action_name":"volume-up","config":{"step":5}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var got actionResponse
	decode(t, rec, &got)
	if got.ID == "" {
		t.Error("expected an id")
	}
	if got.Gesture != DefaultGesture {
		t.Errorf("gesture = %q, want %q", got.Gesture, DefaultGesture)
	}
	if !got.Enabled {
		t.Error("expected enabled by default")
	}
	if string(got.Config) != `{"step":5}` {
		t.Errorf("config = %s", got.Config)
	}
	if got.CreatedAt == "" {
		t.Error("expected created_at")
	}
}

func TestActionHandler_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"missing plugin", `{"action_name":"volume-up"}`, http.StatusBadRequest},
		{"missing action", `{"plugin_name":"system-control"}`, http.StatusBadRequest},
		{"unknown plugin", `{"plugin_name":"nope","action_name":"volume-up"}`, http.StatusBadRequest},
		{"unsupported action", `{"plugin_name":"system-control","action_name":"volume-mute"}`, http.StatusBadRequest},
		{"disabled", `{"plugin_name":"system-control","action_name":"volume-down","enabled":false}`, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewActionHandler(newTestStore(t), newFakePlugins())
			rec := do(t, h, http.MethodPost, "/api/actions", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestActionHandler_CreateWithoutResolver(t *testing.T) {
	h := NewActionHandler(newTestStore(t), nil)

	rec := do(t, h, http.MethodPost, "/api/actions", `{"plugin_name":"anything","action_name":"go"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
}

func TestActionHandler_List(t *testing.T) {
	s := newTestStore(t)
	h := NewActionHandler(s, nil)

	rec := do(t, h, http.MethodGet, "/api/actions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var empty listActionsResponse
	decode(t, rec, &empty)
	if empty.Actions == nil || len(empty.Actions) != 0 {
		t.Errorf("expected empty non-nil list, got %v", empty.Actions)
	}

	for _, a := range []*store.Action{
		{ID: "a1", Gesture: "six-seven", PluginName: "p", ActionName: "x", Enabled: true},
		{ID: "a2", Gesture: "other", PluginName: "p", ActionName: "y", Enabled: true},
		{ID: "a3", Gesture: "six-seven", PluginName: "p", ActionName: "z", Enabled: false},
	} {
		if err := s.Actions().Create(a); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	t.Run("all", func(t *testing.T) {
		var got listActionsResponse
		decode(t, do(t, h, http.MethodGet, "/api/actions", ""), &got)
		if len(got.Actions) != 3 {
			t.Errorf("len = %d, want 3", len(got.Actions))
		}
	})

	t.Run("by gesture", func(t *testing.T) {
		var got listActionsResponse
		decode(t, do(t, h, http.MethodGet, "/api/actions?gesture=six-seven", ""), &got)
		if len(got.Actions) != 1 || got.Actions[0].ID != "a1" {
			t.Errorf("got %+v, want only a1", got.Actions)
		}
	})
}

func TestActionHandler_GetUpdateDelete(t *testing.T) {
	s := newTestStore(t)
	h := NewActionHandler(s, newFakePlugins())

	a := &store.Action{ID: "a1", Gesture: "six-seven", PluginName: "system-control", ActionName: "volume-up", Enabled: true}
	if err := s.Actions().Create(a); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	rec := do(t, h, http.MethodGet, "/api/actions/a1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}

	rec = do(t, h, http.MethodPut, "/api/actions/a1", `{"action_name":"volume-down","enabled":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d: %s", rec.Code, rec.Body.String())
	}
	var updated actionResponse
	decode(t, rec, &updated)
	if updated.ActionName != "volume-down" || updated.Enabled {
		t.Errorf("updated = %+v", updated)
	}
	if updated.PluginName != "system-control" {
		t.Errorf("plugin_name changed to %q", updated.PluginName)
	}

	rec = do(t, h, http.MethodPut, "/api/actions/a1", `{"action_name":"volume-mute"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("PUT unsupported status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = do(t, h, http.MethodDelete, "/api/actions/a1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d", rec.Code)
	}

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec = do(t, h, method, "/api/actions/a1", `{}`)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s after delete status = %d, want %d", method, rec.Code, http.StatusNotFound)
		}
	}
}

func TestActionHandler_MethodNotAllowed(t *testing.T) {
	h := NewActionHandler(newTestStore(t), nil)

	if rec := do(t, h, http.MethodDelete, "/api/actions", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE collection status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/actions/x", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST item status = %d", rec.Code)
	}
}
