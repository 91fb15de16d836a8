package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestManager_ObserveFrame(t *testing.T) {
	m := NewManager()

	m.ObserveFrame("gathering", 4, false)
	m.ObserveFrame("gathering", 5, false)
	m.ObserveFrame("detected", 10, true)

	if got := testutil.ToFloat64(m.frames.WithLabelValues("gathering")); got != 2 {
		t.Errorf("expected 2 gathering frames, got %v", got)
	}
	if got := testutil.ToFloat64(m.frames.WithLabelValues("detected")); got != 1 {
		t.Errorf("expected 1 detected frame, got %v", got)
	}
	if got := testutil.ToFloat64(m.historyLen); got != 10 {
		t.Errorf("expected history gauge 10, got %v", got)
	}
	if got := testutil.ToFloat64(m.detected); got != 1 {
		t.Errorf("expected detected gauge 1, got %v", got)
	}

	m.ObserveFrame("no_hands", 0, false)
	if got := testutil.ToFloat64(m.detected); got != 0 {
		t.Errorf("expected detected gauge 0, got %v", got)
	}
}

func TestManager_Counters(t *testing.T) {
	m := NewManager()

	m.RecordDetection()
	m.RecordDetection()
	m.RecordFrameError("detect")
	m.RecordPluginExecution("system-control", ResultSuccess)
	m.RecordPluginExecution("system-control", ResultFailure)
	m.RecordPluginExecution("system-control", ResultSuccess)

	if got := testutil.ToFloat64(m.detections); got != 2 {
		t.Errorf("expected 2 detections, got %v", got)
	}
	if got := testutil.ToFloat64(m.frameErrors.WithLabelValues("detect")); got != 1 {
		t.Errorf("expected 1 detect error, got %v", got)
	}
	if got := testutil.ToFloat64(m.pluginExecutions.WithLabelValues("system-control", ResultSuccess)); got != 2 {
		t.Errorf("expected 2 successful executions, got %v", got)
	}
}

func TestManager_Handler(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewManager(WithRegistry(registry), WithNamespace("test"))
	m.RecordDetection()
	m.ObserveAmplitude(0.4)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	body := rec.Body.String()
	for _, name := range []string{"test_detections_total 1", "test_window_amplitude_count 1"} {
		if !strings.Contains(body, name) {
			t.Errorf("expected %q in exposition output", name)
		}
	}
	if m.Registry() != registry {
		t.Error("expected the provided registry to be used")
	}
}
