// Package metrics exposes Prometheus collectors for the detection pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Plugin execution results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultSkipped = "skipped"
)

// Manager owns the pipeline collectors and the registry they live on.
type Manager struct {
	namespace string
	registry  *prometheus.Registry

	frames           *prometheus.CounterVec
	frameErrors      *prometheus.CounterVec
	detections       prometheus.Counter
	detected         prometheus.Gauge
	historyLen       prometheus.Gauge
	amplitude        prometheus.Histogram
	pluginExecutions *prometheus.CounterVec
}

// Option configures a Manager.
type Option func(*Manager)

// WithNamespace sets the namespace prefix for every metric.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithRegistry registers the collectors on r instead of a fresh registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// NewManager creates the collectors and registers them.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "sixseven",
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	auto := promauto.With(m.registry)

	m.frames = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "frames_processed_total",
		Help:      "Frames run through the classifier, by resulting phase.",
	}, []string{"phase"})

	m.frameErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "frame_errors_total",
		Help:      "Frames dropped before classification, by stage.",
	}, []string{"stage"})

	m.detections = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "detections_total",
		Help:      "Rising edges of the seesaw detection.",
	})

	m.detected = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "detected",
		Help:      "1 while the seesaw gesture is detected.",
	})

	m.historyLen = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "history_samples",
		Help:      "Samples currently held in the motion window.",
	})

	m.amplitude = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "window_amplitude",
		Help:      "Vertical wrist amplitude of each evaluated window.",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.2, 0.3, 0.5},
	})

	m.pluginExecutions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "plugin_executions_total",
		Help:      "Plugin actions run on detection, by plugin and result.",
	}, []string{"plugin", "result"})

	return m
}

// ObserveFrame records one classified frame.
func (m *Manager) ObserveFrame(phase string, historyLen int, detected bool) {
	m.frames.WithLabelValues(phase).Inc()
	m.historyLen.Set(float64(historyLen))
	if detected {
		m.detected.Set(1)
	} else {
		m.detected.Set(0)
	}
}

// ObserveAmplitude records the amplitude of an evaluated window.
func (m *Manager) ObserveAmplitude(amplitude float64) {
	m.amplitude.Observe(amplitude)
}

// RecordFrameError counts a frame dropped at stage ("capture" or "detect").
func (m *Manager) RecordFrameError(stage string) {
	m.frameErrors.WithLabelValues(stage).Inc()
}

// RecordDetection counts a detection rising edge.
func (m *Manager) RecordDetection() {
	m.detections.Inc()
}

// RecordPluginExecution counts one plugin run.
func (m *Manager) RecordPluginExecution(plugin, result string) {
	m.pluginExecutions.WithLabelValues(plugin, result).Inc()
}

// Registry returns the registry holding the collectors.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
