// Package app wires camera, hand detector, classifier, store and plugins
// into the detection pipeline.
package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ayusman/sixseven/internal/capture"
	"github.com/ayusman/sixseven/internal/config"
	"github.com/ayusman/sixseven/internal/detector"
	"github.com/ayusman/sixseven/internal/gesture"
	"github.com/ayusman/sixseven/internal/metrics"
	"github.com/ayusman/sixseven/internal/plugin"
	"github.com/ayusman/sixseven/internal/store"
)

// GestureName is the gesture name detections are stored and bound under.
const GestureName = "six-seven"

// subscriberBuffer is how many states a slow subscriber may lag behind
// before frames are dropped for it.
const subscriberBuffer = 8

// Config holds configuration options for the application.
type Config struct {
	Store *store.Store

	// Camera and Detector default to the device camera and MediaPipe
	// (falling back to a mock detector) when nil.
	Camera   capture.Camera
	Detector detector.Detector
	Metrics  *metrics.Manager

	CameraID        int
	FPS             int
	Mirror          bool
	PluginDir       string
	PluginTimeoutMS int
	Thresholds      gesture.Thresholds

	// DefaultPlugin/DefaultAction run when no action is bound to the gesture.
	DefaultPlugin string
	DefaultAction string

	// Clock stamps samples and detections. Defaults to time.Now.
	Clock func() time.Time
}

// ConfigFrom builds an app Config from the process configuration.
func ConfigFrom(cfg *config.Config, s *store.Store, m *metrics.Manager) Config {
	return Config{
		Store:           s,
		Metrics:         m,
		CameraID:        cfg.CameraID,
		FPS:             cfg.FPS,
		Mirror:          cfg.Mirror,
		PluginDir:       cfg.PluginDir,
		PluginTimeoutMS: cfg.PluginTimeoutMS,
		Thresholds:      cfg.Thresholds(),
		DefaultPlugin:   cfg.DefaultPlugin,
		DefaultAction:   cfg.DefaultAction,
	}
}

// App is the running detection pipeline.
type App struct {
	config     Config
	camera     capture.Camera
	detector   detector.Detector
	classifier *gesture.Classifier
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor
	metrics    *metrics.Manager
	now        func() time.Time

	mu      sync.RWMutex
	enabled bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	// stepMu serializes frames through the classifier and guards current.
	stepMu  sync.Mutex
	current string

	subsMu sync.RWMutex
	subs   map[chan gesture.DetectionState]struct{}
	latest gesture.DetectionState

	// actionsMu guards the actions context and stopping. Actions are not
	// launched while Stop is waiting for the running ones.
	actionsMu     sync.Mutex
	actionsCtx    context.Context
	cancelActions context.CancelFunc
	stopping      bool
	actions       sync.WaitGroup
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.FPS <= 0 {
		config.FPS = capture.DefaultFPS
	}
	if config.PluginTimeoutMS <= 0 {
		config.PluginTimeoutMS = 5000
	}
	if config.Thresholds == (gesture.Thresholds{}) {
		config.Thresholds = gesture.DefaultThresholds()
	}

	now := config.Clock
	if now == nil {
		now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		config:        config,
		camera:        config.Camera,
		detector:      config.Detector,
		pluginMgr:     plugin.NewManager(config.PluginDir),
		pluginExec:    plugin.NewExecutor(config.PluginTimeoutMS),
		metrics:       config.Metrics,
		now:           now,
		enabled:       true,
		subs:          make(map[chan gesture.DetectionState]struct{}),
		actionsCtx:    ctx,
		cancelActions: cancel,
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(config.CameraID, capture.WithFPS(config.FPS), capture.WithMirror(config.Mirror))
	}
	if a.metrics == nil {
		a.metrics = metrics.NewManager()
	}

	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}
	}

	a.classifier = gesture.NewClassifier(
		gesture.WithThresholds(config.Thresholds),
		gesture.WithClock(now),
	)
	a.classifier.OnTransition(a.handleTransition)
	a.latest = a.classifier.State()

	return a
}

// SetEnabled pauses or resumes detection. Pausing clears the motion window
// and closes any open detection.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	was := a.enabled
	a.enabled = enabled
	a.mu.Unlock()

	if was && !enabled {
		a.stepMu.Lock()
		a.classifier.Reset()
		a.endCurrent(a.now())
		state := a.classifier.State()
		a.stepMu.Unlock()
		a.publish(state)
	}
	log.Printf("Detection enabled: %v", enabled)
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	if err := a.pluginMgr.Discover(); err != nil {
		return err
	}
	log.Printf("Discovered %d plugins in %s", len(a.pluginMgr.List()), a.pluginMgr.PluginDir())
	return nil
}

// Start opens the camera and launches the pipeline goroutine.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.config.FPS)

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	log.Printf("Detection pipeline started at %d fps", a.config.FPS)
	return nil
}

// Stop halts the pipeline, waits for running actions and releases the
// camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	a.stepMu.Lock()
	a.endCurrent(a.now())
	a.stepMu.Unlock()

	a.actionsMu.Lock()
	a.stopping = true
	a.cancelActions()
	a.actionsMu.Unlock()

	a.actions.Wait()

	// A later Start or Step gets a live context for its actions.
	a.actionsMu.Lock()
	a.actionsCtx, a.cancelActions = context.WithCancel(context.Background())
	a.stopping = false
	a.actionsMu.Unlock()

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	a.subsMu.Lock()
	for ch := range a.subs {
		delete(a.subs, ch)
		close(ch)
	}
	a.subsMu.Unlock()

	log.Println("Detection pipeline stopped")
}

// Subscribe returns a channel receiving every DetectionState. A subscriber
// that falls behind misses states rather than blocking the pipeline.
func (a *App) Subscribe() <-chan gesture.DetectionState {
	ch := make(chan gesture.DetectionState, subscriberBuffer)
	a.subsMu.Lock()
	a.subs[ch] = struct{}{}
	a.subsMu.Unlock()
	return ch
}

// Unsubscribe stops delivery to ch and closes it.
func (a *App) Unsubscribe(ch <-chan gesture.DetectionState) {
	a.subsMu.Lock()
	defer a.subsMu.Unlock()
	for c := range a.subs {
		if c == ch {
			delete(a.subs, c)
			close(c)
			return
		}
	}
}

// Latest returns the most recently published state.
func (a *App) Latest() gesture.DetectionState {
	a.subsMu.RLock()
	defer a.subsMu.RUnlock()
	return a.latest
}

func (a *App) publish(state gesture.DetectionState) {
	a.subsMu.Lock()
	defer a.subsMu.Unlock()

	a.latest = state
	for ch := range a.subs {
		select {
		case ch <- state:
		default:
		}
	}
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Metrics returns the metrics manager.
func (a *App) Metrics() *metrics.Manager {
	return a.metrics
}

// Store returns the store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}
