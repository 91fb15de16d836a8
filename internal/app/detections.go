package app

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/sixseven/internal/gesture"
	"github.com/ayusman/sixseven/internal/metrics"
	"github.com/ayusman/sixseven/internal/plugin"
	"github.com/ayusman/sixseven/internal/store"
)

// binding is one plugin action to run on detection.
type binding struct {
	plugin string
	action string
	config json.RawMessage
}

// beginDetection records the rising edge and fires the bound actions.
// Callers hold stepMu.
func (a *App) beginDetection(tr gesture.Transition) {
	id := uuid.New().String()
	an := tr.State.Analysis

	a.metrics.RecordDetection()
	log.Printf("Seesaw detected: id=%s zero_crossings=%d amplitude=%.3f opposite_moves=%d/%d",
		id, an.ZeroCrossings, an.Amplitude, an.OppositeMoves, an.Samples)

	if s := a.config.Store; s != nil {
		err := s.Detections().Create(&store.Detection{
			ID:            id,
			Gesture:       GestureName,
			StartedAt:     tr.At,
			ZeroCrossings: an.ZeroCrossings,
			Amplitude:     an.Amplitude,
			OppositeMoves: an.OppositeMoves,
			Samples:       an.Samples,
		})
		if err != nil {
			log.Printf("Failed to store detection %s: %v", id, err)
		}
	}
	a.current = id

	if !a.launchActions(id, an) {
		log.Printf("Skipping actions for %s: pipeline is stopping", id)
	}
}

// launchActions runs the bindings for detection id in the background. It
// returns false while Stop is draining actions.
func (a *App) launchActions(id string, an gesture.Analysis) bool {
	a.actionsMu.Lock()
	defer a.actionsMu.Unlock()

	if a.stopping {
		return false
	}

	ctx := a.actionsCtx
	a.actions.Add(1)
	go func() {
		defer a.actions.Done()
		a.runActions(ctx, id, an)
	}()
	return true
}

// endCurrent closes the open detection, if any. Callers hold stepMu.
func (a *App) endCurrent(at time.Time) {
	if a.current == "" {
		return
	}
	id := a.current
	a.current = ""

	log.Printf("Seesaw ended: id=%s", id)
	if s := a.config.Store; s != nil {
		if err := s.Detections().End(id, at); err != nil {
			log.Printf("Failed to end detection %s: %v", id, err)
		}
	}
}

// CurrentDetection returns the ID of the open detection, or "".
func (a *App) CurrentDetection() string {
	a.stepMu.Lock()
	defer a.stepMu.Unlock()
	return a.current
}

// bindings returns the stored actions for the gesture, or the configured
// default when none are stored.
func (a *App) bindings() []binding {
	if s := a.config.Store; s != nil {
		stored, err := s.Actions().ListByGesture(GestureName)
		if err != nil {
			log.Printf("Failed to load actions for %s: %v", GestureName, err)
		}
		if len(stored) > 0 {
			out := make([]binding, 0, len(stored))
			for _, b := range stored {
				out = append(out, binding{plugin: b.PluginName, action: b.ActionName, config: b.Config})
			}
			return out
		}
	}

	if a.config.DefaultPlugin == "" || a.config.DefaultAction == "" {
		return nil
	}
	return []binding{{plugin: a.config.DefaultPlugin, action: a.config.DefaultAction}}
}

// runActions executes every binding and records the outcome on the detection.
func (a *App) runActions(ctx context.Context, id string, an gesture.Analysis) {
	params, err := json.Marshal(an)
	if err != nil {
		log.Printf("Failed to encode detection params: %v", err)
	}

	var (
		ran  []string
		errs []error
	)
	for _, b := range a.bindings() {
		name := b.plugin + "/" + b.action
		if err := a.execute(ctx, b, params); err != nil {
			log.Printf("Action %s failed: %v", name, err)
			errs = append(errs, err)
			continue
		}
		log.Printf("Action %s executed", name)
		ran = append(ran, name)
	}

	if s := a.config.Store; s != nil && (len(ran) > 0 || len(errs) > 0) {
		var msg string
		if err := errors.Join(errs...); err != nil {
			msg = err.Error()
		}
		if err := s.Detections().SetAction(id, strings.Join(ran, ","), msg); err != nil {
			log.Printf("Failed to record actions for %s: %v", id, err)
		}
	}
}

func (a *App) execute(ctx context.Context, b binding, params json.RawMessage) error {
	p, err := a.pluginMgr.Resolve(b.plugin, b.action)
	if err != nil {
		a.metrics.RecordPluginExecution(b.plugin, metrics.ResultSkipped)
		return err
	}

	resp, err := a.pluginExec.Execute(ctx, p, &plugin.Request{
		Action:  b.action,
		Gesture: GestureName,
		Config:  b.config,
		Params:  params,
	})
	if err != nil {
		a.metrics.RecordPluginExecution(b.plugin, metrics.ResultFailure)
		return err
	}
	if !resp.Success {
		a.metrics.RecordPluginExecution(b.plugin, metrics.ResultFailure)
		return errors.New(resp.Error)
	}

	a.metrics.RecordPluginExecution(b.plugin, metrics.ResultSuccess)
	return nil
}
