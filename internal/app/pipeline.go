package app

import (
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/sixseven/internal/gesture"
)

// runPipeline reads a frame on every tick and runs it through Step.
//
// Pipeline logic:
// 1. Skip the tick while detection is disabled
// 2. Read a frame; count and log capture errors
// 3. Step: detect hands, classify, publish
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(time.Second / time.Duration(a.config.FPS))
	defer ticker.Stop()

	var lastErr string
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				a.metrics.RecordFrameError("capture")
				// Log once per distinct error rather than at frame rate.
				if err.Error() != lastErr {
					log.Printf("Error reading frame: %v", err)
					lastErr = err.Error()
				}
				continue
			}
			lastErr = ""

			if _, err := a.Step(frame); err != nil {
				log.Printf("Error detecting hands: %v", err)
			}
			frame.Close()
		}
	}
}

// Step runs one frame through the detector and classifier, publishes the
// resulting state and returns it. The caller keeps ownership of frame.
func (a *App) Step(frame *gocv.Mat) (gesture.DetectionState, error) {
	d := a.Detector()
	hands, err := d.Detect(frame)
	if err != nil {
		a.metrics.RecordFrameError("detect")
		return a.Latest(), err
	}

	a.stepMu.Lock()
	// SetEnabled(false) may have reset the classifier while this frame was
	// in the detector; classifying it now would refill the cleared window.
	if !a.IsEnabled() {
		a.stepMu.Unlock()
		return a.Latest(), nil
	}
	state := a.classifier.ProcessFrame(hands)
	a.stepMu.Unlock()

	a.metrics.ObserveFrame(string(state.Phase), state.History, state.Detected)
	if state.Analysis.Samples > 0 {
		a.metrics.ObserveAmplitude(state.Analysis.Amplitude)
	}

	a.publish(state)
	return state, nil
}

// handleTransition runs under stepMu from inside ProcessFrame.
func (a *App) handleTransition(tr gesture.Transition) {
	if tr.Detected {
		a.beginDetection(tr)
		return
	}
	a.endCurrent(tr.At)
}
