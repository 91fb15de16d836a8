package gesture

import (
	"time"

	"github.com/ayusman/sixseven/internal/detector"
)

// Phase identifies which gate a frame stopped at.
type Phase string

const (
	// PhaseNoHands means fewer than two hands were seen.
	PhaseNoHands Phase = "no_hands"
	// PhasePalmsDown means at least one palm failed the orientation gate.
	PhasePalmsDown Phase = "palms_down"
	// PhaseGathering means the window is still too short to evaluate.
	PhaseGathering Phase = "gathering"
	// PhaseMatching means the window was evaluated and did not match.
	PhaseMatching Phase = "matching"
	// PhaseDetected means the window matched the seesaw pattern.
	PhaseDetected Phase = "detected"
)

// Status messages shown to the user, one per phase.
const (
	MessageWaiting   = "Waiting for both hands..."
	MessagePalmsDown = "Palms should face upward"
	MessageGathering = "Moving hands..."
	MessageMatching  = "Make seesaw motion..."
	MessageDetected  = "SIX-SEVEN DETECTED!"
)

// DetectionState is the classifier's verdict for one frame.
type DetectionState struct {
	Detected bool     `json:"detected"`
	Message  string   `json:"message"`
	Phase    Phase    `json:"phase"`
	History  int      `json:"history"`
	Analysis Analysis `json:"analysis"` // zero unless the pattern detector ran
}

// Transition is emitted when Detected changes between consecutive frames.
type Transition struct {
	Detected bool
	State    DetectionState
	At       time.Time
}

// Classifier turns a stream of per-frame hand observations into
// detection states. It is not safe for concurrent use; feed it from a
// single frame loop.
type Classifier struct {
	history      *History
	thresholds   Thresholds
	now          func() time.Time
	state        DetectionState
	onTransition func(Transition)
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithThresholds overrides the pattern detector thresholds.
func WithThresholds(th Thresholds) Option {
	return func(c *Classifier) {
		c.thresholds = th
	}
}

// WithClock overrides the time source used to stamp samples.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClassifier creates a Classifier with an empty history.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		history:    NewHistory(),
		thresholds: DefaultThresholds(),
		now:        time.Now,
		state:      DetectionState{Message: MessageWaiting, Phase: PhaseNoHands},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnTransition registers fn to be called on each detected/not-detected edge.
func (c *Classifier) OnTransition(fn func(Transition)) {
	c.onTransition = fn
}

// ProcessFrame ingests one frame of hand observations and returns the
// resulting state. Only the first two hands are considered.
func (c *Classifier) ProcessFrame(hands []detector.HandLandmarks) DetectionState {
	next := c.evaluate(hands)
	next.History = c.history.Len()

	prev := c.state
	c.state = next

	if next.Detected != prev.Detected && c.onTransition != nil {
		c.onTransition(Transition{Detected: next.Detected, State: next, At: c.now()})
	}
	return next
}

func (c *Classifier) evaluate(hands []detector.HandLandmarks) DetectionState {
	if len(hands) < 2 {
		c.history.Reset()
		return DetectionState{Message: MessageWaiting, Phase: PhaseNoHands}
	}

	left, right := AssignHands(&hands[0], &hands[1])

	// History is kept across palm-down frames; only losing a hand resets it.
	if !IsPalmUp(left) || !IsPalmUp(right) {
		return DetectionState{Message: MessagePalmsDown, Phase: PhasePalmsDown}
	}

	c.history.Push(FrameSample{
		LeftY:     left.WristPoint().Y,
		RightY:    right.WristPoint().Y,
		Timestamp: c.now().UnixMilli(),
	})

	if c.history.Len() < c.thresholds.MinSamples {
		return DetectionState{Message: MessageGathering, Phase: PhaseGathering}
	}

	analysis := Analyze(c.history.Samples())
	if analysis.Matched(c.thresholds) {
		return DetectionState{Detected: true, Message: MessageDetected, Phase: PhaseDetected, Analysis: analysis}
	}
	return DetectionState{Message: MessageMatching, Phase: PhaseMatching, Analysis: analysis}
}

// State returns the state produced by the most recent frame.
func (c *Classifier) State() DetectionState {
	return c.state
}

// HistoryLen returns the number of samples in the motion window.
func (c *Classifier) HistoryLen() int {
	return c.history.Len()
}

// Samples returns a copy of the motion window, oldest first.
func (c *Classifier) Samples() []FrameSample {
	return c.history.Samples()
}

// Thresholds returns the thresholds in use.
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// Reset clears the motion window and returns to the initial state without
// emitting a transition.
func (c *Classifier) Reset() {
	c.history.Reset()
	c.state = DetectionState{Message: MessageWaiting, Phase: PhaseNoHands}
}

// AssignHands orders two hands by wrist x: the smaller x is left. The
// assignment is recomputed from raw position each frame.
func AssignHands(a, b *detector.HandLandmarks) (left, right *detector.HandLandmarks) {
	if a.WristPoint().X < b.WristPoint().X {
		return a, b
	}
	return b, a
}

// IsPalmUp reports whether the wrist sits lower on screen than the
// midpoint of the index and middle knuckles. Screen y grows downward.
func IsPalmUp(hand *detector.HandLandmarks) bool {
	return hand.WristPoint().Y > hand.KnuckleMidpoint().Y
}
