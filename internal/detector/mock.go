package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// Queued results are returned one per Detect call; once the queue is empty
// the hands set with SetHands are returned on every call.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	queue [][]HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands returned once the queue is drained.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// Enqueue appends per-frame results to be returned in order.
func (m *MockDetector) Enqueue(frames ...[]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, frames...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next queued result, the fixed hands, or the configured error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// PalmUpLandmarks returns an open hand held upright with the wrist at
// (x, wristY) and the knuckles above it on screen, so the palm gate passes.
func PalmUpLandmarks(x, wristY float64) HandLandmarks {
	return openHand(x, wristY, -1)
}

// TwoHands returns palm-up hands at x=0.3 and x=0.7 with the given wrist heights.
func TwoHands(leftY, rightY float64) []HandLandmarks {
	return []HandLandmarks{PalmUpLandmarks(0.3, leftY), PalmUpLandmarks(0.7, rightY)}
}

// PalmDownLandmarks returns the same hand flipped so the knuckles sit
// below the wrist on screen.
func PalmDownLandmarks(x, wristY float64) HandLandmarks {
	return openHand(x, wristY, 1)
}

// openHand lays out 21 points relative to the wrist. dir is -1 for fingers
// pointing up the screen and +1 for fingers pointing down.
func openHand(x, wristY, dir float64) HandLandmarks {
	hand := HandLandmarks{Handedness: "Right", Score: 0.95}

	// Offsets from the wrist for an open palm, fingers extended.
	offsets := [NumLandmarks][2]float64{
		Wrist:     {0, 0},
		ThumbCMC:  {0.04, 0.04},
		ThumbMCP:  {0.08, 0.08},
		ThumbIP:   {0.11, 0.11},
		ThumbTip:  {0.14, 0.14},
		IndexMCP:  {0.04, 0.12},
		IndexPIP:  {0.05, 0.20},
		IndexDIP:  {0.05, 0.25},
		IndexTip:  {0.05, 0.30},
		MiddleMCP: {0.00, 0.13},
		MiddlePIP: {0.00, 0.22},
		MiddleDIP: {0.00, 0.28},
		MiddleTip: {0.00, 0.33},
		RingMCP:   {-0.04, 0.12},
		RingPIP:   {-0.05, 0.20},
		RingDIP:   {-0.05, 0.25},
		RingTip:   {-0.05, 0.29},
		PinkyMCP:  {-0.08, 0.10},
		PinkyPIP:  {-0.09, 0.16},
		PinkyDIP:  {-0.10, 0.20},
		PinkyTip:  {-0.10, 0.23},
	}

	for i, off := range offsets {
		hand.Points[i] = Point3D{
			X: x + off[0],
			Y: wristY + dir*off[1],
			Z: -0.01 * float64(i%4),
		}
	}
	return hand
}
