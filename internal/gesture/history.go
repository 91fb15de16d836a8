// Package gesture implements the two-hand seesaw gesture classifier.
package gesture

// HistoryCapacity is the number of frames kept in the motion window
// (about one second at 30 fps).
const HistoryCapacity = 30

// FrameSample is the per-frame summary of both wrists' heights.
type FrameSample struct {
	LeftY     float64 `json:"left_y"`
	RightY    float64 `json:"right_y"`
	Timestamp int64   `json:"timestamp"` // milliseconds since the Unix epoch
}

// History is a fixed-capacity FIFO of frame samples backed by a ring buffer.
// Pushing onto a full history evicts the oldest sample.
type History struct {
	buf   [HistoryCapacity]FrameSample
	start int
	n     int
}

// NewHistory returns an empty History.
func NewHistory() *History {
	return &History{}
}

// Push appends s, evicting the oldest sample when full.
func (h *History) Push(s FrameSample) {
	if h.n < HistoryCapacity {
		h.buf[(h.start+h.n)%HistoryCapacity] = s
		h.n++
		return
	}
	h.buf[h.start] = s
	h.start = (h.start + 1) % HistoryCapacity
}

// Len returns the number of samples held.
func (h *History) Len() int {
	return h.n
}

// Reset empties the history.
func (h *History) Reset() {
	h.start = 0
	h.n = 0
}

// Samples returns a copy of the held samples, oldest first.
func (h *History) Samples() []FrameSample {
	out := make([]FrameSample, h.n)
	for i := range out {
		out[i] = h.buf[(h.start+i)%HistoryCapacity]
	}
	return out
}
