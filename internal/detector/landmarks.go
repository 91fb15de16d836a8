// Package detector provides the hand landmark model and the detectors that produce it.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a normalized landmark. X and Y are in image space (0-1, Y grows
// downward); Z is depth relative to the wrist.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Midpoint returns the point halfway between p and q.
func (p Point3D) Midpoint(q Point3D) Point3D {
	return Point3D{
		X: (p.X + q.X) / 2,
		Y: (p.Y + q.Y) / 2,
		Z: (p.Z + q.Z) / 2,
	}
}

// HandLandmarks is one detected hand in one frame.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right", as reported by the model
	Score      float64               `json:"score"`
}

// WristPoint returns landmark 0.
func (h *HandLandmarks) WristPoint() Point3D {
	return h.Points[Wrist]
}

// KnuckleMidpoint returns the midpoint of the index and middle finger MCP
// joints, used as a stand-in for the palm center.
func (h *HandLandmarks) KnuckleMidpoint() Point3D {
	return h.Points[IndexMCP].Midpoint(h.Points[MiddleMCP])
}
