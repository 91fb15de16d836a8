package gesture

import (
	"gonum.org/v1/gonum/floats"
)

// Default detection thresholds.
const (
	// DefaultMinSamples is the shortest window the pattern detector evaluates.
	DefaultMinSamples = 10
	// DefaultMinZeroCrossings is the number of sign changes of leftY-rightY required.
	DefaultMinZeroCrossings = 2
	// DefaultMinAmplitude is the vertical spread required, in normalized image units.
	DefaultMinAmplitude = 0.05
	// DefaultOppositeRatio is the fraction of the window length that must be
	// exceeded by the count of opposite-direction frame pairs.
	DefaultOppositeRatio = 0.3
)

// Thresholds tunes the seesaw pattern detector.
type Thresholds struct {
	MinSamples       int     `json:"min_samples"`
	MinZeroCrossings int     `json:"min_zero_crossings"`
	MinAmplitude     float64 `json:"min_amplitude"`
	OppositeRatio    float64 `json:"opposite_ratio"`
}

// DefaultThresholds returns the stock detection thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinSamples:       DefaultMinSamples,
		MinZeroCrossings: DefaultMinZeroCrossings,
		MinAmplitude:     DefaultMinAmplitude,
		OppositeRatio:    DefaultOppositeRatio,
	}
}

// Analysis holds the figures the pattern detector computed over one window.
type Analysis struct {
	Samples       int     `json:"samples"`
	ZeroCrossings int     `json:"zero_crossings"`
	Amplitude     float64 `json:"amplitude"`
	OppositeMoves int     `json:"opposite_moves"`
}

// Matched reports whether the analysis satisfies th.
//
// The opposite-move requirement is measured against the window length,
// not the number of consecutive pairs (length-1).
func (a Analysis) Matched(th Thresholds) bool {
	if a.Samples < th.MinSamples {
		return false
	}
	return a.ZeroCrossings >= th.MinZeroCrossings &&
		a.Amplitude > th.MinAmplitude &&
		float64(a.OppositeMoves) > float64(a.Samples)*th.OppositeRatio
}

// Analyze computes zero crossings, amplitude and opposite-motion count
// over samples (oldest first).
func Analyze(samples []FrameSample) Analysis {
	a := Analysis{Samples: len(samples)}
	if len(samples) == 0 {
		return a
	}

	lefts := make([]float64, len(samples))
	rights := make([]float64, len(samples))
	for i, s := range samples {
		lefts[i] = s.LeftY
		rights[i] = s.RightY
	}

	// Zero counts as positive.
	lastSign := sign(lefts[0] - rights[0])
	for i := 1; i < len(samples); i++ {
		if cur := sign(lefts[i] - rights[i]); cur != lastSign {
			a.ZeroCrossings++
			lastSign = cur
		}
	}

	hi := max(floats.Max(lefts), floats.Max(rights))
	lo := min(floats.Min(lefts), floats.Min(rights))
	a.Amplitude = hi - lo

	for i := 1; i < len(samples); i++ {
		dl := lefts[i] - lefts[i-1]
		dr := rights[i] - rights[i-1]
		if (dl > 0 && dr < 0) || (dl < 0 && dr > 0) {
			a.OppositeMoves++
		}
	}

	return a
}

// DetectSeesaw reports whether samples contain a seesaw pattern under the
// default thresholds.
func DetectSeesaw(samples []FrameSample) bool {
	return Analyze(samples).Matched(DefaultThresholds())
}

func sign(v float64) int {
	if v >= 0 {
		return 1
	}
	return -1
}
