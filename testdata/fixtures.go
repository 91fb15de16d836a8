// Package testdata provides recorded two-hand landmark sequences for tests.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/ayusman/sixseven/internal/detector"
)

//go:embed sequences/*.json
var sequencesFS embed.FS

// Sequence names.
const (
	Seesaw         = "seesaw"
	Still          = "still"
	PalmsDown      = "palms_down"
	SeesawThenLost = "seesaw_then_lost"
)

// Hand is one recorded hand: wrist position and palm orientation.
type Hand struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Palm string  `json:"palm"` // "up" or "down"
}

// Sequence is a recorded run of frames at a fixed rate.
type Sequence struct {
	Name        string   `json:"-"`
	Description string   `json:"description"`
	FPS         int      `json:"fps"`
	Frames      [][]Hand `json:"frames"`
}

// LoadSequence loads the named sequence from sequences/<name>.json.
func LoadSequence(name string) (*Sequence, error) {
	data, err := sequencesFS.ReadFile(path.Join("sequences", name+".json"))
	if err != nil {
		return nil, fmt.Errorf("load sequence %s: %w", name, err)
	}

	seq := &Sequence{Name: name}
	if err := json.Unmarshal(data, seq); err != nil {
		return nil, fmt.Errorf("decode sequence %s: %w", name, err)
	}
	return seq, nil
}

// MustLoadSequence is LoadSequence for test setup; it panics on error.
func MustLoadSequence(name string) *Sequence {
	seq, err := LoadSequence(name)
	if err != nil {
		panic(err)
	}
	return seq
}

// SequenceNames lists the embedded sequences.
func SequenceNames() ([]string, error) {
	entries, err := sequencesFS.ReadDir("sequences")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return names, nil
}

// Landmarks expands every frame into full 21-point hands.
func (s *Sequence) Landmarks() [][]detector.HandLandmarks {
	frames := make([][]detector.HandLandmarks, len(s.Frames))
	for i, frame := range s.Frames {
		hands := make([]detector.HandLandmarks, len(frame))
		for j, h := range frame {
			if h.Palm == "down" {
				hands[j] = detector.PalmDownLandmarks(h.X, h.Y)
			} else {
				hands[j] = detector.PalmUpLandmarks(h.X, h.Y)
			}
		}
		frames[i] = hands
	}
	return frames
}
