package testdata

import (
	"testing"
)

func TestLoadSequence(t *testing.T) {
	names, err := SequenceNames()
	if err != nil {
		t.Fatalf("SequenceNames() error = %v", err)
	}
	if len(names) < 4 {
		t.Fatalf("expected at least 4 sequences, got %v", names)
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			seq, err := LoadSequence(name)
			if err != nil {
				t.Fatalf("LoadSequence() error = %v", err)
			}
			if seq.FPS != 30 {
				t.Errorf("expected 30 fps, got %d", seq.FPS)
			}
			if len(seq.Frames) == 0 {
				t.Fatal("expected frames")
			}

			frames := seq.Landmarks()
			if len(frames) != len(seq.Frames) {
				t.Fatalf("expected %d frames, got %d", len(seq.Frames), len(frames))
			}
			for i, hands := range frames {
				for j, h := range hands {
					if got := h.WristPoint(); got.X != seq.Frames[i][j].X || got.Y != seq.Frames[i][j].Y {
						t.Fatalf("frame %d hand %d: wrist %v does not match recording", i, j, got)
					}
				}
			}
		})
	}
}

func TestLoadSequence_Missing(t *testing.T) {
	if _, err := LoadSequence("nope"); err == nil {
		t.Fatal("expected error for missing sequence")
	}
}

func TestPalmOrientation(t *testing.T) {
	down := MustLoadSequence(PalmsDown).Landmarks()
	h := down[0][0]
	if h.WristPoint().Y > h.KnuckleMidpoint().Y {
		t.Error("palms_down hands should have knuckles below the wrist")
	}

	up := MustLoadSequence(Seesaw).Landmarks()
	h = up[0][0]
	if h.WristPoint().Y <= h.KnuckleMidpoint().Y {
		t.Error("seesaw hands should have knuckles above the wrist")
	}
}
