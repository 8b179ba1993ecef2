package air

import (
	"testing"

	"github.com/vybium/starkcore/internal/starkcore/field"
)

func TestTranscriptDrawQueryPositionsAreDistinctAndInRange(t *testing.T) {
	f := field.DefaultField
	tr := NewTranscript(f, 2, 1, 64, 12, 1)
	tr.Send([]byte("commitment"))

	positions := tr.DrawQueryPositions()
	if len(positions) != 12 {
		t.Fatalf("len(positions) = %d, want 12", len(positions))
	}
	seen := make(map[int]bool, len(positions))
	for _, p := range positions {
		if p < 0 || p >= 64 {
			t.Fatalf("position %d out of range [0,64)", p)
		}
		if seen[p] {
			t.Fatalf("duplicate position %d", p)
		}
		seen[p] = true
	}
}

func TestTranscriptDrawCompositionCoefficientsShape(t *testing.T) {
	f := field.DefaultField
	tr := NewTranscript(f, 3, 2, 64, 4, 1)
	tr.Send([]byte("trace-commitment"))

	c := tr.DrawCompositionCoefficients()
	if len(c.C1) != 3 || len(c.C2) != 3 || len(c.C3) != 3 {
		t.Fatalf("expected 3 entries per coefficient slice, got %d/%d/%d", len(c.C1), len(c.C2), len(c.C3))
	}
	if len(c.CC) != 2 {
		t.Fatalf("len(CC) = %d, want 2", len(c.CC))
	}
}

func TestTranscriptSetReadRoundTrip(t *testing.T) {
	f := field.DefaultField
	tr := NewTranscript(f, 1, 1, 16, 2, 1)

	frame := EvaluationFrame{
		Current: []field.ExtElement{field.Embed(f.NewElementFromInt64(1))},
		Next:    []field.ExtElement{field.Embed(f.NewElementFromInt64(2))},
	}
	tr.SetOodEvaluationFrame(frame)
	if got := tr.ReadOodEvaluationFrame(); !got.Current[0].Equal(frame.Current[0]) || !got.Next[0].Equal(frame.Next[0]) {
		t.Fatal("OOD frame did not round trip")
	}

	ood := []field.ExtElement{field.Embed(f.NewElementFromInt64(5))}
	tr.SetOodEvaluations(ood)
	got := tr.ReadOodEvaluations()
	if len(got) != 1 || !got[0].Equal(ood[0]) {
		t.Fatal("OOD evaluations did not round trip")
	}

	states := map[int][]field.Element{3: {f.NewElementFromInt64(9)}}
	tr.SetTraceStates(states)
	readBack, err := tr.ReadTraceStates([]int{3})
	if err != nil {
		t.Fatalf("ReadTraceStates: %v", err)
	}
	if !readBack[0][0].Equal(states[3][0]) {
		t.Fatal("trace state did not round trip")
	}
	if _, err := tr.ReadTraceStates([]int{7}); err == nil {
		t.Fatal("expected an error reading a position that was never set")
	}

	roots := map[int]field.Digest{0: field.Sha3Hasher{}.HashElements(ood)}
	tr.SetFriLayerRoots(roots)
	if tr.ReadFriLayerRoot(0) != roots[0] {
		t.Fatal("FRI layer root did not round trip")
	}
}

func TestTranscriptFoldingChallengeVariesByLayer(t *testing.T) {
	f := field.DefaultField
	tr1 := NewTranscript(f, 1, 1, 16, 2, 1)
	tr1.Send([]byte("seed"))
	tr2 := NewTranscript(f, 1, 1, 16, 2, 1)
	tr2.Send([]byte("seed"))

	a := tr1.DrawFriFoldingChallenge(0)
	b := tr2.DrawFriFoldingChallenge(1)
	if a.Equal(b) {
		t.Fatal("folding challenges for distinct layer depths should differ")
	}
}
