package domain

import (
	"testing"

	"github.com/vybium/starkcore/internal/starkcore/field"
)

func TestNewRejectsNonPowerOfTwo(t *testing.T) {
	f := field.DefaultField
	if _, err := New(f, 6, 4, f.One()); err == nil {
		t.Fatal("expected an error for a non-power-of-two trace length")
	}
	if _, err := New(f, 8, 3, f.One()); err == nil {
		t.Fatal("expected an error for a non-power-of-two blowup")
	}
}

func TestDomainElements(t *testing.T) {
	f := field.DefaultField
	offset := f.NewElementFromInt64(5)
	dom, err := New(f, 8, 4, offset)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if dom.CEDomainSize() != 32 {
		t.Fatalf("CEDomainSize() = %d, want 32", dom.CEDomainSize())
	}
	if dom.Blowup() != 4 {
		t.Fatalf("Blowup() = %d, want 4", dom.Blowup())
	}

	elems := dom.Elements()
	if len(elems) != dom.CEDomainSize() {
		t.Fatalf("len(Elements()) = %d, want %d", len(elems), dom.CEDomainSize())
	}
	for i, e := range elems {
		if !e.Equal(dom.Element(i)) {
			t.Fatalf("Elements()[%d] = %s, want %s", i, e, dom.Element(i))
		}
	}
	if !elems[0].Equal(offset) {
		t.Fatalf("Elements()[0] = %s, want offset %s", elems[0], offset)
	}
}

func TestTraceGeneratorSteps(t *testing.T) {
	f := field.DefaultField
	dom, err := New(f, 8, 4, f.One())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g := dom.TraceGenerator()
	// g_trace should generate a subgroup of exactly trace_length.
	if !g.ExpInt(dom.TraceLength).IsOne() {
		t.Fatal("trace generator does not have order trace_length")
	}
	for i := 1; i < dom.TraceLength; i++ {
		if g.ExpInt(i).IsOne() {
			t.Fatalf("trace generator has order dividing %d, want exactly %d", i, dom.TraceLength)
		}
	}
}
