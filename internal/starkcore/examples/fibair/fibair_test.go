package fibair

import (
	"testing"

	"github.com/vybium/starkcore/internal/starkcore/air"
	"github.com/vybium/starkcore/internal/starkcore/field"
	"github.com/vybium/starkcore/internal/starkcore/friproof"
)

func TestTraceSatisfiesFibonacciRecurrence(t *testing.T) {
	f := field.DefaultField
	a, err := New(f, 8, 4, f.NewElementFromInt64(3), air.Options{FriOptions: friproof.DefaultOptions()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	trace := a.Trace()
	regA, regB := trace[0], trace[1]

	if !regA[0].IsOne() || !regB[0].IsOne() {
		t.Fatal("trace should start at (1, 1)")
	}
	for i := 1; i < len(regA); i++ {
		if !regA[i].Equal(regB[i-1]) {
			t.Fatalf("row %d: a_i = %s, want b_{i-1} = %s", i, regA[i], regB[i-1])
		}
		if !regB[i].Equal(regA[i-1].Add(regB[i-1])) {
			t.Fatalf("row %d: b_i = %s, want a_{i-1}+b_{i-1} = %s", i, regB[i], regA[i-1].Add(regB[i-1]))
		}
	}
}

// At the first honest trace point, every transition and boundary
// constraint should evaluate to zero, since the trace itself satisfies
// the recurrence there by construction.
func TestEvaluateConstraintsVanishesAtHonestTracePoint(t *testing.T) {
	f := field.DefaultField
	offset := f.NewElementFromInt64(3)
	a, err := New(f, 8, 4, offset, air.Options{FriOptions: friproof.DefaultOptions()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	trace := a.Trace()
	regA, regB := trace[0], trace[1]

	frame := air.EvaluationFrame{
		Current: []field.ExtElement{field.Embed(regA[0]), field.Embed(regB[0])},
		Next:    []field.ExtElement{field.Embed(regA[1]), field.Embed(regB[1])},
	}
	// z = u has a nonzero extension component, so it can never land in
	// the base-field trace domain and every divisor is nonzero at it.
	z := field.NewExtElement(f.Zero(), f.One())

	value, err := a.EvaluateConstraints(frame, z)
	if err != nil {
		t.Fatalf("EvaluateConstraints: %v", err)
	}
	if !value.Equal(field.Embed(f.Zero())) {
		t.Fatalf("composition value for an honest first-row frame = %s, want 0", value)
	}
}

// Perturbing the next-row state by a nonzero amount should break the
// transition constraint and make the composition value nonzero.
func TestEvaluateConstraintsDetectsViolation(t *testing.T) {
	f := field.DefaultField
	offset := f.NewElementFromInt64(3)
	a, err := New(f, 8, 4, offset, air.Options{FriOptions: friproof.DefaultOptions()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	trace := a.Trace()
	regA, regB := trace[0], trace[1]

	frame := air.EvaluationFrame{
		Current: []field.ExtElement{field.Embed(regA[0]), field.Embed(regB[0])},
		Next:    []field.ExtElement{field.Embed(regA[1].Add(f.One())), field.Embed(regB[1])},
	}
	z := field.NewExtElement(f.Zero(), f.One())

	value, err := a.EvaluateConstraints(frame, z)
	if err != nil {
		t.Fatalf("EvaluateConstraints: %v", err)
	}
	if value.Equal(field.Embed(f.Zero())) {
		t.Fatal("perturbed transition should not vanish")
	}
}

func TestEvaluateConstraintsRejectsWrongFrameWidth(t *testing.T) {
	f := field.DefaultField
	a, err := New(f, 8, 4, f.One(), air.Options{FriOptions: friproof.DefaultOptions()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	frame := air.EvaluationFrame{
		Current: []field.ExtElement{field.Embed(f.One())},
		Next:    []field.ExtElement{field.Embed(f.One())},
	}
	if _, err := a.EvaluateConstraints(frame, field.Embed(f.One())); err == nil {
		t.Fatal("expected an error for a 1-register frame")
	}
}
