// Package divisor implements constraint divisors and their batched
// inverse evaluator over a coset domain.
package divisor

import (
	"fmt"

	"github.com/vybium/starkcore/internal/starkcore/field"
	"github.com/vybium/starkcore/internal/starkcore/invariant"
)

// ConstraintDivisor is the rational expression (x^A - B) / denom a
// combined constraint column is divided by. The numerator is always a
// single monic-degree term (x^A - B); denom is either empty (a
// boundary divisor) or a single exclusion point (x - Exclusion), a
// transition divisor. Any other shape is a hard precondition
// violation, not a runtime error.
type ConstraintDivisor struct {
	A            int // exponent of the numerator's monic term
	B            field.Element
	HasExclusion bool
	Exclusion    field.Element
}

// NewBoundary builds a divisor with numerator (x^a - b) and no
// exclusion point.
func NewBoundary(a int, b field.Element) ConstraintDivisor {
	invariant.Assertf(a >= 1, "boundary divisor numerator exponent %d must be >= 1", a)
	return ConstraintDivisor{A: a, B: b}
}

// NewTransition builds a divisor with numerator (x^a - b) and a single
// exclusion point (x - exclusion).
func NewTransition(a int, b, exclusion field.Element) ConstraintDivisor {
	invariant.Assertf(a >= 1, "transition divisor numerator exponent %d must be >= 1", a)
	return ConstraintDivisor{A: a, B: b, HasExclusion: true, Exclusion: exclusion}
}

// Validate checks the domain-size/exponent relationship: a must
// divide N.
func (d ConstraintDivisor) Validate(domainSize int) error {
	if domainSize%d.A != 0 {
		return fmt.Errorf("divisor: numerator exponent %d does not divide domain size %d", d.A, domainSize)
	}
	return nil
}

// EvalInverses returns the length-n vector (n = N/A) of
// 1 / ((offset * g^i)^A - B) for i in [0, n), where g =
// field.RootOfUnity(log2 N).
// Because (offset*g^i)^A cycles with period n, callers index this
// vector as inv[i mod n] for any row i in [0, N).
func (d ConstraintDivisor) EvalInverses(f *field.Field, domainSize int, domainOffset field.Element) ([]field.Element, error) {
	if err := d.Validate(domainSize); err != nil {
		return nil, err
	}
	invariant.Assertf(field.IsPowerOfTwo(domainSize), "divisor domain size %d must be a power of two", domainSize)

	n := domainSize / d.A
	g, err := f.RootOfUnity(uint(log2(domainSize)))
	if err != nil {
		return nil, fmt.Errorf("divisor: %w", err)
	}
	gPrime := g.ExpInt(d.A)
	x0 := domainOffset.ExpInt(d.A)

	workers := field.DefaultWorkerCount()
	xs := field.PowersFrom(x0, gPrime, n, workers)

	values := make([]field.Element, n)
	for i, x := range xs {
		values[i] = x.Sub(d.B)
	}

	inverses, err := field.ParallelBatchInversion(values, workers)
	if err != nil {
		return nil, fmt.Errorf("divisor: failed to invert numerator evaluations: %w", err)
	}
	return inverses, nil
}

func log2(n int) int {
	l := 0
	for (1 << l) < n {
		l++
	}
	return l
}
