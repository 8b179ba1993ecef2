// Package air defines the AIR, transcript/channel, and evaluation-frame
// collaborators the constraint evaluation and verification core depends
// on, without committing to a specific computation or transcript
// implementation. A concrete Transcript lives alongside the interfaces
// for tests and the bundled demo.
package air

import (
	"fmt"

	"github.com/vybium/starkcore/internal/starkcore/field"
	"github.com/vybium/starkcore/internal/starkcore/friproof"
)

// FieldExtension is a tri-state describing whether (and how) an AIR's
// trace is lifted into an extension field, gating the DEEP composer's
// t3 term.
type FieldExtension int

const (
	// FieldExtensionNone means the trace lives entirely in the base
	// field; the DEEP composer's t3 term is skipped.
	FieldExtensionNone FieldExtension = iota
	// FieldExtensionQuadratic means the trace is committed over the
	// quadratic extension E; the DEEP composer evaluates t3 using
	// ExtElement.Conjugate.
	FieldExtensionQuadratic
)

func (e FieldExtension) String() string {
	switch e {
	case FieldExtensionNone:
		return "none"
	case FieldExtensionQuadratic:
		return "quadratic"
	default:
		return "unknown"
	}
}

// Options bundles the AIR's field-extension mode and its FRI
// parameters.
type Options struct {
	Extension  FieldExtension
	FriOptions friproof.Options
}

// FieldExtension reports whether this AIR's trace uses an extension field.
func (o Options) FieldExtension() FieldExtension { return o.Extension }

// ToFriOptions returns the FRI options this AIR was configured with.
func (o Options) ToFriOptions() friproof.Options { return o.FriOptions }

// EvaluationFrame is a pair (current, next) of per-register trace
// values — T(z) and T(z*g_trace). Both are
// extension-field values since z is an out-of-domain point in E, even
// though the trace polynomials themselves have base-field coefficients.
type EvaluationFrame struct {
	Current []field.ExtElement
	Next    []field.ExtElement
}

// String renders a short diagnostic summary.
func (f EvaluationFrame) String() string {
	return fmt.Sprintf("EvaluationFrame{registers=%d}", len(f.Current))
}

// CompositionCoefficients is the record of pseudo-random coefficients
// the DEEP composer draws once per verification: a (c1, c2, c3) triple
// per trace register, plus a (d0, d1) degree-adjustment pair drawn
// from the same channel call, so prover and verifier share one draw
// point instead of two interleaved ones.
type CompositionCoefficients struct {
	C1 []field.ExtElement
	C2 []field.ExtElement
	C3 []field.ExtElement
	// CC holds one weight per composition-polynomial column, used by
	// the constraint-composition half of the DEEP sum.
	CC []field.ExtElement
	D0 field.ExtElement
	D1 field.ExtElement
}
