package air

import "github.com/vybium/starkcore/internal/starkcore/field"

// Air is a computation's description of its trace registers, domains,
// and constraints, treated as an external implementation supplied by
// the caller — the core only ever calls through this interface, so it
// works with any AIR.
type Air interface {
	// NumTraceRegisters is the number of columns in the execution trace.
	NumTraceRegisters() int

	// TraceGenerator is the generator of the (unblown-up) trace domain.
	TraceGenerator() field.Element

	// LdeDomainGenerator is the generator of the low-degree-extension
	// domain constraint evaluations and FRI layers live over.
	LdeDomainGenerator() field.Element

	// LdeDomainSize is the LDE domain's size, a power of two.
	LdeDomainSize() int

	// DomainOffset is the LDE domain's coset offset. The trace domain
	// is the plain subgroup generated by TraceGenerator, with no offset.
	DomainOffset() field.Element

	// EvaluateConstraints evaluates every constraint this AIR declares
	// at the out-of-domain frame, combining them into a single
	// extension-field value.
	EvaluateConstraints(frame EvaluationFrame, z field.ExtElement) (field.ExtElement, error)

	// TracePolyDegree is the maximum degree of any trace column
	// polynomial, used to size the DEEP composition's degree-adjust.
	TracePolyDegree() int

	// NumCompositionColumns is the number of columns the constraint
	// evaluation table is split into before committing, used to size
	// the DEEP composer's constraint-quotient weights.
	NumCompositionColumns() int

	// Hasher is the digest function the trace, composition, and FRI
	// layer commitments are built with.
	Hasher() field.Hasher

	// Options returns this AIR's field-extension mode and FRI options.
	Options() Options
}
