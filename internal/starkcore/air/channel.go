package air

import "github.com/vybium/starkcore/internal/starkcore/field"

// Channel is the Fiat-Shamir transcript collaborator: pseudo-random
// draws plus Merkle-authenticated reads of prover-sent values. A
// concrete implementation (Transcript) lives alongside it; production
// callers may substitute their own, e.g. one backed by a real proof
// byte stream.
type Channel interface {
	// DrawDeepPoint draws the out-of-domain point z used by the OOD
	// check and the DEEP composer.
	DrawDeepPoint() field.ExtElement

	// DrawQueryPositions draws the set of LDE domain positions the
	// verifier will check.
	DrawQueryPositions() []int

	// DrawCompositionCoefficients draws the record the DEEP composer
	// uses — (c1,c2,c3) per register, one weight per composition
	// column, and (d0,d1) — in one transcript call.
	DrawCompositionCoefficients() CompositionCoefficients

	// ReadOodEvaluationFrame returns the prover-sent (T(z), T(z*g_trace))
	// frame.
	ReadOodEvaluationFrame() EvaluationFrame

	// ReadOodEvaluations returns the prover-sent composition-polynomial
	// column evaluations at z.
	ReadOodEvaluations() []field.ExtElement

	// ReadTraceStates returns, for each queried position, the trace
	// register values at that LDE domain point, already Merkle-verified.
	ReadTraceStates(positions []int) ([][]field.Element, error)

	// ReadConstraintEvaluations returns, for each queried position, the
	// composition-polynomial column values at that point, already
	// Merkle-verified.
	ReadConstraintEvaluations(positions []int) ([][]field.ExtElement, error)

	// NumFriPartitions reports the number of FRI partitions the prover
	// used, trusted as-is; the verifier never re-derives it.
	NumFriPartitions() int
}

// VerifierChannel is Channel as seen by FRI verification: the same
// collaborator, additionally able to draw the per-layer folding
// challenge FRI needs between rounds.
type VerifierChannel interface {
	Channel

	// DrawFriFoldingChallenge draws the folding challenge for FRI layer
	// layerDepth.
	DrawFriFoldingChallenge(layerDepth int) field.ExtElement

	// ReadFriLayerRoot returns the batch Merkle commitment root the
	// prover sent for FRI layer layerDepth.
	ReadFriLayerRoot(layerDepth int) field.Digest
}
