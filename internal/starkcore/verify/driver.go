package verify

import (
	"github.com/vybium/starkcore/internal/starkcore/air"
	"github.com/vybium/starkcore/internal/starkcore/friproof"
	"github.com/vybium/starkcore/internal/starkcore/friverify"
)

// Verify runs the full verifier procedure: the OOD consistency check,
// the DEEP composition at the queried positions, and the FRI
// low-degree test over the composed evaluations.
func Verify(a air.Air, channel air.VerifierChannel, proof *friproof.Proof) error {
	z, err := CheckOod(a, channel)
	if err != nil {
		return err
	}

	positions := channel.DrawQueryPositions()

	traceStates, err := channel.ReadTraceStates(positions)
	if err != nil {
		return err
	}
	constraintEvals, err := channel.ReadConstraintEvaluations(positions)
	if err != nil {
		return err
	}

	coeffs := channel.DrawCompositionCoefficients()
	frame := channel.ReadOodEvaluationFrame()
	oodEvaluations := channel.ReadOodEvaluations()

	evaluations, err := ComposeDeep(a, z, frame, oodEvaluations, coeffs, positions, traceStates, constraintEvals)
	if err != nil {
		return err
	}

	opts := a.Options().ToFriOptions()
	f := a.DomainOffset().Field()
	parsedProof, err := proof.ParseLayers(f, a.Hasher(), a.LdeDomainSize(), opts.FoldingFactor)
	if err != nil {
		return err
	}

	ctx := friverify.NewContext(f, a.Hasher(), a.DomainOffset(), a.LdeDomainSize(), a.TracePolyDegree(), channel.NumFriPartitions(), opts)
	if err := friverify.Verify(ctx, channel, parsedProof, evaluations, positions); err != nil {
		return FriVerificationFailed(err)
	}

	return nil
}
