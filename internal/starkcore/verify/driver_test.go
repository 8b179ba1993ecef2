package verify

import (
	"errors"
	"testing"

	"github.com/vybium/starkcore/internal/starkcore/air"
	"github.com/vybium/starkcore/internal/starkcore/constraints"
	"github.com/vybium/starkcore/internal/starkcore/divisor"
	"github.com/vybium/starkcore/internal/starkcore/domain"
	"github.com/vybium/starkcore/internal/starkcore/examples/fibair"
	"github.com/vybium/starkcore/internal/starkcore/field"
	"github.com/vybium/starkcore/internal/starkcore/friproof"
	"github.com/vybium/starkcore/internal/starkcore/friverify"
)

const (
	e2eTraceLength   = 8
	e2eBlowup        = 4
	e2eLdeSize       = e2eTraceLength * e2eBlowup
	e2eFoldingFactor = 4
	e2eNumQueries    = 4
)

// evalPolyExt evaluates a base-field coefficient vector at an
// extension-field point by Horner's rule.
func evalPolyExt(f *field.Field, coeffs []field.Element, z field.ExtElement) field.ExtElement {
	result := field.Embed(f.Zero())
	for i := len(coeffs) - 1; i >= 0; i-- {
		result = result.Mul(z).Add(field.Embed(coeffs[i]))
	}
	return result
}

// honestInstance holds everything an honest Fibonacci prover would
// commit to: the OOD frame and composition value at z, the per-position
// trace and composition evaluations, and a one-layer FRI proof over the
// DEEP composition.
type honestInstance struct {
	air             *fibair.AIR
	frame           air.EvaluationFrame
	oodValue        field.ExtElement
	traceStates     map[int][]field.Element
	constraintEvals map[int][]field.ExtElement
	proof           *friproof.Proof
	friRoot         field.Digest
}

// proveHonestFibonacci runs the prover side of the protocol against a
// probe transcript that replays the exact draw sequence Verify will
// make: deep point, query positions, composition coefficients, then
// the layer-0 folding challenge. Trace and composition commitments are
// computed honestly from the Fibonacci trace, and the FRI layer folds
// the DEEP composition with the same Lagrange rule the verifier checks
// against.
func proveHonestFibonacci(t *testing.T) *honestInstance {
	t.Helper()
	f := field.DefaultField
	// The LDE coset must avoid the trace subgroup; the full-group
	// generator can never land in a power-of-two subgroup.
	offset := field.DefaultGenerator
	opts := friproof.DefaultOptions().
		WithFoldingFactor(e2eFoldingFactor).
		WithNumQueries(e2eNumQueries).
		WithBlowup(e2eBlowup)

	a, err := fibair.New(f, e2eTraceLength, e2eBlowup, offset, air.Options{FriOptions: opts})
	if err != nil {
		t.Fatalf("fibair.New: %v", err)
	}
	hasher := a.Hasher()

	probe := air.NewTranscript(f, a.NumTraceRegisters(), a.NumCompositionColumns(), e2eLdeSize, e2eNumQueries, 1)
	z := probe.DrawDeepPoint()
	positions := probe.DrawQueryPositions()
	coeffs := probe.DrawCompositionCoefficients()
	alpha := probe.DrawFriFoldingChallenge(0)

	// Trace polynomials (interpolated over the plain trace subgroup)
	// and their evaluations over the offset LDE coset.
	trace := a.Trace()
	tracePolys := make([][]field.Element, len(trace))
	traceLde := make([][]field.Element, len(trace))
	for i, col := range trace {
		poly, err := field.IFFT(f, col)
		if err != nil {
			t.Fatalf("IFFT: %v", err)
		}
		padded := make([]field.Element, e2eLdeSize)
		copy(padded, poly)
		lde, err := field.CosetFFT(f, padded, offset)
		if err != nil {
			t.Fatalf("CosetFFT: %v", err)
		}
		tracePolys[i] = padded
		traceLde[i] = lde
	}

	gTrace := a.TraceGenerator()
	frame := air.EvaluationFrame{
		Current: []field.ExtElement{
			evalPolyExt(f, tracePolys[0], z),
			evalPolyExt(f, tracePolys[1], z),
		},
		Next: []field.ExtElement{
			evalPolyExt(f, tracePolys[0], z.MulBase(gTrace)),
			evalPolyExt(f, tracePolys[1], z.MulBase(gTrace)),
		},
	}

	// Composition polynomial via the constraint evaluation table: one
	// combined transition column (vanishing on the trace subgroup
	// except its last point) and one combined boundary column (first
	// point).
	dom, err := domain.New(f, e2eTraceLength, e2eBlowup, offset)
	if err != nil {
		t.Fatalf("domain.New: %v", err)
	}
	last := gTrace.ExpInt(e2eTraceLength - 1)
	divisors := []divisor.ConstraintDivisor{
		divisor.NewTransition(e2eTraceLength, f.One(), last),
		divisor.NewBoundary(1, f.One()),
	}
	table := constraints.NewTable(dom, divisors)
	one := f.One()
	for i := 0; i < e2eLdeSize; i++ {
		next := (i + e2eBlowup) % e2eLdeSize
		transition := traceLde[0][next].Sub(traceLde[1][i]).
			Add(traceLde[1][next].Sub(traceLde[0][i].Add(traceLde[1][i])))
		boundary := traceLde[0][i].Sub(one).Add(traceLde[1][i].Sub(one))
		table.UpdateRow(i, []field.Element{transition, boundary})
	}
	compositionPoly, err := table.IntoPoly()
	if err != nil {
		t.Fatalf("IntoPoly: %v", err)
	}
	oodValue := evalPolyExt(f, compositionPoly, z)
	compositionLde, err := field.CosetFFT(f, compositionPoly, offset)
	if err != nil {
		t.Fatalf("CosetFFT: %v", err)
	}

	traceStates := make(map[int][]field.Element, e2eLdeSize)
	constraintEvals := make(map[int][]field.ExtElement, e2eLdeSize)
	allPositions := make([]int, e2eLdeSize)
	allStates := make([][]field.Element, e2eLdeSize)
	allEvals := make([][]field.ExtElement, e2eLdeSize)
	for p := 0; p < e2eLdeSize; p++ {
		traceStates[p] = []field.Element{traceLde[0][p], traceLde[1][p]}
		constraintEvals[p] = []field.ExtElement{field.Embed(compositionLde[p])}
		allPositions[p] = p
		allStates[p] = traceStates[p]
		allEvals[p] = constraintEvals[p]
	}

	// DEEP composition over the whole LDE domain, then one FRI fold.
	deep, err := ComposeDeep(a, z, frame, []field.ExtElement{oodValue}, coeffs, allPositions, allStates, allEvals)
	if err != nil {
		t.Fatalf("ComposeDeep: %v", err)
	}

	const nextDomainSize = e2eLdeSize / e2eFoldingFactor
	groups := make([][]field.ExtElement, nextDomainSize)
	leaves := make([]field.Digest, nextDomainSize)
	for rep := 0; rep < nextDomainSize; rep++ {
		group := make([]field.ExtElement, e2eFoldingFactor)
		for k := 0; k < e2eFoldingFactor; k++ {
			group[k] = deep[rep+k*nextDomainSize]
		}
		groups[rep] = group
		leaves[rep] = hasher.HashElements(group)
	}
	tree, err := field.BuildMerkleTree(hasher, leaves)
	if err != nil {
		t.Fatalf("BuildMerkleTree: %v", err)
	}

	repSet := make(map[int]bool, len(positions))
	for _, p := range positions {
		repSet[p%nextDomainSize] = true
	}
	reps := make([]int, 0, len(repSet))
	for rep := 0; rep < nextDomainSize; rep++ {
		if repSet[rep] {
			reps = append(reps, rep)
		}
	}
	batchProof, err := tree.Prove(reps)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	queryGroups := make([][]field.ExtElement, len(reps))
	for i, rep := range reps {
		queryGroups[i] = groups[rep]
	}
	layer := friproof.NewLayer(queryGroups, batchProof)

	gLde := a.LdeDomainGenerator()
	remainder := make([]field.ExtElement, nextDomainSize)
	for rep := 0; rep < nextDomainSize; rep++ {
		xs := make([]field.Element, e2eFoldingFactor)
		for k := 0; k < e2eFoldingFactor; k++ {
			xs[k] = offset.Mul(gLde.ExpInt(rep + k*nextDomainSize))
		}
		folded, err := friverify.LagrangeEvalAt(xs, groups[rep], alpha)
		if err != nil {
			t.Fatalf("LagrangeEvalAt: %v", err)
		}
		remainder[rep] = folded
	}

	return &honestInstance{
		air:             a,
		frame:           frame,
		oodValue:        oodValue,
		traceStates:     traceStates,
		constraintEvals: constraintEvals,
		proof:           friproof.New([]*friproof.Layer{layer}, remainder, false),
		friRoot:         tree.Root(),
	}
}

func (h *honestInstance) channel(f *field.Field) *air.Transcript {
	channel := air.NewTranscript(f, h.air.NumTraceRegisters(), h.air.NumCompositionColumns(), e2eLdeSize, e2eNumQueries, 1)
	channel.SetOodEvaluationFrame(h.frame)
	channel.SetOodEvaluations([]field.ExtElement{h.oodValue})
	channel.SetTraceStates(h.traceStates)
	channel.SetConstraintEvaluations(h.constraintEvals)
	channel.SetFriLayerRoots(map[int]field.Digest{0: h.friRoot})
	return channel
}

// An honest proof over the Fibonacci trace passes all four verifier
// steps: OOD consistency, queried reads, DEEP composition, and FRI.
func TestVerifyAcceptsHonestProof(t *testing.T) {
	f := field.DefaultField
	h := proveHonestFibonacci(t)

	if err := Verify(h.air, h.channel(f), h.proof); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

// Tampering with the reported composition value at z must surface as
// an OOD consistency failure before FRI ever runs.
func TestVerifyRejectsTamperedOodEvaluation(t *testing.T) {
	f := field.DefaultField
	h := proveHonestFibonacci(t)

	channel := h.channel(f)
	channel.SetOodEvaluations([]field.ExtElement{h.oodValue.Add(field.Embed(f.One()))})

	err := Verify(h.air, channel, h.proof)
	if err == nil {
		t.Fatal("expected Verify to reject a tampered OOD evaluation")
	}
	var verr *VerifierError
	if !errors.As(err, &verr) || verr.Code != ErrInconsistentOodConstraintEvaluations {
		t.Fatalf("expected InconsistentOodConstraintEvaluations, got %v", err)
	}
}

// Tampering with a committed trace value at a queried position breaks
// the DEEP/FRI fold consistency.
func TestVerifyRejectsTamperedTraceState(t *testing.T) {
	f := field.DefaultField
	h := proveHonestFibonacci(t)

	// Perturb every position's first register so the tamper lands on a
	// queried position no matter which positions the transcript draws.
	tampered := make(map[int][]field.Element, len(h.traceStates))
	for p, regs := range h.traceStates {
		tampered[p] = []field.Element{regs[0].Add(f.One()), regs[1]}
	}
	channel := h.channel(f)
	channel.SetTraceStates(tampered)

	err := Verify(h.air, channel, h.proof)
	if err == nil {
		t.Fatal("expected Verify to reject tampered trace states")
	}
	var verr *VerifierError
	if !errors.As(err, &verr) || verr.Code != ErrFriVerificationFailed {
		t.Fatalf("expected FriVerificationFailed, got %v", err)
	}
}
