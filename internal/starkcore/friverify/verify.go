package friverify

import (
	"fmt"
	"sort"

	"github.com/vybium/starkcore/internal/starkcore/air"
	"github.com/vybium/starkcore/internal/starkcore/field"
	"github.com/vybium/starkcore/internal/starkcore/friproof"
	"github.com/vybium/starkcore/internal/starkcore/invariant"
)

// VerifierError wraps a FRI verification failure with the layer or
// stage it occurred at, so verify.VerifierError's FriVerificationFailed
// can report a useful inner cause.
type VerifierError struct {
	Stage string
	Cause error
}

func (e *VerifierError) Error() string { return fmt.Sprintf("friverify: %s: %v", e.Stage, e.Cause) }
func (e *VerifierError) Unwrap() error { return e.Cause }

// Verify checks that evaluations, claimed at queryPositions (absolute
// indexes into the initial LDE domain), fold consistently through
// proof's layers down to a remainder of bounded degree.
// Representative positions at each layer are the ascending,
// deduplicated set of position-mod-(next domain size) — the query-
// group ordering convention both proof construction and this
// verification rely on.
func Verify(ctx Context, channel air.VerifierChannel, proof *friproof.ParsedProof, evaluations []field.ExtElement, queryPositions []int) error {
	invariant.Assertf(len(evaluations) == len(queryPositions), "friverify: %d evaluations but %d query positions", len(evaluations), len(queryPositions))
	invariant.Assertf(field.IsPowerOfTwo(ctx.LdeDomainSize), "friverify: LDE domain size %d must be a power of two", ctx.LdeDomainSize)
	foldingFactor := ctx.Options.FoldingFactor

	current := make(map[int]field.ExtElement, len(queryPositions))
	for i, p := range queryPositions {
		current[p] = evaluations[i]
	}
	domainSize := ctx.LdeDomainSize
	// Folding maps x -> x^foldingFactor, so each layer's evaluation
	// domain is offset by the previous layer's offset raised to the
	// folding factor.
	offset := ctx.DomainOffset

	for layerDepth, layer := range proof.Layers {
		nextDomainSize := domainSize / foldingFactor

		groups := make(map[int][]int, len(current))
		for p := range current {
			rep := p % nextDomainSize
			groups[rep] = append(groups[rep], p)
		}
		representatives := make([]int, 0, len(groups))
		for rep := range groups {
			representatives = append(representatives, rep)
		}
		sort.Ints(representatives)

		if len(representatives) != layer.NumQueries {
			return &VerifierError{Stage: fmt.Sprintf("layer %d", layerDepth),
				Cause: fmt.Errorf("layer has %d query groups, expected %d representative positions", layer.NumQueries, len(representatives))}
		}

		root := channel.ReadFriLayerRoot(layerDepth)
		if !layer.Proof.Verify(ctx.Hasher, root, representatives) {
			return &VerifierError{Stage: fmt.Sprintf("layer %d", layerDepth), Cause: fmt.Errorf("batch Merkle proof failed to verify")}
		}

		alpha := channel.DrawFriFoldingChallenge(layerDepth)
		g, err := ctx.Field.RootOfUnity(uint(log2(domainSize)))
		if err != nil {
			return &VerifierError{Stage: fmt.Sprintf("layer %d", layerDepth), Cause: err}
		}

		next := make(map[int]field.ExtElement, len(representatives))
		for i, rep := range representatives {
			group := layer.QueryValues[i*foldingFactor : (i+1)*foldingFactor]
			xs := make([]field.Element, foldingFactor)
			for k := 0; k < foldingFactor; k++ {
				xs[k] = offset.Mul(g.ExpInt(rep + k*nextDomainSize))
			}

			for _, p := range groups[rep] {
				k := p / nextDomainSize
				if k >= foldingFactor || !current[p].Equal(group[k]) {
					return &VerifierError{Stage: fmt.Sprintf("layer %d", layerDepth),
						Cause: fmt.Errorf("position %d does not match its folding-group leaf value", p)}
				}
			}

			folded, err := LagrangeEvalAt(xs, group, alpha)
			if err != nil {
				return &VerifierError{Stage: fmt.Sprintf("layer %d", layerDepth), Cause: err}
			}
			next[rep] = folded
		}

		current = next
		domainSize = nextDomainSize
		offset = offset.ExpInt(foldingFactor)
	}

	for rep, v := range current {
		if rep < 0 || rep >= len(proof.Remainder) {
			return &VerifierError{Stage: "remainder", Cause: fmt.Errorf("folded position %d out of remainder range [0,%d)", rep, len(proof.Remainder))}
		}
		if !v.Equal(proof.Remainder[rep]) {
			return &VerifierError{Stage: "remainder", Cause: fmt.Errorf("folded value at position %d does not match remainder", rep)}
		}
	}

	if err := checkRemainderLowDegree(ctx, proof.Remainder, len(proof.Layers), offset); err != nil {
		return &VerifierError{Stage: "remainder degree", Cause: err}
	}
	return nil
}

// LagrangeEvalAt evaluates the unique polynomial of degree < len(xs)
// passing through (xs[i], ys[i]) at the extension-field point at, via
// the standard Lagrange formula. This is the folding-coset
// interpolation FRI's fold-consistency check relies on; exported so a
// proof-construction path can fold layers with the exact same formula
// the verifier checks against.
func LagrangeEvalAt(xs []field.Element, ys []field.ExtElement, at field.ExtElement) (field.ExtElement, error) {
	n := len(xs)
	result := field.Embed(xs[0].Field().Zero())
	atExt := at
	for i := 0; i < n; i++ {
		term := ys[i]
		xi := field.Embed(xs[i])
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			xj := field.Embed(xs[j])
			num := atExt.Sub(xj)
			den := xi.Sub(xj)
			frac, err := num.Div(den)
			if err != nil {
				return field.ExtElement{}, fmt.Errorf("lagrange interpolation: %w", err)
			}
			term = term.Mul(frac)
		}
		result = result.Add(term)
	}
	return result, nil
}

// checkRemainderLowDegree interprets remainder as evaluations over
// its own length-sized coset (at the residual offset the folds left
// behind) and asserts every coefficient beyond the expected degree
// bound is zero.
func checkRemainderLowDegree(ctx Context, remainder []field.ExtElement, numLayers int, offset field.Element) error {
	if len(remainder) == 0 {
		return nil
	}
	maxDegree := ctx.maxRemainderDegree(numLayers)

	c0 := make([]field.Element, len(remainder))
	c1 := make([]field.Element, len(remainder))
	for i, v := range remainder {
		c0[i] = v.C0
		c1[i] = v.C1
	}
	coeffs0, err := field.CosetIFFT(ctx.Field, c0, offset)
	if err != nil {
		return fmt.Errorf("remainder low-degree check: %w", err)
	}
	coeffs1, err := field.CosetIFFT(ctx.Field, c1, offset)
	if err != nil {
		return fmt.Errorf("remainder low-degree check: %w", err)
	}
	for i := maxDegree + 1; i < len(coeffs0); i++ {
		if !coeffs0[i].IsZero() || !coeffs1[i].IsZero() {
			return fmt.Errorf("remainder polynomial has a nonzero coefficient at degree %d, exceeding bound %d", i, maxDegree)
		}
	}
	return nil
}

func log2(n int) int {
	l := 0
	for (1 << l) < n {
		l++
	}
	return l
}
