package verify

import (
	"fmt"

	"github.com/vybium/starkcore/internal/starkcore/air"
	"github.com/vybium/starkcore/internal/starkcore/field"
)

// ComposeDeep forms the DEEP composition at each queried point: a
// trace-quotient term and a constraint-quotient term, weighted by
// coeffs and summed, then degree-adjusted by (d0, d1) — all from the
// single CompositionCoefficients record the channel draws. positions,
// traceStates, and constraintEvals must all have the same length, one
// entry per query. Factored into its own function (rather than
// inlined in the verifier driver) so the degree-adjust step is
// independently testable.
func ComposeDeep(a air.Air, z field.ExtElement, frame air.EvaluationFrame, oodEvaluations []field.ExtElement, coeffs air.CompositionCoefficients, positions []int, traceStates [][]field.Element, constraintEvals [][]field.ExtElement) ([]field.ExtElement, error) {
	n := len(positions)
	if len(traceStates) != n || len(constraintEvals) != n {
		return nil, fmt.Errorf("verify: compose deep: %d positions, %d trace states, %d constraint evaluations", n, len(traceStates), len(constraintEvals))
	}

	g := a.LdeDomainGenerator()
	offset := a.DomainOffset()
	base := offset.Field()
	zero := field.Embed(base.Zero())

	zNext := z.MulBase(a.TraceGenerator())
	extended := a.Options().FieldExtension() == air.FieldExtensionQuadratic
	var zConj field.ExtElement
	if extended {
		zConj = z.Conjugate()
	}

	results := make([]field.ExtElement, n)
	for idx, p := range positions {
		x := offset.Mul(g.ExpInt(p))
		xExt := field.Embed(x)

		traceComp := zero
		registerStates := traceStates[idx]
		if len(registerStates) != len(frame.Current) {
			return nil, fmt.Errorf("verify: compose deep: query %d has %d trace registers, frame has %d", idx, len(registerStates), len(frame.Current))
		}
		for i, TiAtX := range registerStates {
			TiAtXExt := field.Embed(TiAtX)

			num1 := TiAtXExt.Sub(frame.Current[i])
			den1 := xExt.Sub(z)
			frac1, err := num1.Div(den1)
			if err != nil {
				return nil, fmt.Errorf("verify: compose deep: t1: %w", err)
			}
			traceComp = traceComp.Add(coeffs.C1[i].Mul(frac1))

			num2 := TiAtXExt.Sub(frame.Next[i])
			den2 := xExt.Sub(zNext)
			frac2, err := num2.Div(den2)
			if err != nil {
				return nil, fmt.Errorf("verify: compose deep: t2: %w", err)
			}
			traceComp = traceComp.Add(coeffs.C2[i].Mul(frac2))

			if extended {
				num3 := TiAtXExt.Sub(frame.Current[i].Conjugate())
				den3 := xExt.Sub(zConj)
				frac3, err := num3.Div(den3)
				if err != nil {
					return nil, fmt.Errorf("verify: compose deep: t3: %w", err)
				}
				traceComp = traceComp.Add(coeffs.C3[i].Mul(frac3))
			}
		}

		constraintComp := zero
		columnValues := constraintEvals[idx]
		if len(columnValues) != len(oodEvaluations) {
			return nil, fmt.Errorf("verify: compose deep: query %d has %d constraint columns, expected %d", idx, len(columnValues), len(oodEvaluations))
		}
		for j, CjAtX := range columnValues {
			num := CjAtX.Sub(oodEvaluations[j])
			den := xExt.Sub(z)
			frac, err := num.Div(den)
			if err != nil {
				return nil, fmt.Errorf("verify: compose deep: constraint quotient: %w", err)
			}
			constraintComp = constraintComp.Add(coeffs.CC[j].Mul(frac))
		}

		evaluation := traceComp.Add(constraintComp)
		degreeAdjust := coeffs.D0.Add(xExt.Mul(coeffs.D1))
		results[idx] = evaluation.Mul(degreeAdjust)
	}

	return results, nil
}
