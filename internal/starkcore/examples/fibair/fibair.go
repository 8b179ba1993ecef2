// Package fibair is a minimal two-register Fibonacci AIR, used to
// exercise the verifier core end to end in tests. It is deliberately
// small — a worked example a reader can
// check by hand.
package fibair

import (
	"fmt"

	"github.com/vybium/starkcore/internal/starkcore/air"
	"github.com/vybium/starkcore/internal/starkcore/domain"
	"github.com/vybium/starkcore/internal/starkcore/field"
	"github.com/vybium/starkcore/internal/starkcore/friproof"
)

// AIR computes the trace [a_i, b_i] with a_0 = b_0 = 1,
// a_{i+1} = b_i, b_{i+1} = a_i + b_i — two registers stepping the
// Fibonacci recurrence one pair per row.
type AIR struct {
	dom *domain.Domain
	opt air.Options
}

// New builds a Fibonacci AIR over traceLength rows, blown up by blowup
// for the LDE/constraint-evaluation domain, at the given coset offset.
func New(f *field.Field, traceLength, blowup int, offset field.Element, opt air.Options) (*AIR, error) {
	dom, err := domain.New(f, traceLength, blowup, offset)
	if err != nil {
		return nil, fmt.Errorf("fibair: %w", err)
	}
	return &AIR{dom: dom, opt: opt}, nil
}

// Trace runs the recurrence and returns the two trace columns, each of
// length TraceLength.
func (a *AIR) Trace() [][]field.Element {
	f := a.dom.Field
	n := a.dom.TraceLength
	regA := make([]field.Element, n)
	regB := make([]field.Element, n)
	regA[0] = f.One()
	regB[0] = f.One()
	for i := 1; i < n; i++ {
		regA[i] = regB[i-1]
		regB[i] = regA[i-1].Add(regB[i-1])
	}
	return [][]field.Element{regA, regB}
}

func (a *AIR) NumTraceRegisters() int { return 2 }

func (a *AIR) TraceGenerator() field.Element { return a.dom.TraceGenerator() }

func (a *AIR) LdeDomainGenerator() field.Element { return a.dom.Generator }

func (a *AIR) LdeDomainSize() int { return a.dom.Length }

func (a *AIR) DomainOffset() field.Element { return a.dom.Offset }

func (a *AIR) TracePolyDegree() int { return a.dom.TraceLength - 1 }

// NumCompositionColumns reports the constraint evaluation table is
// combined into a single composition column: with only two transition
// constraints and two boundary constraints, there is no need to split
// across several columns to bound any individual polynomial's degree.
func (a *AIR) NumCompositionColumns() int { return 1 }

func (a *AIR) Hasher() field.Hasher { return field.Tip5Hasher{} }

func (a *AIR) Options() air.Options { return a.opt }

// lastTracePoint is the trace-domain point the transition constraints
// must be excluded at, since the recurrence has no successor row
// there. The trace domain is the plain subgroup generated by g_trace;
// only the LDE domain carries the coset offset, which keeps every
// divisor nonzero over the LDE points.
func (a *AIR) lastTracePoint() field.Element {
	return a.TraceGenerator().ExpInt(a.dom.TraceLength - 1)
}

// firstTracePoint is the trace-domain point the boundary constraints
// apply to.
func (a *AIR) firstTracePoint() field.Element {
	return a.dom.Field.One()
}

// divisorAt evaluates (z^degree - base)/(z - exclusion) at the
// out-of-domain point z, or just (z^degree - base) when there is no
// exclusion point. The constraint divisor's batch evaluator is built
// for column division during proving, not single-point OOD checks, so
// this evaluates the same rational expression directly.
func divisorAt(z field.ExtElement, degree int, base field.Element, exclusion *field.Element) (field.ExtElement, error) {
	numerator := z.ExpInt(degree).Sub(field.Embed(base))
	if exclusion == nil {
		return numerator, nil
	}
	denom := z.Sub(field.Embed(*exclusion))
	return numerator.Div(denom)
}

// EvaluateConstraints combines the two transition constraints and two
// boundary constraints into the single composition value this AIR's
// sole composition column carries, matching the combination a
// corresponding prover would commit to.
func (a *AIR) EvaluateConstraints(frame air.EvaluationFrame, z field.ExtElement) (field.ExtElement, error) {
	if len(frame.Current) != 2 || len(frame.Next) != 2 {
		return field.ExtElement{}, fmt.Errorf("fibair: expected a 2-register frame, got current=%d next=%d", len(frame.Current), len(frame.Next))
	}
	f := a.dom.Field
	a0, b0 := frame.Current[0], frame.Current[1]
	aNext, bNext := frame.Next[0], frame.Next[1]

	last := a.lastTracePoint()
	transition1 := aNext.Sub(b0)
	transition2 := bNext.Sub(a0.Add(b0))

	div1, err := divisorAt(z, a.dom.TraceLength, f.One(), &last)
	if err != nil {
		return field.ExtElement{}, fmt.Errorf("fibair: transition divisor: %w", err)
	}
	t1, err := transition1.Div(div1)
	if err != nil {
		return field.ExtElement{}, fmt.Errorf("fibair: transition constraint 1: %w", err)
	}
	t2, err := transition2.Div(div1)
	if err != nil {
		return field.ExtElement{}, fmt.Errorf("fibair: transition constraint 2: %w", err)
	}

	first := a.firstTracePoint()
	boundary1 := a0.Sub(field.Embed(f.One()))
	boundary2 := b0.Sub(field.Embed(f.One()))
	div2, err := divisorAt(z, 1, first, nil)
	if err != nil {
		return field.ExtElement{}, fmt.Errorf("fibair: boundary divisor: %w", err)
	}
	bc1, err := boundary1.Div(div2)
	if err != nil {
		return field.ExtElement{}, fmt.Errorf("fibair: boundary constraint 1: %w", err)
	}
	bc2, err := boundary2.Div(div2)
	if err != nil {
		return field.ExtElement{}, fmt.Errorf("fibair: boundary constraint 2: %w", err)
	}

	return t1.Add(t2).Add(bc1).Add(bc2), nil
}

// FriOptions returns the FRI parameters this AIR was configured with,
// a small convenience over Options().ToFriOptions().
func (a *AIR) FriOptions() friproof.Options { return a.opt.ToFriOptions() }
