package verify

import (
	"github.com/vybium/starkcore/internal/starkcore/air"
	"github.com/vybium/starkcore/internal/starkcore/field"
)

// CheckOod performs the out-of-domain consistency check: draw
// z, read the prover's OOD frame and evaluate the AIR's constraints at
// it, then check that value against the weighted reduction of the
// prover-reported composition-column evaluations at z. Returns z for
// reuse by the DEEP composer (drawn once, per the transcript-replay
// design both share).
func CheckOod(a air.Air, channel air.Channel) (field.ExtElement, error) {
	z := channel.DrawDeepPoint()

	frame := channel.ReadOodEvaluationFrame()
	oodEvaluation1, err := a.EvaluateConstraints(frame, z)
	if err != nil {
		return field.ExtElement{}, err
	}

	columnValues := channel.ReadOodEvaluations()
	base := a.DomainOffset().Field()
	oodEvaluation2 := field.Embed(base.Zero())
	zPower := field.Embed(base.One())
	for _, v := range columnValues {
		oodEvaluation2 = oodEvaluation2.Add(zPower.Mul(v))
		zPower = zPower.Mul(z)
	}

	if !oodEvaluation1.Equal(oodEvaluation2) {
		return field.ExtElement{}, InconsistentOodConstraintEvaluations()
	}
	return z, nil
}
