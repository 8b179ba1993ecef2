package air

import (
	"fmt"
	"math/big"

	"golang.org/x/crypto/sha3"

	"github.com/vybium/starkcore/internal/starkcore/field"
)

// Transcript is the concrete Channel/VerifierChannel implementation
// bundled with the core: a running Fiat-Shamir hash state absorbs
// Send calls, and Draw* calls derive pseudo-random values (single
// integers up to full extension elements) from that state. Read*
// calls return data a real channel would have authenticated against a
// Merkle root as it parsed the proof; that authentication is the
// channel's job, so Transcript's Read* methods simply return whatever
// was loaded via the matching Set* method — the harness supplies
// already-verified values.
type Transcript struct {
	f     *field.Field
	state []byte
	proof []string

	numTraceRegisters     int
	numCompositionColumns int
	ldeDomainSize         int
	numQueries            int
	numFriPartitions      int

	oodFrame              EvaluationFrame
	oodEvaluations        []field.ExtElement
	traceStates           map[int][]field.Element
	constraintEvaluations map[int][]field.ExtElement
	friLayerRoots         map[int]field.Digest
}

// NewTranscript builds an empty Transcript over field f, sized for an
// AIR with numTraceRegisters columns and numCompositionColumns
// composition-polynomial columns, over an LDE domain of
// ldeDomainSize, drawing numQueries positions and reporting
// numFriPartitions on request.
func NewTranscript(f *field.Field, numTraceRegisters, numCompositionColumns, ldeDomainSize, numQueries, numFriPartitions int) *Transcript {
	return &Transcript{
		f:                     f,
		state:                 []byte{0},
		proof:                 make([]string, 0, 64),
		numTraceRegisters:     numTraceRegisters,
		numCompositionColumns: numCompositionColumns,
		ldeDomainSize:         ldeDomainSize,
		numQueries:            numQueries,
		numFriPartitions:      numFriPartitions,
	}
}

// Send absorbs data into the transcript state, recording it as a
// prover commitment.
func (t *Transcript) Send(data []byte) {
	t.proof = append(t.proof, fmt.Sprintf("send:%x", data))
	t.state = t.hash(append(append([]byte(nil), t.state...), data...))
}

// SetOodEvaluationFrame loads the prover-sent OOD frame.
func (t *Transcript) SetOodEvaluationFrame(frame EvaluationFrame) { t.oodFrame = frame }

// SetOodEvaluations loads the prover-sent composition-column
// evaluations at z.
func (t *Transcript) SetOodEvaluations(v []field.ExtElement) { t.oodEvaluations = v }

// SetTraceStates loads the (already Merkle-verified) trace register
// values at a set of queried positions.
func (t *Transcript) SetTraceStates(states map[int][]field.Element) { t.traceStates = states }

// SetConstraintEvaluations loads the (already Merkle-verified)
// composition-column values at a set of queried positions.
func (t *Transcript) SetConstraintEvaluations(evals map[int][]field.ExtElement) {
	t.constraintEvaluations = evals
}

// SetFriLayerRoots loads the batch Merkle commitment roots sent for
// each FRI layer, keyed by layer depth.
func (t *Transcript) SetFriLayerRoots(roots map[int]field.Digest) { t.friLayerRoots = roots }

func (t *Transcript) hash(data []byte) []byte {
	h := sha3.Sum256(data)
	return h[:]
}

// drawInt derives a pseudo-random integer in [0, bound) from the
// current state, then advances the state, mirroring
// Channel.ReceiveRandomInt's state-as-integer-mod-range approach.
func (t *Transcript) drawInt(bound int64) int64 {
	stateAsInt := new(big.Int).SetBytes(t.state)
	random := new(big.Int).Mod(stateAsInt, big.NewInt(bound))
	t.proof = append(t.proof, fmt.Sprintf("draw:%s", random.String()))
	t.state = t.hash(t.state)
	return random.Int64()
}

// drawElement derives a pseudo-random base-field element.
func (t *Transcript) drawElement() field.Element {
	max := new(big.Int).Sub(t.f.Modulus(), big.NewInt(1))
	stateAsInt := new(big.Int).SetBytes(t.state)
	random := new(big.Int).Mod(stateAsInt, max)
	t.proof = append(t.proof, fmt.Sprintf("drawElem:%s", random.String()))
	t.state = t.hash(t.state)
	return t.f.NewElement(random)
}

// drawExtElement derives a pseudo-random extension-field element from
// two consecutive base-field draws.
func (t *Transcript) drawExtElement() field.ExtElement {
	c0 := t.drawElement()
	c1 := t.drawElement()
	return field.NewExtElement(c0, c1)
}

// DrawDeepPoint draws the OOD point z.
func (t *Transcript) DrawDeepPoint() field.ExtElement { return t.drawExtElement() }

// DrawQueryPositions draws NumQueries distinct positions in
// [0, ldeDomainSize).
func (t *Transcript) DrawQueryPositions() []int {
	seen := make(map[int]bool, t.numQueries)
	positions := make([]int, 0, t.numQueries)
	for len(positions) < t.numQueries {
		p := int(t.drawInt(int64(t.ldeDomainSize)))
		if seen[p] {
			continue
		}
		seen[p] = true
		positions = append(positions, p)
	}
	return positions
}

// DrawCompositionCoefficients draws a (c1,c2,c3) triple per trace
// register plus the shared (d0,d1) degree-adjustment pair, all from
// this one transcript call.
func (t *Transcript) DrawCompositionCoefficients() CompositionCoefficients {
	c := CompositionCoefficients{
		C1: make([]field.ExtElement, t.numTraceRegisters),
		C2: make([]field.ExtElement, t.numTraceRegisters),
		C3: make([]field.ExtElement, t.numTraceRegisters),
		CC: make([]field.ExtElement, t.numCompositionColumns),
	}
	for i := 0; i < t.numTraceRegisters; i++ {
		c.C1[i] = t.drawExtElement()
		c.C2[i] = t.drawExtElement()
		c.C3[i] = t.drawExtElement()
	}
	for i := 0; i < t.numCompositionColumns; i++ {
		c.CC[i] = t.drawExtElement()
	}
	c.D0 = t.drawExtElement()
	c.D1 = t.drawExtElement()
	return c
}

// ReadOodEvaluationFrame returns the loaded OOD frame.
func (t *Transcript) ReadOodEvaluationFrame() EvaluationFrame { return t.oodFrame }

// ReadOodEvaluations returns the loaded OOD composition-column evaluations.
func (t *Transcript) ReadOodEvaluations() []field.ExtElement { return t.oodEvaluations }

// ReadTraceStates returns the loaded trace states at positions, in
// the same order, failing if any position was never loaded.
func (t *Transcript) ReadTraceStates(positions []int) ([][]field.Element, error) {
	out := make([][]field.Element, len(positions))
	for i, p := range positions {
		v, ok := t.traceStates[p]
		if !ok {
			return nil, fmt.Errorf("air: transcript has no trace state for position %d", p)
		}
		out[i] = v
	}
	return out, nil
}

// ReadConstraintEvaluations returns the loaded constraint-column
// evaluations at positions, in the same order.
func (t *Transcript) ReadConstraintEvaluations(positions []int) ([][]field.ExtElement, error) {
	out := make([][]field.ExtElement, len(positions))
	for i, p := range positions {
		v, ok := t.constraintEvaluations[p]
		if !ok {
			return nil, fmt.Errorf("air: transcript has no constraint evaluations for position %d", p)
		}
		out[i] = v
	}
	return out, nil
}

// NumFriPartitions reports the loaded partition count.
func (t *Transcript) NumFriPartitions() int { return t.numFriPartitions }

// DrawFriFoldingChallenge draws the folding challenge for FRI layer
// layerDepth, salting the draw with the layer index so distinct layers
// never collide even if called out of the usual sequence.
func (t *Transcript) DrawFriFoldingChallenge(layerDepth int) field.ExtElement {
	t.state = t.hash(append(t.state, byte(layerDepth)))
	return t.drawExtElement()
}

// ReadFriLayerRoot returns the loaded commitment root for FRI layer
// layerDepth.
func (t *Transcript) ReadFriLayerRoot(layerDepth int) field.Digest {
	return t.friLayerRoots[layerDepth]
}

// String renders the recorded transcript, mirroring Channel.String().
func (t *Transcript) String() string {
	out := ""
	for i, p := range t.proof {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}
