package friproof

import (
	"fmt"

	"github.com/vybium/starkcore/internal/starkcore/field"
	"github.com/vybium/starkcore/internal/starkcore/invariant"
)

// Layer is one FRI proof layer's wire bytes: a packed
// query-value buffer and the layer's batch Merkle proof's internal
// nodes. It carries no parsed state; Parse recovers typed values.
type Layer struct {
	Values []byte
	Paths  []byte
}

// NewLayer packs queryValues (a non-empty ordered list of equal-sized
// folding-factor groups of extension elements) and batchProof into a
// Layer. Leaves are not packed separately — they're reconstructible by
// hashing the decoded query groups at parse time.
func NewLayer(queryValues [][]field.ExtElement, batchProof *field.BatchMerkleProof) *Layer {
	invariant.Assert(len(queryValues) > 0, "FRI layer must have at least one query group")
	foldingFactor := len(queryValues[0])
	invariant.Assert(foldingFactor > 0, "FRI layer query groups must be non-empty")

	values := make([]byte, 0, len(queryValues)*foldingFactor*field.ExtElementBytes)
	for _, group := range queryValues {
		invariant.Assertf(len(group) == foldingFactor, "FRI layer query groups must all have length %d, got %d", foldingFactor, len(group))
		values = append(values, field.ExtElementBytesSlice(group)...)
	}
	return &Layer{Values: values, Paths: batchProof.SerializeNodes()}
}

// ParsedLayer is a Layer after Parse: the flat sequence of decoded
// query-group elements (query-index order, foldingFactor per group)
// and the layer's parsed batch Merkle proof.
type ParsedLayer struct {
	QueryValues   []field.ExtElement
	NumQueries    int
	FoldingFactor int
	Proof         *field.BatchMerkleProof
}

// Parse decodes a Layer at the given depth (for error reporting),
// domain size (post-fold, for the Merkle tree depth), and folding
// factor.
func (l *Layer) Parse(f *field.Field, hasher field.Hasher, layerDepth, domainSize, foldingFactor int) (*ParsedLayer, error) {
	invariant.Assertf(len(l.Values) > 0 && len(l.Paths) > 0, "FRI layer %d values/paths must be non-empty", layerDepth)

	groupBytes := field.ExtElementBytes * foldingFactor
	if len(l.Values)%groupBytes != 0 {
		return nil, LayerDeserializationError(layerDepth,
			fmt.Sprintf("values length %d is not a multiple of %d (element bytes * folding factor)", len(l.Values), groupBytes), nil)
	}
	numQueries := len(l.Values) / groupBytes

	leaves := make([]field.Digest, numQueries)
	flat := make([]field.ExtElement, 0, numQueries*foldingFactor)
	for i := 0; i < numQueries; i++ {
		groupBuf := l.Values[i*groupBytes : (i+1)*groupBytes]
		elems, err := field.ExtElementsFromBytes(f, groupBuf)
		if err != nil {
			return nil, LayerDeserializationError(layerDepth, "failed to decode query group", err)
		}
		leaves[i] = hasher.HashElements(elems)
		flat = append(flat, elems...)
	}

	treeDepth := log2(domainSize)
	proof, err := field.DeserializeBatchMerkleProof(l.Paths, leaves, treeDepth)
	if err != nil {
		return nil, LayerDeserializationError(layerDepth, "failed to decode batch Merkle proof", err)
	}
	return &ParsedLayer{QueryValues: flat, NumQueries: numQueries, FoldingFactor: foldingFactor, Proof: proof}, nil
}

// Proof is the full FRI proof object: layers ordered from the initial
// LDE domain down, a packed low-degree remainder, and whether the
// underlying domain was partitioned across multiple provers.
type Proof struct {
	Layers      []*Layer
	Remainder   []byte
	Partitioned bool
}

// New packs layers and remainder (an ordered vector of extension
// elements, the coefficients or evaluations of the final folded
// polynomial) into a Proof.
func New(layers []*Layer, remainder []field.ExtElement, partitioned bool) *Proof {
	return &Proof{
		Layers:      layers,
		Remainder:   field.ExtElementBytesSlice(remainder),
		Partitioned: partitioned,
	}
}

// ParsedProof is a Proof after ParseLayers: typed layers plus a
// decoded remainder.
type ParsedProof struct {
	Layers      []*ParsedLayer
	Remainder   []field.ExtElement
	Partitioned bool
}

// ParseLayers decodes every layer in order, shrinking domainSize by
// foldingFactor at each step, then checks the remainder's decoded
// length against the final residual domain size.
func (p *Proof) ParseLayers(f *field.Field, hasher field.Hasher, domainSize, foldingFactor int) (*ParsedProof, error) {
	invariant.Assertf(field.IsPowerOfTwo(domainSize), "FRI initial domain size %d must be a power of two", domainSize)
	invariant.Assertf(field.IsPowerOfTwo(foldingFactor), "FRI folding factor %d must be a power of two", foldingFactor)

	parsed := make([]*ParsedLayer, len(p.Layers))
	d := domainSize
	for l, layer := range p.Layers {
		d = d / foldingFactor
		pl, err := layer.Parse(f, hasher, l, d, foldingFactor)
		if err != nil {
			return nil, err
		}
		parsed[l] = pl
	}

	remainder, err := p.ParseRemainder(f)
	if err != nil {
		return nil, err
	}
	if d != len(remainder) {
		return nil, InvalidRemainderDomain(len(remainder), d)
	}

	return &ParsedProof{Layers: parsed, Remainder: remainder, Partitioned: p.Partitioned}, nil
}

// ParseRemainder decodes the remainder buffer into extension elements.
func (p *Proof) ParseRemainder(f *field.Field) ([]field.ExtElement, error) {
	elems, err := field.ExtElementsFromBytes(f, p.Remainder)
	if err != nil {
		return nil, RemainderDeserializationError("remainder byte length is not a multiple of the extension element width", err)
	}
	return elems, nil
}

// String renders a human-readable summary.
func (p *Proof) String() string {
	return fmt.Sprintf("FriProof{layers=%d, remainder_bytes=%d, partitioned=%t}", len(p.Layers), len(p.Remainder), p.Partitioned)
}

func log2(n int) int {
	l := 0
	for (1 << l) < n {
		l++
	}
	return l
}
