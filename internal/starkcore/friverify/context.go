// Package friverify implements FRI proof verification: per-layer
// fold-consistency checking against batched Merkle commitments, plus a
// final low-degree check of the remainder. Each folding coset is
// interpolated via Lagrange evaluation at the drawn challenge, so any
// power-of-two folding factor is supported.
package friverify

import (
	"github.com/vybium/starkcore/internal/starkcore/field"
	"github.com/vybium/starkcore/internal/starkcore/friproof"
)

// Context bundles the parameters a FRI verification run needs beyond
// the proof bytes themselves, built by the verifier driver.
type Context struct {
	Field           *field.Field
	Hasher          field.Hasher
	DomainOffset    field.Element
	LdeDomainSize   int
	TracePolyDegree int
	NumPartitions   int
	Options         friproof.Options
}

// NewContext builds a verification context from the LDE domain size,
// claimed trace polynomial degree, reported partition count, and FRI
// options the proof was built under.
func NewContext(f *field.Field, hasher field.Hasher, domainOffset field.Element, ldeDomainSize, tracePolyDegree, numPartitions int, opts friproof.Options) Context {
	return Context{
		Field:           f,
		Hasher:          hasher,
		DomainOffset:    domainOffset,
		LdeDomainSize:   ldeDomainSize,
		TracePolyDegree: tracePolyDegree,
		NumPartitions:   numPartitions,
		Options:         opts,
	}
}

// maxRemainderDegree bounds the remainder polynomial's allowed degree
// after numLayers folds of the initial trace-polynomial degree bound,
// each fold dividing the admissible degree by the folding factor.
func (ctx Context) maxRemainderDegree(numLayers int) int {
	degree := ctx.TracePolyDegree
	for i := 0; i < numLayers; i++ {
		degree = degree / ctx.Options.FoldingFactor
	}
	return degree
}
