// Package domain implements the LDE (low-degree extension) coset
// domain constraint evaluations live over.
package domain

import (
	"fmt"

	"github.com/vybium/starkcore/internal/starkcore/field"
	"github.com/vybium/starkcore/internal/starkcore/invariant"
)

// Domain is a multiplicative coset {offset * g^i : i = 0..length-1} of
// size N = 2^k, where g = field.RootOfUnity(k). TraceLength is the
// length of the execution trace this domain is the LDE of; Length is
// always blowup * TraceLength.
type Domain struct {
	Field       *field.Field
	Offset      field.Element
	Generator   field.Element
	Length      int
	TraceLength int
}

// New builds the LDE domain for a trace of traceLength steps blown up
// by blowup (both required to keep Length a power of two), offset by
// domainOffset.
func New(f *field.Field, traceLength, blowup int, domainOffset field.Element) (*Domain, error) {
	if !field.IsPowerOfTwo(traceLength) {
		return nil, fmt.Errorf("domain: trace length %d must be a power of two", traceLength)
	}
	if !field.IsPowerOfTwo(blowup) {
		return nil, fmt.Errorf("domain: blowup %d must be a power of two", blowup)
	}
	length := traceLength * blowup
	g, err := f.RootOfUnity(uint(log2(length)))
	if err != nil {
		return nil, fmt.Errorf("domain: %w", err)
	}
	return &Domain{
		Field:       f,
		Offset:      domainOffset,
		Generator:   g,
		Length:      length,
		TraceLength: traceLength,
	}, nil
}

// CEDomainSize returns N, the constraint-evaluation domain size.
func (d *Domain) CEDomainSize() int { return d.Length }

// LogCEDomainSize returns log2(N).
func (d *Domain) LogCEDomainSize() int { return log2(d.Length) }

// Blowup returns Length / TraceLength.
func (d *Domain) Blowup() int { return d.Length / d.TraceLength }

// Element returns the i-th domain point, offset * g^i.
func (d *Domain) Element(i int) field.Element {
	invariant.Assertf(i >= 0 && i < d.Length, "domain index %d out of range [0,%d)", i, d.Length)
	return d.Offset.Mul(d.Generator.ExpInt(i))
}

// Elements returns every point in the domain, offset * g^i for
// i in [0, Length).
func (d *Domain) Elements() []field.Element {
	return field.PowersFrom(d.Offset, d.Generator, d.Length, field.DefaultWorkerCount())
}

// TraceGenerator returns the generator of the (unblown-up) trace
// domain, g_trace = g^blowup, used to step from T(z) to T(z*g_trace).
func (d *Domain) TraceGenerator() field.Element {
	return d.Generator.ExpInt(d.Blowup())
}

// String renders a human-readable summary, mirroring
// ArithmeticDomain.String.
func (d *Domain) String() string {
	return fmt.Sprintf("Domain{length=%d, trace_length=%d, offset=%s, generator=%s}",
		d.Length, d.TraceLength, d.Offset, d.Generator)
}

func log2(n int) int {
	l := 0
	for (1 << l) < n {
		l++
	}
	return l
}
