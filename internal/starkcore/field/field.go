// Package field implements the base prime field B and its quadratic
// extension E used throughout the constraint evaluation and FRI core.
// The base arithmetic is vybium-crypto's field.Element; this package
// wraps it with the batch helpers, FFTs, extension tower, and byte
// codecs the core needs on top.
package field

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"

	gfield "github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// ElementBytes is the fixed byte width of a serialized base field
// element: one little-endian uint64 limb.
const ElementBytes = 8

// TwoAdicity is the largest k for which RootOfUnity(k) is defined:
// the field's multiplicative group has order P-1 = 2^32 * (2^32 - 1).
const TwoAdicity = 32

// Field identifies the base field: the fixed prime field vybium-crypto
// implements, P = 2^64 - 2^32 + 1. There is exactly one instance
// (DefaultField); the type exists so domain and transcript code can
// pass the field around the way they would any other collaborator.
type Field struct{}

// Element is a value in the base field, wrapping vybium-crypto's
// element so the rest of the core can carry its arithmetic, byte
// codec, and conjugate uniformly with ExtElement.
type Element struct {
	v gfield.Element
}

// DefaultField is the one base field instance, and DefaultGenerator a
// generator of its full multiplicative group. 7 generates the whole
// order-(P-1) group, so it is both a quadratic non-residue (see
// NonResidue) and an element of no power-of-two subgroup, which is
// what makes it the coset offset of choice for LDE domains.
var (
	DefaultField     = &Field{}
	DefaultGenerator = Element{gfield.New(7)}
)

// Modulus returns the field's prime modulus.
func (f *Field) Modulus() *big.Int { return new(big.Int).SetUint64(gfield.P) }

// TwoAdicity returns the largest log2(n) for which RootOfUnity(log2(n))
// is defined.
func (f *Field) TwoAdicity() uint { return TwoAdicity }

// RootOfUnity returns a primitive 2^logSize-th root of unity, the
// get-root-of-unity factory the LDE domain and divisor machinery
// require. Fails if logSize exceeds the field's two-adicity.
func (f *Field) RootOfUnity(logSize uint) (Element, error) {
	if logSize > TwoAdicity {
		return Element{}, fmt.Errorf("field: requested root of unity of order 2^%d exceeds two-adicity 2^%d", logSize, TwoAdicity)
	}
	return Element{gfield.PrimitiveRootOfUnity(uint64(1) << logSize)}, nil
}

// NewElement reduces value modulo the field and wraps it.
func (f *Field) NewElement(value *big.Int) Element {
	reduced := new(big.Int).Mod(value, f.Modulus())
	return Element{gfield.New(reduced.Uint64())}
}

// NewElementFromInt64 wraps an int64 into a field element.
func (f *Field) NewElementFromInt64(value int64) Element {
	if value >= 0 {
		return Element{gfield.New(uint64(value))}
	}
	return f.Zero().Sub(Element{gfield.New(uint64(-value))})
}

// NewElementFromUint64 wraps a uint64 into a field element.
func (f *Field) NewElementFromUint64(value uint64) Element {
	return Element{gfield.New(value)}
}

// RandomElement draws a uniformly random element using crypto/rand.
func (f *Field) RandomElement() (Element, error) {
	value, err := rand.Int(rand.Reader, f.Modulus())
	if err != nil {
		return Element{}, fmt.Errorf("failed to generate random element: %w", err)
	}
	return f.NewElement(value), nil
}

// Zero returns the additive identity.
func (f *Field) Zero() Element { return Element{gfield.Zero} }

// One returns the multiplicative identity.
func (f *Field) One() Element { return Element{gfield.One} }

// Uint64 returns the element's canonical integer value.
func (e Element) Uint64() uint64 { return e.v.Value() }

// Big returns the element's integer value as a big.Int.
func (e Element) Big() *big.Int { return new(big.Int).SetUint64(e.v.Value()) }

// Field returns the field this element belongs to.
func (e Element) Field() *Field { return DefaultField }

// Add returns e + other.
func (e Element) Add(other Element) Element { return Element{e.v.Add(other.v)} }

// Sub returns e - other.
func (e Element) Sub(other Element) Element { return Element{e.v.Sub(other.v)} }

// Neg returns -e.
func (e Element) Neg() Element { return Element{gfield.Zero.Sub(e.v)} }

// Mul returns e * other.
func (e Element) Mul(other Element) Element { return Element{e.v.Mul(other.v)} }

// Inv returns the multiplicative inverse of e.
func (e Element) Inv() (Element, error) {
	if e.v.IsZero() {
		return Element{}, fmt.Errorf("field: cannot invert zero")
	}
	return Element{e.v.Inverse()}, nil
}

// Div returns e / other.
func (e Element) Div(other Element) (Element, error) {
	inv, err := other.Inv()
	if err != nil {
		return Element{}, fmt.Errorf("field: division failed: %w", err)
	}
	return e.Mul(inv), nil
}

// Exp returns e raised to the given non-negative exponent, by
// square-and-multiply over the exponent's bits.
func (e Element) Exp(exponent *big.Int) Element {
	result := DefaultField.One()
	for i := exponent.BitLen() - 1; i >= 0; i-- {
		result = result.Square()
		if exponent.Bit(i) == 1 {
			result = result.Mul(e)
		}
	}
	return result
}

// ExpInt is a convenience wrapper over Exp for small int exponents.
func (e Element) ExpInt(exponent int) Element {
	return e.Exp(big.NewInt(int64(exponent)))
}

// Square returns e*e.
func (e Element) Square() Element { return e.Mul(e) }

// Equal reports value equality.
func (e Element) Equal(other Element) bool { return e.v.Equal(other.v) }

// IsZero reports whether e is the additive identity.
func (e Element) IsZero() bool { return e.v.IsZero() }

// IsOne reports whether e is the multiplicative identity.
func (e Element) IsOne() bool { return e.v.Equal(gfield.One) }

// Conjugate is the identity automorphism on the base field; it exists so
// that code generic over "an element with a Conjugate" can treat B and E
// uniformly (see ExtElement.Conjugate).
func (e Element) Conjugate() Element { return e }

// String renders the element's decimal value.
func (e Element) String() string { return e.v.String() }

// Bytes encodes e into a fixed ElementBytes-wide little-endian buffer.
func (e Element) Bytes() [ElementBytes]byte {
	var out [ElementBytes]byte
	binary.LittleEndian.PutUint64(out[:], e.v.Value())
	return out
}

// ElementFromBytes decodes a fixed-width little-endian buffer into an element.
func (f *Field) ElementFromBytes(buf [ElementBytes]byte) Element {
	return Element{gfield.New(binary.LittleEndian.Uint64(buf[:]))}
}

// ElementBytesSlice packs a slice of elements into a contiguous byte buffer.
func ElementBytesSlice(elems []Element) []byte {
	out := make([]byte, 0, len(elems)*ElementBytes)
	for _, e := range elems {
		b := e.Bytes()
		out = append(out, b[:]...)
	}
	return out
}

// ElementsFromBytes unpacks a contiguous byte buffer into field elements.
// len(buf) must be a multiple of ElementBytes.
func ElementsFromBytes(f *Field, buf []byte) ([]Element, error) {
	if len(buf)%ElementBytes != 0 {
		return nil, fmt.Errorf("field: buffer length %d is not a multiple of %d", len(buf), ElementBytes)
	}
	n := len(buf) / ElementBytes
	out := make([]Element, n)
	for i := 0; i < n; i++ {
		var b [ElementBytes]byte
		copy(b[:], buf[i*ElementBytes:(i+1)*ElementBytes])
		out[i] = f.ElementFromBytes(b)
	}
	return out, nil
}
