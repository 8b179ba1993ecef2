package field

import "fmt"

// NonResidue is the quadratic non-residue defining DefaultField's
// extension: E = B[u] / (u^2 - NonResidue). 7 generates the full
// multiplicative group of the base field and is therefore a
// non-residue — see the comment on DefaultGenerator.
var NonResidue = DefaultGenerator

// ExtElementBytes is the fixed byte width of a serialized extension
// element: two base-field limbs, c0 and c1.
const ExtElementBytes = 2 * ElementBytes

// ExtElement is an element of the quadratic extension E = B[u]/(u^2 - d),
// represented as c0 + c1*u. The DEEP composer's t3 term and the FRI
// proof's query/remainder values are defined over E, not B. The
// underlying library's xfield tower is cubic, whose Frobenius map is
// not an involution; the conjugate constraint needs the quadratic one,
// so the tower lives here, built on the library's base elements.
type ExtElement struct {
	C0, C1 Element
}

// Embed lifts a base-field element into E via b -> (b, 0).
func Embed(b Element) ExtElement { return ExtElement{C0: b, C1: b.Field().Zero()} }

func (e ExtElement) field() *Field { return e.C0.Field() }

// NewExtElement builds c0 + c1*u directly.
func NewExtElement(c0, c1 Element) ExtElement { return ExtElement{C0: c0, C1: c1} }

// Add returns e + other.
func (e ExtElement) Add(other ExtElement) ExtElement {
	return ExtElement{C0: e.C0.Add(other.C0), C1: e.C1.Add(other.C1)}
}

// Sub returns e - other.
func (e ExtElement) Sub(other ExtElement) ExtElement {
	return ExtElement{C0: e.C0.Sub(other.C0), C1: e.C1.Sub(other.C1)}
}

// Neg returns -e.
func (e ExtElement) Neg() ExtElement { return ExtElement{C0: e.C0.Neg(), C1: e.C1.Neg()} }

// Mul returns e * other using schoolbook multiplication modulo u^2 = NonResidue.
func (e ExtElement) Mul(other ExtElement) ExtElement {
	c0 := e.C0.Mul(other.C0).Add(e.C1.Mul(other.C1).Mul(NonResidue))
	c1 := e.C0.Mul(other.C1).Add(e.C1.Mul(other.C0))
	return ExtElement{C0: c0, C1: c1}
}

// MulBase scales e by a base-field element.
func (e ExtElement) MulBase(b Element) ExtElement {
	return ExtElement{C0: e.C0.Mul(b), C1: e.C1.Mul(b)}
}

// Square returns e*e.
func (e ExtElement) Square() ExtElement { return e.Mul(e) }

// Conjugate returns the involutive automorphism (c0, c1) -> (c0, -c1),
// the complex-conjugate-like map the DEEP composer's t3 term relies on
// to enforce base-field membership of the trace.
func (e ExtElement) Conjugate() ExtElement { return ExtElement{C0: e.C0, C1: e.C1.Neg()} }

// Norm returns Conjugate(e)*e, which always lands in the base field
// (its c1 component is always zero); used by Inv.
func (e ExtElement) Norm() Element {
	n := e.Mul(e.Conjugate())
	return n.C0
}

// Inv returns the multiplicative inverse of e.
func (e ExtElement) Inv() (ExtElement, error) {
	if e.IsZero() {
		return ExtElement{}, fmt.Errorf("field: cannot invert zero extension element")
	}
	norm := e.Norm()
	normInv, err := norm.Inv()
	if err != nil {
		return ExtElement{}, fmt.Errorf("field: failed to invert extension element norm: %w", err)
	}
	return e.Conjugate().MulBase(normInv), nil
}

// Div returns e / other.
func (e ExtElement) Div(other ExtElement) (ExtElement, error) {
	inv, err := other.Inv()
	if err != nil {
		return ExtElement{}, fmt.Errorf("field: division failed: %w", err)
	}
	return e.Mul(inv), nil
}

// ExpInt raises e to a non-negative integer exponent by square-and-multiply.
func (e ExtElement) ExpInt(exponent int) ExtElement {
	result := Embed(e.field().One())
	base := e
	for exponent > 0 {
		if exponent&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Square()
		exponent >>= 1
	}
	return result
}

// IsZero reports whether e is the additive identity.
func (e ExtElement) IsZero() bool { return e.C0.IsZero() && e.C1.IsZero() }

// Equal reports value equality.
func (e ExtElement) Equal(other ExtElement) bool {
	return e.C0.Equal(other.C0) && e.C1.Equal(other.C1)
}

// String renders "c0 + c1*u".
func (e ExtElement) String() string { return fmt.Sprintf("%s+%s*u", e.C0, e.C1) }

// Bytes encodes e as c0 followed by c1, each ElementBytes wide.
func (e ExtElement) Bytes() [ExtElementBytes]byte {
	var out [ExtElementBytes]byte
	b0 := e.C0.Bytes()
	b1 := e.C1.Bytes()
	copy(out[:ElementBytes], b0[:])
	copy(out[ElementBytes:], b1[:])
	return out
}

// ExtElementFromBytes decodes a fixed-width buffer produced by Bytes.
func (f *Field) ExtElementFromBytes(buf [ExtElementBytes]byte) ExtElement {
	var b0, b1 [ElementBytes]byte
	copy(b0[:], buf[:ElementBytes])
	copy(b1[:], buf[ElementBytes:])
	return ExtElement{C0: f.ElementFromBytes(b0), C1: f.ElementFromBytes(b1)}
}

// ExtElementBytesSlice packs a slice of extension elements into a
// contiguous byte buffer, c0||c1 per element, query-index order.
func ExtElementBytesSlice(elems []ExtElement) []byte {
	out := make([]byte, 0, len(elems)*ExtElementBytes)
	for _, e := range elems {
		b := e.Bytes()
		out = append(out, b[:]...)
	}
	return out
}

// ExtElementsFromBytes unpacks a contiguous byte buffer into extension
// elements. len(buf) must be a multiple of ExtElementBytes.
func ExtElementsFromBytes(f *Field, buf []byte) ([]ExtElement, error) {
	if len(buf)%ExtElementBytes != 0 {
		return nil, fmt.Errorf("field: buffer length %d is not a multiple of %d", len(buf), ExtElementBytes)
	}
	n := len(buf) / ExtElementBytes
	out := make([]ExtElement, n)
	for i := 0; i < n; i++ {
		var b [ExtElementBytes]byte
		copy(b[:], buf[i*ExtElementBytes:(i+1)*ExtElementBytes])
		out[i] = f.ExtElementFromBytes(b)
	}
	return out, nil
}

// BatchInversionExt is the ExtElement analogue of BatchInversion, used
// by the DEEP composer when several (x - z)-style denominators need
// inverting together.
func BatchInversionExt(elements []ExtElement) ([]ExtElement, error) {
	n := len(elements)
	if n == 0 {
		return []ExtElement{}, nil
	}
	for i, e := range elements {
		if e.IsZero() {
			return nil, fmt.Errorf("field: cannot invert zero extension element at index %d", i)
		}
	}
	acc := make([]ExtElement, n)
	acc[0] = elements[0]
	for i := 1; i < n; i++ {
		acc[i] = acc[i-1].Mul(elements[i])
	}
	accInv, err := acc[n-1].Inv()
	if err != nil {
		return nil, fmt.Errorf("field: failed to invert accumulator: %w", err)
	}
	results := make([]ExtElement, n)
	for i := n - 1; i > 0; i-- {
		results[i] = accInv.Mul(acc[i-1])
		accInv = accInv.Mul(elements[i])
	}
	results[0] = accInv
	return results, nil
}
