package field

import (
	"encoding/binary"

	gfield "github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	ghash "github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"
	"golang.org/x/crypto/sha3"
)

// DigestBytes is the fixed width of a Hasher's digest: one
// little-endian uint64 limb per element of the underlying library's
// digest.
const DigestBytes = ghash.DigestLen * 8

// Digest is the output of a Hasher: a fixed-width commitment used as a
// Merkle tree node.
type Digest [DigestBytes]byte

// ZeroDigest is a Digest's default value.
var ZeroDigest = Digest{}

// Hasher hashes a slice of extension-field elements into a Digest for
// Merkle leaves and internal nodes. Two concrete implementations
// satisfy it below; the core's Merkle/FRI code only ever calls through
// this interface at the tree boundary, never on the field-arithmetic
// hot path.
type Hasher interface {
	HashElements(elements []ExtElement) Digest
	HashDigests(a, b Digest) Digest
}

// Tip5Hasher is the default concrete Hasher: vybium-crypto's
// field-friendly Tip5, the same hash the trace and quotient
// commitments are built with.
type Tip5Hasher struct{}

// HashElements sponges every limb (c0, c1 of each ExtElement) through
// the variable-length Tip5 hash.
func (Tip5Hasher) HashElements(elements []ExtElement) Digest {
	limbs := make([]gfield.Element, 0, 2*len(elements))
	for _, e := range elements {
		limbs = append(limbs, e.C0.v, e.C1.v)
	}
	return digestBytes(ghash.HashVarlen(limbs))
}

// HashDigests absorbs two digests' limbs in one fixed-rate
// permutation, as an internal Merkle tree node.
func (Tip5Hasher) HashDigests(a, b Digest) Digest {
	var input [10]gfield.Element
	da := digestLimbs(a)
	db := digestLimbs(b)
	copy(input[:ghash.DigestLen], da[:])
	copy(input[ghash.DigestLen:], db[:])
	return digestBytes(ghash.Hash10(input))
}

// digestBytes packs a library digest's field elements into this
// package's byte-array Digest, one little-endian uint64 per element.
func digestBytes(d ghash.Digest) Digest {
	var out Digest
	for i, elem := range d {
		binary.LittleEndian.PutUint64(out[i*8:(i+1)*8], elem.Value())
	}
	return out
}

// digestLimbs is the inverse of digestBytes.
func digestLimbs(d Digest) ghash.Digest {
	var out ghash.Digest
	for i := range out {
		out[i] = gfield.New(binary.LittleEndian.Uint64(d[i*8 : (i+1)*8]))
	}
	return out
}

// Sha3Hasher is an alternative byte-oriented Hasher built on SHAKE-256,
// from the same SHA-3 family as the SHA3-256 the Transcript uses for
// Fiat-Shamir absorption. SHAKE fills the full digest width.
type Sha3Hasher struct{}

// HashElements hashes the little-endian byte encoding of elements.
func (Sha3Hasher) HashElements(elements []ExtElement) Digest {
	var d Digest
	sha3.ShakeSum256(d[:], ExtElementBytesSlice(elements))
	return d
}

// HashDigests hashes the concatenation of two digests, as an internal
// Merkle tree node.
func (Sha3Hasher) HashDigests(a, b Digest) Digest {
	buf := make([]byte, 0, 2*DigestBytes)
	buf = append(buf, a[:]...)
	buf = append(buf, b[:]...)
	var d Digest
	sha3.ShakeSum256(d[:], buf)
	return d
}
