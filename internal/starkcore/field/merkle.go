package field

import (
	"fmt"
	"sort"
)

// MerkleTree is a binary Merkle tree over a power-of-two number of
// leaf digests, able to authenticate many leaf queries at once while
// sharing internal nodes across their paths (see BatchMerkleProof).
// It hashes internal nodes with the Hasher passed to BuildMerkleTree
// (Tip5Hasher or Sha3Hasher); the batch layer exists because the
// FRI wire format needs multi-leaf authentication paths with shared
// internal nodes, which that library's tree does not expose.
type MerkleTree struct {
	hasher Hasher
	levels [][]Digest // levels[0] = leaves, levels[len-1] = [root]
}

// BuildMerkleTree hashes leaf digests bottom-up. len(leaves) must be a
// power of two.
func BuildMerkleTree(hasher Hasher, leaves []Digest) (*MerkleTree, error) {
	if len(leaves) == 0 || !IsPowerOfTwo(len(leaves)) {
		return nil, fmt.Errorf("field: Merkle tree leaf count %d must be a positive power of two", len(leaves))
	}
	levels := [][]Digest{leaves}
	cur := leaves
	for len(cur) > 1 {
		next := make([]Digest, len(cur)/2)
		for i := range next {
			next[i] = hasher.HashDigests(cur[2*i], cur[2*i+1])
		}
		levels = append(levels, next)
		cur = next
	}
	return &MerkleTree{hasher: hasher, levels: levels}, nil
}

// Root returns the tree's root digest.
func (t *MerkleTree) Root() Digest { return t.levels[len(t.levels)-1][0] }

// Depth returns the number of levels between the leaves and the root.
func (t *MerkleTree) Depth() int { return len(t.levels) - 1 }

// Prove builds a BatchMerkleProof authenticating every leaf at the
// given (distinct) indexes, sharing internal nodes across queries
// exactly when their authentication paths overlap.
func (t *MerkleTree) Prove(indexes []int) (*BatchMerkleProof, error) {
	leafLevel := t.levels[0]
	leaves := make([]Digest, len(indexes))
	known := make(map[int]Digest, len(indexes))
	for i, idx := range indexes {
		if idx < 0 || idx >= len(leafLevel) {
			return nil, fmt.Errorf("field: Merkle proof index %d out of range [0,%d)", idx, len(leafLevel))
		}
		leaves[i] = leafLevel[idx]
		known[idx] = leafLevel[idx]
	}

	var nodes []Digest
	for d := 0; d < t.Depth(); d++ {
		cur := t.levels[d]
		parents := make(map[int]Digest)
		for _, idx := range sortedIndexKeys(known) {
			sib := idx ^ 1
			if _, ok := known[sib]; !ok {
				nodes = append(nodes, cur[sib])
			}
			parentIdx := idx / 2
			parents[parentIdx] = t.levels[d+1][parentIdx]
		}
		known = parents
	}
	return &BatchMerkleProof{Leaves: leaves, Nodes: nodes, Depth: t.Depth()}, nil
}

// BatchMerkleProof is a compressed multi-leaf authentication path: the
// queried leaf digests plus the minimal set of internal sibling nodes
// needed to recompute the root, shared across overlapping paths.
type BatchMerkleProof struct {
	Leaves []Digest
	Nodes  []Digest
	Depth  int
}

// SerializeNodes packs the proof's internal nodes only; leaves are
// reconstructible by the caller from hashed queries.
func (p *BatchMerkleProof) SerializeNodes() []byte {
	out := make([]byte, 0, len(p.Nodes)*DigestBytes)
	for _, n := range p.Nodes {
		out = append(out, n[:]...)
	}
	return out
}

// DeserializeBatchMerkleProof parses opaque path bytes into a
// BatchMerkleProof given the already-computed leaf digests and tree
// depth; it performs no index-dependent verification (that happens in
// Verify, once query positions are known).
func DeserializeBatchMerkleProof(data []byte, leaves []Digest, depth int) (*BatchMerkleProof, error) {
	if len(data)%DigestBytes != 0 {
		return nil, fmt.Errorf("field: batch Merkle proof byte length %d is not a multiple of digest size %d", len(data), DigestBytes)
	}
	n := len(data) / DigestBytes
	nodes := make([]Digest, n)
	for i := 0; i < n; i++ {
		copy(nodes[i][:], data[i*DigestBytes:(i+1)*DigestBytes])
	}
	return &BatchMerkleProof{Leaves: leaves, Nodes: nodes, Depth: depth}, nil
}

// Verify checks that p's leaves, taken at indexes (same order as
// p.Leaves), fold up to root under hasher, consuming internal nodes in
// the same deterministic traversal order MerkleTree.Prove produced
// them in.
func (p *BatchMerkleProof) Verify(hasher Hasher, root Digest, indexes []int) bool {
	if len(indexes) != len(p.Leaves) {
		return false
	}
	known := make(map[int]Digest, len(indexes))
	for i, idx := range indexes {
		known[idx] = p.Leaves[i]
	}

	nodePos := 0
	for d := 0; d < p.Depth; d++ {
		parents := make(map[int]Digest)
		for _, idx := range sortedIndexKeys(known) {
			sib := idx ^ 1
			sibDigest, ok := known[sib]
			if !ok {
				if nodePos >= len(p.Nodes) {
					return false
				}
				sibDigest = p.Nodes[nodePos]
				nodePos++
			}
			var left, right Digest
			if idx < sib {
				left, right = known[idx], sibDigest
			} else {
				left, right = sibDigest, known[idx]
			}
			parents[idx/2] = hasher.HashDigests(left, right)
		}
		known = parents
	}
	if nodePos != len(p.Nodes) || len(known) != 1 {
		return false
	}
	for _, v := range known {
		return v == root
	}
	return false
}

// sortedIndexKeys returns the keys of an index->Digest map in
// ascending order with duplicates at shared sibling pairs removed
// (the sibling is still present via the sibling lookup, not a second
// key), matching the traversal both Prove and Verify rely on.
func sortedIndexKeys(m map[int]Digest) []int {
	seen := make(map[int]bool, len(m))
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := keys[:0:0]
	for _, k := range keys {
		sib := k ^ 1
		if seen[k] {
			continue
		}
		seen[k] = true
		seen[sib] = true
		out = append(out, k)
	}
	return out
}
