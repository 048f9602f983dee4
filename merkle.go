package pqagg

import (
	"math/bits"
)

// MerkleTree is an array-backed complete binary tree over 32-byte leaf
// hashes, used to commit to a committee's public keys. Leaves are padded to
// the next power of two with zero leaves; internal nodes are H(left||right);
// the root sits at node 0.
//
// The tree is rebuilt fully on construction. It is not designed for
// incremental appends: rebuilding on every append is O(N) per insert, which
// degrades to O(N^2) for append-heavy logs. Committee commitments are
// rebuilt once per epoch, where this does not matter.
type MerkleTree struct {
	// All nodes, root at index 0, leaves at the end
	nodes     [][32]byte
	numLeaves int
}

// NewMerkleTree builds a tree from leaf hashes.
//
// Two edge cases have their own hashing rules and their own tests:
// zero leaves yields a degenerate tree whose root is the zero hash, and a
// single leaf yields a root equal to that leaf verbatim, with no hashing
// applied.
func NewMerkleTree(leaves [][32]byte) *MerkleTree {
	numLeaves := len(leaves)
	if numLeaves == 0 {
		return &MerkleTree{nodes: make([][32]byte, 1), numLeaves: 0}
	}

	paddedSize := nextPowerOfTwo(numLeaves)
	totalNodes := 2*paddedSize - 1
	nodes := make([][32]byte, totalNodes)

	// Place leaves at the end; padding slots stay zero
	leafStart := paddedSize - 1
	copy(nodes[leafStart:], leaves)

	// Build internal nodes bottom-up
	for i := leafStart - 1; i >= 0; i-- {
		nodes[i] = hashPair(nodes[2*i+1], nodes[2*i+2])
	}

	return &MerkleTree{nodes: nodes, numLeaves: numLeaves}
}

// MerkleTreeFromPublicKeys builds a tree over H(pk_bytes) for each public
// key, in slice order.
func MerkleTreeFromPublicKeys(pks []PublicKey) *MerkleTree {
	leaves := make([][32]byte, len(pks))
	for i := range pks {
		leaves[i] = Hash256(pks[i].Bytes())
	}
	return NewMerkleTree(leaves)
}

// Root returns the Merkle root.
func (t *MerkleTree) Root() [32]byte {
	if len(t.nodes) == 0 {
		return [32]byte{}
	}
	return t.nodes[0]
}

// NumLeaves returns the number of real (unpadded) leaves.
func (t *MerkleTree) NumLeaves() int {
	return t.numLeaves
}

// Prove generates an inclusion proof for the leaf at leafIndex. Returns
// ok=false when leafIndex is outside the real leaf range; proof generation
// never panics.
func (t *MerkleTree) Prove(leafIndex int) (*MerkleProof, bool) {
	if leafIndex < 0 || leafIndex >= t.numLeaves {
		return nil, false
	}

	paddedSize := nextPowerOfTwo(t.numLeaves)
	leafStart := paddedSize - 1
	nodeIndex := leafStart + leafIndex
	leafHash := t.nodes[nodeIndex]

	var siblings [][32]byte
	for nodeIndex > 0 {
		var siblingIndex int
		if nodeIndex%2 == 1 {
			siblingIndex = nodeIndex + 1
		} else {
			siblingIndex = nodeIndex - 1
		}
		if siblingIndex < len(t.nodes) {
			siblings = append(siblings, t.nodes[siblingIndex])
		}
		nodeIndex = (nodeIndex - 1) / 2
	}

	return NewMerkleProof(siblings, leafIndex, leafHash), true
}

// VerifyMerkleProof replays the sibling chain from the proof's leaf hash,
// using the leaf index's parity at each level to pick the combinator order,
// and succeeds iff the final hash equals root.
//
// Malformed proofs are not an error: a proof with the wrong number of
// siblings for the tree's depth simply fails to reproduce the root.
func VerifyMerkleProof(root [32]byte, proof *MerkleProof) bool {
	if proof == nil {
		return false
	}

	current := proof.leafHash
	index := proof.leafIndex
	for _, sibling := range proof.siblings {
		if index%2 == 0 {
			current = hashPair(current, sibling)
		} else {
			current = hashPair(sibling, current)
		}
		index /= 2
	}

	return current == root
}

// nextPowerOfTwo returns the smallest power of two >= n, for n >= 1.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
