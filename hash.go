package pqagg

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// Hash256 computes the SHA3-256 digest of data. Every commitment in the
// scheme (Merkle nodes, challenges, public inputs, commitment chain) uses
// this one primitive.
func Hash256(data []byte) [32]byte {
	return sha3.Sum256(data)
}

// hashPair computes H(left || right). Order matters: the combinator is not
// commutative, so left/right position is part of what gets committed.
func hashPair(left, right [32]byte) [32]byte {
	h := sha3.New256()
	h.Write(left[:])
	h.Write(right[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// ComputeChallenge computes the per-signer challenge
// c_i = H(m || i || nonce_i), with the signer index encoded as 8 bytes
// little-endian. Every signer derives a distinct challenge, which blocks the
// class of rogue-key attacks available against naive aggregate schemes that
// share one challenge across signers.
func ComputeChallenge(msg []byte, signerIndex int, nonce [32]byte) [32]byte {
	h := sha3.New256()
	h.Write(msg)
	var idx [8]byte
	binary.LittleEndian.PutUint64(idx[:], uint64(signerIndex))
	h.Write(idx[:])
	h.Write(nonce[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
