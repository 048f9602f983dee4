package pqagg

import (
	"crypto/rand"
	"fmt"
)

// AggregateSign produces threshold-many independent signatures over msg,
// each bound to a fresh nonce, plus Merkle inclusion proofs for each
// signer's public key.
//
// The effective count is clamped to t = min(threshold, min(len(sks),
// len(pks))); t == 0 yields empty slices, not an error. The first t signers
// by array order participate; picking which t of n sign is the caller's
// concern, not the scheme's.
//
// The returned slices are parallel: signatures[k] and proofs[k] belong to
// the same signer for every k.
func AggregateSign(sks []SecretKey, pks []PublicKey, msg []byte, threshold int) ([]Signature, []*MerkleProof, error) {
	n := len(sks)
	if len(pks) < n {
		n = len(pks)
	}
	t := threshold
	if t > n {
		t = n
	}
	if t <= 0 {
		return nil, nil, nil
	}

	// Built once; shared read-only across all t signers
	tree := MerkleTreeFromPublicKeys(pks)

	signatures := make([]Signature, 0, t)
	proofs := make([]*MerkleProof, 0, t)

	for i := 0; i < t; i++ {
		if i >= MaxCommitteeSize {
			return nil, nil, errInvalidInput(
				fmt.Sprintf("signer index %d exceeds committee cap %d", i, MaxCommitteeSize))
		}

		var nonce [32]byte
		if _, err := rand.Read(nonce[:]); err != nil {
			return nil, nil, errRandomnessFailure(err)
		}

		sigBytes, err := signMessage(sks[i].Bytes(), msg)
		if err != nil {
			return nil, nil, err
		}
		signatures = append(signatures, NewSignature(sigBytes, i, nonce))

		proof, ok := tree.Prove(i)
		if !ok {
			return nil, nil, errInvalidInput(fmt.Sprintf("no merkle proof for signer %d", i))
		}
		proofs = append(proofs, proof)
	}

	return signatures, proofs, nil
}

// SignSingle produces one signature and inclusion proof for a single
// participant. pks must be the full committee, in index order, so the
// generated proof matches the committee root.
func SignSingle(sk *SecretKey, pk *PublicKey, pks []PublicKey, msg []byte) (*Signature, *MerkleProof, error) {
	if sk == nil || pk == nil {
		return nil, nil, errInvalidInput("secret key and public key must be non-nil")
	}

	tree := MerkleTreeFromPublicKeys(pks)
	proof, ok := tree.Prove(pk.Index())
	if !ok {
		return nil, nil, errInvalidInput(fmt.Sprintf("index %d not in committee of %d", pk.Index(), len(pks)))
	}

	var nonce [32]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, nil, errRandomnessFailure(err)
	}

	sigBytes, err := signMessage(sk.Bytes(), msg)
	if err != nil {
		return nil, nil, err
	}

	sig := NewSignature(sigBytes, sk.Index(), nonce)
	return &sig, proof, nil
}

// VerifySingle verifies one ML-DSA-65 signature against a public key. Used
// internally by aggregation and exposed for single-signer checks.
func VerifySingle(pk *PublicKey, msg []byte, sig *Signature) bool {
	if pk == nil || sig == nil {
		return false
	}
	return verifyMessage(pk.Bytes(), msg, sig.Bytes())
}
