package pqagg

import (
	"bytes"
	"math/bits"
)

// Verify decides the validity of an aggregated proof from public data only.
// It is total: malformed, truncated or hostile proofs return false, never
// panic, and are indistinguishable at the API level from merely wrong ones.
//
// Checks, in order: structural sanity, recomputed public-inputs hash,
// embedded pk_root equality, and bitmap population count against the
// claimed signature count.
func Verify(pkRoot [32]byte, msg []byte, proof *ZKSNARKProof) bool {
	if !ValidateProofStructure(proof) {
		return false
	}
	if proof.NumSignatures() == 0 || proof.NumSignatures() > MaxCommitteeSize {
		return false
	}

	expected := computePublicInputsHash(pkRoot, msg, proof.NumSignatures())
	if expected != proof.PublicInputsHash() {
		return false
	}

	return verifyProofCommitments(proof, pkRoot)
}

// verifyProofCommitments checks the structural commitments embedded in the
// proof body: the trailing pk_root and the signer bitmap.
func verifyProofCommitments(proof *ZKSNARKProof, pkRoot [32]byte) bool {
	body := proof.Bytes()
	if len(body) < minProofBodySize {
		return false
	}

	embeddedRoot := body[len(body)-32:]
	if !bytes.Equal(embeddedRoot, pkRoot[:]) {
		return false
	}

	// Bitmap sits after version + count + commitment chain
	bitmapStart := 3 + 32
	if bitmapStart+32 > len(body) {
		return false
	}
	bitmap := body[bitmapStart : bitmapStart+32]

	return countSigners(bitmap) == proof.NumSignatures()
}

// countSigners returns the population count of the signer bitmap.
func countSigners(bitmap []byte) int {
	count := 0
	for _, b := range bitmap {
		count += bits.OnesCount8(b)
	}
	return count
}

// BatchVerify verifies each (message, proof) pair independently against a
// shared root. Mismatched slice lengths yield all-false results rather than
// an error, preserving the boolean trust boundary.
//
// Each element's verification is pure given its inputs; callers may shard
// the work across goroutines freely.
func BatchVerify(pkRoot [32]byte, messages [][]byte, proofs []*ZKSNARKProof) []bool {
	results := make([]bool, len(proofs))
	if len(messages) != len(proofs) {
		return results
	}
	for i := range proofs {
		results[i] = Verify(pkRoot, messages[i], proofs[i])
	}
	return results
}

// VerifyWithPolicy runs standard verification and then enforces a threshold
// policy over the proof's signer count. A cryptographically valid proof can
// still be rejected here for carrying too few signatures.
func VerifyWithPolicy(pkRoot [32]byte, msg []byte, proof *ZKSNARKProof, totalValidators int, policy ThresholdPolicy) bool {
	if !Verify(pkRoot, msg, proof) {
		return false
	}
	return policy.Satisfied(proof.NumSignatures(), totalValidators)
}

// VerifySuperProof checks a second-layer proof against the caller's expected
// batch hashes: batch count, hash-for-hash equality in order, and the
// super-proof's own structural tag.
func VerifySuperProof(superProof *SuperProof, batchHashes [][32]byte) bool {
	if superProof == nil {
		return false
	}
	if superProof.NumBatches() != len(batchHashes) {
		return false
	}
	if len(batchHashes) == 0 {
		return false
	}

	got := superProof.BatchHashes()
	for i := range batchHashes {
		if got[i] != batchHashes[i] {
			return false
		}
	}

	body := superProof.Bytes()
	return len(body) >= 33 && body[0] == superProofVersion
}

// VerifyRotationProof validates a committee transition: the rotation's old
// root must equal the caller's currently trusted root, and the embedded
// proof must verify against the old root with the new root as the signed
// message.
func VerifyRotationProof(rotation *RotationProof, currentTrustedRoot [32]byte) bool {
	if rotation == nil {
		return false
	}
	if rotation.OldRoot != currentTrustedRoot {
		return false
	}
	return Verify(rotation.OldRoot, rotation.NewRoot[:], &rotation.Proof)
}
