package pqagg

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// MaxProofSize is the compactness bound for an aggregated proof body.
const MaxProofSize = 1228

// MaxCommitteeSize is the largest committee the 256-bit signer bitmap can
// represent. A structural limit of the proof body layout, not a tunable.
const MaxCommitteeSize = 256

const (
	proofBodyVersion  byte = 0x01
	superProofVersion byte = 0x03

	// version(1) + count(2) + chain(32) + bitmap(32) + nonces(32) + root(32)
	minProofBodySize = 131
)

// FoldStep is one signer's contribution to the accumulator: identity, nonce,
// key membership and signature content.
type FoldStep struct {
	SignerIndex     int
	Nonce           [32]byte
	LeafHash        [32]byte
	SignatureDigest [32]byte
}

// FoldingScheme folds an ordered list of per-signer steps into a single
// 32-byte accumulator. The default commitment chain provides integrity and
// binding over the whole ordered input; it does not provide succinct
// verification independent of the committed data the way a recursive SNARK
// would. A recursive backend can replace it without touching
// AggregateProofs or Verify call sites.
type FoldingScheme interface {
	Name() string
	Fold(steps []FoldStep) ([32]byte, error)
}

// commitmentChain is the default FoldingScheme: a sequential hash fold
// running = H(running || index || nonce || leafHash || sigDigest) per step.
// Reordering or replacing any step changes the accumulator.
type commitmentChain struct{}

func (commitmentChain) Name() string { return "sha3-256-commitment-chain" }

func (commitmentChain) Fold(steps []FoldStep) ([32]byte, error) {
	var running [32]byte
	var idx [8]byte
	h := sha3.New256()

	for _, step := range steps {
		h.Reset()
		h.Write(running[:])
		binary.LittleEndian.PutUint64(idx[:], uint64(step.SignerIndex))
		h.Write(idx[:])
		h.Write(step.Nonce[:])
		h.Write(step.LeafHash[:])
		h.Write(step.SignatureDigest[:])
		copy(running[:], h.Sum(nil))
	}

	return running, nil
}

// Aggregator validates signature batches and folds them into compact proofs.
// The folding strategy is constructor-injected.
type Aggregator struct {
	folding FoldingScheme
}

// NewAggregator creates an aggregator with the given folding scheme.
func NewAggregator(folding FoldingScheme) (*Aggregator, error) {
	if folding == nil {
		return nil, errInvalidInput("folding scheme cannot be nil")
	}
	return &Aggregator{folding: folding}, nil
}

var defaultAggregator = &Aggregator{folding: commitmentChain{}}

// AggregateProofs aggregates with the default commitment-chain folding
// scheme. See Aggregator.AggregateProofs.
func AggregateProofs(sigs []Signature, proofs []*MerkleProof, pkRoot [32]byte, msg []byte, pks []PublicKey) (*ZKSNARKProof, error) {
	return defaultAggregator.AggregateProofs(sigs, proofs, pkRoot, msg, pks)
}

// AggregateProofs validates a batch of (signature, merkle proof) pairs and
// folds them into one compact proof.
//
// Validation order: non-empty input, matching counts, every Merkle proof
// against pkRoot (the participating key really belongs to the committed
// set), then every signature against the public key at its signer index
// (the signature is genuine, not merely that a key exists in the tree).
// Nothing is mutated before validation completes.
func (a *Aggregator) AggregateProofs(sigs []Signature, proofs []*MerkleProof, pkRoot [32]byte, msg []byte, pks []PublicKey) (*ZKSNARKProof, error) {
	if len(sigs) == 0 {
		return nil, errInsufficientSignatures(1, 0)
	}
	if len(sigs) != len(proofs) {
		return nil, errInvalidInput(
			fmt.Sprintf("signature and proof count mismatch: %d signatures, %d proofs", len(sigs), len(proofs)))
	}

	for i := range proofs {
		if !VerifyMerkleProof(pkRoot, proofs[i]) {
			return nil, errMerkleProofInvalid(i, "proof does not verify against pk_root")
		}
	}

	for i := range sigs {
		signerIdx := sigs[i].SignerIndex()
		if signerIdx < 0 || signerIdx >= len(pks) {
			return nil, errInvalidInput(
				fmt.Sprintf("signer index %d out of bounds (have %d keys)", signerIdx, len(pks)))
		}
		if signerIdx >= MaxCommitteeSize {
			return nil, errInvalidInput(
				fmt.Sprintf("signer index %d exceeds committee cap %d", signerIdx, MaxCommitteeSize))
		}
		if !VerifySingle(&pks[signerIdx], msg, &sigs[i]) {
			return nil, errSignatureInvalid(signerIdx)
		}
	}

	return a.buildProof(sigs, proofs, pkRoot, msg)
}

// buildProof constructs the proof body:
//
//	[version][count:u16 LE][chain:32][bitmap:32][nonce commitment:32][pk_root:32]
func (a *Aggregator) buildProof(sigs []Signature, proofs []*MerkleProof, pkRoot [32]byte, msg []byte) (*ZKSNARKProof, error) {
	publicInputsHash := computePublicInputsHash(pkRoot, msg, len(sigs))

	steps := make([]FoldStep, len(sigs))
	for i := range sigs {
		steps[i] = FoldStep{
			SignerIndex:     sigs[i].SignerIndex(),
			Nonce:           sigs[i].Nonce(),
			LeafHash:        proofs[i].LeafHash(),
			SignatureDigest: Hash256(sigs[i].Bytes()),
		}
	}
	accumulator, err := a.folding.Fold(steps)
	if err != nil {
		return nil, errAggregationFailed("folding failed").WithCause(err)
	}

	bitmap := signerBitmap(sigs)
	nonceCommit := nonceCommitment(sigs)

	body := make([]byte, 0, minProofBodySize)
	body = append(body, proofBodyVersion)
	body = binary.LittleEndian.AppendUint16(body, uint16(len(sigs)))
	body = append(body, accumulator[:]...)
	body = append(body, bitmap[:]...)
	body = append(body, nonceCommit[:]...)
	body = append(body, pkRoot[:]...)

	if len(body) > MaxProofSize {
		// Truncating instead would be a silent soundness bug
		return nil, errAggregationFailed(
			fmt.Sprintf("proof body is %d bytes, exceeds %d byte bound", len(body), MaxProofSize))
	}

	return NewZKSNARKProof(body, len(sigs), publicInputsHash), nil
}

// computePublicInputsHash commits to everything a verifier is given:
// H(pk_root || message || count as u64 LE).
func computePublicInputsHash(pkRoot [32]byte, msg []byte, numSigs int) [32]byte {
	h := sha3.New256()
	h.Write(pkRoot[:])
	h.Write(msg)
	var count [8]byte
	binary.LittleEndian.PutUint64(count[:], uint64(numSigs))
	h.Write(count[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// signerBitmap sets bit index%8 of byte index/8 per participating signer.
// Indices >= MaxCommitteeSize are rejected before this is reached.
func signerBitmap(sigs []Signature) [32]byte {
	var bitmap [32]byte
	for i := range sigs {
		index := sigs[i].SignerIndex()
		if index >= 0 && index < MaxCommitteeSize {
			bitmap[index/8] |= 1 << (index % 8)
		}
	}
	return bitmap
}

// nonceCommitment hashes every signature's nonce in input order.
func nonceCommitment(sigs []Signature) [32]byte {
	h := sha3.New256()
	for i := range sigs {
		nonce := sigs[i].Nonce()
		h.Write(nonce[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// ValidateProofStructure performs a structural sanity check on a proof body:
// minimum length, version byte, and header count matching the proof's
// signature count. It does not verify commitments; see Verify.
func ValidateProofStructure(proof *ZKSNARKProof) bool {
	if proof == nil {
		return false
	}
	body := proof.Bytes()

	if len(body) < minProofBodySize {
		return false
	}
	if body[0] != proofBodyVersion {
		return false
	}
	headerCount := int(binary.LittleEndian.Uint16(body[1:3]))
	return headerCount == proof.NumSignatures()
}

// AggregateBatchProofs squashes multiple independently aggregated proofs
// (typically from different batches or messages) into one SuperProof by
// hashing all proof bodies together and recording each batch's
// public-inputs hash plus the total signature count.
//
// This is a second-layer commitment, not a recursive re-verification: the
// caller is expected to have verified each batch proof already.
func AggregateBatchProofs(proofs []ZKSNARKProof) (*SuperProof, error) {
	if len(proofs) == 0 {
		return nil, errInvalidInput("cannot aggregate empty proof list")
	}

	h := sha3.New256()
	totalSignatures := 0
	batchHashes := make([][32]byte, 0, len(proofs))

	for i := range proofs {
		h.Write(proofs[i].Bytes())
		batchHashes = append(batchHashes, proofs[i].PublicInputsHash())
		totalSignatures += proofs[i].NumSignatures()
	}

	var superCommitment [32]byte
	copy(superCommitment[:], h.Sum(nil))

	proofBytes := make([]byte, 0, 33)
	proofBytes = append(proofBytes, superProofVersion)
	proofBytes = append(proofBytes, superCommitment[:]...)

	return NewSuperProof(proofBytes, batchHashes, totalSignatures), nil
}

// CreateRotationProof transitions trust from one committee to the next
// without a trusted third party: the old committee signs the new root as
// the message, and that batch is aggregated as an ordinary proof against
// the old root.
func CreateRotationProof(oldSKs []SecretKey, oldPKs []PublicKey, oldRoot, newRoot [32]byte, epoch uint64, threshold int) (*RotationProof, error) {
	sigs, proofs, err := AggregateSign(oldSKs, oldPKs, newRoot[:], threshold)
	if err != nil {
		return nil, err
	}

	zksnark, err := AggregateProofs(sigs, proofs, oldRoot, newRoot[:], oldPKs)
	if err != nil {
		return nil, err
	}

	return NewRotationProof(oldRoot, newRoot, *zksnark, epoch), nil
}
