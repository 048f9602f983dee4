package pqagg

// SecretKey wraps a participant's raw ML-DSA-65 secret key bytes together
// with the participant's index in the committee.
//
// Secret keys are exclusively owned by their signer. Call Zeroize when the
// key is no longer needed; the scheme treats lingering secret material in
// memory as a security defect, not a cosmetic issue.
type SecretKey struct {
	bytes []byte
	index int
}

// NewSecretKey wraps raw secret key bytes with a participant index.
func NewSecretKey(bytes []byte, index int) SecretKey {
	return SecretKey{bytes: bytes, index: index}
}

// Bytes returns the raw secret key bytes. Handle with care.
func (sk *SecretKey) Bytes() []byte {
	return sk.bytes
}

// Index returns the participant index.
func (sk *SecretKey) Index() int {
	return sk.index
}

// Zeroize overwrites every byte of the secret key with zero.
func (sk *SecretKey) Zeroize() {
	for i := range sk.bytes {
		sk.bytes[i] = 0
	}
}

// PublicKey wraps a participant's raw ML-DSA-65 public key bytes together
// with the participant's index. Public keys are immutable once created and
// carry no confidentiality requirement.
type PublicKey struct {
	bytes []byte
	index int
}

// NewPublicKey wraps raw public key bytes with a participant index.
func NewPublicKey(bytes []byte, index int) PublicKey {
	return PublicKey{bytes: bytes, index: index}
}

// Bytes returns the raw public key bytes.
func (pk *PublicKey) Bytes() []byte {
	return pk.bytes
}

// Index returns the participant index.
func (pk *PublicKey) Index() int {
	return pk.index
}

// Signature is a single signer's ML-DSA-65 signature over a message, plus
// the signer's index and the fresh 32-byte nonce drawn for this signing
// event. Nonce reuse breaks the per-signer challenge binding
// c_i = H(m || i || nonce_i), so a nonce is never carried across events.
type Signature struct {
	bytes       []byte
	signerIndex int
	nonce       [32]byte
}

// NewSignature wraps raw signature bytes with signer metadata.
func NewSignature(bytes []byte, signerIndex int, nonce [32]byte) Signature {
	return Signature{bytes: bytes, signerIndex: signerIndex, nonce: nonce}
}

// Bytes returns the raw signature bytes.
func (s *Signature) Bytes() []byte {
	return s.bytes
}

// SignerIndex returns the index of the signer that produced this signature.
func (s *Signature) SignerIndex() int {
	return s.signerIndex
}

// Nonce returns the per-signature nonce.
func (s *Signature) Nonce() [32]byte {
	return s.nonce
}

// MerkleProof proves that one leaf belongs to a committed Merkle tree. It is
// valid only relative to the specific tree it was generated from and goes
// stale if the tree is rebuilt with different leaves.
type MerkleProof struct {
	siblings  [][32]byte
	leafIndex int
	leafHash  [32]byte
}

// NewMerkleProof builds a proof from a root-ward sibling path.
func NewMerkleProof(siblings [][32]byte, leafIndex int, leafHash [32]byte) *MerkleProof {
	return &MerkleProof{siblings: siblings, leafIndex: leafIndex, leafHash: leafHash}
}

// Siblings returns the sibling hashes along the path to the root.
func (p *MerkleProof) Siblings() [][32]byte {
	return p.siblings
}

// LeafIndex returns the index of the proven leaf.
func (p *MerkleProof) LeafIndex() int {
	return p.leafIndex
}

// LeafHash returns the hash at the proven leaf.
func (p *MerkleProof) LeafHash() [32]byte {
	return p.leafHash
}

// ZKSNARKProof is the compact aggregated proof produced by AggregateProofs.
// It is immutable after creation and is the durable artifact of a signing
// session: it outlives the signatures it was folded from and is verified
// independently from only (pkRoot, message).
type ZKSNARKProof struct {
	proofBytes       []byte
	numSignatures    int
	publicInputsHash [32]byte
}

// NewZKSNARKProof wraps an aggregated proof body.
func NewZKSNARKProof(proofBytes []byte, numSignatures int, publicInputsHash [32]byte) *ZKSNARKProof {
	return &ZKSNARKProof{
		proofBytes:       proofBytes,
		numSignatures:    numSignatures,
		publicInputsHash: publicInputsHash,
	}
}

// Bytes returns the raw proof body.
func (p *ZKSNARKProof) Bytes() []byte {
	return p.proofBytes
}

// NumSignatures returns the number of signatures folded into this proof.
func (p *ZKSNARKProof) NumSignatures() int {
	return p.numSignatures
}

// PublicInputsHash returns the commitment to (pkRoot, message, count).
func (p *ZKSNARKProof) PublicInputsHash() [32]byte {
	return p.publicInputsHash
}

// Size returns the proof body size in bytes.
func (p *ZKSNARKProof) Size() int {
	return len(p.proofBytes)
}

// SuperProof squashes multiple independently aggregated proofs into a single
// second-layer commitment. It records each batch's public-inputs hash and the
// total signature count across all batches.
type SuperProof struct {
	proofBytes      []byte
	batchHashes     [][32]byte
	totalSignatures int
}

// NewSuperProof wraps a super-proof commitment.
func NewSuperProof(proofBytes []byte, batchHashes [][32]byte, totalSignatures int) *SuperProof {
	return &SuperProof{
		proofBytes:      proofBytes,
		batchHashes:     batchHashes,
		totalSignatures: totalSignatures,
	}
}

// Bytes returns the raw super-proof bytes.
func (sp *SuperProof) Bytes() []byte {
	return sp.proofBytes
}

// BatchHashes returns the public-inputs hash of every covered batch.
func (sp *SuperProof) BatchHashes() [][32]byte {
	return sp.batchHashes
}

// TotalSignatures returns the signature count summed over all batches.
func (sp *SuperProof) TotalSignatures() int {
	return sp.totalSignatures
}

// NumBatches returns the number of aggregated batches.
func (sp *SuperProof) NumBatches() int {
	return len(sp.batchHashes)
}

// RotationProof authorizes a transition from one committee root to the next.
// The outgoing committee signs the new root as the message; the embedded
// proof therefore verifies against OldRoot with NewRoot as message bytes.
type RotationProof struct {
	OldRoot [32]byte     `json:"old_root"`
	NewRoot [32]byte     `json:"new_root"`
	Proof   ZKSNARKProof `json:"-"`
	Epoch   uint64       `json:"epoch"`
}

// NewRotationProof constructs a rotation proof.
func NewRotationProof(oldRoot, newRoot [32]byte, proof ZKSNARKProof, epoch uint64) *RotationProof {
	return &RotationProof{OldRoot: oldRoot, NewRoot: newRoot, Proof: proof, Epoch: epoch}
}

// ProofBatch groups multiple aggregated proofs for transport or storage.
type ProofBatch struct {
	Proofs   []ZKSNARKProof
	Metadata []byte
}

// NewProofBatch wraps a list of proofs.
func NewProofBatch(proofs []ZKSNARKProof) *ProofBatch {
	return &ProofBatch{Proofs: proofs}
}
