package pqagg

import (
	"testing"
)

func TestAggregateProofsBasic(t *testing.T) {
	sks, pks, pkRoot := mustSetup(t, 5)
	msg := []byte("test message")

	sigs, proofs, err := AggregateSign(sks, pks, msg, 3)
	if err != nil {
		t.Fatalf("AggregateSign failed: %v", err)
	}

	proof, err := AggregateProofs(sigs, proofs, pkRoot, msg, pks)
	if err != nil {
		t.Fatalf("AggregateProofs failed: %v", err)
	}
	if proof.NumSignatures() != 3 {
		t.Fatalf("expected 3 signatures in proof, got %d", proof.NumSignatures())
	}
	if proof.Size() > MaxProofSize {
		t.Fatalf("proof is %d bytes, exceeds bound %d", proof.Size(), MaxProofSize)
	}
}

func TestAggregateProofsValidatesMerkle(t *testing.T) {
	sks, pks, _ := mustSetup(t, 3)
	msg := []byte("test")

	sigs, proofs, err := AggregateSign(sks, pks, msg, 2)
	if err != nil {
		t.Fatalf("AggregateSign failed: %v", err)
	}

	wrongRoot := [32]byte{}
	for i := range wrongRoot {
		wrongRoot[i] = 0xFF
	}
	_, err = AggregateProofs(sigs, proofs, wrongRoot, msg, pks)
	if !IsErrorCode(err, CodeMerkleProofInvalid) {
		t.Fatalf("expected %s, got %v", CodeMerkleProofInvalid, err)
	}
	if !IsErrorCategory(err, ErrorCategoryCryptographic) {
		t.Fatalf("merkle failure should be a cryptographic error, got %v", err)
	}
}

func TestAggregateProofsEmptyFails(t *testing.T) {
	_, err := AggregateProofs(nil, nil, [32]byte{}, []byte("msg"), nil)
	if !IsErrorCode(err, CodeInsufficientSignatures) {
		t.Fatalf("expected %s, got %v", CodeInsufficientSignatures, err)
	}
	ctx := GetErrorContext(err)
	if ctx["required"] != 1 || ctx["provided"] != 0 {
		t.Fatalf("unexpected error context: %v", ctx)
	}
}

func TestAggregateProofsMismatchedCounts(t *testing.T) {
	sks, pks, pkRoot := mustSetup(t, 3)
	msg := []byte("test")

	sigs, proofs, err := AggregateSign(sks, pks, msg, 3)
	if err != nil {
		t.Fatalf("AggregateSign failed: %v", err)
	}

	_, err = AggregateProofs(sigs, proofs[:2], pkRoot, msg, pks)
	if !IsErrorCode(err, CodeInvalidInput) {
		t.Fatalf("expected %s, got %v", CodeInvalidInput, err)
	}
}

func TestAggregateProofsRejectsWrongMessageSignature(t *testing.T) {
	sks, pks, pkRoot := mustSetup(t, 3)

	sigs, proofs, err := AggregateSign(sks, pks, []byte("signed message"), 2)
	if err != nil {
		t.Fatalf("AggregateSign failed: %v", err)
	}

	// Aggregation against a different message: merkle proofs still pass, but
	// the signatures are not over this message
	_, err = AggregateProofs(sigs, proofs, pkRoot, []byte("different message"), pks)
	if !IsErrorCode(err, CodeSignatureInvalid) {
		t.Fatalf("expected %s, got %v", CodeSignatureInvalid, err)
	}
}

func TestAggregateProofsSignerIndexOutOfBounds(t *testing.T) {
	sks, pks, pkRoot := mustSetup(t, 2)
	msg := []byte("test")

	sigs, proofs, err := AggregateSign(sks, pks, msg, 2)
	if err != nil {
		t.Fatalf("AggregateSign failed: %v", err)
	}

	// Forge a signature claiming a signer index past the key set
	forged := NewSignature(sigs[0].Bytes(), 9, sigs[0].Nonce())
	_, err = AggregateProofs([]Signature{forged, sigs[1]}, proofs, pkRoot, msg, pks)
	if !IsErrorCode(err, CodeInvalidInput) {
		t.Fatalf("expected %s for out-of-bounds signer, got %v", CodeInvalidInput, err)
	}
}

func TestProofStructureValidation(t *testing.T) {
	sks, pks, pkRoot := mustSetup(t, 3)
	msg := []byte("test")

	sigs, proofs, err := AggregateSign(sks, pks, msg, 2)
	if err != nil {
		t.Fatalf("AggregateSign failed: %v", err)
	}
	proof, err := AggregateProofs(sigs, proofs, pkRoot, msg, pks)
	if err != nil {
		t.Fatalf("AggregateProofs failed: %v", err)
	}
	if !ValidateProofStructure(proof) {
		t.Fatal("freshly aggregated proof should pass structural validation")
	}

	// Too short
	if ValidateProofStructure(NewZKSNARKProof(make([]byte, 10), 1, [32]byte{})) {
		t.Fatal("short body should fail structural validation")
	}

	// Wrong version byte
	badVersion := make([]byte, minProofBodySize)
	badVersion[0] = 0x7F
	if ValidateProofStructure(NewZKSNARKProof(badVersion, 0, [32]byte{})) {
		t.Fatal("wrong version should fail structural validation")
	}

	// Header count disagreeing with the wrapper
	body := make([]byte, len(proof.Bytes()))
	copy(body, proof.Bytes())
	mismatched := NewZKSNARKProof(body, proof.NumSignatures()+1, proof.PublicInputsHash())
	if ValidateProofStructure(mismatched) {
		t.Fatal("header/count mismatch should fail structural validation")
	}

	if ValidateProofStructure(nil) {
		t.Fatal("nil proof should fail structural validation")
	}
}

func TestProofSizeConstraint(t *testing.T) {
	sks, pks, pkRoot := mustSetup(t, 10)
	msg := []byte("test message for size check")

	sigs, proofs, err := AggregateSign(sks, pks, msg, 10)
	if err != nil {
		t.Fatalf("AggregateSign failed: %v", err)
	}
	proof, err := AggregateProofs(sigs, proofs, pkRoot, msg, pks)
	if err != nil {
		t.Fatalf("AggregateProofs failed: %v", err)
	}

	t.Logf("proof size: %d bytes for %d signers", proof.Size(), 10)
	if proof.Size() > MaxProofSize {
		t.Fatalf("proof is %d bytes, exceeds bound %d", proof.Size(), MaxProofSize)
	}
	// The body layout is fixed-size regardless of signer count
	if proof.Size() != minProofBodySize {
		t.Fatalf("proof body is %d bytes, expected fixed %d", proof.Size(), minProofBodySize)
	}
}

func TestAggregatorCustomFoldingScheme(t *testing.T) {
	agg, err := NewAggregator(recordingFold{calls: new(int)})
	if err != nil {
		t.Fatalf("NewAggregator failed: %v", err)
	}

	sks, pks, pkRoot := mustSetup(t, 3)
	msg := []byte("strategy test")
	sigs, proofs, err := AggregateSign(sks, pks, msg, 2)
	if err != nil {
		t.Fatalf("AggregateSign failed: %v", err)
	}

	if _, err := agg.AggregateProofs(sigs, proofs, pkRoot, msg, pks); err != nil {
		t.Fatalf("aggregation with injected scheme failed: %v", err)
	}
	if *agg.folding.(recordingFold).calls != 1 {
		t.Fatal("injected folding scheme was not used")
	}
}

func TestNewAggregatorNilScheme(t *testing.T) {
	if _, err := NewAggregator(nil); err == nil {
		t.Fatal("nil folding scheme should be rejected")
	}
}

// recordingFold wraps the commitment chain and counts invocations.
type recordingFold struct {
	calls *int
}

func (r recordingFold) Name() string { return "recording" }

func (r recordingFold) Fold(steps []FoldStep) ([32]byte, error) {
	*r.calls++
	return commitmentChain{}.Fold(steps)
}

func TestCommitmentChainOrderSensitive(t *testing.T) {
	steps := []FoldStep{
		{SignerIndex: 0, Nonce: [32]byte{1}, LeafHash: [32]byte{2}, SignatureDigest: [32]byte{3}},
		{SignerIndex: 1, Nonce: [32]byte{4}, LeafHash: [32]byte{5}, SignatureDigest: [32]byte{6}},
	}
	reversed := []FoldStep{steps[1], steps[0]}

	chain := commitmentChain{}
	a, _ := chain.Fold(steps)
	b, _ := chain.Fold(reversed)
	if a == b {
		t.Fatal("reordering fold steps must change the accumulator")
	}

	tampered := []FoldStep{steps[0], steps[1]}
	tampered[1].Nonce[0] ^= 1
	c, _ := chain.Fold(tampered)
	if a == c {
		t.Fatal("changing any step must change the accumulator")
	}
}

func TestSignerBitmap(t *testing.T) {
	sigs := []Signature{
		NewSignature(nil, 0, [32]byte{}),
		NewSignature(nil, 1, [32]byte{}),
		NewSignature(nil, 2, [32]byte{}),
		NewSignature(nil, 8, [32]byte{}),
		NewSignature(nil, 255, [32]byte{}),
	}
	bitmap := signerBitmap(sigs)

	if bitmap[0] != 0b00000111 {
		t.Fatalf("byte 0 = %08b, want 00000111", bitmap[0])
	}
	if bitmap[1] != 0b00000001 {
		t.Fatalf("byte 1 = %08b, want 00000001", bitmap[1])
	}
	if bitmap[31] != 0b10000000 {
		t.Fatalf("byte 31 = %08b, want 10000000", bitmap[31])
	}
	if countSigners(bitmap[:]) != 5 {
		t.Fatalf("popcount = %d, want 5", countSigners(bitmap[:]))
	}
}

func TestAggregateBatchProofs(t *testing.T) {
	sks, pks, pkRoot := mustSetup(t, 5)

	sigs1, proofs1, err := AggregateSign(sks, pks, []byte("batch 1"), 3)
	if err != nil {
		t.Fatalf("AggregateSign failed: %v", err)
	}
	proof1, err := AggregateProofs(sigs1, proofs1, pkRoot, []byte("batch 1"), pks)
	if err != nil {
		t.Fatalf("AggregateProofs failed: %v", err)
	}

	sigs2, proofs2, err := AggregateSign(sks, pks, []byte("batch 2"), 3)
	if err != nil {
		t.Fatalf("AggregateSign failed: %v", err)
	}
	proof2, err := AggregateProofs(sigs2, proofs2, pkRoot, []byte("batch 2"), pks)
	if err != nil {
		t.Fatalf("AggregateProofs failed: %v", err)
	}

	super, err := AggregateBatchProofs([]ZKSNARKProof{*proof1, *proof2})
	if err != nil {
		t.Fatalf("AggregateBatchProofs failed: %v", err)
	}
	if super.NumBatches() != 2 {
		t.Fatalf("expected 2 batches, got %d", super.NumBatches())
	}
	if super.TotalSignatures() != 6 {
		t.Fatalf("expected 6 total signatures, got %d", super.TotalSignatures())
	}
}

func TestAggregateBatchProofsEmpty(t *testing.T) {
	_, err := AggregateBatchProofs(nil)
	if !IsErrorCode(err, CodeInvalidInput) {
		t.Fatalf("empty batch list should fail with %s, got %v", CodeInvalidInput, err)
	}
}

func TestCreateRotationProof(t *testing.T) {
	sksOld, pksOld, rootOld := mustSetup(t, 5)
	_, _, rootNew := mustSetup(t, 5)

	rotation, err := CreateRotationProof(sksOld, pksOld, rootOld, rootNew, 1, 3)
	if err != nil {
		t.Fatalf("CreateRotationProof failed: %v", err)
	}
	if rotation.OldRoot != rootOld {
		t.Fatal("rotation records wrong old root")
	}
	if rotation.NewRoot != rootNew {
		t.Fatal("rotation records wrong new root")
	}
	if rotation.Epoch != 1 {
		t.Fatalf("rotation records epoch %d, want 1", rotation.Epoch)
	}
	if rotation.Proof.NumSignatures() != 3 {
		t.Fatalf("rotation proof carries %d signatures, want 3", rotation.Proof.NumSignatures())
	}
}
