package pqagg

import (
	"bytes"
	"testing"
)

func TestWireRoundTrip(t *testing.T) {
	msg := []byte("wire round trip")
	_, pkRoot, proof := endToEndProof(t, 4, 3, msg)

	encoded, err := proof.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}
	if len(encoded) != wireHeaderSize+len(proof.Bytes()) {
		t.Fatalf("encoding is %d bytes, want %d", len(encoded), wireHeaderSize+len(proof.Bytes()))
	}

	decoded, err := ParseProof(encoded)
	if err != nil {
		t.Fatalf("ParseProof failed: %v", err)
	}
	if decoded.NumSignatures() != proof.NumSignatures() {
		t.Fatalf("signature count changed: %d vs %d", decoded.NumSignatures(), proof.NumSignatures())
	}
	if decoded.PublicInputsHash() != proof.PublicInputsHash() {
		t.Fatal("public inputs hash changed across the wire")
	}
	if !bytes.Equal(decoded.Bytes(), proof.Bytes()) {
		t.Fatal("proof body changed across the wire")
	}

	// The decoded proof still verifies
	if !Verify(pkRoot, msg, decoded) {
		t.Fatal("decoded proof should verify")
	}
}

func TestParseProofTruncated(t *testing.T) {
	_, err := ParseProof(make([]byte, wireHeaderSize-1))
	if err == nil {
		t.Fatal("expected error for truncated encoding")
	}
	if !IsErrorCode(err, CodeMalformedProof) {
		t.Fatalf("expected %s, got %v", CodeMalformedProof, err)
	}

	if _, err := ParseProof(nil); err == nil {
		t.Fatal("expected error for empty encoding")
	}
}

func TestParseProofWrongVersion(t *testing.T) {
	msg := []byte("version test")
	_, _, proof := endToEndProof(t, 3, 2, msg)

	encoded, _ := proof.MarshalBinary()
	encoded[0] = 0x01

	if _, err := ParseProof(encoded); !IsErrorCode(err, CodeMalformedProof) {
		t.Fatalf("expected %s for wrong version byte, got %v", CodeMalformedProof, err)
	}
}

func TestParseProofLengthMismatch(t *testing.T) {
	msg := []byte("length test")
	_, _, proof := endToEndProof(t, 3, 2, msg)

	encoded, _ := proof.MarshalBinary()

	// Extra trailing bytes
	if _, err := ParseProof(append(encoded, 0x00)); !IsErrorCode(err, CodeMalformedProof) {
		t.Fatalf("expected %s for trailing bytes, got %v", CodeMalformedProof, err)
	}
	// Body shorter than declared
	if _, err := ParseProof(encoded[:len(encoded)-1]); !IsErrorCode(err, CodeMalformedProof) {
		t.Fatalf("expected %s for truncated body, got %v", CodeMalformedProof, err)
	}
}

func TestParseProofDetachedBuffer(t *testing.T) {
	msg := []byte("aliasing test")
	_, _, proof := endToEndProof(t, 3, 2, msg)

	encoded, _ := proof.MarshalBinary()
	decoded, err := ParseProof(encoded)
	if err != nil {
		t.Fatalf("ParseProof failed: %v", err)
	}

	// Mutating the wire buffer must not reach into the decoded proof
	for i := wireHeaderSize; i < len(encoded); i++ {
		encoded[i] = 0xFF
	}
	if !bytes.Equal(decoded.Bytes(), proof.Bytes()) {
		t.Fatal("decoded proof aliases the input buffer")
	}
}
