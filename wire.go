package pqagg

import (
	"encoding/binary"
	"fmt"
)

// Wire format for transmitting aggregated proofs to downstream encoders and
// on-chain verifiers, little-endian throughout:
//
//	[0]      version (0x02)
//	[1..3)   num_signatures: u16
//	[3..35)  public_inputs_hash: 32 bytes
//	[35..39) proof_body_len: u32
//	[39..)   proof body (the version-0x01 aggregation payload)
//
// Total length must equal 39 + proof_body_len exactly.
const (
	wireVersion    byte = 0x02
	wireHeaderSize      = 39
)

// MarshalBinary encodes the proof in the wire format.
func (p *ZKSNARKProof) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, wireHeaderSize+len(p.proofBytes))
	out = append(out, wireVersion)
	out = binary.LittleEndian.AppendUint16(out, uint16(p.numSignatures))
	out = append(out, p.publicInputsHash[:]...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(p.proofBytes)))
	out = append(out, p.proofBytes...)
	return out, nil
}

// ParseProof decodes a proof from its wire encoding. Truncated buffers,
// wrong version bytes and length mismatches return a typed error; decoding
// never panics.
func ParseProof(data []byte) (*ZKSNARKProof, error) {
	if len(data) < wireHeaderSize {
		return nil, errMalformedProof(
			fmt.Sprintf("encoding is %d bytes, need at least %d", len(data), wireHeaderSize))
	}
	if data[0] != wireVersion {
		return nil, errMalformedProof(fmt.Sprintf("unexpected version byte 0x%02x", data[0]))
	}

	numSignatures := int(binary.LittleEndian.Uint16(data[1:3]))

	var publicInputsHash [32]byte
	copy(publicInputsHash[:], data[3:35])

	bodyLen := int(binary.LittleEndian.Uint32(data[35:39]))
	if len(data) != wireHeaderSize+bodyLen {
		return nil, errMalformedProof(
			fmt.Sprintf("declared body length %d does not match %d remaining bytes",
				bodyLen, len(data)-wireHeaderSize))
	}

	body := make([]byte, bodyLen)
	copy(body, data[wireHeaderSize:])

	return NewZKSNARKProof(body, numSignatures, publicInputsHash), nil
}
