package pqagg

import (
	"fmt"

	"github.com/cloudflare/circl/sign"
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
)

// ML-DSA-65 (FIPS 204, NIST security level 3) is the post-quantum signature
// primitive for the scheme. Keys and signatures have fixed sizes at this
// level.
const (
	// PublicKeySize is the ML-DSA-65 public key size in bytes.
	PublicKeySize = mldsa65.PublicKeySize
	// SecretKeySize is the ML-DSA-65 secret key size in bytes.
	SecretKeySize = mldsa65.PrivateKeySize
	// SignatureSize is the ML-DSA-65 signature size in bytes.
	SignatureSize = mldsa65.SignatureSize
	// KeySeedSize is the seed length accepted by deterministic key derivation.
	KeySeedSize = mldsa65.SeedSize
)

var mldsaScheme sign.Scheme = mldsa65.Scheme()

// generateKeypair produces one fresh independent ML-DSA-65 keypair and
// returns the packed public and secret key bytes.
func generateKeypair() (pkBytes, skBytes []byte, err error) {
	pk, sk, err := mldsaScheme.GenerateKey()
	if err != nil {
		return nil, nil, errKeygenFailed("ML-DSA keypair generation failed").WithCause(err)
	}
	pkBytes, err = pk.MarshalBinary()
	if err != nil {
		return nil, nil, errKeygenFailed("public key encoding failed").WithCause(err)
	}
	skBytes, err = sk.MarshalBinary()
	if err != nil {
		return nil, nil, errKeygenFailed("secret key encoding failed").WithCause(err)
	}
	return pkBytes, skBytes, nil
}

// keypairFromSeed derives an ML-DSA-65 keypair deterministically from a
// fixed-length seed.
func keypairFromSeed(seed []byte) (pkBytes, skBytes []byte, err error) {
	if len(seed) != mldsaScheme.SeedSize() {
		return nil, nil, errKeygenFailed(
			fmt.Sprintf("seed must be %d bytes, got %d", mldsaScheme.SeedSize(), len(seed)))
	}
	pk, sk := mldsaScheme.DeriveKey(seed)
	pkBytes, err = pk.MarshalBinary()
	if err != nil {
		return nil, nil, errKeygenFailed("public key encoding failed").WithCause(err)
	}
	skBytes, err = sk.MarshalBinary()
	if err != nil {
		return nil, nil, errKeygenFailed("secret key encoding failed").WithCause(err)
	}
	return pkBytes, skBytes, nil
}

// signMessage signs msg with the secret key given as raw bytes. The key is
// reconstructed through the scheme's byte-level constructor; no memory
// layout assumptions are involved.
func signMessage(skBytes, msg []byte) ([]byte, error) {
	sk, err := mldsaScheme.UnmarshalBinaryPrivateKey(skBytes)
	if err != nil {
		return nil, errInvalidInput("secret key bytes do not decode as ML-DSA-65").WithCause(err)
	}
	return mldsaScheme.Sign(sk, msg, nil), nil
}

// verifyMessage verifies sig over msg against the public key given as raw
// bytes. Undecodable keys or signatures of the wrong length verify as false
// rather than erroring; verification is total.
func verifyMessage(pkBytes, msg, sig []byte) bool {
	if len(sig) != mldsaScheme.SignatureSize() {
		return false
	}
	pk, err := mldsaScheme.UnmarshalBinaryPublicKey(pkBytes)
	if err != nil {
		return false
	}
	return mldsaScheme.Verify(pk, msg, sig, nil)
}
