package pqagg

import (
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"
)

// Setup generates n independent ML-DSA-65 keypairs and commits their public
// keys into a Merkle root.
//
// Every keypair is generated independently: no two participants can derive
// one key from another, and no dealer or secret-sharing round exists. The
// group is bound together only by the returned Merkle root over the public
// keys, in index order.
//
// n == 0 returns empty slices and the zero root.
func Setup(n int) ([]SecretKey, []PublicKey, [32]byte, error) {
	if n == 0 {
		return nil, nil, [32]byte{}, nil
	}
	if n < 0 {
		return nil, nil, [32]byte{}, errInvalidInput(fmt.Sprintf("participant count %d is negative", n))
	}

	secretKeys := make([]SecretKey, 0, n)
	publicKeys := make([]PublicKey, 0, n)

	for i := 0; i < n; i++ {
		pkBytes, skBytes, err := generateKeypair()
		if err != nil {
			// Wipe everything generated so far before bailing out
			for j := range secretKeys {
				secretKeys[j].Zeroize()
			}
			return nil, nil, [32]byte{}, err
		}
		secretKeys = append(secretKeys, NewSecretKey(skBytes, i))
		publicKeys = append(publicKeys, NewPublicKey(pkBytes, i))
	}

	tree := MerkleTreeFromPublicKeys(publicKeys)
	return secretKeys, publicKeys, tree.Root(), nil
}

// keygenInfoPrefix domain-separates HKDF output so the same master seed can
// never produce colliding key material across protocol contexts.
const keygenInfoPrefix = "PQAGG_MLDSA_KEYGEN_V1"

// DeterministicKeyGen derives a reproducible committee from a 32-byte master
// seed. The seed is expanded into per-participant ML-DSA seeds via
// HKDF-SHA3-256 with the participant index in the info string, so equal
// seeds always yield the same committee and distinct indices always yield
// independent keys.
type DeterministicKeyGen struct {
	masterSeed []byte
	n          int
}

// NewDeterministicKeyGen creates a deterministic key generator with input
// validation.
func NewDeterministicKeyGen(masterSeed []byte, n int) (*DeterministicKeyGen, error) {
	if len(masterSeed) != 32 {
		return nil, errInvalidInput(fmt.Sprintf("master seed must be 32 bytes, got %d", len(masterSeed)))
	}
	if n <= 0 {
		return nil, errInvalidInput(fmt.Sprintf("participant count must be positive, got %d", n))
	}
	if n > MaxCommitteeSize {
		return nil, errInvalidInput(fmt.Sprintf("participant count %d exceeds committee cap %d", n, MaxCommitteeSize))
	}

	seed := make([]byte, len(masterSeed))
	copy(seed, masterSeed)
	return &DeterministicKeyGen{masterSeed: seed, n: n}, nil
}

// Generate derives the committee: n keypairs plus the Merkle root over the
// public keys. Intermediate seed material is wiped on every path.
func (d *DeterministicKeyGen) Generate() ([]SecretKey, []PublicKey, [32]byte, error) {
	secretKeys := make([]SecretKey, 0, d.n)
	publicKeys := make([]PublicKey, 0, d.n)

	seed := make([]byte, KeySeedSize)
	defer wipe(seed)

	for i := 0; i < d.n; i++ {
		info := make([]byte, len(keygenInfoPrefix)+8)
		copy(info, keygenInfoPrefix)
		binary.LittleEndian.PutUint64(info[len(keygenInfoPrefix):], uint64(i))

		expander := hkdf.New(sha3.New256, d.masterSeed, nil, info)
		if _, err := io.ReadFull(expander, seed); err != nil {
			for j := range secretKeys {
				secretKeys[j].Zeroize()
			}
			return nil, nil, [32]byte{}, errKeygenFailed("HKDF seed expansion failed").WithCause(err)
		}

		pkBytes, skBytes, err := keypairFromSeed(seed)
		if err != nil {
			for j := range secretKeys {
				secretKeys[j].Zeroize()
			}
			return nil, nil, [32]byte{}, err
		}

		secretKeys = append(secretKeys, NewSecretKey(skBytes, i))
		publicKeys = append(publicKeys, NewPublicKey(pkBytes, i))
	}

	tree := MerkleTreeFromPublicKeys(publicKeys)
	return secretKeys, publicKeys, tree.Root(), nil
}

// Zeroize wipes the master seed. The generator is unusable afterwards.
func (d *DeterministicKeyGen) Zeroize() {
	wipe(d.masterSeed)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
