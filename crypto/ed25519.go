package crypto

import (
	"encoding/hex"

	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/errors"
	"golang.org/x/crypto/ed25519"
)

// PrivateKey is an ed25519 key that signs transactions for the account at
// its public key address.
type PrivateKey struct {
	key ed25519.PrivateKey
}

var _ Signer = (*PrivateKey)(nil)

// GenPrivKeyEd25519 returns a random new private key
func GenPrivKeyEd25519() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{key: priv}
}

// PrivKeyFromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness,
// or for deterministic keys in test cases.
func PrivKeyFromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "seed must be %d bytes", ed25519.SeedSize)
	}
	return &PrivateKey{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// Sign returns a matching signature for this private key
func (p *PrivateKey) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(p.key, message), nil
}

// Address returns the address of the account controlled by this key.
func (p *PrivateKey) Address() zkescrow.Address {
	var a zkescrow.Address
	copy(a[:], p.key.Public().(ed25519.PublicKey))
	return a
}

// Seed returns the seed this key was created from.
func (p *PrivateKey) Seed() []byte {
	return p.key.Seed()
}

// String returns the hex encoded seed. Only use it to persist the key.
func (p *PrivateKey) String() string {
	return hex.EncodeToString(p.key.Seed())
}
