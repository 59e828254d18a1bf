/*
Package crypto wraps ed25519 keys used to sign ledger transactions. The
public key of a key pair is the address of the account it controls.
*/
package crypto

import (
	"encoding/hex"

	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/errors"
	"github.com/stellar/go/exp/crypto/derivation"
	"golang.org/x/crypto/ed25519"
)

const (
	// SeedSize is the size of a private key seed.
	SeedSize = ed25519.SeedSize

	// SignatureSize is the size of a signature.
	SignatureSize = ed25519.SignatureSize

	// DefaultDerivationPath is the bip44 path used when deriving keys from
	// a mnemonic seed.
	DefaultDerivationPath = "m/44'/501'/0'/0'"
)

// Signer is the functionality we use from a private key
// No serializing to support hardware devices as well.
type Signer interface {
	Sign(message []byte) ([]byte, error)
	Address() zkescrow.Address
}

// Verify returns true if sig is a valid signature of message created by the
// key controlling given address.
func Verify(addr zkescrow.Address, message, sig []byte) bool {
	if len(sig) != SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(addr[:]), message, sig)
}

// DeriveKey derives a private key from a master seed using given bip44
// path. All path components must be hardened.
func DeriveKey(path string, seed []byte) (*PrivateKey, error) {
	k, err := derivation.DeriveForPath(path, seed)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "derive %q: %s", path, err)
	}
	return PrivKeyFromSeed(k.Key)
}

// DecodePrivateKey loads a private key from its hex encoded seed or full
// 64 byte key representation.
func DecodePrivateKey(hexKey string) (*PrivateKey, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "cannot decode hex")
	}
	switch len(raw) {
	case ed25519.SeedSize:
		return PrivKeyFromSeed(raw)
	case ed25519.PrivateKeySize:
		return PrivKeyFromSeed(raw[:ed25519.SeedSize])
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "invalid key length %d", len(raw))
	}
}
