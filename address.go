package zkescrow

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/zkescrow/errors"
	"github.com/mr-tron/base58"
)

// AddressLength is the length of all addresses. An address is either an
// ed25519 public key or a program derived address.
const AddressLength = 32

// Address identifies an account.
type Address [AddressLength]byte

// NewAddress copies given bytes into an address. It fails if the length
// does not match.
func NewAddress(raw []byte) (Address, error) {
	var a Address
	if len(raw) != AddressLength {
		return a, errors.ErrInvalidInput.Newf("address must be %d bytes, got %d", AddressLength, len(raw))
	}
	copy(a[:], raw)
	return a, nil
}

// MustParseAddress is like ParseAddress but panics on error. Use it only
// for compile time constants.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// ParseAddress decodes an address from its human readable representation.
// Base58 is the default format. A "hex:" or "bech32:" prefix selects
// another encoding.
func ParseAddress(s string) (Address, error) {
	var a Address
	chunks := strings.SplitN(s, ":", 2)
	format, enc := "base58", chunks[0]
	if len(chunks) == 2 {
		format, enc = chunks[0], chunks[1]
	}
	if len(enc) == 0 {
		return a, errors.ErrEmpty.New("address")
	}

	var (
		raw []byte
		err error
	)
	switch format {
	case "base58":
		raw, err = base58.Decode(enc)
		if err != nil {
			return a, errors.Wrap(errors.ErrInvalidInput, "cannot decode base58")
		}
	case "hex":
		raw, err = hex.DecodeString(enc)
		if err != nil {
			return a, errors.Wrap(errors.ErrInvalidInput, "cannot decode hex")
		}
	case "bech32":
		_, words, err := bech32.Decode(enc)
		if err != nil {
			return a, errors.Wrap(errors.ErrInvalidInput, err.Error())
		}
		if raw, err = bech32.ConvertBits(words, 5, 8, false); err != nil {
			return a, errors.Wrap(errors.ErrInvalidInput, err.Error())
		}
	default:
		return a, errors.ErrInvalidType.Newf("unknown format %q", format)
	}
	return NewAddress(raw)
}

// Bytes returns a copy of the address as a slice.
func (a Address) Bytes() []byte {
	b := make([]byte, AddressLength)
	copy(b, a[:])
	return b
}

// Equals checks if two addresses are the same
func (a Address) Equals(b Address) bool {
	return bytes.Equal(a[:], b[:])
}

// IsZero returns true if all bytes of the address are zero.
func (a Address) IsZero() bool {
	return a == Address{}
}

// String returns the base58 representation.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// Bech32 returns the bech32 representation using given human readable part.
func (a Address) Bech32(hrp string) (string, error) {
	if hrp == "" {
		return "", errors.ErrEmpty.New("human readable part")
	}
	words, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	enc, err := bech32.Encode(hrp, words)
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return enc, nil
}

// MarshalJSON provides a base58 representation for JSON, to override the
// standard array of numbers encoding.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts any format understood by ParseAddress.
func (a *Address) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(err, "cannot decode json")
	}
	addr, err := ParseAddress(enc)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// Set implements flag.Value interface.
func (a *Address) Set(s string) error {
	addr, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
