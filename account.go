package zkescrow

import (
	"encoding/binary"

	"github.com/iov-one/zkescrow/errors"
)

// Account is the persisted state of a single address.
type Account struct {
	// Lamports is the native balance held by the account.
	Lamports uint64
	// Owner is the program that may modify data and debit lamports.
	Owner Address
	// Executable is set for program accounts. Executable accounts are
	// immutable.
	Executable bool
	// Data is program defined.
	Data []byte
}

// accountHeaderSize is lamports, owner, executable flag and data length.
const accountHeaderSize = 8 + AddressLength + 1 + 4

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	c := *a
	if a.Data != nil {
		c.Data = make([]byte, len(a.Data))
		copy(c.Data, a.Data)
	}
	return &c
}

// IsEmpty returns true if the account holds neither lamports nor data.
// Such an account is not persisted.
func (a *Account) IsEmpty() bool {
	return a.Lamports == 0 && len(a.Data) == 0 && !a.Executable
}

// Marshal serializes the account into its storage representation.
func (a *Account) Marshal() ([]byte, error) {
	raw := make([]byte, accountHeaderSize+len(a.Data))
	binary.LittleEndian.PutUint64(raw[0:8], a.Lamports)
	copy(raw[8:8+AddressLength], a.Owner[:])
	if a.Executable {
		raw[8+AddressLength] = 1
	}
	binary.LittleEndian.PutUint32(raw[8+AddressLength+1:accountHeaderSize], uint32(len(a.Data)))
	copy(raw[accountHeaderSize:], a.Data)
	return raw, nil
}

// Unmarshal loads the account from its storage representation.
func (a *Account) Unmarshal(raw []byte) error {
	if len(raw) < accountHeaderSize {
		return errors.Wrapf(errors.ErrBufferTooSmall, "account header requires %d bytes", accountHeaderSize)
	}
	size := binary.LittleEndian.Uint32(raw[8+AddressLength+1 : accountHeaderSize])
	if uint64(len(raw)) != uint64(accountHeaderSize)+uint64(size) {
		return errors.Wrapf(errors.ErrInvalidState, "account data length %d does not match %d", len(raw)-accountHeaderSize, size)
	}
	switch raw[8+AddressLength] {
	case 0:
		a.Executable = false
	case 1:
		a.Executable = true
	default:
		return errors.Wrap(errors.ErrInvalidState, "executable flag")
	}
	a.Lamports = binary.LittleEndian.Uint64(raw[0:8])
	copy(a.Owner[:], raw[8:8+AddressLength])
	a.Data = make([]byte, size)
	copy(a.Data, raw[accountHeaderSize:])
	return nil
}

// AccountInfo is the capability handle a program receives for every account
// passed to an instruction. Signer and writable flags are set by the runtime
// and cannot be raised by a program.
//
// Account points to the working copy held by the runtime for the duration
// of a transaction. Changes made through it are visible to every other
// handle of the same address and are verified when the program returns.
type AccountInfo struct {
	Key        Address
	IsSigner   bool
	IsWritable bool
	*Account
}

// IsOwnedBy returns true if the account is owned by given program.
func (a *AccountInfo) IsOwnedBy(program Address) bool {
	return a.Account != nil && a.Owner.Equals(program)
}

// DataIsEmpty returns true if the account holds no data.
func (a *AccountInfo) DataIsEmpty() bool {
	return a.Account == nil || len(a.Data) == 0
}

// RequireSigner returns ErrMissingSignature if the account did not sign the
// instruction.
func (a *AccountInfo) RequireSigner() error {
	if !a.IsSigner {
		return errors.Wrapf(errors.ErrMissingSignature, "account %s", a.Key)
	}
	return nil
}
