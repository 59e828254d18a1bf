package escrow

import (
	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/errors"
)

// derivations is shared by the program and the instruction builders. The
// same escrow address is derived by every instruction that touches it.
var derivations = func() *zkescrow.AddressCache {
	c, err := zkescrow.NewAddressCache(4096)
	if err != nil {
		panic(err)
	}
	return c
}()

// EscrowAddress returns the address of the escrow created with given seed
// and the bump it was derived with.
func EscrowAddress(program zkescrow.Address, seed []byte) (zkescrow.Address, uint8, error) {
	return derivations.Find([][]byte{seed}, program)
}

// TrackerAddress returns the address of the tracker of a claim with given
// execution id and the bump it was derived with.
func TrackerAddress(program zkescrow.Address, executionID string) (zkescrow.Address, uint8, error) {
	return derivations.Find([][]byte{[]byte(executionID)}, program)
}

func requireWritable(accounts ...*zkescrow.AccountInfo) error {
	for _, a := range accounts {
		if !a.IsWritable {
			return errors.Wrapf(errors.ErrInvalidInput, "%s must be writable", a.Key)
		}
	}
	return nil
}

// requireKey fails with ErrAddressMismatch unless the account is at the
// wanted address.
func requireKey(a *zkescrow.AccountInfo, want zkescrow.Address, name string) error {
	if !a.Key.Equals(want) {
		return errors.Wrapf(ErrAddressMismatch, "%s is %s, want %s", name, a.Key, want)
	}
	return nil
}

// isRecord returns true if the account is owned by the program and holds
// data of the size allocated for a record. Escrow and tracker addresses are
// derived the same way, so the size tells them apart.
func isRecord(a *zkescrow.AccountInfo, program zkescrow.Address, space int) bool {
	return a.IsOwnedBy(program) && len(a.Data) == space
}

// loadEscrow reads a valid escrow from an escrow account.
func loadEscrow(a *zkescrow.AccountInfo, program zkescrow.Address) (*Escrow, error) {
	if !isRecord(a, program, EscrowSpace) {
		return nil, errors.Wrapf(ErrAddressMismatch, "%s is not an escrow", a.Key)
	}
	var e Escrow
	if err := e.Unmarshal(a.Data); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

// loadTracker reads a tracker from a tracker account.
func loadTracker(a *zkescrow.AccountInfo, program zkescrow.Address) (*ExecutionTracker, error) {
	if !isRecord(a, program, TrackerSpace) {
		return nil, errors.Wrapf(ErrAddressMismatch, "%s is not a tracker", a.Key)
	}
	var t ExecutionTracker
	if err := t.Unmarshal(a.Data); err != nil {
		return nil, err
	}
	return &t, nil
}

func saturatingAdd(a, b uint64) uint64 {
	if a+b < a {
		return ^uint64(0)
	}
	return a + b
}
