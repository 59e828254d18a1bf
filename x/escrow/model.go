package escrow

import (
	"encoding/binary"

	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/errors"
)

const (
	// SeedSize is the size of the zero padded seed stored in an escrow.
	SeedSize = 32
	// HashSize is the length of the hex text of a SHA-256 digest.
	HashSize = 64

	// EscrowSize is the size of a serialized Escrow.
	EscrowSize = SeedSize + 8 + HashSize + 1 + 1 + zkescrow.AddressLength + zkescrow.AddressLength
	// TrackerSize is the size of a serialized ExecutionTracker.
	TrackerSize = zkescrow.AddressLength

	// slack is allocated on top of every record.
	slack = 100

	// EscrowSpace is the data size of an escrow account.
	EscrowSpace = EscrowSize + slack
	// TrackerSpace is the data size of a tracker account.
	TrackerSpace = TrackerSize + slack
)

// Escrow holds funds until a preimage of Hash is proven.
type Escrow struct {
	// Seed the escrow address was derived from, zero padded.
	Seed [SeedSize]byte
	// Amount of lamports released to the receiver. The account holds
	// the rent reserve on top of it.
	Amount uint64
	// Hash is the hex text of the SHA-256 digest the preimage must
	// match.
	Hash [HashSize]byte
	// IsClaimed is set once the funds are released.
	IsClaimed bool
	// Receiver is set together with IsClaimed.
	Receiver *zkescrow.Address
	// Initializer created the escrow.
	Initializer zkescrow.Address
}

// Validate checks that the receiver is present if and only if the escrow
// is claimed.
func (e *Escrow) Validate() error {
	if e.IsClaimed && e.Receiver == nil {
		return errors.Field("Receiver", errors.ErrInvalidState, "claimed escrow without receiver")
	}
	if !e.IsClaimed && e.Receiver != nil {
		return errors.Field("Receiver", errors.ErrInvalidState, "open escrow with receiver")
	}
	return nil
}

// MarshalTo serializes the escrow into the first EscrowSize bytes of dst.
func (e *Escrow) MarshalTo(dst []byte) error {
	if len(dst) < EscrowSize {
		return errors.Wrapf(errors.ErrBufferTooSmall, "escrow requires %d bytes, got %d", EscrowSize, len(dst))
	}
	copy(dst[0:32], e.Seed[:])
	binary.LittleEndian.PutUint64(dst[32:40], e.Amount)
	copy(dst[40:104], e.Hash[:])
	dst[104] = boolByte(e.IsClaimed)
	if e.Receiver != nil {
		dst[105] = 1
		copy(dst[106:138], e.Receiver[:])
	} else {
		dst[105] = 0
		for i := 106; i < 138; i++ {
			dst[i] = 0
		}
	}
	copy(dst[138:170], e.Initializer[:])
	return nil
}

// Unmarshal loads the escrow from the first EscrowSize bytes of src.
func (e *Escrow) Unmarshal(src []byte) error {
	if len(src) < EscrowSize {
		return errors.Wrapf(errors.ErrBufferTooSmall, "escrow requires %d bytes, got %d", EscrowSize, len(src))
	}
	claimed, err := byteBool(src[104])
	if err != nil {
		return errors.Wrap(err, "claimed flag")
	}
	hasReceiver, err := byteBool(src[105])
	if err != nil {
		return errors.Wrap(err, "receiver flag")
	}

	copy(e.Seed[:], src[0:32])
	e.Amount = binary.LittleEndian.Uint64(src[32:40])
	copy(e.Hash[:], src[40:104])
	e.IsClaimed = claimed
	e.Receiver = nil
	if hasReceiver {
		var r zkescrow.Address
		copy(r[:], src[106:138])
		e.Receiver = &r
	}
	copy(e.Initializer[:], src[138:170])
	return nil
}

// ExecutionTracker correlates a claim with the oracle execution that
// verifies it.
type ExecutionTracker struct {
	ExecutionAccount zkescrow.Address
}

// MarshalTo serializes the tracker into the first TrackerSize bytes of dst.
func (t *ExecutionTracker) MarshalTo(dst []byte) error {
	if len(dst) < TrackerSize {
		return errors.Wrapf(errors.ErrBufferTooSmall, "tracker requires %d bytes, got %d", TrackerSize, len(dst))
	}
	copy(dst[0:32], t.ExecutionAccount[:])
	return nil
}

// Unmarshal loads the tracker from the first TrackerSize bytes of src.
func (t *ExecutionTracker) Unmarshal(src []byte) error {
	if len(src) < TrackerSize {
		return errors.Wrapf(errors.ErrBufferTooSmall, "tracker requires %d bytes, got %d", TrackerSize, len(src))
	}
	copy(t.ExecutionAccount[:], src[0:32])
	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func byteBool(b byte) (bool, error) {
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.Wrapf(errors.ErrInvalidState, "flag value %d", b)
	}
}
