package escrow

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"

	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/errors"
)

// Instruction opcodes. The opcode is the first byte of instruction data.
const (
	OpInitialize       byte = 0
	OpClaim            byte = 1
	OpVerifyAndRelease byte = 2
)

const (
	// MaxSeedLength is the longest accepted escrow seed.
	MaxSeedLength = zkescrow.MaxSeedLength
	// ExecutionIDSize is the size of the execution id field of a claim.
	ExecutionIDSize = 16
	// MaxPreimageLength is limited by the preimage length prefix.
	MaxPreimageLength = 1<<16 - 1
)

// InitializeMsg creates an escrow or adds funds to it.
type InitializeMsg struct {
	Seed   []byte
	Hash   [HashSize]byte
	Amount uint64
}

// Validate checks the message fields.
func (m *InitializeMsg) Validate() error {
	var errs error
	if len(m.Seed) > MaxSeedLength {
		errs = errors.AppendField(errs, "Seed", errors.ErrInvalidInput)
	}
	return errs
}

// Marshal returns the instruction data, including the opcode.
//
// Layout: seed_len u8 | seed | hash_len u8 | hash | amount u64 LE.
func (m *InitializeMsg) Marshal() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	data := make([]byte, 0, 1+1+len(m.Seed)+1+HashSize+8)
	data = append(data, OpInitialize, byte(len(m.Seed)))
	data = append(data, m.Seed...)
	data = append(data, HashSize)
	data = append(data, m.Hash[:]...)
	return appendUint64(data, m.Amount), nil
}

func parseInitialize(data []byte) (*InitializeMsg, error) {
	r := reader{buf: data}
	seedLen := r.u8()
	seed := r.bytes(int(seedLen))
	hashLen := r.u8()
	if r.err == nil && hashLen != HashSize {
		return nil, errors.Field("Hash", errors.ErrInvalidInput, "length %d, want %d", hashLen, HashSize)
	}
	hash := r.bytes(HashSize)
	amount := r.u64()
	if r.err != nil {
		return nil, errors.Wrap(r.err, "initialize")
	}
	msg := &InitializeMsg{
		Seed:   append([]byte{}, seed...),
		Amount: amount,
	}
	copy(msg.Hash[:], hash)
	return msg, msg.Validate()
}

// ClaimMsg requests the verification of a preimage.
type ClaimMsg struct {
	// ExecutionID is the text of the execution id without padding.
	ExecutionID  string
	Bump         uint8
	Tip          uint64
	ExpiryOffset uint64
	Seed         []byte
	Preimage     []byte
}

// Validate checks the message fields.
func (m *ClaimMsg) Validate() error {
	var errs error
	switch n := len(m.ExecutionID); {
	case n == 0:
		errs = errors.AppendField(errs, "ExecutionID", errors.ErrEmpty)
	case n > ExecutionIDSize:
		errs = errors.AppendField(errs, "ExecutionID", errors.ErrInvalidInput)
	case !utf8.ValidString(m.ExecutionID):
		errs = errors.AppendField(errs, "ExecutionID", errors.ErrInvalidInput)
	}
	if len(m.Seed) > MaxSeedLength {
		errs = errors.AppendField(errs, "Seed", errors.ErrInvalidInput)
	}
	switch n := len(m.Preimage); {
	case n == 0:
		errs = errors.AppendField(errs, "Preimage", errors.ErrEmpty)
	case n > MaxPreimageLength:
		errs = errors.AppendField(errs, "Preimage", errors.ErrInvalidInput)
	case !utf8.Valid(m.Preimage):
		errs = errors.AppendField(errs, "Preimage", errors.ErrInvalidInput)
	}
	return errs
}

// Marshal returns the instruction data, including the opcode. The execution
// id is NUL padded to ExecutionIDSize bytes.
//
// Layout: execution_id [16] | bump u8 | tip u64 LE | expiry_offset u64 LE |
// seed_len u8 | seed | preimage_len u16 LE | preimage.
func (m *ClaimMsg) Marshal() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	data := make([]byte, 0, 1+ExecutionIDSize+1+8+8+1+len(m.Seed)+2+len(m.Preimage))
	data = append(data, OpClaim)
	id := PadExecutionID(m.ExecutionID)
	data = append(data, id[:]...)
	data = append(data, m.Bump)
	data = appendUint64(data, m.Tip)
	data = appendUint64(data, m.ExpiryOffset)
	data = append(data, byte(len(m.Seed)))
	data = append(data, m.Seed...)
	var n [2]byte
	binary.LittleEndian.PutUint16(n[:], uint16(len(m.Preimage)))
	data = append(data, n[:]...)
	return append(data, m.Preimage...), nil
}

func parseClaim(data []byte) (*ClaimMsg, error) {
	r := reader{buf: data}
	id := r.bytes(ExecutionIDSize)
	bump := r.u8()
	tip := r.u64()
	expiry := r.u64()
	seedLen := r.u8()
	seed := r.bytes(int(seedLen))
	preimageLen := r.u16()
	preimage := r.bytes(int(preimageLen))
	if r.err != nil {
		return nil, errors.Wrap(r.err, "claim")
	}
	if !utf8.Valid(id) {
		return nil, errors.Field("ExecutionID", errors.ErrInvalidInput, "not UTF-8 text")
	}
	msg := &ClaimMsg{
		ExecutionID:  string(bytes.TrimRight(id, "\x00")),
		Bump:         bump,
		Tip:          tip,
		ExpiryOffset: expiry,
		Seed:         append([]byte{}, seed...),
		Preimage:     append([]byte{}, preimage...),
	}
	return msg, msg.Validate()
}

// PadExecutionID returns the execution id as stored in a claim. Ids longer
// than ExecutionIDSize are truncated, use ClaimMsg.Validate to reject them.
func PadExecutionID(id string) [ExecutionIDSize]byte {
	var res [ExecutionIDSize]byte
	copy(res[:], id)
	return res
}

func appendUint64(data []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(data, b[:]...)
}

// reader consumes fixed size fields. After the first short read all reads
// return zero values and err is set.
type reader struct {
	buf []byte
	err error
}

func (r *reader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.buf) < n {
		r.err = errors.Wrapf(errors.ErrInvalidInput, "need %d bytes, %d left", n, len(r.buf))
		return nil
	}
	b := r.buf[:n]
	r.buf = r.buf[n:]
	return b
}

func (r *reader) u8() byte {
	if b := r.bytes(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *reader) u16() uint16 {
	if b := r.bytes(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (r *reader) u64() uint64 {
	if b := r.bytes(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}
