package escrow

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/errors"
	"github.com/iov-one/zkescrow/x/oracle"
)

// Digest returns the hex text of the SHA-256 digest of the preimage, as
// committed by an escrow.
func Digest(preimage []byte) [HashSize]byte {
	sum := sha256.Sum256(preimage)
	var res [HashSize]byte
	hex.Encode(res[:], sum[:])
	return res
}

// ParseDigest returns the digest committed by an escrow from its hex text.
func ParseDigest(s string) ([HashSize]byte, error) {
	var res [HashSize]byte
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != HashSize {
		return res, errors.Wrapf(errors.ErrInvalidInput, "digest length %d, want %d", len(s), HashSize)
	}
	if _, err := hex.DecodeString(s); err != nil {
		return res, errors.Wrap(errors.ErrInvalidInput, "digest is not hex")
	}
	copy(res[:], s)
	return res, nil
}

// NewExecutionID returns a random execution id.
func NewExecutionID() string {
	id := strings.Replace(uuid.New().String(), "-", "", -1)
	return id[:ExecutionIDSize]
}

// Initialize returns an instruction that creates an escrow of amount
// lamports released for a preimage of hash, or tops up an existing one.
func Initialize(program, initializer zkescrow.Address, seed []byte, hash [HashSize]byte, amount uint64) (zkescrow.Instruction, error) {
	msg := InitializeMsg{Seed: seed, Hash: hash, Amount: amount}
	data, err := msg.Marshal()
	if err != nil {
		return zkescrow.Instruction{}, err
	}
	addr, _, err := EscrowAddress(program, seed)
	if err != nil {
		return zkescrow.Instruction{}, err
	}
	return zkescrow.Instruction{
		ProgramID: program,
		Accounts: []zkescrow.AccountMeta{
			zkescrow.Writable(initializer, true),
			zkescrow.Writable(addr, false),
			zkescrow.ReadOnly(zkescrow.SystemProgramID, false),
		},
		Data: data,
	}, nil
}

// ClaimParams are the arguments of a claim that are not derived.
type ClaimParams struct {
	Payer        zkescrow.Address
	Receiver     zkescrow.Address
	Seed         []byte
	ExecutionID  string
	Preimage     []byte
	Tip          uint64
	ExpiryOffset uint64
}

// Claim returns an instruction that requests the release of the escrow
// created with seed to the receiver. The payer funds the tracker, the
// execution account and the tip.
func Claim(program zkescrow.Address, conf Configuration, p ClaimParams) (zkescrow.Instruction, error) {
	escrowAddr, _, err := EscrowAddress(program, p.Seed)
	if err != nil {
		return zkescrow.Instruction{}, err
	}
	if p.Receiver.Equals(escrowAddr) {
		return zkescrow.Instruction{}, errors.Wrap(errors.ErrInvalidInput, "escrow cannot be its own receiver")
	}
	tracker, bump, err := TrackerAddress(program, p.ExecutionID)
	if err != nil {
		return zkescrow.Instruction{}, err
	}
	msg := ClaimMsg{
		ExecutionID:  p.ExecutionID,
		Bump:         bump,
		Tip:          p.Tip,
		ExpiryOffset: p.ExpiryOffset,
		Seed:         p.Seed,
		Preimage:     p.Preimage,
	}
	data, err := msg.Marshal()
	if err != nil {
		return zkescrow.Instruction{}, err
	}
	execution, _, err := oracle.ExecutionAddress(conf.OracleProgram, tracker, p.ExecutionID)
	if err != nil {
		return zkescrow.Instruction{}, err
	}
	deployment, _, err := oracle.DeploymentAddress(conf.OracleProgram, conf.ImageID)
	if err != nil {
		return zkescrow.Instruction{}, err
	}
	return zkescrow.Instruction{
		ProgramID: program,
		Accounts: []zkescrow.AccountMeta{
			zkescrow.Writable(p.Payer, true),
			zkescrow.Writable(p.Receiver, false),
			zkescrow.Writable(escrowAddr, false),
			zkescrow.Writable(tracker, false),
			zkescrow.Writable(execution, false),
			zkescrow.ReadOnly(zkescrow.SystemProgramID, false),
			zkescrow.ReadOnly(conf.OracleProgram, false),
			zkescrow.ReadOnly(deployment, false),
			zkescrow.ReadOnly(program, false),
		},
		Data: data,
	}, nil
}

// ClaimAccounts returns the tracker and oracle execution addresses used by a
// claim with given execution id.
func ClaimAccounts(program zkescrow.Address, conf Configuration, executionID string) (tracker, execution zkescrow.Address, err error) {
	tracker, _, err = TrackerAddress(program, executionID)
	if err != nil {
		return tracker, execution, err
	}
	execution, _, err = oracle.ExecutionAddress(conf.OracleProgram, tracker, executionID)
	return tracker, execution, err
}
