package zkescrow

import (
	"context"

	"github.com/tendermint/tendermint/libs/log"
)

var (
	// SystemProgramID is the address of the system program. Accounts that
	// hold no data are owned by it.
	SystemProgramID = Address{}

	// NativeLoaderID owns all executable program accounts.
	NativeLoaderID = MustParseAddress("NativeLoader1111111111111111111111111111111")
)

// Program is the entry point of on-ledger code. It receives the accounts
// listed by the instruction, in the same order, and the instruction data.
//
// Returning an error aborts the whole transaction and no state change is
// persisted.
type Program interface {
	Process(ctx context.Context, rt Runtime, accounts []*AccountInfo, data []byte) error
}

// ProgramFunc is an adapter to allow the use of ordinary functions as
// programs.
type ProgramFunc func(ctx context.Context, rt Runtime, accounts []*AccountInfo, data []byte) error

var _ Program = ProgramFunc(nil)

// Process calls f(ctx, rt, accounts, data).
func (f ProgramFunc) Process(ctx context.Context, rt Runtime, accounts []*AccountInfo, data []byte) error {
	return f(ctx, rt, accounts, data)
}

// Runtime is the view of the ledger exposed to an executing program.
type Runtime interface {
	// ProgramID returns the address of the executing program.
	ProgramID() Address
	// Slot returns the slot the transaction is executed in.
	Slot() uint64
	// Rent returns the rent parameters.
	Rent() Rent
	// Logger returns a logger scoped to the executing program.
	Logger() log.Logger
	// Invoke calls another program. Accounts must contain a handle for
	// every account listed by the instruction. No privilege beyond the
	// ones held by the caller can be granted.
	Invoke(ctx context.Context, ins Instruction, accounts []*AccountInfo) error
	// InvokeSigned works like Invoke, but additionally every address
	// derived from any of the signer seeds and the calling program id is
	// treated as a signer.
	InvokeSigned(ctx context.Context, ins Instruction, accounts []*AccountInfo, signerSeeds ...[][]byte) error
}

// AccountStorageOverhead is the number of bytes charged for every account on
// top of its data.
const AccountStorageOverhead = 128

// Rent defines the lamports an account must hold to be exempt from rent.
type Rent struct {
	LamportsPerByteYear uint64 `cbor:"1,keyasint" json:"lamports_per_byte_year"`
	ExemptionThreshold  uint64 `cbor:"2,keyasint" json:"exemption_threshold"`
}

// DefaultRent returns the rent parameters used if none are configured.
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: 3480,
		ExemptionThreshold:  2,
	}
}

// MinimumBalance returns the lamports required for an account with data of
// given size to be rent exempt.
func (r Rent) MinimumBalance(space uint64) uint64 {
	return (AccountStorageOverhead + space) * r.LamportsPerByteYear * r.ExemptionThreshold
}
