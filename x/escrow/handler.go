package escrow

import (
	"bytes"
	"context"
	"strings"
	"unicode/utf8"

	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/errors"
	"github.com/iov-one/zkescrow/x/oracle"
	"github.com/iov-one/zkescrow/x/system"
)

// DefaultProgramID is the address the escrow program is registered at
// unless configured otherwise.
var DefaultProgramID = zkescrow.MustParseAddress("72bGikYM7J314fvAfBDvMGdqaewHaq7LpbJMNF5rJDb8")

// Processor is the escrow program.
type Processor struct {
	conf Configuration
}

var _ zkescrow.Program = (*Processor)(nil)

// NewProcessor returns the escrow program that requests verifications with
// given configuration.
func NewProcessor(conf Configuration) *Processor {
	return &Processor{conf: conf}
}

// Process implements zkescrow.Program.
func (p *Processor) Process(ctx context.Context, rt zkescrow.Runtime, accounts []*zkescrow.AccountInfo, data []byte) error {
	if len(data) == 0 {
		return errors.Wrap(errors.ErrInvalidInstructionData, "missing opcode")
	}
	op, body := data[0], data[1:]
	switch op {
	case OpInitialize:
		msg, err := parseInitialize(body)
		if err != nil {
			return err
		}
		return p.initialize(ctx, rt, accounts, msg)
	case OpClaim:
		msg, err := parseClaim(body)
		if err != nil {
			return err
		}
		return p.claim(ctx, rt, accounts, msg)
	case OpVerifyAndRelease:
		return p.verifyAndRelease(rt, accounts, body)
	default:
		return errors.Wrapf(errors.ErrInvalidInstructionData, "unknown opcode %d", op)
	}
}

// initialize creates an escrow or tops up an existing one.
//
// Accounts: initializer (signer, writable), escrow (writable), system program.
func (p *Processor) initialize(ctx context.Context, rt zkescrow.Runtime, accounts []*zkescrow.AccountInfo, msg *InitializeMsg) error {
	if len(accounts) < 3 {
		return errors.ErrNotEnoughAccounts
	}
	initializer, escrowAcct, sys := accounts[0], accounts[1], accounts[2]
	if err := initializer.RequireSigner(); err != nil {
		return err
	}
	if err := requireWritable(initializer, escrowAcct); err != nil {
		return err
	}
	if err := requireKey(sys, zkescrow.SystemProgramID, "system program"); err != nil {
		return err
	}
	program := rt.ProgramID()
	addr, bump, err := EscrowAddress(program, msg.Seed)
	if err != nil {
		return err
	}
	if !escrowAcct.Key.Equals(addr) {
		return errors.Wrapf(ErrSeedMismatch, "escrow %s, want %s", escrowAcct.Key, addr)
	}

	logger := rt.Logger().With("escrow", addr.String())

	if escrowAcct.Lamports == 0 {
		reserve := rt.Rent().MinimumBalance(EscrowSpace)
		if reserve+msg.Amount < reserve {
			return errors.Wrap(errors.ErrOverflow, "amount")
		}
		ins := system.CreateAccount(initializer.Key, addr, reserve+msg.Amount, EscrowSpace, program)
		if err := rt.InvokeSigned(ctx, ins, accounts, [][]byte{msg.Seed, {bump}}); err != nil {
			return errors.Wrap(err, "create escrow account")
		}
		e := Escrow{
			Amount:      msg.Amount,
			Hash:        msg.Hash,
			Initializer: initializer.Key,
		}
		copy(e.Seed[:], msg.Seed)
		if err := e.MarshalTo(escrowAcct.Data); err != nil {
			return err
		}
		logger.Info("escrow created", "initializer", initializer.Key.String(), "amount", msg.Amount)
		return nil
	}

	if !escrowAcct.IsOwnedBy(program) {
		return errors.Wrapf(errors.ErrAccountInUse, "%s is owned by %s", addr, escrowAcct.Owner)
	}
	e, err := loadEscrow(escrowAcct, program)
	if err != nil {
		return err
	}
	if e.IsClaimed {
		return errors.Wrapf(ErrAlreadyClaimed, "escrow %s", addr)
	}
	if !bytes.Equal(e.Hash[:], msg.Hash[:]) {
		return errors.Field("Hash", errors.ErrInvalidInput, "escrow %s commits to another digest", addr)
	}
	if e.Amount+msg.Amount < e.Amount {
		return errors.Wrap(errors.ErrOverflow, "amount")
	}
	ins := system.Transfer(initializer.Key, addr, msg.Amount)
	if err := rt.Invoke(ctx, ins, accounts); err != nil {
		return errors.Wrap(err, "top up")
	}
	e.Amount += msg.Amount
	if err := e.MarshalTo(escrowAcct.Data); err != nil {
		return err
	}
	logger.Info("escrow topped up", "amount", msg.Amount, "total", e.Amount)
	return nil
}

// claim requests the verification of a preimage from the oracle. Funds are
// released by the oracle callback.
//
// Accounts: payer (signer, writable), receiver (writable), escrow
// (writable), tracker (writable), execution (writable), system program,
// oracle program, image deployment, escrow program.
func (p *Processor) claim(ctx context.Context, rt zkescrow.Runtime, accounts []*zkescrow.AccountInfo, msg *ClaimMsg) error {
	if len(accounts) < 9 {
		return errors.ErrNotEnoughAccounts
	}
	payer, receiver, escrowAcct, tracker, execution := accounts[0], accounts[1], accounts[2], accounts[3], accounts[4]
	if err := payer.RequireSigner(); err != nil {
		return err
	}
	if err := requireWritable(payer, receiver, escrowAcct, tracker, execution); err != nil {
		return err
	}

	program := rt.ProgramID()
	deployment, _, err := oracle.DeploymentAddress(p.conf.OracleProgram, p.conf.ImageID)
	if err != nil {
		return err
	}
	if err := requireKey(accounts[5], zkescrow.SystemProgramID, "system program"); err != nil {
		return err
	}
	if err := requireKey(accounts[6], p.conf.OracleProgram, "oracle program"); err != nil {
		return err
	}
	if err := requireKey(accounts[7], deployment, "image deployment"); err != nil {
		return err
	}
	if err := requireKey(accounts[8], program, "escrow program"); err != nil {
		return err
	}

	addr, _, err := EscrowAddress(program, msg.Seed)
	if err != nil {
		return err
	}
	if err := requireKey(escrowAcct, addr, "escrow"); err != nil {
		return err
	}
	if receiver.Key.Equals(addr) {
		return errors.Wrap(errors.ErrInvalidInput, "escrow cannot be its own receiver")
	}
	if !escrowAcct.IsOwnedBy(program) {
		return errors.Wrapf(errors.ErrInvalidInput, "escrow %s is not initialized", addr)
	}
	e, err := loadEscrow(escrowAcct, program)
	if err != nil {
		return err
	}
	if e.IsClaimed {
		return errors.Wrapf(ErrAlreadyClaimed, "escrow %s", addr)
	}

	trackerAddr, bump, err := TrackerAddress(program, msg.ExecutionID)
	if err != nil {
		return err
	}
	if err := requireKey(tracker, trackerAddr, "tracker"); err != nil {
		return err
	}
	if msg.Bump != bump {
		return errors.Wrapf(ErrAddressMismatch, "tracker bump %d, want %d", msg.Bump, bump)
	}
	executionAddr, _, err := oracle.ExecutionAddress(p.conf.OracleProgram, trackerAddr, msg.ExecutionID)
	if err != nil {
		return err
	}
	if err := requireKey(execution, executionAddr, "execution"); err != nil {
		return err
	}

	trackerSeeds := [][]byte{[]byte(msg.ExecutionID), {bump}}
	if tracker.Lamports == 0 {
		ins := system.CreateAccount(payer.Key, trackerAddr, rt.Rent().MinimumBalance(TrackerSpace), TrackerSpace, program)
		if err := rt.InvokeSigned(ctx, ins, accounts, trackerSeeds); err != nil {
			return errors.Wrap(err, "create tracker account")
		}
	} else if !isRecord(tracker, program, TrackerSpace) {
		return errors.Wrapf(ErrAddressMismatch, "%s is not a tracker", trackerAddr)
	}

	expiry := saturatingAdd(rt.Slot(), msg.ExpiryOffset)
	req, err := oracle.ExecuteV1(
		p.conf.OracleProgram,
		trackerAddr,
		payer.Key,
		p.conf.ImageID,
		msg.ExecutionID,
		[]oracle.InputRef{
			oracle.URLInput(msg.Preimage),
			oracle.PrivateInput([]byte(p.conf.PrivateInputURL)),
		},
		msg.Tip,
		expiry,
		oracle.ExecutionConfig{ForwardOutput: true},
		&oracle.CallbackConfig{
			ProgramID:         program,
			InstructionPrefix: []byte{OpVerifyAndRelease},
			ExtraAccounts: []zkescrow.AccountMeta{
				zkescrow.Writable(trackerAddr, false),
				zkescrow.Writable(addr, false),
				zkescrow.Writable(receiver.Key, false),
			},
		},
	)
	if err != nil {
		return errors.Wrap(ErrOracleRequestRejected, err.Error())
	}
	if err := rt.InvokeSigned(ctx, req, accounts, trackerSeeds); err != nil {
		return errors.Wrap(ErrOracleRequestRejected, err.Error())
	}

	t := ExecutionTracker{ExecutionAccount: executionAddr}
	if err := t.MarshalTo(tracker.Data); err != nil {
		return err
	}
	rt.Logger().Info("claim requested",
		"escrow", addr.String(),
		"receiver", receiver.Key.String(),
		"execution", executionAddr.String(),
		"execution_id", msg.ExecutionID,
		"expiry", expiry)
	return nil
}

// verifyAndRelease is the oracle callback. It releases the escrowed amount
// to the receiver if the proven digest matches the committed one.
//
// Accounts: execution (signer), tracker, escrow (writable), receiver
// (writable).
func (p *Processor) verifyAndRelease(rt zkescrow.Runtime, accounts []*zkescrow.AccountInfo, payload []byte) error {
	if len(accounts) < 4 {
		return errors.ErrNotEnoughAccounts
	}
	execution, tracker, escrowAcct, receiver := accounts[0], accounts[1], accounts[2], accounts[3]
	if err := requireWritable(escrowAcct, receiver); err != nil {
		return err
	}
	if receiver.Key.Equals(escrowAcct.Key) {
		return errors.Wrap(errors.ErrInvalidInput, "escrow cannot receive its own funds")
	}
	program := rt.ProgramID()
	t, err := loadTracker(tracker, program)
	if err != nil {
		return err
	}
	e, err := loadEscrow(escrowAcct, program)
	if err != nil {
		return err
	}

	cb, err := oracle.HandleCallback(p.conf.ImageID, t.ExecutionAccount, accounts, payload)
	if err != nil {
		return errors.Wrap(ErrMalformedCallback, err.Error())
	}
	if e.IsClaimed {
		return errors.Wrapf(ErrAlreadyClaimed, "escrow %s", escrowAcct.Key)
	}
	if len(cb.CommittedOutputs) == 0 || !utf8.Valid(cb.CommittedOutputs) {
		return errors.Wrap(ErrMalformedCallback, "committed output is not a digest")
	}
	if !utf8.Valid(e.Hash[:]) {
		return errors.Wrap(errors.ErrInvalidState, "stored digest is not text")
	}
	asserted := strings.TrimSpace(string(cb.CommittedOutputs))
	stored := strings.TrimSpace(string(e.Hash[:]))
	if asserted != stored {
		return errors.Wrapf(ErrHashMismatch, "escrow %s", escrowAcct.Key)
	}

	if escrowAcct.Lamports < e.Amount {
		return errors.Wrapf(errors.ErrInvalidState, "escrow holds %d, amount is %d", escrowAcct.Lamports, e.Amount)
	}
	if receiver.Lamports+e.Amount < receiver.Lamports {
		return errors.Wrap(errors.ErrOverflow, "receiver balance")
	}
	amount := e.Amount
	escrowAcct.Lamports -= amount
	receiver.Lamports += amount

	to := receiver.Key
	e.Amount = 0
	e.IsClaimed = true
	e.Receiver = &to
	if err := e.MarshalTo(escrowAcct.Data); err != nil {
		return err
	}
	rt.Logger().Info("escrow released",
		"escrow", escrowAcct.Key.String(),
		"receiver", to.String(),
		"amount", amount,
		"execution", execution.Key.String(),
		"execution_id", cb.ExecutionID)
	return nil
}
