package escrow_test

import (
	"context"
	"testing"

	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/crypto"
	"github.com/iov-one/zkescrow/errors"
	"github.com/iov-one/zkescrow/ledger"
	"github.com/iov-one/zkescrow/ledgertest"
	"github.com/iov-one/zkescrow/ledgertest/assert"
	"github.com/iov-one/zkescrow/x/escrow"
	"github.com/iov-one/zkescrow/x/oracle"
	"github.com/iov-one/zkescrow/x/system"
)

var (
	escrowID = escrow.DefaultProgramID
	oracleID = oracle.DefaultProgramID
)

type fixture struct {
	ledger      *ledger.Ledger
	conf        escrow.Configuration
	initializer *crypto.PrivateKey
	payer       *crypto.PrivateKey
	relay       *oracle.Relay
	prover      *crypto.PrivateKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ledger: ledgertest.NewLedger(t),
		conf:   escrow.DefaultConfiguration(),
		prover: ledgertest.NewKey(),
	}
	ledgertest.Register(t, f.ledger, "system", zkescrow.SystemProgramID, system.Program{})
	ledgertest.Register(t, f.ledger, "oracle", oracleID, oracle.Program{})
	ledgertest.Register(t, f.ledger, "escrow", escrowID, escrow.NewProcessor(f.conf))

	owner := ledgertest.FundedKey(t, f.ledger, 10000000)
	ins, err := oracle.Deploy(oracleID, owner.Address(), oracle.SHA256ImageID, "https://images.example/sha256", f.prover.Address())
	assert.Nil(t, err)
	assert.Nil(t, ledgertest.Submit(f.ledger, ledgertest.Signers(owner), ins))

	f.initializer = ledgertest.FundedKey(t, f.ledger, 10000000)
	f.payer = ledgertest.FundedKey(t, f.ledger, 100000000)

	f.relay = oracle.NewRelay(f.ledger, oracleID, f.prover, nil)
	f.relay.RegisterProver(oracle.SHA256ImageID, oracle.SHA256Prover{})
	return f
}

func (f *fixture) initialize(t *testing.T, seed, preimage string, amount uint64) error {
	t.Helper()
	ins, err := escrow.Initialize(escrowID, f.initializer.Address(), []byte(seed), escrow.Digest([]byte(preimage)), amount)
	assert.Nil(t, err)
	return ledgertest.Submit(f.ledger, ledgertest.Signers(f.initializer), ins)
}

func (f *fixture) claim(t *testing.T, seed, executionID, preimage string, receiver zkescrow.Address, expiryOffset uint64) error {
	t.Helper()
	ins, err := escrow.Claim(escrowID, f.conf, escrow.ClaimParams{
		Payer:        f.payer.Address(),
		Receiver:     receiver,
		Seed:         []byte(seed),
		ExecutionID:  executionID,
		Preimage:     []byte(preimage),
		Tip:          10,
		ExpiryOffset: expiryOffset,
	})
	assert.Nil(t, err)
	return ledgertest.Submit(f.ledger, ledgertest.Signers(f.payer), ins)
}

func (f *fixture) escrow(t *testing.T, seed string) (*escrow.Escrow, zkescrow.Address) {
	t.Helper()
	addr, _, err := escrow.EscrowAddress(escrowID, []byte(seed))
	assert.Nil(t, err)
	acct, err := f.ledger.Account(addr)
	assert.Nil(t, err)
	assert.Equal(t, escrowID, acct.Owner)
	assert.Equal(t, escrow.EscrowSpace, len(acct.Data))
	var e escrow.Escrow
	assert.Nil(t, e.Unmarshal(acct.Data))
	return &e, addr
}

func (f *fixture) execution(t *testing.T, executionID string) (*oracle.Execution, zkescrow.Address) {
	t.Helper()
	_, addr, err := escrow.ClaimAccounts(escrowID, f.conf, executionID)
	assert.Nil(t, err)
	acct, err := f.ledger.Account(addr)
	assert.Nil(t, err)
	e, err := oracle.LoadExecution(acct.Data)
	assert.Nil(t, err)
	return e, addr
}

func TestInitialize(t *testing.T) {
	f := newFixture(t)
	before := ledgertest.Balance(t, f.ledger, f.initializer.Address())

	assert.Nil(t, f.initialize(t, "s1", "abc", 1000))

	e, addr := f.escrow(t, "s1")
	var seed [escrow.SeedSize]byte
	copy(seed[:], "s1")
	assert.Equal(t, seed, e.Seed)
	assert.Equal(t, uint64(1000), e.Amount)
	assert.Equal(t, escrow.Digest([]byte("abc")), e.Hash)
	assert.Equal(t, false, e.IsClaimed)
	assert.Nil(t, e.Receiver)
	assert.Equal(t, f.initializer.Address(), e.Initializer)

	reserve := f.ledger.Rent().MinimumBalance(escrow.EscrowSpace)
	assert.Equal(t, reserve+1000, ledgertest.Balance(t, f.ledger, addr))
	assert.Equal(t, before-reserve-1000, ledgertest.Balance(t, f.ledger, f.initializer.Address()))
}

func TestInitializeWithoutFunds(t *testing.T) {
	f := newFixture(t)
	receiver := ledgertest.RandomAddr(t)
	assert.Nil(t, f.initialize(t, "s1", "abc", 0))

	e, addr := f.escrow(t, "s1")
	assert.Equal(t, uint64(0), e.Amount)
	reserve := f.ledger.Rent().MinimumBalance(escrow.EscrowSpace)
	assert.Equal(t, reserve, ledgertest.Balance(t, f.ledger, addr))

	// Funds added later are released.
	assert.Nil(t, f.initialize(t, "s1", "abc", 300))
	assert.Nil(t, f.claim(t, "s1", "exec-1", "abc", receiver, 100))
	n, err := f.relay.RunOnce(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, uint64(300), ledgertest.Balance(t, f.ledger, receiver))
	assert.Equal(t, reserve, ledgertest.Balance(t, f.ledger, addr))
}

func TestInitializeTopUp(t *testing.T) {
	f := newFixture(t)
	assert.Nil(t, f.initialize(t, "s1", "abc", 1000))
	assert.Nil(t, f.initialize(t, "s1", "abc", 500))

	e, addr := f.escrow(t, "s1")
	assert.Equal(t, uint64(1500), e.Amount)
	assert.Equal(t, escrow.Digest([]byte("abc")), e.Hash)
	assert.Equal(t, false, e.IsClaimed)
	reserve := f.ledger.Rent().MinimumBalance(escrow.EscrowSpace)
	assert.Equal(t, reserve+1500, ledgertest.Balance(t, f.ledger, addr))

	// The digest of an escrow cannot be replaced.
	err := f.initialize(t, "s1", "xyz", 1)
	assert.IsErr(t, errors.ErrInvalidInput, err)
	e, _ = f.escrow(t, "s1")
	assert.Equal(t, uint64(1500), e.Amount)
}

func TestInitializeErrors(t *testing.T) {
	hash := escrow.Digest([]byte("abc"))

	cases := map[string]struct {
		build   func(t *testing.T, f *fixture) zkescrow.Instruction
		wantErr *errors.Error
	}{
		"initializer did not sign": {
			build: func(t *testing.T, f *fixture) zkescrow.Instruction {
				ins, err := escrow.Initialize(escrowID, f.initializer.Address(), []byte("s1"), hash, 1)
				assert.Nil(t, err)
				ins.Accounts[0].IsSigner = false
				return ins
			},
			wantErr: errors.ErrMissingSignature,
		},
		"escrow of another seed": {
			build: func(t *testing.T, f *fixture) zkescrow.Instruction {
				ins, err := escrow.Initialize(escrowID, f.initializer.Address(), []byte("s1"), hash, 1)
				assert.Nil(t, err)
				other, _, err := escrow.EscrowAddress(escrowID, []byte("s2"))
				assert.Nil(t, err)
				ins.Accounts[1].Address = other
				return ins
			},
			wantErr: escrow.ErrSeedMismatch,
		},
		"digest of wrong length": {
			build: func(t *testing.T, f *fixture) zkescrow.Instruction {
				ins, err := escrow.Initialize(escrowID, f.initializer.Address(), []byte("s1"), hash, 1)
				assert.Nil(t, err)
				// opcode, seed length, seed, digest length
				ins.Data[1+1+2] = 63
				return ins
			},
			wantErr: errors.ErrInvalidInput,
		},
		"not the system program": {
			build: func(t *testing.T, f *fixture) zkescrow.Instruction {
				ins, err := escrow.Initialize(escrowID, f.initializer.Address(), []byte("s1"), hash, 1)
				assert.Nil(t, err)
				ins.Accounts[2].Address = oracleID
				return ins
			},
			wantErr: escrow.ErrAddressMismatch,
		},
		"not enough funds": {
			build: func(t *testing.T, f *fixture) zkescrow.Instruction {
				ins, err := escrow.Initialize(escrowID, f.initializer.Address(), []byte("s1"), hash, 100000000)
				assert.Nil(t, err)
				return ins
			},
			wantErr: errors.ErrInsufficientAmount,
		},
		"escrow address holds funds of another owner": {
			build: func(t *testing.T, f *fixture) zkescrow.Instruction {
				addr, _, err := escrow.EscrowAddress(escrowID, []byte("s1"))
				assert.Nil(t, err)
				assert.Nil(t, f.ledger.Airdrop(addr, 5))
				ins, err := escrow.Initialize(escrowID, f.initializer.Address(), []byte("s1"), hash, 1)
				assert.Nil(t, err)
				return ins
			},
			wantErr: errors.ErrAccountInUse,
		},
		"unknown opcode": {
			build: func(t *testing.T, f *fixture) zkescrow.Instruction {
				ins, err := escrow.Initialize(escrowID, f.initializer.Address(), []byte("s1"), hash, 1)
				assert.Nil(t, err)
				ins.Data[0] = 9
				return ins
			},
			wantErr: errors.ErrInvalidInstructionData,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			before := ledgertest.Balance(t, f.ledger, f.initializer.Address())
			ins := tc.build(t, f)
			err := ledgertest.Submit(f.ledger, ledgertest.Signers(f.initializer), ins)
			assert.IsErr(t, tc.wantErr, err)
			assert.Equal(t, before, ledgertest.Balance(t, f.ledger, f.initializer.Address()))
		})
	}
}

func TestClaimAndRelease(t *testing.T) {
	f := newFixture(t)
	receiver := ledgertest.RandomAddr(t)
	assert.Nil(t, f.initialize(t, "s1", "abc", 1000))
	_, escrowAddr := f.escrow(t, "s1")
	escrowBalance := ledgertest.Balance(t, f.ledger, escrowAddr)

	const executionID = "ex1234567890ab"
	assert.Nil(t, f.claim(t, "s1", executionID, "abc", receiver, 100))

	// Claim only requests the verification.
	e, _ := f.escrow(t, "s1")
	assert.Equal(t, false, e.IsClaimed)
	assert.Equal(t, escrowBalance, ledgertest.Balance(t, f.ledger, escrowAddr))
	assert.Equal(t, uint64(0), ledgertest.Balance(t, f.ledger, receiver))

	tracker, executionAddr, err := escrow.ClaimAccounts(escrowID, f.conf, executionID)
	assert.Nil(t, err)
	acct, err := f.ledger.Account(tracker)
	assert.Nil(t, err)
	assert.Equal(t, escrowID, acct.Owner)
	var tr escrow.ExecutionTracker
	assert.Nil(t, tr.Unmarshal(acct.Data))
	assert.Equal(t, executionAddr, tr.ExecutionAccount)

	exec, _ := f.execution(t, executionID)
	assert.Equal(t, oracle.StatusPending, exec.Status)
	assert.Equal(t, tracker, exec.Requester)
	assert.Equal(t, f.payer.Address(), exec.Payer)
	assert.Equal(t, f.conf.ImageID, exec.ImageID)
	assert.Equal(t, []oracle.InputRef{
		oracle.URLInput([]byte("abc")),
		oracle.PrivateInput([]byte(f.conf.PrivateInputURL)),
	}, exec.Inputs)
	assert.Equal(t, f.ledger.Slot()+100, exec.Expiry)
	assert.Equal(t, escrowID, exec.Callback.ProgramID)
	assert.Equal(t, []byte{escrow.OpVerifyAndRelease}, exec.Callback.InstructionPrefix)
	assert.Equal(t, []zkescrow.AccountMeta{
		zkescrow.Writable(tracker, false),
		zkescrow.Writable(escrowAddr, false),
		zkescrow.Writable(receiver, false),
	}, exec.Callback.ExtraAccounts)

	n, err := f.relay.RunOnce(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, 1, n)

	e, _ = f.escrow(t, "s1")
	assert.Equal(t, true, e.IsClaimed)
	assert.Equal(t, receiver, *e.Receiver)
	assert.Equal(t, uint64(0), e.Amount)
	assert.Equal(t, uint64(1000), ledgertest.Balance(t, f.ledger, receiver))
	assert.Equal(t, escrowBalance-1000, ledgertest.Balance(t, f.ledger, escrowAddr))
	assert.Equal(t, uint64(10), ledgertest.Balance(t, f.ledger, f.prover.Address()))

	exec, _ = f.execution(t, executionID)
	assert.Equal(t, oracle.StatusCompleted, exec.Status)

	// A claimed escrow cannot be claimed again.
	err = f.claim(t, "s1", "second-claim", "abc", receiver, 100)
	assert.IsErr(t, escrow.ErrAlreadyClaimed, err)

	// Nor topped up.
	err = f.initialize(t, "s1", "abc", 1)
	assert.IsErr(t, escrow.ErrAlreadyClaimed, err)

	assert.Equal(t, uint64(1000), ledgertest.Balance(t, f.ledger, receiver))
	assert.Equal(t, escrowBalance-1000, ledgertest.Balance(t, f.ledger, escrowAddr))
}

func TestConcurrentClaims(t *testing.T) {
	f := newFixture(t)
	first, second := ledgertest.RandomAddr(t), ledgertest.RandomAddr(t)
	assert.Nil(t, f.initialize(t, "s1", "abc", 1000))

	assert.Nil(t, f.claim(t, "s1", "claim-1", "abc", first, 100))
	assert.Nil(t, f.claim(t, "s1", "claim-2", "abc", second, 100))

	n, err := f.relay.RunOnce(context.Background())
	assert.Equal(t, 1, n)
	assert.IsErr(t, escrow.ErrAlreadyClaimed, err)

	// Exactly one of the receivers is paid, exactly once.
	paid := ledgertest.Balance(t, f.ledger, first) + ledgertest.Balance(t, f.ledger, second)
	assert.Equal(t, uint64(1000), paid)

	e, _ := f.escrow(t, "s1")
	assert.Equal(t, true, e.IsClaimed)

	_, exec1 := f.execution(t, "claim-1")
	_, exec2 := f.execution(t, "claim-2")
	failed := f.relay.Failed(exec1)
	if failed == nil {
		failed = f.relay.Failed(exec2)
	}
	assert.IsErr(t, escrow.ErrAlreadyClaimed, failed)
}

func TestHashMismatch(t *testing.T) {
	f := newFixture(t)
	receiver := ledgertest.RandomAddr(t)
	assert.Nil(t, f.initialize(t, "s1", "abc", 1000))
	_, escrowAddr := f.escrow(t, "s1")
	escrowBalance := ledgertest.Balance(t, f.ledger, escrowAddr)

	assert.Nil(t, f.claim(t, "s1", "wrong", "abd", receiver, 100))

	n, err := f.relay.RunOnce(context.Background())
	assert.Equal(t, 0, n)
	assert.IsErr(t, escrow.ErrHashMismatch, err)

	_, exec := f.execution(t, "wrong")
	assert.IsErr(t, escrow.ErrHashMismatch, f.relay.Failed(exec))

	e, _ := f.escrow(t, "s1")
	assert.Equal(t, false, e.IsClaimed)
	assert.Equal(t, uint64(1000), e.Amount)
	assert.Equal(t, escrowBalance, ledgertest.Balance(t, f.ledger, escrowAddr))
	assert.Equal(t, uint64(0), ledgertest.Balance(t, f.ledger, receiver))

	// The escrow can still be claimed with the right preimage.
	assert.Nil(t, f.claim(t, "s1", "right", "abc", receiver, 100))
	n, err = f.relay.RunOnce(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, uint64(1000), ledgertest.Balance(t, f.ledger, receiver))
}

func TestFulfillByUnknownProver(t *testing.T) {
	f := newFixture(t)
	thief := ledgertest.FundedKey(t, f.ledger, 1000)
	assert.Nil(t, f.initialize(t, "s1", "abc", 1000))
	stored, escrowAddr := f.escrow(t, "s1")
	escrowBalance := ledgertest.Balance(t, f.ledger, escrowAddr)

	// The committed digest is public. A claimant that does not know the
	// preimage asserts it with a key of its own.
	assert.Nil(t, f.claim(t, "s1", "no-preimage", "not-the-preimage", thief.Address(), 100))
	exec, execAddr := f.execution(t, "no-preimage")
	ins, err := oracle.Fulfill(oracleID, thief.Address(), execAddr, exec, stored.Hash[:])
	assert.Nil(t, err)
	err = ledgertest.Submit(f.ledger, ledgertest.Signers(thief), ins)
	assert.IsErr(t, errors.ErrUnauthorized, err)

	e, _ := f.escrow(t, "s1")
	assert.Equal(t, false, e.IsClaimed)
	assert.Equal(t, escrowBalance, ledgertest.Balance(t, f.ledger, escrowAddr))
	assert.Equal(t, uint64(1000), ledgertest.Balance(t, f.ledger, thief.Address()))
	exec, _ = f.execution(t, "no-preimage")
	assert.Equal(t, oracle.StatusPending, exec.Status)

	// The deployed prover proves the wrong preimage.
	n, err := f.relay.RunOnce(context.Background())
	assert.Equal(t, 0, n)
	assert.IsErr(t, escrow.ErrHashMismatch, err)
	assert.Equal(t, uint64(1000), ledgertest.Balance(t, f.ledger, thief.Address()))
}

func TestExpiredClaim(t *testing.T) {
	f := newFixture(t)
	receiver := ledgertest.RandomAddr(t)
	assert.Nil(t, f.initialize(t, "s1", "abc", 1000))
	assert.Nil(t, f.claim(t, "s1", "late", "abc", receiver, 0))

	_, err := f.ledger.AdvanceSlot(1)
	assert.Nil(t, err)

	n, err := f.relay.RunOnce(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, 1, n)

	exec, _ := f.execution(t, "late")
	assert.Equal(t, oracle.StatusExpired, exec.Status)
	e, _ := f.escrow(t, "s1")
	assert.Equal(t, false, e.IsClaimed)
	assert.Equal(t, uint64(0), ledgertest.Balance(t, f.ledger, receiver))
}

func TestClaimErrors(t *testing.T) {
	cases := map[string]struct {
		build   func(t *testing.T, f *fixture) zkescrow.Instruction
		wantErr *errors.Error
	}{
		"escrow not initialized": {
			build: func(t *testing.T, f *fixture) zkescrow.Instruction {
				return f.claimIns(t, "nope", "exec-1")
			},
			wantErr: errors.ErrInvalidInput,
		},
		"escrow of another seed": {
			build: func(t *testing.T, f *fixture) zkescrow.Instruction {
				ins := f.claimIns(t, "s1", "exec-1")
				other, _, err := escrow.EscrowAddress(escrowID, []byte("s2"))
				assert.Nil(t, err)
				ins.Accounts[2].Address = other
				return ins
			},
			wantErr: escrow.ErrAddressMismatch,
		},
		"tracker of another execution": {
			build: func(t *testing.T, f *fixture) zkescrow.Instruction {
				ins := f.claimIns(t, "s1", "exec-1")
				other, _, err := escrow.TrackerAddress(escrowID, "exec-2")
				assert.Nil(t, err)
				ins.Accounts[3].Address = other
				return ins
			},
			wantErr: escrow.ErrAddressMismatch,
		},
		"not the canonical bump": {
			build: func(t *testing.T, f *fixture) zkescrow.Instruction {
				ins := f.claimIns(t, "s1", "exec-1")
				// opcode, execution id
				ins.Data[1+escrow.ExecutionIDSize]--
				return ins
			},
			wantErr: escrow.ErrAddressMismatch,
		},
		"execution of another requester": {
			build: func(t *testing.T, f *fixture) zkescrow.Instruction {
				ins := f.claimIns(t, "s1", "exec-1")
				other, _, err := oracle.ExecutionAddress(oracleID, f.payer.Address(), "exec-1")
				assert.Nil(t, err)
				ins.Accounts[4].Address = other
				return ins
			},
			wantErr: escrow.ErrAddressMismatch,
		},
		"not the oracle program": {
			build: func(t *testing.T, f *fixture) zkescrow.Instruction {
				ins := f.claimIns(t, "s1", "exec-1")
				ins.Accounts[6].Address = zkescrow.SystemProgramID
				return ins
			},
			wantErr: escrow.ErrAddressMismatch,
		},
		"not the image deployment": {
			build: func(t *testing.T, f *fixture) zkescrow.Instruction {
				ins := f.claimIns(t, "s1", "exec-1")
				ins.Accounts[7].Address = ledgertest.RandomAddr(t)
				return ins
			},
			wantErr: escrow.ErrAddressMismatch,
		},
		"receiver not writable": {
			build: func(t *testing.T, f *fixture) zkescrow.Instruction {
				ins := f.claimIns(t, "s1", "exec-1")
				ins.Accounts[1].IsWritable = false
				return ins
			},
			wantErr: errors.ErrInvalidInput,
		},
		"payer did not sign": {
			build: func(t *testing.T, f *fixture) zkescrow.Instruction {
				ins := f.claimIns(t, "s1", "exec-1")
				ins.Accounts[0].IsSigner = false
				return ins
			},
			wantErr: errors.ErrMissingSignature,
		},
		"not enough accounts": {
			build: func(t *testing.T, f *fixture) zkescrow.Instruction {
				ins := f.claimIns(t, "s1", "exec-1")
				ins.Accounts = ins.Accounts[:8]
				return ins
			},
			wantErr: errors.ErrNotEnoughAccounts,
		},
		"escrow is the receiver": {
			build: func(t *testing.T, f *fixture) zkescrow.Instruction {
				ins := f.claimIns(t, "s1", "exec-1")
				_, escrowAddr := f.escrow(t, "s1")
				ins.Accounts[1].Address = escrowAddr
				return ins
			},
			wantErr: errors.ErrInvalidInput,
		},
		"execution id already used": {
			build: func(t *testing.T, f *fixture) zkescrow.Instruction {
				assert.Nil(t, f.claim(t, "s1", "exec-1", "abc", ledgertest.RandomAddr(t), 100))
				return f.claimIns(t, "s1", "exec-1")
			},
			wantErr: escrow.ErrOracleRequestRejected,
		},
		"image not deployed": {
			build: func(t *testing.T, f *fixture) zkescrow.Instruction {
				conf := f.conf
				conf.ImageID = "not-deployed"
				ins, err := escrow.Claim(escrowID, conf, escrow.ClaimParams{
					Payer:       f.payer.Address(),
					Receiver:    ledgertest.RandomAddr(t),
					Seed:        []byte("s1"),
					ExecutionID: "exec-1",
					Preimage:    []byte("abc"),
				})
				assert.Nil(t, err)
				return ins
			},
			// The deployment account is checked against the configured image.
			wantErr: escrow.ErrAddressMismatch,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			assert.Nil(t, f.initialize(t, "s1", "abc", 1000))
			ins := tc.build(t, f)
			before := ledgertest.Balance(t, f.ledger, f.payer.Address())
			err := ledgertest.Submit(f.ledger, ledgertest.Signers(f.payer), ins)
			assert.IsErr(t, tc.wantErr, err)
			assert.Equal(t, before, ledgertest.Balance(t, f.ledger, f.payer.Address()))
		})
	}
}

func (f *fixture) claimIns(t *testing.T, seed, executionID string) zkescrow.Instruction {
	t.Helper()
	ins, err := escrow.Claim(escrowID, f.conf, escrow.ClaimParams{
		Payer:        f.payer.Address(),
		Receiver:     ledgertest.RandomAddr(t),
		Seed:         []byte(seed),
		ExecutionID:  executionID,
		Preimage:     []byte("abc"),
		Tip:          10,
		ExpiryOffset: 100,
	})
	assert.Nil(t, err)
	return ins
}

func TestClaimToEscrowIsNotBuilt(t *testing.T) {
	escrowAddr, _, err := escrow.EscrowAddress(escrowID, []byte("s1"))
	assert.Nil(t, err)
	_, err = escrow.Claim(escrowID, escrow.DefaultConfiguration(), escrow.ClaimParams{
		Payer:       zkescrow.Address{0: 1},
		Receiver:    escrowAddr,
		Seed:        []byte("s1"),
		ExecutionID: "exec-1",
		Preimage:    []byte("abc"),
	})
	assert.IsErr(t, errors.ErrInvalidInput, err)
}
