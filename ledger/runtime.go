package ledger

import (
	"bytes"
	"context"
	"math/bits"

	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// txContext holds the working set of a single transaction.
type txContext struct {
	ledger   *Ledger
	db       zkescrow.ReadOnlyKVStore
	logger   log.Logger
	accounts map[zkescrow.Address]*zkescrow.Account
	// loaded keeps the serialized state of every account as it was
	// loaded, to find out which accounts must be written.
	loaded map[zkescrow.Address][]byte
	order  []zkescrow.Address
}

func newTxContext(l *Ledger, db zkescrow.ReadOnlyKVStore, logger log.Logger) *txContext {
	return &txContext{
		ledger:   l,
		db:       db,
		logger:   logger,
		accounts: make(map[zkescrow.Address]*zkescrow.Account),
		loaded:   make(map[zkescrow.Address][]byte),
	}
}

// account returns the working copy of given address, loading it on first
// use.
func (t *txContext) account(a zkescrow.Address) (*zkescrow.Account, error) {
	if acct, ok := t.accounts[a]; ok {
		return acct, nil
	}
	acct, err := loadAccount(t.db, a)
	if err != nil {
		return nil, err
	}
	raw, err := acct.Marshal()
	if err != nil {
		return nil, err
	}
	t.accounts[a] = acct
	t.loaded[a] = raw
	t.order = append(t.order, a)
	return acct, nil
}

// infos returns a handle for every account meta. Handles of the same
// address share the working copy.
func (t *txContext) infos(metas []zkescrow.AccountMeta) ([]*zkescrow.AccountInfo, error) {
	res := make([]*zkescrow.AccountInfo, len(metas))
	for i, m := range metas {
		acct, err := t.account(m.Address)
		if err != nil {
			return nil, err
		}
		res[i] = &zkescrow.AccountInfo{
			Key:        m.Address,
			IsSigner:   m.IsSigner,
			IsWritable: m.IsWritable,
			Account:    acct,
		}
	}
	return res, nil
}

// persist writes all accounts that changed.
func (t *txContext) persist(db zkescrow.SetDeleter) error {
	for _, a := range t.order {
		acct := t.accounts[a]
		raw, err := acct.Marshal()
		if err != nil {
			return err
		}
		if bytes.Equal(raw, t.loaded[a]) {
			continue
		}
		if err := saveAccount(db, a, acct); err != nil {
			return errors.Wrapf(err, "save %s", a)
		}
	}
	return nil
}

// execute runs a program with given handles and verifies the result.
func (t *txContext) execute(ctx context.Context, programID zkescrow.Address, infos []*zkescrow.AccountInfo, data []byte, depth int) error {
	if depth > int(t.ledger.conf.MaxCallDepth) {
		return errors.Wrapf(errors.ErrCallDepth, "depth %d", depth)
	}
	p, ok := t.ledger.programs[programID]
	if !ok {
		return errors.Wrapf(errors.ErrUnknownProgram, "%s", programID)
	}

	f := &frame{
		tx:      t,
		program: programID,
		depth:   depth,
		privs:   make(map[zkescrow.Address]privilege),
		logger:  t.logger.With("program", p.name),
	}
	for _, info := range infos {
		prev, ok := f.privs[info.Key]
		if !ok {
			f.keys = append(f.keys, info.Key)
		}
		f.privs[info.Key] = privilege{
			signer:   prev.signer || info.IsSigner,
			writable: prev.writable || info.IsWritable,
		}
	}
	f.snapshot()

	err := process(zkescrow.WithLogger(ctx, f.logger), p.program, f, infos, data)
	if err == nil {
		err = f.verify()
	}
	t.ledger.metrics.recordInstruction(p.name, err)
	return err
}

func process(ctx context.Context, p zkescrow.Program, rt zkescrow.Runtime, infos []*zkescrow.AccountInfo, data []byte) (err error) {
	defer errors.Recover(&err)
	return p.Process(ctx, rt, infos, data)
}

type privilege struct {
	signer   bool
	writable bool
}

// frame is the execution of a single program. It implements the runtime
// interface passed to the program.
type frame struct {
	tx      *txContext
	program zkescrow.Address
	depth   int
	keys    []zkescrow.Address
	privs   map[zkescrow.Address]privilege
	pre     map[zkescrow.Address]*zkescrow.Account
	logger  log.Logger
}

var _ zkescrow.Runtime = (*frame)(nil)

func (f *frame) ProgramID() zkescrow.Address {
	return f.program
}

func (f *frame) Slot() uint64 {
	return f.tx.ledger.slot
}

func (f *frame) Rent() zkescrow.Rent {
	return f.tx.ledger.conf.Rent()
}

func (f *frame) Logger() log.Logger {
	return f.logger
}

func (f *frame) Invoke(ctx context.Context, ins zkescrow.Instruction, accounts []*zkescrow.AccountInfo) error {
	return f.InvokeSigned(ctx, ins, accounts)
}

func (f *frame) InvokeSigned(ctx context.Context, ins zkescrow.Instruction, accounts []*zkescrow.AccountInfo, signerSeeds ...[][]byte) error {
	derived := make(map[zkescrow.Address]bool, len(signerSeeds))
	for _, seeds := range signerSeeds {
		a, err := zkescrow.CreateProgramAddress(seeds, f.program)
		if err != nil {
			return errors.Wrap(err, "signer seeds")
		}
		derived[a] = true
	}

	handles := make(map[zkescrow.Address]bool, len(accounts))
	for _, a := range accounts {
		handles[a.Key] = true
	}
	for _, m := range ins.Accounts {
		if !handles[m.Address] {
			return errors.Wrapf(errors.ErrNotEnoughAccounts, "missing handle of %s", m.Address)
		}
		// Privileges are checked against what the runtime granted this
		// frame, never against the handles passed by the program.
		p, ok := f.privs[m.Address]
		if !ok {
			return errors.Wrapf(errors.ErrNotEnoughAccounts, "%s not available to the caller", m.Address)
		}
		if m.IsSigner && !p.signer && !derived[m.Address] {
			return errors.Wrapf(errors.ErrPrivilegeEscalation, "signer %s", m.Address)
		}
		if m.IsWritable && !p.writable {
			return errors.Wrapf(errors.ErrPrivilegeEscalation, "writable %s", m.Address)
		}
	}

	if err := f.verify(); err != nil {
		return err
	}
	infos, err := f.tx.infos(ins.Accounts)
	if err != nil {
		return err
	}
	err = f.tx.execute(ctx, ins.ProgramID, infos, ins.Data, f.depth+1)
	// Changes made by the callee were verified against its own rules.
	f.snapshot()
	return err
}

// snapshot records the current state of all accounts of this frame.
func (f *frame) snapshot() {
	f.pre = make(map[zkescrow.Address]*zkescrow.Account, len(f.keys))
	for _, k := range f.keys {
		f.pre[k] = f.tx.accounts[k].Clone()
	}
}

// verify checks the changes made since the last snapshot.
func (f *frame) verify() error {
	var preHi, preLo, postHi, postLo uint64
	for _, k := range f.keys {
		pre, post := f.pre[k], f.tx.accounts[k]
		if err := verifyAccount(f.program, f.privs[k].writable, pre, post); err != nil {
			return errors.Wrapf(err, "account %s", k)
		}
		preHi, preLo = add128(preHi, preLo, pre.Lamports)
		postHi, postLo = add128(postHi, postLo, post.Lamports)
	}
	if preHi != postHi || preLo != postLo {
		return errors.Wrapf(errors.ErrUnbalanced, "program %s", f.program)
	}
	return nil
}

func add128(hi, lo, v uint64) (uint64, uint64) {
	lo, carry := bits.Add64(lo, v, 0)
	return hi + carry, lo
}

func verifyAccount(program zkescrow.Address, writable bool, pre, post *zkescrow.Account) error {
	dataChanged := !bytes.Equal(pre.Data, post.Data)
	ownerChanged := !pre.Owner.Equals(post.Owner)
	if !dataChanged && !ownerChanged && pre.Lamports == post.Lamports && pre.Executable == post.Executable {
		return nil
	}
	if !writable {
		return errors.ErrReadonly
	}
	if pre.Executable || post.Executable {
		return errors.Wrap(errors.ErrExternalModification, "executable account")
	}
	owned := pre.Owner.Equals(program)
	if ownerChanged && (!owned || !isZeroed(post.Data)) {
		return errors.Wrap(errors.ErrExternalModification, "owner reassigned")
	}
	if post.Lamports < pre.Lamports && !owned {
		return errors.Wrap(errors.ErrExternalModification, "lamports debited")
	}
	if dataChanged && !owned {
		return errors.Wrap(errors.ErrExternalModification, "data modified")
	}
	return nil
}

func isZeroed(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
