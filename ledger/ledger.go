package ledger

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"sync"

	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/errors"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	accountPrefix = []byte("acct:")
	txPrefix      = []byte("tx:")
	slotKey       = []byte("_ledger:slot")
)

func accountKey(a zkescrow.Address) []byte {
	return append(append([]byte{}, accountPrefix...), a[:]...)
}

// Committer is implemented by stores that can persist the working state.
type Committer interface {
	Commit() (zkescrow.CommitID, error)
}

type registeredProgram struct {
	name    string
	program zkescrow.Program
}

// Ledger executes transactions against the state held in a store.
type Ledger struct {
	mu       sync.Mutex
	db       zkescrow.CacheableKVStore
	programs map[zkescrow.Address]registeredProgram
	conf     Configuration
	slot     uint64
	logger   log.Logger
	metrics  *Counters
}

// New returns a ledger operating on given store. Configuration and the
// current slot are loaded from the store.
func New(db zkescrow.CacheableKVStore, logger log.Logger) (*Ledger, error) {
	if logger == nil {
		logger = zkescrow.DefaultLogger
	}
	l := &Ledger{
		db:       db,
		programs: make(map[zkescrow.Address]registeredProgram),
		logger:   logger.With("module", "ledger"),
		metrics:  Metrics(),
	}
	if err := l.reload(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Ledger) reload() error {
	conf, err := loadConfiguration(l.db)
	if err != nil {
		return errors.Wrap(err, "load configuration")
	}
	l.conf = conf

	raw, err := l.db.Get(slotKey)
	if err != nil {
		return errors.Wrap(err, "load slot")
	}
	if raw == nil {
		l.slot = conf.StartSlot
	} else {
		l.slot = binary.BigEndian.Uint64(raw)
	}
	return nil
}

// InitGenesis loads the ledger configuration and accounts from the genesis
// options and runs all given initializers. Either everything is written or
// nothing.
func (l *Ledger) InitGenesis(opts zkescrow.Options, inits ...zkescrow.Initializer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cache := l.db.CacheWrap()
	defer cache.Discard()

	chain := append(zkescrow.ChainInitializer{Initializer{}}, inits...)
	if err := chain.FromGenesis(opts, cache); err != nil {
		return errors.Wrap(err, "genesis")
	}
	if err := cache.Write(); err != nil {
		return err
	}
	return l.reload()
}

// Register adds a program to the ledger. An executable account owned by the
// native loader is created at the program address unless it exists.
func (l *Ledger) Register(name string, id zkescrow.Address, p zkescrow.Program) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.programs[id]; ok {
		return errors.Wrapf(errors.ErrDuplicate, "program %s", id)
	}
	acct, err := loadAccount(l.db, id)
	if err != nil {
		return err
	}
	if acct.IsEmpty() {
		acct = &zkescrow.Account{
			Lamports:   1,
			Owner:      zkescrow.NativeLoaderID,
			Executable: true,
			Data:       []byte(name),
		}
		if err := saveAccount(l.db, id, acct); err != nil {
			return err
		}
	}
	if !acct.Executable {
		return errors.Wrapf(errors.ErrAccountInUse, "%s is not executable", id)
	}
	l.programs[id] = registeredProgram{name: name, program: p}
	l.logger.Debug("program registered", "name", name, "id", id.String())
	return nil
}

// Result describes an executed transaction.
type Result struct {
	ID   []byte
	Slot uint64
}

// Submit verifies and executes a transaction. On success all changes are
// written to the store. On failure nothing is written.
func (l *Ledger) Submit(ctx context.Context, tx *Transaction) (res *Result, err error) {
	defer func() { l.metrics.recordTransaction(err) }()

	signed, err := tx.Verify()
	if err != nil {
		return nil, err
	}
	id, err := tx.ID()
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cache := l.db.CacheWrap()
	defer cache.Discard()

	txKey := append(append([]byte{}, txPrefix...), id...)
	switch seen, err := cache.Has(txKey); {
	case err != nil:
		return nil, err
	case seen:
		return nil, errors.Wrapf(errors.ErrDuplicate, "transaction %X", id)
	}

	logger := l.logger.With("tx", shortID(id))
	t := newTxContext(l, cache, logger)
	ctx = zkescrow.WithSlot(ctx, l.slot)
	ctx = zkescrow.WithLogger(ctx, logger)

	for i, ins := range tx.Message.Instructions {
		for _, m := range ins.Accounts {
			if m.IsSigner && !signed[m.Address] {
				return nil, errors.Wrapf(errors.ErrMissingSignature, "account %s", m.Address)
			}
		}
		infos, err := t.infos(ins.Accounts)
		if err != nil {
			return nil, err
		}
		if err := t.execute(ctx, ins.ProgramID, infos, ins.Data, 1); err != nil {
			logger.Info("instruction failed", "index", i, "err", err)
			return nil, errors.Wrapf(err, "instruction %d", i)
		}
	}

	if err := t.persist(cache); err != nil {
		return nil, err
	}
	if err := cache.Set(txKey, []byte{1}); err != nil {
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, err
	}
	logger.Debug("transaction executed", "slot", l.slot)
	return &Result{ID: id, Slot: l.slot}, nil
}

func shortID(id []byte) string {
	const n = 8
	if len(id) > n {
		id = id[:n]
	}
	return hex.EncodeToString(id)
}

// Account returns the state of given address. It fails with ErrNotFound if
// the account holds neither lamports nor data.
func (l *Ledger) Account(a zkescrow.Address) (*zkescrow.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, err := loadAccount(l.db, a)
	if err != nil {
		return nil, err
	}
	if acct.IsEmpty() {
		return nil, errors.Wrapf(errors.ErrNotFound, "account %s", a)
	}
	return acct, nil
}

// Balance returns the lamports held by given address.
func (l *Ledger) Balance(a zkescrow.Address) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, err := loadAccount(l.db, a)
	if err != nil {
		return 0, err
	}
	return acct.Lamports, nil
}

// Airdrop mints lamports to given address. It is only meant for genesis
// funding and tests.
func (l *Ledger) Airdrop(a zkescrow.Address, lamports uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, err := loadAccount(l.db, a)
	if err != nil {
		return err
	}
	if acct.Lamports+lamports < acct.Lamports {
		return errors.Wrap(errors.ErrOverflow, "balance")
	}
	acct.Lamports += lamports
	return saveAccount(l.db, a, acct)
}

// Slot returns the current slot.
func (l *Ledger) Slot() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.slot
}

// AdvanceSlot moves the clock forward by n slots and returns the new slot.
func (l *Ledger) AdvanceSlot(n uint64) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.slot + n
	if next < l.slot {
		return l.slot, errors.Wrap(errors.ErrOverflow, "slot")
	}
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, next)
	if err := l.db.Set(slotKey, raw); err != nil {
		return l.slot, err
	}
	l.slot = next
	return next, nil
}

// Rent returns the configured rent parameters.
func (l *Ledger) Rent() zkescrow.Rent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conf.Rent()
}

// KeyedAccount is an account together with its address.
type KeyedAccount struct {
	Address zkescrow.Address
	*zkescrow.Account
}

// AccountsByOwner returns all accounts owned by given program, ordered by
// address.
func (l *Ledger) AccountsByOwner(owner zkescrow.Address) ([]KeyedAccount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// "acct;" is the first key after all "acct:" keys.
	end := []byte("acct;")
	it, err := l.db.Iterator(accountPrefix, end)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var res []KeyedAccount
	for it.Valid() {
		var acct zkescrow.Account
		if err := acct.Unmarshal(it.Value()); err != nil {
			return nil, errors.Wrapf(err, "account %X", it.Key())
		}
		if acct.Owner.Equals(owner) {
			addr, err := zkescrow.NewAddress(bytes.TrimPrefix(it.Key(), accountPrefix))
			if err != nil {
				return nil, err
			}
			res = append(res, KeyedAccount{Address: addr, Account: &acct})
		}
		if err := it.Next(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Commit persists the state if the underlying store supports it.
func (l *Ledger) Commit() (zkescrow.CommitID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.db.(Committer)
	if !ok {
		return zkescrow.CommitID{}, nil
	}
	return c.Commit()
}

// loadAccount returns the stored account or an empty account owned by the
// system program.
func loadAccount(db zkescrow.ReadOnlyKVStore, a zkescrow.Address) (*zkescrow.Account, error) {
	raw, err := db.Get(accountKey(a))
	if err != nil {
		return nil, errors.Wrap(err, "load account")
	}
	acct := &zkescrow.Account{Owner: zkescrow.SystemProgramID}
	if raw == nil {
		return acct, nil
	}
	if err := acct.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(err, "account %s", a)
	}
	return acct, nil
}

// saveAccount writes the account, or deletes it if it is empty.
func saveAccount(db zkescrow.SetDeleter, a zkescrow.Address, acct *zkescrow.Account) error {
	if acct.IsEmpty() {
		return db.Delete(accountKey(a))
	}
	raw, err := acct.Marshal()
	if err != nil {
		return err
	}
	return db.Set(accountKey(a), raw)
}
