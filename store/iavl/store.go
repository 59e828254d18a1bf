/*
Package iavl provides a persistent, versioned CommitKVStore backed by an
iavl merkle tree.
*/
package iavl

import (
	"github.com/iov-one/zkescrow/errors"
	"github.com/iov-one/zkescrow/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

// DefaultCacheSize is the number of tree nodes held in memory.
const DefaultCacheSize = 10000

// CommitStore manages a iavl committed state
type CommitStore struct {
	db   dbm.DB
	tree *iavl.MutableTree
}

var (
	_ store.CommitKVStore    = (*CommitStore)(nil)
	_ store.CacheableKVStore = (*CommitStore)(nil)
)

// NewCommitStore creates a new store with disk backing. The database is
// created inside dir.
func NewCommitStore(dir, name string) (*CommitStore, error) {
	db, err := dbm.NewGoLevelDB(name, dir)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open %s: %s", dir, err)
	}
	return newCommitStore(db), nil
}

// MockCommitStore creates a store backed by an in memory database.
func MockCommitStore() *CommitStore {
	return newCommitStore(dbm.NewMemDB())
}

func newCommitStore(db dbm.DB) *CommitStore {
	return &CommitStore{
		db:   db,
		tree: iavl.NewMutableTree(db, DefaultCacheSize),
	}
}

// Get returns the value from the working tree. Returns nil iff key doesn't
// exist.
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	_, val := s.tree.Get(key)
	return val, nil
}

// Has checks if a key exists.
func (s *CommitStore) Has(key []byte) (bool, error) {
	return s.tree.Has(key), nil
}

// Set writes to the working tree.
func (s *CommitStore) Set(key, value []byte) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrDatabase, "empty key")
	}
	s.tree.Set(key, value)
	return nil
}

// Delete removes from the working tree.
func (s *CommitStore) Delete(key []byte) error {
	s.tree.Remove(key)
	return nil
}

// NewBatch returns a batch that writes to the working tree.
func (s *CommitStore) NewBatch() store.Batch {
	return store.NewBatch(s)
}

// Iterator over a domain of keys in ascending order. End is exclusive.
func (s *CommitStore) Iterator(start, end []byte) (store.Iterator, error) {
	return s.iterate(start, end, true), nil
}

// ReverseIterator over a domain of keys in descending order. End is exclusive.
func (s *CommitStore) ReverseIterator(start, end []byte) (store.Iterator, error) {
	return s.iterate(start, end, false), nil
}

// iterate loads the whole range into memory. Ranges queried by the ledger
// are small and bounded by the number of accounts of a single owner.
func (s *CommitStore) iterate(start, end []byte, ascending bool) store.Iterator {
	var res []store.KV
	s.tree.IterateRange(start, end, ascending, func(key, value []byte) bool {
		res = append(res, store.KV{Key: key, Value: value})
		return false
	})
	return store.NewSliceIterator(res)
}

// CacheWrap gives us a savepoint to perform actions. Writing the cache
// updates the working tree. Call Commit to persist it.
func (s *CommitStore) CacheWrap() store.KVCacheWrap {
	return store.NewCache(s)
}

// Commit the next version to disk, and returns info
func (s *CommitStore) Commit() (store.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return store.CommitID{
		Version: version,
		Hash:    hash,
	}, nil
}

// LoadLatestVersion loads the latest persisted version.
// If there was a crash during the last commit, it is guaranteed
// to return a stable state, even if older.
func (s *CommitStore) LoadLatestVersion() error {
	if _, err := s.tree.Load(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk
func (s *CommitStore) LatestVersion() (store.CommitID, error) {
	return store.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}, nil
}

// Close releases the database.
func (s *CommitStore) Close() {
	s.db.Close()
}
