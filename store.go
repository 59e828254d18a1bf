package zkescrow

// ReadOnlyKVStore gives read access to the ledger state.
type ReadOnlyKVStore interface {
	// Get returns nil if the key does not exist.
	Get(key []byte) ([]byte, error)

	Has(key []byte) (bool, error)

	// Iterator returns the keys in [start, end) in ascending order. A nil
	// boundary is open. The range must not be written to while the
	// iterator is in use.
	Iterator(start, end []byte) (Iterator, error)

	// ReverseIterator works like Iterator in descending order.
	ReverseIterator(start, end []byte) (Iterator, error)
}

// SetDeleter is implemented by both stores and batches. Keys and values
// passed to it must not be modified afterwards.
type SetDeleter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// KVStore gives read and write access to the ledger state.
type KVStore interface {
	ReadOnlyKVStore
	SetDeleter
	NewBatch() Batch
}

// Batch collects changes that are applied to the store on Write.
type Batch interface {
	SetDeleter
	Write() error
}

// Iterator walks over a range of keys.
//
//	it, err := db.Iterator(start, end)
//	if err != nil {
//		return err
//	}
//	defer it.Close()
//	for ; it.Valid(); it.Next() {
//		key, value := it.Key(), it.Value()
//	}
type Iterator interface {
	// Valid returns false once the iterator is exhausted.
	Valid() bool

	// Next moves to the following key. It fails if the iterator is not
	// valid.
	Next() error

	// Key returns the current key. It panics if the iterator is not valid.
	Key() []byte

	// Value returns the current value. It panics if the iterator is not
	// valid.
	Value() []byte

	Close()
}

// CacheableKVStore is a store that can buffer changes in a cache wrap.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap buffers changes over a store. Reads see the buffered changes.
// Write applies them to the underlying store, Discard drops them. The ledger
// executes every transaction in its own cache wrap.
type KVCacheWrap interface {
	CacheableKVStore
	Write() error
	Discard()
}

// CommitKVStore is a store that persists versions of the state.
type CommitKVStore interface {
	Get(key []byte) ([]byte, error)
	CacheWrap() KVCacheWrap

	// Commit persists the working state as the next version.
	Commit() (CommitID, error)

	// LoadLatestVersion loads the latest persisted version.
	LoadLatestVersion() error

	LatestVersion() (CommitID, error)
}

// CommitID identifies a persisted version of the state.
type CommitID struct {
	Version int64
	Hash    []byte
}
