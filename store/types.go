package store

import "github.com/iov-one/zkescrow"

// Move references for all storage types into this package
// for shorter names everywhere

type (
	ReadOnlyKVStore  = zkescrow.ReadOnlyKVStore
	SetDeleter       = zkescrow.SetDeleter
	KVStore          = zkescrow.KVStore
	Batch            = zkescrow.Batch
	Iterator         = zkescrow.Iterator
	CacheableKVStore = zkescrow.CacheableKVStore
	KVCacheWrap      = zkescrow.KVCacheWrap
	CommitKVStore    = zkescrow.CommitKVStore
	CommitID         = zkescrow.CommitID
)
