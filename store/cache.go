package store

import (
	"bytes"

	"github.com/google/btree"
)

// MemStore returns a store that keeps everything in memory. Writing it has
// no effect, so use it only as the root of a test state.
func MemStore() CacheableKVStore {
	return NewCache(emptyStore{})
}

// Cache buffers writes over a parent store. Reads see the buffered state.
// Nothing reaches the parent until Write is called.
type Cache struct {
	parent  KVStore
	pending *btree.BTree
}

var _ KVCacheWrap = (*Cache)(nil)

// NewCache returns a cache layered on top of parent.
func NewCache(parent KVStore) *Cache {
	return &Cache{
		parent:  parent,
		pending: btree.New(8),
	}
}

// CacheWrap layers another cache on top of this one.
func (c *Cache) CacheWrap() KVCacheWrap {
	return NewCache(c)
}

// NewBatch returns a batch writing into this cache.
func (c *Cache) NewBatch() Batch {
	return NewBatch(c)
}

// Write applies all buffered changes to the parent in a single batch and
// empties the cache.
func (c *Cache) Write() error {
	batch := c.parent.NewBatch()
	var err error
	c.pending.Ascend(func(it btree.Item) bool {
		err = it.(entry).apply(batch)
		return err == nil
	})
	c.Discard()
	if err != nil {
		return err
	}
	return batch.Write()
}

// Discard drops all buffered changes.
func (c *Cache) Discard() {
	c.pending.Clear(false)
}

func (c *Cache) Set(key, value []byte) error {
	c.pending.ReplaceOrInsert(entry{key: key, value: value})
	return nil
}

func (c *Cache) Delete(key []byte) error {
	c.pending.ReplaceOrInsert(entry{key: key, deleted: true})
	return nil
}

func (c *Cache) Get(key []byte) ([]byte, error) {
	it := c.pending.Get(entry{key: key})
	if it == nil {
		return c.parent.Get(key)
	}
	if e := it.(entry); !e.deleted {
		return e.value, nil
	}
	return nil, nil
}

func (c *Cache) Has(key []byte) (bool, error) {
	it := c.pending.Get(entry{key: key})
	if it == nil {
		return c.parent.Has(key)
	}
	return !it.(entry).deleted, nil
}

func (c *Cache) Iterator(start, end []byte) (Iterator, error) {
	parent, err := c.parent.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	defer parent.Close()
	kvs, err := merge(c.pendingRange(start, end), parent, false)
	if err != nil {
		return nil, err
	}
	return NewSliceIterator(kvs), nil
}

func (c *Cache) ReverseIterator(start, end []byte) (Iterator, error) {
	parent, err := c.parent.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	defer parent.Close()
	pending := c.pendingRange(start, end)
	for i, j := 0, len(pending)-1; i < j; i, j = i+1, j-1 {
		pending[i], pending[j] = pending[j], pending[i]
	}
	kvs, err := merge(pending, parent, true)
	if err != nil {
		return nil, err
	}
	return NewSliceIterator(kvs), nil
}

// pendingRange returns buffered entries with start <= key < end in
// ascending order. A nil boundary is open.
func (c *Cache) pendingRange(start, end []byte) []entry {
	var res []entry
	collect := func(it btree.Item) bool {
		res = append(res, it.(entry))
		return true
	}
	switch {
	case start == nil && end == nil:
		c.pending.Ascend(collect)
	case start == nil:
		c.pending.AscendLessThan(entry{key: end}, collect)
	case end == nil:
		c.pending.AscendGreaterOrEqual(entry{key: start}, collect)
	default:
		c.pending.AscendRange(entry{key: start}, entry{key: end}, collect)
	}
	return res
}

// merge combines buffered entries with the parent iterator. Both must be
// in the same order. A buffered entry shadows the parent value of the same
// key and a deleted entry hides it.
func merge(pending []entry, parent Iterator, reverse bool) ([]KV, error) {
	var res []KV
	for parent.Valid() || len(pending) > 0 {
		var cmp int
		switch {
		case len(pending) == 0:
			cmp = -1
		case !parent.Valid():
			cmp = 1
		default:
			cmp = bytes.Compare(parent.Key(), pending[0].key)
			if reverse {
				cmp = -cmp
			}
		}

		if cmp < 0 {
			res = append(res, KV{Key: parent.Key(), Value: parent.Value()})
		} else if e := pending[0]; !e.deleted {
			res = append(res, KV{Key: e.key, Value: e.value})
		}
		if cmp >= 0 {
			pending = pending[1:]
		}
		if cmp <= 0 {
			if err := parent.Next(); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}

// entry is a buffered change of a single key.
type entry struct {
	key     []byte
	value   []byte
	deleted bool
}

func (e entry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(entry).key) < 0
}

func (e entry) apply(out SetDeleter) error {
	if e.deleted {
		return out.Delete(e.key)
	}
	return out.Set(e.key, e.value)
}
