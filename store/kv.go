package store

import "github.com/iov-one/zkescrow/errors"

// KV is a single key value pair.
type KV struct {
	Key   []byte
	Value []byte
}

// sliceIterator iterates over pairs loaded into memory.
type sliceIterator struct {
	kvs []KV
}

// NewSliceIterator returns an iterator over given pairs, in given order.
func NewSliceIterator(kvs []KV) Iterator {
	return &sliceIterator{kvs: kvs}
}

func (s *sliceIterator) Valid() bool {
	return len(s.kvs) > 0
}

func (s *sliceIterator) Next() error {
	if !s.Valid() {
		return errors.Wrap(errors.ErrHuman, "iterator is not valid")
	}
	s.kvs = s.kvs[1:]
	return nil
}

func (s *sliceIterator) Key() []byte {
	s.mustBeValid()
	return s.kvs[0].Key
}

func (s *sliceIterator) Value() []byte {
	s.mustBeValid()
	return s.kvs[0].Value
}

func (s *sliceIterator) Close() {
	s.kvs = nil
}

func (s *sliceIterator) mustBeValid() {
	if !s.Valid() {
		panic("iterator is not valid")
	}
}

// batch collects changes and applies them on Write.
type batch struct {
	out SetDeleter
	ops []entry
}

// NewBatch returns a batch writing into out. Changes are applied in the
// order they were made. Write is not atomic: if out fails, the changes
// applied before stay.
func NewBatch(out SetDeleter) Batch {
	return &batch{out: out}
}

func (b *batch) Set(key, value []byte) error {
	b.ops = append(b.ops, entry{key: key, value: value})
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.ops = append(b.ops, entry{key: key, deleted: true})
	return nil
}

func (b *batch) Write() error {
	ops := b.ops
	b.ops = nil
	for _, op := range ops {
		if err := op.apply(b.out); err != nil {
			return err
		}
	}
	return nil
}

// emptyStore holds nothing and ignores writes.
type emptyStore struct{}

func (emptyStore) Get([]byte) ([]byte, error)                { return nil, nil }
func (emptyStore) Has([]byte) (bool, error)                  { return false, nil }
func (emptyStore) Set([]byte, []byte) error                  { return nil }
func (emptyStore) Delete([]byte) error                       { return nil }
func (emptyStore) Iterator([]byte, []byte) (Iterator, error) { return NewSliceIterator(nil), nil }
func (emptyStore) ReverseIterator([]byte, []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}
func (e emptyStore) NewBatch() Batch { return NewBatch(e) }
