package store

import (
	"testing"

	"github.com/iov-one/zkescrow/ledgertest/assert"
)

// RunSuite runs the tests every CacheableKVStore implementation must pass.
// newStore must return an empty store.
func RunSuite(t *testing.T, newStore func(t *testing.T) CacheableKVStore) {
	t.Run("get set", func(t *testing.T) { testGetSet(t, newStore(t)) })
	t.Run("discard", func(t *testing.T) { testDiscard(t, newStore(t)) })
	t.Run("nested caches", func(t *testing.T) { testNestedCaches(t, newStore(t)) })
	t.Run("iterate", func(t *testing.T) { testIterate(t, newStore(t)) })
	t.Run("batch", func(t *testing.T) { testBatch(t, newStore(t)) })
}

func assertGet(t testing.TB, db ReadOnlyKVStore, key string, want []byte) {
	t.Helper()
	got, err := db.Get([]byte(key))
	assert.Nil(t, err)
	assert.Equal(t, want, got)
	has, err := db.Has([]byte(key))
	assert.Nil(t, err)
	assert.Equal(t, want != nil, has)
}

func set(t testing.TB, db SetDeleter, kvs ...string) {
	t.Helper()
	for i := 0; i < len(kvs); i += 2 {
		assert.Nil(t, db.Set([]byte(kvs[i]), []byte(kvs[i+1])))
	}
}

func testGetSet(t *testing.T, base CacheableKVStore) {
	set(t, base, "escrow/1", "open")
	assertGet(t, base, "escrow/1", []byte("open"))
	assertGet(t, base, "escrow/2", nil)

	cache := base.CacheWrap()
	set(t, cache, "escrow/2", "open", "escrow/1", "claimed")
	assert.Nil(t, cache.Delete([]byte("escrow/2")))
	assertGet(t, cache, "escrow/1", []byte("claimed"))
	assertGet(t, cache, "escrow/2", nil)
	assertGet(t, base, "escrow/1", []byte("open"))

	assert.Nil(t, cache.Write())
	assertGet(t, base, "escrow/1", []byte("claimed"))
	assertGet(t, base, "escrow/2", nil)
}

func testDiscard(t *testing.T, base CacheableKVStore) {
	set(t, base, "a", "1")
	cache := base.CacheWrap()
	set(t, cache, "a", "2", "b", "2")
	cache.Discard()
	assertGet(t, cache, "a", []byte("1"))
	assertGet(t, cache, "b", nil)

	// A discarded cache writes nothing.
	assert.Nil(t, cache.Write())
	assertGet(t, base, "a", []byte("1"))
	assertGet(t, base, "b", nil)
}

func testNestedCaches(t *testing.T, base CacheableKVStore) {
	set(t, base, "tracker", "pending")

	outer := base.CacheWrap()
	assert.Nil(t, outer.Delete([]byte("tracker")))

	inner := outer.CacheWrap()
	assertGet(t, inner, "tracker", nil)
	set(t, inner, "tracker", "done", "receiver", "paid")

	failed := outer.CacheWrap()
	set(t, failed, "receiver", "paid twice")
	failed.Discard()

	assert.Nil(t, inner.Write())
	assertGet(t, outer, "tracker", []byte("done"))
	assertGet(t, outer, "receiver", []byte("paid"))
	assertGet(t, base, "tracker", []byte("pending"))
	assertGet(t, base, "receiver", nil)

	assert.Nil(t, outer.Write())
	assertGet(t, base, "tracker", []byte("done"))
	assertGet(t, base, "receiver", []byte("paid"))
}

func testIterate(t *testing.T, base CacheableKVStore) {
	set(t, base, "k1", "a", "k2", "a", "k3", "a", "k5", "a")

	cache := base.CacheWrap()
	set(t, cache, "k2", "b", "k4", "b", "k6", "b")
	assert.Nil(t, cache.Delete([]byte("k3")))
	assert.Nil(t, cache.Delete([]byte("k7")))

	cases := map[string]struct {
		start, end string
		reverse    bool
		want       []string
	}{
		"all": {
			want: []string{"k1=a", "k2=b", "k4=b", "k5=a", "k6=b"},
		},
		"all reversed": {
			reverse: true,
			want:    []string{"k6=b", "k5=a", "k4=b", "k2=b", "k1=a"},
		},
		"range": {
			start: "k2",
			end:   "k5",
			want:  []string{"k2=b", "k4=b"},
		},
		"range reversed": {
			start:   "k2",
			end:     "k5",
			reverse: true,
			want:    []string{"k4=b", "k2=b"},
		},
		"open start": {
			end:  "k3",
			want: []string{"k1=a", "k2=b"},
		},
		"open end": {
			start: "k5",
			want:  []string{"k5=a", "k6=b"},
		},
		"only deleted": {
			start: "k3",
			end:   "k4",
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var start, end []byte
			if tc.start != "" {
				start = []byte(tc.start)
			}
			if tc.end != "" {
				end = []byte(tc.end)
			}
			var (
				it  Iterator
				err error
			)
			if tc.reverse {
				it, err = cache.ReverseIterator(start, end)
			} else {
				it, err = cache.Iterator(start, end)
			}
			assert.Nil(t, err)
			defer it.Close()

			var got []string
			for ; it.Valid(); assert.Nil(t, it.Next()) {
				got = append(got, string(it.Key())+"="+string(it.Value()))
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func testBatch(t *testing.T, base CacheableKVStore) {
	set(t, base, "a", "1")

	b := base.NewBatch()
	set(t, b, "b", "2", "c", "3")
	assert.Nil(t, b.Delete([]byte("a")))
	assert.Nil(t, b.Delete([]byte("c")))
	assertGet(t, base, "a", []byte("1"))
	assertGet(t, base, "b", nil)

	assert.Nil(t, b.Write())
	assertGet(t, base, "a", nil)
	assertGet(t, base, "b", []byte("2"))
	assertGet(t, base, "c", nil)
}
