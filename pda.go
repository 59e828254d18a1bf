package zkescrow

import (
	"crypto/sha256"
	"strings"

	"filippo.io/edwards25519"
	"github.com/hashicorp/golang-lru"
	"github.com/iov-one/zkescrow/errors"
)

const (
	// MaxSeeds is the maximum number of seeds, including the bump, that
	// can be used to derive a program address.
	MaxSeeds = 16

	// MaxSeedLength is the maximum length of a single seed.
	MaxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

// IsOnCurve returns true if given address is a valid ed25519 point. Such an
// address may have a private key and therefore cannot be owned by a program.
func IsOnCurve(a Address) bool {
	_, err := new(edwards25519.Point).SetBytes(a[:])
	return err == nil
}

// CreateProgramAddress computes the address for given seeds scoped to a
// program. Seeds must already contain the bump. Derivation fails if the
// result is a valid curve point.
func CreateProgramAddress(seeds [][]byte, program Address) (Address, error) {
	a, onCurve, err := programAddress(seeds, program)
	if err != nil {
		return a, err
	}
	if onCurve {
		return Address{}, errors.Wrap(errors.ErrInvalidSeeds, "address on curve")
	}
	return a, nil
}

func programAddress(seeds [][]byte, program Address) (Address, bool, error) {
	var a Address
	if len(seeds) > MaxSeeds {
		return a, false, errors.Wrapf(errors.ErrInvalidSeeds, "too many seeds: %d", len(seeds))
	}
	h := sha256.New()
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return a, false, errors.Wrapf(errors.ErrInvalidSeeds, "seed %d too long: %d", i, len(s))
		}
		_, _ = h.Write(s)
	}
	_, _ = h.Write(program[:])
	_, _ = h.Write([]byte(pdaMarker))
	copy(a[:], h.Sum(nil))
	return a, IsOnCurve(a), nil
}

// FindProgramAddress returns the canonical program derived address for
// given seeds and the bump that was appended to the seeds to produce it.
// Bump values are tried from 255 downward and the first that does not
// produce a curve point is used.
func FindProgramAddress(seeds [][]byte, program Address) (Address, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return Address{}, 0, errors.Wrapf(errors.ErrInvalidSeeds, "too many seeds: %d", len(seeds))
	}
	withBump := make([][]byte, len(seeds), len(seeds)+1)
	copy(withBump, seeds)
	withBump = append(withBump, nil)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{uint8(bump)}
		a, onCurve, err := programAddress(withBump, program)
		if err != nil {
			return Address{}, 0, err
		}
		if !onCurve {
			return a, uint8(bump), nil
		}
	}
	return Address{}, 0, errors.Wrap(errors.ErrInvalidSeeds, "no viable bump")
}

// DerivedAddress is a result of a successful address derivation.
type DerivedAddress struct {
	Address Address
	Bump    uint8
}

// AddressCache memoises FindProgramAddress results. Finding an address may
// require many hash computations so clients that repeatedly derive the same
// addresses should use it.
type AddressCache struct {
	cache *lru.Cache
}

// NewAddressCache returns a cache holding at most size derivations.
func NewAddressCache(size int) (*AddressCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return &AddressCache{cache: c}, nil
}

// Find works like FindProgramAddress but returns a cached result if this
// derivation was computed before.
func (c *AddressCache) Find(seeds [][]byte, program Address) (Address, uint8, error) {
	key := cacheKey(seeds, program)
	if v, ok := c.cache.Get(key); ok {
		d := v.(DerivedAddress)
		return d.Address, d.Bump, nil
	}
	a, bump, err := FindProgramAddress(seeds, program)
	if err != nil {
		return a, bump, err
	}
	c.cache.Add(key, DerivedAddress{Address: a, Bump: bump})
	return a, bump, nil
}

// Len returns the number of cached derivations.
func (c *AddressCache) Len() int {
	return c.cache.Len()
}

func cacheKey(seeds [][]byte, program Address) string {
	var b strings.Builder
	b.Write(program[:])
	for _, s := range seeds {
		// Length prefix keeps ["ab","c"] and ["a","bc"] apart.
		b.WriteByte(byte(len(s)))
		b.Write(s)
	}
	return b.String()
}
