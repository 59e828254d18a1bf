/*
Package ledgertest provides fixtures for tests that execute programs on an
in memory ledger.
*/
package ledgertest

import (
	"context"
	"crypto/rand"
	"sync/atomic"
	"testing"

	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/crypto"
	"github.com/iov-one/zkescrow/ledger"
	"github.com/iov-one/zkescrow/store"
)

// NewLedger returns a ledger backed by an in memory store with no programs
// registered.
func NewLedger(t testing.TB) *ledger.Ledger {
	t.Helper()
	l, err := ledger.New(store.MemStore(), nil)
	if err != nil {
		t.Fatalf("cannot create ledger: %s", err)
	}
	return l
}

// Register adds a program to the ledger and fails the test on error.
func Register(t testing.TB, l *ledger.Ledger, name string, id zkescrow.Address, p zkescrow.Program) {
	t.Helper()
	if err := l.Register(name, id, p); err != nil {
		t.Fatalf("cannot register %s: %s", name, err)
	}
}

// NewKey returns a random private key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// FundedKey returns a random private key whose account holds given lamports.
func FundedKey(t testing.TB, l *ledger.Ledger, lamports uint64) *crypto.PrivateKey {
	t.Helper()
	key := NewKey()
	if err := l.Airdrop(key.Address(), lamports); err != nil {
		t.Fatalf("cannot fund account: %s", err)
	}
	return key
}

// RandomAddr returns a random address. It is most likely a valid curve
// point, but it is never used to sign.
func RandomAddr(t testing.TB) zkescrow.Address {
	t.Helper()
	var a zkescrow.Address
	if _, err := rand.Read(a[:]); err != nil {
		t.Fatalf("cannot read random data: %s", err)
	}
	return a
}

var nonce uint64

// Submit signs a transaction containing given instructions with all signers
// and executes it. Every call uses a new nonce.
func Submit(l *ledger.Ledger, signers []crypto.Signer, instructions ...zkescrow.Instruction) error {
	tx := ledger.NewTransaction(atomic.AddUint64(&nonce, 1), instructions...)
	if err := tx.Sign(signers...); err != nil {
		return err
	}
	_, err := l.Submit(context.Background(), tx)
	return err
}

// Signers is a helper to build a signer list.
func Signers(keys ...*crypto.PrivateKey) []crypto.Signer {
	res := make([]crypto.Signer, len(keys))
	for i, k := range keys {
		res[i] = k
	}
	return res
}

// Balance returns the lamports of given account and fails the test on error.
func Balance(t testing.TB, l *ledger.Ledger, a zkescrow.Address) uint64 {
	t.Helper()
	b, err := l.Balance(a)
	if err != nil {
		t.Fatalf("cannot get balance of %s: %s", a, err)
	}
	return b
}
