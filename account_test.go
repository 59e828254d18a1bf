package zkescrow

import (
	"testing"

	"github.com/iov-one/zkescrow/errors"
	"github.com/iov-one/zkescrow/ledgertest/assert"
)

func TestAccountSerialization(t *testing.T) {
	cases := map[string]struct {
		acct *Account
	}{
		"empty data": {
			acct: &Account{Lamports: 5, Owner: Address{1}, Data: []byte{}},
		},
		"program data": {
			acct: &Account{Lamports: 1 << 40, Owner: Address{2}, Data: []byte("escrow")},
		},
		"executable": {
			acct: &Account{Lamports: 1, Owner: Address{3}, Executable: true, Data: []byte{}},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			raw, err := tc.acct.Marshal()
			assert.Nil(t, err)
			var got Account
			assert.Nil(t, got.Unmarshal(raw))
			assert.Equal(t, tc.acct, &got)
		})
	}
}

func TestAccountUnmarshalErrors(t *testing.T) {
	valid, err := (&Account{Lamports: 1, Data: []byte("ab")}).Marshal()
	assert.Nil(t, err)

	badFlag := append([]byte{}, valid...)
	badFlag[8+AddressLength] = 2

	cases := map[string]struct {
		raw     []byte
		wantErr *errors.Error
	}{
		"too short":        {raw: valid[:10], wantErr: errors.ErrBufferTooSmall},
		"truncated data":   {raw: valid[:len(valid)-1], wantErr: errors.ErrInvalidState},
		"invalid flag":     {raw: badFlag, wantErr: errors.ErrInvalidState},
		"trailing garbage": {raw: append(append([]byte{}, valid...), 0), wantErr: errors.ErrInvalidState},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var a Account
			assert.IsErr(t, tc.wantErr, a.Unmarshal(tc.raw))
		})
	}
}

func TestAccountClone(t *testing.T) {
	a := &Account{Lamports: 3, Data: []byte{1, 2}}
	c := a.Clone()
	c.Data[0] = 9
	c.Lamports = 4
	assert.Equal(t, []byte{1, 2}, a.Data)
	assert.Equal(t, uint64(3), a.Lamports)
}

func TestAccountInfo(t *testing.T) {
	owner := Address{5}
	info := &AccountInfo{Key: Address{1}, Account: &Account{Owner: owner}}
	if !info.IsOwnedBy(owner) {
		t.Fatal("must be owned by the owner")
	}
	if !info.DataIsEmpty() {
		t.Fatal("data must be empty")
	}
	assert.IsErr(t, errors.ErrMissingSignature, info.RequireSigner())
	info.IsSigner = true
	assert.Nil(t, info.RequireSigner())
}

func TestRentMinimumBalance(t *testing.T) {
	r := DefaultRent()
	assert.Equal(t, uint64((128+170+100)*3480*2), r.MinimumBalance(270))
	assert.Equal(t, uint64(128*3480*2), r.MinimumBalance(0))
}
