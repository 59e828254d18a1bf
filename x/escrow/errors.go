package escrow

import "github.com/iov-one/zkescrow/errors"

// x/escrow reserves 30 ~ 39.

var (
	ErrSeedMismatch          = errors.Register(30, "seed mismatch")
	ErrAddressMismatch       = errors.Register(31, "address mismatch")
	ErrAlreadyClaimed        = errors.Register(32, "escrow already claimed")
	ErrHashMismatch          = errors.Register(33, "hash mismatch")
	ErrMalformedCallback     = errors.Register(34, "malformed callback")
	ErrOracleRequestRejected = errors.Register(35, "oracle request rejected")
)
