package oracle

import "github.com/iov-one/zkescrow/errors"

// x/oracle reserves 40 ~ 49.

var (
	ErrUnknownImage    = errors.Register(40, "unknown image")
	ErrExecutionExists = errors.Register(41, "execution exists")
	ErrNotPending      = errors.Register(42, "execution not pending")
	ErrInvalidCallback = errors.Register(43, "invalid callback")
	ErrNoProver        = errors.Register(44, "no prover")
)
