package zkescrow

import (
	"context"

	"github.com/tendermint/tendermint/libs/log"
)

// DefaultLogger is used for all context that have not set anything
// themselves.
var DefaultLogger = log.NewNopLogger()

type contextKey int

const (
	contextKeySlot contextKey = iota
	contextKeyLogger
)

// WithSlot sets the slot the transaction is executed in.
func WithSlot(ctx context.Context, slot uint64) context.Context {
	return context.WithValue(ctx, contextKeySlot, slot)
}

// GetSlot returns the slot set by the ledger. The second result is false if
// the slot was not set.
func GetSlot(ctx context.Context) (uint64, bool) {
	val, ok := ctx.Value(contextKeySlot).(uint64)
	return val, ok
}

// WithLogger sets the logger for this context. Each program can add its own
// key/value pairs to it.
func WithLogger(ctx context.Context, logger log.Logger) context.Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// GetLogger returns the currently set logger, or DefaultLogger if none was
// set.
func GetLogger(ctx context.Context) log.Logger {
	val, ok := ctx.Value(contextKeyLogger).(log.Logger)
	if !ok {
		return DefaultLogger
	}
	return val
}
