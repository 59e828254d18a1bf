package oracle

import (
	"bytes"
	"context"
	"crypto/sha256"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/crypto"
	"github.com/iov-one/zkescrow/errors"
	"github.com/iov-one/zkescrow/ledger"
	"github.com/tendermint/tendermint/libs/log"
)

// Chain is the part of the ledger used by the relay.
type Chain interface {
	AccountsByOwner(owner zkescrow.Address) ([]ledger.KeyedAccount, error)
	Slot() uint64
	Submit(ctx context.Context, tx *ledger.Transaction) (*ledger.Result, error)
}

// PendingExecution is an execution waiting to be fulfilled.
type PendingExecution struct {
	Address zkescrow.Address
	*Execution
}

// Relay fulfills pending executions. Each execution is proven by the
// prover registered for its image and resolved with a Fulfill transaction
// signed by the relay key, which receives the tip.
//
// A callback is delivered at most once by the relay. An execution whose
// Fulfill transaction failed is not retried.
type Relay struct {
	chain   Chain
	program zkescrow.Address
	key     crypto.Signer
	logger  log.Logger
	nonce   uint64

	mu      sync.Mutex
	fetcher InputFetcher
	provers map[string]Prover
	failed  map[zkescrow.Address]error
}

// PassFunc is called by Run after every pass with the number of resolved
// executions.
type PassFunc func(ctx context.Context, resolved int) error

// NewRelay returns a relay for the oracle program registered at given
// address. Inputs are resolved with the InlineFetcher.
func NewRelay(chain Chain, program zkescrow.Address, key crypto.Signer, logger log.Logger) *Relay {
	if logger == nil {
		logger = zkescrow.DefaultLogger
	}
	return &Relay{
		chain:   chain,
		program: program,
		key:     key,
		fetcher: InlineFetcher{},
		logger:  logger.With("module", "relay"),
		nonce:   uint64(time.Now().UnixNano()),
		provers: make(map[string]Prover),
		failed:  make(map[zkescrow.Address]error),
	}
}

// RegisterProver sets the prover used for executions of given image.
func (r *Relay) RegisterProver(imageID string, p Prover) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.provers[imageID] = p
}

// SetFetcher replaces the input fetcher.
func (r *Relay) SetFetcher(f InputFetcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetcher = f
}

// Failed returns the error the fulfillment of given execution failed with
// or nil.
func (r *Relay) Failed(execution zkescrow.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed[execution]
}

// Pending returns all executions that are not resolved yet.
func (r *Relay) Pending() ([]PendingExecution, error) {
	accounts, err := r.chain.AccountsByOwner(r.program)
	if err != nil {
		return nil, errors.Wrap(err, "list oracle accounts")
	}
	var res []PendingExecution
	for _, a := range accounts {
		if len(a.Data) == 0 || a.Data[0] != kindExecution {
			continue
		}
		e, err := LoadExecution(a.Data)
		if err != nil {
			return nil, errors.Wrapf(err, "execution %s", a.Address)
		}
		if e.Status == StatusPending {
			res = append(res, PendingExecution{Address: a.Address, Execution: e})
		}
	}
	return res, nil
}

// Run fulfills pending executions every interval until the context is
// cancelled. A failing pass is logged and does not stop the relay. When
// set, done is called after every pass.
func (r *Relay) Run(ctx context.Context, interval time.Duration, done PassFunc) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			resolved, err := r.RunOnce(ctx)
			if err != nil {
				r.logger.Error("cannot relay executions", "err", err)
			}
			if done == nil {
				continue
			}
			if err := done(ctx, resolved); err != nil {
				r.logger.Error("relay pass failed", "err", err)
			}
		}
	}
}

// RunOnce fulfills all pending executions once and returns the number of
// executions that were resolved.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	pending, err := r.Pending()
	if err != nil {
		return 0, err
	}
	var (
		n    int
		errs error
	)
	for _, p := range pending {
		if r.Failed(p.Address) != nil {
			continue
		}
		switch err := r.fulfill(ctx, p); {
		case err == nil:
			n++
		case ErrNoProver.Is(err):
			r.logger.Debug("execution skipped", "execution", p.Address.String(), "image", p.ImageID)
		default:
			errs = errors.Append(errs, err)
		}
	}
	return n, errs
}

func (r *Relay) fulfill(ctx context.Context, p PendingExecution) error {
	logger := r.logger.With("execution", p.Address.String(), "execution_id", p.ExecutionID)

	var outputs []byte
	if !p.IsExpired(r.chain.Slot()) {
		r.mu.Lock()
		prover, ok := r.provers[p.ImageID]
		r.mu.Unlock()
		if !ok {
			return errors.Wrapf(ErrNoProver, "image %s", p.ImageID)
		}
		inputs, err := r.resolve(ctx, p.Execution)
		if err != nil {
			return r.fail(p, err)
		}
		if outputs, err = prover.Prove(ctx, inputs); err != nil {
			return r.fail(p, errors.Wrap(err, "prove"))
		}
	}

	ins, err := Fulfill(r.program, r.key.Address(), p.Address, p.Execution, outputs)
	if err != nil {
		return r.fail(p, err)
	}
	tx := ledger.NewTransaction(atomic.AddUint64(&r.nonce, 1), ins)
	if err := tx.Sign(r.key); err != nil {
		return err
	}
	if _, err := r.chain.Submit(ctx, tx); err != nil {
		return r.fail(p, errors.Wrap(err, "submit"))
	}
	logger.Info("execution fulfilled", "outputs", string(outputs))
	return nil
}

// resolve returns the public inputs of an execution.
func (r *Relay) resolve(ctx context.Context, e *Execution) ([][]byte, error) {
	r.mu.Lock()
	fetcher := r.fetcher
	r.mu.Unlock()

	var inputs [][]byte
	for i, ref := range e.Inputs {
		if !ref.IsPublic() {
			continue
		}
		in, err := fetcher.Fetch(ctx, ref)
		if err != nil {
			return nil, errors.Wrapf(err, "input %d", i)
		}
		inputs = append(inputs, in)
	}
	if e.Config.VerifyInputHash {
		h := sha256.New()
		for _, in := range inputs {
			_, _ = h.Write(in)
		}
		if !bytes.Equal(h.Sum(nil), e.Config.InputHash) {
			return nil, errors.Wrap(errors.ErrInvalidInput, "input hash")
		}
	}
	return inputs, nil
}

func (r *Relay) fail(p PendingExecution, err error) error {
	r.mu.Lock()
	r.failed[p.Address] = err
	r.mu.Unlock()
	r.logger.Error("execution failed", "execution", p.Address.String(), "err", err)
	return err
}
