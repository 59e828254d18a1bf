package oracle

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"

	"github.com/iov-one/zkescrow/errors"
)

// SHA256ImageID identifies the image that commits the SHA-256 digest of
// its input.
const SHA256ImageID = "75029efa53432a9030e5e76d58fb34dfa786cd0f6182ed0741d635ff5e4f0341"

// Prover runs an image over resolved public inputs and returns the
// committed output.
type Prover interface {
	Prove(ctx context.Context, inputs [][]byte) ([]byte, error)
}

// ProverFunc is an adapter to allow the use of ordinary functions as
// provers.
type ProverFunc func(ctx context.Context, inputs [][]byte) ([]byte, error)

// Prove calls f(ctx, inputs).
func (f ProverFunc) Prove(ctx context.Context, inputs [][]byte) ([]byte, error) {
	return f(ctx, inputs)
}

// sha256InputSize is the size of the input buffer read by the image.
const sha256InputSize = 32

// SHA256Prover behaves like the SHA256ImageID image. It reads at most 32
// bytes of the first input, stops at the first NUL byte and commits the
// lowercase hex text of the SHA-256 digest of what was read.
type SHA256Prover struct{}

var _ Prover = SHA256Prover{}

// Prove implements Prover.
func (SHA256Prover) Prove(ctx context.Context, inputs [][]byte) ([]byte, error) {
	if len(inputs) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "input")
	}
	in := inputs[0]
	if len(in) > sha256InputSize {
		in = in[:sha256InputSize]
	}
	if i := bytes.IndexByte(in, 0); i >= 0 {
		in = in[:i]
	}
	if !utf8.Valid(in) {
		return nil, errors.Wrap(errors.ErrInvalidInput, "input is not UTF-8 text")
	}
	digest := sha256.Sum256(in)
	out := make([]byte, hex.EncodedLen(len(digest)))
	hex.Encode(out, digest[:])
	return out, nil
}

// InputFetcher resolves an input reference to the input bytes.
type InputFetcher interface {
	Fetch(ctx context.Context, ref InputRef) ([]byte, error)
}

// InlineFetcher resolves public inputs to the referenced bytes. Inputs
// referenced by URL are expected to carry the input itself. Private inputs
// cannot be resolved.
type InlineFetcher struct{}

var _ InputFetcher = InlineFetcher{}

// Fetch implements InputFetcher.
func (InlineFetcher) Fetch(ctx context.Context, ref InputRef) ([]byte, error) {
	switch ref.Type {
	case InputPublicData, InputURL:
		return ref.Data, nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidType, "input type %d", ref.Type)
	}
}
