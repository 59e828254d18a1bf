package oracle

import (
	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/errors"
)

// Callback is the payload delivered to the callback program once an
// execution is fulfilled.
type Callback struct {
	ImageID     string `cbor:"1,keyasint" json:"image_id"`
	ExecutionID string `cbor:"2,keyasint" json:"execution_id"`
	// CommittedOutputs is empty unless the execution was configured to
	// forward the output.
	CommittedOutputs []byte `cbor:"3,keyasint" json:"committed_outputs"`
}

// callbackData returns the instruction data of a callback. The prefix
// selects the instruction of the callback program.
func callbackData(prefix []byte, cb *Callback) ([]byte, error) {
	raw, err := encode(cb)
	if err != nil {
		return nil, err
	}
	data := make([]byte, 0, len(prefix)+len(raw))
	data = append(data, prefix...)
	return append(data, raw...), nil
}

// HandleCallback authenticates a callback received by a program and
// returns its payload. Data must not include the instruction prefix.
//
// The first account must be the execution account the program expects a
// result from and it must have signed the invocation. Only the oracle
// program can sign for an execution account, so a callback that passes
// this check was produced by the oracle for that execution. The image of
// the fulfilled execution must be the expected one.
func HandleCallback(imageID string, execution zkescrow.Address, accounts []*zkescrow.AccountInfo, data []byte) (*Callback, error) {
	if len(accounts) == 0 {
		return nil, errors.Wrap(ErrInvalidCallback, "no execution account")
	}
	if !accounts[0].Key.Equals(execution) {
		return nil, errors.Wrapf(ErrInvalidCallback, "execution account %s, want %s", accounts[0].Key, execution)
	}
	if !accounts[0].IsSigner {
		return nil, errors.Wrap(ErrInvalidCallback, "execution account did not sign")
	}
	var cb Callback
	if err := decode(data, &cb); err != nil {
		return nil, errors.Wrap(ErrInvalidCallback, err.Error())
	}
	if cb.ImageID != imageID {
		return nil, errors.Wrapf(ErrInvalidCallback, "image %q, want %q", cb.ImageID, imageID)
	}
	return &cb, nil
}
