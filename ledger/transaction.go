package ledger

import (
	"crypto/sha256"

	"github.com/fxamacker/cbor/v2"
	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/crypto"
	"github.com/iov-one/zkescrow/errors"
)

// Message is the signed part of a transaction.
type Message struct {
	// Nonce makes otherwise identical messages distinct. The ledger
	// refuses to execute the same message twice.
	Nonce        uint64                 `cbor:"1,keyasint" json:"nonce"`
	Instructions []zkescrow.Instruction `cbor:"2,keyasint" json:"instructions"`
}

// Signature is created by the account Signer over the message sign bytes.
type Signature struct {
	Signer zkescrow.Address `cbor:"1,keyasint" json:"signer"`
	Sig    []byte           `cbor:"2,keyasint" json:"sig"`
}

// Transaction is a signed list of instructions executed atomically.
type Transaction struct {
	Message    Message     `cbor:"1,keyasint" json:"message"`
	Signatures []Signature `cbor:"2,keyasint" json:"signatures"`
}

var encMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

// NewTransaction returns an unsigned transaction.
func NewTransaction(nonce uint64, instructions ...zkescrow.Instruction) *Transaction {
	return &Transaction{
		Message: Message{
			Nonce:        nonce,
			Instructions: instructions,
		},
	}
}

// SignBytes returns the canonical representation of the message.
func (tx *Transaction) SignBytes() ([]byte, error) {
	raw, err := encMode.Marshal(&tx.Message)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return raw, nil
}

// ID returns the hash of the message. Signatures are not part of the ID.
func (tx *Transaction) ID() ([]byte, error) {
	raw, err := tx.SignBytes()
	if err != nil {
		return nil, err
	}
	id := sha256.Sum256(raw)
	return id[:], nil
}

// Sign appends a signature of every given signer.
func (tx *Transaction) Sign(signers ...crypto.Signer) error {
	raw, err := tx.SignBytes()
	if err != nil {
		return err
	}
	for _, s := range signers {
		sig, err := s.Sign(raw)
		if err != nil {
			return errors.Wrapf(err, "sign with %s", s.Address())
		}
		tx.Signatures = append(tx.Signatures, Signature{Signer: s.Address(), Sig: sig})
	}
	return nil
}

// RequiredSigners returns all accounts marked as signers by any of the
// instructions, in order of appearance.
func (tx *Transaction) RequiredSigners() []zkescrow.Address {
	var res []zkescrow.Address
	seen := make(map[zkescrow.Address]bool)
	for _, ins := range tx.Message.Instructions {
		for _, m := range ins.Accounts {
			if m.IsSigner && !seen[m.Address] {
				seen[m.Address] = true
				res = append(res, m.Address)
			}
		}
	}
	return res
}

// Verify checks all signatures and returns the set of accounts that signed
// the transaction. It fails if any signature is invalid or any required
// signer did not sign.
func (tx *Transaction) Verify() (map[zkescrow.Address]bool, error) {
	if len(tx.Message.Instructions) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "instructions")
	}
	raw, err := tx.SignBytes()
	if err != nil {
		return nil, err
	}
	signed := make(map[zkescrow.Address]bool, len(tx.Signatures))
	for i, s := range tx.Signatures {
		if !crypto.Verify(s.Signer, raw, s.Sig) {
			return nil, errors.Wrapf(errors.ErrUnauthorized, "invalid signature %d of %s", i, s.Signer)
		}
		signed[s.Signer] = true
	}
	for _, a := range tx.RequiredSigners() {
		if !signed[a] {
			return nil, errors.Wrapf(errors.ErrMissingSignature, "account %s", a)
		}
	}
	return signed, nil
}

// Marshal serializes the transaction.
func (tx *Transaction) Marshal() ([]byte, error) {
	raw, err := encMode.Marshal(tx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return raw, nil
}

// Unmarshal loads a transaction serialized by Marshal.
func (tx *Transaction) Unmarshal(raw []byte) error {
	if err := cbor.Unmarshal(raw, tx); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return nil
}
