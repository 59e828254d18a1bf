package system

import (
	"encoding/binary"

	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/errors"
)

// Instruction tags.
const (
	TagCreateAccount uint32 = 0
	TagAssign        uint32 = 1
	TagTransfer      uint32 = 2
)

// MaxSpace is the maximum data size of an account.
const MaxSpace = 10 * 1024 * 1024

// CreateAccountMsg creates a new account funded by the payer.
type CreateAccountMsg struct {
	Lamports uint64
	Space    uint64
	Owner    zkescrow.Address
}

// AssignMsg changes the owner of a system owned account.
type AssignMsg struct {
	Owner zkescrow.Address
}

// TransferMsg moves lamports between two accounts.
type TransferMsg struct {
	Lamports uint64
}

// CreateAccount returns an instruction that creates the account to, with
// given space, owned by owner and funded with lamports taken from payer.
// Both accounts must sign.
func CreateAccount(payer, to zkescrow.Address, lamports, space uint64, owner zkescrow.Address) zkescrow.Instruction {
	data := make([]byte, 4+8+8+zkescrow.AddressLength)
	binary.LittleEndian.PutUint32(data[0:4], TagCreateAccount)
	binary.LittleEndian.PutUint64(data[4:12], lamports)
	binary.LittleEndian.PutUint64(data[12:20], space)
	copy(data[20:], owner[:])
	return zkescrow.Instruction{
		ProgramID: zkescrow.SystemProgramID,
		Accounts: []zkescrow.AccountMeta{
			zkescrow.Writable(payer, true),
			zkescrow.Writable(to, true),
		},
		Data: data,
	}
}

// Assign returns an instruction that assigns the account to owner.
func Assign(account, owner zkescrow.Address) zkescrow.Instruction {
	data := make([]byte, 4+zkescrow.AddressLength)
	binary.LittleEndian.PutUint32(data[0:4], TagAssign)
	copy(data[4:], owner[:])
	return zkescrow.Instruction{
		ProgramID: zkescrow.SystemProgramID,
		Accounts:  []zkescrow.AccountMeta{zkescrow.Writable(account, true)},
		Data:      data,
	}
}

// Transfer returns an instruction that moves lamports from one account to
// another.
func Transfer(from, to zkescrow.Address, lamports uint64) zkescrow.Instruction {
	data := make([]byte, 4+8)
	binary.LittleEndian.PutUint32(data[0:4], TagTransfer)
	binary.LittleEndian.PutUint64(data[4:12], lamports)
	return zkescrow.Instruction{
		ProgramID: zkescrow.SystemProgramID,
		Accounts: []zkescrow.AccountMeta{
			zkescrow.Writable(from, true),
			zkescrow.Writable(to, false),
		},
		Data: data,
	}
}

// decode returns one of the *Msg types.
func decode(data []byte) (interface{}, error) {
	if len(data) < 4 {
		return nil, errors.Wrap(errors.ErrInvalidInstructionData, "missing tag")
	}
	tag, body := binary.LittleEndian.Uint32(data[0:4]), data[4:]
	switch tag {
	case TagCreateAccount:
		if len(body) != 8+8+zkescrow.AddressLength {
			return nil, errors.Wrap(errors.ErrInvalidInstructionData, "create account")
		}
		msg := &CreateAccountMsg{
			Lamports: binary.LittleEndian.Uint64(body[0:8]),
			Space:    binary.LittleEndian.Uint64(body[8:16]),
		}
		copy(msg.Owner[:], body[16:])
		return msg, nil
	case TagAssign:
		if len(body) != zkescrow.AddressLength {
			return nil, errors.Wrap(errors.ErrInvalidInstructionData, "assign")
		}
		msg := &AssignMsg{}
		copy(msg.Owner[:], body)
		return msg, nil
	case TagTransfer:
		if len(body) != 8 {
			return nil, errors.Wrap(errors.ErrInvalidInstructionData, "transfer")
		}
		return &TransferMsg{Lamports: binary.LittleEndian.Uint64(body)}, nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInstructionData, "unknown tag %d", tag)
	}
}
