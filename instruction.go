package zkescrow

// AccountMeta describes how an account is passed to an instruction.
type AccountMeta struct {
	Address    Address `cbor:"1,keyasint" json:"address"`
	IsSigner   bool    `cbor:"2,keyasint" json:"is_signer"`
	IsWritable bool    `cbor:"3,keyasint" json:"is_writable"`
}

// Writable returns a meta of an account that is modified by the
// instruction.
func Writable(a Address, signer bool) AccountMeta {
	return AccountMeta{Address: a, IsSigner: signer, IsWritable: true}
}

// ReadOnly returns a meta of an account that is only read by the
// instruction.
func ReadOnly(a Address, signer bool) AccountMeta {
	return AccountMeta{Address: a, IsSigner: signer}
}

// Instruction is a single program call. Accounts are positional and their
// meaning is defined by the program.
type Instruction struct {
	ProgramID Address       `cbor:"1,keyasint" json:"program_id"`
	Accounts  []AccountMeta `cbor:"2,keyasint" json:"accounts"`
	Data      []byte        `cbor:"3,keyasint" json:"data"`
}
