package oracle

import (
	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/errors"
)

// DefaultProgramID is the address the oracle program is registered at
// unless configured otherwise.
var DefaultProgramID = zkescrow.MustParseAddress("BoNsHRcyLLNdtnoDf8hiCNZpyehMC4FDMxs6NTxFi3ew")

// Instruction tags.
const (
	TagDeploy    byte = 0
	TagExecuteV1 byte = 1
	TagFulfill   byte = 2
)

const (
	// MaxExecutionIDLength is limited by the seed length of the
	// execution account.
	MaxExecutionIDLength = zkescrow.MaxSeedLength
	// MaxImageIDLength is the longest accepted image id.
	MaxImageIDLength = 128
	// MaxInputs is the maximum number of inputs of a single execution.
	MaxInputs = 8
	// MaxProvers is the maximum number of provers of an image.
	MaxProvers = 16
)

// InputType tells a prover how to resolve an input.
type InputType uint8

const (
	// InputPublicData carries the input inline.
	InputPublicData InputType = iota
	// InputURL references the input. Resolved by an InputFetcher.
	InputURL
	// InputPrivate references input that is never published.
	InputPrivate
)

// InputRef is a single input of an execution.
type InputRef struct {
	Type InputType `cbor:"1,keyasint" json:"type"`
	Data []byte    `cbor:"2,keyasint" json:"data"`
}

func PublicDataInput(data []byte) InputRef {
	return InputRef{Type: InputPublicData, Data: data}
}

func URLInput(url []byte) InputRef {
	return InputRef{Type: InputURL, Data: url}
}

func PrivateInput(url []byte) InputRef {
	return InputRef{Type: InputPrivate, Data: url}
}

// IsPublic returns true if the input can be resolved by anyone.
func (r InputRef) IsPublic() bool {
	return r.Type != InputPrivate
}

// ExecutionConfig controls how the prover handles inputs and outputs.
type ExecutionConfig struct {
	VerifyInputHash bool   `cbor:"1,keyasint" json:"verify_input_hash"`
	InputHash       []byte `cbor:"2,keyasint,omitempty" json:"input_hash,omitempty"`
	// ForwardOutput includes the committed output in the callback.
	ForwardOutput bool `cbor:"3,keyasint" json:"forward_output"`
}

// CallbackConfig describes the instruction invoked when an execution is
// fulfilled. The execution account is always passed first, as a signer,
// followed by the extra accounts.
type CallbackConfig struct {
	ProgramID         zkescrow.Address       `cbor:"1,keyasint" json:"program_id"`
	InstructionPrefix []byte                 `cbor:"2,keyasint" json:"instruction_prefix"`
	ExtraAccounts     []zkescrow.AccountMeta `cbor:"3,keyasint" json:"extra_accounts"`
}

// DeployMsg registers an image. Without provers the owner is the only
// account allowed to fulfill executions.
type DeployMsg struct {
	ImageID string             `cbor:"1,keyasint" json:"image_id"`
	URL     string             `cbor:"2,keyasint,omitempty" json:"url,omitempty"`
	Provers []zkescrow.Address `cbor:"3,keyasint,omitempty" json:"provers,omitempty"`
}

func (m *DeployMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "ImageID", validateImageID(m.ImageID))
	if len(m.Provers) > MaxProvers {
		errs = errors.AppendField(errs, "Provers", errors.ErrInvalidInput)
	}
	for i, p := range m.Provers {
		if p.IsZero() {
			errs = errors.Append(errs, errors.Field("Provers", errors.ErrEmpty, "prover %d", i))
		}
	}
	return errs
}

// ExecuteMsg requests an execution of a deployed image.
type ExecuteMsg struct {
	ImageID     string          `cbor:"1,keyasint" json:"image_id"`
	ExecutionID string          `cbor:"2,keyasint" json:"execution_id"`
	Inputs      []InputRef      `cbor:"3,keyasint" json:"inputs"`
	Tip         uint64          `cbor:"4,keyasint" json:"tip"`
	Expiry      uint64          `cbor:"5,keyasint" json:"expiry"`
	Config      ExecutionConfig `cbor:"6,keyasint" json:"config"`
	Callback    *CallbackConfig `cbor:"7,keyasint,omitempty" json:"callback,omitempty"`
}

func (m *ExecuteMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "ImageID", validateImageID(m.ImageID))
	switch n := len(m.ExecutionID); {
	case n == 0:
		errs = errors.AppendField(errs, "ExecutionID", errors.ErrEmpty)
	case n > MaxExecutionIDLength:
		errs = errors.AppendField(errs, "ExecutionID", errors.ErrInvalidInput)
	}
	switch n := len(m.Inputs); {
	case n == 0:
		errs = errors.AppendField(errs, "Inputs", errors.ErrEmpty)
	case n > MaxInputs:
		errs = errors.AppendField(errs, "Inputs", errors.ErrInvalidInput)
	}
	if m.Config.VerifyInputHash && len(m.Config.InputHash) == 0 {
		errs = errors.AppendField(errs, "Config.InputHash", errors.ErrEmpty)
	}
	return errs
}

// FulfillMsg resolves an execution with the output committed by the
// prover.
type FulfillMsg struct {
	CommittedOutputs []byte `cbor:"1,keyasint" json:"committed_outputs"`
}

func validateImageID(id string) error {
	switch n := len(id); {
	case n == 0:
		return errors.ErrEmpty
	case n > MaxImageIDLength:
		return errors.ErrInvalidInput
	}
	return nil
}

func instructionData(tag byte, msg interface{}) ([]byte, error) {
	raw, err := encode(msg)
	if err != nil {
		return nil, err
	}
	return append([]byte{tag}, raw...), nil
}

// Deploy returns an instruction that registers an image. The owner pays for
// the deployment account.
func Deploy(program, owner zkescrow.Address, imageID, url string, provers ...zkescrow.Address) (zkescrow.Instruction, error) {
	msg := DeployMsg{ImageID: imageID, URL: url, Provers: provers}
	if err := msg.Validate(); err != nil {
		return zkescrow.Instruction{}, err
	}
	deployment, _, err := DeploymentAddress(program, imageID)
	if err != nil {
		return zkescrow.Instruction{}, err
	}
	data, err := instructionData(TagDeploy, &msg)
	if err != nil {
		return zkescrow.Instruction{}, err
	}
	return zkescrow.Instruction{
		ProgramID: program,
		Accounts: []zkescrow.AccountMeta{
			zkescrow.Writable(owner, true),
			zkescrow.Writable(deployment, false),
			zkescrow.ReadOnly(zkescrow.SystemProgramID, false),
		},
		Data: data,
	}, nil
}

// ExecuteV1 returns an instruction that requests an execution of given
// image. The requester must sign it, the payer funds the execution account
// and the tip.
func ExecuteV1(
	program zkescrow.Address,
	requester zkescrow.Address,
	payer zkescrow.Address,
	imageID string,
	executionID string,
	inputs []InputRef,
	tip uint64,
	expiry uint64,
	conf ExecutionConfig,
	callback *CallbackConfig,
) (zkescrow.Instruction, error) {
	msg := ExecuteMsg{
		ImageID:     imageID,
		ExecutionID: executionID,
		Inputs:      inputs,
		Tip:         tip,
		Expiry:      expiry,
		Config:      conf,
		Callback:    callback,
	}
	if err := msg.Validate(); err != nil {
		return zkescrow.Instruction{}, err
	}
	execution, _, err := ExecutionAddress(program, requester, executionID)
	if err != nil {
		return zkescrow.Instruction{}, err
	}
	deployment, _, err := DeploymentAddress(program, imageID)
	if err != nil {
		return zkescrow.Instruction{}, err
	}
	data, err := instructionData(TagExecuteV1, &msg)
	if err != nil {
		return zkescrow.Instruction{}, err
	}
	return zkescrow.Instruction{
		ProgramID: program,
		Accounts: []zkescrow.AccountMeta{
			zkescrow.ReadOnly(requester, true),
			zkescrow.Writable(payer, true),
			zkescrow.Writable(execution, false),
			zkescrow.ReadOnly(deployment, false),
			zkescrow.ReadOnly(zkescrow.SystemProgramID, false),
		},
		Data: data,
	}, nil
}

// Fulfill returns an instruction that resolves an execution. All accounts
// required by the callback are included.
func Fulfill(program, prover, execution zkescrow.Address, e *Execution, outputs []byte) (zkescrow.Instruction, error) {
	data, err := instructionData(TagFulfill, &FulfillMsg{CommittedOutputs: outputs})
	if err != nil {
		return zkescrow.Instruction{}, err
	}
	deployment, _, err := DeploymentAddress(program, e.ImageID)
	if err != nil {
		return zkescrow.Instruction{}, err
	}
	metas := []zkescrow.AccountMeta{
		zkescrow.Writable(prover, true),
		zkescrow.Writable(execution, false),
		zkescrow.ReadOnly(deployment, false),
	}
	if e.Callback != nil {
		metas = append(metas, zkescrow.ReadOnly(e.Callback.ProgramID, false))
		for _, m := range e.Callback.ExtraAccounts {
			metas = append(metas, zkescrow.AccountMeta{Address: m.Address, IsWritable: m.IsWritable})
		}
	}
	return zkescrow.Instruction{
		ProgramID: program,
		Accounts:  metas,
		Data:      data,
	}, nil
}
