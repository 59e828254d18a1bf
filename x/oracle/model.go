package oracle

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/fxamacker/cbor/v2"
	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/errors"
)

// Status of an execution.
type Status uint8

const (
	StatusPending Status = iota
	StatusCompleted
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusCompleted:
		return "completed"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Deployment is stored in the image deployment account. An execution can be
// requested only for a deployed image and fulfilled only by one of its
// provers.
type Deployment struct {
	ImageID string             `cbor:"1,keyasint" json:"image_id"`
	Owner   zkescrow.Address   `cbor:"2,keyasint" json:"owner"`
	URL     string             `cbor:"3,keyasint,omitempty" json:"url,omitempty"`
	Provers []zkescrow.Address `cbor:"4,keyasint" json:"provers"`
}

// IsProver returns true if a is allowed to fulfill executions of the image.
func (d *Deployment) IsProver(a zkescrow.Address) bool {
	for _, p := range d.Provers {
		if p.Equals(a) {
			return true
		}
	}
	return false
}

// Execution is stored in the execution account. It is created by ExecuteV1
// and resolved by Fulfill.
type Execution struct {
	Requester   zkescrow.Address  `cbor:"1,keyasint" json:"requester"`
	Payer       zkescrow.Address  `cbor:"2,keyasint" json:"payer"`
	ImageID     string            `cbor:"3,keyasint" json:"image_id"`
	ExecutionID string            `cbor:"4,keyasint" json:"execution_id"`
	Inputs      []InputRef        `cbor:"5,keyasint" json:"inputs"`
	Tip         uint64            `cbor:"6,keyasint" json:"tip"`
	Expiry      uint64            `cbor:"7,keyasint" json:"expiry"`
	Config      ExecutionConfig   `cbor:"8,keyasint" json:"config"`
	Callback    *CallbackConfig   `cbor:"9,keyasint,omitempty" json:"callback,omitempty"`
	Bump        uint8             `cbor:"10,keyasint" json:"bump"`
	Status      Status            `cbor:"11,keyasint" json:"status"`
	Prover      *zkescrow.Address `cbor:"12,keyasint,omitempty" json:"prover,omitempty"`
}

// IsExpired returns true if the execution can no longer be fulfilled at
// given slot.
func (e *Execution) IsExpired(slot uint64) bool {
	return slot > e.Expiry
}

const (
	kindDeployment byte = 1
	kindExecution  byte = 2

	// recordHeader is the kind and the length of the encoded record.
	recordHeader = 1 + 4

	// executionSlack is reserved in every execution account for the
	// fields set when the execution is resolved.
	executionSlack = 64
)

var encMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

func encode(v interface{}) ([]byte, error) {
	raw, err := encMode.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidType, err.Error())
	}
	return raw, nil
}

func decode(raw []byte, v interface{}) error {
	if err := cbor.Unmarshal(raw, v); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return nil
}

// recordSpace returns the account space required to store given record.
func recordSpace(v interface{}, slack int) (uint64, error) {
	raw, err := encode(v)
	if err != nil {
		return 0, err
	}
	return uint64(recordHeader + len(raw) + slack), nil
}

// writeRecord serializes v into account data. The rest of dst is zeroed.
func writeRecord(dst []byte, kind byte, v interface{}) error {
	raw, err := encode(v)
	if err != nil {
		return err
	}
	if len(dst) < recordHeader+len(raw) {
		return errors.Wrapf(errors.ErrBufferTooSmall, "record requires %d bytes, got %d", recordHeader+len(raw), len(dst))
	}
	dst[0] = kind
	binary.LittleEndian.PutUint32(dst[1:recordHeader], uint32(len(raw)))
	n := copy(dst[recordHeader:], raw)
	for i := recordHeader + n; i < len(dst); i++ {
		dst[i] = 0
	}
	return nil
}

// readRecord loads a record of given kind from account data.
func readRecord(src []byte, kind byte, v interface{}) error {
	if len(src) < recordHeader {
		return errors.Wrap(errors.ErrBufferTooSmall, "record header")
	}
	if src[0] != kind {
		return errors.Wrapf(errors.ErrInvalidType, "record kind %d", src[0])
	}
	size := binary.LittleEndian.Uint32(src[1:recordHeader])
	if uint64(size) > uint64(len(src)-recordHeader) {
		return errors.Wrapf(errors.ErrInvalidState, "record length %d", size)
	}
	return decode(src[recordHeader:recordHeader+int(size)], v)
}

// LoadExecution decodes the data of an execution account.
func LoadExecution(data []byte) (*Execution, error) {
	var e Execution
	if err := readRecord(data, kindExecution, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// LoadDeployment decodes the data of an image deployment account.
func LoadDeployment(data []byte) (*Deployment, error) {
	var d Deployment
	if err := readRecord(data, kindDeployment, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

var (
	deploymentSeed = []byte("deployment")
	executionSeed  = []byte("execution")
)

func deploymentSeeds(imageID string) [][]byte {
	h := sha256.Sum256([]byte(imageID))
	return [][]byte{deploymentSeed, h[:]}
}

func executionSeeds(requester zkescrow.Address, executionID string) [][]byte {
	return [][]byte{executionSeed, requester[:], []byte(executionID)}
}

// DeploymentAddress returns the address of the deployment account of given
// image.
func DeploymentAddress(program zkescrow.Address, imageID string) (zkescrow.Address, uint8, error) {
	return zkescrow.FindProgramAddress(deploymentSeeds(imageID), program)
}

// ExecutionAddress returns the address of the execution account created for
// a request. Execution ids are scoped to the requester.
func ExecutionAddress(program, requester zkescrow.Address, executionID string) (zkescrow.Address, uint8, error) {
	return zkescrow.FindProgramAddress(executionSeeds(requester, executionID), program)
}

// withBump returns seeds extended with the bump.
func withBump(seeds [][]byte, bump uint8) [][]byte {
	return append(seeds, []byte{bump})
}
