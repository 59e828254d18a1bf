package escrow

import (
	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/errors"
	"github.com/iov-one/zkescrow/gconf"
	"github.com/iov-one/zkescrow/x/oracle"
)

const configPkg = "escrow"

// DefaultPrivateInputURL references the auxiliary private input passed to
// every execution.
const DefaultPrivateInputURL = "https://echoserver.dev/server?response=N4IgFgpghgJhBOBnEAuA2mkBjA9gOwBcJCBaAgTwAcIQAaEIgDwIHpKAbKASzxAF0+9AEY4Y5VKArVUDCMzogYUAlBlFEBEAF96G5QFdkKAEwAGU1qA"

// Configuration of the escrow program.
type Configuration struct {
	// ImageID of the oracle image that commits the hex text of the
	// SHA-256 digest of its input.
	ImageID string `cbor:"1,keyasint" json:"image_id"`
	// PrivateInputURL is passed as the private input of every
	// execution.
	PrivateInputURL string `cbor:"2,keyasint" json:"private_input_url"`
	// OracleProgram is the address of the oracle program.
	OracleProgram zkescrow.Address `cbor:"3,keyasint" json:"oracle_program"`
}

var _ gconf.Configuration = (*Configuration)(nil)

// DefaultConfiguration returns the configuration used when none was
// provided in the genesis.
func DefaultConfiguration() Configuration {
	return Configuration{
		ImageID:         oracle.SHA256ImageID,
		PrivateInputURL: DefaultPrivateInputURL,
		OracleProgram:   oracle.DefaultProgramID,
	}
}

// Validate implements gconf.ValidMarshaler.
func (c *Configuration) Validate() error {
	var errs error
	if c.ImageID == "" {
		errs = errors.AppendField(errs, "ImageID", errors.ErrEmpty)
	}
	if c.PrivateInputURL == "" {
		errs = errors.AppendField(errs, "PrivateInputURL", errors.ErrEmpty)
	}
	if c.OracleProgram.IsZero() {
		errs = errors.AppendField(errs, "OracleProgram", errors.ErrEmpty)
	}
	return errs
}

// Marshal implements gconf.ValidMarshaler.
func (c *Configuration) Marshal() ([]byte, error) {
	return gconf.Marshal(c)
}

// Unmarshal implements gconf.Unmarshaler.
func (c *Configuration) Unmarshal(raw []byte) error {
	return gconf.Unmarshal(raw, c)
}

// LoadConfiguration returns the stored configuration or the default one if
// none was stored.
func LoadConfiguration(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, configPkg, &conf); {
	case err == nil:
		return conf, nil
	case errors.ErrNotFound.Is(err):
		return DefaultConfiguration(), nil
	default:
		return conf, err
	}
}
