package ledger

import (
	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/errors"
	"github.com/iov-one/zkescrow/gconf"
)

const configPkg = "ledger"

// Configuration holds the runtime parameters of the ledger.
type Configuration struct {
	LamportsPerByteYear uint64 `cbor:"1,keyasint" json:"lamports_per_byte_year"`
	ExemptionThreshold  uint64 `cbor:"2,keyasint" json:"exemption_threshold"`
	// MaxCallDepth limits how deep cross program invocations can be
	// nested. A top level instruction is at depth 1.
	MaxCallDepth uint32 `cbor:"3,keyasint" json:"max_call_depth"`
	StartSlot    uint64 `cbor:"4,keyasint" json:"start_slot"`
}

var _ gconf.Configuration = (*Configuration)(nil)

// DefaultConfiguration returns the configuration used when none was
// provided in the genesis.
func DefaultConfiguration() Configuration {
	r := zkescrow.DefaultRent()
	return Configuration{
		LamportsPerByteYear: r.LamportsPerByteYear,
		ExemptionThreshold:  r.ExemptionThreshold,
		MaxCallDepth:        5,
	}
}

// Rent returns the rent parameters.
func (c *Configuration) Rent() zkescrow.Rent {
	return zkescrow.Rent{
		LamportsPerByteYear: c.LamportsPerByteYear,
		ExemptionThreshold:  c.ExemptionThreshold,
	}
}

// Validate implements gconf.ValidMarshaler.
func (c *Configuration) Validate() error {
	var errs error
	if c.MaxCallDepth == 0 || c.MaxCallDepth > 64 {
		errs = errors.AppendField(errs, "MaxCallDepth", errors.ErrInvalidInput)
	}
	if c.ExemptionThreshold == 0 {
		errs = errors.AppendField(errs, "ExemptionThreshold", errors.ErrInvalidInput)
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

// loadConfiguration returns the stored configuration or the default one.
func loadConfiguration(db gconf.ReadStore) (Configuration, error) {
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
