package escrow

import (
	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/errors"
	"github.com/iov-one/zkescrow/gconf"
)

// Initializer fulfils the Initializer interface to load the escrow
// configuration from the genesis file.
type Initializer struct{}

var _ zkescrow.Initializer = Initializer{}

// FromGenesis stores the configuration found under conf.escrow. The
// default configuration is stored if the genesis does not provide one.
func (Initializer) FromGenesis(opts zkescrow.Options, db zkescrow.KVStore) error {
	conf := DefaultConfiguration()
	switch err := gconf.InitConfig(db, opts, configPkg, &conf); {
	case errors.ErrNotFound.Is(err):
		if err := gconf.Save(db, configPkg, &conf); err != nil {
			return errors.Wrap(err, "save default configuration")
		}
	case err != nil:
		return err
	}
	return nil
}
