package ledger

import (
	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/errors"
	"github.com/iov-one/zkescrow/gconf"
)

// GenesisAccount is an account created by the genesis file.
type GenesisAccount struct {
	Address  zkescrow.Address  `json:"address"`
	Lamports uint64            `json:"lamports"`
	Owner    *zkescrow.Address `json:"owner,omitempty"`
	Data     []byte            `json:"data,omitempty"`
}

// Initializer fulfils the zkescrow.Initializer interface to load the ledger
// configuration and initial accounts from the genesis file.
type Initializer struct{}

var _ zkescrow.Initializer = Initializer{}

// FromGenesis will parse the configuration and initial account info from
// genesis and save it to the database. The configuration is optional and
// defaults to DefaultConfiguration.
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

	var accounts []GenesisAccount
	if err := opts.ReadOptions("accounts", &accounts); err != nil {
		return err
	}
	for i, ga := range accounts {
		acct, err := loadAccount(db, ga.Address)
		if err != nil {
			return err
		}
		if !acct.IsEmpty() {
			return errors.Wrapf(errors.ErrDuplicate, "account %d: %s", i, ga.Address)
		}
		acct.Lamports = ga.Lamports
		acct.Data = ga.Data
		if ga.Owner != nil {
			acct.Owner = *ga.Owner
		}
		if err := saveAccount(db, ga.Address, acct); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
	}
	return nil
}
