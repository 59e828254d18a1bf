package gconf

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/errors"
)

// ReadStore is the part of the store needed to load a configuration.
type ReadStore interface {
	Get(key []byte) ([]byte, error)
}

// Store is the part of the store needed to save a configuration.
type Store interface {
	ReadStore
	Set(key, value []byte) error
}

// ValidMarshaler is a configuration that can be saved.
type ValidMarshaler interface {
	Marshal() ([]byte, error)
	Validate() error
}

// Unmarshaler is a configuration that can be loaded.
type Unmarshaler interface {
	Unmarshal(raw []byte) error
}

// Configuration can be both saved and loaded.
type Configuration interface {
	ValidMarshaler
	Unmarshaler
}

func key(pkg string) []byte {
	return []byte("_c:" + pkg)
}

// Save validates the configuration and stores it as the configuration of
// given package, replacing the previous one.
func Save(db Store, pkg string, src ValidMarshaler) error {
	if err := src.Validate(); err != nil {
		return errors.Wrapf(err, "invalid %s configuration", pkg)
	}
	raw, err := src.Marshal()
	if err != nil {
		return errors.Wrapf(err, "marshal %s configuration", pkg)
	}
	return db.Set(key(pkg), raw)
}

// Load reads the configuration of given package into dst. It fails with
// ErrNotFound if none was saved.
func Load(db ReadStore, pkg string, dst Unmarshaler) error {
	raw, err := db.Get(key(pkg))
	switch {
	case err != nil:
		return err
	case raw == nil:
		return errors.Wrapf(errors.ErrNotFound, "%s configuration", pkg)
	}
	if err := dst.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "unmarshal %s configuration", pkg)
	}
	return nil
}

// InitConfig decodes the JSON found under conf.<pkg> in the genesis options
// into conf and saves it. Fields missing from the JSON keep the values conf
// was given with. It fails with ErrNotFound if the genesis has no
// configuration for the package.
func InitConfig(db Store, opts zkescrow.Options, pkg string, conf Configuration) error {
	var all zkescrow.Options
	if err := opts.ReadOptions("conf", &all); err != nil {
		return err
	}
	if _, ok := all[pkg]; !ok {
		return errors.Wrapf(errors.ErrNotFound, "no %s configuration in genesis", pkg)
	}
	if err := all.ReadOptions(pkg, conf); err != nil {
		return err
	}
	return Save(db, pkg, conf)
}

var encMode = func() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Marshal encodes a configuration as canonical CBOR. Configuration types
// use it to implement ValidMarshaler.
func Marshal(src interface{}) ([]byte, error) {
	raw, err := encMode.Marshal(src)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidType, err.Error())
	}
	return raw, nil
}

// Unmarshal decodes a configuration encoded by Marshal.
func Unmarshal(raw []byte, dst interface{}) error {
	if err := cbor.Unmarshal(raw, dst); err != nil {
		return errors.Wrap(errors.ErrInvalidType, err.Error())
	}
	return nil
}
