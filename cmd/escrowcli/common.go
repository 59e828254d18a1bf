package main

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/crypto"
	"github.com/iov-one/zkescrow/ledger"
	"github.com/iov-one/zkescrow/store/iavl"
	"github.com/iov-one/zkescrow/x/escrow"
	"github.com/iov-one/zkescrow/x/oracle"
	"github.com/iov-one/zkescrow/x/system"
	"github.com/tendermint/tendermint/libs/log"
)

// node is a local ledger with all programs registered.
type node struct {
	ledger *ledger.Ledger
	db     *iavl.CommitStore
	conf   escrow.Configuration
}

// openNode loads the ledger state stored in the home directory.
func openNode(home string, logger log.Logger) (*node, error) {
	if err := os.MkdirAll(home, 0700); err != nil {
		return nil, fmt.Errorf("cannot create home directory: %s", err)
	}
	db, err := iavl.NewCommitStore(home, "zkescrow")
	if err != nil {
		return nil, err
	}
	if err := db.LoadLatestVersion(); err != nil {
		db.Close()
		return nil, err
	}
	n, err := newNode(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return n, nil
}

func newNode(db *iavl.CommitStore, logger log.Logger) (*node, error) {
	l, err := ledger.New(db, logger)
	if err != nil {
		return nil, fmt.Errorf("cannot load ledger: %s", err)
	}
	conf, err := escrow.LoadConfiguration(db)
	if err != nil {
		return nil, fmt.Errorf("cannot load escrow configuration: %s", err)
	}
	if err := l.Register("system", zkescrow.SystemProgramID, system.Program{}); err != nil {
		return nil, err
	}
	if err := l.Register("oracle", conf.OracleProgram, oracle.Program{}); err != nil {
		return nil, err
	}
	if err := l.Register("escrow", escrow.DefaultProgramID, escrow.NewProcessor(conf)); err != nil {
		return nil, err
	}
	return &node{ledger: l, db: db, conf: conf}, nil
}

// commit persists the ledger state.
func (n *node) commit() error {
	if _, err := n.ledger.Commit(); err != nil {
		return fmt.Errorf("cannot commit: %s", err)
	}
	return nil
}

func (n *node) close() {
	n.db.Close()
}

// newLogger returns a logger writing to stderr, filtered to given level.
func newLogger(level string) (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stderr))
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewFilter(logger, opt), nil
}

// readTx deserializes a transaction from the input.
func readTx(input io.Reader) (*ledger.Transaction, error) {
	raw, err := ioutil.ReadAll(input)
	if err != nil {
		return nil, fmt.Errorf("cannot read transaction: %s", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("no input data")
	}
	var tx ledger.Transaction
	if err := tx.Unmarshal(raw); err != nil {
		return nil, fmt.Errorf("cannot deserialize transaction: %s", err)
	}
	return &tx, nil
}

// writeTx serializes the transaction to the output.
func writeTx(output io.Writer, tx *ledger.Transaction) error {
	raw, err := tx.Marshal()
	if err != nil {
		return fmt.Errorf("cannot serialize transaction: %s", err)
	}
	_, err = output.Write(raw)
	return err
}

// loadKey reads a private key file created by the keygen command.
func loadKey(path string) (*crypto.PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read private key file: %s", err)
	}
	key, err := crypto.DecodePrivateKey(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("cannot decode private key: %s", err)
	}
	return key, nil
}
