package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"
)

func cmdSubmitTransaction(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read binary serialized transaction from standard input and execute it on the
local ledger. On success the ledger advances by one slot and the transaction
id is printed.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl    = fl.String("home", defaultHome(), "Directory of the local ledger. You can use ZKESCROW_HOME environment variable to set it.")
		logFl     = fl.String("log-level", env("ZKESCROW_LOG_LEVEL", "error"), "Log level: debug, info, error or none.")
		timeoutFl = fl.Duration("timeout", 30*time.Second, "Execution timeout.")
	)
	fl.Parse(args)

	tx, err := readTx(input)
	if err != nil {
		return err
	}
	logger, err := newLogger(*logFl)
	if err != nil {
		return err
	}
	n, err := openNode(*homeFl, logger)
	if err != nil {
		return err
	}
	defer n.close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFl)
	defer cancel()

	res, err := n.ledger.Submit(ctx, tx)
	if err != nil {
		return fmt.Errorf("cannot submit transaction: %s", err)
	}
	if _, err := n.ledger.AdvanceSlot(1); err != nil {
		return err
	}
	if err := n.commit(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(output, "%X\t%d\n", res.ID, res.Slot)
	return err
}
