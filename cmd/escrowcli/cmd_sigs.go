package main

import (
	"flag"
	"fmt"
	"io"
)

func cmdSignTransaction(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read binary serialized transaction from standard input and sign it with the
private key. Signatures already present are kept. Write the signed
transaction to standard output.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file that transaction should be signed with. You can use ZKESCROW_PRIV_KEY environment variable to set it.")
	)
	fl.Parse(args)

	key, err := loadKey(*keyPathFl)
	if err != nil {
		return err
	}
	tx, err := readTx(input)
	if err != nil {
		return err
	}
	if err := tx.Sign(key); err != nil {
		return fmt.Errorf("cannot sign transaction: %s", err)
	}
	return writeTx(output, tx)
}
