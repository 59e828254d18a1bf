package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/iov-one/zkescrow/crypto"
	"github.com/iov-one/zkescrow/x/escrow"
)

func cmdKeygen(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Generate a new private key.

When successful a new file containing the hex encoded private key is
created. This command fails if the private key file already exists.

By default a random key is generated. Provide a hex encoded master seed to
derive the key using the bip44 path instead.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use ZKESCROW_PRIV_KEY environment variable to set it.")
		seedFl = fl.String("seed", "", "Hex encoded master seed to derive the key from.")
		pathFl = fl.String("path", crypto.DefaultDerivationPath, "Derivation path used with -seed.")
	)
	fl.Parse(args)

	if _, err := os.Stat(*keyPathFl); !os.IsNotExist(err) {
		// Do not allow to overwrite already existing private key. User
		// must manually delete it first to ensure we do not delete
		// such crucial data by an accident (bad command usage).
		return fmt.Errorf("private key file %q already exists, delete this file and try again", *keyPathFl)
	}

	key := crypto.GenPrivKeyEd25519()
	if *seedFl != "" {
		seed, err := hex.DecodeString(*seedFl)
		if err != nil {
			return fmt.Errorf("cannot decode seed: %s", err)
		}
		if key, err = crypto.DeriveKey(*pathFl, seed); err != nil {
			return fmt.Errorf("cannot derive key: %s", err)
		}
	}

	fd, err := os.OpenFile(*keyPathFl, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("cannot create private key file: %s", err)
	}
	defer fd.Close()

	if _, err := fmt.Fprintln(fd, key.String()); err != nil {
		return fmt.Errorf("cannot write private key: %s", err)
	}
	if err := fd.Close(); err != nil {
		return fmt.Errorf("cannot close private key file: %s", err)
	}
	_, err = fmt.Fprintln(output, key.Address())
	return err
}

func cmdKeyaddr(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out the address associated with your private key.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use ZKESCROW_PRIV_KEY environment variable to set it.")
	)
	fl.Parse(args)

	key, err := loadKey(*keyPathFl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(output, key.Address())
	return err
}

func cmdDerive(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out the escrow account address of a seed and, if an execution id is
given, the tracker and oracle execution account addresses of a claim.
`)
		fl.PrintDefaults()
	}
	var (
		seedFl = fl.String("seed", "", "Seed of the escrow.")
		execFl = fl.String("execution-id", "", "Execution id of a claim.")
	)
	fl.Parse(args)

	addr, bump, err := escrow.EscrowAddress(escrow.DefaultProgramID, []byte(*seedFl))
	if err != nil {
		return fmt.Errorf("cannot derive escrow address: %s", err)
	}
	fmt.Fprintf(output, "escrow\t%s\t%d\n", addr, bump)

	if *execFl == "" {
		return nil
	}
	tracker, bump, err := escrow.TrackerAddress(escrow.DefaultProgramID, *execFl)
	if err != nil {
		return fmt.Errorf("cannot derive tracker address: %s", err)
	}
	_, execution, err := escrow.ClaimAccounts(escrow.DefaultProgramID, escrow.DefaultConfiguration(), *execFl)
	if err != nil {
		return fmt.Errorf("cannot derive execution address: %s", err)
	}
	fmt.Fprintf(output, "tracker\t%s\t%d\n", tracker, bump)
	_, err = fmt.Fprintf(output, "execution\t%s\n", execution)
	return err
}
