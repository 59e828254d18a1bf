package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/x/escrow"
)

func cmdGenesis(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read the JSON encoded genesis from standard input and initialize the local
ledger with it. Genesis contains the initial accounts and the configuration
of each package, for example:

  {
    "accounts": [{"address": "...", "lamports": 1000000}],
    "conf": {"escrow": {"image_id": "..."}}
  }

Configuration that is not provided is set to its default value.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(), "Directory of the local ledger. You can use ZKESCROW_HOME environment variable to set it.")
		logFl  = fl.String("log-level", env("ZKESCROW_LOG_LEVEL", "error"), "Log level: debug, info, error or none.")
	)
	fl.Parse(args)

	raw, err := ioutil.ReadAll(input)
	if err != nil {
		return fmt.Errorf("cannot read genesis: %s", err)
	}
	var opts zkescrow.Options
	if err := json.Unmarshal(raw, &opts); err != nil {
		return fmt.Errorf("cannot decode genesis: %s", err)
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

	if err := n.ledger.InitGenesis(opts, escrow.Initializer{}); err != nil {
		return fmt.Errorf("cannot initialize: %s", err)
	}
	return n.commit()
}
