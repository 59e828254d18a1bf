package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/ledger"
	"github.com/iov-one/zkescrow/x/escrow"
	"github.com/iov-one/zkescrow/x/oracle"
)

// addressOrKey returns the address if set, otherwise the address of the key
// stored at keyPath.
func addressOrKey(addr zkescrow.Address, keyPath string) (zkescrow.Address, error) {
	if !addr.IsZero() {
		return addr, nil
	}
	key, err := loadKey(keyPath)
	if err != nil {
		return addr, err
	}
	return key.Address(), nil
}

// addressList is a flag.Value collecting every occurrence of a repeated
// address flag.
type addressList []zkescrow.Address

func (l *addressList) String() string {
	parts := make([]string, len(*l))
	for i, a := range *l {
		parts[i] = a.String()
	}
	return strings.Join(parts, ",")
}

func (l *addressList) Set(s string) error {
	var a zkescrow.Address
	if err := a.Set(s); err != nil {
		return err
	}
	*l = append(*l, a)
	return nil
}

// newNonce returns the nonce of a new transaction. Transactions with equal
// content and nonce have the same id and only the first one is accepted.
func newNonce() uint64 {
	return uint64(time.Now().UnixNano())
}

func cmdInitEscrow(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction that locks lamports in an escrow until a preimage of
the digest is proven. Calling it again with the same seed and digest adds
funds to the escrow.

Provide either the preimage, to compute the digest locally, or the hex
encoded SHA-256 digest.
`)
		fl.PrintDefaults()
	}
	var (
		initializerFl zkescrow.Address
		keyPathFl     = fl.String("key", defaultKeyPath(),
			"Path to the private key of the initializer, used if -initializer is not set.")
		seedFl     = fl.String("seed", "", "Seed of the escrow, at most 32 bytes.")
		preimageFl = fl.String("preimage", "", "Preimage of the digest.")
		digestFl   = fl.String("digest", "", "Hex encoded SHA-256 digest.")
		amountFl   = fl.Uint64("amount", 0, "Lamports to lock.")
	)
	fl.Var(&initializerFl, "initializer", "Address of the account funding the escrow.")
	fl.Parse(args)

	var hash [escrow.HashSize]byte
	switch {
	case *preimageFl != "" && *digestFl != "":
		return errors.New("use either -preimage or -digest")
	case *preimageFl != "":
		hash = escrow.Digest([]byte(*preimageFl))
	case *digestFl != "":
		d, err := escrow.ParseDigest(*digestFl)
		if err != nil {
			return err
		}
		hash = d
	default:
		return errors.New("-preimage or -digest is required")
	}

	initializer, err := addressOrKey(initializerFl, *keyPathFl)
	if err != nil {
		return err
	}
	ins, err := escrow.Initialize(escrow.DefaultProgramID, initializer, []byte(*seedFl), hash, *amountFl)
	if err != nil {
		return fmt.Errorf("cannot create instruction: %s", err)
	}
	return writeTx(output, ledger.NewTransaction(newNonce(), ins))
}

func cmdClaimEscrow(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction that requests the verification of a preimage. Once the
oracle proves that the preimage matches the digest of the escrow, the funds
are released to the receiver.

The execution id identifies the claim. A random one is used if not given.
`)
		fl.PrintDefaults()
	}
	var (
		payerFl    zkescrow.Address
		receiverFl zkescrow.Address
		keyPathFl  = fl.String("key", defaultKeyPath(),
			"Path to the private key of the payer, used if -payer is not set.")
		homeFl     = fl.String("home", defaultHome(), "Directory of the local ledger, used to read the escrow configuration.")
		seedFl     = fl.String("seed", "", "Seed of the escrow.")
		preimageFl = fl.String("preimage", "", "Preimage of the digest.")
		execFl     = fl.String("execution-id", "", "Execution id of the claim, at most 16 bytes.")
		tipFl      = fl.Uint64("tip", 0, "Lamports paid to the prover.")
		expiryFl   = fl.Uint64("expiry", 1000, "Number of slots the oracle has to fulfill the request.")
	)
	fl.Var(&payerFl, "payer", "Address of the account paying for the claim.")
	fl.Var(&receiverFl, "receiver", "Address receiving the escrowed funds.")
	fl.Parse(args)

	if receiverFl.IsZero() {
		return errors.New("-receiver is required")
	}
	payer, err := addressOrKey(payerFl, *keyPathFl)
	if err != nil {
		return err
	}
	executionID := *execFl
	if executionID == "" {
		executionID = escrow.NewExecutionID()
	}

	n, err := openNode(*homeFl, nil)
	if err != nil {
		return err
	}
	conf := n.conf
	n.close()

	ins, err := escrow.Claim(escrow.DefaultProgramID, conf, escrow.ClaimParams{
		Payer:        payer,
		Receiver:     receiverFl,
		Seed:         []byte(*seedFl),
		ExecutionID:  executionID,
		Preimage:     []byte(*preimageFl),
		Tip:          *tipFl,
		ExpiryOffset: *expiryFl,
	})
	if err != nil {
		return fmt.Errorf("cannot create instruction: %s", err)
	}
	return writeTx(output, ledger.NewTransaction(newNonce(), ins))
}

func cmdDeployImage(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction that deploys an oracle image. Executions can only be
requested for deployed images and fulfilled only by the provers of the
image. Without -prover the owner is the only prover.
`)
		fl.PrintDefaults()
	}
	var (
		ownerFl   zkescrow.Address
		proversFl addressList
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key of the owner, used if -owner is not set.")
		imageFl   = fl.String("image", oracle.SHA256ImageID, "Image id.")
		urlFl     = fl.String("url", "", "Location of the image.")
		programFl = zkescrow.Address(oracle.DefaultProgramID)
	)
	fl.Var(&ownerFl, "owner", "Address of the image owner.")
	fl.Var(&proversFl, "prover", "Address allowed to fulfill executions. Can be repeated.")
	fl.Var(&programFl, "oracle", "Address of the oracle program.")
	fl.Parse(args)

	owner, err := addressOrKey(ownerFl, *keyPathFl)
	if err != nil {
		return err
	}
	ins, err := oracle.Deploy(programFl, owner, *imageFl, *urlFl, proversFl...)
	if err != nil {
		return fmt.Errorf("cannot create instruction: %s", err)
	}
	return writeTx(output, ledger.NewTransaction(newNonce(), ins))
}

// escrowView is the JSON representation of an escrow.
type escrowView struct {
	Address     zkescrow.Address  `json:"address"`
	Lamports    uint64            `json:"lamports"`
	Seed        string            `json:"seed"`
	Amount      uint64            `json:"amount"`
	Hash        string            `json:"hash"`
	IsClaimed   bool              `json:"is_claimed"`
	Receiver    *zkescrow.Address `json:"receiver,omitempty"`
	Initializer zkescrow.Address  `json:"initializer"`
}

func cmdViewEscrow(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out the escrow created with given seed as JSON.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(), "Directory of the local ledger.")
		seedFl = fl.String("seed", "", "Seed of the escrow.")
	)
	fl.Parse(args)

	n, err := openNode(*homeFl, nil)
	if err != nil {
		return err
	}
	defer n.close()

	addr, _, err := escrow.EscrowAddress(escrow.DefaultProgramID, []byte(*seedFl))
	if err != nil {
		return err
	}
	acct, err := n.ledger.Account(addr)
	if err != nil {
		return fmt.Errorf("cannot load escrow %s: %s", addr, err)
	}
	if !acct.Owner.Equals(escrow.DefaultProgramID) {
		return fmt.Errorf("%s is not an escrow", addr)
	}
	var e escrow.Escrow
	if err := e.Unmarshal(acct.Data); err != nil {
		return fmt.Errorf("cannot decode escrow: %s", err)
	}
	view := escrowView{
		Address:     addr,
		Lamports:    acct.Lamports,
		Seed:        *seedFl,
		Amount:      e.Amount,
		Hash:        string(e.Hash[:]),
		IsClaimed:   e.IsClaimed,
		Receiver:    e.Receiver,
		Initializer: e.Initializer,
	}
	pretty, err := json.MarshalIndent(view, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot serialize: %s", err)
	}
	_, err = fmt.Fprintln(output, string(pretty))
	return err
}
