package system

import (
	"context"

	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/errors"
)

// Program is the system program. It must be registered at
// zkescrow.SystemProgramID.
type Program struct{}

var _ zkescrow.Program = Program{}

// Process implements zkescrow.Program.
func (Program) Process(ctx context.Context, rt zkescrow.Runtime, accounts []*zkescrow.AccountInfo, data []byte) error {
	msg, err := decode(data)
	if err != nil {
		return err
	}
	switch msg := msg.(type) {
	case *CreateAccountMsg:
		return createAccount(rt, accounts, msg)
	case *AssignMsg:
		return assign(rt, accounts, msg)
	case *TransferMsg:
		return transfer(rt, accounts, msg)
	default:
		return errors.Wrapf(errors.ErrHuman, "unhandled %T", msg)
	}
}

func createAccount(rt zkescrow.Runtime, accounts []*zkescrow.AccountInfo, msg *CreateAccountMsg) error {
	if len(accounts) < 2 {
		return errors.ErrNotEnoughAccounts
	}
	payer, to := accounts[0], accounts[1]
	if err := payer.RequireSigner(); err != nil {
		return err
	}
	if err := to.RequireSigner(); err != nil {
		return err
	}
	if to.Lamports != 0 || !to.DataIsEmpty() || !to.IsOwnedBy(zkescrow.SystemProgramID) {
		return errors.Wrapf(errors.ErrAccountInUse, "%s", to.Key)
	}
	if msg.Space > MaxSpace {
		return errors.Field("Space", errors.ErrInvalidInput, "%d exceeds %d", msg.Space, MaxSpace)
	}
	if err := debit(payer, msg.Lamports); err != nil {
		return err
	}
	to.Lamports = msg.Lamports
	to.Data = make([]byte, msg.Space)
	to.Owner = msg.Owner

	rt.Logger().Debug("account created",
		"address", to.Key.String(),
		"owner", msg.Owner.String(),
		"space", msg.Space,
		"lamports", msg.Lamports)
	return nil
}

func assign(rt zkescrow.Runtime, accounts []*zkescrow.AccountInfo, msg *AssignMsg) error {
	if len(accounts) < 1 {
		return errors.ErrNotEnoughAccounts
	}
	acct := accounts[0]
	if err := acct.RequireSigner(); err != nil {
		return err
	}
	if !acct.IsOwnedBy(zkescrow.SystemProgramID) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s not owned by system program", acct.Key)
	}
	acct.Owner = msg.Owner
	return nil
}

func transfer(rt zkescrow.Runtime, accounts []*zkescrow.AccountInfo, msg *TransferMsg) error {
	if len(accounts) < 2 {
		return errors.ErrNotEnoughAccounts
	}
	from, to := accounts[0], accounts[1]
	if err := from.RequireSigner(); err != nil {
		return err
	}
	if err := debit(from, msg.Lamports); err != nil {
		return err
	}
	if to.Lamports+msg.Lamports < to.Lamports {
		return errors.Wrap(errors.ErrOverflow, "recipient balance")
	}
	to.Lamports += msg.Lamports

	rt.Logger().Debug("transfer",
		"from", from.Key.String(),
		"to", to.Key.String(),
		"lamports", msg.Lamports)
	return nil
}

// debit takes lamports from a system owned account that holds no data.
func debit(from *zkescrow.AccountInfo, lamports uint64) error {
	if !from.DataIsEmpty() {
		return errors.Wrapf(errors.ErrInvalidInput, "%s carries data", from.Key)
	}
	if from.Lamports < lamports {
		return errors.Wrapf(errors.ErrInsufficientAmount, "%s holds %d, need %d", from.Key, from.Lamports, lamports)
	}
	from.Lamports -= lamports
	return nil
}
