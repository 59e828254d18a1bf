package oracle

import (
	"context"

	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/errors"
	"github.com/iov-one/zkescrow/x/system"
)

// Program is the oracle program.
type Program struct{}

var _ zkescrow.Program = Program{}

// Process implements zkescrow.Program.
func (Program) Process(ctx context.Context, rt zkescrow.Runtime, accounts []*zkescrow.AccountInfo, data []byte) error {
	if len(data) == 0 {
		return errors.Wrap(errors.ErrInvalidInstructionData, "missing tag")
	}
	tag, body := data[0], data[1:]
	switch tag {
	case TagDeploy:
		var msg DeployMsg
		if err := loadMsg(body, &msg); err != nil {
			return err
		}
		return deploy(ctx, rt, accounts, &msg)
	case TagExecuteV1:
		var msg ExecuteMsg
		if err := loadMsg(body, &msg); err != nil {
			return err
		}
		return execute(ctx, rt, accounts, &msg)
	case TagFulfill:
		var msg FulfillMsg
		if err := decode(body, &msg); err != nil {
			return errors.Wrap(errors.ErrInvalidInstructionData, err.Error())
		}
		return fulfill(ctx, rt, accounts, &msg)
	default:
		return errors.Wrapf(errors.ErrInvalidInstructionData, "unknown tag %d", tag)
	}
}

type validator interface {
	Validate() error
}

func loadMsg(raw []byte, msg validator) error {
	if err := decode(raw, msg); err != nil {
		return errors.Wrap(errors.ErrInvalidInstructionData, err.Error())
	}
	return msg.Validate()
}

func deploy(ctx context.Context, rt zkescrow.Runtime, accounts []*zkescrow.AccountInfo, msg *DeployMsg) error {
	if len(accounts) < 3 {
		return errors.ErrNotEnoughAccounts
	}
	owner, deployment := accounts[0], accounts[1]
	if err := owner.RequireSigner(); err != nil {
		return err
	}
	addr, bump, err := DeploymentAddress(rt.ProgramID(), msg.ImageID)
	if err != nil {
		return err
	}
	if !deployment.Key.Equals(addr) {
		return errors.Wrapf(errors.ErrInvalidSeeds, "deployment account %s, want %s", deployment.Key, addr)
	}
	if deployment.Lamports != 0 || !deployment.DataIsEmpty() {
		return errors.Wrapf(errors.ErrDuplicate, "image %s", msg.ImageID)
	}

	d := Deployment{ImageID: msg.ImageID, Owner: owner.Key, URL: msg.URL, Provers: msg.Provers}
	if len(d.Provers) == 0 {
		d.Provers = []zkescrow.Address{owner.Key}
	}
	space, err := recordSpace(&d, 0)
	if err != nil {
		return err
	}
	ins := system.CreateAccount(owner.Key, addr, rt.Rent().MinimumBalance(space), space, rt.ProgramID())
	if err := rt.InvokeSigned(ctx, ins, accounts, withBump(deploymentSeeds(msg.ImageID), bump)); err != nil {
		return errors.Wrap(err, "create deployment account")
	}
	if err := writeRecord(deployment.Data, kindDeployment, &d); err != nil {
		return err
	}
	rt.Logger().Info("image deployed", "image", msg.ImageID, "owner", owner.Key.String())
	return nil
}

func execute(ctx context.Context, rt zkescrow.Runtime, accounts []*zkescrow.AccountInfo, msg *ExecuteMsg) error {
	if len(accounts) < 5 {
		return errors.ErrNotEnoughAccounts
	}
	requester, payer, execution, deployment := accounts[0], accounts[1], accounts[2], accounts[3]
	if err := requester.RequireSigner(); err != nil {
		return err
	}
	if err := payer.RequireSigner(); err != nil {
		return err
	}

	if !deployment.IsOwnedBy(rt.ProgramID()) {
		return errors.Wrapf(ErrUnknownImage, "%s not deployed", msg.ImageID)
	}
	d, err := LoadDeployment(deployment.Data)
	if err != nil {
		return errors.Wrap(ErrUnknownImage, err.Error())
	}
	if d.ImageID != msg.ImageID {
		return errors.Wrapf(ErrUnknownImage, "deployment of %s", d.ImageID)
	}

	addr, bump, err := ExecutionAddress(rt.ProgramID(), requester.Key, msg.ExecutionID)
	if err != nil {
		return err
	}
	if !execution.Key.Equals(addr) {
		return errors.Wrapf(errors.ErrInvalidSeeds, "execution account %s, want %s", execution.Key, addr)
	}
	if execution.Lamports != 0 || !execution.DataIsEmpty() {
		return errors.Wrapf(ErrExecutionExists, "%q of %s", msg.ExecutionID, requester.Key)
	}

	e := Execution{
		Requester:   requester.Key,
		Payer:       payer.Key,
		ImageID:     msg.ImageID,
		ExecutionID: msg.ExecutionID,
		Inputs:      msg.Inputs,
		Tip:         msg.Tip,
		Expiry:      msg.Expiry,
		Config:      msg.Config,
		Callback:    msg.Callback,
		Bump:        bump,
		Status:      StatusPending,
	}
	space, err := recordSpace(&e, executionSlack)
	if err != nil {
		return err
	}
	reserve := rt.Rent().MinimumBalance(space)
	if reserve+e.Tip < reserve {
		return errors.Wrap(errors.ErrOverflow, "tip")
	}
	ins := system.CreateAccount(payer.Key, addr, reserve+e.Tip, space, rt.ProgramID())
	if err := rt.InvokeSigned(ctx, ins, accounts, withBump(executionSeeds(requester.Key, msg.ExecutionID), bump)); err != nil {
		return errors.Wrap(err, "create execution account")
	}
	if err := writeRecord(execution.Data, kindExecution, &e); err != nil {
		return err
	}

	rt.Logger().Info("execution requested",
		"execution", addr.String(),
		"execution_id", msg.ExecutionID,
		"image", msg.ImageID,
		"tip", msg.Tip,
		"expiry", msg.Expiry)
	return nil
}

func fulfill(ctx context.Context, rt zkescrow.Runtime, accounts []*zkescrow.AccountInfo, msg *FulfillMsg) error {
	if len(accounts) < 3 {
		return errors.ErrNotEnoughAccounts
	}
	prover, execution, deployment := accounts[0], accounts[1], accounts[2]
	if err := prover.RequireSigner(); err != nil {
		return err
	}
	if !execution.IsOwnedBy(rt.ProgramID()) {
		return errors.Wrapf(errors.ErrNotFound, "execution %s", execution.Key)
	}
	e, err := LoadExecution(execution.Data)
	if err != nil {
		return err
	}
	if e.Status != StatusPending {
		return errors.Wrapf(ErrNotPending, "execution %s is %s", execution.Key, e.Status)
	}

	addr, _, err := DeploymentAddress(rt.ProgramID(), e.ImageID)
	if err != nil {
		return err
	}
	if !deployment.Key.Equals(addr) || !deployment.IsOwnedBy(rt.ProgramID()) {
		return errors.Wrapf(ErrUnknownImage, "deployment account %s, want %s", deployment.Key, addr)
	}
	d, err := LoadDeployment(deployment.Data)
	if err != nil {
		return errors.Wrap(ErrUnknownImage, err.Error())
	}
	if !d.IsProver(prover.Key) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is not a prover of %s", prover.Key, e.ImageID)
	}

	log := rt.Logger().With("execution", execution.Key.String(), "execution_id", e.ExecutionID)

	// Late work is not paid and the requester is never called back.
	if e.IsExpired(rt.Slot()) {
		e.Status = StatusExpired
		if err := writeRecord(execution.Data, kindExecution, e); err != nil {
			return err
		}
		log.Info("execution expired", "expiry", e.Expiry, "slot", rt.Slot())
		return nil
	}

	if execution.Lamports < e.Tip {
		return errors.Wrapf(errors.ErrInvalidState, "execution holds %d, tip is %d", execution.Lamports, e.Tip)
	}
	if prover.Lamports+e.Tip < prover.Lamports {
		return errors.Wrap(errors.ErrOverflow, "prover balance")
	}
	execution.Lamports -= e.Tip
	prover.Lamports += e.Tip

	proverKey := prover.Key
	e.Status = StatusCompleted
	e.Prover = &proverKey
	if err := writeRecord(execution.Data, kindExecution, e); err != nil {
		return err
	}
	log.Info("execution completed", "prover", proverKey.String(), "tip", e.Tip)

	if e.Callback == nil {
		return nil
	}
	return callback(ctx, rt, accounts, e, msg.CommittedOutputs)
}

// callback invokes the callback program of a completed execution, signed by
// the execution account.
func callback(ctx context.Context, rt zkescrow.Runtime, accounts []*zkescrow.AccountInfo, e *Execution, outputs []byte) error {
	cb := e.Callback
	if len(accounts) < 4+len(cb.ExtraAccounts) {
		return errors.Wrap(errors.ErrNotEnoughAccounts, "callback accounts")
	}
	if !accounts[3].Key.Equals(cb.ProgramID) {
		return errors.Wrapf(errors.ErrInvalidInput, "callback program %s, want %s", accounts[3].Key, cb.ProgramID)
	}
	for i, m := range cb.ExtraAccounts {
		if got := accounts[4+i].Key; !got.Equals(m.Address) {
			return errors.Field("ExtraAccounts", errors.ErrInvalidInput, "account %d is %s, want %s", i, got, m.Address)
		}
	}

	payload := Callback{ImageID: e.ImageID, ExecutionID: e.ExecutionID}
	if e.Config.ForwardOutput {
		payload.CommittedOutputs = outputs
	}
	data, err := callbackData(cb.InstructionPrefix, &payload)
	if err != nil {
		return err
	}
	execution := accounts[1].Key
	metas := make([]zkescrow.AccountMeta, 0, 1+len(cb.ExtraAccounts))
	metas = append(metas, zkescrow.ReadOnly(execution, true))
	metas = append(metas, cb.ExtraAccounts...)
	ins := zkescrow.Instruction{
		ProgramID: cb.ProgramID,
		Accounts:  metas,
		Data:      data,
	}
	seeds := withBump(executionSeeds(e.Requester, e.ExecutionID), e.Bump)
	if err := rt.InvokeSigned(ctx, ins, accounts, seeds); err != nil {
		return errors.Wrap(err, "callback")
	}
	return nil
}
