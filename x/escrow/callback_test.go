package escrow_test

import (
	"context"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/iov-one/zkescrow"
	"github.com/iov-one/zkescrow/errors"
	"github.com/iov-one/zkescrow/x/escrow"
	"github.com/iov-one/zkescrow/x/oracle"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

// callbackRuntime executes the escrow program outside of a ledger. The
// callback instruction does not invoke other programs.
type callbackRuntime struct{}

func (callbackRuntime) ProgramID() zkescrow.Address { return escrowID }
func (callbackRuntime) Slot() uint64                { return 1 }
func (callbackRuntime) Rent() zkescrow.Rent         { return zkescrow.DefaultRent() }
func (callbackRuntime) Logger() log.Logger          { return log.NewNopLogger() }

func (callbackRuntime) Invoke(context.Context, zkescrow.Instruction, []*zkescrow.AccountInfo) error {
	return errors.Wrap(errors.ErrHuman, "invoke not supported")
}

func (callbackRuntime) InvokeSigned(context.Context, zkescrow.Instruction, []*zkescrow.AccountInfo, ...[][]byte) error {
	return errors.Wrap(errors.ErrHuman, "invoke not supported")
}

type callbackAccounts struct {
	execution *zkescrow.AccountInfo
	tracker   *zkescrow.AccountInfo
	escrow    *zkescrow.AccountInfo
	receiver  *zkescrow.AccountInfo
}

func (c *callbackAccounts) list() []*zkescrow.AccountInfo {
	return []*zkescrow.AccountInfo{c.execution, c.tracker, c.escrow, c.receiver}
}

func newCallbackAccounts(t *testing.T) *callbackAccounts {
	t.Helper()
	executionAddr := zkescrow.Address{0: 0xEE, 31: 1}

	tr := escrow.ExecutionTracker{ExecutionAccount: executionAddr}
	trackerData := make([]byte, escrow.TrackerSpace)
	require.NoError(t, tr.MarshalTo(trackerData))

	e := escrow.Escrow{
		Amount:      1000,
		Hash:        escrow.Digest([]byte("abc")),
		Initializer: zkescrow.Address{0: 0x11},
	}
	copy(e.Seed[:], "s1")
	escrowData := make([]byte, escrow.EscrowSpace)
	require.NoError(t, e.MarshalTo(escrowData))

	return &callbackAccounts{
		execution: &zkescrow.AccountInfo{
			Key:      executionAddr,
			IsSigner: true,
			Account:  &zkescrow.Account{Lamports: 100, Owner: oracleID, Data: []byte{2}},
		},
		tracker: &zkescrow.AccountInfo{
			Key:        zkescrow.Address{0: 0x77, 31: 1},
			IsWritable: true,
			Account:    &zkescrow.Account{Lamports: 100, Owner: escrowID, Data: trackerData},
		},
		escrow: &zkescrow.AccountInfo{
			Key:        zkescrow.Address{0: 0x55, 31: 1},
			IsWritable: true,
			Account:    &zkescrow.Account{Lamports: 5000, Owner: escrowID, Data: escrowData},
		},
		receiver: &zkescrow.AccountInfo{
			Key:        zkescrow.Address{0: 0x99, 31: 1},
			IsWritable: true,
			Account:    &zkescrow.Account{},
		},
	}
}

func callbackData(t *testing.T, imageID string, outputs []byte) []byte {
	t.Helper()
	raw, err := cbor.Marshal(oracle.Callback{
		ImageID:          imageID,
		ExecutionID:      "ex1234567890ab",
		CommittedOutputs: outputs,
	})
	require.NoError(t, err)
	return append([]byte{escrow.OpVerifyAndRelease}, raw...)
}

func TestVerifyAndRelease(t *testing.T) {
	digest := escrow.Digest([]byte("abc"))
	valid := callbackData(t, oracle.SHA256ImageID, digest[:])

	cases := map[string]struct {
		modify  func(c *callbackAccounts) []*zkescrow.AccountInfo
		data    []byte
		wantErr *errors.Error
	}{
		"release": {
			data: valid,
		},
		"surrounding whitespace is ignored": {
			data: callbackData(t, oracle.SHA256ImageID, []byte("  "+string(digest[:])+"\n")),
		},
		"another digest": {
			data:    callbackData(t, oracle.SHA256ImageID, []byte("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ae")),
			wantErr: escrow.ErrHashMismatch,
		},
		"no output": {
			data:    callbackData(t, oracle.SHA256ImageID, nil),
			wantErr: escrow.ErrMalformedCallback,
		},
		"output is not text": {
			data:    callbackData(t, oracle.SHA256ImageID, []byte{0xff, 0xfe}),
			wantErr: escrow.ErrMalformedCallback,
		},
		"another image": {
			data:    callbackData(t, "another-image", digest[:]),
			wantErr: escrow.ErrMalformedCallback,
		},
		"payload is not a callback": {
			data:    []byte{escrow.OpVerifyAndRelease, 0xff},
			wantErr: escrow.ErrMalformedCallback,
		},
		"execution did not sign": {
			modify: func(c *callbackAccounts) []*zkescrow.AccountInfo {
				c.execution.IsSigner = false
				return c.list()
			},
			data:    valid,
			wantErr: escrow.ErrMalformedCallback,
		},
		"execution of another tracker": {
			modify: func(c *callbackAccounts) []*zkescrow.AccountInfo {
				c.execution.Key = zkescrow.Address{0: 0xEF}
				return c.list()
			},
			data:    valid,
			wantErr: escrow.ErrMalformedCallback,
		},
		"tracker not owned by the program": {
			modify: func(c *callbackAccounts) []*zkescrow.AccountInfo {
				c.tracker.Owner = zkescrow.SystemProgramID
				return c.list()
			},
			data:    valid,
			wantErr: escrow.ErrAddressMismatch,
		},
		"escrow passed as tracker": {
			modify: func(c *callbackAccounts) []*zkescrow.AccountInfo {
				c.tracker = c.escrow
				return c.list()
			},
			data:    valid,
			wantErr: escrow.ErrAddressMismatch,
		},
		"escrow not owned by the program": {
			modify: func(c *callbackAccounts) []*zkescrow.AccountInfo {
				c.escrow.Owner = zkescrow.SystemProgramID
				return c.list()
			},
			data:    valid,
			wantErr: escrow.ErrAddressMismatch,
		},
		"escrow not writable": {
			modify: func(c *callbackAccounts) []*zkescrow.AccountInfo {
				c.escrow.IsWritable = false
				return c.list()
			},
			data:    valid,
			wantErr: errors.ErrInvalidInput,
		},
		"receiver not writable": {
			modify: func(c *callbackAccounts) []*zkescrow.AccountInfo {
				c.receiver.IsWritable = false
				return c.list()
			},
			data:    valid,
			wantErr: errors.ErrInvalidInput,
		},
		"escrow pays itself": {
			modify: func(c *callbackAccounts) []*zkescrow.AccountInfo {
				c.receiver = c.escrow
				return c.list()
			},
			data:    valid,
			wantErr: errors.ErrInvalidInput,
		},
		"not enough accounts": {
			modify: func(c *callbackAccounts) []*zkescrow.AccountInfo {
				return c.list()[:3]
			},
			data:    valid,
			wantErr: errors.ErrNotEnoughAccounts,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			c := newCallbackAccounts(t)
			accounts := c.list()
			if tc.modify != nil {
				accounts = tc.modify(c)
			}
			escrowData := append([]byte{}, c.escrow.Data...)

			p := escrow.NewProcessor(escrow.DefaultConfiguration())
			err := p.Process(context.Background(), callbackRuntime{}, accounts, tc.data)
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "want %s, got %+v", tc.wantErr, err)
				require.Equal(t, uint64(5000), c.escrow.Lamports)
				require.Equal(t, escrowData, c.escrow.Data)
				return
			}
			require.NoError(t, err)

			var e escrow.Escrow
			require.NoError(t, e.Unmarshal(c.escrow.Data))
			require.True(t, e.IsClaimed)
			require.Equal(t, c.receiver.Key, *e.Receiver)
			require.Equal(t, uint64(0), e.Amount)
			require.Equal(t, uint64(4000), c.escrow.Lamports)
			require.Equal(t, uint64(1000), c.receiver.Lamports)
		})
	}
}

func TestVerifyAndReleaseReplay(t *testing.T) {
	c := newCallbackAccounts(t)
	digest := escrow.Digest([]byte("abc"))
	data := callbackData(t, oracle.SHA256ImageID, digest[:])
	p := escrow.NewProcessor(escrow.DefaultConfiguration())

	require.NoError(t, p.Process(context.Background(), callbackRuntime{}, c.list(), data))
	require.Equal(t, uint64(1000), c.receiver.Lamports)

	// The identical callback delivered again does not pay twice.
	err := p.Process(context.Background(), callbackRuntime{}, c.list(), data)
	require.True(t, escrow.ErrAlreadyClaimed.Is(err), "got %+v", err)
	require.Equal(t, uint64(1000), c.receiver.Lamports)
	require.Equal(t, uint64(4000), c.escrow.Lamports)

	// So does a callback asserting another digest.
	err = p.Process(context.Background(), callbackRuntime{}, c.list(), callbackData(t, oracle.SHA256ImageID, []byte("x")))
	require.True(t, escrow.ErrAlreadyClaimed.Is(err), "got %+v", err)
	require.Equal(t, uint64(1000), c.receiver.Lamports)
}
