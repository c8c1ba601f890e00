package solana

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRPC struct {
	rentErr    error
	sendErr    error
	accountErr error
	lamports   uint64
	owner      common.PublicKey

	// statuses is consumed in order; once exhausted the last entry repeats.
	statuses []*rpc.SignatureStatus

	sent        []types.Transaction
	statusCalls int
}

func (f *fakeRPC) GetLatestBlockhash(context.Context) (rpc.GetLatestBlockhashValue, error) {
	return rpc.GetLatestBlockhashValue{Blockhash: "11111111111111111111111111111111"}, nil
}

func (f *fakeRPC) GetMinimumBalanceForRentExemption(context.Context, uint64) (uint64, error) {
	if f.rentErr != nil {
		return 0, f.rentErr
	}
	return 1461600, nil
}

func (f *fakeRPC) GetAccountInfo(context.Context, string) (client.AccountInfo, error) {
	if f.accountErr != nil {
		return client.AccountInfo{}, f.accountErr
	}
	return client.AccountInfo{Lamports: f.lamports, Owner: f.owner}, nil
}

func (f *fakeRPC) SendTransaction(_ context.Context, tx types.Transaction) (string, error) {
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sent = append(f.sent, tx)
	return "sig" + string(rune('A'+len(f.sent)-1)), nil
}

func (f *fakeRPC) GetSignatureStatus(context.Context, string) (*rpc.SignatureStatus, error) {
	f.statusCalls++
	if len(f.statuses) == 0 {
		return confirmedStatus(), nil
	}
	i := f.statusCalls - 1
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	return f.statuses[i], nil
}

func confirmedStatus() *rpc.SignatureStatus {
	c := rpc.CommitmentConfirmed
	return &rpc.SignatureStatus{ConfirmationStatus: &c}
}

func newTestLedger(api *fakeRPC) (*LedgerClient, types.Account, types.Account) {
	signer := types.NewAccount()
	mint := types.NewAccount()
	lc := newLedgerClient(api, signer, 50*time.Millisecond)
	lc.pollInterval = time.Millisecond
	lc.newMintAccount = func() types.Account { return mint }
	return lc, signer, mint
}

func TestCreateMint(t *testing.T) {
	api := &fakeRPC{}
	lc, _, mint := newTestLedger(api)

	addr, err := lc.CreateMint(context.Background(), 9)
	require.NoError(t, err)

	assert.Equal(t, mint.PublicKey.ToBase58(), addr)
	require.Len(t, api.sent, 1)
	// fee payer + new mint account
	assert.Len(t, api.sent[0].Signatures, 2)
}

func TestCreateMintNewAccountEachCall(t *testing.T) {
	api := &fakeRPC{}
	lc := newLedgerClient(api, types.NewAccount(), time.Second)
	lc.pollInterval = time.Millisecond

	first, err := lc.CreateMint(context.Background(), 0)
	require.NoError(t, err)
	second, err := lc.CreateMint(context.Background(), 0)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestCreateMintRentError(t *testing.T) {
	api := &fakeRPC{rentErr: errors.New("rpc unavailable")}
	lc, _, _ := newTestLedger(api)

	_, err := lc.CreateMint(context.Background(), 9)
	assert.ErrorContains(t, err, "rpc unavailable")
	assert.Empty(t, api.sent)
}

func TestCreateMintSendError(t *testing.T) {
	api := &fakeRPC{sendErr: errors.New("insufficient funds for rent")}
	lc, _, _ := newTestLedger(api)

	_, err := lc.CreateMint(context.Background(), 9)
	assert.ErrorContains(t, err, "insufficient funds for rent")
}

func TestGetOrCreateAssociatedTokenAccountExisting(t *testing.T) {
	api := &fakeRPC{lamports: 2039280}
	lc, signer, mint := newTestLedger(api)

	want, _, err := common.FindAssociatedTokenAddress(signer.PublicKey, mint.PublicKey)
	require.NoError(t, err)

	acc, err := lc.GetOrCreateAssociatedTokenAccount(context.Background(), mint.PublicKey.ToBase58())
	require.NoError(t, err)

	assert.Equal(t, want.ToBase58(), acc.Address)
	assert.Empty(t, api.sent)
}

func TestGetOrCreateAssociatedTokenAccountCreates(t *testing.T) {
	api := &fakeRPC{}
	lc, _, mint := newTestLedger(api)

	acc, err := lc.GetOrCreateAssociatedTokenAccount(context.Background(), mint.PublicKey.ToBase58())
	require.NoError(t, err)

	assert.NotEmpty(t, acc.Address)
	assert.Len(t, api.sent, 1)
}

func TestGetOrCreateAssociatedTokenAccountLookupError(t *testing.T) {
	api := &fakeRPC{accountErr: errors.New("connection refused")}
	lc, _, mint := newTestLedger(api)

	_, err := lc.GetOrCreateAssociatedTokenAccount(context.Background(), mint.PublicKey.ToBase58())
	assert.ErrorContains(t, err, "connection refused")
	assert.Empty(t, api.sent)
}

func TestGetOrCreateAssociatedTokenAccountOwnedWithoutLamports(t *testing.T) {
	api := &fakeRPC{owner: common.TokenProgramID}
	lc, _, mint := newTestLedger(api)

	_, err := lc.GetOrCreateAssociatedTokenAccount(context.Background(), mint.PublicKey.ToBase58())
	require.NoError(t, err)
	assert.Empty(t, api.sent)
}

func TestMintToRejectsInvalidAddress(t *testing.T) {
	api := &fakeRPC{}
	lc, _, mint := newTestLedger(api)

	_, err := lc.MintTo(context.Background(), mint.PublicKey.ToBase58(), "not-base58!", 10)
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = lc.MintTo(context.Background(), "", mint.PublicKey.ToBase58(), 10)
	assert.ErrorIs(t, err, ErrInvalidAddress)
	assert.Empty(t, api.sent)
}

func TestMintToWaitsForConfirmation(t *testing.T) {
	processed := rpc.CommitmentProcessed
	api := &fakeRPC{statuses: []*rpc.SignatureStatus{
		nil,
		{ConfirmationStatus: &processed},
		confirmedStatus(),
	}}
	lc, _, mint := newTestLedger(api)
	dest := types.NewAccount().PublicKey.ToBase58()

	sig, err := lc.MintTo(context.Background(), mint.PublicKey.ToBase58(), dest, 1000)
	require.NoError(t, err)

	assert.Equal(t, "sigA", sig)
	assert.Equal(t, 3, api.statusCalls)
}

func TestMintToConfirmTimeout(t *testing.T) {
	api := &fakeRPC{statuses: []*rpc.SignatureStatus{nil}}
	lc, _, mint := newTestLedger(api)
	dest := types.NewAccount().PublicKey.ToBase58()

	_, err := lc.MintTo(context.Background(), mint.PublicKey.ToBase58(), dest, 1)
	assert.ErrorIs(t, err, ErrConfirmTimeout)
}

func TestMintToOnChainFailure(t *testing.T) {
	api := &fakeRPC{statuses: []*rpc.SignatureStatus{
		{Err: map[string]any{"InstructionError": []any{0, "Custom"}}},
	}}
	lc, _, mint := newTestLedger(api)
	dest := types.NewAccount().PublicKey.ToBase58()

	_, err := lc.MintTo(context.Background(), mint.PublicKey.ToBase58(), dest, 1)
	assert.ErrorContains(t, err, "failed")
	assert.NotErrorIs(t, err, ErrConfirmTimeout)
}

func TestCreateMintInstructions(t *testing.T) {
	payer := types.NewAccount().PublicKey
	mint := types.NewAccount().PublicKey

	ins := createMintInstructions(payer, mint, 1461600, 6)
	require.Len(t, ins, 2)

	assert.Equal(t, common.SystemProgramID, ins[0].ProgramID)
	assert.Equal(t, common.TokenProgramID, ins[1].ProgramID)
	assert.Equal(t, mint, ins[1].Accounts[0].PubKey)
	// InitializeMint: [0, decimals, ...]
	assert.Equal(t, byte(0), ins[1].Data[0])
	assert.Equal(t, byte(6), ins[1].Data[1])
}

func TestMintToInstruction(t *testing.T) {
	mint := types.NewAccount().PublicKey
	to := types.NewAccount().PublicKey
	auth := types.NewAccount().PublicKey

	in := mintToInstruction(mint, to, auth, 1000)

	assert.Equal(t, common.TokenProgramID, in.ProgramID)
	assert.Equal(t, mint, in.Accounts[0].PubKey)
	assert.Equal(t, to, in.Accounts[1].PubKey)
	assert.Equal(t, auth, in.Accounts[2].PubKey)
	assert.Equal(t, byte(7), in.Data[0])
}

func TestResolveEndpoint(t *testing.T) {
	ep, err := ResolveEndpoint("devnet", "")
	require.NoError(t, err)
	assert.Equal(t, rpc.DevnetRPCEndpoint, ep)

	ep, err = ResolveEndpoint("mainnet-beta", "")
	require.NoError(t, err)
	assert.Equal(t, rpc.MainnetRPCEndpoint, ep)

	ep, err = ResolveEndpoint("devnet", " http://127.0.0.1:8899 ")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8899", ep)

	_, err = ResolveEndpoint("moonnet", "")
	assert.Error(t, err)
}
