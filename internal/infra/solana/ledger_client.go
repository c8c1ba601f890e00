// internal/infra/solana/ledger_client.go
package solana

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	tokendom "github.com/ALEX-SHR-SUDO/check/internal/domain/token"
)

var (
	ErrLedgerNotConfigured = errors.New("solana_ledger: not configured")
	ErrInvalidAddress      = errors.New("solana_ledger: invalid base58 address")
	ErrConfirmTimeout      = errors.New("solana_ledger: transaction not confirmed in time")
)

const defaultPollInterval = 500 * time.Millisecond

// rpcAPI は LedgerClient が使う RPC メソッドだけを切り出したものです。
// *client.Client がこれを満たします。
type rpcAPI interface {
	GetLatestBlockhash(ctx context.Context) (rpc.GetLatestBlockhashValue, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, dataLen uint64) (uint64, error)
	GetAccountInfo(ctx context.Context, base58Addr string) (client.AccountInfo, error)
	SendTransaction(ctx context.Context, tx types.Transaction) (string, error)
	GetSignatureStatus(ctx context.Context, signature string) (*rpc.SignatureStatus, error)
}

var _ rpcAPI = (*client.Client)(nil)

// LedgerClient は tokendom.Ledger の Solana 実装です。
// 署名ウォレットが fee payer / mint authority / ATA owner を兼ねます。
type LedgerClient struct {
	rpc    rpcAPI
	signer types.Account

	confirmTimeout time.Duration
	pollInterval   time.Duration

	// newMintAccount はテストで差し替えられるように関数にしています。
	newMintAccount func() types.Account
}

var _ tokendom.Ledger = (*LedgerClient)(nil)

// NewLedgerClient は RPC エンドポイントと署名ウォレットから LedgerClient を作ります。
func NewLedgerClient(endpoint string, signer types.Account, confirmTimeout time.Duration) *LedgerClient {
	return newLedgerClient(client.NewClient(endpoint), signer, confirmTimeout)
}

func newLedgerClient(api rpcAPI, signer types.Account, confirmTimeout time.Duration) *LedgerClient {
	return &LedgerClient{
		rpc:            api,
		signer:         signer,
		confirmTimeout: confirmTimeout,
		pollInterval:   defaultPollInterval,
		newMintAccount: types.NewAccount,
	}
}

func (c *LedgerClient) logger() *zerolog.Logger {
	l := log.With().Str("component", "solana_ledger").Logger()
	return &l
}

// CreateMint は mint アカウントを作成・初期化します（freeze authority なし）。
func (c *LedgerClient) CreateMint(ctx context.Context, decimals uint8) (string, error) {
	if c == nil || c.rpc == nil {
		return "", ErrLedgerNotConfigured
	}

	rent, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, token.MintAccountSize)
	if err != nil {
		return "", fmt.Errorf("GetMinimumBalanceForRentExemption: %w", err)
	}

	mint := c.newMintAccount()
	ins := createMintInstructions(c.signer.PublicKey, mint.PublicKey, rent, decimals)

	sig, err := c.sendAndConfirm(ctx, ins, []types.Account{c.signer, mint})
	if err != nil {
		return "", err
	}

	c.logger().Debug().
		Str("mint", mint.PublicKey.ToBase58()).
		Str("tx", sig).
		Uint8("decimals", decimals).
		Msg("mint initialized")

	return mint.PublicKey.ToBase58(), nil
}

// GetOrCreateAssociatedTokenAccount は署名ウォレットの ATA を返します。
// まだ存在しない場合は作成トランザクションを送ってから返します。
func (c *LedgerClient) GetOrCreateAssociatedTokenAccount(ctx context.Context, mint string) (tokendom.HolderAccount, error) {
	if c == nil || c.rpc == nil {
		return tokendom.HolderAccount{}, ErrLedgerNotConfigured
	}

	mintKey, err := parsePublicKey(mint)
	if err != nil {
		return tokendom.HolderAccount{}, err
	}

	owner := c.signer.PublicKey
	ata, _, err := common.FindAssociatedTokenAddress(owner, mintKey)
	if err != nil {
		return tokendom.HolderAccount{}, fmt.Errorf("FindAssociatedTokenAddress: %w", err)
	}

	exists, err := c.accountExists(ctx, ata.ToBase58())
	if err != nil {
		return tokendom.HolderAccount{}, fmt.Errorf("check ATA: %w", err)
	}

	if !exists {
		ins := []types.Instruction{
			associated_token_account.CreateAssociatedTokenAccount(
				associated_token_account.CreateAssociatedTokenAccountParam{
					Funder:                 owner,
					Owner:                  owner,
					Mint:                   mintKey,
					AssociatedTokenAccount: ata,
				},
			),
		}
		sig, err := c.sendAndConfirm(ctx, ins, []types.Account{c.signer})
		if err != nil {
			return tokendom.HolderAccount{}, err
		}
		c.logger().Debug().Str("ata", ata.ToBase58()).Str("mint", mint).Str("tx", sig).Msg("ATA created")
	}

	return tokendom.HolderAccount{
		Address:   ata.ToBase58(),
		PublicKey: ata.ToBase58(),
	}, nil
}

// MintTo は destination へ amount（最小単位）をミントします。
func (c *LedgerClient) MintTo(ctx context.Context, mint, destination string, amount uint64) (string, error) {
	if c == nil || c.rpc == nil {
		return "", ErrLedgerNotConfigured
	}

	mintKey, err := parsePublicKey(mint)
	if err != nil {
		return "", err
	}
	destKey, err := parsePublicKey(destination)
	if err != nil {
		return "", err
	}

	ins := []types.Instruction{mintToInstruction(mintKey, destKey, c.signer.PublicKey, amount)}
	return c.sendAndConfirm(ctx, ins, []types.Account{c.signer})
}

func (c *LedgerClient) sendAndConfirm(ctx context.Context, ins []types.Instruction, signers []types.Account) (string, error) {
	latest, err := c.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("GetLatestBlockhash: %w", err)
	}

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: signers,
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        c.signer.PublicKey,
			RecentBlockhash: latest.Blockhash,
			Instructions:    ins,
		}),
	})
	if err != nil {
		return "", fmt.Errorf("NewTransaction: %w", err)
	}

	sig, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("SendTransaction: %w", err)
	}

	if err := c.waitConfirmed(ctx, sig); err != nil {
		return "", err
	}
	return sig, nil
}

// waitConfirmed は署名が confirmed（または finalized）になるまでポーリングします。
func (c *LedgerClient) waitConfirmed(ctx context.Context, sig string) error {
	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.rpc.GetSignatureStatus(ctx, sig)
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("GetSignatureStatus: %w", err)
		}
		if err == nil && status != nil {
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed: %v", sig, status.Err)
			}
			if isConfirmed(status) {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s", ErrConfirmTimeout, sig)
		case <-ticker.C:
		}
	}
}

func isConfirmed(status *rpc.SignatureStatus) bool {
	if status.ConfirmationStatus == nil {
		return false
	}
	switch *status.ConfirmationStatus {
	case rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
		return true
	default:
		return false
	}
}

// accountExists は ATA が作成済みかを返します。
// blocto の GetAccountInfo は存在しないアカウントでもエラーにならずゼロ値を返すため、
// lamports / owner で判定します。
func (c *LedgerClient) accountExists(ctx context.Context, address string) (bool, error) {
	info, err := c.rpc.GetAccountInfo(ctx, address)
	if err != nil {
		return false, err
	}
	return info.Lamports > 0 || info.Owner != (common.PublicKey{}), nil
}

// parsePublicKey は base58 文字列を検証付きで PublicKey に変換します。
// common.PublicKeyFromString は不正な入力でもゼロ値を返すため、往復で確認します。
func parsePublicKey(s string) (common.PublicKey, error) {
	s = strings.TrimSpace(s)
	pk := common.PublicKeyFromString(s)
	if s == "" || pk.ToBase58() != s {
		return common.PublicKey{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return pk, nil
}

func createMintInstructions(payer, mint common.PublicKey, rentLamports uint64, decimals uint8) []types.Instruction {
	return []types.Instruction{
		system.CreateAccount(system.CreateAccountParam{
			From:     payer,
			New:      mint,
			Owner:    common.TokenProgramID,
			Lamports: rentLamports,
			Space:    token.MintAccountSize,
		}),
		token.InitializeMint(token.InitializeMintParam{
			Decimals:   decimals,
			Mint:       mint,
			MintAuth:   payer,
			FreezeAuth: nil,
		}),
	}
}

func mintToInstruction(mint, to, auth common.PublicKey, amount uint64) types.Instruction {
	return token.MintTo(token.MintToParam{
		Mint:   mint,
		To:     to,
		Auth:   auth,
		Amount: amount,
	})
}
