// internal/application/usecase/token_issue_usecase.go
package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	tokendom "github.com/ALEX-SHR-SUDO/check/internal/domain/token"
)

var ErrTokenIssueNotConfigured = errors.New("token_issue: ledger is not configured")

// TokenIssueUsecase は mint 作成 → ATA 解決 → ミント の 3 段階を順番に実行します。
// どこかで失敗した時点で以降の呼び出しは行いません（リトライ・ロールバックなし）。
type TokenIssueUsecase struct {
	ledger tokendom.Ledger
}

// NewTokenIssueUsecase は TokenIssueUsecase のコンストラクタです。
func NewTokenIssueUsecase(ledger tokendom.Ledger) *TokenIssueUsecase {
	return &TokenIssueUsecase{ledger: ledger}
}

// Issue は新しいトークンを発行します。
// 失敗時は *tokendom.StepError を返し、Step で失敗段階を判別できます。
func (u *TokenIssueUsecase) Issue(ctx context.Context, p tokendom.IssueParams) (*tokendom.IssueResult, error) {
	if u == nil || u.ledger == nil {
		return nil, ErrTokenIssueNotConfigured
	}

	logger := log.With().Str("component", "token_issue").Logger()
	logger.Info().Uint8("decimals", p.Decimals).Uint64("supply", p.Supply).Msg("received request")

	// 1) mint 作成
	mint, err := u.ledger.CreateMint(ctx, p.Decimals)
	if err != nil {
		logger.Error().Err(err).Msg("createMint failed")
		return nil, &tokendom.StepError{Step: tokendom.StepCreateMint, Err: err}
	}
	mint = strings.TrimSpace(mint)
	if mint == "" {
		logger.Error().Msg("createMint returned an empty address")
		return nil, &tokendom.StepError{Step: tokendom.StepCreateMint, Err: tokendom.ErrEmptyMintAddress}
	}
	logger.Info().Str("mint", mint).Msg("mint created")

	// 2) 保有アカウント（ATA）
	acc, err := u.ledger.GetOrCreateAssociatedTokenAccount(ctx, mint)
	if err != nil {
		logger.Error().Err(err).Str("mint", mint).Msg("getOrCreateAssociatedTokenAccount failed")
		return nil, &tokendom.StepError{Step: tokendom.StepResolveHolderAccount, Err: err}
	}
	owner, err := tokendom.HolderAddress(acc)
	if err != nil {
		logger.Error().Err(err).Str("mint", mint).Msg("token account address missing")
		return nil, &tokendom.StepError{Step: tokendom.StepResolveHolderAccount, Err: err}
	}
	logger.Info().Str("mint", mint).Str("tokenAccount", owner).Msg("token account resolved")

	// 3) ミント
	sig, err := u.ledger.MintTo(ctx, mint, owner, p.Supply)
	if err != nil {
		logger.Error().Err(err).Str("mint", mint).Str("tokenAccount", owner).Msg("mintTo failed")
		return nil, &tokendom.StepError{Step: tokendom.StepMintTo, Err: err}
	}
	logger.Info().Str("mint", mint).Str("tx", sig).Uint64("amount", p.Supply).Msg("tokens minted")

	return &tokendom.IssueResult{
		MintAddress:  mint,
		OwnerAccount: owner,
		TxSignature:  sig,
	}, nil
}
