// internal/platform/di/container.go
package di

import (
	"context"
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/rs/zerolog/log"

	httpin "github.com/ALEX-SHR-SUDO/check/internal/adapters/in/http"
	"github.com/ALEX-SHR-SUDO/check/internal/adapters/in/http/handlers"
	"github.com/ALEX-SHR-SUDO/check/internal/application/usecase"
	appcfg "github.com/ALEX-SHR-SUDO/check/internal/infra/config"
	solanainfra "github.com/ALEX-SHR-SUDO/check/internal/infra/solana"
)

// Container はプロセス全体で共有する依存をまとめたものです。
// 署名ウォレットと RPC クライアントは起動時に 1 度だけ作られ、以後は読み取り専用です。
type Container struct {
	Config *appcfg.Config

	Signer   types.Account
	Endpoint string
	Ledger   *solanainfra.LedgerClient

	TokenIssueUC *usecase.TokenIssueUsecase
	TokenHandler *handlers.TokenHandler
}

// NewContainer は署名ウォレットを読み込み、ハンドラまでを組み立てます。
// 署名ウォレットが読めない場合はエラーを返し、呼び出し側はサーバを起動しません。
func NewContainer(ctx context.Context, cfg *appcfg.Config) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("di: config is nil")
	}

	src := solanainfra.ResolveKeySource(cfg.PrivateKey, cfg.MintKeySecret, cfg.GCPCredentialsFile)
	signer, err := solanainfra.LoadSigner(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("di: load signer: %w", err)
	}

	endpoint, err := solanainfra.ResolveEndpoint(cfg.Network, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("di: %w", err)
	}

	ledger := solanainfra.NewLedgerClient(endpoint, signer, cfg.ConfirmTimeout)
	issueUC := usecase.NewTokenIssueUsecase(ledger)

	c := &Container{
		Config:       cfg,
		Signer:       signer,
		Endpoint:     endpoint,
		Ledger:       ledger,
		TokenIssueUC: issueUC,
		TokenHandler: handlers.NewTokenHandler(issueUC, handlers.TokenHandlerOptions{
			DefaultsEnabled: cfg.TokenDefaultsEnabled,
			ScaleWholeUnits: cfg.SupplyScale == appcfg.SupplyScaleWhole,
			ExposeErrors:    cfg.ExposeErrors,
		}),
	}

	log.Info().
		Str("component", "di").
		Str("endpoint", endpoint).
		Str("supplyScale", cfg.SupplyScale).
		Bool("defaults", cfg.TokenDefaultsEnabled).
		Msg("container initialized")

	return c, nil
}

// RouterDeps は HTTP ルータに渡す依存を返します。
func (c *Container) RouterDeps() httpin.RouterDeps {
	return httpin.RouterDeps{
		TokenHandler:     c.TokenHandler,
		AllowedOrigins:   c.Config.AllowedOrigins,
		CreateTokenRPS:   c.Config.CreateTokenRPS,
		CreateTokenBurst: c.Config.CreateTokenBurst,
	}
}
