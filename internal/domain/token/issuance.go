// internal/domain/token/issuance.go
package token

import (
	"context"
	"strings"
)

// Original server defaults used when TOKEN_DEFAULTS_ENABLED is on.
const (
	DefaultDecimals uint8  = 9
	DefaultSupply   uint64 = 1000
)

// IssueParams は 1 回のトークン発行リクエストの内容です。
// Supply はチェーンに渡す最小単位の量（スケール済み）です。
type IssueParams struct {
	Decimals uint8
	Supply   uint64
}

// IssueResult は発行成功時にクライアントへ返す内容です。
type IssueResult struct {
	MintAddress  string
	OwnerAccount string
	TxSignature  string
}

// HolderAccount は associated token account の解決結果です。
// SDK によって返す形が異なるため、アドレス候補を 2 つ持ちます。
type HolderAccount struct {
	Address   string
	PublicKey string
}

// HolderAddress は HolderAccount からアドレスを取り出します。
// 優先順: Address → PublicKey。どちらも空なら ErrHolderAddressMissing。
func HolderAddress(a HolderAccount) (string, error) {
	if v := strings.TrimSpace(a.Address); v != "" {
		return v, nil
	}
	if v := strings.TrimSpace(a.PublicKey); v != "" {
		return v, nil
	}
	return "", ErrHolderAddressMissing
}

// Ledger はチェーン側の 3 操作を抽象化したポートです。
// 署名者・mint authority・owner はすべて実装が保持する署名ウォレットです。
type Ledger interface {
	// CreateMint は新しい mint を作成し、その base58 アドレスを返します（freeze authority なし）。
	CreateMint(ctx context.Context, decimals uint8) (string, error)
	// GetOrCreateAssociatedTokenAccount は署名ウォレットの ATA を解決し、無ければ作成します。
	GetOrCreateAssociatedTokenAccount(ctx context.Context, mint string) (HolderAccount, error)
	// MintTo は destination へ amount をミントし、トランザクション署名を返します。
	MintTo(ctx context.Context, mint, destination string, amount uint64) (string, error)
}
