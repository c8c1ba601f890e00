// internal/infra/solana/signer.go
package solana

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretspb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

var (
	ErrPrivateKeyNotSet    = errors.New("PRIVATE_KEY not set")
	ErrPrivateKeyMalformed = errors.New("PRIVATE_KEY is not a JSON array of bytes")
	ErrPrivateKeyLength    = errors.New("PRIVATE_KEY has unexpected length")
)

// KeySource は署名ウォレットの keypair JSON（[int,...]）の取得元です。
type KeySource interface {
	Name() string
	Load(ctx context.Context) ([]byte, error)
}

// EnvKeySource は環境変数（PRIVATE_KEY）の値をそのまま keypair JSON として扱います。
type EnvKeySource struct {
	Value string
}

func (s EnvKeySource) Name() string { return "env:PRIVATE_KEY" }

func (s EnvKeySource) Load(context.Context) ([]byte, error) {
	v := strings.TrimSpace(s.Value)
	if v == "" {
		return nil, ErrPrivateKeyNotSet
	}
	return []byte(v), nil
}

// SecretManagerKeySource は GCP Secret Manager から keypair JSON を取得します。
//
// SecretName には
//
//	"projects/<PROJECT_ID>/secrets/<SECRET_ID>/versions/latest"
//
// のような Secret Version のフルパスを設定してください。
type SecretManagerKeySource struct {
	SecretName      string
	CredentialsFile string
}

func (s SecretManagerKeySource) Name() string { return "secretmanager:" + s.SecretName }

func (s SecretManagerKeySource) Load(ctx context.Context) ([]byte, error) {
	var opts []option.ClientOption
	if f := strings.TrimSpace(s.CredentialsFile); f != "" {
		opts = append(opts, option.WithCredentialsFile(f))
	}

	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("secretmanager.NewClient: %w", err)
	}
	defer client.Close()

	resp, err := client.AccessSecretVersion(ctx, &secretspb.AccessSecretVersionRequest{
		Name: s.SecretName,
	})
	if err != nil {
		return nil, fmt.Errorf("AccessSecretVersion: %w", err)
	}
	if resp.GetPayload() == nil || len(resp.GetPayload().GetData()) == 0 {
		return nil, fmt.Errorf("secret %s is empty: %w", s.SecretName, ErrPrivateKeyNotSet)
	}
	return resp.GetPayload().GetData(), nil
}

// ResolveKeySource は PRIVATE_KEY を優先し、未設定かつ secretName があれば Secret Manager を使います。
func ResolveKeySource(privateKey, secretName, credentialsFile string) KeySource {
	if strings.TrimSpace(privateKey) == "" && strings.TrimSpace(secretName) != "" {
		return SecretManagerKeySource{
			SecretName:      strings.TrimSpace(secretName),
			CredentialsFile: credentialsFile,
		}
	}
	return EnvKeySource{Value: privateKey}
}

// LoadSigner は keypair JSON を読み込み、署名ウォレット（types.Account）を復元します。
// プロセス起動時に 1 度だけ呼ばれ、失敗した場合はリクエストを受け付けずに終了します。
func LoadSigner(ctx context.Context, src KeySource) (types.Account, error) {
	raw, err := src.Load(ctx)
	if err != nil {
		return types.Account{}, err
	}

	keyBytes, err := DecodeKeypairJSON(raw)
	if err != nil {
		return types.Account{}, err
	}

	acc, err := types.AccountFromBytes(keyBytes)
	if err != nil {
		return types.Account{}, fmt.Errorf("AccountFromBytes: %w", err)
	}

	log.Info().
		Str("component", "signer").
		Str("source", src.Name()).
		Str("pubkey", acc.PublicKey.ToBase58()).
		Msg("signer loaded")

	return acc, nil
}

// DecodeKeypairJSON は solana-keygen 形式の keypair JSON（[int,...] 64 要素）を
// 64 バイトの ed25519 秘密鍵に変換します。
func DecodeKeypairJSON(data []byte) ([]byte, error) {
	var ints []int64
	if err := json.Unmarshal(data, &ints); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrivateKeyMalformed, err)
	}
	if ints == nil {
		// "null"
		return nil, ErrPrivateKeyMalformed
	}
	if len(ints) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrPrivateKeyLength, len(ints), ed25519.PrivateKeySize)
	}

	keyBytes := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("%w: byte out of range at %d: %d", ErrPrivateKeyMalformed, i, v)
		}
		keyBytes[i] = byte(v)
	}
	return keyBytes, nil
}

// EncodeKeypairJSON は DecodeKeypairJSON の逆変換です（keygen 用）。
func EncodeKeypairJSON(key []byte) ([]byte, error) {
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	return json.Marshal(ints)
}
