// cmd/keygen/main.go
//
// 署名ウォレット（PRIVATE_KEY）を生成する小さなツールです。
// - Solana 互換の ed25519 keypair を生成
// - 公開鍵を base58 文字列として表示（これが mint authority / payer のアドレス）
// - 秘密鍵を Solana CLI 互換の JSON 配列としてファイルに保存します。
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	solanainfra "github.com/ALEX-SHR-SUDO/check/internal/infra/solana"
)

func main() {
	var out string
	var force bool
	flag.StringVar(&out, "out", "mint-authority.json", "file to write the keypair JSON to, - for stdout")
	flag.BoolVar(&force, "force", false, "overwrite an existing file")
	flag.Parse()

	if err := generate(os.Stdout, out, force); err != nil {
		log.Fatal().Err(err).Msg("keygen failed")
	}
}

func generate(w io.Writer, out string, force bool) error {
	acc := types.NewAccount()

	data, err := solanainfra.EncodeKeypairJSON(acc.PrivateKey)
	if err != nil {
		return fmt.Errorf("marshal secret key json: %w", err)
	}

	if out == "-" {
		fmt.Fprintf(w, "PRIVATE_KEY=%s\n", data)
		fmt.Fprintf(w, "# public key: %s\n", acc.PublicKey.ToBase58())
		return nil
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(out, flags, 0o600)
	if err != nil {
		return fmt.Errorf("open %s: %w", out, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", out, err)
	}

	fmt.Fprintf(w, "Public Key:\n  %s\n\n", acc.PublicKey.ToBase58())
	fmt.Fprintf(w, "Secret key file (Solana-compatible JSON, use as PRIVATE_KEY):\n  %s\n\n", out)
	fmt.Fprintln(w, "IMPORTANT: この JSON ファイルは Git にコミットしないでください。")
	return nil
}
