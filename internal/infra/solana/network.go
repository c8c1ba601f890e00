// internal/infra/solana/network.go
package solana

import (
	"fmt"
	"strings"

	"github.com/blocto/solana-go-sdk/rpc"
)

// ResolveEndpoint は RPC エンドポイントを決定します。
// rpcURL が指定されていればそれを優先し、無ければ network 名から解決します。
func ResolveEndpoint(network, rpcURL string) (string, error) {
	if u := strings.TrimSpace(rpcURL); u != "" {
		return u, nil
	}
	switch strings.TrimSpace(network) {
	case "", "devnet":
		return rpc.DevnetRPCEndpoint, nil
	case "testnet":
		return rpc.TestnetRPCEndpoint, nil
	case "mainnet-beta":
		return rpc.MainnetRPCEndpoint, nil
	case "localnet":
		return rpc.LocalnetRPCEndpoint, nil
	default:
		return "", fmt.Errorf("solana: unsupported network %q", network)
	}
}
