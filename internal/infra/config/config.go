// internal/infra/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
)

const (
	SupplyScaleBase  = "base"
	SupplyScaleWhole = "whole"

	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Config はアプリケーション全体の環境変数設定を保持します。
type Config struct {
	Port string

	// 署名ウォレット（PRIVATE_KEY は JSON の [int,...] 配列）
	PrivateKey string
	// PRIVATE_KEY が無い場合の Secret Manager フォールバック
	// 例) projects/<PROJECT_ID>/secrets/<SECRET_ID>/versions/latest
	MintKeySecret      string
	GCPCredentialsFile string

	// Solana 接続
	Network        string
	RPCURL         string
	ConfirmTimeout time.Duration

	// /create-token の挙動
	TokenDefaultsEnabled bool
	SupplyScale          string
	ExposeErrors         bool
	CreateTokenRPS       float64
	CreateTokenBurst     int

	AllowedOrigins []string

	LogLevel  string
	LogFormat string
	LogFile   string
}

var validNetworks = map[string]struct{}{
	"devnet":       {},
	"testnet":      {},
	"mainnet-beta": {},
	"localnet":     {},
}

// Load は .env → 環境変数 → コマンドライン引数 の順に設定を読み込みます。
// 環境変数は .env より優先され、フラグは両方を上書きします。
func Load(args []string, getenv func(string) string) (*Config, error) {
	envFile := strings.TrimSpace(getenv("ENV_FILE"))
	if envFile == "" {
		envFile = ".env"
	}
	fileVals, err := godotenv.Read(envFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: read %s: %w", envFile, err)
		}
		fileVals = map[string]string{}
	}

	lookup := func(key string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return strings.TrimSpace(fileVals[key])
	}

	confirmTimeout, err := durationDefault(lookup, "SOLANA_CONFIRM_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	defaultsEnabled, err := boolDefault(lookup, "TOKEN_DEFAULTS_ENABLED", false)
	if err != nil {
		return nil, err
	}
	exposeErrors, err := boolDefault(lookup, "EXPOSE_ERRORS", true)
	if err != nil {
		return nil, err
	}
	rps, err := floatDefault(lookup, "CREATE_TOKEN_RPS", 0)
	if err != nil {
		return nil, err
	}
	burst, err := intDefault(lookup, "CREATE_TOKEN_BURST", 1)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		PrivateKey:         lookup("PRIVATE_KEY"),
		GCPCredentialsFile: lookup("GOOGLE_APPLICATION_CREDENTIALS"),
	}

	fset := flag.NewFlagSet("api", flag.ContinueOnError)
	fset.StringVar(&cfg.Port, "port", getenvDefault(lookup, "PORT", "10000"), "HTTP listen port")
	fset.StringVar(&cfg.MintKeySecret, "mint-key-secret", lookup("SOLANA_MINT_KEY_SECRET"), "Secret Manager version holding the signer keypair (used when PRIVATE_KEY is empty)")
	fset.StringVar(&cfg.Network, "network", getenvDefault(lookup, "SOLANA_NETWORK", "devnet"), "solana network: devnet, testnet, mainnet-beta or localnet")
	fset.StringVar(&cfg.RPCURL, "rpc-url", lookup("SOLANA_RPC_URL"), "solana RPC endpoint, overrides --network")
	fset.DurationVar(&cfg.ConfirmTimeout, "confirm-timeout", confirmTimeout, "how long to wait for a transaction to reach confirmed status")
	fset.BoolVar(&cfg.TokenDefaultsEnabled, "token-defaults", defaultsEnabled, "fill missing decimals/supply with 9/1000 instead of rejecting the request")
	fset.StringVar(&cfg.SupplyScale, "supply-scale", getenvDefault(lookup, "SUPPLY_SCALE", SupplyScaleBase), "unit of supply: base (raw units) or whole (multiplied by 10^decimals)")
	fset.BoolVar(&cfg.ExposeErrors, "expose-errors", exposeErrors, "return upstream error messages to the client")
	fset.Float64Var(&cfg.CreateTokenRPS, "create-token-rps", rps, "rate limit for /create-token in requests per second, 0 disables")
	fset.IntVar(&cfg.CreateTokenBurst, "create-token-burst", burst, "burst size for the /create-token rate limit")
	fset.StringSliceVar(&cfg.AllowedOrigins, "cors-origins", splitCSV(getenvDefault(lookup, "CORS_ALLOWED_ORIGINS", "*")), "allowed CORS origins")
	fset.StringVar(&cfg.LogLevel, "log-level", getenvDefault(lookup, "LOG_LEVEL", "info"), "log level")
	fset.StringVar(&cfg.LogFormat, "log-format", getenvDefault(lookup, "LOG_FORMAT", LogFormatConsole), "log format: console or json")
	fset.StringVar(&cfg.LogFile, "log-file", lookup("LOG_FILE"), "also write logs to this file")

	if err := fset.Parse(args); err != nil {
		return nil, fmt.Errorf("config: parse flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は起動前に検出できる設定ミスを返します。
func (c *Config) Validate() error {
	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("config: invalid port %q", c.Port)
	}
	if c.RPCURL == "" {
		if _, ok := validNetworks[c.Network]; !ok {
			return fmt.Errorf("config: unsupported solana network %q", c.Network)
		}
	}
	if c.ConfirmTimeout <= 0 {
		return fmt.Errorf("config: confirm timeout must be positive (got %s)", c.ConfirmTimeout)
	}
	switch c.SupplyScale {
	case SupplyScaleBase, SupplyScaleWhole:
	default:
		return fmt.Errorf("config: invalid supply scale %q", c.SupplyScale)
	}
	switch c.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("config: invalid log format %q", c.LogFormat)
	}
	if c.CreateTokenRPS < 0 {
		return fmt.Errorf("config: create-token rps must not be negative")
	}
	if c.CreateTokenRPS > 0 && c.CreateTokenBurst < 1 {
		return fmt.Errorf("config: create-token burst must be at least 1")
	}
	return nil
}

func getenvDefault(lookup func(string) string, key, def string) string {
	if v := lookup(key); v != "" {
		return v
	}
	return def
}

func durationDefault(lookup func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := lookup(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func boolDefault(lookup func(string) string, key string, def bool) (bool, error) {
	v := lookup(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}

func floatDefault(lookup func(string) string, key string, def float64) (float64, error) {
	v := lookup(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}

func intDefault(lookup func(string) string, key string, def int) (int, error) {
	v := lookup(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

// splitCSV parses "a,b,c" / "a, b, c" into []string (empty trimmed items are removed).
func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
