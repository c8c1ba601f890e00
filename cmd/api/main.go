// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpin "github.com/ALEX-SHR-SUDO/check/internal/adapters/in/http"
	appcfg "github.com/ALEX-SHR-SUDO/check/internal/infra/config"
	"github.com/ALEX-SHR-SUDO/check/internal/platform/di"
)

const shutdownTimeout = 25 * time.Second

func main() {
	if err := run(context.Background(), os.Args[1:], os.Getenv); err != nil {
		log.Error().Err(err).Str("component", "boot").Msg("exiting")
		os.Exit(1)
	}
}

// run は設定 → ログ → 署名ウォレット → HTTP サーバの順に起動します。
// 署名ウォレットが読めない場合はリスナーを開かずにエラーを返します。
func run(ctx context.Context, args []string, getenv func(string) string) error {
	cfg, err := appcfg.Load(args, getenv)
	if err != nil {
		return err
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	cont, err := di.NewContainer(ctx, cfg)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen :%s: %w", cfg.Port, err)
	}

	srv := &http.Server{
		Handler:           httpin.NewRouter(cont.RouterDeps()),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		// 3 トランザクションの confirm を待つため、confirm timeout に合わせて長めに取る
		WriteTimeout: 3*cfg.ConfirmTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("component", "boot").Str("addr", ln.Addr().String()).Msg("server running")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Str("component", "boot").Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info().Str("component", "boot").Msg("server stopped")
	return nil
}

// setupLogging はグローバル logger を設定します。
// LOG_FILE が指定されていれば stdout とファイルの両方に出力します。
func setupLogging(cfg *appcfg.Config) (func(), error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stdout
	if cfg.LogFormat == appcfg.LogFormatConsole {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	closer := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = zerolog.MultiLevelWriter(out, f)
		closer = func() { _ = f.Close() }
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return closer, nil
}
