// internal/adapters/in/http/handlers/root_handler.go
package handlers

import "net/http"

const rootMessage = "Solana Token API is running!"

// Root は稼働確認用の固定メッセージを返します（署名ウォレットや RPC の状態には依存しない）。
func Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(rootMessage))
}

// Healthz は Cloud Run 等のヘルスチェック用です。
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
