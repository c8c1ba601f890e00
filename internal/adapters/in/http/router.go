// internal/adapters/in/http/router.go
package httpin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ALEX-SHR-SUDO/check/internal/adapters/in/http/handlers"
	"github.com/ALEX-SHR-SUDO/check/internal/adapters/in/http/middleware"
)

// RouterDeps collects the handlers and HTTP settings injected from the DI container.
type RouterDeps struct {
	TokenHandler *handlers.TokenHandler

	AllowedOrigins   []string
	CreateTokenRPS   float64
	CreateTokenBurst int
}

// NewRouter builds the HTTP routes.
// Recover は一番外側に置き、CORS ヘッダが付く前の panic でも JSON を返せるようにします。
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recover)
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.CORS(deps.AllowedOrigins))

	r.Get("/", handlers.Root)
	r.Get("/healthz", handlers.Healthz)

	r.With(middleware.RateLimit(deps.CreateTokenRPS, deps.CreateTokenBurst)).
		Post("/create-token", deps.TokenHandler.CreateToken)

	return r
}
