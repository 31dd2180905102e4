package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/aprendeexcel/quiz-engine/internal/config"
	"github.com/aprendeexcel/quiz-engine/internal/logging"
	httperrors "github.com/aprendeexcel/quiz-engine/pkg/http/errors"
)

// WSUpgrader handles WebSocket upgrades.
var WSUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the web app origin once it is exposed through config
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Registrar mounts a group of routes. wrap is the authentication middleware.
type Registrar interface {
	Register(mux *http.ServeMux, wrap func(http.Handler) http.Handler)
}

// NewHTTPServer wires base routes (health, metrics, ping) and every domain
// registrar behind the authentication middleware.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, redis *redis.Client, authn func(http.Handler) http.Handler, registrars ...Registrar) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httperrors.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pingDependencies(ctx, pool, redis); err != nil {
			logging.FromContext(ctx).Error().Err(err).Msg("dependency ping failed")
			httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeServiceUnavailable, "Upstream dependency unavailable")
			return
		}
		httperrors.RespondJSON(w, http.StatusOK, map[string]bool{"pong": true})
	})

	if authn == nil {
		authn = func(next http.Handler) http.Handler { return next }
	}
	for _, reg := range registrars {
		reg.Register(mux, authn)
	}

	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           withLogger(mux, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redis *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	if err := redis.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}

func withLogger(next http.Handler, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logger.With().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()
		next.ServeHTTP(w, r.WithContext(logging.IntoContext(r.Context(), reqLogger)))
	})
}
