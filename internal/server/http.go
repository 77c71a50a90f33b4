package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/sdk-quiz/internal/config"
	"github.com/gokatarajesh/sdk-quiz/internal/logging"
	"github.com/gokatarajesh/sdk-quiz/internal/session"
)

// NewUpgrader builds the WebSocket upgrader. Origins are checked against the
// CORS allow-list; requests without an Origin header (non-browser clients) pass.
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed["*"] || allowed[origin]
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// Check pings one dependency.
type Check func(ctx context.Context) error

// Routes are the handlers mounted by NewHTTPServer. Nil handlers are skipped.
type Routes struct {
	Sessions       *session.HTTPHandlers
	RequireSession func(http.Handler) http.Handler
	Play           http.HandlerFunc
	Leaderboard    http.HandlerFunc
	Metrics        http.Handler
	Checks         map[string]Check
}

// NewHTTPServer wires health, metrics and quiz routes behind CORS and request logging.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, routes Routes) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewHandler(cfg.CORS, logger, routes),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewHandler builds the routed handler.
func NewHandler(corsCfg config.CORS, logger zerolog.Logger, routes Routes) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if routes.Metrics != nil {
		mux.Handle("GET /metrics", routes.Metrics)
	}

	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), routes.Checks); err != nil {
			log := logging.FromContext(r.Context())
			log.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	if h := routes.Sessions; h != nil {
		protect := routes.RequireSession
		if protect == nil {
			protect = func(next http.Handler) http.Handler { return next }
		}
		mux.HandleFunc("GET /v1/banks", h.ListBanks)
		mux.HandleFunc("POST /v1/sessions", h.StartSession)
		mux.Handle("GET /v1/sessions/{id}/question", protect(http.HandlerFunc(h.CurrentQuestion)))
		mux.Handle("POST /v1/sessions/{id}/answers", protect(http.HandlerFunc(h.SubmitAnswer)))
		mux.Handle("GET /v1/sessions/{id}/report", protect(http.HandlerFunc(h.GetReport)))
		mux.HandleFunc("GET /v1/players/{player}/results", h.PlayerResults)
	}

	if routes.Play != nil {
		mux.HandleFunc("GET /ws/play", routes.Play)
	}

	if routes.Leaderboard != nil {
		mux.HandleFunc("GET /v1/leaderboards/{bank}", routes.Leaderboard)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsCfg.AllowedOrigins,
		AllowedMethods:   corsCfg.AllowedMethods,
		AllowedHeaders:   corsCfg.AllowedHeaders,
		AllowCredentials: corsCfg.AllowCredentials,
		MaxAge:           corsCfg.MaxAge,
	})
	return c.Handler(requestLogger(logger, mux))
}

func pingDependencies(ctx context.Context, checks map[string]Check) error {
	for name, check := range checks {
		if err := check(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack passes WebSocket upgrades through to the underlying connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// requestLogger puts a request-scoped logger in the context and logs each request.
func requestLogger(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqLogger := logger.With().Str("method", r.Method).Str("path", r.URL.Path).Logger()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(logging.IntoContext(r.Context(), reqLogger)))

		reqLogger.Debug().Int("status", rec.status).Dur("took", time.Since(start)).Msg("request served")
	})
}
