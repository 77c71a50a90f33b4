package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/sdk-quiz/internal/auth"
	"github.com/gokatarajesh/sdk-quiz/internal/auth/jwt"
	"github.com/gokatarajesh/sdk-quiz/internal/config"
	"github.com/gokatarajesh/sdk-quiz/internal/db/queries"
	"github.com/gokatarajesh/sdk-quiz/internal/db/repository"
	"github.com/gokatarajesh/sdk-quiz/internal/leaderboard"
	"github.com/gokatarajesh/sdk-quiz/internal/logging"
	"github.com/gokatarajesh/sdk-quiz/internal/metrics"
	"github.com/gokatarajesh/sdk-quiz/internal/question"
	"github.com/gokatarajesh/sdk-quiz/internal/quiz"
	"github.com/gokatarajesh/sdk-quiz/internal/server"
	"github.com/gokatarajesh/sdk-quiz/internal/session"
	ws "github.com/gokatarajesh/sdk-quiz/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	snapshotWorker *leaderboard.SnapshotWorker
	bgCancels      []context.CancelFunc
}

// New bootstraps the logger, Postgres, Redis, the quiz services and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(logging.Options{App: cfg.Name, Env: cfg.Env, Level: cfg.LogLevel})
	logger.Info().Msg("starting application bootstrap")

	catalog, err := question.Default()
	if err != nil {
		return nil, fmt.Errorf("load question banks: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	q := queries.New(pool)
	resultRepo := repository.NewResultRepository(q)

	tokens := jwt.NewManager(jwt.TokenConfig{
		Secret: []byte(cfg.Security.JWTSecret),
		TTL:    cfg.Security.TokenTTL,
		Issuer: cfg.Name,
	})

	selector := quiz.NewSelector()
	if cfg.Quiz.Seed != 0 {
		selector = quiz.NewSeededSelector(cfg.Quiz.Seed)
	}

	quizMetrics := metrics.New()
	leaderboardSvc := leaderboard.NewService(redisClient, logger, leaderboard.ServiceOptions{
		TopN:             cfg.Leaderboard.TopN,
		SnapshotTopLimit: cfg.Leaderboard.SnapshotTopN,
	})
	store := session.NewRedisStore(redisClient, cfg.Quiz.SessionTTL, cfg.Quiz.LockTTL, logger)

	sessionSvc := session.NewService(
		catalog,
		selector,
		store,
		tokens,
		resultRepo,
		leaderboardSvc,
		quizMetrics,
		session.ServiceOptions{
			DefaultCount: cfg.Quiz.DefaultCount,
			Weighting:    cfg.Quiz.Weighting,
		},
		logger,
	)

	wsHub := ws.NewHub(logger)
	playHandler := session.NewWSHandler(sessionSvc, tokens, wsHub, server.NewUpgrader(cfg.CORS.AllowedOrigins), logger)
	lbHTTPHandler := leaderboard.NewHTTPHandler(leaderboardSvc, q, sessionSvc.HasBank, logger)

	var snapshotWorker *leaderboard.SnapshotWorker
	if interval := cfg.Leaderboard.SnapshotInterval; interval > 0 {
		names := make([]string, 0, len(catalog.Banks()))
		for _, b := range catalog.Banks() {
			names = append(names, b.Name)
		}
		snapshotWorker = leaderboard.NewSnapshotWorker(
			leaderboardSvc,
			q,
			names,
			interval,
			cfg.Leaderboard.SnapshotTopN,
			logger,
		)
	}

	apiServer := server.NewHTTPServer(cfg, logger, server.Routes{
		Sessions:       session.NewHTTPHandlers(sessionSvc, logger),
		RequireSession: auth.RequireSession(tokens, logger),
		Play:           playHandler.HandlePlay,
		Leaderboard:    lbHTTPHandler.HandleGet,
		Metrics:        quizMetrics.Handler(),
		Checks: map[string]server.Check{
			"postgres": pool.Ping,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
	})

	return &Application{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          redisClient,
		http:           apiServer,
		snapshotWorker: snapshotWorker,
		bgCancels:      make([]context.CancelFunc, 0, 1),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.snapshotWorker != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.snapshotWorker.Run(bgCtx); err != nil && err != context.Canceled {
				a.logger.Warn().Err(err).Msg("leaderboard snapshot worker stopped")
			}
		}()
	}
}
