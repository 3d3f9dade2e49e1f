package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizdeck/quizdeck/internal/attempt"
	"github.com/quizdeck/quizdeck/internal/catalog"
	"github.com/quizdeck/quizdeck/internal/config"
	"github.com/quizdeck/quizdeck/internal/logging"
	"github.com/quizdeck/quizdeck/internal/quiz/rest"
	"github.com/quizdeck/quizdeck/internal/result"
	"github.com/quizdeck/quizdeck/internal/server"
	ws "github.com/quizdeck/quizdeck/pkg/http/ws"
)

// Application aggregates shared infrastructure (upstream client, result
// store, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	redis *redis.Client
	http  *http.Server
}

// New bootstraps config, logger, the upstream quiz client, the result store
// and the HTTP server. Redis is optional; without it results live in memory
// and a restart ends every session.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Str("quiz_api", cfg.Upstream.APIBaseURL).Msg("starting application bootstrap")

	quizClient := rest.NewClient(cfg.Upstream.APIBaseURL, &http.Client{Timeout: cfg.Upstream.HTTPTimeout})

	var redisClient *redis.Client
	var resultStore attempt.ResultStore
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable at startup; continuing")
		}
		resultStore = result.NewRedisStore(redisClient, cfg.Attempt.ResultTTL)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("using redis result store")
	} else {
		resultStore = result.NewMemoryStore(cfg.Attempt.ResultTTL)
		logger.Info().Msg("using in-memory result store")
	}

	hub := ws.NewHub(logger)
	notifier := attempt.NewHubNotifier(hub, logger)
	manager := attempt.NewManager(quizClient, resultStore, attempt.ManagerOptions{
		Notifier:   notifier,
		SessionTTL: cfg.Attempt.SessionTTL,
	}, logger)

	catalogHandlers := catalog.NewHTTPHandlers(quizClient, logger)
	attemptHandlers := attempt.NewHTTPHandlers(manager, quizClient, logger)
	feedHandler := attempt.NewWSHandler(hub, manager, logger)

	apiServer := server.NewHTTPServer(cfg, logger, catalogHandlers, attemptHandlers, feedHandler)

	return &Application{
		cfg:    cfg,
		logger: logger,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

// Run serves HTTP until the process receives an interrupt, then shuts down
// gracefully within the configured timeout.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", a.http.Addr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		a.logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-ctx.Done():
		a.logger.Info().Msg("context cancelled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
	defer cancel()
	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) shutdownTimeout() time.Duration {
	if a.cfg.GracefulShutdownTimeout > 0 {
		return a.cfg.GracefulShutdownTimeout
	}
	return 20 * time.Second
}
