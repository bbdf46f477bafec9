// Command api serves the notes HTTP API.
//
//	@title						Notes API
//	@version					1.0
//	@description				Personal notes with bearer-token authentication.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jotter/notes/docs"
	"github.com/jotter/notes/internal/api"
	"github.com/jotter/notes/internal/api/handler"
	"github.com/jotter/notes/internal/api/metrics"
	"github.com/jotter/notes/internal/core/ports"
	"github.com/jotter/notes/internal/core/service"
	"github.com/jotter/notes/internal/infrastructure/db"
	"github.com/jotter/notes/internal/infrastructure/db/redis"
	"github.com/jotter/notes/internal/infrastructure/queue"
	"github.com/jotter/notes/internal/infrastructure/security"
	"github.com/jotter/notes/internal/pkg/config"
	"github.com/jotter/notes/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is not configured yet; fall back to a default one.
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "notes-api",
	})

	pool := queue.NewPool(cfg.Auth.HashWorkers, metrics.HashQueueDepth, log)
	poolCtx, stopPool := context.WithCancel(context.Background())
	pool.Start(poolCtx)

	store, err := db.Open(ctx, cfg.Database.URL, cfg.Database.Name, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}

	ready := readinessChecks(store)

	var limiter ports.LoginLimiter
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()

		limiter = redis.NewLoginLimiter(rdb, cfg.Auth.LoginMaxFailures, cfg.Auth.LoginFailureWindow)
		ready["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		log.Info().Str("addr", cfg.Redis.Addr).Msg("login throttling enabled")
	}

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost, pool, metrics.HashDuration)
	tokens := security.NewJWTService(cfg.JWTSecret, ports.TokenTTL)

	credentials := service.NewCredentialStore(store.Users, hasher, log)
	authService := service.NewAuthService(credentials, tokens, limiter, log)
	noteService := service.NewNoteService(store.Notes, log)

	e := api.NewRouter(api.Deps{
		Auth:    authService,
		Notes:   noteService,
		Tokens:  tokens,
		Ready:   ready,
		Logger:  log,
		Metrics: true,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", store.Backend).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	stopPool()
	pool.Wait()

	if err := store.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("close storage")
	}
	log.Info().Msg("bye")
}

// readinessChecks lists the dependencies /health/ready must reach. Redis is
// added by main when throttling is enabled.
func readinessChecks(store *db.Store) map[string]handler.Pinger {
	return map[string]handler.Pinger{
		store.Backend: handler.PingFunc(store.Ping),
	}
}
