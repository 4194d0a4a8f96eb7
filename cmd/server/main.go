package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-portal/internal/api"
	"github.com/99minutos/auth-portal/internal/api/handler"
	"github.com/99minutos/auth-portal/internal/api/view"
	"github.com/99minutos/auth-portal/internal/api/webctx"
	"github.com/99minutos/auth-portal/internal/core/service"
	"github.com/99minutos/auth-portal/internal/infrastructure/config"
	mongodb "github.com/99minutos/auth-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/auth-portal/internal/infrastructure/db/redis"
	"github.com/99minutos/auth-portal/internal/infrastructure/queue"
	"github.com/99minutos/auth-portal/pkg/logger"
)

const (
	serviceName     = "auth-portal"
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{Service: serviceName})
		bootLog.Error().Err(err).Msg("load config")
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server exited")
		stop()
		os.Exit(1)
	}
	log.Info().Msg("bye")
}

// run owns every resource it opens and releases them before returning.
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.EphemeralSecret {
		log.Warn().Msg("SESSION_SECRET not set; using a random secret, sessions will not survive a restart")
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  serviceName,
		Timeout:  cfg.Mongo.OpTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer func() {
		if err := mongodb.Disconnect(client); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Timeout:  cfg.Redis.OpTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close")
		}
	}()

	users := mongodb.NewUserRepository(db, cfg.Mongo.OpTimeout)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}
	auditRepo := mongodb.NewAuditRepository(db, cfg.Mongo.OpTimeout)
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		return err
	}

	// Stopped after the HTTP server drains and before Mongo disconnects.
	audit := queue.NewDispatcher(cfg.Audit.Workers, auditRepo, logger.Component("audit"))
	audit.Start(context.Background())
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := audit.Stop(stopCtx); err != nil {
			log.Warn().Err(err).Msg("audit flush incomplete")
		}
	}()

	hasher := service.NewBcryptHasher(cfg.BcryptCost)
	strategy, err := service.NewLocalStrategy(users, hasher, audit, logger.Component("auth"))
	if err != nil {
		return err
	}
	registration := service.NewRegistrationService(users, hasher, audit, logger.Component("registration"))
	sessions := service.NewSessionManager(
		redisdb.NewSessionStore(rdb, cfg.Redis.OpTimeout),
		users,
		audit,
		cfg.SessionSecret,
		cfg.Session.TTL,
		logger.Component("session"),
	)

	renderer, err := view.NewRenderer()
	if err != nil {
		return err
	}

	router := api.NewRouter(api.Deps{
		Auth:         strategy,
		Registration: registration,
		Sessions:     sessions,
		Guard:        service.NewGuard(sessions),
		Cookies: webctx.Cookies{
			SessionName: cfg.Session.CookieName,
			Secure:      cfg.SecureCookies(),
			SessionTTL:  sessions.TTL(),
		},
		Renderer: renderer,
		HealthChecks: map[string]handler.Check{
			"mongo": handler.MongoCheck(db),
			"redis": handler.RedisCheck(rdb),
		},
		Log: logger.Component("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	return nil
}
