// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/litterpick/litterpick/internal/auth"
	"github.com/litterpick/litterpick/internal/auth/postgres"
	"github.com/litterpick/litterpick/internal/config"
	"github.com/litterpick/litterpick/internal/httpapi"
	"github.com/litterpick/litterpick/internal/logging"
	"github.com/litterpick/litterpick/internal/observability"
	"github.com/litterpick/litterpick/internal/store"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the volunteer authentication API together with the metrics and
health server. Shuts down gracefully on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeWithDeps(cmd.Context(), cmd, deps)
		},
	}
}

func runServeWithDeps(ctx context.Context, cmd *cobra.Command, deps *Deps) error {
	deps = deps.withDefaults()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd, deps.EnvLookup)
	if err != nil {
		return oops.With("command", "serve").Wrap(err)
	}
	if err := cfg.RequireServe(); err != nil {
		return oops.With("command", "serve").Wrap(err)
	}

	logger := logging.Setup(serviceName, version, cfg.Log.Format, cfg.Log.Level, deps.LogWriter)
	slog.SetDefault(logger)

	accessTTL := cfg.AccessTokenTTL(logger)
	refreshTTL := cfg.RefreshTokenTTL(logger)

	logger.Info("starting litterpick",
		"http_addr", cfg.HTTP.Addr,
		"metrics_addr", cfg.Metrics.Addr,
		"access_token_ttl", accessTTL.String(),
		"refresh_token_ttl", refreshTTL.String(),
		"secure_cookies", cfg.HTTP.SecureCookies,
	)

	if cfg.Database.AutoMigrate {
		if err := applyMigrations(deps, cfg.Database.URL, logger); err != nil {
			return err
		}
	}

	pool, err := deps.PoolFactory(ctx, cfg.Database.URL, store.PoolOptions{MaxConns: cfg.Database.MaxConns})
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "open pool").Wrap(err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	service, volunteers, sessions, err := buildAuth(pool, cfg, accessTTL, refreshTTL, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var obsServer ObservabilityServer
	var metrics *observability.Metrics
	if cfg.Metrics.Addr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Metrics.Addr, pool.Ping)
		obsErrChan, err := obsServer.Start()
		if err != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		metrics = obsServer.Metrics()
	}

	limiter := httpapi.NewRateLimiter(httpapi.RateLimiterConfig{
		PerMinute: float64(cfg.HTTP.LoginRatePerMinute),
		Burst:     cfg.HTTP.LoginBurst,
	}, httpapi.WithRateLimiterLogger(logger))
	defer limiter.Close()

	router := httpapi.NewRouter(&httpapi.RouterDeps{
		AuthService:   service,
		Volunteers:    volunteers,
		Sessions:      sessions,
		LoginLimiter:  limiter,
		Metrics:       metrics,
		Logger:        logger,
		SecureCookies: cfg.HTTP.SecureCookies,
	})

	httpServer := deps.HTTPServerFactory(cfg.HTTP.Addr, router, logger)
	httpErrChan, err := httpServer.Start()
	if err != nil {
		stopObservability(obsServer, logger)
		return oops.Code("HTTP_START_FAILED").Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, httpErrChan, "http")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("LitterPick API listening on " + httpServer.Addr())

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping http server", "error", err)
	}
	stopObservability(obsServer, logger)

	logger.Info("shutdown complete")
	return nil
}

// buildAuth wires the Postgres repositories into the auth service.
func buildAuth(
	pool Pool,
	cfg *config.Config,
	accessTTL, refreshTTL time.Duration,
	logger *slog.Logger,
) (*auth.Service, auth.VolunteerRepository, auth.SessionRepository, error) {
	volunteers := postgres.NewVolunteerRepository(pool)
	sessions := postgres.NewSessionRepository(pool)

	signer, err := auth.NewTokenSigner([]byte(cfg.Auth.JWTSecret), accessTTL)
	if err != nil {
		return nil, nil, nil, oops.With("operation", "create token signer").Wrap(err)
	}

	service, err := auth.NewAuthService(volunteers, sessions, auth.NewArgon2idHasher(), signer,
		auth.WithAccessTTL(accessTTL),
		auth.WithRefreshTTL(refreshTTL),
		auth.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, nil, oops.With("operation", "create auth service").Wrap(err)
	}
	return service, volunteers, sessions, nil
}

func applyMigrations(deps *Deps, databaseURL string, logger *slog.Logger) error {
	migrator, err := deps.MigratorFactory(databaseURL)
	if err != nil {
		return oops.With("operation", "auto-migrate").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Warn("failed to close migrator", "error", closeErr)
		}
	}()

	if err := migrator.Up(); err != nil {
		return oops.With("operation", "auto-migrate").Wrap(err)
	}
	version, _, err := migrator.Version()
	if err != nil {
		return oops.With("operation", "auto-migrate").Wrap(err)
	}
	logger.Info("schema migrated", "version", version)
	return nil
}

func stopObservability(server ObservabilityServer, logger *slog.Logger) {
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Warn("error stopping observability server", "error", err)
	}
}

// monitorServerErrors cancels ctx when a server reports a failure.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown", "server", serverName, "error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}
