// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

//go:build integration

package integration

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/litterpick/litterpick/internal/auth"
	authpg "github.com/litterpick/litterpick/internal/auth/postgres"
	"github.com/litterpick/litterpick/internal/httpapi"
	"github.com/litterpick/litterpick/internal/observability"
	"github.com/litterpick/litterpick/internal/store"
)

const testSecret = "integration-test-signing-secret"

// testEnv holds the resources shared by the integration specs.
type testEnv struct {
	ctx       context.Context
	cancel    context.CancelFunc
	container testcontainers.Container
	pool      *pgxpool.Pool
	limiter   *httpapi.RateLimiter
	server    *httptest.Server
}

// setupTestEnv starts PostgreSQL, applies migrations and serves the API
// router on an httptest server.
func setupTestEnv() (*testEnv, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	env := &testEnv{ctx: ctx, cancel: cancel}

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("litterpick_test"),
		postgres.WithUsername("litterpick"),
		postgres.WithPassword("litterpick"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		cancel()
		return nil, err
	}
	env.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		env.cleanup()
		return nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		env.cleanup()
		return nil, err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		env.cleanup()
		return nil, err
	}
	_ = migrator.Close()

	pool, err := store.OpenPool(ctx, connStr, store.PoolOptions{})
	if err != nil {
		env.cleanup()
		return nil, err
	}
	env.pool = pool

	logger := slog.New(slog.DiscardHandler)
	volunteers := authpg.NewVolunteerRepository(pool)
	sessions := authpg.NewSessionRepository(pool)
	signer, err := auth.NewTokenSigner([]byte(testSecret), 15*time.Minute)
	if err != nil {
		env.cleanup()
		return nil, err
	}
	svc, err := auth.NewAuthService(volunteers, sessions, auth.NewArgon2idHasher(), signer, auth.WithLogger(logger))
	if err != nil {
		env.cleanup()
		return nil, err
	}

	env.limiter = httpapi.NewRateLimiter(httpapi.RateLimiterConfig{
		PerMinute:       60,
		Burst:           20,
		CleanupInterval: time.Minute,
	}, httpapi.WithRateLimiterLogger(logger))

	env.server = httptest.NewServer(httpapi.NewRouter(&httpapi.RouterDeps{
		AuthService:  svc,
		Volunteers:   volunteers,
		Sessions:     sessions,
		LoginLimiter: env.limiter,
		Metrics:      observability.NewMetrics(prometheus.NewRegistry()),
		Logger:       logger,
	}))

	return env, nil
}

// resetData empties both tables between specs.
func (e *testEnv) resetData() error {
	_, err := e.pool.Exec(e.ctx, `TRUNCATE session, volunteer RESTART IDENTITY CASCADE`)
	return err
}

func (e *testEnv) cleanup() {
	if e.server != nil {
		e.server.Close()
	}
	if e.limiter != nil {
		e.limiter.Close()
	}
	if e.pool != nil {
		e.pool.Close()
	}
	if e.container != nil {
		_ = e.container.Terminate(context.Background())
	}
	e.cancel()
}
