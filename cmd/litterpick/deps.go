// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/litterpick/litterpick/internal/httpapi"
	"github.com/litterpick/litterpick/internal/observability"
	"github.com/litterpick/litterpick/internal/store"
)

// Pool is the subset of *pgxpool.Pool used by the commands.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Migrator wraps the methods used from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
	Force(version int) error
	Status() (*store.MigrationStatus, error)
	Close() error
}

// ObservabilityServer wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}

// HTTPServer wraps the methods used from httpapi.Server.
type HTTPServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}

// Deps contains injectable dependencies for the commands. Nil fields use
// their default implementations.
type Deps struct {
	// PoolFactory opens the database pool.
	// Default: store.OpenPool
	PoolFactory func(ctx context.Context, url string, opts store.PoolOptions) (Pool, error)

	// MigratorFactory creates a schema migrator.
	// Default: store.NewMigrator
	MigratorFactory func(url string) (Migrator, error)

	// ObservabilityServerFactory creates the metrics/health server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, checker observability.ReadinessChecker) ObservabilityServer

	// HTTPServerFactory creates the API server.
	// Default: httpapi.NewServer
	HTTPServerFactory func(addr string, handler http.Handler, logger *slog.Logger) HTTPServer

	// EnvLookup reads environment variables.
	// Default: os.LookupEnv
	EnvLookup func(string) (string, bool)

	// LogWriter receives log output.
	// Default: os.Stderr
	LogWriter io.Writer
}

func (d *Deps) withDefaults() *Deps {
	out := &Deps{}
	if d != nil {
		*out = *d
	}
	if out.PoolFactory == nil {
		out.PoolFactory = func(ctx context.Context, url string, opts store.PoolOptions) (Pool, error) {
			pool, err := store.OpenPool(ctx, url, opts)
			if err != nil {
				return nil, err //nolint:wrapcheck // store errors carry codes
			}
			return pool, nil
		}
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(url string) (Migrator, error) {
			m, err := store.NewMigrator(url)
			if err != nil {
				return nil, err //nolint:wrapcheck // store errors carry codes
			}
			return m, nil
		}
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, checker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, checker)
		}
	}
	if out.HTTPServerFactory == nil {
		out.HTTPServerFactory = func(addr string, handler http.Handler, logger *slog.Logger) HTTPServer {
			return httpapi.NewServer(addr, handler, logger)
		}
	}
	if out.EnvLookup == nil {
		out.EnvLookup = os.LookupEnv
	}
	if out.LogWriter == nil {
		out.LogWriter = os.Stderr
	}
	return out
}
