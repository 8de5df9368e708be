// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/litterpick/litterpick/internal/observability"
	"github.com/litterpick/litterpick/internal/store"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

// execute runs the root command with args and returns its output.
func execute(ctx context.Context, deps *Deps, args ...string) (string, error) {
	cmd := newRootCmd(deps)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

type fakeServer struct {
	mu       sync.Mutex
	addr     string
	startErr error
	errCh    chan error
	started  bool
	stopped  bool
	onStart  func()
	metrics  *observability.Metrics
	checker  observability.ReadinessChecker
	handler  http.Handler
}

func newFakeServer(addr string) *fakeServer {
	return &fakeServer{addr: addr, errCh: make(chan error, 1)}
}

func (f *fakeServer) Start() (<-chan error, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.started = true
	if f.onStart != nil {
		f.onStart()
	}
	return f.errCh, nil
}

func (f *fakeServer) Stop(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return nil
}

func (f *fakeServer) Addr() string { return f.addr }

func (f *fakeServer) Metrics() *observability.Metrics { return f.metrics }

func (f *fakeServer) state() (started, stopped bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started, f.stopped
}

type fakeMigrator struct {
	calls      []string
	upErr      error
	version    uint
	dirty      bool
	status     *store.MigrationStatus
	forced     int
	closeCalls int
}

func (m *fakeMigrator) Up() error {
	m.calls = append(m.calls, "up")
	if m.upErr == nil {
		m.version = 2
	}
	return m.upErr
}

func (m *fakeMigrator) Down() error {
	m.calls = append(m.calls, "down")
	m.version = 0
	return nil
}

func (m *fakeMigrator) Version() (uint, bool, error) {
	m.calls = append(m.calls, "version")
	return m.version, m.dirty, nil
}

func (m *fakeMigrator) Force(version int) error {
	m.calls = append(m.calls, "force")
	m.forced = version
	return nil
}

func (m *fakeMigrator) Status() (*store.MigrationStatus, error) {
	m.calls = append(m.calls, "status")
	return m.status, nil
}

func (m *fakeMigrator) Close() error {
	m.closeCalls++
	return nil
}

type serveFixture struct {
	deps     *Deps
	pool     pgxmock.PgxPoolIface
	http     *fakeServer
	obs      *fakeServer
	migrator *fakeMigrator
	logs     *bytes.Buffer
	poolURL  string
}

func newServeFixture(t *testing.T, env map[string]string) *serveFixture {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)

	f := &serveFixture{
		pool:     pool,
		http:     newFakeServer("127.0.0.1:3000"),
		obs:      newFakeServer("127.0.0.1:9100"),
		migrator: &fakeMigrator{},
		logs:     &bytes.Buffer{},
	}
	f.obs.metrics = observability.NewMetrics(prometheus.NewRegistry())

	f.deps = &Deps{
		PoolFactory: func(_ context.Context, url string, _ store.PoolOptions) (Pool, error) {
			f.poolURL = url
			return f.pool, nil
		},
		MigratorFactory: func(string) (Migrator, error) {
			return f.migrator, nil
		},
		ObservabilityServerFactory: func(_ string, checker observability.ReadinessChecker) ObservabilityServer {
			f.obs.checker = checker
			return f.obs
		},
		HTTPServerFactory: func(_ string, handler http.Handler, _ *slog.Logger) HTTPServer {
			f.http.handler = handler
			return f.http
		},
		EnvLookup: envMap(env),
		LogWriter: f.logs,
	}
	return f
}
