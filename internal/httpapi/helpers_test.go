// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/litterpick/litterpick/internal/auth"
	"github.com/litterpick/litterpick/internal/auth/authtest"
	"github.com/litterpick/litterpick/internal/httpapi"
	"github.com/litterpick/litterpick/internal/observability"
)

var testSecret = []byte("httpapi-test-secret")

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testAPI struct {
	handler    http.Handler
	service    *auth.Service
	volunteers *authtest.VolunteerStore
	sessions   *authtest.SessionStore
	metrics    *observability.Metrics
	clock      *testClock
	logs       *bytes.Buffer
}

type apiOption func(*httpapi.RouterDeps)

func newTestAPI(t *testing.T, opts ...apiOption) *testAPI {
	t.Helper()

	clock := &testClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	volunteers := authtest.NewVolunteerStore()
	sessions := authtest.NewSessionStore(volunteers, clock.Now)
	signer, err := auth.NewTokenSigner(testSecret, time.Hour, auth.WithSignerClock(clock.Now))
	require.NoError(t, err)
	svc, err := auth.NewAuthService(volunteers, sessions, auth.NewArgon2idHasher(), signer,
		auth.WithClock(clock.Now), auth.WithLogger(logger))
	require.NoError(t, err)

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	deps := &httpapi.RouterDeps{
		AuthService: svc,
		Volunteers:  volunteers,
		Sessions:    sessions,
		Metrics:     metrics,
		Logger:      logger,
	}
	for _, opt := range opts {
		opt(deps)
	}

	return &testAPI{
		handler:    httpapi.NewRouter(deps),
		service:    svc,
		volunteers: volunteers,
		sessions:   sessions,
		metrics:    metrics,
		clock:      clock,
		logs:       logs,
	}
}

type request struct {
	method  string
	path    string
	body    string
	bearer  string
	cookies []*http.Cookie
}

func (a *testAPI) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if req.body != "" {
		body = strings.NewReader(req.body)
	}
	r := httptest.NewRequestWithContext(context.Background(), req.method, req.path, body)
	r.RemoteAddr = "203.0.113.7:51234"
	if req.body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.bearer != "" {
		r.Header.Set("Authorization", "Bearer "+req.bearer)
	}
	for _, c := range req.cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, r)
	return w
}

func (a *testAPI) register(t *testing.T, name, email, password, role string) *auth.AuthUser {
	t.Helper()
	payload := map[string]string{"volunteer_name": name, "volunteer_email": email, "password": password}
	if role != "" {
		payload["role"] = role
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	w := a.do(t, request{method: http.MethodPost, path: "/auth/register", body: string(raw)})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var user auth.AuthUser
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	return &user
}

// login returns the access token and the refresh cookie.
func (a *testAPI) login(t *testing.T, email, password string) (string, *http.Cookie) {
	t.Helper()
	w := a.do(t, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   `{"volunteer_email":"` + email + `","password":"` + password + `"}`,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp httpapi.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	cookie := findCookie(w.Result().Cookies(), httpapi.RefreshCookieName)
	require.NotNil(t, cookie)
	return resp.AccessToken, cookie
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) httpapi.ErrorResponse {
	t.Helper()
	var body httpapi.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// adminToken registers an admin and returns its access token.
func (a *testAPI) adminToken(t *testing.T) string {
	t.Helper()
	a.register(t, "Root", "root@x.com", "root-pw", "admin")
	access, _ := a.login(t, "root@x.com", "root-pw")
	return access
}
