// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"strconv"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/litterpick/litterpick/internal/auth"
	"github.com/litterpick/litterpick/internal/httpapi"
)

var _ = Describe("Volunteer authentication", Ordered, func() {
	var env *testEnv

	BeforeAll(func() {
		var err error
		env, err = setupTestEnv()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if env != nil {
			env.cleanup()
		}
	})

	BeforeEach(func() {
		Expect(env.resetData()).To(Succeed())
	})

	newClient := func() *http.Client {
		jar, err := cookiejar.New(nil)
		Expect(err).NotTo(HaveOccurred())
		return &http.Client{Jar: jar}
	}

	send := func(client *http.Client, method, path, bearer string, body any) *http.Response {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req, err := http.NewRequestWithContext(env.ctx, method, env.server.URL+path, &buf)
		Expect(err).NotTo(HaveOccurred())
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		resp, err := client.Do(req)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(resp.Body.Close)
		return resp
	}

	decode := func(resp *http.Response, v any) {
		Expect(json.NewDecoder(resp.Body).Decode(v)).To(Succeed())
	}

	errorCode := func(resp *http.Response) string {
		var e httpapi.ErrorResponse
		decode(resp, &e)
		return e.Code
	}

	register := func(client *http.Client, name, email, password, role string) *http.Response {
		body := map[string]string{"volunteer_name": name, "volunteer_email": email, "password": password}
		if role != "" {
			body["role"] = role
		}
		return send(client, http.MethodPost, "/auth/register", "", body)
	}

	login := func(client *http.Client, email, password string) *http.Response {
		return send(client, http.MethodPost, "/auth/login", "", map[string]string{
			"volunteer_email": email,
			"password":        password,
		})
	}

	It("registers, logs in, refreshes and logs out", func() {
		client := newClient()

		resp := register(client, "Alice", "alice@x.com", "secret123", "")
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		var registered auth.AuthUser
		decode(resp, &registered)
		Expect(registered.ID).To(BeNumerically(">", 0))
		Expect(registered.Role).To(Equal(auth.RoleAttendee))

		resp = login(client, "alice@x.com", "secret123")
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		var tokens httpapi.TokenResponse
		decode(resp, &tokens)
		Expect(tokens.AccessToken).NotTo(BeEmpty())
		Expect(*tokens.User).To(Equal(registered))

		var sessionCount int
		Expect(env.pool.QueryRow(env.ctx, `SELECT count(*) FROM session`).Scan(&sessionCount)).To(Succeed())
		Expect(sessionCount).To(Equal(1))

		resp = send(client, http.MethodGet, "/auth/me", tokens.AccessToken, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		var me httpapi.MeResponse
		decode(resp, &me)
		Expect(me.VolunteerID).To(Equal(registered.ID))

		resp = send(client, http.MethodPost, "/auth/refresh", "", nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		var refreshed httpapi.TokenResponse
		decode(resp, &refreshed)
		Expect(refreshed.AccessToken).NotTo(BeEmpty())
		Expect(*refreshed.User).To(Equal(registered))

		resp = send(client, http.MethodPost, "/auth/logout", "", nil)
		Expect(resp.StatusCode).To(Equal(http.StatusNoContent))

		Expect(env.pool.QueryRow(env.ctx, `SELECT count(*) FROM session`).Scan(&sessionCount)).To(Succeed())
		Expect(sessionCount).To(BeZero())

		resp = send(client, http.MethodPost, "/auth/refresh", "", nil)
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		Expect(errorCode(resp)).To(Equal(auth.CodeMissingToken))
	})

	It("rejects a duplicate email", func() {
		client := newClient()
		Expect(register(client, "Alice", "alice@x.com", "secret123", "").StatusCode).To(Equal(http.StatusCreated))

		resp := register(client, "Alice Again", "alice@x.com", "other", "")
		Expect(resp.StatusCode).To(Equal(http.StatusConflict))
		Expect(errorCode(resp)).To(Equal(auth.CodeDuplicateEmail))
	})

	It("answers wrong password and unknown email identically", func() {
		client := newClient()
		Expect(register(client, "Alice", "alice@x.com", "secret123", "").StatusCode).To(Equal(http.StatusCreated))

		wrong := login(client, "alice@x.com", "nope")
		unknown := login(client, "nobody@x.com", "secret123")
		Expect(wrong.StatusCode).To(Equal(http.StatusUnauthorized))
		Expect(unknown.StatusCode).To(Equal(http.StatusUnauthorized))

		var wrongBody, unknownBody httpapi.ErrorResponse
		decode(wrong, &wrongBody)
		decode(unknown, &unknownBody)
		Expect(wrongBody).To(Equal(unknownBody))
		Expect(wrongBody.Code).To(Equal(auth.CodeInvalidCredentials))
	})

	It("invalidates sessions when a volunteer is deleted", func() {
		admin := newClient()
		Expect(register(admin, "Root", "root@x.com", "pw", "admin").StatusCode).To(Equal(http.StatusCreated))
		resp := login(admin, "root@x.com", "pw")
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		var adminTokens httpapi.TokenResponse
		decode(resp, &adminTokens)

		alice := newClient()
		resp = register(alice, "Alice", "alice@x.com", "secret123", "")
		var aliceUser auth.AuthUser
		decode(resp, &aliceUser)
		Expect(login(alice, "alice@x.com", "secret123").StatusCode).To(Equal(http.StatusOK))

		resp = send(admin, http.MethodGet, "/volunteers", adminTokens.AccessToken, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		var listed []auth.AuthUser
		decode(resp, &listed)
		Expect(listed).To(HaveLen(2))

		resp = send(admin, http.MethodDelete, "/volunteers/"+strconv.FormatInt(aliceUser.ID, 10), adminTokens.AccessToken, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusNoContent))

		resp = send(alice, http.MethodPost, "/auth/refresh", "", nil)
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		Expect(errorCode(resp)).To(Equal(auth.CodeInvalidRefreshToken))
	})

	It("keeps admin routes away from attendees", func() {
		client := newClient()
		Expect(register(client, "Alice", "alice@x.com", "secret123", "").StatusCode).To(Equal(http.StatusCreated))
		resp := login(client, "alice@x.com", "secret123")
		var tokens httpapi.TokenResponse
		decode(resp, &tokens)

		resp = send(client, http.MethodGet, "/sessions", tokens.AccessToken, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
		Expect(errorCode(resp)).To(Equal(httpapi.CodeForbidden))
	})
})
