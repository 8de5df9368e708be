// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package httpapi

import (
	"errors"
	"net/http"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/litterpick/litterpick/internal/auth"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", oops.Code(auth.CodeValidation).Errorf("missing fields: password"), http.StatusBadRequest, auth.CodeValidation},
		{"empty password", oops.Code(auth.CodeEmptyPassword).Errorf("empty"), http.StatusBadRequest, auth.CodeEmptyPassword},
		{"invalid credentials", oops.Code(auth.CodeInvalidCredentials).Errorf("x"), http.StatusUnauthorized, auth.CodeInvalidCredentials},
		{"missing token", oops.Code(auth.CodeMissingToken).Errorf("x"), http.StatusUnauthorized, auth.CodeMissingToken},
		{"invalid refresh", oops.Code(auth.CodeInvalidRefreshToken).Errorf("x"), http.StatusUnauthorized, auth.CodeInvalidRefreshToken},
		{"expired access", oops.Code(auth.CodeTokenExpired).Errorf("x"), http.StatusUnauthorized, auth.CodeTokenExpired},
		{"forbidden", oops.Code(CodeForbidden).Errorf("x"), http.StatusForbidden, CodeForbidden},
		{"volunteer not found", oops.Code(auth.CodeVolunteerNotFound).Wrap(auth.ErrNotFound), http.StatusNotFound, auth.CodeVolunteerNotFound},
		{"bare not found", oops.Code("SOMETHING").Wrap(auth.ErrNotFound), http.StatusNotFound, CodeNotFound},
		{"duplicate email", oops.Code(auth.CodeDuplicateEmail).Wrap(auth.ErrDuplicateEmail), http.StatusConflict, auth.CodeDuplicateEmail},
		{"duplicate email under wrapper", oops.Code("AUTH_REGISTER_FAILED").Wrap(oops.Code(auth.CodeDuplicateEmail).Wrap(auth.ErrDuplicateEmail)), http.StatusConflict, auth.CodeDuplicateEmail},
		{"rate limited", oops.Code(CodeRateLimited).Errorf("x"), http.StatusTooManyRequests, CodeRateLimited},
		{"store failure", oops.Code("STORE_RETRY_EXHAUSTED").Errorf("pg down"), http.StatusInternalServerError, CodeInternal},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestClassify_HidesInternalDetail(t *testing.T) {
	_, body := classify(oops.Code("SESSION_GET_FAILED").Errorf("dial tcp 10.0.0.5:5432: connection refused"))
	assert.Equal(t, "internal server error", body.Message)

	_, body = classify(oops.Code(auth.CodeInvalidCredentials).Wrap(errors.New("hash mismatch for alice")))
	assert.Equal(t, "invalid email or password", body.Message)
}
