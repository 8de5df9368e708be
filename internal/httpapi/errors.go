// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/samber/oops"

	"github.com/litterpick/litterpick/internal/auth"
	"github.com/litterpick/litterpick/pkg/errutil"
)

// Transport-level error codes.
const (
	CodeBadRequest   = "HTTP_BAD_REQUEST"
	CodeUnauthorized = "HTTP_UNAUTHORIZED"
	CodeForbidden    = "HTTP_FORBIDDEN"
	CodeNotFound     = "HTTP_NOT_FOUND"
	CodeRateLimited  = "HTTP_RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var statusByCode = map[string]int{
	auth.CodeValidation:          http.StatusBadRequest,
	auth.CodeEmptyPassword:       http.StatusBadRequest,
	CodeBadRequest:               http.StatusBadRequest,
	auth.CodeInvalidCredentials:  http.StatusUnauthorized,
	auth.CodeMissingToken:        http.StatusUnauthorized,
	auth.CodeInvalidRefreshToken: http.StatusUnauthorized,
	auth.CodeTokenInvalid:        http.StatusUnauthorized,
	auth.CodeTokenExpired:        http.StatusUnauthorized,
	auth.CodeTokenMalformed:      http.StatusUnauthorized,
	CodeUnauthorized:             http.StatusUnauthorized,
	CodeForbidden:                http.StatusForbidden,
	auth.CodeVolunteerNotFound:   http.StatusNotFound,
	auth.CodeSessionNotFound:     http.StatusNotFound,
	CodeNotFound:                 http.StatusNotFound,
	auth.CodeDuplicateEmail:      http.StatusConflict,
	CodeRateLimited:              http.StatusTooManyRequests,
}

// Fixed messages for codes whose underlying error text is not meant for
// clients. Validation and bad request errors pass their own message.
var messageByCode = map[string]string{
	auth.CodeInvalidCredentials:  "invalid email or password",
	auth.CodeMissingToken:        "authentication token is required",
	auth.CodeInvalidRefreshToken: "invalid refresh token",
	auth.CodeTokenInvalid:        "invalid access token",
	auth.CodeTokenExpired:        "access token has expired",
	auth.CodeTokenMalformed:      "malformed access token",
	CodeUnauthorized:             "authentication required",
	CodeForbidden:                "insufficient role",
	auth.CodeVolunteerNotFound:   "volunteer not found",
	auth.CodeSessionNotFound:     "session not found",
	CodeNotFound:                 "not found",
	auth.CodeDuplicateEmail:      "email already registered",
	CodeRateLimited:              "too many requests, try again later",
}

// classify maps err onto an HTTP status and the public error body.
func classify(err error) (int, ErrorResponse) {
	code := errutil.Code(err)
	status, known := statusByCode[code]
	if !known {
		if errors.Is(err, auth.ErrNotFound) {
			return http.StatusNotFound, ErrorResponse{Code: CodeNotFound, Message: messageByCode[CodeNotFound]}
		}
		return http.StatusInternalServerError, ErrorResponse{Code: CodeInternal, Message: "internal server error"}
	}

	msg, fixed := messageByCode[code]
	if !fixed {
		msg = err.Error()
	}
	return status, ErrorResponse{Code: code, Message: msg}
}

// writeError writes err as a JSON error body. Server errors are logged
// with their oops context and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		errutil.LogErrorContext(r.Context(), logger, "request failed",
			oops.With("method", r.Method).With("path", r.URL.Path).Wrap(err))
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson // client may disconnect
	json.NewEncoder(w).Encode(body)
}

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return oops.Code(CodeBadRequest).Errorf("request body must be a JSON object")
	}
	return nil
}
