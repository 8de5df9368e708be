// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package auth

import (
	"errors"

	"github.com/samber/oops"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is wrapped by repositories when a volunteer email is already taken.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrDuplicateToken is wrapped by repositories when a session token id already exists.
var ErrDuplicateToken = errors.New("session token already exists")

// Error codes attached to oops errors returned by this package.
const (
	CodeValidation          = "AUTH_VALIDATION_FAILED"
	CodeEmptyPassword       = "AUTH_EMPTY_PASSWORD"
	CodeCorruptCredential   = "AUTH_CORRUPT_CREDENTIAL"
	CodeInvalidCredentials  = "AUTH_INVALID_CREDENTIALS"
	CodeDuplicateEmail      = "AUTH_DUPLICATE_EMAIL"
	CodeMissingToken        = "AUTH_MISSING_TOKEN"
	CodeInvalidRefreshToken = "AUTH_INVALID_REFRESH_TOKEN"
	CodeTokenInvalid        = "AUTH_TOKEN_INVALID"
	CodeTokenExpired        = "AUTH_TOKEN_EXPIRED"
	CodeTokenMalformed      = "AUTH_TOKEN_MALFORMED"
	CodeSigningSecret       = "AUTH_SIGNING_SECRET_MISSING"
	CodeDuplicateToken      = "SESSION_DUPLICATE_TOKEN"
	CodeSessionNotFound     = "SESSION_NOT_FOUND"
	CodeVolunteerNotFound   = "VOLUNTEER_NOT_FOUND"
)

// clientCodes lists the codes caused by caller input. These are never retried.
var clientCodes = map[string]struct{}{
	CodeValidation:          {},
	CodeEmptyPassword:       {},
	CodeInvalidCredentials:  {},
	CodeDuplicateEmail:      {},
	CodeMissingToken:        {},
	CodeInvalidRefreshToken: {},
	CodeTokenInvalid:        {},
	CodeTokenExpired:        {},
	CodeTokenMalformed:      {},
}

// IsClientError reports whether err carries a code caused by caller input
// (validation, authentication or conflict).
func IsClientError(err error) bool {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	code, _ := oopsErr.Code().(string)
	_, found := clientCodes[code]
	return found
}
