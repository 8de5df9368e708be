// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

// Package httpapi exposes the authentication service and the admin
// volunteer and session endpoints over HTTP.
//
// Refresh tokens travel only in the HttpOnly refresh_token cookie. Access
// tokens are returned in the response body and presented back as
// "Authorization: Bearer <token>".
package httpapi
