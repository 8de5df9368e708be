// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

// Package postgres implements the auth repositories on PostgreSQL.
//
// Every statement is a single round trip and runs through withRetry, which
// retries serialization failures, deadlocks, lock timeouts and connection
// exceptions with exponential backoff. Unique violations are mapped to
// auth.ErrDuplicateEmail and auth.ErrDuplicateToken; missing rows wrap
// auth.ErrNotFound.
package postgres
