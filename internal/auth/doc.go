// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

// Package auth provides volunteer authentication and refresh-token session
// management for LitterPick.
//
// # Domain Types
//
// Domain types should be created using their constructors:
//   - NewVolunteer - creates a Volunteer with validated name, email, hash and role
//   - NewSession - creates a Session whose expiry is strictly after its issue time
//
// Repository implementations receive pre-validated types from these constructors.
//
// # Tokens
//
// Access tokens are short-lived HS256 JWTs issued by TokenSigner and carry
// the volunteer id and role. Refresh tokens are opaque random UUIDs; each one
// is the primary key of exactly one Session row. A refresh token is usable
// while its session exists, its volunteer exists and it has not expired.
//
// # Services
//
// Service coordinates Register, Login, Refresh and Logout over the
// VolunteerRepository and SessionRepository contracts. It holds no cached
// state; every decision is read from the repositories.
package auth
