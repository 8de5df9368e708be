// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package config

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	fallbackAccessTTL   = time.Hour
	fallbackRefreshDays = 7

	day = 24 * time.Hour

	// maxDays and maxSeconds are the largest counts that fit in a
	// time.Duration.
	maxDays    = math.MaxInt64 / int64(day)
	maxSeconds = math.MaxInt64 / int64(time.Second)
)

// ParseAccessTTL parses an access token lifetime. Accepted forms are Go
// durations ("90m", "1h"), a day count with a "d" suffix ("2d") and bare
// integers, read as seconds. ok is false when s could not be used and the
// one hour default was returned.
func ParseAccessTTL(s string) (ttl time.Duration, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallbackAccessTTL, false
	}

	if days, found := strings.CutSuffix(s, "d"); found {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 || int64(n) > maxDays {
			return fallbackAccessTTL, false
		}
		return time.Duration(n) * day, true
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 || int64(n) > maxSeconds {
			return fallbackAccessTTL, false
		}
		return time.Duration(n) * time.Second, true
	}

	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallbackAccessTTL, false
	}
	return d, true
}

// ParseRefreshDays parses the refresh token lifetime in whole days. A
// trailing "d" is accepted. ok is false when the seven day default was
// returned.
func ParseRefreshDays(s string) (days int, ok bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "d")
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || int64(n) > maxDays {
		return fallbackRefreshDays, false
	}
	return n, true
}

// AccessTokenTTL returns the parsed access token lifetime, logging a
// warning when the configured value is unusable.
func (c *Config) AccessTokenTTL(logger *slog.Logger) time.Duration {
	ttl, ok := ParseAccessTTL(c.Auth.AccessTokenTTL)
	if !ok {
		logger.Warn("invalid access token ttl, using default",
			"value", c.Auth.AccessTokenTTL,
			"default", ttl.String())
	}
	return ttl
}

// RefreshTokenTTL returns the parsed refresh token lifetime, logging a
// warning when the configured value is unusable.
func (c *Config) RefreshTokenTTL(logger *slog.Logger) time.Duration {
	days, ok := ParseRefreshDays(c.Auth.RefreshTokenTTLDays)
	if !ok {
		logger.Warn("invalid refresh token ttl, using default",
			"value", c.Auth.RefreshTokenTTLDays,
			"default_days", days)
	}
	return time.Duration(days) * day
}
