// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package config

import "strings"

// envKeys maps environment variables to config keys.
var envKeys = map[string]string{
	"DATABASE_URL":                  "database.url",
	"JWT_SECRET":                    "auth.jwt_secret",
	"ACCESS_TOKEN_EXPIRES_IN":       "auth.access_token_ttl",
	"REFRESH_TOKEN_EXPIRES_IN_DAYS": "auth.refresh_token_ttl_days",
	"HTTP_ADDR":                     "http.addr",
	"SECURE_COOKIES":                "http.secure_cookies",
	"METRICS_ADDR":                  "metrics.addr",
	"LOG_FORMAT":                    "log.format",
	"LOG_LEVEL":                     "log.level",
}

// envOverrides collects config values from the environment. PORT is
// honoured when HTTP_ADDR is unset, and NODE_ENV=prod turns on secure
// cookies unless SECURE_COOKIES says otherwise.
func envOverrides(lookup func(string) (string, bool)) map[string]string {
	out := make(map[string]string)
	for env, key := range envKeys {
		if v, ok := lookup(env); ok {
			out[key] = v
		}
	}

	if _, ok := out["http.addr"]; !ok {
		if port, ok := lookup("PORT"); ok && port != "" {
			out["http.addr"] = ":" + strings.TrimPrefix(port, ":")
		}
	}

	if _, ok := out["http.secure_cookies"]; !ok {
		if env, ok := lookup("NODE_ENV"); ok && (env == "prod" || env == "production") {
			out["http.secure_cookies"] = "true"
		}
	}
	return out
}
