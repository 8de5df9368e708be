// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package main

import (
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/litterpick/litterpick/internal/auth/postgres"
	"github.com/litterpick/litterpick/internal/logging"
	"github.com/litterpick/litterpick/internal/store"
)

func newSessionsCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Maintain refresh-token sessions",
	}

	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete sessions that expired at or before a cutoff",
		Long: `Delete session rows whose expiry is at or before --before (default: now).
Expired sessions are already rejected on use; this only reclaims storage.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPurge(cmd, deps)
		},
	}
	purge.Flags().String("before", "", "RFC3339 cutoff (default: now)")
	cmd.AddCommand(purge)

	return cmd
}

func runPurge(cmd *cobra.Command, deps *Deps) error {
	deps = deps.withDefaults()

	before, err := parseBefore(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, deps.EnvLookup)
	if err != nil {
		return oops.With("command", "sessions purge").Wrap(err)
	}
	if err := cfg.RequireDatabase(); err != nil {
		return oops.With("command", "sessions purge").Wrap(err)
	}

	logger := logging.Setup(serviceName, version, cfg.Log.Format, cfg.Log.Level, deps.LogWriter)

	ctx := cmd.Context()
	pool, err := deps.PoolFactory(ctx, cfg.Database.URL, store.PoolOptions{MaxConns: 1})
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("command", "sessions purge").Wrap(err)
	}
	defer pool.Close()

	deleted, err := postgres.NewSessionRepository(pool).DeleteExpired(ctx, before)
	if err != nil {
		return oops.With("command", "sessions purge").Wrap(err)
	}

	logger.InfoContext(ctx, "expired sessions purged", "deleted", deleted, "before", before)
	cmd.Printf("Deleted %d expired sessions\n", deleted)
	return nil
}

func parseBefore(cmd *cobra.Command) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("before") //nolint:errcheck // flag is registered in newSessionsCmd
	if raw == "" {
		return time.Now().UTC(), nil
	}
	before, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, oops.Code("INVALID_ARGUMENT").
			With("before", raw).
			Errorf("--before must be an RFC3339 timestamp")
	}
	return before, nil
}
