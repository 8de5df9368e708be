// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package main

import (
	"strconv"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/litterpick/litterpick/internal/store"
)

func newMigrateCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
		Long:  `Apply, roll back or inspect the embedded PostgreSQL schema migrations.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, migrateUp)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, migrateUp)
		},
	})

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration (drops all volunteers and sessions)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			confirmed, _ := cmd.Flags().GetBool("yes") //nolint:errcheck // flag is registered below
			if !confirmed {
				return oops.Code("MIGRATION_DOWN_UNCONFIRMED").
					Errorf("migrate down drops all data; re-run with --yes to confirm")
			}
			return withMigrator(cmd, deps, func(cmd *cobra.Command, m Migrator) error {
				if err := m.Down(); err != nil {
					return err //nolint:wrapcheck // store errors carry codes
				}
				cmd.Println("All migrations rolled back")
				return nil
			})
		},
	}
	down.Flags().Bool("yes", false, "confirm rolling back every migration")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, printMigrationStatus)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(cmd *cobra.Command, m Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err //nolint:wrapcheck // store errors carry codes
				}
				cmd.Printf("%d%s\n", version, dirtySuffix(dirty))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Mark VERSION as applied and clear the dirty flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := parseForceVersion(args[0])
			if err != nil {
				return err
			}
			return withMigrator(cmd, deps, func(cmd *cobra.Command, m Migrator) error {
				if err := m.Force(version); err != nil {
					return err //nolint:wrapcheck // store errors carry codes
				}
				cmd.Printf("Forced schema version to %d\n", version)
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(cmd *cobra.Command, deps *Deps, fn func(*cobra.Command, Migrator) error) error {
	deps = deps.withDefaults()

	cfg, err := loadConfig(cmd, deps.EnvLookup)
	if err != nil {
		return oops.With("command", "migrate").Wrap(err)
	}
	if err := cfg.RequireDatabase(); err != nil {
		return oops.With("command", "migrate").Wrap(err)
	}

	migrator, err := deps.MigratorFactory(cfg.Database.URL)
	if err != nil {
		return oops.With("command", "migrate").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			cmd.PrintErrln("warning: failed to close migrator:", closeErr)
		}
	}()

	if err := fn(cmd, migrator); err != nil {
		return oops.With("command", "migrate").Wrap(err)
	}
	return nil
}

func migrateUp(cmd *cobra.Command, m Migrator) error {
	if err := m.Up(); err != nil {
		return err //nolint:wrapcheck // store errors carry codes
	}
	version, _, err := m.Version()
	if err != nil {
		return err //nolint:wrapcheck // store errors carry codes
	}
	cmd.Printf("Migrations applied, schema version %d\n", version)
	return nil
}

func printMigrationStatus(cmd *cobra.Command, m Migrator) error {
	status, err := m.Status()
	if err != nil {
		return err //nolint:wrapcheck // store errors carry codes
	}

	cmd.Printf("Current version: %d%s\n", status.Current, dirtySuffix(status.Dirty))
	for _, v := range status.Applied {
		cmd.Printf("  [applied] %s\n", migrationLabel(v))
	}
	for _, v := range status.Pending {
		cmd.Printf("  [pending] %s\n", migrationLabel(v))
	}
	if len(status.Pending) == 0 {
		cmd.Println("Schema is up to date")
	}
	return nil
}

func migrationLabel(version uint) string {
	name, err := store.MigrationName(version)
	if err != nil || name == "" {
		return strconv.FormatUint(uint64(version), 10)
	}
	return name
}

func dirtySuffix(dirty bool) string {
	if dirty {
		return " (dirty)"
	}
	return ""
}

// parseForceVersion parses the force argument. Negative values are passed
// through so the migrator can reject them with its own error.
func parseForceVersion(s string) (int, error) {
	version, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Errorf("version must be an integer")
	}
	return version, nil
}
