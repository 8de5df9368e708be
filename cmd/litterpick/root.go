// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/litterpick/litterpick/internal/config"
	"github.com/litterpick/litterpick/internal/xdg"
)

const serviceName = "litterpick"

// NewRootCmd creates the root command for the LitterPick CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

func newRootCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "litterpick",
		Short: "LitterPick - volunteer accounts and sessions for litter-picking events",
		Long: `LitterPick runs the volunteer registration and authentication API
and provides operator commands for schema migrations and session upkeep.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "YAML config file path")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(newServeCmd(deps))
	cmd.AddCommand(newMigrateCmd(deps))
	cmd.AddCommand(newSessionsCmd(deps))

	return cmd
}

// loadConfig resolves the configuration for cmd from its flags, the
// config file and the environment. Without --config the file is looked up
// under the XDG config directory.
func loadConfig(cmd *cobra.Command, lookup func(string) (string, bool)) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		path = ""
	}
	if path == "" {
		path, err = xdg.DefaultConfigFile(lookup)
		if err != nil {
			return nil, err //nolint:wrapcheck // xdg errors carry codes
		}
	}
	cfg, err := config.LoadWithEnv(cmd.Flags(), path, lookup)
	if err != nil {
		return nil, err //nolint:wrapcheck // config errors carry codes
	}
	if err := cfg.Validate(); err != nil {
		return nil, err //nolint:wrapcheck // config errors carry codes
	}
	return cfg, nil
}
