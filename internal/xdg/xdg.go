// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

// Package xdg resolves XDG Base Directory paths for LitterPick.
package xdg

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const (
	appName        = "litterpick"
	configFileName = "config.yaml"
)

// LookupFunc reads an environment variable.
type LookupFunc func(key string) (string, bool)

// ConfigDir returns the litterpick config directory. XDG_CONFIG_HOME wins;
// otherwise $HOME/.config is used.
func ConfigDir(lookup LookupFunc) (string, error) {
	if base, ok := lookup("XDG_CONFIG_HOME"); ok && base != "" {
		return filepath.Join(base, appName), nil
	}
	home, ok := lookup("HOME")
	if !ok || home == "" {
		return "", oops.Code("XDG_HOME_UNSET").Errorf("neither XDG_CONFIG_HOME nor HOME is set")
	}
	return filepath.Join(home, ".config", appName), nil
}

// DefaultConfigFile returns the path of config.yaml in ConfigDir when that
// file exists, and "" when it does not or no base directory is known.
func DefaultConfigFile(lookup LookupFunc) (string, error) {
	dir, err := ConfigDir(lookup)
	if err != nil {
		return "", nil //nolint:nilerr // no home means no default file
	}

	path := filepath.Join(dir, configFileName)
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", nil
	case err != nil:
		return "", oops.Code("CONFIG_FILE_UNREADABLE").With("path", path).Wrap(err)
	case info.IsDir():
		return "", oops.Code("CONFIG_FILE_UNREADABLE").With("path", path).Errorf("config path is a directory")
	}
	return path, nil
}
