// Package xdg provides helpers to resolve XDG Base Directory paths for odoolink.
// It implements the XDG Base Directory specification for determining appropriate
// locations for configuration files and cached state on Unix-like systems.
//
// The package falls back to traditional locations when XDG environment
// variables are not set and creates directories with private permissions,
// since the config directory lists server URLs and logins.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "odoolink"

// ConfigDir returns the XDG config directory for odoolink.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.config/odoolink when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the XDG state directory for odoolink.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.local/state/odoolink when XDG_STATE_HOME is unset.
func StateDir() (string, error) {
	return resolve("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func resolve(env, fallback string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, fallback)
	}
	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
