// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; passwords go to the OS keychain.
//
// The file is TOML:
//
//	log_level = "info"
//	default_profile = "prod"
//
//	[profiles.prod]
//	url = "https://erp.example.com"
//	database = "prod"
//	username = "admin"
//
//	[transport]
//	connect_timeout = "10s"
//	read_timeout = "60s"
//	retries = 2
//	retry_delay = "500ms"
//	rate_limit = 0.0
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"odoolink/cli/internal/xdg"

	"github.com/BurntSushi/toml"
)

// Environment variables consulted by the CLI.
const (
	EnvProfile  = "ODOOLINK_PROFILE"
	EnvPassword = "ODOOLINK_PASSWORD"
	EnvLogLevel = "ODOOLINK_LOG_LEVEL"
)

// DefaultProfileName is used when nothing else selects a profile.
const DefaultProfileName = "default"

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel       string             `toml:"log_level"`
	DefaultProfile string             `toml:"default_profile,omitempty"`
	Profiles       map[string]Profile `toml:"profiles,omitempty"`
	Transport      Transport          `toml:"transport"`
}

// Profile names one service connection.
type Profile struct {
	URL      string `toml:"url"`
	Database string `toml:"database"`
	Username string `toml:"username"`
}

// Validate reports the first missing connection parameter.
func (p Profile) Validate() error {
	switch {
	case strings.TrimSpace(p.URL) == "":
		return errors.New("url required")
	case strings.TrimSpace(p.Database) == "":
		return errors.New("database required")
	case strings.TrimSpace(p.Username) == "":
		return errors.New("username required")
	}
	return nil
}

// Transport tunes the HTTP transport.
type Transport struct {
	ConnectTimeout Duration `toml:"connect_timeout"`
	ReadTimeout    Duration `toml:"read_timeout"`
	Retries        int      `toml:"retries"`
	RetryDelay     Duration `toml:"retry_delay"`
	// RateLimit caps requests per second; 0 disables it.
	RateLimit float64 `toml:"rate_limit"`
	Burst     int     `toml:"burst,omitempty"`
}

// Duration is a time.Duration written as text ("10s") in the config file.
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		LogLevel: "info",
		Profiles: map[string]Profile{},
		Transport: Transport{
			ConnectTimeout: Duration{10 * time.Second},
			ReadTimeout:    Duration{60 * time.Second},
			Retries:        2,
			RetryDelay:     Duration{500 * time.Millisecond},
		},
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads configuration; missing file returns defaults.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Defaults(), err
	}
	return LoadFile(p)
}

// LoadFile reads configuration from path; a missing file returns defaults.
// Keys absent from the file keep their default values.
func LoadFile(path string) (Config, error) {
	c := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if _, err := toml.Decode(string(data), &c); err != nil {
		return c, fmt.Errorf("parse %s: %w", path, err)
	}
	if c.Profiles == nil {
		c.Profiles = map[string]Profile{}
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	return SaveFile(p, c)
}

// SaveFile writes configuration to path with 0600 permissions.
func SaveFile(path string, c Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

// ProfileName resolves which profile to use: an explicit name wins, then
// $ODOOLINK_PROFILE, then default_profile, then "default".
func (c Config) ProfileName(explicit string) string {
	if n := strings.TrimSpace(explicit); n != "" {
		return n
	}
	if n := strings.TrimSpace(os.Getenv(EnvProfile)); n != "" {
		return n
	}
	if c.DefaultProfile != "" {
		return c.DefaultProfile
	}
	return DefaultProfileName
}

// Profile returns the named profile.
func (c Config) Profile(name string) (Profile, error) {
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile %q not found; run 'odoolink login --profile %s'", name, name)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("profile %q: %w", name, err)
	}
	return p, nil
}

// SetProfile stores p under name. The first stored profile becomes the
// default.
func (c *Config) SetProfile(name string, p Profile) {
	if c.Profiles == nil {
		c.Profiles = map[string]Profile{}
	}
	c.Profiles[name] = p
	if c.DefaultProfile == "" {
		c.DefaultProfile = name
	}
}

// RemoveProfile deletes name and clears the default if it pointed there.
func (c *Config) RemoveProfile(name string) {
	delete(c.Profiles, name)
	if c.DefaultProfile == name {
		c.DefaultProfile = ""
	}
}

// ProfileNames returns the configured profile names, sorted.
func (c Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for n := range c.Profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
