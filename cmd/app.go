// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"os"

	"odoolink/cli/internal/auth"
	"odoolink/cli/internal/config"
	"odoolink/cli/internal/keychain"
	"odoolink/cli/internal/logging"
	"odoolink/cli/internal/metrics"
	"odoolink/cli/internal/session"
	"odoolink/cli/internal/transport"

	"github.com/pterm/pterm"
)

// app bundles what every command needs. It is built once per invocation in
// the root command's PersistentPreRunE.
type app struct {
	cfg     config.Config
	logger  *pterm.Logger
	metrics *metrics.Collectors
	sender  transport.Sender
	auth    *auth.Service
}

var current *app

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if env := os.Getenv(config.EnvLogLevel); env != "" {
		level = env
	}
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	logger := logging.New(level, os.Stderr)
	m := metrics.New()

	sender := transport.New(transport.Options{
		ConnectTimeout: cfg.Transport.ConnectTimeout.Duration,
		ReadTimeout:    cfg.Transport.ReadTimeout.Duration,
		Retries:        cfg.Transport.Retries,
		RetryDelay:     cfg.Transport.RetryDelay.Duration,
		RateLimit:      cfg.Transport.RateLimit,
		Burst:          cfg.Transport.Burst,
		UserAgent:      "odoolink-cli/" + Version,
		Logger:         logger,
		Metrics:        m,
	})

	var store auth.Store
	if km, err := keychain.GetManager(); err == nil {
		store = km
	} else {
		logger.Debug("keychain unavailable", logger.Args("error", err.Error()))
		store = unavailableStore{err: err}
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		sender:  sender,
		auth:    auth.NewService(store, sender, logger, m),
	}, nil
}

// profile resolves the active profile from --profile, the environment and
// the config file.
func (a *app) profile() (string, config.Profile, error) {
	name := a.cfg.ProfileName(flagProfile)
	p, err := a.cfg.Profile(name)
	return name, p, err
}

// connect returns an authenticated session for the active profile.
func (a *app) connect(ctx context.Context) (*session.Session, error) {
	name, p, err := a.profile()
	if err != nil {
		return nil, err
	}
	return a.auth.Connect(ctx, name, p)
}

// unavailableStore stands in for the keychain on systems without one, so
// that ODOOLINK_PASSWORD still works.
type unavailableStore struct{ err error }

func (u unavailableStore) SavePassword(string, string) error { return u.err }
func (u unavailableStore) LoadPassword(string) (string, error) { return "", u.err }
func (u unavailableStore) SaveSessionState(string, []byte) error { return u.err }
func (u unavailableStore) LoadSessionState(string) ([]byte, error) { return nil, keychain.ErrNotFound }
func (u unavailableStore) ClearProfile(string) error { return nil }
