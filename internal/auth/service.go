// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth provides login, logout and session bootstrap for the CLI.
// Connection parameters live in the config file; the password and the result
// of the last login are kept in the OS keychain, per profile.
package auth

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"odoolink/cli/internal/config"
	rpcerrors "odoolink/cli/internal/errors"
	"odoolink/cli/internal/keychain"
	"odoolink/cli/internal/logging"
	"odoolink/cli/internal/metrics"
	"odoolink/cli/internal/session"
	"odoolink/cli/internal/transport"

	"github.com/pterm/pterm"
)

// Service centralizes authentication-related operations against the remote
// service and local secure storage.
type Service struct {
	store   Store
	sender  transport.Sender
	logger  *pterm.Logger
	metrics *metrics.Collectors
	now     func() time.Time
}

// NewService constructs an auth Service.
func NewService(store Store, sender transport.Sender, logger *pterm.Logger, m *metrics.Collectors) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{store: store, sender: sender, logger: logger, metrics: m, now: time.Now}
}

// Login authenticates against p with password. On success the password and
// the resulting state are stored under name and the session is returned.
// A rejected login clears any previously stored secrets of the profile.
func (s *Service) Login(ctx context.Context, name string, p config.Profile, password string) (*session.Session, State, error) {
	if err := p.Validate(); err != nil {
		return nil, State{}, err
	}
	sess := s.newSession(p, password)
	uid, err := sess.Authenticate(ctx)
	if err != nil {
		if errors.Is(err, rpcerrors.ErrAuthenticationFailed) {
			_ = s.store.ClearProfile(name)
		}
		return nil, State{}, err
	}

	st := State{
		LoggedIn: true,
		Profile:  name,
		URL:      sess.URL(),
		Database: p.Database,
		Account:  p.Username,
		UID:      uid,
		At:       s.now().UTC(),
	}
	if err := s.store.SavePassword(name, password); err != nil {
		return nil, State{}, err
	}
	if err := saveState(s.store, st); err != nil {
		return nil, State{}, err
	}
	return sess, st, nil
}

// Connect opens an authenticated session for a stored profile. The password
// comes from $ODOOLINK_PASSWORD when set, otherwise from the keychain.
func (s *Service) Connect(ctx context.Context, name string, p config.Profile) (*session.Session, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	password, err := s.Password(name)
	if err != nil {
		return nil, err
	}
	sess := s.newSession(p, password)
	if _, err := sess.Authenticate(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}

// Open returns an unauthenticated session for p, for calls such as version
// that need no login.
func (s *Service) Open(p config.Profile) *session.Session {
	password, _ := s.Password("")
	return s.newSession(p, password)
}

// Password resolves the password of profile name.
func (s *Service) Password(name string) (string, error) {
	if pw := os.Getenv(config.EnvPassword); pw != "" {
		return pw, nil
	}
	if name == "" {
		return "", nil
	}
	pw, err := s.store.LoadPassword(name)
	if err != nil {
		if errors.Is(err, keychain.ErrNotFound) {
			return "", rpcerrors.New(rpcerrors.NotAuthenticated, "no stored password for profile "+name)
		}
		return "", err
	}
	return pw, nil
}

// WhoAmI returns the stored login state of profile name.
func (s *Service) WhoAmI(name string) (State, bool, error) {
	st, err := loadState(s.store, name)
	if err != nil {
		return State{}, false, err
	}
	return st, st.LoggedIn, nil
}

// Logout clears the stored secrets of profile name.
func (s *Service) Logout(name string) error {
	return s.store.ClearProfile(name)
}

func (s *Service) newSession(p config.Profile, password string) *session.Session {
	return session.New(session.Config{
		URL:      strings.TrimSpace(p.URL),
		Database: p.Database,
		Username: p.Username,
		Password: password,
	}, s.sender, session.WithLogger(s.logger), session.WithMetrics(s.metrics))
}
