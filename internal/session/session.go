// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session implements the authenticated connection to the remote
// business-object service. A Session owns the connection parameters and the
// authentication state machine
//
//	Unauthenticated --authenticate--> Authenticated(uid) | Failed(reason)
//
// and dispatches every data operation through the generic Execute, which
// decodes the wire result and coerces it to the shape the caller asked for.
//
// The session is the only writer of its state. Concurrent Authenticate calls
// share one in-flight request, and transport failures, faults and
// cancellation never change the state.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	rpcerrors "odoolink/cli/internal/errors"
	"odoolink/cli/internal/logging"
	"odoolink/cli/internal/metrics"
	"odoolink/cli/internal/transport"
	"odoolink/cli/internal/xmlrpc"

	"github.com/pterm/pterm"
	"golang.org/x/sync/singleflight"
)

// Endpoint paths below the service base URL.
const (
	CommonPath = "/xmlrpc/2/common"
	ObjectPath = "/xmlrpc/2/object"
)

// Config holds the connection parameters of one session.
type Config struct {
	URL      string
	Database string
	Username string
	Password string
}

// Option customises a Session.
type Option func(*Session)

// WithLogger sets the structured logger.
func WithLogger(l *pterm.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *metrics.Collectors) Option {
	return func(s *Session) { s.metrics = m }
}

// Session is one logical connection to the service.
type Session struct {
	cfg     Config
	sender  transport.Sender
	logger  *pterm.Logger
	metrics *metrics.Collectors

	mu    sync.RWMutex
	state State

	// auth collapses concurrent Authenticate calls into one request.
	auth singleflight.Group
}

// New creates an unauthenticated session.
func New(cfg Config, sender transport.Sender, opts ...Option) *Session {
	cfg.URL = strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	s := &Session{
		cfg:    cfg,
		sender: sender,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot of the authentication state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Database returns the database name the session is bound to.
func (s *Session) Database() string { return s.cfg.Database }

// Username returns the login the session authenticates as.
func (s *Session) Username() string { return s.cfg.Username }

// URL returns the service base URL.
func (s *Session) URL() string { return s.cfg.URL }

// Reset drops the authenticated identity and returns to Unauthenticated.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{Status: Unauthenticated}
}

// Authenticate sends authenticate(db, login, password, {}) to the common
// endpoint. A positive user id moves the session to Authenticated; a
// non-positive id or false moves it to Failed and returns
// authentication_failed. Any other failure, including cancellation of ctx,
// leaves the state as it was.
//
// Concurrent callers share a single request and observe the same result. The
// request runs under the context of the caller that started it. A caller
// whose own context ends stops waiting; if the starting caller gives up while
// others still wait, the next waiter sends a fresh request under its own
// context.
func (s *Session) Authenticate(ctx context.Context) (int64, error) {
	for {
		var started atomic.Bool
		ch := s.auth.DoChan("authenticate", func() (any, error) {
			started.Store(true)
			uid, err := s.authenticate(ctx)
			if err != nil && ctx.Err() != nil {
				return uid, &abandonedError{err: err}
			}
			return uid, err
		})

		var r singleflight.Result
		select {
		case r = <-ch:
		case <-ctx.Done():
			if started.Load() {
				// Our own request; it ends promptly now that ctx is done.
				r = <-ch
				break
			}
			select {
			case r = <-ch:
			default:
				return 0, rpcerrors.Wrap(rpcerrors.TransportError, "authentication cancelled", ctx.Err())
			}
		}

		if r.Err != nil {
			var ab *abandonedError
			if errors.As(r.Err, &ab) {
				if ctx.Err() == nil {
					s.logger.Debug("shared authentication abandoned, retrying", s.logger.Args("db", s.cfg.Database))
					continue
				}
				return 0, ab.err
			}
			return 0, r.Err
		}
		return r.Val.(int64), nil
	}
}

// abandonedError marks a shared authentication that failed because the
// context it ran under ended.
type abandonedError struct{ err error }

func (e *abandonedError) Error() string { return e.err.Error() }
func (e *abandonedError) Unwrap() error { return e.err }

func (s *Session) authenticate(ctx context.Context) (int64, error) {
	s.logger.Debug("authenticating", s.logger.Args("url", logging.Mask(s.cfg.URL), "db", s.cfg.Database, "user", s.cfg.Username))
	v, err := s.call(ctx, CommonPath, "authenticate", true,
		s.cfg.Database, s.cfg.Username, s.cfg.Password, map[string]any{})
	if err != nil {
		return 0, err
	}

	var uid int64
	switch t := v.(type) {
	case xmlrpc.Int:
		uid = int64(t)
	case xmlrpc.Bool:
		if t {
			return 0, &rpcerrors.CoercionError{Expected: "int", Got: "boolean(true)"}
		}
	default:
		return 0, &rpcerrors.CoercionError{Expected: "int", Got: v.Kind().String()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return 0, rpcerrors.Wrap(rpcerrors.TransportError, "authentication cancelled", err)
	}
	if uid <= 0 {
		reason := fmt.Sprintf("login %q rejected by database %q", s.cfg.Username, s.cfg.Database)
		s.state = State{Status: Failed, Reason: reason}
		s.metrics.ObserveAuthFailure()
		s.logger.Warn("authentication rejected", s.logger.Args("db", s.cfg.Database, "user", s.cfg.Username))
		return 0, rpcerrors.New(rpcerrors.AuthenticationFailed, reason)
	}
	s.state = State{Status: Authenticated, UID: uid}
	s.logger.Debug("authenticated", s.logger.Args("db", s.cfg.Database, "user", s.cfg.Username, "uid", uid))
	return uid, nil
}

// uid returns the authenticated user id or not_authenticated.
func (s *Session) uid() (int64, error) {
	st := s.State()
	switch st.Status {
	case Authenticated:
		return st.UID, nil
	case Failed:
		return 0, rpcerrors.New(rpcerrors.NotAuthenticated, "last authentication failed: "+st.Reason)
	}
	return 0, rpcerrors.New(rpcerrors.NotAuthenticated, "session is unauthenticated")
}

// call builds, sends and parses one method call. Faults come back as
// *errors.Fault.
func (s *Session) call(ctx context.Context, path, method string, idempotent bool, args ...any) (xmlrpc.Value, error) {
	c, err := xmlrpc.NewCall(method, args...)
	if err != nil {
		return nil, err
	}
	body, err := xmlrpc.Build(c)
	if err != nil {
		return nil, err
	}
	label := method
	if method == "execute_kw" && len(args) > 4 {
		if m, ok := args[4].(string); ok {
			label = m
		}
	}
	start := timeNow()
	raw, err := s.sender.Send(ctx, transport.Request{
		URL:        s.cfg.URL + path,
		Body:       body,
		Method:     label,
		Idempotent: idempotent,
		Secret:     s.cfg.Password,
	})
	if err != nil {
		return nil, err
	}
	res, err := xmlrpc.Parse(raw)
	if err != nil {
		return nil, err
	}
	if res.Fault != nil {
		s.metrics.ObserveCall(label, metrics.OutcomeFault, timeNow().Sub(start))
		s.logger.Debug("xmlrpc fault", s.logger.Args("method", label, "code", res.Fault.Code))
		return nil, res.Fault
	}
	s.metrics.ObserveCall(label, metrics.OutcomeOK, timeNow().Sub(start))
	return res.Value, nil
}

// Version calls version() on the common endpoint. It needs no authentication.
func (s *Session) Version(ctx context.Context) (map[string]any, error) {
	v, err := s.call(ctx, CommonPath, "version", true)
	if err != nil {
		return nil, err
	}
	native, err := xmlrpc.Decode(v)
	if err != nil {
		return nil, err
	}
	m, ok := native.(map[string]any)
	if !ok {
		return nil, &rpcerrors.CoercionError{Expected: "struct", Got: xmlrpc.ShapeOf(native)}
	}
	return m, nil
}
