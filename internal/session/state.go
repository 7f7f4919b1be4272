// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import "fmt"

// Status is the authentication status of a session.
type Status int

const (
	// Unauthenticated is the initial status; no data call is allowed.
	Unauthenticated Status = iota
	// Authenticated means the service accepted the credentials and issued a user id.
	Authenticated
	// Failed means the service rejected the credentials. It sticks until the
	// next explicit Authenticate.
	Failed
)

func (s Status) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// State is a snapshot of the session's authentication state.
type State struct {
	Status Status
	// UID is the authenticated user id; positive only when Authenticated.
	UID int64
	// Reason explains a Failed status.
	Reason string
}

func (s State) String() string {
	switch s.Status {
	case Authenticated:
		return fmt.Sprintf("authenticated(uid=%d)", s.UID)
	case Failed:
		return fmt.Sprintf("failed(%s)", s.Reason)
	}
	return s.Status.String()
}
