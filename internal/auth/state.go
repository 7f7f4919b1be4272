// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"encoding/json"
	"errors"
	"time"

	"odoolink/cli/internal/keychain"
)

// State is the persisted result of the last login of a profile.
type State struct {
	LoggedIn bool      `json:"logged_in"`
	Profile  string    `json:"profile"`
	URL      string    `json:"url"`
	Database string    `json:"database"`
	Account  string    `json:"account"`
	UID      int64     `json:"uid"`
	At       time.Time `json:"at"`
}

// Store is the secret storage used for passwords and state.
// *keychain.Manager implements it.
type Store interface {
	SavePassword(profile, password string) error
	LoadPassword(profile string) (string, error)
	SaveSessionState(profile string, data []byte) error
	LoadSessionState(profile string) ([]byte, error)
	ClearProfile(profile string) error
}

// loadState reads the state of profile. Missing state yields the zero value.
func loadState(store Store, profile string) (State, error) {
	var s State
	data, err := store.LoadSessionState(profile)
	if err != nil {
		if errors.Is(err, keychain.ErrNotFound) {
			return s, nil
		}
		return s, err
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, err
	}
	return s, nil
}

func saveState(store Store, s State) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return store.SaveSessionState(s.Profile, b)
}
