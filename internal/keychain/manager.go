// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keychain operations for odoolink.
// It stores the secrets of each connection profile, namely the service
// password and the last known session state, in the OS credential store.
//
// Supported stores are macOS Keychain, Windows Credential Manager and, on
// Linux, the Secret Service (GNOME Keyring), KWallet or pass.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

// Global keychain manager instance
var (
	globalManager *Manager
	globalError   error
	mu            sync.Mutex
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "odoolink"

// Key prefixes for per-profile secrets.
const (
	keyPassword     = "password/"
	keySessionState = "session_state/"
)

// ErrNotFound is returned when a profile has no stored secret.
var ErrNotFound = keyring.ErrKeyNotFound

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// NewManager creates a new keychain manager with the OS keyring initialized.
func NewManager() (*Manager, error) {
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// NewWithKeyring wraps an already opened keyring, e.g. keyring.NewArrayKeyring
// in tests.
func NewWithKeyring(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// GetManager returns the global keychain manager instance.
// If not initialized, it will be created on first call.
// If initialization fails, it will retry on subsequent calls.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}

	globalManager, globalError = NewManager()
	if globalError != nil {
		return nil, globalError
	}
	return globalManager, nil
}

// openRing opens the OS keyring using native platform backends only.
// There is no unencrypted file fallback.
func openRing() (keyring.Keyring, error) {
	var allowed []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		// pass requires the 'pass' utility: brew install pass
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	case "linux", "freebsd", "openbsd":
		allowed = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, errors.New("secure storage not supported on " + runtime.GOOS)
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowed,
		PassPrefix:      ServiceName,
		WinCredPrefix:   ServiceName,
	}
	ring, err := keyring.Open(cfg)
	if err != nil {
		if runtime.GOOS == "linux" {
			return nil, errors.New("no secret store available; start gnome-keyring or kwallet, or set up 'pass', or export ODOOLINK_PASSWORD")
		}
		return nil, err
	}
	return ring, nil
}

// SavePassword stores the service password of profile.
func (m *Manager) SavePassword(profile, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Set(keyring.Item{
		Key:   keyPassword + profile,
		Data:  []byte(password),
		Label: ServiceName + " password (" + profile + ")",
	})
}

// LoadPassword retrieves the service password of profile.
func (m *Manager) LoadPassword(profile string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, err := m.ring.Get(keyPassword + profile)
	if err != nil {
		return "", err
	}
	if len(it.Data) == 0 {
		return "", errors.New("empty password")
	}
	return string(it.Data), nil
}

// SaveSessionState stores serialized session state of profile.
func (m *Manager) SaveSessionState(profile string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Set(keyring.Item{Key: keySessionState + profile, Data: data})
}

// LoadSessionState retrieves serialized session state of profile.
func (m *Manager) LoadSessionState(profile string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, err := m.ring.Get(keySessionState + profile)
	if err != nil {
		return nil, err
	}
	return it.Data, nil
}

// ClearProfile removes every secret of profile. Missing keys are ignored.
func (m *Manager) ClearProfile(profile string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range []string{keyPassword + profile, keySessionState + profile} {
		if err := m.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
			return err
		}
	}
	return nil
}
