// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package serverinfo

import "sync"

var (
	// Process-wide cache keyed by base URL.
	// Lives only in process memory and is cleared when CLI exits.
	globalCache     = map[string]Info{}
	globalCacheLock sync.RWMutex
)

// GetCached returns the cached info of url.
func GetCached(url string) (Info, bool) {
	globalCacheLock.RLock()
	defer globalCacheLock.RUnlock()
	info, ok := globalCache[url]
	return info, ok
}

// SetCached stores info for url.
func SetCached(url string, info Info) {
	globalCacheLock.Lock()
	defer globalCacheLock.Unlock()
	globalCache[url] = info
}

// ClearCache empties the cache (primarily for testing).
func ClearCache() {
	globalCacheLock.Lock()
	defer globalCacheLock.Unlock()
	globalCache = map[string]Info{}
}
