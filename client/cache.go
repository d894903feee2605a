package client

import (
	"encoding/json"
	"os"
	"sync"
)

// CachedSession is what a device remembers about a table it already joined,
// so a returning client can skip the validate flow.
type CachedSession struct {
	SessionID uint   `json:"sessionId"`
	Pin       string `json:"pin"`
}

// SessionCache is a small file-backed map keyed by table number, the
// device-local equivalent of browser sessionStorage. It may be stale,
// cleared or absent at any time; every failure path just means the caller
// falls back to validate-or-create.
type SessionCache struct {
	mu      sync.Mutex
	path    string
	entries map[string]CachedSession
}

// OpenSessionCache loads the cache file if it exists. A missing or corrupt
// file is not an error, it just starts empty.
func OpenSessionCache(path string) *SessionCache {
	c := &SessionCache{
		path:    path,
		entries: make(map[string]CachedSession),
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		c.entries = make(map[string]CachedSession)
	}
	return c
}

func (c *SessionCache) Get(tableNumber string) (CachedSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[tableNumber]
	return entry, ok
}

func (c *SessionCache) Put(tableNumber string, sessionID uint, pin string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[tableNumber] = CachedSession{SessionID: sessionID, Pin: pin}
	return c.saveLocked()
}

// Clear drops the entry for a table. Called when the server answers
// NotFound or Unauthorized: those are not transient, the cached credentials
// are dead.
func (c *SessionCache) Clear(tableNumber string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, tableNumber)
	return c.saveLocked()
}

func (c *SessionCache) saveLocked() error {
	data, err := json.Marshal(c.entries)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o600)
}
