// pkg/provider/lti/replay.go
package lti

import (
	"strings"
	"sync"
	"time"
)

// ReplayCache enforces single-use semantics on a (key, timestamp, nonce)
// triple for the freshness window. Implementations must mark values as used
// atomically.
type ReplayCache interface {
	// Remember records value for ttl and returns true when this is the first
	// time it is seen (or a previous entry expired). It returns false when
	// the value is reused before expiry.
	Remember(value string, ttl time.Duration) bool
}

// NoopReplay accepts everything. Use it when replay protection is handled
// elsewhere in the deployment (e.g. a shared cache in front of several
// provider instances).
type NoopReplay struct{}

func (NoopReplay) Remember(string, time.Duration) bool { return true }

// InMemoryReplay is a process-local ReplayCache, safe for concurrent use.
// Expired entries are purged opportunistically on writes.
type InMemoryReplay struct {
	mu      sync.Mutex
	entries map[string]time.Time
	uses    uint64
	purgeN  uint64
}

// NewInMemoryReplay creates an in-memory replay cache that purges expired
// entries every purgeEvery calls to Remember (default 1024 when <= 0).
func NewInMemoryReplay(purgeEvery int) *InMemoryReplay {
	if purgeEvery <= 0 {
		purgeEvery = 1024
	}
	return &InMemoryReplay{
		entries: make(map[string]time.Time, 1024),
		purgeN:  uint64(purgeEvery),
	}
}

func (c *InMemoryReplay) Remember(value string, ttl time.Duration) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.uses++
	if c.uses%c.purgeN == 0 {
		for k, until := range c.entries {
			if !until.After(now) {
				delete(c.entries, k)
			}
		}
	}

	if until, ok := c.entries[value]; ok && until.After(now) {
		return false
	}
	c.entries[value] = now.Add(ttl)
	return true
}
