package cache

import (
	"sync"
	"time"

	"viewer/models"
)

// StatusCache keeps the newest bot status so the status badge and
// /status polling do not hit the database on every request.
type StatusCache struct {
	mu     sync.RWMutex
	status models.Status
	loaded bool
	at     time.Time
	ttl    time.Duration
}

// NewStatusCache returns a cache whose entry expires after ttl. A zero ttl
// never expires; writers refresh it through Set.
func NewStatusCache(ttl time.Duration) *StatusCache {
	return &StatusCache{ttl: ttl}
}

func (c *StatusCache) Set(s models.Status) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = s
	c.loaded = true
	c.at = time.Now()
}

func (c *StatusCache) Get() (models.Status, bool) {
	if c == nil {
		return models.Status{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return models.Status{}, false
	}
	if c.ttl > 0 && time.Since(c.at) > c.ttl {
		return models.Status{}, false
	}
	return c.status, true
}

func (c *StatusCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
}
