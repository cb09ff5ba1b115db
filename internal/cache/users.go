package cache

import (
	"sync"
	"time"

	"github.com/spiffcs/codewatch/internal/model"
)

// UserCache caches user profiles. The logged-in user's profile is pinned
// outside the recent history so browsing many other users never evicts it.
type UserCache struct {
	mu          sync.Mutex
	primaryName string
	primary     *Entry[*model.UserInfo]
	primaryHits int
	recent      *Entity[*model.UserInfo]
	opts        options
}

// NewUserCache creates a user cache with room for capacity non-primary users.
func NewUserCache(capacity int, opts ...Option) *UserCache {
	o := options{now: time.Now, name: "users"}
	for _, opt := range opts {
		opt(&o)
	}
	return &UserCache{
		recent: NewEntity[*model.UserInfo](capacity, append([]Option{WithName("users")}, opts...)...),
		opts:   o,
	}
}

// SetPrimary pins username. An entry already cached for username is moved
// out of the recent history; the previously pinned profile is dropped.
// An empty username removes the pin.
func (c *UserCache) SetPrimary(username string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if username == c.primaryName {
		return
	}
	c.primaryName = username
	c.primary = nil
	if username == "" {
		return
	}
	if entry, ok := c.recent.Lookup(username); ok {
		c.recent.Invalidate(username)
		c.primary = &entry
	}
}

// Primary returns the pinned username, if any.
func (c *UserCache) Primary() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.primaryName
}

// Get returns the fresh profile for username.
func (c *UserCache) Get(username string) (*model.UserInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isPrimary(username) {
		if c.primary != nil && !c.expired(*c.primary) {
			c.primaryHits++
			return c.primary.Value, true
		}
		return nil, false
	}
	return c.recent.Get(username)
}

// Put stores a profile, replacing any previous one for username.
func (c *UserCache) Put(username string, user *model.UserInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isPrimary(username) {
		c.primary = &Entry[*model.UserInfo]{Key: username, Value: user, FetchedAt: c.opts.now()}
		return
	}
	c.recent.Put(username, user)
}

// Invalidate removes the profile for username, pinned or not.
func (c *UserCache) Invalidate(username string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isPrimary(username) {
		c.primary = nil
	}
	c.recent.Invalidate(username)
}

// Clear removes every profile but keeps the pin.
func (c *UserCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.primary = nil
	c.recent.Clear()
}

// Stats returns statistics for the recent history plus the pinned entry.
func (c *UserCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.recent.Stats()
	s.Hits += c.primaryHits
	if c.primary != nil {
		s.Size++
	}
	return s
}

func (c *UserCache) isPrimary(username string) bool {
	return username != "" && username == c.primaryName
}

func (c *UserCache) expired(e Entry[*model.UserInfo]) bool {
	if c.opts.maxAge <= 0 {
		return false
	}
	return c.opts.now().Sub(e.FetchedAt) > c.opts.maxAge
}
