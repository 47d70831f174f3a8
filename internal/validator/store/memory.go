package store

import (
	"context"
	"sync"
)

// InMemoryDirectory is a Directory backed by a map of member numbers to
// their active flag. Used for local development and tests.
type InMemoryDirectory struct {
	mu      sync.RWMutex
	members map[string]bool
}

// NewInMemoryDirectory seeds the directory with active members.
func NewInMemoryDirectory(active ...string) *InMemoryDirectory {
	d := &InMemoryDirectory{members: make(map[string]bool, len(active))}
	for _, number := range active {
		d.members[number] = true
	}
	return d
}

func (d *InMemoryDirectory) Lookup(_ context.Context, number string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.members[number], nil
}

// Upsert adds or updates a member.
func (d *InMemoryDirectory) Upsert(_ context.Context, number string, active bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.members[number] = active
	return nil
}

// InMemoryCache is a process-local Cache without expiry.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]bool
}

func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{entries: make(map[string]bool)}
}

func (c *InMemoryCache) Get(_ context.Context, number string) (bool, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	valid, found := c.entries[number]
	return valid, found, nil
}

func (c *InMemoryCache) Set(_ context.Context, number string, valid bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[number] = valid
	return nil
}
