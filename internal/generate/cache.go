package generate

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of combinators a Cache keeps.
const DefaultCacheSize = 2048

// Key identifies a detached combinator. Profile partitions the cache
// between engines with different strategies or primitives; Signature
// records the decompositions and truncations chosen inside the subtree.
type Key struct {
	Profile   uuid.UUID
	Type      reflect.Type
	Signature string
}

// Cache is the process-wide structural cache. It is safe for concurrent
// use and evicts the least recently used combinator when full.
type Cache struct {
	entries *lru.Cache[Key, Combinator]
}

// NewCache creates a Cache holding up to size combinators.
func NewCache(size int) (*Cache, error) {
	entries, err := lru.New[Key, Combinator](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create combinator cache: %w", err)
	}

	return &Cache{entries: entries}, nil
}

// Get returns the combinator stored under k.
func (c *Cache) Get(k Key) (Combinator, bool) {
	return c.entries.Get(k)
}

// Add stores comb under k.
func (c *Cache) Add(k Key, comb Combinator) {
	c.entries.Add(k, comb)
}

// Len returns the number of cached combinators.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Purge drops every cached combinator.
func (c *Cache) Purge() {
	c.entries.Purge()
}
