// Package cache provides the per-entity read-through cache. Each entity
// module owns one bucket holding every key space for that entity (id:,
// email:, sku:, number:, list:...), so a bucket purge invalidates cached
// lists along with stale secondary keys.
package cache

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type Cache[T any] struct {
	lru *expirable.LRU[string, T]
}

// New creates a fixed-capacity cache whose entries expire after ttl.
func New[T any](size int, ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		lru: expirable.NewLRU[string, T](size, nil, ttl),
	}
}

func (c *Cache[T]) Get(key string) (T, bool) {
	return c.lru.Get(key)
}

func (c *Cache[T]) Set(key string, value T) {
	c.lru.Add(key, value)
}

func (c *Cache[T]) Evict(keys ...string) {
	for _, key := range keys {
		c.lru.Remove(key)
	}
}

func (c *Cache[T]) Purge() {
	c.lru.Purge()
}

func (c *Cache[T]) Len() int {
	return c.lru.Len()
}

// Entity is one entity type's cache bucket: single records keyed by id:
// and unique-field prefixes, plus list results keyed by list:. Both sides
// share one invalidation domain.
type Entity[T any] struct {
	items *Cache[T]
	lists *Cache[[]T]
}

func NewEntity[T any](size int, ttl time.Duration) *Entity[T] {
	return &Entity[T]{
		items: New[T](size, ttl),
		lists: New[[]T](size, ttl),
	}
}

func (e *Entity[T]) Get(key string) (T, bool) {
	return e.items.Get(key)
}

func (e *Entity[T]) Set(key string, value T) {
	e.items.Set(key, value)
}

func (e *Entity[T]) GetList(key string) ([]T, bool) {
	return e.lists.Get(key)
}

func (e *Entity[T]) SetList(key string, values []T) {
	e.lists.Set(key, values)
}

// Refresh is the single write-path invalidation helper: it purges the
// whole bucket (dropping cached lists and any stale secondary key such as
// an old sku:), then re-inserts the fresh value under every key that
// addresses it. Call sites must not evict individual keys by hand.
func (e *Entity[T]) Refresh(value T, keys ...string) {
	e.items.Purge()
	e.lists.Purge()
	for _, key := range keys {
		e.items.Set(key, value)
	}
}

// Invalidate clears the bucket without re-inserting anything. Used after
// deletes.
func (e *Entity[T]) Invalidate() {
	e.items.Purge()
	e.lists.Purge()
}

func IDKey(id string) string {
	return "id:" + id
}

func EmailKey(email string) string {
	return "email:" + email
}

func SKUKey(sku string) string {
	return "sku:" + sku
}

func NumberKey(number string) string {
	return "number:" + number
}

func ListKey(parts ...string) string {
	return "list:" + strings.Join(parts, ":")
}
