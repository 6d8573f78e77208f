// Package cache provides date-keyed, time-boxed memoization cells.
// A cell holds a single entry, replaced atomically on Put. Concurrent
// recomputation is allowed and the last writer wins.
package cache

import (
	"sync/atomic"
	"time"
)

// Store is a single-slot cache keyed by calendar day
type Store[T any] interface {
	Get(key string) (T, bool)
	Put(key string, value T)
}

// Clock returns the current time
type Clock func() time.Time

type entry[T any] struct {
	date     string
	value    T
	cachedAt time.Time
}

// Cell keeps one value for a date key and a ttl
type Cell[T any] struct {
	ttl   time.Duration
	now   Clock
	entry atomic.Pointer[entry[T]]
}

// NewCell makes a cell with the given ttl, nil clock means time.Now
func NewCell[T any](ttl time.Duration, now Clock) *Cell[T] {
	if now == nil {
		now = time.Now
	}
	return &Cell[T]{ttl: ttl, now: now}
}

// Get returns the cached value if it was stored for the same date key
// and is younger than ttl
func (c *Cell[T]) Get(key string) (T, bool) {
	var zero T
	e := c.entry.Load()
	if e == nil || e.date != key {
		return zero, false
	}
	if c.now().Sub(e.cachedAt) >= c.ttl {
		return zero, false
	}
	return e.value, true
}

// Put replaces the cell content
func (c *Cell[T]) Put(key string, value T) {
	c.entry.Store(&entry[T]{date: key, value: value, cachedAt: c.now()})
}

// CachedAt returns when the current entry was stored, zero if empty
func (c *Cell[T]) CachedAt() time.Time {
	if e := c.entry.Load(); e != nil {
		return e.cachedAt
	}
	return time.Time{}
}
