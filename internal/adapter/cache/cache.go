// Package cache keeps recently fetched record sets in memory so that
// returning to a measure does not reread it from the store.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/health-equity-map/internal/domain"
	"github.com/couchcryptid/health-equity-map/internal/observability"
)

// Source is the data source being cached.
type Source interface {
	ListMeasures(ctx context.Context, kind domain.MeasureKind) ([]domain.Measure, error)
	FetchRecords(ctx context.Context, q domain.Query) ([]domain.MeasureRecord, error)
}

// CachedSource wraps a Source with in-memory LRU caches. Entries expire after
// ttl; a zero ttl keeps them until evicted. Returned slices are shared
// between callers and must not be modified.
type CachedSource struct {
	inner    Source
	metrics  *observability.Metrics
	records  *lruCache[[]domain.MeasureRecord]
	measures *lruCache[[]domain.Measure]
}

// NewCachedSource creates a cache decorator around a source. Pass nil for clk
// to use the real clock.
func NewCachedSource(inner Source, maxEntries int, ttl time.Duration, clk clockwork.Clock, metrics *observability.Metrics) *CachedSource {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return &CachedSource{
		inner:    inner,
		metrics:  metrics,
		records:  newLRUCache[[]domain.MeasureRecord](maxEntries, ttl, clk),
		measures: newLRUCache[[]domain.Measure](2, ttl, clk),
	}
}

func (c *CachedSource) ListMeasures(ctx context.Context, kind domain.MeasureKind) ([]domain.Measure, error) {
	key := string(kind)
	if m, ok := c.measures.get(key); ok {
		return m, nil
	}
	m, err := c.inner.ListMeasures(ctx, kind)
	if err != nil {
		return nil, err
	}
	c.measures.put(key, m)
	return m, nil
}

func (c *CachedSource) FetchRecords(ctx context.Context, q domain.Query) ([]domain.MeasureRecord, error) {
	key := fmt.Sprintf("%s|%s|%s", q.Kind, q.Granularity, q.MeasureID)
	if records, ok := c.records.get(key); ok {
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return records, nil
	}
	c.metrics.CacheLookups.WithLabelValues("miss").Inc()

	records, err := c.inner.FetchRecords(ctx, q)
	if err != nil {
		return nil, err
	}
	// Errors are not cached so a missing file can appear later.
	c.records.put(key, records)
	return records, nil
}

// lruCache is a simple thread-safe LRU cache with optional expiry.
type lruCache[V any] struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key     string
	value   V
	expires time.Time
	prev    *entry[V]
	next    *entry[V]
}

func newLRUCache[V any](maxEntries int, ttl time.Duration, clk clockwork.Clock) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clk,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.ttl > 0 && !c.clock.Now().Before(e.expires) {
		delete(c.entries, key)
		c.remove(e)
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	if c.maxEntries <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.clock.Now().Add(c.ttl)
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expires = expires
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value, expires: expires}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[V]) remove(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
