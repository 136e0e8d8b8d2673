// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License
// is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express
// or implied. See the License for the specific language governing permissions and limitations under the License.

// Package cache provides a bounded, thread-safe LRU key-value store for
// decoded images. Entries carry an explicit byte cost; inserts evict the
// least-recently-accessed entries synchronously until the cache is under
// its byte and entry bounds again. Absence is a miss, never an error.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/urlimage-io/urlimage/pkg/metrics"
	"github.com/urlimage-io/urlimage/pkg/params"
)

// Func is a generic callback for entry events in the cache.
type Func[K comparable, V any] func(K, V)

// Cache is a key-value cache whose entries stay resident until evicted or
// manually invalidated.
type Cache[K comparable, V any] interface {
	// Get returns the value associated with key and refreshes its
	// access order, or (zero, false) on a miss.
	Get(key K) (V, bool)

	// Put associates value with key at the given byte cost, replacing
	// any previous entry, and evicts in LRU order until the cache is
	// under capacity. The entry being inserted is never evicted by its
	// own insertion.
	Put(key K, value V, size int64)

	// Contains reports presence without touching access order.
	Contains(key K) bool

	// Invalidate discards the cached value of the given key.
	Invalidate(key K)

	// InvalidateAll discards all entries.
	InvalidateAll()

	// Len returns the number of resident entries.
	Len() int

	// ResidentBytes returns the summed byte cost of resident entries.
	ResidentBytes() int64

	// Stats returns cache statistics.
	Stats() Stats
}

type cacheEntry[K comparable, V any] struct {
	key        K
	value      V
	size       int64
	lastAccess time.Time
}

type lruCache[K comparable, V any] struct {
	rwlock sync.RWMutex
	// the element value is *cacheEntry[K, V]
	items      map[K]*list.Element
	accessList *list.List

	residentBytes int64
	capacity      int64
	maxEntries    int64

	onInsertion Func[K, V]
	onRemoval   Func[K, V]

	stats statsCounter
}

// Option configures an LRU cache.
type Option[K comparable, V any] func(c *lruCache[K, V])

// WithCapacity bounds the summed byte cost of resident entries.
func WithCapacity[K comparable, V any](capacity int64) Option[K, V] {
	return func(c *lruCache[K, V]) {
		c.capacity = capacity
	}
}

// WithMaxEntries bounds the number of resident entries, 0 means unbounded.
func WithMaxEntries[K comparable, V any](n int64) Option[K, V] {
	return func(c *lruCache[K, V]) {
		c.maxEntries = n
	}
}

// WithInsertionListener sets a callback invoked after each insert.
func WithInsertionListener[K comparable, V any](fn Func[K, V]) Option[K, V] {
	return func(c *lruCache[K, V]) {
		c.onInsertion = fn
	}
}

// WithRemovalListener sets a callback invoked after each eviction or
// invalidation.
func WithRemovalListener[K comparable, V any](fn Func[K, V]) Option[K, V] {
	return func(c *lruCache[K, V]) {
		c.onRemoval = fn
	}
}

// NewLRUCache returns a cache bounded by the configured byte capacity and
// optional entry count. Defaults come from params.
func NewLRUCache[K comparable, V any](opts ...Option[K, V]) Cache[K, V] {
	p := params.Get()
	c := &lruCache[K, V]{
		items:      make(map[K]*list.Element),
		accessList: list.New(),
		capacity:   p.CacheCapacityBytes,
		maxEntries: p.CacheMaxEntries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *lruCache[K, V]) Get(key K) (V, bool) {
	c.rwlock.Lock()
	defer c.rwlock.Unlock()

	iter, ok := c.items[key]
	if !ok {
		c.stats.misses.Inc()
		metrics.CacheMissesTotal.Inc()
		var zero V
		return zero, false
	}

	entry := iter.Value.(*cacheEntry[K, V])
	entry.lastAccess = time.Now()
	c.accessList.MoveToFront(iter)
	c.stats.hits.Inc()
	metrics.CacheHitsTotal.Inc()
	return entry.value, true
}

func (c *lruCache[K, V]) Contains(key K) bool {
	c.rwlock.RLock()
	defer c.rwlock.RUnlock()

	_, ok := c.items[key]
	return ok
}

func (c *lruCache[K, V]) Put(key K, value V, size int64) {
	if size < 0 {
		size = 0
	}

	c.rwlock.Lock()
	defer c.rwlock.Unlock()

	if iter, ok := c.items[key]; ok {
		entry := iter.Value.(*cacheEntry[K, V])
		c.residentBytes += size - entry.size
		entry.value = value
		entry.size = size
		entry.lastAccess = time.Now()
		c.accessList.MoveToFront(iter)
		c.evictOver(iter)
	} else {
		entry := &cacheEntry[K, V]{
			key:        key,
			value:      value,
			size:       size,
			lastAccess: time.Now(),
		}
		iter := c.accessList.PushFront(entry)
		c.items[key] = iter
		c.residentBytes += size
		c.evictOver(iter)
	}

	c.stats.puts.Inc()
	metrics.CacheResidentBytes.Set(float64(c.residentBytes))
	metrics.CacheResidentImages.Set(float64(c.accessList.Len()))

	if c.onInsertion != nil {
		c.onInsertion(key, value)
	}
}

// evictOver removes least-recently-accessed entries until the cache is under
// its bounds, never removing keep. A single entry larger than the capacity is
// admitted alone.
func (c *lruCache[K, V]) evictOver(keep *list.Element) {
	for c.overBounds() {
		oldest := c.accessList.Back()
		if oldest == nil || oldest == keep {
			return
		}
		c.removeElement(oldest, true)
	}
}

func (c *lruCache[K, V]) overBounds() bool {
	if c.capacity > 0 && c.residentBytes > c.capacity {
		return true
	}
	if c.maxEntries > 0 && int64(c.accessList.Len()) > c.maxEntries {
		return true
	}
	return false
}

func (c *lruCache[K, V]) removeElement(iter *list.Element, evicted bool) {
	entry := iter.Value.(*cacheEntry[K, V])
	c.accessList.Remove(iter)
	delete(c.items, entry.key)
	c.residentBytes -= entry.size

	if evicted {
		c.stats.evictions.Inc()
		metrics.CacheEvictedTotal.Inc()
	}
	if c.onRemoval != nil {
		c.onRemoval(entry.key, entry.value)
	}
}

func (c *lruCache[K, V]) Invalidate(key K) {
	c.rwlock.Lock()
	defer c.rwlock.Unlock()

	if iter, ok := c.items[key]; ok {
		c.removeElement(iter, false)
		metrics.CacheResidentBytes.Set(float64(c.residentBytes))
		metrics.CacheResidentImages.Set(float64(c.accessList.Len()))
	}
}

func (c *lruCache[K, V]) InvalidateAll() {
	c.rwlock.Lock()
	defer c.rwlock.Unlock()

	for iter := c.accessList.Back(); iter != nil; iter = c.accessList.Back() {
		c.removeElement(iter, false)
	}
	metrics.CacheResidentBytes.Set(0)
	metrics.CacheResidentImages.Set(0)
}

func (c *lruCache[K, V]) Len() int {
	c.rwlock.RLock()
	defer c.rwlock.RUnlock()

	return c.accessList.Len()
}

func (c *lruCache[K, V]) ResidentBytes() int64 {
	c.rwlock.RLock()
	defer c.rwlock.RUnlock()

	return c.residentBytes
}

func (c *lruCache[K, V]) Stats() Stats {
	return c.stats.snapshot()
}
