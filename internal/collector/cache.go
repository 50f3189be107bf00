/*
Copyright 2025 The llm-d Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package collector

import (
	"sync"
	"time"
)

type cacheEntry struct {
	series    *TimeSeries
	fetchedAt time.Time
}

// SeriesCache keeps fetched series for a fixed TTL.
// It is safe for concurrent use.
type SeriesCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

var (
	_ SeriesCacheReader = (*SeriesCache)(nil)
	_ SeriesCacheWriter = (*SeriesCache)(nil)
)

// NewSeriesCache creates a cache. A non-positive ttl disables caching.
func NewSeriesCache(ttl time.Duration) *SeriesCache {
	return &SeriesCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *SeriesCache) Get(key string) (*TimeSeries, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || c.expired(e) {
		return nil, false
	}
	return e.series.Clone(), true
}

func (c *SeriesCache) Put(key string, ts *TimeSeries) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{series: ts.Clone(), fetchedAt: c.now()}
}

func (c *SeriesCache) Prune() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, key)
		}
	}
}

// Len returns the number of entries, stale ones included.
func (c *SeriesCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *SeriesCache) expired(e cacheEntry) bool {
	return c.now().Sub(e.fetchedAt) >= c.ttl
}
