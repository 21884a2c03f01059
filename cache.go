package main

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// listCache memoizes list responses per resource. A nil *listCache is a
// valid, disabled cache.
type listCache struct {
	c *cache.Cache

	mu  sync.Mutex
	gen map[string]uint64
}

func newListCache(ttl time.Duration) *listCache {
	if ttl <= 0 {
		return nil
	}
	return &listCache{
		c:   cache.New(ttl, 2*ttl),
		gen: make(map[string]uint64),
	}
}

// get returns the cached value for key or calls fetch and caches its result.
// A result is not stored if key was invalidated while fetch ran.
func (l *listCache) get(key string, fetch func() (any, error)) (any, error) {
	if l == nil {
		return fetch()
	}
	if data, found := l.c.Get(key); found {
		return data, nil
	}

	l.mu.Lock()
	gen := l.gen[key]
	l.mu.Unlock()

	data, err := fetch()
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	if l.gen[key] == gen {
		l.c.Set(key, data, cache.DefaultExpiration)
	}
	l.mu.Unlock()
	return data, nil
}

func (l *listCache) invalidate(keys ...string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, k := range keys {
		l.gen[k]++
		l.c.Delete(k)
	}
}
