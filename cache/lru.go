// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"
)

// LRU is a typed LRU cache on top of golang-lru. Concurrent loads of the same
// missing key share a single call to the loader.
type LRU[K comparable, V any] struct {
	cache *lru.Cache
	group singleflight.Group
	stats Stats
}

// NewLRU creates a cache holding up to maxSize entries.
// maxSize should be > 0, or an error returned.
func NewLRU[K comparable, V any](maxSize int) (*LRU[K, V], error) {
	c, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU[K, V]{cache: c}, nil
}

// Get returns the cached value of key.
func (l *LRU[K, V]) Get(key K) (V, bool) {
	if v, ok := l.cache.Get(key); ok {
		return v.(V), true
	}
	var zero V
	return zero, false
}

// Add caches value under key.
func (l *LRU[K, V]) Add(key K, value V) {
	l.cache.Add(key, value)
}

// Remove drops key.
func (l *LRU[K, V]) Remove(key K) {
	l.cache.Remove(key)
}

func (l *LRU[K, V]) Len() int {
	return l.cache.Len()
}

// Stats returns the hit and miss counters.
func (l *LRU[K, V]) Stats() *Stats {
	return &l.stats
}

// GetOrLoad first tries the cache and calls load on a miss. The loaded value
// is cached only when keep returns true; a nil keep caches every value.
func (l *LRU[K, V]) GetOrLoad(key K, load func(K) (V, error), keep func(V) bool) (V, error) {
	if v, ok := l.Get(key); ok {
		l.stats.Hit()
		return v, nil
	}
	l.stats.Miss()

	v, err, _ := l.group.Do(fmt.Sprint(key), func() (any, error) {
		v, err := load(key)
		if err != nil {
			return nil, err
		}
		if keep == nil || keep(v) {
			l.Add(key, v)
		}
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}
