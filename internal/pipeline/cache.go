// Package pipeline runs the multi-step prediction flow and caches
// intermediate step data between calls.
package pipeline

import (
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/stockcast/internal/metrics"
)

// Step names in execution order
const (
	StepHistorical = "historical"
	StepNews       = "news"
	StepSocial     = "social"
	StepResult     = "result"
)

// anonymousUser partitions cached step data for callers without an identity
const anonymousUser = "anonymous"

// CacheKey identifies one step's data for a user, symbol and analysis date
type CacheKey struct {
	User   string
	Symbol string
	Step   string
	AsOf   time.Time
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	user := k.User
	if user == "" {
		user = anonymousUser
	}
	return fmt.Sprintf("%s:%s:%s:%s", user, k.Symbol, k.Step, k.AsOf.Format("2006-01-02"))
}

// StepCache provides in-memory caching for pipeline step data
type StepCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewStepCache creates a new step cache
func NewStepCache(ttl time.Duration, maxSize int) *StepCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &StepCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves cached step data, nil when absent or expired
func (sc *StepCache) Get(key CacheKey) interface{} {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if value, found := sc.cache.Get(key.String()); found {
		sc.hitCount++
		sc.updateMetrics()
		metrics.RecordCacheLookup("hit")
		return value
	}

	sc.missCount++
	sc.updateMetrics()
	metrics.RecordCacheLookup("miss")
	return nil
}

// Set stores step data in cache
func (sc *StepCache) Set(key CacheKey, value interface{}) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	// Check size limit
	if sc.cache.ItemCount() >= sc.maxSize {
		sc.cache.DeleteExpired()
	}

	sc.cache.Set(key.String(), value, sc.ttl)
}

// Invalidate removes a user's cached steps for a symbol
func (sc *StepCache) Invalidate(user, symbol string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if user == "" {
		user = anonymousUser
	}
	prefix := user + ":" + symbol + ":"
	for k := range sc.cache.Items() {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			sc.cache.Delete(k)
		}
	}
}

// Clear flushes the entire cache
func (sc *StepCache) Clear() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.cache.Flush()
	sc.hitCount = 0
	sc.missCount = 0
}

// Stats returns cache statistics
func (sc *StepCache) Stats() (hits, misses uint64, ratio float64) {
	hits = sc.hitCount
	misses = sc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (sc *StepCache) ItemCount() int {
	return sc.cache.ItemCount()
}

func (sc *StepCache) updateMetrics() {
	_, _, ratio := sc.Stats()
	metrics.UpdateCacheHitRatio(ratio)
}
