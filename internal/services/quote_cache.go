package services

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/collectique/backend/internal/metrics"
	"github.com/collectique/backend/internal/models"
)

const (
	quoteCachePrefix     = "quote:"
	hotCacheCapacity     = 256
	DefaultQuoteCacheTTL = 24 * time.Hour
)

// KeyValueStore is the persistence the quote cache writes through to.
// Implementations are expected to be durable but failures here are
// tolerated: caching is best-effort.
type KeyValueStore interface {
	Read(key string) (string, bool, error)
	Write(key, value string) error
	Remove(key string) error
	ListKeys(prefix string) ([]string, error)
}

// cachedQuote is the stored form of a cache entry.
type cachedQuote struct {
	Quote    models.Quote `json:"quote"`
	StoredAt time.Time    `json:"stored_at"`
}

// QuoteCache is a time-bounded quote store. An in-memory LRU sits in
// front of the persistent key-value store; entries found in either layer
// are still validated against the TTL. Persistence failures are swallowed
// and treated as misses so the cache can never block a fetch.
type QuoteCache struct {
	store KeyValueStore
	ttl   time.Duration
	hot   *lru.Cache[string, cachedQuote]
}

// NewQuoteCache creates a quote cache with the given TTL (24h when zero).
func NewQuoteCache(store KeyValueStore, ttl time.Duration) *QuoteCache {
	if ttl <= 0 {
		ttl = DefaultQuoteCacheTTL
	}

	hot, err := lru.New[string, cachedQuote](hotCacheCapacity)
	if err != nil {
		log.Printf("Quote cache: failed to create memory layer: %v", err)
	}

	return &QuoteCache{
		store: store,
		ttl:   ttl,
		hot:   hot,
	}
}

// CacheKey builds the deterministic lookup key for a search. Search terms
// are lowercased and whitespace-collapsed; the currency code is appended
// verbatim, so "USD" and "usd" are distinct keys.
func CacheKey(searchTerms, currency string) string {
	terms := strings.Join(strings.Fields(strings.ToLower(searchTerms)), " ")
	return terms + "|" + currency
}

// Get returns the cached quote for a search, or false on a miss. Entries
// at or past the TTL count as absent and are deleted lazily. The returned
// quote's source is marked as cache.
func (c *QuoteCache) Get(searchTerms, currency string) (models.Quote, bool) {
	key := CacheKey(searchTerms, currency)
	now := time.Now()

	if c.hot != nil {
		if entry, ok := c.hot.Get(key); ok {
			if now.Sub(entry.StoredAt) < c.ttl {
				metrics.QuoteCacheHits.Inc()
				return c.fromCache(entry.Quote), true
			}
			c.hot.Remove(key)
		}
	}

	raw, ok, err := c.store.Read(quoteCachePrefix + key)
	if err != nil {
		log.Printf("Quote cache: read failed for %q, treating as miss: %v", key, err)
		metrics.QuoteCacheMisses.Inc()
		return models.Quote{}, false
	}
	if !ok {
		metrics.QuoteCacheMisses.Inc()
		return models.Quote{}, false
	}

	var entry cachedQuote
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		log.Printf("Quote cache: corrupt entry for %q, discarding: %v", key, err)
		c.removeQuietly(key)
		metrics.QuoteCacheMisses.Inc()
		return models.Quote{}, false
	}

	if now.Sub(entry.StoredAt) >= c.ttl {
		c.removeQuietly(key)
		metrics.QuoteCacheMisses.Inc()
		return models.Quote{}, false
	}

	if c.hot != nil {
		c.hot.Add(key, entry)
	}
	metrics.QuoteCacheHits.Inc()
	return c.fromCache(entry.Quote), true
}

// Put stores a quote, overwriting any existing entry for the same key.
// Persistence failures are logged and ignored.
func (c *QuoteCache) Put(searchTerms, currency string, quote models.Quote) {
	key := CacheKey(searchTerms, currency)
	entry := cachedQuote{Quote: quote, StoredAt: time.Now()}

	if c.hot != nil {
		c.hot.Add(key, entry)
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		log.Printf("Quote cache: failed to encode entry for %q: %v", key, err)
		return
	}
	if err := c.store.Write(quoteCachePrefix+key, string(raw)); err != nil {
		log.Printf("Quote cache: write failed for %q: %v", key, err)
	}
}

// Sweep removes expired entries from the persistent store to reclaim
// space. Expiry is lazy on reads, so this is purely housekeeping.
func (c *QuoteCache) Sweep() int {
	keys, err := c.store.ListKeys(quoteCachePrefix)
	if err != nil {
		log.Printf("Quote cache: sweep aborted, cannot list keys: %v", err)
		return 0
	}

	now := time.Now()
	removed := 0
	for _, storeKey := range keys {
		raw, ok, err := c.store.Read(storeKey)
		if err != nil || !ok {
			continue
		}

		var entry cachedQuote
		if err := json.Unmarshal([]byte(raw), &entry); err != nil || now.Sub(entry.StoredAt) >= c.ttl {
			if err := c.store.Remove(storeKey); err == nil {
				removed++
			}
		}
	}

	if removed > 0 {
		log.Printf("Quote cache: swept %d expired entries", removed)
	}
	return removed
}

func (c *QuoteCache) fromCache(q models.Quote) models.Quote {
	q.Source = models.QuoteSourceCache
	return q
}

func (c *QuoteCache) removeQuietly(key string) {
	if c.hot != nil {
		c.hot.Remove(key)
	}
	if err := c.store.Remove(quoteCachePrefix + key); err != nil {
		log.Printf("Quote cache: failed to remove %q: %v", key, err)
	}
}
