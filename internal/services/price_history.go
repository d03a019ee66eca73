package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/collectique/backend/internal/metrics"
	"github.com/collectique/backend/internal/models"
)

const (
	// RefreshThreshold is how old a market price can be before an item is
	// considered due for a refresh.
	RefreshThreshold = 24 * time.Hour

	// DefaultHistoryCap bounds the price-history log per item. Appending
	// past the cap evicts the oldest entry.
	DefaultHistoryCap = 50

	defaultBatchDelay = time.Second
	defaultCurrency   = "USD"
)

// QuoteFetcher fetches a market-price quote for a search. Implemented by
// EbayClient; stubbed in tests.
type QuoteFetcher interface {
	Fetch(ctx context.Context, searchTerms, currency string) (models.Quote, error)
}

// ItemStore persists items. SaveItem is a full-replace-by-id upsert.
type ItemStore interface {
	LoadItemsForCollection(ctx context.Context, userID, collectionID string) ([]models.Item, error)
	SaveItem(ctx context.Context, userID, collectionID string, item *models.Item) error
}

// PriceManager orchestrates market-price refreshes: consult the cache,
// gate through the rate limiter, fetch, then append to the item's history
// and persist. It owns the only write path into an item's market-price
// fields.
type PriceManager struct {
	fetcher    QuoteFetcher
	cache      *QuoteCache
	limiter    *RateLimiter
	store      ItemStore
	historyCap int
	batchDelay time.Duration
}

// NewPriceManager creates a price manager. historyCap defaults to 50 when
// zero. batchDelay is the pause between items during a batch refresh; zero
// disables the pause, negative falls back to the 1s default.
func NewPriceManager(fetcher QuoteFetcher, cache *QuoteCache, limiter *RateLimiter, store ItemStore, historyCap int, batchDelay time.Duration) *PriceManager {
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}
	if batchDelay < 0 {
		batchDelay = defaultBatchDelay
	}

	return &PriceManager{
		fetcher:    fetcher,
		cache:      cache,
		limiter:    limiter,
		store:      store,
		historyCap: historyCap,
		batchDelay: batchDelay,
	}
}

// RefreshItemPrice refreshes one item's market price and returns the
// updated item. On any failure the input item is returned unchanged: the
// three current-market fields and the history log are only ever written
// together from the same quote.
//
// A cache hit refreshes the current-market fields from the cached quote
// but does not append a history entry, since no new market observation
// occurred.
func (m *PriceManager) RefreshItemPrice(ctx context.Context, item models.Item) (models.Item, error) {
	terms := strings.TrimSpace(item.EbaySearchTerms)
	if terms == "" {
		return item, ErrMissingSearchTerms
	}

	currency := item.PurchaseCurrency
	if currency == "" {
		currency = defaultCurrency
	}

	if quote, ok := m.cache.Get(terms, currency); ok {
		updated := item
		m.applyQuote(&updated, quote, false)
		if err := m.store.SaveItem(ctx, item.UserID, item.CollectionID, &updated); err != nil {
			return item, &PersistenceError{Err: err}
		}
		metrics.PriceRefreshesTotal.WithLabelValues("cache_hit").Inc()
		return updated, nil
	}

	if _, err := m.limiter.TryConsume(); err != nil {
		metrics.PriceRefreshesTotal.WithLabelValues("rate_limited").Inc()
		return item, err
	}
	metrics.QuotaRemaining.Set(float64(m.limiter.Remaining()))

	quote, err := m.fetcher.Fetch(ctx, terms, currency)
	if err != nil {
		metrics.PriceRefreshesTotal.WithLabelValues("fetch_failed").Inc()
		return item, err
	}

	// Cache before persisting: if the save fails, a later retry serves
	// the quote from cache without spending quota.
	m.cache.Put(terms, currency, quote)

	updated := item
	m.applyQuote(&updated, quote, true)
	if err := m.store.SaveItem(ctx, item.UserID, item.CollectionID, &updated); err != nil {
		metrics.PriceRefreshesTotal.WithLabelValues("save_failed").Inc()
		return item, &PersistenceError{Err: err}
	}

	metrics.PriceRefreshesTotal.WithLabelValues("updated").Inc()
	return updated, nil
}

// IsRefreshNeeded reports whether an item's market price is missing or
// older than the threshold (24h when zero). Pure predicate, no side
// effects.
func (m *PriceManager) IsRefreshNeeded(item models.Item, threshold time.Duration) bool {
	if threshold <= 0 {
		threshold = RefreshThreshold
	}
	if item.LastPriceUpdate == nil {
		return true
	}
	return time.Since(*item.LastPriceUpdate) >= threshold
}

// BatchRefresh refreshes every item that has search terms and a stale
// price. Items are processed strictly sequentially with a fixed pause
// between marketplace calls, since all fetches share one limiter and one
// external quota. A single item's failure is logged and its original
// value kept in the output; the batch never aborts. Cancelling the
// context stops the loop between items, leaving the rest unchanged.
func (m *PriceManager) BatchRefresh(ctx context.Context, items []models.Item, onProgress func(done, total int, item models.Item)) []models.Item {
	out := make([]models.Item, len(items))
	copy(out, items)

	eligible := make([]int, 0, len(items))
	for i, item := range items {
		if strings.TrimSpace(item.EbaySearchTerms) == "" {
			continue
		}
		if !m.IsRefreshNeeded(item, 0) {
			continue
		}
		eligible = append(eligible, i)
	}

	if len(eligible) == 0 {
		return out
	}
	log.Printf("Price manager: batch refreshing %d of %d items", len(eligible), len(items))

	start := time.Now()
	for done, i := range eligible {
		if ctx.Err() != nil {
			log.Printf("Price manager: batch abandoned after %d of %d items", done, len(eligible))
			break
		}

		updated, err := m.RefreshItemPrice(ctx, out[i])
		if err != nil {
			log.Printf("Price manager: refresh failed for item %s (%q): %v", out[i].ID, out[i].Name, err)
		} else {
			out[i] = updated
		}

		if onProgress != nil {
			onProgress(done+1, len(eligible), out[i])
		}

		if done+1 < len(eligible) {
			select {
			case <-ctx.Done():
			case <-time.After(m.batchDelay):
			}
		}
	}
	metrics.BatchRefreshDuration.Observe(time.Since(start).Seconds())

	return out
}

// applyQuote writes a quote into an item: the history entry (when a new
// observation was made) and the three current-market fields, all from the
// same quote.
func (m *PriceManager) applyQuote(item *models.Item, quote models.Quote, newObservation bool) {
	ts := quote.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	if newObservation {
		entry := models.PriceHistoryEntry{
			Price:      quote.AveragePrice,
			Currency:   quote.Currency,
			Date:       ts,
			Source:     string(models.QuoteSourceRemote),
			PriceRange: quote.PriceRange,
			ItemCount:  quote.ItemCount,
		}
		history := append(models.PriceHistory{}, item.PriceHistory...)
		history = append(history, entry)
		if len(history) > m.historyCap {
			history = history[len(history)-m.historyCap:]
		}
		item.PriceHistory = history
	}

	item.CurrentMarketPrice = quote.AveragePrice
	item.CurrentMarketCurrency = quote.Currency
	updateTime := ts
	item.LastPriceUpdate = &updateTime
}
