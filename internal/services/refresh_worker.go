package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/collectique/backend/internal/metrics"
	"github.com/collectique/backend/internal/models"
)

// TrackedItemLister lists every item with search terms configured,
// across all users and collections.
type TrackedItemLister interface {
	LoadTrackedItems(ctx context.Context) ([]models.Item, error)
}

// RefreshWorker periodically refreshes stale item prices in the
// background. The heavy lifting is the manager's BatchRefresh; the worker
// adds scheduling, quota awareness, and daily stats.
type RefreshWorker struct {
	manager        *PriceManager
	lister         TrackedItemLister
	limiter        *RateLimiter
	updateInterval time.Duration

	mu                sync.RWMutex
	itemsUpdatedToday int
	lastUpdateTime    time.Time
	lastStatsDay      time.Time
}

// RefreshStatus reports worker progress and marketplace quota for the
// status endpoint.
type RefreshStatus struct {
	LastUpdateTime    time.Time `json:"last_update_time"`
	NextUpdateTime    time.Time `json:"next_update_time"`
	ItemsUpdatedToday int       `json:"items_updated_today"`

	DailyLimit int       `json:"daily_limit"`
	Remaining  int       `json:"remaining"`
	ResetsAt   time.Time `json:"resets_at"`
}

func NewRefreshWorker(manager *PriceManager, lister TrackedItemLister, limiter *RateLimiter, updateInterval time.Duration) *RefreshWorker {
	if updateInterval <= 0 {
		updateInterval = time.Hour
	}

	return &RefreshWorker{
		manager:        manager,
		lister:         lister,
		limiter:        limiter,
		updateInterval: updateInterval,
	}
}

// Start begins the background refresh loop.
func (w *RefreshWorker) Start(ctx context.Context) {
	log.Printf("Refresh worker started: will refresh stale prices every %v", w.updateInterval)

	// Run immediately on startup
	w.runOnce(ctx)

	ticker := time.NewTicker(w.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Refresh worker stopping...")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *RefreshWorker) runOnce(ctx context.Context) {
	w.resetDailyStatsIfNeeded()

	// Skip the pass entirely when the daily budget is gone.
	if w.limiter.Remaining() == 0 {
		log.Printf("Refresh worker: daily quota exhausted, skipping until %s", w.limiter.ResetTime().Format("15:04"))
		return
	}

	items, err := w.lister.LoadTrackedItems(ctx)
	if err != nil {
		log.Printf("Refresh worker: failed to load tracked items: %v", err)
		return
	}
	if len(items) == 0 {
		return
	}

	updated := 0
	w.manager.BatchRefresh(ctx, items, func(done, total int, item models.Item) {
		updated = done
	})

	w.mu.Lock()
	w.itemsUpdatedToday += updated
	w.lastUpdateTime = time.Now()
	w.mu.Unlock()

	metrics.PriceUpdatesToday.Set(float64(w.itemsUpdatedToday))
	metrics.QuotaRemaining.Set(float64(w.limiter.Remaining()))
	metrics.QuotaLimit.Set(float64(w.limiter.Limit()))

	if updated > 0 {
		log.Printf("Refresh worker: processed %d items", updated)
	}
}

// resetDailyStatsIfNeeded resets itemsUpdatedToday at midnight
func (w *RefreshWorker) resetDailyStatsIfNeeded() {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	today := startOfDay(now)

	if w.lastStatsDay.Before(today) {
		if !w.lastStatsDay.IsZero() {
			log.Printf("Refresh worker: daily stats reset (previous day: %d items processed)", w.itemsUpdatedToday)
		}
		w.itemsUpdatedToday = 0
		w.lastStatsDay = today
	}
}

// GetStatus returns the current status
func (w *RefreshWorker) GetStatus() RefreshStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return RefreshStatus{
		LastUpdateTime:    w.lastUpdateTime,
		NextUpdateTime:    w.lastUpdateTime.Add(w.updateInterval),
		ItemsUpdatedToday: w.itemsUpdatedToday,
		DailyLimit:        w.limiter.Limit(),
		Remaining:         w.limiter.Remaining(),
		ResetsAt:          w.limiter.ResetTime(),
	}
}
