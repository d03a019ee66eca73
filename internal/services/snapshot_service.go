package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/collectique/backend/internal/database"
	"github.com/collectique/backend/internal/metrics"
	"github.com/collectique/backend/internal/models"
)

// SnapshotService handles daily portfolio value snapshots
type SnapshotService struct {
	mu            sync.RWMutex
	lastSnapshot  time.Time
	snapshotHour  int // Hour of day to take snapshot (0-23)
	checkInterval time.Duration
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService(snapshotHour int) *SnapshotService {
	if snapshotHour < 0 || snapshotHour > 23 {
		snapshotHour = 23
	}

	return &SnapshotService{
		snapshotHour:  snapshotHour,
		checkInterval: 15 * time.Minute,
	}
}

// Start begins the background snapshot worker
func (s *SnapshotService) Start(ctx context.Context) {
	log.Println("Snapshot service started: will record daily portfolio value")

	// Check if we need to take a snapshot for today on startup
	s.checkAndSnapshot()

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Snapshot service stopping...")
			return
		case <-ticker.C:
			s.checkAndSnapshot()
		}
	}
}

// checkAndSnapshot checks if a snapshot is needed and takes one
func (s *SnapshotService) checkAndSnapshot() {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// Check if we already have a snapshot for today
	if s.hasSnapshotForDate(today) {
		return
	}

	// Only take automatic snapshots at or after the configured hour
	if now.Hour() >= s.snapshotHour {
		if err := s.TakeSnapshot(); err != nil {
			log.Printf("Snapshot service: failed to take snapshot: %v", err)
		}
	}
}

// hasSnapshotForDate checks if a snapshot exists for the given date
func (s *SnapshotService) hasSnapshotForDate(date time.Time) bool {
	db := database.GetDB()

	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	var count int64
	db.Model(&models.CollectionValueSnapshot{}).
		Where("snapshot_date >= ? AND snapshot_date < ?", startOfDay, endOfDay).
		Count(&count)

	return count > 0
}

// TakeSnapshot records the current portfolio value
func (s *SnapshotService) TakeSnapshot() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db := database.GetDB()
	now := time.Now()
	snapshotDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var items []models.Item
	if err := db.Find(&items).Error; err != nil {
		return err
	}
	stats := CollectionPriceStats(items)

	snapshot := models.CollectionValueSnapshot{
		SnapshotDate:       snapshotDate,
		TotalItems:         len(items),
		TrackedItems:       stats.TrackingItemCount,
		TotalPurchaseValue: stats.TotalPurchaseValue,
		TotalMarketValue:   stats.TotalMarketValue,
		TotalGainLoss:      stats.TotalGainLoss,
		CreatedAt:          now,
	}

	// Use upsert to handle duplicate dates
	result := db.Where("DATE(snapshot_date) = DATE(?)", snapshotDate).
		Assign(models.CollectionValueSnapshot{
			TotalItems:         snapshot.TotalItems,
			TrackedItems:       snapshot.TrackedItems,
			TotalPurchaseValue: snapshot.TotalPurchaseValue,
			TotalMarketValue:   snapshot.TotalMarketValue,
			TotalGainLoss:      snapshot.TotalGainLoss,
		}).
		FirstOrCreate(&snapshot)

	if result.Error != nil {
		return result.Error
	}

	metrics.CollectionMarketValueUSD.Set(stats.TotalMarketValue)
	metrics.TrackedItemsTotal.Set(float64(stats.TrackingItemCount))

	s.lastSnapshot = now
	log.Printf("Snapshot service: recorded value snapshot for %s (market value: %.2f, tracked items: %d)",
		snapshotDate.Format("2006-01-02"), stats.TotalMarketValue, stats.TrackingItemCount)

	return nil
}

// GetHistory retrieves value snapshots for a given period
func (s *SnapshotService) GetHistory(period string) ([]models.CollectionValueSnapshot, error) {
	db := database.GetDB()
	var snapshots []models.CollectionValueSnapshot

	now := time.Now()
	var startDate time.Time

	switch period {
	case "week":
		startDate = now.AddDate(0, 0, -7)
	case "month":
		startDate = now.AddDate(0, -1, 0)
	case "3month":
		startDate = now.AddDate(0, -3, 0)
	case "year":
		startDate = now.AddDate(-1, 0, 0)
	case "all":
		startDate = time.Time{} // No filter
	default:
		startDate = now.AddDate(0, -1, 0) // Default to 1 month
	}

	query := db.Order("snapshot_date ASC")
	if !startDate.IsZero() {
		query = query.Where("snapshot_date >= ?", startDate)
	}

	if err := query.Find(&snapshots).Error; err != nil {
		return nil, err
	}

	return snapshots, nil
}

// GetLastSnapshot returns the most recent snapshot
func (s *SnapshotService) GetLastSnapshot() *models.CollectionValueSnapshot {
	db := database.GetDB()
	var snapshot models.CollectionValueSnapshot

	if err := db.Order("snapshot_date DESC").First(&snapshot).Error; err != nil {
		return nil
	}

	return &snapshot
}

// ForceTakeSnapshot takes a snapshot regardless of timing (for manual triggers)
func (s *SnapshotService) ForceTakeSnapshot() error {
	return s.TakeSnapshot()
}
