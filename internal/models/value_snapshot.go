package models

import (
	"time"
)

// CollectionValueSnapshot stores daily portfolio value for historical tracking
type CollectionValueSnapshot struct {
	ID                 uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	SnapshotDate       time.Time `json:"snapshot_date" gorm:"uniqueIndex;not null"`
	TotalItems         int       `json:"total_items"`
	TrackedItems       int       `json:"tracked_items"`
	TotalPurchaseValue float64   `json:"total_purchase_value"`
	TotalMarketValue   float64   `json:"total_market_value"`
	TotalGainLoss      float64   `json:"total_gain_loss"`
	CreatedAt          time.Time `json:"created_at"`
}

// ValueHistoryResponse is the API response for value history
type ValueHistoryResponse struct {
	Snapshots []CollectionValueSnapshot `json:"snapshots"`
	Period    string                    `json:"period"` // "week", "month", "year", "all"
}
