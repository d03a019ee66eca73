package models

import (
	"time"
)

// PriceHistoryEntry is one immutable price observation applied to an item.
// Entries are appended by the price manager and never mutated in place.
type PriceHistoryEntry struct {
	Price      float64    `json:"price"`
	Currency   string     `json:"currency"`
	Date       time.Time  `json:"date"`
	Source     string     `json:"source"` // always "remote"
	PriceRange PriceRange `json:"price_range"`
	ItemCount  int        `json:"item_count"`
}

// PriceHistory is an item's bounded, append-only price log, oldest first.
type PriceHistory []PriceHistoryEntry

// Item is a collectible tracked in a user's collection. The price manager
// owns the three current-market fields and the history log; everything
// else belongs to the collection CRUD layer.
type Item struct {
	ID           string `json:"id" gorm:"primaryKey"`
	UserID       string `json:"user_id" gorm:"index:idx_user_collection"`
	CollectionID string `json:"collection_id" gorm:"index:idx_user_collection"`
	Name         string `json:"name"`
	Notes        string `json:"notes"`
	ImageURL     string `json:"image_url"`

	PurchasePrice    float64    `json:"purchase_price"`
	PurchaseCurrency string     `json:"purchase_currency"`
	PurchaseDate     *time.Time `json:"purchase_date"`

	// Updated together, always from the same quote.
	CurrentMarketPrice    float64    `json:"current_market_price"`
	CurrentMarketCurrency string     `json:"current_market_currency"`
	LastPriceUpdate       *time.Time `json:"last_price_update"`

	PriceHistory    PriceHistory `json:"price_history" gorm:"serializer:json"`
	EbaySearchTerms string       `json:"ebay_search_terms"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
