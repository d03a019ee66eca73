package models

import (
	"time"
)

// QuoteSource records where a quote came from: a live marketplace search
// or the local cache.
type QuoteSource string

const (
	QuoteSourceRemote QuoteSource = "remote"
	QuoteSourceCache  QuoteSource = "cache"
)

// PriceRange is the min/max spread of the sampled listing prices.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Listing is a single marketplace listing kept as a sample alongside a quote.
type Listing struct {
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	Condition string  `json:"condition"`
	URL       string  `json:"url"`
	ImageURL  string  `json:"image_url"`
}

// Quote is one normalized market-price observation for a search query.
// ItemCount is always > 0; a search with no qualifying listings is an
// error, not a zero-filled quote.
type Quote struct {
	SearchTerms    string      `json:"search_terms"`
	Currency       string      `json:"currency"`
	AveragePrice   float64     `json:"average_price"`
	PriceRange     PriceRange  `json:"price_range"`
	ItemCount      int         `json:"item_count"`
	SampleListings []Listing   `json:"sample_listings"`
	Timestamp      time.Time   `json:"timestamp"`
	Source         QuoteSource `json:"source"`
}
