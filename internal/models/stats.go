package models

// Trend classifies the overall movement of an item's price history.
type Trend string

const (
	TrendInsufficientData Trend = "insufficient-data"
	TrendStable           Trend = "stable"
	TrendIncreasing       Trend = "increasing"
	TrendDecreasing       Trend = "decreasing"
)

// TrendDirection is the short-term direction of movement. It is empty
// (serialized as absent) when there is not enough data.
type TrendDirection string

const (
	DirectionUp     TrendDirection = "up"
	DirectionDown   TrendDirection = "down"
	DirectionStable TrendDirection = "stable"
)

// PriceTrendResult summarizes short and long-term price movement derived
// from an item's history log.
type PriceTrendResult struct {
	Trend                  Trend          `json:"trend"`
	Direction              TrendDirection `json:"direction,omitempty"`
	ShortTermChangePercent float64        `json:"short_term_change_percent"`
	LongTermChangePercent  float64        `json:"long_term_change_percent"`
	DataPoints             int            `json:"data_points"`
}

// PerformanceStatus classifies purchase-vs-market performance.
type PerformanceStatus string

const (
	StatusProfit  PerformanceStatus = "profit"
	StatusLoss    PerformanceStatus = "loss"
	StatusNeutral PerformanceStatus = "neutral"
	StatusUnknown PerformanceStatus = "unknown"
)

// InvestmentPerformance compares an item's purchase price against its
// current market price. No currency conversion is performed; a mismatch
// is flagged instead.
type InvestmentPerformance struct {
	HasData          bool              `json:"has_data"`
	PurchasePrice    float64           `json:"purchase_price"`
	CurrentPrice     float64           `json:"current_price"`
	Difference       float64           `json:"difference"`
	PercentChange    float64           `json:"percent_change"`
	Status           PerformanceStatus `json:"status"`
	CurrencyMismatch bool              `json:"currency_mismatch"`
}

// PerformerSummary identifies the best or worst performing item in a
// collection by percent change.
type PerformerSummary struct {
	Name            string  `json:"name"`
	PurchasePrice   float64 `json:"purchase_price"`
	MarketPrice     float64 `json:"market_price"`
	GainLossPercent float64 `json:"gain_loss_percent"`
}

// CollectionPriceStats aggregates purchase-vs-market performance across
// a collection. Only items with both prices set participate.
type CollectionPriceStats struct {
	TotalPurchaseValue   float64           `json:"total_purchase_value"`
	TotalMarketValue     float64           `json:"total_market_value"`
	TotalGainLoss        float64           `json:"total_gain_loss"`
	TotalGainLossPercent float64           `json:"total_gain_loss_percent"`
	TrackingItemCount    int               `json:"tracking_item_count"`
	BestPerformer        *PerformerSummary `json:"best_performer"`
	WorstPerformer       *PerformerSummary `json:"worst_performer"`
}
