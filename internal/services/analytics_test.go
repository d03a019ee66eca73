package services

import (
	"testing"
	"time"

	"github.com/collectique/backend/internal/models"
)

func historyOf(prices ...float64) models.PriceHistory {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	history := make(models.PriceHistory, len(prices))
	for i, p := range prices {
		history[i] = models.PriceHistoryEntry{
			Price:    p,
			Currency: "USD",
			Date:     base.AddDate(0, 0, i),
			Source:   "remote",
		}
	}
	return history
}

func TestPriceTrendInsufficientData(t *testing.T) {
	tests := []struct {
		name    string
		history models.PriceHistory
	}{
		{"no history", nil},
		{"single entry", historyOf(100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PriceTrend(models.Item{PriceHistory: tt.history})
			if result.Trend != models.TrendInsufficientData {
				t.Errorf("expected insufficient-data trend, got %s", result.Trend)
			}
			if result.DataPoints != len(tt.history) {
				t.Errorf("expected %d data points, got %d", len(tt.history), result.DataPoints)
			}
			if result.Direction != "" {
				t.Errorf("direction should be absent, got %s", result.Direction)
			}
		})
	}
}

func TestPriceTrendThresholdBoundary(t *testing.T) {
	tests := []struct {
		name     string
		history  models.PriceHistory
		expected models.Trend
	}{
		{"exactly +5 percent is stable", historyOf(100, 105), models.TrendStable},
		{"just above +5 percent is increasing", historyOf(100, 105.01), models.TrendIncreasing},
		{"exactly -5 percent is stable", historyOf(100, 95), models.TrendStable},
		{"just below -5 percent is decreasing", historyOf(100, 94.99), models.TrendDecreasing},
		{"flat is stable", historyOf(100, 100), models.TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PriceTrend(models.Item{PriceHistory: tt.history})
			if result.Trend != tt.expected {
				t.Errorf("expected trend %s, got %s (short-term %f%%)",
					tt.expected, result.Trend, result.ShortTermChangePercent)
			}
		})
	}
}

func TestPriceTrendDirection(t *testing.T) {
	tests := []struct {
		name     string
		history  models.PriceHistory
		expected models.TrendDirection
	}{
		{"small rise is still up", historyOf(100, 102), models.DirectionUp},
		{"small dip is still down", historyOf(100, 98), models.DirectionDown},
		{"flat is stable", historyOf(100, 100), models.DirectionStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PriceTrend(models.Item{PriceHistory: tt.history})
			if result.Direction != tt.expected {
				t.Errorf("expected direction %s, got %s", tt.expected, result.Direction)
			}
		})
	}
}

func TestPriceTrendShortAndLongTerm(t *testing.T) {
	// Oldest 100 -> 200 -> newest 220.
	result := PriceTrend(models.Item{PriceHistory: historyOf(100, 200, 220)})

	if result.ShortTermChangePercent != 10 {
		t.Errorf("short-term should compare the two newest entries, got %f%%", result.ShortTermChangePercent)
	}
	if result.LongTermChangePercent != 120 {
		t.Errorf("long-term should compare newest to oldest, got %f%%", result.LongTermChangePercent)
	}
	if result.Trend != models.TrendIncreasing {
		t.Errorf("expected increasing trend, got %s", result.Trend)
	}
	if result.DataPoints != 3 {
		t.Errorf("expected 3 data points, got %d", result.DataPoints)
	}
}

func TestPriceTrendSortsUnorderedHistory(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	history := models.PriceHistory{
		{Price: 220, Date: base.AddDate(0, 0, 2)},
		{Price: 100, Date: base},
		{Price: 200, Date: base.AddDate(0, 0, 1)},
	}

	result := PriceTrend(models.Item{PriceHistory: history})
	if result.ShortTermChangePercent != 10 {
		t.Errorf("trend must order entries by date, got short-term %f%%", result.ShortTermChangePercent)
	}
	if history[0].Price != 220 {
		t.Error("input history must not be reordered")
	}
}

func TestInvestmentPerformance(t *testing.T) {
	tests := []struct {
		name     string
		item     models.Item
		hasData  bool
		status   models.PerformanceStatus
		percent  float64
		mismatch bool
	}{
		{
			name:    "no purchase price",
			item:    models.Item{CurrentMarketPrice: 100},
			hasData: false,
			status:  models.StatusUnknown,
		},
		{
			name:    "no market price",
			item:    models.Item{PurchasePrice: 100},
			hasData: false,
			status:  models.StatusUnknown,
		},
		{
			name:    "profit",
			item:    models.Item{PurchasePrice: 100, CurrentMarketPrice: 150},
			hasData: true,
			status:  models.StatusProfit,
			percent: 50,
		},
		{
			name:    "loss",
			item:    models.Item{PurchasePrice: 50, CurrentMarketPrice: 40},
			hasData: true,
			status:  models.StatusLoss,
			percent: -20,
		},
		{
			name:    "break even",
			item:    models.Item{PurchasePrice: 100, CurrentMarketPrice: 100},
			hasData: true,
			status:  models.StatusNeutral,
			percent: 0,
		},
		{
			name: "currency mismatch flagged",
			item: models.Item{
				PurchasePrice: 100, PurchaseCurrency: "EUR",
				CurrentMarketPrice: 150, CurrentMarketCurrency: "USD",
			},
			hasData:  true,
			status:   models.StatusProfit,
			percent:  50,
			mismatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perf := InvestmentPerformance(tt.item)
			if perf.HasData != tt.hasData {
				t.Errorf("HasData = %v, want %v", perf.HasData, tt.hasData)
			}
			if perf.Status != tt.status {
				t.Errorf("Status = %s, want %s", perf.Status, tt.status)
			}
			if tt.hasData && perf.PercentChange != tt.percent {
				t.Errorf("PercentChange = %f, want %f", perf.PercentChange, tt.percent)
			}
			if perf.CurrencyMismatch != tt.mismatch {
				t.Errorf("CurrencyMismatch = %v, want %v", perf.CurrencyMismatch, tt.mismatch)
			}
		})
	}
}

func TestCollectionPriceStats(t *testing.T) {
	items := []models.Item{
		{Name: "winner", PurchasePrice: 100, CurrentMarketPrice: 150},
		{Name: "loser", PurchasePrice: 50, CurrentMarketPrice: 40},
		{Name: "untracked", PurchasePrice: 30}, // no market price, excluded
	}

	stats := CollectionPriceStats(items)

	if stats.TrackingItemCount != 2 {
		t.Errorf("expected 2 tracked items, got %d", stats.TrackingItemCount)
	}
	if stats.TotalPurchaseValue != 150 {
		t.Errorf("expected purchase total 150, got %f", stats.TotalPurchaseValue)
	}
	if stats.TotalMarketValue != 190 {
		t.Errorf("expected market total 190, got %f", stats.TotalMarketValue)
	}
	if stats.TotalGainLoss != 40 {
		t.Errorf("expected gain 40, got %f", stats.TotalGainLoss)
	}

	if stats.BestPerformer == nil || stats.BestPerformer.Name != "winner" {
		t.Fatalf("expected best performer winner, got %+v", stats.BestPerformer)
	}
	if stats.BestPerformer.GainLossPercent != 50 {
		t.Errorf("expected best gain 50%%, got %f", stats.BestPerformer.GainLossPercent)
	}
	if stats.WorstPerformer == nil || stats.WorstPerformer.Name != "loser" {
		t.Fatalf("expected worst performer loser, got %+v", stats.WorstPerformer)
	}
	if stats.WorstPerformer.GainLossPercent != -20 {
		t.Errorf("expected worst loss -20%%, got %f", stats.WorstPerformer.GainLossPercent)
	}
}

func TestCollectionPriceStatsEmpty(t *testing.T) {
	stats := CollectionPriceStats(nil)

	if stats.TrackingItemCount != 0 {
		t.Errorf("expected 0 tracked items, got %d", stats.TrackingItemCount)
	}
	if stats.BestPerformer != nil || stats.WorstPerformer != nil {
		t.Error("performers should be absent with no tracked items")
	}
	if stats.TotalGainLossPercent != 0 {
		t.Errorf("percent should be 0 with no purchase value, got %f", stats.TotalGainLossPercent)
	}
}

func TestCollectionPriceStatsZeroPurchaseTotal(t *testing.T) {
	// Tracked item with market data but purchase price zero contributes no
	// purchase value; the percent must not divide by zero.
	items := []models.Item{
		{Name: "gift", PurchasePrice: 0, CurrentMarketPrice: 80},
	}

	stats := CollectionPriceStats(items)
	if stats.TrackingItemCount != 0 {
		t.Errorf("zero purchase price has no performance data, got %d tracked", stats.TrackingItemCount)
	}
	if stats.TotalGainLossPercent != 0 {
		t.Errorf("percent should stay 0, got %f", stats.TotalGainLossPercent)
	}
}
