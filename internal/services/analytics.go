package services

import (
	"sort"

	"github.com/collectique/backend/internal/models"
)

// trendChangeThresholdPercent is the short-term change magnitude a price
// must exceed (strictly) before the trend flips from stable.
const trendChangeThresholdPercent = 5.0

// PriceTrend derives short and long-term price movement from an item's
// history log. Short-term compares the two most recent entries; long-term
// compares the most recent entry to the oldest one retained. With fewer
// than two entries there is nothing to compare.
func PriceTrend(item models.Item) models.PriceTrendResult {
	history := append(models.PriceHistory{}, item.PriceHistory...)
	if len(history) < 2 {
		return models.PriceTrendResult{
			Trend:      models.TrendInsufficientData,
			DataPoints: len(history),
		}
	}

	// Newest first.
	sort.Slice(history, func(i, j int) bool {
		return history[i].Date.After(history[j].Date)
	})

	shortTerm := percentChange(history[1].Price, history[0].Price)
	longTerm := percentChange(history[len(history)-1].Price, history[0].Price)

	trend := models.TrendStable
	if shortTerm > trendChangeThresholdPercent {
		trend = models.TrendIncreasing
	} else if shortTerm < -trendChangeThresholdPercent {
		trend = models.TrendDecreasing
	}

	direction := models.DirectionStable
	if shortTerm > 0 {
		direction = models.DirectionUp
	} else if shortTerm < 0 {
		direction = models.DirectionDown
	}

	return models.PriceTrendResult{
		Trend:                  trend,
		Direction:              direction,
		ShortTermChangePercent: shortTerm,
		LongTermChangePercent:  longTerm,
		DataPoints:             len(history),
	}
}

// InvestmentPerformance compares an item's purchase price to its current
// market price. Differing currencies are flagged but never converted.
func InvestmentPerformance(item models.Item) models.InvestmentPerformance {
	if item.PurchasePrice <= 0 || item.CurrentMarketPrice <= 0 {
		return models.InvestmentPerformance{
			HasData: false,
			Status:  models.StatusUnknown,
		}
	}

	difference := item.CurrentMarketPrice - item.PurchasePrice

	status := models.StatusNeutral
	if difference > 0 {
		status = models.StatusProfit
	} else if difference < 0 {
		status = models.StatusLoss
	}

	mismatch := item.PurchaseCurrency != "" &&
		item.CurrentMarketCurrency != "" &&
		item.PurchaseCurrency != item.CurrentMarketCurrency

	return models.InvestmentPerformance{
		HasData:          true,
		PurchasePrice:    item.PurchasePrice,
		CurrentPrice:     item.CurrentMarketPrice,
		Difference:       difference,
		PercentChange:    percentChange(item.PurchasePrice, item.CurrentMarketPrice),
		Status:           status,
		CurrencyMismatch: mismatch,
	}
}

// CollectionPriceStats aggregates purchase-vs-market performance across a
// collection. Only items with both a purchase and a market price count.
func CollectionPriceStats(items []models.Item) models.CollectionPriceStats {
	var stats models.CollectionPriceStats

	for _, item := range items {
		perf := InvestmentPerformance(item)
		if !perf.HasData {
			continue
		}

		stats.TrackingItemCount++
		stats.TotalPurchaseValue += item.PurchasePrice
		stats.TotalMarketValue += item.CurrentMarketPrice

		summary := &models.PerformerSummary{
			Name:            item.Name,
			PurchasePrice:   item.PurchasePrice,
			MarketPrice:     item.CurrentMarketPrice,
			GainLossPercent: perf.PercentChange,
		}
		if stats.BestPerformer == nil || summary.GainLossPercent > stats.BestPerformer.GainLossPercent {
			stats.BestPerformer = summary
		}
		if stats.WorstPerformer == nil || summary.GainLossPercent < stats.WorstPerformer.GainLossPercent {
			stats.WorstPerformer = summary
		}
	}

	stats.TotalGainLoss = stats.TotalMarketValue - stats.TotalPurchaseValue
	if stats.TotalPurchaseValue > 0 {
		stats.TotalGainLossPercent = stats.TotalGainLoss / stats.TotalPurchaseValue * 100
	}

	return stats
}

// percentChange is the change from previous to current as a percentage
// of previous. Multiplying before dividing keeps round percentages exact.
func percentChange(previous, current float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) * 100 / previous
}
