package pipeline

import "github.com/andresuchdata/inventory-intel/internal/domain"

const forecastHorizonDays = 7

// AverageDailySales computes the per-product arithmetic mean of daily_sold
// across the demand history. Products absent from the history are simply
// absent from the map.
func AverageDailySales(records []domain.DemandRecord) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range records {
		sums[r.ProductID] += r.DailySold
		counts[r.ProductID]++
	}

	averages := make(map[string]float64, len(sums))
	for id, sum := range sums {
		averages[id] = sum / float64(counts[id])
	}
	return averages
}

// Forecast annotates every inventory item with its average daily sales and a
// 7-day demand projection. Items without demand history get an average of
// exactly 0, so downstream arithmetic never sees a missing value.
func Forecast(items []domain.InventoryItem, demand []domain.DemandRecord) []domain.InventoryItem {
	averages := AverageDailySales(demand)

	out := make([]domain.InventoryItem, len(items))
	for i, item := range items {
		item.AvgDailySales = averages[item.ProductID]
		item.Predicted7DayDemand = item.AvgDailySales * forecastHorizonDays
		out[i] = item
	}
	return out
}
