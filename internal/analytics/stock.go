package analytics

import (
	"math"

	"github.com/andresuchdata/logistics-dash/backend-go/internal/domain"
)

const (
	StockStatusRestock = "RESTOCK"
	StockStatusOK      = "OK"
)

// EvaluateStock computes the fulfillment ratio and restock flag for every item.
func EvaluateStock(items []domain.StockItem) []domain.StockLevel {
	levels := make([]domain.StockLevel, 0, len(items))
	for _, item := range items {
		critical := isCritical(item)
		status := StockStatusOK
		if critical {
			status = StockStatusRestock
		}
		levels = append(levels, domain.StockLevel{
			StockItem:          item,
			FulfillmentPercent: fulfillment(item),
			Critical:           critical,
			Status:             status,
		})
	}
	return levels
}

// StockAlerts returns the items below their minimum level.
func StockAlerts(items []domain.StockItem) []domain.StockItem {
	alerts := make([]domain.StockItem, 0)
	for _, item := range items {
		if isCritical(item) {
			alerts = append(alerts, item)
		}
	}
	return alerts
}

func isCritical(item domain.StockItem) bool {
	return item.Quantity < item.MinLevel
}

// fulfillment is quantity/maxLevel as a percentage capped at 100.
func fulfillment(item domain.StockItem) float64 {
	if item.MaxLevel <= 0 {
		if item.Quantity > 0 {
			return 100
		}
		return 0
	}
	return math.Min(float64(item.Quantity)/float64(item.MaxLevel)*100, 100)
}
