package insight

import (
	"encoding/json"
	"fmt"

	"github.com/andresuchdata/logistics-dash/backend-go/internal/domain"
)

const promptHeader = `Analyze this logistics data and provide a concise 3-bullet point executive summary highlighting critical bottlenecks, stock concerns, or practice performance. Focus on the most urgent "Red" items.

Data Summary:
`

// Summary is the snapshot sent to the text generator.
type Summary struct {
	View                domain.ViewMode `json:"view"`
	Total               int             `json:"total"`
	UnassignedDelivered int             `json:"unassignedDelivered"`
	AgingAlerts         AgingSummary    `json:"agingAlerts"`
	StockAlerts         []StockAlert    `json:"stockAlerts"`
	TopPractice         string          `json:"topPractice,omitempty"`
}

type AgingSummary struct {
	PendingOver7Days   int `json:"pendingOver7Days"`
	NotCreatedOver1Day int `json:"notCreatedOver1Day"`
}

type StockAlert struct {
	DeviceType domain.DeviceType `json:"deviceType"`
	Quantity   int               `json:"quantity"`
	MinLevel   int               `json:"minLevel"`
	MaxLevel   int               `json:"maxLevel"`
}

// BuildSummary packages the current dashboard state. stockAlerts should hold
// only the items below their minimum level.
func BuildSummary(filter domain.DashboardFilter, stats domain.DashboardStats, rankings []domain.PracticeStats, stockAlerts []domain.StockItem) Summary {
	alerts := make([]StockAlert, 0, len(stockAlerts))
	for _, item := range stockAlerts {
		alerts = append(alerts, StockAlert{
			DeviceType: item.DeviceType,
			Quantity:   item.Quantity,
			MinLevel:   item.MinLevel,
			MaxLevel:   item.MaxLevel,
		})
	}

	summary := Summary{
		View:                filter.View,
		Total:               stats.TotalOrders,
		UnassignedDelivered: stats.UnassignedDeliveredCount,
		AgingAlerts: AgingSummary{
			PendingOver7Days:   stats.AgingAlerts.PendingOver7Days,
			NotCreatedOver1Day: stats.AgingAlerts.NotCreatedOver1Day,
		},
		StockAlerts: alerts,
	}
	if len(rankings) > 0 {
		summary.TopPractice = rankings[0].PracticeName
	}
	return summary
}

// BuildPrompt renders the summary as indented JSON under the analyst prompt.
func BuildPrompt(summary Summary) (string, error) {
	payload, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode insight summary: %w", err)
	}
	return promptHeader + string(payload), nil
}
