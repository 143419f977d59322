package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ISODate is the layout used for date filters and trend keys.
const ISODate = "2006-01-02"

// DefaultStartDate is the lower bound used when no start date is supplied.
const DefaultStartDate = "2024-01-01"

var (
	ErrInvalidView   = errors.New("invalid view")
	ErrInvalidDevice = errors.New("invalid device filter")
	ErrInvalidDate   = errors.New("invalid date")
)

// ViewMode selects between outbound and return orders.
type ViewMode string

const (
	ViewOutbound ViewMode = "New"
	ViewReturn   ViewMode = "Return"
)

// ParseViewMode accepts "New"/"outbound" and "Return"/"returns" (case-insensitive).
func ParseViewMode(value string) (ViewMode, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "new", "outbound":
		return ViewOutbound, true
	case "return", "returns":
		return ViewReturn, true
	}
	return "", false
}

// Matches reports whether an order type belongs to the view.
func (v ViewMode) Matches(t OrderType) bool {
	if v == ViewReturn {
		return t == OrderTypeReturn
	}
	return t.IsOutbound()
}

// OrderTypes returns the order types covered by the view.
func (v ViewMode) OrderTypes() []OrderType {
	types := make([]OrderType, 0, len(AllOrderTypes))
	for _, t := range AllOrderTypes {
		if v.Matches(t) {
			types = append(types, t)
		}
	}
	return types
}

// DashboardFilter narrows the order collection before aggregation.
// StartDate and EndDate are inclusive ISO dates.
type DashboardFilter struct {
	View      ViewMode `json:"view"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Device    string   `json:"device"`
}

// DefaultDashboardFilter returns the filter the dashboard opens with.
func DefaultDashboardFilter(now time.Time) DashboardFilter {
	return DashboardFilter{
		View:      ViewOutbound,
		StartDate: DefaultStartDate,
		EndDate:   now.UTC().Format(ISODate),
		Device:    DeviceAll,
	}
}

// Validate checks the view, device and date fields.
func (f DashboardFilter) Validate() error {
	if f.View != ViewOutbound && f.View != ViewReturn {
		return fmt.Errorf("%w: %q", ErrInvalidView, f.View)
	}
	if f.Device != DeviceAll {
		// Only canonical labels are accepted; filtering compares them exactly.
		if d, ok := ParseDeviceType(f.Device); !ok || string(d) != f.Device {
			return fmt.Errorf("%w: %q", ErrInvalidDevice, f.Device)
		}
	}
	for _, d := range []string{f.StartDate, f.EndDate} {
		if _, err := time.Parse(ISODate, d); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDate, d)
		}
	}
	return nil
}

// Key is a stable representation of the filter used for caching and for
// tagging insight requests.
func (f DashboardFilter) Key() string {
	return fmt.Sprintf("view=%s|start=%s|end=%s|device=%s", f.View, f.StartDate, f.EndDate, f.Device)
}

// TrendPoint is the number of orders created on one day
type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// AssignmentPoint pairs unassigned deliveries with the device's total order count
type AssignmentPoint struct {
	Name       string `json:"name"`
	Unassigned int    `json:"unassigned"`
	Total      int    `json:"total"`
}

// ChartPoint is a generic name/value pair for pie and donut charts
type ChartPoint struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// AgingAlerts counts pending orders past their thresholds
type AgingAlerts struct {
	PendingOver7Days   int `json:"pending_over_7_days"`
	NotCreatedOver1Day int `json:"not_created_over_1_day"`
}

// DashboardStats aggregates the filtered orders. The return fields are only
// meaningful in the return view but are always filled.
type DashboardStats struct {
	TotalOrders              int                 `json:"total_orders"`
	PendingOrders            int                 `json:"pending_orders"`
	PendingDeliveries        int                 `json:"pending_deliveries"`
	OrdersByStatus           map[OrderStatus]int `json:"orders_by_status"`
	OrdersByDevice           map[DeviceType]int  `json:"orders_by_device"`
	StatusBreakdown          []ChartPoint        `json:"status_breakdown"`
	DeviceBreakdown          []ChartPoint        `json:"device_breakdown"`
	TrendData                []TrendPoint        `json:"trend_data"`
	AssignmentData           []AssignmentPoint   `json:"assignment_data"`
	UnassignedDeliveredCount int                 `json:"unassigned_delivered_count"`
	AgingAlerts              AgingAlerts         `json:"aging_alerts"`
	ReturnedDevicesCount     int                 `json:"returned_devices_count"`
	ReturnLabelsIssued       int                 `json:"return_labels_issued"`
	ReturnPercentage         float64             `json:"return_percentage"`
}

// Dashboard is everything a renderer needs for one filter configuration
type Dashboard struct {
	Filter      DashboardFilter `json:"filter"`
	Stats       DashboardStats  `json:"stats"`
	Rankings    []PracticeStats `json:"rankings"`
	Stock       []StockLevel    `json:"stock"`
	StockAlerts []StockItem     `json:"stock_alerts"`
	GeneratedAt time.Time       `json:"generated_at"`
}
