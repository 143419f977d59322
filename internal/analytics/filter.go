// internal/analytics/filter.go
package analytics

import (
	"time"

	"github.com/andresuchdata/logistics-dash/backend-go/internal/domain"
)

// FilterOrders returns the orders matching the filter's date range, view and
// device, preserving their relative order. The returned slice is never nil.
//
// Dates are compared as ISO day strings derived from CreatedDate in UTC, so an
// order created at any time on EndDate is included. Callers must pass
// well-formed YYYY-MM-DD bounds; anything else falls back to plain string
// ordering.
func FilterOrders(orders []domain.Order, filter domain.DashboardFilter) []domain.Order {
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		day := dayKey(o.CreatedDate)
		if day < filter.StartDate || day > filter.EndDate {
			continue
		}
		if !filter.View.Matches(o.Type) {
			continue
		}
		if filter.Device != domain.DeviceAll && string(o.DeviceType) != filter.Device {
			continue
		}
		out = append(out, o)
	}
	return out
}

func dayKey(t time.Time) string {
	return t.UTC().Format(domain.ISODate)
}
