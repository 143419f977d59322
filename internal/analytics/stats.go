package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/logistics-dash/backend-go/internal/domain"
)

const (
	pendingAlertDays    = 7
	notCreatedAlertDays = 1
)

// ComputeStats derives all dashboard metrics from the filtered orders in a
// single pass. now is the reference time for the aging alerts.
func ComputeStats(orders []domain.Order, now time.Time) domain.DashboardStats {
	byStatus := make(map[domain.OrderStatus]int, len(domain.AllOrderStatuses))
	for _, s := range domain.AllOrderStatuses {
		byStatus[s] = 0
	}

	// Device buckets are seeded on first occurrence; deviceOrder keeps that order
	// for the chart series.
	byDevice := make(map[domain.DeviceType]int)
	var deviceOrder []domain.DeviceType

	unassignedByDevice := make(map[domain.DeviceType]int)
	var unassignedOrder []domain.DeviceType

	trend := make(map[string]int)

	var (
		unassignedDelivered int
		pendingOver7        int
		notCreatedOver1     int
	)

	for _, o := range orders {
		byStatus[o.Status]++

		if _, seen := byDevice[o.DeviceType]; !seen {
			deviceOrder = append(deviceOrder, o.DeviceType)
		}
		byDevice[o.DeviceType]++

		if o.IsUnassignedDelivery() {
			unassignedDelivered++
			if _, seen := unassignedByDevice[o.DeviceType]; !seen {
				unassignedOrder = append(unassignedOrder, o.DeviceType)
			}
			unassignedByDevice[o.DeviceType]++
		}

		trend[dayKey(o.CreatedDate)]++

		if o.Status == domain.StatusPending {
			age := ageInDays(now, o.CreatedDate)
			if age > pendingAlertDays {
				pendingOver7++
			}
			// Literal condition: any pending order older than a day.
			if age > notCreatedAlertDays {
				notCreatedOver1++
			}
		}
	}

	total := len(orders)

	trendData := make([]domain.TrendPoint, 0, len(trend))
	for date, count := range trend {
		trendData = append(trendData, domain.TrendPoint{Date: date, Count: count})
	}
	sort.Slice(trendData, func(i, j int) bool { return trendData[i].Date < trendData[j].Date })

	// Total is the device's count within the filter, not its delivered count.
	assignmentData := make([]domain.AssignmentPoint, 0, len(unassignedOrder))
	for _, d := range unassignedOrder {
		assignmentData = append(assignmentData, domain.AssignmentPoint{
			Name:       string(d),
			Unassigned: unassignedByDevice[d],
			Total:      byDevice[d],
		})
	}

	statusBreakdown := make([]domain.ChartPoint, 0, len(domain.AllOrderStatuses))
	for _, s := range domain.AllOrderStatuses {
		statusBreakdown = append(statusBreakdown, domain.ChartPoint{Name: string(s), Value: byStatus[s]})
	}

	deviceBreakdown := make([]domain.ChartPoint, 0, len(deviceOrder))
	for _, d := range deviceOrder {
		deviceBreakdown = append(deviceBreakdown, domain.ChartPoint{Name: string(d), Value: byDevice[d]})
	}

	delivered := byStatus[domain.StatusDelivered]

	return domain.DashboardStats{
		TotalOrders:              total,
		PendingOrders:            byStatus[domain.StatusPending],
		PendingDeliveries:        byStatus[domain.StatusInTransit],
		OrdersByStatus:           byStatus,
		OrdersByDevice:           byDevice,
		StatusBreakdown:          statusBreakdown,
		DeviceBreakdown:          deviceBreakdown,
		TrendData:                trendData,
		AssignmentData:           assignmentData,
		UnassignedDeliveredCount: unassignedDelivered,
		AgingAlerts: domain.AgingAlerts{
			PendingOver7Days:   pendingOver7,
			NotCreatedOver1Day: notCreatedOver1,
		},
		ReturnedDevicesCount: delivered,
		ReturnLabelsIssued:   total,
		ReturnPercentage:     percentage(delivered, total),
	}
}

// ageInDays is floor((now - created) / 1 day).
func ageInDays(now, created time.Time) int {
	return int(math.Floor(float64(now.Sub(created)) / float64(24*time.Hour)))
}

func percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
