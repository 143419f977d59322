// Package mockdata produces the demo order and stock data the dashboard runs on
// when no database is configured.
package mockdata

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/andresuchdata/logistics-dash/backend-go/internal/domain"
)

const (
	DefaultOrderCount = 350

	historyDays     = 30
	stockMinLevel   = 15
	stockMaxLevel   = 100
	stockBaseQty    = 5
	stockQtySpread  = 50
	firstOrderIndex = 1000
)

var (
	Practices = []string{"Green Valley Health", "Oak Ridge Medical", "Lakeside Cardiology", "Mountain View Wellness"}
	Clinics   = []string{"North Wing", "South Campus", "East Annex", "West Plaza"}
)

type Generator struct {
	rng *rand.Rand
}

// New returns a generator; a zero seed picks one from the clock.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Orders builds count orders created within the 30 days before now.
func (g *Generator) Orders(count int, now time.Time) []domain.Order {
	if count < 0 {
		count = 0
	}

	orders := make([]domain.Order, 0, count)
	for i := 0; i < count; i++ {
		orders = append(orders, g.order(i, now))
	}
	return orders
}

func (g *Generator) order(i int, now time.Time) domain.Order {
	status := domain.AllOrderStatuses[g.rng.Intn(len(domain.AllOrderStatuses))]

	o := domain.Order{
		ID:           fmt.Sprintf("ORD-%d", firstOrderIndex+i),
		Type:         g.orderType(),
		Status:       status,
		DeviceType:   domain.AllDeviceTypes[g.rng.Intn(len(domain.AllDeviceTypes))],
		PracticeName: Practices[g.rng.Intn(len(Practices))],
		ClinicName:   Clinics[g.rng.Intn(len(Clinics))],
		CreatedDate:  now.AddDate(0, 0, -g.rng.Intn(historyDays)),
	}

	if status == domain.StatusDelivered {
		// 70% assigned, 30% unassigned
		o.Assignment = domain.AssignmentFromBool(g.rng.Float64() > 0.3)
		delivered := now
		o.DeliveryDate = &delivered
	}
	if status != domain.StatusPending {
		tracking := g.trackingNumber()
		o.TrackingNumber = &tracking
	}
	return o
}

// orderType yields roughly 30% returns; the rest split between new,
// replacement and additional orders.
func (g *Generator) orderType() domain.OrderType {
	switch {
	case g.rng.Float64() > 0.7:
		return domain.OrderTypeReturn
	case g.rng.Float64() > 0.6:
		return domain.OrderTypeNew
	case g.rng.Float64() > 0.5:
		return domain.OrderTypeReplacement
	default:
		return domain.OrderTypeAdditional
	}
}

func (g *Generator) trackingNumber() string {
	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		id = uuid.New()
	}
	return "TRK" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

// Stock returns one snapshot per device type.
func (g *Generator) Stock() []domain.StockItem {
	items := make([]domain.StockItem, 0, len(domain.AllDeviceTypes))
	for _, d := range domain.AllDeviceTypes {
		items = append(items, domain.StockItem{
			DeviceType: d,
			Quantity:   g.rng.Intn(stockQtySpread) + stockBaseQty,
			MinLevel:   stockMinLevel,
			MaxLevel:   stockMaxLevel,
		})
	}
	return items
}
