package repository

import (
	"context"
	"sync"

	"github.com/andresuchdata/logistics-dash/backend-go/internal/domain"
)

// MemoryRepository keeps orders and stock in insertion order.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders []domain.Order
	index  map[string]int
	stock  []domain.StockItem
}

func NewMemoryRepository(orders []domain.Order, stock []domain.StockItem) *MemoryRepository {
	r := &MemoryRepository{index: make(map[string]int)}
	_ = r.UpsertOrders(context.Background(), orders)
	_ = r.UpsertStock(context.Background(), stock)
	return r
}

func (r *MemoryRepository) ListOrders(ctx context.Context, types []domain.OrderType) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	allowed := make(map[domain.OrderType]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}

	out := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if len(allowed) > 0 {
			if _, ok := allowed[o.Type]; !ok {
				continue
			}
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *MemoryRepository) ListStock(ctx context.Context) ([]domain.StockItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]domain.StockItem(nil), r.stock...), nil
}

// UpsertOrders replaces orders with a known ID in place and appends the rest.
func (r *MemoryRepository) UpsertOrders(ctx context.Context, orders []domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range orders {
		if i, ok := r.index[o.ID]; ok {
			r.orders[i] = o
			continue
		}
		r.index[o.ID] = len(r.orders)
		r.orders = append(r.orders, o)
	}
	return nil
}

// UpsertStock keeps one snapshot per device type.
func (r *MemoryRepository) UpsertStock(ctx context.Context, items []domain.StockItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		replaced := false
		for i := range r.stock {
			if r.stock[i].DeviceType == item.DeviceType {
				r.stock[i] = item
				replaced = true
				break
			}
		}
		if !replaced {
			r.stock = append(r.stock, item)
		}
	}
	return nil
}
