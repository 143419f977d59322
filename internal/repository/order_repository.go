// backend-go/internal/repository/order_repository.go
package repository

import (
	"context"

	"github.com/andresuchdata/logistics-dash/backend-go/internal/domain"
)

// OrderRepository is the data source the dashboard reads from. An empty types
// slice means every order type.
type OrderRepository interface {
	ListOrders(ctx context.Context, types []domain.OrderType) ([]domain.Order, error)
	ListStock(ctx context.Context) ([]domain.StockItem, error)
}

// OrderWriter persists orders and stock snapshots.
type OrderWriter interface {
	UpsertOrders(ctx context.Context, orders []domain.Order) error
	UpsertStock(ctx context.Context, items []domain.StockItem) error
}

// OrderStore is a repository that can be both read and seeded.
type OrderStore interface {
	OrderRepository
	OrderWriter
}
