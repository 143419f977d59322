// backend-go/internal/repository/postgres/order_repository.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/andresuchdata/logistics-dash/backend-go/internal/domain"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const orderColumns = `id, order_type, status, device_type, practice_name, clinic_name,
	created_date, delivery_date, tracking_number, is_assigned_to_patient`

type orderRepository struct {
	db *DB
}

func NewOrderRepository(db *DB) *orderRepository {
	return &orderRepository{db: db}
}

// buildListOrdersQuery pushes the order-type predicate down to SQL; the date
// and device predicates stay in the analytics filter.
func buildListOrdersQuery(types []domain.OrderType) (string, []interface{}) {
	var (
		query strings.Builder
		args  []interface{}
	)

	query.WriteString("SELECT " + orderColumns + " FROM orders")
	if len(types) > 0 {
		labels := make([]string, len(types))
		for i, t := range types {
			labels[i] = string(t)
		}
		query.WriteString(" WHERE order_type = ANY($1)")
		args = append(args, pq.Array(labels))
	}
	query.WriteString(" ORDER BY created_date, id")

	return query.String(), args
}

func (r *orderRepository) ListOrders(ctx context.Context, types []domain.OrderType) ([]domain.Order, error) {
	query, args := buildListOrdersQuery(types)

	orders := make([]domain.Order, 0)
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	log.Debug().Int("count", len(orders)).Msg("postgres: orders loaded")
	return orders, nil
}

func (r *orderRepository) ListStock(ctx context.Context) ([]domain.StockItem, error) {
	query := `
		SELECT device_type, quantity, min_level, max_level
		FROM stock_items
		ORDER BY device_type
	`

	items := make([]domain.StockItem, 0)
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("failed to list stock: %w", err)
	}
	return items, nil
}

func (r *orderRepository) UpsertOrders(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO orders (`+orderColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id)
			DO UPDATE SET
				order_type = EXCLUDED.order_type,
				status = EXCLUDED.status,
				device_type = EXCLUDED.device_type,
				practice_name = EXCLUDED.practice_name,
				clinic_name = EXCLUDED.clinic_name,
				created_date = EXCLUDED.created_date,
				delivery_date = EXCLUDED.delivery_date,
				tracking_number = EXCLUDED.tracking_number,
				is_assigned_to_patient = EXCLUDED.is_assigned_to_patient
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare order upsert: %w", err)
		}
		defer stmt.Close()

		for _, o := range orders {
			if _, err := stmt.ExecContext(ctx,
				o.ID, string(o.Type), string(o.Status), string(o.DeviceType),
				o.PracticeName, o.ClinicName, o.CreatedDate,
				o.DeliveryDate, o.TrackingNumber, o.Assignment,
			); err != nil {
				return fmt.Errorf("failed to upsert order %s: %w", o.ID, err)
			}
		}

		log.Info().Int("count", len(orders)).Msg("postgres: orders upserted")
		return nil
	})
}

func (r *orderRepository) UpsertStock(ctx context.Context, items []domain.StockItem) error {
	if len(items) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO stock_items (device_type, quantity, min_level, max_level)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (device_type)
			DO UPDATE SET
				quantity = EXCLUDED.quantity,
				min_level = EXCLUDED.min_level,
				max_level = EXCLUDED.max_level
		`
		for _, item := range items {
			if _, err := tx.ExecContext(ctx, query, string(item.DeviceType), item.Quantity, item.MinLevel, item.MaxLevel); err != nil {
				return fmt.Errorf("failed to upsert stock for %s: %w", item.DeviceType, err)
			}
		}
		return nil
	})
}
