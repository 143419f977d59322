package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/logistics-dash/backend-go/internal/analytics"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/domain"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/ingest"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/mockdata"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/service"
	"github.com/andresuchdata/logistics-dash/backend-go/pkg/logger"
)

func runMigrate(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}
	return postgres.Migrate(c.Context, db)
}

func runMock(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}
	repo := postgres.NewOrderRepository(db)

	gen := mockdata.New(c.Int64("seed"))
	orders := gen.Orders(c.Int("count"), time.Now())

	if err := repo.UpsertOrders(c.Context, orders); err != nil {
		return fmt.Errorf("failed to seed orders: %w", err)
	}
	if err := repo.UpsertStock(c.Context, gen.Stock()); err != nil {
		return fmt.Errorf("failed to seed stock: %w", err)
	}

	invalidateDashboards(c.Context, repo)
	logger.Log.Info().Int("orders", len(orders)).Msg("mock data seeded")
	return nil
}

func runImport(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}
	repo := postgres.NewOrderRepository(db)

	orders, sources, err := readImport(c)
	if err != nil {
		return err
	}

	if err := repo.UpsertOrders(c.Context, orders); err != nil {
		return fmt.Errorf("failed to import orders: %w", err)
	}

	invalidateDashboards(c.Context, repo)
	logger.Log.Info().Strs("sources", sources).Int("orders", len(orders)).Msg("orders imported")
	return nil
}

// readImport loads orders from exactly one of --file, --object or --prefix.
func readImport(c *cli.Context) ([]domain.Order, []string, error) {
	file, object, prefix := c.String("file"), c.String("object"), c.String("prefix")

	set := 0
	for _, v := range []string{file, object, prefix} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return nil, nil, fmt.Errorf("exactly one of --file, --object or --prefix is required")
	}

	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open file %s: %w", file, err)
		}
		defer f.Close()
		return readSingle(f, file)
	}

	store, err := openStorage()
	if err != nil {
		return nil, nil, err
	}
	if prefix != "" {
		return ingest.ReadObjectOrders(c.Context, store, prefix)
	}

	r, err := store.OpenObject(c.Context, object)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()
	return readSingle(r, object)
}

func readSingle(r io.Reader, source string) ([]domain.Order, []string, error) {
	orders, err := ingest.ReadOrders(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", source, err)
	}
	return orders, []string{source}, nil
}

func exportFilter(c *cli.Context, now time.Time) (domain.DashboardFilter, error) {
	view, ok := domain.ParseViewMode(c.String("view"))
	if !ok {
		return domain.DashboardFilter{}, fmt.Errorf("%w: %q", domain.ErrInvalidView, c.String("view"))
	}

	filter := domain.DefaultDashboardFilter(now)
	filter.View = view
	filter.StartDate = c.String("start-date")
	if end := c.String("end-date"); end != "" {
		filter.EndDate = end
	}
	filter.Device = service.NormalizeDevice(c.String("device"))

	return filter, filter.Validate()
}

func runExport(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}
	repo := postgres.NewOrderRepository(db)

	filter, err := exportFilter(c, time.Now())
	if err != nil {
		return err
	}

	var (
		buf         bytes.Buffer
		contentType string
	)
	switch format := c.String("format"); format {
	case "json":
		dashboard, err := service.NewDashboardService(repo, nil, c.Int("top")).GetDashboard(c.Context, filter, 0)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(dashboard); err != nil {
			return fmt.Errorf("failed to encode dashboard: %w", err)
		}
		contentType = "application/json"
	case "csv":
		orders, err := repo.ListOrders(c.Context, filter.View.OrderTypes())
		if err != nil {
			return err
		}
		if err := ingest.WriteOrders(&buf, analytics.FilterOrders(orders, filter)); err != nil {
			return err
		}
		contentType = "text/csv"
	default:
		return fmt.Errorf("unsupported format %q", format)
	}

	key := c.String("object")
	if key == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	if err := store.UploadObject(c.Context, key, buf.Bytes(), contentType); err != nil {
		return err
	}
	logger.Log.Info().Str("object", key).Str("filter", filter.Key()).Msg("export uploaded")
	return nil
}
