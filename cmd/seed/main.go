package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/logistics-dash/backend-go/internal/cache"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/config"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/repository"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/service"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/storage"
	"github.com/andresuchdata/logistics-dash/backend-go/pkg/logger"
)

type dbKey struct{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	// Initialize database connection
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(c.Context); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Store the database connection in the context
	c.Context = context.WithValue(c.Context, dbKey{}, postgres.Wrap(sqlx.NewDb(db, "pgx")))
	return nil
}

func closeDB(c *cli.Context) error {
	// Close the database connection when done
	if db, ok := c.Context.Value(dbKey{}).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFromContext(c *cli.Context) (*postgres.DB, error) {
	db, ok := c.Context.Value(dbKey{}).(*postgres.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database connection not initialized")
	}
	return db, nil
}

// openStorage builds the object storage client from STORAGE_* settings.
func openStorage() (storage.ObjectStorage, error) {
	return storage.NewMinioClient(config.Load().Storage)
}

// invalidateDashboards clears cached dashboards so the server picks up new
// data; a missing cache is not an error.
func invalidateDashboards(ctx context.Context, repo repository.OrderRepository) {
	dashboardCache, err := cache.NewDashboardCache(config.Load().Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("cache unavailable, skipping invalidation")
		return
	}
	svc := service.NewDashboardService(repo, dashboardCache, 0)
	if err := svc.InvalidateCache(ctx); err != nil {
		logger.Log.Warn().Err(err).Msg("cache invalidation failed")
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Manage logistics dashboard data",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Create the orders and stock_items tables",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runMigrate,
			},
			{
				Name:  "mock",
				Usage: "Generate mock orders and stock and upsert them",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.IntFlag{
						Name:    "count",
						Usage:   "Number of orders to generate",
						Value:   350,
						EnvVars: []string{"MOCK_ORDER_COUNT"},
					},
					&cli.Int64Flag{
						Name:    "seed",
						Usage:   "Random seed (0 picks one from the clock)",
						EnvVars: []string{"MOCK_SEED"},
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runMock,
			},
			{
				Name:  "import",
				Usage: "Import orders CSVs from a local file, an object key, or every CSV under an object prefix",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:  "file",
						Usage: "Local CSV path",
					},
					&cli.StringFlag{
						Name:  "object",
						Usage: "Object key in the storage bucket",
					},
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Import every .csv object under this prefix",
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runImport,
			},
			{
				Name:  "export",
				Usage: "Compute a dashboard (json) or filtered orders (csv) and write it to stdout or object storage",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{Name: "view", Value: "New", Usage: "New or Return"},
					&cli.StringFlag{Name: "start-date", Value: "2024-01-01", Usage: "Inclusive start (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "end-date", Usage: "Inclusive end (YYYY-MM-DD), defaults to today"},
					&cli.StringFlag{Name: "device", Value: "All", Usage: "Device type or All"},
					&cli.IntFlag{Name: "top", Value: 10, Usage: "Number of ranking rows"},
					&cli.StringFlag{Name: "format", Value: "json", Usage: "json or csv"},
					&cli.StringFlag{Name: "object", Usage: "Upload to this object key instead of stdout"},
				},
				Before: initDB,
				After:  closeDB,
				Action: runExport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
