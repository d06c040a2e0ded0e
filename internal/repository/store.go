package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rrens/sitepublish/internal/config"
	"github.com/Rrens/sitepublish/internal/domain"
	"github.com/Rrens/sitepublish/internal/repository/memory"
	"github.com/Rrens/sitepublish/internal/repository/mongo"
	"github.com/Rrens/sitepublish/internal/repository/postgres"
	"github.com/Rrens/sitepublish/internal/repository/sqlstore"
)

// Storage drivers
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverMemory   = "memory"
)

// OpenStore connects the document store selected by storage.driver
func OpenStore(ctx context.Context, cfg *config.Config) (domain.DocumentStore, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))

	switch driver {
	case DriverPostgres:
		pool, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return postgres.NewDocumentStore(pool), nil

	case DriverMongo:
		store, err := mongo.NewStore(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		return store, nil

	case DriverSQLite, DriverMySQL:
		dialect, err := sqlstore.DialectFor(driver)
		if err != nil {
			return nil, err
		}
		store, err := sqlstore.Open(ctx, dialect, cfg.SQL.DSN)
		if err != nil {
			return nil, err
		}
		return store, nil

	case DriverMemory:
		return memory.NewStore(), nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", cfg.Storage.Driver)
	}
}
