package db

import (
	"context"
	"fmt"

	"github.com/jonathan/career-extractor/internal/observability"
)

// Store backends
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Options selects and locates a store backend
type Options struct {
	Kind        string
	DatabaseURL string
	SQLitePath  string
	// Migrate runs EnsureSchema on Postgres after connecting
	Migrate bool
}

// Open returns the configured session store and a function that releases it
func Open(ctx context.Context, opts Options) (observability.Store, func(), error) {
	switch opts.Kind {
	case "", StoreMemory:
		return observability.NewMemoryStore(), func() {}, nil

	case StorePostgres:
		if opts.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("postgres store requires a database url")
		}
		pg, err := Connect(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if opts.Migrate {
			if err := pg.EnsureSchema(ctx); err != nil {
				pg.Close()
				return nil, nil, err
			}
		}
		return pg, pg.Close, nil

	case StoreSQLite:
		if opts.SQLitePath == "" {
			return nil, nil, fmt.Errorf("sqlite store requires a path")
		}
		lite, err := OpenSQLite(ctx, opts.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return lite, func() { _ = lite.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", opts.Kind)
}
