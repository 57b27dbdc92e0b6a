package database

import (
	"context"
	"fmt"

	"github.com/helixmedia/helix"
	"github.com/helixmedia/helix/database/internal"
	"github.com/helixmedia/helix/database/postgres"
	"github.com/helixmedia/helix/database/redis"
	"github.com/helixmedia/helix/database/sqlite"
)

// Supported store types.
const (
	TypeMemory   = "memory"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
	TypeRedis    = "redis"
)

// DefaultTable is the table, or redis key prefix, used when Config.Table is empty.
const DefaultTable = internal.DefaultTable

// Config holds the configuration for connecting to a signature store backend.
type Config struct {
	// Type specifies the backend: "memory", "sqlite", "postgres" or "redis"
	Type string
	// DSN is the data source name (connection string)
	DSN string
	// Table is the name of the signature table, or the key prefix for redis
	Table string
}

// Connect opens the configured backend, migrates and validates it where it
// has a schema, and returns a ready SignatureStore.
// The returned cleanup function should be called to close the connection.
func Connect(ctx context.Context, cfg Config) (helix.SignatureStore, func(), error) {
	switch cfg.Type {
	case TypeMemory, "":
		return helix.NewMemoryStore(), func() {}, nil
	case TypeSQLite:
		store, err := sqlite.Open(ctx, cfg.DSN, cfg.Table)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case TypePostgres:
		store, err := postgres.Open(ctx, cfg.DSN, cfg.Table)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case TypeRedis:
		store, err := redis.Open(ctx, cfg.DSN, cfg.Table)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}
