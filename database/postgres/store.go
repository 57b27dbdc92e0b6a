// Package postgres implements helix.SignatureStore on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/helixmedia/helix"
	"github.com/helixmedia/helix/database/internal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store keeps signatures in one PostgreSQL table keyed by (license_key, sig_type).
type Store struct {
	pool  *pgxpool.Pool
	table string
}

// Open connects to dsn, creates the table if needed and validates its schema.
func Open(ctx context.Context, dsn, table string) (*Store, error) {
	table = internal.TableOrDefault(table)
	if err := internal.ValidateTableName(table); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err = Migrate(ctx, pool, table); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}

	if err = ValidateSchema(ctx, pool, table); err != nil {
		pool.Close()
		return nil, fmt.Errorf("validate postgres schema: %w", err)
	}

	return &Store{pool: pool, table: table}, nil
}

// NewStore wraps a pool whose table has already been migrated.
func NewStore(pool *pgxpool.Pool, table string) (*Store, error) {
	table = internal.TableOrDefault(table)
	if err := internal.ValidateTableName(table); err != nil {
		return nil, fmt.Errorf("new store: %w", err)
	}
	return &Store{pool: pool, table: table}, nil
}

// Ping verifies database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Get(ctx context.Context, key helix.SignatureKey) (helix.CachedSignature, bool, error) {
	query := fmt.Sprintf(`
		SELECT token, expires_at
		FROM %s
		WHERE license_key = $1 AND sig_type = $2
	`, pgx.Identifier{s.table}.Sanitize())

	var sig helix.CachedSignature
	err := s.pool.QueryRow(ctx, query, key.LicenseKey, string(key.Type)).Scan(&sig.Token, &sig.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return helix.CachedSignature{}, false, nil
		}
		return helix.CachedSignature{}, false, fmt.Errorf("get: %w", err)
	}

	return sig, true, nil
}

func (s *Store) Set(ctx context.Context, key helix.SignatureKey, sig helix.CachedSignature) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (license_key, sig_type, token, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (license_key, sig_type)
		DO UPDATE SET
			token = EXCLUDED.token,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
	`, pgx.Identifier{s.table}.Sanitize())

	if _, err := s.pool.Exec(ctx, query, key.LicenseKey, string(key.Type), sig.Token, sig.ExpiresAt); err != nil {
		return fmt.Errorf("set: %w", err)
	}
	return nil
}
