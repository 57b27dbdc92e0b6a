// Package sqlite implements helix.SignatureStore on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/helixmedia/helix"
	"github.com/helixmedia/helix/database/internal"

	_ "modernc.org/sqlite" // SQLite driver
)

// Store keeps signatures in one SQLite table keyed by (license_key, sig_type).
type Store struct {
	db    *sql.DB
	table string
}

// Open connects to dsn, creates the table if needed and validates its schema.
// The connection pool is limited to one connection so ":memory:" databases
// are shared by every query.
func Open(ctx context.Context, dsn, table string) (*Store, error) {
	table = internal.TableOrDefault(table)
	if err := internal.ValidateTableName(table); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err = Migrate(ctx, db, table); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	if err = ValidateSchema(ctx, db, table); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("validate sqlite schema: %w", err)
	}

	return &Store{db: db, table: table}, nil
}

// NewStore wraps an open database whose table has already been migrated.
func NewStore(db *sql.DB, table string) (*Store, error) {
	table = internal.TableOrDefault(table)
	if err := internal.ValidateTableName(table); err != nil {
		return nil, fmt.Errorf("new store: %w", err)
	}
	return &Store{db: db, table: table}, nil
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key helix.SignatureKey) (helix.CachedSignature, bool, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT token, expires_at FROM %s WHERE license_key = ? AND sig_type = ?`,
		quoteIdentifier(s.table))

	var sig helix.CachedSignature
	var expiresAt string

	err := s.db.QueryRowContext(ctx, query, key.LicenseKey, string(key.Type)).Scan(&sig.Token, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return helix.CachedSignature{}, false, nil
		}
		return helix.CachedSignature{}, false, fmt.Errorf("get: %w", err)
	}

	sig.ExpiresAt, err = time.Parse(time.RFC3339Nano, expiresAt)
	if err != nil {
		return helix.CachedSignature{}, false, fmt.Errorf("get: parse expires_at: %w", err)
	}

	return sig, true, nil
}

func (s *Store) Set(ctx context.Context, key helix.SignatureKey, sig helix.CachedSignature) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (license_key, sig_type, token, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (license_key, sig_type)
		DO UPDATE SET token = excluded.token, expires_at = excluded.expires_at`,
		quoteIdentifier(s.table))

	_, err := s.db.ExecContext(ctx, query,
		key.LicenseKey, string(key.Type), sig.Token, sig.ExpiresAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("set: %w", err)
	}
	return nil
}
