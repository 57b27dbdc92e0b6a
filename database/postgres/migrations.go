package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the signature table if it does not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool, table string) error {
	quotedTable := pgx.Identifier{table}.Sanitize()
	indexExpiresAt := pgx.Identifier{fmt.Sprintf("idx_%s_expires_at", table)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			license_key TEXT NOT NULL,
			sig_type TEXT NOT NULL,
			token TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (license_key, sig_type)
		);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (expires_at);
	`,
		quotedTable,
		indexExpiresAt, quotedTable,
	)

	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create signature table: %w", err)
	}
	return nil
}

// DropTable removes the signature table.
func DropTable(ctx context.Context, pool *pgxpool.Pool, table string) error {
	sql := fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", pgx.Identifier{table}.Sanitize())
	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("drop signature table: %w", err)
	}
	return nil
}
