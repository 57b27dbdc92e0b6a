package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// quoteIdentifier safely quotes a SQLite identifier
func quoteIdentifier(name string) string {
	return `"` + name + `"`
}

// Migrate creates the signature table if it does not exist.
func Migrate(ctx context.Context, db *sql.DB, table string) error {
	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			license_key TEXT NOT NULL,
			sig_type TEXT NOT NULL,
			token TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			PRIMARY KEY (license_key, sig_type)
		)
	`, quoteIdentifier(table))

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("migrate up %s: %w", table, err)
	}
	return nil
}

// DropTable removes the signature table.
func DropTable(ctx context.Context, db *sql.DB, table string) error {
	dropSQL := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdentifier(table))
	if _, err := db.ExecContext(ctx, dropSQL); err != nil {
		return fmt.Errorf("migrate down %s: %w", table, err)
	}
	return nil
}
