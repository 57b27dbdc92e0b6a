package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type columnInfo struct {
	dataType   string
	isNullable bool
}

var expectedSchema = map[string]columnInfo{
	"license_key": {dataType: "text", isNullable: false},
	"sig_type":    {dataType: "text", isNullable: false},
	"token":       {dataType: "text", isNullable: false},
	"expires_at":  {dataType: "text", isNullable: false},
}

// ValidateSchema checks that table exists with the columns the store reads and writes.
func ValidateSchema(ctx context.Context, db *sql.DB, table string) error {
	exists, err := tableExists(ctx, db, table)
	if err != nil {
		return fmt.Errorf("validate table schema: %w", err)
	}
	if !exists {
		return fmt.Errorf("validate table schema: table %s does not exist", table)
	}

	// SQLite uses PRAGMA table_info to get column information
	query := fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdentifier(table))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("validate table schema: query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	actual := make(map[string]columnInfo)
	for rows.Next() {
		var cid int
		var name, dataType string
		var notNull int
		var dfltValue sql.NullString
		var pk int

		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("validate table schema: scan column: %w", err)
		}
		actual[name] = columnInfo{
			dataType:   strings.ToLower(dataType),
			isNullable: notNull == 0,
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("validate table schema: rows error: %w", err)
	}

	var problems []string
	for name, want := range expectedSchema {
		got, ok := actual[name]
		if !ok {
			problems = append(problems, "missing column "+name)
			continue
		}
		if got.dataType != want.dataType {
			problems = append(problems, fmt.Sprintf("%s: expected %s, got %s", name, want.dataType, got.dataType))
		}
		if got.isNullable != want.isNullable {
			problems = append(problems, fmt.Sprintf("%s: expected nullable=%v, got nullable=%v", name, want.isNullable, got.isNullable))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("validate table schema: %s", strings.Join(problems, "; "))
	}
	return nil
}

func tableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var name string
	err := db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check table exists: %w", err)
	}
	return true, nil
}
