package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type columnInfo struct {
	dataType   string
	isNullable bool
}

var expectedSchema = map[string]columnInfo{
	"license_key": {dataType: "text", isNullable: false},
	"sig_type":    {dataType: "text", isNullable: false},
	"token":       {dataType: "text", isNullable: false},
	"expires_at":  {dataType: "timestamp with time zone", isNullable: false},
	"updated_at":  {dataType: "timestamp with time zone", isNullable: false},
}

// ValidateSchema checks that table exists with the columns the store reads and writes.
func ValidateSchema(ctx context.Context, pool *pgxpool.Pool, table string) error {
	exists, err := tableExists(ctx, pool, table)
	if err != nil {
		return fmt.Errorf("validate table schema: %w", err)
	}
	if !exists {
		return fmt.Errorf("validate table schema: table %s does not exist", table)
	}

	query := `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_name = $1
		ORDER BY ordinal_position
	`

	rows, err := pool.Query(ctx, query, table)
	if err != nil {
		return fmt.Errorf("validate table schema: query columns: %w", err)
	}
	defer rows.Close()

	actual := make(map[string]columnInfo)
	for rows.Next() {
		var name, dataType, isNullable string
		if err := rows.Scan(&name, &dataType, &isNullable); err != nil {
			return fmt.Errorf("validate table schema: scan column: %w", err)
		}
		actual[name] = columnInfo{
			dataType:   strings.ToLower(dataType),
			isNullable: isNullable == "YES",
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

func tableExists(ctx context.Context, pool *pgxpool.Pool, table string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = $1
		)
	`, table).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check table exists: %w", err)
	}
	return exists, nil
}
