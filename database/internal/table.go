// Package internal holds helpers shared by the signature store backends.
package internal

import (
	"errors"
	"fmt"
	"regexp"
)

// DefaultTable is the signature table (or redis key prefix) used when none is configured.
const DefaultTable = "helix_signatures"

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// ValidateTableName rejects names that cannot be interpolated into SQL safely.
func ValidateTableName(name string) error {
	if name == "" {
		return errors.New("validate table: table name cannot be empty")
	}
	if !IsValidTableName(name) {
		return fmt.Errorf("validate table: invalid table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", name)
	}
	return nil
}

// TableOrDefault returns name, or DefaultTable when name is empty.
func TableOrDefault(name string) string {
	if name == "" {
		return DefaultTable
	}
	return name
}
