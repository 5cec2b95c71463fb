package common

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Lumos-Labs-HQ/stressdb/internal/schema"
)

// validIdentifier validates SQL identifiers (table/column names) to prevent SQL injection
var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// IsValidIdentifier checks if a string is a valid SQL identifier
func IsValidIdentifier(name string) bool {
	return validIdentifier.MatchString(name)
}

// ValidateTable rejects a table whose name or column names could not be
// safely interpolated into DDL.
func ValidateTable(table schema.Table) error {
	if !IsValidIdentifier(table.Name) {
		return fmt.Errorf("invalid table name: %s", table.Name)
	}
	for _, col := range table.Columns {
		if !IsValidIdentifier(col.Name) {
			return fmt.Errorf("invalid column name in table %s: %s", table.Name, col.Name)
		}
	}
	return nil
}

// ColumnDefs renders the generated columns as a DDL fragment. The five
// generated types spell the same in every supported dialect, so only
// the surrogate key and timestamp columns differ per adapter.
func ColumnDefs(columns []schema.Column) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = fmt.Sprintf("%s %s", col.Name, col.Type)
	}
	return strings.Join(defs, ", ")
}

// FormatBytes renders a byte count the way pg_size_pretty does, for
// adapters whose catalog reports raw sizes.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d bytes", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 3; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.0f %s", float64(n)/float64(div), []string{"kB", "MB", "GB", "TB"}[exp])
}
