package types

import (
	"context"

	"github.com/Lumos-Labs-HQ/stressdb/internal/schema"
)

// Session is one borrowed connection from the adapter's pool. A worker
// owns its session exclusively until Release; no session is shared
// across concurrent statements.
type Session interface {
	// TableExists checks the live schema catalog for a table name.
	TableExists(ctx context.Context, name string) (bool, error)

	// CreateTable creates the table (surrogate key, created_at and
	// updated_at timestamps, the generated columns) plus an index on
	// created_at, as a single unit of work.
	CreateTable(ctx context.Context, table schema.Table) error

	// InsertRows inserts all rows as one multi-row statement in one
	// transaction and returns the number of rows inserted.
	InsertRows(ctx context.Context, table schema.Table, rows [][]any) (int64, error)

	// UpdateRows touches up to limit random rows: updated_at is set to
	// the current time and, when the table has an INTEGER or BIGINT
	// column, the first such column is incremented by 1. One
	// transaction; returns rows affected.
	UpdateRows(ctx context.Context, table schema.Table, limit int) (int64, error)

	// CountRows returns COUNT(*) for the named table.
	CountRows(ctx context.Context, name string) (int64, error)

	// Release returns the connection to the pool.
	Release()
}

// Stats is the database-statistics block of the final report.
type Stats struct {
	Tables   int64
	LiveRows int64
	Size     string
}
