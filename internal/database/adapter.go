package database

import (
	"context"

	"github.com/Lumos-Labs-HQ/stressdb/internal/types"
)

// Adapter is a database backend holding a bounded connection pool
// shared across worker threads.
type Adapter interface {
	Connect(ctx context.Context, dsn string, maxConns int) error
	Close() error
	Ping(ctx context.Context) error

	// Acquire borrows one connection from the pool, blocking until one
	// is available.
	Acquire(ctx context.Context) (types.Session, error)

	// Stats reports catalog statistics over tables matching the prefix.
	Stats(ctx context.Context, prefix string) (types.Stats, error)

	// DropTables drops every table matching the prefix and returns the
	// number dropped.
	DropTables(ctx context.Context, prefix string) (int, error)
}
