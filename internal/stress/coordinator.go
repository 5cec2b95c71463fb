package stress

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Lumos-Labs-HQ/stressdb/internal/datagen"
	"github.com/Lumos-Labs-HQ/stressdb/internal/logger"
	"github.com/Lumos-Labs-HQ/stressdb/internal/progress"
	"github.com/Lumos-Labs-HQ/stressdb/internal/schema"
	"github.com/Lumos-Labs-HQ/stressdb/internal/types"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// SessionPool hands out pooled connections; blocking until one is
// available. Satisfied by every database adapter.
type SessionPool interface {
	Acquire(ctx context.Context) (types.Session, error)
}

// Coordinator fans per-table insert tasks out across a fixed-size
// worker pool. Tables run concurrently; batches within one table run
// sequentially on the worker that owns it.
type Coordinator struct {
	pool     SessionPool
	inserter *Inserter
	workers  int
	log      zerolog.Logger
}

func NewCoordinator(pool SessionPool, inserter *Inserter, workers int) *Coordinator {
	return &Coordinator{
		pool:     pool,
		inserter: inserter,
		workers:  workers,
		log:      logger.Get("coordinator"),
	}
}

// Run schedules one task per table, waits for every task to finish,
// and returns the total rows actually inserted. Each task borrows one
// connection for its entire table and releases it on every exit path.
func (c *Coordinator) Run(ctx context.Context, tables []schema.Table, rowsPerTable, batchSize int, bar *progress.Bar) int64 {
	workers := c.workers
	if workers > len(tables) {
		workers = len(tables)
	}
	if workers < 1 {
		return 0
	}

	tasks := make(chan schema.Table)
	var total atomic.Int64
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Generators are not safe for concurrent use; one per worker.
			gen := datagen.New()

			for table := range tasks {
				if ctx.Err() != nil {
					continue
				}
				total.Add(c.insertTable(ctx, gen, table, rowsPerTable, batchSize, bar))
			}
		}()
	}

	for _, table := range tables {
		tasks <- table
	}
	close(tasks)
	wg.Wait()

	return total.Load()
}

func (c *Coordinator) insertTable(ctx context.Context, gen *datagen.Generator, table schema.Table, rowsPerTable, batchSize int, bar *progress.Bar) int64 {
	sess, err := c.pool.Acquire(ctx)
	if err != nil {
		color.Red("ERROR: Failed to acquire connection for %s: %v", table.Name, err)
		c.log.Error().Err(err).Str("table", table.Name).Msg("connection acquisition failed")
		return 0
	}
	defer sess.Release()

	return c.inserter.InsertTable(ctx, sess, gen, table, rowsPerTable, batchSize, bar)
}
