package stress

import (
	"context"
	"time"

	"github.com/Lumos-Labs-HQ/stressdb/internal/datagen"
	"github.com/Lumos-Labs-HQ/stressdb/internal/logger"
	"github.com/Lumos-Labs-HQ/stressdb/internal/progress"
	"github.com/Lumos-Labs-HQ/stressdb/internal/schema"
	"github.com/Lumos-Labs-HQ/stressdb/internal/types"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// renderEvery controls how often the insert loop redraws the shared
// progress bar; the final batch always renders.
const renderEvery = 5

// BatchSizes partitions total rows into chunks of at most batchSize.
// Every chunk is full except possibly the last.
func BatchSizes(total, batchSize int) []int {
	if total <= 0 || batchSize <= 0 {
		return nil
	}
	numBatches := (total + batchSize - 1) / batchSize
	sizes := make([]int, 0, numBatches)
	remaining := total
	for remaining > 0 {
		size := batchSize
		if remaining < size {
			size = remaining
		}
		sizes = append(sizes, size)
		remaining -= size
	}
	return sizes
}

// Inserter runs the sequential batching loop for one table: generate a
// batch, insert it in one statement and one transaction, move on. A
// failed batch contributes zero rows and the loop continues.
type Inserter struct {
	timeout time.Duration
	log     zerolog.Logger
}

func NewInserter(timeout time.Duration) *Inserter {
	return &Inserter{
		timeout: timeout,
		log:     logger.Get("inserter"),
	}
}

// InsertTable inserts rows random rows into the table in batches and
// returns the count actually inserted. Rows are generated just in time
// per batch and never retained. Cancellation is honored between
// batches.
func (ins *Inserter) InsertTable(ctx context.Context, sess types.Session, gen *datagen.Generator, table schema.Table, rows, batchSize int, bar *progress.Bar) int64 {
	sizes := BatchSizes(rows, batchSize)

	var inserted int64
	for i, size := range sizes {
		if ctx.Err() != nil {
			break
		}

		batch := gen.Rows(table.Columns, size)

		unitCtx, cancel := unitContext(ctx, ins.timeout)
		n, err := sess.InsertRows(unitCtx, table, batch)
		cancel()
		if err != nil {
			color.Red("ERROR: Failed to insert batch %d/%d into %s: %v", i+1, len(sizes), table.Name, err)
			ins.log.Error().Err(err).Str("table", table.Name).Int("batch", i+1).Msg("batch insert failed")
			continue
		}

		inserted += n
		if bar != nil {
			bar.Add(n)
			if (i+1)%renderEvery == 0 || i+1 == len(sizes) {
				bar.Render()
			}
		}
	}

	return inserted
}
