package stress

import (
	"context"
	"time"

	"github.com/Lumos-Labs-HQ/stressdb/internal/logger"
	"github.com/Lumos-Labs-HQ/stressdb/internal/progress"
	"github.com/Lumos-Labs-HQ/stressdb/internal/schema"
	"github.com/Lumos-Labs-HQ/stressdb/internal/types"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// Updater performs the bulk-update phase: per table, one transaction
// touching a random sample of rows for workload realism.
type Updater struct {
	timeout time.Duration
	log     zerolog.Logger
}

func NewUpdater(timeout time.Duration) *Updater {
	return &Updater{
		timeout: timeout,
		log:     logger.Get("updater"),
	}
}

// UpdateCount is how many rows each table's update touches: 10% of the
// insert target, at least one.
func UpdateCount(rowsPerTable int) int {
	count := rowsPerTable / 10
	if count < 1 {
		count = 1
	}
	return count
}

// UpdateTables updates each table in sequence on the borrowed session.
// Per-table failures are reported and skipped. Returns the number of
// tables updated and the total rows affected.
func (u *Updater) UpdateTables(ctx context.Context, sess types.Session, tables []schema.Table, rowsPerTable int, bar *progress.Bar) (int, int64) {
	updateCount := UpdateCount(rowsPerTable)

	var tablesUpdated int
	var rowsUpdated int64
	for _, table := range tables {
		if ctx.Err() != nil {
			break
		}

		unitCtx, cancel := unitContext(ctx, u.timeout)
		affected, err := sess.UpdateRows(unitCtx, table, updateCount)
		cancel()
		if err != nil {
			color.Red("ERROR: Failed to update table %s: %v", table.Name, err)
			u.log.Error().Err(err).Str("table", table.Name).Msg("bulk update failed")
			continue
		}

		tablesUpdated++
		rowsUpdated += affected
		if bar != nil {
			bar.Add(1)
			bar.Render()
		}
	}

	return tablesUpdated, rowsUpdated
}
