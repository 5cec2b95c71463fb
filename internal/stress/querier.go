package stress

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/Lumos-Labs-HQ/stressdb/internal/logger"
	"github.com/Lumos-Labs-HQ/stressdb/internal/schema"
	"github.com/Lumos-Labs-HQ/stressdb/internal/types"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// sampleQueries is the fixed number of read-only count queries issued
// against randomly chosen tables at the end of a run.
const sampleQueries = 5

// Querier samples the created tables with COUNT(*) queries. Purely
// read-only; failures are reported and skipped.
type Querier struct {
	rand    *rand.Rand
	timeout time.Duration
	log     zerolog.Logger
}

func NewQuerier(timeout time.Duration) *Querier {
	return &Querier{
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
		timeout: timeout,
		log:     logger.Get("querier"),
	}
}

// RunQueries issues the sample queries and returns how many succeeded.
func (q *Querier) RunQueries(ctx context.Context, sess types.Session, tables []schema.Table) int {
	if len(tables) == 0 {
		return 0
	}

	succeeded := 0
	for i := 1; i <= sampleQueries; i++ {
		if ctx.Err() != nil {
			break
		}

		table := tables[q.rand.Intn(len(tables))]
		fmt.Printf("  Query %d/%d: SELECT COUNT(*) FROM %s...\n", i, sampleQueries, table.Name)

		unitCtx, cancel := unitContext(ctx, q.timeout)
		count, err := sess.CountRows(unitCtx, table.Name)
		cancel()
		if err != nil {
			color.Red("    ✗ Error running query: %v", err)
			q.log.Error().Err(err).Str("table", table.Name).Msg("count query failed")
			continue
		}

		color.Green("    ✓ Count: %d rows", count)
		succeeded++
	}

	return succeeded
}
