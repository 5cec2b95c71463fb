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

// attemptsPerTable bounds the naming retry budget: at most
// 3 x requested attempts across the whole provisioning phase.
const attemptsPerTable = 3

// Provisioner creates the randomly named, randomly shaped tables the
// insert phase will fill. Name collisions with live tables burn an
// attempt and draw a fresh name; creation failures are non-fatal.
type Provisioner struct {
	gen     *schema.Generator
	timeout time.Duration
	log     zerolog.Logger
}

func NewProvisioner(gen *schema.Generator, timeout time.Duration) *Provisioner {
	return &Provisioner{
		gen:     gen,
		timeout: timeout,
		log:     logger.Get("provisioner"),
	}
}

// Provision creates up to requested tables with cols columns each and
// returns the set actually created. All downstream phases operate on
// that set, which may be smaller than requested if the attempt budget
// ran out.
func (p *Provisioner) Provision(ctx context.Context, sess types.Session, requested, cols int, bar *progress.Bar) ([]schema.Table, error) {
	created := make([]schema.Table, 0, requested)
	maxAttempts := requested * attemptsPerTable

	for attempts := 0; len(created) < requested && attempts < maxAttempts; attempts++ {
		if err := ctx.Err(); err != nil {
			return created, err
		}

		name := p.gen.TableName()

		unitCtx, cancel := unitContext(ctx, p.timeout)
		exists, err := sess.TableExists(unitCtx, name)
		cancel()
		if err != nil {
			color.Yellow("Warning: Could not check if table exists: %v", err)
			p.log.Warn().Err(err).Str("table", name).Msg("existence check failed")
			continue
		}
		if exists {
			p.log.Debug().Str("table", name).Msg("name collision, drawing a fresh name")
			continue
		}

		table := schema.Table{Name: name, Columns: p.gen.Columns(cols)}

		unitCtx, cancel = unitContext(ctx, p.timeout)
		err = sess.CreateTable(unitCtx, table)
		cancel()
		if err != nil {
			color.Red("ERROR: Failed to create table %s: %v", name, err)
			p.log.Error().Err(err).Str("table", name).Msg("table creation failed")
			continue
		}

		created = append(created, table)
		if bar != nil {
			bar.Add(1)
			bar.Render()
		}
	}

	return created, nil
}
