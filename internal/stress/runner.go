package stress

import (
	"context"
	"fmt"
	"time"

	"github.com/Lumos-Labs-HQ/stressdb/internal/config"
	"github.com/Lumos-Labs-HQ/stressdb/internal/database"
	"github.com/Lumos-Labs-HQ/stressdb/internal/logger"
	"github.com/Lumos-Labs-HQ/stressdb/internal/progress"
	"github.com/Lumos-Labs-HQ/stressdb/internal/schema"
	"github.com/Lumos-Labs-HQ/stressdb/internal/types"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// Report is the final summary of one stress run. Partial success is
// normal: per-table and per-batch failures reduce the numbers without
// failing the run.
type Report struct {
	TablesRequested int
	TablesCreated   int
	RowsInserted    int64
	TablesUpdated   int
	RowsUpdated     int64
	QueriesRun      int
	Stats           types.Stats
	Duration        time.Duration
}

// Runner orchestrates the phases of a stress run: connectivity check,
// provisioning, parallel inserts, bulk updates, sample queries, and
// the statistics report. Only the connectivity check is fatal.
type Runner struct {
	cfg     *config.Config
	adapter database.Adapter
	log     zerolog.Logger
}

func NewRunner(cfg *config.Config) *Runner {
	return NewRunnerWithAdapter(cfg, database.NewAdapter(cfg.Database.Provider))
}

func NewRunnerWithAdapter(cfg *config.Config, adapter database.Adapter) *Runner {
	return &Runner{
		cfg:     cfg,
		adapter: adapter,
		log:     logger.Get("runner"),
	}
}

func (r *Runner) Run(ctx context.Context) (*Report, error) {
	cfg := r.cfg
	start := time.Now()

	color.Yellow("Checking database connectivity...")
	if err := r.connect(ctx); err != nil {
		return nil, err
	}
	defer r.adapter.Close()
	color.Green("✓ Database connection successful")
	fmt.Println()

	report := &Report{TablesRequested: cfg.Tables}

	tables, err := r.provisionPhase(ctx, report)
	if err != nil {
		report.Duration = time.Since(start)
		return report, err
	}

	if err := r.insertPhase(ctx, report, tables); err != nil {
		report.Duration = time.Since(start)
		return report, err
	}

	if err := r.updatePhase(ctx, report, tables); err != nil {
		report.Duration = time.Since(start)
		return report, err
	}

	if err := r.queryPhase(ctx, report, tables); err != nil {
		report.Duration = time.Since(start)
		return report, err
	}

	stats, err := r.adapter.Stats(ctx, schema.TablePrefix)
	if err != nil {
		color.Red("ERROR: Failed to collect database statistics: %v", err)
		r.log.Error().Err(err).Msg("statistics collection failed")
	} else {
		report.Stats = stats
	}

	report.Duration = time.Since(start)
	return report, nil
}

func (r *Runner) connect(ctx context.Context) error {
	connectCtx, cancel := unitContext(ctx, r.cfg.Timeout)
	defer cancel()

	if err := r.adapter.Connect(connectCtx, r.cfg.DSN(), r.cfg.PoolSize()); err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}
	if err := r.adapter.Ping(connectCtx); err != nil {
		r.adapter.Close()
		return fmt.Errorf("could not connect to database: %w", err)
	}
	return nil
}

func (r *Runner) provisionPhase(ctx context.Context, report *Report) ([]schema.Table, error) {
	cfg := r.cfg

	color.Yellow("Creating %d tables with random names...", cfg.Tables)
	color.Yellow("Writing to %s", cfg.Target())
	fmt.Println()

	sess, err := r.adapter.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection for provisioning: %w", err)
	}

	bar := progress.New(int64(cfg.Tables))
	prov := NewProvisioner(schema.NewGenerator(), cfg.Timeout)
	tables, provErr := prov.Provision(ctx, sess, cfg.Tables, cfg.Cols, bar)
	sess.Release()
	bar.Finish()

	report.TablesCreated = len(tables)
	if len(tables) == cfg.Tables {
		color.Green("✓ All %d new tables created", cfg.Tables)
	} else {
		color.Yellow("⚠ Created %d out of %d tables", len(tables), cfg.Tables)
		color.Yellow("  (Reached max attempts, may have hit name collisions)")
	}
	fmt.Println()

	return tables, provErr
}

func (r *Runner) insertPhase(ctx context.Context, report *Report, tables []schema.Table) error {
	cfg := r.cfg

	color.Yellow("Inserting %d rows into each table (%d tables)...", cfg.Rows, len(tables))
	color.Yellow("Writing to %s", cfg.Target())
	fmt.Println()

	bar := progress.New(int64(len(tables)) * int64(cfg.Rows))
	coord := NewCoordinator(r.adapter, NewInserter(cfg.Timeout), cfg.Threads)
	report.RowsInserted = coord.Run(ctx, tables, cfg.Rows, cfg.BatchSize, bar)
	bar.Finish()

	color.Green("✓ All data inserted (%d total rows)", report.RowsInserted)
	fmt.Println()

	return ctx.Err()
}

func (r *Runner) updatePhase(ctx context.Context, report *Report, tables []schema.Table) error {
	cfg := r.cfg

	color.Yellow("Updating random rows (10%% of each table)...")

	sess, err := r.adapter.Acquire(ctx)
	if err != nil {
		color.Red("ERROR: Failed to acquire connection for updates: %v", err)
		r.log.Error().Err(err).Msg("update phase skipped")
		return ctx.Err()
	}

	bar := progress.New(int64(len(tables)))
	updater := NewUpdater(cfg.Timeout)
	report.TablesUpdated, report.RowsUpdated = updater.UpdateTables(ctx, sess, tables, cfg.Rows, bar)
	sess.Release()
	bar.Finish()

	color.Green("✓ Updates completed")
	fmt.Println()

	return ctx.Err()
}

func (r *Runner) queryPhase(ctx context.Context, report *Report, tables []schema.Table) error {
	cfg := r.cfg

	color.Yellow("Running test queries...")

	sess, err := r.adapter.Acquire(ctx)
	if err != nil {
		color.Red("ERROR: Failed to acquire connection for queries: %v", err)
		r.log.Error().Err(err).Msg("query phase skipped")
		return ctx.Err()
	}

	querier := NewQuerier(cfg.Timeout)
	report.QueriesRun = querier.RunQueries(ctx, sess, tables)
	sess.Release()
	fmt.Println()

	return ctx.Err()
}

// unitContext bounds one unit of work (a table create, a batch insert,
// a bulk update, a query) so a stalled connection cannot block its
// worker indefinitely.
func unitContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
