package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Lumos-Labs-HQ/stressdb/internal/config"
	"github.com/Lumos-Labs-HQ/stressdb/internal/stress"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the stress test",
	Long: `
Run the full stress workload against the configured database:

1. Create tables with random names and random column definitions
2. Insert rows into every table with parallel batch inserts
3. Update random rows in each table
4. Sample the tables with count queries
5. Report database statistics

Partial failures (a table that could not be created, a batch that
could not be inserted) are reported and skipped; only a failed initial
connection aborts the run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		printHeader(cfg)

		runner := stress.NewRunner(cfg)
		report, err := runner.Run(ctx)
		if err != nil {
			if report != nil {
				// Interrupted mid-run; show what completed.
				printSummary(report)
			}
			return err
		}

		printSummary(report)
		return nil
	},
}

func printHeader(cfg *config.Config) {
	blue := color.New(color.FgBlue)
	green := color.New(color.FgGreen).SprintFunc()

	blue.Println(strings.Repeat("=", 40))
	blue.Println("  stressdb - database stress test")
	blue.Println(strings.Repeat("=", 40))
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("  Database: %s\n", green(cfg.Database.Name))
	fmt.Printf("  Target: %s\n", green(cfg.Target()))
	fmt.Printf("  Tables: %s\n", green(cfg.Tables))
	fmt.Printf("  Rows per table: %s\n", green(cfg.Rows))
	fmt.Printf("  Columns per table: %s\n", green(cfg.Cols))
	fmt.Printf("  Batch size: %s\n", green(cfg.BatchSize))
	fmt.Printf("  Threads: %s\n", green(cfg.Threads))
	fmt.Println()
}

func printSummary(report *stress.Report) {
	blue := color.New(color.FgBlue)
	green := color.New(color.FgGreen).SprintFunc()

	color.Yellow("Database Statistics:")
	fmt.Printf("  Total tables created: %s\n", green(report.Stats.Tables))
	fmt.Printf("  Total rows inserted: %s\n", green(report.Stats.LiveRows))
	fmt.Printf("  Database size: %s\n", green(report.Stats.Size))
	fmt.Printf("  Duration: %s seconds\n", green(int(report.Duration.Seconds())))
	fmt.Println()

	blue.Println(strings.Repeat("=", 40))
	if report.TablesCreated == report.TablesRequested {
		color.Green("Stress test completed successfully!")
	} else {
		color.Yellow("Stress test completed with partial results (%d/%d tables)",
			report.TablesCreated, report.TablesRequested)
	}
	blue.Println(strings.Repeat("=", 40))
	fmt.Println()
	fmt.Println("To clean up the test data, run:")
	color.Yellow("  stressdb cleanup")
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("tables", 0, "Number of tables to create")
	runCmd.Flags().Int("rows", 0, "Number of rows per table")
	runCmd.Flags().Int("cols", 0, "Number of columns per table")
	runCmd.Flags().Int("batch-size", 0, "Batch size for inserts")
	runCmd.Flags().Int("threads", 0, "Number of parallel insert workers")
	runCmd.Flags().Duration("timeout", 0, "Deadline per unit of work (0 disables)")

	viper.BindPFlag("tables", runCmd.Flags().Lookup("tables"))
	viper.BindPFlag("rows", runCmd.Flags().Lookup("rows"))
	viper.BindPFlag("cols", runCmd.Flags().Lookup("cols"))
	viper.BindPFlag("batch_size", runCmd.Flags().Lookup("batch-size"))
	viper.BindPFlag("threads", runCmd.Flags().Lookup("threads"))
	viper.BindPFlag("timeout", runCmd.Flags().Lookup("timeout"))
}
