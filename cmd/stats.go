package cmd

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/stressdb/internal/config"
	"github.com/Lumos-Labs-HQ/stressdb/internal/database"
	"github.com/Lumos-Labs-HQ/stressdb/internal/schema"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show stress table statistics",
	Long: `
Report how many stress tables exist, their estimated live row count,
and the database size, without generating any load.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		ctx := context.Background()

		adapter := database.NewAdapter(cfg.Database.Provider)
		if err := adapter.Connect(ctx, cfg.DSN(), cfg.PoolSize()); err != nil {
			return fmt.Errorf("could not connect to database: %w", err)
		}
		defer adapter.Close()
		if err := adapter.Ping(ctx); err != nil {
			return fmt.Errorf("could not connect to database: %w", err)
		}

		stats, err := adapter.Stats(ctx, schema.TablePrefix)
		if err != nil {
			return fmt.Errorf("failed to collect statistics: %w", err)
		}

		green := color.New(color.FgGreen).SprintFunc()
		color.Yellow("Database Statistics:")
		fmt.Printf("  Stress tables: %s\n", green(stats.Tables))
		fmt.Printf("  Live rows: %s\n", green(stats.LiveRows))
		fmt.Printf("  Database size: %s\n", green(stats.Size))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
