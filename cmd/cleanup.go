package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Lumos-Labs-HQ/stressdb/internal/config"
	"github.com/Lumos-Labs-HQ/stressdb/internal/database"
	"github.com/Lumos-Labs-HQ/stressdb/internal/schema"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var cleanupForce bool

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Drop all stress test tables",
	Long: `
Drop every table created by previous stress runs (all tables whose
name starts with "` + schema.TablePrefix + `").

⚠️  WARNING: This permanently deletes the generated test data.

Use --force to skip the confirmation prompt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		if !cleanupForce && !confirm(fmt.Sprintf("Drop all %s* tables from %s?", schema.TablePrefix, cfg.Database.Name)) {
			color.Yellow("Cleanup cancelled")
			return nil
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

		color.Yellow("Dropping stress test tables...")
		dropped, err := adapter.DropTables(ctx, schema.TablePrefix)
		if err != nil {
			return fmt.Errorf("cleanup failed after dropping %d tables: %w", dropped, err)
		}

		color.Green("✓ Dropped %d tables", dropped)
		return nil
	},
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().BoolVarP(&cleanupForce, "force", "f", false, "Skip confirmation prompt")
}
