package cmd

import (
	"fmt"
	"os"

	"github.com/Lumos-Labs-HQ/stressdb/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const configFileName = "stressdb.yaml"

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example stressdb.yaml config file",
	Long: `
Write a stressdb.yaml file in the current directory, pre-filled with
the built-in defaults, ready to edit. Values in the file are still
overridden by environment variables and command-line flags.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configFileName); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configFileName)
		}

		data, err := yaml.Marshal(config.Default())
		if err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}

		if err := os.WriteFile(configFileName, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", configFileName, err)
		}

		color.Green("✓ Created %s", configFileName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")
}
