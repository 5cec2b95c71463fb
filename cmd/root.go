package cmd

import (
	"github.com/Lumos-Labs-HQ/stressdb/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	Version = "1.3.2"
)

var rootCmd = &cobra.Command{
	Use:   "stressdb",
	Short: "Synthetic load generator for relational databases",
	Long: `
stressdb generates synthetic load against a relational database to
validate throughput, connection handling, and basic correctness under
concurrent write/update/read traffic.

It creates tables with random names and random column types, fills
them with parallel batch inserts through a shared connection pool,
then updates random rows and samples the result with count queries.

Database Support:
- PostgreSQL (directly or behind a proxy/load balancer)
- MySQL
- SQLite (embedded, useful for local smoke tests)`,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Setup(viper.GetBool("debug"))
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Version = Version

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./stressdb.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().String("provider", "", "Database provider (postgresql, mysql, sqlite)")
	rootCmd.PersistentFlags().String("host", "", "Database host")
	rootCmd.PersistentFlags().Int("port", 0, "Database port")
	rootCmd.PersistentFlags().String("database", "", "Database name")
	rootCmd.PersistentFlags().String("user", "", "Database user")
	rootCmd.PersistentFlags().String("password", "", "Database password")
	rootCmd.PersistentFlags().String("db-path", "", "Database file path (sqlite only)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("database.provider", rootCmd.PersistentFlags().Lookup("provider"))
	viper.BindPFlag("database.host", rootCmd.PersistentFlags().Lookup("host"))
	viper.BindPFlag("database.port", rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("database.name", rootCmd.PersistentFlags().Lookup("database"))
	viper.BindPFlag("database.user", rootCmd.PersistentFlags().Lookup("user"))
	viper.BindPFlag("database.password", rootCmd.PersistentFlags().Lookup("password"))
	viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db-path"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env")
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("stressdb")
	}

	viper.AutomaticEnv()

	// Environment names kept compatible with the ops scripts that
	// predate this tool.
	viper.BindEnv("tables", "NUM_TABLES")
	viper.BindEnv("rows", "ROWS_PER_TABLE")
	viper.BindEnv("cols", "COLS_PER_TABLE")
	viper.BindEnv("batch_size", "BATCH_SIZE")
	viper.BindEnv("threads", "NUM_THREADS")
	viper.BindEnv("database.host", "DB_HOST_IP")
	viper.BindEnv("database.port", "HAPROXY_WRITE_PORT")
	viper.BindEnv("database.name", "DEFAULT_DATABASE")
	viper.BindEnv("database.user", "DB_USER")
	viper.BindEnv("database.password", "POSTGRES_PASSWORD")

	viper.ReadInConfig()
}
