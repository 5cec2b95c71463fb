package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config is the workload configuration, built once at startup from
// merged sources (flags > environment > config file > defaults) and
// passed into the core components. Immutable for the run.
type Config struct {
	Tables    int           `yaml:"tables" mapstructure:"tables"`
	Rows      int           `yaml:"rows" mapstructure:"rows"`
	Cols      int           `yaml:"cols" mapstructure:"cols"`
	BatchSize int           `yaml:"batch_size" mapstructure:"batch_size"`
	Threads   int           `yaml:"threads" mapstructure:"threads"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Debug     bool          `yaml:"debug" mapstructure:"debug"`
	Database  Database      `yaml:"database" mapstructure:"database"`
}

type Database struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Name     string `yaml:"name" mapstructure:"name"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	Path     string `yaml:"path" mapstructure:"path"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the built-in configuration, used when no flags,
// environment, or config file override anything.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Tables == 0 {
		c.Tables = 10
	}
	if c.Rows == 0 {
		c.Rows = 1000
	}
	if c.Cols == 0 {
		c.Cols = 10
	}
	if c.BatchSize == 0 {
		c.BatchSize = 1000
	}
	if c.Threads == 0 {
		c.Threads = 4
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Database.Provider == "" {
		c.Database.Provider = "postgresql"
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5551
	}
	if c.Database.Name == "" {
		c.Database.Name = "postgres"
	}
	if c.Database.User == "" {
		c.Database.User = "postgres"
	}
	if c.Database.Path == "" {
		c.Database.Path = "stressdb.db"
	}
}

func (c *Config) Validate() error {
	supportedProviders := []string{"postgresql", "postgres", "mysql", "sqlite", "sqlite3"}
	supported := false
	for _, provider := range supportedProviders {
		if c.Database.Provider == provider {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("unsupported database provider: %s. Supported providers: %v", c.Database.Provider, supportedProviders)
	}

	if c.Tables < 1 {
		return fmt.Errorf("tables must be at least 1, got %d", c.Tables)
	}
	if c.Rows < 1 {
		return fmt.Errorf("rows must be at least 1, got %d", c.Rows)
	}
	if c.Cols < 1 {
		return fmt.Errorf("cols must be at least 1, got %d", c.Cols)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1, got %d", c.BatchSize)
	}
	if c.Threads < 1 {
		return fmt.Errorf("threads must be at least 1, got %d", c.Threads)
	}

	return nil
}

// DSN builds the connection string for the configured provider.
func (c *Config) DSN() string {
	switch c.Database.Provider {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true",
			c.Database.User, c.Database.Password,
			net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port)),
			c.Database.Name)
	case "sqlite", "sqlite3":
		return fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", c.Database.Path)
	default:
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.Database.User, c.Database.Password),
			Host:   net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port)),
			Path:   c.Database.Name,
		}
		return u.String()
	}
}

// PoolSize keeps a couple of connections above the worker count so
// the provisioning, update, and query phases never wait behind the
// parallel insert workers.
func (c *Config) PoolSize() int {
	return c.Threads + 2
}

// Target returns the host:port (or file path) the run reports against.
func (c *Config) Target() string {
	switch c.Database.Provider {
	case "sqlite", "sqlite3":
		return c.Database.Path
	default:
		return net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port))
	}
}
