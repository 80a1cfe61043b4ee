package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete configuration for the disruption engine service.
type Config struct {
	Environment string           `mapstructure:"environment"`
	Debug       bool             `mapstructure:"debug"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Narrative   NarrativeConfig  `mapstructure:"narrative"`
	Simulation  SimulationConfig `mapstructure:"simulation"`
	Optimizer   OptimizerConfig  `mapstructure:"optimizer"`
	Logging     LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	HTTPPort     int           `mapstructure:"http_port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig contains PostgreSQL configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// RedisConfig contains cache configuration.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	PoolSize int           `mapstructure:"pool_size"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// NarrativeConfig configures the external text-generation service used to
// enrich scenario descriptions. The engine is fully functional without it.
type NarrativeConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SimulationConfig configures the Monte Carlo impact simulator.
type SimulationConfig struct {
	DefaultIterations int `mapstructure:"default_iterations"`
	MaxIterations     int `mapstructure:"max_iterations"`
	Workers           int `mapstructure:"workers"`
}

// OptimizerConfig configures the strategy optimizer.
type OptimizerConfig struct {
	TopStrategies int `mapstructure:"top_strategies"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level         string `mapstructure:"level"`
	Format        string `mapstructure:"format"` // json, text
	IncludeSource bool   `mapstructure:"include_source"`
}

// Load loads configuration from environment variables and config files.
func Load() (Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/disruption-engine")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("DISRUPTION_ENGINE")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate checks configuration invariants that would otherwise surface as
// runtime failures deep in the pipeline.
func (c Config) Validate() error {
	if c.Simulation.DefaultIterations < 1 {
		return fmt.Errorf("simulation.default_iterations must be >= 1")
	}
	if c.Simulation.MaxIterations < c.Simulation.DefaultIterations {
		return fmt.Errorf("simulation.max_iterations must be >= simulation.default_iterations")
	}
	if c.Simulation.Workers < 1 {
		return fmt.Errorf("simulation.workers must be >= 1")
	}
	if c.Optimizer.TopStrategies < 1 {
		return fmt.Errorf("optimizer.top_strategies must be >= 1")
	}
	if c.Narrative.Enabled && c.Narrative.BaseURL == "" {
		return fmt.Errorf("narrative.base_url is required when narrative enrichment is enabled")
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	// General
	viper.SetDefault("environment", "development")
	viper.SetDefault("debug", false)

	// Server
	viper.SetDefault("server.http_port", 8086)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "60s")
	viper.SetDefault("server.idle_timeout", "120s")

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "disruption_engine")
	viper.SetDefault("database.username", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")
	viper.SetDefault("database.migrations_path", "file://migrations")

	// Redis
	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.ttl", "15m")

	// Narrative enrichment
	viper.SetDefault("narrative.enabled", false)
	viper.SetDefault("narrative.base_url", "")
	viper.SetDefault("narrative.api_key", "")
	viper.SetDefault("narrative.model", "gpt-4o-mini")
	viper.SetDefault("narrative.timeout", "20s")

	// Simulation
	viper.SetDefault("simulation.default_iterations", 1000)
	viper.SetDefault("simulation.max_iterations", 100000)
	viper.SetDefault("simulation.workers", 4)

	// Optimizer
	viper.SetDefault("optimizer.top_strategies", 3)

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.include_source", false)
}
