package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DatabaseConfig holds postgres connection settings
type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// DSN returns the postgres connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// SolanaConfig holds RPC node settings shared by all services
type SolanaConfig struct {
	RPCURL              string        `mapstructure:"rpc_url"`
	WSURL               string        `mapstructure:"ws_url"`
	ProgramID           string        `mapstructure:"program_id"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	MaxRetries          int           `mapstructure:"max_retries"`
	RetryDelay          time.Duration `mapstructure:"retry_delay"`
	RateLimitPerSecond  float64       `mapstructure:"rate_limit_per_second"`
	HealthCheckInterval time.Duration `mapstructure:"health_check_interval"`
}

// IndexerConfig is the configuration of the ingestion service
type IndexerConfig struct {
	Debug     bool           `mapstructure:"debug"`
	SentryDSN string         `mapstructure:"sentry_dsn"`
	Database  DatabaseConfig `mapstructure:"database"`
	Solana    SolanaConfig   `mapstructure:"solana"`

	PollInterval       time.Duration `mapstructure:"poll_interval"`
	PollWindow         int           `mapstructure:"poll_window"`
	BackfillLimit      int           `mapstructure:"backfill_limit"`
	BackfillBatchSize  int           `mapstructure:"backfill_batch_size"`
	BackfillBatchDelay time.Duration `mapstructure:"backfill_batch_delay"`
	MaxConcurrent      int           `mapstructure:"max_concurrent"`

	CacheCapacity        int           `mapstructure:"cache_capacity"`
	CacheRetention       time.Duration `mapstructure:"cache_retention"`
	CacheCleanupInterval time.Duration `mapstructure:"cache_cleanup_interval"`

	OwnershipCheckRetries int           `mapstructure:"ownership_check_retries"`
	OwnershipCheckDelay   time.Duration `mapstructure:"ownership_check_delay"`
}

// SweeperConfig is the configuration of the reconciliation sweeper
type SweeperConfig struct {
	Debug     bool           `mapstructure:"debug"`
	SentryDSN string         `mapstructure:"sentry_dsn"`
	Database  DatabaseConfig `mapstructure:"database"`
	Solana    SolanaConfig   `mapstructure:"solana"`

	Interval    time.Duration `mapstructure:"interval"`
	StaleAfter  time.Duration `mapstructure:"stale_after"`
	BatchSize   int           `mapstructure:"batch_size"`
	MaxPerRun   int           `mapstructure:"max_per_run"`
	Concurrency int           `mapstructure:"concurrency"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// APIConfig is the configuration of the read-only HTTP API
type APIConfig struct {
	Debug     bool           `mapstructure:"debug"`
	SentryDSN string         `mapstructure:"sentry_dsn"`
	Database  DatabaseConfig `mapstructure:"database"`
	Solana    SolanaConfig   `mapstructure:"solana"`
	Server    ServerConfig   `mapstructure:"server"`
}

// configureViper builds a viper instance for a service. Values resolve from
// environment variables prefixed with the uppercased service name, then from
// the optional yaml config file. envPath points to an optional dotenv file.
func configureViper(service, configFile, envPath string) (*viper.Viper, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envPath, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(strings.ToUpper(service))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	return v, nil
}

func setCommonDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("sentry_dsn", "")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "ascii_indexer")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)

	// registered with an empty default so the env binding is visible to Unmarshal
	v.SetDefault("solana.program_id", "")
	v.SetDefault("solana.rpc_url", "https://api.devnet.solana.com")
	v.SetDefault("solana.ws_url", "wss://api.devnet.solana.com")
	v.SetDefault("solana.request_timeout", 30*time.Second)
	v.SetDefault("solana.max_retries", 5)
	v.SetDefault("solana.retry_delay", 2*time.Second)
	v.SetDefault("solana.rate_limit_per_second", 10.0)
	v.SetDefault("solana.health_check_interval", time.Minute)
}

// LoadIndexerConfig loads the ingestion service configuration
func LoadIndexerConfig(configFile, envPath string) (*IndexerConfig, error) {
	v, err := configureViper("indexer", configFile, envPath)
	if err != nil {
		return nil, err
	}

	setCommonDefaults(v)
	v.SetDefault("poll_interval", 30*time.Second)
	v.SetDefault("poll_window", 5)
	v.SetDefault("backfill_limit", 20)
	v.SetDefault("backfill_batch_size", 5)
	v.SetDefault("backfill_batch_delay", 500*time.Millisecond)
	v.SetDefault("max_concurrent", 3)
	v.SetDefault("cache_capacity", 100_000)
	v.SetDefault("cache_retention", 24*time.Hour)
	v.SetDefault("cache_cleanup_interval", time.Hour)
	v.SetDefault("ownership_check_retries", 3)
	v.SetDefault("ownership_check_delay", 2*time.Second)

	var cfg IndexerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal indexer config: %w", err)
	}
	if cfg.Solana.ProgramID == "" {
		return nil, fmt.Errorf("solana.program_id is required")
	}
	return &cfg, nil
}

// LoadSweeperConfig loads the reconciliation sweeper configuration
func LoadSweeperConfig(configFile, envPath string) (*SweeperConfig, error) {
	v, err := configureViper("sweeper", configFile, envPath)
	if err != nil {
		return nil, err
	}

	setCommonDefaults(v)
	v.SetDefault("interval", 6*time.Hour)
	v.SetDefault("stale_after", 7*24*time.Hour)
	v.SetDefault("batch_size", 50)
	v.SetDefault("max_per_run", 500)
	v.SetDefault("concurrency", 3)

	var cfg SweeperConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sweeper config: %w", err)
	}
	if cfg.Solana.ProgramID == "" {
		return nil, fmt.Errorf("solana.program_id is required")
	}
	return &cfg, nil
}

// LoadAPIConfig loads the HTTP API configuration
func LoadAPIConfig(configFile, envPath string) (*APIConfig, error) {
	v, err := configureViper("api", configFile, envPath)
	if err != nil {
		return nil, err
	}

	setCommonDefaults(v)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})

	var cfg APIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal api config: %w", err)
	}
	return &cfg, nil
}
