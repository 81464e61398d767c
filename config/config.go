// Package config handles loading and validation of application configuration
// from environment variables and an optional config file.
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/SaveNTravel/saventravel-backend/logger"
	"github.com/spf13/viper"
)

// Environment represents the application's running environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"

	minJWTSecretLength = 32
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"environment"`
	Port           string      `mapstructure:"port"`
	AllowedOrigins []string    `mapstructure:"allowed_origins"`
	Version        string      `mapstructure:"version"`
	JwtSecretKey   string      `mapstructure:"jwt_secret_key"`
}

// DatabaseConfig holds PostgreSQL connection details for the document store.
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	Name           string `mapstructure:"name"`
	SSLMode        string `mapstructure:"ssl_mode"`
	MaxConnections int    `mapstructure:"max_connections"`
}

// ConnectionString returns a key-value pgx connection string.
func (c *DatabaseConfig) ConnectionString() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslmode)
}

// URL returns a postgres:// connection URL suitable for golang-migrate.
func (c *DatabaseConfig) URL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, sslmode)
}

// RedisConfig holds Redis connection details for the event bus.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

var (
	loadedConfig *Config
	loadOnce     sync.Once
	loadErr      error
)

// LoadConfig reads configuration from config.yaml (if present) and the
// environment, validates it, and caches the result for subsequent calls.
func LoadConfig() (*Config, error) {
	loadOnce.Do(func() {
		loadedConfig, loadErr = loadConfigInternal()
	})
	return loadedConfig, loadErr
}

func loadConfigInternal() (*Config, error) {
	log := logger.GetLogger()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// AutomaticEnv only resolves keys on Get, not during Unmarshal, so every
	// key must be bound explicitly or carry a default. Secrets in particular
	// have no default and would silently vanish without these bindings.
	if err := bindEnvVars(v, [][2]string{
		{"server.environment", "SERVER_ENVIRONMENT"},
		{"server.port", "SERVER_PORT"},
		{"server.allowed_origins", "SERVER_ALLOWED_ORIGINS"},
		{"server.version", "SERVER_VERSION"},
		{"server.jwt_secret_key", "SERVER_JWT_SECRET_KEY"},
		{"database.host", "DATABASE_HOST"},
		{"database.port", "DATABASE_PORT"},
		{"database.user", "DATABASE_USER"},
		{"database.password", "DATABASE_PASSWORD"},
		{"database.name", "DATABASE_NAME"},
		{"database.ssl_mode", "DATABASE_SSL_MODE"},
		{"database.max_connections", "DATABASE_MAX_CONNECTIONS"},
		{"redis.address", "REDIS_ADDRESS"},
		{"redis.password", "REDIS_PASSWORD"},
		{"redis.db", "REDIS_DB"},
	}); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Info("No config file found, using environment variables and defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"dbHost", cfg.Database.Host,
		"redisAddress", cfg.Redis.Address,
	)
	return &cfg, nil
}

// bindEnvVars binds environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.environment", string(EnvDevelopment))
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.version", "dev")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "saventravel")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)
}

// Validate checks the configuration for values that would fail at runtime.
func (c *Config) Validate() error {
	if c.Server.Environment != EnvDevelopment && c.Server.Environment != EnvProduction {
		return fmt.Errorf("invalid environment: %q", c.Server.Environment)
	}

	if c.Server.Environment == EnvProduction {
		if len(c.Server.JwtSecretKey) < minJWTSecretLength {
			return fmt.Errorf("jwt_secret_key must be at least %d characters in production", minJWTSecretLength)
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database password is required in production")
		}
	}

	if c.Database.Host == "" || c.Database.Name == "" {
		return fmt.Errorf("database host and name are required")
	}
	return nil
}
