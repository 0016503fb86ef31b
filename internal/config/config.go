// Package config loads and validates the YAML configuration shared by the
// gateway and the domain services. Each binary loads the same schema and
// reads the sections it needs.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jobdeck/jobdeck-be/shared/logger"
	"github.com/jobdeck/jobdeck-be/shared/postgresql"
	"github.com/jobdeck/jobdeck-be/shared/rabbitmq"
	"github.com/jobdeck/jobdeck-be/shared/redis"
)

const (
	// MinPort is the minimum valid port number
	MinPort = 1
	// MaxPort is the maximum valid port number
	MaxPort = 65535
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	RPC       RPCConfig       `yaml:"rpc"`
	Service   ServiceConfig   `yaml:"service"`
	Logging   LoggingConfig   `yaml:"logging"`
	App       AppConfig       `yaml:"app"`
}

// ServerConfig holds HTTP server configuration for the gateway
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	Migrate         bool          `yaml:"migrate"`
	MigrationsPath  string        `yaml:"migrations_path"`
}

// RabbitMQConfig holds RabbitMQ connection and exchange configuration
type RabbitMQConfig struct {
	Host           string           `yaml:"host"`
	Port           int              `yaml:"port"`
	User           string           `yaml:"user"`
	Password       string           `yaml:"password"`
	VHost          string           `yaml:"vhost"`
	RPCExchange    string           `yaml:"rpc_exchange"`
	NotifyExchange string           `yaml:"notify_exchange"`
	Connection     ConnectionConfig `yaml:"connection"`
	Publish        PublishConfig    `yaml:"publish"`
}

// ConnectionConfig holds RabbitMQ connection settings
type ConnectionConfig struct {
	RetryAttempts     int           `yaml:"retry_attempts"`
	RetryInterval     time.Duration `yaml:"retry_interval"`
	Heartbeat         time.Duration `yaml:"heartbeat"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout"`
}

// PublishConfig holds RabbitMQ publish retry settings
type PublishConfig struct {
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryInterval time.Duration `yaml:"retry_interval"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	PoolSize     int           `yaml:"pool_size"`
}

// AuthConfig holds JWT verification settings
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// CacheConfig holds read-cache behavior settings
type CacheConfig struct {
	DefaultTTL     time.Duration `yaml:"default_ttl"`
	StaleThreshold time.Duration `yaml:"stale_threshold"`
	RefreshTimeout time.Duration `yaml:"refresh_timeout"`
}

// RateLimitConfig holds fixed-window rate limiter settings
type RateLimitConfig struct {
	Limit  int64         `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

// RPCConfig holds request/reply settings for the gateway side
type RPCConfig struct {
	DefaultTimeout time.Duration            `yaml:"default_timeout"`
	OpTimeouts     map[string]time.Duration `yaml:"op_timeouts"`
	Queues         QueueNamesConfig         `yaml:"queues"`
}

// QueueNamesConfig names the durable queue of each domain service
type QueueNamesConfig struct {
	Job         string `yaml:"job"`
	Application string `yaml:"application"`
	Interview   string `yaml:"interview"`
}

// ServiceConfig holds per-service consumer settings
type ServiceConfig struct {
	Queue         string `yaml:"queue"`
	Concurrency   int    `yaml:"concurrency"`
	PrefetchCount int    `yaml:"prefetch_count"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	Output       string `yaml:"output"`
	EnableSource bool   `yaml:"enable_source"`
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// Load reads and parses the configuration file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// Validate checks the sections every binary depends on
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Port < MinPort || c.Database.Port > MaxPort {
		return fmt.Errorf("invalid database port: %d (must be between %d and %d)", c.Database.Port, MinPort, MaxPort)
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.RabbitMQ.Host == "" {
		return fmt.Errorf("rabbitmq host is required")
	}
	if c.RabbitMQ.Port < MinPort || c.RabbitMQ.Port > MaxPort {
		return fmt.Errorf("invalid rabbitmq port: %d (must be between %d and %d)", c.RabbitMQ.Port, MinPort, MaxPort)
	}
	if c.RabbitMQ.RPCExchange == "" {
		return fmt.Errorf("rabbitmq rpc exchange name is required")
	}
	if c.RabbitMQ.NotifyExchange == "" {
		return fmt.Errorf("rabbitmq notify exchange name is required")
	}

	return nil
}

// ValidateGateway checks the sections only the gateway depends on
func (c *Config) ValidateGateway() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Server.Port < MinPort || c.Server.Port > MaxPort {
		return fmt.Errorf("invalid server port: %d (must be between %d and %d)", c.Server.Port, MinPort, MaxPort)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth jwt_secret is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}
	if c.RPC.Queues.Job == "" || c.RPC.Queues.Application == "" || c.RPC.Queues.Interview == "" {
		return fmt.Errorf("rpc queue names are required")
	}
	return nil
}

// ValidateService checks the sections a domain service depends on
func (c *Config) ValidateService() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Service.Queue == "" {
		return fmt.Errorf("service queue is required")
	}
	if c.Service.Concurrency <= 0 {
		return fmt.Errorf("service concurrency must be greater than 0")
	}
	return nil
}

// PostgresConfig converts the database section for the postgres client
func (c *Config) PostgresConfig() *postgresql.Config {
	return &postgresql.Config{
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		User:            c.Database.User,
		Password:        c.Database.Password,
		Database:        c.Database.Database,
		SSLMode:         c.Database.SSLMode,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
		Migrate:         c.Database.Migrate,
		MigrationsPath:  c.Database.MigrationsPath,
	}
}

// RabbitConfig converts the rabbitmq section for the broker client
func (c *Config) RabbitConfig() *rabbitmq.Config {
	return &rabbitmq.Config{
		Host:              c.RabbitMQ.Host,
		Port:              c.RabbitMQ.Port,
		User:              c.RabbitMQ.User,
		Password:          c.RabbitMQ.Password,
		VHost:             c.RabbitMQ.VHost,
		RPCExchange:       c.RabbitMQ.RPCExchange,
		NotifyExchange:    c.RabbitMQ.NotifyExchange,
		RetryAttempts:     c.RabbitMQ.Connection.RetryAttempts,
		RetryInterval:     c.RabbitMQ.Connection.RetryInterval,
		Heartbeat:         c.RabbitMQ.Connection.Heartbeat,
		ConnectionTimeout: c.RabbitMQ.Connection.ConnectionTimeout,
		PublishRetries:    c.RabbitMQ.Publish.RetryAttempts,
		PublishRetryDelay: c.RabbitMQ.Publish.RetryInterval,
	}
}

// RedisClientConfig converts the redis section for the redis client
func (c *Config) RedisClientConfig() *redis.Config {
	return &redis.Config{
		Addr:         c.Redis.Addr,
		Password:     c.Redis.Password,
		DB:           c.Redis.DB,
		DialTimeout:  c.Redis.DialTimeout,
		ReadTimeout:  c.Redis.ReadTimeout,
		WriteTimeout: c.Redis.WriteTimeout,
		PoolSize:     c.Redis.PoolSize,
	}
}

// LoggerConfig converts the logging section for the logger
func (c *Config) LoggerConfig() *logger.Config {
	return &logger.Config{
		Level:        c.Logging.Level,
		Format:       c.Logging.Format,
		Output:       c.Logging.Output,
		EnableSource: c.Logging.EnableSource,
	}
}
