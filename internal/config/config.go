package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// Config holds the main configuration for the application.
type Config struct {
	Server          Server         `mapstructure:"server"`
	Database        Database       `mapstructure:"database"`
	Redis           Redis          `mapstructure:"redis"`
	Push            Push           `mapstructure:"push"`
	Scheduler       Scheduler      `mapstructure:"scheduler"`
	Sweeper         Sweeper        `mapstructure:"sweeper"`
	Retry           retry.Strategy `mapstructure:"retry"`
	ShutdownTimeout time.Duration  `mapstructure:"shutdown_timeout"`
}

// Server holds HTTP server-related configuration.
type Server struct {
	HTTPPort string `mapstructure:"http_port"` // HTTP port to listen on
	Timezone string `mapstructure:"timezone"`  // location used for dateTime values without an offset

	AllowedOrigins []string `mapstructure:"allowed_origins"` // CORS origins, empty allows any
}

// Database holds database master and slave configuration.
type Database struct {
	Master DatabaseNode   `mapstructure:"master"`
	Slaves []DatabaseNode `mapstructure:"slaves"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DatabaseNode holds connection parameters for a single database node.
type DatabaseNode struct {
	Host    string `mapstructure:"host"`
	Port    string `mapstructure:"port"`
	User    string `mapstructure:"user"`
	Pass    string `mapstructure:"pass"`
	Name    string `mapstructure:"name"`
	SSLMode string `mapstructure:"ssl_mode"`
}

// Redis holds Redis connection parameters. Redis is only used for the
// scheduler lease.
type Redis struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

// Push holds VAPID credentials and web push delivery options.
type Push struct {
	Subscriber      string        `mapstructure:"subscriber"` // contact email or URL sent in the VAPID claim
	VAPIDPublicKey  string        `mapstructure:"vapid_public_key"`
	VAPIDPrivateKey string        `mapstructure:"vapid_private_key"`
	TTL             int           `mapstructure:"ttl"` // seconds the push service keeps an undelivered message
	Urgency         string        `mapstructure:"urgency"`
	Timeout         time.Duration `mapstructure:"timeout"` // per-request HTTP timeout
}

// Scheduler holds delivery scheduler settings.
type Scheduler struct {
	Interval          time.Duration `mapstructure:"interval"`
	InitialDelay      time.Duration `mapstructure:"initial_delay"`
	BatchSize         int           `mapstructure:"batch_size"`
	FanoutConcurrency int           `mapstructure:"fanout_concurrency"`
	Lease             Lease         `mapstructure:"lease"`
}

// Lease configures the optional cross-process scheduler lease.
type Lease struct {
	Enabled bool          `mapstructure:"enabled"`
	Key     string        `mapstructure:"key"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// Sweeper holds retention sweeper settings.
type Sweeper struct {
	Interval     time.Duration `mapstructure:"interval"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	Retention    time.Duration `mapstructure:"retention"`
}

// DSN returns the PostgreSQL DSN string for connecting to this database node.
func (n DatabaseNode) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		n.User, n.Pass, n.Host, n.Port, n.Name, n.SSLMode,
	)
}

// setDefaults registers the values used when neither the file nor the
// environment provide a key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_port", ":3000")
	v.SetDefault("server.timezone", "UTC")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("push.ttl", 24*60*60)
	v.SetDefault("push.urgency", "normal")
	v.SetDefault("push.timeout", 10*time.Second)

	v.SetDefault("scheduler.interval", 15*time.Second)
	v.SetDefault("scheduler.initial_delay", 5*time.Second)
	v.SetDefault("scheduler.batch_size", 10)
	v.SetDefault("scheduler.fanout_concurrency", 32)
	v.SetDefault("scheduler.lease.key", "push-notifier:scheduler")
	v.SetDefault("scheduler.lease.ttl", time.Minute)

	v.SetDefault("sweeper.interval", 24*time.Hour)
	v.SetDefault("sweeper.initial_delay", time.Minute)
	v.SetDefault("sweeper.retention", 72*time.Hour)

	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.delay", 100*time.Millisecond)
	v.SetDefault("retry.backoff", 2)

	v.SetDefault("shutdown_timeout", 5*time.Second)
}

// bindEnv binds critical environment variables to Viper keys.
func bindEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"server.http_port": "HTTP_PORT",

		"database.master.host": "DB_HOST",
		"database.master.port": "DB_PORT",
		"database.master.user": "DB_USER",
		"database.master.pass": "DB_PASSWORD",
		"database.master.name": "DB_NAME",

		"redis.address":  "REDIS_ADDRESS",
		"redis.password": "REDIS_PASSWORD",
		"redis.database": "REDIS_DATABASE",

		"push.subscriber":        "VAPID_SUBJECT",
		"push.vapid_public_key":  "VAPID_PUBLIC_KEY",
		"push.vapid_private_key": "VAPID_PRIVATE_KEY",

		"scheduler.lease.enabled": "SCHEDULER_LEASE_ENABLED",
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	return nil
}

// Load reads the configuration from the given directory and the environment.
//
// A missing config file is not an error: defaults and environment variables
// are enough to start the service.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := bindEnv(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Must loads the configuration from ./config, .env and environment variables.
//
// It panics if configuration cannot be read or is invalid.
func Must() *Config {
	if err := godotenv.Load(); err != nil {
		zlog.Logger.Warn().Err(err).Msg(".env file not found, using environment variables")
	}

	cfg, err := Load("./config")
	if err != nil {
		zlog.Logger.Panic().Err(err).Msg("failed to load config")
	}

	return cfg
}

func (c *Config) validate() error {
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be positive")
	}

	if c.Scheduler.BatchSize <= 0 {
		return fmt.Errorf("scheduler.batch_size must be positive")
	}

	if c.Sweeper.Interval <= 0 || c.Sweeper.Retention <= 0 {
		return fmt.Errorf("sweeper.interval and sweeper.retention must be positive")
	}

	if c.Scheduler.InitialDelay < 0 || c.Sweeper.InitialDelay < 0 {
		return fmt.Errorf("initial_delay must not be negative")
	}

	if c.Retry.Attempts < 1 {
		return fmt.Errorf("retry.attempts must be at least 1")
	}

	if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
		return fmt.Errorf("server.timezone: %w", err)
	}

	return nil
}
