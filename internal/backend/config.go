package backend

import (
	"fmt"
	"time"

	"budget/internal/config"
	"budget/internal/storage"
)

// Config holds configuration for backend creation
type Config struct {
	Driver string
	DSN    string

	// AMQP is optional; an empty URL disables event publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	CacheSize int
	CacheTTL  time.Duration
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	dsn, err := appConfig.DatabaseDSN()
	if err != nil {
		return Config{}, fmt.Errorf("database dsn: %w", err)
	}

	return Config{
		Driver:       appConfig.DBDriver,
		DSN:          dsn,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
		CacheSize:    appConfig.CacheSize,
		CacheTTL:     appConfig.CacheTTL,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	switch c.Driver {
	case storage.DriverSQLite, storage.DriverPostgres:
	default:
		return fmt.Errorf("invalid database driver: %q", c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("database dsn is required for %s", c.Driver)
	}
	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		return fmt.Errorf("AMQP exchange and queue are required when AMQP is enabled")
	}
	return nil
}
