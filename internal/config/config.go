package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	devSessionSecret = "budget-development-session-secret"
)

type Config struct {
	// HTTP Server
	Port            string
	ShutdownTimeout time.Duration
	TrustedProxies  []string

	// Runtime
	AppEnv   string
	LogLevel string

	// Database
	DBDriver         string
	SQLiteDBPath     string
	SQLiteTestDBPath string
	PostgresURL      string
	DBName           string
	DBTestName       string

	// AMQP, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets ledger, disabled when GoogleSpreadsheetID is empty
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Web
	SessionSecret      string
	RateLimitPerMinute int
	CacheSize          int
	CacheTTL           time.Duration
}

func Load() *Config {
	appEnv := getEnv("APP_ENV", getEnv("RACK_ENV", EnvDevelopment))

	return &Config{
		Port:            getEnv("PORT", "8081"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		TrustedProxies:  getEnvList("TRUSTED_PROXIES"),

		AppEnv:   strings.ToLower(appEnv),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver:         getEnv("DB_DRIVER", DriverSQLite),
		SQLiteDBPath:     getEnv("DB_PATH", "./data/budget.db"),
		SQLiteTestDBPath: getEnv("DB_TEST_PATH", "./data/budget_test.db"),
		PostgresURL:      getEnv("DATABASE_URL", "postgres://localhost:5432/"),
		DBName:           getEnv("DB_NAME", "budget"),
		DBTestName:       getEnv("DB_TEST_NAME", "budget_test"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "budget"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "budget_events"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Ledger"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		SessionSecret:      getEnv("SESSION_SECRET", devSessionSecret),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		CacheSize:          getEnvInt("CACHE_SIZE", 24),
		CacheTTL:           getEnvDuration("CACHE_TTL", 5*time.Minute),
	}
}

// IsTest reports whether the process runs against the test database.
func (c *Config) IsTest() bool { return c.AppEnv == EnvTest }

// DatabaseDSN returns the connection string for the configured driver,
// switching to the test database in test mode.
func (c *Config) DatabaseDSN() (string, error) {
	switch c.DBDriver {
	case DriverSQLite:
		if c.IsTest() {
			return c.SQLiteTestDBPath, nil
		}
		return c.SQLiteDBPath, nil
	case DriverPostgres:
		u, err := url.Parse(c.PostgresURL)
		if err != nil {
			return "", fmt.Errorf("parse DATABASE_URL: %w", err)
		}
		name := c.DBName
		if c.IsTest() {
			name = c.DBTestName
		}
		u.Path = "/" + name
		return u.String(), nil
	default:
		return "", fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.AppEnv {
	case EnvDevelopment, EnvTest, EnvProduction:
	default:
		errors = append(errors, fmt.Sprintf("invalid APP_ENV '%s': must be one of development, test, production", c.AppEnv))
	}

	switch c.DBDriver {
	case DriverSQLite:
		path := c.SQLiteDBPath
		if c.IsTest() {
			path = c.SQLiteTestDBPath
		}
		if path == "" {
			errors = append(errors, "SQLite database path cannot be empty")
		} else if dir := filepath.Dir(path); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case DriverPostgres:
		if u, err := url.Parse(c.PostgresURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid DATABASE_URL: %v", err))
		} else if u.Scheme != "postgres" && u.Scheme != "postgresql" {
			errors = append(errors, fmt.Sprintf("invalid DATABASE_URL scheme '%s': must be 'postgres' or 'postgresql'", u.Scheme))
		}
		if c.DBName == "" || c.DBTestName == "" {
			errors = append(errors, "database names cannot be empty")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid DB_DRIVER '%s': must be sqlite or postgres", c.DBDriver))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" && c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if len(c.SessionSecret) < 16 {
		errors = append(errors, "SESSION_SECRET must be at least 16 characters")
	} else if c.AppEnv == EnvProduction && c.SessionSecret == devSessionSecret {
		errors = append(errors, "SESSION_SECRET must be set in production")
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RateLimitPerMinute))
	}
	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
