package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"vendor-registry-api/internal/store"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	Port     string
	BasePath string

	// DBType selects the store backend: sqlite, postgres or mongo.
	DBType     string
	SQLitePath string

	DBDSN         string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBSSLRootCert string

	MongoURL string
	MongoDB  string

	EnableMetrics bool
	EnableReset   bool
	EnableImport  bool
	ImportMapping string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTExpiry   time.Duration

	LogLevel    string
	LogFormat   string
	Environment string
}

// Load reads configuration from the environment, after applying a .env file
// from the working directory if one exists. Variables already set in the
// environment win over .env entries.
func Load() *Config {
	_ = godotenv.Load()

	config := &Config{
		Port:     getEnv("PORT", "8080"),
		BasePath: strings.TrimRight(os.Getenv("BASE_PATH"), "/"),

		DBType:     strings.ToLower(getEnv("DB_TYPE", "sqlite")),
		SQLitePath: getEnv("SQLITE_PATH", "instance/vendordb.sqlite"),

		DBDSN:         os.Getenv("DB_DSN"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        getEnv("DB_NAME", "vendordb"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
		DBSSLRootCert: os.Getenv("DB_SSLROOTCERT"),

		MongoURL: os.Getenv("MONGO_URL"),
		MongoDB:  getEnv("MONGO_DB", "vendordb"),

		EnableMetrics: os.Getenv("ENABLE_METRICS") == "true",
		EnableReset:   os.Getenv("ENABLE_RESET") == "true",
		EnableImport:  os.Getenv("ENABLE_IMPORT") == "true",
		ImportMapping: os.Getenv("IMPORT_MAPPING"),

		JWTSecret:   getEnv("JWT_SECRET", defaultJWTSecret),
		JWTIssuer:   getEnv("JWT_ISS", "vendor-registry-api"),
		JWTAudience: getEnv("JWT_AUD", "vendor-registry-api"),
		JWTExpiry:   time.Hour,

		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if expiryStr := os.Getenv("JWT_EXPIRY"); expiryStr != "" {
		if expiry, err := time.ParseDuration(expiryStr); err == nil {
			config.JWTExpiry = expiry
		}
	}

	return config
}

// Validate checks that the selected backend is fully configured and, when
// an operator endpoint is enabled, that operator tokens can be verified safely.
func (c *Config) Validate() error {
	switch c.DBType {
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite backend")
		}
	case "postgres":
		if c.DBDSN == "" {
			if c.DBHost == "" || c.DBName == "" || c.DBUser == "" {
				return errors.New("DB_DSN or DB_HOST, DB_NAME and DB_USER are required for the postgres backend")
			}
		}
	case "mongo":
		if c.MongoURL == "" {
			return errors.New("MONGO_URL is required for the mongo backend")
		}
	default:
		return fmt.Errorf("DB_TYPE must be sqlite, postgres or mongo, got %q", c.DBType)
	}

	if c.AdminEnabled() {
		if err := c.validateJWT(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateJWT() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required when ENABLE_RESET or ENABLE_IMPORT is true")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	if c.Environment == "production" && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be changed in production")
	}
	if c.JWTIssuer == "" || c.JWTAudience == "" {
		return errors.New("JWT_ISS and JWT_AUD are required")
	}
	if c.JWTExpiry < time.Minute || c.JWTExpiry > 24*time.Hour {
		return errors.New("JWT_EXPIRY must be between 1m and 24h")
	}
	return nil
}

// AdminEnabled reports whether any operator-only endpoint is mounted.
func (c *Config) AdminEnabled() bool {
	return c.EnableReset || c.EnableImport
}

// LoadAndValidate loads the configuration and validates it.
func LoadAndValidate() (*Config, error) {
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PostgresDSN returns DB_DSN verbatim or builds a URL from the discrete
// DB_* settings, including the TLS mode and root certificate.
func (c *Config) PostgresDSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   c.DBHost + ":" + c.DBPort,
		Path:   "/" + c.DBName,
	}
	if c.DBPassword != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	} else if c.DBUser != "" {
		u.User = url.User(c.DBUser)
	}
	q := url.Values{}
	q.Set("sslmode", c.DBSSLMode)
	if c.DBSSLRootCert != "" {
		q.Set("sslrootcert", c.DBSSLRootCert)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// StoreOptions selects the backend named by DB_TYPE.
func (c *Config) StoreOptions() store.Options {
	opts := store.Options{
		Type:          c.DBType,
		SQLitePath:    c.SQLitePath,
		MongoURL:      c.MongoURL,
		MongoDatabase: c.MongoDB,
	}
	if c.DBType == store.Postgres {
		opts.DSN = c.PostgresDSN()
	}
	return opts
}

// NewLogger builds the process logger from LOG_FORMAT and LOG_LEVEL.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
