package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds everything the process needs at start
type Config struct {
	Database    Database
	Port        string
	Env         string
	LogLevel    slog.Level
	StoreDriver string
	CORSOrigins string
}

// Database holds storage connection parameters
type Database struct {
	URL      string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// fileConfig mirrors the optional YAML settings file. Every key is optional.
type fileConfig struct {
	Database struct {
		URL      string `yaml:"url"`
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		Name     string `yaml:"name"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"database"`
	Port        string `yaml:"port"`
	Env         string `yaml:"env"`
	LogLevel    string `yaml:"log_level"`
	StoreDriver string `yaml:"store_driver"`
	CORSOrigins string `yaml:"cors_allow_origins"`
}

// Load reads configuration from .env, an optional CONFIG_FILE and the environment.
// Environment variables win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using system environment")
	}

	var fc fileConfig
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", or(fc.Database.Port, "5432")))
	if err != nil {
		return nil, fmt.Errorf("config: invalid DB_PORT: %w", err)
	}

	env := getEnv("APP_ENV", or(fc.Env, "dev"))
	switch env {
	case "dev", "prod":
	default:
		return nil, fmt.Errorf("config: invalid APP_ENV %q (allowed: dev, prod)", env)
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", or(fc.LogLevel, "info")))
	if err != nil {
		return nil, err
	}

	driver := getEnv("STORE_DRIVER", or(fc.StoreDriver, DriverPostgres))
	switch driver {
	case DriverPostgres, DriverMemory:
	default:
		return nil, fmt.Errorf("config: invalid STORE_DRIVER %q (allowed: postgres, memory)", driver)
	}

	return &Config{
		Database: Database{
			URL:      getEnv("DATABASE_URL", fc.Database.URL),
			Host:     getEnv("DB_HOST", or(fc.Database.Host, "localhost")),
			Port:     dbPort,
			Name:     getEnv("DB_NAME", or(fc.Database.Name, "medclimate")),
			User:     getEnv("DB_USER", fc.Database.User),
			Password: getEnv("DB_PASSWORD", fc.Database.Password),
			SSLMode:  getEnv("DB_SSLMODE", or(fc.Database.SSLMode, "disable")),
		},
		Port:        getEnv("PORT", or(fc.Port, "8000")),
		Env:         env,
		LogLevel:    level,
		StoreDriver: driver,
		CORSOrigins: getEnv("CORS_ALLOW_ORIGINS", or(fc.CORSOrigins, "*")),
	}, nil
}

// DSN returns a connection string accepted by pgx.ParseConfig.
// DATABASE_URL takes precedence over the discrete fields.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	parts := []string{
		"host=" + quoteValue(d.Host),
		"port=" + strconv.Itoa(d.Port),
		"dbname=" + quoteValue(d.Name),
		"sslmode=" + quoteValue(d.SSLMode),
	}
	if d.User != "" {
		parts = append(parts, "user="+quoteValue(d.User))
	}
	if d.Password != "" {
		parts = append(parts, "password="+quoteValue(d.Password))
	}
	return strings.Join(parts, " ")
}

// Redacted returns the DSN with the password masked, for logging
func (d Database) Redacted() string {
	if d.URL != "" {
		u, err := url.Parse(d.URL)
		if err != nil {
			return "<unparseable DATABASE_URL>"
		}
		return u.Redacted()
	}
	masked := d
	if masked.Password != "" {
		masked.Password = "xxxxx"
	}
	return masked.DSN()
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("config: invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

// quoteValue quotes a key/value DSN value when it is empty or holds spaces, quotes or backslashes
func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
