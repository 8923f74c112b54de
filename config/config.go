/*
config.go - Server configuration

SOURCES (later wins):
  1. Built-in defaults
  2. .env file in the working directory, if present (godotenv)
  3. Process environment
  4. Command-line flags (-port, -db)

ENVIRONMENT:
  PORT                        HTTP port (default 8080)
  DATABASE_PATH               SQLite path (default timekeeper.db), ":memory:" allowed
  JWT_SECRET                  HS256 secret for bearer tokens (required)
  LOG_LEVEL                   logrus level (default info)
  COUNT_PENDING_CLOCK_EVENTS  count clock events awaiting approval (default false)
  REPORT_WORKERS              concurrent reconciliations per report (default 4)
  EXPORT_DIR                  month-close CSV directory; empty disables the scheduler
  REPORT_CHECK_INTERVAL       how often the scheduler checks for a closed month (default 1h)
  CORS_ORIGINS                comma-separated allowed origins
*/
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/warp/timekeeper/attendance"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

type Config struct {
	Port         int
	DatabasePath string
	JWTSecret    string
	LogLevel     logrus.Level

	CountPendingClockEvents bool
	ReportWorkers           int

	ExportDir           string
	ReportCheckInterval time.Duration

	CORSOrigins []string
}

// Load reads the configuration. args are the command-line arguments without
// the program name.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Port:                    int(getEnvAsInt("PORT", 8080)),
		DatabasePath:            getEnv("DATABASE_PATH", "timekeeper.db"),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		CountPendingClockEvents: getEnvAsBool("COUNT_PENDING_CLOCK_EVENTS", false),
		ReportWorkers:           int(getEnvAsInt("REPORT_WORKERS", attendance.DefaultReportWorkers)),
		ExportDir:               getEnv("EXPORT_DIR", ""),
		ReportCheckInterval:     getEnvAsDuration("REPORT_CHECK_INTERVAL", time.Hour),
		CORSOrigins:             getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	flags := flag.NewFlagSet("server", flag.ContinueOnError)
	flags.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flags.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "SQLite database path")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	if cfg.ReportWorkers <= 0 {
		cfg.ReportWorkers = attendance.DefaultReportWorkers
	}
	if cfg.ReportCheckInterval <= 0 {
		return nil, fmt.Errorf("REPORT_CHECK_INTERVAL must be positive, got %s", cfg.ReportCheckInterval)
	}
	return cfg, nil
}

// NewLogger builds the process logger at the configured level.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.LogLevel)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) int64 {
	valStr := getEnv(name, "")
	if val, err := strconv.Atoi(valStr); err == nil {
		return int64(val)
	}

	return defaultVal
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valStr := getEnv(name, "")
	if val, err := time.ParseDuration(valStr); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsList(name string, defaultVal []string) []string {
	valStr := getEnv(name, "")
	if valStr == "" {
		return defaultVal
	}

	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
