/*
Package config loads process settings from the environment.

SOURCES (later wins):
  1. Defaults in the struct tags below
  2. A .env file in the working directory, if present
  3. Process environment
  4. Command-line flags (applied by each cmd/ binary)

VARIABLES:
  PORT                   HTTP port (server only)
  DB_PATH                SQLite file, ":memory:" for a throwaway store
  LOG_LEVEL              logrus level: debug, info, warn, error
  LOG_FORMAT             "text" or "json"
  RULES_FILE             JSON rule set, see factory.ParseRules
  IMPORT_YEAR            year assigned to bulk-imported lines
  CORS_ALLOWED_ORIGINS   comma-separated origins
  EXPORT_DIR             archive closed periods here (server only)
  EXPORT_FORMAT          csv or xlsx
  EXPORT_CHECK_INTERVAL  seconds between period-close checks
*/
package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Server struct {
		Port            int `env:"PORT" envDefault:"8080"`
		ReadTimeout     int `env:"READ_TIMEOUT" envDefault:"15"`
		WriteTimeout    int `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int `env:"SHUTDOWN_TIMEOUT" envDefault:"30"`
	}
	DBPath string `env:"DB_PATH" envDefault:"payroll.db"`
	Log    struct {
		Level  string `env:"LEVEL" envDefault:"info"`
		Format string `env:"FORMAT" envDefault:"text"`
	} `envPrefix:"LOG_"`
	RulesFile   string   `env:"RULES_FILE"`
	ImportYear  int      `env:"IMPORT_YEAR" envDefault:"2025"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:8080"`
	Export      struct {
		Dir           string `env:"DIR"`
		Format        string `env:"FORMAT" envDefault:"xlsx"`
		CheckInterval int    `env:"CHECK_INTERVAL" envDefault:"3600"` // seconds
	} `envPrefix:"EXPORT_"`
}

// Load reads .env (if any) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// first error keeps the log line readable
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}
	return cfg, nil
}

// ConfigureLogging applies the log level and format to the standard logrus
// logger.
func (c *Config) ConfigureLogging() error {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	if c.Log.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
