package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Retailboard"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"text"`
	}

	DB struct {
		// Driver is either "sqlite" or "postgres".
		Driver   string `envconfig:"DB_DRIVER" default:"sqlite"`
		Path     string `envconfig:"DB_PATH" default:"retailboard.db"`
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"retailboard"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"60s"`
		CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
	}

	Session struct {
		Secret       string        `envconfig:"SESSION_SECRET" default:"change-me"`
		TTL          time.Duration `envconfig:"SESSION_TTL" default:"2h"`
		SecureCookie bool          `envconfig:"SESSION_SECURE_COOKIE" default:"false"`
	}

	Upload struct {
		MaxBytes      int64 `envconfig:"UPLOAD_MAX_BYTES" default:"33554432"`
		RatePerMinute int   `envconfig:"UPLOAD_RATE_PER_MINUTE" default:"20"`
	}

	Forecast struct {
		HorizonDays int `envconfig:"FORECAST_HORIZON_DAYS" default:"30"`
	}

	Segment struct {
		Clusters int   `envconfig:"SEGMENT_CLUSTERS" default:"4"`
		Seed     int64 `envconfig:"SEGMENT_SEED" default:"42"`
	}
}

// DataSource returns the database/sql driver name and DSN for the configured backend.
func (c *Config) DataSource() (string, string, error) {
	switch strings.ToLower(c.DB.Driver) {
	case "sqlite":
		return "sqlite", c.DB.Path, nil
	case "postgres", "pgx":
		return "pgx", fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name), nil
	}

	return "", "", fmt.Errorf("unknown database driver %q", c.DB.Driver)
}

// NewLogger builds the process logger from the Log section.
func (c *Config) NewLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}

	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
