package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Marchés"`
	}

	DB struct {
		Driver   string `envconfig:"DB_DRIVER" default:"sqlite"`
		Path     string `envconfig:"DB_PATH"`
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"marches"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	}

	Server struct {
		Port           int      `envconfig:"SERVER_PORT" default:"8080"`
		AllowedOrigins []string `envconfig:"SERVER_ALLOWED_ORIGINS" default:"*"`
	}

	Sync struct {
		// Source is the workbook re-synchronised by the scheduler and by POST /sync/source.
		Source   string `envconfig:"SYNC_SOURCE"`
		Schedule string `envconfig:"SYNC_SCHEDULE"`

		// UploadDir keeps uploaded workbooks under their own name so that
		// re-uploading an unchanged file is detected.
		UploadDir string `envconfig:"SYNC_UPLOAD_DIR" default:"uploads"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"text"`
	}
}

// ConnectionString returns the DSN for the configured driver.
func (c *Config) ConnectionString() string {
	if c.DB.Driver == DriverPostgres {
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
	}

	return c.DB.Path
}

func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.DB.Path) == "" {
			return fmt.Errorf("DB_PATH is required for the %s driver", DriverSQLite)
		}
	case DriverPostgres:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DB.Driver)
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
