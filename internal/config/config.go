package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/basel-ax/imagegen/internal/domain"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// DBConfig holds database configuration
type DBConfig struct {
	Host            string        `env:"DB_HOST"`
	Port            int           `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER"`
	Password        string        `env:"DB_PASSWORD"`
	Database        string        `env:"DB_NAME"`
	SSLMode         string        `env:"DB_SSL_MODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"25"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
}

// StorageConfig selects where generated images are recorded
type StorageConfig struct {
	Backend string `env:"IMAGEGEN_STORAGE" envDefault:"sqlite"`
	Path    string `env:"IMAGEGEN_STORAGE_PATH" envDefault:"imagegen.db"`
	Key     string `env:"IMAGEGEN_STORAGE_KEY" envDefault:"generated-images"`
}

// Config holds all configuration for the application
type Config struct {
	APIKey         string        `env:"IMAGEGEN_API_KEY"`
	APIURL         string        `env:"IMAGEGEN_API_URL"`
	RequestTimeout time.Duration `env:"IMAGEGEN_REQUEST_TIMEOUT" envDefault:"60s"`

	NumberOfImages int     `env:"IMAGEGEN_NUMBER_OF_IMAGES" envDefault:"1"`
	CfgScale       float64 `env:"IMAGEGEN_CFG_SCALE" envDefault:"7"`
	Height         string  `env:"IMAGEGEN_HEIGHT" envDefault:"1024"`
	Width          string  `env:"IMAGEGEN_WIDTH" envDefault:"1024"`
	Steps          float64 `env:"IMAGEGEN_STEPS" envDefault:"0.5"`
	DefaultModel   string  `env:"IMAGEGEN_DEFAULT_MODEL" envDefault:"dreamshaper"`
	BestEffort     bool    `env:"IMAGEGEN_BEST_EFFORT" envDefault:"false"`

	Storage StorageConfig
	DB      DBConfig
}

// Load loads the configuration from a .env file, if present, and the environment
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and enumerated values
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("IMAGEGEN_API_KEY is required")
	}
	if _, err := domain.ParseModelVariant(c.DefaultModel); err != nil {
		return fmt.Errorf("IMAGEGEN_DEFAULT_MODEL: %w", err)
	}

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendFile, BackendSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("IMAGEGEN_STORAGE_PATH is required")
		}
	case BackendPostgres:
		if c.DB.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.DB.User == "" {
			return fmt.Errorf("DB_USER is required")
		}
		if c.DB.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
		if c.DB.Database == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	default:
		return fmt.Errorf("unknown IMAGEGEN_STORAGE backend: %q", c.Storage.Backend)
	}
	return nil
}

// Preferences returns the generation knobs as the orchestrator consumes them
func (c *Config) Preferences() domain.Preferences {
	return domain.Preferences{
		NumberOfImages: c.NumberOfImages,
		CfgScale:       c.CfgScale,
		Height:         c.Height,
		Width:          c.Width,
		Steps:          c.Steps,
	}
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Database, c.DB.SSLMode)
}
