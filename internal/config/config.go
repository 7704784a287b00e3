// Package config loads runtime settings from the environment and the
// cellar layout seed from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable, e.g. KLET_ADDR.
const EnvPrefix = "KLET"

// Config holds server settings. Command-line flags override these values.
type Config struct {
	DBPath     string        `envconfig:"DB" default:"klet.sqlite3"`
	Addr       string        `envconfig:"ADDR" default:":8080"`
	AdminUser  string        `envconfig:"ADMIN_USER" default:"Admin"`
	LogPath    string        `envconfig:"LOG"`
	LogLevel   string        `envconfig:"LOG_LEVEL" default:"info"`
	LayoutPath string        `envconfig:"LAYOUT"`
	SeedLayout bool          `envconfig:"SEED_LAYOUT" default:"true"`
	TokenTTL   time.Duration `envconfig:"TOKEN_TTL" default:"168h"`
	LabelCols  int           `envconfig:"LABEL_COLS" default:"3"`
	LabelRows  int           `envconfig:"LABEL_ROWS" default:"8"`
}

// Load reads an optional .env file from the working directory and then the
// environment. Variables already set win over the .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return l, nil
}
