// Package config resolves grind's settings from defaults, an optional YAML
// file, a .env file and GRIND_* environment variables, in increasing order
// of precedence. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/108city/habit-tracker/internal/calendar"
	"github.com/108city/habit-tracker/internal/constants"
)

// KeyringDatabase selects the connection string stored in the OS keyring.
const KeyringDatabase = "keyring"

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type CelebrationConfig struct {
	Seconds int `mapstructure:"seconds"`
}

type HistoryConfig struct {
	Days int `mapstructure:"days"`
}

type Config struct {
	Database    string            `mapstructure:"database"`
	Timezone    string            `mapstructure:"timezone"`
	Debug       bool              `mapstructure:"debug"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Celebration CelebrationConfig `mapstructure:"celebration"`
	History     HistoryConfig     `mapstructure:"history"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database", constants.DefaultDatabase)
	v.SetDefault("timezone", "Local")
	v.SetDefault("debug", false)
	v.SetDefault("http.addr", constants.DefaultHTTPAddr)
	v.SetDefault("celebration.seconds", constants.DefaultCelebrationSeconds)
	v.SetDefault("history.days", constants.DefaultHistoryDays)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration. An empty path means the default location;
// a missing file is not an error and yields defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if path == "" {
		path = constants.DefaultConfigFile
	}
	path = ExpandPath(path)

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	file := path
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
			file = ""
		default:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.File = file
	cfg.Database = ExpandPath(cfg.Database)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail much later.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return errors.New("config: database must not be empty")
	}
	if !calendar.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("config: invalid timezone %q", c.Timezone)
	}
	if c.Celebration.Seconds < 0 {
		return fmt.Errorf("config: celebration.seconds must be >= 0, got %d", c.Celebration.Seconds)
	}
	if c.History.Days < 1 || c.History.Days > constants.MaxHistoryDays {
		return fmt.Errorf("config: history.days must be between 1 and %d, got %d", constants.MaxHistoryDays, c.History.Days)
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return errors.New("config: http.addr must not be empty")
	}
	return nil
}

// Location returns the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	return calendar.LoadLocation(c.Timezone)
}

// CelebrationWindow returns how long the all-done banner stays up.
func (c *Config) CelebrationWindow() time.Duration {
	return time.Duration(c.Celebration.Seconds) * time.Second
}

// UsesKeyring reports whether the database comes from the OS keyring.
func (c *Config) UsesKeyring() bool {
	return c.Database == KeyringDatabase
}

// UsesPostgres reports whether the database setting is a PostgreSQL URL or DSN.
func (c *Config) UsesPostgres() bool {
	return IsPostgres(c.Database)
}

// IsPostgres reports whether database names a PostgreSQL server rather than a SQLite file.
func IsPostgres(database string) bool {
	return strings.HasPrefix(database, "postgres://") ||
		strings.HasPrefix(database, "postgresql://") ||
		strings.Contains(database, "host=")
}

// Dir returns the directory holding logs and the default database.
func (c *Config) Dir() string {
	if c.File != "" {
		return filepath.Dir(c.File)
	}
	return ExpandPath(constants.DefaultConfigDir)
}

// Settings returns the effective key/value pairs, for display.
func (c *Config) Settings() [][2]string {
	database := c.Database
	if c.UsesPostgres() {
		database = "postgresql (connection string hidden)"
	}
	return [][2]string{
		{"database", database},
		{"timezone", c.Timezone},
		{"debug", fmt.Sprintf("%t", c.Debug)},
		{"http.addr", c.HTTP.Addr},
		{"celebration.seconds", fmt.Sprintf("%d", c.Celebration.Seconds)},
		{"history.days", fmt.Sprintf("%d", c.History.Days)},
	}
}

// WriteDefault writes a config file populated with defaults. It refuses to
// overwrite an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if path == "" {
		path = constants.DefaultConfigFile
	}
	path = ExpandPath(path)

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	if force {
		return v.WriteConfigAs(path)
	}
	if err := v.SafeWriteConfigAs(path); err != nil {
		var exists viper.ConfigFileAlreadyExistsError
		if errors.As(err, &exists) {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
		return err
	}
	return nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
