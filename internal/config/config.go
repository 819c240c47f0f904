package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

// Config holds runtime configuration for the ledger server and ledgerctl.
type Config struct {
	AppEnv          string        `envconfig:"APP_ENV" default:"development"`
	AppHost         string        `envconfig:"APP_HOST" default:"localhost"`
	AppPort         int           `envconfig:"APP_PORT" default:"5000"`
	LogLevel        string        `envconfig:"APP_LOG_LEVEL" default:"info"`
	ShutdownTimeout time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"10s"`

	InstanceDir  string `envconfig:"APP_INSTANCE_DIR" default:"instance"`
	DatabaseFile string `envconfig:"APP_DATABASE_FILE" default:"debts.sqlite"`
	SettingsFile string `envconfig:"APP_SETTINGS_FILE" default:"settings.json"`
	BackupDir    string `envconfig:"APP_BACKUP_DIR" default:"backups"`

	// BackupSchedule is a cron spec such as "@daily"; empty disables automatic snapshots.
	BackupSchedule string `envconfig:"APP_BACKUP_SCHEDULE"`
}

// Load reads the optional env file at path, then the environment.
// Variables already set in the environment win over the file.
func Load(path string) (*Config, error) {
	if path != "" {
		// A missing file is fine: everything has a default.
		_ = godotenv.Load(path)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.AppPort <= 0 || c.AppPort > 65535 {
		return fmt.Errorf("APP_PORT out of range: %d", c.AppPort)
	}
	if c.DatabaseFile == "" {
		return errors.New("APP_DATABASE_FILE must not be empty")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("APP_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.BackupSchedule != "" {
		if _, err := cron.ParseStandard(c.BackupSchedule); err != nil {
			return fmt.Errorf("APP_BACKUP_SCHEDULE: %w", err)
		}
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.AppHost, c.AppPort)
}

// DatabasePath is the live database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.InstanceDir, c.DatabaseFile)
}

// SettingsPath is the settings document.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.InstanceDir, c.SettingsFile)
}

// BackupPath is the snapshot directory. Relative paths sit next to the instance directory.
func (c *Config) BackupPath() string {
	if filepath.IsAbs(c.BackupDir) {
		return c.BackupDir
	}
	return filepath.Join(filepath.Dir(filepath.Clean(c.InstanceDir)), c.BackupDir)
}
