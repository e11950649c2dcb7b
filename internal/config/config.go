// Package config loads the persisted settings: the data API token and port,
// the delete confirmation flag and local paths.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/taigrr/joplin-cli/internal/joplin"
)

// Environment variables that override the file.
const (
	EnvToken         = "JOPLIN_TOKEN"
	EnvHost          = "JOPLIN_HOST"
	EnvPort          = "JOPLIN_PORT"
	EnvDeleteConfirm = "JOPLIN_DELETE_CONFIRM"
)

// AppConfig holds every persisted setting.
type AppConfig struct {
	File string `yaml:"-"`

	Token           string        `yaml:"token"`
	Host            string        `yaml:"host" default:"127.0.0.1"`
	Port            int           `yaml:"port" default:"41184"`
	DeleteConfirm   bool          `yaml:"deleteConfirm" default:"true"`
	RefreshInterval time.Duration `yaml:"refreshInterval" default:"10s"`
	Timeout         time.Duration `yaml:"timeout" default:"30s"`
	Editor          string        `yaml:"editor"`
	StorageDir      string        `yaml:"storageDir"`
	Log             LogConfig     `yaml:"log"`

	// saved holds the values read from the file, before the environment
	// and derived defaults were applied. Save writes it instead of c.
	saved *AppConfig
}

// LogConfig configures the zap logger.
type LogConfig struct {
	// Level is parsed by zapcore.ParseLevel.
	Level string `yaml:"level" default:"warn"`
	// File is empty for stderr.
	File string `yaml:"file"`
}

// DefaultPath is $XDG_CONFIG_HOME/joplin-cli/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(dir, "joplin-cli", "config.yaml"), nil
}

// Load reads path (a missing file is not an error), applies defaults and
// then the environment. A .env file in the working directory is loaded first.
func Load(path string) (*AppConfig, error) {
	_ = godotenv.Load()

	c := &AppConfig{File: path}
	// defaults.Set only fills zero values, so it must run before the file is
	// decoded or an explicit "deleteConfirm: false" would be overwritten.
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	saved := *c
	c.saved = &saved

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if c.StorageDir == "" {
		c.StorageDir = defaultStorageDir()
	}
	if c.Editor == "" {
		c.Editor = os.Getenv("EDITOR")
	}
	return c, nil
}

func (c *AppConfig) applyEnv() error {
	if v := os.Getenv(EnvToken); v != "" {
		c.Token = v
	}
	if v := os.Getenv(EnvHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Port = port
	}
	if v := os.Getenv(EnvDeleteConfirm); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvDeleteConfirm, v, err)
		}
		c.DeleteConfirm = b
	}
	return nil
}

// Save writes the config back to c.File. Values that came from the
// environment or were derived at load time are not written.
func (c *AppConfig) Save() error {
	if c.File == "" {
		return errors.New("config has no file path")
	}
	out := c
	if c.saved != nil {
		out = c.saved
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.File), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	// The file carries the API token.
	if err := os.WriteFile(c.File, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config %s: %w", c.File, err)
	}
	return nil
}

// Set updates one setting by its YAML key.
func (c *AppConfig) Set(key, value string) error {
	if err := c.set(key, value); err != nil {
		return err
	}
	if c.saved != nil {
		return c.saved.set(key, value)
	}
	return nil
}

func (c *AppConfig) set(key, value string) error {
	switch key {
	case "token":
		c.Token = value
	case "host":
		c.Host = value
	case "port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", value, err)
		}
		c.Port = port
	case "deleteConfirm":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid deleteConfirm %q: %w", value, err)
		}
		c.DeleteConfirm = b
	case "refreshInterval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid refreshInterval %q: %w", value, err)
		}
		c.RefreshInterval = d
	case "editor":
		c.Editor = value
	case "storageDir":
		c.StorageDir = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

// Client returns the connection settings for the data API client.
func (c *AppConfig) Client() joplin.Config {
	return joplin.Config{
		Host:    c.Host,
		Port:    c.Port,
		Token:   c.Token,
		Timeout: c.Timeout,
	}
}

func defaultStorageDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "joplin-cli")
	}
	return filepath.Join(os.TempDir(), "joplin-cli")
}
