// Package config loads ppdev settings from a YAML file, a .env file and
// PPDEV_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTracePPDev/internal/logging"
	"github.com/OpenTraceLab/OpenTracePPDev/pkg/parport"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvBasePath  = "PPDEV_BASE_PATH"
	EnvDryRun    = "PPDEV_DRY_RUN"
	EnvVerify    = "PPDEV_VERIFY"
	EnvSim       = "PPDEV_SIM"
	EnvLogLevel  = "PPDEV_LOG_LEVEL"
	EnvLogFormat = "PPDEV_LOG_FORMAT"
)

// Config holds the runtime settings of the CLI.
type Config struct {
	// BasePath is the device node prefix; port n maps to BasePath+(n-1).
	BasePath string `yaml:"base_path" validate:"required"`
	// DryRun computes register values without writing them.
	DryRun bool `yaml:"dry_run"`
	// Verify re-reads every written register.
	Verify bool `yaml:"verify"`
	// Sim replaces the ppdev backend with in-memory ports.
	Sim bool      `yaml:"sim"`
	Log LogConfig `yaml:"log"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal disabled off none"`
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		BasePath: parport.DefaultBasePath,
		Verify:   true,
		Log: LogConfig{
			Level:  "warn",
			Format: logging.FormatConsole,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/ppdev/config.yaml, falling back to
// the user config directory reported by the OS.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(dir, "ppdev", "config.yaml")
}

// Load reads path over the defaults. An explicit path must exist; an empty
// path tries DefaultPath and ignores it when missing.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: load: %w", err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads environment variables from path. Missing files are
// ignored and variables already set in the process win.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ApplyEnv overrides cfg with PPDEV_* variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvBasePath); ok {
		c.BasePath = v
	}
	for _, b := range []struct {
		key string
		dst *bool
	}{
		{EnvDryRun, &c.DryRun},
		{EnvVerify, &c.Verify},
		{EnvSim, &c.Sim},
	} {
		v, ok := lookup(b.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", b.key, err)
		}
		*b.dst = parsed
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok {
		c.Log.Format = v
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	c.BasePath = strings.TrimSpace(c.BasePath)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(c.Log.Format)

	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := verrs[0]
	switch fe.StructNamespace() {
	case "Config.BasePath":
		return errors.New("config: base_path is required")
	case "Config.Log.Level":
		return fmt.Errorf("config: log.level %q: unknown level", c.Log.Level)
	case "Config.Log.Format":
		return fmt.Errorf("config: log.format %q: want console or json", c.Log.Format)
	}
	return fmt.Errorf("config: %w", err)
}
