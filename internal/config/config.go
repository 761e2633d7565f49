// Package config loads modelrun settings. Values are layered: defaults in
// code, then the YAML config file, then MODELRUN_* environment variables.
// Command-line flags override all three.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/itsmostafa/modelrun/internal/model"
	"github.com/itsmostafa/modelrun/internal/script"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "MODELRUN"

// DefaultDir holds the data and scripts directories and the config file.
const DefaultDir = "~/Modeling"

// Config is the complete application configuration. Env tags carry no
// defaults so that unset variables leave file values in place.
type Config struct {
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Script  ScriptConfig  `yaml:"script" envconfig:"SCRIPT"`
	Model   ModelConfig   `yaml:"model" envconfig:"MODEL"`
}

// PathsConfig locates input files.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	ScriptsDir string `yaml:"scripts_dir" envconfig:"SCRIPTS_DIR"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
}

// ScriptConfig configures the script engines.
type ScriptConfig struct {
	Engine    string        `yaml:"engine" envconfig:"ENGINE"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	MaxAllocs int64         `yaml:"max_allocs" envconfig:"MAX_ALLOCS"`
}

// ModelConfig configures model execution.
type ModelConfig struct {
	OnError string `yaml:"on_error" envconfig:"ON_ERROR"`
}

// Default returns the built-in configuration.
func Default() *Config {
	sc := script.DefaultConfig()
	return &Config{
		Paths: PathsConfig{
			DataDir:    filepath.Join(DefaultDir, "data"),
			ScriptsDir: filepath.Join(DefaultDir, "scripts"),
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		Script: ScriptConfig{
			Engine:    sc.Engine,
			Timeout:   sc.Timeout,
			MaxAllocs: sc.MaxAllocs,
		},
		Model: ModelConfig{
			OnError: string(model.FailFast),
		},
	}
}

// DefaultPath returns the config file used when none is given.
func DefaultPath() string {
	return filepath.Join(DefaultDir, "config.yaml")
}

// Load builds the configuration. An empty path reads the default config
// file when it exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	path = ExpandHome(path)

	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.Paths.DataDir = ExpandHome(cfg.Paths.DataDir)
	cfg.Paths.ScriptsDir = ExpandHome(cfg.Paths.ScriptsDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile overlays the YAML file at path onto c.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks enumerated settings and normalizes their case.
func (c *Config) Validate() error {
	engine, err := script.ValidateEngine(strings.ToLower(c.Script.Engine))
	if err != nil {
		return err
	}
	c.Script.Engine = engine

	policy, err := model.ValidatePolicy(strings.ToLower(c.Model.OnError))
	if err != nil {
		return err
	}
	c.Model.OnError = string(policy)

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", c.Logging.Level)
	}

	c.Logging.Format = strings.ToLower(c.Logging.Format)
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (must be text or json)", c.Logging.Format)
	}

	if c.Script.Timeout < 0 {
		return fmt.Errorf("script timeout must not be negative")
	}
	return nil
}

// ScriptEngineConfig returns the engine settings.
func (c *Config) ScriptEngineConfig() script.Config {
	return script.Config{
		Engine:    c.Script.Engine,
		Timeout:   c.Script.Timeout,
		MaxAllocs: c.Script.MaxAllocs,
	}
}

// Policy returns the model failure policy.
func (c *Config) Policy() model.Policy {
	return model.Policy(c.Model.OnError)
}

// ResolveData returns arg when it names an existing file, otherwise arg
// joined to the data directory.
func (c *Config) ResolveData(arg string) string {
	return resolve(c.Paths.DataDir, arg)
}

// ResolveScript is ResolveData for the scripts directory.
func (c *Config) ResolveScript(arg string) string {
	return resolve(c.Paths.ScriptsDir, arg)
}

func resolve(dir, arg string) string {
	arg = ExpandHome(arg)
	if _, err := os.Stat(arg); err == nil || filepath.IsAbs(arg) {
		return arg
	}
	return filepath.Join(dir, arg)
}

// ListFiles returns the sorted names of regular files in dir.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
