// Package config loads the rankedlist configuration file: the trial
// parameters plus the settings of the hosts that run trials.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"rankedlist/internal/model"
)

const (
	BackendSQLite = "sqlite"
	BackendJSONL  = "jsonl"
	BackendNone   = "none"

	EnvAddr        = "RANKEDLIST_ADDR"
	EnvResultsPath = "RANKEDLIST_RESULTS"
	EnvLogLevel    = "RANKEDLIST_LOG_LEVEL"
)

type Config struct {
	Trial   model.TrialConfig `yaml:"trial" json:"trial"`
	Web     WebConfig         `yaml:"web" json:"web"`
	Results ResultsConfig     `yaml:"results" json:"results"`
	Logging LoggingConfig     `yaml:"logging" json:"logging"`
}

type WebConfig struct {
	Addr string `yaml:"addr" json:"addr"`
	// SessionTTL is how long a finished trial stays readable, e.g. "30m".
	SessionTTL string `yaml:"session_ttl" json:"session_ttl"`
}

type ResultsConfig struct {
	Backend string `yaml:"backend" json:"backend"`
	Path    string `yaml:"path" json:"path"`
}

// LoggingConfig mirrors lumberjack's rotation knobs.
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"`
	File       string `yaml:"file" json:"file"`
	MaxSizeMB  int    `yaml:"max_size" json:"max_size"`
	MaxAgeDays int    `yaml:"max_age" json:"max_age"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

func Default() Config {
	return Config{
		Trial: model.DefaultTrialConfig(),
		Web: WebConfig{
			Addr:       "127.0.0.1:3334",
			SessionTTL: "30m",
		},
		Results: ResultsConfig{
			Backend: BackendSQLite,
			Path:    "rankedlist.db",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxAgeDays: 28,
			MaxBackups: 3,
		},
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path yields the defaults. Relative result and log paths resolve
// against the config file's directory.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := decode(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
		dir := filepath.Dir(path)
		cfg.Results.Path = resolve(dir, cfg.Results.Path)
		cfg.Logging.File = resolve(dir, cfg.Logging.File)
	}
	cfg.applyEnv()
	return cfg, nil
}

// Parse decodes b over the defaults without touching the environment.
func Parse(b []byte) (Config, error) {
	cfg := Default()
	if err := decode(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func decode(b []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAddr)); v != "" {
		c.Web.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvResultsPath)); v != "" {
		c.Results.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Logging.Level = v
	}
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	if err := c.Trial.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("trial: %w", err))
	}
	switch c.Results.Backend {
	case BackendSQLite, BackendJSONL:
		if strings.TrimSpace(c.Results.Path) == "" {
			errs = append(errs, fmt.Errorf("results: %s backend needs a path", c.Results.Backend))
		}
	case BackendNone:
	default:
		errs = append(errs, fmt.Errorf("results: unknown backend %q (want sqlite|jsonl|none)", c.Results.Backend))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging: unknown level %q", c.Logging.Level))
	}
	if c.Web.SessionTTL != "" {
		if _, err := c.SessionTTL(); err != nil {
			errs = append(errs, fmt.Errorf("web: session_ttl: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Marshal renders the config back to YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// SessionTTL parses web.session_ttl; empty means keep sessions forever.
func (c Config) SessionTTL() (time.Duration, error) {
	if strings.TrimSpace(c.Web.SessionTTL) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Web.SessionTTL)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", d)
	}
	return d, nil
}
