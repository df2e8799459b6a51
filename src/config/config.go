// Package config loads content gate settings from a JSON or YAML file and
// CONTENTGATE_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Server ServerConfig `json:"server" yaml:"server"`
	Gate   GateConfig   `json:"gate" yaml:"gate"`
}

// ServerConfig controls how clients reach the gate.
type ServerConfig struct {
	Transport string     `json:"transport" yaml:"transport"` // "stdio" or "http"
	HTTP      HTTPConfig `json:"http" yaml:"http"`
}

// HTTPConfig holds HTTP listener settings.
type HTTPConfig struct {
	Addr        string `json:"addr" yaml:"addr"`               // e.g. ":8080"
	Path        string `json:"path" yaml:"path"`               // e.g. "/mcp"
	MetricsPath string `json:"metricsPath" yaml:"metricsPath"` // e.g. "/metrics"
}

// GateConfig controls the prompt pipeline. Nil fields take defaults.
type GateConfig struct {
	MaxScriptLength            *int     `json:"maxScriptLength,omitempty" yaml:"maxScriptLength,omitempty"`
	EnableUnicodeNormalization *bool    `json:"enableUnicodeNormalization,omitempty" yaml:"enableUnicodeNormalization,omitempty"`
	DisableBuiltInPatterns     *bool    `json:"disableBuiltInPatterns,omitempty" yaml:"disableBuiltInPatterns,omitempty"`
	CustomPatterns             []string `json:"customPatterns,omitempty" yaml:"customPatterns,omitempty"`
}

// envOverrides mirrors the settings that may come from the environment.
type envOverrides struct {
	Transport                  string `env:"TRANSPORT"`
	HTTPAddr                   string `env:"HTTP_ADDR"`
	HTTPPath                   string `env:"HTTP_PATH"`
	MetricsPath                string `env:"METRICS_PATH"`
	MaxScriptLength            *int   `env:"MAX_SCRIPT_LENGTH"`
	EnableUnicodeNormalization *bool  `env:"ENABLE_UNICODE_NORMALIZATION"`
	DisableBuiltInPatterns     *bool  `env:"DISABLE_BUILTIN_PATTERNS"`
}

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"

	EnvPrefix = "CONTENTGATE_"

	DefaultMaxScriptLength = 1000
	DefaultHTTPAddr        = ":8080"
	DefaultHTTPPath        = "/mcp"
	DefaultMetricsPath     = "/metrics"
)

// Default returns a config with every default applied and environment
// overrides ignored.
func Default() Config {
	var cfg Config
	applyDefaults(&cfg)
	return cfg
}

// Load reads the config file at path, applies defaults and environment
// overrides, and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyDefaults(&cfg)

	if err := applyEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}

	if err := validate(cfg); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding what is already set. Missing files are
// skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Transport == "" {
		cfg.Server.Transport = TransportStdio
	}
	if cfg.Server.HTTP.Addr == "" {
		cfg.Server.HTTP.Addr = DefaultHTTPAddr
	}
	if cfg.Server.HTTP.Path == "" {
		cfg.Server.HTTP.Path = DefaultHTTPPath
	}
	if cfg.Server.HTTP.MetricsPath == "" {
		cfg.Server.HTTP.MetricsPath = DefaultMetricsPath
	}

	if cfg.Gate.MaxScriptLength == nil {
		cfg.Gate.MaxScriptLength = intPtr(DefaultMaxScriptLength)
	}
	if cfg.Gate.EnableUnicodeNormalization == nil {
		cfg.Gate.EnableUnicodeNormalization = boolPtr(true)
	}
	if cfg.Gate.DisableBuiltInPatterns == nil {
		cfg.Gate.DisableBuiltInPatterns = boolPtr(false)
	}
}

func applyEnv(cfg *Config) error {
	var ov envOverrides
	if err := env.ParseWithOptions(&ov, env.Options{Prefix: EnvPrefix}); err != nil {
		return err
	}

	if ov.Transport != "" {
		cfg.Server.Transport = ov.Transport
	}
	if ov.HTTPAddr != "" {
		cfg.Server.HTTP.Addr = ov.HTTPAddr
	}
	if ov.HTTPPath != "" {
		cfg.Server.HTTP.Path = ov.HTTPPath
	}
	if ov.MetricsPath != "" {
		cfg.Server.HTTP.MetricsPath = ov.MetricsPath
	}
	if ov.MaxScriptLength != nil {
		cfg.Gate.MaxScriptLength = ov.MaxScriptLength
	}
	if ov.EnableUnicodeNormalization != nil {
		cfg.Gate.EnableUnicodeNormalization = ov.EnableUnicodeNormalization
	}
	if ov.DisableBuiltInPatterns != nil {
		cfg.Gate.DisableBuiltInPatterns = ov.DisableBuiltInPatterns
	}
	return nil
}

func validate(cfg Config) error {
	if cfg.Server.Transport != TransportStdio && cfg.Server.Transport != TransportHTTP {
		return fmt.Errorf("server transport must be %q or %q, got %q",
			TransportStdio, TransportHTTP, cfg.Server.Transport)
	}

	if cfg.Server.Transport == TransportHTTP {
		if !strings.HasPrefix(cfg.Server.HTTP.Path, "/") {
			return fmt.Errorf("server.http.path must start with /, got %q", cfg.Server.HTTP.Path)
		}
		if !strings.HasPrefix(cfg.Server.HTTP.MetricsPath, "/") {
			return fmt.Errorf("server.http.metricsPath must start with /, got %q", cfg.Server.HTTP.MetricsPath)
		}
		if cfg.Server.HTTP.Path == cfg.Server.HTTP.MetricsPath {
			return fmt.Errorf("server.http.path and metricsPath must differ, both are %q", cfg.Server.HTTP.Path)
		}
	}

	if *cfg.Gate.MaxScriptLength <= 0 {
		return fmt.Errorf("gate.maxScriptLength must be positive, got %d", *cfg.Gate.MaxScriptLength)
	}

	if *cfg.Gate.DisableBuiltInPatterns && len(cfg.Gate.CustomPatterns) == 0 {
		return errors.New("gate.disableBuiltInPatterns requires at least one custom pattern")
	}

	for i, pattern := range cfg.Gate.CustomPatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("gate.customPatterns[%d]: invalid regex %q: %w", i, pattern, err)
		}
	}

	return nil
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }
