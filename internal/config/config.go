// Package config reads the optional catalog.yaml settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/StinkyLord/psl-catalog-builder/internal/registry"
)

// DefaultFile is read when present and no --config flag is given.
const DefaultFile = "catalog.yaml"

// Config holds the settings shared by the CLI commands. Values set here
// are overridden by command-line flags.
type Config struct {
	// Registry is the project registry file (default "register.json").
	Registry string `yaml:"registry"`

	// OutputDir receives index.html, projects/ and catalog.json (default ".").
	OutputDir string `yaml:"output_dir"`

	// TemplatesDir overrides the embedded page templates. It must contain
	// catalog_template.html and project_template.html.
	TemplatesDir string `yaml:"templates_dir"`

	// APIURL points the GitHub client at another endpoint, such as a
	// GitHub Enterprise server. Empty means api.github.com.
	APIURL string `yaml:"api_url"`

	// LogLevel is one of debug, info, warn, error (default "info").
	LogLevel string `yaml:"log_level"`

	// LogFormat is text or json (default "text").
	LogFormat string `yaml:"log_format"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Registry == "" {
		c.Registry = registry.DefaultPath
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
}

// Validate checks the logging settings.
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(c.LogLevel)
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", c.LogLevel)
	}

	c.LogFormat = strings.ToLower(c.LogFormat)
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q: must be 'text' or 'json'", c.LogFormat)
	}
	return nil
}

// LoadConfig reads a YAML configuration file and fills in defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Resolve loads path, or DefaultFile when path is empty and that file
// exists. With neither it returns Default().
func Resolve(path string) (Config, error) {
	if path != "" {
		return LoadConfig(path)
	}
	cfg, err := LoadConfig(DefaultFile)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}
