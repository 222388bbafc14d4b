package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path
const EnvConfigPath = "WEBR_CONFIG"

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general" yaml:"general"`
	Client  ClientConfig  `toml:"client" yaml:"client"`
	Sink    SinkConfig    `toml:"sink" yaml:"sink"`
	Wait    WaitConfig    `toml:"wait" yaml:"wait"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name      string `toml:"name" yaml:"name"`
	DataDir   string `toml:"data_dir" yaml:"data_dir"`
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
}

// ClientConfig holds the WebR execution client settings
type ClientConfig struct {
	BaseURL          string   `toml:"base_url" yaml:"base_url"`
	ExecuteTimeout   Duration `toml:"execute_timeout" yaml:"execute_timeout"`
	HealthTimeout    Duration `toml:"health_timeout" yaml:"health_timeout"`
	UserAgent        string   `toml:"user_agent" yaml:"user_agent"`
	MaxResponseBytes int64    `toml:"max_response_bytes" yaml:"max_response_bytes"`
}

// SinkConfig holds artifact sink settings
type SinkConfig struct {
	Type   string `toml:"type" yaml:"type"`
	Dir    string `toml:"dir" yaml:"dir"`
	Path   string `toml:"path" yaml:"path"`
	Prefix string `toml:"prefix" yaml:"prefix"`
}

// WaitConfig holds readiness polling settings used by the CLI
type WaitConfig struct {
	Interval Duration `toml:"interval" yaml:"interval"`
	Timeout  Duration `toml:"timeout" yaml:"timeout"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// Default returns a configuration with all defaults applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.expandEnvVars()
	return cfg
}

// Load loads configuration from a TOML or YAML file, chosen by extension
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Apply defaults
	cfg.applyDefaults()

	// Expand environment variables in paths
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration from the WEBR_CONFIG environment variable
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		// Try default locations
		defaultPaths := []string{
			"./configs/webr.toml",
			"./webr.toml",
			"./webr.yaml",
			filepath.Join(os.Getenv("HOME"), ".config/webr/config.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return nil, fmt.Errorf("no config file found, set %s or create configs/webr.toml", EnvConfigPath)
	}

	return Load(path)
}

// Validate checks values that have no sensible fallback
func (c *Config) Validate() error {
	u, err := url.Parse(c.Client.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid client.base_url: %q", c.Client.BaseURL)
	}
	if c.Client.ExecuteTimeout.Duration < 0 {
		return fmt.Errorf("client.execute_timeout must not be negative")
	}
	if c.Client.HealthTimeout.Duration < 0 {
		return fmt.Errorf("client.health_timeout must not be negative")
	}
	if c.Client.MaxResponseBytes < 0 {
		return fmt.Errorf("client.max_response_bytes must not be negative")
	}
	switch c.Sink.Type {
	case "file", "sqlite":
	default:
		return fmt.Errorf("unknown sink.type: %q (want file or sqlite)", c.Sink.Type)
	}
	return nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "webr"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "warn"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	// Client
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = "https://webr.mimilabs.org"
	}
	if c.Client.ExecuteTimeout.Duration == 0 {
		c.Client.ExecuteTimeout.Duration = 65 * time.Second
	}
	if c.Client.HealthTimeout.Duration == 0 {
		c.Client.HealthTimeout.Duration = 5 * time.Second
	}
	if c.Client.MaxResponseBytes == 0 {
		c.Client.MaxResponseBytes = 32 << 20
	}

	// Sink
	if c.Sink.Type == "" {
		c.Sink.Type = "file"
	}
	if c.Sink.Dir == "" {
		c.Sink.Dir = "./plots"
	}
	if c.Sink.Path == "" {
		c.Sink.Path = filepath.Join(c.General.DataDir, "artifacts.db")
	}
	if c.Sink.Prefix == "" {
		c.Sink.Prefix = "plot"
	}

	// Wait
	if c.Wait.Interval.Duration == 0 {
		c.Wait.Interval.Duration = 2 * time.Second
	}
	if c.Wait.Timeout.Duration == 0 {
		c.Wait.Timeout.Duration = 2 * time.Minute
	}
}

// expandEnvVars expands environment variables in configuration values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.Client.BaseURL = os.ExpandEnv(c.Client.BaseURL)
	c.Sink.Dir = os.ExpandEnv(c.Sink.Dir)
	c.Sink.Path = os.ExpandEnv(c.Sink.Path)
}
