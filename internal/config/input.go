package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Configuration represents the complete cropsim configuration file
type Configuration struct {
	Service  ServiceConfig  `yaml:"service"`
	Display  DisplayConfig  `yaml:"display"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServiceConfig locates the remote simulation service
type ServiceConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"` // 0 disables the timeout
}

// MarshalYAML writes the timeout as a duration string ("30s"); yaml.v3
// will not decode a bare integer back into a time.Duration.
func (s ServiceConfig) MarshalYAML() (any, error) {
	return struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	}{s.BaseURL, s.Timeout.String()}, nil
}

// DisplayConfig controls number rendering
type DisplayConfig struct {
	Locale         string `yaml:"locale"`
	CurrencySymbol string `yaml:"currency_symbol"`
}

// DefaultsConfig seeds the simulate and compare forms
type DefaultsConfig struct {
	Years             int     `yaml:"years"`
	WaterAvailability float64 `yaml:"water_availability"`
	Metric            string  `yaml:"metric"`
	Chart             string  `yaml:"chart"`
	Option            string  `yaml:"option"`
}

// LoggingConfig controls the zap logger
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// MaxYears is the longest simulation horizon accepted.
const MaxYears = 50

// DefaultBaseURL is the address of a locally running service.
const DefaultBaseURL = "http://localhost:8000"

// Default returns the built-in configuration.
func Default() *Configuration {
	return &Configuration{
		Service: ServiceConfig{
			BaseURL: DefaultBaseURL,
			Timeout: 30 * time.Second,
		},
		Display: DisplayConfig{
			Locale:         "en",
			CurrencySymbol: "$",
		},
		Defaults: DefaultsConfig{
			Years:             5,
			WaterAvailability: 50000,
			Metric:            "yield",
			Chart:             "yield",
			Option:            "characteristics",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ConfigParser handles loading, validating and saving configuration files
type ConfigParser struct{}

// NewConfigParser creates a new configuration parser
func NewConfigParser() *ConfigParser {
	return &ConfigParser{}
}

// LoadFromFile loads configuration from a YAML file. Keys absent from the
// file keep their default values.
func (cp *ConfigParser) LoadFromFile(filename string) (*Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return cp.Parse(data)
}

// Parse decodes and validates YAML configuration data.
func (cp *ConfigParser) Parse(data []byte) (*Configuration, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cp.ValidateConfiguration(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// ValidateConfiguration validates the loaded configuration
func (cp *ConfigParser) ValidateConfiguration(config *Configuration) error {
	if err := cp.validateService(&config.Service); err != nil {
		return fmt.Errorf("service: %w", err)
	}
	if err := cp.validateDisplay(&config.Display); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	if err := cp.validateDefaults(&config.Defaults); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	if err := cp.validateLogging(&config.Logging); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

func (cp *ConfigParser) validateService(s *ServiceConfig) error {
	if s.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must use http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("base_url must include a host")
	}
	if s.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	return nil
}

func (cp *ConfigParser) validateDisplay(d *DisplayConfig) error {
	if d.Locale != "" {
		if _, err := language.Parse(d.Locale); err != nil {
			return fmt.Errorf("locale %q is not a valid BCP 47 tag", d.Locale)
		}
	}
	return nil
}

func (cp *ConfigParser) validateDefaults(d *DefaultsConfig) error {
	if d.Years < 1 || d.Years > MaxYears {
		return fmt.Errorf("years must be between 1 and %d", MaxYears)
	}
	if d.WaterAvailability < 0 {
		return fmt.Errorf("water_availability cannot be negative")
	}
	switch strings.ToLower(d.Metric) {
	case "yield", "cost", "efficiency":
	default:
		return fmt.Errorf("metric must be 'yield', 'cost', or 'efficiency'")
	}
	switch strings.ToLower(d.Chart) {
	case "yield", "cost":
	default:
		return fmt.Errorf("chart must be 'yield' or 'cost'")
	}
	switch strings.ToLower(d.Option) {
	case "characteristics", "simulate":
	default:
		return fmt.Errorf("option must be 'characteristics' or 'simulate'")
	}
	return nil
}

func (cp *ConfigParser) validateLogging(l *LoggingConfig) error {
	switch strings.ToLower(l.Level) {
	case "", "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("level must be 'debug', 'info', 'warn', or 'error'")
}

// SaveConfiguration writes config as YAML, creating parent directories.
func (cp *ConfigParser) SaveConfiguration(config *Configuration, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}
	return nil
}

// DefaultPath returns the per-user configuration file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "cropsim.yaml"
	}
	return filepath.Join(dir, "cropsim", "config.yaml")
}
