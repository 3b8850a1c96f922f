package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigParser(t *testing.T) {
	parser := NewConfigParser()
	assert.NotNil(t, parser)
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, NewConfigParser().ValidateConfiguration(cfg))
	assert.Equal(t, 5, cfg.Defaults.Years)
	assert.Equal(t, 50000.0, cfg.Defaults.WaterAvailability)
	assert.Equal(t, 30*time.Second, cfg.Service.Timeout)
}

func TestLoadFromFile_Success(t *testing.T) {
	testConfig := "service:\n" +
		"  base_url: \"https://crops.example.com/api\"\n" +
		"  timeout: 5s\n" +
		"display:\n" +
		"  locale: de\n" +
		"defaults:\n" +
		"  years: 10\n" +
		"  option: simulate\n"

	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.Write([]byte(testConfig))
	require.NoError(t, err)
	tmpfile.Close()

	parser := NewConfigParser()
	config, err := parser.LoadFromFile(tmpfile.Name())

	require.NoError(t, err)
	assert.Equal(t, "https://crops.example.com/api", config.Service.BaseURL)
	assert.Equal(t, 5*time.Second, config.Service.Timeout)
	assert.Equal(t, "de", config.Display.Locale)
	assert.Equal(t, 10, config.Defaults.Years)
	assert.Equal(t, "simulate", config.Defaults.Option)
	// untouched keys keep their defaults
	assert.Equal(t, "$", config.Display.CurrencySymbol)
	assert.Equal(t, 50000.0, config.Defaults.WaterAvailability)
	assert.Equal(t, "yield", config.Defaults.Chart)
}

func TestLoadFromFile_ZeroTimeout(t *testing.T) {
	config, err := NewConfigParser().Parse([]byte("service:\n  timeout: 0s\n"))
	require.NoError(t, err)
	assert.Zero(t, config.Service.Timeout)
}

func TestLoadFromFile_FileNotFound(t *testing.T) {
	parser := NewConfigParser()
	config, err := parser.LoadFromFile("nonexistent_file.yaml")

	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	config, err := NewConfigParser().Parse([]byte("service: [unterminated"))
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Configuration)
		wantErr string
	}{
		{"missing base url", func(c *Configuration) { c.Service.BaseURL = "" }, "base_url is required"},
		{"relative base url", func(c *Configuration) { c.Service.BaseURL = "localhost:8000" }, "http or https"},
		{"no host", func(c *Configuration) { c.Service.BaseURL = "http://" }, "host"},
		{"negative timeout", func(c *Configuration) { c.Service.Timeout = -time.Second }, "timeout cannot be negative"},
		{"bad locale", func(c *Configuration) { c.Display.Locale = "not a locale!" }, "locale"},
		{"zero years", func(c *Configuration) { c.Defaults.Years = 0 }, "years must be between 1 and 50"},
		{"too many years", func(c *Configuration) { c.Defaults.Years = 51 }, "years must be between 1 and 50"},
		{"negative water", func(c *Configuration) { c.Defaults.WaterAvailability = -1 }, "water_availability"},
		{"bad metric", func(c *Configuration) { c.Defaults.Metric = "profit" }, "metric"},
		{"bad chart", func(c *Configuration) { c.Defaults.Chart = "efficiency" }, "chart"},
		{"bad option", func(c *Configuration) { c.Defaults.Option = "both" }, "option"},
		{"bad level", func(c *Configuration) { c.Logging.Level = "trace" }, "level"},
	}
	parser := NewConfigParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := parser.ValidateConfiguration(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveConfigurationRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Service.BaseURL = "http://sim.internal:9000"
	cfg.Service.Timeout = 90 * time.Second

	parser := NewConfigParser()
	require.NoError(t, parser.SaveConfiguration(cfg, path))

	loaded, err := parser.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
