package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	fileName := filepath.Join(t.TempDir(), "blackjack.yaml")
	require.NoError(t, ioutil.WriteFile(fileName, []byte(content), 0644))
	return fileName
}

func TestReadConfigKeepsDefaults(t *testing.T) {
	fileName := writeConfigFile(t, `
api-server-url: http://localhost:9501
min-bet: 25
dealer-poll-interval-ms: 250
`)
	cfg, err := ReadConfig(fileName)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9501", cfg.APIServerURL)
	assert.Equal(t, 25.0, cfg.MinBet)
	assert.Equal(t, 500.0, cfg.MaxBet)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval())
	assert.Equal(t, 30, cfg.PollMaxAttempts)
	assert.NoError(t, cfg.Validate())
}

func TestReadConfigErrors(t *testing.T) {
	_, err := ReadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = ReadConfig(writeConfigFile(t, "min-bet: [1, 2"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("API_SERVER_URL", "http://authority:8080")
	t.Setenv("MAX_BET", "250")
	t.Setenv("RETRY_ATTEMPTS", "5")
	t.Setenv("DEALER_POLL_MAX_ATTEMPTS", "")

	cfg := DefaultConfig()
	cfg.ApplyEnv()
	assert.Equal(t, "http://authority:8080", cfg.APIServerURL)
	assert.Equal(t, 250.0, cfg.MaxBet)
	assert.Equal(t, 5, cfg.RetryAttempts)
	assert.Equal(t, 30, cfg.PollMaxAttempts)
}

func TestApplyEnvPanicsOnMalformedValue(t *testing.T) {
	t.Setenv("MIN_BET", "ten")
	cfg := DefaultConfig()
	assert.Panics(t, func() { cfg.ApplyEnv() })
}

func TestValidate(t *testing.T) {
	valid := DefaultConfig()
	valid.APIServerURL = "http://localhost"
	require.NoError(t, valid.Validate())

	tests := map[string]func(c *Config){
		"no url":          func(c *Config) { c.APIServerURL = "" },
		"zero min bet":    func(c *Config) { c.MinBet = 0 },
		"max below min":   func(c *Config) { c.MaxBet = 5 },
		"negative retry":  func(c *Config) { c.RetryAttempts = -1 },
		"zero poll limit": func(c *Config) { c.PollMaxAttempts = 0 },
		"zero timeout":    func(c *Config) { c.RequestTimeoutMs = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("API_SERVER_URL", "")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("API_SERVER_URL", "http://authority:8080")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://authority:8080", cfg.APIServerURL)
}
