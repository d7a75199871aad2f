package config

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"voyager.com/blackjack/internal/util"
)

// Config holds the table limits, the request policy and the dealer poll policy.
type Config struct {
	APIServerURL string `yaml:"api-server-url"`
	NatsURL      string `yaml:"nats-url"`
	PlayerName   string `yaml:"player-name"`

	MinBet          float64 `yaml:"min-bet"`
	MaxBet          float64 `yaml:"max-bet"`
	StartingBalance float64 `yaml:"starting-balance"`

	DeckCount   int    `yaml:"deck-count"`
	DeckVariant string `yaml:"deck-variant"`
	MaxPlayers  int    `yaml:"max-players"`

	RequestTimeoutMs int `yaml:"request-timeout-ms"`
	RetryAttempts    int `yaml:"retry-attempts"`
	RetryDelayMs     int `yaml:"retry-delay-ms"`

	PollIntervalMs  int `yaml:"dealer-poll-interval-ms"`
	PollMaxAttempts int `yaml:"dealer-poll-max-attempts"`

	HistorySize int `yaml:"history-size"`
}

func DefaultConfig() Config {
	return Config{
		PlayerName:       "player",
		MinBet:           10,
		MaxBet:           500,
		StartingBalance:  1000,
		DeckCount:        6,
		DeckVariant:      "standard",
		MaxPlayers:       1,
		RequestTimeoutMs: 5000,
		RetryAttempts:    3,
		RetryDelayMs:     500,
		PollIntervalMs:   1000,
		PollMaxAttempts:  30,
		HistorySize:      100,
	}
}

// ReadConfig reads the YAML file on top of the default config. Keys missing from the file
// keep their default values.
func ReadConfig(fileName string) (*Config, error) {
	cfg := DefaultConfig()
	if fileName == "" {
		return &cfg, nil
	}
	bytes, err := ioutil.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "Error reading config file [%s]", fileName)
	}
	err = yaml.Unmarshal(bytes, &cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "Error parsing YAML file [%s]", fileName)
	}
	return &cfg, nil
}

// Load reads the config file, applies the environment overrides and validates the result.
func Load(fileName string) (*Config, error) {
	cfg, err := ReadConfig(fileName)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "Invalid config")
	}
	return cfg, nil
}

// ApplyEnv overrides the config with the environment variables that are set.
func (c *Config) ApplyEnv() {
	env := util.Env
	if v, ok := env.Lookup(env.APIServerURL); ok {
		c.APIServerURL = v
	}
	if v, ok := env.Lookup(env.NatsURL); ok {
		c.NatsURL = v
	}
	if v, ok := env.Lookup(env.PlayerName); ok {
		c.PlayerName = v
	}
	if v, ok := env.GetFloat(env.MinBet); ok {
		c.MinBet = v
	}
	if v, ok := env.GetFloat(env.MaxBet); ok {
		c.MaxBet = v
	}
	if v, ok := env.GetFloat(env.StartingBalance); ok {
		c.StartingBalance = v
	}
	if v, ok := env.GetInt(env.RequestTimeout); ok {
		c.RequestTimeoutMs = v
	}
	if v, ok := env.GetInt(env.RetryAttempts); ok {
		c.RetryAttempts = v
	}
	if v, ok := env.GetInt(env.RetryDelay); ok {
		c.RetryDelayMs = v
	}
	if v, ok := env.GetInt(env.PollInterval); ok {
		c.PollIntervalMs = v
	}
	if v, ok := env.GetInt(env.PollMaxAttempts); ok {
		c.PollMaxAttempts = v
	}
	if v, ok := env.GetInt(env.HistorySize); ok {
		c.HistorySize = v
	}
}

func (c *Config) Validate() error {
	if c.APIServerURL == "" {
		return fmt.Errorf("%s is not defined", util.Env.APIServerURL)
	}
	if c.PlayerName == "" {
		return fmt.Errorf("Player name is not defined")
	}
	if c.MinBet <= 0 {
		return fmt.Errorf("Invalid min bet [%v]", c.MinBet)
	}
	if c.MaxBet < c.MinBet {
		return fmt.Errorf("Max bet [%v] is less than min bet [%v]", c.MaxBet, c.MinBet)
	}
	if c.StartingBalance < 0 {
		return fmt.Errorf("Invalid starting balance [%v]", c.StartingBalance)
	}
	if c.DeckCount <= 0 {
		return fmt.Errorf("Invalid deck count [%d]", c.DeckCount)
	}
	if c.MaxPlayers <= 0 {
		return fmt.Errorf("Invalid max players [%d]", c.MaxPlayers)
	}
	if c.RequestTimeoutMs <= 0 {
		return fmt.Errorf("Invalid request timeout [%d ms]", c.RequestTimeoutMs)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("Invalid retry attempts [%d]", c.RetryAttempts)
	}
	if c.RetryDelayMs < 0 {
		return fmt.Errorf("Invalid retry delay [%d ms]", c.RetryDelayMs)
	}
	if c.PollIntervalMs <= 0 {
		return fmt.Errorf("Invalid dealer poll interval [%d ms]", c.PollIntervalMs)
	}
	if c.PollMaxAttempts <= 0 {
		return fmt.Errorf("Invalid dealer poll max attempts [%d]", c.PollMaxAttempts)
	}
	if c.HistorySize <= 0 {
		return fmt.Errorf("Invalid history size [%d]", c.HistorySize)
	}
	return nil
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}
