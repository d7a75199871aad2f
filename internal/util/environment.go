package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var environmentLogger = log.With().Str("logger_name", "util::environment").Logger()

type environment struct {
	APIServerURL    string
	NatsURL         string
	PlayerName      string
	MinBet          string
	MaxBet          string
	StartingBalance string
	RequestTimeout  string
	RetryAttempts   string
	RetryDelay      string
	PollInterval    string
	PollMaxAttempts string
	HistorySize     string
	PrintStateMsg   string
	LogLevel        string
}

// Env is a helper object for accessing environment variables.
var Env = &environment{
	APIServerURL:    "API_SERVER_URL",
	NatsURL:         "NATS_URL",
	PlayerName:      "PLAYER_NAME",
	MinBet:          "MIN_BET",
	MaxBet:          "MAX_BET",
	StartingBalance: "STARTING_BALANCE",
	RequestTimeout:  "REQUEST_TIMEOUT_MS",
	RetryAttempts:   "RETRY_ATTEMPTS",
	RetryDelay:      "RETRY_DELAY_MS",
	PollInterval:    "DEALER_POLL_INTERVAL_MS",
	PollMaxAttempts: "DEALER_POLL_MAX_ATTEMPTS",
	HistorySize:     "HISTORY_SIZE",
	PrintStateMsg:   "PRINT_STATE_MSG",
	LogLevel:        "LOG_LEVEL",
}

// Lookup returns the raw value of the variable and whether it was set to a non-empty value.
func (e *environment) Lookup(name string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	return v, v != ""
}

// GetFloat returns the variable parsed as float64. Panics if the value is malformed.
func (e *environment) GetFloat(name string) (float64, bool) {
	v, ok := e.Lookup(name)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		msg := fmt.Sprintf("Invalid %s: %s", name, v)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return f, true
}

// GetInt returns the variable parsed as int. Panics if the value is malformed.
func (e *environment) GetInt(name string) (int, bool) {
	v, ok := e.Lookup(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		msg := fmt.Sprintf("Invalid %s: %s", name, v)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return n, true
}

func (e *environment) GetPrintStateMsg() string {
	v := os.Getenv(e.PrintStateMsg)
	if v == "" {
		return "false"
	}
	return v
}

func (e *environment) ShouldPrintStateMsg() bool {
	return e.GetPrintStateMsg() == "1" || strings.ToLower(e.GetPrintStateMsg()) == "true"
}

func (e *environment) GetLogLevel() string {
	v := os.Getenv(e.LogLevel)
	if v == "" {
		defaultVal := "info"
		environmentLogger.Warn().Msgf("%s is not defined. Using default %s", e.LogLevel, defaultVal)
		return defaultVal
	}
	return v
}

func (e *environment) GetZeroLogLogLevel() zerolog.Level {
	l := e.GetLogLevel()
	switch strings.ToLower(l) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		fallthrough
	case "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		panic(fmt.Sprintf("Unsupported %s: %s", e.LogLevel, l))
	}
}
