package notify

import (
	"time"

	"github.com/rs/zerolog"
	"voyager.com/blackjack/internal/blackjack"
	"voyager.com/blackjack/internal/logging"
	"voyager.com/blackjack/internal/util"
)

type EventType string

const (
	EventTransition  EventType = "transition"
	EventSettled     EventType = "settled"
	EventError       EventType = "error"
	EventPollTimeout EventType = "pollTimeout"
)

// Event is emitted by the round for every state transition, settlement and failure.
type Event struct {
	Type       EventType         `json:"type"`
	SessionID  string            `json:"sessionId"`
	GameID     string            `json:"gameId,omitempty"`
	PlayerName string            `json:"playerName,omitempty"`
	Src        string            `json:"src,omitempty"`
	Dst        string            `json:"dst,omitempty"`
	Action     string            `json:"action,omitempty"`
	Outcome    blackjack.Outcome `json:"outcome,omitempty"`
	Payout     float64           `json:"payout,omitempty"`
	Balance    float64           `json:"balance"`
	Error      string            `json:"error,omitempty"`
	ErrorKind  string            `json:"errorKind,omitempty"`
	Time       time.Time         `json:"time"`
}

// Sink receives round events. Notify must not block and must never panic
// into the caller; the round recovers from it regardless.
type Sink interface {
	Notify(e Event)
}

type multiSink []Sink

// Multi fans an event out to all the sinks. Nil sinks are skipped.
func Multi(sinks ...Sink) Sink {
	m := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

func (m multiSink) Notify(e Event) {
	for _, s := range m {
		s.Notify(e)
	}
}

// LogSink writes every event to a zerolog logger.
type LogSink struct {
	logger *zerolog.Logger
}

func NewLogSink(logger *zerolog.Logger) *LogSink {
	if logger == nil {
		logger = logging.GetZeroLogger("round::events", nil)
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(e Event) {
	var ev *zerolog.Event
	switch e.Type {
	case EventError, EventPollTimeout:
		ev = s.logger.Error().Str(logging.ErrorKindKey, e.ErrorKind).Str("error", e.Error)
	default:
		ev = s.logger.Info()
	}
	ev = ev.Str(logging.SessionIDKey, e.SessionID).
		Str(logging.PlayerKey, e.PlayerName).
		Float64("balance", e.Balance)
	if e.GameID != "" {
		ev = ev.Str("gameID", e.GameID)
	}
	if e.Action != "" {
		ev = ev.Str(logging.ActionKey, e.Action)
	}

	switch e.Type {
	case EventTransition:
		ev.Msgf("Round state %s -> %s", e.Src, e.Dst)
	case EventSettled:
		ev.Msgf("Round settled. Outcome: %s, Payout: %.2f", e.Outcome, e.Payout)
	case EventPollTimeout:
		ev.Msg("Dealer turn did not finish in time")
	default:
		ev.Msg("Round action failed")
	}
}

// MetricsSink records the events in the prometheus metrics.
type MetricsSink struct{}

func (MetricsSink) Notify(e Event) {
	switch e.Type {
	case EventTransition:
		util.Metrics.StateTransition(e.Src, e.Dst)
	case EventSettled:
		util.Metrics.RoundSettled(string(e.Outcome))
	case EventPollTimeout:
		util.Metrics.DealerPollTimedOut()
	}
	util.Metrics.SetBalance(e.Balance)
}
