package rest

import (
	"time"

	"github.com/rs/zerolog"
	"voyager.com/blackjack/internal/failure"
	"voyager.com/blackjack/internal/logging"
	"voyager.com/blackjack/internal/util"
)

// Attempt is the record of one outbound request attempt.
type Attempt struct {
	Method    string
	Endpoint  string
	Action    string
	SessionID string
	RequestID string
	Attempt   int
	// Status is 0 when no response reached the client.
	Status   int
	Duration time.Duration
	Err      error
}

// Observer receives a record for every attempt. Implementations must not block.
type Observer interface {
	ObserveAttempt(a Attempt)
}

type NopObserver struct{}

func (NopObserver) ObserveAttempt(Attempt) {}

// MetricsObserver logs every attempt and records it in the prometheus metrics.
type MetricsObserver struct {
	logger *zerolog.Logger
}

func NewMetricsObserver(logger *zerolog.Logger) *MetricsObserver {
	if logger == nil {
		logger = logging.GetZeroLogger("rest::observer", nil)
	}
	return &MetricsObserver{logger: logger}
}

func (o *MetricsObserver) ObserveAttempt(a Attempt) {
	util.Metrics.RequestAttempted(a.Method, a.Action, a.Status, a.Duration)

	var ev *zerolog.Event
	if a.Err != nil {
		ev = o.logger.Warn().Err(a.Err).Str(logging.ErrorKindKey, string(failure.KindOf(a.Err)))
	} else {
		ev = o.logger.Debug()
	}
	ev.Str(logging.MethodKey, a.Method).
		Str(logging.EndpointKey, a.Endpoint).
		Str(logging.ActionKey, a.Action).
		Str(logging.SessionIDKey, a.SessionID).
		Str("requestID", a.RequestID).
		Int(logging.AttemptKey, a.Attempt).
		Int(logging.StatusKey, a.Status).
		Dur(logging.DurationKey, a.Duration).
		Msg("Authority request")
}
