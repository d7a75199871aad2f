package util

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requestAttemptsCounter *prometheus.CounterVec
	requestDurationSummary *prometheus.SummaryVec
	transitionCounter      *prometheus.CounterVec
	settlementCounter      *prometheus.CounterVec
	pollTimeoutCounter     prometheus.Counter
	balanceGauge           prometheus.Gauge
}

// RequestAttempted records one outbound attempt. Status 0 means no response was received.
func (m *metrics) RequestAttempted(method string, action string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	m.requestAttemptsCounter.WithLabelValues(method, action, code).Inc()
	m.requestDurationSummary.WithLabelValues(method, action).Observe(duration.Seconds())
}

func (m *metrics) StateTransition(src string, dst string) {
	m.transitionCounter.WithLabelValues(src, dst).Inc()
}

func (m *metrics) RoundSettled(outcome string) {
	m.settlementCounter.WithLabelValues(outcome).Inc()
}

func (m *metrics) DealerPollTimedOut() {
	m.pollTimeoutCounter.Inc()
}

func (m *metrics) SetBalance(balance float64) {
	m.balanceGauge.Set(balance)
}

var Metrics = &metrics{
	requestAttemptsCounter: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authority_request_attempts_total",
		Help: "Total number of request attempts made to the game authority",
	}, []string{"method", "action", "status"}),
	requestDurationSummary: promauto.NewSummaryVec(prometheus.SummaryOpts{
		Name:       "authority_request_duration_seconds",
		Help:       "Duration of request attempts made to the game authority",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{"method", "action"}),
	transitionCounter: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "round_state_transitions_total",
		Help: "Total number of round state transitions",
	}, []string{"src", "dst"}),
	settlementCounter: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "round_settlements_total",
		Help: "Total number of settled rounds by outcome",
	}, []string{"outcome"}),
	pollTimeoutCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "dealer_poll_timeouts_total",
		Help: "Total number of dealer turns that did not finish within the poll limit",
	}),
	balanceGauge: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "player_balance",
		Help: "Current player balance including reserved bets",
	}),
}
