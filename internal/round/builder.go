package round

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"voyager.com/blackjack/internal/api"
	"voyager.com/blackjack/internal/caches"
	"voyager.com/blackjack/internal/config"
	"voyager.com/blackjack/internal/notify"
	"voyager.com/blackjack/internal/rest"
)

// NewStoreFromConfig wires the request client, the authority, the event sinks and the
// round history for the config. The returned function releases the NATS connection.
func NewStoreFromConfig(cfg *config.Config, logger *zerolog.Logger) (*Store, func(), error) {
	restClient := rest.NewRestClient(rest.Config{
		BaseURL:       cfg.APIServerURL,
		Timeout:       cfg.RequestTimeout(),
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay(),
	}, rest.NewMetricsObserver(nil), nil)

	sinks := []notify.Sink{notify.NewLogSink(nil), notify.MetricsSink{}}
	cleanup := func() {}
	if cfg.NatsURL != "" {
		nc, err := notify.ConnectNats(cfg.NatsURL, cfg.PlayerName)
		if err != nil {
			return nil, nil, err
		}
		natsSink := notify.NewNatsSink(nc, cfg.PlayerName, nil)
		sinks = append(sinks, natsSink)
		cleanup = nc.Close
		if logger != nil {
			logger.Info().Msgf("Publishing round events on nats subject %s", natsSink.Subject())
		}
	}

	history, err := caches.NewRoundHistory(cfg.HistorySize)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	store, err := NewStore(NewConfig(cfg), api.NewAuthority(restClient), notify.Multi(sinks...), history, logger)
	if err != nil {
		cleanup()
		return nil, nil, errors.Wrap(err, "Unable to create the round store")
	}
	return store, func() {
		store.Close()
		cleanup()
	}, nil
}
