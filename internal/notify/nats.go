package notify

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	natsgo "github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"voyager.com/blackjack/internal/logging"
	"voyager.com/blackjack/internal/util"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Publisher is implemented by *natsgo.Conn.
type Publisher interface {
	Publish(subj string, data []byte) error
}

// NatsSink publishes round events on the player's round subject.
type NatsSink struct {
	conn    Publisher
	subject string
	logger  *zerolog.Logger
}

func NewNatsSink(conn Publisher, playerName string, logger *zerolog.Logger) *NatsSink {
	if logger == nil {
		logger = logging.GetZeroLogger("round::nats", nil)
	}
	return &NatsSink{
		conn:    conn,
		subject: util.GetRoundEventSubject(playerName),
		logger:  logger,
	}
}

// ConnectNats connects to the NATS server used for the round events.
func ConnectNats(natsURL string, playerName string) (*natsgo.Conn, error) {
	nc, err := natsgo.Connect(natsURL, natsgo.Name(fmt.Sprintf("blackjack-%s", playerName)))
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("Unable to connect to NATS server [%s]", natsURL))
	}
	return nc, nil
}

func (s *NatsSink) Subject() string {
	return s.subject
}

func (s *NatsSink) Notify(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		s.logger.Error().Err(err).Msgf("Could not marshal %s event", e.Type)
		return
	}
	err = s.conn.Publish(s.subject, data)
	if err != nil {
		s.logger.Error().Err(err).Msgf("Unable to publish %s event to nats channel %s", e.Type, s.subject)
	}
}
