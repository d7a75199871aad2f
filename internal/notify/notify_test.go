package notify

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"voyager.com/blackjack/internal/blackjack"
)

type published struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	messages []published
	err      error
}

func (p *fakePublisher) Publish(subj string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, published{subject: subj, data: data})
	return nil
}

type collectingSink struct {
	events []Event
}

func (s *collectingSink) Notify(e Event) {
	s.events = append(s.events, e)
}

func TestNatsSinkPublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewNatsSink(pub, "bob", nil)
	sink.Notify(Event{Type: EventSettled, SessionID: "s-1", Outcome: blackjack.OutcomeWin, Payout: 100, Balance: 1050})

	require.Len(t, pub.messages, 1)
	assert.Equal(t, "blackjack.round.bob", pub.messages[0].subject)

	var got Event
	require.NoError(t, json.Unmarshal(pub.messages[0].data, &got))
	assert.Equal(t, EventSettled, got.Type)
	assert.Equal(t, "s-1", got.SessionID)
	assert.Equal(t, blackjack.OutcomeWin, got.Outcome)
	assert.Equal(t, 100.0, got.Payout)
}

func TestNatsSinkPublishErrorIsSwallowed(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	sink := NewNatsSink(&fakePublisher{err: errors.New("nats: connection closed")}, "bob", &logger)
	assert.NotPanics(t, func() {
		sink.Notify(Event{Type: EventTransition, Src: "betting", Dst: "creating"})
	})
	assert.Contains(t, buf.String(), "connection closed")
}

func TestMultiSkipsNil(t *testing.T) {
	a := &collectingSink{}
	b := &collectingSink{}
	sink := Multi(a, nil, b)
	sink.Notify(Event{Type: EventTransition, Src: "playing", Dst: "dealer-turn"})
	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	sink := NewLogSink(&logger)
	sink.Notify(Event{Type: EventTransition, SessionID: "s-1", Src: "betting", Dst: "creating"})
	assert.Contains(t, buf.String(), "Round state betting -> creating")
	assert.Contains(t, buf.String(), `"sessionID":"s-1"`)
}
