package caches

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"voyager.com/blackjack/internal/blackjack"
)

// RoundRecord is the summary of one settled round.
type RoundRecord struct {
	SessionID   string            `json:"sessionId"`
	GameID      string            `json:"gameId"`
	Bet         float64           `json:"bet"`
	Outcome     blackjack.Outcome `json:"outcome"`
	Payout      float64           `json:"payout"`
	Balance     float64           `json:"balance"`
	PlayerHand  blackjack.Hand    `json:"playerHand"`
	DealerHand  blackjack.Hand    `json:"dealerHand"`
	PlayerValue int               `json:"playerValue"`
	DealerValue int               `json:"dealerValue"`
	Error       string            `json:"error,omitempty"`
	FinishedAt  time.Time         `json:"finishedAt"`
}

// RoundHistory keeps the most recently settled rounds. The oldest round is evicted
// once the size is reached.
type RoundHistory struct {
	rounds *lru.Cache
}

func NewRoundHistory(size int) (*RoundHistory, error) {
	rounds, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to initialize round history of size %d", size)
	}
	return &RoundHistory{rounds: rounds}, nil
}

func (h *RoundHistory) Add(r RoundRecord) error {
	if r.SessionID == "" {
		return fmt.Errorf("Invalid session ID [%s]", r.SessionID)
	}
	h.rounds.Add(r.SessionID, r)
	return nil
}

func (h *RoundHistory) Get(sessionID string) (RoundRecord, bool) {
	v, exists := h.rounds.Peek(sessionID)
	if !exists {
		return RoundRecord{}, false
	}
	return v.(RoundRecord), true
}

// List returns the rounds from the oldest to the newest.
func (h *RoundHistory) List() []RoundRecord {
	keys := h.rounds.Keys()
	records := make([]RoundRecord, 0, len(keys))
	for _, k := range keys {
		if v, exists := h.rounds.Peek(k); exists {
			records = append(records, v.(RoundRecord))
		}
	}
	return records
}

func (h *RoundHistory) Len() int {
	return h.rounds.Len()
}
