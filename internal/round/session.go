package round

import (
	"voyager.com/blackjack/internal/blackjack"
	"voyager.com/blackjack/internal/failure"
	"voyager.com/blackjack/internal/settlement"
)

type Player struct {
	ID       string
	Name     string
	Hand     blackjack.Hand
	Standing bool
}

// Session is one played round, from the bet to the settlement.
type Session struct {
	ID             string
	GameID         string
	Bet            float64
	Player         *Player
	Dealer         blackjack.Hand
	RemainingCards int
	Result         *settlement.Result

	settled  bool
	turnDone chan struct{}
	closed   bool
}

func newSession(id string, bet float64) *Session {
	return &Session{
		ID:       id,
		Bet:      bet,
		turnDone: make(chan struct{}),
	}
}

// endTurn releases the callers waiting for the session to leave the dealer turn.
func (s *Session) endTurn() {
	if !s.closed {
		s.closed = true
		close(s.turnDone)
	}
}

type PlayerView struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Hand     blackjack.Hand      `json:"hand"`
	Score    blackjack.HandScore `json:"score"`
	Standing bool                `json:"standing"`
}

type DealerView struct {
	Hand  blackjack.Hand      `json:"hand"`
	Score blackjack.HandScore `json:"score"`
}

type ErrorView struct {
	Kind    failure.Kind `json:"kind"`
	Status  int          `json:"status,omitempty"`
	Message string       `json:"message"`
}

// Snapshot is an immutable copy of the round. Scores are derived from the cards
// every time a snapshot is taken.
type Snapshot struct {
	Status         string             `json:"status"`
	SessionID      string             `json:"sessionId,omitempty"`
	GameID         string             `json:"gameId,omitempty"`
	Bet            float64            `json:"bet"`
	Balance        float64            `json:"balance"`
	Player         *PlayerView        `json:"player,omitempty"`
	Dealer         *DealerView        `json:"dealer,omitempty"`
	RemainingCards int                `json:"remainingCards"`
	Result         *settlement.Result `json:"result,omitempty"`
	Loading        bool               `json:"loading"`
	Polling        bool               `json:"polling"`
	LastError      error              `json:"-"`
	Error          *ErrorView         `json:"error,omitempty"`
}

func newErrorView(err error) *ErrorView {
	if err == nil {
		return nil
	}
	return &ErrorView{
		Kind:    failure.KindOf(err),
		Status:  failure.StatusOf(err),
		Message: err.Error(),
	}
}

func copyHand(h blackjack.Hand) blackjack.Hand {
	if h == nil {
		return nil
	}
	return append(blackjack.Hand(nil), h...)
}
