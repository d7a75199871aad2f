package api

import (
	"voyager.com/blackjack/internal/blackjack"
)

// Game status values reported by the authority.
const (
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
)

type GameOptions struct {
	DeckCount   int    `json:"deckCount"`
	DeckVariant string `json:"deckVariant"`
	MaxPlayers  int    `json:"maxPlayers"`
}

type CreateGameResp struct {
	GameID         string `json:"gameId"`
	RemainingCards int    `json:"remainingCards"`
}

type AddPlayerReq struct {
	Name string `json:"name"`
}

type PlayerResp struct {
	PlayerID string         `json:"playerId"`
	Name     string         `json:"name"`
	Hand     blackjack.Hand `json:"hand"`
}

type ShuffleResp struct {
	RemainingCards int `json:"remainingCards"`
}

type HitResp struct {
	Hand        blackjack.Hand `json:"hand"`
	IsBust      bool           `json:"isBust"`
	IsBlackjack bool           `json:"isBlackjack"`
	Status      string         `json:"status"`
}

type StandResp struct {
	Status string `json:"status"`
}

type PlayerState struct {
	PlayerID string         `json:"playerId"`
	Name     string         `json:"name"`
	Hand     blackjack.Hand `json:"hand"`
	Status   string         `json:"status,omitempty"`
}

type DealerState struct {
	Hand blackjack.Hand `json:"hand"`
}

// GameState is the full snapshot of a game as returned by start and get-state.
type GameState struct {
	GameID         string        `json:"gameId"`
	Status         string        `json:"status"`
	Players        []PlayerState `json:"players"`
	Dealer         DealerState   `json:"dealer"`
	RemainingCards int           `json:"remainingCards"`
}

// Player returns the state of the given player, or nil if the player is not seated.
func (g *GameState) Player(playerID string) *PlayerState {
	for i := range g.Players {
		if g.Players[i].PlayerID == playerID {
			return &g.Players[i]
		}
	}
	return nil
}

func (g *GameState) Finished() bool {
	return g.Status == StatusFinished
}

type PlayerResult struct {
	PlayerID string            `json:"playerId"`
	Outcome  blackjack.Outcome `json:"outcome"`
}

type Results struct {
	Players []PlayerResult `json:"players"`
	Dealer  DealerState    `json:"dealer"`
}

// OutcomeFor returns the outcome reported for the player.
func (r *Results) OutcomeFor(playerID string) (blackjack.Outcome, bool) {
	for _, p := range r.Players {
		if p.PlayerID == playerID {
			return p.Outcome, true
		}
	}
	return "", false
}
