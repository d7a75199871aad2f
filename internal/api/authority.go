package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"voyager.com/blackjack/internal/rest"
)

// Sender is implemented by *rest.RestClient.
type Sender interface {
	Send(ctx context.Context, req rest.Request, out interface{}) (*rest.Response, error)
}

// Authority makes the typed calls to the remote blackjack authority.
// Every call is tagged with the local round session it belongs to.
type Authority struct {
	client Sender
}

func NewAuthority(client Sender) *Authority {
	return &Authority{client: client}
}

// CreateGame creates a new game with a fresh shoe.
func (a *Authority) CreateGame(ctx context.Context, sessionID string, opts GameOptions) (*CreateGameResp, error) {
	var resp CreateGameResp
	_, err := a.client.Send(ctx, rest.Request{
		Method:    http.MethodPost,
		Endpoint:  "/games",
		Body:      opts,
		SessionID: sessionID,
		Action:    "createGame",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddPlayer seats the player in the game.
func (a *Authority) AddPlayer(ctx context.Context, sessionID string, gameID string, name string) (*PlayerResp, error) {
	var resp PlayerResp
	_, err := a.client.Send(ctx, rest.Request{
		Method:    http.MethodPost,
		Endpoint:  fmt.Sprintf("/games/%s/players", url.PathEscape(gameID)),
		Body:      AddPlayerReq{Name: name},
		SessionID: sessionID,
		Action:    "addPlayer",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *Authority) Shuffle(ctx context.Context, sessionID string, gameID string) (*ShuffleResp, error) {
	var resp ShuffleResp
	_, err := a.client.Send(ctx, rest.Request{
		Method:    http.MethodPost,
		Endpoint:  fmt.Sprintf("/games/%s/shuffle", url.PathEscape(gameID)),
		SessionID: sessionID,
		Action:    "shuffle",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Start deals the initial hands.
func (a *Authority) Start(ctx context.Context, sessionID string, gameID string) (*GameState, error) {
	var resp GameState
	_, err := a.client.Send(ctx, rest.Request{
		Method:    http.MethodPost,
		Endpoint:  fmt.Sprintf("/games/%s/start", url.PathEscape(gameID)),
		SessionID: sessionID,
		Action:    "start",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *Authority) Hit(ctx context.Context, sessionID string, gameID string, playerID string) (*HitResp, error) {
	var resp HitResp
	_, err := a.client.Send(ctx, rest.Request{
		Method:    http.MethodPost,
		Endpoint:  playerEndpoint(gameID, playerID, "hit"),
		SessionID: sessionID,
		Action:    "hit",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *Authority) Stand(ctx context.Context, sessionID string, gameID string, playerID string) (*StandResp, error) {
	var resp StandResp
	_, err := a.client.Send(ctx, rest.Request{
		Method:    http.MethodPost,
		Endpoint:  playerEndpoint(gameID, playerID, "stand"),
		SessionID: sessionID,
		Action:    "stand",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// State returns the full game state. Polled during the dealer turn.
func (a *Authority) State(ctx context.Context, sessionID string, gameID string) (*GameState, error) {
	var resp GameState
	_, err := a.client.Send(ctx, rest.Request{
		Method:    http.MethodGet,
		Endpoint:  fmt.Sprintf("/games/%s", url.PathEscape(gameID)),
		SessionID: sessionID,
		Action:    "state",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *Authority) Results(ctx context.Context, sessionID string, gameID string) (*Results, error) {
	var resp Results
	_, err := a.client.Send(ctx, rest.Request{
		Method:    http.MethodGet,
		Endpoint:  fmt.Sprintf("/games/%s/results", url.PathEscape(gameID)),
		SessionID: sessionID,
		Action:    "results",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func playerEndpoint(gameID string, playerID string, action string) string {
	return fmt.Sprintf("/games/%s/players/%s/%s", url.PathEscape(gameID), url.PathEscape(playerID), action)
}
