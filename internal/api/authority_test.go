package api

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"voyager.com/blackjack/internal/blackjack"
	"voyager.com/blackjack/internal/failure"
	"voyager.com/blackjack/internal/rest"
)

type recordedCall struct {
	method    string
	path      string
	body      string
	sessionID string
}

type callRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (c *callRecorder) add(call recordedCall) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
}

func (c *callRecorder) get() []recordedCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]recordedCall(nil), c.calls...)
}

func newTestAuthority(t *testing.T, routes map[string]string) (*Authority, *callRecorder) {
	calls := &callRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := ioutil.ReadAll(r.Body)
		calls.add(recordedCall{
			method:    r.Method,
			path:      r.URL.Path,
			body:      string(body),
			sessionID: r.Header.Get(rest.SessionIDHeader),
		})
		resp, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"game not found"}`))
			return
		}
		w.Write([]byte(resp))
	}))
	t.Cleanup(server.Close)

	client := rest.NewRestClient(rest.Config{BaseURL: server.URL, Timeout: time.Second}, nil, nil)
	return NewAuthority(client), calls
}

func TestCreateGame(t *testing.T) {
	a, calls := newTestAuthority(t, map[string]string{
		"POST /games": `{"gameId":"g-1","remainingCards":312}`,
	})
	resp, err := a.CreateGame(context.Background(), "s-1", GameOptions{DeckCount: 6, DeckVariant: "standard", MaxPlayers: 1})
	require.NoError(t, err)
	assert.Equal(t, "g-1", resp.GameID)
	assert.Equal(t, 312, resp.RemainingCards)

	recorded := calls.get()
	require.Len(t, recorded, 1)
	call := recorded[0]
	assert.Equal(t, http.MethodPost, call.method)
	assert.Equal(t, "s-1", call.sessionID)
	assert.JSONEq(t, `{"deckCount":6,"deckVariant":"standard","maxPlayers":1}`, call.body)
}

func TestAddPlayerAndHit(t *testing.T) {
	hitResp := `{"hand":[{"rank":"10","suit":"hearts","faceUp":true},{"rank":2,"suit":"clubs","faceUp":true},` +
		`{"rank":"7","suit":"spades","faceUp":true}],"isBust":false,"isBlackjack":false,"status":"in_progress"}`
	a, calls := newTestAuthority(t, map[string]string{
		"POST /games/g-1/players":           `{"playerId":"p-1","name":"bob","hand":[]}`,
		"POST /games/g-1/players/p-1/hit":   hitResp,
		"POST /games/g-1/players/p-1/stand": `{"status":"in_progress"}`,
	})
	ctx := context.Background()

	player, err := a.AddPlayer(ctx, "s-1", "g-1", "bob")
	require.NoError(t, err)
	assert.Equal(t, "p-1", player.PlayerID)
	assert.JSONEq(t, `{"name":"bob"}`, calls.get()[0].body)
	assert.Equal(t, "/games/g-1/players", calls.get()[0].path)

	hit, err := a.Hit(ctx, "s-1", "g-1", "p-1")
	require.NoError(t, err)
	require.Len(t, hit.Hand, 3)
	assert.Equal(t, 19, hit.Hand.Score(false).Value)
	assert.Equal(t, StatusInProgress, hit.Status)

	stand, err := a.Stand(ctx, "s-1", "g-1", "p-1")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, stand.Status)
}

func TestStateAndResults(t *testing.T) {
	state := `{"gameId":"g-1","status":"finished","remainingCards":40,
		"players":[{"playerId":"p-1","name":"bob","hand":[{"rank":"K","suit":"hearts","faceUp":true},{"rank":"9","suit":"clubs","faceUp":true}]}],
		"dealer":{"hand":[{"rank":"10","suit":"spades","faceUp":true},{"rank":"8","suit":"diamonds","faceUp":false}]}}`
	a, _ := newTestAuthority(t, map[string]string{
		"GET /games/g-1":         state,
		"GET /games/g-1/results": `{"players":[{"playerId":"p-1","outcome":"win"}],"dealer":{"hand":[]}}`,
	})
	ctx := context.Background()

	game, err := a.State(ctx, "s-1", "g-1")
	require.NoError(t, err)
	assert.True(t, game.Finished())
	require.NotNil(t, game.Player("p-1"))
	assert.Nil(t, game.Player("p-2"))
	assert.Equal(t, 10, game.Dealer.Hand.Score(false).Value)
	assert.Equal(t, 18, game.Dealer.Hand.Score(true).Value)

	results, err := a.Results(ctx, "s-1", "g-1")
	require.NoError(t, err)
	outcome, ok := results.OutcomeFor("p-1")
	assert.True(t, ok)
	assert.Equal(t, blackjack.OutcomeWin, outcome)
	_, ok = results.OutcomeFor("p-2")
	assert.False(t, ok)
}

func TestUnknownGame(t *testing.T) {
	a, _ := newTestAuthority(t, map[string]string{})
	_, err := a.Shuffle(context.Background(), "s-1", "missing")
	require.Error(t, err)
	assert.Equal(t, failure.KindClient, failure.KindOf(err))
	assert.Equal(t, http.StatusNotFound, failure.StatusOf(err))
	assert.Contains(t, err.Error(), "game not found")
}
