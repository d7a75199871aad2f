package failure

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	err := errors.Wrap(Server("hit", 503, "unavailable"), "Unable to hit")
	assert.Equal(t, KindServer, KindOf(err))
	assert.Equal(t, 503, StatusOf(err))
	assert.True(t, IsRetryable(err))

	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Network("state", errors.New("connection refused")).Retryable())
	assert.True(t, Server("state", 500, "").Retryable())
	assert.True(t, Timeout("state", "deadline exceeded").Retryable())
	assert.False(t, Client("state", 400, "bad request").Retryable())
	assert.False(t, Validation("placeBet", "amount %d below minimum", 1).Retryable())
}

func TestErrorMessage(t *testing.T) {
	err := Client("hit", 404, "game not found")
	assert.Equal(t, "client error in hit (status 404): game not found", err.Error())

	tagged := err.WithSession("g-1")
	assert.Equal(t, "g-1", tagged.SessionID)
	assert.Equal(t, "", err.SessionID)

	cause := errors.New("dial tcp: refused")
	netErr := Network("create", cause)
	assert.Equal(t, cause, errors.Cause(netErr))
	assert.True(t, errors.Is(netErr, cause))
}
