package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"voyager.com/blackjack/internal/failure"
	"voyager.com/blackjack/internal/logging"
	"voyager.com/blackjack/internal/round"
)

var restLogger = logging.GetZeroLogger("app::rest", nil)

// maxWait bounds how long a '/stand?wait=true' request waits for the dealer turn.
const maxWait = 2 * time.Minute

type server struct {
	store *round.Store
}

// BetPayload is the payload for the '/bet' endpoint.
type BetPayload struct {
	Amount float64 `json:"amount"`
}

// NewRouter registers the control endpoints of the round store.
func NewRouter(store *round.Store) *gin.Engine {
	s := &server{store: store}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/state", s.state)
	r.GET("/history", s.history)
	r.POST("/bet", s.bet)
	r.POST("/deal", s.deal)
	r.POST("/hit", s.hit)
	r.POST("/stand", s.stand)
	r.POST("/new-round", s.newRound)
	return r
}

// RunRestServer runs the control server until it fails.
func RunRestServer(portNo uint, store *round.Store) error {
	return NewRouter(store).Run(fmt.Sprintf(":%d", portNo))
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *server) state(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Snapshot())
}

func (s *server) history(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.History())
}

func (s *server) bet(c *gin.Context) {
	var payload BetPayload
	err := c.BindJSON(&payload)
	if err != nil {
		errMsg := fmt.Sprintf("Failed to parse payload. Error: %s", err)
		restLogger.Error().Msg(errMsg)
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}
	s.respond(c, "bet", s.store.PlaceBet(payload.Amount))
}

func (s *server) deal(c *gin.Context) {
	s.respond(c, "deal", s.store.DealInitialCards(c.Request.Context()))
}

func (s *server) hit(c *gin.Context) {
	s.respond(c, "hit", s.store.Hit(c.Request.Context()))
}

func (s *server) stand(c *gin.Context) {
	err := s.store.Stand(c.Request.Context())
	if err == nil && c.Query("wait") == "true" {
		ctx, cancel := context.WithTimeout(c.Request.Context(), maxWait)
		defer cancel()
		err = s.store.Wait(ctx)
	}
	s.respond(c, "stand", err)
}

func (s *server) newRound(c *gin.Context) {
	s.respond(c, "newRound", s.store.NewRound())
}

func (s *server) respond(c *gin.Context, action string, err error) {
	snapshot := s.store.Snapshot()
	if err == nil {
		c.JSON(http.StatusOK, snapshot)
		return
	}
	status := httpStatus(err)
	restLogger.Error().Err(err).
		Str(logging.ActionKey, action).
		Str(logging.SessionIDKey, snapshot.SessionID).
		Msg("Round action failed")
	c.JSON(status, gin.H{
		"error": err.Error(),
		"kind":  failure.KindOf(err),
		"state": snapshot,
	})
}

func httpStatus(err error) int {
	if errors.Is(err, failure.ErrStale) {
		return http.StatusConflict
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch failure.KindOf(err) {
	case failure.KindValidation:
		return http.StatusBadRequest
	case failure.KindTimeout:
		return http.StatusGatewayTimeout
	case failure.KindClient, failure.KindServer, failure.KindNetwork:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
