package round

import (
	"context"
	"time"

	"voyager.com/blackjack/internal/blackjack"
	"voyager.com/blackjack/internal/failure"
	"voyager.com/blackjack/internal/logging"
	"voyager.com/blackjack/internal/notify"
)

// startPoll starts the dealer turn poll loop for the session. The store lock must be held.
func (s *Store) startPoll(sess *Session) {
	s.stopPoll()
	ctx, cancel := context.WithCancel(context.Background())
	s.pollCancel = cancel
	s.pollWg.Add(1)
	go func() {
		defer s.pollWg.Done()
		s.pollDealer(ctx, sess)
	}()
}

// stopPoll cancels the running poll loop, if any. The store lock must be held.
func (s *Store) stopPoll() {
	if s.pollCancel != nil {
		s.pollCancel()
		s.pollCancel = nil
	}
}

// pollDealer asks the authority for the game state on a fixed interval until the
// dealer turn is over or the poll limit is reached.
func (s *Store) pollDealer(ctx context.Context, sess *Session) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	logger := s.logger.With().Str(logging.SessionIDKey, sess.ID).Logger()
	for attempt := 1; attempt <= s.cfg.PollMaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if !s.stillPolling(ctx, sess) {
			return
		}

		logger.Debug().Msgf("Polling dealer turn (%d/%d)", attempt, s.cfg.PollMaxAttempts)
		state, err := s.authority.State(ctx, sess.ID, sess.GameID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.pollError(sess, "state", err)
			continue
		}
		if !s.applyDealerState(sess, state.Dealer.Hand, state.RemainingCards) {
			return
		}
		if !state.Finished() {
			continue
		}

		results, err := s.authority.Results(ctx, sess.ID, sess.GameID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.pollError(sess, "results", err)
			continue
		}
		s.lock()
		if s.isCurrent(sess) {
			s.settle(sess, results)
		}
		s.unlock()
		return
	}

	s.pollTimedOut(sess)
}

func (s *Store) stillPolling(ctx context.Context, sess *Session) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ctx.Err() == nil && s.isCurrent(sess) && !sess.settled
}

// applyDealerState replaces the dealer hand with the polled one. Every dealer card is
// shown once the player's turn is over, whatever the authority reports.
func (s *Store) applyDealerState(sess *Session, dealer blackjack.Hand, remainingCards int) bool {
	s.lock()
	defer s.unlock()
	if !s.isCurrent(sess) || sess.settled {
		return false
	}
	sess.Dealer = blackjack.RevealAll(dealer)
	sess.RemainingCards = remainingCards
	return true
}

func (s *Store) pollError(sess *Session, op string, err error) {
	s.lock()
	defer s.unlock()
	if s.isCurrent(sess) {
		s.recordError(op, err)
	}
}

// pollTimedOut finishes the round as unresolved. Nothing is paid out.
func (s *Store) pollTimedOut(sess *Session) {
	s.lock()
	defer s.unlock()
	if !s.isCurrent(sess) || sess.settled {
		return
	}
	err := failure.Timeout("dealerPoll", "Dealer turn did not finish within the poll limit").WithSession(sess.ID)
	s.logger.Error().
		Str(logging.SessionIDKey, sess.ID).
		Int(logging.AttemptKey, s.cfg.PollMaxAttempts).
		Msg("Dealer turn did not finish within the poll limit")

	ev := s.newEvent(notify.EventPollTimeout)
	ev.Error = err.Error()
	ev.ErrorKind = string(failure.KindTimeout)
	s.pending = append(s.pending, ev)

	sess.Dealer = blackjack.RevealAll(sess.Dealer)
	s.finish(sess, blackjack.OutcomeUnresolved, err)
}
