package round

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"voyager.com/blackjack/internal/api"
	"voyager.com/blackjack/internal/blackjack"
	"voyager.com/blackjack/internal/caches"
	"voyager.com/blackjack/internal/config"
	"voyager.com/blackjack/internal/failure"
	"voyager.com/blackjack/internal/logging"
	"voyager.com/blackjack/internal/notify"
	"voyager.com/blackjack/internal/settlement"
	"voyager.com/blackjack/internal/util"
)

// Authority is the remote game authority. Implemented by *api.Authority.
type Authority interface {
	CreateGame(ctx context.Context, sessionID string, opts api.GameOptions) (*api.CreateGameResp, error)
	AddPlayer(ctx context.Context, sessionID string, gameID string, name string) (*api.PlayerResp, error)
	Shuffle(ctx context.Context, sessionID string, gameID string) (*api.ShuffleResp, error)
	Start(ctx context.Context, sessionID string, gameID string) (*api.GameState, error)
	Hit(ctx context.Context, sessionID string, gameID string, playerID string) (*api.HitResp, error)
	Stand(ctx context.Context, sessionID string, gameID string, playerID string) (*api.StandResp, error)
	State(ctx context.Context, sessionID string, gameID string) (*api.GameState, error)
	Results(ctx context.Context, sessionID string, gameID string) (*api.Results, error)
}

type Config struct {
	PlayerName      string
	MinBet          float64
	MaxBet          float64
	StartingBalance float64
	Game            api.GameOptions
	PollInterval    time.Duration
	PollMaxAttempts int
}

func NewConfig(c *config.Config) Config {
	return Config{
		PlayerName:      c.PlayerName,
		MinBet:          c.MinBet,
		MaxBet:          c.MaxBet,
		StartingBalance: c.StartingBalance,
		Game: api.GameOptions{
			DeckCount:   c.DeckCount,
			DeckVariant: c.DeckVariant,
			MaxPlayers:  c.MaxPlayers,
		},
		PollInterval:    c.PollInterval(),
		PollMaxAttempts: c.PollMaxAttempts,
	}
}

// Store owns the current round session and the balance. All mutations go through
// the action methods; authority calls are made without holding the lock and their
// responses are applied only if the session they were made for is still current.
type Store struct {
	cfg       Config
	authority Authority
	sink      notify.Sink
	history   *caches.RoundHistory
	logger    *zerolog.Logger

	printStateMsg bool

	mu      sync.RWMutex
	sm      *fsm.FSM
	balance float64
	session *Session
	loading bool
	lastErr error
	closed  bool
	pending []notify.Event

	pollCancel context.CancelFunc
	pollWg     sync.WaitGroup
}

// NewStore creates the round store in the betting state. sink, history and logger are optional.
func NewStore(cfg Config, authority Authority, sink notify.Sink, history *caches.RoundHistory, logger *zerolog.Logger) (*Store, error) {
	if authority == nil {
		return nil, fmt.Errorf("Authority is not set")
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("Invalid dealer poll interval [%s]", cfg.PollInterval)
	}
	if cfg.PollMaxAttempts <= 0 {
		return nil, fmt.Errorf("Invalid dealer poll max attempts [%d]", cfg.PollMaxAttempts)
	}
	if logger == nil {
		logger = logging.GetZeroLogger("round::store", nil)
	}
	l := logger.With().Str(logging.PlayerKey, cfg.PlayerName).Logger()
	if sink == nil {
		sink = notify.Multi()
	}

	s := &Store{
		cfg:           cfg,
		authority:     authority,
		sink:          sink,
		history:       history,
		logger:        &l,
		printStateMsg: util.Env.ShouldPrintStateMsg(),
		balance:       cfg.StartingBalance,
	}
	s.sm = fsm.NewFSM(
		RoundState__BETTING,
		fsm.Events{
			{
				Name: RoundEvent__PLACE_BET,
				Src:  []string{RoundState__BETTING},
				Dst:  RoundState__CREATING,
			},
			{
				Name: RoundEvent__DEAL,
				Src:  []string{RoundState__CREATING},
				Dst:  RoundState__PLAYING,
			},
			{
				Name: RoundEvent__STAND,
				Src:  []string{RoundState__PLAYING},
				Dst:  RoundState__DEALER_TURN,
			},
			{
				Name: RoundEvent__SETTLE,
				Src:  []string{RoundState__PLAYING, RoundState__DEALER_TURN},
				Dst:  RoundState__FINISHED,
			},
			{
				Name: RoundEvent__RESET,
				Src: []string{
					RoundState__CREATING,
					RoundState__PLAYING,
					RoundState__DEALER_TURN,
					RoundState__FINISHED,
				},
				Dst: RoundState__BETTING,
			},
		},
		fsm.Callbacks{
			"enter_state": func(e *fsm.Event) { s.enterState(e) },
		},
	)
	util.Metrics.SetBalance(s.balance)
	return s, nil
}

// enterState is called by the state machine. The store lock is held.
func (s *Store) enterState(e *fsm.Event) {
	if s.printStateMsg {
		s.logger.Info().Msgf("[%s] ===> [%s]", e.Src, e.Dst)
	}
	ev := s.newEvent(notify.EventTransition)
	ev.Src = e.Src
	ev.Dst = e.Dst
	s.pending = append(s.pending, ev)
}

// event fires a state machine event. The store lock must be held.
func (s *Store) event(event string) error {
	err := s.sm.Event(event)
	if err != nil {
		s.logger.Warn().Msgf("Error from state machine: %s", err.Error())
	}
	return err
}

func (s *Store) newEvent(t notify.EventType) notify.Event {
	ev := notify.Event{
		Type:       t,
		PlayerName: s.cfg.PlayerName,
		Balance:    s.balance,
		Time:       time.Now(),
	}
	if s.session != nil {
		ev.SessionID = s.session.ID
		ev.GameID = s.session.GameID
	}
	return ev
}

func (s *Store) lock() {
	s.mu.Lock()
}

// unlock releases the lock and delivers the events collected while it was held.
func (s *Store) unlock() {
	events := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, e := range events {
		s.emit(e)
	}
}

func (s *Store) emit(e notify.Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Msgf("Event sink panicked: %v", r)
		}
	}()
	s.sink.Notify(e)
}

// begin checks that the action is allowed and marks the store as loading.
// The store lock must be held.
func (s *Store) begin(op string, states ...string) (*Session, error) {
	if s.closed {
		return nil, failure.Validation(op, "Round store is closed")
	}
	if s.loading {
		return nil, failure.Validation(op, "Another action is in progress")
	}
	current := s.sm.Current()
	allowed := false
	for _, state := range states {
		if current == state {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, failure.Validation(op, "Not allowed in state %s", current)
	}
	s.loading = true
	return s.session, nil
}

// isCurrent reports whether the session is still the current one. The store lock must be held.
func (s *Store) isCurrent(sess *Session) bool {
	return !s.closed && s.session != nil && s.session == sess
}

func staleError(op string, sess *Session) error {
	return errors.Wrapf(failure.ErrStale, "Discarding %s response for session %s", op, sess.ID)
}

// fail records the error of a network-backed action and leaves the session data untouched.
// The store lock must be held.
func (s *Store) fail(sess *Session, op string, err error) error {
	if !s.isCurrent(sess) {
		return staleError(op, sess)
	}
	s.loading = false
	s.recordError(op, err)
	return err
}

func (s *Store) recordError(op string, err error) {
	s.lastErr = err
	ev := s.newEvent(notify.EventError)
	ev.Action = op
	ev.Error = err.Error()
	ev.ErrorKind = string(failure.KindOf(err))
	s.pending = append(s.pending, ev)
}

// PlaceBet validates the amount and reserves it from the balance.
func (s *Store) PlaceBet(amount float64) error {
	s.lock()
	defer s.unlock()

	if _, err := s.begin("placeBet", RoundState__BETTING); err != nil {
		return err
	}
	s.loading = false

	if !(amount >= s.cfg.MinBet) {
		return failure.Validation("placeBet", "Bet %v is below the minimum bet %v", amount, s.cfg.MinBet)
	}
	if amount > s.cfg.MaxBet {
		return failure.Validation("placeBet", "Bet %v is above the maximum bet %v", amount, s.cfg.MaxBet)
	}
	if amount > s.balance {
		return failure.Validation("placeBet", "Bet %v exceeds the balance %v", amount, s.balance)
	}

	s.session = newSession(uuid.New().String(), amount)
	s.balance -= amount
	s.lastErr = nil
	return s.event(RoundEvent__PLACE_BET)
}

// DealInitialCards creates the game on the authority, seats the player and deals.
// Any failure refunds the bet and returns the round to betting.
func (s *Store) DealInitialCards(ctx context.Context) error {
	s.lock()
	sess, err := s.begin("deal", RoundState__CREATING)
	s.unlock()
	if err != nil {
		return err
	}

	game, err := s.authority.CreateGame(ctx, sess.ID, s.cfg.Game)
	if err != nil {
		return s.abortDeal(sess, "createGame", err)
	}
	player, err := s.authority.AddPlayer(ctx, sess.ID, game.GameID, s.cfg.PlayerName)
	if err != nil {
		return s.abortDeal(sess, "addPlayer", err)
	}
	if _, err = s.authority.Shuffle(ctx, sess.ID, game.GameID); err != nil {
		return s.abortDeal(sess, "shuffle", err)
	}
	state, err := s.authority.Start(ctx, sess.ID, game.GameID)
	if err != nil {
		return s.abortDeal(sess, "start", err)
	}
	dealt := state.Player(player.PlayerID)
	if dealt == nil {
		err = (&failure.Error{
			Kind: failure.KindClient,
			Op:   "start",
			Msg:  fmt.Sprintf("Player %s is missing from the game state", player.PlayerID),
		}).WithSession(sess.ID)
		return s.abortDeal(sess, "start", err)
	}

	s.lock()
	if !s.isCurrent(sess) {
		s.unlock()
		return staleError("deal", sess)
	}
	sess.GameID = game.GameID
	sess.Player = &Player{
		ID:   player.PlayerID,
		Name: player.Name,
		Hand: copyHand(dealt.Hand),
	}
	sess.Dealer = copyHand(state.Dealer.Hand)
	sess.RemainingCards = state.RemainingCards
	s.lastErr = nil
	if err := s.event(RoundEvent__DEAL); err != nil {
		s.loading = false
		s.unlock()
		return err
	}
	finished := state.Finished()
	if !finished {
		s.loading = false
	}
	s.unlock()

	if finished {
		// A natural blackjack ends the round at the deal.
		return s.resolve(ctx, sess)
	}
	return nil
}

// abortDeal rolls back the bet reservation and returns to betting.
func (s *Store) abortDeal(sess *Session, op string, err error) error {
	s.lock()
	defer s.unlock()
	if !s.isCurrent(sess) {
		return staleError(op, sess)
	}
	s.logger.Error().Err(err).
		Str(logging.SessionIDKey, sess.ID).
		Str(logging.ActionKey, op).
		Msgf("Deal failed. Refunding bet %v", sess.Bet)
	s.balance += sess.Bet
	s.recordError(op, err)
	s.event(RoundEvent__RESET)
	s.session = nil
	s.loading = false
	sess.endTurn()
	return err
}

// Hit draws a card for the player. A bust moves the round on to the settlement.
func (s *Store) Hit(ctx context.Context) error {
	s.lock()
	sess, err := s.begin("hit", RoundState__PLAYING)
	if err == nil {
		score := sess.Player.Hand.Score(true)
		if sess.Player.Standing || score.IsBust {
			s.loading = false
			err = failure.Validation("hit", "Player can not hit with hand %s (value %d)", sess.Player.Hand, score.Value)
		}
	}
	var gameID, playerID string
	if err == nil {
		gameID = sess.GameID
		playerID = sess.Player.ID
	}
	s.unlock()
	if err != nil {
		return err
	}

	resp, err := s.authority.Hit(ctx, sess.ID, gameID, playerID)

	s.lock()
	if err != nil {
		defer s.unlock()
		return s.fail(sess, "hit", err)
	}
	if !s.isCurrent(sess) {
		s.unlock()
		return staleError("hit", sess)
	}
	sess.Player.Hand = copyHand(resp.Hand)
	score := sess.Player.Hand.Score(true)
	bust := resp.IsBust || score.IsBust
	finished := resp.Status == api.StatusFinished
	s.logger.Debug().
		Str(logging.SessionIDKey, sess.ID).
		Str(logging.PlayerIDKey, playerID).
		Int("value", score.Value).
		Bool("bust", bust).
		Bool("blackjack", resp.IsBlackjack).
		Msgf("Player hit: %s", sess.Player.Hand)
	if !finished {
		s.loading = false
		if bust {
			s.enterDealerTurn(sess)
		}
	}
	s.unlock()

	if finished {
		return s.resolve(ctx, sess)
	}
	return nil
}

// Stand ends the player's turn. The dealer turn is played by the authority and
// polled until the round is finished.
func (s *Store) Stand(ctx context.Context) error {
	s.lock()
	sess, err := s.begin("stand", RoundState__PLAYING)
	var gameID, playerID string
	if err == nil {
		gameID = sess.GameID
		playerID = sess.Player.ID
	}
	s.unlock()
	if err != nil {
		return err
	}

	resp, err := s.authority.Stand(ctx, sess.ID, gameID, playerID)

	s.lock()
	if err != nil {
		defer s.unlock()
		return s.fail(sess, "stand", err)
	}
	if !s.isCurrent(sess) {
		s.unlock()
		return staleError("stand", sess)
	}
	sess.Player.Standing = true
	finished := resp.Status == api.StatusFinished
	s.logger.Debug().
		Str(logging.SessionIDKey, sess.ID).
		Str(logging.PlayerIDKey, playerID).
		Str(logging.StatusKey, resp.Status).
		Msgf("Player stands on %d", sess.Player.Hand.Score(true).Value)
	if !finished {
		s.loading = false
		s.enterDealerTurn(sess)
	}
	s.unlock()

	if finished {
		return s.resolve(ctx, sess)
	}
	return nil
}

// enterDealerTurn moves to the dealer turn and starts polling. The store lock must be held.
func (s *Store) enterDealerTurn(sess *Session) {
	sess.Player.Standing = true
	sess.Dealer = blackjack.RevealAll(sess.Dealer)
	if err := s.event(RoundEvent__STAND); err != nil {
		return
	}
	s.startPoll(sess)
}

// resolve fetches the results of a round the authority reported as finished and settles it.
// The store is loading when it is called. If the results can not be fetched the round
// moves to the dealer turn and the poll loop keeps trying.
func (s *Store) resolve(ctx context.Context, sess *Session) error {
	results, err := s.authority.Results(ctx, sess.ID, sess.GameID)

	s.lock()
	defer s.unlock()
	if !s.isCurrent(sess) {
		return staleError("results", sess)
	}
	s.loading = false
	if err != nil {
		s.recordError("results", err)
		if s.sm.Current() == RoundState__PLAYING {
			s.enterDealerTurn(sess)
		}
		return err
	}
	return s.settle(sess, results)
}

// settle applies the payout exactly once per session and finishes the round.
// It returns the error the round was settled with, if any. The store lock must be held.
func (s *Store) settle(sess *Session, results *api.Results) error {
	if sess.settled {
		return nil
	}
	outcome, ok := results.OutcomeFor(sess.Player.ID)
	var settleErr error
	if !ok {
		outcome = blackjack.OutcomeUnresolved
		settleErr = (&failure.Error{
			Kind: failure.KindClient,
			Op:   "results",
			Msg:  fmt.Sprintf("No outcome reported for player %s", sess.Player.ID),
		}).WithSession(sess.ID)
	}
	if len(results.Dealer.Hand) > 0 {
		sess.Dealer = blackjack.RevealAll(results.Dealer.Hand)
	} else {
		sess.Dealer = blackjack.RevealAll(sess.Dealer)
	}
	s.finish(sess, outcome, settleErr)
	return settleErr
}

// finish settles the session with the outcome. The store lock must be held.
func (s *Store) finish(sess *Session, outcome blackjack.Outcome, err error) {
	sess.settled = true
	result := settlement.Settle(sess.Bet, s.balance, outcome)
	s.balance = result.NewBalance
	sess.Result = &result
	s.stopPoll()

	if err != nil {
		s.recordError("settle", err)
	}
	s.event(RoundEvent__SETTLE)
	sess.endTurn()

	ev := s.newEvent(notify.EventSettled)
	ev.Outcome = result.Outcome
	ev.Payout = result.Payout
	s.pending = append(s.pending, ev)

	if s.history != nil {
		record := caches.RoundRecord{
			SessionID:   sess.ID,
			GameID:      sess.GameID,
			Bet:         sess.Bet,
			Outcome:     result.Outcome,
			Payout:      result.Payout,
			Balance:     result.NewBalance,
			PlayerHand:  copyHand(sess.Player.Hand),
			DealerHand:  copyHand(sess.Dealer),
			PlayerValue: sess.Player.Hand.Score(true).Value,
			DealerValue: sess.Dealer.Score(true).Value,
			FinishedAt:  time.Now(),
		}
		if err != nil {
			record.Error = err.Error()
		}
		if herr := s.history.Add(record); herr != nil {
			s.logger.Warn().Err(herr).Msg("Could not record the round in the history")
		}
	}
}

// NewRound discards the current session and returns to betting. The balance is not touched.
func (s *Store) NewRound() error {
	s.lock()
	defer s.unlock()
	if s.closed {
		return failure.Validation("newRound", "Round store is closed")
	}
	s.stopPoll()
	var err error
	if s.sm.Current() != RoundState__BETTING {
		err = s.event(RoundEvent__RESET)
	}
	if s.session != nil {
		s.session.endTurn()
	}
	s.session = nil
	s.loading = false
	s.lastErr = nil
	return err
}

// Wait blocks until the current session leaves the dealer turn.
func (s *Store) Wait(ctx context.Context) error {
	s.mu.RLock()
	if s.session == nil || s.sm.Current() != RoundState__DEALER_TURN {
		s.mu.RUnlock()
		return nil
	}
	done := s.session.turnDone
	s.mu.RUnlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Close stops the poll loop. Responses that arrive afterwards are ignored.
func (s *Store) Close() {
	s.lock()
	s.closed = true
	s.stopPoll()
	if s.session != nil {
		s.session.endTurn()
	}
	s.unlock()
	s.pollWg.Wait()
}

func (s *Store) Balance() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance
}

func (s *Store) State() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sm.Current()
}

func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// History returns the settled rounds, oldest first.
func (s *Store) History() []caches.RoundRecord {
	if s.history == nil {
		return []caches.RoundRecord{}
	}
	return s.history.List()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := s.sm.Current()
	snap := Snapshot{
		Status:    status,
		Balance:   s.balance,
		Loading:   s.loading,
		Polling:   s.pollCancel != nil,
		LastError: s.lastErr,
		Error:     newErrorView(s.lastErr),
	}
	sess := s.session
	if sess == nil {
		return snap
	}
	snap.SessionID = sess.ID
	snap.GameID = sess.GameID
	snap.Bet = sess.Bet
	snap.RemainingCards = sess.RemainingCards
	if sess.Result != nil {
		result := *sess.Result
		snap.Result = &result
	}
	if sess.Player != nil {
		snap.Player = &PlayerView{
			ID:       sess.Player.ID,
			Name:     sess.Player.Name,
			Hand:     copyHand(sess.Player.Hand),
			Score:    sess.Player.Hand.Score(true),
			Standing: sess.Player.Standing,
		}
	}
	if sess.Dealer != nil {
		// The hole card stays hidden until the player's turn is over.
		revealAll := status == RoundState__DEALER_TURN || status == RoundState__FINISHED
		snap.Dealer = &DealerView{
			Hand:  copyHand(sess.Dealer),
			Score: sess.Dealer.Score(revealAll),
		}
	}
	return snap
}
