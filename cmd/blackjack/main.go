package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"voyager.com/blackjack/internal/config"
	"voyager.com/blackjack/internal/logging"
	"voyager.com/blackjack/internal/round"
	"voyager.com/blackjack/internal/util"
)

var (
	cmdArgs    arg
	mainLogger = logging.GetZeroLogger("main::main", nil)
)

type arg struct {
	configFile string
	rounds     int
	bet        float64
	standOn    int
}

func init() {
	flag.StringVar(&cmdArgs.configFile, "config", "", "Client config YAML file")
	flag.IntVar(&cmdArgs.rounds, "rounds", 1, "Number of rounds to play")
	flag.Float64Var(&cmdArgs.bet, "bet", 0, "Bet per round. Defaults to the minimum bet.")
	flag.IntVar(&cmdArgs.standOn, "stand-on", 17, "Hit until the hand value reaches this number")
	flag.Parse()
}

func main() {
	os.Exit(run())
}

func run() int {
	zerolog.SetGlobalLevel(util.Env.GetZeroLogLogLevel())

	cfg, err := config.Load(cmdArgs.configFile)
	if err != nil {
		mainLogger.Error().Msgf("Error while loading config: %+v", err)
		return 1
	}
	bet := cmdArgs.bet
	if bet == 0 {
		bet = cfg.MinBet
	}

	store, cleanup, err := round.NewStoreFromConfig(cfg, nil)
	if err != nil {
		mainLogger.Error().Msgf("Error while creating the round store: %+v", err)
		return 1
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for i := 1; i <= cmdArgs.rounds; i++ {
		err := playRound(ctx, store, bet, cmdArgs.standOn)
		snapshot := store.Snapshot()
		if err != nil {
			mainLogger.Error().Msgf("Round %d failed: %s", i, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		fmt.Printf("Round %d: %s\n", i, describe(snapshot))
	}
	fmt.Printf("Final balance: %.2f\n", store.Balance())
	return 0
}

// playRound plays one round, hitting until the hand reaches standOn.
func playRound(ctx context.Context, store *round.Store, bet float64, standOn int) error {
	if err := store.NewRound(); err != nil {
		return err
	}
	if err := store.PlaceBet(bet); err != nil {
		return err
	}
	if err := store.DealInitialCards(ctx); err != nil {
		return err
	}
	for store.State() == round.RoundState__PLAYING {
		snapshot := store.Snapshot()
		if snapshot.Player.Score.Value >= standOn {
			if err := store.Stand(ctx); err != nil {
				return err
			}
			break
		}
		if err := store.Hit(ctx); err != nil {
			return err
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	if err := store.Wait(waitCtx); err != nil {
		return err
	}
	snapshot := store.Snapshot()
	if snapshot.Result == nil {
		return errors.Errorf("Round ended in state %s without a result", snapshot.Status)
	}
	return nil
}

func describe(s round.Snapshot) string {
	var player, dealer string
	if s.Player != nil {
		player = fmt.Sprintf("%s (%d)", s.Player.Hand, s.Player.Score.Value)
	}
	if s.Dealer != nil {
		dealer = fmt.Sprintf("%s (%d)", s.Dealer.Hand, s.Dealer.Score.Value)
	}
	return fmt.Sprintf("player %s dealer %s => %s, payout %.2f, balance %.2f",
		player, dealer, s.Result.Outcome, s.Result.Payout, s.Balance)
}
