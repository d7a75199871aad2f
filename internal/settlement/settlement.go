package settlement

import (
	"voyager.com/blackjack/internal/blackjack"
)

// Payout multipliers applied to the bet.
const (
	BlackjackMultiplier = 2.5
	WinMultiplier       = 2.0
	PushMultiplier      = 1.0
)

type Result struct {
	Outcome    blackjack.Outcome `json:"outcome"`
	Payout     float64           `json:"payout"`
	NewBalance float64           `json:"newBalance"`
}

// Multiplier returns the payout multiplier for the outcome. Anything that is not
// a blackjack, win or push pays nothing.
func Multiplier(outcome blackjack.Outcome) float64 {
	switch outcome {
	case blackjack.OutcomeBlackjack:
		return BlackjackMultiplier
	case blackjack.OutcomeWin:
		return WinMultiplier
	case blackjack.OutcomePush:
		return PushMultiplier
	default:
		return 0
	}
}

// Settle computes the payout of a finished round. balanceAfterDebit is the balance
// with the bet already reserved.
func Settle(bet float64, balanceAfterDebit float64, outcome blackjack.Outcome) Result {
	payout := bet * Multiplier(outcome)
	return Result{
		Outcome:    outcome,
		Payout:     payout,
		NewBalance: balanceAfterDebit + payout,
	}
}
