package blackjack

// Outcome is the result of a finished round for one player, as reported by the authority.
type Outcome string

const (
	OutcomeBlackjack Outcome = "blackjack"
	OutcomeWin       Outcome = "win"
	OutcomePush      Outcome = "push"
	OutcomeLose      Outcome = "lose"
	OutcomeBust      Outcome = "bust"

	// The dealer turn did not finish within the poll limit.
	OutcomeUnresolved Outcome = "unresolved"
)
