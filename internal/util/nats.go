package util

import "fmt"

// GetRoundEventSubject returns the nats subject the round transitions are published on.
func GetRoundEventSubject(playerName string) string {
	return fmt.Sprintf("blackjack.round.%s", playerName)
}
