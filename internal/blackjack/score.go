package blackjack

// HandScore holds the values derived from a hand. It is always computed from the cards.
type HandScore struct {
	Value       int  `json:"value"`
	IsSoft      bool `json:"isSoft"`
	IsBust      bool `json:"isBust"`
	IsBlackjack bool `json:"isBlackjack"`
}

// Score computes the blackjack value of the cards. Aces start at 11 and are reduced to 1,
// one at a time, while the total is over 21. With revealAll false only face up cards count.
func Score(cards []Card, revealAll bool) HandScore {
	total := 0
	softAces := 0
	counted := 0
	for _, c := range cards {
		if !revealAll && !c.FaceUp {
			continue
		}
		counted++
		total += c.Rank.Points()
		if c.Rank == Ace {
			softAces++
		}
	}
	for total > 21 && softAces > 0 {
		total -= 10
		softAces--
	}
	return HandScore{
		Value:       total,
		IsSoft:      softAces > 0,
		IsBust:      total > 21,
		IsBlackjack: counted == 2 && total == 21,
	}
}
