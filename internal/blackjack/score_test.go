package blackjack

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func up(r Rank) Card {
	return Card{Rank: r, Suit: Spades, FaceUp: true}
}

func down(r Rank) Card {
	return Card{Rank: r, Suit: Hearts, FaceUp: false}
}

func TestScore(t *testing.T) {
	testCases := []struct {
		name      string
		cards     []Card
		revealAll bool
		expected  HandScore
	}{
		{
			name:     "empty",
			cards:    nil,
			expected: HandScore{},
		},
		{
			name:     "two aces and nine",
			cards:    []Card{up(Ace), up(Ace), up(9)},
			expected: HandScore{Value: 21, IsSoft: true},
		},
		{
			name:     "three card twenty one",
			cards:    []Card{up(Ace), up(King), up(Queen)},
			expected: HandScore{Value: 21},
		},
		{
			name:     "bust",
			cards:    []Card{up(10), up(10), up(5)},
			expected: HandScore{Value: 25, IsBust: true},
		},
		{
			name:     "natural",
			cards:    []Card{up(Ace), up(Jack)},
			expected: HandScore{Value: 21, IsSoft: true, IsBlackjack: true},
		},
		{
			name:     "soft seventeen",
			cards:    []Card{up(Ace), up(6)},
			expected: HandScore{Value: 17, IsSoft: true},
		},
		{
			name:     "soft becomes hard",
			cards:    []Card{up(Ace), up(6), up(9)},
			expected: HandScore{Value: 16},
		},
		{
			name:     "four aces",
			cards:    []Card{up(Ace), up(Ace), up(Ace), up(Ace)},
			expected: HandScore{Value: 14, IsSoft: true},
		},
		{
			name:     "hole card hidden",
			cards:    []Card{up(King), down(Ace)},
			expected: HandScore{Value: 10},
		},
		{
			name:      "hole card revealed",
			cards:     []Card{up(King), down(Ace)},
			revealAll: true,
			expected:  HandScore{Value: 21, IsSoft: true, IsBlackjack: true},
		},
		{
			name:     "all hidden",
			cards:    []Card{down(King), down(Ace)},
			expected: HandScore{},
		},
	}
	for _, tc := range testCases {
		got := Score(tc.cards, tc.revealAll)
		if !cmp.Equal(got, tc.expected) {
			t.Errorf("%s: %s", tc.name, cmp.Diff(tc.expected, got))
		}
	}
}

func TestScoreIdempotent(t *testing.T) {
	cards := []Card{up(Ace), up(5), up(Ace), up(9)}
	before := append([]Card(nil), cards...)
	first := Score(cards, false)
	second := Score(cards, false)
	if !cmp.Equal(first, second) {
		t.Errorf("scores differ: %s", cmp.Diff(first, second))
	}
	if !cmp.Equal(before, cards) {
		t.Errorf("Score mutated the cards: %s", cmp.Diff(before, cards))
	}
}

func TestScoreOrderIndependent(t *testing.T) {
	hands := [][]Card{
		{up(Ace), up(Ace), up(9)},
		{up(Ace), up(King), up(Queen)},
		{up(10), up(10), up(5)},
		{up(Ace), up(2), up(Ace), up(7)},
		{up(5), up(Ace), up(Jack)},
	}
	for _, hand := range hands {
		expected := Score(hand, true)
		permute(hand, 0, func(p []Card) {
			got := Score(p, true)
			if !cmp.Equal(got, expected) {
				t.Errorf("hand %v permutation %v: %s", Hand(hand), Hand(p), cmp.Diff(expected, got))
			}
		})
	}
}

func permute(cards []Card, k int, visit func([]Card)) {
	if k == len(cards) {
		visit(append([]Card(nil), cards...))
		return
	}
	for i := k; i < len(cards); i++ {
		cards[k], cards[i] = cards[i], cards[k]
		permute(cards, k+1, visit)
		cards[k], cards[i] = cards[i], cards[k]
	}
}

func TestRevealAll(t *testing.T) {
	hand := Hand{up(King), down(6)}
	revealed := RevealAll(hand)
	if hand[1].FaceUp {
		t.Errorf("RevealAll modified the original hand")
	}
	for i, c := range revealed {
		if !c.FaceUp {
			t.Errorf("card %d is still face down", i)
		}
	}
	if v := revealed.Score(false).Value; v != 16 {
		t.Errorf("revealed value = %d, expected 16", v)
	}
}
