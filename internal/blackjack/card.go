package blackjack

import (
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Rank is the card rank, Ace=1 ... King=13.
type Rank int

const (
	Ace   Rank = 1
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

var rankSymbols = map[Rank]string{
	Ace:   "A",
	Jack:  "J",
	Queen: "Q",
	King:  "K",
}

// ParseRank parses a rank symbol (A, 2..10, J, Q, K) or a number 1..13.
func ParseRank(s string) (Rank, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for r, sym := range rankSymbols {
		if s == sym {
			return r, nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("Invalid rank [%s]", s)
	}
	r := Rank(n)
	if !r.Valid() {
		return 0, fmt.Errorf("Rank [%d] is out of range", n)
	}
	return r, nil
}

func (r Rank) Valid() bool {
	return r >= Ace && r <= King
}

// Points returns the value of the rank with the ace counted as 11.
func (r Rank) Points() int {
	switch {
	case r == Ace:
		return 11
	case r >= 10:
		return 10
	default:
		return int(r)
	}
}

func (r Rank) String() string {
	if sym, ok := rankSymbols[r]; ok {
		return sym
	}
	return strconv.Itoa(int(r))
}

func (r Rank) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(r.String())), nil
}

// UnmarshalJSON accepts both the symbolic ("A", "10", "K") and the numeric (1..13) form.
func (r *Rank) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &raw); err != nil {
		return err
	}
	var parsed Rank
	var err error
	switch v := raw.(type) {
	case string:
		parsed, err = ParseRank(v)
	case float64:
		parsed = Rank(int(v))
		if float64(parsed) != v || !parsed.Valid() {
			err = fmt.Errorf("Rank [%v] is out of range", v)
		}
	default:
		err = fmt.Errorf("Unsupported rank value %s", string(data))
	}
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

var suitSymbols = map[Suit]string{
	Hearts:   "♥",
	Diamonds: "♦",
	Clubs:    "♣",
	Spades:   "♠",
}

func (s Suit) String() string {
	if sym, ok := suitSymbols[Suit(strings.ToLower(string(s)))]; ok {
		return sym
	}
	return "?"
}

// Card is a dealt card. Cards are values and are never mutated after dealing.
type Card struct {
	Rank   Rank `json:"rank"`
	Suit   Suit `json:"suit"`
	FaceUp bool `json:"faceUp"`
}

func (c Card) String() string {
	if !c.FaceUp {
		return "??"
	}
	return c.Rank.String() + c.Suit.String()
}

// Hand is an ordered sequence of cards owned by a player or the dealer.
type Hand []Card

func (h Hand) Score(revealAll bool) HandScore {
	return Score(h, revealAll)
}

// RevealAll returns a copy of the hand with every card turned face up.
func RevealAll(h Hand) Hand {
	revealed := make(Hand, len(h))
	for i, c := range h {
		c.FaceUp = true
		revealed[i] = c
	}
	return revealed
}

func (h Hand) String() string {
	cards := make([]string, 0, len(h))
	for _, c := range h {
		cards = append(cards, c.String())
	}
	return "[" + strings.Join(cards, " ") + "]"
}
