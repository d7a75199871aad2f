package blackjack

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func TestParseRank(t *testing.T) {
	testCases := []struct {
		in       string
		expected Rank
		fail     bool
	}{
		{in: "A", expected: Ace},
		{in: "a", expected: Ace},
		{in: "10", expected: 10},
		{in: "K", expected: King},
		{in: " q ", expected: Queen},
		{in: "1", expected: Ace},
		{in: "13", expected: King},
		{in: "0", fail: true},
		{in: "14", fail: true},
		{in: "Z", fail: true},
	}
	for _, tc := range testCases {
		got, err := ParseRank(tc.in)
		if tc.fail {
			if err == nil {
				t.Errorf("ParseRank(%q) expected an error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRank(%q) returned %s", tc.in, err)
			continue
		}
		if got != tc.expected {
			t.Errorf("ParseRank(%q) = %v, expected %v", tc.in, got, tc.expected)
		}
	}
}

func TestCardJSON(t *testing.T) {
	var cards []Card
	data := `[{"rank":"A","suit":"spades","faceUp":true},{"rank":12,"suit":"hearts","faceUp":false},{"rank":"7","suit":"clubs","faceUp":true}]`
	if err := json.Unmarshal([]byte(data), &cards); err != nil {
		t.Fatal(err)
	}
	expected := []Card{
		{Rank: Ace, Suit: Spades, FaceUp: true},
		{Rank: Queen, Suit: Hearts, FaceUp: false},
		{Rank: 7, Suit: Clubs, FaceUp: true},
	}
	if !cmp.Equal(cards, expected) {
		t.Error(cmp.Diff(expected, cards))
	}

	out, err := json.Marshal(cards[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"rank":"A","suit":"spades","faceUp":true}` {
		t.Errorf("unexpected json %s", string(out))
	}

	var bad Card
	if err := json.Unmarshal([]byte(`{"rank":2.5}`), &bad); err == nil {
		t.Errorf("expected an error for a fractional rank")
	}
}

func TestCardString(t *testing.T) {
	hand := Hand{{Rank: Ace, Suit: Spades, FaceUp: true}, {Rank: 10, Suit: Hearts, FaceUp: true}, {Rank: King, Suit: Clubs}}
	if s := hand.String(); s != "[A♠ 10♥ ??]" {
		t.Errorf("unexpected hand string %s", s)
	}
}
