package poker

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Suit represents a card suit. The ordering is alphabetical (c < d < h < s),
// which the evaluator relies on when choosing a canonical best five.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// String returns the single-letter token for the suit.
func (s Suit) String() string {
	switch s {
	case Clubs:
		return "C"
	case Diamonds:
		return "D"
	case Hearts:
		return "H"
	case Spades:
		return "S"
	default:
		return "?"
	}
}

// Symbol returns the unicode glyph for the suit.
func (s Suit) Symbol() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// IsRed returns true for hearts and diamonds
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

func (s Suit) valid() bool {
	return s <= Spades
}

// Rank represents a card rank, 2 through 14 with the ace high.
type Rank uint8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const rankTokens = "23456789TJQKA"

// String returns the single-character token for the rank.
func (r Rank) String() string {
	if !r.valid() {
		return "?"
	}
	return string(rankTokens[r-Two])
}

func (r Rank) valid() bool {
	return r >= Two && r <= Ace
}

// Card is an immutable playing card. Two cards are the same card when both
// rank and suit match.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a new card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// Valid reports whether the card has an in-range rank and suit.
func (c Card) Valid() bool {
	return c.Rank.valid() && c.Suit.valid()
}

// String returns the token form of the card, e.g. "AS" or "TD".
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Pretty returns the card with a suit glyph, e.g. "A♠".
func (c Card) Pretty() string {
	return c.Rank.String() + c.Suit.Symbol()
}

// index returns a dense 0..51 index, suits major.
func (c Card) index() int {
	return int(c.Suit)*13 + int(c.Rank-Two)
}

// ParseCard parses a two-character token such as "AS", "as", "Td" or "10h".
func ParseCard(s string) (Card, error) {
	token := strings.ToUpper(strings.TrimSpace(s))
	if strings.HasPrefix(token, "10") {
		token = "T" + token[2:]
	}
	if len(token) != 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	idx := strings.IndexByte(rankTokens, token[0])
	if idx < 0 {
		return Card{}, fmt.Errorf("%w: bad rank in %q", ErrInvalidCard, s)
	}
	var suit Suit
	switch token[1] {
	case 'C':
		suit = Clubs
	case 'D':
		suit = Diamonds
	case 'H':
		suit = Hearts
	case 'S':
		suit = Spades
	default:
		return Card{}, fmt.Errorf("%w: bad suit in %q", ErrInvalidCard, s)
	}
	return Card{Rank: Two + Rank(idx), Suit: suit}, nil
}

// ParseCards parses a list of card tokens.
func ParseCards(tokens ...string) ([]Card, error) {
	cards := make([]Card, 0, len(tokens))
	for _, t := range tokens {
		c, err := ParseCard(t)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards is like ParseCards but panics on error. Intended for tests
// and static tables.
func MustParseCards(tokens ...string) []Card {
	cards, err := ParseCards(tokens...)
	if err != nil {
		panic(err)
	}
	return cards
}

// FormatCards joins card tokens with a space.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// MarshalJSON encodes the card as its token string.
func (c Card) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: rank=%d suit=%d", ErrInvalidCard, c.Rank, c.Suit)
	}
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a card from its token string.
func (c *Card) UnmarshalJSON(data []byte) error {
	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidCard, string(data))
	}
	parsed, err := ParseCard(token)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
