package poker

import (
	"fmt"
	"slices"
	"strings"
)

// Category enumerates hand categories from weakest to strongest.
type Category uint8

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

var categoryNames = [...]string{
	HighCard:      "HIGH_CARD",
	Pair:          "PAIR",
	TwoPair:       "TWO_PAIR",
	ThreeOfAKind:  "THREE_OF_A_KIND",
	Straight:      "STRAIGHT",
	Flush:         "FLUSH",
	FullHouse:     "FULL_HOUSE",
	FourOfAKind:   "FOUR_OF_A_KIND",
	StraightFlush: "STRAIGHT_FLUSH",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", c)
}

// Title returns a human readable name such as "Full House".
func (c Category) Title() string {
	words := strings.Split(strings.ToLower(c.String()), "_")
	for i, w := range words {
		if w == "of" || w == "a" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// MarshalText encodes the category name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category name.
func (c *Category) UnmarshalText(b []byte) error {
	for i, name := range categoryNames {
		if name == string(b) {
			*c = Category(i)
			return nil
		}
	}
	return fmt.Errorf("unknown hand category %q", string(b))
}

// HandValue is a totally ordered hand strength: the category, then the
// tie-break ranks compared most significant first.
type HandValue struct {
	Category Category `json:"category"`
	Tiebreak []Rank   `json:"tiebreak"`
}

// CompareValues returns -1, 0 or 1 as a is weaker than, equal to, or
// stronger than b.
func CompareValues(a, b HandValue) int {
	if a.Category != b.Category {
		if a.Category < b.Category {
			return -1
		}
		return 1
	}
	for i := 0; i < len(a.Tiebreak) && i < len(b.Tiebreak); i++ {
		if a.Tiebreak[i] != b.Tiebreak[i] {
			if a.Tiebreak[i] < b.Tiebreak[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a.Tiebreak) < len(b.Tiebreak):
		return -1
	case len(a.Tiebreak) > len(b.Tiebreak):
		return 1
	}
	return 0
}

// Beats reports whether v is strictly stronger than other.
func (v HandValue) Beats(other HandValue) bool {
	return CompareValues(v, other) > 0
}

func (v HandValue) String() string {
	ranks := make([]string, len(v.Tiebreak))
	for i, r := range v.Tiebreak {
		ranks[i] = r.String()
	}
	return fmt.Sprintf("%s [%s]", v.Category.Title(), strings.Join(ranks, " "))
}

// Evaluation is the result of ranking a hand: its value and the five cards
// that achieve it, ordered by significance.
type Evaluation struct {
	Value HandValue `json:"value"`
	Best5 []Card    `json:"best5"`
}

// Evaluate ranks the best five-card hand from 5 to 7 cards. Every C(n,5)
// subset is scored and the strongest kept. When several subsets share the
// strongest value the one whose cards sort first by suit is returned, which
// only affects Best5.
func Evaluate(cards []Card) (Evaluation, error) {
	if err := checkCards(cards); err != nil {
		return Evaluation{}, err
	}
	switch {
	case len(cards) < 5:
		return Evaluation{}, ErrInsufficientCards.Withf("got %d cards, need 5", len(cards))
	case len(cards) > 7:
		return Evaluation{}, ErrTooManyCards.Withf("got %d cards, at most 7", len(cards))
	}

	var best Evaluation
	found := false
	n := len(cards)
	var hand [5]Card
	for a := 0; a < n-4; a++ {
		for b := a + 1; b < n-3; b++ {
			for c := b + 1; c < n-2; c++ {
				for d := c + 1; d < n-1; d++ {
					for e := d + 1; e < n; e++ {
						hand = [5]Card{cards[a], cards[b], cards[c], cards[d], cards[e]}
						ev := evaluate5(hand)
						if !found {
							best, found = ev, true
							continue
						}
						cmp := CompareValues(ev.Value, best.Value)
						if cmp > 0 || (cmp == 0 && suitOrderLess(ev.Best5, best.Best5)) {
							best = ev
						}
					}
				}
			}
		}
	}
	return best, nil
}

// EvaluateTokens parses card tokens and evaluates them.
func EvaluateTokens(tokens ...string) (Evaluation, error) {
	cards, err := ParseCards(tokens...)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluate(cards)
}

func suitOrderLess(a, b []Card) bool {
	for i := range a {
		if a[i].Suit != b[i].Suit {
			return a[i].Suit < b[i].Suit
		}
	}
	return false
}

type rankGroup struct {
	rank  Rank
	count int
}

func evaluate5(hand [5]Card) Evaluation {
	var counts [Ace + 1]int
	flush := true
	for i, c := range hand {
		counts[c.Rank]++
		if i > 0 && c.Suit != hand[0].Suit {
			flush = false
		}
	}

	groups := make([]rankGroup, 0, 5)
	for r := Ace; r >= Two; r-- {
		if counts[r] > 0 {
			groups = append(groups, rankGroup{rank: r, count: counts[r]})
		}
	}
	slices.SortStableFunc(groups, func(a, b rankGroup) int {
		return b.count - a.count
	})

	straightHigh := Rank(0)
	if len(groups) == 5 {
		switch {
		case groups[0].rank-groups[4].rank == 4:
			straightHigh = groups[0].rank
		case groups[0].rank == Ace && groups[1].rank == Five:
			straightHigh = Five
		}
	}

	var value HandValue
	switch {
	case straightHigh > 0 && flush:
		value = HandValue{Category: StraightFlush, Tiebreak: []Rank{straightHigh}}
	case groups[0].count == 4:
		value = HandValue{Category: FourOfAKind, Tiebreak: groupRanks(groups)}
	case groups[0].count == 3 && groups[1].count == 2:
		value = HandValue{Category: FullHouse, Tiebreak: groupRanks(groups)}
	case flush:
		value = HandValue{Category: Flush, Tiebreak: groupRanks(groups)}
	case straightHigh > 0:
		value = HandValue{Category: Straight, Tiebreak: []Rank{straightHigh}}
	case groups[0].count == 3:
		value = HandValue{Category: ThreeOfAKind, Tiebreak: groupRanks(groups)}
	case groups[0].count == 2 && groups[1].count == 2:
		value = HandValue{Category: TwoPair, Tiebreak: groupRanks(groups)}
	case groups[0].count == 2:
		value = HandValue{Category: Pair, Tiebreak: groupRanks(groups)}
	default:
		value = HandValue{Category: HighCard, Tiebreak: groupRanks(groups)}
	}

	return Evaluation{Value: value, Best5: orderBest5(hand, counts, straightHigh == Five)}
}

func groupRanks(groups []rankGroup) []Rank {
	ranks := make([]Rank, len(groups))
	for i, g := range groups {
		ranks[i] = g.rank
	}
	return ranks
}

// orderBest5 sorts cards by group size, then rank, then suit. In a wheel the
// ace plays low and goes last.
func orderBest5(hand [5]Card, counts [Ace + 1]int, wheel bool) []Card {
	out := slices.Clone(hand[:])
	rankValue := func(r Rank) int {
		if wheel && r == Ace {
			return 1
		}
		return int(r)
	}
	slices.SortFunc(out, func(a, b Card) int {
		if counts[a.Rank] != counts[b.Rank] {
			return counts[b.Rank] - counts[a.Rank]
		}
		if a.Rank != b.Rank {
			return rankValue(b.Rank) - rankValue(a.Rank)
		}
		return int(a.Suit) - int(b.Suit)
	})
	return out
}
