package poker

// DeckSize is the number of cards in a standard deck.
const DeckSize = 52

// Deck is an ordered sequence of cards. Functions in this package never
// modify a Deck passed to them; they return a new one.
type Deck []Card

// NewDeck returns the 52 cards in canonical order: clubs, diamonds, hearts,
// spades, each from two up to ace.
func NewDeck() Deck {
	d := make(Deck, 0, DeckSize)
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d = append(d, NewCard(rank, suit))
		}
	}
	return d
}

// Shuffle returns a Fisher-Yates permutation of deck driven by rng, which must
// return uniform values in [0, 1). The same rng stream always produces the
// same permutation.
func Shuffle(deck Deck, rng func() float64) Deck {
	out := deck.Clone()
	for i := len(out) - 1; i > 0; i-- {
		j := int(rng() * float64(i+1))
		if j > i {
			j = i
		}
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Clone returns a copy of the deck.
func (d Deck) Clone() Deck {
	if d == nil {
		return nil
	}
	out := make(Deck, len(d))
	copy(out, d)
	return out
}

// Contains reports whether c is in the deck.
func (d Deck) Contains(c Card) bool {
	for _, x := range d {
		if x == c {
			return true
		}
	}
	return false
}

// checkCards validates every card and rejects duplicates.
func checkCards(cards []Card) error {
	var seen [DeckSize]bool
	for _, c := range cards {
		if !c.Valid() {
			return ErrInvalidCard.Withf("rank=%d suit=%d", c.Rank, c.Suit)
		}
		if seen[c.index()] {
			return ErrDuplicateCard.Withf("%s", c)
		}
		seen[c.index()] = true
	}
	return nil
}
