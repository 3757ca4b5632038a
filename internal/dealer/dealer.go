// Package dealer derives every card of a hand from the hand seed and the
// seat order. Nothing here is stored: the same inputs always reproduce the
// same deck, hole cards and board, which is what lets a hand be resumed or
// audited without persisting the deck.
//
// Card slots are fixed. Hole cards take the first 2×N cards of the shuffled
// deck, dealt round-robin in seat order (seat i receives deck[i] and
// deck[N+i]). Community cards follow sequentially: three for the flop, then
// one each for the turn and river.
package dealer

import (
	"github.com/lox/holdemtable/internal/errcode"
	"github.com/lox/holdemtable/internal/randutil"
	"github.com/lox/holdemtable/poker"
)

// MaxCommunity is the number of community cards on a complete board.
const MaxCommunity = 5

// DeriveDeck shuffles the canonical deck with a generator seeded from the
// FNV-1a hash of handSeed.
func DeriveDeck(handSeed string) (poker.Deck, error) {
	if handSeed == "" {
		return nil, errcode.ErrHandSeedRequired
	}
	rng := randutil.FromString(handSeed)
	return poker.Shuffle(poker.NewDeck(), rng.Float64), nil
}

// ValidateSeatOrder checks that seatOrder is non-empty and has no repeated
// user ids.
func ValidateSeatOrder(seatOrder []string) error {
	if len(seatOrder) == 0 {
		return errcode.ErrInvalidSeatOrder.Withf("no seats")
	}
	if len(seatOrder)*2+MaxCommunity > poker.DeckSize {
		return errcode.ErrInvalidSeatOrder.Withf("%d seats exceed the deck", len(seatOrder))
	}
	seen := make(map[string]struct{}, len(seatOrder))
	for _, id := range seatOrder {
		if id == "" {
			return errcode.ErrInvalidSeatOrder.Withf("empty user id")
		}
		if _, dup := seen[id]; dup {
			return errcode.ErrDuplicateSeatUserID.Withf("%s", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// DeriveHoleCards returns two hole cards per user.
func DeriveHoleCards(handSeed string, seatOrder []string) (map[string][]poker.Card, error) {
	deck, err := prepare(handSeed, seatOrder)
	if err != nil {
		return nil, err
	}
	n := len(seatOrder)
	hole := make(map[string][]poker.Card, n)
	for i, id := range seatOrder {
		hole[id] = []poker.Card{deck[i], deck[n+i]}
	}
	return hole, nil
}

// DeriveCommunityCards returns the first communityDealt board cards.
func DeriveCommunityCards(handSeed string, seatOrder []string, communityDealt int) ([]poker.Card, error) {
	if err := checkCommunity(communityDealt); err != nil {
		return nil, err
	}
	deck, err := prepare(handSeed, seatOrder)
	if err != nil {
		return nil, err
	}
	start := 2 * len(seatOrder)
	out := make([]poker.Card, communityDealt)
	copy(out, deck[start:start+communityDealt])
	return out, nil
}

// DeriveRemainingDeck returns the undealt cards after the hole cards and the
// first communityDealt board cards.
func DeriveRemainingDeck(handSeed string, seatOrder []string, communityDealt int) (poker.Deck, error) {
	if err := checkCommunity(communityDealt); err != nil {
		return nil, err
	}
	deck, err := prepare(handSeed, seatOrder)
	if err != nil {
		return nil, err
	}
	return deck[2*len(seatOrder)+communityDealt:].Clone(), nil
}

// Street returns the cards dealt when the board grows from `from` to `to`
// cards.
func Street(handSeed string, seatOrder []string, from, to int) ([]poker.Card, error) {
	if from < 0 || from > to {
		return nil, errcode.ErrInvalidCommunityCount.Withf("from %d to %d", from, to)
	}
	board, err := DeriveCommunityCards(handSeed, seatOrder, to)
	if err != nil {
		return nil, err
	}
	return board[from:], nil
}

func prepare(handSeed string, seatOrder []string) (poker.Deck, error) {
	if err := ValidateSeatOrder(seatOrder); err != nil {
		return nil, err
	}
	return DeriveDeck(handSeed)
}

func checkCommunity(n int) error {
	if n < 0 || n > MaxCommunity {
		return errcode.ErrInvalidCommunityCount.Withf("%d", n)
	}
	return nil
}
