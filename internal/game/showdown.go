package game

import (
	"slices"
	"time"

	"github.com/lox/holdemtable/internal/errcode"
	"github.com/lox/holdemtable/poker"
)

// PotAward records how one pot was paid.
type PotAward struct {
	Amount          int            `json:"amount"`
	EligibleUserIDs []string       `json:"eligibleUserIds"`
	Winners         []string       `json:"winners"`
	Shares          map[string]int `json:"shares"`
}

// ShowdownResult is the materialized outcome of a hand. Revealed and
// HandValues only cover seats that reached a real showdown; a hand won by
// everyone else folding reveals nothing.
type ShowdownResult struct {
	HandID       string                     `json:"handId"`
	FoldOut      bool                       `json:"foldOut"`
	Pots         []PotAward                 `json:"pots"`
	TotalAwarded int                        `json:"totalAwarded"`
	Revealed     map[string][]poker.Card    `json:"revealed,omitempty"`
	HandValues   map[string]poker.HandValue `json:"handValues,omitempty"`
}

// Settled reports whether the hand's showdown and settlement have both been
// materialized for the current hand id.
func (s State) Settled() bool {
	return s.Showdown != nil && s.HandSettlement != nil &&
		s.Showdown.HandID == s.HandID && s.HandSettlement.HandID == s.HandID
}

// Settle pays out a hand that has reached a terminal point, either a
// showdown or a single remaining player. It is the one path by which chips
// leave the pot. Settling an already settled hand returns s unchanged.
func Settle(s State, now time.Time) (State, error) {
	if s.Settled() {
		return s, nil
	}
	terminal := s.Phase == PhaseShowdown || (s.Phase.Betting() && len(s.LiveUsers()) == 1)
	if !terminal {
		return s, errcode.ErrInvalidPhase.Withf("cannot settle during %s", s.Phase)
	}
	ns := s.Clone()
	if len(ns.LiveUsers()) == 1 {
		ns.returnUncalled()
	}
	ns.Phase = PhaseShowdown
	if err := ns.settle(stamp(now)); err != nil {
		return s, err
	}
	return ns, nil
}

// settle materializes the showdown, pays every pot, and purges the private
// card state.
func (s *State) settle(now time.Time) error {
	before := s.ChipTotal()
	contributed := 0
	for id, st := range s.Stacks {
		if st < 0 {
			return errcode.ErrShowdownInvalidStack.Withf("%s has stack %d", id, st)
		}
	}
	for _, id := range s.HandPlayers {
		contributed += s.ContributionsByUserID[id]
	}
	if s.Pot < 0 || s.Pot != contributed {
		return errcode.ErrShowdownInvalidPot.Withf("pot %d, contributions %d", s.Pot, contributed)
	}

	live := s.LiveUsers()
	if len(live) == 0 {
		return errcode.ErrShowdownNoWinners.Withf("every player folded")
	}
	result := &ShowdownResult{HandID: s.HandID, FoldOut: len(live) == 1}

	var values map[string]poker.HandValue
	if !result.FoldOut {
		var err error
		values, err = s.evaluateLive(live)
		if err != nil {
			return err
		}
		result.Revealed = make(map[string][]poker.Card, len(live))
		result.HandValues = values
		for _, id := range live {
			result.Revealed[id] = slices.Clone(s.HoleCardsByUserID[id])
		}
	}

	payoutOrder := s.ringFrom(s.DealerSeatNo)
	for _, pot := range s.Pots() {
		winners := live
		if !result.FoldOut {
			winners = bestOf(pot.EligibleUserIDs, values)
		}
		if len(winners) == 0 {
			return errcode.ErrShowdownNoWinners.Withf("pot of %d has no winner", pot.Amount)
		}
		for _, w := range winners {
			if !s.Live(w) || (!result.FoldOut && !slices.Contains(pot.EligibleUserIDs, w)) {
				return errcode.ErrShowdownWinnersInvalid.Withf("%s cannot win pot of %d", w, pot.Amount)
			}
		}
		award := PotAward{
			Amount:          pot.Amount,
			EligibleUserIDs: pot.EligibleUserIDs,
			Winners:         winners,
			Shares:          splitPot(pot.Amount, winners, payoutOrder),
		}
		for id, chips := range award.Shares {
			s.Stacks[id] += chips
			result.TotalAwarded += chips
		}
		result.Pots = append(result.Pots, award)
	}

	if result.TotalAwarded != s.Pot {
		return errcode.ErrShowdownInvalidPot.Withf("awarded %d of %d", result.TotalAwarded, s.Pot)
	}
	s.Pot = 0
	if got := s.ChipTotal(); got != before {
		return errcode.ErrChipConservation.Withf("chips before %d after %d", before, got)
	}

	s.Showdown = result
	settlement := deriveSettlement(result, now)
	s.HandSettlement = &settlement
	s.Phase = PhaseSettled
	s.clearTurn()
	s.HoleCardsByUserID = nil
	s.Deck = nil
	return nil
}

func (s *State) evaluateLive(live []string) (map[string]poker.HandValue, error) {
	if len(s.Community) != 5 || s.CommunityDealt != 5 {
		return nil, errcode.ErrShowdownInvalidCommunity.Withf("%d community cards", len(s.Community))
	}
	values := make(map[string]poker.HandValue, len(live))
	for _, id := range live {
		hole := s.HoleCardsByUserID[id]
		if len(hole) != 2 {
			return nil, errcode.ErrShowdownMissingHoleCards.Withf("%s has %d hole cards", id, len(hole))
		}
		cards := append(slices.Clone(hole), s.Community...)
		ev, err := poker.Evaluate(cards)
		if err != nil {
			return nil, errcode.ErrShowdownInvalidCommunity.Withf("%s: %v", id, err)
		}
		values[id] = ev.Value
	}
	return values, nil
}

// bestOf returns every eligible user tied for the strongest value.
func bestOf(eligible []string, values map[string]poker.HandValue) []string {
	var winners []string
	var best poker.HandValue
	for _, id := range eligible {
		v, ok := values[id]
		if !ok {
			continue
		}
		switch cmp := poker.CompareValues(v, best); {
		case len(winners) == 0 || cmp > 0:
			winners, best = []string{id}, v
		case cmp == 0:
			winners = append(winners, id)
		}
	}
	return winners
}

// splitPot divides amount evenly among winners. Odd chips go one at a time
// to winners in payout order. The showdown passes the seat ring starting with
// the first seat left of the button, so the first winner clockwise from the
// button collects the first odd chip.
func splitPot(amount int, winners, order []string) map[string]int {
	shares := make(map[string]int, len(winners))
	each := amount / len(winners)
	for _, w := range winners {
		shares[w] = each
	}
	remainder := amount - each*len(winners)
	for _, id := range order {
		if remainder == 0 {
			break
		}
		if _, ok := shares[id]; ok {
			shares[id]++
			remainder--
		}
	}
	return shares
}
