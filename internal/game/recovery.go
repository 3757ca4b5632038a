package game

import (
	"time"

	"github.com/lox/holdemtable/internal/dealer"
)

// NeedsRecovery reports whether s is stuck: in SHOWDOWN without a
// materialized result, or in a betting street with a single player left.
func NeedsRecovery(s State) bool {
	switch {
	case s.Phase == PhaseShowdown:
		return !s.Settled()
	case s.Phase.Betting():
		return len(s.LiveUsers()) <= 1 || s.missingPrivateCards()
	}
	return false
}

func (s *State) missingPrivateCards() bool {
	for _, id := range s.HandPlayers {
		if len(s.HoleCardsByUserID[id]) != 2 {
			return true
		}
	}
	return false
}

// Recover repairs a stuck hand: it re-derives lost hole cards and deck from
// the hand seed, and settles a showdown or fold-out that was never paid. The
// boolean is false when nothing needed doing.
func Recover(s State, now time.Time) (State, bool, error) {
	if !NeedsRecovery(s) {
		return s, false, nil
	}
	ns := s.Clone()
	if ns.missingPrivateCards() {
		if err := ns.restorePrivateCards(); err != nil {
			return s, false, err
		}
	}
	if ns.Phase == PhaseShowdown || len(ns.LiveUsers()) <= 1 {
		settled, err := Settle(ns, now)
		if err != nil {
			return s, false, err
		}
		return settled, true, nil
	}
	return ns, true, nil
}

func (s *State) restorePrivateCards() error {
	hole, err := dealer.DeriveHoleCards(s.HandSeed, s.HandPlayers)
	if err != nil {
		return err
	}
	rest, err := dealer.DeriveRemainingDeck(s.HandSeed, s.HandPlayers, s.CommunityDealt)
	if err != nil {
		return err
	}
	board, err := dealer.DeriveCommunityCards(s.HandSeed, s.HandPlayers, s.CommunityDealt)
	if err != nil {
		return err
	}
	s.HoleCardsByUserID = hole
	s.Deck = rest
	s.Community = board
	return nil
}
