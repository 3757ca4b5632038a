package game

import (
	"time"

	"github.com/lox/holdemtable/internal/dealer"
)

// progress advances the hand after a change: hands the turn to the next
// seat, closes the street, runs out the board, or settles.
func (s *State) progress(now time.Time) error {
	for {
		if len(s.LiveUsers()) <= 1 {
			s.returnUncalled()
			s.Phase = PhaseShowdown
			return s.settle(now)
		}
		if !s.streetComplete() {
			s.setTurn(s.nextActor(), now)
			s.refreshToCall()
			return nil
		}

		s.returnUncalled()
		s.resetStreet()
		if s.Phase == PhaseRiver {
			s.Phase = PhaseShowdown
			return s.settle(now)
		}
		s.Phase = s.Phase.next()
		if err := s.dealBoard(); err != nil {
			return err
		}
		// Loop again: with fewer than two seats able to act the next
		// street closes immediately, which runs the board out.
		if len(s.ableUsers()) > 1 {
			s.setTurn(s.firstActorAfter(s.DealerSeatNo), now)
			s.refreshToCall()
			return nil
		}
	}
}

// streetComplete reports whether every seat that can still act has matched
// the current bet and acted since the last full bet or raise.
func (s *State) streetComplete() bool {
	able := s.ableUsers()
	if len(able) == 0 {
		return true
	}
	if len(able) == 1 && s.ToCall(able[0]) == 0 {
		// Nobody is left to respond to a bet.
		return true
	}
	for _, id := range able {
		if !s.ActedThisRoundByUserID[id] || s.ToCall(id) > 0 {
			return false
		}
	}
	return true
}

// needsAction reports whether id still owes a decision this street.
func (s *State) needsAction(id string) bool {
	return s.CanAct(id) && (!s.ActedThisRoundByUserID[id] || s.ToCall(id) > 0)
}

func (s *State) nextActor() string {
	switch {
	case s.TurnUserID != "":
		return s.firstActorAfter(s.seatNo(s.TurnUserID))
	case s.Phase == PhasePreflop:
		return s.firstActorAfter(s.BigBlindSeatNo)
	}
	return s.firstActorAfter(s.DealerSeatNo)
}

func (s *State) firstActorAfter(seatNo int) string {
	for _, id := range s.ringFrom(seatNo) {
		if s.needsAction(id) {
			return id
		}
	}
	return ""
}

func (s *State) setTurn(userID string, now time.Time) {
	s.TurnUserID = userID
	s.TurnNo++
	started := now
	s.TurnStartedAt = &started
	s.TurnDeadlineAt = nil
	if timeout := s.Rules.TurnTimeout(); timeout > 0 {
		deadline := now.Add(timeout)
		s.TurnDeadlineAt = &deadline
	}
}

func (s *State) clearTurn() {
	s.TurnUserID = ""
	s.TurnStartedAt = nil
	s.TurnDeadlineAt = nil
	clear(s.ToCallByUserID)
}

// returnUncalled gives back the part of the largest street commitment that no
// other seat matched.
func (s *State) returnUncalled() {
	top, topBet, second := "", 0, 0
	for _, id := range s.HandPlayers {
		bet := s.BetThisRoundByUserID[id]
		switch {
		case bet > topBet:
			second = topBet
			top, topBet = id, bet
		case bet > second:
			second = bet
		}
	}
	excess := topBet - second
	if top == "" || excess <= 0 {
		return
	}
	s.Stacks[top] += excess
	s.BetThisRoundByUserID[top] -= excess
	s.ContributionsByUserID[top] -= excess
	s.Pot -= excess
	if s.Stacks[top] > 0 {
		delete(s.AllInByUserID, top)
	}
	if s.CurrentBet > s.BetThisRoundByUserID[top] {
		s.CurrentBet = s.BetThisRoundByUserID[top]
	}
}

func (s *State) resetStreet() {
	clear(s.BetThisRoundByUserID)
	clear(s.ActedThisRoundByUserID)
	clear(s.RaiseClosedByUserID)
	clear(s.ActedAtBetByUserID)
	s.CurrentBet = 0
	s.LastRaiseSize = 0
	s.LastFullRaiseSize = s.Rules.BigBlind
}

// dealBoard reveals community cards up to the size of the current street.
func (s *State) dealBoard() error {
	want := s.Phase.boardSize()
	if want <= s.CommunityDealt {
		return nil
	}
	board, err := dealer.DeriveCommunityCards(s.HandSeed, s.HandPlayers, want)
	if err != nil {
		return err
	}
	rest, err := dealer.DeriveRemainingDeck(s.HandSeed, s.HandPlayers, want)
	if err != nil {
		return err
	}
	s.Community = board
	s.CommunityDealt = want
	s.Deck = rest
	return nil
}
