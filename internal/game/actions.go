package game

import (
	"fmt"
	"time"

	"github.com/lox/holdemtable/internal/errcode"
)

// ActionType is a betting decision.
type ActionType string

const (
	Fold  ActionType = "FOLD"
	Check ActionType = "CHECK"
	Call  ActionType = "CALL"
	Bet   ActionType = "BET"
	Raise ActionType = "RAISE"
)

// Action is a request to act for the seat whose turn it is. For BET and
// RAISE, Amount is the seat's new total commitment for the street ("bet to").
// Amount is ignored for the other types.
type Action struct {
	Type      ActionType `json:"type"`
	UserID    string     `json:"userId"`
	Amount    int        `json:"amount,omitempty"`
	RequestID string     `json:"requestId,omitempty"`
	// Auto marks actions synthesized by the engine on a turn timeout.
	Auto bool `json:"auto,omitempty"`
}

func (a Action) String() string {
	switch a.Type {
	case Bet, Raise:
		return fmt.Sprintf("%s %s %d", a.UserID, a.Type, a.Amount)
	}
	return fmt.Sprintf("%s %s", a.UserID, a.Type)
}

// AlreadyApplied reports whether a carries a request id that its user has
// already had applied in the current hand.
func (s State) AlreadyApplied(a Action) bool {
	if a.RequestID == "" {
		return false
	}
	if s.LastActionRequestIDByUserID[a.UserID] == a.RequestID {
		return true
	}
	for _, rec := range s.ActionLog {
		if rec.UserID == a.UserID && rec.RequestID == a.RequestID {
			return true
		}
	}
	return false
}

// ApplyAction validates a and returns the resulting state. A request id the
// user already used in this hand is a no-op and returns s as is.
// On error s is returned unchanged alongside the error.
func ApplyAction(s State, a Action, now time.Time) (State, error) {
	if s.AlreadyApplied(a) {
		return s, nil
	}
	if err := validateAction(&s, a); err != nil {
		return s, err
	}

	ns := s.Clone()
	before := ns.ChipTotal()
	at := stamp(now)
	paid, err := ns.apply(a)
	if err != nil {
		return s, err
	}

	ns.ActionLog = append(ns.ActionLog, ActionRecord{
		Seq:       len(ns.ActionLog) + 1,
		Phase:     ns.Phase,
		UserID:    a.UserID,
		Type:      a.Type,
		Amount:    a.Amount,
		Paid:      paid,
		RequestID: a.RequestID,
		Auto:      a.Auto,
		At:        at,
	})
	if a.RequestID != "" {
		ns.LastActionRequestIDByUserID[a.UserID] = a.RequestID
	}
	ns.trackMissedTurn(a)

	if err := ns.progress(at); err != nil {
		return s, err
	}
	if got := ns.ChipTotal(); got != before {
		return s, errcode.ErrChipConservation.Withf("chips before %d after %d", before, got)
	}
	return ns, nil
}

func validateAction(s *State, a Action) error {
	if !s.Phase.Betting() {
		return errcode.ErrHandNotActive.Withf("phase %s", s.Phase)
	}
	if !s.InHand(a.UserID) {
		return errcode.ErrNotYourTurn.Withf("%s is not in the hand", a.UserID)
	}
	if s.FoldedByUserID[a.UserID] || s.AllInByUserID[a.UserID] || s.Stacks[a.UserID] <= 0 {
		return errcode.ErrCannotAct.Withf("%s has folded or is all-in", a.UserID)
	}
	if s.TurnUserID != a.UserID {
		return errcode.ErrNotYourTurn.Withf("turn belongs to %s", s.TurnUserID)
	}
	return nil
}

// apply mutates s for a validated action and returns the chips paid.
func (s *State) apply(a Action) (int, error) {
	id := a.UserID
	toCall := s.ToCall(id)
	stack := s.Stacks[id]
	committed := s.BetThisRoundByUserID[id]

	switch a.Type {
	case Fold:
		s.FoldedByUserID[id] = true
		s.ActedThisRoundByUserID[id] = true
		delete(s.RaiseClosedByUserID, id)
		return 0, nil

	case Check:
		if toCall > 0 {
			return 0, errcode.ErrCannotCheck.Withf("%d to call", toCall)
		}
		s.markActed(id)
		return 0, nil

	case Call:
		if toCall == 0 {
			return 0, errcode.ErrCannotCall.Withf("nothing to call")
		}
		paid := min(toCall, stack)
		s.commit(id, paid)
		s.markActed(id)
		return paid, nil

	case Bet:
		if s.CurrentBet > 0 {
			return 0, errcode.ErrCannotBet.Withf("current bet is %d, raise instead", s.CurrentBet)
		}
		if a.Amount <= 0 {
			return 0, errcode.ErrInvalidBet.Withf("bet must be positive, got %d", a.Amount)
		}
		paid := a.Amount - committed
		if paid > stack {
			return 0, errcode.ErrInsufficientStack.Withf("bet to %d needs %d, stack %d", a.Amount, paid, stack)
		}
		allIn := paid == stack
		if a.Amount < s.Rules.BigBlind && !allIn {
			return 0, errcode.ErrBetTooSmall.Withf("minimum bet is %d", s.Rules.BigBlind)
		}
		s.commit(id, paid)
		s.CurrentBet = a.Amount
		s.LastRaiseSize = a.Amount
		s.LastFullRaiseSize = max(a.Amount, s.Rules.BigBlind)
		s.reopen(id)
		return paid, nil

	case Raise:
		if s.CurrentBet == 0 {
			return 0, errcode.ErrCannotRaise.Withf("no bet to raise, bet instead")
		}
		if s.RaiseClosedByUserID[id] {
			return 0, errcode.ErrCannotRaise.Withf("action was not reopened by an incomplete raise")
		}
		if stack <= toCall {
			return 0, errcode.ErrCannotRaise.Withf("stack %d cannot cover more than the call", stack)
		}
		if a.Amount <= s.CurrentBet {
			return 0, errcode.ErrInvalidRaise.Withf("raise to %d does not exceed current bet %d", a.Amount, s.CurrentBet)
		}
		paid := a.Amount - committed
		if paid > stack {
			return 0, errcode.ErrInsufficientStack.Withf("raise to %d needs %d, stack %d", a.Amount, paid, stack)
		}
		size := a.Amount - s.CurrentBet
		allIn := paid == stack
		if size < s.LastFullRaiseSize && !allIn {
			return 0, errcode.ErrRaiseTooSmall.Withf("minimum raise is to %d", s.CurrentBet+s.LastFullRaiseSize)
		}
		s.commit(id, paid)
		s.CurrentBet = a.Amount
		s.LastRaiseSize = size
		if size >= s.LastFullRaiseSize {
			s.LastFullRaiseSize = size
			s.reopen(id)
		} else {
			s.closeRaises(id)
		}
		return paid, nil
	}
	return 0, errcode.ErrInvalidAction.Withf("unknown action type %q", a.Type)
}

// commit moves chips from the stack into the pot.
func (s *State) commit(id string, chips int) {
	s.Stacks[id] -= chips
	s.BetThisRoundByUserID[id] += chips
	s.ContributionsByUserID[id] += chips
	s.Pot += chips
	if s.Stacks[id] == 0 {
		s.AllInByUserID[id] = true
	}
}

// markActed records that id acted facing the current bet level.
func (s *State) markActed(id string) {
	s.ActedThisRoundByUserID[id] = true
	s.ActedAtBetByUserID[id] = s.CurrentBet
}

// reopen is called after a full bet or raise: everyone else must respond
// again and may raise.
func (s *State) reopen(aggressor string) {
	clear(s.ActedThisRoundByUserID)
	clear(s.RaiseClosedByUserID)
	s.markActed(aggressor)
}

// closeRaises is called after an incomplete all-in raise. A seat that has
// already acted may raise again only once the bet has grown by at least a
// full raise since it last acted, so several short all-ins can add up to a
// reopening.
func (s *State) closeRaises(raiser string) {
	for _, id := range s.HandPlayers {
		if id == raiser || !s.ActedThisRoundByUserID[id] || !s.Live(id) {
			continue
		}
		if s.CurrentBet-s.ActedAtBetByUserID[id] >= s.LastFullRaiseSize {
			delete(s.RaiseClosedByUserID, id)
		} else {
			s.RaiseClosedByUserID[id] = true
		}
	}
	s.markActed(raiser)
}

func (s *State) trackMissedTurn(a Action) {
	if !a.Auto {
		delete(s.MissedTurnsByUserID, a.UserID)
		return
	}
	s.MissedTurnsByUserID[a.UserID]++
	if limit := s.Rules.MaxMissedTurns; limit > 0 && s.MissedTurnsByUserID[a.UserID] >= limit {
		s.SittingOutByUserID[a.UserID] = true
	}
}

// stamp drops the monotonic reading and sub-millisecond precision so that
// timestamps survive a JSON round trip unchanged.
func stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
