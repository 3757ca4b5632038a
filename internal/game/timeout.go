package game

import (
	"fmt"
	"time"
)

// TimeoutResult reports what ApplyTimeout did.
type TimeoutResult struct {
	State    State
	Applied  bool
	Replayed bool
	Action   *Action
}

// TimeoutRequestID is the idempotency marker for the forced action of the
// current turn.
func TimeoutRequestID(s State) string {
	return fmt.Sprintf("auto:%s:%s:%d", s.TableID, s.HandID, s.TurnNo)
}

// TurnExpired reports whether the current turn's deadline has passed at now.
func TurnExpired(s State, now time.Time) bool {
	if !s.Phase.Betting() || s.TurnUserID == "" || s.TurnDeadlineAt == nil {
		return false
	}
	return !now.Before(*s.TurnDeadlineAt)
}

// ApplyTimeout forces the action of a seat whose deadline has passed: a fold
// when they owe chips, otherwise a check. The forced action goes through
// ApplyAction exactly like a player request, so street advancement and
// settlement are identical. Before the deadline it is a no-op.
func ApplyTimeout(s State, now time.Time) (TimeoutResult, error) {
	if !TurnExpired(s, now) {
		return TimeoutResult{State: s}, nil
	}

	a := Action{Type: Check, UserID: s.TurnUserID, RequestID: TimeoutRequestID(s), Auto: true}
	if s.ToCall(s.TurnUserID) > 0 {
		a.Type = Fold
	}
	// A forced action always moves the turn on, so a stored state rarely
	// carries this turn's id. Two sweepers timing out the same turn are
	// separated by the store's version check, not by this one.
	if s.AlreadyApplied(a) {
		return TimeoutResult{State: s, Replayed: true}, nil
	}
	next, err := ApplyAction(s, a, now)
	if err != nil {
		return TimeoutResult{State: s}, fmt.Errorf("forced %s for %s: %w", a.Type, a.UserID, err)
	}
	return TimeoutResult{State: next, Applied: true, Action: &a}, nil
}

// SitIn clears a seat's sitting-out flag and missed turn count.
func SitIn(s State, userID string) State {
	ns := s.Clone()
	delete(ns.SittingOutByUserID, userID)
	delete(ns.MissedTurnsByUserID, userID)
	return ns
}

// SitOut marks a seat to be skipped from the next hand on.
func SitOut(s State, userID string) State {
	ns := s.Clone()
	ns.SittingOutByUserID[userID] = true
	return ns
}
