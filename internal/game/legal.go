package game

// ValidAction is one action a seat may take. For CALL the amounts are the
// chips that would be paid; for BET and RAISE they are "bet to" totals.
type ValidAction struct {
	Action    ActionType `json:"action"`
	MinAmount int        `json:"minAmount,omitempty"`
	MaxAmount int        `json:"maxAmount,omitempty"`
}

// LegalActions is the set of actions available to one seat.
type LegalActions struct {
	UserID  string        `json:"userId"`
	ToCall  int           `json:"toCall"`
	Actions []ValidAction `json:"actions"`
}

// Find returns the entry for t, if legal.
func (l LegalActions) Find(t ActionType) (ValidAction, bool) {
	for _, va := range l.Actions {
		if va.Action == t {
			return va, true
		}
	}
	return ValidAction{}, false
}

// Allows reports whether t is legal.
func (l LegalActions) Allows(t ActionType) bool {
	_, ok := l.Find(t)
	return ok
}

// Legal derives the legal actions for userID. The set is empty unless it is
// the user's turn in an active hand and they can still act.
//
// Facing a bet the seat may fold or call, and may raise when chips remain
// after calling and an incomplete all-in raise has not closed raising for
// them. With nothing to call the seat may check, or bet while it has chips.
// An all-in for less than the minimum is always offered as the lower bound.
func Legal(s State, userID string) LegalActions {
	out := LegalActions{UserID: userID}
	if !s.Phase.Betting() || s.TurnUserID != userID || !s.CanAct(userID) {
		return out
	}

	stack := s.Stacks[userID]
	committed := s.BetThisRoundByUserID[userID]
	allInTo := committed + stack
	toCall := s.ToCall(userID)
	out.ToCall = toCall

	if toCall > 0 {
		paid := min(toCall, stack)
		out.Actions = append(out.Actions,
			ValidAction{Action: Fold},
			ValidAction{Action: Call, MinAmount: paid, MaxAmount: paid},
		)
		if stack > toCall && !s.RaiseClosedByUserID[userID] {
			minTo := min(s.CurrentBet+s.LastFullRaiseSize, allInTo)
			out.Actions = append(out.Actions, ValidAction{Action: Raise, MinAmount: minTo, MaxAmount: allInTo})
		}
		return out
	}

	out.Actions = append(out.Actions, ValidAction{Action: Check})
	if s.CurrentBet == 0 {
		minTo := min(max(s.Rules.BigBlind, 1), allInTo)
		out.Actions = append(out.Actions, ValidAction{Action: Bet, MinAmount: minTo, MaxAmount: allInTo})
	} else if stack > 0 && !s.RaiseClosedByUserID[userID] {
		// Preflop big blind option: the bet is already matched.
		minTo := min(s.CurrentBet+s.LastFullRaiseSize, allInTo)
		out.Actions = append(out.Actions, ValidAction{Action: Raise, MinAmount: minTo, MaxAmount: allInTo})
	}
	return out
}
