package game

import (
	"maps"
	"slices"
	"time"

	"github.com/lox/holdemtable/poker"
)

// Clone returns a deep copy of the state. Transitions always work on a clone
// so that the caller's value is left untouched.
func (s State) Clone() State {
	out := s
	out.Seats = slices.Clone(s.Seats)
	out.Stacks = maps.Clone(s.Stacks)
	out.StartingStacks = maps.Clone(s.StartingStacks)
	out.Community = slices.Clone(s.Community)
	out.HandPlayers = slices.Clone(s.HandPlayers)
	out.HandStartedAt = cloneTime(s.HandStartedAt)
	out.TurnStartedAt = cloneTime(s.TurnStartedAt)
	out.TurnDeadlineAt = cloneTime(s.TurnDeadlineAt)
	out.ToCallByUserID = maps.Clone(s.ToCallByUserID)
	out.BetThisRoundByUserID = maps.Clone(s.BetThisRoundByUserID)
	out.ContributionsByUserID = maps.Clone(s.ContributionsByUserID)
	out.ActedThisRoundByUserID = maps.Clone(s.ActedThisRoundByUserID)
	out.FoldedByUserID = maps.Clone(s.FoldedByUserID)
	out.AllInByUserID = maps.Clone(s.AllInByUserID)
	out.RaiseClosedByUserID = maps.Clone(s.RaiseClosedByUserID)
	out.ActedAtBetByUserID = maps.Clone(s.ActedAtBetByUserID)
	out.LastActionRequestIDByUserID = maps.Clone(s.LastActionRequestIDByUserID)
	out.MissedTurnsByUserID = maps.Clone(s.MissedTurnsByUserID)
	out.SittingOutByUserID = maps.Clone(s.SittingOutByUserID)
	out.ActionLog = slices.Clone(s.ActionLog)
	out.Showdown = s.Showdown.clone()
	out.HandSettlement = s.HandSettlement.clone()
	out.Deck = s.Deck.Clone()
	if s.HoleCardsByUserID != nil {
		out.HoleCardsByUserID = make(map[string][]poker.Card, len(s.HoleCardsByUserID))
		for id, cards := range s.HoleCardsByUserID {
			out.HoleCardsByUserID[id] = slices.Clone(cards)
		}
	}
	out.normalize()
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func (r *ShowdownResult) clone() *ShowdownResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Pots = make([]PotAward, len(r.Pots))
	for i, p := range r.Pots {
		p.EligibleUserIDs = slices.Clone(p.EligibleUserIDs)
		p.Winners = slices.Clone(p.Winners)
		p.Shares = maps.Clone(p.Shares)
		out.Pots[i] = p
	}
	if r.Revealed != nil {
		out.Revealed = make(map[string][]poker.Card, len(r.Revealed))
		for id, cards := range r.Revealed {
			out.Revealed[id] = slices.Clone(cards)
		}
	}
	if r.HandValues != nil {
		out.HandValues = make(map[string]poker.HandValue, len(r.HandValues))
		for id, v := range r.HandValues {
			v.Tiebreak = slices.Clone(v.Tiebreak)
			out.HandValues[id] = v
		}
	}
	return &out
}

func (h *HandSettlement) clone() *HandSettlement {
	if h == nil {
		return nil
	}
	out := *h
	out.Payouts = maps.Clone(h.Payouts)
	return &out
}
