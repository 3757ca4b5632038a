package game

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lox/holdemtable/poker"
)

var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

var testRules = Rules{SmallBlind: 1, BigBlind: 2, TurnTimeoutMs: 30_000, MaxMissedTurns: 2}

// newTestTable seats ids at seats 1..n with the given stacks.
func newTestTable(ids []string, stacks ...int) State {
	seats := make([]Seat, len(ids))
	chips := make(map[string]int, len(ids))
	for i, id := range ids {
		seats[i] = Seat{UserID: id, SeatNo: i + 1}
		chips[id] = stacks[i]
	}
	return NewTable("table-1", testRules, seats, chips)
}

func startHand(t *testing.T, s State, dealerSeat int) State {
	t.Helper()
	next, err := InitHand(s, InitParams{HandID: fmt.Sprintf("hand-%d", s.HandNo+1), HandSeed: fmt.Sprintf("seed-%d", s.HandNo+1), DealerSeatNo: dealerSeat}, t0)
	require.NoError(t, err)
	return next
}

func act(t *testing.T, s State, user string, typ ActionType, amount int) State {
	t.Helper()
	require.Equal(t, user, s.TurnUserID, "expected %s to act", user)
	next, err := ApplyAction(s, Action{Type: typ, UserID: user, Amount: amount}, t0.Add(time.Second))
	require.NoError(t, err)
	return next
}

// riverState builds a hand on the river with fixed cards so showdown
// outcomes can be asserted exactly. Every player has contributed the given
// amount; folded players are marked as such.
func riverState(t *testing.T, board []string, hole map[string][]string, contributions map[string]int, folded ...string) State {
	t.Helper()
	ids := []string{"alice", "bob", "carol"}[:len(contributions)]
	stacks := make([]int, len(ids))
	for i := range stacks {
		stacks[i] = 100
	}
	s := newTestTable(ids, stacks...)
	s.Phase = PhaseRiver
	s.HandID = "hand-fixed"
	s.HandSeed = "seed-fixed"
	s.HandNo = 1
	s.HandPlayers = ids
	s.DealerSeatNo = len(ids)
	s.Community = poker.MustParseCards(board...)
	s.CommunityDealt = 5
	s.HoleCardsByUserID = map[string][]poker.Card{}
	for id, cards := range hole {
		s.HoleCardsByUserID[id] = poker.MustParseCards(cards...)
	}
	for id, c := range contributions {
		s.Stacks[id] -= c
		s.ContributionsByUserID[id] = c
		s.Pot += c
	}
	for _, id := range folded {
		s.FoldedByUserID[id] = true
	}
	return s
}
