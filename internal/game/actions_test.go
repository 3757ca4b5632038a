package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdemtable/internal/errcode"
	"github.com/lox/holdemtable/internal/randutil"
)

func TestHeadsUpFoldPreflop(t *testing.T) {
	t.Parallel()
	s := startHand(t, newTestTable([]string{"A", "B"}, 100, 100), 2)
	require.Equal(t, "B", s.TurnUserID)

	s = act(t, s, "B", Fold, 0)

	assert.Equal(t, PhaseSettled, s.Phase)
	assert.Equal(t, 101, s.Stacks["A"])
	assert.Equal(t, 99, s.Stacks["B"])
	assert.Equal(t, 0, s.Pot)
	require.NotNil(t, s.HandSettlement)
	assert.Equal(t, map[string]int{"A": 2}, s.HandSettlement.Payouts)
	require.NotNil(t, s.Showdown)
	assert.True(t, s.Showdown.FoldOut)
	assert.Empty(t, s.Showdown.Revealed, "a fold-out reveals no cards")
	assert.Nil(t, s.HoleCardsByUserID)
	assert.Nil(t, s.Deck)
	assert.Empty(t, s.TurnUserID)
}

func TestCheckedDownHandReachesShowdown(t *testing.T) {
	t.Parallel()
	s := startHand(t, newTestTable([]string{"A", "B"}, 100, 100), 2)

	s = act(t, s, "B", Call, 0)
	s = act(t, s, "A", Check, 0)
	require.Equal(t, PhaseFlop, s.Phase)
	assert.Len(t, s.Community, 3)
	assert.Equal(t, "A", s.TurnUserID, "postflop the seat left of the button acts first")

	for _, phase := range []Phase{PhaseFlop, PhaseTurn, PhaseRiver} {
		require.Equal(t, phase, s.Phase)
		s = act(t, s, "A", Check, 0)
		s = act(t, s, "B", Check, 0)
	}

	assert.Equal(t, PhaseSettled, s.Phase)
	assert.Equal(t, 200, s.Stacks["A"]+s.Stacks["B"])
	require.NotNil(t, s.Showdown)
	assert.False(t, s.Showdown.FoldOut)
	assert.Len(t, s.Showdown.Revealed, 2)
	assert.Equal(t, 4, s.HandSettlement.Total())
	assert.Len(t, s.ActionLog, 8)
}

func TestBetCallAdvancesStreet(t *testing.T) {
	t.Parallel()
	s := startHand(t, newTestTable([]string{"A", "B", "C"}, 100, 100, 100), 1)
	// Button A, SB B, BB C. A acts first preflop.
	s = act(t, s, "A", Call, 0)
	s = act(t, s, "B", Call, 0)
	s = act(t, s, "C", Check, 0)
	require.Equal(t, PhaseFlop, s.Phase)
	require.Equal(t, "B", s.TurnUserID)

	s = act(t, s, "B", Bet, 6)
	assert.Equal(t, 6, s.CurrentBet)
	assert.Equal(t, 6, s.LastFullRaiseSize)
	assert.Equal(t, 6, s.ToCallByUserID["C"])
	s = act(t, s, "C", Fold, 0)
	s = act(t, s, "A", Call, 0)

	assert.Equal(t, PhaseTurn, s.Phase)
	assert.Equal(t, 0, s.CurrentBet)
	assert.Empty(t, s.BetThisRoundByUserID)
	assert.Equal(t, 8, s.ContributionsByUserID["A"])
	assert.Equal(t, 2, s.ContributionsByUserID["C"])
	assert.Equal(t, 18, s.Pot)
	assert.Equal(t, "B", s.TurnUserID)
}

func TestActionRejections(t *testing.T) {
	t.Parallel()
	base := startHand(t, newTestTable([]string{"A", "B", "C"}, 100, 100, 5), 1)
	// Button A to act facing the big blind of 2.
	tests := []struct {
		name   string
		action Action
		want   *errcode.Error
	}{
		{"out of turn", Action{Type: Call, UserID: "B"}, errcode.ErrNotYourTurn},
		{"stranger", Action{Type: Call, UserID: "zed"}, errcode.ErrNotYourTurn},
		{"check facing a bet", Action{Type: Check, UserID: "A"}, errcode.ErrCannotCheck},
		{"bet when a bet exists", Action{Type: Bet, UserID: "A", Amount: 10}, errcode.ErrCannotBet},
		{"raise not above current bet", Action{Type: Raise, UserID: "A", Amount: 2}, errcode.ErrInvalidRaise},
		{"raise below minimum", Action{Type: Raise, UserID: "A", Amount: 3}, errcode.ErrRaiseTooSmall},
		{"raise beyond stack", Action{Type: Raise, UserID: "A", Amount: 101}, errcode.ErrInsufficientStack},
		{"unknown type", Action{Type: "SHOVE", UserID: "A"}, errcode.ErrInvalidAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			before, err := json.Marshal(base)
			require.NoError(t, err)

			next, err := ApplyAction(base, tt.action, t0)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.True(t, errcode.IsValidation(err))

			after, err := json.Marshal(base)
			require.NoError(t, err)
			assert.Equal(t, string(before), string(after), "input state must not change")
			assert.Equal(t, base.TurnNo, next.TurnNo)
		})
	}
}

func TestActionRejectionsPostflop(t *testing.T) {
	t.Parallel()
	s := startHand(t, newTestTable([]string{"A", "B"}, 100, 100), 2)
	s = act(t, s, "B", Call, 0)
	s = act(t, s, "A", Check, 0)
	require.Equal(t, "A", s.TurnUserID)

	_, err := ApplyAction(s, Action{Type: Call, UserID: "A"}, t0)
	assert.True(t, errors.Is(err, errcode.ErrCannotCall))
	_, err = ApplyAction(s, Action{Type: Raise, UserID: "A", Amount: 4}, t0)
	assert.True(t, errors.Is(err, errcode.ErrCannotRaise))
	_, err = ApplyAction(s, Action{Type: Bet, UserID: "A", Amount: 0}, t0)
	assert.True(t, errors.Is(err, errcode.ErrInvalidBet))
	_, err = ApplyAction(s, Action{Type: Bet, UserID: "A", Amount: 1}, t0)
	assert.True(t, errors.Is(err, errcode.ErrBetTooSmall))
	_, err = ApplyAction(s, Action{Type: Bet, UserID: "A", Amount: 200}, t0)
	assert.True(t, errors.Is(err, errcode.ErrInsufficientStack))
}

func TestCannotActWhenFoldedOrAllIn(t *testing.T) {
	t.Parallel()
	s := startHand(t, newTestTable([]string{"A", "B", "C"}, 100, 100, 100), 1)
	s = act(t, s, "A", Raise, 100)
	require.True(t, s.AllInByUserID["A"])
	s = act(t, s, "B", Fold, 0)

	_, err := ApplyAction(s, Action{Type: Call, UserID: "A"}, t0)
	assert.True(t, errors.Is(err, errcode.ErrCannotAct))
	_, err = ApplyAction(s, Action{Type: Call, UserID: "B"}, t0)
	assert.True(t, errors.Is(err, errcode.ErrCannotAct))
}

func TestActOnSettledHand(t *testing.T) {
	t.Parallel()
	s := startHand(t, newTestTable([]string{"A", "B"}, 100, 100), 2)
	s = act(t, s, "B", Fold, 0)
	_, err := ApplyAction(s, Action{Type: Check, UserID: "A"}, t0)
	assert.True(t, errors.Is(err, errcode.ErrHandNotActive))
}

func TestCallExactStackGoesAllIn(t *testing.T) {
	t.Parallel()
	s := startHand(t, newTestTable([]string{"A", "B", "C"}, 100, 100, 10), 1)
	s = act(t, s, "A", Raise, 10)
	s = act(t, s, "B", Fold, 0)

	legal := Legal(s, "C")
	call, ok := legal.Find(Call)
	require.True(t, ok)
	assert.Equal(t, 8, call.MinAmount)
	assert.False(t, legal.Allows(Raise), "no chips remain after calling")

	s = act(t, s, "C", Call, 0)
	assert.Equal(t, 10, s.ContributionsByUserID["C"])
	assert.True(t, s.AllInByUserID["C"])
	assert.Equal(t, PhaseSettled, s.Phase, "nobody left to act: board runs out")
	assert.Equal(t, 210, s.Stacks["A"]+s.Stacks["B"]+s.Stacks["C"])
}

func TestRequestIDIsIdempotent(t *testing.T) {
	t.Parallel()
	s := startHand(t, newTestTable([]string{"A", "B", "C"}, 100, 100, 100), 1)

	a := Action{Type: Raise, UserID: "A", Amount: 6, RequestID: "req-1"}
	once, err := ApplyAction(s, a, t0)
	require.NoError(t, err)
	twice, err := ApplyAction(once, a, t0)
	require.NoError(t, err)

	first, err := json.Marshal(once)
	require.NoError(t, err)
	second, err := json.Marshal(twice)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.Equal(t, 94, twice.Stacks["A"])
	assert.True(t, once.AlreadyApplied(a))
}

func TestOlderRequestIDIsNotReapplied(t *testing.T) {
	t.Parallel()
	// Button A, SB B, BB C. Postflop B acts first.
	s := startHand(t, newTestTable([]string{"A", "B", "C"}, 100, 100, 100), 1)
	s = act(t, s, "A", Call, 0)
	s = act(t, s, "B", Call, 0)
	s = act(t, s, "C", Check, 0)
	require.Equal(t, PhaseFlop, s.Phase)

	check := func(s State, user, reqID string) State {
		t.Helper()
		next, err := ApplyAction(s, Action{Type: Check, UserID: user, RequestID: reqID}, t0)
		require.NoError(t, err)
		return next
	}
	s = check(s, "B", "b2")
	s = check(s, "C", "c2")
	s = check(s, "A", "a2")
	require.Equal(t, PhaseTurn, s.Phase)
	s = check(s, "B", "b3")
	s = check(s, "C", "c3")
	s = check(s, "A", "a3")
	require.Equal(t, PhaseRiver, s.Phase)
	require.Equal(t, "B", s.TurnUserID)

	stale := Action{Type: Check, UserID: "B", RequestID: "b2"}
	assert.True(t, s.AlreadyApplied(stale))
	again, err := ApplyAction(s, stale, t0)
	require.NoError(t, err)
	assert.Len(t, again.ActionLog, len(s.ActionLog))
	assert.Equal(t, "B", again.TurnUserID)
	assert.Equal(t, s.TurnNo, again.TurnNo)

	assert.False(t, s.AlreadyApplied(Action{Type: Check, UserID: "C", RequestID: "b2"}),
		"request ids are scoped to their user")
}

// Incomplete raise: a short all-in raise does not reopen raising to seats
// that already acted since the last full raise.
func TestShortAllInRaiseDoesNotReopen(t *testing.T) {
	t.Parallel()
	// Button A, SB B, BB C with 14 chips.
	s := startHand(t, newTestTable([]string{"A", "B", "C"}, 100, 100, 14), 1)

	s = act(t, s, "A", Raise, 10) // full raise of 8
	s = act(t, s, "B", Call, 0)
	s = act(t, s, "C", Raise, 14) // all-in, raise of 4 < 8

	assert.Equal(t, 14, s.CurrentBet)
	assert.Equal(t, 8, s.LastFullRaiseSize)
	assert.Equal(t, 4, s.LastRaiseSize)
	assert.True(t, s.RaiseClosedByUserID["A"])
	assert.True(t, s.RaiseClosedByUserID["B"])

	require.Equal(t, "A", s.TurnUserID)
	legal := Legal(s, "A")
	assert.True(t, legal.Allows(Call))
	assert.True(t, legal.Allows(Fold))
	assert.False(t, legal.Allows(Raise))

	_, err := ApplyAction(s, Action{Type: Raise, UserID: "A", Amount: 30}, t0)
	assert.True(t, errors.Is(err, errcode.ErrCannotRaise))

	s = act(t, s, "A", Call, 0)
	s = act(t, s, "B", Call, 0)
	assert.Equal(t, PhaseFlop, s.Phase)
	assert.Empty(t, s.RaiseClosedByUserID)
	assert.Equal(t, 42, s.Pot)
}

func TestFullAllInRaiseReopens(t *testing.T) {
	t.Parallel()
	s := startHand(t, newTestTable([]string{"A", "B", "C"}, 100, 100, 50), 1)

	s = act(t, s, "A", Raise, 10)
	s = act(t, s, "B", Call, 0)
	s = act(t, s, "C", Raise, 50) // all-in, raise of 40 >= 8

	assert.Equal(t, 40, s.LastFullRaiseSize)
	assert.Empty(t, s.RaiseClosedByUserID)
	raise, ok := Legal(s, "A").Find(Raise)
	require.True(t, ok)
	assert.Equal(t, 90, raise.MinAmount)
	assert.Equal(t, 100, raise.MaxAmount)
}

func TestShortRaiseStillAllowsSeatsYetToAct(t *testing.T) {
	t.Parallel()
	// Button A (14 chips), SB B, BB C, UTG D.
	s := startHand(t, newTestTable([]string{"A", "B", "C", "D"}, 14, 100, 100, 100), 1)

	s = act(t, s, "D", Raise, 10)
	s = act(t, s, "A", Raise, 14) // short all-in
	assert.True(t, s.RaiseClosedByUserID["D"])
	assert.False(t, s.RaiseClosedByUserID["B"])

	raise, ok := Legal(s, "B").Find(Raise)
	require.True(t, ok, "B has not acted yet and may raise")
	assert.Equal(t, 22, raise.MinAmount)

	s = act(t, s, "B", Call, 0)
	s = act(t, s, "C", Call, 0)
	require.Equal(t, "D", s.TurnUserID)
	assert.False(t, Legal(s, "D").Allows(Raise))

	s2 := s
	s = act(t, s, "D", Call, 0)
	assert.Equal(t, PhaseFlop, s.Phase)

	_, err := ApplyAction(s2, Action{Type: Raise, UserID: "D", Amount: 40}, t0)
	assert.True(t, errors.Is(err, errcode.ErrCannotRaise))
}

// Short all-in raises that add up to a full raise reopen raising for a seat
// that acted before them.
func TestShortRaisesAddingUpToFullRaiseReopen(t *testing.T) {
	t.Parallel()
	// Button A, SB B, BB C, UTG D.
	s := startHand(t, newTestTable([]string{"A", "B", "C", "D"}, 300, 300, 152, 202), 1)
	s = act(t, s, "D", Call, 0)
	s = act(t, s, "A", Call, 0)
	s = act(t, s, "B", Call, 0)
	s = act(t, s, "C", Check, 0)
	require.Equal(t, PhaseFlop, s.Phase)

	s = act(t, s, "B", Bet, 100)
	s = act(t, s, "C", Raise, 150) // all-in, 50 short of a full raise
	assert.True(t, s.RaiseClosedByUserID["B"])

	s = act(t, s, "D", Raise, 200) // all-in, another 50
	assert.Equal(t, 100, s.LastFullRaiseSize)
	assert.False(t, s.RaiseClosedByUserID["B"], "B now faces a full raise over its bet")

	s = act(t, s, "A", Call, 0)
	require.Equal(t, "B", s.TurnUserID)
	legal := Legal(s, "B")
	assert.True(t, legal.Allows(Raise))
	assert.True(t, legal.Allows(Call))

	next, err := ApplyAction(s, Action{Type: Raise, UserID: "B", Amount: 298}, t0)
	require.NoError(t, err)
	assert.True(t, next.AllInByUserID["B"])
}

func TestUncalledBetReturned(t *testing.T) {
	t.Parallel()
	s := startHand(t, newTestTable([]string{"A", "B"}, 100, 30), 2)
	// B is the button/small blind.
	s = act(t, s, "B", Call, 0)
	s = act(t, s, "A", Check, 0)
	s = act(t, s, "A", Bet, 80)
	s = act(t, s, "B", Call, 0) // all-in for 28

	assert.Equal(t, PhaseSettled, s.Phase)
	assert.Equal(t, 130, s.Stacks["A"]+s.Stacks["B"])
	assert.Equal(t, 30, s.ContributionsByUserID["A"], "the unmatched 52 went back to A")
	assert.Equal(t, 60, s.HandSettlement.Total())
}

// Random legal play never creates or destroys chips.
func TestChipConservationUnderRandomPlay(t *testing.T) {
	t.Parallel()
	rng := randutil.New(7)
	ids := []string{"p1", "p2", "p3", "p4", "p5"}
	s := newTestTable(ids, 100, 50, 200, 20, 80)
	total := s.ChipTotal()
	now := t0

	for hand := 0; hand < 60; hand++ {
		next, err := InitHand(s, InitParams{HandID: fmt.Sprintf("hand-%d", hand), HandSeed: fmt.Sprintf("seed-%d", hand)}, now)
		if errors.Is(err, errcode.ErrNotEnoughPlayers) {
			break
		}
		require.NoError(t, err)
		s = next
		require.Equal(t, total, s.ChipTotal())

		for steps := 0; s.Phase.Betting(); steps++ {
			require.Less(t, steps, 200, "hand did not terminate")
			legal := Legal(s, s.TurnUserID)
			require.NotEmpty(t, legal.Actions, "turn holder %s has no legal action", s.TurnUserID)

			va := legal.Actions[rng.IntN(len(legal.Actions))]
			a := Action{Type: va.Action, UserID: s.TurnUserID}
			if va.Action == Bet || va.Action == Raise {
				a.Amount = va.MinAmount + rng.IntN(va.MaxAmount-va.MinAmount+1)
			}
			now = now.Add(time.Second)
			s, err = ApplyAction(s, a, now)
			require.NoError(t, err, "action %s", a)
			require.Equal(t, total, s.ChipTotal())
		}

		require.Equal(t, PhaseSettled, s.Phase)
		require.Equal(t, 0, s.Pot)
		stacks := 0
		for _, v := range s.Stacks {
			require.GreaterOrEqual(t, v, 0)
			stacks += v
		}
		require.Equal(t, total, stacks)
		require.NoError(t, VerifyReplay(s))
	}
}
