package game

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdemtable/internal/errcode"
	"github.com/lox/holdemtable/poker"
)

func splitState(t *testing.T) State {
	t.Helper()
	s := riverState(t,
		[]string{"2H", "3D", "4S", "5C", "6H"},
		map[string][]string{"alice": {"2C", "3C"}, "bob": {"2D", "3S"}, "carol": {"KH", "KD"}},
		map[string]int{"alice": 2, "bob": 2, "carol": 1},
		"carol",
	)
	s.Phase = PhaseShowdown
	return s
}

func TestShowdownSplitRemainderGoesLeftOfButton(t *testing.T) {
	t.Parallel()
	s, err := Settle(splitState(t), t0)
	require.NoError(t, err)

	assert.Equal(t, PhaseSettled, s.Phase)
	assert.Equal(t, map[string]int{"alice": 3, "bob": 2}, s.HandSettlement.Payouts)
	assert.Equal(t, 101, s.Stacks["alice"])
	assert.Equal(t, 100, s.Stacks["bob"])
	assert.Equal(t, 99, s.Stacks["carol"])
	require.Len(t, s.Showdown.Pots, 1)
	assert.ElementsMatch(t, []string{"alice", "bob"}, s.Showdown.Pots[0].Winners)

	_, revealed := s.Showdown.Revealed["carol"]
	assert.False(t, revealed, "folded cards are never revealed")
	assert.Equal(t, poker.MustParseCards("2C", "3C"), s.Showdown.Revealed["alice"])
	assert.Equal(t, poker.Straight, s.Showdown.HandValues["bob"].Category)
	assert.Equal(t, t0, s.HandSettlement.SettledAt)
}

func TestShowdownSidePots(t *testing.T) {
	t.Parallel()
	s := riverState(t,
		[]string{"2H", "7D", "9S", "JC", "KH"},
		map[string][]string{"alice": {"9H", "9D"}, "bob": {"AS", "AD"}, "carol": {"QH", "QD"}},
		map[string]int{"alice": 10, "bob": 30, "carol": 30},
	)
	s.AllInByUserID["alice"] = true
	s.Phase = PhaseShowdown

	s, err := Settle(s, t0)
	require.NoError(t, err)

	require.Len(t, s.Showdown.Pots, 2)
	assert.Equal(t, 30, s.Showdown.Pots[0].Amount)
	assert.Equal(t, []string{"alice"}, s.Showdown.Pots[0].Winners)
	assert.Equal(t, 40, s.Showdown.Pots[1].Amount)
	assert.Equal(t, []string{"bob"}, s.Showdown.Pots[1].Winners)
	assert.Equal(t, map[string]int{"alice": 30, "bob": 40}, s.HandSettlement.Payouts)
	assert.Equal(t, 70, s.Showdown.TotalAwarded)
	assert.Equal(t, map[string]int{"alice": 120, "bob": 110, "carol": 70}, s.Stacks)
}

func TestSettleIsIdempotent(t *testing.T) {
	t.Parallel()
	settled, err := Settle(splitState(t), t0)
	require.NoError(t, err)

	again, err := Settle(settled, t0.Add(1000))
	require.NoError(t, err)

	a, err := json.Marshal(settled)
	require.NoError(t, err)
	b, err := json.Marshal(again)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	derived, err := DeriveSettlement(again)
	require.NoError(t, err)
	assert.Equal(t, *settled.HandSettlement, derived)
}

func TestSettleInvariantViolations(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*State)
		want   *errcode.Error
	}{
		{"missing hole cards", func(s *State) { delete(s.HoleCardsByUserID, "bob") }, errcode.ErrShowdownMissingHoleCards},
		{"short board", func(s *State) { s.Community = s.Community[:4]; s.CommunityDealt = 4 }, errcode.ErrShowdownInvalidCommunity},
		{"pot mismatch", func(s *State) { s.Pot++; s.Stacks["carol"]-- }, errcode.ErrShowdownInvalidPot},
		{"negative stack", func(s *State) { s.Stacks["bob"] = -1 }, errcode.ErrShowdownInvalidStack},
		{"everyone folded", func(s *State) { s.FoldedByUserID["alice"] = true; s.FoldedByUserID["bob"] = true }, errcode.ErrShowdownNoWinners},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := splitState(t)
			tt.mutate(&s)
			_, err := Settle(s, t0)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.True(t, errcode.IsInvariant(err))
		})
	}
}

func TestSettleRejectsActiveHand(t *testing.T) {
	t.Parallel()
	s := startHand(t, newTestTable([]string{"A", "B"}, 100, 100), 2)
	_, err := Settle(s, t0)
	assert.True(t, errors.Is(err, errcode.ErrInvalidPhase))
}

func TestDeriveSettlementRequiresSettledHand(t *testing.T) {
	t.Parallel()
	_, err := DeriveSettlement(splitState(t))
	assert.True(t, errors.Is(err, errcode.ErrSettlementIncomplete))
}
