package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeoutBeforeDeadlineIsNoop(t *testing.T) {
	t.Parallel()
	s := startHand(t, newTestTable([]string{"A", "B"}, 100, 100), 2)

	res, err := ApplyTimeout(s, t0.Add(29*time.Second))
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.False(t, res.Replayed)
	assert.Equal(t, s.TurnNo, res.State.TurnNo)
}

func TestTimeoutFoldsWhenOwing(t *testing.T) {
	t.Parallel()
	s := startHand(t, newTestTable([]string{"A", "B"}, 100, 100), 2)
	require.Equal(t, "B", s.TurnUserID)

	res, err := ApplyTimeout(s, t0.Add(30*time.Second))
	require.NoError(t, err)
	require.True(t, res.Applied)
	require.NotNil(t, res.Action)
	assert.Equal(t, Fold, res.Action.Type)
	assert.Equal(t, "auto:table-1:hand-1:1", res.Action.RequestID)

	// Same outcome as a player folding.
	manual := act(t, s, "B", Fold, 0)
	assert.Equal(t, manual.Stacks, res.State.Stacks)
	assert.Equal(t, manual.HandSettlement.Payouts, res.State.HandSettlement.Payouts)
	assert.Equal(t, PhaseSettled, res.State.Phase)
	assert.Equal(t, 1, res.State.MissedTurnsByUserID["B"])
}

func TestTimeoutChecksWhenNothingOwed(t *testing.T) {
	t.Parallel()
	s := startHand(t, newTestTable([]string{"A", "B"}, 100, 100), 2)
	s = act(t, s, "B", Call, 0)
	require.Equal(t, "A", s.TurnUserID)

	deadline := *s.TurnDeadlineAt
	res, err := ApplyTimeout(s, deadline.Add(time.Millisecond))
	require.NoError(t, err)
	require.True(t, res.Applied)
	assert.Equal(t, Check, res.Action.Type)
	assert.Equal(t, PhaseFlop, res.State.Phase)
	assert.True(t, res.State.AlreadyApplied(*res.Action))
}

func TestTimeoutReplayDetected(t *testing.T) {
	t.Parallel()
	s := startHand(t, newTestTable([]string{"A", "B", "C"}, 100, 100, 100), 1)
	// Mark the forced action of this turn as already applied.
	s.LastActionRequestIDByUserID["A"] = TimeoutRequestID(s)

	res, err := ApplyTimeout(s, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.True(t, res.Replayed)
}

func TestTimeoutReplayDetectedFromActionLog(t *testing.T) {
	t.Parallel()
	s := startHand(t, newTestTable([]string{"A", "B", "C"}, 100, 100, 100), 1)
	s.ActionLog = append(s.ActionLog, ActionRecord{UserID: "A", Type: Fold, RequestID: TimeoutRequestID(s), Auto: true})

	res, err := ApplyTimeout(s, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.True(t, res.Replayed)
	assert.Equal(t, "A", res.State.TurnUserID)
}

func TestMissedTurnsSitPlayerOut(t *testing.T) {
	t.Parallel()
	s := startHand(t, newTestTable([]string{"A", "B", "C"}, 100, 100, 100), 1)
	now := t0

	// C never acts; everyone else checks or calls.
	timeouts := 0
	for s.Phase.Betting() {
		now = now.Add(time.Minute)
		if s.TurnUserID == "C" {
			res, err := ApplyTimeout(s, now)
			require.NoError(t, err)
			require.True(t, res.Applied)
			assert.Equal(t, Check, res.Action.Type)
			s = res.State
			timeouts++
			continue
		}
		typ := Call
		if Legal(s, s.TurnUserID).Allows(Check) {
			typ = Check
		}
		var err error
		s, err = ApplyAction(s, Action{Type: typ, UserID: s.TurnUserID}, now)
		require.NoError(t, err)
	}
	require.Equal(t, PhaseSettled, s.Phase)
	assert.Equal(t, 4, timeouts)
	assert.Equal(t, 4, s.MissedTurnsByUserID["C"])
	assert.True(t, s.SittingOutByUserID["C"])

	next, err := InitHand(s, InitParams{HandID: "h2", HandSeed: "s2"}, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, next.HandPlayers)

	back := SitIn(s, "C")
	assert.False(t, back.SittingOutByUserID["C"])
	assert.Zero(t, back.MissedTurnsByUserID["C"])
	assert.True(t, s.SittingOutByUserID["C"], "SitIn does not modify its input")
}

func TestVoluntaryActionResetsMissedTurns(t *testing.T) {
	t.Parallel()
	s := startHand(t, newTestTable([]string{"A", "B"}, 100, 100), 2)
	s.MissedTurnsByUserID["B"] = 1
	s = act(t, s, "B", Call, 0)
	assert.Zero(t, s.MissedTurnsByUserID["B"])
}
