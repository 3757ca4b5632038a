package game

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdemtable/internal/errcode"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()
	s := startHand(t, newTestTable([]string{"A", "B", "C"}, 100, 100, 100), 1)
	s = act(t, s, "A", Raise, 6)

	raw, err := Encode(s)
	require.NoError(t, err)
	back, err := Decode(raw)
	require.NoError(t, err)

	again, err := Encode(back)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(again))
	assert.Equal(t, s.HoleCardsByUserID, back.HoleCardsByUserID)
}

func TestPublicEncodingOmitsPrivateFields(t *testing.T) {
	t.Parallel()
	s := startHand(t, newTestTable([]string{"A", "B"}, 100, 100), 2)

	raw, err := EncodePublic(s)
	require.NoError(t, err)
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))

	for _, key := range []string{"holeCardsByUserId", "deck", "handSeed"} {
		_, ok := fields[key]
		assert.False(t, ok, "%s leaked into public state", key)
	}
	assert.Contains(t, fields, "stacks")
	assert.Contains(t, fields, "turnUserId")

	full, err := Encode(s)
	require.NoError(t, err)
	assert.Contains(t, string(full), "holeCardsByUserId")
}

const legacySnapshot = `{
	"tableId": "legacy",
	"phase": "FLOP",
	"handId": "h-old",
	"handSeed": "seed-old",
	"handNo": 7,
	"seats": [{"userId": "bob", "seatNo": 2}, {"userId": "alice", "seatNo": 1}],
	"rules": {"smallBlind": 1, "bigBlind": 2},
	"stacks": {"alice": 90, "bob": 96},
	"pot": 14,
	"community": ["2H", "7D", "9S"],
	"dealerSeatNo": 2,
	"turnUserId": "alice",
	"turnNo": 3,
	"turnDeadlineAt": 1767225600000,
	"betThisRoundByUserId": {"alice": 4, "bob": 0},
	"contributionsByUserId": {"alice": 10, "bob": 4},
	"actedThisRoundByUserId": ["alice"],
	"foldedByUserId": {},
	"currentBet": 4,
	"lastRaiseSize": 4
}`

func TestDecodeUpgradesLegacySnapshot(t *testing.T) {
	t.Parallel()
	s, err := Decode([]byte(legacySnapshot))
	require.NoError(t, err)

	assert.Equal(t, SchemaVersion, s.SchemaVersion)
	assert.Equal(t, 4, s.LastFullRaiseSize)
	assert.Equal(t, 3, s.CommunityDealt)
	assert.Equal(t, map[string]bool{"alice": true}, s.ActedThisRoundByUserID)
	assert.Equal(t, []string{"alice", "bob"}, s.HandPlayers)
	assert.Equal(t, 1, s.Seats[0].SeatNo)
	require.NotNil(t, s.TurnDeadlineAt)
	assert.Equal(t, int64(1767225600000), s.TurnDeadlineAt.UnixMilli())
	assert.Equal(t, 4, s.ToCallByUserID["bob"])
	assert.NotNil(t, s.RaiseClosedByUserID)
}

func TestDecodeRejectsFutureSchema(t *testing.T) {
	t.Parallel()
	_, err := Decode([]byte(`{"schemaVersion": 99}`))
	assert.True(t, errors.Is(err, errcode.ErrUnsupportedSchema))
}

func TestReplayReproducesHand(t *testing.T) {
	t.Parallel()
	s := startHand(t, newTestTable([]string{"A", "B", "C"}, 100, 60, 100), 1)
	s = act(t, s, "A", Raise, 8)
	s = act(t, s, "B", Raise, 60)
	s = act(t, s, "C", Fold, 0)
	s = act(t, s, "A", Call, 0)
	require.Equal(t, PhaseSettled, s.Phase)

	require.NoError(t, VerifyReplay(s))

	tampered := s.Clone()
	tampered.Stacks["A"]++
	tampered.Stacks["B"]--
	assert.True(t, errors.Is(VerifyReplay(tampered), errcode.ErrReplayDiverged))
}
