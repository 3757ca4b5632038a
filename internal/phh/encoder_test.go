package phh_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/internal/phh"
	"github.com/lox/holdemtable/poker"
)

func TestCard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"TH", "Th"},
		{"10h", "Th"},
		{"as", "As"},
		{"2C", "2c"},
	}
	for _, tt := range tests {
		c, err := poker.ParseCard(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, phh.Card(c), tt.in)
	}
	assert.Equal(t, "AhKh", phh.Cards(poker.MustParseCards("AH", "KH")))
}

func TestFormatAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		idx    int
		typ    game.ActionType
		amount int
		want   string
		ok     bool
	}{
		{"fold", 0, game.Fold, 0, "p1 f", true},
		{"check", 1, game.Check, 0, "p2 cc", true},
		{"call", 3, game.Call, 0, "p4 cc", true},
		{"bet", 1, game.Bet, 40, "p2 cbr 40", true},
		{"raise", 0, game.Raise, 120, "p1 cbr 120", true},
		{"zero raise", 2, game.Raise, 0, "", false},
		{"unknown", 2, game.ActionType("STRADDLE"), 10, "# p3 STRADDLE 10", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := phh.FormatAction(tt.idx, tt.typ, tt.amount)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDealLines(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "d dh p1 ????", phh.DealHole(0, nil))
	assert.Equal(t, "d dh p2 7c2d", phh.DealHole(1, poker.MustParseCards("7C", "2D")))
	assert.Equal(t, "d db AhKhQh", phh.DealBoard(poker.MustParseCards("AH", "KH", "QH")))
	assert.Equal(t, "p3 sm QsJs", phh.ShowHand(2, poker.MustParseCards("QS", "JS")))
}

func TestEncodeDecodeHandHistory(t *testing.T) {
	t.Parallel()

	hand := &phh.HandHistory{
		Variant:           "NT",
		Table:             "default",
		SeatCount:         3,
		Seats:             []int{1, 2, 3},
		Antes:             []int{0, 0, 0},
		BlindsOrStraddles: []int{1, 2, 0},
		MinBet:            2,
		StartingStacks:    []int{200, 200, 200},
		FinishingStacks:   []int{200, 200, 200},
		Winnings:          []int{0, 0, 0},
		Actions:           []string{"d dh p1 AhKh", "d dh p2 7c2d", "d dh p3 QsJs", "p1 cbr 6", "p2 f", "p3 cc"},
		Players:           []string{"alice", "bob", "carol"},
		HandID:            "hand-00042",
	}
	hand.SetTime(time.Date(2025, time.November, 14, 15, 22, 0, 0, time.UTC))

	var buf bytes.Buffer
	require.NoError(t, phh.Encode(&buf, hand))

	want := "" +
		"variant = \"NT\"\n" +
		"table = \"default\"\n" +
		"seat_count = 3\n" +
		"seats = [1, 2, 3]\n" +
		"antes = [0, 0, 0]\n" +
		"blinds_or_straddles = [1, 2, 0]\n" +
		"min_bet = 2\n" +
		"starting_stacks = [200, 200, 200]\n" +
		"finishing_stacks = [200, 200, 200]\n" +
		"winnings = [0, 0, 0]\n" +
		"actions = [\"d dh p1 AhKh\", \"d dh p2 7c2d\", \"d dh p3 QsJs\", \"p1 cbr 6\", \"p2 f\", \"p3 cc\"]\n" +
		"players = [\"alice\", \"bob\", \"carol\"]\n" +
		"hand = \"hand-00042\"\n" +
		"time = \"15:22:00\"\n" +
		"time_zone = \"UTC\"\n" +
		"day = 14\n" +
		"month = 11\n" +
		"year = 2025\n"
	assert.Equal(t, want, buf.String())

	decoded, err := phh.Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, *hand, decoded)
}

func TestEncodeNil(t *testing.T) {
	t.Parallel()
	require.Error(t, phh.Encode(&bytes.Buffer{}, nil))
}
