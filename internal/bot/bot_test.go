package bot

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdemtable/internal/errcode"
	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/internal/randutil"
	"github.com/lox/holdemtable/poker"
)

var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestHandPercentile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cards []string
		want  float64
	}{
		{[]string{"AS", "AH"}, 1.0},
		{[]string{"KD", "AD"}, 0.982},
		{[]string{"7C", "2D"}, 0.0},
		{[]string{"TS", "9H"}, 0.568},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, HandPercentile(poker.MustParseCards(tt.cards...)), 1e-9, "%v", tt.cards)
	}
	assert.Zero(t, HandPercentile(poker.MustParseCards("AS")))
	assert.Len(t, startingHands, 169)
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, name := range Names {
		p, err := New(name, randutil.New(1))
		require.NoError(t, err, name)
		require.NotNil(t, p)
	}
	_, err := New("shark", randutil.New(1))
	require.Error(t, err)
}

func facingBet() game.LegalActions {
	return game.LegalActions{
		UserID: "alice",
		ToCall: 10,
		Actions: []game.ValidAction{
			{Action: game.Fold},
			{Action: game.Call, MinAmount: 10, MaxAmount: 10},
			{Action: game.Raise, MinAmount: 20, MaxAmount: 100},
		},
	}
}

func nothingToCall() game.LegalActions {
	return game.LegalActions{
		UserID: "alice",
		Actions: []game.ValidAction{
			{Action: game.Check},
			{Action: game.Bet, MinAmount: 2, MaxAmount: 100},
		},
	}
}

func TestPassivePolicies(t *testing.T) {
	t.Parallel()

	view := game.View{PublicState: game.PublicState{Phase: game.PhaseFlop, Pot: 30, Rules: game.Rules{SmallBlind: 1, BigBlind: 2}}}

	tests := []struct {
		name   string
		policy Policy
		legal  game.LegalActions
		want   game.ActionType
	}{
		{"fold-bot facing bet", FoldBot{}, facingBet(), game.Fold},
		{"fold-bot free", FoldBot{}, nothingToCall(), game.Check},
		{"call-bot facing bet", CallBot{}, facingBet(), game.Call},
		{"call-bot free", CallBot{}, nothingToCall(), game.Check},
		{"check-bot facing big bet", CheckBot{}, facingBet(), game.Fold},
		{"check-bot free", CheckBot{}, nothingToCall(), game.Check},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.policy.Decide(view, tt.legal).Action)
		})
	}
}

func TestCallBotFoldsRiverOverbet(t *testing.T) {
	t.Parallel()

	view := game.View{PublicState: game.PublicState{Phase: game.PhaseRiver, Pot: 110}}
	legal := facingBet()
	legal.ToCall = 100
	assert.Equal(t, game.Fold, CallBot{}.Decide(view, legal).Action)

	legal.ToCall = 10
	assert.Equal(t, game.Call, CallBot{}.Decide(view, legal).Action)
}

func TestRandBotStaysInBounds(t *testing.T) {
	t.Parallel()

	r := NewRandBot(randutil.New(42))
	for range 200 {
		d := r.Decide(game.View{}, facingBet())
		if d.Action == game.Raise {
			assert.GreaterOrEqual(t, d.Amount, 20)
			assert.LessOrEqual(t, d.Amount, 100)
		}
	}
	assert.Equal(t, game.Fold, r.Decide(game.View{}, game.LegalActions{}).Action)
}

func TestDecisionAction(t *testing.T) {
	t.Parallel()

	assert.Equal(t, game.Action{Type: game.Raise, UserID: "bob", Amount: 40}, Decision{Action: game.Raise, Amount: 40}.Action("bob"))
	assert.Equal(t, game.Action{Type: game.Call, UserID: "bob"}, Decision{Action: game.Call, Amount: 10}.Action("bob"))
}

// playSession runs hands with the given policies until one player has all
// the chips or the hand limit is reached, checking every decision is legal.
func playSession(t *testing.T, policies []Policy, hands int) game.State {
	t.Helper()
	seats := make([]game.Seat, len(policies))
	stacks := map[string]int{}
	byUser := map[string]Policy{}
	for i, p := range policies {
		id := fmt.Sprintf("bot-%d", i+1)
		seats[i] = game.Seat{UserID: id, SeatNo: i + 1, Bot: true}
		stacks[id] = 200
		byUser[id] = p
	}
	s := game.NewTable("sim", game.Rules{SmallBlind: 1, BigBlind: 2}, seats, stacks)
	total := s.ChipTotal()
	now := t0

	for h := 0; h < hands; h++ {
		next, err := game.InitHand(s, game.InitParams{HandID: fmt.Sprintf("h%d", h), HandSeed: fmt.Sprintf("seed-%d", h)}, now)
		if err != nil {
			require.ErrorIs(t, err, errcode.ErrNotEnoughPlayers)
			break
		}
		s = next
		for steps := 0; !s.Settled(); steps++ {
			require.Less(t, steps, 500, "hand %d did not finish", h)
			uid := s.TurnUserID
			d := byUser[uid].Decide(game.ViewFor(s, uid), game.Legal(s, uid))
			now = now.Add(time.Second)
			s, err = game.ApplyAction(s, d.Action(uid), now)
			require.NoError(t, err, "hand %d: %s chose %s %d (%s)", h, uid, d.Action, d.Amount, d.Reasoning)
		}
		require.Equal(t, total, s.ChipTotal())
	}
	return s
}

func TestPoliciesPlayLegalHands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		policies func() []Policy
	}{
		{"passive", func() []Policy { return []Policy{CallBot{}, CheckBot{}, FoldBot{}} }},
		{"random", func() []Policy { return []Policy{NewRandBot(randutil.New(1)), NewRandBot(randutil.New(2))} }},
		{"mixed", func() []Policy {
			return []Policy{NewManiacBot(randutil.New(3)), NewTAGBot(randutil.New(4)), CallBot{}, NewRandBot(randutil.New(5))}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			playSession(t, tt.policies(), 50)
		})
	}
}
