package bot

import (
	rand "math/rand/v2"

	"github.com/lox/holdemtable/internal/game"
)

// ManiacBot bets and raises most of the time, shoves often and rarely folds.
type ManiacBot struct {
	rng *rand.Rand
}

// NewManiacBot returns a ManiacBot drawing from rng.
func NewManiacBot(rng *rand.Rand) *ManiacBot {
	return &ManiacBot{rng: rng}
}

func (m *ManiacBot) Decide(view game.View, legal game.LegalActions) Decision {
	agg, canAggress := aggression(legal)
	stack := view.Stacks[legal.UserID]

	if legal.Allows(game.Check) {
		if canAggress && m.rng.Float64() < 0.85 {
			if stack <= 20*view.Rules.BigBlind || m.rng.Float64() < 0.3 {
				return Decision{Action: agg.Action, Amount: agg.MaxAmount, Reasoning: "maniac shove"}
			}
			size := agg.MinAmount + (agg.MaxAmount-agg.MinAmount)*3/4
			return Decision{Action: agg.Action, Amount: size, Reasoning: "maniac big bet"}
		}
		return choose(legal, "maniac checking", game.Check)
	}

	r := m.rng.Float64()
	switch {
	case r < 0.4 && canAggress:
		return Decision{Action: agg.Action, Amount: agg.MaxAmount, Reasoning: "maniac shove over bet"}
	case r < 0.8:
		return choose(legal, "maniac call", game.Call)
	}
	return choose(legal, "maniac fold", game.Fold)
}
