package bot

import (
	rand "math/rand/v2"

	"github.com/lox/holdemtable/internal/game"
)

// RandBot picks a uniformly random legal action, and a uniformly random
// size for bets and raises.
type RandBot struct {
	rng *rand.Rand
}

// NewRandBot returns a RandBot drawing from rng.
func NewRandBot(rng *rand.Rand) *RandBot {
	return &RandBot{rng: rng}
}

func (r *RandBot) Decide(_ game.View, legal game.LegalActions) Decision {
	if len(legal.Actions) == 0 {
		return Decision{Action: game.Fold, Reasoning: "rand-bot no valid actions"}
	}
	va := legal.Actions[r.rng.IntN(len(legal.Actions))]
	amount := va.MinAmount
	if (va.Action == game.Bet || va.Action == game.Raise) && va.MaxAmount > va.MinAmount {
		amount = va.MinAmount + r.rng.IntN(va.MaxAmount-va.MinAmount+1)
	}
	return Decision{Action: va.Action, Amount: amount, Reasoning: "rand-bot random action"}
}
