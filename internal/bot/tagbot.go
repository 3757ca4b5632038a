package bot

import (
	rand "math/rand/v2"

	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/poker"
)

// TAGBot is tight and aggressive: it plays a narrow preflop range from the
// starting hand chart and bets made hands after the flop.
type TAGBot struct {
	rng *rand.Rand
}

// NewTAGBot returns a TAGBot drawing from rng.
func NewTAGBot(rng *rand.Rand) *TAGBot {
	return &TAGBot{rng: rng}
}

func (t *TAGBot) Decide(view game.View, legal game.LegalActions) Decision {
	if view.Phase == game.PhasePreflop {
		return t.preflop(view, legal)
	}
	return t.postflop(view, legal)
}

func (t *TAGBot) preflop(view game.View, legal game.LegalActions) Decision {
	pct := HandPercentile(view.HoleCards)
	switch {
	case pct >= 0.85:
		if agg, ok := aggression(legal); ok {
			return Decision{Action: agg.Action, Amount: agg.MinAmount + (agg.MaxAmount-agg.MinAmount)/4, Reasoning: "TAG raise premium"}
		}
		return choose(legal, "TAG premium call", game.Call, game.Check)
	case pct >= 0.6:
		if legal.ToCall <= 3*view.Rules.BigBlind {
			return choose(legal, "TAG playable hand", game.Check, game.Call)
		}
	}
	if legal.Allows(game.Check) {
		return choose(legal, "TAG check", game.Check)
	}
	if t.rng.Float64() < 0.1 && legal.ToCall <= view.Rules.BigBlind {
		return choose(legal, "TAG loose call", game.Call)
	}
	return choose(legal, "TAG fold", game.Fold)
}

func (t *TAGBot) postflop(view game.View, legal game.LegalActions) Decision {
	cards := append(append([]poker.Card{}, view.HoleCards...), view.Community...)
	eval, err := poker.Evaluate(cards)
	if err != nil {
		return choose(legal, "TAG cannot read hand", game.Check, game.Fold)
	}

	category := eval.Value.Category
	switch {
	case category >= poker.TwoPair:
		if agg, ok := aggression(legal); ok {
			target := legal.ToCall + view.Pot
			if target < agg.MinAmount {
				target = agg.MinAmount
			}
			return Decision{Action: agg.Action, Amount: min(target, agg.MaxAmount), Reasoning: "TAG value bet " + category.Title()}
		}
		return choose(legal, "TAG value call", game.Call, game.Check)
	case category == poker.Pair:
		if legal.ToCall*2 <= view.Pot {
			return choose(legal, "TAG pair check/call", game.Check, game.Call)
		}
	}
	if legal.Allows(game.Check) {
		if agg, ok := aggression(legal); ok && t.rng.Float64() < 0.1 {
			return Decision{Action: agg.Action, Amount: agg.MinAmount, Reasoning: "TAG stab"}
		}
		return choose(legal, "TAG check", game.Check)
	}
	return choose(legal, "TAG fold", game.Fold)
}
