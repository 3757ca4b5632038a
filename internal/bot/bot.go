// Package bot holds the seat policies the service plays for bot seats and
// for the simulate command. A policy sees only what the seat itself may
// see: the public state, its own hole cards and its legal actions.
package bot

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/holdemtable/internal/game"
)

// Decision is a policy's chosen action with a short explanation for logs.
type Decision struct {
	Action    game.ActionType
	Amount    int
	Reasoning string
}

// Action turns d into an engine action for userID.
func (d Decision) Action(userID string) game.Action {
	a := game.Action{Type: d.Action, UserID: userID}
	if d.Action == game.Bet || d.Action == game.Raise {
		a.Amount = d.Amount
	}
	return a
}

// Policy picks an action for the seat to act.
type Policy interface {
	Decide(view game.View, legal game.LegalActions) Decision
}

// Names lists the policies New understands.
var Names = []string{"call", "check", "fold", "random", "maniac", "tag"}

// New builds the named policy. rng is used by the policies that randomize.
func New(name string, rng *rand.Rand) (Policy, error) {
	switch name {
	case "call":
		return CallBot{}, nil
	case "check":
		return CheckBot{}, nil
	case "fold":
		return FoldBot{}, nil
	case "random":
		return NewRandBot(rng), nil
	case "maniac":
		return NewManiacBot(rng), nil
	case "tag":
		return NewTAGBot(rng), nil
	default:
		return nil, fmt.Errorf("unknown bot policy %q (want one of %v)", name, Names)
	}
}

// choose returns the first preferred action that is legal, falling back to
// the first legal action. An empty legal set yields a fold, which the
// engine will reject like any out-of-turn request.
func choose(legal game.LegalActions, reasoning string, preferred ...game.ActionType) Decision {
	for _, p := range preferred {
		if va, ok := legal.Find(p); ok {
			return Decision{Action: p, Amount: va.MinAmount, Reasoning: reasoning}
		}
	}
	if len(legal.Actions) > 0 {
		va := legal.Actions[0]
		return Decision{Action: va.Action, Amount: va.MinAmount, Reasoning: "fallback: " + reasoning}
	}
	return Decision{Action: game.Fold, Reasoning: "no legal actions"}
}

// aggression returns the bet or raise entry, whichever is legal.
func aggression(legal game.LegalActions) (game.ValidAction, bool) {
	if va, ok := legal.Find(game.Raise); ok {
		return va, true
	}
	return legal.Find(game.Bet)
}
