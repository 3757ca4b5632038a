package bot

import "github.com/lox/holdemtable/internal/game"

// CallBot checks or calls every street. On the river it folds to a bet
// larger than the pot it is calling into.
type CallBot struct{}

func (CallBot) Decide(view game.View, legal game.LegalActions) Decision {
	if view.Phase == game.PhaseRiver && legal.ToCall > 0 {
		before := view.Pot - legal.ToCall
		if legal.ToCall > before && legal.Allows(game.Fold) {
			return choose(legal, "call-bot folding river to an overbet", game.Fold)
		}
	}
	return choose(legal, "call-bot check/call", game.Check, game.Call)
}

// CheckBot plays for free: it checks, calls at most one big blind, and
// folds to anything larger.
type CheckBot struct{}

func (CheckBot) Decide(view game.View, legal game.LegalActions) Decision {
	if legal.Allows(game.Check) {
		return choose(legal, "check-bot checking", game.Check)
	}
	if legal.ToCall <= view.Rules.BigBlind {
		return choose(legal, "check-bot calling a small bet", game.Call)
	}
	return choose(legal, "check-bot folding", game.Fold)
}

// FoldBot checks when it can and folds otherwise.
type FoldBot struct{}

func (FoldBot) Decide(_ game.View, legal game.LegalActions) Decision {
	return choose(legal, "fold-bot", game.Check, game.Fold)
}
