package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/lox/holdemtable/internal/equity"
	"github.com/lox/holdemtable/poker"
)

// EvalCmd ranks hands given as card tokens, separated by "vs". Hands of two
// hole cards, or any hands with --board, get a Monte Carlo equity estimate
// instead.
type EvalCmd struct {
	Cards   []string `arg:"" help:"Card tokens such as AS KD TH, hands separated by 'vs'"`
	Board   []string `help:"Community cards shared by every hand"`
	Samples int      `help:"Board run-outs to sample for equity" default:"20000"`
	Seed    int64    `help:"Seed for the equity sampler" default:"1"`
}

func (cmd *EvalCmd) Run(g *Globals) error {
	hands, err := splitHands(cmd.Cards)
	if err != nil {
		return err
	}
	board, err := poker.ParseCards(cmd.Board...)
	if err != nil {
		return err
	}

	holeOnly := len(hands) > 1
	for _, h := range hands {
		holeOnly = holeOnly && len(h) == 2
	}
	if len(board) > 0 || holeOnly {
		return cmd.runEquity(hands, board)
	}
	return cmd.runRank(hands)
}

func splitHands(tokens []string) ([][]poker.Card, error) {
	var hands [][]poker.Card
	current := []string{}
	flush := func() error {
		cards, err := poker.ParseCards(current...)
		if err != nil {
			return fmt.Errorf("hand %d: %w", len(hands)+1, err)
		}
		hands = append(hands, cards)
		current = current[:0]
		return nil
	}
	for _, tok := range tokens {
		if tok == "vs" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		current = append(current, tok)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return hands, nil
}

func (cmd *EvalCmd) runRank(hands [][]poker.Card) error {
	evals := make([]poker.Evaluation, len(hands))
	best := 0
	for i, cards := range hands {
		eval, err := poker.Evaluate(cards)
		if err != nil {
			return fmt.Errorf("hand %d: %w", i+1, err)
		}
		evals[i] = eval
		if eval.Value.Beats(evals[best].Value) {
			best = i
		}
	}

	for i, eval := range evals {
		line := eval.Value.Category.Title() + "  " + renderCards(eval.Best5)
		if len(evals) > 1 && poker.CompareValues(eval.Value, evals[best].Value) == 0 {
			line = winStyle.Render("★ ") + line
		}
		fmt.Println(row(fmt.Sprintf("Hand %d", i+1), line))
	}
	return nil
}

func (cmd *EvalCmd) runEquity(hands [][]poker.Card, board []poker.Card) error {
	res, err := equity.Estimate(context.Background(), hands, board, equity.Options{Samples: cmd.Samples, Seed: cmd.Seed})
	if err != nil {
		return err
	}

	fmt.Println(row("Board", renderCards(board)))
	top := slices.Max(res.Equity)
	for i, hole := range hands {
		line := fmt.Sprintf("%s  %5.1f%%", renderCards(hole), res.Equity[i]*100)
		if len(board) >= 3 {
			eval, err := poker.Evaluate(append(slices.Clone(hole), board...))
			if err != nil {
				return err
			}
			line += "  " + eval.Value.Category.Title()
		}
		if res.Equity[i] == top {
			line = winStyle.Render("★ ") + line
		}
		fmt.Println(row(fmt.Sprintf("Hand %d", i+1), line))
	}
	fmt.Println(row("Samples", fmt.Sprintf("%d", res.Samples)))
	return nil
}
