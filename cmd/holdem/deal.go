package main

import (
	"fmt"
	"slices"

	"github.com/lox/holdemtable/internal/dealer"
	"github.com/lox/holdemtable/poker"
)

// DealCmd prints what a hand seed deals to a seat order. It is the audit
// view of a hand: anyone holding the seed can reproduce every card.
type DealCmd struct {
	Seed      string   `arg:"" help:"Hand seed"`
	Players   []string `arg:"" help:"User ids in seat order, starting left of the dealer"`
	Community int      `short:"n" help:"Number of community cards to show (0-5)" default:"5"`
}

func (cmd *DealCmd) Run(g *Globals) error {
	hole, err := dealer.DeriveHoleCards(cmd.Seed, cmd.Players)
	if err != nil {
		return err
	}
	board, err := dealer.DeriveCommunityCards(cmd.Seed, cmd.Players, cmd.Community)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf(" Seed %s ", cmd.Seed)))
	fmt.Println(row("Board", renderCards(board)))
	for _, id := range cmd.Players {
		line := renderCards(hole[id])
		if len(board) >= 3 {
			eval, err := poker.Evaluate(append(slices.Clone(hole[id]), board...))
			if err != nil {
				return err
			}
			line += "  " + eval.Value.Category.Title()
		}
		fmt.Println(row(id, line))
	}
	return nil
}
