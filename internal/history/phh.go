package history

import (
	"slices"

	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/internal/phh"
	"github.com/lox/holdemtable/poker"
)

// streetBoard is the slice of the board dealt when a street opens.
var streetBoard = map[game.Phase][2]int{
	game.PhaseFlop:  {0, 3},
	game.PhaseTurn:  {3, 4},
	game.PhaseRiver: {4, 5},
}

var streets = []game.Phase{game.PhasePreflop, game.PhaseFlop, game.PhaseTurn, game.PhaseRiver}

// ToPHH converts rec into a PHH hand. Players are listed from the small
// blind round to the button; hole cards appear only for seats that showed.
func ToPHH(rec HandRecord) *phh.HandHistory {
	players := orderFromSmallBlind(rec.Seats, rec.SmallBlindSeat)
	index := make(map[string]int, len(players))
	for i, seat := range players {
		index[seat.UserID] = i
	}

	n := len(players)
	h := &phh.HandHistory{
		Variant:           "NT",
		Table:             rec.TableID,
		SeatCount:         n,
		Seats:             make([]int, n),
		Antes:             make([]int, n),
		BlindsOrStraddles: make([]int, n),
		MinBet:            rec.Rules.BigBlind,
		StartingStacks:    make([]int, n),
		FinishingStacks:   make([]int, n),
		Winnings:          make([]int, n),
		Players:           make([]string, n),
		HandID:            rec.HandID,
	}
	h.SetTime(rec.StartedAt)
	for i, seat := range players {
		h.Seats[i] = seat.SeatNo
		h.Players[i] = seat.UserID
		h.StartingStacks[i] = rec.StartingStacks[seat.UserID]
		h.FinishingStacks[i] = rec.FinishingStacks[seat.UserID]
		h.Winnings[i] = rec.Payouts[seat.UserID]
	}
	if n >= 2 {
		h.BlindsOrStraddles[0] = min(rec.Rules.SmallBlind, rec.StartingStacks[players[0].UserID])
		h.BlindsOrStraddles[1] = min(rec.Rules.BigBlind, rec.StartingStacks[players[1].UserID])
	}

	for i := range players {
		h.Actions = append(h.Actions, phh.DealHole(i, nil))
	}

	street := 0
	dealTo := func(phase game.Phase) {
		for street < len(streets)-1 && streets[street] != phase {
			street++
			if line, ok := boardLine(rec.Board, streets[street]); ok {
				h.Actions = append(h.Actions, line)
			}
		}
	}
	for _, a := range rec.Actions {
		dealTo(a.Phase)
		if line, ok := phh.FormatAction(index[a.UserID], a.Type, a.Amount); ok {
			h.Actions = append(h.Actions, line)
		}
	}
	dealTo(game.PhaseRiver)

	if rec.Showdown != nil && !rec.Showdown.FoldOut {
		for i, seat := range players {
			if cards, ok := rec.Showdown.Revealed[seat.UserID]; ok {
				h.Actions = append(h.Actions, phh.ShowHand(i, cards))
			}
		}
	}
	return h
}

func boardLine(board []poker.Card, phase game.Phase) (string, bool) {
	span, ok := streetBoard[phase]
	if !ok || len(board) < span[1] {
		return "", false
	}
	return phh.DealBoard(board[span[0]:span[1]]), true
}

func orderFromSmallBlind(seats []game.Seat, sbSeat int) []game.Seat {
	out := slices.Clone(seats)
	slices.SortFunc(out, func(a, b game.Seat) int { return a.SeatNo - b.SeatNo })
	for i, s := range out {
		if s.SeatNo == sbSeat {
			return append(slices.Clone(out[i:]), out[:i]...)
		}
	}
	return out
}
