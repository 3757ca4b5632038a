// Package history publishes finished hands for audit and analysis. A
// HandRecord is built from a settled state; it carries only what the table
// may disclose after the hand, so unrevealed hole cards never leave the
// engine.
package history

import (
	"context"
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/lox/holdemtable/internal/errcode"
	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/poker"
)

// HandRecord is the published summary of one settled hand.
type HandRecord struct {
	TableID         string               `json:"tableId"`
	HandID          string               `json:"handId"`
	HandNo          int                  `json:"handNo"`
	StartedAt       time.Time            `json:"startedAt"`
	SettledAt       time.Time            `json:"settledAt"`
	Rules           game.Rules           `json:"rules"`
	DealerSeatNo    int                  `json:"dealerSeatNo"`
	SmallBlindSeat  int                  `json:"smallBlindSeatNo"`
	BigBlindSeat    int                  `json:"bigBlindSeatNo"`
	Seats           []game.Seat          `json:"seats"`
	StartingStacks  map[string]int       `json:"startingStacks"`
	FinishingStacks map[string]int       `json:"finishingStacks"`
	Board           []poker.Card         `json:"board"`
	Actions         []game.ActionRecord  `json:"actions"`
	Showdown        *game.ShowdownResult `json:"showdown"`
	Payouts         map[string]int       `json:"payouts"`
}

// NewRecord summarizes a settled hand.
func NewRecord(s game.State) (HandRecord, error) {
	if !s.Settled() {
		return HandRecord{}, errcode.ErrSettlementIncomplete.Withf("hand %s is not settled", s.HandID)
	}
	pub := s.Public()

	rec := HandRecord{
		TableID:         pub.TableID,
		HandID:          pub.HandID,
		HandNo:          pub.HandNo,
		SettledAt:       pub.HandSettlement.SettledAt,
		Rules:           pub.Rules,
		DealerSeatNo:    pub.DealerSeatNo,
		SmallBlindSeat:  pub.SmallBlindSeatNo,
		BigBlindSeat:    pub.BigBlindSeatNo,
		StartingStacks:  make(map[string]int, len(pub.HandPlayers)),
		FinishingStacks: make(map[string]int, len(pub.HandPlayers)),
		Board:           pub.Community,
		Actions:         pub.ActionLog,
		Showdown:        pub.Showdown,
		Payouts:         maps.Clone(pub.HandSettlement.Payouts),
	}
	if pub.HandStartedAt != nil {
		rec.StartedAt = *pub.HandStartedAt
	}
	for _, seat := range pub.Seats {
		if !slices.Contains(pub.HandPlayers, seat.UserID) {
			continue
		}
		rec.Seats = append(rec.Seats, seat)
		rec.StartingStacks[seat.UserID] = pub.StartingStacks[seat.UserID]
		rec.FinishingStacks[seat.UserID] = pub.Stacks[seat.UserID]
	}
	return rec, nil
}

// Publisher ships hand records somewhere durable.
type Publisher interface {
	Publish(ctx context.Context, rec HandRecord) error
}

// Nop discards every record.
type Nop struct{}

func (Nop) Publish(context.Context, HandRecord) error { return nil }

// Multi fans a record out to several publishers and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, rec HandRecord) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
