package game

import (
	"time"

	"github.com/lox/holdemtable/internal/errcode"
)

// HandSettlement is the payout artifact handed to the ledger. Payouts sum to
// the chips awarded from the pot.
type HandSettlement struct {
	HandID    string         `json:"handId"`
	SettledAt time.Time      `json:"settledAt"`
	Payouts   map[string]int `json:"payouts"`
}

// Total returns the sum of all payouts.
func (h HandSettlement) Total() int {
	total := 0
	for _, v := range h.Payouts {
		total += v
	}
	return total
}

func deriveSettlement(r *ShowdownResult, settledAt time.Time) HandSettlement {
	payouts := make(map[string]int)
	for _, pot := range r.Pots {
		for id, chips := range pot.Shares {
			if chips > 0 {
				payouts[id] += chips
			}
		}
	}
	return HandSettlement{HandID: r.HandID, SettledAt: settledAt, Payouts: payouts}
}

// DeriveSettlement re-derives the settlement of a settled hand from its
// showdown result and checks it against the stored one. The same state
// always yields the same settlement.
func DeriveSettlement(s State) (HandSettlement, error) {
	if !s.Settled() {
		return HandSettlement{}, errcode.ErrSettlementIncomplete.Withf("hand %s is not settled", s.HandID)
	}
	h := deriveSettlement(s.Showdown, s.HandSettlement.SettledAt)
	if h.Total() != s.Showdown.TotalAwarded {
		return HandSettlement{}, errcode.ErrSettlementUnbalanced.Withf("payouts %d, awarded %d", h.Total(), s.Showdown.TotalAwarded)
	}
	if len(h.Payouts) != len(s.HandSettlement.Payouts) {
		return HandSettlement{}, errcode.ErrSettlementUnbalanced.Withf("stored settlement differs")
	}
	for id, v := range h.Payouts {
		if s.HandSettlement.Payouts[id] != v {
			return HandSettlement{}, errcode.ErrSettlementUnbalanced.Withf("stored payout for %s differs", id)
		}
	}
	return h, nil
}
