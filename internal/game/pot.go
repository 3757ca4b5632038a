package game

import (
	"slices"
)

// Pot is a main or side pot. EligibleUserIDs are the un-folded contributors
// at or above the pot's tier, in ring order.
type Pot struct {
	Amount          int      `json:"amount"`
	Tier            int      `json:"tier"`
	EligibleUserIDs []string `json:"eligibleUserIds"`
}

// BuildPots splits per-user contributions into a main pot and side pots.
// Distinct contribution levels are sorted ascending; each level forms a pot
// of (level - previous level) times the number of users who contributed at
// least that level. Only users in order who have not folded are eligible.
// Chips from a level that has no eligible user are added to the pot below
// it (or carried into the next pot when there is none), so the pots always
// sum to the total contributed.
func BuildPots(order []string, contributions map[string]int, folded map[string]bool) []Pot {
	levels := make([]int, 0, len(contributions))
	for _, id := range order {
		if c := contributions[id]; c > 0 && !slices.Contains(levels, c) {
			levels = append(levels, c)
		}
	}
	slices.Sort(levels)

	var pots []Pot
	carry, prev := 0, 0
	for _, level := range levels {
		amount := carry
		var eligible []string
		for _, id := range order {
			c := contributions[id]
			if c >= level {
				amount += level - prev
				if !folded[id] {
					eligible = append(eligible, id)
				}
			}
		}
		prev = level
		carry = 0

		if len(eligible) == 0 {
			if len(pots) > 0 {
				pots[len(pots)-1].Amount += amount
			} else {
				carry = amount
			}
			continue
		}
		// Merge with the previous pot when nobody new became ineligible.
		if n := len(pots); n > 0 && slices.Equal(pots[n-1].EligibleUserIDs, eligible) {
			pots[n-1].Amount += amount
			pots[n-1].Tier = level
			continue
		}
		pots = append(pots, Pot{Amount: amount, Tier: level, EligibleUserIDs: eligible})
	}
	if carry > 0 && len(pots) > 0 {
		pots[len(pots)-1].Amount += carry
	}
	return pots
}

// Pots returns the current pot structure of the hand.
func (s State) Pots() []Pot {
	return BuildPots(s.HandPlayers, s.ContributionsByUserID, s.FoldedByUserID)
}
