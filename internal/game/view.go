package game

import (
	"slices"

	"github.com/lox/holdemtable/poker"
)

// View is what one seat is allowed to see: the public state, their own hole
// cards, and their legal actions when it is their turn.
type View struct {
	PublicState
	HoleCards []poker.Card  `json:"holeCards,omitempty"`
	Legal     *LegalActions `json:"legal,omitempty"`
}

// Public returns a deep copy of the client-safe part of s.
func (s State) Public() PublicState {
	return s.Clone().PublicState
}

// ViewFor returns the view for userID. An empty userID yields a spectator
// view with no hole cards.
func ViewFor(s State, userID string) View {
	v := View{PublicState: s.Public()}
	if cards, ok := s.HoleCardsByUserID[userID]; ok && userID != "" {
		v.HoleCards = slices.Clone(cards)
	}
	if userID != "" && s.TurnUserID == userID {
		legal := Legal(s, userID)
		v.Legal = &legal
	}
	return v
}
