package game

import (
	"time"

	"github.com/lox/holdemtable/internal/dealer"
	"github.com/lox/holdemtable/internal/errcode"
	"github.com/lox/holdemtable/poker"
)

// InitParams identify a new hand.
type InitParams struct {
	HandID   string
	HandSeed string
	// DealerSeatNo pins the button. Zero rotates it to the next participating
	// seat after the previous hand's dealer.
	DealerSeatNo int
}

// InitHand starts a new hand from a settled or waiting table: picks the
// button, posts blinds, deals hole cards and hands the turn to the first
// preflop actor.
func InitHand(prev State, p InitParams, now time.Time) (State, error) {
	switch {
	case prev.Phase == PhaseShowdown && !prev.Settled():
		return prev, errcode.ErrShowdownPending.Withf("hand %s has an unsettled showdown", prev.HandID)
	case prev.Phase != PhaseWaiting && prev.Phase != PhaseSettled && prev.Phase != "":
		return prev, errcode.ErrInvalidPhase.Withf("cannot start a hand during %s", prev.Phase)
	case p.HandID == "":
		return prev, errcode.ErrInvalidAction.Withf("hand id required")
	case p.HandSeed == "":
		return prev, errcode.ErrHandSeedRequired
	}
	if err := validateRules(prev.Rules); err != nil {
		return prev, err
	}

	players := prev.eligiblePlayers()
	if len(players) < 2 {
		return prev, errcode.ErrNotEnoughPlayers.Withf("%d eligible seats", len(players))
	}
	if err := dealer.ValidateSeatOrder(players); err != nil {
		return prev, err
	}

	at := stamp(now)
	s := prev.Clone()
	s.resetHand()
	s.SchemaVersion = SchemaVersion
	s.HandID = p.HandID
	s.HandSeed = p.HandSeed
	s.HandNo++
	s.HandPlayers = players
	s.HandStartedAt = &at
	s.Phase = PhasePreflop
	s.StartingStacks = make(map[string]int, len(s.Stacks))
	for id, v := range s.Stacks {
		s.StartingStacks[id] = v
	}

	dealerID, err := s.pickDealer(prev.DealerSeatNo, p.DealerSeatNo)
	if err != nil {
		return prev, err
	}
	s.DealerSeatNo = s.seatNo(dealerID)

	sb, bb := s.blindSeats(dealerID)
	s.SmallBlindSeatNo = s.seatNo(sb)
	s.BigBlindSeatNo = s.seatNo(bb)
	s.commit(sb, min(s.Rules.SmallBlind, s.Stacks[sb]))
	s.commit(bb, min(s.Rules.BigBlind, s.Stacks[bb]))
	s.CurrentBet = max(s.BetThisRoundByUserID[sb], s.BetThisRoundByUserID[bb])
	s.LastRaiseSize = s.Rules.BigBlind
	s.LastFullRaiseSize = s.Rules.BigBlind

	hole, err := dealer.DeriveHoleCards(s.HandSeed, players)
	if err != nil {
		return prev, err
	}
	s.HoleCardsByUserID = hole
	if s.Deck, err = dealer.DeriveRemainingDeck(s.HandSeed, players, 0); err != nil {
		return prev, err
	}

	if err := s.progress(at); err != nil {
		return prev, err
	}
	return s, nil
}

func validateRules(r Rules) error {
	switch {
	case r.SmallBlind <= 0 || r.BigBlind <= 0:
		return errcode.ErrInvalidConfig.Withf("blinds must be positive")
	case r.BigBlind < r.SmallBlind:
		return errcode.ErrInvalidConfig.Withf("big blind %d below small blind %d", r.BigBlind, r.SmallBlind)
	case r.TurnTimeoutMs < 0 || r.MaxMissedTurns < 0:
		return errcode.ErrInvalidConfig.Withf("negative timeout settings")
	}
	return nil
}

// eligiblePlayers returns seated users with chips who are not sitting out,
// in ring order.
func (s *State) eligiblePlayers() []string {
	var out []string
	for _, seat := range s.Seats {
		if s.Stacks[seat.UserID] > 0 && !s.SittingOutByUserID[seat.UserID] {
			out = append(out, seat.UserID)
		}
	}
	return out
}

// resetHand clears everything that belongs to a single hand.
func (s *State) resetHand() {
	s.Pot = 0
	s.Community = []poker.Card{}
	s.CommunityDealt = 0
	s.HandPlayers = nil
	s.TurnUserID = ""
	s.TurnNo = 0
	s.TurnStartedAt = nil
	s.TurnDeadlineAt = nil
	clear(s.ToCallByUserID)
	clear(s.BetThisRoundByUserID)
	clear(s.ContributionsByUserID)
	clear(s.ActedThisRoundByUserID)
	clear(s.FoldedByUserID)
	clear(s.AllInByUserID)
	clear(s.RaiseClosedByUserID)
	clear(s.ActedAtBetByUserID)
	s.CurrentBet = 0
	s.LastRaiseSize = 0
	s.LastFullRaiseSize = 0
	s.ActionLog = []ActionRecord{}
	s.Showdown = nil
	s.HandSettlement = nil
	s.HoleCardsByUserID = nil
	s.Deck = nil
}

// pickDealer returns the button for the new hand. An explicit seat wins,
// otherwise the button moves to the next participant after the previous one.
// The first hand at a table starts with the first participant.
func (s *State) pickDealer(prevSeatNo, pinned int) (string, error) {
	if pinned != 0 {
		id := s.userAtSeat(pinned)
		if id == "" || !s.InHand(id) {
			return "", errcode.ErrUnknownSeat.Withf("dealer seat %d is not in the hand", pinned)
		}
		return id, nil
	}
	if prevSeatNo == 0 {
		return s.HandPlayers[0], nil
	}
	return s.ringFrom(prevSeatNo)[0], nil
}

// blindSeats returns the small and big blind. Heads-up the button posts the
// small blind.
func (s *State) blindSeats(dealerID string) (string, string) {
	ring := s.ringFrom(s.seatNo(dealerID))
	if len(s.HandPlayers) == 2 {
		return dealerID, ring[0]
	}
	return ring[0], ring[1]
}
