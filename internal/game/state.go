package game

import (
	"slices"
	"time"

	"github.com/lox/holdemtable/poker"
)

// SchemaVersion is the version written by this package. Older snapshots are
// upgraded by Decode.
const SchemaVersion = 2

// Phase is the hand lifecycle state.
type Phase string

const (
	PhaseWaiting  Phase = "WAITING"
	PhasePreflop  Phase = "PREFLOP"
	PhaseFlop     Phase = "FLOP"
	PhaseTurn     Phase = "TURN"
	PhaseRiver    Phase = "RIVER"
	PhaseShowdown Phase = "SHOWDOWN"
	PhaseSettled  Phase = "SETTLED"
)

// Betting reports whether the phase is one of the four betting streets.
func (p Phase) Betting() bool {
	switch p {
	case PhasePreflop, PhaseFlop, PhaseTurn, PhaseRiver:
		return true
	}
	return false
}

// boardSize is the number of community cards visible in each street.
func (p Phase) boardSize() int {
	switch p {
	case PhaseFlop:
		return 3
	case PhaseTurn:
		return 4
	case PhaseRiver, PhaseShowdown:
		return 5
	}
	return 0
}

func (p Phase) next() Phase {
	switch p {
	case PhasePreflop:
		return PhaseFlop
	case PhaseFlop:
		return PhaseTurn
	case PhaseTurn:
		return PhaseRiver
	case PhaseRiver:
		return PhaseShowdown
	case PhaseShowdown:
		return PhaseSettled
	}
	return PhaseWaiting
}

// Seat is a user sitting at the table. Ring order is ascending SeatNo.
type Seat struct {
	UserID string `json:"userId"`
	SeatNo int    `json:"seatNo"`
	Bot    bool   `json:"bot,omitempty"`
}

// Rules are the per-table betting parameters.
type Rules struct {
	SmallBlind     int   `json:"smallBlind"`
	BigBlind       int   `json:"bigBlind"`
	TurnTimeoutMs  int64 `json:"turnTimeoutMs"`
	MaxMissedTurns int   `json:"maxMissedTurns"`
}

// TurnTimeout returns the per-turn deadline as a duration. Zero disables
// deadlines.
func (r Rules) TurnTimeout() time.Duration {
	return time.Duration(r.TurnTimeoutMs) * time.Millisecond
}

// ActionRecord is one applied action in the hand's audit log.
type ActionRecord struct {
	Seq       int        `json:"seq"`
	Phase     Phase      `json:"phase"`
	UserID    string     `json:"userId"`
	Type      ActionType `json:"type"`
	Amount    int        `json:"amount,omitempty"`
	Paid      int        `json:"paid"`
	RequestID string     `json:"requestId,omitempty"`
	Auto      bool       `json:"auto,omitempty"`
	At        time.Time  `json:"at"`
}

// PublicState is the part of the hand state that may be shown to any seat.
type PublicState struct {
	SchemaVersion int    `json:"schemaVersion"`
	TableID       string `json:"tableId"`
	Phase         Phase  `json:"phase"`
	HandID        string `json:"handId,omitempty"`
	HandNo        int    `json:"handNo"`
	Seats         []Seat `json:"seats"`
	Rules         Rules  `json:"rules"`

	Stacks         map[string]int `json:"stacks"`
	StartingStacks map[string]int `json:"startingStacks,omitempty"`
	Pot            int            `json:"pot"`
	Community      []poker.Card   `json:"community"`
	CommunityDealt int            `json:"communityDealt"`
	HandPlayers    []string       `json:"handPlayers,omitempty"`

	DealerSeatNo     int `json:"dealerSeatNo"`
	SmallBlindSeatNo int `json:"smallBlindSeatNo"`
	BigBlindSeatNo   int `json:"bigBlindSeatNo"`

	TurnUserID     string     `json:"turnUserId,omitempty"`
	TurnNo         int        `json:"turnNo"`
	HandStartedAt  *time.Time `json:"handStartedAt,omitempty"`
	TurnStartedAt  *time.Time `json:"turnStartedAt,omitempty"`
	TurnDeadlineAt *time.Time `json:"turnDeadlineAt,omitempty"`

	ToCallByUserID         map[string]int  `json:"toCallByUserId"`
	BetThisRoundByUserID   map[string]int  `json:"betThisRoundByUserId"`
	ContributionsByUserID  map[string]int  `json:"contributionsByUserId"`
	ActedThisRoundByUserID map[string]bool `json:"actedThisRoundByUserId"`
	FoldedByUserID         map[string]bool `json:"foldedByUserId"`
	AllInByUserID          map[string]bool `json:"allInByUserId"`
	RaiseClosedByUserID    map[string]bool `json:"raiseClosedByUserId"`
	ActedAtBetByUserID     map[string]int  `json:"actedAtBetByUserId"`

	CurrentBet        int `json:"currentBet"`
	LastRaiseSize     int `json:"lastRaiseSize"`
	LastFullRaiseSize int `json:"lastFullRaiseSize"`

	LastActionRequestIDByUserID map[string]string `json:"lastActionRequestIdByUserId"`
	MissedTurnsByUserID         map[string]int    `json:"missedTurnsByUserId"`
	SittingOutByUserID          map[string]bool   `json:"sittingOutByUserId"`

	ActionLog      []ActionRecord  `json:"actionLog"`
	Showdown       *ShowdownResult `json:"showdown"`
	HandSettlement *HandSettlement `json:"handSettlement"`
}

// State is the full persisted hand state. The fields outside PublicState
// are server-only and must never reach a client.
type State struct {
	PublicState

	HandSeed          string                  `json:"handSeed,omitempty"`
	HoleCardsByUserID map[string][]poker.Card `json:"holeCardsByUserId,omitempty"`
	Deck              poker.Deck              `json:"deck,omitempty"`
}

// NewTable returns an idle table state. Seats are stored in ring order.
func NewTable(tableID string, rules Rules, seats []Seat, stacks map[string]int) State {
	var s State
	s.SchemaVersion = SchemaVersion
	s.TableID = tableID
	s.Phase = PhaseWaiting
	s.Rules = rules
	s.Seats = slices.Clone(seats)
	sortSeats(s.Seats)
	s.Stacks = make(map[string]int, len(seats))
	for _, seat := range s.Seats {
		s.Stacks[seat.UserID] = stacks[seat.UserID]
	}
	s.normalize()
	return s
}

func sortSeats(seats []Seat) {
	slices.SortFunc(seats, func(a, b Seat) int { return a.SeatNo - b.SeatNo })
}

// normalize replaces nil maps so that transitions can write to them and the
// JSON form is stable.
func (s *State) normalize() {
	if s.Stacks == nil {
		s.Stacks = map[string]int{}
	}
	if s.ToCallByUserID == nil {
		s.ToCallByUserID = map[string]int{}
	}
	if s.BetThisRoundByUserID == nil {
		s.BetThisRoundByUserID = map[string]int{}
	}
	if s.ContributionsByUserID == nil {
		s.ContributionsByUserID = map[string]int{}
	}
	if s.ActedThisRoundByUserID == nil {
		s.ActedThisRoundByUserID = map[string]bool{}
	}
	if s.FoldedByUserID == nil {
		s.FoldedByUserID = map[string]bool{}
	}
	if s.AllInByUserID == nil {
		s.AllInByUserID = map[string]bool{}
	}
	if s.RaiseClosedByUserID == nil {
		s.RaiseClosedByUserID = map[string]bool{}
	}
	if s.ActedAtBetByUserID == nil {
		s.ActedAtBetByUserID = map[string]int{}
	}
	if s.LastActionRequestIDByUserID == nil {
		s.LastActionRequestIDByUserID = map[string]string{}
	}
	if s.MissedTurnsByUserID == nil {
		s.MissedTurnsByUserID = map[string]int{}
	}
	if s.SittingOutByUserID == nil {
		s.SittingOutByUserID = map[string]bool{}
	}
	if s.Community == nil {
		s.Community = []poker.Card{}
	}
	if s.ActionLog == nil {
		s.ActionLog = []ActionRecord{}
	}
}

// Seat returns the seat for userID.
func (s *State) Seat(userID string) (Seat, bool) {
	for _, seat := range s.Seats {
		if seat.UserID == userID {
			return seat, true
		}
	}
	return Seat{}, false
}

func (s *State) seatNo(userID string) int {
	seat, _ := s.Seat(userID)
	return seat.SeatNo
}

func (s *State) userAtSeat(seatNo int) string {
	for _, seat := range s.Seats {
		if seat.SeatNo == seatNo {
			return seat.UserID
		}
	}
	return ""
}

// InHand reports whether userID was dealt into the current hand.
func (s *State) InHand(userID string) bool {
	return slices.Contains(s.HandPlayers, userID)
}

// Live reports whether userID is in the hand and has not folded.
func (s *State) Live(userID string) bool {
	return s.InHand(userID) && !s.FoldedByUserID[userID]
}

// CanAct reports whether userID can still make betting decisions this hand.
func (s *State) CanAct(userID string) bool {
	return s.Live(userID) && !s.AllInByUserID[userID] && s.Stacks[userID] > 0
}

// ToCall returns the chips userID must add to match the current bet.
func (s *State) ToCall(userID string) int {
	return max(0, s.CurrentBet-s.BetThisRoundByUserID[userID])
}

// LiveUsers returns the un-folded hand players in ring order.
func (s *State) LiveUsers() []string {
	var out []string
	for _, id := range s.HandPlayers {
		if !s.FoldedByUserID[id] {
			out = append(out, id)
		}
	}
	return out
}

func (s *State) ableUsers() []string {
	var out []string
	for _, id := range s.HandPlayers {
		if s.CanAct(id) {
			out = append(out, id)
		}
	}
	return out
}

// ChipTotal returns sum(stacks) + pot, which every transition preserves.
func (s *State) ChipTotal() int {
	total := s.Pot
	for _, v := range s.Stacks {
		total += v
	}
	return total
}

// ringFrom returns hand players in ring order starting with the first player
// seated strictly after seatNo.
func (s *State) ringFrom(seatNo int) []string {
	n := len(s.HandPlayers)
	if n == 0 {
		return nil
	}
	start := 0
	for i, id := range s.HandPlayers {
		if s.seatNo(id) > seatNo {
			start = i
			break
		}
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s.HandPlayers[(start+i)%n])
	}
	return out
}

func (s *State) refreshToCall() {
	clear(s.ToCallByUserID)
	for _, id := range s.HandPlayers {
		if s.Live(id) {
			s.ToCallByUserID[id] = s.ToCall(id)
		}
	}
}
