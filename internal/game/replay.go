package game

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/lox/holdemtable/internal/errcode"
)

// Replay rebuilds the current hand from its starting stacks, seed and action
// log. Only hand-scoped fields are meaningful in the result; sit-out and
// missed-turn bookkeeping from earlier hands is not reconstructed.
func Replay(s State) (State, error) {
	if s.HandID == "" || s.HandSeed == "" {
		return s, errcode.ErrInvalidPhase.Withf("no hand to replay")
	}
	base := NewTable(s.TableID, s.Rules, s.Seats, s.StartingStacks)
	base.HandNo = s.HandNo - 1
	for _, seat := range base.Seats {
		if !slices.Contains(s.HandPlayers, seat.UserID) {
			base.SittingOutByUserID[seat.UserID] = true
		}
	}
	var started time.Time
	if s.HandStartedAt != nil {
		started = *s.HandStartedAt
	}

	out, err := InitHand(base, InitParams{HandID: s.HandID, HandSeed: s.HandSeed, DealerSeatNo: s.DealerSeatNo}, started)
	if err != nil {
		return s, fmt.Errorf("replay init: %w", err)
	}
	for _, rec := range s.ActionLog {
		a := Action{Type: rec.Type, UserID: rec.UserID, Amount: rec.Amount, RequestID: rec.RequestID, Auto: rec.Auto}
		if out, err = ApplyAction(out, a, rec.At); err != nil {
			return s, fmt.Errorf("replay action %d (%s): %w", rec.Seq, a, err)
		}
	}
	return out, nil
}

// handDigest is the subset of a state that a replay must reproduce.
type handDigest struct {
	Phase          Phase
	Stacks         map[string]int
	Pot            int
	Community      json.RawMessage
	Contributions  map[string]int
	Folded         map[string]bool
	ActionLog      []ActionRecord
	Showdown       *ShowdownResult
	HandSettlement *HandSettlement
}

func digest(s State) ([]byte, error) {
	community, err := json.Marshal(s.Community)
	if err != nil {
		return nil, err
	}
	return json.Marshal(handDigest{
		Phase:          s.Phase,
		Stacks:         s.Stacks,
		Pot:            s.Pot,
		Community:      community,
		Contributions:  s.ContributionsByUserID,
		Folded:         s.FoldedByUserID,
		ActionLog:      s.ActionLog,
		Showdown:       s.Showdown,
		HandSettlement: s.HandSettlement,
	})
}

// VerifyReplay replays the hand and checks that it reproduces s.
func VerifyReplay(s State) error {
	replayed, err := Replay(s)
	if err != nil {
		return err
	}
	want, err := digest(s)
	if err != nil {
		return err
	}
	got, err := digest(replayed)
	if err != nil {
		return err
	}
	if !bytes.Equal(want, got) {
		return errcode.ErrReplayDiverged.Withf("hand %s", s.HandID)
	}
	return nil
}
