package game

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/lox/holdemtable/internal/errcode"
)

// Encode serializes the full server-side state for storage.
func Encode(s State) ([]byte, error) {
	s.SchemaVersion = SchemaVersion
	return json.Marshal(s)
}

// EncodePublic serializes only the client-safe part of the state.
func EncodePublic(s State) ([]byte, error) {
	return json.Marshal(s.Public())
}

// Decode loads a stored snapshot, upgrading older schema versions first.
func Decode(raw []byte) (State, error) {
	upgraded, err := Upgrade(raw)
	if err != nil {
		return State{}, err
	}
	var s State
	if err := json.Unmarshal(upgraded, &s); err != nil {
		return State{}, fmt.Errorf("decode state: %w", err)
	}
	s.normalize()
	sortSeats(s.Seats)
	if len(s.HandPlayers) == 0 && s.Phase != PhaseWaiting {
		s.HandPlayers = s.inferHandPlayers()
	}
	if s.Phase.Betting() {
		s.refreshToCall()
	}
	return s, nil
}

// Upgrade rewrites a raw snapshot to the current schema version. Version 1
// snapshots predate the incomplete-raise bookkeeping: they carry only
// lastRaiseSize, may omit communityDealt, store the acted set as a list of
// user ids and turn timestamps as epoch milliseconds.
func Upgrade(raw []byte) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	var version int
	if v, ok := fields["schemaVersion"]; ok {
		if err := json.Unmarshal(v, &version); err != nil {
			return nil, fmt.Errorf("decode schemaVersion: %w", err)
		}
	}
	switch {
	case version > SchemaVersion:
		return nil, errcode.ErrUnsupportedSchema.Withf("version %d, newest known %d", version, SchemaVersion)
	case version == SchemaVersion:
		return raw, nil
	}

	if err := upgradeV1(fields); err != nil {
		return nil, err
	}
	fields["schemaVersion"] = json.RawMessage(fmt.Sprint(SchemaVersion))
	return json.Marshal(fields)
}

func upgradeV1(fields map[string]json.RawMessage) error {
	if _, ok := fields["lastFullRaiseSize"]; !ok {
		if v, ok := fields["lastRaiseSize"]; ok {
			fields["lastFullRaiseSize"] = v
		}
	}

	if _, ok := fields["communityDealt"]; !ok {
		var community []json.RawMessage
		if v, ok := fields["community"]; ok && string(v) != "null" {
			if err := json.Unmarshal(v, &community); err != nil {
				return fmt.Errorf("decode community: %w", err)
			}
		}
		fields["communityDealt"] = json.RawMessage(fmt.Sprint(len(community)))
	}

	if v, ok := fields["actedThisRoundByUserId"]; ok && len(v) > 0 && v[0] == '[' {
		var ids []string
		if err := json.Unmarshal(v, &ids); err != nil {
			return fmt.Errorf("decode actedThisRoundByUserId: %w", err)
		}
		acted := make(map[string]bool, len(ids))
		for _, id := range ids {
			acted[id] = true
		}
		b, _ := json.Marshal(acted)
		fields["actedThisRoundByUserId"] = b
	}

	for _, key := range []string{"turnStartedAt", "turnDeadlineAt", "handStartedAt"} {
		v, ok := fields[key]
		if !ok || len(v) == 0 || v[0] == '"' || string(v) == "null" {
			continue
		}
		var ms int64
		if err := json.Unmarshal(v, &ms); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		b, _ := json.Marshal(time.UnixMilli(ms).UTC())
		fields[key] = b
	}
	return nil
}

// inferHandPlayers rebuilds the hand roster for snapshots that did not store
// it: every seat that was dealt cards or put chips in.
func (s *State) inferHandPlayers() []string {
	var out []string
	for _, seat := range s.Seats {
		id := seat.UserID
		_, dealt := s.HoleCardsByUserID[id]
		_, contributed := s.ContributionsByUserID[id]
		if dealt || contributed || s.FoldedByUserID[id] {
			out = append(out, id)
		}
	}
	return slices.Clip(out)
}
