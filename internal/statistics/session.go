// Package statistics turns published hands into per-seat win-rate
// statistics for simulations.
package statistics

import (
	"context"
	"slices"
	"sync"

	"github.com/lox/holdemtable/internal/history"
)

// Session collects Statistics for every seat. It is a history.Publisher, so
// it can sit next to the durable sinks and see each settled hand once.
type Session struct {
	mu    sync.Mutex
	hands int
	seats map[string]*Statistics
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{seats: make(map[string]*Statistics)}
}

// Publish records every hand player's result.
func (s *Session) Publish(_ context.Context, rec history.HandRecord) error {
	results := Results(rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hands++
	for userID, r := range results {
		st, ok := s.seats[userID]
		if !ok {
			st = &Statistics{}
			s.seats[userID] = st
		}
		st.Add(r)
	}
	return nil
}

// Hands returns how many hands the session has seen.
func (s *Session) Hands() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hands
}

// Users returns every user with results, sorted.
func (s *Session) Users() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]string, 0, len(s.seats))
	for id := range s.seats {
		users = append(users, id)
	}
	slices.Sort(users)
	return users
}

// For returns a copy of userID's statistics.
func (s *Session) For(userID string) Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.seats[userID]
	if !ok {
		return Statistics{}
	}
	out := *st
	out.Values = slices.Clone(st.Values)
	return out
}

// Results computes each hand player's result from a hand record.
func Results(rec history.HandRecord) map[string]HandResult {
	n := len(rec.Seats)
	button := 0
	for i, seat := range rec.Seats {
		if seat.SeatNo == rec.DealerSeatNo {
			button = i
		}
	}
	pot := 0
	for _, amount := range rec.Payouts {
		pot += amount
	}
	bb := rec.Rules.BigBlind
	if bb <= 0 {
		bb = 1
	}

	out := make(map[string]HandResult, n)
	for i, seat := range rec.Seats {
		id := seat.UserID
		net := rec.FinishingStacks[id] - rec.StartingStacks[id]
		revealed := false
		if rec.Showdown != nil {
			_, revealed = rec.Showdown.Revealed[id]
		}
		out[id] = HandResult{
			NetBB:          float64(net) / float64(bb),
			Position:       (i - button + n) % n,
			WentToShowdown: revealed,
			FinalPotSize:   pot,
			BigBlind:       bb,
		}
	}
	return out
}
