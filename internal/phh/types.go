// Package phh encodes hands in the Poker Hand History format, a TOML
// dialect. Seats are numbered p1..pN starting from the small blind.
package phh

import "time"

// HandHistory is one no-limit hold'em hand in PHH form.
type HandHistory struct {
	Variant           string         `toml:"variant"`
	Table             string         `toml:"table,omitempty"`
	SeatCount         int            `toml:"seat_count,omitempty"`
	Seats             []int          `toml:"seats,omitempty"`
	Antes             []int          `toml:"antes"`
	BlindsOrStraddles []int          `toml:"blinds_or_straddles"`
	MinBet            int            `toml:"min_bet"`
	StartingStacks    []int          `toml:"starting_stacks"`
	FinishingStacks   []int          `toml:"finishing_stacks,omitempty"`
	Winnings          []int          `toml:"winnings,omitempty"`
	Actions           []string       `toml:"actions"`
	Players           []string       `toml:"players,omitempty"`
	HandID            string         `toml:"hand"`
	Time              string         `toml:"time,omitempty"`
	TimeZone          string         `toml:"time_zone,omitempty"`
	Day               int            `toml:"day,omitempty"`
	Month             int            `toml:"month,omitempty"`
	Year              int            `toml:"year,omitempty"`
	Metadata          map[string]any `toml:"metadata,omitempty"`
}

// SetTime fills the date and time fields from t in UTC.
func (h *HandHistory) SetTime(t time.Time) {
	t = t.UTC()
	h.Time = t.Format(time.TimeOnly)
	h.TimeZone = "UTC"
	h.Day = t.Day()
	h.Month = int(t.Month())
	h.Year = t.Year()
}
