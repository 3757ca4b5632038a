// Package game implements the authoritative Texas Hold'em hand engine.
//
// The engine is a set of pure transition functions over State. Every exported
// operation takes a State by value and returns a new State or an error; the
// input is never modified, so a caller can retry a read-compute-write cycle
// against storage without worrying about partial updates.
//
// # Basic Usage
//
//	s := game.NewTable("t1", game.Rules{SmallBlind: 1, BigBlind: 2}, seats, stacks)
//	s, err := game.InitHand(s, game.InitParams{HandID: "h1", HandSeed: seed}, now)
//	legal := game.Legal(s, s.TurnUserID)
//	s, err = game.ApplyAction(s, game.Action{Type: game.Call, UserID: s.TurnUserID}, now)
//
// Once the hand reaches a terminal point (one player left, or the river
// closes) the engine settles it through Settle, which is the single place
// chips leave the pot. ApplyTimeout is an alternate entry point driven by the
// turn deadline instead of a player request.
//
// # Time
//
// The engine never reads the clock. Every operation that records a
// timestamp or compares a deadline takes `now` as a parameter.
//
// # Private Fields
//
// State carries server-only fields (the hand seed, hole cards and the
// remaining deck). PublicState is the embedded client-safe subset; ViewFor
// adds the requesting seat's own hole cards and nothing else.
package game
