// Package errcode defines the error taxonomy shared by the engine and the
// services around it. Every rejection carries a stable string code that can
// be returned to a client verbatim.
//
// Validation errors are routine: a malformed card, an out-of-turn action, an
// illegal bet size. Invariant errors mean a persisted hand is inconsistent and
// must not be paid out. Conflict errors are retryable optimistic-concurrency
// failures.
package errcode

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind uint8

const (
	Validation Kind = iota + 1
	Invariant
	Conflict
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Invariant:
		return "invariant"
	case Conflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a coded engine error. Two errors match under errors.Is when their
// codes are equal, regardless of detail.
type Error struct {
	Kind   Kind
	Code   string
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Code
	}
	return e.Code + ": " + e.Detail
}

// Is matches on code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Withf returns a copy of e carrying a formatted detail message.
func (e *Error) Withf(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Detail: fmt.Sprintf(format, args...)}
}

func newError(kind Kind, code string) *Error {
	return &Error{Kind: kind, Code: code}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsValidation reports whether err is a routine input or rule rejection.
func IsValidation(err error) bool {
	return KindOf(err) == Validation
}

// IsInvariant reports whether err signals corrupted hand state.
func IsInvariant(err error) bool {
	return KindOf(err) == Invariant
}

// IsConflict reports whether err is a retryable version conflict.
func IsConflict(err error) bool {
	return KindOf(err) == Conflict
}

// Card and evaluator input errors.
var (
	ErrInsufficientCards = newError(Validation, "insufficient_cards")
	ErrTooManyCards      = newError(Validation, "too_many_cards")
	ErrInvalidCard       = newError(Validation, "invalid_card")
	ErrDuplicateCard     = newError(Validation, "duplicate_card")
)

// Dealer errors.
var (
	ErrHandSeedRequired      = newError(Validation, "hand_seed_required")
	ErrInvalidSeatOrder      = newError(Validation, "invalid_seat_order")
	ErrDuplicateSeatUserID   = newError(Validation, "duplicate_seat_user_id")
	ErrInvalidCommunityCount = newError(Validation, "invalid_community_count")
)

// Action and hand lifecycle rejections.
var (
	ErrNotYourTurn       = newError(Validation, "not_your_turn")
	ErrHandNotActive     = newError(Validation, "hand_not_active")
	ErrInvalidPhase      = newError(Validation, "invalid_phase")
	ErrCannotCheck       = newError(Validation, "cannot_check")
	ErrCannotCall        = newError(Validation, "cannot_call")
	ErrCannotBet         = newError(Validation, "cannot_bet")
	ErrInvalidBet        = newError(Validation, "invalid_bet")
	ErrBetTooSmall       = newError(Validation, "bet_too_small")
	ErrCannotRaise       = newError(Validation, "cannot_raise")
	ErrInvalidRaise      = newError(Validation, "invalid_raise")
	ErrRaiseTooSmall     = newError(Validation, "raise_too_small")
	ErrInsufficientStack = newError(Validation, "insufficient_stack")
	ErrCannotAct         = newError(Validation, "cannot_act")
	ErrInvalidAction     = newError(Validation, "invalid_action")
	ErrNotEnoughPlayers  = newError(Validation, "not_enough_players")
	ErrShowdownPending   = newError(Validation, "showdown_pending")
	ErrUnknownSeat       = newError(Validation, "unknown_seat")
	ErrInvalidConfig     = newError(Validation, "invalid_config")
	ErrTableNotFound     = newError(Validation, "table_not_found")
	ErrTableExists       = newError(Validation, "table_exists")
)

// State corruption. These halt settlement.
var (
	ErrShowdownInvalidPot       = newError(Invariant, "showdown_invalid_pot")
	ErrShowdownMissingHoleCards = newError(Invariant, "showdown_missing_hole_cards")
	ErrShowdownNoWinners        = newError(Invariant, "showdown_no_winners")
	ErrShowdownWinnersInvalid   = newError(Invariant, "showdown_winners_invalid")
	ErrShowdownInvalidCommunity = newError(Invariant, "showdown_invalid_community")
	ErrShowdownInvalidStack     = newError(Invariant, "showdown_invalid_stack")
	ErrChipConservation         = newError(Invariant, "chip_conservation")
	ErrUnsupportedSchema        = newError(Invariant, "unsupported_schema_version")
	ErrSettlementUnbalanced     = newError(Invariant, "settlement_unbalanced")
	ErrSettlementIncomplete     = newError(Invariant, "settlement_incomplete")
	ErrReplayDiverged           = newError(Invariant, "replay_diverged")
)

// ErrVersionConflict is returned by storage when a compare-and-swap write
// observes a newer version. Callers retry the read-compute-write cycle.
var ErrVersionConflict = newError(Conflict, "version_conflict")
