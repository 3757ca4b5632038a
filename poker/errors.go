package poker

import "github.com/lox/holdemtable/internal/errcode"

// Input errors returned by card parsing and hand evaluation.
var (
	ErrInvalidCard       = errcode.ErrInvalidCard
	ErrDuplicateCard     = errcode.ErrDuplicateCard
	ErrInsufficientCards = errcode.ErrInsufficientCards
	ErrTooManyCards      = errcode.ErrTooManyCards
)
