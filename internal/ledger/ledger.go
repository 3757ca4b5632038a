// Package ledger is the double-entry ledger the table pays out through. The
// engine only depends on the Ledger interface; GormLedger is the reference
// implementation used by the service and the CLI.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Account names one side of a ledger entry.
type Account string

const (
	// AccountEscrow holds chips that are committed to a hand.
	AccountEscrow Account = "ESCROW"
	// AccountUser is a player's spendable balance.
	AccountUser Account = "USER"
)

// Entry is one line of a transaction. Positive amounts credit the account.
type Entry struct {
	Account Account
	UserID  string
	Amount  int64
}

// Transaction is a balanced set of entries posted atomically under an
// idempotency key.
type Transaction struct {
	UserID         string
	TxType         string
	IdempotencyKey string
	Entries        []Entry
	Metadata       map[string]string
}

// Receipt acknowledges a posted transaction. Duplicate is set when the
// idempotency key had already been posted; the receipt then describes the
// original posting.
type Receipt struct {
	TransactionID string
	Duplicate     bool
	PostedAt      time.Time
}

// Ledger accepts transactions. Posting the same idempotency key twice must
// succeed without moving money a second time.
type Ledger interface {
	PostTransaction(ctx context.Context, tx Transaction) (Receipt, error)
}

var (
	ErrMissingIdempotencyKey = errors.New("ledger: idempotency key required")
	ErrUnbalanced            = errors.New("ledger: entries do not balance")
	ErrNoEntries             = errors.New("ledger: transaction has fewer than two entries")
)

// Validate checks the shape of tx before it touches storage.
func (tx Transaction) Validate() error {
	if tx.IdempotencyKey == "" {
		return ErrMissingIdempotencyKey
	}
	if len(tx.Entries) < 2 {
		return ErrNoEntries
	}
	var sum int64
	for _, e := range tx.Entries {
		if e.Account == "" {
			return fmt.Errorf("ledger: entry without account in %s", tx.IdempotencyKey)
		}
		sum += e.Amount
	}
	if sum != 0 {
		return fmt.Errorf("%w: %s sums to %d", ErrUnbalanced, tx.IdempotencyKey, sum)
	}
	return nil
}
