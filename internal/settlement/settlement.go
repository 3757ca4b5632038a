// Package settlement turns a settled hand into ledger postings. Each payout
// line becomes its own transaction keyed by table, hand and user, so retrying
// a partially posted settlement never pays anyone twice.
package settlement

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/internal/ledger"
)

// TxType tags every posting made for a hand payout.
const TxType = "poker_settlement"

// IdempotencyKey is the ledger key for one user's payout from one hand.
func IdempotencyKey(tableID, handID, userID string) string {
	return fmt.Sprintf("poker:settlement:%s:%s:%s", tableID, handID, userID)
}

// Instructions builds one balanced transaction per positive payout, ordered
// by user id.
func Instructions(tableID string, s game.HandSettlement) []ledger.Transaction {
	users := make([]string, 0, len(s.Payouts))
	for id, amount := range s.Payouts {
		if amount > 0 {
			users = append(users, id)
		}
	}
	slices.Sort(users)

	txs := make([]ledger.Transaction, 0, len(users))
	for _, id := range users {
		amount := int64(s.Payouts[id])
		txs = append(txs, ledger.Transaction{
			UserID:         id,
			TxType:         TxType,
			IdempotencyKey: IdempotencyKey(tableID, s.HandID, id),
			Entries: []ledger.Entry{
				{Account: ledger.AccountEscrow, Amount: -amount},
				{Account: ledger.AccountUser, UserID: id, Amount: amount},
			},
			Metadata: map[string]string{
				"tableId":   tableID,
				"handId":    s.HandID,
				"settledAt": strconv.FormatInt(s.SettledAt.UnixMilli(), 10),
			},
		})
	}
	return txs
}

// Result summarizes one Post call.
type Result struct {
	Posted     int
	Duplicates int
	Receipts   []ledger.Receipt
}

// Bridge posts hand settlements to a ledger.
type Bridge struct {
	ledger ledger.Ledger
	logger *log.Logger
}

// NewBridge returns a bridge posting to l.
func NewBridge(l ledger.Ledger, logger *log.Logger) *Bridge {
	return &Bridge{ledger: l, logger: logger.WithPrefix("settlement")}
}

// Post sends every instruction for s. Lines already present in the ledger
// count as duplicates, not failures. The first error aborts; calling Post
// again resumes where it stopped.
func (b *Bridge) Post(ctx context.Context, tableID string, s game.HandSettlement) (Result, error) {
	var res Result
	for _, tx := range Instructions(tableID, s) {
		receipt, err := b.ledger.PostTransaction(ctx, tx)
		if err != nil {
			return res, fmt.Errorf("settle %s/%s for %s: %w", tableID, s.HandID, tx.UserID, err)
		}
		res.Receipts = append(res.Receipts, receipt)
		if receipt.Duplicate {
			res.Duplicates++
			b.logger.Debug("Payout already posted", "table", tableID, "hand", s.HandID, "user", tx.UserID)
			continue
		}
		res.Posted++
	}
	b.logger.Info("Hand settled", "table", tableID, "hand", s.HandID, "posted", res.Posted, "duplicates", res.Duplicates)
	return res, nil
}
