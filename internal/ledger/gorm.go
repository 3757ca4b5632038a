package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type transactionRecord struct {
	ID             uint64            `gorm:"primaryKey;autoIncrement"`
	TxID           string            `gorm:"size:36;uniqueIndex"`
	IdempotencyKey string            `gorm:"size:255;uniqueIndex"`
	UserID         string            `gorm:"size:128;index"`
	TxType         string            `gorm:"size:64"`
	Metadata       map[string]string `gorm:"serializer:json"`
	CreatedAt      time.Time
}

func (transactionRecord) TableName() string { return "ledger_transactions" }

type entryRecord struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	TransactionID uint64 `gorm:"index"`
	Account       string `gorm:"size:32;index:idx_ledger_entries_account_user"`
	UserID        string `gorm:"size:128;index:idx_ledger_entries_account_user"`
	Amount        int64
	CreatedAt     time.Time
}

func (entryRecord) TableName() string { return "ledger_entries" }

// GormLedger stores transactions in two tables and relies on a unique index
// on the idempotency key for exactly-once posting.
type GormLedger struct {
	db  *gorm.DB
	now func() time.Time
}

// New wraps db and migrates the ledger tables.
func New(db *gorm.DB) (*GormLedger, error) {
	if err := db.AutoMigrate(&transactionRecord{}, &entryRecord{}); err != nil {
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return &GormLedger{db: db, now: time.Now}, nil
}

// OpenPostgres connects to dsn and returns a migrated ledger.
func OpenPostgres(dsn string) (*GormLedger, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres ledger: %w", err)
	}
	return New(db)
}

// OpenSQLite opens a sqlite ledger at path. Use "file::memory:" style paths
// for throwaway ledgers.
func OpenSQLite(path string) (*GormLedger, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite ledger: %w", err)
	}
	return New(db)
}

// PostTransaction validates tx and writes it atomically. A transaction whose
// idempotency key already exists is acknowledged as a duplicate and nothing
// is written.
func (l *GormLedger) PostTransaction(ctx context.Context, tx Transaction) (Receipt, error) {
	if err := tx.Validate(); err != nil {
		return Receipt{}, err
	}

	var receipt Receipt
	err := l.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		rec := transactionRecord{
			TxID:           uuid.NewString(),
			IdempotencyKey: tx.IdempotencyKey,
			UserID:         tx.UserID,
			TxType:         tx.TxType,
			Metadata:       tx.Metadata,
			CreatedAt:      l.now().UTC(),
		}
		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "idempotency_key"}},
			DoNothing: true,
		}).Create(&rec)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			var existing transactionRecord
			if err := db.Where("idempotency_key = ?", tx.IdempotencyKey).First(&existing).Error; err != nil {
				return err
			}
			receipt = Receipt{TransactionID: existing.TxID, Duplicate: true, PostedAt: existing.CreatedAt}
			return nil
		}

		entries := make([]entryRecord, len(tx.Entries))
		for i, e := range tx.Entries {
			entries[i] = entryRecord{
				TransactionID: rec.ID,
				Account:       string(e.Account),
				UserID:        e.UserID,
				Amount:        e.Amount,
				CreatedAt:     rec.CreatedAt,
			}
		}
		if err := db.Create(&entries).Error; err != nil {
			return err
		}
		receipt = Receipt{TransactionID: rec.TxID, PostedAt: rec.CreatedAt}
		return nil
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("post %s: %w", tx.IdempotencyKey, err)
	}
	return receipt, nil
}

// Balance sums every entry for account and userID.
func (l *GormLedger) Balance(ctx context.Context, account Account, userID string) (int64, error) {
	var total int64
	err := l.db.WithContext(ctx).Model(&entryRecord{}).
		Where("account = ? AND user_id = ?", string(account), userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("balance %s/%s: %w", account, userID, err)
	}
	return total, nil
}

// Count returns the number of distinct transactions posted.
func (l *GormLedger) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := l.db.WithContext(ctx).Model(&transactionRecord{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Close releases the underlying database connection pool.
func (l *GormLedger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
