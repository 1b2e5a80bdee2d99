package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskledger/internal/model"
)

// LedgerTotals aggregates credits and debits. Expense is reported as a positive number.
type LedgerTotals struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
}

// LedgerRepository is the append-only currency store. It has no update or delete.
type LedgerRepository interface {
	WithTx(tx *gorm.DB) LedgerRepository
	Append(ctx context.Context, entry *model.LedgerEntry) error
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.LedgerEntry, error)
	Totals(ctx context.Context, userID uuid.UUID, since *time.Time) (LedgerTotals, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository.
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) WithTx(tx *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: tx}
}

// Append inserts a new entry.
func (r *ledgerRepository) Append(ctx context.Context, entry *model.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Balance sums every entry of the user; zero when there are none.
func (r *ledgerRepository) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var balance int64
	err := r.db.WithContext(ctx).Model(&model.LedgerEntry{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userID).
		Scan(&balance).Error
	return balance, err
}

// ListByUser returns entries newest first.
func (r *ledgerRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Totals sums credits and debits, optionally only those created at or after since.
func (r *ledgerRepository) Totals(ctx context.Context, userID uuid.UUID, since *time.Time) (LedgerTotals, error) {
	var totals LedgerTotals
	q := r.db.WithContext(ctx).Model(&model.LedgerEntry{}).
		Select("COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0) AS income, "+
			"COALESCE(SUM(CASE WHEN amount < 0 THEN -amount ELSE 0 END), 0) AS expense").
		Where("user_id = ?", userID)
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	err := q.Scan(&totals).Error
	return totals, err
}
