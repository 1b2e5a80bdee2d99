package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskledger/internal/cache"
	apperrors "taskledger/internal/errors"
	"taskledger/internal/model"
	"taskledger/internal/repository"
)

const maxHistoryLimit = 500

// LedgerStats summarises a user's currency flow.
type LedgerStats struct {
	TotalIncome   int64 `json:"total_income"`
	TotalExpense  int64 `json:"total_expense"`
	WeeklyIncome  int64 `json:"weekly_income"`
	WeeklyExpense int64 `json:"weekly_expense"`
	Net           int64 `json:"net"`
}

// LedgerService exposes the append-only currency ledger. Balance is always
// derived from the entries.
type LedgerService interface {
	Credit(ctx context.Context, userID uuid.UUID, amount int64, entryType model.EntryType, source string) (*model.LedgerEntry, error)
	Debit(ctx context.Context, userID uuid.UUID, amount int64, source string) (*model.LedgerEntry, error)
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]model.LedgerEntry, error)
	Stats(ctx context.Context, userID uuid.UUID) (*LedgerStats, error)
}

type ledgerService struct {
	repos        *repository.Repositories
	cache        *cache.Client
	balanceTTL   time.Duration
	defaultLimit int
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(repos *repository.Repositories, cache *cache.Client, balanceTTL time.Duration, defaultLimit int) LedgerService {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	return &ledgerService{
		repos:        repos,
		cache:        cache,
		balanceTTL:   balanceTTL,
		defaultLimit: defaultLimit,
	}
}

// Credit appends a positive earn or reward entry.
func (s *ledgerService) Credit(ctx context.Context, userID uuid.UUID, amount int64, entryType model.EntryType, source string) (*model.LedgerEntry, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if entryType != model.EntryTypeEarn && entryType != model.EntryTypeReward {
		return nil, fmt.Errorf("credit with type %q: %w", entryType, apperrors.ErrInvalidInput)
	}
	if _, err := s.repos.Users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	entry, err := appendEntry(ctx, s.repos, userID, amount, entryType, source)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateUser(ctx, userID)
	return entry, nil
}

// Debit appends a negative spend entry when the balance covers amount.
func (s *ledgerService) Debit(ctx context.Context, userID uuid.UUID, amount int64, source string) (*model.LedgerEntry, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}

	var entry *model.LedgerEntry
	err := s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		var err error
		entry, err = debit(ctx, tx, userID, amount, source)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateUser(ctx, userID)
	return entry, nil
}

func (s *ledgerService) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	key := cache.BalanceKey(userID)
	var cached int64
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	balance, err := s.repos.Ledger.Balance(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("sum ledger: %w", err)
	}
	s.cache.SetJSON(ctx, key, balance, s.balanceTTL)
	return balance, nil
}

// History returns the newest entries first.
func (s *ledgerService) History(ctx context.Context, userID uuid.UUID, limit int) ([]model.LedgerEntry, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.repos.Ledger.ListByUser(ctx, userID, limit)
}

func (s *ledgerService) Stats(ctx context.Context, userID uuid.UUID) (*LedgerStats, error) {
	all, err := s.repos.Ledger.Totals(ctx, userID, nil)
	if err != nil {
		return nil, fmt.Errorf("ledger totals: %w", err)
	}
	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	weekly, err := s.repos.Ledger.Totals(ctx, userID, &weekAgo)
	if err != nil {
		return nil, fmt.Errorf("weekly ledger totals: %w", err)
	}
	return &LedgerStats{
		TotalIncome:   all.Income,
		TotalExpense:  all.Expense,
		WeeklyIncome:  weekly.Income,
		WeeklyExpense: weekly.Expense,
		Net:           all.Income - all.Expense,
	}, nil
}

func appendEntry(ctx context.Context, repos *repository.Repositories, userID uuid.UUID, amount int64, entryType model.EntryType, source string) (*model.LedgerEntry, error) {
	entry := &model.LedgerEntry{
		UserID: userID,
		Amount: amount,
		Type:   entryType,
		Source: source,
	}
	if err := repos.Ledger.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}
	return entry, nil
}

// debit must run inside a transaction. Locking the user row serializes every
// debit of that user, so the balance read here cannot change before the
// entry is appended.
func debit(ctx context.Context, tx *repository.Repositories, userID uuid.UUID, amount int64, source string) (*model.LedgerEntry, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if _, err := tx.Users.FindByIDForUpdate(ctx, userID); err != nil {
		return nil, err
	}
	balance, err := tx.Ledger.Balance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sum ledger: %w", err)
	}
	if balance < amount {
		return nil, apperrors.ErrInsufficientFunds
	}
	return appendEntry(ctx, tx, userID, -amount, model.EntryTypeSpend, source)
}
