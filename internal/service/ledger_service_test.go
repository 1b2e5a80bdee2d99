package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "taskledger/internal/errors"
	"taskledger/internal/model"
	"taskledger/internal/repository"
)

func TestLedgerService_BalanceIsSumOfEntries(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	svc := NewLedgerService(repos, nil, 0, 50)

	ops := []struct {
		credit bool
		amount int64
	}{
		{true, 100}, {false, 30}, {true, 5}, {false, 75}, {true, 12},
	}
	for _, op := range ops {
		var err error
		if op.credit {
			_, err = svc.Credit(ctx, user.ID, op.amount, model.EntryTypeEarn, "test")
		} else {
			_, err = svc.Debit(ctx, user.ID, op.amount, "test")
		}
		require.NoError(t, err)

		balance, err := svc.Balance(ctx, user.ID)
		require.NoError(t, err)
		history, err := svc.History(ctx, user.ID, 100)
		require.NoError(t, err)

		var sum int64
		for _, e := range history {
			sum += e.Amount
		}
		assert.Equal(t, sum, balance)
		assert.GreaterOrEqual(t, balance, int64(0))
	}

	balance, err := svc.Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(12), balance)
}

func TestLedgerService_DebitRejectsOverdraftWithoutWriting(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	svc := NewLedgerService(repos, nil, 0, 50)

	_, err := svc.Credit(ctx, user.ID, 40, model.EntryTypeEarn, "seed")
	require.NoError(t, err)

	_, err = svc.Debit(ctx, user.ID, 41, "too much")
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)

	history, err := svc.History(ctx, user.ID, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	balance, err := svc.Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), balance)
}

// SQLite runs on a single connection, so the two debits serialize on the
// pool rather than on the user row lock. The row lock is only contended on
// MySQL and Postgres.
func TestLedgerService_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	svc := NewLedgerService(repos, nil, 0, 50)

	_, err := svc.Credit(ctx, user.ID, 100, model.EntryTypeEarn, "seed")
	require.NoError(t, err)

	const workers = 2
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Debit(ctx, user.ID, 100, "race")
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			insufficient++
		default:
			t.Errorf("unexpected debit error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)

	balance, err := svc.Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestLedgerService_Validation(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	svc := NewLedgerService(repos, nil, 0, 50)

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{"zero credit", func() error {
			_, err := svc.Credit(ctx, user.ID, 0, model.EntryTypeEarn, "")
			return err
		}, apperrors.ErrInvalidAmount},
		{"credit typed as spend", func() error {
			_, err := svc.Credit(ctx, user.ID, 5, model.EntryTypeSpend, "")
			return err
		}, apperrors.ErrInvalidInput},
		{"negative debit", func() error {
			_, err := svc.Debit(ctx, user.ID, -5, "")
			return err
		}, apperrors.ErrInvalidAmount},
		{"credit unknown user", func() error {
			_, err := svc.Credit(ctx, uuid.New(), 5, model.EntryTypeEarn, "")
			return err
		}, apperrors.ErrNotFound},
		{"debit unknown user", func() error {
			_, err := svc.Debit(ctx, uuid.New(), 5, "")
			return err
		}, apperrors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.wantErr)
		})
	}
}

func TestDebit_RejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	svc := NewLedgerService(repos, nil, 0, 50)

	for _, amount := range []int64{0, -50, math.MinInt64} {
		err := repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
			_, err := debit(ctx, tx, user.ID, amount, "shop:item_energy_small")
			return err
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount, "amount %d", amount)
	}

	balance, err := svc.Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, balance)

	history, err := svc.History(ctx, user.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestLedgerService_HistoryNewestFirstAndStats(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	svc := NewLedgerService(repos, nil, 0, 2)

	_, err := svc.Credit(ctx, user.ID, 50, model.EntryTypeEarn, "first")
	require.NoError(t, err)
	_, err = svc.Debit(ctx, user.ID, 20, "second")
	require.NoError(t, err)
	_, err = svc.Credit(ctx, user.ID, 7, model.EntryTypeReward, "third")
	require.NoError(t, err)

	history, err := svc.History(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2, "default limit applies")
	assert.Equal(t, "third", history[0].Source)
	assert.Equal(t, "second", history[1].Source)
	assert.Equal(t, model.EntryTypeSpend, history[1].Type)

	stats, err := svc.Stats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, &LedgerStats{
		TotalIncome:   57,
		TotalExpense:  20,
		WeeklyIncome:  57,
		WeeklyExpense: 20,
		Net:           37,
	}, stats)
}
