package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "taskledger/internal/errors"
	"taskledger/internal/model"
)

func TestShopService_Items(t *testing.T) {
	svc := NewShopService(newTestRepos(t), nil)

	assert.Len(t, svc.Items(""), len(shopCatalog))
	tools := svc.Items("tool")
	require.Len(t, tools, 3)
	for _, item := range tools {
		assert.Equal(t, "tool", item.Category)
	}
	assert.Empty(t, svc.Items("weapon"))
}

func TestShopService_Purchase(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	ledger := NewLedgerService(repos, nil, 0, 50)
	svc := NewShopService(repos, nil)

	_, err := ledger.Credit(ctx, user.ID, 400, model.EntryTypeEarn, "seed")
	require.NoError(t, err)

	result, err := svc.Purchase(ctx, user.ID, "item_energy_medium", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.RemainingBalance)
	assert.Equal(t, int64(300), result.Purchase.TotalPrice)
	assert.Equal(t, int64(150), result.Purchase.UnitPrice)

	qty, err := repos.Resources.Quantity(ctx, user.ID, "shop_item_energy_medium")
	require.NoError(t, err)
	assert.Equal(t, int64(2), qty)

	history, err := ledger.History(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, int64(-300), history[0].Amount)
	assert.Equal(t, model.EntryTypeSpend, history[0].Type)
	assert.Equal(t, "shop:item_energy_medium", history[0].Source)

	purchases, err := svc.History(ctx, user.ID, 0)
	require.NoError(t, err)
	assert.Len(t, purchases, 1)
}

func TestShopService_PurchaseRejected(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	ledger := NewLedgerService(repos, nil, 0, 50)
	svc := NewShopService(repos, nil)

	_, err := ledger.Credit(ctx, user.ID, 100, model.EntryTypeEarn, "seed")
	require.NoError(t, err)

	tests := []struct {
		name    string
		item    string
		qty     int64
		wantErr error
	}{
		{"unknown item", "item_sword", 1, apperrors.ErrItemNotFound},
		{"zero quantity", "item_energy_small", 0, apperrors.ErrInvalidAmount},
		{"too expensive", "item_coin_detector", 1, apperrors.ErrInsufficientFunds},
		{"total overflows", "item_energy_small", math.MaxInt64, apperrors.ErrInvalidAmount},
		{"total one past the limit", "item_energy_medium", math.MaxInt64/150 + 1, apperrors.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Purchase(ctx, user.ID, tt.item, tt.qty)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	balance, err := ledger.Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)

	for _, key := range []string{"shop_item_coin_detector", "shop_item_energy_small", "shop_item_energy_medium"} {
		qty, err := repos.Resources.Quantity(ctx, user.ID, key)
		require.NoError(t, err)
		assert.Zero(t, qty, key)
	}

	purchases, err := svc.History(ctx, user.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, purchases)
}
