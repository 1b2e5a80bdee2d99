package service

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "taskledger/internal/errors"
)

func TestAttributeService_Create(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	svc := NewAttributeService(repos)

	attr, err := svc.Create(ctx, user.ID, CreateAttributeInput{Name: " Strength ", Description: "lifting"})
	require.NoError(t, err)
	assert.Equal(t, "Strength", attr.Name)
	assert.Equal(t, int64(100), attr.MaxValue)
	assert.Zero(t, attr.Value)

	_, err = svc.Create(ctx, user.ID, CreateAttributeInput{Name: "Strength"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateName)

	_, err = svc.Create(ctx, user.ID, CreateAttributeInput{Name: ""})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.Create(ctx, user.ID, CreateAttributeInput{Name: "Zero", MaxValue: int64Ptr(0)})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestAttributeService_IncreaseClamps(t *testing.T) {
	tests := []struct {
		name     string
		start    int64
		max      int64
		delta    int64
		expected int64
	}{
		{"within range", 2, 10, 3, 5},
		{"exactly max", 7, 10, 3, 10},
		{"overflow clamps", 9, 10, 50, 10},
		{"zero delta", 4, 10, 0, 4},
		{"already full", 10, 10, 1, 10},
		{"huge delta saturates", 5, 10, math.MaxInt64, 10},
		{"huge delta from zero", 0, 10, math.MaxInt64, 10},
		{"huge delta at max", 10, 10, math.MaxInt64, 10},
		{"huge max near limit", math.MaxInt64 - 5, math.MaxInt64, math.MaxInt64, math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repos := newTestRepos(t)
			user := createUser(t, repos, "alice")
			attr := createAttribute(t, repos, user, "Focus", tt.start, tt.max)
			svc := NewAttributeService(repos)

			got, err := svc.Increase(ctx, user.ID, attr.ID, tt.delta)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)

			stored, err := svc.Get(ctx, user.ID, attr.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, stored.Value)
			assert.GreaterOrEqual(t, stored.Value, int64(0))
			assert.LessOrEqual(t, stored.Value, stored.MaxValue)
		})
	}
}

func TestAttributeService_IncreaseRejectsNegativeDelta(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	attr := createAttribute(t, repos, user, "Focus", 5, 10)

	_, err := NewAttributeService(repos).Increase(ctx, user.ID, attr.ID, -1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
}

func TestAttributeService_SetValueClamps(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	attr := createAttribute(t, repos, user, "Focus", 5, 10)
	svc := NewAttributeService(repos)

	for input, want := range map[int64]int64{-5: 0, 3: 3, 10: 10, 500: 10} {
		got, err := svc.SetValue(ctx, user.ID, attr.ID, input)
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %d", input)
	}
}

func TestAttributeService_UnchangedWritesSucceed(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	attr := createAttribute(t, repos, user, "Focus", 10, 10)
	svc := NewAttributeService(repos)

	for i := 0; i < 2; i++ {
		got, err := svc.SetValue(ctx, user.ID, attr.ID, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(7), got)
	}

	got, err := svc.Increase(ctx, user.ID, attr.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got)
	got, err = svc.Increase(ctx, user.ID, attr.ID, 1)
	require.NoError(t, err, "increase at max clamps instead of failing")
	assert.Equal(t, int64(10), got)
}

func TestAttributeService_UpdateLoweringMaxClampsValue(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	attr := createAttribute(t, repos, user, "Focus", 8, 10)
	svc := NewAttributeService(repos)

	updated, err := svc.Update(ctx, user.ID, attr.ID, UpdateAttributeInput{MaxValue: int64Ptr(5), Icon: strPtr("🎯")})
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated.MaxValue)
	assert.Equal(t, int64(5), updated.Value)

	stored, err := svc.Get(ctx, user.ID, attr.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stored.Value)
	assert.Equal(t, "🎯", stored.Icon)

	_, err = svc.Update(ctx, user.ID, attr.ID, UpdateAttributeInput{})
	assert.ErrorIs(t, err, apperrors.ErrEmptyUpdate)
}

func TestAttributeService_OwnershipChecked(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	alice := createUser(t, repos, "alice")
	bob := createUser(t, repos, "bob")
	attr := createAttribute(t, repos, alice, "Focus", 1, 10)
	svc := NewAttributeService(repos)

	_, err := svc.Increase(ctx, bob.ID, attr.ID, 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = svc.SetValue(ctx, bob.ID, attr.ID, 9)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, bob.ID, attr.ID), apperrors.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, alice.ID, uuid.New()), apperrors.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, alice.ID, attr.ID))
	_, err = svc.Get(ctx, alice.ID, attr.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
