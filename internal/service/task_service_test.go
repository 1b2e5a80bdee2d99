package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "taskledger/internal/errors"
	"taskledger/internal/model"
	"taskledger/internal/repository"
)

func TestTaskService_CreateDefaults(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	svc := NewTaskService(repos, NewRewardEngine(), nil)

	task, err := svc.Create(ctx, user.ID, CreateTaskInput{Name: "Write report"})
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusPending, task.Status)
	assert.Equal(t, 30, task.EstimatedMinutes)
	assert.Equal(t, int64(10), task.RewardCoins)
	assert.Nil(t, task.CompletedAt)

	stored, err := svc.Get(ctx, user.ID, task.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.AttributeWeights())
}

func TestTaskService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	alice := createUser(t, repos, "alice")
	bob := createUser(t, repos, "bob")
	svc := NewTaskService(repos, NewRewardEngine(), nil)
	bobsCategory, err := NewCategoryService(repos).Create(ctx, bob.ID, CategoryInput{Name: "Bob's"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   CreateTaskInput
		wantErr error
	}{
		{"empty name", CreateTaskInput{Name: "  "}, apperrors.ErrInvalidInput},
		{"zero minutes", CreateTaskInput{Name: "x", EstimatedMinutes: intPtr(0)}, apperrors.ErrInvalidInput},
		{"negative coins", CreateTaskInput{Name: "x", RewardCoins: int64Ptr(-1)}, apperrors.ErrInvalidInput},
		{"negative weight", CreateTaskInput{Name: "x", Weights: model.WeightMap{uuid.New(): -0.5}}, apperrors.ErrInvalidInput},
		{"foreign category", CreateTaskInput{Name: "x", CategoryID: &bobsCategory.ID}, apperrors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, alice.ID, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTaskService_RewardIssuedExactlyOnce(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	svc := NewTaskService(repos, NewRewardEngine(), nil)
	ledger := NewLedgerService(repos, nil, 0, 50)

	task, err := svc.Create(ctx, user.ID, CreateTaskInput{Name: "Run", RewardCoins: int64Ptr(10)})
	require.NoError(t, err)

	first, err := svc.SetStatus(ctx, user.ID, task.ID, model.TaskStatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, first.Reward)
	assert.Equal(t, int64(10), first.Reward.Coins)
	assert.Equal(t, int64(5), first.Reward.Experience)
	assert.Equal(t, model.TaskStatusCompleted, first.Task.Status)
	assert.NotNil(t, first.Task.CompletedAt)

	second, err := svc.SetStatus(ctx, user.ID, task.ID, model.TaskStatusCompleted)
	require.NoError(t, err)
	assert.Nil(t, second.Reward)

	history, err := ledger.History(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(10), history[0].Amount)
	assert.Equal(t, model.EntryTypeReward, history[0].Type)
	assert.Equal(t, "task:"+task.ID.String()+":complete", history[0].Source)

	records, err := repos.Experience.ListByUser(ctx, user.ID, 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	stored, err := repos.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stored.Experience)
}

func TestTaskService_CompletionRaisesWeightedAttribute(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	attr := createAttribute(t, repos, user, "A", 0, 5)
	svc := NewTaskService(repos, NewRewardEngine(), nil)
	ledger := NewLedgerService(repos, nil, 0, 50)

	task, err := svc.Create(ctx, user.ID, CreateTaskInput{
		Name:             "Practice",
		Weights:          model.WeightMap{attr.ID: 1},
		EstimatedMinutes: intPtr(60),
		RewardCoins:      int64Ptr(10),
	})
	require.NoError(t, err)

	change, err := svc.SetStatus(ctx, user.ID, task.ID, model.TaskStatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, change.Reward)
	assert.Equal(t, []AttributeGrant{{AttributeID: attr.ID, Increase: 1, Value: 1}}, change.Reward.Attributes)

	balance, err := ledger.Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)

	stored, err := repos.Attributes.FindByID(ctx, user.ID, attr.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Value)
}

func TestTaskService_RewardClampsAttributeAtMax(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	attr := createAttribute(t, repos, user, "A", 3, 5)
	svc := NewTaskService(repos, NewRewardEngine(), nil)

	task, err := svc.Create(ctx, user.ID, CreateTaskInput{
		Name:             "Marathon",
		Weights:          model.WeightMap{attr.ID: 10},
		EstimatedMinutes: intPtr(120),
	})
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, user.ID, task.ID, model.TaskStatusCompleted)
	require.NoError(t, err)

	stored, err := repos.Attributes.FindByID(ctx, user.ID, attr.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stored.Value)
}

func TestTaskService_RewardSaturatesFullAttribute(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	full := createAttribute(t, repos, user, "Full", 5, 5)
	partial := createAttribute(t, repos, user, "Partial", 2, 5)
	svc := NewTaskService(repos, NewRewardEngine(), nil)

	task, err := svc.Create(ctx, user.ID, CreateTaskInput{
		Name:             "Grind",
		Weights:          model.WeightMap{full.ID: 1, partial.ID: 2e19},
		EstimatedMinutes: intPtr(600),
	})
	require.NoError(t, err)

	change, err := svc.SetStatus(ctx, user.ID, task.ID, model.TaskStatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, change.Reward)
	assert.Empty(t, change.Reward.Skipped)
	assert.Empty(t, change.Reward.Failed)
	assert.ElementsMatch(t, []AttributeGrant{
		{AttributeID: full.ID, Increase: 10, Value: 5},
		{AttributeID: partial.ID, Increase: math.MaxInt64, Value: 5},
	}, change.Reward.Attributes)

	for _, id := range []uuid.UUID{full.ID, partial.ID} {
		stored, err := repos.Attributes.FindByID(ctx, user.ID, id)
		require.NoError(t, err)
		assert.Equal(t, int64(5), stored.Value)
	}
}

func TestTaskService_RewardSkipsMissingAndForeignAttributes(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	alice := createUser(t, repos, "alice")
	bob := createUser(t, repos, "bob")
	own := createAttribute(t, repos, alice, "Own", 0, 10)
	foreign := createAttribute(t, repos, bob, "Foreign", 0, 10)
	missing := uuid.New()
	svc := NewTaskService(repos, NewRewardEngine(), nil)

	task, err := svc.Create(ctx, alice.ID, CreateTaskInput{
		Name:    "Mixed",
		Weights: model.WeightMap{own.ID: 1, foreign.ID: 1, missing: 1},
	})
	require.NoError(t, err)

	change, err := svc.SetStatus(ctx, alice.ID, task.ID, model.TaskStatusCompleted)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{foreign.ID, missing}, change.Reward.Skipped)
	assert.Empty(t, change.Reward.Failed)
	require.Len(t, change.Reward.Attributes, 1)
	assert.Equal(t, own.ID, change.Reward.Attributes[0].AttributeID)

	untouched, err := repos.Attributes.FindByID(ctx, bob.ID, foreign.ID)
	require.NoError(t, err)
	assert.Zero(t, untouched.Value)
}

// failingAttributes fails value writes for one attribute.
type failingAttributes struct {
	repository.AttributeRepository
	failID uuid.UUID
}

func (f *failingAttributes) WithTx(tx *gorm.DB) repository.AttributeRepository {
	return &failingAttributes{AttributeRepository: f.AttributeRepository.WithTx(tx), failID: f.failID}
}

func (f *failingAttributes) UpdateValue(ctx context.Context, userID, id uuid.UUID, value int64) error {
	if id == f.failID {
		return errors.New("disk I/O error")
	}
	return f.AttributeRepository.UpdateValue(ctx, userID, id, value)
}

func TestTaskService_AttributeFailureDoesNotBlockOtherGrants(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	broken := createAttribute(t, repos, user, "Broken", 0, 10)
	healthy := createAttribute(t, repos, user, "Healthy", 0, 10)
	repos.Attributes = &failingAttributes{AttributeRepository: repos.Attributes, failID: broken.ID}
	svc := NewTaskService(repos, NewRewardEngine(), nil)

	task, err := svc.Create(ctx, user.ID, CreateTaskInput{
		Name:             "Both",
		Weights:          model.WeightMap{broken.ID: 2, healthy.ID: 2},
		EstimatedMinutes: intPtr(60),
		RewardCoins:      int64Ptr(20),
	})
	require.NoError(t, err)

	change, err := svc.SetStatus(ctx, user.ID, task.ID, model.TaskStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusCompleted, change.Task.Status)
	assert.Equal(t, []string{"attribute:" + broken.ID.String()}, change.Reward.Failed)
	assert.Equal(t, int64(20), change.Reward.Coins)
	assert.Equal(t, int64(10), change.Reward.Experience)

	balance, err := repos.Ledger.Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), balance)

	got, err := repos.Attributes.FindByID(ctx, user.ID, healthy.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Value)

	got, err = repos.Attributes.FindByID(ctx, user.ID, broken.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Value)
}

func TestTaskService_ConcurrentCompletionPaysOnce(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	svc := NewTaskService(repos, NewRewardEngine(), nil)

	task, err := svc.Create(ctx, user.ID, CreateTaskInput{Name: "Race"})
	require.NoError(t, err)

	const workers = 5
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		rewards int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			change, err := svc.SetStatus(ctx, user.ID, task.ID, model.TaskStatusCompleted)
			if !assert.NoError(t, err) {
				return
			}
			if change.Reward != nil {
				mu.Lock()
				rewards++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, rewards)
	balance, err := repos.Ledger.Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)
}

func TestTaskService_StatusTransitions(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	svc := NewTaskService(repos, NewRewardEngine(), nil)

	task, err := svc.Create(ctx, user.ID, CreateTaskInput{Name: "Flow"})
	require.NoError(t, err)

	for _, status := range []model.TaskStatus{model.TaskStatusInProgress, model.TaskStatusFailed, model.TaskStatusPending} {
		change, err := svc.SetStatus(ctx, user.ID, task.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, change.Task.Status)
		assert.Nil(t, change.Task.CompletedAt)
		assert.Nil(t, change.Reward)
	}

	_, err = svc.SetStatus(ctx, user.ID, task.ID, model.TaskStatus("archived"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)

	_, err = svc.SetStatus(ctx, user.ID, task.ID, model.TaskStatusCompleted)
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, user.ID, task.ID, model.TaskStatusInProgress)
	assert.ErrorIs(t, err, apperrors.ErrTaskFinalized)

	stored, err := svc.Get(ctx, user.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusCompleted, stored.Status)
	assert.NotNil(t, stored.CompletedAt)
}

func TestTaskService_SetStatusChecksOwnership(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	alice := createUser(t, repos, "alice")
	bob := createUser(t, repos, "bob")
	svc := NewTaskService(repos, NewRewardEngine(), nil)

	task, err := svc.Create(ctx, alice.ID, CreateTaskInput{Name: "Mine"})
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, bob.ID, task.ID, model.TaskStatusCompleted)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	balance, err := repos.Ledger.Balance(ctx, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestTaskService_PayloadsAreShallowMerged(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	svc := NewTaskService(repos, NewRewardEngine(), nil)

	task, err := svc.Create(ctx, user.ID, CreateTaskInput{Name: "Essay"})
	require.NoError(t, err)

	_, err = svc.SubmitProof(ctx, user.ID, task.ID, map[string]interface{}{"url": "a", "words": 100})
	require.NoError(t, err)
	_, err = svc.SubmitProof(ctx, user.ID, task.ID, map[string]interface{}{"words": 250, "notes": "final"})
	require.NoError(t, err)
	_, err = svc.SubmitProof(ctx, user.ID, task.ID, map[string]interface{}{"notes": "final"})
	require.NoError(t, err, "resubmitting an unchanged proof")

	_, err = svc.UpdateEvaluation(ctx, user.ID, task.ID, map[string]interface{}{"score": 4}, map[string]interface{}{"tip": "shorter"})
	require.NoError(t, err)
	_, err = svc.UpdateEvaluation(ctx, user.ID, task.ID, map[string]interface{}{"mood": "good"}, nil)
	require.NoError(t, err)

	stored, err := svc.Get(ctx, user.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"url": "a", "words": float64(250), "notes": "final"}, map[string]interface{}(stored.Proof))
	assert.Equal(t, map[string]interface{}{"score": float64(4), "mood": "good"}, map[string]interface{}(stored.SelfEval))
	assert.Equal(t, map[string]interface{}{"tip": "shorter"}, map[string]interface{}(stored.Suggestion))

	_, err = svc.UpdateEvaluation(ctx, user.ID, task.ID, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrEmptyUpdate)
	_, err = svc.SubmitProof(ctx, user.ID, task.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrEmptyUpdate)
}

func TestTaskService_DeleteChecksOwnership(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	alice := createUser(t, repos, "alice")
	bob := createUser(t, repos, "bob")
	svc := NewTaskService(repos, NewRewardEngine(), nil)

	task, err := svc.Create(ctx, alice.ID, CreateTaskInput{Name: "Keep"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, bob.ID, task.ID), apperrors.ErrNotFound)
	_, err = svc.Get(ctx, alice.ID, task.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, alice.ID, task.ID))
	_, err = svc.Get(ctx, alice.ID, task.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTaskService_ListFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	svc := NewTaskService(repos, NewRewardEngine(), nil)
	category, err := NewCategoryService(repos).Create(ctx, user.ID, CategoryInput{Name: "Work"})
	require.NoError(t, err)

	var ids []uuid.UUID
	for i, name := range []string{"one", "two", "three", "four"} {
		in := CreateTaskInput{Name: name}
		if i%2 == 0 {
			in.CategoryID = &category.ID
		}
		task, err := svc.Create(ctx, user.ID, in)
		require.NoError(t, err)
		ids = append(ids, task.ID)
		time.Sleep(2 * time.Millisecond)
	}
	_, err = svc.SetStatus(ctx, user.ID, ids[1], model.TaskStatusInProgress)
	require.NoError(t, err)

	all, err := svc.List(ctx, user.ID, repository.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "four", all[0].Name)
	assert.Equal(t, "one", all[3].Name)

	inProgress := model.TaskStatusInProgress
	filtered, err := svc.List(ctx, user.ID, repository.TaskFilter{Status: &inProgress})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, ids[1], filtered[0].ID)

	byCategory, err := svc.List(ctx, user.ID, repository.TaskFilter{CategoryID: &category.ID})
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	page, err := svc.List(ctx, user.ID, repository.TaskFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "three", page[0].Name)
	assert.Equal(t, "two", page[1].Name)

	bad := model.TaskStatus("nope")
	_, err = svc.List(ctx, user.ID, repository.TaskFilter{Status: &bad})
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
}

func TestTaskService_Stats(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "alice")
	svc := NewTaskService(repos, NewRewardEngine(), nil)

	a, err := svc.Create(ctx, user.ID, CreateTaskInput{Name: "a", EstimatedMinutes: intPtr(20)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, user.ID, CreateTaskInput{Name: "b", EstimatedMinutes: intPtr(40)})
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, user.ID, a.ID, model.TaskStatusCompleted)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.ByStatus[model.TaskStatusCompleted])
	assert.Equal(t, int64(1), stats.ByStatus[model.TaskStatusPending])
	assert.Equal(t, int64(0), stats.ByStatus[model.TaskStatusFailed])
	assert.Equal(t, int64(1), stats.CompletedLast30Days)
	assert.InDelta(t, 0.5, stats.CompletionRate, 1e-9)
	assert.InDelta(t, 30.0, stats.AvgEstimatedMinutes, 1e-9)
}
