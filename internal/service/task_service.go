package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"taskledger/internal/cache"
	apperrors "taskledger/internal/errors"
	"taskledger/internal/model"
	"taskledger/internal/repository"
)

// CreateTaskInput describes a new task. Nil numbers take their defaults.
type CreateTaskInput struct {
	Name             string
	Description      string
	Weights          model.WeightMap
	EstimatedMinutes *int
	RewardCoins      *int64
	CategoryID       *uuid.UUID
}

// StatusChange is the outcome of SetStatus. Reward is set only on the call
// that completed the task.
type StatusChange struct {
	Task   *model.Task  `json:"task"`
	Reward *RewardGrant `json:"reward,omitempty"`
}

// TaskStats summarises a user's tasks.
type TaskStats struct {
	Total               int64                      `json:"total"`
	ByStatus            map[model.TaskStatus]int64 `json:"by_status"`
	CompletedLast30Days int64                      `json:"completed_last_30_days"`
	CompletionRate      float64                    `json:"completion_rate"`
	AvgEstimatedMinutes float64                    `json:"avg_estimated_minutes"`
}

// TaskService manages tasks and triggers rewards on completion.
type TaskService interface {
	Create(ctx context.Context, userID uuid.UUID, in CreateTaskInput) (*model.Task, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*model.Task, error)
	List(ctx context.Context, userID uuid.UUID, filter repository.TaskFilter) ([]model.Task, error)
	SetStatus(ctx context.Context, userID, id uuid.UUID, status model.TaskStatus) (*StatusChange, error)
	SubmitProof(ctx context.Context, userID, id uuid.UUID, proof map[string]interface{}) (*model.Task, error)
	UpdateEvaluation(ctx context.Context, userID, id uuid.UUID, selfEval, suggestion map[string]interface{}) (*model.Task, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Stats(ctx context.Context, userID uuid.UUID) (*TaskStats, error)
}

type taskService struct {
	repos   *repository.Repositories
	rewards *RewardEngine
	cache   *cache.Client
}

// NewTaskService creates a new task service.
func NewTaskService(repos *repository.Repositories, rewards *RewardEngine, cache *cache.Client) TaskService {
	return &taskService{repos: repos, rewards: rewards, cache: cache}
}

func (s *taskService) Create(ctx context.Context, userID uuid.UUID, in CreateTaskInput) (*model.Task, error) {
	task, err := newTask(userID, in)
	if err != nil {
		return nil, err
	}
	if task.CategoryID != nil {
		if _, err := s.repos.Categories.FindByID(ctx, userID, *task.CategoryID); err != nil {
			return nil, fmt.Errorf("category %s: %w", task.CategoryID, err)
		}
	}
	if err := s.repos.Tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

func newTask(userID uuid.UUID, in CreateTaskInput) (*model.Task, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("task name is empty: %w", apperrors.ErrInvalidInput)
	}
	minutes := model.DefaultEstimatedMinutes
	if in.EstimatedMinutes != nil {
		minutes = *in.EstimatedMinutes
	}
	if minutes <= 0 {
		return nil, fmt.Errorf("estimated minutes must be positive: %w", apperrors.ErrInvalidInput)
	}
	coins := int64(model.DefaultRewardCoins)
	if in.RewardCoins != nil {
		coins = *in.RewardCoins
	}
	if coins < 0 {
		return nil, fmt.Errorf("reward coins must not be negative: %w", apperrors.ErrInvalidInput)
	}
	weights := model.WeightMap{}
	for id, w := range in.Weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("weight for attribute %s must be a non-negative number: %w", id, apperrors.ErrInvalidInput)
		}
		weights[id] = w
	}

	return &model.Task{
		UserID:           userID,
		CategoryID:       in.CategoryID,
		Name:             name,
		Description:      in.Description,
		Weights:          datatypes.NewJSONType(weights),
		EstimatedMinutes: minutes,
		RewardCoins:      coins,
		Status:           model.TaskStatusPending,
	}, nil
}

func (s *taskService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Task, error) {
	return s.repos.Tasks.FindByID(ctx, userID, id)
}

func (s *taskService) List(ctx context.Context, userID uuid.UUID, filter repository.TaskFilter) ([]model.Task, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}
	return s.repos.Tasks.List(ctx, userID, filter)
}

// SetStatus moves a task to status. Completion claims the task with a
// conditional update, and only the claiming call pays the reward. Completed
// is terminal: repeating it is a no-op and leaving it fails with
// ErrTaskFinalized.
func (s *taskService) SetStatus(ctx context.Context, userID, id uuid.UUID, status model.TaskStatus) (*StatusChange, error) {
	if !status.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}

	change := &StatusChange{}
	err := s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		task, err := tx.Tasks.FindByIDForUpdate(ctx, userID, id)
		if err != nil {
			return err
		}

		if task.Status == model.TaskStatusCompleted {
			if status != model.TaskStatusCompleted {
				return apperrors.ErrTaskFinalized
			}
			change.Task = task
			return nil
		}

		if status == model.TaskStatusCompleted {
			claimed, err := tx.Tasks.MarkCompleted(ctx, userID, id, time.Now().UTC())
			if err != nil {
				return fmt.Errorf("complete task: %w", err)
			}
			if claimed {
				change.Reward = s.rewards.Grant(ctx, tx, task)
			}
		} else if err := tx.Tasks.UpdateStatus(ctx, userID, id, status); err != nil {
			return fmt.Errorf("update task status: %w", err)
		}

		change.Task, err = tx.Tasks.FindByID(ctx, userID, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if change.Reward != nil {
		s.cache.InvalidateUser(ctx, userID)
	}
	log.WithFields(log.Fields{"task_id": id, "user_id": userID, "status": status}).Debug("task status updated")
	return change, nil
}

// SubmitProof shallow-merges proof into the stored proof document.
func (s *taskService) SubmitProof(ctx context.Context, userID, id uuid.UUID, proof map[string]interface{}) (*model.Task, error) {
	if len(proof) == 0 {
		return nil, apperrors.ErrEmptyUpdate
	}
	return s.updatePayloads(ctx, userID, id, func(task *model.Task) {
		task.Proof = mergeDocument(task.Proof, proof)
	})
}

// UpdateEvaluation shallow-merges the self-evaluation and suggestion documents.
// At least one of them must be given.
func (s *taskService) UpdateEvaluation(ctx context.Context, userID, id uuid.UUID, selfEval, suggestion map[string]interface{}) (*model.Task, error) {
	if selfEval == nil && suggestion == nil {
		return nil, apperrors.ErrEmptyUpdate
	}
	return s.updatePayloads(ctx, userID, id, func(task *model.Task) {
		if selfEval != nil {
			task.SelfEval = mergeDocument(task.SelfEval, selfEval)
		}
		if suggestion != nil {
			task.Suggestion = mergeDocument(task.Suggestion, suggestion)
		}
	})
}

func (s *taskService) updatePayloads(ctx context.Context, userID, id uuid.UUID, apply func(*model.Task)) (*model.Task, error) {
	var updated *model.Task
	err := s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		task, err := tx.Tasks.FindByIDForUpdate(ctx, userID, id)
		if err != nil {
			return err
		}
		apply(task)
		if err := tx.Tasks.UpdatePayloads(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the task if it belongs to userID.
func (s *taskService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repos.Tasks.Delete(ctx, userID, id)
}

func (s *taskService) Stats(ctx context.Context, userID uuid.UUID) (*TaskStats, error) {
	counts, err := s.repos.Tasks.CountByStatus(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	stats := &TaskStats{ByStatus: map[model.TaskStatus]int64{
		model.TaskStatusPending:    0,
		model.TaskStatusInProgress: 0,
		model.TaskStatusCompleted:  0,
		model.TaskStatusFailed:     0,
	}}
	for _, c := range counts {
		stats.ByStatus[c.Status] = c.Count
		stats.Total += c.Count
	}
	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.ByStatus[model.TaskStatusCompleted]) / float64(stats.Total)
	}

	since := time.Now().UTC().AddDate(0, 0, -30)
	if stats.CompletedLast30Days, err = s.repos.Tasks.CountCompletedSince(ctx, userID, since); err != nil {
		return nil, fmt.Errorf("count completed tasks: %w", err)
	}
	if stats.AvgEstimatedMinutes, err = s.repos.Tasks.AverageEstimatedMinutes(ctx, userID); err != nil {
		return nil, fmt.Errorf("average estimate: %w", err)
	}
	return stats, nil
}

// mergeDocument returns base with patch's top-level keys written over it.
func mergeDocument(base datatypes.JSONMap, patch map[string]interface{}) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}
