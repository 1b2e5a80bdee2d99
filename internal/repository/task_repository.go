package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "taskledger/internal/errors"
	"taskledger/internal/model"
)

// TaskFilter narrows a task listing. Offset is ignored without a limit.
type TaskFilter struct {
	Status     *model.TaskStatus
	CategoryID *uuid.UUID
	Limit      int
	Offset     int
}

// StatusCount is one row of a per-status task count.
type StatusCount struct {
	Status model.TaskStatus
	Count  int64
}

// TaskRepository defines task persistence operations.
type TaskRepository interface {
	WithTx(tx *gorm.DB) TaskRepository
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Task, error)
	FindByIDForUpdate(ctx context.Context, userID, id uuid.UUID) (*model.Task, error)
	List(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]model.Task, error)
	MarkCompleted(ctx context.Context, userID, id uuid.UUID, at time.Time) (bool, error)
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, status model.TaskStatus) error
	UpdatePayloads(ctx context.Context, task *model.Task) error
	ClearCategory(ctx context.Context, userID, categoryID uuid.UUID) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	CountByStatus(ctx context.Context, userID uuid.UUID) ([]StatusCount, error)
	CountCompletedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
	AverageEstimatedMinutes(ctx context.Context, userID uuid.UUID) (float64, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) WithTx(tx *gorm.DB) TaskRepository {
	return &taskRepository{db: tx}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).
		First(&task).Error; err != nil {
		return nil, translate(err, nil)
	}
	return &task, nil
}

func (r *taskRepository) FindByIDForUpdate(ctx context.Context, userID, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", id, userID).First(&task).Error; err != nil {
		return nil, translate(err, nil)
	}
	return &task, nil
}

// List returns tasks newest first.
func (r *taskRepository) List(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]model.Task, error) {
	var tasks []model.Task
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// MarkCompleted moves the task to completed unless it already is. The boolean
// reports whether this call made the transition; at most one caller ever
// observes true for a task.
func (r *taskRepository) MarkCompleted(ctx context.Context, userID, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND user_id = ? AND status <> ?", id, userID, model.TaskStatusCompleted).
		Updates(map[string]interface{}{
			"status":       model.TaskStatusCompleted,
			"completed_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// UpdateStatus sets a non-completed status and clears the completion time.
// Completed tasks are left untouched.
func (r *taskRepository) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status model.TaskStatus) error {
	return r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND user_id = ? AND status <> ?", id, userID, model.TaskStatusCompleted).
		Updates(map[string]interface{}{
			"status":       status,
			"completed_at": nil,
		}).Error
}

// UpdatePayloads writes the proof, self-evaluation and suggestion documents.
func (r *taskRepository) UpdatePayloads(ctx context.Context, task *model.Task) error {
	res := r.db.WithContext(ctx).Model(task).
		Where("user_id = ?", task.UserID).
		Select("proof", "self_eval", "suggestion").
		Updates(task)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ClearCategory detaches the user's tasks from a category.
func (r *taskRepository) ClearCategory(ctx context.Context, userID, categoryID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		Update("category_id", nil).Error
}

func (r *taskRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *taskRepository) CountByStatus(ctx context.Context, userID uuid.UUID) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *taskRepository) CountCompletedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND status = ? AND completed_at >= ?", userID, model.TaskStatusCompleted, since).
		Count(&count).Error
	return count, err
}

func (r *taskRepository) AverageEstimatedMinutes(ctx context.Context, userID uuid.UUID) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("COALESCE(AVG(estimated_minutes), 0)").
		Where("user_id = ?", userID).
		Scan(&avg).Error
	return avg, err
}
