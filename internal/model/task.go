package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusFailed:
		return true
	}
	return false
}

const (
	DefaultEstimatedMinutes = 30
	DefaultRewardCoins      = 10
)

// WeightMap links attribute ids to the weight a task contributes to them.
type WeightMap map[uuid.UUID]float64

// Task is a unit of work that pays out a reward once it is completed.
type Task struct {
	ID               uuid.UUID                     `json:"id" gorm:"type:char(36);primaryKey"`
	UserID           uuid.UUID                     `json:"user_id" gorm:"type:char(36);not null;index:idx_task_user_created,priority:1"`
	CategoryID       *uuid.UUID                    `json:"category_id,omitempty" gorm:"type:char(36);index"`
	Name             string                        `json:"name" gorm:"size:255;not null"`
	Description      string                        `json:"description" gorm:"type:text"`
	Weights          datatypes.JSONType[WeightMap] `json:"weight_map" gorm:"column:weight_map" swaggertype:"object"`
	EstimatedMinutes int                           `json:"estimated_minutes" gorm:"not null;default:30"`
	RewardCoins      int64                         `json:"reward_coins" gorm:"not null;default:10"`
	Status           TaskStatus                    `json:"status" gorm:"size:20;not null;default:'pending';index"`
	CreatedAt        time.Time                     `json:"created_at" gorm:"index:idx_task_user_created,priority:2"`
	UpdatedAt        time.Time                     `json:"updated_at"`
	CompletedAt      *time.Time                    `json:"completed_at,omitempty"`
	Proof            datatypes.JSONMap             `json:"proof,omitempty" gorm:"column:proof" swaggertype:"object"`
	SelfEval         datatypes.JSONMap             `json:"self_eval,omitempty" gorm:"column:self_eval" swaggertype:"object"`
	Suggestion       datatypes.JSONMap             `json:"suggestion,omitempty" gorm:"column:suggestion" swaggertype:"object"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Weights.Data() == nil {
		t.Weights = datatypes.NewJSONType(WeightMap{})
	}
	return nil
}

// AttributeWeights returns the task's attribute weights, never nil.
func (t *Task) AttributeWeights() WeightMap {
	if w := t.Weights.Data(); w != nil {
		return w
	}
	return WeightMap{}
}
