package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	apperrors "taskledger/internal/errors"
	"taskledger/internal/model"
	"taskledger/internal/repository"
)

var (
	minutesPerHour = decimal.NewFromInt(60)
	maxIncrease    = decimal.NewFromInt(math.MaxInt64)
)

// AttributeGrant is the increase applied to one attribute.
type AttributeGrant struct {
	AttributeID uuid.UUID `json:"attribute_id"`
	Increase    int64     `json:"increase"`
	Value       int64     `json:"value"`
}

// RewardGrant describes what a completed task paid out. Failed lists the
// steps that could not be applied.
type RewardGrant struct {
	TaskID     uuid.UUID        `json:"task_id"`
	Coins      int64            `json:"coins"`
	Experience int64            `json:"experience"`
	Attributes []AttributeGrant `json:"attributes"`
	Skipped    []uuid.UUID      `json:"skipped_attributes,omitempty"`
	Failed     []string         `json:"failed,omitempty"`
}

// RewardEngine pays out a task's reward bundle. It is only invoked by
// TaskService after this call won the transition into completed.
type RewardEngine struct{}

// NewRewardEngine creates a reward engine.
func NewRewardEngine() *RewardEngine {
	return &RewardEngine{}
}

// ExperienceFor returns the experience granted alongside coins.
func ExperienceFor(coins int64) int64 {
	if xp := coins / 2; xp > 1 {
		return xp
	}
	return 1
}

// AttributeIncrease returns max(1, floor(weight * minutes / 60)), saturated
// at math.MaxInt64.
func AttributeIncrease(weight float64, estimatedMinutes int) int64 {
	inc := decimal.NewFromFloat(weight).
		Mul(decimal.NewFromInt(int64(estimatedMinutes))).
		Div(minutesPerHour).
		Floor()
	if inc.GreaterThanOrEqual(maxIncrease) {
		return math.MaxInt64
	}
	if n := inc.IntPart(); n > 1 {
		return n
	}
	return 1
}

// Grant applies the reward for task inside tx. Each step runs in its own
// savepoint: a failing step is logged and rolled back alone, and Grant itself
// never fails.
func (e *RewardEngine) Grant(ctx context.Context, tx *repository.Repositories, task *model.Task) *RewardGrant {
	grant := &RewardGrant{TaskID: task.ID, Attributes: []AttributeGrant{}}
	logger := log.WithFields(log.Fields{"task_id": task.ID, "user_id": task.UserID})
	source := fmt.Sprintf("task:%s:complete", task.ID)

	if task.RewardCoins > 0 {
		err := tx.WithTransaction(ctx, func(ctx context.Context, sp *repository.Repositories) error {
			_, err := appendEntry(ctx, sp, task.UserID, task.RewardCoins, model.EntryTypeReward, source)
			return err
		})
		if err != nil {
			logger.WithError(err).WithField("step", "coins").Warn("reward grant failed")
			grant.Failed = append(grant.Failed, "coins")
		} else {
			grant.Coins = task.RewardCoins
		}
	}

	xp := ExperienceFor(task.RewardCoins)
	err := tx.WithTransaction(ctx, func(ctx context.Context, sp *repository.Repositories) error {
		_, err := addExperience(ctx, sp, task.UserID, xp, source)
		return err
	})
	if err != nil {
		logger.WithError(err).WithField("step", "experience").Warn("reward grant failed")
		grant.Failed = append(grant.Failed, "experience")
	} else {
		grant.Experience = xp
	}

	weights := task.AttributeWeights()
	for _, attrID := range sortedAttributeIDs(weights) {
		inc := AttributeIncrease(weights[attrID], task.EstimatedMinutes)
		var attr *model.Attribute
		err := tx.WithTransaction(ctx, func(ctx context.Context, sp *repository.Repositories) error {
			var err error
			attr, err = increaseAttribute(ctx, sp, task.UserID, attrID, inc)
			return err
		})
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.WithField("attribute_id", attrID).Debug("weighted attribute no longer exists, skipping")
			grant.Skipped = append(grant.Skipped, attrID)
		case err != nil:
			logger.WithError(err).WithFields(log.Fields{"step": "attribute", "attribute_id": attrID}).Warn("reward grant failed")
			grant.Failed = append(grant.Failed, "attribute:"+attrID.String())
		default:
			grant.Attributes = append(grant.Attributes, AttributeGrant{AttributeID: attrID, Increase: inc, Value: attr.Value})
		}
	}

	logger.WithFields(log.Fields{
		"coins":      grant.Coins,
		"experience": grant.Experience,
		"attributes": len(grant.Attributes),
		"failed":     len(grant.Failed),
	}).Info("task reward granted")
	return grant
}

func sortedAttributeIDs(weights model.WeightMap) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(weights))
	for id := range weights {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
	return ids
}
