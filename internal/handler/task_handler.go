package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"taskledger/internal/auth"
	"taskledger/internal/errors"
	"taskledger/internal/model"
	"taskledger/internal/repository"
	"taskledger/internal/service"
)

// TaskHandler handles task endpoints.
type TaskHandler struct {
	tasks service.TaskService
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(tasks service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// CreateTaskRequest is the body of POST /tasks. Weights are keyed by
// attribute id.
type CreateTaskRequest struct {
	Name             string          `json:"name" validate:"required,max=200"`
	Description      string          `json:"description"`
	Weights          model.WeightMap `json:"weights"`
	EstimatedMinutes *int            `json:"estimated_minutes" validate:"omitempty,gt=0"`
	RewardCoins      *int64          `json:"reward_coins" validate:"omitempty,gte=0"`
	CategoryID       *uuid.UUID      `json:"category_id"`
}

// StatusRequest is the body of PUT /tasks/{id}/status.
type StatusRequest struct {
	Status model.TaskStatus `json:"status" validate:"required"`
}

// ProofRequest is the body of POST /tasks/{id}/proof.
type ProofRequest struct {
	Proof map[string]interface{} `json:"proof" validate:"required"`
}

// EvaluationRequest is the body of PUT /tasks/{id}/evaluation.
type EvaluationRequest struct {
	SelfEvaluation map[string]interface{} `json:"self_evaluation"`
	Suggestion     map[string]interface{} `json:"suggestion"`
}

// List godoc
// @Summary List tasks, newest first
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending | in_progress | completed | failed"
// @Param category_id query string false "Category ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Router /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	var filter repository.TaskFilter
	if raw := c.QueryParam("status"); raw != "" {
		status := model.TaskStatus(raw)
		filter.Status = &status
	}
	if raw := c.QueryParam("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "invalid category_id",
				Code:  "INVALID_UUID",
			})
		}
		filter.CategoryID = &categoryID
	}
	if filter.Limit, err = queryInt(c, "limit", 0); err != nil {
		return err
	}
	if filter.Offset, err = queryInt(c, "offset", 0); err != nil {
		return err
	}

	tasks, err := h.tasks.List(c.Request().Context(), userID, filter)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// Create godoc
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTaskRequest true "Task"
// @Success 201 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	var req CreateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	task, err := h.tasks.Create(c.Request().Context(), userID, service.CreateTaskInput{
		Name:             req.Name,
		Description:      req.Description,
		Weights:          req.Weights,
		EstimatedMinutes: req.EstimatedMinutes,
		RewardCoins:      req.RewardCoins,
		CategoryID:       req.CategoryID,
	})
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusCreated, task)
}

// Get godoc
// @Summary Get a task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} model.Task
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	task, err := h.tasks.Get(c.Request().Context(), userID, id)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, task)
}

// SetStatus godoc
// @Summary Change task status
// @Description Moving a task to completed pays its reward exactly once.
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param request body StatusRequest true "New status"
// @Success 200 {object} service.StatusChange
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /tasks/{id}/status [put]
func (h *TaskHandler) SetStatus(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req StatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	change, err := h.tasks.SetStatus(c.Request().Context(), userID, id, req.Status)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, change)
}

// SubmitProof godoc
// @Summary Merge a proof document into the task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param request body ProofRequest true "Proof"
// @Success 200 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id}/proof [post]
func (h *TaskHandler) SubmitProof(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req ProofRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	task, err := h.tasks.SubmitProof(c.Request().Context(), userID, id, req.Proof)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, task)
}

// UpdateEvaluation godoc
// @Summary Merge self-evaluation and suggestion documents
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param request body EvaluationRequest true "Evaluation"
// @Success 200 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id}/evaluation [put]
func (h *TaskHandler) UpdateEvaluation(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req EvaluationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	task, err := h.tasks.UpdateEvaluation(c.Request().Context(), userID, id, req.SelfEvaluation, req.Suggestion)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, task)
}

// Delete godoc
// @Summary Delete a task
// @Tags tasks
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.tasks.Delete(c.Request().Context(), userID, id); err != nil {
		return errorResponse(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Stats godoc
// @Summary Task statistics
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.TaskStats
// @Router /tasks/stats [get]
func (h *TaskHandler) Stats(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	stats, err := h.tasks.Stats(c.Request().Context(), userID)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, stats)
}
