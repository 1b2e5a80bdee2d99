package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"taskledger/internal/auth"
	"taskledger/internal/errors"
	"taskledger/internal/service"
)

// CategoryHandler handles task category endpoints.
type CategoryHandler struct {
	categories service.CategoryService
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(categories service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// CategoryRequest is the body of POST /task-categories.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=64"`
	Description string `json:"description"`
	Icon        string `json:"icon" validate:"max=16"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}

// UpdateCategoryRequest is the body of PUT /task-categories/{id}.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=64"`
	Description *string `json:"description"`
	Icon        *string `json:"icon" validate:"omitempty,max=16"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
}

// DeleteCategoryResponse reports whether a category was removed.
type DeleteCategoryResponse struct {
	Deleted bool `json:"deleted"`
}

// SeedPresetsResponse reports how many presets were created.
type SeedPresetsResponse struct {
	Created int `json:"created"`
}

// List godoc
// @Summary List task categories, presets first
// @Tags task-categories
// @Produce json
// @Security BearerAuth
// @Param include_preset query bool false "Include preset categories (default true)"
// @Success 200 {array} model.TaskCategory
// @Failure 400 {object} errors.ErrorResponse
// @Router /task-categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	includePreset := true
	if raw := c.QueryParam("include_preset"); raw != "" {
		if includePreset, err = strconv.ParseBool(raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "invalid include_preset",
				Code:  "INVALID_QUERY",
			})
		}
	}
	categories, err := h.categories.List(c.Request().Context(), userID, includePreset)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, categories)
}

// Create godoc
// @Summary Create a task category
// @Tags task-categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryRequest true "Category"
// @Success 201 {object} model.TaskCategory
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /task-categories [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	var req CategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	category, err := h.categories.Create(c.Request().Context(), userID, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
	})
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusCreated, category)
}

// Update godoc
// @Summary Update a custom task category
// @Tags task-categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Param request body UpdateCategoryRequest true "Changes"
// @Success 200 {object} model.TaskCategory
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /task-categories/{id} [put]
func (h *CategoryHandler) Update(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateCategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	category, err := h.categories.Update(c.Request().Context(), userID, id, service.UpdateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
	})
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, category)
}

// Delete godoc
// @Summary Delete a custom task category
// @Description Presets and unknown ids are left alone and report deleted=false.
// @Tags task-categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 200 {object} DeleteCategoryResponse
// @Router /task-categories/{id} [delete]
func (h *CategoryHandler) Delete(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	deleted, err := h.categories.Delete(c.Request().Context(), userID, id)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, DeleteCategoryResponse{Deleted: deleted})
}

// SeedPresets godoc
// @Summary Create the preset categories if missing
// @Tags task-categories
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SeedPresetsResponse
// @Router /task-categories/presets [post]
func (h *CategoryHandler) SeedPresets(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	created, err := h.categories.SeedPresets(c.Request().Context(), userID)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, SeedPresetsResponse{Created: created})
}
