package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"taskledger/internal/auth"
	"taskledger/internal/service"
)

// AttributeHandler handles attribute endpoints.
type AttributeHandler struct {
	attributes service.AttributeService
}

// NewAttributeHandler creates a new attribute handler.
func NewAttributeHandler(attributes service.AttributeService) *AttributeHandler {
	return &AttributeHandler{attributes: attributes}
}

// CreateAttributeRequest is the body of POST /attributes.
type CreateAttributeRequest struct {
	Name        string `json:"name" validate:"required,max=64"`
	MaxValue    *int64 `json:"max_value" validate:"omitempty,gte=0"`
	Description string `json:"description"`
	Icon        string `json:"icon" validate:"max=16"`
}

// UpdateAttributeRequest is the body of PUT /attributes/{id}.
type UpdateAttributeRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=64"`
	MaxValue    *int64  `json:"max_value" validate:"omitempty,gte=0"`
	Description *string `json:"description"`
	Icon        *string `json:"icon" validate:"omitempty,max=16"`
}

// AttributeValueRequest carries a value or a delta.
type AttributeValueRequest struct {
	Value int64 `json:"value"`
}

// AttributeValueResponse reports the stored value after a write.
type AttributeValueResponse struct {
	AttributeID uuid.UUID `json:"attribute_id"`
	Value       int64     `json:"value"`
}

// List godoc
// @Summary List attributes
// @Tags attributes
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Attribute
// @Failure 401 {object} errors.ErrorResponse
// @Router /attributes [get]
func (h *AttributeHandler) List(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	attrs, err := h.attributes.List(c.Request().Context(), userID)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, attrs)
}

// Create godoc
// @Summary Create an attribute
// @Tags attributes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAttributeRequest true "Attribute"
// @Success 201 {object} model.Attribute
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /attributes [post]
func (h *AttributeHandler) Create(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	var req CreateAttributeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	attr, err := h.attributes.Create(c.Request().Context(), userID, service.CreateAttributeInput{
		Name:        req.Name,
		MaxValue:    req.MaxValue,
		Description: req.Description,
		Icon:        req.Icon,
	})
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusCreated, attr)
}

// Update godoc
// @Summary Update attribute metadata
// @Tags attributes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attribute ID"
// @Param request body UpdateAttributeRequest true "Changes"
// @Success 200 {object} model.Attribute
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /attributes/{id} [put]
func (h *AttributeHandler) Update(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateAttributeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	attr, err := h.attributes.Update(c.Request().Context(), userID, id, service.UpdateAttributeInput{
		Name:        req.Name,
		MaxValue:    req.MaxValue,
		Description: req.Description,
		Icon:        req.Icon,
	})
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, attr)
}

// SetValue godoc
// @Summary Set an attribute value (clamped to [0, max])
// @Tags attributes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attribute ID"
// @Param request body AttributeValueRequest true "New value"
// @Success 200 {object} AttributeValueResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /attributes/{id}/value [put]
func (h *AttributeHandler) SetValue(c echo.Context) error {
	return h.writeValue(c, h.attributes.SetValue)
}

// Increase godoc
// @Summary Increase an attribute value (clamped to max)
// @Tags attributes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attribute ID"
// @Param request body AttributeValueRequest true "Delta"
// @Success 200 {object} AttributeValueResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /attributes/{id}/increase [post]
func (h *AttributeHandler) Increase(c echo.Context) error {
	return h.writeValue(c, h.attributes.Increase)
}

type valueWriter func(ctx context.Context, userID, id uuid.UUID, v int64) (int64, error)

func (h *AttributeHandler) writeValue(c echo.Context, write valueWriter) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req AttributeValueRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	value, err := write(c.Request().Context(), userID, id, req.Value)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, AttributeValueResponse{AttributeID: id, Value: value})
}

// Delete godoc
// @Summary Delete an attribute
// @Tags attributes
// @Security BearerAuth
// @Param id path string true "Attribute ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /attributes/{id} [delete]
func (h *AttributeHandler) Delete(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.attributes.Delete(c.Request().Context(), userID, id); err != nil {
		return errorResponse(err)
	}
	return c.NoContent(http.StatusNoContent)
}
