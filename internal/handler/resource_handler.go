package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskledger/internal/auth"
	"taskledger/internal/service"
)

// ResourceHandler serves the resource inventory.
type ResourceHandler struct {
	inventory service.InventoryService
}

// NewResourceHandler creates a new resource handler.
func NewResourceHandler(inventory service.InventoryService) *ResourceHandler {
	return &ResourceHandler{inventory: inventory}
}

// ConsumeRequest is the body of POST /resources/{key}/consume.
type ConsumeRequest struct {
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}

// ResourceResponse reports a resource quantity.
type ResourceResponse struct {
	Key      string `json:"key"`
	Quantity int64  `json:"quantity"`
}

// List godoc
// @Summary List held resources
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int64
// @Failure 401 {object} errors.ErrorResponse
// @Router /resources [get]
func (h *ResourceHandler) List(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	resources, err := h.inventory.List(c.Request().Context(), userID)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, resources)
}

// Consume godoc
// @Summary Spend a quantity of a resource
// @Tags resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Resource key"
// @Param request body ConsumeRequest true "Quantity"
// @Success 200 {object} ResourceResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /resources/{key}/consume [post]
func (h *ResourceHandler) Consume(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	var req ConsumeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	key := c.Param("key")
	if err := h.inventory.Consume(ctx, userID, key, req.Quantity); err != nil {
		return errorResponse(err)
	}
	remaining, err := h.inventory.Quantity(ctx, userID, key)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, ResourceResponse{Key: key, Quantity: remaining})
}
