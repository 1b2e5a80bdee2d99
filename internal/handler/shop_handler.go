package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskledger/internal/auth"
	"taskledger/internal/service"
)

// ShopHandler handles shop endpoints.
type ShopHandler struct {
	shop service.ShopService
}

// NewShopHandler creates a new shop handler.
func NewShopHandler(shop service.ShopService) *ShopHandler {
	return &ShopHandler{shop: shop}
}

// PurchaseRequest is the body of POST /shop/purchase/{id}.
type PurchaseRequest struct {
	Quantity int64 `json:"quantity" validate:"omitempty,gt=0"`
}

// Items godoc
// @Summary List shop items
// @Tags shop
// @Produce json
// @Security BearerAuth
// @Param category query string false "consumable | tool"
// @Success 200 {array} service.ShopItem
// @Router /shop/items [get]
func (h *ShopHandler) Items(c echo.Context) error {
	return c.JSON(http.StatusOK, h.shop.Items(c.QueryParam("category")))
}

// Purchase godoc
// @Summary Buy a shop item with coins
// @Tags shop
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Param request body PurchaseRequest false "Quantity (default 1)"
// @Success 200 {object} service.PurchaseResult
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /shop/purchase/{id} [post]
func (h *ShopHandler) Purchase(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	var req PurchaseRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	result, err := h.shop.Purchase(c.Request().Context(), userID, c.Param("id"), req.Quantity)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Purchases godoc
// @Summary List past purchases
// @Tags shop
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum entries"
// @Success 200 {array} model.Purchase
// @Router /shop/purchases [get]
func (h *ShopHandler) Purchases(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return err
	}
	purchases, err := h.shop.History(c.Request().Context(), userID, limit)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, purchases)
}
