package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"taskledger/internal/auth"
	"taskledger/internal/service"
)

// LedgerHandler serves the currency ledger.
type LedgerHandler struct {
	ledger service.LedgerService
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(ledger service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// BalanceResponse represents a ledger balance.
type BalanceResponse struct {
	UserID  uuid.UUID `json:"user_id"`
	Balance int64     `json:"balance"`
}

// Balance godoc
// @Summary Get coin balance
// @Tags coins
// @Produce json
// @Security BearerAuth
// @Success 200 {object} BalanceResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /coins/balance [get]
func (h *LedgerHandler) Balance(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	balance, err := h.ledger.Balance(c.Request().Context(), userID)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, BalanceResponse{UserID: userID, Balance: balance})
}

// History godoc
// @Summary List ledger entries, newest first
// @Tags coins
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum entries"
// @Success 200 {array} model.LedgerEntry
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /coins/history [get]
func (h *LedgerHandler) History(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return err
	}
	entries, err := h.ledger.History(c.Request().Context(), userID, limit)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, entries)
}

// Stats godoc
// @Summary Income and expense totals
// @Tags coins
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.LedgerStats
// @Failure 401 {object} errors.ErrorResponse
// @Router /coins/stats [get]
func (h *LedgerHandler) Stats(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	stats, err := h.ledger.Stats(c.Request().Context(), userID)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, stats)
}
