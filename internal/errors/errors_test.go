package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"wrapped duplicate", fmt.Errorf("create attribute: %w", ErrDuplicateName), http.StatusConflict, "DUPLICATE_NAME"},
		{"insufficient funds", ErrInsufficientFunds, http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"},
		{"insufficient quantity", ErrInsufficientQuantity, http.StatusUnprocessableEntity, "INSUFFICIENT_QUANTITY"},
		{"finalized task", ErrTaskFinalized, http.StatusConflict, "TASK_FINALIZED"},
		{"invalid status", ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
		{"bad credentials", ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"system fault", fmt.Errorf("dial tcp: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestMapErrorToHTTP_HidesSystemFaultMessage(t *testing.T) {
	httpErr := MapErrorToHTTP(fmt.Errorf("sum ledger: driver: bad connection"))
	assert.Equal(t, "internal server error", httpErr.ToErrorResponse().Error)
}
