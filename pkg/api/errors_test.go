package api

import (
	"fmt"
	"net/http"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/services"
)

func TestMapServiceError(t *testing.T) {
	tests := map[string]struct {
		err        error
		expectCode int
		expectMsg  string
	}{
		"validation error maps to 400": {
			err:        services.NewValidationError("name", "missing field"),
			expectCode: http.StatusBadRequest,
			expectMsg:  "missing field",
		},
		"not found maps to 404": {
			err:        fmt.Errorf("wrapped: %w", services.ErrNotFound),
			expectCode: http.StatusNotFound,
			expectMsg:  "resource not found",
		},
		"not cancellable maps to 400": {
			err:        services.ErrNotCancellable,
			expectCode: http.StatusBadRequest,
			expectMsg:  "session is not in a cancellable state",
		},
		"not resumable maps to 400": {
			err:        fmt.Errorf("wrapped: %w", services.ErrNotResumable),
			expectCode: http.StatusBadRequest,
			expectMsg:  "session is not paused",
		},
		"already exists maps to 409": {
			err:        fmt.Errorf("wrapped: %w", services.ErrAlreadyExists),
			expectCode: http.StatusConflict,
			expectMsg:  "resource already exists",
		},
		"unknown error maps to 500": {
			err:        fmt.Errorf("something unexpected happened"),
			expectCode: http.StatusInternalServerError,
			expectMsg:  "internal server error",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			he := mapServiceError(tt.err)
			assert.IsType(t, &echo.HTTPError{}, he)
			assert.Equal(t, tt.expectCode, he.Code)
			assert.Contains(t, he.Error(), tt.expectMsg)
		})
	}
}
