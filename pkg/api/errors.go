package api

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/services"
)

var serviceErrorMap = []struct {
	target error
	code   int
	msg    string
}{
	{services.ErrNotFound, http.StatusNotFound, "resource not found"},
	{services.ErrNotCancellable, http.StatusBadRequest, "session is not in a cancellable state"},
	{services.ErrNotResumable, http.StatusBadRequest, "session is not paused"},
	{services.ErrAlreadyExists, http.StatusConflict, "resource already exists"},
}

// mapServiceError maps service-layer errors to HTTP error responses.
// QueueFullError is handled by the alert handler (its 429 body carries the
// queue numbers) before falling through to here.
func mapServiceError(err error) *echo.HTTPError {
	var validErr *services.ValidationError
	if errors.As(err, &validErr) {
		return echo.NewHTTPError(http.StatusBadRequest, validErr.Error())
	}

	for _, m := range serviceErrorMap {
		if errors.Is(err, m.target) {
			return echo.NewHTTPError(m.code, m.msg)
		}
	}

	slog.Error("Unexpected service error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
