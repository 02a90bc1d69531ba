package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/cookbook/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// HandleServiceError converts a service error into an HTTP error. Kinds map
// to statuses; anything unrecognised is logged and reported as a 500.
func HandleServiceError(err error) *echo.HTTPError {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, clientMessage(err, services.ErrNotFound))
	case errors.Is(err, services.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, clientMessage(err, services.ErrValidation))
	case errors.Is(err, services.ErrConflict):
		return echo.NewHTTPError(http.StatusBadRequest, clientMessage(err, services.ErrConflict))
	case errors.Is(err, services.ErrAuthentication):
		return echo.NewHTTPError(http.StatusUnauthorized, clientMessage(err, services.ErrAuthentication))
	case errors.Is(err, services.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, clientMessage(err, services.ErrForbidden))
	}

	if !errors.Is(err, services.ErrInternalServer) {
		logrus.WithError(err).Error("Unhandled internal server error")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "An unexpected error occurred")
}

// NewHTTPErrorHandler maps errors returned by middleware and handlers before
// echo renders them
func NewHTTPErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		e.DefaultHTTPErrorHandler(HandleServiceError(err), c)
	}
}

// clientMessage strips the "<kind>: " prefix off a wrapped error
func clientMessage(err, kind error) string {
	msg := err.Error()
	if trimmed := strings.TrimPrefix(msg, kind.Error()+": "); trimmed != "" {
		return trimmed
	}
	return msg
}
