package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"notes/backend/internal/service"
	"notes/backend/pkg/logger"
)

type errorResponse struct {
	Message string `json:"message"`
}

func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, errorResponse{Message: message})
}

func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalid):
		return Error(c, http.StatusBadRequest, "Title and content are required")
	case errors.Is(err, service.ErrNotFound):
		return Error(c, http.StatusNotFound, "Note not found")
	default:
		logger.Error("request failed",
			"module", "handler",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
		return Error(c, http.StatusInternalServerError, "Internal server error")
	}
}
