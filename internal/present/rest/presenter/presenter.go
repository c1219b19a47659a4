package presenter

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/totegamma/knights/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func Created(c echo.Context, payload any) error {
	return c.JSON(http.StatusCreated, payload)
}

func BadRequest(c echo.Context, err error) error {
	return BadRequestMessage(c, err.Error())
}

func BadRequestMessage(c echo.Context, msg string) error {
	slog.DebugContext(
		c.Request().Context(), "bad request",
		slog.String("error", msg),
		slog.String("module", "rest"),
	)
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

func NotFound(c echo.Context, msg string) error {
	slog.DebugContext(
		c.Request().Context(), "not found",
		slog.String("error", msg),
		slog.String("module", "rest"),
	)
	return c.JSON(http.StatusNotFound, errorResponse{Error: msg})
}

// InternalError never echoes err to the client.
func InternalError(c echo.Context, err error) error {
	slog.ErrorContext(
		c.Request().Context(), "internal error",
		slog.String("error", err.Error()),
		slog.String("module", "rest"),
	)
	msg := domain.ErrInternal.Error()
	var internal domain.InternalError
	if errors.As(err, &internal) {
		msg = internal.Error()
	}
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: msg})
}

// Error maps a usecase error to its status code.
func Error(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return BadRequest(c, err)
	case errors.Is(err, domain.ErrNotFound):
		return NotFound(c, err.Error())
	default:
		return InternalError(c, err)
	}
}
