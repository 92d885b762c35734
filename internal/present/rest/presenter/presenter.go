package presenter

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/micromatch/micromatch"
)

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

// Success emits the {"success":true,...} shape the write endpoints use.
func Success(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, micromatch.SuccessResponse{Success: true, Message: message})
}

func BadRequest(c echo.Context, msg string) error {
	slog.Warn("bad request", slog.String("error", msg), slog.String("module", "rest"))
	return c.JSON(http.StatusBadRequest, micromatch.ErrorResponse{Error: msg})
}

func NotFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, micromatch.ErrorResponse{Error: msg})
}

// InternalError logs the underlying failure and answers with the fixed
// public message.
func InternalError(c echo.Context, msg string, err error) error {
	slog.Error("internal error",
		slog.String("error", err.Error()),
		slog.String("module", "rest"),
	)
	return c.JSON(http.StatusInternalServerError, micromatch.ErrorResponse{Error: msg})
}
