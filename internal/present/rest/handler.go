package rest

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/micromatch/micromatch"
	"github.com/micromatch/micromatch/internal/domain"
	"github.com/micromatch/micromatch/internal/present/rest/presenter"
	"github.com/micromatch/micromatch/internal/usecase"
)

type Handler struct {
	store *usecase.StoreUsecase
}

func NewHandler(store *usecase.StoreUsecase) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/data", h.handleListAll)
	e.GET("/api/data/:id", h.handleGet)
	e.POST("/api/data", h.handleCreate)
	e.PUT("/api/data/:id", h.handleUpdate)
	e.DELETE("/api/data/:id", h.handleDelete)
	e.GET("/health", h.handleHealth)
}

func (h *Handler) handleListAll(c echo.Context) error {
	ctx := c.Request().Context()

	data, err := h.store.ListAll(ctx)
	if err != nil {
		return presenter.InternalError(c, "Failed to fetch all data", err)
	}
	return presenter.OK(c, data)
}

func (h *Handler) handleGet(c echo.Context) error {
	ctx := c.Request().Context()

	doc, err := h.store.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "Item not found")
		}
		return presenter.InternalError(c, "Failed to fetch item", err)
	}
	return c.JSONBlob(http.StatusOK, doc)
}

func (h *Handler) handleCreate(c echo.Context) error {
	ctx := c.Request().Context()

	var req micromatch.CreateDataRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, "ID and data are required")
	}

	err := h.store.Create(ctx, req.ID, req.Data)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return presenter.BadRequest(c, "ID and data are required")
		}
		return presenter.InternalError(c, "Failed to create item", err)
	}
	return presenter.Success(c, "Data saved successfully")
}

func (h *Handler) handleUpdate(c echo.Context) error {
	ctx := c.Request().Context()

	var req micromatch.UpdateDataRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, "Data is required")
	}

	err := h.store.Replace(ctx, c.Param("id"), req.Data)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument):
			return presenter.BadRequest(c, "Data is required")
		case errors.Is(err, domain.ErrNotFound):
			return presenter.NotFound(c, "Item not found")
		default:
			return presenter.InternalError(c, "Failed to update item", err)
		}
	}
	return presenter.Success(c, "Data updated successfully")
}

func (h *Handler) handleDelete(c echo.Context) error {
	ctx := c.Request().Context()

	removed, err := h.store.Delete(ctx, c.Param("id"))
	if err != nil {
		return presenter.InternalError(c, "Failed to delete item", err)
	}
	if !removed {
		return presenter.NotFound(c, "Item not found")
	}
	return presenter.Success(c, "Data deleted successfully")
}

func (h *Handler) handleHealth(c echo.Context) error {
	return presenter.OK(c, micromatch.HealthResponse{
		Status:  "OK",
		Message: "Server is running",
	})
}
