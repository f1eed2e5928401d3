// Package demand exposes the buyer requirement CRUD API
package demand

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/briar/internal/repositories/demand"
	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/utils"
)

// Handler serves demand routes
type Handler struct {
	repo   *demand.Repository
	logger ectologger.Logger
}

// NewHandler creates a new demand handler
func NewHandler(repo *demand.Repository, logger ectologger.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// RegisterRoutes registers demand endpoints on the group
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// List returns demands, newest first
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	demands, err := h.repo.List(ctx, limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, demands)
}

// Create records a buyer requirement
func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := utils.BindRequest[models.CreateDemandRequest](c)
	if err != nil {
		return err
	}

	created, err := h.repo.Create(ctx, &models.Demand{
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		Budget:      req.Budget,
		Size:        req.Size,
		Location:    req.Location,
		Type:        req.Type,
	})
	if err != nil {
		return err
	}

	h.logger.WithContext(ctx).WithFields(map[string]any{
		"demand_id":   created.ID,
		"client_name": created.ClientName,
	}).Info("Created demand")

	return c.JSON(http.StatusCreated, created)
}

// Get returns a single demand
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	d, err := h.repo.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, d)
}

// Update applies a partial update to a demand
func (h *Handler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := utils.BindRequest[models.UpdateDemandRequest](c)
	if err != nil {
		return err
	}

	updated, err := h.repo.Update(ctx, c.Param("id"), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updated)
}

// Delete removes a demand
func (h *Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.repo.Delete(ctx, c.Param("id")); err != nil {
		return err
	}

	h.logger.WithContext(ctx).WithField("demand_id", c.Param("id")).Info("Deleted demand")

	return c.NoContent(http.StatusNoContent)
}
