// Package inventory exposes the listing CRUD API
package inventory

import (
	"net/http"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/briar/internal/repositories/inventory"
	"github.com/Ramsey-B/briar/pkg/database"
	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/utils"
)

// Handler serves inventory routes
type Handler struct {
	repo   *inventory.Repository
	logger ectologger.Logger
}

// NewHandler creates a new inventory handler
func NewHandler(repo *inventory.Repository, logger ectologger.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// RegisterRoutes registers inventory endpoints on the group
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// List returns listings, newest first
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()

	filter, err := utils.BindRequest[models.PropertyFilter](c)
	if err != nil {
		return err
	}

	properties, err := h.repo.List(ctx, filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, properties)
}

// Create adds a listing to inventory
func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := utils.BindRequest[models.CreatePropertyRequest](c)
	if err != nil {
		return err
	}

	property := &models.Property{
		Title:       req.Title,
		Type:        req.Type,
		Size:        req.Size,
		Location:    req.Location,
		Price:       req.Price,
		Beds:        req.Beds,
		Floors:      req.Floors,
		Status:      models.PropertyStatus(req.Status),
		Description: req.Description,
		Features:    database.JSONB[[]string]{Data: req.Features},
		Images:      database.JSONB[[]string]{Data: req.Images},
	}

	created, err := h.repo.Create(ctx, property)
	if err != nil {
		return err
	}

	h.logger.WithContext(ctx).WithFields(map[string]any{
		"property_id": created.ID,
		"title":       created.Title,
	}).Info("Created property")

	return c.JSON(http.StatusCreated, created)
}

// Get returns a single listing
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	property, err := h.repo.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, property)
}

// Update applies a partial update to a listing
func (h *Handler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := utils.BindRequest[models.UpdatePropertyRequest](c)
	if err != nil {
		return err
	}

	updated, err := h.repo.Update(ctx, c.Param("id"), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updated)
}

// Delete removes a listing
func (h *Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.repo.Delete(ctx, c.Param("id")); err != nil {
		return err
	}

	h.logger.WithContext(ctx).WithField("property_id", c.Param("id")).Info("Deleted property")

	return c.NoContent(http.StatusNoContent)
}
