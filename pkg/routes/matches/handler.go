// Package matches exposes the demand-to-inventory matching API
package matches

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/briar/internal/repositories/outbound"
	"github.com/Ramsey-B/briar/pkg/metrics"
	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/outreach"
	"github.com/Ramsey-B/briar/pkg/utils"
)

// Handler serves matching routes
type Handler struct {
	matcher      outreach.Matcher
	demandStore  outreach.DemandStore
	outboundRepo *outbound.Repository
	sender       *outreach.Service
	logger       ectologger.Logger
}

// NewHandler creates a new matches handler
func NewHandler(
	matcher outreach.Matcher,
	demandStore outreach.DemandStore,
	outboundRepo *outbound.Repository,
	sender *outreach.Service,
	logger ectologger.Logger,
) *Handler {
	return &Handler{
		matcher:      matcher,
		demandStore:  demandStore,
		outboundRepo: outboundRepo,
		sender:       sender,
		logger:       logger,
	}
}

// RegisterRoutes registers matching endpoints on the group
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.Match)
	g.POST("/send", h.Send)
	g.GET("/sent/:demand_id", h.SentHistory)
}

// Match runs the matcher for a demand and returns the ranked result. The
// criteria come from a stored demand (demand_id) or from ad-hoc
// budget/size/location/type query parameters.
func (h *Handler) Match(c echo.Context) error {
	ctx := c.Request().Context()

	demand, err := h.resolveDemand(c)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := h.matcher.Match(ctx, demand)
	metrics.MatchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MatchRequestsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.MatchRequestsTotal.WithLabelValues("ok").Inc()
	metrics.MatchCandidates.Observe(float64(result.Total))

	return c.JSON(http.StatusOK, result)
}

// resolveDemand builds the demand to match against. A demand_id loads the
// stored demand; otherwise the query parameters describe an ad-hoc one. An
// unparseable budget is treated as unconstrained.
func (h *Handler) resolveDemand(c echo.Context) (*models.Demand, error) {
	ctx := c.Request().Context()

	if demandID := c.QueryParam("demand_id"); demandID != "" {
		return h.demandStore.GetByID(ctx, demandID)
	}

	size := c.QueryParam("size")
	location := c.QueryParam("location")
	propertyType := c.QueryParam("type")
	rawBudget := c.QueryParam("budget")
	if size == "" && location == "" && propertyType == "" && rawBudget == "" {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "demand_id or at least one of budget, size, location, type is required")
	}

	budget, err := strconv.ParseFloat(rawBudget, 64)
	if err != nil {
		budget = 0
	}

	return &models.Demand{
		Budget:   budget,
		Size:     size,
		Location: location,
		Type:     propertyType,
	}, nil
}

// Send dispatches selected matches to the client
func (h *Handler) Send(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := utils.BindRequest[models.SendMatchesRequest](c)
	if err != nil {
		return err
	}

	record, err := h.sender.SendMatches(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, record)
}

// SentHistory returns the outbound message audit trail for a demand
func (h *Handler) SentHistory(c echo.Context) error {
	ctx := c.Request().Context()

	messages, err := h.outboundRepo.ListByDemand(ctx, c.Param("demand_id"), 100)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messages)
}
