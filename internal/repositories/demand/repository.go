// Package demand persists buyer requirements
package demand

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/briar/pkg/database"
	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/tracing"
)

var columns = []string{
	"id", "client_name", "client_phone", "budget", "size", "location", "type",
	"last_contacted_at", "created_at", "updated_at",
}

// Repository handles demand persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new demand repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create records a buyer requirement
func (r *Repository) Create(ctx context.Context, demand *models.Demand) (*models.Demand, error) {
	ctx, span := tracing.StartSpan(ctx, "demand.Repository.Create")
	defer span.End()

	if demand.ID == "" {
		demand.ID = uuid.New().String()
	}
	demand.CreatedAt = time.Now().UTC()
	demand.UpdatedAt = demand.CreatedAt

	sb := database.NewInsertBuilder()
	sb.InsertInto("demands")
	sb.Cols(columns...)
	sb.Values(demand.ID, demand.ClientName, demand.ClientPhone, demand.Budget, demand.Size,
		demand.Location, demand.Type, demand.LastContactedAt, demand.CreatedAt, demand.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"demand_id": demand.ID}).Error("Failed to create demand")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create demand")
	}

	return demand, nil
}

// GetByID retrieves a demand by ID
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Demand, error) {
	ctx, span := tracing.StartSpan(ctx, "demand.Repository.GetByID")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("demands")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var demand models.Demand
	if err := r.db.GetContext(ctx, &demand, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("demand %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get demand")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get demand")
	}

	return &demand, nil
}

// List retrieves demands, newest first
func (r *Repository) List(ctx context.Context, limit, offset int) ([]models.Demand, error) {
	ctx, span := tracing.StartSpan(ctx, "demand.Repository.List")
	defer span.End()

	if limit < 1 || limit > 500 {
		limit = 100
	}

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("demands")
	sb.OrderBy("created_at DESC", "id ASC")
	sb.Limit(limit)
	if offset > 0 {
		sb.Offset(offset)
	}

	query, args := sb.Build()
	var demands []models.Demand
	if err := r.db.SelectContext(ctx, &demands, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list demands")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list demands")
	}

	return demands, nil
}

// Update applies a partial update to a demand
func (r *Repository) Update(ctx context.Context, id string, req *models.UpdateDemandRequest) (*models.Demand, error) {
	ctx, span := tracing.StartSpan(ctx, "demand.Repository.Update")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update("demands")

	assignments := []string{ub.Assign("updated_at", time.Now().UTC())}
	if req.ClientName != nil {
		assignments = append(assignments, ub.Assign("client_name", *req.ClientName))
	}
	if req.ClientPhone != nil {
		assignments = append(assignments, ub.Assign("client_phone", *req.ClientPhone))
	}
	if req.Budget != nil {
		assignments = append(assignments, ub.Assign("budget", *req.Budget))
	}
	if req.Size != nil {
		assignments = append(assignments, ub.Assign("size", *req.Size))
	}
	if req.Location != nil {
		assignments = append(assignments, ub.Assign("location", *req.Location))
	}
	if req.Type != nil {
		assignments = append(assignments, ub.Assign("type", *req.Type))
	}

	ub.Set(assignments...)
	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"demand_id": id}).Error("Failed to update demand")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update demand")
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("demand %s not found", id))
	}

	return r.GetByID(ctx, id)
}

// TouchLastContacted stamps the demand with the current contact time
func (r *Repository) TouchLastContacted(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "demand.Repository.TouchLastContacted")
	defer span.End()

	now := time.Now().UTC()
	ub := database.NewUpdateBuilder()
	ub.Update("demands")
	ub.Set(
		ub.Assign("last_contacted_at", now),
		ub.Assign("updated_at", now),
	)
	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"demand_id": id}).Error("Failed to stamp demand contact time")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update demand")
	}

	return nil
}

// Delete removes a demand
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "demand.Repository.Delete")
	defer span.End()

	db := database.NewDeleteBuilder()
	db.DeleteFrom("demands")
	db.Where(db.Equal("id", id))

	query, args := db.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"demand_id": id}).Error("Failed to delete demand")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete demand")
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("demand %s not found", id))
	}

	return nil
}
