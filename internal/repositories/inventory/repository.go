// Package inventory persists property listings
package inventory

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/briar/pkg/database"
	"github.com/Ramsey-B/briar/pkg/matching"
	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/tracing"
)

var columns = []string{
	"id", "title", "type", "size", "location", "price", "beds", "floors",
	"status", "description", "features", "images", "created_at", "updated_at",
}

// Repository handles inventory persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new inventory repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create adds a listing to inventory
func (r *Repository) Create(ctx context.Context, property *models.Property) (*models.Property, error) {
	ctx, span := tracing.StartSpan(ctx, "inventory.Repository.Create")
	defer span.End()

	if property.ID == "" {
		property.ID = uuid.New().String()
	}
	if property.Status == "" {
		property.Status = models.PropertyStatusAvailable
	}
	property.CreatedAt = time.Now().UTC()
	property.UpdatedAt = property.CreatedAt

	sb := database.NewInsertBuilder()
	sb.InsertInto("inventory")
	sb.Cols(columns...)
	sb.Values(property.ID, property.Title, property.Type, property.Size, property.Location,
		property.Price, property.Beds, property.Floors, property.Status, property.Description,
		property.Features, property.Images, property.CreatedAt, property.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"property_id": property.ID}).Error("Failed to create property")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create property")
	}

	return property, nil
}

// Get retrieves a listing by ID
func (r *Repository) Get(ctx context.Context, id string) (*models.Property, error) {
	ctx, span := tracing.StartSpan(ctx, "inventory.Repository.Get")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("inventory")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var property models.Property
	if err := r.db.GetContext(ctx, &property, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("property %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get property")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get property")
	}

	return &property, nil
}

// List retrieves listings sorted newest first, with the id as the tie-break
// so pagination is stable.
func (r *Repository) List(ctx context.Context, filter models.PropertyFilter) ([]models.Property, error) {
	ctx, span := tracing.StartSpan(ctx, "inventory.Repository.List")
	defer span.End()

	if filter.Limit < 1 || filter.Limit > 500 {
		filter.Limit = 100
	}

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("inventory")

	if filter.Status != "" {
		sb.Where(sb.Equal("status", filter.Status))
	}
	if filter.Type != "" {
		sb.Where(sb.ILike("type", filter.Type))
	}
	if filter.Location != "" {
		sb.Where(sb.ILike("location", "%"+filter.Location+"%"))
	}

	sb.OrderBy("created_at DESC", "id ASC")
	sb.Limit(filter.Limit)
	if filter.Offset > 0 {
		sb.Offset(filter.Offset)
	}

	query, args := sb.Build()
	var properties []models.Property
	if err := r.db.SelectContext(ctx, &properties, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list properties")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list properties")
	}

	return properties, nil
}

// ListCandidates retrieves the pool of listings eligible for matching. Text
// filters are case-insensitive containment; price bounds are inclusive on
// both edges.
func (r *Repository) ListCandidates(ctx context.Context, filter matching.CandidateFilter) ([]models.Property, error) {
	ctx, span := tracing.StartSpan(ctx, "inventory.Repository.ListCandidates")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("inventory")
	sb.Where(sb.Equal("status", filter.Status))

	if filter.Size != "" {
		sb.Where(sb.ILike("size", "%"+filter.Size+"%"))
	}
	if filter.Location != "" {
		sb.Where(sb.ILike("location", "%"+filter.Location+"%"))
	}
	if filter.Type != "" {
		sb.Where(sb.ILike("type", "%"+filter.Type+"%"))
	}

	if filter.MinPrice != nil && filter.MaxPrice != nil {
		sb.Where(sb.Between("price", *filter.MinPrice, *filter.MaxPrice))
	} else if filter.MinPrice != nil {
		sb.Where(sb.GreaterEqualThan("price", *filter.MinPrice))
	} else if filter.MaxPrice != nil {
		sb.Where(sb.LessEqualThan("price", *filter.MaxPrice))
	}

	sb.OrderBy("created_at DESC", "id ASC")

	query, args := sb.Build()
	var properties []models.Property
	if err := r.db.SelectContext(ctx, &properties, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list match candidates")
		return nil, err
	}

	return properties, nil
}

// Update applies a partial update to a listing
func (r *Repository) Update(ctx context.Context, id string, req *models.UpdatePropertyRequest) (*models.Property, error) {
	ctx, span := tracing.StartSpan(ctx, "inventory.Repository.Update")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update("inventory")

	assignments := []string{ub.Assign("updated_at", time.Now().UTC())}
	if req.Title != nil {
		assignments = append(assignments, ub.Assign("title", *req.Title))
	}
	if req.Type != nil {
		assignments = append(assignments, ub.Assign("type", *req.Type))
	}
	if req.Size != nil {
		assignments = append(assignments, ub.Assign("size", *req.Size))
	}
	if req.Location != nil {
		assignments = append(assignments, ub.Assign("location", *req.Location))
	}
	if req.Price != nil {
		assignments = append(assignments, ub.Assign("price", *req.Price))
	}
	if req.Beds != nil {
		assignments = append(assignments, ub.Assign("beds", *req.Beds))
	}
	if req.Floors != nil {
		assignments = append(assignments, ub.Assign("floors", *req.Floors))
	}
	if req.Status != nil {
		assignments = append(assignments, ub.Assign("status", *req.Status))
	}
	if req.Description != nil {
		assignments = append(assignments, ub.Assign("description", *req.Description))
	}
	if req.Features != nil {
		assignments = append(assignments, ub.Assign("features", database.JSONB[[]string]{Data: req.Features}))
	}
	if req.Images != nil {
		assignments = append(assignments, ub.Assign("images", database.JSONB[[]string]{Data: req.Images}))
	}

	ub.Set(assignments...)
	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"property_id": id}).Error("Failed to update property")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update property")
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("property %s not found", id))
	}

	return r.Get(ctx, id)
}

// Delete removes a listing from inventory
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "inventory.Repository.Delete")
	defer span.End()

	db := database.NewDeleteBuilder()
	db.DeleteFrom("inventory")
	db.Where(db.Equal("id", id))

	query, args := db.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"property_id": id}).Error("Failed to delete property")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete property")
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("property %s not found", id))
	}

	return nil
}
