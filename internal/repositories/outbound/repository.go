// Package outbound persists the audit trail of sent messages
package outbound

import (
	"context"
	"database/sql"
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

// runner is the statement surface shared by the pool and an open transaction.
type runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

var columns = []string{
	"id", "demand_id", "property_ids", "message", "status", "created_at", "updated_at",
}

// Repository handles outbound message persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new outbound message repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// runner routes statements through the context transaction when one is open,
// so callers can group the audit insert and status transition atomically.
func (r *Repository) runner(ctx context.Context) runner {
	if tx, ok := database.TxFromContext(ctx); ok {
		return tx
	}
	return r.db
}

// Create records a composed message before dispatch
func (r *Repository) Create(ctx context.Context, message *models.OutboundMessage) error {
	ctx, span := tracing.StartSpan(ctx, "outbound.Repository.Create")
	defer span.End()

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.Status == "" {
		message.Status = models.OutboundMessageStatusQueued
	}
	message.CreatedAt = time.Now().UTC()
	message.UpdatedAt = message.CreatedAt

	sb := database.NewInsertBuilder()
	sb.InsertInto("outbound_messages")
	sb.Cols(columns...)
	sb.Values(message.ID, message.DemandID, message.PropertyIDs, message.Message,
		message.Status, message.CreatedAt, message.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.runner(ctx).ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"message_id": message.ID}).Error("Failed to create outbound message")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to record outbound message")
	}

	return nil
}

// UpdateStatus moves a message through its delivery lifecycle
func (r *Repository) UpdateStatus(ctx context.Context, id string, status models.OutboundMessageStatus) error {
	ctx, span := tracing.StartSpan(ctx, "outbound.Repository.UpdateStatus")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update("outbound_messages")
	ub.Set(
		ub.Assign("status", status),
		ub.Assign("updated_at", time.Now().UTC()),
	)
	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()
	if _, err := r.runner(ctx).ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"message_id": id}).Error("Failed to update outbound message status")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update outbound message")
	}

	return nil
}

// Get retrieves an outbound message by ID
func (r *Repository) Get(ctx context.Context, id string) (*models.OutboundMessage, error) {
	ctx, span := tracing.StartSpan(ctx, "outbound.Repository.Get")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("outbound_messages")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var message models.OutboundMessage
	if err := r.runner(ctx).GetContext(ctx, &message, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("outbound message %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get outbound message")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get outbound message")
	}

	return &message, nil
}

// ListByDemand retrieves the send history for a demand, newest first
func (r *Repository) ListByDemand(ctx context.Context, demandID string, limit int) ([]models.OutboundMessage, error) {
	ctx, span := tracing.StartSpan(ctx, "outbound.Repository.ListByDemand")
	defer span.End()

	if limit < 1 || limit > 500 {
		limit = 100
	}

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("outbound_messages")
	sb.Where(sb.Equal("demand_id", demandID))
	sb.OrderBy("created_at DESC", "id ASC")
	sb.Limit(limit)

	query, args := sb.Build()
	var messages []models.OutboundMessage
	if err := r.runner(ctx).SelectContext(ctx, &messages, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list outbound messages")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list outbound messages")
	}

	return messages, nil
}
