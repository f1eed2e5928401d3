// Package outreach sends ranked matches to clients over the outbound channel
package outreach

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/briar/pkg/database"
	"github.com/Ramsey-B/briar/pkg/kafka"
	"github.com/Ramsey-B/briar/pkg/metrics"
	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/normalizers"
	"github.com/Ramsey-B/briar/pkg/redis"
	"github.com/Ramsey-B/briar/pkg/tracing"
)

// TxBeginner opens or joins a context-propagated transaction.
type TxBeginner interface {
	GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, database.Tx, error)
}

// Matcher produces ranked matches for a demand.
type Matcher interface {
	Match(ctx context.Context, demand *models.Demand) (*models.MatchResult, error)
}

// DemandStore loads demands and stamps contact activity.
type DemandStore interface {
	GetByID(ctx context.Context, id string) (*models.Demand, error)
	TouchLastContacted(ctx context.Context, id string) error
}

// OutboundStore records the audit trail of sent messages.
type OutboundStore interface {
	Create(ctx context.Context, message *models.OutboundMessage) error
	UpdateStatus(ctx context.Context, id string, status models.OutboundMessageStatus) error
}

// Notifier hands the composed message to the delivery channel.
type Notifier interface {
	PublishOutboundMessage(ctx context.Context, event *kafka.OutboundMessageEvent) error
}

// RateLimiter throttles sends per client.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*redis.RateLimitResult, error)
}

// Config controls outbound throttling.
type Config struct {
	RateLimitEnabled bool
	RateLimitSends   int64
	RateLimitWindow  time.Duration
}

// Service composes and dispatches match rundowns for a demand.
type Service struct {
	logger        ectologger.Logger
	db            TxBeginner
	matcher       Matcher
	demandStore   DemandStore
	outboundStore OutboundStore
	notifier      Notifier
	limiter       RateLimiter
	config        Config
}

// NewService creates a new outreach service. notifier and limiter may be nil
// when the corresponding backends are disabled.
func NewService(
	logger ectologger.Logger,
	db TxBeginner,
	matcher Matcher,
	demandStore DemandStore,
	outboundStore OutboundStore,
	notifier Notifier,
	limiter RateLimiter,
	config Config,
) *Service {
	return &Service{
		logger:        logger,
		db:            db,
		matcher:       matcher,
		demandStore:   demandStore,
		outboundStore: outboundStore,
		notifier:      notifier,
		limiter:       limiter,
		config:        config,
	}
}

// SendMatches re-runs the match for the demand, narrows it to the selected
// listings, composes the message and dispatches it. The selection is
// validated against the current match result so stale or foreign listing ids
// are dropped before anything is sent.
func (s *Service) SendMatches(ctx context.Context, req models.SendMatchesRequest) (*models.OutboundMessage, error) {
	ctx, span := tracing.StartSpan(ctx, "outreach.Service.SendMatches")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"demand_id": req.DemandID,
	})

	demand, err := s.demandStore.GetByID(ctx, req.DemandID)
	if err != nil {
		return nil, err
	}

	result, err := s.matcher.Match(ctx, demand)
	if err != nil {
		return nil, err
	}

	selected := selectProperties(result.Matches, req.PropertyIDs)
	if len(selected) == 0 {
		return nil, httperror.WrapError(http.StatusBadRequest, errors.New("select at least one property"))
	}

	if err := s.checkRateLimit(ctx, demand); err != nil {
		return nil, err
	}

	propertyIDs := make([]string, len(selected))
	for i := range selected {
		propertyIDs[i] = selected[i].ID
	}

	record := &models.OutboundMessage{
		ID:          uuid.New().String(),
		DemandID:    demand.ID,
		PropertyIDs: database.JSONB[[]string]{Data: propertyIDs},
		Message:     ComposeMessage(selected),
		Status:      models.OutboundMessageStatusQueued,
	}

	// The audit insert and the status transition land atomically so a row
	// never stays visible in its transient queued state.
	txCtx, tx, err := s.db.GetTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.outboundStore.Create(txCtx, record); err != nil {
		return nil, err
	}

	if err := s.notify(ctx, demand, record, propertyIDs); err != nil {
		metrics.OutboundMessagesTotal.WithLabelValues(string(models.OutboundMessageStatusFailed)).Inc()
		if statusErr := s.outboundStore.UpdateStatus(txCtx, record.ID, models.OutboundMessageStatusFailed); statusErr != nil {
			log.WithError(statusErr).Error("Failed to mark outbound message failed")
		}
		record.Status = models.OutboundMessageStatusFailed
		if commitErr := tx.Commit(ctx); commitErr != nil {
			log.WithError(commitErr).Error("Failed to commit failed outbound record")
		}
		return nil, &models.NotifyError{Cause: err}
	}

	if err := s.outboundStore.UpdateStatus(txCtx, record.ID, models.OutboundMessageStatusSent); err != nil {
		log.WithError(err).Error("Failed to mark outbound message sent")
	}
	record.Status = models.OutboundMessageStatusSent

	if err := tx.Commit(ctx); err != nil {
		log.WithError(err).Error("Failed to commit outbound record")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to record outbound message")
	}

	if err := s.demandStore.TouchLastContacted(ctx, demand.ID); err != nil {
		log.WithError(err).Error("Failed to stamp demand contact time")
	}

	metrics.OutboundMessagesTotal.WithLabelValues(string(models.OutboundMessageStatusSent)).Inc()
	log.WithField("properties", len(propertyIDs)).Info("Sent match rundown")

	return record, nil
}

func (s *Service) checkRateLimit(ctx context.Context, demand *models.Demand) error {
	if !s.config.RateLimitEnabled || s.limiter == nil {
		return nil
	}

	// Formatting variants of the same number share one window.
	key := normalizers.Apply(demand.ClientPhone, "nphone")
	result, err := s.limiter.Allow(ctx, key, s.config.RateLimitSends, s.config.RateLimitWindow)
	if err != nil {
		// A broken limiter should not block outreach.
		s.logger.WithContext(ctx).WithError(err).Warn("Rate limit check failed, allowing send")
		return nil
	}

	if !result.Allowed {
		metrics.RateLimitHits.Inc()
		return httperror.WrapError(http.StatusTooManyRequests, redis.ErrRateLimitExceeded)
	}

	return nil
}

func (s *Service) notify(ctx context.Context, demand *models.Demand, record *models.OutboundMessage, propertyIDs []string) error {
	if s.notifier == nil {
		s.logger.WithContext(ctx).Warn("Outbound producer disabled, skipping publish")
		return nil
	}

	return s.notifier.PublishOutboundMessage(ctx, &kafka.OutboundMessageEvent{
		MessageID:   record.ID,
		DemandID:    demand.ID,
		ClientName:  demand.ClientName,
		ClientPhone: demand.ClientPhone,
		PropertyIDs: propertyIDs,
		Message:     record.Message,
	})
}

// selectProperties keeps the requested listings in rank order. Ids not
// present in the match result are ignored.
func selectProperties(matches []models.ScoredProperty, ids []string) []models.Property {
	if len(ids) == 0 {
		return nil
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	selected := make([]models.Property, 0, len(ids))
	for i := range matches {
		if wanted[matches[i].Property.ID] {
			selected = append(selected, matches[i].Property)
		}
	}
	return selected
}
