package matching

import (
	"context"
	"sort"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/tracing"
)

// CandidateStore produces listings eligible for scoring.
type CandidateStore interface {
	ListCandidates(ctx context.Context, filter CandidateFilter) ([]models.Property, error)
}

// CandidateFilter narrows the candidate pool before scoring. Text fields are
// case-insensitive substring containment; empty means unconstrained. Price
// bounds are inclusive.
type CandidateFilter struct {
	Status   models.PropertyStatus
	Size     string
	Location string
	Type     string
	MinPrice *float64
	MaxPrice *float64
}

// EngineConfig contains configuration for the match engine
type EngineConfig struct {
	MaxResults int     // Maximum matches to return per demand (default: 100)
	PriceBand  float64 // Relative width of the candidate price band (default: 0.2)
}

// DefaultConfig returns default engine configuration
func DefaultConfig() EngineConfig {
	return EngineConfig{
		MaxResults: 100,
		PriceBand:  0.2,
	}
}

// Engine matches demands against available inventory.
type Engine struct {
	logger ectologger.Logger
	store  CandidateStore
	scorer *Scorer
	config EngineConfig
}

// NewEngine creates a new match engine
func NewEngine(logger ectologger.Logger, store CandidateStore, config EngineConfig) *Engine {
	if config.MaxResults <= 0 {
		config.MaxResults = DefaultConfig().MaxResults
	}
	if config.PriceBand <= 0 {
		config.PriceBand = DefaultConfig().PriceBand
	}
	return &Engine{
		logger: logger,
		store:  store,
		scorer: NewScorer(),
		config: config,
	}
}

// Match finds and ranks inventory for a demand. The result is ordered by
// score descending with listing id as the tie-break, so equal scores always
// rank the same way.
func (e *Engine) Match(ctx context.Context, demand *models.Demand) (*models.MatchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Engine.Match")
	defer span.End()

	log := e.logger.WithContext(ctx).WithFields(map[string]any{
		"demand_id":   demand.ID,
		"client_name": demand.ClientName,
	})

	criteria, err := FromDemand(demand)
	if err != nil {
		return nil, err
	}

	candidates, err := e.store.ListCandidates(ctx, e.buildFilter(criteria))
	if err != nil {
		log.WithError(err).Error("Failed to load match candidates")
		return nil, &models.RetrievalError{Cause: err}
	}

	matches := make([]models.ScoredProperty, 0, len(candidates))
	for i := range candidates {
		breakdown := e.scorer.Score(criteria, &candidates[i])
		matches = append(matches, models.ScoredProperty{
			Property:  candidates[i],
			Score:     breakdown.Total,
			Breakdown: breakdown,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Property.ID < matches[j].Property.ID
	})

	if len(matches) > e.config.MaxResults {
		matches = matches[:e.config.MaxResults]
	}

	log.WithField("matches", len(matches)).Debug("Match complete")

	return &models.MatchResult{
		DemandID: demand.ID,
		Matches:  matches,
		Total:    len(matches),
	}, nil
}

// buildFilter translates criteria into the candidate pool query. Only
// available listings are considered; non-empty text criteria become
// containment filters and a non-zero budget restricts the pool to an
// inclusive band around it.
func (e *Engine) buildFilter(criteria Criteria) CandidateFilter {
	filter := CandidateFilter{
		Status:   models.PropertyStatusAvailable,
		Size:     criteria.Size,
		Location: criteria.Location,
		Type:     criteria.Type,
	}

	if criteria.Budget > 0 {
		minPrice := criteria.Budget * (1 - e.config.PriceBand)
		maxPrice := criteria.Budget * (1 + e.config.PriceBand)
		filter.MinPrice = &minPrice
		filter.MaxPrice = &maxPrice
	}

	return filter
}
