package matching

import (
	"math"
	"strings"

	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/normalizers"
)

// Component weights. They sum to 100 so the total reads as a percentage fit.
const (
	WeightPrice    = 40.0
	WeightLocation = 30.0
	WeightSize     = 20.0
	WeightType     = 10.0
)

// PriceTolerance is the relative deviation at which the price component
// bottoms out. A listing 20% off budget earns zero price credit.
const PriceTolerance = 0.2

// Scorer grades a single listing against normalized criteria.
type Scorer struct {
	tolerance float64
}

// NewScorer creates a Scorer with the default price tolerance.
func NewScorer() *Scorer {
	return &Scorer{tolerance: PriceTolerance}
}

// Score computes the weighted fit of a listing. Wildcard criteria fields
// earn their full component weight.
func (s *Scorer) Score(criteria Criteria, property *models.Property) models.ScoreBreakdown {
	breakdown := models.ScoreBreakdown{
		Price:    s.priceScore(criteria.Budget, property.Price),
		Location: containmentScore(criteria.Location, property.Location, WeightLocation),
		Size:     containmentScore(criteria.Size, property.Size, WeightSize),
		Type:     equalityScore(criteria.Type, property.Type, WeightType),
	}

	total := int(math.Round(breakdown.Price + breakdown.Location + breakdown.Size + breakdown.Type))
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}
	breakdown.Total = total

	return breakdown
}

// priceScore decays linearly with relative deviation from budget, reaching
// zero at the tolerance edge.
func (s *Scorer) priceScore(budget, price float64) float64 {
	if budget == 0 {
		return WeightPrice
	}

	deviation := math.Abs(price-budget) / budget
	return WeightPrice * math.Max(0, 1-deviation/s.tolerance)
}

func containmentScore(criterion, value string, weight float64) float64 {
	if criterion == "" {
		return weight
	}
	if strings.Contains(normalizers.Fold(value), criterion) {
		return weight
	}
	return 0
}

func equalityScore(criterion, value string, weight float64) float64 {
	if criterion == "" {
		return weight
	}
	if normalizers.Fold(value) == criterion {
		return weight
	}
	return 0
}
