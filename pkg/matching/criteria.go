// Package matching implements demand-to-inventory matching
package matching

import (
	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/normalizers"
)

// Criteria is a demand reduced to its comparable form. String fields are
// folded (trimmed, whitespace-collapsed, lowercased); an empty field is a
// wildcard that matches any listing.
type Criteria struct {
	Budget   float64
	Size     string
	Location string
	Type     string
}

// foldChain is the named normalizer sequence criteria fields run through
// before comparison. It matches normalizers.Fold.
var foldChain = []string{"trim", "collapse_whitespace", "lowercase"}

// FromDemand derives normalized criteria from a stored demand.
func FromDemand(demand *models.Demand) (Criteria, error) {
	if demand.Budget < 0 {
		return Criteria{}, &models.InvalidCriteriaError{Field: "budget", Reason: "must not be negative"}
	}

	return Criteria{
		Budget:   demand.Budget,
		Size:     normalizers.ApplyChain(demand.Size, foldChain...),
		Location: normalizers.ApplyChain(demand.Location, foldChain...),
		Type:     normalizers.ApplyChain(demand.Type, foldChain...),
	}, nil
}

// IsWildcard reports whether the criteria constrains nothing at all.
func (c Criteria) IsWildcard() bool {
	return c.Budget == 0 && c.Size == "" && c.Location == "" && c.Type == ""
}
