package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/briar/pkg/models"
)

func testProperty() *models.Property {
	return &models.Property{
		ID:       "p1",
		Title:    "5 Marla House in DHA",
		Type:     "House",
		Size:     "5 Marla",
		Location: "DHA Phase 5, Lahore",
		Price:    10000000,
		Status:   models.PropertyStatusAvailable,
	}
}

func TestScorer_Score(t *testing.T) {
	scorer := NewScorer()

	t.Run("perfect match earns full score", func(t *testing.T) {
		criteria := Criteria{
			Budget:   10000000,
			Size:     "5 marla",
			Location: "dha",
			Type:     "house",
		}

		breakdown := scorer.Score(criteria, testProperty())
		assert.Equal(t, 100, breakdown.Total)
		assert.Equal(t, 40.0, breakdown.Price)
		assert.Equal(t, 30.0, breakdown.Location)
		assert.Equal(t, 20.0, breakdown.Size)
		assert.Equal(t, 10.0, breakdown.Type)
	})

	t.Run("price credit decays linearly with deviation", func(t *testing.T) {
		criteria := Criteria{Budget: 10000000, Size: "5 marla", Location: "dha", Type: "house"}

		property := testProperty()
		property.Price = 11000000 // 10% over budget, half the tolerance

		breakdown := scorer.Score(criteria, property)
		assert.Equal(t, 20.0, breakdown.Price)
		assert.Equal(t, 80, breakdown.Total)
	})

	t.Run("price credit bottoms out at the tolerance edge", func(t *testing.T) {
		criteria := Criteria{Budget: 10000000, Size: "5 marla", Location: "dha", Type: "house"}

		property := testProperty()
		property.Price = 12000000 // exactly 20% over

		breakdown := scorer.Score(criteria, property)
		assert.Equal(t, 0.0, breakdown.Price)
		assert.Equal(t, 60, breakdown.Total)
	})

	t.Run("price deviation beyond tolerance never goes negative", func(t *testing.T) {
		criteria := Criteria{Budget: 10000000}

		property := testProperty()
		property.Price = 20000000

		breakdown := scorer.Score(criteria, property)
		assert.Equal(t, 0.0, breakdown.Price)
		assert.GreaterOrEqual(t, breakdown.Total, 0)
	})

	t.Run("zero budget is a wildcard worth full price credit", func(t *testing.T) {
		criteria := Criteria{Budget: 0, Size: "5 marla", Location: "dha", Type: "house"}

		property := testProperty()
		property.Price = 99999999

		breakdown := scorer.Score(criteria, property)
		assert.Equal(t, 40.0, breakdown.Price)
		assert.Equal(t, 100, breakdown.Total)
	})

	t.Run("empty text criteria are wildcards", func(t *testing.T) {
		criteria := Criteria{Budget: 10000000}

		breakdown := scorer.Score(criteria, testProperty())
		assert.Equal(t, 100, breakdown.Total)
	})

	t.Run("location containment is case-insensitive", func(t *testing.T) {
		criteria := Criteria{Location: "dha phase 5"}

		breakdown := scorer.Score(criteria, testProperty())
		assert.Equal(t, 30.0, breakdown.Location)
	})

	t.Run("location miss earns nothing", func(t *testing.T) {
		criteria := Criteria{Location: "bahria town"}

		breakdown := scorer.Score(criteria, testProperty())
		assert.Equal(t, 0.0, breakdown.Location)
	})

	t.Run("type requires exact equality not containment", func(t *testing.T) {
		criteria := Criteria{Type: "hou"}

		breakdown := scorer.Score(criteria, testProperty())
		assert.Equal(t, 0.0, breakdown.Type)
	})

	t.Run("type equality folds case", func(t *testing.T) {
		criteria := Criteria{Type: "house"}

		breakdown := scorer.Score(criteria, testProperty())
		assert.Equal(t, 10.0, breakdown.Type)
	})

	t.Run("score is deterministic", func(t *testing.T) {
		criteria := Criteria{Budget: 10500000, Size: "5 marla", Location: "dha", Type: "house"}

		first := scorer.Score(criteria, testProperty())
		second := scorer.Score(criteria, testProperty())
		assert.Equal(t, first, second)
	})
}
