package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/briar/pkg/models"
)

func TestFromDemand(t *testing.T) {
	t.Run("folds text fields", func(t *testing.T) {
		criteria, err := FromDemand(&models.Demand{
			Budget:   5000000,
			Size:     "  10  Marla ",
			Location: "DHA   Phase 5",
			Type:     " House ",
		})
		require.NoError(t, err)

		assert.Equal(t, 5000000.0, criteria.Budget)
		assert.Equal(t, "10 marla", criteria.Size)
		assert.Equal(t, "dha phase 5", criteria.Location)
		assert.Equal(t, "house", criteria.Type)
	})

	t.Run("rejects negative budget", func(t *testing.T) {
		_, err := FromDemand(&models.Demand{Budget: -1})
		require.Error(t, err)

		var criteriaErr *models.InvalidCriteriaError
		assert.ErrorAs(t, err, &criteriaErr)
		assert.Equal(t, "budget", criteriaErr.Field)
	})

	t.Run("blank demand is a wildcard", func(t *testing.T) {
		criteria, err := FromDemand(&models.Demand{})
		require.NoError(t, err)
		assert.True(t, criteria.IsWildcard())
	})

	t.Run("any constraint clears the wildcard flag", func(t *testing.T) {
		criteria, err := FromDemand(&models.Demand{Location: "Lahore"})
		require.NoError(t, err)
		assert.False(t, criteria.IsWildcard())
	})
}
