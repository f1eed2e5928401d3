package outreach

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/briar/pkg/models"
)

func TestComposeMessage(t *testing.T) {
	t.Run("renders one block per listing", func(t *testing.T) {
		message := ComposeMessage([]models.Property{
			{
				Title:       "5 Marla House in DHA",
				Location:    "DHA Phase 5, Lahore",
				Price:       15000000,
				Size:        "5 Marla",
				Beds:        3,
				Description: "Brand new construction",
			},
		})

		expected := "🏠 5 Marla House in DHA\n" +
			"📍 DHA Phase 5, Lahore\n" +
			"💰 PKR 15,000,000\n" +
			"📏 5 Marla • 3 beds\n" +
			"Brand new construction"
		assert.Equal(t, expected, message)
	})

	t.Run("omits the description line when blank", func(t *testing.T) {
		message := ComposeMessage([]models.Property{
			{Title: "Plot", Location: "Bahria Town", Price: 5000000, Size: "10 Marla", Beds: 0},
		})

		assert.True(t, strings.HasSuffix(message, "📏 10 Marla • 0 beds"))
	})

	t.Run("separates listings with a rule", func(t *testing.T) {
		message := ComposeMessage([]models.Property{
			{Title: "First", Location: "A", Price: 1000000, Size: "5 Marla"},
			{Title: "Second", Location: "B", Price: 2000000, Size: "10 Marla"},
		})

		separator := "\n\n" + strings.Repeat("─", 30) + "\n\n"
		parts := strings.Split(message, separator)
		assert.Len(t, parts, 2)
		assert.True(t, strings.HasPrefix(parts[0], "🏠 First"))
		assert.True(t, strings.HasPrefix(parts[1], "🏠 Second"))
	})

	t.Run("preserves the given order", func(t *testing.T) {
		message := ComposeMessage([]models.Property{
			{Title: "Best", Location: "A", Price: 1},
			{Title: "Second best", Location: "B", Price: 2},
		})

		assert.Less(t, strings.Index(message, "Best"), strings.Index(message, "Second best"))
	})

	t.Run("formats fractional prices without padding zeros", func(t *testing.T) {
		assert.Equal(t, "1,250,000.5", formatPrice(1250000.5))
		assert.Equal(t, "1,250,000", formatPrice(1250000))
	})
}
