package outreach

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Ramsey-B/briar/pkg/models"
)

// blockSeparator divides listings in the composed message.
var blockSeparator = "\n\n" + strings.Repeat("─", 30) + "\n\n"

// ComposeMessage renders the selected listings into the client-facing text,
// one block per listing in rank order.
func ComposeMessage(properties []models.Property) string {
	blocks := make([]string, 0, len(properties))
	for i := range properties {
		blocks = append(blocks, composeBlock(&properties[i]))
	}
	return strings.Join(blocks, blockSeparator)
}

func composeBlock(p *models.Property) string {
	lines := []string{
		fmt.Sprintf("🏠 %s", p.Title),
		fmt.Sprintf("📍 %s", p.Location),
		fmt.Sprintf("💰 PKR %s", formatPrice(p.Price)),
		fmt.Sprintf("📏 %s • %d beds", p.Size, p.Beds),
	}
	if p.Description != "" {
		lines = append(lines, p.Description)
	}
	return strings.Join(lines, "\n")
}

// formatPrice renders prices the way agents quote them: grouped thousands,
// no trailing zeros for whole amounts.
func formatPrice(price float64) string {
	if price == float64(int64(price)) {
		return humanize.Comma(int64(price))
	}
	return humanize.Commaf(price)
}
