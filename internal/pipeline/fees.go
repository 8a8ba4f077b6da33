package pipeline

import (
	"strings"

	"yovibe-events-scraper/internal/models"
)

// ParseEntryFees turns a listing's raw fee text into entry-fee line items
// and a free-entry flag. Empty fee text or any mention of "free" means free
// entry. Multi-tier fees arrive as "Name: Amount" lines; a bare amount
// becomes a single "General" tier.
func ParseEntryFees(feeText string) ([]models.EntryFee, bool) {
	feeText = strings.TrimSpace(feeText)
	if feeText == "" || strings.Contains(strings.ToLower(feeText), "free") {
		return nil, true
	}

	var fees []models.EntryFee
	for _, line := range strings.FieldsFunc(feeText, func(r rune) bool { return r == '\n' || r == ';' }) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		name, amount := "General", line
		if idx := strings.Index(line, ":"); idx > 0 {
			name = strings.TrimSpace(line[:idx])
			amount = strings.TrimSpace(line[idx+1:])
		}
		if amount == "" {
			continue
		}
		fees = append(fees, models.EntryFee{Name: name, Amount: amount})
	}

	if len(fees) == 0 {
		return nil, true
	}
	return fees, false
}
