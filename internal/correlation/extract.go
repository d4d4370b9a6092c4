// Package correlation derives per-execution citation metrics and aggregates them
// into the brand-mention correlation summary.
package correlation

import "github.com/amionai/sourcecorr/internal/models"

// Extract derives the metric record for one execution. Normalization guarantees at
// least one source, so the mention percentage is always defined and sits in [0, 100].
func Extract(exec models.Execution) models.MetricRecord {
	withBrand := 0
	for _, s := range exec.Sources {
		if s.BrandMentioned {
			withBrand++
		}
	}
	count := len(exec.Sources)

	return models.MetricRecord{
		ExecutionID:            exec.ID,
		CustomerID:             exec.CustomerID,
		BrandInResponse:        exec.BrandInResponse,
		SourceCount:            count,
		SourcesWithBrand:       withBrand,
		BrandMentionPercentage: float64(withBrand) / float64(count) * 100,
	}
}

// ExtractAll maps Extract over a batch, preserving order.
func ExtractAll(execs []models.Execution) []models.MetricRecord {
	records := make([]models.MetricRecord, 0, len(execs))
	for _, exec := range execs {
		records = append(records, Extract(exec))
	}
	return records
}
