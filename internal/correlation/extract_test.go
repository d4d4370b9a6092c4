package correlation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amionai/sourcecorr/internal/models"
)

func execution(id int64, customerID string, brandInResponse bool, mentions ...bool) models.Execution {
	exec := models.Execution{ID: id, CustomerID: customerID, BrandInResponse: brandInResponse}
	for i, m := range mentions {
		exec.Sources = append(exec.Sources, models.Source{
			ID:             id*100 + int64(i),
			URL:            "https://example.com",
			Domain:         "example.com",
			BrandMentioned: m,
		})
	}
	return exec
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		exec     models.Execution
		wantWith int
		wantPct  float64
	}{
		{
			name:     "no sources mention the brand",
			exec:     execution(1, "cus_a", true, false, false),
			wantWith: 0,
			wantPct:  0,
		},
		{
			name:     "every source mentions the brand",
			exec:     execution(2, "cus_a", true, true, true, true),
			wantWith: 3,
			wantPct:  100,
		},
		{
			name:     "partial mentions",
			exec:     execution(3, "cus_b", false, true, false, true, false),
			wantWith: 2,
			wantPct:  50,
		},
		{
			name:     "single source mentioning",
			exec:     execution(4, "cus_b", true, true),
			wantWith: 1,
			wantPct:  100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := Extract(tt.exec)

			assert.Equal(t, tt.exec.ID, record.ExecutionID)
			assert.Equal(t, tt.exec.CustomerID, record.CustomerID)
			assert.Equal(t, tt.exec.BrandInResponse, record.BrandInResponse)
			assert.Equal(t, len(tt.exec.Sources), record.SourceCount)
			assert.Equal(t, tt.wantWith, record.SourcesWithBrand)
			assert.InDelta(t, tt.wantPct, record.BrandMentionPercentage, 1e-9)
			assert.GreaterOrEqual(t, record.BrandMentionPercentage, 0.0)
			assert.LessOrEqual(t, record.BrandMentionPercentage, 100.0)
		})
	}
}

func TestExtractAll_PreservesOrder(t *testing.T) {
	execs := []models.Execution{
		execution(9, "cus_a", true, true),
		execution(5, "cus_b", false, false),
		execution(2, "cus_a", true, true, false),
	}

	records := ExtractAll(execs)

	require.Len(t, records, 3)
	assert.Equal(t, int64(9), records[0].ExecutionID)
	assert.Equal(t, int64(5), records[1].ExecutionID)
	assert.Equal(t, int64(2), records[2].ExecutionID)
}

func TestExtractAll_EmptyInput(t *testing.T) {
	records := ExtractAll(nil)

	assert.NotNil(t, records)
	assert.Empty(t, records)
}
