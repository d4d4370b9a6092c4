package correlation

import (
	"sort"

	"github.com/amionai/sourcecorr/internal/models"
)

// GroupBy selects the aggregation dimension.
type GroupBy string

const (
	// GroupByNone folds every record into the single "all" group.
	GroupByNone GroupBy = "none"
	// GroupByCustomer yields one group per distinct customer id in the input.
	GroupByCustomer GroupBy = "customer"
)

const allGroupKey = "all"

// Key returns the group a record falls into under this dimension.
func (g GroupBy) Key(r models.MetricRecord) string {
	if g == GroupByCustomer {
		return r.CustomerID
	}
	return allGroupKey
}

// Aggregate partitions the records by group key and brand_in_response and computes
// the per-partition means. Group keys come out sorted, and since every statistic is
// a count or a mean, the result is identical for any ordering of the input.
func Aggregate(records []models.MetricRecord, groupBy GroupBy) []models.AggregateResult {
	groups := make(map[string][]models.MetricRecord)
	for _, r := range records {
		key := groupBy.Key(r)
		groups[key] = append(groups[key], r)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	results := make([]models.AggregateResult, 0, len(keys))
	for _, key := range keys {
		results = append(results, aggregateGroup(key, groups[key]))
	}
	return results
}

func aggregateGroup(key string, records []models.MetricRecord) models.AggregateResult {
	var present, absent []models.MetricRecord
	for _, r := range records {
		if r.BrandInResponse {
			present = append(present, r)
		} else {
			absent = append(absent, r)
		}
	}

	presentSplit := splitStats(present)
	absentSplit := splitStats(absent)

	return models.AggregateResult{
		GroupKey:              key,
		RecordCount:           len(records),
		BrandInResponse:       presentSplit,
		BrandNotInResponse:    absentSplit,
		SourcesWithBrandRatio: brandSourcesRatio(presentSplit, absentSplit),
	}
}

// splitStats computes the means for one brand partition. Empty partitions keep nil
// means so the export can say "no data" instead of a fake zero.
func splitStats(records []models.MetricRecord) models.BrandSplit {
	split := models.BrandSplit{RecordCount: len(records)}
	if len(records) == 0 {
		return split
	}

	var sumSources, sumWithBrand, sumPct float64
	for _, r := range records {
		sumSources += float64(r.SourceCount)
		sumWithBrand += float64(r.SourcesWithBrand)
		sumPct += r.BrandMentionPercentage
	}

	n := float64(len(records))
	split.MeanSourceCount = floatPtr(sumSources / n)
	split.MeanSourcesWithBrand = floatPtr(sumWithBrand / n)
	split.MeanBrandMentionPercentage = floatPtr(sumPct / n)
	return split
}

// brandSourcesRatio compares the mean brand-mentioning source count between the two
// partitions. It is nil when either partition is empty or the brand-absent mean is
// zero: those comparisons are undefined, not infinite.
func brandSourcesRatio(present, absent models.BrandSplit) *float64 {
	if present.MeanSourcesWithBrand == nil || absent.MeanSourcesWithBrand == nil {
		return nil
	}
	if *absent.MeanSourcesWithBrand == 0 {
		return nil
	}
	return floatPtr(*present.MeanSourcesWithBrand / *absent.MeanSourcesWithBrand)
}

func floatPtr(v float64) *float64 {
	return &v
}
