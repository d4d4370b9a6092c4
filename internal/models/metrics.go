package models

// MetricRecord holds the per-execution correlation metrics derived from a qualifying
// execution. Every execution that survives normalization yields exactly one record,
// so SourceCount is always at least 1 and the percentage is always defined.
type MetricRecord struct {
	ExecutionID            int64   `json:"execution_id"`
	CustomerID             string  `json:"customer_id"`
	BrandInResponse        bool    `json:"brand_in_response"`
	SourceCount            int     `json:"source_count"`
	SourcesWithBrand       int     `json:"sources_with_brand"`
	BrandMentionPercentage float64 `json:"brand_mention_percentage"`
}

// BrandSplit holds the summary statistics for one brand_in_response partition of a
// group. The means are nil when the partition has no records, which the exporter
// renders as JSON null rather than a misleading zero.
type BrandSplit struct {
	RecordCount                int      `json:"record_count"`
	MeanSourceCount            *float64 `json:"mean_source_count"`
	MeanSourcesWithBrand       *float64 `json:"mean_sources_with_brand"`
	MeanBrandMentionPercentage *float64 `json:"mean_brand_mention_percentage"`
}

// AggregateResult is the correlation summary for one group. SourcesWithBrandRatio
// compares the mean number of brand-mentioning sources between executions where the
// brand appeared in the response and those where it did not; it is nil whenever that
// comparison is undefined.
type AggregateResult struct {
	GroupKey              string     `json:"group_key"`
	RecordCount           int        `json:"record_count"`
	BrandInResponse       BrandSplit `json:"brand_in_response"`
	BrandNotInResponse    BrandSplit `json:"brand_not_in_response"`
	SourcesWithBrandRatio *float64   `json:"sources_with_brand_ratio"`
}
