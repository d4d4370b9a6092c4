// Package ingest retrieves raw execution and source rows from the table API and
// turns them into validated domain records.
package ingest

import (
	"bytes"
	"encoding/json"
	"log/slog"

	"github.com/amionai/sourcecorr/internal/models"
)

// rawExecution mirrors an upstream queries_execution row. Pointer fields distinguish
// absent from zero during validation.
type rawExecution struct {
	ID               *int64          `json:"id"`
	CustomerID       *string         `json:"customer_id"`
	ProductInResults json.RawMessage `json:"product_in_results"`
}

// rawSource mirrors an upstream query_sources row. The upstream serializes the
// domain column capitalized.
type rawSource struct {
	ID                  *int64          `json:"id"`
	ExecutionID         *int64          `json:"execution_id"`
	URL                 string          `json:"url"`
	Domain              string          `json:"Domain"`
	IsCustomerMentioned json.RawMessage `json:"is_customer_mentioned"`
}

// NormalizeStats counts the rows a run dropped. Malformed rows never abort a run;
// they are skipped, counted, and reported in the run summary.
type NormalizeStats struct {
	// SkippedMalformed counts execution rows dropped for missing or mistyped
	// required fields.
	SkippedMalformed int
	// ExcludedNoSources counts executions dropped because no source rows
	// survived for them. Such executions carry no citation signal and would
	// only dilute the correlation.
	ExcludedNoSources int
	// DroppedSources counts source rows dropped for missing identifiers or an
	// unparseable payload.
	DroppedSources int
}

// Normalizer validates raw upstream rows and joins sources onto their executions.
// It accumulates skip counters across batches, so one Normalizer serves one run.
type Normalizer struct {
	stats NormalizeStats
}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Stats returns the counters accumulated so far.
func (n *Normalizer) Stats() NormalizeStats {
	return n.stats
}

// NormalizeBatch decodes one page of executions together with the source rows
// fetched for it and returns the executions that qualify for analysis, preserving
// the upstream order. An execution qualifies when its required fields validate and
// at least one of its sources survived.
func (n *Normalizer) NormalizeBatch(executions []json.RawMessage, sources []json.RawMessage) []models.Execution {
	byExecution := n.decodeSources(sources)

	out := make([]models.Execution, 0, len(executions))
	for _, raw := range executions {
		exec, ok := n.decodeExecution(raw)
		if !ok {
			continue
		}
		exec.Sources = byExecution[exec.ID]
		if len(exec.Sources) == 0 {
			n.stats.ExcludedNoSources++
			slog.Debug("excluding execution without sources", "execution_id", exec.ID)
			continue
		}
		out = append(out, exec)
	}
	return out
}

// decodeExecution validates a single raw execution row. ok is false when the row
// is malformed, in which case the skip has already been counted.
func (n *Normalizer) decodeExecution(raw json.RawMessage) (models.Execution, bool) {
	var row rawExecution
	if err := json.Unmarshal(raw, &row); err != nil {
		n.stats.SkippedMalformed++
		slog.Debug("skipping unparseable execution row", "error", err)
		return models.Execution{}, false
	}
	if row.ID == nil || *row.ID <= 0 {
		n.stats.SkippedMalformed++
		slog.Debug("skipping execution row without id")
		return models.Execution{}, false
	}
	if row.CustomerID == nil || *row.CustomerID == "" {
		n.stats.SkippedMalformed++
		slog.Debug("skipping execution row without customer id", "execution_id", *row.ID)
		return models.Execution{}, false
	}
	brandInResponse, ok := boolFlag(row.ProductInResults)
	if !ok {
		n.stats.SkippedMalformed++
		slog.Debug("skipping execution row with malformed brand flag", "execution_id", *row.ID)
		return models.Execution{}, false
	}

	return models.Execution{
		ID:              *row.ID,
		CustomerID:      *row.CustomerID,
		BrandInResponse: brandInResponse,
	}, true
}

// decodeSources validates raw source rows and groups them by execution id. Rows
// without both identifiers are dropped and counted.
func (n *Normalizer) decodeSources(raws []json.RawMessage) map[int64][]models.Source {
	byExecution := make(map[int64][]models.Source)
	for _, raw := range raws {
		var row rawSource
		if err := json.Unmarshal(raw, &row); err != nil {
			n.stats.DroppedSources++
			slog.Debug("dropping unparseable source row", "error", err)
			continue
		}
		if row.ID == nil || row.ExecutionID == nil {
			n.stats.DroppedSources++
			slog.Debug("dropping source row without identifiers")
			continue
		}
		// An absent mention flag means the upstream never scanned this source;
		// treat it as not mentioned, the same reading the dashboard uses.
		mentioned, ok := boolFlag(row.IsCustomerMentioned)
		if !ok {
			mentioned = false
		}
		byExecution[*row.ExecutionID] = append(byExecution[*row.ExecutionID], models.Source{
			ID:             *row.ID,
			URL:            row.URL,
			Domain:         row.Domain,
			BrandMentioned: mentioned,
		})
	}
	return byExecution
}

var nullLiteral = []byte("null")

// boolFlag reports the truthiness of an upstream flag column, which arrives as a
// JSON bool or a 0/1 number depending on the upstream serializer. ok is false for
// absent, null, or mistyped values.
func boolFlag(raw json.RawMessage) (bool, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, nullLiteral) {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(trimmed, &b); err == nil {
		return b, true
	}
	var f float64
	if err := json.Unmarshal(trimmed, &f); err == nil {
		return f != 0, true
	}
	return false, false
}
