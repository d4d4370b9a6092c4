// Package pipeline runs one fetch, normalize, aggregate, export pass over the
// upstream tables and reports what happened.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/amionai/sourcecorr/internal/correlation"
	"github.com/amionai/sourcecorr/internal/export"
	"github.com/amionai/sourcecorr/internal/ingest"
	"github.com/amionai/sourcecorr/internal/models"
)

// ArtifactStore mirrors exported artifacts to a bucket.
type ArtifactStore interface {
	Upload(ctx context.Context, localPath, key string) error
}

// objectPrefix namespaces uploaded artifacts inside the bucket.
const objectPrefix = "correlation"

// Deps wires one run's collaborators. Store may be nil when no artifact mirror is
// configured.
type Deps struct {
	Fetcher  *ingest.Fetcher
	GroupBy  correlation.GroupBy
	Exporter *export.Exporter
	Store    ArtifactStore
}

// Run executes one correlation pass. Upstream and write failures abort the run and
// leave no artifacts; malformed rows are skipped and show up in the summary
// counters instead. The returned summary is valid even when err is non-nil.
func Run(ctx context.Context, deps Deps) (*models.Summary, error) {
	summary := &models.Summary{
		RunID:     uuid.Must(uuid.NewV7()),
		StartedAt: time.Now(),
	}
	defer func() {
		summary.FinishedAt = time.Now()
	}()

	slog.Info("Starting correlation run", "run_id", summary.RunID, "group_by", deps.GroupBy)

	result, err := deps.Fetcher.FetchAll(ctx)
	if err != nil {
		return summary, fmt.Errorf("fetch failed: %w", err)
	}
	summary.RecordsFetched = result.ExecutionsFetched
	summary.SourcesFetched = result.SourcesFetched
	slog.Info("Fetch complete",
		"run_id", summary.RunID,
		"executions", result.ExecutionsFetched,
		"sources", result.SourcesFetched,
		"pages", result.PagesFetched)

	normalizer := ingest.NewNormalizer()
	var executions []models.Execution
	for _, batch := range result.Batches {
		executions = append(executions, normalizer.NormalizeBatch(batch.Executions, batch.Sources)...)
	}
	stats := normalizer.Stats()
	summary.SkippedMalformed = stats.SkippedMalformed
	summary.ExcludedNoSources = stats.ExcludedNoSources
	summary.DroppedSources = stats.DroppedSources
	summary.QualifyingRecords = len(executions)

	records := correlation.ExtractAll(executions)
	aggregates := correlation.Aggregate(records, deps.GroupBy)
	summary.Groups = len(aggregates)

	paths, err := deps.Exporter.Export(aggregates, records, deps.GroupBy)
	if err != nil {
		return summary, fmt.Errorf("export failed: %w", err)
	}
	summary.JSONPath = paths.JSON
	summary.CSVPath = paths.CSV

	// The local files are the deliverable; a failed mirror upload is logged and
	// the run still succeeds.
	if deps.Store != nil {
		for _, localPath := range []string{paths.JSON, paths.CSV} {
			key := path.Join(objectPrefix, filepath.Base(localPath))
			if err := deps.Store.Upload(ctx, localPath, key); err != nil {
				slog.Error("Failed to upload artifact", "run_id", summary.RunID, "path", localPath, "error", err)
				continue
			}
			summary.UploadedObjects = append(summary.UploadedObjects, key)
		}
	}

	return summary, nil
}
