package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/amionai/sourcecorr/internal/config"
	"github.com/amionai/sourcecorr/internal/correlation"
	"github.com/amionai/sourcecorr/internal/export"
	"github.com/amionai/sourcecorr/internal/ingest"
	"github.com/amionai/sourcecorr/internal/pipeline"
	"github.com/amionai/sourcecorr/internal/storage"
	"github.com/amionai/sourcecorr/pkg/tablestore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Configure slog with the log level from config
	setupLogging(cfg.LogLevel)

	// SIGINT/SIGTERM cancel the run; in-flight requests stop and no artifacts land.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := tablestore.NewClientWithOptions(tablestore.ClientOptions{
		BaseURL:  cfg.UpstreamBaseURL,
		APIKey:   cfg.APIKey,
		RetryMax: cfg.UpstreamRetryMax,
		Timeout:  cfg.UpstreamTimeout,
	})

	fetcher := ingest.NewFetcher(client, ingest.Options{
		PageSize:           cfg.PageSize,
		TargetRecordCount:  cfg.TargetRecordCount,
		SourcesConcurrency: cfg.SourcesConcurrency,
		RequestsPerSecond:  cfg.FetchRateLimit,
	})

	exporter := export.New(export.Options{
		Dir:      cfg.OutputDir,
		Basename: cfg.OutputBasename,
	})

	var store pipeline.ArtifactStore
	if cfg.S3Enabled() {
		s3, err := storage.New(ctx, storage.Options{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			UseSSL:    cfg.S3UseSSL,
		})
		if err != nil {
			slog.Error("Failed to initialize artifact store", "error", err)
			os.Exit(1)
		}
		store = s3
		slog.Info("Artifact mirroring enabled", "bucket", cfg.S3Bucket)
	}

	summary, err := pipeline.Run(ctx, pipeline.Deps{
		Fetcher:  fetcher,
		GroupBy:  correlation.GroupBy(cfg.GroupBy),
		Exporter: exporter,
		Store:    store,
	})
	if err != nil {
		slog.Error("Correlation run failed", "run_id", summary.RunID, "error", err)
		os.Exit(1)
	}

	slog.Info("Correlation run complete",
		"run_id", summary.RunID,
		"duration", summary.Duration(),
		"records_fetched", summary.RecordsFetched,
		"sources_fetched", summary.SourcesFetched,
		"skipped_malformed", summary.SkippedMalformed,
		"excluded_no_sources", summary.ExcludedNoSources,
		"qualifying_records", summary.QualifyingRecords,
		"groups", summary.Groups,
		"json", summary.JSONPath,
		"csv", summary.CSVPath,
	)
}

// setupLogging configures slog with the specified log level
func setupLogging(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	slog.SetDefault(slog.New(handler))
}
