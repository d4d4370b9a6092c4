package models

import (
	"time"

	"github.com/google/uuid"
)

// Summary carries the observable counters of one pipeline run. It is built up and
// returned by the run itself rather than tracked in globals, so runs stay repeatable
// and the counters can be asserted in tests.
type Summary struct {
	RunID             uuid.UUID `json:"run_id"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
	RecordsFetched    int       `json:"records_fetched"`
	SourcesFetched    int       `json:"sources_fetched"`
	SkippedMalformed  int       `json:"skipped_malformed"`
	ExcludedNoSources int       `json:"excluded_no_sources"`
	DroppedSources    int       `json:"dropped_sources"`
	QualifyingRecords int       `json:"qualifying_records"`
	Groups            int       `json:"groups"`
	JSONPath          string    `json:"json_path,omitempty"`
	CSVPath           string    `json:"csv_path,omitempty"`
	UploadedObjects   []string  `json:"uploaded_objects,omitempty"`
}

// Duration returns the wall-clock time the run took.
func (s *Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
