// Package export writes the run artifacts: a JSON report carrying the aggregates
// with the underlying records, and a flat CSV of the per-execution metrics.
// Artifacts are staged to temporary files and renamed into place, so a failed run
// never leaves partial output behind.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/amionai/sourcecorr/internal/correlation"
	"github.com/amionai/sourcecorr/internal/models"
)

// WriteFailedError indicates an artifact could not be written or landed.
type WriteFailedError struct {
	Path string
	Err  error
}

func (e *WriteFailedError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *WriteFailedError) Unwrap() error {
	return e.Err
}

// Report is the JSON artifact. Struct field order fixes the key order, so exports
// of the same data are byte-identical and diff cleanly.
type Report struct {
	Aggregates []models.AggregateResult `json:"aggregates"`
	Records    []models.MetricRecord    `json:"records"`
}

var csvHeader = []string{
	"execution_id",
	"customer_id",
	"group",
	"brand_in_response",
	"source_count",
	"sources_with_brand",
	"brand_mention_percentage",
}

// Options configures an Exporter.
type Options struct {
	// Dir is the output directory, created if missing.
	Dir string
	// Basename overrides the timestamped artifact name. Fixed basenames make a
	// run replace its predecessor's artifacts in place.
	Basename string
}

// Exporter writes one pair of artifacts per call.
type Exporter struct {
	dir      string
	basename string
	now      func() time.Time
}

func New(opts Options) *Exporter {
	return &Exporter{
		dir:      opts.Dir,
		basename: opts.Basename,
		now:      time.Now,
	}
}

// Paths names the artifacts one export produced.
type Paths struct {
	JSON string
	CSV  string
}

// Export stages both artifacts and renames them into place. On any failure the
// temporary files are removed and previously exported artifacts stay untouched.
func (e *Exporter) Export(aggregates []models.AggregateResult, records []models.MetricRecord, groupBy correlation.GroupBy) (Paths, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return Paths{}, &WriteFailedError{Path: e.dir, Err: err}
	}

	if aggregates == nil {
		aggregates = []models.AggregateResult{}
	}
	if records == nil {
		records = []models.MetricRecord{}
	}

	base := e.basename
	if base == "" {
		base = "correlation_data_" + e.now().Format("20060102_150405")
	}
	paths := Paths{
		JSON: filepath.Join(e.dir, base+".json"),
		CSV:  filepath.Join(e.dir, base+".csv"),
	}

	jsonTmp, err := e.stageJSON(Report{Aggregates: aggregates, Records: records})
	if err != nil {
		return Paths{}, &WriteFailedError{Path: paths.JSON, Err: err}
	}
	csvTmp, err := e.stageCSV(records, groupBy)
	if err != nil {
		_ = os.Remove(jsonTmp)
		return Paths{}, &WriteFailedError{Path: paths.CSV, Err: err}
	}

	// Both artifacts staged; land them.
	if err := os.Rename(jsonTmp, paths.JSON); err != nil {
		_ = os.Remove(jsonTmp)
		_ = os.Remove(csvTmp)
		return Paths{}, &WriteFailedError{Path: paths.JSON, Err: err}
	}
	if err := os.Rename(csvTmp, paths.CSV); err != nil {
		_ = os.Remove(csvTmp)
		return Paths{}, &WriteFailedError{Path: paths.CSV, Err: err}
	}

	return paths, nil
}

func (e *Exporter) stageJSON(report Report) (string, error) {
	f, err := os.CreateTemp(e.dir, "correlation-*.json.tmp")
	if err != nil {
		return "", err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func (e *Exporter) stageCSV(records []models.MetricRecord, groupBy correlation.GroupBy) (string, error) {
	f, err := os.CreateTemp(e.dir, "correlation-*.csv.tmp")
	if err != nil {
		return "", err
	}
	discard := func(err error) (string, error) {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return discard(err)
	}
	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.ExecutionID, 10),
			r.CustomerID,
			groupBy.Key(r),
			formatBool01(r.BrandInResponse),
			strconv.Itoa(r.SourceCount),
			strconv.Itoa(r.SourcesWithBrand),
			fmt.Sprintf("%.2f", r.BrandMentionPercentage),
		}
		if err := w.Write(row); err != nil {
			return discard(err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return discard(err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// formatBool01 renders flags the way the upstream tables do, as 0 or 1.
func formatBool01(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
