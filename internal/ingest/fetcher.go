package ingest

import (
	"context"
	"encoding/json"
	"sync"

	"golang.org/x/time/rate"

	"github.com/amionai/sourcecorr/pkg/tablestore"
)

// PageFetcher is the slice of the tablestore client the fetcher depends on.
type PageFetcher interface {
	FetchPage(ctx context.Context, q tablestore.Query) (*tablestore.Page, error)
}

// Options configures a Fetcher.
type Options struct {
	// PageSize is passed through to every table query.
	PageSize int
	// TargetRecordCount caps how many executions one pass retrieves. The pass
	// yields exactly min(target, available) records (default: 10000).
	TargetRecordCount int
	// SourcesConcurrency caps concurrent source-table fetches (default: 1).
	SourcesConcurrency int
	// RequestsPerSecond paces all upstream calls across both tables; zero
	// disables pacing.
	RequestsPerSecond float64
}

// Batch couples one executions page with the source rows fetched for it. Pages are
// kept separate so the newest-first upstream order stays auditable downstream.
type Batch struct {
	Executions []json.RawMessage
	Sources    []json.RawMessage
}

// Result is everything one fetch pass retrieved.
type Result struct {
	Batches           []Batch
	ExecutionsFetched int
	SourcesFetched    int
	PagesFetched      int
}

// Fetcher pages executions newest-first until the target count is reached or the
// upstream is exhausted, fetching each page's citation sources as it goes. The
// executions walk itself is sequential because every page's cursor comes from the
// page before it; only the source fetches fan out.
type Fetcher struct {
	client  PageFetcher
	limiter *rate.Limiter
	opts    Options
}

func NewFetcher(client PageFetcher, opts Options) *Fetcher {
	if opts.TargetRecordCount <= 0 {
		opts.TargetRecordCount = 10000
	}
	if opts.SourcesConcurrency <= 0 {
		opts.SourcesConcurrency = 1
	}
	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return &Fetcher{client: client, limiter: limiter, opts: opts}
}

// FetchAll runs one retrieval pass. The first upstream failure cancels all in-flight
// work and fails the pass; partial results are never returned.
func (f *Fetcher) FetchAll(ctx context.Context) (*Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu            sync.Mutex
		firstErr      error
		wg            sync.WaitGroup
		sem           = make(chan struct{}, f.opts.SourcesConcurrency)
		sourcesByPage = map[int][]json.RawMessage{}
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	var pages [][]json.RawMessage
	fetched := 0
	pageCount := 0
	cursor := ""
	for fetched < f.opts.TargetRecordCount {
		page, err := f.fetchPage(ctx, tablestore.Query{
			Table:    tablestore.TableExecutions,
			Cursor:   cursor,
			PageSize: f.opts.PageSize,
		})
		if err != nil {
			fail(err)
			break
		}
		pageCount++

		records := page.Records
		if remaining := f.opts.TargetRecordCount - fetched; len(records) > remaining {
			records = records[:remaining]
		}
		if len(records) > 0 {
			idx := len(pages)
			pages = append(pages, records)
			fetched += len(records)

			if ids := executionIDs(records); len(ids) > 0 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					select {
					case sem <- struct{}{}:
						defer func() { <-sem }()
					case <-ctx.Done():
						return
					}
					rows, err := f.fetchSources(ctx, ids)
					if err != nil {
						fail(err)
						return
					}
					mu.Lock()
					sourcesByPage[idx] = rows
					mu.Unlock()
				}()
			}
		}

		if page.NextCursor == "" || len(page.Records) == 0 {
			break
		}
		cursor = page.NextCursor
	}

	wg.Wait()

	mu.Lock()
	err := firstErr
	mu.Unlock()
	if err != nil {
		return nil, err
	}

	result := &Result{
		Batches:           make([]Batch, len(pages)),
		ExecutionsFetched: fetched,
		PagesFetched:      pageCount,
	}
	for i, records := range pages {
		result.Batches[i] = Batch{Executions: records, Sources: sourcesByPage[i]}
		result.SourcesFetched += len(sourcesByPage[i])
	}
	return result, nil
}

// fetchPage applies rate pacing before delegating to the client.
func (f *Fetcher) fetchPage(ctx context.Context, q tablestore.Query) (*tablestore.Page, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return f.client.FetchPage(ctx, q)
}

// fetchSources drains the source rows for the given executions, following the
// cursor chain until the filter is exhausted.
func (f *Fetcher) fetchSources(ctx context.Context, ids []int64) ([]json.RawMessage, error) {
	var rows []json.RawMessage
	cursor := ""
	for {
		page, err := f.fetchPage(ctx, tablestore.Query{
			Table:        tablestore.TableSources,
			Cursor:       cursor,
			PageSize:     f.opts.PageSize,
			ExecutionIDs: ids,
		})
		if err != nil {
			return nil, err
		}
		rows = append(rows, page.Records...)
		if page.NextCursor == "" || len(page.Records) == 0 {
			return rows, nil
		}
		cursor = page.NextCursor
	}
}

// executionIDs peeks the id column out of raw execution rows to build the sources
// filter. Rows without an id get no sources and fall out at normalization.
func executionIDs(records []json.RawMessage) []int64 {
	ids := make([]int64, 0, len(records))
	for _, raw := range records {
		var row struct {
			ID *int64 `json:"id"`
		}
		if err := json.Unmarshal(raw, &row); err != nil || row.ID == nil {
			continue
		}
		ids = append(ids, *row.ID)
	}
	return ids
}
