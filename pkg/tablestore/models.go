package tablestore

import "encoding/json"

// Table identifies one of the upstream tables the pipeline reads.
type Table string

const (
	// TableExecutions holds one row per recorded AI query execution.
	TableExecutions Table = "queries_execution"
	// TableSources holds the citation sources, one row per source per execution.
	TableSources Table = "query_sources"
)

// Query describes one page request against an upstream table.
type Query struct {
	Table Table
	// Cursor is the opaque pagination token returned by the previous page.
	// Empty requests the first page.
	Cursor string
	// PageSize is the requested number of records. Zero uses the default and
	// values above the upstream maximum are clamped.
	PageSize int
	// ExecutionIDs restricts TableSources pages to sources belonging to the
	// given executions. Ignored by the upstream for other tables.
	ExecutionIDs []int64
}

// Page is one page of records exactly as the upstream returned them, newest id
// first. Records are left undecoded so the transport layer never interprets row
// contents. NextCursor is empty once the table is exhausted.
type Page struct {
	Records    []json.RawMessage
	NextCursor string
}

// queryBody is the filter and pagination descriptor the upstream expects. Soft
// deletion is exposed as an is_deleted column, which read paths always pin to 0.
type queryBody struct {
	IsDeleted    int     `json:"is_deleted"`
	Limit        int     `json:"limit"`
	OrderBy      string  `json:"orderBy"`
	Order        string  `json:"order"`
	Cursor       string  `json:"cursor,omitempty"`
	ExecutionIDs []int64 `json:"execution_ids,omitempty"`
}

type pageResponse struct {
	Data       []json.RawMessage `json:"data"`
	Pagination struct {
		NextCursor string `json:"nextCursor"`
	} `json:"pagination"`
}
