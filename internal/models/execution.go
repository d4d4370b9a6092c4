package models

// Execution represents one recorded AI query run for a customer, joined to its
// citation sources. Executions are read-only snapshots: fetched once per pipeline
// run, never mutated, and never persisted beyond the exported artifacts.
type Execution struct {
	ID              int64    `json:"id"`
	CustomerID      string   `json:"customer_id"`
	BrandInResponse bool     `json:"brand_in_response"`
	Sources         []Source `json:"sources"`
}

// Source represents a single citation attached to an execution. Sources are owned by
// their execution for the duration of a run and have no independent lifecycle here.
// BrandMentioned is derived by the upstream system and consumed as-is.
type Source struct {
	ID             int64  `json:"id"`
	URL            string `json:"url"`
	Domain         string `json:"domain"`
	BrandMentioned bool   `json:"brand_mentioned"`
}
