package services

import (
	"context"

	"github.com/gcbaptista/promo-search-engine/model"
)

// SearchPage is one page of a user's ranked results.
type SearchPage struct {
	Query      string               `json:"query"`    // Query the page belongs to; for page directives, the stored query
	QueryID    string               `json:"query_id"` // unique UUID of the search that produced the result set
	Results    []model.ScoredRecord `json:"results"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalPages int                  `json:"total_pages"`
	Total      int                  `json:"total"`
	Fuzzy      bool                 `json:"fuzzy"`
	Outcome    model.SearchOutcome  `json:"outcome"`
	Took       int64                `json:"took"` // microseconds
}

// PageStart returns the 1-based position of the page's first result
func (p SearchPage) PageStart() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 1
	}
	return (p.Page-1)*p.PageSize + 1
}

// CatalogueQuery is a stateless, filterable search over the collection.
type CatalogueQuery struct {
	Query    string
	Category string
	Type     string
	Page     int
	Limit    int
}

// CatalogueResult is one page of a catalogue search.
type CatalogueResult struct {
	Records    []model.ScoredRecord `json:"data"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
}

// CollectionInfo describes the current collection snapshot.
type CollectionInfo struct {
	Version  string `json:"version"`
	Records  int    `json:"records"`
	Dropped  int    `json:"dropped"`
	LoadedAt string `json:"loaded_at,omitempty"`
	Loaded   bool   `json:"loaded"`
}

// PromotionSearcher answers user-facing queries against the collection.
type PromotionSearcher interface {
	Search(ctx context.Context, userID, rawQuery string) (SearchPage, error)
	Catalogue(query CatalogueQuery) CatalogueResult
	GetLatest(n int) []model.PromotionRecord
	GetByID(id int) (model.PromotionRecord, error)
	Info() CollectionInfo
}

// CollectionLoader replaces the collection wholesale.
type CollectionLoader interface {
	Load(records []model.PromotionRecord) error
}

// Refresher re-reads the data source and reloads the collection.
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

// JobManager runs and tracks background jobs.
type JobManager interface {
	CreateJob(jobType model.JobType, metadata map[string]string) string
	ExecuteJob(jobID string, fn func(ctx context.Context, job *model.Job) error) error
	GetJob(jobID string) (*model.Job, error)
	ListJobs(status *model.JobStatus) []*model.Job
	SetJobMetadata(jobID, key, value string)
}

// AnalyticsReporter exposes the search analytics dashboard.
type AnalyticsReporter interface {
	GetDashboardData() model.AnalyticsDashboard
}
