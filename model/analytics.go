package model

import "time"

// SearchOutcome classifies how a search request ended
type SearchOutcome string

const (
	OutcomeResults         SearchOutcome = "results"
	OutcomeNoResults       SearchOutcome = "no_results"
	OutcomeEmptyQuery      SearchOutcome = "empty_query"
	OutcomePage            SearchOutcome = "page"
	OutcomeNoActiveSession SearchOutcome = "no_active_session"
	OutcomePageOutOfRange  SearchOutcome = "page_out_of_range"
)

// SearchEvent represents a single search event for analytics tracking
type SearchEvent struct {
	Query        string        `json:"query"`
	Outcome      SearchOutcome `json:"outcome"`
	Fuzzy        bool          `json:"fuzzy"`          // Results came from the typo fallback
	ResponseTime time.Duration `json:"response_time"`
	ResultCount  int           `json:"result_count"`
	Timestamp    time.Time     `json:"timestamp"`
}

// PopularSearch represents aggregated data for popular search terms
type PopularSearch struct {
	Query       string `json:"query"`
	SearchCount int    `json:"search_count"`
}

// ResponseTimeDistribution represents response time distribution buckets
type ResponseTimeDistribution struct {
	Bucket0To1ms   int `json:"bucket_0_1ms"`
	Bucket1To5ms   int `json:"bucket_1_5ms"`
	Bucket5To25ms  int `json:"bucket_5_25ms"`
	Bucket25msPlus int `json:"bucket_25ms_plus"`
}

// OutcomeStats counts searches per outcome
type OutcomeStats map[SearchOutcome]int

// AnalyticsDashboard represents the complete analytics dashboard data
type AnalyticsDashboard struct {
	TotalSearches     int   `json:"total_searches"`
	AvgResponseTimeUs int64 `json:"avg_response_time_us"`
	FuzzySearches     int   `json:"fuzzy_searches"`
	TotalPromotions   int   `json:"total_promotions"`
	ActiveSessions    int   `json:"active_sessions"`

	PopularSearches          []PopularSearch          `json:"popular_searches"`
	ZeroResultSearches       []PopularSearch          `json:"zero_result_searches"`
	Outcomes                 OutcomeStats             `json:"outcomes"`
	ResponseTimeDistribution ResponseTimeDistribution `json:"response_time_distribution"`
}
