package search

import (
	"github.com/gcbaptista/promo-search-engine/model"
)

// Filter restricts results to exact category and promotion type values.
// Empty fields match everything.
type Filter struct {
	Category      string
	PromotionType string
}

// IsZero reports whether the filter matches every record.
func (f Filter) IsZero() bool {
	return f.Category == "" && f.PromotionType == ""
}

// Matches checks if a record passes the filter
func (f Filter) Matches(rec model.PromotionRecord) bool {
	if f.Category != "" && rec.Category != f.Category {
		return false
	}
	if f.PromotionType != "" && rec.PromotionType != f.PromotionType {
		return false
	}
	return true
}

// ApplyFilter keeps the hits matching f, preserving order
func ApplyFilter(hits []model.ScoredRecord, f Filter) []model.ScoredRecord {
	if f.IsZero() {
		return hits
	}

	filtered := make([]model.ScoredRecord, 0, len(hits))
	for _, hit := range hits {
		if f.Matches(hit.PromotionRecord) {
			filtered = append(filtered, hit)
		}
	}
	return filtered
}

// Unscored wraps records as zero-score hits, for listings that bypass ranking
func Unscored(records []model.PromotionRecord) []model.ScoredRecord {
	hits := make([]model.ScoredRecord, len(records))
	for i, rec := range records {
		hits[i] = model.ScoredRecord{PromotionRecord: rec}
	}
	return hits
}
