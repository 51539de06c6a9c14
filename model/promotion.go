package model

import "strings"

// Attachment is a downloadable file linked from a promotion.
type Attachment struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// PromotionRecord is a single promotional offer as produced by the data source.
// Records are immutable once loaded into a collection; every text field may be
// empty and a missing field behaves exactly like an empty one.
type PromotionRecord struct {
	ID            int          `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Content       string       `json:"content"`
	Link          string       `json:"link,omitempty"`
	Category      string       `json:"category,omitempty"`
	PromotionType string       `json:"promotion_type"`
	DurationLabel string       `json:"duration"`
	StartDate     string       `json:"start_date"`
	EndDate       string       `json:"end_date"`
	Keywords      []string     `json:"keywords"`
	Attachments   []Attachment `json:"attachments"`
}

// DisplayContent returns the content, falling back to the description.
func (r PromotionRecord) DisplayContent() string {
	if strings.TrimSpace(r.Content) != "" {
		return r.Content
	}
	return r.Description
}

// HasKeyword reports whether kw is one of the record's keywords.
// Keywords are lowercased at load time so the comparison is exact.
func (r PromotionRecord) HasKeyword(kw string) bool {
	for _, k := range r.Keywords {
		if k == kw {
			return true
		}
	}
	return false
}

// Highlight holds the emphasized versions of the title and description.
type Highlight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ScoredRecord is a record returned by a query together with its relevance score.
// The embedded record is never modified; emphasis lives in Highlight.
type ScoredRecord struct {
	PromotionRecord
	Score     int        `json:"score"`
	Highlight *Highlight `json:"highlight,omitempty"`
}
