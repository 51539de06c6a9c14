// Package config provides configuration structures for the promotion search engine.
// It defines search settings, session settings, and the application configuration
// loaded from file and environment.
package config

import (
	"fmt"
	"strings"
)

// Default search settings
const (
	DefaultPageSize            = 12
	DefaultCatalogueLimit      = 20
	DefaultLatestCount         = 5
	DefaultStaleYearFloor      = 2015
	DefaultFuzzyThreshold      = 0.8
	DefaultFuzzyMinQueryLength = 5
	DefaultFuzzyMinWordLength  = 5
	DefaultHighlightOpen       = "<em>"
	DefaultHighlightClose      = "</em>"
)

// SearchSettings contains the tunables of the relevance engine.
//
// The scoring weights themselves are fixed; these settings cover paging,
// the expiry heuristic and the typo fallback.
type SearchSettings struct {
	PageSize            int     `mapstructure:"page_size" json:"page_size"`                           // Results per session page
	CatalogueLimit      int     `mapstructure:"catalogue_limit" json:"catalogue_limit"`               // Default limit for stateless catalogue search
	LatestCount         int     `mapstructure:"latest_count" json:"latest_count"`                     // Default n for latest listings
	StaleYearFloor      int     `mapstructure:"stale_year_floor" json:"stale_year_floor"`             // First Gregorian year treated as a stale marker
	FuzzyThreshold      float64 `mapstructure:"fuzzy_threshold" json:"fuzzy_threshold"`               // Similarity ratio a title word must exceed
	FuzzyMinQueryLength int     `mapstructure:"fuzzy_min_query_length" json:"fuzzy_min_query_length"` // Minimum query length (runes) for the fallback
	FuzzyMinWordLength  int     `mapstructure:"fuzzy_min_word_length" json:"fuzzy_min_word_length"`   // Minimum title word length (runes) compared
	HighlightOpen       string  `mapstructure:"highlight_open" json:"highlight_open"`
	HighlightClose      string  `mapstructure:"highlight_close" json:"highlight_close"`
	LexiconFile         string  `mapstructure:"lexicon_file" json:"lexicon_file"` // Optional YAML lexicon; the embedded default is used when empty
}

// DefaultSearchSettings returns settings with every default applied.
func DefaultSearchSettings() SearchSettings {
	var s SearchSettings
	s.ApplyDefaults()
	return s
}

// ApplyDefaults applies default values to unset search settings
func (s *SearchSettings) ApplyDefaults() {
	if s.PageSize <= 0 {
		s.PageSize = DefaultPageSize
	}
	if s.CatalogueLimit <= 0 {
		s.CatalogueLimit = DefaultCatalogueLimit
	}
	if s.LatestCount <= 0 {
		s.LatestCount = DefaultLatestCount
	}
	if s.StaleYearFloor <= 0 {
		s.StaleYearFloor = DefaultStaleYearFloor
	}
	if s.FuzzyThreshold == 0 {
		s.FuzzyThreshold = DefaultFuzzyThreshold
	}
	if s.FuzzyMinQueryLength <= 0 {
		s.FuzzyMinQueryLength = DefaultFuzzyMinQueryLength
	}
	if s.FuzzyMinWordLength <= 0 {
		s.FuzzyMinWordLength = DefaultFuzzyMinWordLength
	}
	if s.HighlightOpen == "" && s.HighlightClose == "" {
		s.HighlightOpen = DefaultHighlightOpen
		s.HighlightClose = DefaultHighlightClose
	}
}

// Validate checks the settings and returns a list of problems, empty when valid.
func (s *SearchSettings) Validate() []string {
	var problems []string

	if s.PageSize <= 0 {
		problems = append(problems, "page_size must be greater than zero")
	}
	if s.CatalogueLimit <= 0 {
		problems = append(problems, "catalogue_limit must be greater than zero")
	}
	if s.FuzzyThreshold <= 0 || s.FuzzyThreshold >= 1 {
		problems = append(problems, fmt.Sprintf("fuzzy_threshold must be between 0 and 1 (exclusive), got %v", s.FuzzyThreshold))
	}
	if s.StaleYearFloor < 1900 {
		problems = append(problems, fmt.Sprintf("stale_year_floor %d is implausibly early", s.StaleYearFloor))
	}
	if (s.HighlightOpen == "") != (s.HighlightClose == "") {
		problems = append(problems, "highlight_open and highlight_close must be set together")
	}
	if strings.TrimSpace(s.LexiconFile) != s.LexiconFile {
		problems = append(problems, "lexicon_file must not have surrounding whitespace")
	}

	return problems
}
