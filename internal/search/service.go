package search

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/gcbaptista/promo-search-engine/config"
	"github.com/gcbaptista/promo-search-engine/internal/lexicon"
	"github.com/gcbaptista/promo-search-engine/internal/tokenizer"
	"github.com/gcbaptista/promo-search-engine/internal/typoutil"
	"github.com/gcbaptista/promo-search-engine/model"
)

// Result is the outcome of ranking one query over a collection.
type Result struct {
	Query string   // Folded query, empty when the query was rejected
	Terms []string // Synonym-expanded term set
	Hits  []model.ScoredRecord
	Fuzzy bool // Hits came from the typo fallback
}

// Empty reports whether the query was rejected before scoring.
func (r Result) Empty() bool {
	return len(r.Terms) == 0
}

// Service ranks promotion records for a query.
// It is stateless and safe for concurrent use.
type Service struct {
	lexicon     *lexicon.Lexicon
	settings    config.SearchSettings
	highlighter Highlighter
}

// NewService creates a new search Service.
func NewService(lex *lexicon.Lexicon, settings config.SearchSettings) (*Service, error) {
	if lex == nil {
		return nil, fmt.Errorf("lexicon cannot be nil")
	}
	settings.ApplyDefaults()
	if problems := settings.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid search settings: %v", problems)
	}

	return &Service{
		lexicon:     lex,
		settings:    settings,
		highlighter: Highlighter{Open: settings.HighlightOpen, Close: settings.HighlightClose},
	}, nil
}

// Lexicon returns the lexicon used for normalization.
func (s *Service) Lexicon() *lexicon.Lexicon {
	return s.lexicon
}

// Search normalizes rawQuery and ranks records by descending score. Ties keep
// the input order. Records scoring zero are never returned.
func (s *Service) Search(records []model.PromotionRecord, rawQuery string) Result {
	terms := s.lexicon.Normalize(rawQuery)
	if len(terms) == 0 {
		return Result{Hits: []model.ScoredRecord{}}
	}

	result := Result{Query: terms[0], Terms: terms}

	candidates := make([]*candidate, len(records))
	hits := make([]model.ScoredRecord, 0)
	for i, rec := range records {
		c := newCandidate(rec)
		candidates[i] = c

		score, visible := c.score(terms, s.lexicon)
		if score == 0 {
			continue
		}
		hits = append(hits, s.scored(rec, score, visible))
	}

	if len(hits) == 0 && utf8.RuneCountInString(result.Query) >= s.settings.FuzzyMinQueryLength {
		hits = s.fuzzy(candidates, result.Query)
		result.Fuzzy = len(hits) > 0
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	result.Hits = hits
	return result
}

// fuzzy awards the typo bonus to records with a title word close to query.
// The first qualifying word of each title wins and becomes its highlight term.
func (s *Service) fuzzy(candidates []*candidate, query string) []model.ScoredRecord {
	hits := make([]model.ScoredRecord, 0)
	for _, c := range candidates {
		word, _, ok := typoutil.BestWordMatch(query, tokenizer.Words(c.titleLower), s.settings.FuzzyMinWordLength, s.settings.FuzzyThreshold)
		if !ok {
			continue
		}
		hits = append(hits, s.scored(c.rec, FuzzyPoints, []string{word}))
	}
	return hits
}

func (s *Service) scored(rec model.PromotionRecord, score int, visible []string) model.ScoredRecord {
	hit := model.ScoredRecord{PromotionRecord: rec, Score: score}
	if len(visible) > 0 {
		hit.Highlight = &model.Highlight{
			Title:       s.highlighter.Apply(rec.Title, visible),
			Description: s.highlighter.Apply(rec.Description, visible),
		}
	}
	return hit
}
