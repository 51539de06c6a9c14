package search

import (
	"strings"
	"unicode/utf8"

	"github.com/gcbaptista/promo-search-engine/internal/tokenizer"
	"github.com/gcbaptista/promo-search-engine/model"
)

// Field weights. Bonuses add up across terms and fields.
const (
	TitleSubstringPoints = 70
	TitleWholeWordPoints = 100
	TypePoints           = 50
	DescriptionPoints    = 20
	ContentPoints        = 10
	KeywordPoints        = 25
	FuzzyPoints          = 40

	MinDescriptionTermLength = 5
	MinContentTermLength     = 6
	MinKeywordLength         = 3
)

// StopwordChecker reports whether a token is a stop word
type StopwordChecker interface {
	IsStopword(term string) bool
}

// candidate caches the lowered fields of one record for the duration of a search.
type candidate struct {
	rec          model.PromotionRecord
	title        []rune
	titleLower   string
	typeLower    string
	descLower    string
	contentLower string
}

func newCandidate(rec model.PromotionRecord) *candidate {
	titleLower := tokenizer.Lower(rec.Title)
	return &candidate{
		rec:          rec,
		title:        []rune(titleLower),
		titleLower:   titleLower,
		typeLower:    tokenizer.Lower(rec.PromotionType),
		descLower:    tokenizer.Lower(rec.Description),
		contentLower: tokenizer.Lower(rec.Content),
	}
}

// scoreTerm returns the points one term earns on a record and whether the
// term matched the title or description, which makes it a highlight term.
func (c *candidate) scoreTerm(term string, stopwords StopwordChecker) (points int, visible bool) {
	termLen := utf8.RuneCountInString(term)

	if strings.Contains(c.titleLower, term) {
		visible = true
		if c.titleHasWholeWord(term) {
			points += TitleWholeWordPoints
		} else {
			points += TitleSubstringPoints
		}
	}

	if c.typeLower != "" && strings.Contains(c.typeLower, term) {
		points += TypePoints
	}

	if termLen >= MinDescriptionTermLength && strings.Contains(c.descLower, term) {
		points += DescriptionPoints
		visible = true
	}

	if termLen >= MinContentTermLength && strings.Contains(c.contentLower, term) {
		points += ContentPoints
	}

	for _, kw := range c.rec.Keywords {
		if kw != term || utf8.RuneCountInString(kw) < MinKeywordLength {
			continue
		}
		if stopwords != nil && stopwords.IsStopword(kw) {
			continue
		}
		points += KeywordPoints
		break
	}

	return points, visible
}

func (c *candidate) titleHasWholeWord(term string) bool {
	needle := []rune(term)
	for _, start := range tokenizer.Indexes(c.title, needle) {
		if tokenizer.IsWholeWord(c.title, start, start+len(needle)) {
			return true
		}
	}
	return false
}

// Score computes the relevance of rec for the term set. Terms must already be
// folded. The second result lists the terms that matched title or description.
func Score(rec model.PromotionRecord, terms []string, stopwords StopwordChecker) (int, []string) {
	return newCandidate(rec).score(terms, stopwords)
}

func (c *candidate) score(terms []string, stopwords StopwordChecker) (int, []string) {
	total := 0
	var visible []string
	for _, term := range terms {
		points, shown := c.scoreTerm(term, stopwords)
		total += points
		if shown {
			visible = append(visible, term)
		}
	}
	return total, visible
}
