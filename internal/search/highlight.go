package search

import (
	"sort"
	"strings"

	"github.com/gcbaptista/promo-search-engine/internal/tokenizer"
)

type span struct {
	start, end int
}

// Highlighter wraps matched terms in open/close markers
type Highlighter struct {
	Open  string
	Close string
}

// Apply marks every case-insensitive occurrence of terms in text. Overlapping
// and adjacent matches are merged first so markers are never nested.
func (h Highlighter) Apply(text string, terms []string) string {
	if text == "" || len(terms) == 0 {
		return text
	}

	original := []rune(text)
	lowered := []rune(tokenizer.Lower(text))

	var spans []span
	for _, term := range terms {
		needle := []rune(tokenizer.Lower(term))
		for _, start := range tokenizer.Indexes(lowered, needle) {
			spans = append(spans, span{start: start, end: start + len(needle)})
		}
	}
	if len(spans) == 0 {
		return text
	}

	merged := mergeSpans(spans)

	var b strings.Builder
	b.Grow(len(text) + len(merged)*(len(h.Open)+len(h.Close)))
	pos := 0
	for _, s := range merged {
		b.WriteString(string(original[pos:s.start]))
		b.WriteString(h.Open)
		b.WriteString(string(original[s.start:s.end]))
		b.WriteString(h.Close)
		pos = s.end
	}
	b.WriteString(string(original[pos:]))
	return b.String()
}

func mergeSpans(spans []span) []span {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	merged := []span{spans[0]}
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.start <= last.end {
			if s.end > last.end {
				last.end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}
