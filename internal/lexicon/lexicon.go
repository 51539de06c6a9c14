// Package lexicon holds the stop words and synonym groups used to turn a raw
// user query into the set of terms that drive scoring.
package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// MinQueryLength is the shortest normalized query, in runes, that is searched.
const MinQueryLength = 2

//go:embed default_lexicon.yaml
var defaultLexiconYAML []byte

// SynonymGroup is one canonical term and its equivalents. Lookup is symmetric:
// the key and every member all expand to the full group.
type SynonymGroup struct {
	Key     string   `yaml:"key"`
	Members []string `yaml:"members"`
}

// Terms returns the key followed by its members.
func (g SynonymGroup) Terms() []string {
	terms := make([]string, 0, len(g.Members)+1)
	terms = append(terms, g.Key)
	return append(terms, g.Members...)
}

type document struct {
	Stopwords []string       `yaml:"stopwords"`
	Synonyms  []SynonymGroup `yaml:"synonyms"`
}

// Lexicon is an immutable stop-word set and synonym table. It is safe for
// concurrent use once built.
type Lexicon struct {
	stopwords map[string]struct{}
	groups    [][]string
	index     map[string][]int // term -> indexes into groups, in table order
}

// Parse builds a Lexicon from its YAML form.
func Parse(data []byte) (*Lexicon, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	return build(doc)
}

// LoadFile reads a YAML lexicon from disk.
func LoadFile(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the lexicon embedded in the binary.
func Default() *Lexicon {
	lex, err := Parse(defaultLexiconYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded lexicon is invalid: %v", err))
	}
	return lex
}

// Load returns the lexicon at path, or the embedded default when path is empty.
func Load(path string) (*Lexicon, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

func build(doc document) (*Lexicon, error) {
	lex := &Lexicon{
		stopwords: make(map[string]struct{}, len(doc.Stopwords)),
		index:     make(map[string][]int),
	}

	for _, w := range doc.Stopwords {
		w = Fold(w)
		if w == "" {
			continue
		}
		lex.stopwords[w] = struct{}{}
	}

	for i, g := range doc.Synonyms {
		key := Fold(g.Key)
		if key == "" {
			return nil, fmt.Errorf("synonym group %d has an empty key", i)
		}

		var terms []string
		seen := make(map[string]bool)
		for _, t := range append([]string{g.Key}, g.Members...) {
			t = Fold(t)
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			terms = append(terms, t)
		}

		groupIdx := len(lex.groups)
		lex.groups = append(lex.groups, terms)
		for _, t := range terms {
			lex.index[t] = append(lex.index[t], groupIdx)
		}
	}

	return lex, nil
}

// Fold puts text into the canonical comparison form: NFC, lowercased, trimmed.
func Fold(s string) string {
	return strings.TrimSpace(strings.ToLower(norm.NFC.String(s)))
}

// IsStopword reports whether the folded term is a stop word.
func (l *Lexicon) IsStopword(term string) bool {
	_, ok := l.stopwords[Fold(term)]
	return ok
}

// Synonyms returns the union of every group containing term, in table order,
// or nil when term is in no group.
func (l *Lexicon) Synonyms(term string) []string {
	groups := l.index[Fold(term)]
	if len(groups) == 0 {
		return nil
	}
	var out []string
	for _, gi := range groups {
		out = append(out, l.groups[gi]...)
	}
	return out
}

// Normalize turns a raw query into its term set. The first term is always the
// folded query itself. A nil result means the query should not be searched:
// it is shorter than MinQueryLength runes or is a stop word.
func (l *Lexicon) Normalize(raw string) []string {
	query := Fold(raw)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil
	}
	if _, stop := l.stopwords[query]; stop {
		return nil
	}

	terms := []string{query}
	seen := map[string]bool{query: true}
	for _, t := range l.Synonyms(query) {
		if seen[t] {
			continue
		}
		seen[t] = true
		terms = append(terms, t)
	}
	return terms
}

// Stats reports table sizes, used for startup logging.
func (l *Lexicon) Stats() (stopwords, groups int) {
	return len(l.stopwords), len(l.groups)
}
