package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/promo-search-engine/config"
	"github.com/gcbaptista/promo-search-engine/internal/lexicon"
	"github.com/gcbaptista/promo-search-engine/model"
)

const testLexicon = `
stopwords: [the, ลด, none]
synonyms:
  - key: iphone
    members: [ไอโฟน]
`

func newTestService(t *testing.T) *Service {
	t.Helper()
	lex, err := lexicon.Parse([]byte(testLexicon))
	require.NoError(t, err)
	svc, err := NewService(lex, config.DefaultSearchSettings())
	require.NoError(t, err)
	return svc
}

func ids(hits []model.ScoredRecord) []int {
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.ID
	}
	return out
}

func TestNewService_NilLexicon(t *testing.T) {
	_, err := NewService(nil, config.DefaultSearchSettings())
	assert.Error(t, err)
}

func TestScore_FieldWeights(t *testing.T) {
	lex, err := lexicon.Parse([]byte(testLexicon))
	require.NoError(t, err)

	tests := []struct {
		name        string
		record      model.PromotionRecord
		terms       []string
		wantScore   int
		wantVisible []string
	}{
		{
			name:        "title whole word",
			record:      model.PromotionRecord{Title: "iPhone 15"},
			terms:       []string{"iphone"},
			wantScore:   100,
			wantVisible: []string{"iphone"},
		},
		{
			name:        "title substring",
			record:      model.PromotionRecord{Title: "iPhones"},
			terms:       []string{"iphone"},
			wantScore:   70,
			wantVisible: []string{"iphone"},
		},
		{
			name:      "promotion type",
			record:    model.PromotionRecord{PromotionType: "Installment"},
			terms:     []string{"install"},
			wantScore: 50,
		},
		{
			name:        "description needs five runes",
			record:      model.PromotionRecord{Description: "ipad and more"},
			terms:       []string{"ipad", "ipad and"},
			wantScore:   20,
			wantVisible: []string{"ipad and"},
		},
		{
			name:      "content needs six runes",
			record:    model.PromotionRecord{Content: "macbook pro deal"},
			terms:     []string{"macbo", "macbook"},
			wantScore: 10,
		},
		{
			name:      "keyword exact match once per term",
			record:    model.PromotionRecord{Keywords: []string{"ipad", "ipad", "ipads"}},
			terms:     []string{"ipad"},
			wantScore: 25,
		},
		{
			name:      "keyword shorter than three runes ignored",
			record:    model.PromotionRecord{Keywords: []string{"ip"}},
			terms:     []string{"ip"},
			wantScore: 0,
		},
		{
			name:      "stop word keyword ignored",
			record:    model.PromotionRecord{Keywords: []string{"none"}},
			terms:     []string{"none"},
			wantScore: 0,
		},
		{
			name: "bonuses accumulate across fields",
			record: model.PromotionRecord{
				Title:         "iPhone 15 ลดราคา",
				PromotionType: "iphone promo",
				Description:   "iphone discount",
				Content:       "iphone terms",
				Keywords:      []string{"iphone"},
			},
			terms:       []string{"iphone"},
			wantScore:   100 + 50 + 20 + 10 + 25,
			wantVisible: []string{"iphone"},
		},
		{
			name:        "bonuses accumulate across terms",
			record:      model.PromotionRecord{Title: "iPhone ไอโฟน"},
			terms:       []string{"iphone", "ไอโฟน"},
			wantScore:   200,
			wantVisible: []string{"iphone", "ไอโฟน"},
		},
		{
			name:      "no match",
			record:    model.PromotionRecord{Title: "Samsung"},
			terms:     []string{"iphone"},
			wantScore: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, visible := Score(tt.record, tt.terms, lex)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantVisible, visible)
		})
	}
}

func TestSearch_EndToEndScenario(t *testing.T) {
	svc := newTestService(t)
	records := []model.PromotionRecord{
		{ID: 1, Title: "iPhone 15 ลดราคา", Keywords: []string{"iphone", "ลดราคา"}},
		{ID: 2, Title: "เครื่องซักผ้า", Keywords: []string{"เครื่องซักผ้า"}},
	}

	result := svc.Search(records, "iphone")

	require.Len(t, result.Hits, 1)
	hit := result.Hits[0]
	assert.Equal(t, 1, hit.ID)
	assert.Equal(t, 125, hit.Score)
	assert.False(t, result.Fuzzy)
	require.NotNil(t, hit.Highlight)
	assert.Equal(t, "<em>iPhone</em> 15 ลดราคา", hit.Highlight.Title)
	assert.Equal(t, "iPhone 15 ลดราคา", hit.Title, "base record must not be modified")
}

func TestSearch_RejectedQueries(t *testing.T) {
	svc := newTestService(t)
	records := []model.PromotionRecord{{ID: 1, Title: "the a b"}}

	for _, q := range []string{"", " ", "a", "The", "none"} {
		t.Run(q, func(t *testing.T) {
			result := svc.Search(records, q)
			assert.True(t, result.Empty())
			assert.Empty(t, result.Hits)
		})
	}
}

func TestSearch_StableDescendingOrder(t *testing.T) {
	svc := newTestService(t)
	records := []model.PromotionRecord{
		{ID: 1, Title: "ipad cases"},                        // whole word: 100
		{ID: 2, Title: "ipads"},                             // substring: 70
		{ID: 3, Title: "ipad", Keywords: []string{"ipad"}}, // whole word + keyword: 125
		{ID: 4, Title: "new ipad"},                          // whole word: 100
		{ID: 5, Title: "samsung"},                           // no match
	}

	result := svc.Search(records, "ipad")

	assert.Equal(t, []int{3, 1, 4, 2}, ids(result.Hits))
	for i := 1; i < len(result.Hits); i++ {
		assert.GreaterOrEqual(t, result.Hits[i-1].Score, result.Hits[i].Score)
	}
	for _, h := range result.Hits {
		assert.Greater(t, h.Score, 0)
	}
}

func TestSearch_SynonymSymmetry(t *testing.T) {
	svc := newTestService(t)
	records := []model.PromotionRecord{
		{ID: 1, Title: "iPhone 16"},
		{ID: 2, Title: "ไอโฟน 16 ผ่อน 0%"},
		{ID: 3, Title: "iPad"},
	}

	latin := svc.Search(records, "iphone")
	thai := svc.Search(records, "ไอโฟน")

	assert.ElementsMatch(t, ids(latin.Hits), ids(thai.Hits))
	assert.ElementsMatch(t, []int{1, 2}, ids(latin.Hits))
}

func TestSearch_FuzzyFallback(t *testing.T) {
	svc := newTestService(t)
	records := []model.PromotionRecord{
		{ID: 1, Title: "Apple iPhone 16"},
		{ID: 2, Title: "Samsung Galaxy"},
	}

	result := svc.Search(records, "iphne")

	require.Len(t, result.Hits, 1)
	assert.True(t, result.Fuzzy)
	assert.Equal(t, 1, result.Hits[0].ID)
	assert.Equal(t, FuzzyPoints, result.Hits[0].Score)
	require.NotNil(t, result.Hits[0].Highlight)
	assert.Equal(t, "Apple <em>iPhone</em> 16", result.Hits[0].Highlight.Title)
}

func TestSearch_FuzzySkippedWhenExactMatches(t *testing.T) {
	svc := newTestService(t)
	records := []model.PromotionRecord{
		{ID: 1, Title: "iphne typo in title"},
		{ID: 2, Title: "Apple iPhone 16"},
	}

	result := svc.Search(records, "iphne")

	assert.False(t, result.Fuzzy)
	assert.Equal(t, []int{1}, ids(result.Hits))
}

func TestSearch_FuzzyThresholdIsStrict(t *testing.T) {
	svc := newTestService(t)
	records := []model.PromotionRecord{{ID: 1, Title: "abcdx"}}

	result := svc.Search(records, "abcde")
	assert.Empty(t, result.Hits)
	assert.False(t, result.Fuzzy)
}

func TestSearch_FuzzyNeedsLongQuery(t *testing.T) {
	svc := newTestService(t)
	records := []model.PromotionRecord{{ID: 1, Title: "ipads"}}

	// four runes: too short for the fallback even though "ipod" is close to "ipads"
	result := svc.Search(records, "ipod")
	assert.Empty(t, result.Hits)
}

func TestHighlighter_Apply(t *testing.T) {
	h := Highlighter{Open: "<em>", Close: "</em>"}

	tests := []struct {
		name  string
		text  string
		terms []string
		want  string
	}{
		{"case-insensitive", "iPhone and IPHONE", []string{"iphone"}, "<em>iPhone</em> and <em>IPHONE</em>"},
		{"overlapping terms merge", "macbook air", []string{"macbook", "book air"}, "<em>macbook air</em>"},
		{"nested terms do not double wrap", "iphone", []string{"iphone", "phone"}, "<em>iphone</em>"},
		{"adjacent matches merge", "abab", []string{"ab"}, "<em>abab</em>"},
		{"thai text", "โปร ไอโฟน ลดราคา", []string{"ไอโฟน"}, "โปร <em>ไอโฟน</em> ลดราคา"},
		{"no match", "samsung", []string{"iphone"}, "samsung"},
		{"empty text", "", []string{"iphone"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.Apply(tt.text, tt.terms))
		})
	}
}
