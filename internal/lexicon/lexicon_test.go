package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLexicon = `
stopwords: [the, สวัสดี, None]
synonyms:
  - key: iphone
    members: [ไอโฟน, IPhone]
  - key: apple
    members: [แอปเปิ้ล, iphone]
  - key: มกราคม
    members: [ม.ค.]
`

func newTestLexicon(t *testing.T) *Lexicon {
	t.Helper()
	lex, err := Parse([]byte(testLexicon))
	require.NoError(t, err)
	return lex
}

func TestNormalize(t *testing.T) {
	lex := newTestLexicon(t)

	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{"empty query", "", nil},
		{"whitespace only", "   ", nil},
		{"single rune", "a", nil},
		{"single thai rune after trim", " ก ", nil},
		{"two runes searched", "ab", []string{"ab"}},
		{"stop word", "The", nil},
		{"thai stop word", "สวัสดี", nil},
		{"null-like token", "NONE", nil},
		{"stop word inside a longer query is kept", "the iphone", []string{"the iphone"}},
		{"no synonyms", "samsung", []string{"samsung"}},
		{"key expands to its groups", "iphone", []string{"iphone", "ไอโฟน", "apple", "แอปเปิ้ล"}},
		{"member expands to its group", "ไอโฟน", []string{"ไอโฟน", "iphone"}},
		{"abbreviation", "ม.ค.", []string{"ม.ค.", "มกราคม"}},
		{"case and padding folded", "  IPHONE ", []string{"iphone", "ไอโฟน", "apple", "แอปเปิ้ล"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, lex.Normalize(tt.raw))
		})
	}
}

func TestNormalize_SymmetricGroups(t *testing.T) {
	lex := newTestLexicon(t)

	a := lex.Normalize("มกราคม")
	b := lex.Normalize("ม.ค.")
	assert.ElementsMatch(t, a, b)
}

func TestParse_DeduplicatesMembers(t *testing.T) {
	lex := newTestLexicon(t)
	// "IPhone" folds onto the key and must not appear twice
	assert.Equal(t, []string{"iphone", "ไอโฟน", "iphone", "apple", "แอปเปิ้ล"}, lex.Synonyms("iphone"))
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("synonyms: [{key: '', members: [x]}]"))
	assert.Error(t, err)

	_, err = Parse([]byte("stopwords: {not: a list}"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	lex := Default()

	stopwords, groups := lex.Stats()
	assert.Greater(t, stopwords, 0)
	assert.Greater(t, groups, 0)

	assert.True(t, lex.IsStopword("undefined"))
	assert.True(t, lex.IsStopword("สวัสดีครับ"))
	assert.ElementsMatch(t, lex.Normalize("iphone"), lex.Normalize("ไอโฟน"))
}

func TestLoad(t *testing.T) {
	lex, err := Load("")
	require.NoError(t, err)
	assert.NotNil(t, lex)

	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testLexicon), 0o644))

	lex, err = Load(path)
	require.NoError(t, err)
	assert.True(t, lex.IsStopword("the"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
