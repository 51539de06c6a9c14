package typoutil

import (
	"math"
	"testing"
)

func TestSimilarityRatio(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"both empty", "", "", 1.0},
		{"one empty", "", "hello", 0.0},
		{"identical", "iphone", "iphone", 1.0},
		{"missing letter", "iphne", "iphone", 10.0 / 11.0},
		{"boundary substitution", "abcde", "abcdx", 0.8},
		{"transposition", "macbok", "macbook", 12.0 / 13.0},
		{"nothing shared", "abc", "xyz", 0.0},
		{"classic example", "abcd", "bcde", 0.75},
		{"thai runes", "ไอโฟน", "ไอโฟม", 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SimilarityRatio(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("SimilarityRatio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarityRatioIsSymmetricForSimpleWords(t *testing.T) {
	pairs := [][2]string{{"iphne", "iphone"}, {"airpod", "airpods"}, {"samsng", "samsung"}}
	for _, p := range pairs {
		if SimilarityRatio(p[0], p[1]) != SimilarityRatio(p[1], p[0]) {
			t.Errorf("SimilarityRatio not symmetric for %q/%q", p[0], p[1])
		}
	}
}

func TestBestWordMatch(t *testing.T) {
	words := []string{"ลด", "iPad", "iphone", "iphones"}

	word, ratio, ok := BestWordMatch("iphne", words, 5, 0.8)
	if !ok || word != "iphone" {
		t.Fatalf("BestWordMatch() = %q, %v, %v; want first qualifying word iphone", word, ratio, ok)
	}

	// exactly at the threshold does not qualify
	if _, _, ok := BestWordMatch("abcde", []string{"abcdx"}, 5, 0.8); ok {
		t.Error("BestWordMatch() matched a word at exactly the threshold")
	}

	// words shorter than the minimum are never compared
	if _, _, ok := BestWordMatch("ipad", []string{"ipad"}, 5, 0.8); ok {
		t.Error("BestWordMatch() compared a word below the minimum length")
	}
}
