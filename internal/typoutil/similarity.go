package typoutil

// SimilarityRatio computes the Ratcliff/Obershelp similarity of two strings:
// 2*M/T where M is the number of runes in matching blocks and T is the total
// rune count of both strings. Matching blocks are found by repeatedly taking
// the longest common substring and recursing on the unmatched sides.
// Two empty strings are identical (1.0).
func SimilarityRatio(a, b string) float64 {
	runesA := []rune(a)
	runesB := []rune(b)

	total := len(runesA) + len(runesB)
	if total == 0 {
		return 1.0
	}

	matches := countMatches(runesA, 0, len(runesA), runesB, 0, len(runesB))
	return 2.0 * float64(matches) / float64(total)
}

// countMatches sums the sizes of the matching blocks of a[alo:ahi] and b[blo:bhi].
func countMatches(a []rune, alo, ahi int, b []rune, blo, bhi int) int {
	i, j, k := longestMatch(a, alo, ahi, b, blo, bhi)
	if k == 0 {
		return 0
	}

	matches := k
	if alo < i && blo < j {
		matches += countMatches(a, alo, i, b, blo, j)
	}
	if i+k < ahi && j+k < bhi {
		matches += countMatches(a, i+k, ahi, b, j+k, bhi)
	}
	return matches
}

// longestMatch finds the longest common run of a[alo:ahi] and b[blo:bhi].
// Among equally long runs the one ending earliest in a wins, then earliest in b.
func longestMatch(a []rune, alo, ahi int, b []rune, blo, bhi int) (besti, bestj, bestSize int) {
	besti, bestj = alo, blo

	// prev[j] is the length of the common run ending at a[i-1], b[j-1]
	width := bhi - blo + 1
	prev := make([]int, width)
	curr := make([]int, width)

	for i := alo; i < ahi; i++ {
		for j := blo; j < bhi; j++ {
			col := j - blo + 1
			if a[i] != b[j] {
				curr[col] = 0
				continue
			}
			k := prev[col-1] + 1
			curr[col] = k
			if k > bestSize {
				besti, bestj, bestSize = i-k+1, j-k+1, k
			}
		}
		prev, curr = curr, prev
	}
	return besti, bestj, bestSize
}

// BestWordMatch returns the first word in words whose similarity to query
// strictly exceeds threshold. Words shorter than minWordRunes are skipped.
func BestWordMatch(query string, words []string, minWordRunes int, threshold float64) (string, float64, bool) {
	for _, w := range words {
		if len([]rune(w)) < minWordRunes {
			continue
		}
		if ratio := SimilarityRatio(query, w); ratio > threshold {
			return w, ratio, true
		}
	}
	return "", 0, false
}
