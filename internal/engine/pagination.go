package engine

import (
	"regexp"
	"strconv"
	"strings"

	internalErrors "github.com/gcbaptista/promo-search-engine/internal/errors"
	"github.com/gcbaptista/promo-search-engine/internal/expiry"
	"github.com/gcbaptista/promo-search-engine/model"
)

// pageDirective matches "page 2", "Page2", "หน้า 3". Thai digits are mapped
// to ASCII before matching.
var pageDirective = regexp.MustCompile(`(?i)^(?:page|หน้า)\s*(\d+)$`)

// ParsePageDirective reports whether raw asks for a page of the previous search.
func ParsePageDirective(raw string) (int, bool) {
	m := pageDirective.FindStringSubmatch(expiry.FromThaiDigits(strings.TrimSpace(raw)))
	if m == nil {
		return 0, false
	}
	page, err := strconv.Atoi(m[1])
	if err != nil {
		// Overflowing digit runs are still a directive, just an impossible page
		return -1, true
	}
	return page, true
}

// TotalPages returns the number of pages needed for total results.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// paginate returns a copy of the 1-based page of results.
func paginate(results []model.ScoredRecord, page, pageSize int) ([]model.ScoredRecord, int, error) {
	totalPages := TotalPages(len(results), pageSize)
	if page < 1 || page > totalPages {
		return nil, totalPages, internalErrors.NewPageOutOfRangeError(page, totalPages)
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(results) {
		end = len(results)
	}

	out := make([]model.ScoredRecord, end-start)
	copy(out, results[start:end])
	return out, totalPages, nil
}
