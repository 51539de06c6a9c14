package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalErrors "github.com/gcbaptista/promo-search-engine/internal/errors"
	"github.com/gcbaptista/promo-search-engine/model"
)

func TestParsePageDirective(t *testing.T) {
	tests := []struct {
		raw      string
		wantPage int
		wantOK   bool
	}{
		{"page 2", 2, true},
		{"Page 2", 2, true},
		{"PAGE2", 2, true},
		{"  page   10  ", 10, true},
		{"หน้า 3", 3, true},
		{"หน้า3", 3, true},
		{"หน้า ๒", 2, true},
		{"page ๑๐", 10, true},
		{"page 0", 0, true},
		{"page 99999999999999999999999", -1, true},
		{"page", 0, false},
		{"page two", 0, false},
		{"page 2 iphone", 0, false},
		{"next page 2", 0, false},
		{"iphone", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			page, ok := ParsePageDirective(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPage, page)
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 12))
	assert.Equal(t, 1, TotalPages(1, 12))
	assert.Equal(t, 1, TotalPages(12, 12))
	assert.Equal(t, 2, TotalPages(13, 12))
	assert.Equal(t, 0, TotalPages(5, 0))
}

func TestPaginate(t *testing.T) {
	results := make([]model.ScoredRecord, 5)
	for i := range results {
		results[i] = model.ScoredRecord{PromotionRecord: model.PromotionRecord{ID: i + 1}, Score: 10}
	}

	page, total, err := paginate(results, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 3, page[0].ID)
	assert.Equal(t, 4, page[1].ID)

	page, _, err = paginate(results, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	for _, p := range []int{-1, 0, 4} {
		_, _, err = paginate(results, p, 2)
		assert.True(t, errors.Is(err, internalErrors.ErrPageOutOfRange), "page %d", p)
	}

	_, total, err = paginate(nil, 1, 12)
	assert.Error(t, err)
	assert.Equal(t, 0, total)
}
