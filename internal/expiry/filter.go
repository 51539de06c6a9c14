// Package expiry decides which promotion records are stale and must never
// enter the searchable collection.
package expiry

import (
	"strconv"
	"strings"
	"time"

	"github.com/gcbaptista/promo-search-engine/model"
)

// ExpiredLabel is the duration label the data producer emits for finished promotions.
const ExpiredLabel = "หมดอายุแล้ว"

// BuddhistEraOffset converts a Gregorian year to the Thai Buddhist calendar.
const BuddhistEraOffset = 543

var thaiDigits = [10]rune{'๐', '๑', '๒', '๓', '๔', '๕', '๖', '๗', '๘', '๙'}

// Clock returns the current time.
type Clock func() time.Time

// Filter tests records against the expiry heuristic. The stale-year set is
// computed once at construction, so a Filter should be rebuilt per load.
type Filter struct {
	now        time.Time
	floor      int
	staleYears []string
}

// NewFilter builds a filter for the current year reported by clock. Every
// year from floor up to but excluding the current year is stale.
func NewFilter(clock Clock, floor int) *Filter {
	if clock == nil {
		clock = time.Now
	}
	now := clock()
	f := &Filter{now: now, floor: floor}
	f.staleYears = StaleYearTokens(floor, now.Year())
	return f
}

// StaleYearTokens lists every Gregorian and Buddhist-era year in
// [floor, currentYear) in Arabic and Thai digits.
func StaleYearTokens(floor, currentYear int) []string {
	var tokens []string
	for y := floor; y < currentYear; y++ {
		for _, year := range []int{y, y + BuddhistEraOffset} {
			arabic := strconv.Itoa(year)
			tokens = append(tokens, arabic, ToThaiDigits(arabic))
		}
	}
	return tokens
}

// ToThaiDigits replaces ASCII digits with Thai digits.
func ToThaiDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(thaiDigits[r-'0'])
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FromThaiDigits replaces Thai digits with ASCII digits.
func FromThaiDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= thaiDigits[0] && r <= thaiDigits[9] {
			return '0' + (r - thaiDigits[0])
		}
		return r
	}, s)
}

// IsExpired reports whether the record carries the expired label or mentions
// a stale year in its title or description.
func (f *Filter) IsExpired(rec model.PromotionRecord) bool {
	if strings.Contains(rec.DurationLabel, ExpiredLabel) {
		return true
	}
	for _, year := range f.staleYears {
		if strings.Contains(rec.Title, year) || strings.Contains(rec.Description, year) {
			return true
		}
	}
	return false
}

// Apply returns the records that are not expired, preserving order, and the
// number that were dropped.
func (f *Filter) Apply(records []model.PromotionRecord) ([]model.PromotionRecord, int) {
	kept := make([]model.PromotionRecord, 0, len(records))
	for _, rec := range records {
		if f.IsExpired(rec) {
			continue
		}
		kept = append(kept, rec)
	}
	return kept, len(records) - len(kept)
}

// CurrentYear is the Gregorian year the filter was built for.
func (f *Filter) CurrentYear() int {
	return f.now.Year()
}
