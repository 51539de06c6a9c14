package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	internalErrors "github.com/gcbaptista/promo-search-engine/internal/errors"
	"github.com/gcbaptista/promo-search-engine/internal/search"
	"github.com/gcbaptista/promo-search-engine/internal/session"
	"github.com/gcbaptista/promo-search-engine/model"
	"github.com/gcbaptista/promo-search-engine/services"
)

// catalogueLatest is how many records an unfiltered catalogue lists
const catalogueLatest = 100

// Search answers one chat-style request for userID. A page directive re-slices
// the user's stored results; anything else is ranked against the collection
// and replaces the stored results. Empty and stop-word queries return an empty
// page with OutcomeEmptyQuery and leave the session alone.
//
// Errors: NoActiveSessionError when paging without a session,
// PageOutOfRangeError when the page does not exist.
func (e *Engine) Search(ctx context.Context, userID, rawQuery string) (services.SearchPage, error) {
	if strings.TrimSpace(userID) == "" {
		return services.SearchPage{}, internalErrors.NewValidationError("user_id", "user ID cannot be empty")
	}

	start := time.Now()
	var (
		page services.SearchPage
		err  error
	)
	if n, ok := ParsePageDirective(rawQuery); ok {
		page, err = e.searchPage(ctx, userID, n)
	} else {
		page, err = e.searchNew(ctx, userID, rawQuery)
	}
	took := time.Since(start)
	page.Took = took.Microseconds()

	e.record(rawQuery, page, took)
	return page, err
}

func (e *Engine) searchPage(ctx context.Context, userID string, n int) (services.SearchPage, error) {
	entry, ok, err := e.sessions.Get(ctx, userID)
	if err != nil {
		return services.SearchPage{}, fmt.Errorf("failed to read session for user %s: %w", userID, err)
	}
	if !ok {
		return services.SearchPage{Outcome: model.OutcomeNoActiveSession}, internalErrors.NewNoActiveSessionError(userID)
	}

	page := services.SearchPage{
		Query:    entry.Query,
		QueryID:  entry.QueryID,
		Page:     n,
		PageSize: e.settings.PageSize,
		Total:    len(entry.Results),
		Outcome:  model.OutcomePage,
	}
	results, totalPages, err := paginate(entry.Results, n, e.settings.PageSize)
	page.TotalPages = totalPages
	if err != nil {
		page.Outcome = model.OutcomePageOutOfRange
		page.Results = []model.ScoredRecord{}
		return page, err
	}
	page.Results = results
	return page, nil
}

func (e *Engine) searchNew(ctx context.Context, userID, rawQuery string) (services.SearchPage, error) {
	snap := e.collection.Snapshot()
	result := e.searcher.Search(snap.Records, rawQuery)
	if result.Empty() {
		return services.SearchPage{Results: []model.ScoredRecord{}, Outcome: model.OutcomeEmptyQuery}, nil
	}

	entry := session.Entry{
		UserID:  userID,
		Query:   result.Query,
		QueryID: uuid.NewString(),
		Results: result.Hits,
	}
	if err := e.sessions.Put(ctx, entry); err != nil {
		return services.SearchPage{}, fmt.Errorf("failed to store session for user %s: %w", userID, err)
	}
	e.metrics.SetSessionEntries(e.ActiveSessions())

	page := services.SearchPage{
		Query:      result.Query,
		QueryID:    entry.QueryID,
		Page:       1,
		PageSize:   e.settings.PageSize,
		Total:      len(result.Hits),
		TotalPages: TotalPages(len(result.Hits), e.settings.PageSize),
		Fuzzy:      result.Fuzzy,
		Outcome:    model.OutcomeResults,
		Results:    []model.ScoredRecord{},
	}
	if page.Total == 0 {
		page.Outcome = model.OutcomeNoResults
		return page, nil
	}

	results, _, err := paginate(result.Hits, 1, e.settings.PageSize)
	if err != nil {
		return page, err
	}
	page.Results = results
	return page, nil
}

func (e *Engine) record(rawQuery string, page services.SearchPage, took time.Duration) {
	if page.Outcome == "" {
		return
	}
	e.metrics.ObserveSearch(string(page.Outcome), took)

	log.WithFields(log.Fields{
		"query":   rawQuery,
		"outcome": page.Outcome,
		"results": len(page.Results),
		"took_us": page.Took,
	}).Debug("search handled")

	if e.tracker == nil {
		return
	}
	query := page.Query
	if page.Outcome == model.OutcomePage || page.Outcome == model.OutcomePageOutOfRange || page.Outcome == model.OutcomeNoActiveSession {
		query = strings.TrimSpace(rawQuery)
	}
	e.tracker.TrackSearchEvent(model.SearchEvent{
		Query:        query,
		Outcome:      page.Outcome,
		Fuzzy:        page.Fuzzy,
		ResponseTime: took,
		ResultCount:  page.Total,
	})
}

// Catalogue runs a stateless search with optional exact category and type
// filters. Without a query the filters apply to the whole collection; without
// a query or filters it lists the latest records. Pages past the end are empty.
func (e *Engine) Catalogue(q services.CatalogueQuery) services.CatalogueResult {
	if q.Limit <= 0 {
		q.Limit = e.settings.CatalogueLimit
	}
	if q.Page <= 0 {
		q.Page = 1
	}

	snap := e.collection.Snapshot()
	filter := search.Filter{Category: q.Category, PromotionType: q.Type}

	var hits []model.ScoredRecord
	switch {
	case strings.TrimSpace(q.Query) != "":
		hits = search.ApplyFilter(e.searcher.Search(snap.Records, q.Query).Hits, filter)
	case filter.IsZero():
		hits = search.Unscored(snap.Latest(catalogueLatest))
	default:
		hits = search.ApplyFilter(search.Unscored(snap.Records), filter)
	}

	result := services.CatalogueResult{
		Total:      len(hits),
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: TotalPages(len(hits), q.Limit),
		Records:    []model.ScoredRecord{},
	}
	if records, _, err := paginate(hits, q.Page, q.Limit); err == nil {
		result.Records = records
	}
	return result
}
