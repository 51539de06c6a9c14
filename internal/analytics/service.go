package analytics

import (
	"errors"
	"os"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gcbaptista/promo-search-engine/internal/persistence"
	"github.com/gcbaptista/promo-search-engine/model"
)

const (
	// DefaultMaxEvents keeps the last 10k events for performance
	DefaultMaxEvents = 10000
	topQueries       = 10
)

// StatsProvider reports live counts shown on the dashboard
type StatsProvider interface {
	CollectionSize() int
	ActiveSessions() int
}

// Service implements analytics tracking and reporting
type Service struct {
	mutex        sync.RWMutex
	saveMutex    sync.Mutex
	events       []model.SearchEvent
	maxEvents    int
	stats        StatsProvider
	dataFilePath string
	now          func() time.Time
}

// NewService creates a new analytics service. When dataFilePath is set,
// previously saved events are loaded and new ones are persisted there.
func NewService(stats StatsProvider, maxEvents int, dataFilePath string) *Service {
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	service := &Service{
		events:       make([]model.SearchEvent, 0),
		maxEvents:    maxEvents,
		stats:        stats,
		dataFilePath: dataFilePath,
		now:          time.Now,
	}

	if dataFilePath != "" {
		if err := service.loadData(); err != nil {
			log.Warnf("failed to load analytics data: %v", err)
		}
	}

	return service
}

// SetStatsProvider wires the live counts after construction, for callers
// that build the engine after the analytics service.
func (s *Service) SetStatsProvider(stats StatsProvider) {
	s.mutex.Lock()
	s.stats = stats
	s.mutex.Unlock()
}

// TrackSearchEvent records a new search event
func (s *Service) TrackSearchEvent(event model.SearchEvent) {
	s.mutex.Lock()
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	s.events = append(s.events, event)

	// Keep only the latest events to prevent unbounded growth
	if len(s.events) > s.maxEvents {
		s.events = s.events[len(s.events)-s.maxEvents:]
	}
	s.mutex.Unlock()
}

// Len returns the number of retained events.
func (s *Service) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.events)
}

// GetDashboardData returns analytics for the last 24 hours
func (s *Service) GetDashboardData() model.AnalyticsDashboard {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	last24h := s.filterEventsByTime(s.events, s.now().Add(-24*time.Hour))

	dashboard := model.AnalyticsDashboard{
		TotalSearches:            len(last24h),
		AvgResponseTimeUs:        calculateAvgResponseTime(last24h),
		FuzzySearches:            countFuzzy(last24h),
		PopularSearches:          popularSearches(last24h, nil),
		ZeroResultSearches:       popularSearches(last24h, isZeroResult),
		Outcomes:                 outcomeStats(last24h),
		ResponseTimeDistribution: responseTimeDistribution(last24h),
	}
	if s.stats != nil {
		dashboard.TotalPromotions = s.stats.CollectionSize()
		dashboard.ActiveSessions = s.stats.ActiveSessions()
	}
	return dashboard
}

func (s *Service) filterEventsByTime(events []model.SearchEvent, after time.Time) []model.SearchEvent {
	filtered := make([]model.SearchEvent, 0, len(events))
	for _, event := range events {
		if event.Timestamp.After(after) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

func calculateAvgResponseTime(events []model.SearchEvent) int64 {
	if len(events) == 0 {
		return 0
	}
	var total time.Duration
	for _, event := range events {
		total += event.ResponseTime
	}
	return (total / time.Duration(len(events))).Microseconds()
}

func countFuzzy(events []model.SearchEvent) int {
	n := 0
	for _, event := range events {
		if event.Fuzzy {
			n++
		}
	}
	return n
}

func isZeroResult(event model.SearchEvent) bool {
	return event.Outcome == model.OutcomeNoResults
}

// popularSearches ranks new queries (page directives excluded) by frequency.
// Ties are broken alphabetically so the output is stable.
func popularSearches(events []model.SearchEvent, keep func(model.SearchEvent) bool) []model.PopularSearch {
	queryCounts := make(map[string]int)
	for _, event := range events {
		if event.Query == "" || event.Outcome == model.OutcomePage {
			continue
		}
		if keep != nil && !keep(event) {
			continue
		}
		queryCounts[event.Query]++
	}

	popular := make([]model.PopularSearch, 0, len(queryCounts))
	for query, count := range queryCounts {
		popular = append(popular, model.PopularSearch{Query: query, SearchCount: count})
	}
	sort.Slice(popular, func(i, j int) bool {
		if popular[i].SearchCount != popular[j].SearchCount {
			return popular[i].SearchCount > popular[j].SearchCount
		}
		return popular[i].Query < popular[j].Query
	})

	if len(popular) > topQueries {
		popular = popular[:topQueries]
	}
	return popular
}

func outcomeStats(events []model.SearchEvent) model.OutcomeStats {
	stats := make(model.OutcomeStats)
	for _, event := range events {
		stats[event.Outcome]++
	}
	return stats
}

func responseTimeDistribution(events []model.SearchEvent) model.ResponseTimeDistribution {
	dist := model.ResponseTimeDistribution{}
	for _, event := range events {
		switch {
		case event.ResponseTime <= time.Millisecond:
			dist.Bucket0To1ms++
		case event.ResponseTime <= 5*time.Millisecond:
			dist.Bucket1To5ms++
		case event.ResponseTime <= 25*time.Millisecond:
			dist.Bucket5To25ms++
		default:
			dist.Bucket25msPlus++
		}
	}
	return dist
}

// Flush writes retained events to the data file, if one is configured.
func (s *Service) Flush() error {
	if s.dataFilePath == "" {
		return nil
	}

	s.mutex.RLock()
	snapshot := make([]model.SearchEvent, len(s.events))
	copy(snapshot, s.events)
	s.mutex.RUnlock()

	s.saveMutex.Lock()
	defer s.saveMutex.Unlock()
	return persistence.SaveJSON(s.dataFilePath, snapshot)
}

func (s *Service) loadData() error {
	var events []model.SearchEvent
	if err := persistence.LoadJSON(s.dataFilePath, &events); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(events) > s.maxEvents {
		events = events[len(events)-s.maxEvents:]
	}
	s.events = events
	return nil
}
