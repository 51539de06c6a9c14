// Package engine ties the promotion collection, the ranking service and the
// per-user session cache together behind the operations the API and the chat
// adapter call.
package engine

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gcbaptista/promo-search-engine/config"
	internalErrors "github.com/gcbaptista/promo-search-engine/internal/errors"
	"github.com/gcbaptista/promo-search-engine/internal/expiry"
	"github.com/gcbaptista/promo-search-engine/internal/lexicon"
	"github.com/gcbaptista/promo-search-engine/internal/search"
	"github.com/gcbaptista/promo-search-engine/internal/session"
	"github.com/gcbaptista/promo-search-engine/model"
	"github.com/gcbaptista/promo-search-engine/services"
	"github.com/gcbaptista/promo-search-engine/store"
)

// EventTracker receives one event per search request
type EventTracker interface {
	TrackSearchEvent(event model.SearchEvent)
}

// MetricsRecorder receives engine measurements
type MetricsRecorder interface {
	ObserveSearch(outcome string, d time.Duration)
	SetCollectionSize(n int)
	ObserveReload(err error)
	SetSessionEntries(n int)
}

type noopMetrics struct{}

func (noopMetrics) ObserveSearch(string, time.Duration) {}
func (noopMetrics) SetCollectionSize(int)               {}
func (noopMetrics) ObserveReload(error)                 {}
func (noopMetrics) SetSessionEntries(int)               {}

// Options configures an Engine. Zero fields get defaults.
type Options struct {
	Settings config.SearchSettings
	Lexicon  *lexicon.Lexicon
	Sessions session.Store
	Clock    func() time.Time
	Tracker  EventTracker
	Metrics  MetricsRecorder
}

// Engine is the promotion search facade.
// It implements the services.PromotionSearcher and services.CollectionLoader interfaces.
type Engine struct {
	settings   config.SearchSettings
	collection *store.Collection
	searcher   *search.Service
	sessions   session.Store
	clock      func() time.Time
	tracker    EventTracker
	metrics    MetricsRecorder
}

var (
	_ services.PromotionSearcher = (*Engine)(nil)
	_ services.CollectionLoader  = (*Engine)(nil)
)

// NewEngine creates an engine with an empty collection.
func NewEngine(opts Options) (*Engine, error) {
	opts.Settings.ApplyDefaults()
	if opts.Lexicon == nil {
		opts.Lexicon = lexicon.Default()
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewMemoryStore(session.DefaultTimeout)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Metrics == nil {
		opts.Metrics = noopMetrics{}
	}

	searcher, err := search.NewService(opts.Lexicon, opts.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create search service: %w", err)
	}

	return &Engine{
		settings:   opts.Settings,
		collection: store.NewCollection(),
		searcher:   searcher,
		sessions:   opts.Sessions,
		clock:      opts.Clock,
		tracker:    opts.Tracker,
		metrics:    opts.Metrics,
	}, nil
}

// Settings returns the search settings in effect
func (e *Engine) Settings() config.SearchSettings {
	return e.settings
}

// Load rebuilds the collection from records, dropping expired ones, and swaps
// it in atomically. On error the previous collection stays in place.
func (e *Engine) Load(records []model.PromotionRecord) error {
	now := e.clock()
	filter := expiry.NewFilter(func() time.Time { return now }, e.settings.StaleYearFloor)

	snap, err := store.BuildSnapshot(records, filter, now)
	e.metrics.ObserveReload(err)
	if err != nil {
		log.WithError(err).Warn("collection load rejected, keeping previous data")
		return err
	}

	prev := e.collection.Replace(snap)
	e.metrics.SetCollectionSize(snap.Len())
	log.WithFields(log.Fields{
		"version":  snap.Version,
		"records":  snap.Len(),
		"dropped":  snap.Dropped,
		"previous": prev.Len(),
	}).Info("collection loaded")
	return nil
}

// Info describes the current snapshot
func (e *Engine) Info() services.CollectionInfo {
	snap := e.collection.Snapshot()
	info := services.CollectionInfo{
		Version: snap.Version,
		Records: snap.Len(),
		Dropped: snap.Dropped,
		Loaded:  e.collection.Loaded(),
	}
	if info.Loaded {
		info.LoadedAt = snap.LoadedAt.Format(time.RFC3339)
	}
	return info
}

// GetLatest returns the first n records of the collection, newest first.
// A non-positive n uses the configured latest count.
func (e *Engine) GetLatest(n int) []model.PromotionRecord {
	if n <= 0 {
		n = e.settings.LatestCount
	}
	return e.collection.Snapshot().Latest(n)
}

// GetByID returns the record with the given ID
func (e *Engine) GetByID(id int) (model.PromotionRecord, error) {
	rec, ok := e.collection.Snapshot().ByID(id)
	if !ok {
		return model.PromotionRecord{}, internalErrors.NewPromotionNotFoundError(id)
	}
	return rec, nil
}

// CollectionSize returns the number of searchable records
func (e *Engine) CollectionSize() int {
	return e.collection.Snapshot().Len()
}

// ActiveSessions returns the number of cached sessions
func (e *Engine) ActiveSessions() int {
	n, err := e.sessions.Len(context.Background())
	if err != nil {
		log.WithError(err).Warn("failed to count sessions")
		return 0
	}
	return n
}
