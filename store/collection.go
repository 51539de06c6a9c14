package store

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	internalErrors "github.com/gcbaptista/promo-search-engine/internal/errors"
	"github.com/gcbaptista/promo-search-engine/model"
)

// ExpiryFilter decides whether a record is too stale to be searchable
type ExpiryFilter interface {
	IsExpired(rec model.PromotionRecord) bool
}

// Snapshot is an immutable, ordered view of the searchable promotions.
// Records are newest-first as delivered by the loader.
type Snapshot struct {
	Records  []model.PromotionRecord
	Version  string
	LoadedAt time.Time
	Dropped  int // Expired or duplicate records left out of this snapshot

	byID map[int]int // ID -> index into Records
}

// BuildSnapshot filters and cleans records into a new snapshot. An empty input
// is rejected; input that filters down to nothing yields a valid empty snapshot.
func BuildSnapshot(records []model.PromotionRecord, filter ExpiryFilter, now time.Time) (*Snapshot, error) {
	if len(records) == 0 {
		return nil, internalErrors.NewDataUnavailableError("no records supplied")
	}

	snap := &Snapshot{
		Records:  make([]model.PromotionRecord, 0, len(records)),
		Version:  uuid.NewString(),
		LoadedAt: now,
		byID:     make(map[int]int, len(records)),
	}

	for _, rec := range records {
		rec = cleanRecord(rec)
		if filter != nil && filter.IsExpired(rec) {
			snap.Dropped++
			continue
		}
		if _, dup := snap.byID[rec.ID]; dup {
			snap.Dropped++
			continue
		}
		snap.byID[rec.ID] = len(snap.Records)
		snap.Records = append(snap.Records, rec)
	}

	return snap, nil
}

// cleanRecord returns a copy with NFC text and folded keywords. Slices are
// copied so later changes to the caller's input cannot leak into a snapshot.
func cleanRecord(rec model.PromotionRecord) model.PromotionRecord {
	rec.Title = norm.NFC.String(rec.Title)
	rec.Description = norm.NFC.String(rec.Description)
	rec.Content = norm.NFC.String(rec.Content)
	rec.PromotionType = norm.NFC.String(rec.PromotionType)

	keywords := make([]string, 0, len(rec.Keywords))
	for _, kw := range rec.Keywords {
		kw = strings.TrimSpace(strings.ToLower(norm.NFC.String(kw)))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	rec.Keywords = keywords

	if rec.Attachments != nil {
		rec.Attachments = append([]model.Attachment(nil), rec.Attachments...)
	}
	return rec
}

// Len returns the number of records in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// Latest returns up to n records from the front of the snapshot.
func (s *Snapshot) Latest(n int) []model.PromotionRecord {
	if s == nil || n <= 0 {
		return []model.PromotionRecord{}
	}
	if n > len(s.Records) {
		n = len(s.Records)
	}
	out := make([]model.PromotionRecord, n)
	copy(out, s.Records[:n])
	return out
}

// ByID returns the record with the given ID.
func (s *Snapshot) ByID(id int) (model.PromotionRecord, bool) {
	if s == nil {
		return model.PromotionRecord{}, false
	}
	idx, ok := s.byID[id]
	if !ok {
		return model.PromotionRecord{}, false
	}
	return s.Records[idx], true
}

// Collection holds the current snapshot. Readers never block and always see
// one complete snapshot; Replace swaps the reference atomically.
type Collection struct {
	current atomic.Pointer[Snapshot]
}

// NewCollection creates a collection holding an empty snapshot
func NewCollection() *Collection {
	c := &Collection{}
	c.current.Store(&Snapshot{Records: []model.PromotionRecord{}, byID: map[int]int{}})
	return c
}

// Snapshot returns the current snapshot. It is never nil.
func (c *Collection) Snapshot() *Snapshot {
	return c.current.Load()
}

// Replace installs snap as the current snapshot and returns the previous one.
func (c *Collection) Replace(snap *Snapshot) *Snapshot {
	return c.current.Swap(snap)
}

// Loaded reports whether any load has completed.
func (c *Collection) Loaded() bool {
	return c.current.Load().Version != ""
}
