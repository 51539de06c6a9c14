// Package source fetches promotion records from the JSON data file or the
// upstream promotions API and keeps the engine's collection fresh.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	internalErrors "github.com/gcbaptista/promo-search-engine/internal/errors"
	"github.com/gcbaptista/promo-search-engine/internal/persistence"
	"github.com/gcbaptista/promo-search-engine/model"
)

// Source produces the full, newest-first list of promotion records
type Source interface {
	Fetch(ctx context.Context) ([]model.PromotionRecord, error)
	Name() string
}

// FileSource reads records from a JSON array on disk
type FileSource struct {
	Path string
}

// NewFileSource creates a source for the data file at path
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Name identifies the source in logs and job metadata
func (s *FileSource) Name() string {
	return "file"
}

// Fetch decodes the data file. A missing or unparseable file is reported as
// DataUnavailable; a malformed record keeps its well-typed fields and the
// rest fall back to empty values.
func (s *FileSource) Fetch(ctx context.Context) ([]model.PromotionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := persistence.LoadRaw(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, internalErrors.NewDataUnavailableError(fmt.Sprintf("data file %s does not exist", s.Path))
		}
		return nil, internalErrors.NewDataUnavailableError(err.Error())
	}

	records, skipped, err := DecodeRecords(raw)
	if err != nil {
		return nil, internalErrors.NewDataUnavailableError(fmt.Sprintf("data file %s: %v", s.Path, err))
	}
	if skipped > 0 {
		log.WithFields(log.Fields{
			"file":    s.Path,
			"skipped": skipped,
		}).Warn("skipped data file entries that are not objects")
	}
	return records, nil
}

// DecodeRecords reads a JSON array of records one element at a time. Fields
// of the wrong type decode as their zero value and elements that are not
// objects are skipped and counted.
func DecodeRecords(raw []byte) ([]model.PromotionRecord, int, error) {
	if !gjson.ValidBytes(raw) {
		return nil, 0, fmt.Errorf("not valid JSON")
	}
	parsed := gjson.ParseBytes(raw)
	if !parsed.IsArray() {
		return nil, 0, fmt.Errorf("not a JSON array")
	}

	items := parsed.Array()
	records := make([]model.PromotionRecord, 0, len(items))
	skipped := 0
	for _, item := range items {
		if !item.IsObject() {
			skipped++
			continue
		}
		records = append(records, decodeRecord(item))
	}
	return records, skipped, nil
}

func decodeRecord(obj gjson.Result) model.PromotionRecord {
	return model.PromotionRecord{
		ID:            intField(obj, "id"),
		Title:         stringField(obj, "title"),
		Description:   stringField(obj, "description"),
		Content:       stringField(obj, "content"),
		Link:          stringField(obj, "link"),
		Category:      stringField(obj, "category"),
		PromotionType: stringField(obj, "promotion_type"),
		DurationLabel: stringField(obj, "duration"),
		StartDate:     stringField(obj, "start_date"),
		EndDate:       stringField(obj, "end_date"),
		Keywords:      stringList(obj.Get("keywords")),
		Attachments:   attachmentList(obj.Get("attachments")),
	}
}

func stringField(obj gjson.Result, path string) string {
	v := obj.Get(path)
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}

// intField accepts JSON numbers and numeric strings
func intField(obj gjson.Result, path string) int {
	v := obj.Get(path)
	switch v.Type {
	case gjson.Number:
		return int(v.Int())
	case gjson.String:
		if n, err := strconv.Atoi(strings.TrimSpace(v.Str)); err == nil {
			return n
		}
	}
	return 0
}

func stringList(v gjson.Result) []string {
	if !v.IsArray() {
		return nil
	}
	var out []string
	for _, item := range v.Array() {
		if item.Type == gjson.String {
			out = append(out, item.Str)
		}
	}
	return out
}

func attachmentList(v gjson.Result) []model.Attachment {
	if !v.IsArray() {
		return nil
	}
	var out []model.Attachment
	for _, item := range v.Array() {
		if !item.IsObject() {
			continue
		}
		out = append(out, model.Attachment{
			Text: stringField(item, "text"),
			URL:  stringField(item, "url"),
		})
	}
	return out
}

// Save writes records to the data file atomically
func (s *FileSource) Save(records []model.PromotionRecord) error {
	return persistence.SaveJSON(s.Path, records)
}
