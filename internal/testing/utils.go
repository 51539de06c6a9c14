// Package testing provides fixtures and helpers for tests that need a loaded
// engine or a running job manager.
package testing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/promo-search-engine/config"
	"github.com/gcbaptista/promo-search-engine/internal/engine"
	"github.com/gcbaptista/promo-search-engine/internal/session"
	"github.com/gcbaptista/promo-search-engine/model"
	"github.com/gcbaptista/promo-search-engine/services"
)

// FixedNow is the clock used by CreateTestEngine. Fixture dates are relative to it.
var FixedNow = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

// FixedClock returns FixedNow
func FixedClock() time.Time { return FixedNow }

// CreateTestEngine creates an engine with a fixed clock and an in-memory
// session store, loaded with records (SamplePromotions when none are given).
func CreateTestEngine(t *testing.T, records ...model.PromotionRecord) *engine.Engine {
	t.Helper()

	eng, err := engine.NewEngine(engine.Options{
		Settings: config.DefaultSearchSettings(),
		Sessions: session.NewMemoryStore(30*time.Minute, session.WithClock(FixedClock)),
		Clock:    FixedClock,
	})
	require.NoError(t, err, "Failed to create test engine")

	if len(records) == 0 {
		records = SamplePromotions()
	}
	require.NoError(t, eng.Load(records), "Failed to load test records")
	return eng
}

// SamplePromotions returns a small catalogue covering categories, types,
// attachments and one expired record.
func SamplePromotions() []model.PromotionRecord {
	return []model.PromotionRecord{
		{
			ID:            101,
			Title:         "iPhone 16 Pro ผ่อน 0%",
			Description:   "ผ่อนนาน 10 เดือน ที่ร้าน Apple",
			Content:       "<p>ผ่อน 0% นาน 10 เดือน</p>",
			Category:      "mobile",
			PromotionType: "installment",
			DurationLabel: "เหลือเวลาอีก 10 วัน",
			Keywords:      []string{"iphone", "ผ่อน"},
			Attachments:   []model.Attachment{{Text: "เงื่อนไข", URL: "https://files.example.com/101.pdf"}},
		},
		{
			ID:            102,
			Title:         "MacBook Air M3 ส่วนลดนักศึกษา",
			Description:   "ลดเพิ่มสำหรับนักศึกษา",
			Category:      "computer",
			PromotionType: "discount",
			DurationLabel: "เหลือเวลาอีก 3 วัน",
			Keywords:      []string{"macbook", "นักศึกษา"},
		},
		{
			ID:            103,
			Title:         "iPad Air แถมเคส",
			Description:   "ซื้อ iPad รับเคสฟรี",
			Category:      "tablet",
			PromotionType: "gift",
			DurationLabel: "วันนี้วันสุดท้าย",
			Keywords:      []string{"ipad"},
		},
		{
			ID:            104,
			Title:         "iPhone 15 ลดราคา",
			Description:   "ลดสูงสุด 5,000 บาท",
			Category:      "mobile",
			PromotionType: "discount",
			DurationLabel: "เหลือเวลาอีก 20 วัน",
			Keywords:      []string{"iphone"},
		},
		{
			ID:            105,
			Title:         "AirPods Pro โปรปี 2024",
			Description:   "โปรเก่า",
			Category:      "accessory",
			PromotionType: "discount",
			DurationLabel: "หมดอายุแล้ว",
		},
	}
}

// NumberedPromotions returns n records titled "<term> deal i" with IDs 1..n.
func NumberedPromotions(term string, n int) []model.PromotionRecord {
	records := make([]model.PromotionRecord, n)
	for i := range records {
		records[i] = model.PromotionRecord{
			ID:            i + 1,
			Title:         fmt.Sprintf("%s deal %d", term, i+1),
			DurationLabel: "เหลือเวลาอีก 7 วัน",
		}
	}
	return records
}

// JobPollingOptions configures job polling behavior
type JobPollingOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
	LogProgress  bool
}

// DefaultJobPollingOptions returns sensible defaults for job polling
func DefaultJobPollingOptions() JobPollingOptions {
	return JobPollingOptions{
		Timeout:      5 * time.Second,
		PollInterval: 20 * time.Millisecond,
	}
}

// WaitForJob polls a job until it reaches a terminal status or times out
func WaitForJob(t *testing.T, jobManager services.JobManager, jobID string, opts JobPollingOptions) *model.Job {
	t.Helper()

	timeout := time.After(opts.Timeout)
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			t.Fatalf("Job %s did not finish within %v", jobID, opts.Timeout)
			return nil
		case <-ticker.C:
			job, err := jobManager.GetJob(jobID)
			require.NoError(t, err, "Failed to get job status")

			if job.IsFinished() {
				return job
			}
			if opts.LogProgress && job.Progress != nil {
				t.Logf("Job %s progress: %d/%d - %s",
					jobID, job.Progress.Current, job.Progress.Total, job.Progress.Message)
			}
		}
	}
}

// AssertJobCompleted verifies that a job completed successfully
func AssertJobCompleted(t *testing.T, job *model.Job, expectedType model.JobType) {
	t.Helper()
	assert.Equal(t, model.JobStatusCompleted, job.Status, "Job should be completed")
	assert.Equal(t, expectedType, job.Type, "Job type should match")
	assert.NotNil(t, job.CompletedAt, "Job should have completion timestamp")
	assert.Empty(t, job.Error, "Job should not have error")
}

// SearchTestCase is one query against a loaded engine and the IDs it should
// return on its first page, in order.
type SearchTestCase struct {
	Name    string
	Query   string
	WantIDs []int
	Outcome model.SearchOutcome
}

// RunSearchTests runs each case as a fresh search for a distinct user
func RunSearchTests(t *testing.T, searcher services.PromotionSearcher, tests []SearchTestCase) {
	t.Helper()
	for i, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			page, err := searcher.Search(context.Background(), fmt.Sprintf("search-test-%d", i), tt.Query)
			require.NoError(t, err)
			assert.Equal(t, tt.Outcome, page.Outcome)

			ids := make([]int, len(page.Results))
			for j, hit := range page.Results {
				ids[j] = hit.ID
			}
			if tt.WantIDs == nil {
				tt.WantIDs = []int{}
			}
			assert.Equal(t, tt.WantIDs, ids)
		})
	}
}
