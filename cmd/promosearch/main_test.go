package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/promo-search-engine/internal/persistence"
	"github.com/gcbaptista/promo-search-engine/model"
	"github.com/gcbaptista/promo-search-engine/services"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	root := rootCMD()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "promosearch dev\n", out.String())
}

func TestPrintPage(t *testing.T) {
	var out bytes.Buffer
	printPage(&out, services.SearchPage{
		Query: "iphone", Page: 2, PageSize: 12, TotalPages: 2, Total: 13, Outcome: model.OutcomePage,
		Results: []model.ScoredRecord{
			{PromotionRecord: model.PromotionRecord{ID: 7, Title: "iPhone 16", DurationLabel: "เหลือเวลาอีก 3 วัน"}, Score: 150},
		},
	})
	assert.Contains(t, out.String(), `13 results for "iphone", page 2/2`)
	assert.Contains(t, out.String(), " 13. [ 150] iPhone 16 (id 7)")

	out.Reset()
	printPage(&out, services.SearchPage{Outcome: model.OutcomeNoResults})
	assert.Equal(t, "No promotions found (no_results)\n", out.String())
}

func TestSearchCommand(t *testing.T) {
	dir := t.TempDir()
	dataFile := filepath.Join(dir, "promotions.json")
	records := make([]model.PromotionRecord, 14)
	for i := range records {
		records[i] = model.PromotionRecord{ID: i + 1, Title: "iPad deal"}
	}
	require.NoError(t, persistence.SaveJSON(dataFile, records))

	t.Setenv("PROMO_DATA_FILE", dataFile)
	t.Setenv("PROMO_LOGGING_LEVEL", "quiet")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	var out bytes.Buffer
	root := rootCMD()
	root.SetOut(&out)
	root.SetArgs([]string{"search", "ipad", "--page", "2"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "14 results for \"ipad\", page 2/2")
}
