package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/adperf/internal/metrics"
	"github.com/AngelCh415/adperf/internal/models"
)

func sampleReport(t *testing.T) models.Report {
	t.Helper()
	eng, err := metrics.NewEngine(metrics.DefaultSettings())
	require.NoError(t, err)
	eng.WithClock(func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }).
		WithIDs(func() string { return "run-1" })
	return eng.Analyze(models.Dataset{Source: "ads.csv", Rows: []models.Row{
		{AdID: "ad1", Campaign: "campaignA", Impressions: 1000, Clicks: 50, Conversions: 5, Cost: 100, Revenue: 300},
		{AdID: "ad2", Campaign: "campaignA", Impressions: 2000, Clicks: 20, Conversions: 1, Cost: 150, Revenue: 80},
		{AdID: "ad3", Campaign: "campaignB", Impressions: 500, Clicks: 0, Conversions: 0, Cost: 40, Revenue: 0},
	}})
}

func TestRounded(t *testing.T) {
	rep := sampleReport(t)
	r := Rounded(rep)

	assert.Equal(t, -0.4667, r.Ads[1].Metrics.ROI)
	assert.Equal(t, 0.5333, r.Ads[1].Metrics.ROAS)
	assert.Equal(t, 7.5, r.Ads[1].Metrics.CPC)
	assert.NotEqual(t, -0.4667, rep.Ads[1].Metrics.ROI, "input is left untouched")

	for _, a := range r.Ads {
		assert.Equal(t, round3(a.Score), a.Score)
	}
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 0.1235, round4(0.123456))
	assert.Equal(t, 2.0, round2(1.999))
	assert.Equal(t, 0.667, round3(2.0/3))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(t), FormatJSON))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	for _, key := range []string{
		"run_id", "generated_at", "source", "quality_report", "metrics", "anomalies",
		"campaigns", "worst_performers", "top_performers", "insights", "dashboard",
	} {
		assert.Contains(t, doc, key)
	}
	assert.Equal(t, "run-1", doc["run_id"])

	ads := doc["metrics"].([]any)
	require.Len(t, ads, 3)
	ad2 := ads[1].(map[string]any)
	assert.Equal(t, "ad2", ad2["ad_id"])
	assert.Equal(t, -0.4667, ad2["metrics"].(map[string]any)["roi"])
	assert.Contains(t, ad2, "performance_score")

	ad3 := ads[2].(map[string]any)["metrics"].(map[string]any)
	assert.Equal(t, []any{"conversion_rate", "cpc", "cpa"}, ad3["undefined"])

	dash := doc["dashboard"].(map[string]any)
	assert.Contains(t, dash, "overall_metrics")
	assert.Contains(t, dash, "optimization_flags")
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, models.Report{}, "xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(t), ""))
	out := buf.String()

	for _, want := range []string{
		"Advertising performance report",
		"run run-1  generated 2024-03-01 12:00:00 UTC  source ads.csv",
		"Data quality",
		"logical checks passed",
		"zero values: clicks=1, conversions=1, revenue=1",
		"Anomalies (2)",
		"   - CTR abnormally low: 1.00% (expected >= 2.00%)",
		"ranking by ROI:",
		"1. campaignA: ROI 52.00 (average)",
		"2. campaignB: ROI -100.00 (losing)",
		"Worst 3 performers",
		"Budget reallocation candidates",
		"Executive summary:",
		"  * Monitor: track ROI daily with an alert at 30%",
	} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, "n/a", "undefined ratios print as n/a")
}

func TestWriteText_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, Rounded(models.Report{})))
	out := buf.String()
	assert.Contains(t, out, "no ads")
	assert.Contains(t, out, "no anomalies")
	assert.Contains(t, out, "no campaigns")
}

func TestWriteJSON_TinySpend(t *testing.T) {
	eng, err := metrics.NewEngine(metrics.DefaultSettings())
	require.NoError(t, err)
	rep := eng.Analyze(models.Dataset{Rows: []models.Row{
		{AdID: "tiny", Campaign: "A", Impressions: 100, Clicks: 10, Conversions: 1, Cost: 1e-320, Revenue: 500},
		{AdID: "plain", Campaign: "A", Impressions: 100, Clicks: 10, Conversions: 1, Cost: 10, Revenue: 20},
	}})

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, rep))
	assert.True(t, json.Valid(buf.Bytes()))
	assert.Contains(t, rep.Ads[0].Metrics.Undefined, models.MetricROI)
}
