package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/adperf/internal/models"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func pinnedEngine(t *testing.T, s Settings) *Engine {
	t.Helper()
	eng, err := NewEngine(s)
	require.NoError(t, err)
	return eng.WithClock(func() time.Time { return fixedTime }).WithIDs(func() string { return "run-1" })
}

func TestNewEngine_RejectsInvalidSettings(t *testing.T) {
	s := DefaultSettings()
	s.Weights.ROI = 2
	_, err := NewEngine(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings: ")
}

func TestAnalyze_Example(t *testing.T) {
	rep := pinnedEngine(t, DefaultSettings()).Analyze(models.Dataset{Source: "ads.csv", Rows: exampleRows()})

	assert.Equal(t, "run-1", rep.RunID)
	assert.Equal(t, fixedTime, rep.GeneratedAt)
	assert.Equal(t, "ads.csv", rep.Source)
	require.Len(t, rep.Ads, 2)
	assert.InDelta(t, 1.0, rep.Ads[0].Score, 1e-12)
	assert.InDelta(t, 0.5, rep.Ads[1].Score, 1e-12)

	require.Len(t, rep.Anomalies, 1)
	assert.Equal(t, "ad2", rep.Anomalies[0].AdID)
	assert.Equal(t, 5, rep.Anomalies[0].SeverityScore)

	require.Len(t, rep.Campaigns, 1)
	assert.Equal(t, StatusAverage, rep.Campaigns[0].Status)

	require.Len(t, rep.WorstPerformers, 2, "worst_n larger than the table returns every ad")
	assert.Equal(t, "ad2", rep.WorstPerformers[0].AdID)
	assert.Equal(t, 70.0, rep.WorstPerformers[0].Impact.Loss)
	require.Len(t, rep.TopPerformers, 2)
	assert.Equal(t, "ad1", rep.TopPerformers[0].AdID)

	assert.Equal(t, 2, rep.Quality.TotalRecords)
	assert.InDelta(t, 0.52, rep.Dashboard.Overall.OverallROI, 1e-12)
}

func TestAnalyze_Deterministic(t *testing.T) {
	eng := pinnedEngine(t, DefaultSettings())
	ds := models.Dataset{Rows: scoringRows()}
	assert.Equal(t, eng.Analyze(ds), eng.Analyze(ds))
}

func TestAnalyze_Empty(t *testing.T) {
	rep := pinnedEngine(t, DefaultSettings()).Analyze(models.Dataset{})
	assert.Empty(t, rep.Ads)
	assert.NotNil(t, rep.Anomalies)
	assert.Empty(t, rep.Campaigns)
	assert.Empty(t, rep.WorstPerformers)
}

func TestAnalyze_WorstN(t *testing.T) {
	s := DefaultSettings()
	s.WorstN = 1
	s.TopN = 0
	rep := pinnedEngine(t, s).Analyze(models.Dataset{Rows: scoringRows()})
	assert.Len(t, rep.WorstPerformers, 1)
	assert.Empty(t, rep.TopPerformers)
}

func TestFingerprint_ChangesWithSettings(t *testing.T) {
	a := pinnedEngine(t, DefaultSettings())
	s := DefaultSettings()
	s.CPAAlert = 50
	b := pinnedEngine(t, s)

	assert.Len(t, a.Fingerprint(), 16)
	assert.Equal(t, a.Fingerprint(), pinnedEngine(t, DefaultSettings()).Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestCurrent_Swap(t *testing.T) {
	a := pinnedEngine(t, DefaultSettings())
	b := pinnedEngine(t, DefaultSettings())
	c := NewCurrent(a)
	assert.Same(t, a, c.Engine())
	c.Swap(b)
	assert.Same(t, b, c.Engine())
}
