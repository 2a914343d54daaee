package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/adperf/internal/models"
)

func anomalyRows() []models.Row {
	return []models.Row{
		{AdID: "ad1", Campaign: "A", Impressions: 1000, Clicks: 50, Conversions: 5, Cost: 100, Revenue: 300},
		{AdID: "ad2", Campaign: "A", Impressions: 2000, Clicks: 20, Conversions: 1, Cost: 150, Revenue: 80},
		{AdID: "noclicks", Campaign: "B", Impressions: 500, Clicks: 0, Conversions: 0, Cost: 40, Revenue: 0},
		{AdID: "idle", Campaign: "B", Impressions: 0, Clicks: 0, Conversions: 0, Cost: 0, Revenue: 0},
		{AdID: "noconv", Campaign: "C", Impressions: 1000, Clicks: 30, Conversions: 0, Cost: 60, Revenue: 0},
		{AdID: "free", Campaign: "C", Impressions: 1000, Clicks: 30, Conversions: 3, Cost: 0, Revenue: 50},
	}
}

func TestDetectAnomalies_OrderAndSeverity(t *testing.T) {
	got := DetectAnomalies(ComputeAll(anomalyRows()), DefaultThresholds())
	require.Len(t, got, 3)

	assert.Equal(t, "ad2", got[0].AdID)
	assert.Equal(t, 5, got[0].SeverityScore)
	assert.Equal(t, "noclicks", got[1].AdID, "equal severity keeps input order")
	assert.Equal(t, 5, got[1].SeverityScore)
	assert.Equal(t, "noconv", got[2].AdID)
	assert.Equal(t, 4, got[2].SeverityScore)

	for _, a := range got {
		assert.Len(t, a.Issues, a.SeverityScore)
		assert.Len(t, a.Violations, a.SeverityScore)
	}
}

func TestDetectAnomalies_Issues(t *testing.T) {
	got := DetectAnomalies(ComputeAll(anomalyRows()[1:2]), DefaultThresholds())
	require.Len(t, got, 1)
	assert.Equal(t, []string{
		"CTR abnormally low: 1.00% (expected >= 2.00%)",
		"ROI abnormally low: -46.67% (expected >= 50.00%)",
		"ROAS abnormally low: 0.53 (expected >= 2.00)",
		"cost per click abnormally high: 7.50 (expected <= 5.00)",
		"cost per acquisition abnormally high: 150.00 (expected <= 100.00)",
	}, got[0].Issues)
	assert.Equal(t, models.Violation{Metric: models.MetricCPC, Kind: models.ViolationHigh, Value: 7.5, Bound: 5}, got[0].Violations[3])
}

func TestDetectAnomalies_ZeroDenominators(t *testing.T) {
	ads := ComputeAll(anomalyRows())
	byID := map[string]models.AnomalyRecord{}
	for _, a := range DetectAnomalies(ads, DefaultThresholds()) {
		byID[a.AdID] = a
	}

	t.Run("no clicks with spend", func(t *testing.T) {
		rec, ok := byID["noclicks"]
		require.True(t, ok)
		kinds := map[models.Metric]models.ViolationKind{}
		for _, v := range rec.Violations {
			kinds[v.Metric] = v.Kind
		}
		assert.Equal(t, models.ViolationUndefined, kinds[models.MetricCPC])
		assert.Equal(t, models.ViolationUndefined, kinds[models.MetricCPA])
		assert.NotContains(t, kinds, models.MetricConversionRate, "conversion rate without clicks is not judged")
		assert.Contains(t, rec.Issues, "cost per acquisition undefined: 40.00 spent with no conversions")
		assert.Contains(t, rec.Issues, "cost per click undefined: 40.00 spent with no clicks")
	})

	t.Run("nothing spent, nothing served", func(t *testing.T) {
		_, ok := byID["idle"]
		assert.False(t, ok)
	})

	t.Run("no conversions with spend", func(t *testing.T) {
		rec := byID["noconv"]
		last := rec.Violations[len(rec.Violations)-1]
		assert.Equal(t, models.MetricCPA, last.Metric)
		assert.Equal(t, models.ViolationUndefined, last.Kind)
		assert.Equal(t, 60.0, last.Value)
	})

	t.Run("no spend skips ROI and ROAS", func(t *testing.T) {
		_, ok := byID["free"]
		assert.False(t, ok)
	})
}

func TestDetectAnomalies_HighBound(t *testing.T) {
	rows := []models.Row{{AdID: "hot", Campaign: "A", Impressions: 100, Clicks: 40, Conversions: 2, Cost: 10, Revenue: 100}}
	got := DetectAnomalies(ComputeAll(rows), DefaultThresholds())
	require.Len(t, got, 1)
	assert.Equal(t, models.ViolationHigh, got[0].Violations[0].Kind)
	assert.Equal(t, models.MetricCTR, got[0].Violations[0].Metric)
}

func TestDetectAnomalies_Idempotent(t *testing.T) {
	ads := ComputeAll(anomalyRows())
	first := DetectAnomalies(ads, DefaultThresholds())
	second := DetectAnomalies(ads, DefaultThresholds())
	assert.Equal(t, first, second)
}

func TestDetectAnomalies_CustomThresholds(t *testing.T) {
	th := []Threshold{{Metric: models.MetricROI, Name: "ROI", Low: -1, High: math.Inf(1)}}
	got := DetectAnomalies(ComputeAll(anomalyRows()), th)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}
