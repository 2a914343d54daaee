package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/adperf/internal/models"
)

func scoringRows() []models.Row {
	return []models.Row{
		{AdID: "a", Campaign: "c1", Impressions: 1000, Clicks: 50, Conversions: 5, Cost: 100, Revenue: 300},
		{AdID: "b", Campaign: "c1", Impressions: 2000, Clicks: 20, Conversions: 1, Cost: 150, Revenue: 80},
		{AdID: "c", Campaign: "c2", Impressions: 800, Clicks: 40, Conversions: 4, Cost: 60, Revenue: 200},
		{AdID: "d", Campaign: "c2", Impressions: 500, Clicks: 0, Conversions: 0, Cost: 40, Revenue: 0},
		{AdID: "e", Campaign: "c3", Impressions: 1500, Clicks: 45, Conversions: 2, Cost: 90, Revenue: 100},
	}
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	s := DefaultSettings()
	assert.InDelta(t, 1.0, s.Weights.Sum(), 1e-12)
	assert.InDelta(t, 1.0, s.CampaignWeights.Sum(), 1e-12)
}

func TestScore_Example(t *testing.T) {
	scores := Score(ComputeAll(exampleRows()), DefaultSettings().Weights)
	require.Len(t, scores, 2)
	assert.InDelta(t, 1.0, scores[0].Score, 1e-9)
	assert.InDelta(t, 0.5, scores[1].Score, 1e-9)
}

func TestScore_Bounds(t *testing.T) {
	for _, s := range Score(ComputeAll(scoringRows()), DefaultSettings().Weights) {
		assert.GreaterOrEqual(t, s.Score, 0.0)
		assert.LessOrEqual(t, s.Score, 1.0+1e-12)
	}
}

func TestScore_InvariantUnderReordering(t *testing.T) {
	rows := scoringRows()
	w := DefaultSettings().Weights
	base := map[string]float64{}
	for _, s := range Score(ComputeAll(rows), w) {
		base[s.AdID] = s.Score
	}

	reversed := make([]models.Row, len(rows))
	for i, r := range rows {
		reversed[len(rows)-1-i] = r
	}
	rotated := append(append([]models.Row{}, rows[2:]...), rows[:2]...)

	for _, perm := range [][]models.Row{reversed, rotated} {
		for _, s := range Score(ComputeAll(perm), w) {
			assert.Equal(t, base[s.AdID], s.Score, s.AdID)
		}
	}
}

func TestWorstAndTop_StableTies(t *testing.T) {
	scores := []models.PerformanceScore{
		{Index: 0, AdID: "a", Score: 0.5},
		{Index: 1, AdID: "b", Score: 0.2},
		{Index: 2, AdID: "c", Score: 0.9},
		{Index: 3, AdID: "d", Score: 0.2},
		{Index: 4, AdID: "e", Score: 0.9},
	}
	worst := Worst(scores, 3)
	assert.Equal(t, []string{"b", "d", "a"}, ids(worst))

	top := Top(scores, 2)
	assert.Equal(t, []string{"c", "e"}, ids(top))

	assert.Len(t, Worst(scores, 10), 5)
	assert.Empty(t, Top(scores, 0))
	assert.Equal(t, "a", scores[0].AdID, "selection must not reorder the input")
}

func TestPerformers_FinancialImpact(t *testing.T) {
	ads := ComputeAll(exampleRows())
	scores := Score(ads, DefaultSettings().Weights)
	got := performers(ads, Worst(scores, 1))
	require.Len(t, got, 1)
	assert.Equal(t, "ad2", got[0].AdID)
	assert.InDelta(t, 70.0, got[0].Impact.Loss, 1e-9)
	assert.InDelta(t, -0.4667, got[0].Metrics.ROI, 1e-4)
	assert.False(t, math.IsNaN(got[0].Score))
}

func ids(ps []models.PerformanceScore) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.AdID
	}
	return out
}
