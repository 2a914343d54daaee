package metrics

import (
	"sort"

	"github.com/AngelCh415/adperf/internal/models"
)

// Score ranks every ad on ROI, ROAS, conversion rate and CTR across the whole
// set and combines the percentile ranks with w. The result follows input order.
// An ad's score depends only on the multiset of values, never on its position.
func Score(ads []models.AdMetrics, w Weights) []models.PerformanceScore {
	n := len(ads)
	roi := make([]float64, n)
	roas := make([]float64, n)
	conv := make([]float64, n)
	ctr := make([]float64, n)
	for i, a := range ads {
		roi[i] = a.Metrics.ROI
		roas[i] = a.Metrics.ROAS
		conv[i] = a.Metrics.ConversionRate
		ctr[i] = a.Metrics.CTR
	}
	roiR, roasR, convR, ctrR := PercentileRanks(roi), PercentileRanks(roas), PercentileRanks(conv), PercentileRanks(ctr)

	out := make([]models.PerformanceScore, n)
	for i, a := range ads {
		out[i] = models.PerformanceScore{
			Index:    a.Index,
			AdID:     a.AdID,
			Campaign: a.Campaign,
			Score:    roiR[i]*w.ROI + roasR[i]*w.ROAS + convR[i]*w.ConversionRate + ctrR[i]*w.CTR,
		}
	}
	return out
}

// Worst returns the n lowest scores. Equal scores keep input order.
func Worst(scores []models.PerformanceScore, n int) []models.PerformanceScore {
	return pick(scores, n, func(a, b float64) bool { return a < b })
}

// Top returns the n highest scores. Equal scores keep input order.
func Top(scores []models.PerformanceScore, n int) []models.PerformanceScore {
	return pick(scores, n, func(a, b float64) bool { return a > b })
}

func pick(scores []models.PerformanceScore, n int, less func(a, b float64) bool) []models.PerformanceScore {
	sorted := make([]models.PerformanceScore, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i].Score, sorted[j].Score) })
	if n < 0 {
		n = 0
	}
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// performers expands picked scores with metrics and financial impact.
// ads must be indexed by position, as ComputeAll returns them.
func performers(ads []models.AdMetrics, picked []models.PerformanceScore) []models.Performer {
	out := make([]models.Performer, 0, len(picked))
	for _, p := range picked {
		a := ads[p.Index]
		out = append(out, models.Performer{
			Index:    p.Index,
			AdID:     p.AdID,
			Campaign: p.Campaign,
			Score:    p.Score,
			Metrics:  a.Metrics,
			Impact: models.FinancialImpact{
				Cost:    a.Cost,
				Revenue: a.Revenue,
				Loss:    a.Cost - a.Revenue,
			},
		})
	}
	return out
}
