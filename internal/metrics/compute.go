package metrics

import (
	"math"

	"github.com/AngelCh415/adperf/internal/models"
)

// Derive computes the six ratios for a single row.
func Derive(r models.Row) models.DerivedMetrics {
	return ratios(r.Impressions, r.Clicks, r.Conversions, r.Cost, r.Revenue)
}

// ComputeAll derives metrics for every row, keeping input order.
func ComputeAll(rows []models.Row) []models.AdMetrics {
	out := make([]models.AdMetrics, 0, len(rows))
	for i, r := range rows {
		out = append(out, models.AdMetrics{Index: i, Row: r, Metrics: Derive(r)})
	}
	return out
}

// ratios is shared by rows and campaign totals so both use the same formulas.
func ratios(impressions, clicks, conversions int64, cost, revenue float64) models.DerivedMetrics {
	var d models.DerivedMetrics
	var ok bool

	if d.CTR, ok = safeDiv(float64(clicks), float64(impressions)); !ok {
		d.Undefined = append(d.Undefined, models.MetricCTR)
	}
	if d.ConversionRate, ok = safeDiv(float64(conversions), float64(clicks)); !ok {
		d.Undefined = append(d.Undefined, models.MetricConversionRate)
	}
	if d.ROI, ok = safeDiv(revenue-cost, cost); !ok {
		d.Undefined = append(d.Undefined, models.MetricROI)
	}
	if d.ROAS, ok = safeDiv(revenue, cost); !ok {
		d.Undefined = append(d.Undefined, models.MetricROAS)
	}
	if d.CPC, ok = safeDiv(cost, float64(clicks)); !ok {
		d.Undefined = append(d.Undefined, models.MetricCPC)
	}
	if d.CPA, ok = safeDiv(cost, float64(conversions)); !ok {
		d.Undefined = append(d.Undefined, models.MetricCPA)
	}
	return d
}

// safeDiv returns 0 and false for a zero denominator or a quotient that
// does not fit a float64.
func safeDiv(a, b float64) (float64, bool) {
	if b == 0 {
		return 0, false
	}
	q := a / b
	if math.IsInf(q, 0) || math.IsNaN(q) {
		return 0, false
	}
	return q, true
}
