package report

import (
	"math"

	"github.com/AngelCh415/adperf/internal/models"
)

// Rounded returns a copy of r with every number cut to presentation
// precision: ratios to 4 decimals, money and scores to 2 and 3. The engine
// never rounds; only what leaves the process does.
func Rounded(r models.Report) models.Report {
	out := r

	out.Ads = make([]models.AdMetrics, len(r.Ads))
	for i, a := range r.Ads {
		a.Cost, a.Revenue = round2(a.Cost), round2(a.Revenue)
		a.Metrics = roundMetrics(a.Metrics)
		a.Score = round3(a.Score)
		out.Ads[i] = a
	}

	out.Anomalies = make([]models.AnomalyRecord, len(r.Anomalies))
	for i, a := range r.Anomalies {
		vs := make([]models.Violation, len(a.Violations))
		for j, v := range a.Violations {
			v.Value, v.Bound = round4(v.Value), round4(v.Bound)
			vs[j] = v
		}
		a.Violations = vs
		out.Anomalies[i] = a
	}

	out.Campaigns = make([]models.CampaignAggregate, len(r.Campaigns))
	for i, c := range r.Campaigns {
		c.Cost, c.Revenue = round2(c.Cost), round2(c.Revenue)
		c.Metrics = roundMetrics(c.Metrics)
		c.Score = round3(c.Score)
		out.Campaigns[i] = c
	}

	out.WorstPerformers = roundPerformers(r.WorstPerformers)
	out.TopPerformers = roundPerformers(r.TopPerformers)

	o := r.Dashboard.Overall
	out.Dashboard.Overall = models.OverallMetrics{
		TotalCost:        round2(o.TotalCost),
		TotalRevenue:     round2(o.TotalRevenue),
		OverallROI:       round4(o.OverallROI),
		TotalConversions: o.TotalConversions,
		AvgCTR:           round4(o.AvgCTR),
	}
	return out
}

func roundPerformers(ps []models.Performer) []models.Performer {
	out := make([]models.Performer, len(ps))
	for i, p := range ps {
		p.Score = round3(p.Score)
		p.Metrics = roundMetrics(p.Metrics)
		p.Impact = models.FinancialImpact{
			Cost:    round2(p.Impact.Cost),
			Revenue: round2(p.Impact.Revenue),
			Loss:    round2(p.Impact.Loss),
		}
		out[i] = p
	}
	return out
}

func roundMetrics(d models.DerivedMetrics) models.DerivedMetrics {
	d.CTR = round4(d.CTR)
	d.ConversionRate = round4(d.ConversionRate)
	d.ROI = round4(d.ROI)
	d.ROAS = round4(d.ROAS)
	d.CPC = round2(d.CPC)
	d.CPA = round2(d.CPA)
	return d
}

func round2(f float64) float64 { return roundTo(f, 100) }
func round3(f float64) float64 { return roundTo(f, 1000) }
func round4(f float64) float64 { return roundTo(f, 10000) }

func roundTo(f, scale float64) float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return f
	}
	return math.Round(f*scale) / scale
}
