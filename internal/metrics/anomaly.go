package metrics

import (
	"fmt"
	"sort"

	"github.com/AngelCh415/adperf/internal/models"
)

// DetectAnomalies checks every ad against the threshold table and returns the
// ads with at least one issue, most issues first. Ties keep input order.
//
// A ratio with a zero denominator is not compared. The exception is a
// cost-per metric with spend behind it: money spent with no clicks or no
// conversions is itself a violation.
func DetectAnomalies(ads []models.AdMetrics, thresholds []Threshold) []models.AnomalyRecord {
	out := make([]models.AnomalyRecord, 0)
	for _, a := range ads {
		var rec models.AnomalyRecord
		for _, th := range thresholds {
			v, ok := evaluate(a, th)
			if !ok {
				continue
			}
			rec.Violations = append(rec.Violations, v)
			rec.Issues = append(rec.Issues, describe(a, th, v))
		}
		if len(rec.Violations) == 0 {
			continue
		}
		rec.Index = a.Index
		rec.AdID = a.AdID
		rec.Campaign = a.Campaign
		rec.SeverityScore = len(rec.Issues)
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SeverityScore > out[j].SeverityScore })
	return out
}

func evaluate(a models.AdMetrics, th Threshold) (models.Violation, bool) {
	if a.Metrics.IsUndefined(th.Metric) {
		if th.Metric.CostPer() && a.Cost > 0 {
			return models.Violation{Metric: th.Metric, Kind: models.ViolationUndefined, Value: a.Cost}, true
		}
		return models.Violation{}, false
	}
	v := a.Metrics.Value(th.Metric)
	switch {
	case v < th.Low:
		return models.Violation{Metric: th.Metric, Kind: models.ViolationLow, Value: v, Bound: th.Low}, true
	case v > th.High:
		return models.Violation{Metric: th.Metric, Kind: models.ViolationHigh, Value: v, Bound: th.High}, true
	}
	return models.Violation{}, false
}

func describe(a models.AdMetrics, th Threshold, v models.Violation) string {
	switch v.Kind {
	case models.ViolationLow:
		return fmt.Sprintf("%s abnormally low: %s (expected >= %s)", th.Name, formatValue(th.Metric, v.Value), formatValue(th.Metric, v.Bound))
	case models.ViolationHigh:
		return fmt.Sprintf("%s abnormally high: %s (expected <= %s)", th.Name, formatValue(th.Metric, v.Value), formatValue(th.Metric, v.Bound))
	default:
		what := "clicks"
		if th.Metric == models.MetricCPA {
			what = "conversions"
		}
		return fmt.Sprintf("%s undefined: %.2f spent with no %s", th.Name, a.Cost, what)
	}
}

// formatValue renders a metric value the way people read it.
func formatValue(m models.Metric, v float64) string {
	if m.Percent() {
		return fmt.Sprintf("%.2f%%", v*100)
	}
	return fmt.Sprintf("%.2f", v)
}
