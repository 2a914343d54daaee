package metrics

import (
	"fmt"
	"strings"

	"github.com/AngelCh415/adperf/internal/models"
)

// Score bands and cut-offs used in findings and recommendations.
const (
	highPerformerScore    = 0.7
	lowPerformerScore     = 0.3
	reallocateROI         = 1.0
	replicateConvRate     = 0.05
	budgetIncreasePct     = 50
	maxListedAdsInInsight = 5
)

// Overall sums the whole table. ROI comes from the totals; AvgCTR is the
// plain mean of the ads whose CTR is defined.
func Overall(ads []models.AdMetrics) models.OverallMetrics {
	var o models.OverallMetrics
	var ctrs []float64
	for _, a := range ads {
		o.TotalCost += a.Cost
		o.TotalRevenue += a.Revenue
		o.TotalConversions += a.Conversions
		if !a.Metrics.IsUndefined(models.MetricCTR) {
			ctrs = append(ctrs, a.Metrics.CTR)
		}
	}
	o.OverallROI, _ = safeDiv(o.TotalRevenue-o.TotalCost, o.TotalCost)
	o.AvgCTR = mean(ctrs)
	return o
}

// Flags lists the ads that need attention, in input order.
func Flags(ads []models.AdMetrics, s Settings) models.OptimizationFlags {
	f := models.OptimizationFlags{
		NegativeROIAds:  make([]string, 0),
		LowCTRAds:       make([]string, 0),
		HighCPAAds:      make([]string, 0),
		HighCTROutliers: make([]string, 0),
		SevereLossAds:   make([]string, 0),
	}
	lowCTR := s.lowBound(models.MetricCTR)

	var ctrs []float64
	for _, a := range ads {
		if !a.Metrics.IsUndefined(models.MetricCTR) {
			ctrs = append(ctrs, a.Metrics.CTR)
		}
	}
	outlierCTR := Quantile(ctrs, 0.75) * s.OutlierCTRMultiple

	for _, a := range ads {
		m := a.Metrics
		if negativeROI(m) {
			f.NegativeROIAds = append(f.NegativeROIAds, a.AdID)
		}
		if !m.IsUndefined(models.MetricROI) && m.ROI < s.SevereLossROI {
			f.SevereLossAds = append(f.SevereLossAds, a.AdID)
		}
		if !m.IsUndefined(models.MetricCTR) {
			if m.CTR < lowCTR {
				f.LowCTRAds = append(f.LowCTRAds, a.AdID)
			}
			if len(ctrs) > 0 && m.CTR > outlierCTR {
				f.HighCTROutliers = append(f.HighCTROutliers, a.AdID)
			}
		}
		if !m.IsUndefined(models.MetricCPA) && m.CPA > s.CPAAlert {
			f.HighCPAAds = append(f.HighCPAAds, a.AdID)
		}
	}
	return f
}

// BuildInsights writes the narrative part of the report. Lines that would
// describe an empty set are left out.
func BuildInsights(ads []models.AdMetrics, camps []models.CampaignAggregate, worst []models.Performer, d models.Dashboard, s Settings) models.Insights {
	in := models.Insights{
		ExecutiveSummary:            make([]string, 0),
		KeyFindings:                 make([]string, 0),
		OptimizationRecommendations: make([]string, 0),
		PriorityActions:             make([]string, 0),
	}
	if len(ads) == 0 {
		in.ExecutiveSummary = append(in.ExecutiveSummary, "No ads to analyze")
		return in
	}
	o := d.Overall
	ranked := rankDefinedROI(camps)

	// executive summary
	in.ExecutiveSummary = append(in.ExecutiveSummary,
		fmt.Sprintf("Total ad spend %s, total revenue %s", money(o.TotalCost), money(o.TotalRevenue)))
	if o.TotalCost > 0 {
		label := "profit"
		if o.OverallROI <= 0 {
			label = "loss"
		}
		in.ExecutiveSummary = append(in.ExecutiveSummary, fmt.Sprintf("Overall ROI %.1f%% (%s)", o.OverallROI*100, label))
	} else {
		in.ExecutiveSummary = append(in.ExecutiveSummary, "Overall ROI undefined: no spend recorded")
	}
	in.ExecutiveSummary = append(in.ExecutiveSummary,
		fmt.Sprintf("Analyzed %d ads across %d campaigns", len(ads), len(camps)),
		fmt.Sprintf("%d loss-making ads (ROI below 0%%)", len(d.Flags.NegativeROIAds)))
	if len(ranked) > 1 {
		best, last := ranked[0], ranked[len(ranked)-1]
		in.ExecutiveSummary = append(in.ExecutiveSummary, fmt.Sprintf("Campaign ROI spread %.1f points, from %s (%.1f%%) to %s (%.1f%%)",
			(best.Metrics.ROI-last.Metrics.ROI)*100, best.Campaign, best.Metrics.ROI*100, last.Campaign, last.Metrics.ROI*100))
	}

	// key findings
	var high, low []models.AdMetrics
	for _, a := range ads {
		switch {
		case a.Score > highPerformerScore:
			high = append(high, a)
		case a.Score < lowPerformerScore:
			low = append(low, a)
		}
	}
	if len(high) > 0 {
		in.KeyFindings = append(in.KeyFindings, fmt.Sprintf("High performers (%d ads, score above %.2f) average CTR %.2f%% and conversion rate %.2f%%",
			len(high), highPerformerScore, meanOf(high, models.MetricCTR)*100, meanOf(high, models.MetricConversionRate)*100))
	}
	if len(low) > 0 {
		in.KeyFindings = append(in.KeyFindings, fmt.Sprintf("Low performers (%d ads, score below %.2f) average ROI %.1f%% against a %.0f%% baseline",
			len(low), lowPerformerScore, meanOf(low, models.MetricROI)*100, s.lowBound(models.MetricROI)*100))
	}
	if lo, hi, ok := spread(ads, models.MetricCPA); ok {
		in.KeyFindings = append(in.KeyFindings, fmt.Sprintf("CPA ranges from %s to %s across ads with conversions", money(lo), money(hi)))
	}
	if best, worstC, ok := roasSpread(camps); ok {
		in.KeyFindings = append(in.KeyFindings, fmt.Sprintf("Campaign ROAS spread %.2fx, from %s (%.2f) to %s (%.2f)",
			best.Metrics.ROAS-worstC.Metrics.ROAS, best.Campaign, best.Metrics.ROAS, worstC.Campaign, worstC.Metrics.ROAS))
	}
	if len(d.Flags.HighCTROutliers) > 0 {
		in.KeyFindings = append(in.KeyFindings, fmt.Sprintf("Unusually high CTR (above %.1fx the 75th percentile): %s",
			s.OutlierCTRMultiple, list(d.Flags.HighCTROutliers)))
	}
	if len(d.Flags.SevereLossAds) > 0 {
		in.KeyFindings = append(in.KeyFindings, fmt.Sprintf("Severe losses (ROI below %.0f%%): %s",
			s.SevereLossROI*100, list(d.Flags.SevereLossAds)))
	}

	// recommendations
	if len(d.Flags.NegativeROIAds) > 0 {
		in.OptimizationRecommendations = append(in.OptimizationRecommendations, fmt.Sprintf("Pause ads with negative ROI (%s) to save %s in spend",
			list(d.Flags.NegativeROIAds), money(costWhere(ads, negativeROI))))
	}
	if ids := adsWhere(ads, func(m models.DerivedMetrics) bool {
		return !m.IsUndefined(models.MetricROI) && m.ROI > reallocateROI
	}); len(ids) > 0 {
		in.OptimizationRecommendations = append(in.OptimizationRecommendations, fmt.Sprintf("Shift budget toward ads with ROI above %.0f%%: %s",
			reallocateROI*100, list(ids)))
	}
	if len(d.Flags.LowCTRAds) > 0 {
		in.OptimizationRecommendations = append(in.OptimizationRecommendations, fmt.Sprintf("Rework creative and targeting for ads with CTR below %.2f%%: %s",
			s.lowBound(models.MetricCTR)*100, list(d.Flags.LowCTRAds)))
	}
	if ids := adsWhere(ads, func(m models.DerivedMetrics) bool {
		return !m.IsUndefined(models.MetricConversionRate) && m.ConversionRate > replicateConvRate
	}); len(ids) > 0 {
		in.OptimizationRecommendations = append(in.OptimizationRecommendations, fmt.Sprintf("Study ads converting above %.0f%% (%s) and replicate what works",
			replicateConvRate*100, list(ids)))
	}
	in.OptimizationRecommendations = append(in.OptimizationRecommendations,
		fmt.Sprintf("Set a CPA alert line at %s and pause ads that cross it", money(s.CPAAlert)))

	// priority actions
	if len(worst) > 0 {
		w := worst[0]
		if w.Impact.Loss > 0 {
			in.PriorityActions = append(in.PriorityActions, fmt.Sprintf("Urgent: stop ad %s (%s), loss so far %s", w.AdID, w.Campaign, money(w.Impact.Loss)))
		} else {
			in.PriorityActions = append(in.PriorityActions, fmt.Sprintf("Urgent: review ad %s (%s), lowest performance score %.3f", w.AdID, w.Campaign, w.Score))
		}
	}
	if len(ranked) > 0 {
		b := ranked[0]
		in.PriorityActions = append(in.PriorityActions, fmt.Sprintf("Opportunity: raise %s budget by %d%%, campaign ROI is %.1f%%", b.Campaign, budgetIncreasePct, b.Metrics.ROI*100))
	}
	if n := len(d.Flags.LowCTRAds); n > 0 {
		in.PriorityActions = append(in.PriorityActions, fmt.Sprintf("Fix: rewrite creative for %d low-CTR ads", n))
	}
	in.PriorityActions = append(in.PriorityActions, fmt.Sprintf("Monitor: track ROI daily with an alert at %.0f%%", s.ROIMonitor*100))
	return in
}

// rankDefinedROI ranks campaigns that had spend, best ROI first.
func rankDefinedROI(camps []models.CampaignAggregate) []models.CampaignAggregate {
	var withSpend []models.CampaignAggregate
	for _, c := range camps {
		if !c.Metrics.IsUndefined(models.MetricROI) {
			withSpend = append(withSpend, c)
		}
	}
	return RankCampaignsByROI(withSpend)
}

func roasSpread(camps []models.CampaignAggregate) (best, worst models.CampaignAggregate, ok bool) {
	for _, c := range camps {
		if c.Metrics.IsUndefined(models.MetricROAS) {
			continue
		}
		if !ok {
			best, worst, ok = c, c, true
			continue
		}
		if c.Metrics.ROAS > best.Metrics.ROAS {
			best = c
		}
		if c.Metrics.ROAS < worst.Metrics.ROAS {
			worst = c
		}
	}
	if ok && best.Campaign == worst.Campaign {
		return best, worst, false
	}
	return best, worst, ok
}

func spread(ads []models.AdMetrics, m models.Metric) (lo, hi float64, ok bool) {
	for _, a := range ads {
		if a.Metrics.IsUndefined(m) {
			continue
		}
		v := a.Metrics.Value(m)
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		lo, hi = min(lo, v), max(hi, v)
	}
	return lo, hi, ok
}

func meanOf(ads []models.AdMetrics, m models.Metric) float64 {
	vals := make([]float64, 0, len(ads))
	for _, a := range ads {
		if !a.Metrics.IsUndefined(m) {
			vals = append(vals, a.Metrics.Value(m))
		}
	}
	return mean(vals)
}

func adsWhere(ads []models.AdMetrics, keep func(models.DerivedMetrics) bool) []string {
	var ids []string
	for _, a := range ads {
		if keep(a.Metrics) {
			ids = append(ids, a.AdID)
		}
	}
	return ids
}

// costWhere sums the spend of the rows matching keep. Rows are matched one
// by one, so ads sharing an ad_id are not counted twice.
func costWhere(ads []models.AdMetrics, keep func(models.DerivedMetrics) bool) float64 {
	var total float64
	for _, a := range ads {
		if keep(a.Metrics) {
			total += a.Cost
		}
	}
	return total
}

func negativeROI(m models.DerivedMetrics) bool {
	return !m.IsUndefined(models.MetricROI) && m.ROI < 0
}

func list(ids []string) string {
	if len(ids) > maxListedAdsInInsight {
		return strings.Join(ids[:maxListedAdsInInsight], ", ") + fmt.Sprintf(" and %d more", len(ids)-maxListedAdsInInsight)
	}
	return strings.Join(ids, ", ")
}

func money(v float64) string { return fmt.Sprintf("%.2f", v) }
