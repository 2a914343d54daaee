package metrics

import (
	"sort"

	"github.com/AngelCh415/adperf/internal/models"
)

const (
	StatusExcellent = "excellent"
	StatusAverage   = "average"
	StatusLosing    = "losing"
)

// AggregateCampaigns sums rows per campaign and recomputes the ratios from
// the totals. The result is sorted by campaign name.
func AggregateCampaigns(ads []models.AdMetrics, w CampaignWeights) []models.CampaignAggregate {
	byName := make(map[string]*models.CampaignAggregate)
	for _, a := range ads {
		agg, ok := byName[a.Campaign]
		if !ok {
			agg = &models.CampaignAggregate{Campaign: a.Campaign}
			byName[a.Campaign] = agg
		}
		agg.AdCount++
		agg.Impressions += a.Impressions
		agg.Clicks += a.Clicks
		agg.Conversions += a.Conversions
		agg.Cost += a.Cost
		agg.Revenue += a.Revenue
	}

	out := make([]models.CampaignAggregate, 0, len(byName))
	for _, agg := range byName {
		agg.Metrics = ratios(agg.Impressions, agg.Clicks, agg.Conversions, agg.Cost, agg.Revenue)
		agg.Status = campaignStatus(agg.Metrics)
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Campaign < out[j].Campaign })

	roi := make([]float64, len(out))
	roas := make([]float64, len(out))
	conv := make([]float64, len(out))
	for i, c := range out {
		roi[i], roas[i], conv[i] = c.Metrics.ROI, c.Metrics.ROAS, c.Metrics.ConversionRate
	}
	roiR, roasR, convR := PercentileRanks(roi), PercentileRanks(roas), PercentileRanks(conv)
	for i := range out {
		out[i].Score = roiR[i]*w.ROI + roasR[i]*w.ROAS + convR[i]*w.ConversionRate
	}
	return out
}

func campaignStatus(d models.DerivedMetrics) string {
	switch {
	case d.ROI > 1:
		return StatusExcellent
	case d.ROI > 0:
		return StatusAverage
	default:
		return StatusLosing
	}
}

// RankCampaignsByROI returns a copy ordered by ROI, best first, ties by name.
func RankCampaignsByROI(camps []models.CampaignAggregate) []models.CampaignAggregate {
	out := make([]models.CampaignAggregate, len(camps))
	copy(out, camps)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Metrics.ROI != out[j].Metrics.ROI {
			return out[i].Metrics.ROI > out[j].Metrics.ROI
		}
		return out[i].Campaign < out[j].Campaign
	})
	return out
}
