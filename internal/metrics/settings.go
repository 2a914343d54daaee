package metrics

import (
	"errors"
	"fmt"
	"math"

	"github.com/AngelCh415/adperf/internal/models"
)

// weightTolerance bounds the rounding error accepted when checking that a
// weight vector sums to 1.
const weightTolerance = 1e-9

// Threshold flags a metric value below Low or above High. Use math.Inf(1)
// for a High that never fires.
type Threshold struct {
	Metric models.Metric
	Name   string
	Low    float64
	High   float64
}

// Weights for the ad-level composite score.
type Weights struct {
	ROI            float64
	ROAS           float64
	ConversionRate float64
	CTR            float64
}

func (w Weights) Sum() float64 { return w.ROI + w.ROAS + w.ConversionRate + w.CTR }

// CampaignWeights for the campaign-level score. CTR is not part of it.
type CampaignWeights struct {
	ROI            float64
	ROAS           float64
	ConversionRate float64
}

func (w CampaignWeights) Sum() float64 { return w.ROI + w.ROAS + w.ConversionRate }

// Settings is everything an analysis run needs besides the data.
type Settings struct {
	Thresholds      []Threshold
	Weights         Weights
	CampaignWeights CampaignWeights
	WorstN          int
	TopN            int

	// Insight lines.
	CPAAlert           float64 // ads with CPA above this are flagged high_cpa
	ROIMonitor         float64 // suggested daily ROI alert level
	SevereLossROI      float64 // ROI below this is a severe loss
	OutlierCTRMultiple float64 // CTR above this multiple of the 75th percentile is an outlier
}

// DefaultThresholds returns the stock anomaly table.
func DefaultThresholds() []Threshold {
	return []Threshold{
		{Metric: models.MetricCTR, Name: "CTR", Low: 0.02, High: 0.15},
		{Metric: models.MetricConversionRate, Name: "conversion rate", Low: 0.01, High: 0.10},
		{Metric: models.MetricROI, Name: "ROI", Low: 0.50, High: math.Inf(1)},
		{Metric: models.MetricROAS, Name: "ROAS", Low: 2.0, High: math.Inf(1)},
		{Metric: models.MetricCPC, Name: "cost per click", Low: 0, High: 5.0},
		{Metric: models.MetricCPA, Name: "cost per acquisition", Low: 0, High: 100.0},
	}
}

func DefaultSettings() Settings {
	return Settings{
		Thresholds:         DefaultThresholds(),
		Weights:            Weights{ROI: 0.4, ROAS: 0.3, ConversionRate: 0.2, CTR: 0.1},
		CampaignWeights:    CampaignWeights{ROI: 0.4, ROAS: 0.3, ConversionRate: 0.3},
		WorstN:             3,
		TopN:               2,
		CPAAlert:           80,
		ROIMonitor:         0.30,
		SevereLossROI:      -0.50,
		OutlierCTRMultiple: 2,
	}
}

// Validate reports the first structural problem found.
func (s Settings) Validate() error {
	seen := make(map[models.Metric]bool, len(s.Thresholds))
	for i, th := range s.Thresholds {
		if !th.Metric.Valid() {
			return fmt.Errorf("thresholds[%d]: unknown metric %q", i, th.Metric)
		}
		if seen[th.Metric] {
			return fmt.Errorf("thresholds[%d]: duplicate metric %q", i, th.Metric)
		}
		seen[th.Metric] = true
		if math.IsNaN(th.Low) || math.IsNaN(th.High) {
			return fmt.Errorf("thresholds[%d] %q: bounds must be numbers", i, th.Metric)
		}
		if th.Low > th.High {
			return fmt.Errorf("thresholds[%d] %q: low %v exceeds high %v", i, th.Metric, th.Low, th.High)
		}
	}
	for _, w := range []float64{s.Weights.ROI, s.Weights.ROAS, s.Weights.ConversionRate, s.Weights.CTR} {
		if w < 0 {
			return errors.New("weights must not be negative")
		}
	}
	if math.Abs(s.Weights.Sum()-1) > weightTolerance {
		return fmt.Errorf("weights sum to %v, want 1", s.Weights.Sum())
	}
	for _, w := range []float64{s.CampaignWeights.ROI, s.CampaignWeights.ROAS, s.CampaignWeights.ConversionRate} {
		if w < 0 {
			return errors.New("campaign weights must not be negative")
		}
	}
	if math.Abs(s.CampaignWeights.Sum()-1) > weightTolerance {
		return fmt.Errorf("campaign weights sum to %v, want 1", s.CampaignWeights.Sum())
	}
	if s.WorstN < 0 || s.TopN < 0 {
		return errors.New("worst_n and top_n must not be negative")
	}
	if s.OutlierCTRMultiple <= 0 {
		return errors.New("outlier_ctr_multiple must be positive")
	}
	return nil
}

// threshold returns the configured threshold for m.
func (s Settings) threshold(m models.Metric) (Threshold, bool) {
	for _, th := range s.Thresholds {
		if th.Metric == m {
			return th, true
		}
	}
	return Threshold{}, false
}

// lowBound returns the Low of m's threshold, falling back to the stock table.
func (s Settings) lowBound(m models.Metric) float64 {
	if th, ok := s.threshold(m); ok {
		return th.Low
	}
	for _, th := range DefaultThresholds() {
		if th.Metric == m {
			return th.Low
		}
	}
	return 0
}
