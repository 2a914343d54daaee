package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AngelCh415/adperf/internal/models"
)

func TestSettings_Validate(t *testing.T) {
	assert.NoError(t, DefaultSettings().Validate())

	cases := []struct {
		name   string
		mutate func(*Settings)
		errMsg string
	}{
		{"unknown metric", func(s *Settings) { s.Thresholds[0].Metric = "ctrr" }, `unknown metric "ctrr"`},
		{"duplicate metric", func(s *Settings) { s.Thresholds[1].Metric = models.MetricCTR }, "duplicate metric"},
		{"nan bound", func(s *Settings) { s.Thresholds[0].Low = math.NaN() }, "bounds must be numbers"},
		{"inverted bounds", func(s *Settings) { s.Thresholds[0].Low = 0.5 }, "exceeds high"},
		{"negative weight", func(s *Settings) { s.Weights.CTR = -0.1; s.Weights.ROI = 0.6 }, "weights must not be negative"},
		{"weights off", func(s *Settings) { s.Weights.ROI = 0.5 }, "weights sum to"},
		{"campaign weights off", func(s *Settings) { s.CampaignWeights.ROI = 0.1 }, "campaign weights sum to"},
		{"negative n", func(s *Settings) { s.WorstN = -1 }, "must not be negative"},
		{"zero outlier multiple", func(s *Settings) { s.OutlierCTRMultiple = 0 }, "outlier_ctr_multiple"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := DefaultSettings()
			tc.mutate(&s)
			err := s.Validate()
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tc.errMsg)
			}
		})
	}
}

func TestSettings_LowBoundFallsBack(t *testing.T) {
	s := DefaultSettings()
	s.Thresholds = nil
	assert.Equal(t, 0.02, s.lowBound(models.MetricCTR))
	assert.Equal(t, 0.50, s.lowBound(models.MetricROI))
}
