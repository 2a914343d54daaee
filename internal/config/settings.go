package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/AngelCh415/adperf/internal/metrics"
	"github.com/AngelCh415/adperf/internal/models"
)

// settingsFile mirrors the YAML layout. Pointers tell an omitted field from
// an explicit zero.
type settingsFile struct {
	Thresholds      map[string]thresholdFile `yaml:"thresholds"`
	Weights         *weightsFile             `yaml:"weights"`
	CampaignWeights *weightsFile             `yaml:"campaign_weights"`

	WorstN             *int     `yaml:"worst_n"`
	TopN               *int     `yaml:"top_n"`
	CPAAlert           *float64 `yaml:"cpa_alert"`
	ROIMonitor         *float64 `yaml:"roi_monitor"`
	SevereLossROI      *float64 `yaml:"severe_loss_roi"`
	OutlierCTRMultiple *float64 `yaml:"outlier_ctr_multiple"`
}

type thresholdFile struct {
	Name *string  `yaml:"name"`
	Low  *float64 `yaml:"low"`
	High *float64 `yaml:"high"`
}

type weightsFile struct {
	ROI            *float64 `yaml:"roi"`
	ROAS           *float64 `yaml:"roas"`
	ConversionRate *float64 `yaml:"conversion_rate"`
	CTR            *float64 `yaml:"ctr"`
}

// LoadSettings reads the settings file at path over the defaults. An empty
// path yields the defaults.
func LoadSettings(path string) (metrics.Settings, error) {
	if path == "" {
		return metrics.DefaultSettings(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return metrics.Settings{}, fmt.Errorf("config: read file: %w", err)
	}
	return ParseSettings(data)
}

// ParseSettings applies YAML data over the defaults and validates the result.
func ParseSettings(data []byte) (metrics.Settings, error) {
	var f settingsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return metrics.Settings{}, fmt.Errorf("config: parse yaml: %w", err)
	}
	s, err := f.apply(metrics.DefaultSettings())
	if err != nil {
		return metrics.Settings{}, fmt.Errorf("config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return metrics.Settings{}, fmt.Errorf("config: %w", err)
	}
	return s, nil
}

func (f settingsFile) apply(s metrics.Settings) (metrics.Settings, error) {
	// sorted so the first unknown metric reported is stable
	keys := make([]string, 0, len(f.Thresholds))
	for k := range f.Thresholds {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		tf := f.Thresholds[k]
		m := models.Metric(k)
		if !m.Valid() {
			return s, fmt.Errorf("thresholds: unknown metric %q", k)
		}
		for i := range s.Thresholds {
			th := &s.Thresholds[i]
			if th.Metric != m {
				continue
			}
			setString(&th.Name, tf.Name)
			setFloat(&th.Low, tf.Low)
			setFloat(&th.High, tf.High)
		}
	}

	if w := f.Weights; w != nil {
		setFloat(&s.Weights.ROI, w.ROI)
		setFloat(&s.Weights.ROAS, w.ROAS)
		setFloat(&s.Weights.ConversionRate, w.ConversionRate)
		setFloat(&s.Weights.CTR, w.CTR)
	}
	if w := f.CampaignWeights; w != nil {
		if w.CTR != nil {
			return s, fmt.Errorf("campaign_weights: ctr is not part of the campaign score")
		}
		setFloat(&s.CampaignWeights.ROI, w.ROI)
		setFloat(&s.CampaignWeights.ROAS, w.ROAS)
		setFloat(&s.CampaignWeights.ConversionRate, w.ConversionRate)
	}

	if f.WorstN != nil {
		s.WorstN = *f.WorstN
	}
	if f.TopN != nil {
		s.TopN = *f.TopN
	}
	setFloat(&s.CPAAlert, f.CPAAlert)
	setFloat(&s.ROIMonitor, f.ROIMonitor)
	setFloat(&s.SevereLossROI, f.SevereLossROI)
	setFloat(&s.OutlierCTRMultiple, f.OutlierCTRMultiple)
	return s, nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}
