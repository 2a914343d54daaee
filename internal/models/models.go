package models

import "time"

// Column names of the input table.
const (
	ColAdID        = "ad_id"
	ColCampaign    = "campaign"
	ColImpressions = "impressions"
	ColClicks      = "clicks"
	ColConversions = "conversions"
	ColCost        = "cost"
	ColRevenue     = "revenue"
)

// RequiredColumns lists every column the loader expects, in canonical order.
var RequiredColumns = []string{ColAdID, ColCampaign, ColImpressions, ColClicks, ColConversions, ColCost, ColRevenue}

// NumericColumns is the subset of RequiredColumns holding counts or money.
var NumericColumns = []string{ColImpressions, ColClicks, ColConversions, ColCost, ColRevenue}

// Row is one ad as read from the input table.
type Row struct {
	AdID        string  `json:"ad_id"`
	Campaign    string  `json:"campaign"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	Cost        float64 `json:"cost"`
	Revenue     float64 `json:"revenue"`
}

// Numeric returns the value of a numeric column, or 0 for unknown names.
func (r Row) Numeric(col string) float64 {
	switch col {
	case ColImpressions:
		return float64(r.Impressions)
	case ColClicks:
		return float64(r.Clicks)
	case ColConversions:
		return float64(r.Conversions)
	case ColCost:
		return r.Cost
	case ColRevenue:
		return r.Revenue
	}
	return 0
}

// Dataset is the loaded table plus what the loader noticed about blank cells.
type Dataset struct {
	Source  string
	Rows    []Row
	Missing map[string]int // blank cells per column
}

type Metric string

const (
	MetricCTR            Metric = "ctr"
	MetricConversionRate Metric = "conversion_rate"
	MetricROI            Metric = "roi"
	MetricROAS           Metric = "roas"
	MetricCPC            Metric = "cpc"
	MetricCPA            Metric = "cpa"
)

// AllMetrics lists the derived metrics in report order.
var AllMetrics = []Metric{MetricCTR, MetricConversionRate, MetricROI, MetricROAS, MetricCPC, MetricCPA}

// Percent reports whether the metric is read as a percentage.
func (m Metric) Percent() bool {
	return m == MetricCTR || m == MetricConversionRate || m == MetricROI
}

// CostPer reports whether the metric divides spend by an outcome count.
func (m Metric) CostPer() bool {
	return m == MetricCPC || m == MetricCPA
}

func (m Metric) Valid() bool {
	for _, k := range AllMetrics {
		if k == m {
			return true
		}
	}
	return false
}

// DerivedMetrics holds the ratios for a row or an aggregate. Ratios are
// fractions (0.05 is 5% CTR). A ratio with a zero denominator is 0 and listed
// in Undefined.
type DerivedMetrics struct {
	CTR            float64  `json:"ctr"`
	ConversionRate float64  `json:"conversion_rate"`
	ROI            float64  `json:"roi"`
	ROAS           float64  `json:"roas"`
	CPC            float64  `json:"cpc"`
	CPA            float64  `json:"cpa"`
	Undefined      []Metric `json:"undefined,omitempty"`
}

func (d DerivedMetrics) Value(m Metric) float64 {
	switch m {
	case MetricCTR:
		return d.CTR
	case MetricConversionRate:
		return d.ConversionRate
	case MetricROI:
		return d.ROI
	case MetricROAS:
		return d.ROAS
	case MetricCPC:
		return d.CPC
	case MetricCPA:
		return d.CPA
	}
	return 0
}

func (d DerivedMetrics) IsUndefined(m Metric) bool {
	for _, u := range d.Undefined {
		if u == m {
			return true
		}
	}
	return false
}

// AdMetrics is a row with its derived metrics and composite score.
// Index is the row's position in the input table.
type AdMetrics struct {
	Index int `json:"index"`
	Row
	Metrics DerivedMetrics `json:"metrics"`
	Score   float64        `json:"performance_score"`
}

type CampaignAggregate struct {
	Campaign    string         `json:"campaign"`
	AdCount     int            `json:"ad_count"`
	Impressions int64          `json:"impressions"`
	Clicks      int64          `json:"clicks"`
	Conversions int64          `json:"conversions"`
	Cost        float64        `json:"cost"`
	Revenue     float64        `json:"revenue"`
	Metrics     DerivedMetrics `json:"metrics"`
	Score       float64        `json:"performance_score"`
	Status      string         `json:"status"` // excellent, average or losing
}

type ViolationKind string

const (
	ViolationLow       ViolationKind = "low"
	ViolationHigh      ViolationKind = "high"
	ViolationUndefined ViolationKind = "undefined"
)

type Violation struct {
	Metric Metric        `json:"metric"`
	Kind   ViolationKind `json:"kind"`
	Value  float64       `json:"value"`
	Bound  float64       `json:"bound"`
}

type AnomalyRecord struct {
	Index         int         `json:"index"`
	AdID          string      `json:"ad_id"`
	Campaign      string      `json:"campaign"`
	Issues        []string    `json:"issues"`
	Violations    []Violation `json:"violations"`
	SeverityScore int         `json:"severity_score"`
}

type PerformanceScore struct {
	Index    int     `json:"index"`
	AdID     string  `json:"ad_id"`
	Campaign string  `json:"campaign"`
	Score    float64 `json:"performance_score"`
}

type FinancialImpact struct {
	Cost    float64 `json:"cost"`
	Revenue float64 `json:"revenue"`
	Loss    float64 `json:"loss"` // cost - revenue
}

// Performer is an ad picked by score for the worst or top list.
type Performer struct {
	Index    int             `json:"index"`
	AdID     string          `json:"ad_id"`
	Campaign string          `json:"campaign"`
	Score    float64         `json:"performance_score"`
	Metrics  DerivedMetrics  `json:"metrics"`
	Impact   FinancialImpact `json:"financial_impact"`
}

type DataQualityWarning struct {
	Index   int    `json:"index"`
	AdID    string `json:"ad_id"`
	Kind    string `json:"kind"` // clicks_exceed_impressions, conversions_exceed_clicks, negative_value
	Message string `json:"message"`
}

type QualityReport struct {
	TotalRecords   int                  `json:"total_records"`
	MissingValues  map[string]int       `json:"missing_values"`
	NegativeValues map[string]int       `json:"negative_values"`
	ZeroValues     map[string]int       `json:"zero_values"`
	LogicalIssues  []string             `json:"logical_issues"`
	Warnings       []DataQualityWarning `json:"warnings"`
}

type Insights struct {
	ExecutiveSummary            []string `json:"executive_summary"`
	KeyFindings                 []string `json:"key_findings"`
	OptimizationRecommendations []string `json:"optimization_recommendations"`
	PriorityActions             []string `json:"priority_actions"`
}

type OverallMetrics struct {
	TotalCost        float64 `json:"total_cost"`
	TotalRevenue     float64 `json:"total_revenue"`
	OverallROI       float64 `json:"overall_roi"`
	TotalConversions int64   `json:"total_conversions"`
	AvgCTR           float64 `json:"avg_ctr"`
}

type OptimizationFlags struct {
	NegativeROIAds  []string `json:"negative_roi_ads"`
	LowCTRAds       []string `json:"low_ctr_ads"`
	HighCPAAds      []string `json:"high_cpa_ads"`
	HighCTROutliers []string `json:"high_ctr_outliers"`
	SevereLossAds   []string `json:"severe_loss_ads"`
}

type Dashboard struct {
	Overall OverallMetrics    `json:"overall_metrics"`
	Flags   OptimizationFlags `json:"optimization_flags"`
}

// Report is the full output of one analysis run.
type Report struct {
	RunID           string              `json:"run_id"`
	GeneratedAt     time.Time           `json:"generated_at"`
	Source          string              `json:"source"`
	Quality         QualityReport       `json:"quality_report"`
	Ads             []AdMetrics         `json:"metrics"`
	Anomalies       []AnomalyRecord     `json:"anomalies"`
	Campaigns       []CampaignAggregate `json:"campaigns"`
	WorstPerformers []Performer         `json:"worst_performers"`
	TopPerformers   []Performer         `json:"top_performers"`
	Insights        Insights            `json:"insights"`
	Dashboard       Dashboard           `json:"dashboard"`
}

// ReportSummary is the listing entry for a stored report.
type ReportSummary struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Source      string    `json:"source"`
	Ads         int       `json:"ads"`
	Campaigns   int       `json:"campaigns"`
	Anomalies   int       `json:"anomalies"`
}

func (r Report) Summary() ReportSummary {
	return ReportSummary{
		RunID:       r.RunID,
		GeneratedAt: r.GeneratedAt,
		Source:      r.Source,
		Ads:         len(r.Ads),
		Campaigns:   len(r.Campaigns),
		Anomalies:   len(r.Anomalies),
	}
}
