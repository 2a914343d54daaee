package metrics

import (
	"fmt"

	"github.com/AngelCh415/adperf/internal/models"
)

const (
	WarnClicksExceedImpressions = "clicks_exceed_impressions"
	WarnConversionsExceedClicks = "conversions_exceed_clicks"
	WarnNegativeValue           = "negative_value"
)

// CheckQuality inspects the dataset without changing it. Everything found
// here is a warning; the analysis proceeds regardless.
func CheckQuality(ds models.Dataset) models.QualityReport {
	q := models.QualityReport{
		TotalRecords:   len(ds.Rows),
		MissingValues:  make(map[string]int, len(models.RequiredColumns)),
		NegativeValues: make(map[string]int, len(models.NumericColumns)),
		ZeroValues:     make(map[string]int, len(models.NumericColumns)),
		LogicalIssues:  make([]string, 0),
		Warnings:       make([]models.DataQualityWarning, 0),
	}
	for _, col := range models.RequiredColumns {
		q.MissingValues[col] = ds.Missing[col]
	}
	for _, col := range models.NumericColumns {
		q.NegativeValues[col] = 0
		q.ZeroValues[col] = 0
	}

	var overClicks, overConversions int
	for i, r := range ds.Rows {
		for _, col := range models.NumericColumns {
			v := r.Numeric(col)
			switch {
			case v < 0:
				q.NegativeValues[col]++
				q.Warnings = append(q.Warnings, models.DataQualityWarning{
					Index: i, AdID: r.AdID, Kind: WarnNegativeValue,
					Message: fmt.Sprintf("%s is negative (%v)", col, v),
				})
			case v == 0:
				q.ZeroValues[col]++
			}
		}
		if r.Clicks > r.Impressions {
			overClicks++
			q.Warnings = append(q.Warnings, models.DataQualityWarning{
				Index: i, AdID: r.AdID, Kind: WarnClicksExceedImpressions,
				Message: fmt.Sprintf("clicks %d exceed impressions %d", r.Clicks, r.Impressions),
			})
		}
		if r.Conversions > r.Clicks {
			overConversions++
			q.Warnings = append(q.Warnings, models.DataQualityWarning{
				Index: i, AdID: r.AdID, Kind: WarnConversionsExceedClicks,
				Message: fmt.Sprintf("conversions %d exceed clicks %d", r.Conversions, r.Clicks),
			})
		}
	}

	if overClicks > 0 {
		q.LogicalIssues = append(q.LogicalIssues, fmt.Sprintf("clicks exceed impressions in %d rows", overClicks))
	}
	if overConversions > 0 {
		q.LogicalIssues = append(q.LogicalIssues, fmt.Sprintf("conversions exceed clicks in %d rows", overConversions))
	}
	var negatives int
	for _, n := range q.NegativeValues {
		negatives += n
	}
	if negatives > 0 {
		q.LogicalIssues = append(q.LogicalIssues, fmt.Sprintf("%d negative values", negatives))
	}
	return q
}
