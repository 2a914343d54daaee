package report

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/AngelCh415/adperf/internal/metrics"
	"github.com/AngelCh415/adperf/internal/models"
)

const rule = "=================================================="

// WriteText renders r for a terminal.
func WriteText(w io.Writer, r models.Report) error {
	bw := bufio.NewWriter(w)
	p := &printer{w: bw}

	p.linef("Advertising performance report")
	p.linef("run %s  generated %s  source %s", r.RunID, r.GeneratedAt.Format("2006-01-02 15:04:05 MST"), r.Source)

	p.section("Data quality")
	writeQuality(p, r.Quality)

	p.section("Ad metrics")
	writeAds(p, r.Ads)

	p.section(fmt.Sprintf("Anomalies (%d)", len(r.Anomalies)))
	writeAnomalies(p, r.Anomalies)

	p.section("Campaigns")
	writeCampaigns(p, r.Campaigns)

	p.section(fmt.Sprintf("Worst %d performers", len(r.WorstPerformers)))
	writePerformers(p, r.WorstPerformers)

	p.section("Budget reallocation candidates")
	writePerformers(p, r.TopPerformers)

	p.section("Insights")
	writeInsights(p, r.Insights)

	if p.err != nil {
		return p.err
	}
	return bw.Flush()
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) linef(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) section(title string) {
	p.linef("")
	p.linef("%s", rule)
	p.linef("%s", title)
	p.linef("%s", rule)
}

// table runs fn against a tabwriter on top of the printer.
func (p *printer) table(fn func(tw *tabwriter.Writer)) {
	if p.err != nil {
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fn(tw)
	p.err = tw.Flush()
}

func writeQuality(p *printer, q models.QualityReport) {
	p.linef("records: %d", q.TotalRecords)
	p.linef("missing values: %s", nonZero(q.MissingValues))
	p.linef("negative values: %s", nonZero(q.NegativeValues))
	p.linef("zero values: %s", nonZero(q.ZeroValues))
	if len(q.LogicalIssues) == 0 {
		p.linef("logical checks passed")
		return
	}
	for _, issue := range q.LogicalIssues {
		p.linef("warning: %s", issue)
	}
}

func writeAds(p *printer, ads []models.AdMetrics) {
	if len(ads) == 0 {
		p.linef("no ads")
		return
	}
	p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ad_id\tcampaign\tCTR%\tconv%\tROI%\tROAS\tCPC\tCPA\trevenue\tscore\t")
		for _, a := range ads {
			m := a.Metrics
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%.2f\t%.3f\t\n",
				a.AdID, a.Campaign,
				pct(m, models.MetricCTR), pct(m, models.MetricConversionRate), pct(m, models.MetricROI),
				num(m, models.MetricROAS), num(m, models.MetricCPC), num(m, models.MetricCPA),
				a.Revenue, a.Score)
		}
	})
}

func writeAnomalies(p *printer, anomalies []models.AnomalyRecord) {
	if len(anomalies) == 0 {
		p.linef("no anomalies")
		return
	}
	for i, a := range anomalies {
		p.linef("%d. ad %s (%s), %d issues", i+1, a.AdID, a.Campaign, a.SeverityScore)
		for _, issue := range a.Issues {
			p.linef("   - %s", issue)
		}
	}
}

func writeCampaigns(p *printer, camps []models.CampaignAggregate) {
	if len(camps) == 0 {
		p.linef("no campaigns")
		return
	}
	p.table(func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "campaign\tads\timpressions\tclicks\tconv\tcost\trevenue\tCTR%\tconv%\tROI%\tROAS\tscore\tstatus\t")
		for _, c := range camps {
			m := c.Metrics
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%.2f\t%.2f\t%s\t%s\t%s\t%s\t%.3f\t%s\t\n",
				c.Campaign, c.AdCount, c.Impressions, c.Clicks, c.Conversions, c.Cost, c.Revenue,
				pct(m, models.MetricCTR), pct(m, models.MetricConversionRate), pct(m, models.MetricROI),
				num(m, models.MetricROAS), c.Score, c.Status)
		}
	})

	p.linef("")
	p.linef("ranking by ROI:")
	for i, c := range metrics.RankCampaignsByROI(camps) {
		p.linef("%d. %s: ROI %s (%s)", i+1, c.Campaign, pct(c.Metrics, models.MetricROI), c.Status)
	}
}

func writePerformers(p *printer, ps []models.Performer) {
	if len(ps) == 0 {
		p.linef("none")
		return
	}
	for i, a := range ps {
		m := a.Metrics
		p.linef("%d. ad %s (%s), score %.3f", i+1, a.AdID, a.Campaign, a.Score)
		p.linef("   CTR %s  conv %s  ROI %s  ROAS %s  CPC %s  CPA %s",
			pct(m, models.MetricCTR), pct(m, models.MetricConversionRate), pct(m, models.MetricROI),
			num(m, models.MetricROAS), num(m, models.MetricCPC), num(m, models.MetricCPA))
		p.linef("   cost %.2f  revenue %.2f  loss %.2f", a.Impact.Cost, a.Impact.Revenue, a.Impact.Loss)
	}
}

func writeInsights(p *printer, in models.Insights) {
	groups := []struct {
		title string
		items []string
	}{
		{"Executive summary", in.ExecutiveSummary},
		{"Key findings", in.KeyFindings},
		{"Recommendations", in.OptimizationRecommendations},
		{"Priority actions", in.PriorityActions},
	}
	for _, g := range groups {
		if len(g.items) == 0 {
			continue
		}
		p.linef("%s:", g.title)
		for _, item := range g.items {
			p.linef("  * %s", item)
		}
	}
}

func pct(m models.DerivedMetrics, k models.Metric) string {
	if m.IsUndefined(k) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", m.Value(k)*100)
}

func num(m models.DerivedMetrics, k models.Metric) string {
	if m.IsUndefined(k) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", m.Value(k))
}

// nonZero prints "col=n" pairs in column order, or "none".
func nonZero(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k, n := range counts {
		if n != 0 {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "none"
	}
	order := make(map[string]int, len(models.RequiredColumns))
	for i, c := range models.RequiredColumns {
		order[c] = i
	}
	sort.Slice(keys, func(i, j int) bool { return order[keys[i]] < order[keys[j]] })
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, ", ")
}
