package metrics

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/AngelCh415/adperf/internal/models"
	"github.com/AngelCh415/adperf/internal/store"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrBadSort        = errors.New("unknown sort key")
)

// LatestID resolves to the most recent report.
const LatestID = "latest"

// Service answers queries over stored reports.
type Service struct{ st *store.MemoryStore }

func NewService(st *store.MemoryStore) *Service { return &Service{st: st} }
func norm(s string) string                      { return strings.ToLower(strings.TrimSpace(s)) }

func csvSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, p := range strings.Split(s, ",") {
		p = norm(p)
		if p != "" {
			out[p] = struct{}{}
		}
	}
	return out
}

func (s *Service) Report(id string) (models.Report, error) {
	var (
		r  models.Report
		ok bool
	)
	if id == LatestID {
		r, ok = s.st.Latest()
	} else {
		r, ok = s.st.Get(id)
	}
	if !ok {
		return models.Report{}, fmt.Errorf("%w: %s", ErrReportNotFound, id)
	}
	return r, nil
}

func (s *Service) List() []models.ReportSummary { return s.st.List() }

// QueryAds filters and orders the ads of a report.
//
//	campaign=a,b     only these campaigns (case-insensitive)
//	anomalous=true   only ads with at least one anomaly
//	sort=-score      any metric, score or index; leading '-' for descending
//	limit, offset    pagination
func (s *Service) QueryAds(id string, v url.Values) ([]models.AdMetrics, error) {
	r, err := s.Report(id)
	if err != nil {
		return nil, err
	}
	campSet := csvSet(v.Get("campaign"))
	onlyAnomalous, _ := strconv.ParseBool(v.Get("anomalous"))
	flagged := make(map[int]struct{}, len(r.Anomalies))
	for _, a := range r.Anomalies {
		flagged[a.Index] = struct{}{}
	}

	rows := make([]models.AdMetrics, 0, len(r.Ads))
	for _, a := range r.Ads {
		if len(campSet) > 0 {
			if _, ok := campSet[norm(a.Campaign)]; !ok {
				continue
			}
		}
		if onlyAnomalous {
			if _, ok := flagged[a.Index]; !ok {
				continue
			}
		}
		rows = append(rows, a)
	}

	key, desc := sortKey(v.Get("sort"), "index")
	value, err := adSortValue(key)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return value(rows[i]) > value(rows[j])
		}
		return value(rows[i]) < value(rows[j])
	})

	limit, offset := clampLimitOffset(atoiDef(v.Get("limit"), 100), atoiDef(v.Get("offset"), 0), len(rows))
	return paginate(rows, limit, offset), nil
}

// QueryCampaigns orders the campaigns of a report; sort is name, score or a
// metric, with a leading '-' for descending.
func (s *Service) QueryCampaigns(id string, v url.Values) ([]models.CampaignAggregate, error) {
	r, err := s.Report(id)
	if err != nil {
		return nil, err
	}
	rows := make([]models.CampaignAggregate, len(r.Campaigns))
	copy(rows, r.Campaigns)

	key, desc := sortKey(v.Get("sort"), "name")
	if key == "name" {
		if desc {
			sort.SliceStable(rows, func(i, j int) bool { return rows[i].Campaign > rows[j].Campaign })
		}
		return rows, nil
	}
	var value func(models.CampaignAggregate) float64
	switch {
	case key == "score":
		value = func(c models.CampaignAggregate) float64 { return c.Score }
	case models.Metric(key).Valid():
		m := models.Metric(key)
		value = func(c models.CampaignAggregate) float64 { return c.Metrics.Value(m) }
	default:
		return nil, fmt.Errorf("%w: %s", ErrBadSort, key)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return value(rows[i]) > value(rows[j])
		}
		return value(rows[i]) < value(rows[j])
	})
	return rows, nil
}

func sortKey(raw, def string) (string, bool) {
	raw = norm(raw)
	if raw == "" {
		return def, false
	}
	if strings.HasPrefix(raw, "-") {
		return strings.TrimPrefix(raw, "-"), true
	}
	return raw, false
}

func adSortValue(key string) (func(models.AdMetrics) float64, error) {
	switch {
	case key == "index":
		return func(a models.AdMetrics) float64 { return float64(a.Index) }, nil
	case key == "score":
		return func(a models.AdMetrics) float64 { return a.Score }, nil
	case models.Metric(key).Valid():
		m := models.Metric(key)
		return func(a models.AdMetrics) float64 { return a.Metrics.Value(m) }, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrBadSort, key)
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}
func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset > n {
		offset = n
	}
	return limit, offset
}
