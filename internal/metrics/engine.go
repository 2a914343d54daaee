package metrics

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/AngelCh415/adperf/internal/models"
)

// Engine turns a dataset into a Report. It holds no state between runs; the
// clock and id source exist so tests can pin them.
type Engine struct {
	settings Settings
	now      func() time.Time
	newID    func() string
}

func NewEngine(s Settings) (*Engine, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	return &Engine{
		settings: s,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}, nil
}

func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

func (e *Engine) WithIDs(newID func() string) *Engine {
	e.newID = newID
	return e
}

func (e *Engine) Settings() Settings { return e.settings }

// Fingerprint identifies the settings so identical uploads analyzed under
// different settings are told apart.
func (e *Engine) Fingerprint() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%+v", e.settings)))
	return hex.EncodeToString(sum[:8])
}

// Analyze runs every stage over ds. Rank-dependent results need the full set,
// so the stages run in sequence over the complete table.
func (e *Engine) Analyze(ds models.Dataset) models.Report {
	s := e.settings

	ads := ComputeAll(ds.Rows)
	scores := Score(ads, s.Weights)
	for i := range ads {
		ads[i].Score = scores[i].Score
	}
	camps := AggregateCampaigns(ads, s.CampaignWeights)
	worst := performers(ads, Worst(scores, s.WorstN))
	top := performers(ads, Top(scores, s.TopN))

	dash := models.Dashboard{Overall: Overall(ads), Flags: Flags(ads, s)}

	return models.Report{
		RunID:           e.newID(),
		GeneratedAt:     e.now(),
		Source:          ds.Source,
		Quality:         CheckQuality(ds),
		Ads:             ads,
		Anomalies:       DetectAnomalies(ads, s.Thresholds),
		Campaigns:       camps,
		WorstPerformers: worst,
		TopPerformers:   top,
		Insights:        BuildInsights(ads, camps, worst, dash, s),
		Dashboard:       dash,
	}
}

// Current holds the engine used for new runs. A settings reload swaps it
// while runs already in flight finish on the engine they started with.
type Current struct {
	p atomic.Pointer[Engine]
}

func NewCurrent(e *Engine) *Current {
	c := &Current{}
	c.p.Store(e)
	return c
}

func (c *Current) Engine() *Engine { return c.p.Load() }

func (c *Current) Swap(e *Engine) { c.p.Store(e) }
