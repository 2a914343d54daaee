package httpx

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/AngelCh415/adperf/internal/ingest"
	"github.com/AngelCh415/adperf/internal/metrics"
	"github.com/AngelCh415/adperf/internal/models"
	"github.com/AngelCh415/adperf/internal/observability"
	"github.com/AngelCh415/adperf/internal/report"
	"github.com/AngelCh415/adperf/internal/store"
	"github.com/AngelCh415/adperf/internal/utils"
)

// Deps is what the router needs from main.
type Deps struct {
	Log            *slog.Logger
	Engine         *metrics.Current
	Store          *store.MemoryStore
	Service        *metrics.Service
	Metrics        *observability.Metrics
	Gatherer       prometheus.Gatherer
	MaxUploadBytes int64
}

type handler struct{ Deps }

const defaultMaxUpload = 32 << 20

func NewRouter(d Deps) http.Handler {
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = defaultMaxUpload
	}
	h := &handler{Deps: d}
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(d.Log))
	mux.Use(middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", utils.RequestIDHeader},
		ExposedHeaders: []string{utils.RequestIDHeader, "X-Report-Cached"},
		MaxAge:         300,
	}))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Handle("/metrics", observability.Handler(d.Gatherer))

	mux.Post("/analyze", h.analyze)

	mux.Route("/reports", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			h.writeJSON(w, http.StatusOK, h.Service.List())
		})
		r.Get("/{id}", h.getReport)
		r.Get("/{id}/ads", h.queryAds)
		r.Get("/{id}/campaigns", h.queryCampaigns)
	})

	return mux
}

// analyze loads the CSV body, runs the current engine and stores the report.
// Re-posting the same bytes with the same source under the same settings
// returns the stored run.
func (h *handler) analyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.MaxUploadBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		h.Metrics.ObserveOutcome(observability.OutcomeError)
		if errors.As(err, &tooBig) {
			http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	source := r.URL.Query().Get("source")
	if source == "" {
		source = "upload"
	}
	eng := h.Engine.Engine()
	digest := uploadDigest(body, source, eng.Fingerprint())
	if id, ok := h.Store.Seen(digest); ok {
		if rep, found := h.Store.Get(id); found {
			h.Metrics.ObserveOutcome(observability.OutcomeCached)
			w.Header().Set("X-Report-Cached", "true")
			h.writeJSON(w, http.StatusOK, report.Rounded(rep))
			return
		}
	}

	ds, err := ingest.ReadCSV(bytes.NewReader(body), source)
	if err != nil {
		var dfe *ingest.DataFormatError
		if errors.As(err, &dfe) {
			h.Metrics.ObserveOutcome(observability.OutcomeFormatError)
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":           dfe.Error(),
				"missing_columns": dfe.Missing,
			})
			return
		}
		h.Metrics.ObserveOutcome(observability.OutcomeError)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rep := eng.Analyze(ds)
	h.Store.Put(digest, rep)
	h.Metrics.ObserveRun(rep, time.Since(start))
	h.Metrics.StoredReports.Set(float64(h.Store.Len()))

	for _, warn := range rep.Quality.Warnings {
		h.Log.Warn("data quality", slog.String("run_id", rep.RunID), slog.String("ad_id", warn.AdID),
			slog.String("kind", warn.Kind), slog.String("detail", warn.Message))
	}
	h.Log.Info("analysis complete", slog.String("run_id", rep.RunID), slog.String("rid", utils.RID(r.Context())),
		slog.Int("ads", len(rep.Ads)), slog.Int("anomalies", len(rep.Anomalies)))
	h.writeJSON(w, http.StatusCreated, report.Rounded(rep))
}

func (h *handler) getReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Service.Report(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report.Rounded(rep))
}

func (h *handler) queryAds(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.QueryAds(chi.URLParam(r, "id"), r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report.Rounded(models.Report{Ads: rows}).Ads)
}

func (h *handler) queryCampaigns(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.QueryCampaigns(chi.URLParam(r, "id"), r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report.Rounded(models.Report{Campaigns: rows}).Campaigns)
}

// uploadDigest keys the repeat-upload cache. The source label is part of the
// report, so it is part of the key.
func uploadDigest(body []byte, source, fingerprint string) string {
	sum := sha256.New()
	sum.Write(body)
	sum.Write([]byte{0})
	sum.Write([]byte(source))
	sum.Write([]byte{0})
	sum.Write([]byte(fingerprint))
	return hex.EncodeToString(sum.Sum(nil))
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, metrics.ErrReportNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, metrics.ErrBadSort):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeJSON encodes v before writing the header so an encoding failure turns
// into a 500 instead of a truncated body.
func (h *handler) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", " ")
	if err := enc.Encode(v); err != nil {
		h.Log.Error("encode response", slog.Int("status", status), slog.String("err", err.Error()))
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
