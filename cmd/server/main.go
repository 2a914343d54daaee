package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/AngelCh415/adperf/internal/config"
	"github.com/AngelCh415/adperf/internal/httpx"
	"github.com/AngelCh415/adperf/internal/metrics"
	"github.com/AngelCh415/adperf/internal/observability"
	"github.com/AngelCh415/adperf/internal/store"
)

func main() {
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		logger.Error("load settings", slog.String("err", err.Error()))
		os.Exit(1)
	}
	eng, err := metrics.NewEngine(settings)
	if err != nil {
		logger.Error("engine", slog.String("err", err.Error()))
		os.Exit(1)
	}
	current := metrics.NewCurrent(eng)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	obs := observability.NewMetrics(reg, "")

	st := store.NewMemoryStore(cfg.ReportLimit)
	svc := metrics.NewService(st)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SettingsPath != "" {
		go func() {
			err := config.Watch(ctx, cfg.SettingsPath, logger,
				func(s metrics.Settings) {
					next, err := metrics.NewEngine(s)
					obs.ObserveReload(err)
					if err != nil {
						logger.Error("settings rejected", slog.String("err", err.Error()))
						return
					}
					current.Swap(next)
				},
				obs.ObserveReload,
			)
			if err != nil {
				logger.Error("settings watcher stopped", slog.String("err", err.Error()))
			}
		}()
	}

	r := httpx.NewRouter(httpx.Deps{
		Log:            logger,
		Engine:         current,
		Store:          st,
		Service:        svc,
		Metrics:        obs,
		Gatherer:       reg,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting server", slog.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
