// Command adreport analyzes an advertising performance CSV and prints the
// report as text or JSON.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/AngelCh415/adperf/internal/config"
	"github.com/AngelCh415/adperf/internal/ingest"
	"github.com/AngelCh415/adperf/internal/metrics"
	"github.com/AngelCh415/adperf/internal/report"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.FromEnv()

	fs := flag.NewFlagSet("adreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	input := fs.String("input", cfg.InputPath, "CSV file with ad_id, campaign, impressions, clicks, conversions, cost, revenue")
	output := fs.String("output", cfg.OutputPath, "write the report here instead of stdout")
	format := fs.String("format", cfg.Format, "report format: text or json")
	settingsPath := fs.String("config", cfg.SettingsPath, "YAML file with thresholds and weights")
	worst := fs.Int("worst", -1, "number of worst performers (default from settings)")
	top := fs.Int("top", -1, "number of budget reallocation candidates (default from settings)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *input == "" {
		fmt.Fprintln(stderr, "Error: -input is required (or set AD_INPUT_PATH)")
		return exitUsage
	}
	if *format != report.FormatText && *format != report.FormatJSON {
		fmt.Fprintf(stderr, "Error: -format must be %q or %q\n", report.FormatText, report.FormatJSON)
		return exitUsage
	}

	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	settings, err := config.LoadSettings(*settingsPath)
	if err != nil {
		logger.Error("load settings", slog.String("err", err.Error()))
		return exitError
	}
	if *worst >= 0 {
		settings.WorstN = *worst
	}
	if *top >= 0 {
		settings.TopN = *top
	}
	eng, err := metrics.NewEngine(settings)
	if err != nil {
		logger.Error("engine", slog.String("err", err.Error()))
		return exitError
	}

	ds, err := ingest.LoadFile(*input)
	if err != nil {
		var dfe *ingest.DataFormatError
		if errors.As(err, &dfe) {
			logger.Error("input format", slog.String("path", *input), slog.Any("missing_columns", dfe.Missing), slog.String("err", err.Error()))
		} else {
			logger.Error("load input", slog.String("path", *input), slog.String("err", err.Error()))
		}
		return exitError
	}

	rep := eng.Analyze(ds)
	for _, w := range rep.Quality.Warnings {
		logger.Warn("data quality", slog.String("ad_id", w.AdID), slog.Int("row", w.Index), slog.String("kind", w.Kind), slog.String("detail", w.Message))
	}

	out := stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			logger.Error("create output", slog.String("path", *output), slog.String("err", err.Error()))
			return exitError
		}
		defer f.Close()
		out = f
	}
	if err := report.Write(out, rep, *format); err != nil {
		logger.Error("write report", slog.String("err", err.Error()))
		return exitError
	}
	logger.Info("analysis complete", slog.String("run_id", rep.RunID), slog.Int("ads", len(rep.Ads)),
		slog.Int("campaigns", len(rep.Campaigns)), slog.Int("anomalies", len(rep.Anomalies)))
	return exitOK
}
