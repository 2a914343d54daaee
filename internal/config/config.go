package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	InputPath      string
	OutputPath     string
	Format         string
	SettingsPath   string
	Port           string
	MaxUploadBytes int64
	ReportLimit    int
	LogLevel       slog.Level
}

func FromEnv() Config {
	return Config{
		InputPath:      os.Getenv("AD_INPUT_PATH"),
		OutputPath:     os.Getenv("AD_OUTPUT_PATH"),
		Format:         envOr("AD_REPORT_FORMAT", "text"),
		SettingsPath:   os.Getenv("AD_ENGINE_CONFIG"),
		Port:           envOr("PORT", "8080"),
		MaxUploadBytes: int64(envInt("MAX_UPLOAD_MB", 32)) << 20,
		ReportLimit:    envInt("REPORT_LIMIT", 50),
		LogLevel:       parseLevel(os.Getenv("LOG_LEVEL")),
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
