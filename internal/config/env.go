package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"

	"github.com/andy1rusu999/tiktok-transcriptor1/internal/domain"
)

// envOverlay lists the TRANSCRIBER_* variables. Empty values leave the
// loaded settings alone.
type envOverlay struct {
	ServerURL             string `env:"TRANSCRIBER_SERVER_URL"`
	APIBase               string `env:"TRANSCRIBER_API_BASE"`
	OutputDir             string `env:"TRANSCRIBER_OUTPUT_DIR"`
	Language              string `env:"TRANSCRIBER_LANGUAGE"`
	PollIntervalSeconds   int    `env:"TRANSCRIBER_POLL_INTERVAL_SECONDS"`
	RequestTimeoutSeconds int    `env:"TRANSCRIBER_REQUEST_TIMEOUT_SECONDS"`
	LogLevel              string `env:"TRANSCRIBER_LOG_LEVEL"`
	LogFormat             string `env:"TRANSCRIBER_LOG_FORMAT"`
	LogOutput             string `env:"TRANSCRIBER_LOG_OUTPUT"`
	LogFile               string `env:"TRANSCRIBER_LOG_FILE"`
}

// LoadDotEnv loads files (".env" when none are given) into the process
// environment. Missing files are ignored; existing variables are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

// ApplyEnv overlays TRANSCRIBER_* variables on settings.
func ApplyEnv(settings domain.Settings) (domain.Settings, error) {
	var overlay envOverlay
	if err := env.Parse(&overlay); err != nil {
		return settings, fmt.Errorf("parse environment: %w", err)
	}

	setString(&settings.ServerURL, overlay.ServerURL)
	setString(&settings.APIBase, overlay.APIBase)
	setString(&settings.OutputDir, overlay.OutputDir)
	setString(&settings.Language, overlay.Language)
	setString(&settings.Log.Level, overlay.LogLevel)
	setString(&settings.Log.Format, overlay.LogFormat)
	setString(&settings.Log.Output, overlay.LogOutput)
	setString(&settings.Log.File, overlay.LogFile)
	if overlay.PollIntervalSeconds > 0 {
		settings.PollIntervalSeconds = overlay.PollIntervalSeconds
	}
	if overlay.RequestTimeoutSeconds > 0 {
		settings.RequestTimeoutSeconds = overlay.RequestTimeoutSeconds
	}
	return settings, nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
