package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/andy1rusu999/tiktok-transcriptor1/internal/domain"
)

const (
	defaultServerURL    = "http://127.0.0.1:5000"
	defaultAPIBase      = "/api"
	defaultPollInterval = 2
	appDirName          = ".tiktok-transcriber"
)

// AppDir returns the per-user application directory.
func AppDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, appDirName)
}

// DefaultSettingsPath is where settings live unless TRANSCRIBER_CONFIG_FILE says otherwise.
func DefaultSettingsPath() string {
	if path := strings.TrimSpace(os.Getenv("TRANSCRIBER_CONFIG_FILE")); path != "" {
		return path
	}
	return filepath.Join(AppDir(), "settings.json")
}

// DefaultOutputDir returns the default transcript export directory.
func DefaultOutputDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, "Documents", "Transcripts")
}

// DefaultSettings returns baseline local configuration for first launch.
func DefaultSettings() domain.Settings {
	return domain.Settings{
		ServerURL:           defaultServerURL,
		APIBase:             defaultAPIBase,
		OutputDir:           DefaultOutputDir(),
		Language:            domain.LanguageAuto,
		PollIntervalSeconds: defaultPollInterval,
		Log: domain.LogSettings{
			Level:      "info",
			Format:     "text",
			Output:     "both",
			File:       filepath.Join(AppDir(), "logs", "app.log"),
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}
}

// Normalize trims user input and fills empty fields from DefaultSettings.
func Normalize(settings domain.Settings) domain.Settings {
	defaults := DefaultSettings()

	settings.ServerURL = strings.TrimRight(strings.TrimSpace(settings.ServerURL), "/")
	settings.APIBase = strings.TrimSpace(settings.APIBase)
	settings.OutputDir = strings.TrimSpace(settings.OutputDir)
	settings.Language = strings.TrimSpace(settings.Language)

	if settings.ServerURL == "" {
		settings.ServerURL = defaults.ServerURL
	}
	if settings.APIBase == "" {
		settings.APIBase = defaults.APIBase
	}
	if settings.OutputDir == "" {
		settings.OutputDir = defaults.OutputDir
	}
	if settings.Language == "" {
		settings.Language = defaults.Language
	}
	if settings.PollIntervalSeconds <= 0 {
		settings.PollIntervalSeconds = defaults.PollIntervalSeconds
	}
	if settings.RequestTimeoutSeconds < 0 {
		settings.RequestTimeoutSeconds = 0
	}
	if settings.Log.Level == "" {
		settings.Log.Level = defaults.Log.Level
	}
	if settings.Log.Format == "" {
		settings.Log.Format = defaults.Log.Format
	}
	if settings.Log.Output == "" {
		settings.Log.Output = defaults.Log.Output
	}
	if settings.Log.File == "" {
		settings.Log.File = defaults.Log.File
	}
	return settings
}
