package bootstrap

import (
	"fmt"
	"os"
	"strings"

	"github.com/andy1rusu999/tiktok-transcriptor1/internal/config"
	"github.com/andy1rusu999/tiktok-transcriptor1/internal/diagnostics"
	"github.com/andy1rusu999/tiktok-transcriptor1/internal/domain"
)

// InstallOrFixDiagnostic repairs one failed fixable diagnostic item and
// returns the refreshed report.
func (a *App) InstallOrFixDiagnostic(itemID string) (domain.DiagnosticReport, error) {
	id := strings.TrimSpace(itemID)
	if id == "" {
		return domain.DiagnosticReport{}, fmt.Errorf("diagnostic item id is required")
	}

	settings, err := a.loadSettings()
	if err != nil {
		return domain.DiagnosticReport{}, err
	}

	settingsChanged := false
	var fixErr error

	switch id {
	case diagnostics.ItemOutputDir:
		settings, settingsChanged, fixErr = installOrFixOutputDir(settings)
	case diagnostics.ItemLanguage:
		settings, settingsChanged = fixLanguage(settings)
	default:
		return domain.DiagnosticReport{}, fmt.Errorf("unsupported diagnostic item id: %s", id)
	}

	if settingsChanged {
		if saveErr := a.Store.Save(settings); saveErr != nil {
			report := a.refreshDiagnosticsFromSettings(settings)
			return report, fmt.Errorf("save settings after fix: %w", saveErr)
		}
	}

	report := a.refreshDiagnosticsFromSettings(settings)
	if fixErr != nil {
		a.logger.WithError(fixErr).WithField("item", id).Warn("diagnostic fix failed")
		return report, fixErr
	}
	a.logger.WithField("item", id).Info("diagnostic fixed")
	return report, nil
}

// installOrFixOutputDir creates the output directory, falling back to the
// default location when none is configured.
func installOrFixOutputDir(settings domain.Settings) (domain.Settings, bool, error) {
	outputDir := strings.TrimSpace(settings.OutputDir)
	changed := false
	if outputDir == "" {
		outputDir = config.DefaultOutputDir()
		settings.OutputDir = outputDir
		changed = true
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return settings, changed, fmt.Errorf("create output directory %s: %w", outputDir, err)
	}

	return settings, changed, nil
}

// fixLanguage resets an unknown language to auto-detect.
func fixLanguage(settings domain.Settings) (domain.Settings, bool) {
	if _, ok := domain.LookupLanguage(settings.Language); ok {
		return settings, false
	}
	settings.Language = domain.LanguageAuto
	return settings, true
}
