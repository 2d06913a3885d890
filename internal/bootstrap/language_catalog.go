package bootstrap

import (
	"fmt"
	"strings"

	"github.com/andy1rusu999/tiktok-transcriptor1/internal/domain"
)

// GetLanguages returns the selectable transcription languages.
func (a *App) GetLanguages() []domain.LanguageOption {
	return domain.Languages()
}

// SetLanguage stores the default language used for the next fetch.
// Videos already in the list keep the language they were fetched with.
func (a *App) SetLanguage(value string) (domain.Settings, error) {
	option, found := domain.LookupLanguage(strings.TrimSpace(value))
	if !found {
		return domain.Settings{}, fmt.Errorf("unknown language: %s", value)
	}

	settings, err := a.loadSettings()
	if err != nil {
		return domain.Settings{}, err
	}
	settings.Language = option.Value
	if err := a.Store.Save(settings); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.refreshDiagnosticsFromSettings(settings)
	return settings, nil
}
