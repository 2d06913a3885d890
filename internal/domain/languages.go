package domain

// LanguageOption describes one selectable transcription language.
type LanguageOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Flag  string `json:"flag,omitempty"`
}

var languageCatalog = []LanguageOption{
	{Value: LanguageAuto, Label: "Auto-detect", Flag: "🌐"},
	{Value: "ru", Label: "Russian", Flag: "🇷🇺"},
	{Value: "ro", Label: "Romanian", Flag: "🇷🇴"},
	{Value: "ro-md", Label: "Romanian (Moldova)", Flag: "🇲🇩"},
}

// Languages returns a copy of the supported language catalog.
func Languages() []LanguageOption {
	out := make([]LanguageOption, len(languageCatalog))
	copy(out, languageCatalog)
	return out
}

// LookupLanguage finds a catalog entry by value.
func LookupLanguage(value string) (LanguageOption, bool) {
	for _, option := range languageCatalog {
		if option.Value == value {
			return option, true
		}
	}
	return LanguageOption{}, false
}
