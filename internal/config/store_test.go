package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/andy1rusu999/tiktok-transcriptor1/internal/domain"
)

// TestDefaultSettings verifies baseline defaults are present.
func TestDefaultSettings(t *testing.T) {
	cfg := DefaultSettings()
	if cfg.Language != "auto" {
		t.Fatalf("language = %q, want auto", cfg.Language)
	}
	if cfg.ServerURL != "http://127.0.0.1:5000" || cfg.APIBase != "/api" {
		t.Fatalf("backend = %q %q, want local /api", cfg.ServerURL, cfg.APIBase)
	}
	if cfg.PollIntervalSeconds != 2 {
		t.Fatalf("poll interval = %d, want 2", cfg.PollIntervalSeconds)
	}
	if cfg.OutputDir == "" {
		t.Fatal("expected non-empty output dir")
	}
}

// TestJSONStoreLoadMissingReturnsDefaults checks first-run behavior.
func TestJSONStoreLoadMissingReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "settings.json")
	store := NewJSONStore(path)

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Language != "auto" {
		t.Fatalf("language = %q, want auto", got.Language)
	}
}

func sampleSettings() domain.Settings {
	return domain.Settings{
		ServerURL:             "http://10.0.0.5:5000",
		APIBase:               "/v2",
		OutputDir:             "/out",
		Language:              "ro-md",
		PollIntervalSeconds:   5,
		RequestTimeoutSeconds: 30,
		Log: domain.LogSettings{
			Level:      "debug",
			Format:     "json",
			Output:     "file",
			File:       "/var/log/app.log",
			MaxSizeMB:  1,
			MaxBackups: 2,
			MaxAgeDays: 3,
			Compress:   false,
		},
	}
}

// TestStoresSaveAndLoadRoundTrip checks persisted settings fidelity for
// both formats.
func TestStoresSaveAndLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"settings.json", "settings.yaml", "settings.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg", name)
			store := NewStore(path)
			want := sampleSettings()

			if err := store.Save(want); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got, err := store.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got != want {
				t.Fatalf("settings = %+v, want %+v", got, want)
			}
		})
	}
}

// TestNewStoreSelectsFormat checks extension based selection.
func TestNewStoreSelectsFormat(t *testing.T) {
	if _, ok := NewStore("a/settings.YAML").(*YAMLStore); !ok {
		t.Fatal("expected YAML store for .YAML")
	}
	if _, ok := NewStore("a/settings.json").(*JSONStore); !ok {
		t.Fatal("expected JSON store for .json")
	}
}

// TestYAMLStoreKeepsDefaultsForMissingKeys verifies partial files.
func TestYAMLStoreKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("language: ru\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := NewYAMLStore(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Language != "ru" || got.APIBase != "/api" || got.PollIntervalSeconds != 2 {
		t.Fatalf("settings = %+v, want ru over defaults", got)
	}
}

// TestJSONStoreLoadInvalidJSON checks parse error handling.
func TestJSONStoreLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not-json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewJSONStore(path)
	if _, err := store.Load(); err == nil {
		t.Fatal("expected json parse error")
	}
}

// TestNormalize trims input and restores defaults.
func TestNormalize(t *testing.T) {
	got := Normalize(domain.Settings{
		ServerURL:             " http://host:5000/ ",
		Language:              "  ",
		PollIntervalSeconds:   -1,
		RequestTimeoutSeconds: -5,
	})
	if got.ServerURL != "http://host:5000" {
		t.Fatalf("server url = %q", got.ServerURL)
	}
	if got.Language != "auto" || got.APIBase != "/api" || got.PollIntervalSeconds != 2 {
		t.Fatalf("settings = %+v, want defaults restored", got)
	}
	if got.RequestTimeoutSeconds != 0 || got.OutputDir == "" || got.Log.File == "" {
		t.Fatalf("settings = %+v, want timeout 0 and default paths", got)
	}
}
