package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/andy1rusu999/tiktok-transcriptor1/internal/api"
	"github.com/andy1rusu999/tiktok-transcriptor1/internal/domain"
	"github.com/andy1rusu999/tiktok-transcriptor1/internal/export"
	"github.com/andy1rusu999/tiktok-transcriptor1/internal/jobs"
	"github.com/andy1rusu999/tiktok-transcriptor1/internal/orchestrator"
)

// fakeStore keeps settings in memory for App tests.
type fakeStore struct {
	mu       sync.Mutex
	settings domain.Settings
	saves    int
}

// Load returns the last saved settings.
func (s *fakeStore) Load() (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, nil
}

// Save records settings for later loads.
func (s *fakeStore) Save(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.saves++
	return nil
}

// fakeServer serves a fixed account under /api.
func fakeServer(t *testing.T, videos string) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		r.Post("/fetch-videos", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"videos":` + videos + `}`))
		})
		r.Post("/transcribe", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"transcription":"hello there"}`))
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

const twoVideos = `[
	{"id":"1","url":"https://www.tiktok.com/@creator/video/1","title":"first","createdAt":"2024-03-01T08:00:00Z","duration":"45"},
	{"id":"2","url":"https://www.tiktok.com/@creator/video/2","title":"second, with comma","createdAt":"2024-03-02T08:00:00Z","duration":"1:20"}
]`

// newTestApp builds an App pointed at srv with an in-memory store.
func newTestApp(t *testing.T, srv *httptest.Server) (*App, *fakeStore) {
	t.Helper()
	store := &fakeStore{settings: domain.Settings{
		ServerURL:           srv.URL,
		APIBase:             "/api",
		OutputDir:           t.TempDir(),
		Language:            "ro",
		PollIntervalSeconds: 1,
	}}

	app := newApp(store, store.settings, nil)
	t.Cleanup(func() { app.Shutdown(context.Background()) })
	return app, store
}

// TestFetchAndTranscribeVideo checks the single-video flow and its events.
func TestFetchAndTranscribeVideo(t *testing.T) {
	app, _ := newTestApp(t, fakeServer(t, twoVideos))

	records, err := app.FetchVideos("https://www.tiktok.com/@creator?lang=en", "2024-03-01", "2024-03-31", "")
	if err != nil {
		t.Fatalf("fetch videos: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].Language != "ro" {
		t.Fatalf("language = %q, want configured default ro", records[0].Language)
	}
	if records[0].DurationInfo.Clock != "00:45" {
		t.Fatalf("clock = %q, want 00:45", records[0].DurationInfo.Clock)
	}

	if err := app.TranscribeVideo("1"); err != nil {
		t.Fatalf("transcribe: %v", err)
	}

	videos := app.Videos()
	if got := videos[1].DurationInfo; got.Seconds != 80 || got.Label != "1 min 20 sec" {
		t.Fatalf("duration = %+v, want 80 s labelled 1 min 20 sec", got)
	}
	if videos[0].Status != domain.VideoStatusCompleted || videos[0].Transcription != "hello there" {
		t.Fatalf("video 1 = %+v, want completed transcript", videos[0])
	}
	progress := app.Progress()
	if progress.CompletedCount != 1 || progress.PendingCount != 1 {
		t.Fatalf("progress = %+v, want one completed and one pending", progress)
	}

	events := app.JobEvents(0)
	assertEventTypeExists(t, events, jobs.EventTypeSuccess)
	assertEventMessage(t, events, "2 videos found")
	assertEventMessage(t, events, "transcription finished")
}

// TestFetchVideosRejectsInvalidDate reports a validation error without a request.
func TestFetchVideosRejectsInvalidDate(t *testing.T) {
	app, _ := newTestApp(t, fakeServer(t, twoVideos))

	_, err := app.FetchVideos("creator", "03/01/2024", "2024-03-31", "")
	if !api.IsKind(err, api.KindValidation) {
		t.Fatalf("error = %v, want validation error", err)
	}
	assertEventTypeExists(t, app.JobEvents(0), jobs.EventTypeError)
	if len(app.Videos()) != 0 {
		t.Fatal("expected no videos after rejected fetch")
	}
}

// TestFetchVideosRequiresDateRange relies on request validation for empty dates.
func TestFetchVideosRequiresDateRange(t *testing.T) {
	app, _ := newTestApp(t, fakeServer(t, twoVideos))

	_, err := app.FetchVideos("creator", "", "", "auto")
	if !api.IsKind(err, api.KindValidation) {
		t.Fatalf("error = %v, want validation error", err)
	}
	assertEventMessage(t, app.JobEvents(0), "select a date range")
}

// TestSaveSettingsSwitchesServer points later requests at the new server.
func TestSaveSettingsSwitchesServer(t *testing.T) {
	first := fakeServer(t, twoVideos)
	second := fakeServer(t, `[]`)
	app, store := newTestApp(t, first)

	settings, err := app.GetSettings()
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	settings.ServerURL = second.URL + "/"
	saved, err := app.SaveSettings(settings)
	if err != nil {
		t.Fatalf("save settings: %v", err)
	}
	if saved.ServerURL != second.URL {
		t.Fatalf("ServerURL = %q, want trailing slash trimmed", saved.ServerURL)
	}
	if store.saves != 1 {
		t.Fatalf("saves = %d, want 1", store.saves)
	}
	if report := app.GetDiagnostics(); report.HasFailures {
		t.Fatalf("diagnostics failed: %+v", report.Failed())
	}

	records, err := app.FetchVideos("creator", "2024-03-01", "2024-03-31", "")
	if err != nil {
		t.Fatalf("fetch videos: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("records = %d, want 0 from the second server", len(records))
	}
	assertEventMessage(t, app.JobEvents(0), "no videos found in the selected period")
}

// TestExportCSVWithoutVideosPublishesNotice checks the empty collection path.
func TestExportCSVWithoutVideosPublishesNotice(t *testing.T) {
	app, _ := newTestApp(t, fakeServer(t, twoVideos))

	path, err := app.ExportCSV()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if path != "" {
		t.Fatalf("path = %q, want empty", path)
	}
	assertEventMessage(t, app.JobEvents(0), "no videos to export")
}

// TestExportCSVWritesOutputDir writes every video to the configured directory.
func TestExportCSVWritesOutputDir(t *testing.T) {
	app, store := newTestApp(t, fakeServer(t, twoVideos))
	if _, err := app.FetchVideos("creator", "2024-03-01", "2024-03-31", ""); err != nil {
		t.Fatalf("fetch videos: %v", err)
	}

	path, err := app.ExportCSV()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Dir(path) != store.settings.OutputDir {
		t.Fatalf("path = %s, want file under %s", path, store.settings.OutputDir)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), `"second, with comma"`) {
		t.Fatalf("csv = %q, want quoted title", data)
	}
}

// TestSaveTranscriptionRequiresText rejects videos that were never transcribed.
func TestSaveTranscriptionRequiresText(t *testing.T) {
	app, _ := newTestApp(t, fakeServer(t, twoVideos))
	if _, err := app.FetchVideos("creator", "2024-03-01", "2024-03-31", ""); err != nil {
		t.Fatalf("fetch videos: %v", err)
	}

	if _, err := app.SaveTranscription("2"); !errors.Is(err, export.ErrNoTranscription) {
		t.Fatalf("error = %v, want %v", err, export.ErrNoTranscription)
	}
	if _, err := app.SaveTranscription("missing"); !errors.Is(err, orchestrator.ErrVideoNotFound) {
		t.Fatalf("error = %v, want %v", err, orchestrator.ErrVideoNotFound)
	}

	if err := app.TranscribeVideo("2"); err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	path, err := app.SaveTranscription("2")
	if err != nil {
		t.Fatalf("save transcription: %v", err)
	}
	if filepath.Base(path) != "transcription_2.txt" {
		t.Fatalf("file = %s, want transcription_2.txt", filepath.Base(path))
	}
}

// TestSetLanguage persists known languages and rejects unknown ones.
func TestSetLanguage(t *testing.T) {
	app, store := newTestApp(t, fakeServer(t, twoVideos))

	if _, err := app.SetLanguage("de"); err == nil {
		t.Fatal("expected unknown language error")
	}
	settings, err := app.SetLanguage("ro-md")
	if err != nil {
		t.Fatalf("set language: %v", err)
	}
	if settings.Language != "ro-md" || store.settings.Language != "ro-md" {
		t.Fatalf("language = %q (stored %q), want ro-md", settings.Language, store.settings.Language)
	}
	if len(app.GetLanguages()) != 4 {
		t.Fatalf("languages = %d, want 4", len(app.GetLanguages()))
	}
}

// TestParseDate accepts calendar dates and RFC 3339 timestamps.
func TestParseDate(t *testing.T) {
	got, err := parseDate("2024-03-01")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if !got.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date = %s", got)
	}

	got, err = parseDate("2024-03-01T10:00:00+02:00")
	if err != nil {
		t.Fatalf("parse timestamp: %v", err)
	}
	if got.Hour() != 8 || got.Location() != time.UTC {
		t.Fatalf("timestamp = %s, want 08:00 UTC", got)
	}

	if got, err := parseDate("  "); err != nil || !got.IsZero() {
		t.Fatalf("blank = %s, %v; want zero time", got, err)
	}
	if _, err := parseDate("yesterday"); err == nil {
		t.Fatal("expected invalid date error")
	}
}

// assertEventTypeExists verifies at least one event of given type exists.
func assertEventTypeExists(t *testing.T, events []jobs.Event, want jobs.EventType) {
	t.Helper()
	for _, event := range events {
		if event.Type == want {
			return
		}
	}
	t.Fatalf("event type %s not found", want)
}

func assertEventMessage(t *testing.T, events []jobs.Event, want string) {
	t.Helper()
	for _, event := range events {
		if event.Message == want {
			return
		}
	}
	t.Fatalf("event %q not found in %+v", want, events)
}
