package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"github.com/andy1rusu999/tiktok-transcriptor1/internal/api"
	"github.com/andy1rusu999/tiktok-transcriptor1/internal/collection"
	"github.com/andy1rusu999/tiktok-transcriptor1/internal/config"
	"github.com/andy1rusu999/tiktok-transcriptor1/internal/diagnostics"
	"github.com/andy1rusu999/tiktok-transcriptor1/internal/domain"
	"github.com/andy1rusu999/tiktok-transcriptor1/internal/export"
	"github.com/andy1rusu999/tiktok-transcriptor1/internal/jobs"
	"github.com/andy1rusu999/tiktok-transcriptor1/internal/logging"
	"github.com/andy1rusu999/tiktok-transcriptor1/internal/orchestrator"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// Runtime event names pushed to the frontend.
const (
	jobEventName       = "job:event"
	videosChangedEvent = "videos:changed"
)

const (
	dateLayout    = "2006-01-02"
	maxEventCount = 1000
)

// App wires configuration, the transcription session, and UI runtime callbacks.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Session     *orchestrator.Session
	Diagnostics domain.DiagnosticReport
	assets      fs.FS
	checker     *diagnostics.Checker
	backend     *backend
	logger      logrus.FieldLogger
	closer      io.Closer

	mu         sync.Mutex
	ctx        context.Context
	stop       context.CancelFunc
	events     *jobs.EventBus
	runtimeCtx context.Context
}

// VideosPayload is pushed on every collection change.
type VideosPayload struct {
	Videos   []domain.VideoView `json:"videos"`
	Progress domain.Progress    `json:"progress"`
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	store := config.NewStore(config.DefaultSettingsPath())
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	settings, err = config.ApplyEnv(settings)
	if err != nil {
		return nil, fmt.Errorf("apply environment: %w", err)
	}
	settings = config.Normalize(settings)

	logger, closer, err := logging.New(settings.Log)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	app := newApp(store, settings, logger)
	app.assets = assets
	app.closer = closer
	app.Diagnostics = app.checker.Run(app.ctx, settings)

	logger.WithFields(logrus.Fields{
		"server":   settings.ServerURL,
		"failures": len(app.Diagnostics.Failed()),
	}).Info("application initialised")
	return app, nil
}

// newApp wires the session and event fan-out around already loaded settings.
func newApp(store config.Store, settings domain.Settings, logger logrus.FieldLogger) *App {
	logger = logging.OrNop(logger)
	ctx, stop := context.WithCancel(context.Background())

	a := &App{
		Settings: settings,
		Store:    store,
		logger:   logger,
		ctx:      ctx,
		stop:     stop,
		events:   jobs.NewEventBus(maxEventCount),
		backend:  newBackend(newAPIClient(settings, logger)),
	}
	a.checker = diagnostics.NewChecker(func(s domain.Settings) diagnostics.HealthChecker {
		return newAPIClient(s, logger)
	})
	a.Session = orchestrator.NewSession(a.backend, a.events, orchestrator.Options{
		PollInterval: time.Duration(settings.PollIntervalSeconds) * time.Second,
		Logger:       logger,
	})

	a.Session.Subscribe(func(snap collection.Snapshot) {
		a.emit(videosChangedEvent, VideosPayload{Videos: videoViews(snap.Records()), Progress: snap.Progress()})
	})
	a.events.Subscribe(func(event jobs.Event) {
		a.emit(jobEventName, event)
	})
	return a
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "TikTok Transcriber",
		Width:       1180,
		Height:      780,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown:  a.Shutdown,
		Bind:        []interface{}{a},
	})
}

// Startup stores Wails runtime context for push events.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
}

// Shutdown cancels in-flight requests, stops batch polling and flushes the log file.
func (a *App) Shutdown(context.Context) {
	a.mu.Lock()
	a.runtimeCtx = nil
	a.mu.Unlock()

	a.stop()
	a.Session.Close()
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "close log file: %v\n", err)
		}
	}
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.loadSettings()
	if err != nil {
		return domain.Settings{}, err
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, points the session at the
// configured server and refreshes diagnostics.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := config.Normalize(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.backend.set(newAPIClient(normalized, a.logger))
	a.refreshDiagnosticsFromSettings(normalized)
	a.logger.WithField("server", normalized.ServerURL).Info("settings saved")

	return normalized, nil
}

// RefreshDiagnostics reloads settings and reruns the checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.loadSettings()
	if err != nil {
		return domain.DiagnosticReport{}, err
	}
	return a.refreshDiagnosticsFromSettings(settings), nil
}

// FetchVideos loads the account's videos published between from and to
// (YYYY-MM-DD). An empty language uses the configured default.
func (a *App) FetchVideos(username, from, to, language string) ([]domain.VideoView, error) {
	start, err := parseDate(from)
	if err != nil {
		return nil, a.validationError(err)
	}
	end, err := parseDate(to)
	if err != nil {
		return nil, a.validationError(err)
	}
	if strings.TrimSpace(language) == "" {
		language = a.currentSettings().Language
	}

	records, err := a.Session.FetchVideos(a.ctx, orchestrator.FetchParams{
		Username: username,
		From:     start,
		To:       end,
		Language: strings.TrimSpace(language),
	})
	if errors.Is(err, orchestrator.ErrSuperseded) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return videoViews(records), nil
}

// TranscribeVideo transcribes one video and blocks until it finishes.
func (a *App) TranscribeVideo(id string) error {
	return a.Session.TranscribeOne(a.ctx, id)
}

// TranscribeAll submits every pending video as one server-side batch job.
func (a *App) TranscribeAll() (domain.BatchJob, error) {
	return a.Session.TranscribeAll(a.ctx)
}

// FetchSubtitles requests subtitles for one video, retrying after an error.
func (a *App) FetchSubtitles(id string) error {
	return a.Session.FetchSubtitles(a.ctx, id)
}

// EnsureSubtitles loads subtitles the first time a video's subtitle view opens.
func (a *App) EnsureSubtitles(id string) error {
	return a.Session.EnsureSubtitles(a.ctx, id)
}

// RemoveVideo drops one video from the list.
func (a *App) RemoveVideo(id string) error {
	return a.Session.RemoveVideo(id)
}

// Videos returns the current collection with parsed durations.
func (a *App) Videos() []domain.VideoView {
	return videoViews(a.Session.Snapshot().Records())
}

// Progress returns counts derived from the current collection.
func (a *App) Progress() domain.Progress {
	return a.Session.Progress()
}

// BatchState returns the current batch job.
func (a *App) BatchState() domain.BatchJob {
	return a.Session.BatchState()
}

// JobEvents returns all events with sequence greater than sinceSeq.
func (a *App) JobEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// ExportCSV writes every video to a CSV file in the output directory.
func (a *App) ExportCSV() (string, error) {
	path, err := export.New(a.currentSettings().OutputDir).CSV(a.Session.Snapshot().Records())
	if errors.Is(err, export.ErrNothingToExport) {
		a.events.Publish(jobs.Event{Type: jobs.EventTypeInfo, Message: "no videos to export"})
		return "", nil
	}
	if err != nil {
		a.logger.WithError(err).Error("csv export failed")
		return "", err
	}

	a.events.Publish(jobs.Event{Type: jobs.EventTypeSuccess, Message: "exported to " + path})
	return path, nil
}

// SaveTranscription writes one video's transcript to a text file.
func (a *App) SaveTranscription(id string) (string, error) {
	record, ok := a.Session.Snapshot().Lookup(id)
	if !ok {
		return "", orchestrator.ErrVideoNotFound
	}

	path, err := export.New(a.currentSettings().OutputDir).Transcription(record)
	if err != nil {
		return "", err
	}

	a.events.Publish(jobs.Event{Type: jobs.EventTypeSuccess, Message: "transcription saved to " + path, VideoID: id})
	return path, nil
}

// PickOutputDirectory opens a native directory picker for exports.
func (a *App) PickOutputDirectory() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenDirectoryDialog(ctx, wailsruntime.OpenDialogOptions{
		Title: "Select output directory",
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// OpenOutputFolder opens the given path (or configured output dir) in file manager.
func (a *App) OpenOutputFolder(path string) error {
	target := strings.TrimSpace(path)
	if target == "" {
		target = a.currentSettings().OutputDir
	}
	if target == "" {
		return fmt.Errorf("output path is empty")
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	openPath := target
	if !info.IsDir() {
		openPath = filepath.Dir(target)
	}

	return openInFileManager(openPath)
}

func (a *App) loadSettings() (domain.Settings, error) {
	if a.Store == nil {
		return domain.Settings{}, fmt.Errorf("settings store is not configured")
	}
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return config.Normalize(settings), nil
}

func (a *App) currentSettings() domain.Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Settings
}

func (a *App) refreshDiagnosticsFromSettings(settings domain.Settings) domain.DiagnosticReport {
	report := a.checker.Run(a.ctx, settings)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.Settings = settings
	a.Diagnostics = report
	return report
}

// validationError reports a malformed date the same way the session reports
// other invalid input.
func (a *App) validationError(err error) error {
	verr := &api.Error{Kind: api.KindValidation, Op: "fetch videos", Message: err.Error()}
	a.events.Publish(jobs.Event{Type: jobs.EventTypeError, Message: verr.Message})
	return verr
}

// emit pushes a runtime event when the window is up.
func (a *App) emit(name string, payload any) {
	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, name, payload)
	}
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

func videoViews(records []domain.VideoRecord) []domain.VideoView {
	return lo.Map(records, func(r domain.VideoRecord, _ int) domain.VideoView { return domain.ViewOf(r) })
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp. Empty input
// yields the zero time, which request validation rejects.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(dateLayout, value, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return t.UTC(), nil
}

// openInFileManager launches the platform file explorer for the provided path.
func openInFileManager(path string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", filepath.Clean(path))
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch file manager: %w", err)
	}
	return nil
}
