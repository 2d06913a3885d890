package diagnostics

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/andy1rusu999/tiktok-transcriptor1/internal/api"
	"github.com/andy1rusu999/tiktok-transcriptor1/internal/domain"
)

// Item ids reported by Run.
const (
	ItemServerURL = "server_url"
	ItemBackend   = "backend"
	ItemOutputDir = "output_dir"
	ItemLanguage  = "language"
)

const healthTimeout = 3 * time.Second

// HealthChecker checks that the transcription backend is up.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthFactory builds a health checker for the backend configured in settings.
type HealthFactory func(settings domain.Settings) HealthChecker

// Checker validates the backend connection and required filesystem paths.
type Checker struct {
	health     HealthFactory
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker(health HealthFactory) *Checker {
	return &Checker{
		health:     health,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(ctx context.Context, settings domain.Settings) domain.DiagnosticReport {
	urlItem := c.checkServerURL(settings.ServerURL)
	items := []domain.DiagnosticItem{
		urlItem,
		c.checkBackend(ctx, settings, urlItem.Status == domain.DiagnosticStatusPass),
		c.checkOutputDir(settings.OutputDir),
		c.checkLanguage(settings.Language),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkServerURL validates the configured backend address.
func (c *Checker) checkServerURL(serverURL string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   ItemServerURL,
		Name: "Server URL",
	}

	parsed, err := url.Parse(strings.TrimSpace(serverURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Invalid server URL: %q", serverURL)
		item.Hint = "Use an address like http://127.0.0.1:5000."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = parsed.String()
	return item
}

// checkBackend calls the health endpoint of the configured backend.
func (c *Checker) checkBackend(ctx context.Context, settings domain.Settings, urlValid bool) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   ItemBackend,
		Name: "Transcription server",
	}

	if !urlValid || c.health == nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Backend not checked."
		item.Hint = "Fix the server URL first."
		return item
	}

	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	if err := c.health(settings).Health(ctx); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = api.MessageOf(err, "Server is not reachable: "+err.Error())
		item.Hint = "Start the local transcription server and check the server URL and API base."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Reachable at %s", api.BaseURL(settings.ServerURL, settings.APIBase))
	return item
}

// checkOutputDir validates output directory existence and write access.
func (c *Checker) checkOutputDir(outputDir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:      ItemOutputDir,
		Name:    "Output directory",
		Fixable: true,
	}

	if strings.TrimSpace(outputDir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Output directory is empty."
		item.Hint = "Set an output directory where exports can be written."
		return item
	}

	if err := c.mkdirAll(outputDir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create output directory: %s", outputDir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(outputDir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Output directory is not writable: %s", outputDir)
		item.Hint = "Choose a writable directory for CSV and transcript exports."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Fixable = false
	item.Message = fmt.Sprintf("Writable directory: %s", outputDir)
	return item
}

// checkLanguage verifies the default language is in the catalog.
func (c *Checker) checkLanguage(language string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   ItemLanguage,
		Name: "Default language",
	}

	option, ok := domain.LookupLanguage(language)
	if !ok {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Unsupported language: %q", language)
		item.Hint = "Pick one of the listed languages or auto-detect."
		item.Fixable = true
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = option.Label
	return item
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	health HealthFactory,
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		health:     health,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
	}
}
