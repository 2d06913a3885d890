package bootstrap

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/andy1rusu999/tiktok-transcriptor1/internal/api"
	"github.com/andy1rusu999/tiktok-transcriptor1/internal/domain"
)

// backend forwards session calls to the client built from the latest saved
// settings, so a new server URL applies without dropping the collection.
type backend struct {
	mu     sync.RWMutex
	client *api.Client
}

func newBackend(client *api.Client) *backend {
	return &backend{client: client}
}

// newAPIClient builds a client for the server configured in settings.
func newAPIClient(settings domain.Settings, logger logrus.FieldLogger) *api.Client {
	httpClient := &http.Client{Timeout: time.Duration(settings.RequestTimeoutSeconds) * time.Second}
	return api.NewClient(api.BaseURL(settings.ServerURL, settings.APIBase), httpClient, logger)
}

func (b *backend) set(client *api.Client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.client = client
}

func (b *backend) current() *api.Client {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.client
}

func (b *backend) FetchVideos(ctx context.Context, req api.FetchVideosRequest) ([]domain.VideoRecord, error) {
	return b.current().FetchVideos(ctx, req)
}

func (b *backend) Transcribe(ctx context.Context, req api.TranscribeRequest) (string, error) {
	return b.current().Transcribe(ctx, req)
}

func (b *backend) Subtitles(ctx context.Context, req api.SubtitlesRequest) (string, error) {
	return b.current().Subtitles(ctx, req)
}

func (b *backend) SubmitBatch(ctx context.Context, videos []api.BatchVideo) (string, error) {
	return b.current().SubmitBatch(ctx, videos)
}

func (b *backend) JobStatus(ctx context.Context, jobID string) (api.JobStatusResponse, error) {
	return b.current().JobStatus(ctx, jobID)
}
