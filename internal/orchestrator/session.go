// Package orchestrator drives videos through transcription and subtitle
// retrieval against the shared collection. A new fetch starts a new epoch;
// results computed for an older epoch are dropped without a trace.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/andy1rusu999/tiktok-transcriptor1/internal/api"
	"github.com/andy1rusu999/tiktok-transcriptor1/internal/collection"
	"github.com/andy1rusu999/tiktok-transcriptor1/internal/domain"
	"github.com/andy1rusu999/tiktok-transcriptor1/internal/jobs"
	"github.com/andy1rusu999/tiktok-transcriptor1/internal/logging"
)

// ErrVideoNotFound is returned for ids absent from the collection.
var ErrVideoNotFound = errors.New("video not found")

// ErrSuperseded is returned when a newer fetch replaced the run an operation
// belonged to. Nothing was changed.
var ErrSuperseded = errors.New("superseded by a newer fetch")

const (
	fetchFailedMessage      = "could not connect to the local server"
	transcribeFailedMessage = "could not connect to the transcription server"
	subtitlesFailedMessage  = "could not connect to the subtitles server"
)

// Client is the backend surface the session needs.
type Client interface {
	jobs.BatchClient
	FetchVideos(ctx context.Context, req api.FetchVideosRequest) ([]domain.VideoRecord, error)
	Transcribe(ctx context.Context, req api.TranscribeRequest) (string, error)
	Subtitles(ctx context.Context, req api.SubtitlesRequest) (string, error)
}

// Options tunes a Session.
type Options struct {
	PollInterval time.Duration
	NewTicker    jobs.TickerFunc
	Logger       logrus.FieldLogger
}

// FetchParams selects an account and a publish date range.
type FetchParams struct {
	Username string
	From     time.Time
	To       time.Time
	Language string
}

// Session owns the collection, the epoch guard and the batch coordinator.
type Session struct {
	client Client
	store  *collection.Store
	epochs jobs.EpochGuard
	batch  *jobs.Coordinator
	events jobs.Publisher
	logger logrus.FieldLogger

	// mu orders epoch bumps against commits.
	mu sync.Mutex
}

// NewSession creates a session with an empty collection.
func NewSession(client Client, events jobs.Publisher, opts Options) *Session {
	s := &Session{
		client: client,
		store:  collection.NewStore(),
		events: events,
		logger: logging.OrNop(opts.Logger),
	}
	s.batch = jobs.NewCoordinator(client, s, events, jobs.CoordinatorOptions{
		Interval:  opts.PollInterval,
		NewTicker: opts.NewTicker,
		Logger:    s.logger,
	})
	return s
}

// Subscribe registers fn for every collection change.
func (s *Session) Subscribe(fn func(collection.Snapshot)) {
	s.store.Subscribe(fn)
}

// Snapshot returns the current collection.
func (s *Session) Snapshot() collection.Snapshot {
	return s.store.Snapshot()
}

// Progress aggregates the current collection.
func (s *Session) Progress() domain.Progress {
	return s.store.Snapshot().Progress()
}

// BatchState returns the active batch job, if any.
func (s *Session) BatchState() domain.BatchJob {
	return s.batch.State()
}

// Epoch returns the current fetch epoch.
func (s *Session) Epoch() uint64 {
	return s.epochs.Current()
}

// IsCurrent reports whether epoch is the active fetch epoch.
func (s *Session) IsCurrent(epoch uint64) bool {
	return s.epochs.IsCurrent(epoch)
}

// Commit applies fn while epoch is still current.
func (s *Session) Commit(epoch uint64, fn func(collection.Snapshot) collection.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.epochs.IsCurrent(epoch) {
		return false
	}
	s.store.Update(fn)
	return true
}

// commitRecord patches id while epoch is current and the record still exists.
func (s *Session) commitRecord(epoch uint64, id string, patch collection.Patch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.epochs.IsCurrent(epoch) {
		return false
	}
	if _, ok := s.store.Snapshot().Lookup(id); !ok {
		return false
	}
	s.store.Update(func(snap collection.Snapshot) collection.Snapshot {
		return snap.UpdateByID(id, patch)
	})
	return true
}

// FetchVideos starts a new run and replaces the collection with the account's
// videos for the selected range.
func (s *Session) FetchVideos(ctx context.Context, params FetchParams) ([]domain.VideoRecord, error) {
	s.mu.Lock()
	epoch := s.epochs.BeginNewRun()
	stopped := s.batch.Stop()
	s.mu.Unlock()

	log := s.logger.WithField("epoch", epoch)
	if stopped {
		log.Info("running batch cancelled by new fetch")
	}

	language := params.Language
	if language == "" {
		language = domain.LanguageAuto
	}
	req := api.FetchVideosRequest{
		Username:  NormalizeUsername(params.Username),
		StartDate: params.From,
		EndDate:   params.To,
	}
	if err := req.Validate(); err != nil {
		s.notify(jobs.Event{Type: jobs.EventTypeError, Message: api.MessageOf(err, err.Error()), Epoch: epoch})
		return nil, err
	}

	s.Commit(epoch, func(snap collection.Snapshot) collection.Snapshot { return snap.ReplaceAll(nil) })

	log.WithField("username", req.Username).Info("fetching videos")
	fetched, err := s.client.FetchVideos(ctx, req)
	if !s.epochs.IsCurrent(epoch) {
		log.Debug("discarding fetch result from superseded run")
		return nil, ErrSuperseded
	}
	if err != nil {
		log.WithError(err).Warn("fetch videos failed")
		s.notify(jobs.Event{Type: jobs.EventTypeError, Message: api.MessageOf(err, fetchFailedMessage), Epoch: epoch})
		return nil, err
	}

	records := lo.Map(fetched, func(r domain.VideoRecord, _ int) domain.VideoRecord {
		r.Language = language
		r.Status = domain.VideoStatusPending
		r.Transcription = ""
		r.Subtitles = ""
		r.SubtitlesStatus = domain.SubtitlesStatusIdle
		return r
	})

	var snap collection.Snapshot
	if !s.Commit(epoch, func(prev collection.Snapshot) collection.Snapshot {
		snap = prev.ReplaceAll(records)
		return snap
	}) {
		return nil, ErrSuperseded
	}

	log.WithField("videos", snap.Len()).Info("videos loaded")
	if snap.Len() == 0 {
		s.notify(jobs.Event{Type: jobs.EventTypeInfo, Message: "no videos found in the selected period", Epoch: epoch})
	} else {
		s.notify(jobs.Event{Type: jobs.EventTypeSuccess, Message: fmt.Sprintf("%d videos found", snap.Len()), Epoch: epoch})
	}
	return snap.Records(), nil
}

// TranscribeOne moves a single video through processing to completed or
// error. A result that arrives after a newer fetch is dropped silently.
func (s *Session) TranscribeOne(ctx context.Context, id string) error {
	s.mu.Lock()
	epoch := s.epochs.Current()
	record, ok := s.store.Snapshot().Lookup(id)
	if ok {
		s.store.Update(func(snap collection.Snapshot) collection.Snapshot {
			return snap.UpdateByID(id, collection.MarkProcessing)
		})
	}
	s.mu.Unlock()

	if !ok {
		return ErrVideoNotFound
	}

	log := s.logger.WithFields(logrus.Fields{"video_id": id, "epoch": epoch})
	log.Info("transcribing video")

	text, err := s.client.Transcribe(ctx, api.TranscribeRequest{
		VideoURL:  record.URL,
		DirectURL: record.DirectURL,
		Language:  record.Language,
	})
	if err != nil {
		if !s.commitRecord(epoch, id, collection.MarkError) {
			log.Debug("discarding transcription failure for stale video")
			return nil
		}
		message := api.MessageOf(err, transcribeFailedMessage)
		if api.IsKind(err, api.KindServer) {
			message = "transcription failed: " + message
		}
		log.WithError(err).Warn("transcription failed")
		s.notify(jobs.Event{Type: jobs.EventTypeError, Message: message, VideoID: id, Epoch: epoch})
		return err
	}

	if !s.commitRecord(epoch, id, collection.MarkCompleted(text)) {
		log.Debug("discarding transcription for stale video")
		return nil
	}
	log.Info("transcription completed")
	s.notify(jobs.Event{Type: jobs.EventTypeSuccess, Message: "transcription finished", VideoID: id, Epoch: epoch})
	return nil
}

// TranscribeAll submits every pending video as one batch job.
func (s *Session) TranscribeAll(ctx context.Context) (domain.BatchJob, error) {
	if s.batch.Running() {
		return s.batch.State(), jobs.ErrJobAlreadyRunning
	}

	s.mu.Lock()
	epoch := s.epochs.Current()
	pending := s.store.Snapshot().WithStatus(domain.VideoStatusPending)
	s.mu.Unlock()

	if len(pending) == 0 {
		s.notify(jobs.Event{Type: jobs.EventTypeInfo, Message: "no pending videos", Epoch: epoch})
		return s.batch.State(), nil
	}
	return s.batch.Submit(ctx, epoch, pending)
}

// FetchSubtitles loads the subtitles of one video. It is a no-op while a
// request for the same video is loading. Subtitle results are not tied to
// the fetch epoch.
func (s *Session) FetchSubtitles(ctx context.Context, id string) error {
	var (
		record  domain.VideoRecord
		started bool
	)
	s.store.Update(func(snap collection.Snapshot) collection.Snapshot {
		r, ok := snap.Lookup(id)
		if !ok || r.URL == "" || r.SubtitlesStatus == domain.SubtitlesStatusLoading {
			return snap
		}
		record, started = r, true
		return snap.UpdateByID(id, collection.MarkSubtitlesLoading)
	})
	if !started {
		return nil
	}

	log := s.logger.WithField("video_id", id)
	text, err := s.client.Subtitles(ctx, api.SubtitlesRequest{VideoURL: record.URL, Language: record.Language})
	if err != nil {
		s.store.Update(func(snap collection.Snapshot) collection.Snapshot {
			return snap.UpdateByID(id, collection.MarkSubtitlesError)
		})
		message := api.MessageOf(err, subtitlesFailedMessage)
		if api.IsKind(err, api.KindServer) {
			message = "subtitles failed: " + message
		}
		log.WithError(err).Warn("subtitles failed")
		s.notify(jobs.Event{Type: jobs.EventTypeError, Message: message, VideoID: id})
		return err
	}

	s.store.Update(func(snap collection.Snapshot) collection.Snapshot {
		return snap.UpdateByID(id, collection.MarkSubtitlesCompleted(text))
	})
	log.Debug("subtitles loaded")
	return nil
}

// EnsureSubtitles fetches subtitles the first time a video's subtitle view is
// opened and does nothing once data or a request exists.
func (s *Session) EnsureSubtitles(ctx context.Context, id string) error {
	record, ok := s.store.Snapshot().Lookup(id)
	if !ok {
		return ErrVideoNotFound
	}
	if record.Subtitles != "" || record.SubtitlesStatus != domain.SubtitlesStatusIdle {
		return nil
	}
	return s.FetchSubtitles(ctx, id)
}

// RemoveVideo drops a video from the collection.
func (s *Session) RemoveVideo(id string) error {
	var removed bool
	s.store.Update(func(snap collection.Snapshot) collection.Snapshot {
		_, removed = snap.Lookup(id)
		return snap.RemoveByID(id)
	})
	if !removed {
		return ErrVideoNotFound
	}
	s.notify(jobs.Event{Type: jobs.EventTypeSuccess, Message: "video removed", VideoID: id})
	return nil
}

// Close stops the batch poll loop and waits for it to exit.
func (s *Session) Close() {
	s.batch.Shutdown()
}

func (s *Session) notify(event jobs.Event) {
	if s.events != nil {
		s.events.Publish(event)
	}
}
