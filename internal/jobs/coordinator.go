package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/andy1rusu999/tiktok-transcriptor1/internal/api"
	"github.com/andy1rusu999/tiktok-transcriptor1/internal/collection"
	"github.com/andy1rusu999/tiktok-transcriptor1/internal/domain"
	"github.com/andy1rusu999/tiktok-transcriptor1/internal/logging"
)

// DefaultPollInterval is the gap between two job status requests.
const DefaultPollInterval = 2 * time.Second

const submitFailedMessage = "could not start the batch transcription"

// BatchClient is the subset of the backend client used by the coordinator.
type BatchClient interface {
	SubmitBatch(ctx context.Context, videos []api.BatchVideo) (string, error)
	JobStatus(ctx context.Context, jobID string) (api.JobStatusResponse, error)
}

// Committer applies fn to the collection only while epoch is current. It
// reports whether the change was applied.
type Committer interface {
	IsCurrent(epoch uint64) bool
	Commit(epoch uint64, fn func(collection.Snapshot) collection.Snapshot) bool
}

// Ticker delivers poll ticks.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

// NewTimeTicker is the production TickerFunc.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// CoordinatorOptions tunes a Coordinator. Zero values pick defaults.
type CoordinatorOptions struct {
	Interval  time.Duration
	NewTicker TickerFunc
	Logger    logrus.FieldLogger
}

// Coordinator submits pending videos as one batch job and polls it until the
// server reports completion or a poll fails. Only one batch runs at a time.
type Coordinator struct {
	client    BatchClient
	committer Committer
	publisher Publisher
	manager   *Manager
	interval  time.Duration
	newTicker TickerFunc
	logger    logrus.FieldLogger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCoordinator wires a coordinator around client and committer.
func NewCoordinator(client BatchClient, committer Committer, publisher Publisher, opts CoordinatorOptions) *Coordinator {
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.NewTicker == nil {
		opts.NewTicker = NewTimeTicker
	}
	return &Coordinator{
		client:    client,
		committer: committer,
		publisher: publisher,
		manager:   NewManager(),
		interval:  opts.Interval,
		newTicker: opts.NewTicker,
		logger:    logging.OrNop(opts.Logger),
	}
}

// State returns the current batch job.
func (c *Coordinator) State() domain.BatchJob {
	return c.manager.Current()
}

// Submit sends records as one batch captured under epoch and starts polling.
// An empty set is a no-op. A second submit while a batch is active returns
// ErrJobAlreadyRunning.
func (c *Coordinator) Submit(ctx context.Context, epoch uint64, records []domain.VideoRecord) (domain.BatchJob, error) {
	if len(records) == 0 {
		return c.manager.Current(), nil
	}
	if err := c.manager.Start(); err != nil {
		return c.manager.Current(), err
	}

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	log := c.logger.WithFields(logrus.Fields{"epoch": epoch, "videos": len(records)})
	log.Info("submitting batch")
	c.publish(Event{Type: EventTypeStatus, BatchStatus: domain.BatchStatusSubmitting, Epoch: epoch})

	jobID, err := c.client.SubmitBatch(ctx, lo.Map(records, func(r domain.VideoRecord, _ int) api.BatchVideo {
		return api.BatchVideo{ID: r.ID, URL: r.URL, DirectURL: r.DirectURL, Language: r.Language}
	}))
	if err != nil {
		if c.fail(gen, "", err, submitFailedMessage) {
			return c.manager.Current(), err
		}
		return c.manager.Current(), nil
	}

	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	c.mu.Lock()
	if c.gen != gen || !c.committer.IsCurrent(epoch) {
		if c.gen == gen {
			c.abandonLocked()
		}
		c.mu.Unlock()
		cancel()
		log.WithField("job_id", jobID).Debug("dropping batch from superseded run")
		return c.manager.Current(), nil
	}
	if err := c.manager.AttachJob(jobID); err != nil {
		c.mu.Unlock()
		cancel()
		return c.manager.Current(), err
	}
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	log.WithField("job_id", jobID).Info("batch accepted, polling")
	c.publish(Event{Type: EventTypeStatus, BatchStatus: domain.BatchStatusPolling, JobID: jobID, Epoch: epoch})

	go c.poll(pollCtx, gen, epoch, jobID, done)
	return c.manager.Current(), nil
}

// poll requests the job status on every tick and merges per-video results.
func (c *Coordinator) poll(ctx context.Context, gen, epoch uint64, jobID string, done chan struct{}) {
	defer close(done)

	ticker := c.newTicker(c.interval)
	defer ticker.Stop()

	log := c.logger.WithFields(logrus.Fields{"epoch": epoch, "job_id": jobID})
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
		}

		if !c.alive(gen) {
			return
		}
		status, err := c.client.JobStatus(ctx, jobID)
		if !c.alive(gen) {
			log.Debug("discarding poll result from stopped batch")
			return
		}
		if err != nil {
			c.fail(gen, jobID, err, "batch status request failed")
			return
		}

		if !c.committer.Commit(epoch, func(s collection.Snapshot) collection.Snapshot {
			return collection.MergeBatchResults(s, status.Results)
		}) {
			log.Debug("batch results belong to a superseded run")
			c.abandon(gen)
			return
		}
		log.WithField("results", len(status.Results)).Debug("batch results merged")

		if status.Completed() {
			c.finish(gen, jobID)
			return
		}
	}
}

// Running reports whether a batch is being submitted or polled.
func (c *Coordinator) Running() bool {
	return c.manager.IsRunning()
}

// Stop abandons the active batch, even mid-request. It reports whether a
// running batch was cancelled; a finished batch keeps its final status.
func (c *Coordinator) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.abandonLocked()
}

// abandon stops gen if it is still the active batch.
func (c *Coordinator) abandon(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen == gen {
		c.abandonLocked()
	}
}

// abandonLocked supersedes the active generation and cancels a running
// batch. Callers hold c.mu.
func (c *Coordinator) abandonLocked() bool {
	c.gen++
	c.release()
	return c.manager.Cancel() == nil
}

// release cancels the poll context. Callers hold c.mu.
func (c *Coordinator) release() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Shutdown stops the batch and waits for the poll loop to exit.
func (c *Coordinator) Shutdown() {
	c.Stop()

	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

// alive reports whether gen is still the active batch generation.
func (c *Coordinator) alive(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen
}

// fail moves a live batch to failed and surfaces err once. It reports false
// when gen was already superseded.
func (c *Coordinator) fail(gen uint64, jobID string, err error, fallback string) bool {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return false
	}
	c.release()
	transitionErr := c.manager.Transition(domain.BatchStatusFailed)
	c.mu.Unlock()

	log := c.logger.WithError(err).WithField("job_id", jobID)
	if transitionErr != nil {
		log.WithField("transition", transitionErr.Error()).Warn("unexpected batch state on failure")
	}
	log.Warn("batch failed")
	c.publish(Event{
		Type:        EventTypeError,
		Message:     api.MessageOf(err, fallback),
		JobID:       jobID,
		BatchStatus: domain.BatchStatusFailed,
	})
	return true
}

// finish moves a live batch to completed.
func (c *Coordinator) finish(gen uint64, jobID string) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.release()
	err := c.manager.Transition(domain.BatchStatusCompleted)
	c.mu.Unlock()

	if err != nil {
		c.logger.WithError(err).WithField("job_id", jobID).Warn("unexpected batch state on completion")
	}
	c.logger.WithField("job_id", jobID).Info("batch completed")
	c.publish(Event{
		Type:        EventTypeSuccess,
		Message:     "batch transcription finished",
		JobID:       jobID,
		BatchStatus: domain.BatchStatusCompleted,
	})
}

func (c *Coordinator) publish(event Event) {
	if c.publisher != nil {
		c.publisher.Publish(event)
	}
}
