package jobs

import (
	"errors"
	"fmt"
	"sync"

	"github.com/andy1rusu999/tiktok-transcriptor1/internal/domain"
)

// ErrJobAlreadyRunning is returned when starting a second active batch.
var ErrJobAlreadyRunning = errors.New("batch job already running")

// ErrNoRunningJob is returned when cancel is requested for idle state.
var ErrNoRunningJob = errors.New("no running batch job")

// Manager tracks the single allowed batch job and its transitions.
type Manager struct {
	mu      sync.RWMutex
	current domain.BatchJob
}

// NewManager creates a manager in idle state.
func NewManager() *Manager {
	return &Manager{
		current: domain.BatchJob{
			Status: domain.BatchStatusIdle,
		},
	}
}

// Start moves the manager to submitting. The job id is unknown until the
// server answers, see AttachJob.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if isRunning(m.current.Status) {
		return ErrJobAlreadyRunning
	}

	m.current = domain.BatchJob{Status: domain.BatchStatusSubmitting}
	return nil
}

// AttachJob records the server job id and moves to polling.
func (m *Manager) AttachJob(jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if jobID == "" {
		return fmt.Errorf("attach job: empty job id")
	}
	if m.current.Status != domain.BatchStatusSubmitting {
		return fmt.Errorf("attach job: invalid state %s", m.current.Status)
	}

	m.current.ID = jobID
	m.current.Status = domain.BatchStatusPolling
	return nil
}

// Transition validates and applies state transitions for the current job.
// Terminal states drop the job id.
func (m *Manager) Transition(status domain.BatchStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if status == m.current.Status {
		return nil
	}
	if !isValidTransition(m.current.Status, status) {
		return fmt.Errorf("invalid transition: %s -> %s", m.current.Status, status)
	}

	m.current.Status = status
	if !isRunning(status) {
		m.current.ID = ""
	}
	return nil
}

// Current returns a snapshot of the current job.
func (m *Manager) Current() domain.BatchJob {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job := m.current
	job.Running = isRunning(job.Status)
	return job
}

// IsRunning reports whether the current state is an active stage.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return isRunning(m.current.Status)
}

// Cancel abandons an active job and returns to idle.
func (m *Manager) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !isRunning(m.current.Status) {
		return ErrNoRunningJob
	}
	m.current = domain.BatchJob{Status: domain.BatchStatusIdle}
	return nil
}

// isRunning checks if a status represents an active batch.
func isRunning(status domain.BatchStatus) bool {
	switch status {
	case domain.BatchStatusSubmitting, domain.BatchStatusPolling:
		return true
	default:
		return false
	}
}

// isValidTransition enforces the allowed batch state machine edges.
func isValidTransition(from, to domain.BatchStatus) bool {
	switch from {
	case domain.BatchStatusIdle:
		return to == domain.BatchStatusSubmitting
	case domain.BatchStatusSubmitting:
		return to == domain.BatchStatusPolling || to == domain.BatchStatusFailed || to == domain.BatchStatusIdle
	case domain.BatchStatusPolling:
		return to == domain.BatchStatusCompleted || to == domain.BatchStatusFailed || to == domain.BatchStatusIdle
	case domain.BatchStatusCompleted, domain.BatchStatusFailed:
		return to == domain.BatchStatusSubmitting || to == domain.BatchStatusIdle
	default:
		return false
	}
}
