// Package jobs runs background operations such as collection reloads on a
// bounded worker pool and tracks their status for polling clients.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	log "github.com/sirupsen/logrus"

	"github.com/gcbaptista/promo-search-engine/internal/errors"
	"github.com/gcbaptista/promo-search-engine/model"
)

// DefaultMaxAge is how long finished jobs stay queryable
const DefaultMaxAge = 24 * time.Hour

// Func is the body of a job. It may report progress through the manager.
type Func = func(ctx context.Context, job *model.Job) error

// Manager handles background job execution and tracking
type Manager struct {
	mu     sync.RWMutex
	jobs   map[string]*model.Job
	pool   *ants.Pool
	maxAge time.Duration
	stats  *Stats

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a job manager backed by a pool of maxWorkers goroutines.
func NewManager(maxWorkers int, maxAge time.Duration) (*Manager, error) {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	// Nonblocking: a full pool rejects the job instead of stalling the caller
	pool, err := ants.NewPool(maxWorkers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create job worker pool: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		jobs:   make(map[string]*model.Job),
		pool:   pool,
		maxAge: maxAge,
		stats:  NewStats(),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Start begins the background cleanup of finished jobs
func (m *Manager) Start() {
	log.WithField("workers", m.pool.Cap()).Info("job manager started")

	m.wg.Add(1)
	go m.cleanupRoutine()
}

// Stop cancels running jobs, waits for them and releases the pool
func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()
	m.pool.Release()
	log.Info("job manager stopped")
}

// CreateJob registers a pending job and returns its ID
func (m *Manager) CreateJob(jobType model.JobType, metadata map[string]string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &model.Job{
		ID:        uuid.NewString(),
		Type:      jobType,
		Status:    model.JobStatusPending,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}

	m.jobs[job.ID] = job
	m.stats.recordCreated(jobType)
	log.WithFields(log.Fields{"job_id": job.ID, "type": job.Type}).Debug("created job")
	return job.ID
}

// GetJob retrieves a copy of a job by ID
func (m *Manager) GetJob(jobID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, errors.NewJobNotFoundError(jobID)
	}
	return copyJob(job), nil
}

// ListJobs returns copies of all jobs, optionally filtered by status, newest first
func (m *Manager) ListJobs(status *model.JobStatus) []*model.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		if status == nil || job.Status == *status {
			result = append(result, copyJob(job))
		}
	}
	sortJobsNewestFirst(result)
	return result
}

func sortJobsNewestFirst(jobs []*model.Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
}

func copyJob(job *model.Job) *model.Job {
	jobCopy := *job
	if job.Progress != nil {
		progressCopy := *job.Progress
		jobCopy.Progress = &progressCopy
	}
	if job.Metadata != nil {
		jobCopy.Metadata = make(map[string]string, len(job.Metadata))
		for k, v := range job.Metadata {
			jobCopy.Metadata[k] = v
		}
	}
	return &jobCopy
}

// ExecuteJob submits a pending job to the pool. It returns an error when the
// job is unknown, not pending, or the pool is saturated or closed.
func (m *Manager) ExecuteJob(jobID string, fn Func) error {
	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return errors.NewJobNotFoundError(jobID)
	}
	if job.Status != model.JobStatusPending {
		m.mu.Unlock()
		return fmt.Errorf("job with ID '%s' is not in pending status (current: %s)", jobID, job.Status)
	}
	jobType := job.Type
	m.mu.Unlock()

	m.wg.Add(1)
	err := m.pool.Submit(func() {
		defer m.wg.Done()
		m.run(jobID, jobType, fn)
	})
	if err != nil {
		m.wg.Done()
		m.stats.recordRejected()
		m.updateJobStatus(jobID, model.JobStatusCancelled, fmt.Sprintf("job rejected: %v", err))
		return fmt.Errorf("failed to submit job %s: %w", jobID, err)
	}
	return nil
}

func (m *Manager) run(jobID string, jobType model.JobType, fn Func) {
	m.mu.Lock()
	job := m.jobs[jobID]
	started := time.Now()
	job.StartedAt = &started
	job.Status = model.JobStatusRunning
	view := copyJob(job)
	m.mu.Unlock()
	m.stats.recordStatusChange(model.JobStatusPending, model.JobStatusRunning)

	err := fn(m.ctx, view)
	executionTime := time.Since(started)
	m.stats.recordFinished(err, executionTime)

	entry := log.WithFields(log.Fields{"job_id": jobID, "type": jobType, "duration": executionTime})
	switch {
	case err != nil && m.ctx.Err() != nil:
		m.updateJobStatus(jobID, model.JobStatusCancelled, err.Error())
		entry.WithError(err).Warn("job cancelled")
	case err != nil:
		m.updateJobStatus(jobID, model.JobStatusFailed, err.Error())
		entry.WithError(err).Error("job failed")
	default:
		m.updateJobStatus(jobID, model.JobStatusCompleted, "")
		entry.Info("job completed")
	}
}

// UpdateJobProgress updates the progress of a running job
func (m *Manager) UpdateJobProgress(jobID string, current, total int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	if job.Progress == nil {
		job.Progress = &model.JobProgress{}
	}
	job.Progress.Current = current
	job.Progress.Total = total
	job.Progress.Message = message
}

// SetJobMetadata records a key/value on the job, e.g. the result of a reload.
func (m *Manager) SetJobMetadata(jobID, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	if job.Metadata == nil {
		job.Metadata = make(map[string]string)
	}
	job.Metadata[key] = value
}

func (m *Manager) updateJobStatus(jobID string, status model.JobStatus, errorMsg string) {
	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return
	}

	oldStatus := job.Status
	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}
	if job.IsFinished() {
		now := time.Now()
		job.CompletedAt = &now
	}
	m.mu.Unlock()

	m.stats.recordStatusChange(oldStatus, status)
}

func (m *Manager) cleanupRoutine() {
	defer m.wg.Done()

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupOldJobs(m.maxAge)
		case <-m.ctx.Done():
			return
		}
	}
}

// CleanupOldJobs removes finished jobs that completed more than maxAge ago
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	cleaned := 0
	for jobID, job := range m.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, jobID)
			cleaned++
		}
	}

	if cleaned > 0 {
		log.WithField("count", cleaned).Info("cleaned up old jobs")
	}
	return cleaned
}

// Stats returns current job statistics
func (m *Manager) Stats() StatsData {
	return m.stats.Snapshot()
}

// SuccessRate returns the overall job success rate
func (m *Manager) SuccessRate() float64 {
	return m.stats.SuccessRate()
}

// Running returns the number of jobs currently executing on the pool
func (m *Manager) Running() int {
	return m.pool.Running()
}
