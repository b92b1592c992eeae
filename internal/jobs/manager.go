// Package jobs runs catalog mutations in the background and tracks their status.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gcbaptista/course-search-engine/internal/errors"
	"github.com/gcbaptista/course-search-engine/internal/logger"
	"github.com/gcbaptista/course-search-engine/model"
)

// JobFunc is the body of a background job.
type JobFunc func(ctx context.Context, job *model.Job) error

// Manager handles background job execution and tracking
type Manager struct {
	mu        sync.RWMutex
	jobs      map[string]*model.Job
	workers   chan struct{} // Limits concurrent jobs
	stopChan  chan struct{}
	stopOnce  sync.Once
	stopped   bool // guarded by mu; set before wg.Wait so no Add races it
	wg        sync.WaitGroup
	metrics   *JobMetrics
	retention time.Duration
	log       *zap.Logger
}

// NewManager creates a job manager with maxWorkers concurrent slots.
// Finished jobs are kept for retention before cleanup removes them.
func NewManager(maxWorkers int, retention time.Duration, log *zap.Logger) *Manager {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if retention <= 0 {
		retention = time.Hour
	}
	return &Manager{
		jobs:      make(map[string]*model.Job),
		workers:   make(chan struct{}, maxWorkers),
		stopChan:  make(chan struct{}),
		metrics:   NewJobMetrics(),
		retention: retention,
		log:       logger.OrNop(log).Named("jobs"),
	}
}

// Start begins the background cleanup routine.
func (m *Manager) Start() {
	m.log.Info("job manager started",
		zap.Int("max_workers", cap(m.workers)),
		zap.Duration("retention", m.retention))

	m.wg.Add(1)
	go m.cleanupRoutine()
}

// Stop waits for running jobs and refuses to start queued ones.
func (m *Manager) Stop() {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()

	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
	m.wg.Wait()
	m.log.Info("job manager stopped")
}

// CreateJob registers a pending job and returns its ID.
func (m *Manager) CreateJob(jobType model.JobType, catalogName string, metadata map[string]string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &model.Job{
		ID:          uuid.New().String(),
		Type:        jobType,
		Status:      model.JobStatusPending,
		CatalogName: catalogName,
		CreatedAt:   time.Now(),
		Metadata:    metadata,
	}

	m.jobs[job.ID] = job
	m.metrics.RecordJobCreated(jobType)
	m.log.Debug("job created",
		zap.String("job_id", job.ID),
		zap.String("type", string(job.Type)),
		zap.String("catalog", catalogName))
	return job.ID
}

// GetJob returns a copy of the job with the given ID.
func (m *Manager) GetJob(jobID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, errors.NewJobNotFoundError(jobID)
	}
	return copyJob(job), nil
}

// ListJobs returns the jobs of a catalog, oldest first, optionally filtered by status.
func (m *Manager) ListJobs(catalogName string, status *model.JobStatus) []*model.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.Job, 0)
	for _, job := range m.jobs {
		if job.CatalogName != catalogName {
			continue
		}
		if status != nil && job.Status != *status {
			continue
		}
		result = append(result, copyJob(job))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// ExecuteJob runs jobFunc in the background once a worker slot is free.
// The job stays pending while it waits for a slot.
func (m *Manager) ExecuteJob(jobID string, jobFunc JobFunc) error {
	m.mu.RLock()
	job, exists := m.jobs[jobID]
	var status model.JobStatus
	if exists {
		status = job.Status
	}
	m.mu.RUnlock()

	if !exists {
		return errors.NewJobNotFoundError(jobID)
	}
	if status != model.JobStatusPending {
		return fmt.Errorf("job with ID '%s' is not in pending status (current: %s)", jobID, status)
	}

	m.mu.Lock()
	stopped := m.stopped
	if !stopped {
		m.wg.Add(1)
	}
	m.mu.Unlock()

	if stopped {
		m.finishJob(job, model.JobStatusCancelled, "job manager shutting down", 0)
		return fmt.Errorf("job manager is shutting down")
	}

	go func() {
		defer m.wg.Done()

		select {
		case m.workers <- struct{}{}:
		case <-m.stopChan:
			m.finishJob(job, model.JobStatusCancelled, "job manager shutting down", 0)
			return
		}
		defer func() { <-m.workers }()

		running := m.markRunning(job)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		ctx = logger.ContextWithLogger(ctx, m.log.With(zap.String("job_id", jobID)))

		startTime := time.Now()
		err := runSafely(ctx, running, jobFunc)
		executionTime := time.Since(startTime)

		if err != nil {
			m.finishJob(job, model.JobStatusFailed, err.Error(), executionTime)
			m.log.Warn("job failed",
				zap.String("job_id", jobID),
				zap.String("type", string(job.Type)),
				zap.Duration("took", executionTime),
				zap.Error(err))
			return
		}
		m.finishJob(job, model.JobStatusCompleted, "", executionTime)
		m.log.Info("job completed",
			zap.String("job_id", jobID),
			zap.String("type", string(job.Type)),
			zap.Duration("took", executionTime))
	}()

	return nil
}

// runSafely turns a panicking job into a failed one.
func runSafely(ctx context.Context, job *model.Job, jobFunc JobFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return jobFunc(ctx, job)
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

// WaitForJob polls until the job reaches a terminal status or ctx is done.
func (m *Manager) WaitForJob(ctx context.Context, jobID string) (*model.Job, error) {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		job, err := m.GetJob(jobID)
		if err != nil {
			return nil, err
		}
		if job.Status.IsTerminal() {
			return job, nil
		}
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}

// markRunning flips the job to running and returns a copy for the job body.
func (m *Manager) markRunning(job *model.Job) *model.Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	job.Status = model.JobStatusRunning
	job.StartedAt = &now
	m.metrics.RecordJobStatusChange(model.JobStatusPending, model.JobStatusRunning)
	return copyJob(job)
}

func (m *Manager) finishJob(job *model.Job, status model.JobStatus, errorMsg string, took time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldStatus := job.Status
	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}
	now := time.Now()
	job.CompletedAt = &now

	m.metrics.RecordJobStatusChange(oldStatus, status)
	m.metrics.RecordJobFinished(job.Type, status, took)
}

// cleanupRoutine periodically removes finished jobs older than the retention.
func (m *Manager) cleanupRoutine() {
	defer m.wg.Done()

	interval := m.retention / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupOldJobs(m.retention)
		case <-m.stopChan:
			return
		}
	}
}

// CleanupOldJobs removes finished jobs older than maxAge and returns how many it removed.
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
		m.log.Debug("cleaned up old jobs", zap.Int("count", cleaned))
	}
	return cleaned
}

// GetMetrics returns current job performance metrics
func (m *Manager) GetMetrics() JobMetricsData {
	return m.metrics.GetMetrics()
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
