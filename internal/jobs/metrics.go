package jobs

import (
	"sync"
	"time"

	"github.com/gcbaptista/course-search-engine/internal/metrics"
	"github.com/gcbaptista/course-search-engine/model"
)

// maxSamplesPerType bounds the duration history kept per job type.
const maxSamplesPerType = 100

// JobMetricsData is a point-in-time copy of the job counters, served by /jobs/metrics.
type JobMetricsData struct {
	JobsCreated          int64                     `json:"jobs_created"`
	JobsCompleted        int64                     `json:"jobs_completed"`
	JobsFailed           int64                     `json:"jobs_failed"`
	JobsCancelled        int64                     `json:"jobs_cancelled"`
	AverageExecutionTime time.Duration             `json:"average_execution_time_ns"`
	AverageByType        map[model.JobType]int64   `json:"average_execution_time_by_type_ns"`
	JobsByType           map[model.JobType]int64   `json:"jobs_by_type"`
	JobsByStatus         map[model.JobStatus]int64 `json:"jobs_by_status"`
	SuccessRate          float64                   `json:"success_rate"`
	CurrentWorkload      int64                     `json:"current_workload"`
	LastUpdated          time.Time                 `json:"last_updated"`
}

// JobMetrics keeps in-process job counters and mirrors them into the
// Prometheus collectors of the metrics package.
type JobMetrics struct {
	mu                 sync.RWMutex
	created            int64
	completed          int64
	failed             int64
	cancelled          int64
	totalExecutionTime time.Duration
	byType             map[model.JobType]int64
	byStatus           map[model.JobStatus]int64
	samplesByType      map[model.JobType][]time.Duration
	lastUpdated        time.Time
}

// NewJobMetrics creates a new metrics collector
func NewJobMetrics() *JobMetrics {
	return &JobMetrics{
		byType:        make(map[model.JobType]int64),
		byStatus:      make(map[model.JobStatus]int64),
		samplesByType: make(map[model.JobType][]time.Duration),
		lastUpdated:   time.Now(),
	}
}

// RecordJobCreated counts a new pending job.
func (m *JobMetrics) RecordJobCreated(jobType model.JobType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.created++
	m.byType[jobType]++
	m.byStatus[model.JobStatusPending]++
	m.lastUpdated = time.Now()
}

// RecordJobStatusChange moves one job between status buckets.
func (m *JobMetrics) RecordJobStatusChange(oldStatus, newStatus model.JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if oldStatus != "" {
		m.byStatus[oldStatus]--
		if m.byStatus[oldStatus] < 0 {
			m.byStatus[oldStatus] = 0
		}
	}
	m.byStatus[newStatus]++
	m.lastUpdated = time.Now()

	switch {
	case newStatus == model.JobStatusRunning:
		metrics.JobsRunning.Inc()
	case oldStatus == model.JobStatusRunning:
		metrics.JobsRunning.Dec()
	}
}

// RecordJobFinished records the final status and duration of a job.
func (m *JobMetrics) RecordJobFinished(jobType model.JobType, status model.JobStatus, executionTime time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch status {
	case model.JobStatusCompleted:
		m.completed++
		m.totalExecutionTime += executionTime
		samples := append(m.samplesByType[jobType], executionTime)
		if len(samples) > maxSamplesPerType {
			samples = samples[1:]
		}
		m.samplesByType[jobType] = samples
	case model.JobStatusFailed:
		m.failed++
	case model.JobStatusCancelled:
		m.cancelled++
	}
	m.lastUpdated = time.Now()

	metrics.JobsTotal.WithLabelValues(string(jobType), string(status)).Inc()
	if status != model.JobStatusCancelled {
		metrics.JobDuration.WithLabelValues(string(jobType)).Observe(executionTime.Seconds())
	}
}

// GetMetrics returns a copy of the current counters.
func (m *JobMetrics) GetMetrics() JobMetricsData {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data := JobMetricsData{
		JobsCreated:     m.created,
		JobsCompleted:   m.completed,
		JobsFailed:      m.failed,
		JobsCancelled:   m.cancelled,
		AverageByType:   make(map[model.JobType]int64, len(m.samplesByType)),
		JobsByType:      make(map[model.JobType]int64, len(m.byType)),
		JobsByStatus:    make(map[model.JobStatus]int64, len(m.byStatus)),
		SuccessRate:     m.successRateLocked(),
		CurrentWorkload: m.byStatus[model.JobStatusPending] + m.byStatus[model.JobStatusRunning],
		LastUpdated:     m.lastUpdated,
	}
	if m.completed > 0 {
		data.AverageExecutionTime = m.totalExecutionTime / time.Duration(m.completed)
	}
	for k, v := range m.byType {
		data.JobsByType[k] = v
	}
	for k, v := range m.byStatus {
		data.JobsByStatus[k] = v
	}
	for k, samples := range m.samplesByType {
		data.AverageByType[k] = int64(average(samples))
	}
	return data
}

// GetAverageExecutionTimeByType returns the mean duration of recent successful jobs of a type.
func (m *JobMetrics) GetAverageExecutionTimeByType(jobType model.JobType) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return average(m.samplesByType[jobType])
}

// GetSuccessRate returns the success rate (0.0 to 1.0)
func (m *JobMetrics) GetSuccessRate() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.successRateLocked()
}

func (m *JobMetrics) successRateLocked() float64 {
	finished := m.completed + m.failed
	if finished == 0 {
		return 1.0
	}
	return float64(m.completed) / float64(finished)
}

func average(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	var total time.Duration
	for _, s := range samples {
		total += s
	}
	return total / time.Duration(len(samples))
}
