package jobs

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/gcbaptista/course-search-engine/internal/errors"
	"github.com/gcbaptista/course-search-engine/model"
)

func waitFor(t *testing.T, manager *Manager, jobID string) *model.Job {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	job, err := manager.WaitForJob(ctx, jobID)
	if err != nil {
		t.Fatalf("WaitForJob(%s) error = %v", jobID, err)
	}
	return job
}

func TestJobManager_CreateJob(t *testing.T) {
	manager := NewManager(2, time.Hour, nil)
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeUpsertCourses, "fall-2025", map[string]string{
		"course_count": "3",
	})

	if jobID == "" {
		t.Error("Expected non-empty job ID")
	}

	job, err := manager.GetJob(jobID)
	if err != nil {
		t.Fatalf("Failed to get created job: %v", err)
	}

	if job.Type != model.JobTypeUpsertCourses {
		t.Errorf("Expected job type %s, got %s", model.JobTypeUpsertCourses, job.Type)
	}
	if job.Status != model.JobStatusPending {
		t.Errorf("Expected job status %s, got %s", model.JobStatusPending, job.Status)
	}
	if job.CatalogName != "fall-2025" {
		t.Errorf("Expected catalog name 'fall-2025', got %s", job.CatalogName)
	}

	job.Metadata["course_count"] = "changed"
	again, _ := manager.GetJob(jobID)
	if again.Metadata["course_count"] != "3" {
		t.Error("GetJob should return a copy of the metadata")
	}
}

func TestJobManager_GetJobNotFound(t *testing.T) {
	manager := NewManager(1, time.Hour, nil)
	defer manager.Stop()

	_, err := manager.GetJob("missing")
	if !stderrors.Is(err, errors.ErrJobNotFound) {
		t.Errorf("GetJob(missing) error = %v, want ErrJobNotFound", err)
	}
}

func TestJobManager_ExecuteJob(t *testing.T) {
	manager := NewManager(2, time.Hour, nil)
	manager.Start()
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeReplaceCourses, "fall-2025", nil)

	err := manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		manager.UpdateJobProgress(job.ID, 50, 100, "Halfway done")
		time.Sleep(10 * time.Millisecond)
		manager.UpdateJobProgress(job.ID, 100, 100, "Completed")
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to execute job: %v", err)
	}

	job := waitFor(t, manager, jobID)
	if job.Status != model.JobStatusCompleted {
		t.Errorf("Expected job status %s, got %s", model.JobStatusCompleted, job.Status)
	}
	if job.StartedAt == nil || job.CompletedAt == nil {
		t.Error("Expected start and completion times to be set")
	}
	if job.Progress == nil {
		t.Fatal("Expected job progress to be set")
	}
	if job.Progress.Current != 100 || job.Progress.Total != 100 {
		t.Errorf("Expected progress 100/100, got %d/%d", job.Progress.Current, job.Progress.Total)
	}
	if got := job.Progress.GetProgressPercentage(); got != 100 {
		t.Errorf("GetProgressPercentage() = %g, want 100", got)
	}
}

func TestJobManager_FailedAndPanickingJobs(t *testing.T) {
	manager := NewManager(2, time.Hour, nil)
	defer manager.Stop()

	failing := manager.CreateJob(model.JobTypeDeleteCourse, "fall-2025", nil)
	if err := manager.ExecuteJob(failing, func(ctx context.Context, job *model.Job) error {
		return stderrors.New("course store unavailable")
	}); err != nil {
		t.Fatalf("ExecuteJob() error = %v", err)
	}

	panicking := manager.CreateJob(model.JobTypeDeleteCourse, "fall-2025", nil)
	if err := manager.ExecuteJob(panicking, func(ctx context.Context, job *model.Job) error {
		panic("boom")
	}); err != nil {
		t.Fatalf("ExecuteJob() error = %v", err)
	}

	if job := waitFor(t, manager, failing); job.Status != model.JobStatusFailed || job.Error != "course store unavailable" {
		t.Errorf("failing job = %s %q, want failed with message", job.Status, job.Error)
	}
	if job := waitFor(t, manager, panicking); job.Status != model.JobStatusFailed {
		t.Errorf("panicking job status = %s, want failed", job.Status)
	}

	data := manager.GetMetrics()
	if data.JobsFailed != 2 {
		t.Errorf("JobsFailed = %d, want 2", data.JobsFailed)
	}
	if data.SuccessRate != 0 {
		t.Errorf("SuccessRate = %g, want 0", data.SuccessRate)
	}
}

func TestJobManager_ExecuteJobTwice(t *testing.T) {
	manager := NewManager(1, time.Hour, nil)
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeCreateCatalog, "fall-2025", nil)
	noop := func(ctx context.Context, job *model.Job) error { return nil }
	if err := manager.ExecuteJob(jobID, noop); err != nil {
		t.Fatalf("first ExecuteJob() error = %v", err)
	}
	waitFor(t, manager, jobID)

	if err := manager.ExecuteJob(jobID, noop); err == nil {
		t.Error("executing a completed job should fail")
	}
	if err := manager.ExecuteJob("missing", noop); !stderrors.Is(err, errors.ErrJobNotFound) {
		t.Errorf("ExecuteJob(missing) error = %v, want ErrJobNotFound", err)
	}
}

func TestJobManager_WorkerSlotsBoundConcurrency(t *testing.T) {
	manager := NewManager(2, time.Hour, nil)
	defer manager.Stop()

	var mu sync.Mutex
	running, peak := 0, 0
	ids := make([]string, 6)
	for i := range ids {
		ids[i] = manager.CreateJob(model.JobTypeUpsertCourses, "fall-2025", nil)
		err := manager.ExecuteJob(ids[i], func(ctx context.Context, job *model.Job) error {
			mu.Lock()
			running++
			if running > peak {
				peak = running
			}
			mu.Unlock()

			time.Sleep(20 * time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
			return nil
		})
		if err != nil {
			t.Fatalf("ExecuteJob() error = %v", err)
		}
	}

	for _, id := range ids {
		waitFor(t, manager, id)
	}
	if peak > 2 {
		t.Errorf("peak concurrency = %d, want at most 2", peak)
	}
	if got := manager.GetMetrics().JobsCompleted; got != 6 {
		t.Errorf("JobsCompleted = %d, want 6", got)
	}
}

func TestJobManager_ListJobs(t *testing.T) {
	manager := NewManager(1, time.Hour, nil)
	defer manager.Stop()

	first := manager.CreateJob(model.JobTypeCreateCatalog, "fall-2025", nil)
	time.Sleep(time.Millisecond)
	second := manager.CreateJob(model.JobTypeUpsertCourses, "fall-2025", nil)
	manager.CreateJob(model.JobTypeUpsertCourses, "spring-2026", nil)

	jobs := manager.ListJobs("fall-2025", nil)
	if len(jobs) != 2 {
		t.Fatalf("ListJobs() returned %d jobs, want 2", len(jobs))
	}
	if jobs[0].ID != first || jobs[1].ID != second {
		t.Errorf("ListJobs() should be ordered by creation time")
	}

	if err := manager.ExecuteJob(first, func(ctx context.Context, job *model.Job) error { return nil }); err != nil {
		t.Fatalf("ExecuteJob() error = %v", err)
	}
	waitFor(t, manager, first)

	completed := model.JobStatusCompleted
	done := manager.ListJobs("fall-2025", &completed)
	if len(done) != 1 || done[0].ID != first {
		t.Errorf("ListJobs(completed) = %v, want only %s", done, first)
	}
	if got := manager.ListJobs("unknown", nil); len(got) != 0 {
		t.Errorf("ListJobs(unknown) = %v, want empty", got)
	}
}

func TestJobManager_CleanupOldJobs(t *testing.T) {
	manager := NewManager(1, time.Hour, nil)
	defer manager.Stop()

	finished := manager.CreateJob(model.JobTypeDeleteCatalog, "fall-2025", nil)
	pending := manager.CreateJob(model.JobTypeDeleteCatalog, "fall-2025", nil)
	if err := manager.ExecuteJob(finished, func(ctx context.Context, job *model.Job) error { return nil }); err != nil {
		t.Fatalf("ExecuteJob() error = %v", err)
	}
	waitFor(t, manager, finished)

	if removed := manager.CleanupOldJobs(time.Hour); removed != 0 {
		t.Errorf("recent jobs should survive cleanup, removed %d", removed)
	}
	if removed := manager.CleanupOldJobs(0); removed != 1 {
		t.Errorf("CleanupOldJobs(0) removed %d, want 1", removed)
	}
	if _, err := manager.GetJob(pending); err != nil {
		t.Errorf("pending jobs are never cleaned up: %v", err)
	}
}

func TestJobManager_StopCancelsQueuedJobs(t *testing.T) {
	manager := NewManager(1, time.Hour, nil)

	release := make(chan struct{})
	blocking := manager.CreateJob(model.JobTypeReplaceCourses, "fall-2025", nil)
	if err := manager.ExecuteJob(blocking, func(ctx context.Context, job *model.Job) error {
		<-release
		return nil
	}); err != nil {
		t.Fatalf("ExecuteJob() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		job, _ := manager.GetJob(blocking)
		if job.Status == model.JobStatusRunning {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("blocking job never started")
		}
		time.Sleep(time.Millisecond)
	}

	queued := manager.CreateJob(model.JobTypeReplaceCourses, "fall-2025", nil)
	if err := manager.ExecuteJob(queued, func(ctx context.Context, job *model.Job) error { return nil }); err != nil {
		t.Fatalf("ExecuteJob() error = %v", err)
	}

	stopped := make(chan struct{})
	go func() {
		manager.Stop()
		close(stopped)
	}()
	time.Sleep(10 * time.Millisecond)
	close(release)
	<-stopped

	job, _ := manager.GetJob(queued)
	if job.Status != model.JobStatusCancelled {
		t.Errorf("queued job status = %s, want cancelled", job.Status)
	}
	if job, _ := manager.GetJob(blocking); job.Status != model.JobStatusCompleted {
		t.Errorf("running job status = %s, want completed", job.Status)
	}

	late := manager.CreateJob(model.JobTypeReplaceCourses, "fall-2025", nil)
	if err := manager.ExecuteJob(late, func(ctx context.Context, job *model.Job) error { return nil }); err == nil {
		t.Error("ExecuteJob after Stop should fail")
	}
}

func TestJobManager_ExecuteJobRacingStop(t *testing.T) {
	for round := 0; round < 50; round++ {
		manager := NewManager(2, time.Hour, nil)

		const jobs = 8
		ids := make([]string, jobs)
		for i := range ids {
			ids[i] = manager.CreateJob(model.JobTypeUpsertCourses, "fall-2025", nil)
		}

		var wg sync.WaitGroup
		for _, id := range ids {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_ = manager.ExecuteJob(id, func(ctx context.Context, job *model.Job) error { return nil })
			}(id)
		}
		manager.Stop()
		wg.Wait()

		// Every job ends terminal: it either ran before Stop or was cancelled.
		for _, id := range ids {
			job, err := manager.GetJob(id)
			if err != nil {
				t.Fatalf("GetJob(%s) error = %v", id, err)
			}
			if !job.Status.IsTerminal() {
				t.Errorf("round %d: job %s status = %s, want terminal", round, id, job.Status)
			}
		}
	}
}
