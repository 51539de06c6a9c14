package jobs

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/gcbaptista/promo-search-engine/internal/errors"
	"github.com/gcbaptista/promo-search-engine/model"
)

func newTestManager(t *testing.T, workers int) *Manager {
	t.Helper()
	manager, err := NewManager(workers, time.Hour)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	manager.Start()
	t.Cleanup(manager.Stop)
	return manager
}

func waitForStatus(t *testing.T, manager *Manager, jobID string, want model.JobStatus) *model.Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := manager.GetJob(jobID)
		if err != nil {
			t.Fatalf("Failed to get job: %v", err)
		}
		if job.Status == want {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	job, _ := manager.GetJob(jobID)
	t.Fatalf("Job %s did not reach status %s, last status %s", jobID, want, job.Status)
	return nil
}

func TestJobManager_CreateJob(t *testing.T) {
	manager := newTestManager(t, 2)

	jobID := manager.CreateJob(model.JobTypeReload, map[string]string{
		"source": "file",
	})

	if jobID == "" {
		t.Error("Expected non-empty job ID")
	}

	job, err := manager.GetJob(jobID)
	if err != nil {
		t.Fatalf("Failed to get created job: %v", err)
	}

	if job.Type != model.JobTypeReload {
		t.Errorf("Expected job type %s, got %s", model.JobTypeReload, job.Type)
	}
	if job.Status != model.JobStatusPending {
		t.Errorf("Expected job status %s, got %s", model.JobStatusPending, job.Status)
	}
	if job.Metadata["source"] != "file" {
		t.Errorf("Expected metadata source 'file', got %q", job.Metadata["source"])
	}

	// Returned jobs are copies
	job.Metadata["source"] = "mutated"
	again, _ := manager.GetJob(jobID)
	if again.Metadata["source"] != "file" {
		t.Error("Expected GetJob to return an independent copy")
	}
}

func TestJobManager_GetJob_NotFound(t *testing.T) {
	manager := newTestManager(t, 1)

	_, err := manager.GetJob("missing")
	if !stderrors.Is(err, errors.ErrJobNotFound) {
		t.Errorf("Expected ErrJobNotFound, got %v", err)
	}
}

func TestJobManager_ExecuteJob(t *testing.T) {
	manager := newTestManager(t, 2)

	jobID := manager.CreateJob(model.JobTypeReload, nil)

	err := manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		manager.UpdateJobProgress(jobID, 50, 100, "Halfway done")
		time.Sleep(10 * time.Millisecond)
		manager.UpdateJobProgress(jobID, 100, 100, "Completed")
		manager.SetJobMetadata(jobID, "records", "42")
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to execute job: %v", err)
	}

	job := waitForStatus(t, manager, jobID, model.JobStatusCompleted)

	if job.Progress == nil {
		t.Fatal("Expected job progress to be set")
	}
	if job.Progress.Current != 100 || job.Progress.Total != 100 {
		t.Errorf("Expected progress 100/100, got %d/%d", job.Progress.Current, job.Progress.Total)
	}
	if job.Metadata["records"] != "42" {
		t.Errorf("Expected records metadata 42, got %q", job.Metadata["records"])
	}
	if job.StartedAt == nil || job.CompletedAt == nil {
		t.Error("Expected start and completion times to be set")
	}
}

func TestJobManager_ExecuteJob_Failure(t *testing.T) {
	manager := newTestManager(t, 1)

	jobID := manager.CreateJob(model.JobTypeSync, nil)
	err := manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		return stderrors.New("upstream unavailable")
	})
	if err != nil {
		t.Fatalf("Failed to execute job: %v", err)
	}

	job := waitForStatus(t, manager, jobID, model.JobStatusFailed)
	if job.Error != "upstream unavailable" {
		t.Errorf("Expected error message to be recorded, got %q", job.Error)
	}

	stats := manager.Stats()
	if stats.JobsFailed != 1 {
		t.Errorf("Expected 1 failed job, got %d", stats.JobsFailed)
	}
	if rate := manager.SuccessRate(); rate != 0 {
		t.Errorf("Expected success rate 0, got %f", rate)
	}
}

func TestJobManager_ExecuteJob_NotPending(t *testing.T) {
	manager := newTestManager(t, 1)

	jobID := manager.CreateJob(model.JobTypeReload, nil)
	if err := manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error { return nil }); err != nil {
		t.Fatalf("Failed to execute job: %v", err)
	}
	waitForStatus(t, manager, jobID, model.JobStatusCompleted)

	if err := manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error { return nil }); err == nil {
		t.Error("Expected error when executing a finished job")
	}
	if err := manager.ExecuteJob("missing", nil); !stderrors.Is(err, errors.ErrJobNotFound) {
		t.Errorf("Expected ErrJobNotFound, got %v", err)
	}
}

func TestJobManager_ExecuteJob_PoolSaturated(t *testing.T) {
	manager := newTestManager(t, 1)

	release := make(chan struct{})
	first := manager.CreateJob(model.JobTypeReload, nil)
	if err := manager.ExecuteJob(first, func(ctx context.Context, job *model.Job) error {
		<-release
		return nil
	}); err != nil {
		t.Fatalf("Failed to execute first job: %v", err)
	}
	waitForStatus(t, manager, first, model.JobStatusRunning)

	second := manager.CreateJob(model.JobTypeReload, nil)
	if err := manager.ExecuteJob(second, func(ctx context.Context, job *model.Job) error { return nil }); err == nil {
		t.Error("Expected saturated pool to reject the second job")
	}
	close(release)

	job, _ := manager.GetJob(second)
	if job.Status != model.JobStatusCancelled {
		t.Errorf("Expected rejected job to be cancelled, got %s", job.Status)
	}
	if manager.Stats().JobsRejected != 1 {
		t.Errorf("Expected 1 rejected job, got %d", manager.Stats().JobsRejected)
	}
}

func TestJobManager_ListJobs(t *testing.T) {
	manager := newTestManager(t, 1)

	older := manager.CreateJob(model.JobTypeReload, nil)
	time.Sleep(2 * time.Millisecond)
	newer := manager.CreateJob(model.JobTypeSync, nil)

	all := manager.ListJobs(nil)
	if len(all) != 2 {
		t.Fatalf("Expected 2 jobs, got %d", len(all))
	}
	if all[0].ID != newer || all[1].ID != older {
		t.Error("Expected jobs ordered newest first")
	}

	running := model.JobStatusRunning
	if got := manager.ListJobs(&running); len(got) != 0 {
		t.Errorf("Expected no running jobs, got %d", len(got))
	}
}

func TestJobManager_CleanupOldJobs(t *testing.T) {
	manager := newTestManager(t, 1)

	jobID := manager.CreateJob(model.JobTypeReload, nil)
	if err := manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error { return nil }); err != nil {
		t.Fatalf("Failed to execute job: %v", err)
	}
	waitForStatus(t, manager, jobID, model.JobStatusCompleted)
	pending := manager.CreateJob(model.JobTypeReload, nil)

	if cleaned := manager.CleanupOldJobs(-time.Minute); cleaned != 1 {
		t.Errorf("Expected 1 job cleaned, got %d", cleaned)
	}
	if _, err := manager.GetJob(pending); err != nil {
		t.Error("Expected pending job to survive cleanup")
	}
}
