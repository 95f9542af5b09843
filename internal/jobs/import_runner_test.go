package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"keywordpyramid/internal/cache"
	"keywordpyramid/internal/importer"
	"keywordpyramid/internal/keywords"
	"keywordpyramid/internal/models"
	"keywordpyramid/internal/testutil"
)

func setupRunner(t *testing.T) (*ImportRunner, func()) {
	t.Helper()

	database, dbCleanup := testutil.TestDB(t)
	client, redisCleanup := testutil.TestRedis(t)

	service := keywords.NewService(database, cache.New(client), nil, keywords.DefaultTTLs())
	runner := NewImportRunner(importer.New(database), service, client, nil)

	return runner, func() {
		runner.Shutdown()
		redisCleanup()
		dbCleanup()
	}
}

func waitForJob(t *testing.T, runner *ImportRunner, jobID string) *models.ImportJob {
	t.Helper()

	ctx := context.Background()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		job, err := runner.Status(ctx, jobID)
		if err != nil {
			t.Fatalf("Status() error = %v", err)
		}
		if job.Status == models.ImportCompleted || job.Status == models.ImportFailed {
			return job
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("import job did not finish in time")
	return nil
}

func TestImportRunner(t *testing.T) {
	runner, cleanup := setupRunner(t)
	defer cleanup()

	ctx := context.Background()

	csvData := "keyword,search_volume,difficulty,cpc\n" +
		"queued keyword one,31000,40,1.0\n" +
		"queued keyword two,5000,not-a-number,1.0\n" +
		"queued keyword three,800,,0.2\n"

	jobID, err := runner.Enqueue(ctx, strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if jobID == "" {
		t.Fatal("Enqueue() returned empty job id")
	}

	// The job is readable immediately, before the worker finishes.
	job, err := runner.Status(ctx, jobID)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if job.ID != jobID {
		t.Errorf("Status() id = %q, want %q", job.ID, jobID)
	}

	job = waitForJob(t, runner, jobID)
	if job.Status != models.ImportCompleted {
		t.Fatalf("job status = %q (error %q), want completed", job.Status, job.Error)
	}
	if job.Result == nil {
		t.Fatal("completed job carries no result")
	}
	if job.Result.TotalRows != 3 || job.Result.Imported != 2 {
		t.Errorf("result = %+v, want 3 rows, 2 imported", job.Result)
	}
	if len(job.Result.Errors) != 1 || job.Result.Errors[0].Row != 2 {
		t.Errorf("result errors = %+v, want one error on row 2", job.Result.Errors)
	}
	if !job.Result.HasErrors() {
		t.Error("HasErrors() = false for a run with a rejected row")
	}
	if job.FinishedAt == nil {
		t.Error("completed job has no finished_at")
	}
}

func TestImportRunner_StatusUnknownJob(t *testing.T) {
	runner, cleanup := setupRunner(t)
	defer cleanup()

	_, err := runner.Status(context.Background(), "no-such-job")
	if !errors.Is(err, ErrJobNotFound) {
		t.Errorf("Status() error = %v, want ErrJobNotFound", err)
	}
}

func TestImportRunner_ShutdownLeavesNoRunningJob(t *testing.T) {
	runner, cleanup := setupRunner(t)
	defer cleanup()

	ctx := context.Background()

	var sb strings.Builder
	sb.WriteString("keyword,search_volume\n")
	for i := 0; i < 5000; i++ {
		fmt.Fprintf(&sb, "shutdown keyword %04d,%d\n", i, 100+i)
	}

	jobID, err := runner.Enqueue(ctx, strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	// Shutdown cancels the worker; its terminal status must still land in
	// Redis rather than leaving the record "running" until the TTL.
	runner.Shutdown()

	job, err := runner.Status(ctx, jobID)
	if err != nil {
		t.Fatalf("Status() after shutdown error = %v", err)
	}
	if job.Status != models.ImportCompleted && job.Status != models.ImportFailed {
		t.Errorf("job status after shutdown = %q, want a terminal status", job.Status)
	}
	if job.FinishedAt == nil {
		t.Error("job has no finished_at after shutdown")
	}
}

func TestImportRunner_BadHeaderFailsJob(t *testing.T) {
	runner, cleanup := setupRunner(t)
	defer cleanup()

	jobID, err := runner.Enqueue(context.Background(), strings.NewReader("volume,cpc\n100,1\n"))
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	job := waitForJob(t, runner, jobID)
	if job.Status != models.ImportFailed {
		t.Fatalf("job status = %q, want failed", job.Status)
	}
	if job.Error == "" {
		t.Error("failed job carries no error message")
	}
}
