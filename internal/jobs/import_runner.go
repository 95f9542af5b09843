// Package jobs runs bulk imports in the background. Callers get a job id
// immediately and poll or subscribe for status; job records live in Redis
// with a TTL so abandoned jobs age out.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"keywordpyramid/internal/events"
	"keywordpyramid/internal/importer"
	"keywordpyramid/internal/keywords"
	"keywordpyramid/internal/metrics"
	"keywordpyramid/internal/models"
)

// ErrJobNotFound is returned when no job record exists for an id.
var ErrJobNotFound = errors.New("import job not found")

// jobTTL bounds how long finished and abandoned job records are kept.
const jobTTL = 24 * time.Hour

// ImportRunner executes queued bulk imports on background goroutines.
type ImportRunner struct {
	importer  *importer.Importer
	service   *keywords.Service
	client    *redis.Client
	publisher *events.Publisher

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewImportRunner creates a runner. publisher may be nil in tests.
func NewImportRunner(imp *importer.Importer, service *keywords.Service, client *redis.Client, publisher *events.Publisher) *ImportRunner {
	ctx, cancel := context.WithCancel(context.Background())
	return &ImportRunner{
		importer:  imp,
		service:   service,
		client:    client,
		publisher: publisher,
		baseCtx:   ctx,
		cancel:    cancel,
	}
}

// Enqueue spools the upload to a temp file, records a queued job, and
// starts a worker goroutine. The returned job id is available immediately.
func (r *ImportRunner) Enqueue(ctx context.Context, upload io.Reader) (string, error) {
	// The request body dies with the request; spool it so the worker can
	// stream it row by row after the caller has been answered.
	tmp, err := os.CreateTemp("", "keyword-import-*.csv")
	if err != nil {
		return "", fmt.Errorf("failed to spool import: %w", err)
	}
	if _, err := io.Copy(tmp, upload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to spool import: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to spool import: %w", err)
	}

	jobID := uuid.NewString()
	now := time.Now().UTC()
	job := &models.ImportJob{
		ID:        jobID,
		Status:    models.ImportQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.saveJob(ctx, job); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}

	r.wg.Add(1)
	go r.run(job, tmp)

	return jobID, nil
}

// Status returns the current job record for an id.
func (r *ImportRunner) Status(ctx context.Context, jobID string) (*models.ImportJob, error) {
	raw, err := r.client.Get(ctx, jobKey(jobID)).Bytes()
	if err == redis.Nil {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}

	var job models.ImportJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("corrupt job record: %w", err)
	}
	return &job, nil
}

// Shutdown cancels in-flight imports and waits for their workers to
// record a terminal job status. Each import flushes in bounded batches,
// so at most one batch per job is lost on a hard stop; committed batches
// stay committed.
func (r *ImportRunner) Shutdown() {
	r.cancel()
	r.wg.Wait()
}

func (r *ImportRunner) run(job *models.ImportJob, tmp *os.File) {
	defer r.wg.Done()
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	ctx := r.baseCtx

	job.Status = models.ImportRunning
	r.touch(ctx, job)

	onProgress := func(progress models.ImportProgress) {
		job.Progress = progress
		r.touch(ctx, job)
		if r.publisher != nil {
			r.publisher.Publish(ctx, events.ImportProgress, map[string]any{
				"job_id":   job.ID,
				"progress": progress,
			})
		}
	}

	result, err := r.importer.Run(ctx, tmp, onProgress)

	// Terminal bookkeeping runs on a detached context: the base context is
	// cancelled on shutdown, and a job must never be left "running" in
	// Redis after its worker has exited.
	finCtx, cancelFin := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelFin()

	// Whatever was flushed is committed; the cached views are stale either way.
	r.service.InvalidateAfterImport(finCtx)

	metrics.ImportRows.WithLabelValues("imported").Add(float64(result.Imported))
	metrics.ImportRows.WithLabelValues("updated").Add(float64(result.Updated))
	metrics.ImportRows.WithLabelValues("failed").Add(float64(len(result.Errors)))

	now := time.Now().UTC()
	job.FinishedAt = &now
	job.Result = result
	job.Progress = models.ImportProgress{Processed: result.TotalRows, Total: result.TotalRows}

	if err != nil {
		// Stream or flush failure: the job is failed with the partial
		// result attached.
		job.Status = models.ImportFailed
		job.Error = err.Error()
		r.touch(finCtx, job)
		slog.Error("import job failed", "job_id", job.ID, "error", err)
		if r.publisher != nil {
			r.publisher.Publish(finCtx, events.ImportFailed, job)
		}
		return
	}

	job.Status = models.ImportCompleted
	r.touch(finCtx, job)
	logCompletion := slog.Info
	if result.HasErrors() {
		logCompletion = slog.Warn
	}
	logCompletion("import job completed",
		"job_id", job.ID,
		"total", result.TotalRows,
		"imported", result.Imported,
		"updated", result.Updated,
		"row_errors", len(result.Errors),
	)
	if r.publisher != nil {
		// The completion payload carries the row errors so a clean run is
		// distinguishable from one that dropped rows.
		r.publisher.Publish(finCtx, events.ImportCompleted, job)
	}
}

func (r *ImportRunner) touch(ctx context.Context, job *models.ImportJob) {
	job.UpdatedAt = time.Now().UTC()
	if err := r.saveJob(ctx, job); err != nil {
		slog.Error("failed to save job record", "job_id", job.ID, "error", err)
	}
}

func (r *ImportRunner) saveJob(ctx context.Context, job *models.ImportJob) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, jobKey(job.ID), raw, jobTTL).Err()
}

func jobKey(jobID string) string {
	return "import:job:" + jobID
}
