package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fedcite/internal/logging"
	"fedcite/internal/providers"
	"fedcite/internal/storage"
	"fedcite/internal/util"
)

const DefaultPollInterval = 30 * time.Second

// JobRecorder persists job lifecycle changes. storage.BatchJobRepo satisfies it.
type JobRecorder interface {
	Upsert(ctx context.Context, rec storage.BatchJobRecord) error
}

type RunnerConfig struct {
	BatchDir     string
	ResultsDir   string
	Description  string
	PollInterval time.Duration
}

type RunSummary struct {
	Submitted int
	Completed int
	Failed    int
	Skipped   int
}

type Runner struct {
	provider providers.BatchProvider
	cfg      RunnerConfig
	recorder JobRecorder
	log      *zap.Logger
}

func NewRunner(provider providers.BatchProvider, cfg RunnerConfig, recorder JobRecorder, log *zap.Logger) *Runner {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Description == "" {
		cfg.Description = "Final-Rules"
	}
	return &Runner{provider: provider, cfg: cfg, recorder: recorder, log: logging.OrNop(log)}
}

// Description labels the job for f the way its completed output is named.
func Description(f RequestFile, label string) string {
	return f.Stem() + " " + label
}

// Run submits every request file without a completed output, one at a time,
// and waits for each job to finish. A failed job is logged and leaves no
// output; it does not stop the run.
func (r *Runner) Run(ctx context.Context) (RunSummary, error) {
	var sum RunSummary
	files, err := ListRequestFiles(r.cfg.BatchDir)
	if err != nil {
		return sum, err
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if util.FileExists(OutputPath(r.cfg.ResultsDir, f)) {
			sum.Skipped++
			continue
		}
		sum.Submitted++
		err := r.runFile(ctx, f)
		switch {
		case err == nil:
			sum.Completed++
		case ctx.Err() != nil:
			return sum, ctx.Err()
		case errors.Is(err, util.ErrBatchFailed):
			sum.Failed++
			r.log.Error("batch: job failed", zap.String("file", f.Path), zap.Error(err))
		default:
			sum.Failed++
			r.log.Error("batch: request file failed",
				zap.String("file", f.Path),
				zap.String("error_type", string(providers.ClassifyError(err))),
				zap.Error(err),
			)
		}
	}
	r.log.Info("batch: run finished",
		zap.Int("submitted", sum.Submitted),
		zap.Int("completed", sum.Completed),
		zap.Int("failed", sum.Failed),
		zap.Int("skipped", sum.Skipped),
	)
	return sum, nil
}

func (r *Runner) runFile(ctx context.Context, f RequestFile) error {
	log := r.log.With(zap.String("file", f.Stem()))
	job, err := r.provider.Submit(ctx, f.Path, Description(f, r.cfg.Description))
	if err != nil {
		return err
	}
	log.Info("batch: submitted", zap.String("batch_id", job.ID))
	r.record(ctx, f, job, "")

	job, err = Poll(ctx, r.provider, job.ID, r.cfg.PollInterval)
	if err != nil {
		r.record(ctx, f, job, string(providers.ClassifyError(err)))
		return err
	}
	r.record(ctx, f, job, "")
	if job.Status == providers.StatusFailed {
		return fmt.Errorf("batch %s ended %s: %w", job.ID, job.RawStatus, util.ErrBatchFailed)
	}

	if err := SaveOutput(ctx, r.provider, job, OutputPath(r.cfg.ResultsDir, f)); err != nil {
		return err
	}
	log.Info("batch: completed", zap.String("batch_id", job.ID))
	return nil
}

func (r *Runner) record(ctx context.Context, f RequestFile, job providers.BatchJob, errType string) {
	if r.recorder == nil || job.ID == "" {
		return
	}
	if err := r.recorder.Upsert(ctx, JobRecord(f.Path, job, errType)); err != nil {
		r.log.Warn("batch: failed to record job", zap.String("batch_id", job.ID), zap.Error(err))
	}
}

func JobRecord(requestFile string, job providers.BatchJob, errType string) storage.BatchJobRecord {
	return storage.BatchJobRecord{
		BatchID:      job.ID,
		RequestFile:  requestFile,
		Provider:     job.Provider,
		Description:  job.Description,
		Status:       string(job.Status),
		RawStatus:    job.RawStatus,
		OutputFileID: job.OutputFileID,
		ErrorType:    errType,
	}
}

// Poll retrieves the job every interval until it is completed or failed.
// Transient retrieval errors are retried on the next tick.
func Poll(ctx context.Context, provider providers.BatchProvider, id string, interval time.Duration) (providers.BatchJob, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := providers.BatchJob{ID: id}
	for {
		job, err := provider.Retrieve(ctx, id)
		switch {
		case err == nil:
			last = job
			if job.Terminal() {
				return job, nil
			}
		case !providers.Retryable(err):
			return last, fmt.Errorf("poll batch %s: %w", id, err)
		}
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-ticker.C:
		}
	}
}

// SaveOutput downloads the result of a completed job to path.
func SaveOutput(ctx context.Context, provider providers.BatchProvider, job providers.BatchJob, path string) error {
	body, err := provider.Output(ctx, job)
	if err != nil {
		return err
	}
	return util.WriteBytesAtomic(path, body)
}
