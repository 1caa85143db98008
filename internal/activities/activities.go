package activities

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"fedcite/internal/batch"
	"fedcite/internal/logging"
	"fedcite/internal/providers"
	"fedcite/internal/util"
)

type Activities struct {
	provider providers.BatchProvider
	recorder batch.JobRecorder
	log      *zap.Logger
}

// New wires the activities to a batch provider. recorder may be nil when no
// database is configured.
func New(provider providers.BatchProvider, recorder batch.JobRecorder, log *zap.Logger) *Activities {
	return &Activities{provider: provider, recorder: recorder, log: logging.OrNop(log)}
}

func (a *Activities) ListPendingFilesActivity(ctx context.Context, in ListPendingFilesInput) (ListPendingFilesOutput, error) {
	_ = ctx
	files, err := batch.ListRequestFiles(in.BatchDir)
	if err != nil {
		return ListPendingFilesOutput{}, err
	}
	out := ListPendingFilesOutput{Files: make([]PendingFile, 0, len(files))}
	for _, f := range files {
		outPath := batch.OutputPath(in.ResultsDir, f)
		if util.FileExists(outPath) {
			out.Skipped++
			continue
		}
		out.Files = append(out.Files, PendingFile{
			Path:        f.Path,
			Stem:        f.Stem(),
			OutputPath:  outPath,
			Description: batch.Description(f, in.Description),
		})
	}
	return out, nil
}

func (a *Activities) SubmitBatchActivity(ctx context.Context, in SubmitBatchInput) (SubmitBatchOutput, error) {
	job, err := a.provider.Submit(ctx, in.Path, in.Description)
	if err != nil {
		return SubmitBatchOutput{}, providerError("submit "+in.Path, err)
	}
	a.log.Info("batch: submitted", zap.String("file", in.Path), zap.String("batch_id", job.ID))
	return SubmitBatchOutput{Job: job}, nil
}

func (a *Activities) RetrieveBatchActivity(ctx context.Context, in RetrieveBatchInput) (RetrieveBatchOutput, error) {
	job, err := a.provider.Retrieve(ctx, in.BatchID)
	if err != nil {
		return RetrieveBatchOutput{}, providerError("retrieve "+in.BatchID, err)
	}
	return RetrieveBatchOutput{Job: job}, nil
}

func (a *Activities) SaveBatchOutputActivity(ctx context.Context, in SaveBatchOutputInput) error {
	if err := batch.SaveOutput(ctx, a.provider, in.Job, in.OutputPath); err != nil {
		return providerError("save output of "+in.Job.ID, err)
	}
	a.log.Info("batch: completed", zap.String("batch_id", in.Job.ID), zap.String("output", in.OutputPath))
	return nil
}

func (a *Activities) RecordBatchJobActivity(ctx context.Context, in RecordBatchJobInput) error {
	if a.recorder == nil {
		return nil
	}
	return a.recorder.Upsert(ctx, batch.JobRecord(in.RequestFile, in.Job, in.ErrorType))
}

// providerError marks errors that another attempt cannot fix so Temporal
// stops retrying them.
func providerError(op string, err error) error {
	if providers.Retryable(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return temporal.NewNonRetryableApplicationError(op+": "+err.Error(), string(providers.ClassifyError(err)), err)
}
