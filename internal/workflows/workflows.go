package workflows

import (
	"errors"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"fedcite/internal/activities"
	"fedcite/internal/providers"
)

const (
	QueryGetProgress    = "GetProgress"
	QueryGetBatchStatus = "GetBatchStatus"

	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

func activityOptions(attempts int32) workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    attempts,
		},
	}
}

// SubmitAllWorkflow runs one BatchJobWorkflow per pending request file, one
// after another. A failed child is counted and the next file still runs.
func SubmitAllWorkflow(ctx workflow.Context, input SubmitAllInput) (SubmitAllResult, error) {
	progress := SubmitAllProgress{PerFile: map[string]string{}, ChildByID: map[string]string{}}
	if err := workflow.SetQueryHandler(ctx, QueryGetProgress, func() (SubmitAllProgress, error) {
		return progress, nil
	}); err != nil {
		return SubmitAllResult{}, err
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions(3))

	var listOut activities.ListPendingFilesOutput
	if err := workflow.ExecuteActivity(ctx, "ListPendingFilesActivity", activities.ListPendingFilesInput{
		BatchDir:    input.BatchDir,
		ResultsDir:  input.ResultsDir,
		Description: input.Description,
	}).Get(ctx, &listOut); err != nil {
		return SubmitAllResult{}, err
	}
	result := SubmitAllResult{Total: len(listOut.Files), Skipped: listOut.Skipped}
	progress.Total = len(listOut.Files)

	logger := workflow.GetLogger(ctx)
	for _, f := range listOut.Files {
		progress.Current = f.Stem
		progress.PerFile[f.Stem] = "processing"
		workflowID := "batch-" + sanitizeID(f.Stem) + "-" + workflow.GetInfo(ctx).WorkflowExecution.RunID
		progress.ChildByID[f.Stem] = workflowID

		childCtx := workflow.WithChildOptions(ctx, workflow.ChildWorkflowOptions{WorkflowID: workflowID})
		var status string
		err := workflow.ExecuteChildWorkflow(childCtx, BatchJobWorkflow, BatchJobInput{
			RequestFile:         f.Path,
			OutputPath:          f.OutputPath,
			Description:         f.Description,
			PollIntervalSeconds: input.PollIntervalSeconds,
		}).Get(ctx, &status)
		progress.Done++
		if err != nil {
			logger.Error("batch job workflow failed", "file", f.Path, "error", err)
			status = StatusFailed
		}
		progress.PerFile[f.Stem] = status
		if status == StatusCompleted {
			result.Completed++
		} else {
			result.Failed++
			progress.Failed++
		}
	}
	progress.Current = ""
	return result, nil
}

// BatchJobWorkflow submits one request file, polls until the job is terminal
// and saves the output of a completed job. A failed job is a result, not an
// error.
func BatchJobWorkflow(ctx workflow.Context, input BatchJobInput) (string, error) {
	status := BatchJobStatus{RequestFile: input.RequestFile, Status: "submitting"}
	if err := workflow.SetQueryHandler(ctx, QueryGetBatchStatus, func() (BatchJobStatus, error) {
		return status, nil
	}); err != nil {
		return "", err
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions(5))
	interval := durationOrDefault(input.PollIntervalSeconds, 30)

	var submitOut activities.SubmitBatchOutput
	if err := workflow.ExecuteActivity(ctx, "SubmitBatchActivity", activities.SubmitBatchInput{
		Path:        input.RequestFile,
		Description: input.Description,
	}).Get(ctx, &submitOut); err != nil {
		return "", err
	}
	job := submitOut.Job
	status.BatchID = job.ID
	status.Status = string(job.Status)
	record(ctx, input.RequestFile, job, "")

	for !job.Terminal() {
		if err := workflow.Sleep(ctx, interval); err != nil {
			return "", err
		}
		var retrieveOut activities.RetrieveBatchOutput
		if err := workflow.ExecuteActivity(ctx, "RetrieveBatchActivity", activities.RetrieveBatchInput{BatchID: job.ID}).Get(ctx, &retrieveOut); err != nil {
			record(ctx, input.RequestFile, job, errorType(err))
			return "", err
		}
		job = retrieveOut.Job
		status.Polls++
		status.Status = string(job.Status)
		status.RawStatus = job.RawStatus
	}
	record(ctx, input.RequestFile, job, "")

	if job.Status == providers.StatusFailed {
		workflow.GetLogger(ctx).Error("batch job failed", "batch_id", job.ID, "status", job.RawStatus)
		return StatusFailed, nil
	}
	if err := workflow.ExecuteActivity(ctx, "SaveBatchOutputActivity", activities.SaveBatchOutputInput{
		Job:        job,
		OutputPath: input.OutputPath,
	}).Get(ctx, nil); err != nil {
		return "", err
	}
	return StatusCompleted, nil
}

// record is best effort; a missing database must not fail the job.
func record(ctx workflow.Context, requestFile string, job providers.BatchJob, errType string) {
	_ = workflow.ExecuteActivity(ctx, "RecordBatchJobActivity", activities.RecordBatchJobInput{
		RequestFile: requestFile,
		Job:         job,
		ErrorType:   errType,
	}).Get(ctx, nil)
}

func errorType(err error) string {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) && appErr.Type() != "" {
		return appErr.Type()
	}
	return string(providers.ClassifyError(err))
}

func sanitizeID(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, ".", "-")
	s = strings.ReplaceAll(s, "/", "-")
	return s
}

func durationOrDefault(seconds int, fallback int) time.Duration {
	if seconds <= 0 {
		seconds = fallback
	}
	return time.Duration(seconds) * time.Second
}
