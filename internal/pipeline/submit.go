package pipeline

import (
	"context"
	"fmt"

	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"fedcite/internal/batch"
	"fedcite/internal/storage"
	"fedcite/internal/workflows"
)

// SubmitWorkflowID names the durable submit run; only one may run at a time.
const SubmitWorkflowID = "fedcite-submit-all"

// Submit runs every pending request file through the batch provider in
// process, recording job state in Postgres when configured.
func (p *Pipeline) Submit(ctx context.Context) (batch.RunSummary, error) {
	provider, err := p.batchProvider()
	if err != nil {
		return batch.RunSummary{}, err
	}
	db, err := p.openDB(ctx)
	if err != nil {
		return batch.RunSummary{}, err
	}
	var recorder batch.JobRecorder
	if db != nil {
		defer db.Close()
		recorder = storage.NewBatchJobRepo(db)
	}
	r := batch.NewRunner(provider, batch.RunnerConfig{
		BatchDir:     p.cfg.BatchDir,
		ResultsDir:   p.cfg.ResultsDir,
		Description:  p.cfg.BatchDescription,
		PollInterval: p.cfg.PollInterval,
	}, recorder, p.log)
	return r.Run(ctx)
}

// SubmitDurable starts SubmitAllWorkflow on the worker task queue and waits
// for it to finish.
func (p *Pipeline) SubmitDurable(ctx context.Context, c tclient.Client) (workflows.SubmitAllResult, error) {
	run, err := c.ExecuteWorkflow(ctx, tclient.StartWorkflowOptions{
		ID:                                       SubmitWorkflowID,
		TaskQueue:                                p.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}, workflows.SubmitAllWorkflow, workflows.SubmitAllInput{
		BatchDir:            p.cfg.BatchDir,
		ResultsDir:          p.cfg.ResultsDir,
		Description:         p.cfg.BatchDescription,
		PollIntervalSeconds: int(p.cfg.PollInterval.Seconds()),
	})
	if err != nil {
		return workflows.SubmitAllResult{}, fmt.Errorf("start submit workflow: %w", err)
	}
	p.log.Info("submit: workflow started", zap.String("workflow_id", run.GetID()), zap.String("run_id", run.GetRunID()))

	var res workflows.SubmitAllResult
	if err := run.Get(ctx, &res); err != nil {
		return res, fmt.Errorf("submit workflow: %w", err)
	}
	return res, nil
}
