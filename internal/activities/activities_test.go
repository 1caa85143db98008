package activities

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"

	"fedcite/internal/batch"
	"fedcite/internal/providers"
)

func TestListPendingFilesSkipsCompleted(t *testing.T) {
	root := t.TempDir()
	batchDir := filepath.Join(root, "batches")
	resultsDir := filepath.Join(root, "results")
	require.NoError(t, os.MkdirAll(filepath.Join(resultsDir, "completed-batches"), 0o755))
	require.NoError(t, os.MkdirAll(batchDir, 0o755))
	for _, name := range []string{batch.RequestFileName(2020, 1), batch.RequestFileName(2021, 1)} {
		require.NoError(t, os.WriteFile(filepath.Join(batchDir, name), []byte("{}\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(resultsDir, "completed-batches", "batch_file_2021_part1.jsonl"), nil, 0o644))

	a := New(providers.NewMockBatchProvider(), nil, nil)
	out, err := a.ListPendingFilesActivity(context.Background(), ListPendingFilesInput{
		BatchDir:    batchDir,
		ResultsDir:  resultsDir,
		Description: "Final-Rules",
	})
	require.NoError(t, err)
	require.Equal(t, 1, out.Skipped)
	require.Len(t, out.Files, 1)
	require.Equal(t, PendingFile{
		Path:        filepath.Join(batchDir, "batch_file_2020_part1.jsonl"),
		Stem:        "batch_file_2020_part1",
		OutputPath:  filepath.Join(resultsDir, "completed-batches", "batch_file_2020_part1.jsonl"),
		Description: "batch_file_2020_part1 Final-Rules",
	}, out.Files[0])
}

func TestSubmitRetrieveSave(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, batch.RequestFileName(2020, 1))
	require.NoError(t, os.WriteFile(path, []byte(`{"custom_id":"x_1","body":{"messages":[]}}`+"\n"), 0o644))

	mock := providers.NewMockBatchProvider()
	a := New(mock, nil, nil)
	ctx := context.Background()

	sub, err := a.SubmitBatchActivity(ctx, SubmitBatchInput{Path: path, Description: "d"})
	require.NoError(t, err)
	require.Equal(t, providers.StatusPending, sub.Job.Status)

	got, err := a.RetrieveBatchActivity(ctx, RetrieveBatchInput{BatchID: sub.Job.ID})
	require.NoError(t, err)
	require.Equal(t, providers.StatusCompleted, got.Job.Status)

	outPath := filepath.Join(root, "out", "x.jsonl")
	require.NoError(t, a.SaveBatchOutputActivity(ctx, SaveBatchOutputInput{Job: got.Job, OutputPath: outPath}))
	body, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Contains(t, string(body), `"custom_id":"x_1"`)

	require.NoError(t, a.RecordBatchJobActivity(ctx, RecordBatchJobInput{RequestFile: path, Job: got.Job}))
}

func TestRetrieveUnknownBatchIsNonRetryable(t *testing.T) {
	a := New(providers.NewMockBatchProvider(), nil, nil)
	_, err := a.RetrieveBatchActivity(context.Background(), RetrieveBatchInput{BatchID: "nope"})
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	require.True(t, appErr.NonRetryable())
	require.Equal(t, string(providers.ErrorPermanent), appErr.Type())
}

func TestProviderErrorKeepsTransientRetryable(t *testing.T) {
	err := providerError("retrieve b", errors.New("service temporarily unavailable"))
	var appErr *temporal.ApplicationError
	require.False(t, errors.As(err, &appErr))
	require.Contains(t, err.Error(), "retrieve b")
}
