package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"fedcite/internal/providers"
	"fedcite/internal/storage"
	"fedcite/internal/util"
)

type fakeRecorder struct {
	mu   sync.Mutex
	recs []storage.BatchJobRecord
	err  error
}

func (f *fakeRecorder) Upsert(_ context.Context, rec storage.BatchJobRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs = append(f.recs, rec)
	return f.err
}

func writeRequestFile(t *testing.T, dir string, year, part int, ids ...string) RequestFile {
	t.Helper()
	var reqs []string
	for _, id := range ids {
		reqs = append(reqs, `{"custom_id":"`+id+`","method":"POST","url":"/v1/chat/completions","body":{"messages":[{"role":"user","content":"p"},{"role":"user","content":"c-`+id+`"}]}}`)
	}
	path := filepath.Join(dir, RequestFileName(year, part))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(reqs, "\n")+"\n"), 0o644))
	return RequestFile{Path: path, Year: year, Part: part}
}

func TestRunnerSubmitsPendingFiles(t *testing.T) {
	root := t.TempDir()
	batchDir := filepath.Join(root, "batches")
	resultsDir := filepath.Join(root, "results")
	require.NoError(t, os.MkdirAll(batchDir, 0o755))

	done := writeRequestFile(t, batchDir, 2021, 1, "2021-1_1")
	writeRequestFile(t, batchDir, 2020, 1, "2020-1_1", "2020-1_2")
	writeRequestFile(t, batchDir, 2020, 2, "2020-2_1")

	// An output already on disk means the file was processed before.
	existing := OutputPath(resultsDir, done)
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0o755))
	require.NoError(t, os.WriteFile(existing, []byte("old\n"), 0o644))

	mock := providers.NewMockBatchProvider()
	mock.PendingPolls = 1
	mock.Respond = func(customID string, turns []string) string {
		return `{"title": "` + turns[len(turns)-1] + `"}`
	}
	mock.Fail = func(desc string) bool { return strings.HasPrefix(desc, "batch_file_2020_part2 ") }

	rec := &fakeRecorder{}
	core, logs := observer.New(zap.InfoLevel)
	r := NewRunner(mock, RunnerConfig{
		BatchDir:     batchDir,
		ResultsDir:   resultsDir,
		Description:  "Final-Rules",
		PollInterval: time.Millisecond,
	}, rec, zap.New(core))

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, RunSummary{Submitted: 2, Completed: 1, Failed: 1, Skipped: 1}, sum)

	failed := logs.FilterMessage("batch: job failed").All()
	require.Len(t, failed, 1)
	logged, ok := failed[0].ContextMap()["error"].(string)
	require.True(t, ok)
	require.Contains(t, logged, util.ErrBatchFailed.Error())
	require.Zero(t, logs.FilterMessage("batch: request file failed").Len())

	jobs := mock.Jobs()
	require.Len(t, jobs, 2)
	require.Equal(t, "batch_file_2020_part2 Final-Rules", jobs[0].Description)
	require.Equal(t, "batch_file_2020_part1 Final-Rules", jobs[1].Description)

	old, err := os.ReadFile(existing)
	require.NoError(t, err)
	require.Equal(t, "old\n", string(old))

	out, err := os.ReadFile(filepath.Join(resultsDir, "completed-batches", "batch_file_2020_part1.jsonl"))
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(string(out), "\n"))
	require.Contains(t, string(out), `"custom_id":"2020-1_2"`)
	require.Contains(t, string(out), `c-2020-1_1`)

	_, err = os.Stat(filepath.Join(resultsDir, "completed-batches", "batch_file_2020_part2.jsonl"))
	require.True(t, errors.Is(err, os.ErrNotExist))

	// Submitted plus final state for each job.
	require.Len(t, rec.recs, 4)
	require.Equal(t, "pending", rec.recs[0].Status)
	require.Equal(t, "failed", rec.recs[1].Status)
	require.Equal(t, "completed", rec.recs[3].Status)
	require.Equal(t, "mock", rec.recs[3].Provider)
	require.NotEmpty(t, rec.recs[3].OutputFileID)
}

func TestRunnerRecorderErrorsDoNotStopRun(t *testing.T) {
	root := t.TempDir()
	batchDir := filepath.Join(root, "batches")
	require.NoError(t, os.MkdirAll(batchDir, 0o755))
	writeRequestFile(t, batchDir, 2020, 1, "a_1")

	r := NewRunner(providers.NewMockBatchProvider(), RunnerConfig{
		BatchDir:     batchDir,
		ResultsDir:   filepath.Join(root, "results"),
		PollInterval: time.Millisecond,
	}, &fakeRecorder{err: errors.New("db down")}, nil)

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sum.Completed)
}

func TestRunnerMissingBatchDir(t *testing.T) {
	r := NewRunner(providers.NewMockBatchProvider(), RunnerConfig{BatchDir: filepath.Join(t.TempDir(), "nope")}, nil, nil)
	_, err := r.Run(context.Background())
	require.Error(t, err)
}

func TestPollStopsOnPermanentError(t *testing.T) {
	_, err := Poll(context.Background(), providers.NewMockBatchProvider(), "batch_missing", time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "batch_missing")
}

func TestPollHonoursCancellation(t *testing.T) {
	root := t.TempDir()
	f := writeRequestFile(t, root, 2020, 1, "a_1")
	mock := providers.NewMockBatchProvider()
	mock.PendingPolls = 1 << 20
	job, err := mock.Submit(context.Background(), f.Path, "x")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	last, err := Poll(ctx, mock, job.ID, time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, job.ID, last.ID)
	require.Equal(t, "in_progress", last.RawStatus)
}

func TestListRequestFilesIgnoresOthers(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"batch_file_2019_part10.jsonl", "batch_file_2019_part2.jsonl", "notes.txt", "batch_file_x_part1.jsonl"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	files, err := ListRequestFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.Equal(t, 10, files[0].Part)
	require.Equal(t, "2019_2", files[1].Key())
	require.Equal(t, "batch_file_2019_part2 Final-Rules", Description(files[1], "Final-Rules"))
}
