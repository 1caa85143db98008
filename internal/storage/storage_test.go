package storage

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"fedcite/internal/models"
)

func TestCitationRowSanitizesAndNulls(t *testing.T) {
	row := citationRow("run", 3, models.NormalizedRecord{
		ExtractedRecord: models.ExtractedRecord{
			CustomID:   "d_1",
			DocumentID: "d",
			Title:      "A\x00 Study",
			Authors:    []string{"J\x01 Smith"},
		},
		Agencies: []string{},
	})
	require.Len(t, row, len(citationColumns))
	require.Equal(t, 3, row[1])
	require.Nil(t, row[4].(*string))
	require.Equal(t, "A Study", *row[5].(*string))
	require.Equal(t, []string{"J Smith"}, row[6])
	require.Equal(t, []string{}, row[17])
	require.Nil(t, row[18].([]string))
}

// Runs only against a disposable database.
func TestReposAgainstPostgres(t *testing.T) {
	dsn := os.Getenv("FEDCITE_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("FEDCITE_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()
	db, err := NewDB(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.EnsureSchema(ctx))

	runID := uuid.NewString()
	repo := NewCitationRepo(db)
	recs := []models.NormalizedRecord{
		{ExtractedRecord: models.ExtractedRecord{CustomID: "d_1", DocumentID: "d", Title: "A"}},
		{ExtractedRecord: models.ExtractedRecord{CustomID: "d_1", DocumentID: "d", Title: "B"}},
	}
	require.NoError(t, repo.ReplaceRun(ctx, runID, recs))
	require.NoError(t, repo.ReplaceRun(ctx, runID, recs[:1]))
	n, err := repo.CountByRun(ctx, runID)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	jobs := NewBatchJobRepo(db)
	batchID := "batch_" + runID
	require.NoError(t, jobs.Upsert(ctx, BatchJobRecord{BatchID: batchID, RequestFile: "f", Provider: "mock", Status: "pending"}))
	require.NoError(t, jobs.Upsert(ctx, BatchJobRecord{BatchID: batchID, RequestFile: "f", Provider: "mock", Status: "completed", OutputFileID: "out"}))
	done, err := jobs.ListByStatus(ctx, "completed")
	require.NoError(t, err)
	found := false
	for _, j := range done {
		if j.BatchID == batchID {
			found = true
			require.Equal(t, "out", j.OutputFileID)
		}
	}
	require.True(t, found)
}
