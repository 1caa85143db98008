package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIBatchProviderAgainstFakeAPI(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/files", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "batch", r.FormValue("purpose"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"file-in","object":"file","bytes":12,"created_at":1,"filename":"b.jsonl","purpose":"batch","status":"processed"}`)
	})
	mux.HandleFunc("/v1/batches", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"input_file_id":"file-in"`)
		assert.Contains(t, string(body), `"completion_window":"24h"`)
		assert.Contains(t, string(body), `"/v1/chat/completions"`)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"batch_1","object":"batch","endpoint":"/v1/chat/completions","input_file_id":"file-in",
			"completion_window":"24h","status":"validating","created_at":1,"metadata":{"description":"2020_1 Final-Rules"}}`)
	})
	mux.HandleFunc("/v1/batches/batch_1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"batch_1","object":"batch","endpoint":"/v1/chat/completions","input_file_id":"file-in",
			"completion_window":"24h","status":"completed","output_file_id":"file-out","created_at":1,
			"metadata":{"description":"2020_1 Final-Rules"}}`)
	})
	mux.HandleFunc("/v1/files/file-out/content", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "{\"custom_id\":\"a_1\"}\n")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p, err := NewOpenAIBatchProvider("sk-test", srv.URL+"/v1/", option.WithMaxRetries(0))
	require.NoError(t, err)
	ctx := context.Background()

	job, err := p.Submit(ctx, writeRequests(t, `{"custom_id":"a_1"}`), "2020_1 Final-Rules")
	require.NoError(t, err)
	require.Equal(t, "batch_1", job.ID)
	require.Equal(t, StatusPending, job.Status)
	require.Equal(t, "2020_1 Final-Rules", job.Description)

	job, err = p.Retrieve(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, job.Status)
	require.Equal(t, "file-out", job.OutputFileID)

	out, err := p.Output(ctx, job)
	require.NoError(t, err)
	require.Equal(t, "{\"custom_id\":\"a_1\"}\n", string(out))
}

func TestMapOpenAIStatus(t *testing.T) {
	require.Equal(t, StatusCompleted, mapOpenAIStatus(openai.BatchStatusCompleted))
	require.Equal(t, StatusFailed, mapOpenAIStatus(openai.BatchStatusExpired))
	require.Equal(t, StatusFailed, mapOpenAIStatus(openai.BatchStatusCancelled))
	require.Equal(t, StatusPending, mapOpenAIStatus(openai.BatchStatusInProgress))
	require.Equal(t, StatusPending, mapOpenAIStatus(openai.BatchStatusValidating))
}
