package providers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

// OpenAIBatchProvider uploads request files and manages jobs through the
// OpenAI Files and Batches APIs.
type OpenAIBatchProvider struct {
	client openai.Client
}

func NewOpenAIBatchProvider(apiKey, baseURL string, opts ...option.RequestOption) (*OpenAIBatchProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key missing (set FEDCITE_OPENAI_API_KEY or OPENAI_API_KEY)")
	}
	all := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		all = append(all, option.WithBaseURL(baseURL))
	}
	all = append(all, opts...)
	return &OpenAIBatchProvider{client: openai.NewClient(all...)}, nil
}

func (o *OpenAIBatchProvider) Name() string { return "openai" }

func (o *OpenAIBatchProvider) Submit(ctx context.Context, path, description string) (BatchJob, error) {
	f, err := os.Open(path)
	if err != nil {
		return BatchJob{}, fmt.Errorf("open batch file: %w", err)
	}
	defer f.Close()

	file, err := o.client.Files.New(ctx, openai.FileNewParams{
		File:    f,
		Purpose: openai.FilePurposeBatch,
	})
	if err != nil {
		return BatchJob{}, fmt.Errorf("openai upload %s: %w", path, err)
	}
	batch, err := o.client.Batches.New(ctx, openai.BatchNewParams{
		InputFileID:      file.ID,
		Endpoint:         openai.BatchNewParamsEndpointV1ChatCompletions,
		CompletionWindow: openai.BatchNewParamsCompletionWindow24h,
		Metadata:         shared.Metadata{"description": description},
	})
	if err != nil {
		return BatchJob{}, fmt.Errorf("openai create batch: %w", err)
	}
	return o.toJob(batch), nil
}

func (o *OpenAIBatchProvider) Retrieve(ctx context.Context, id string) (BatchJob, error) {
	batch, err := o.client.Batches.Get(ctx, id)
	if err != nil {
		return BatchJob{}, fmt.Errorf("openai retrieve batch %s: %w", id, err)
	}
	return o.toJob(batch), nil
}

func (o *OpenAIBatchProvider) Output(ctx context.Context, job BatchJob) ([]byte, error) {
	if job.OutputFileID == "" {
		return nil, fmt.Errorf("batch %s has no output file", job.ID)
	}
	resp, err := o.client.Files.Content(ctx, job.OutputFileID)
	if err != nil {
		return nil, fmt.Errorf("openai download %s: %w", job.OutputFileID, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read batch output: %w", err)
	}
	return body, nil
}

func (o *OpenAIBatchProvider) toJob(b *openai.Batch) BatchJob {
	return BatchJob{
		ID:           b.ID,
		Status:       mapOpenAIStatus(b.Status),
		RawStatus:    string(b.Status),
		InputFileID:  b.InputFileID,
		OutputFileID: b.OutputFileID,
		Description:  b.Metadata["description"],
		Provider:     o.Name(),
	}
}

func mapOpenAIStatus(s openai.BatchStatus) BatchStatus {
	switch s {
	case openai.BatchStatusCompleted:
		return StatusCompleted
	case openai.BatchStatusFailed, openai.BatchStatusExpired, openai.BatchStatusCancelled, openai.BatchStatusCancelling:
		return StatusFailed
	default:
		return StatusPending
	}
}
