package providers

import "context"

type BatchStatus string

const (
	StatusPending   BatchStatus = "pending"
	StatusCompleted BatchStatus = "completed"
	StatusFailed    BatchStatus = "failed"
)

// BatchJob is a handle to one submitted request file.
type BatchJob struct {
	ID           string      `json:"id"`
	Status       BatchStatus `json:"status"`
	RawStatus    string      `json:"raw_status,omitempty"`
	InputFileID  string      `json:"input_file_id,omitempty"`
	OutputFileID string      `json:"output_file_id,omitempty"`
	Description  string      `json:"description,omitempty"`
	Provider     string      `json:"provider"`
}

func (j BatchJob) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// BatchProvider runs JSON Lines request files through a batch inference API.
type BatchProvider interface {
	Name() string
	Submit(ctx context.Context, path, description string) (BatchJob, error)
	Retrieve(ctx context.Context, id string) (BatchJob, error)
	// Output returns the raw JSON Lines result of a completed job.
	Output(ctx context.Context, job BatchJob) ([]byte, error)
}
