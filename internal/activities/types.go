package activities

import "fedcite/internal/providers"

type ListPendingFilesInput struct {
	BatchDir    string `json:"batch_dir"`
	ResultsDir  string `json:"results_dir"`
	Description string `json:"description"`
}

// PendingFile is a request file that has no completed output yet.
type PendingFile struct {
	Path        string `json:"path"`
	Stem        string `json:"stem"`
	OutputPath  string `json:"output_path"`
	Description string `json:"description"`
}

type ListPendingFilesOutput struct {
	Files   []PendingFile `json:"files"`
	Skipped int           `json:"skipped"`
}

type SubmitBatchInput struct {
	Path        string `json:"path"`
	Description string `json:"description"`
}

type SubmitBatchOutput struct {
	Job providers.BatchJob `json:"job"`
}

type RetrieveBatchInput struct {
	BatchID string `json:"batch_id"`
}

type RetrieveBatchOutput struct {
	Job providers.BatchJob `json:"job"`
}

type SaveBatchOutputInput struct {
	Job        providers.BatchJob `json:"job"`
	OutputPath string             `json:"output_path"`
}

type RecordBatchJobInput struct {
	RequestFile string             `json:"request_file"`
	Job         providers.BatchJob `json:"job"`
	ErrorType   string             `json:"error_type,omitempty"`
}
