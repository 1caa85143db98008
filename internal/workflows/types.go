package workflows

type SubmitAllInput struct {
	BatchDir            string `json:"batch_dir"`
	ResultsDir          string `json:"results_dir"`
	Description         string `json:"description"`
	PollIntervalSeconds int    `json:"poll_interval_seconds"`
}

type SubmitAllResult struct {
	Total     int `json:"total"`
	Skipped   int `json:"skipped"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// SubmitAllProgress is returned by the GetProgress query.
type SubmitAllProgress struct {
	Total     int               `json:"total"`
	Done      int               `json:"done"`
	Failed    int               `json:"failed"`
	Current   string            `json:"current,omitempty"`
	PerFile   map[string]string `json:"per_file"`
	ChildByID map[string]string `json:"child_by_id"`
}

type BatchJobInput struct {
	RequestFile         string `json:"request_file"`
	OutputPath          string `json:"output_path"`
	Description         string `json:"description"`
	PollIntervalSeconds int    `json:"poll_interval_seconds"`
}

// BatchJobStatus is returned by the GetBatchStatus query.
type BatchJobStatus struct {
	RequestFile string `json:"request_file"`
	BatchID     string `json:"batch_id,omitempty"`
	Status      string `json:"status"`
	RawStatus   string `json:"raw_status,omitempty"`
	Polls       int    `json:"polls"`
}
