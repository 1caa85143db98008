package providers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Responder produces the completion text for one request line.
type Responder func(customID string, userTurns []string) string

// MockBatchProvider completes every job locally. By default each request
// gets an empty completion; a Responder can script model output.
type MockBatchProvider struct {
	mu sync.Mutex
	// PendingPolls is how many Retrieve calls report pending before completion.
	PendingPolls int
	Respond      Responder
	// Fail marks jobs, by description, that finish as failed.
	Fail func(description string) bool

	jobs map[string]*mockJob
	seq  int
}

type mockJob struct {
	job    BatchJob
	polls  int
	output []byte
}

func NewMockBatchProvider() *MockBatchProvider {
	return &MockBatchProvider{jobs: map[string]*mockJob{}}
}

func (m *MockBatchProvider) Name() string { return "mock" }

type requestLine struct {
	CustomID string `json:"custom_id"`
	Body     struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	} `json:"body"`
}

func (m *MockBatchProvider) Submit(ctx context.Context, path, description string) (BatchJob, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return BatchJob{}, fmt.Errorf("open batch file: %w", err)
	}
	var out bytes.Buffer
	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 0, 1<<20), 64<<20)
	n := 0
	for sc.Scan() {
		if len(bytes.TrimSpace(sc.Bytes())) == 0 {
			continue
		}
		var req requestLine
		if err := json.Unmarshal(sc.Bytes(), &req); err != nil {
			return BatchJob{}, fmt.Errorf("mock batch %s line %d: %w", path, n+1, err)
		}
		n++
		var turns []string
		for _, msg := range req.Body.Messages {
			if msg.Role == "user" {
				turns = append(turns, msg.Content)
			}
		}
		content := ""
		if m.Respond != nil {
			content = m.Respond(req.CustomID, turns)
		}
		line, err := json.Marshal(mockEnvelope(n, req.CustomID, content))
		if err != nil {
			return BatchJob{}, err
		}
		out.Write(line)
		out.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return BatchJob{}, fmt.Errorf("read batch file: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	job := BatchJob{
		ID:          fmt.Sprintf("batch_mock_%d", m.seq),
		Status:      StatusPending,
		RawStatus:   "validating",
		InputFileID: fmt.Sprintf("file_mock_in_%d", m.seq),
		Description: description,
		Provider:    m.Name(),
	}
	m.jobs[job.ID] = &mockJob{job: job, output: out.Bytes()}
	return job, nil
}

func (m *MockBatchProvider) Retrieve(ctx context.Context, id string) (BatchJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return BatchJob{}, fmt.Errorf("mock batch %s not found", id)
	}
	j.polls++
	if j.polls <= m.PendingPolls {
		j.job.RawStatus = "in_progress"
		return j.job, nil
	}
	if m.Fail != nil && m.Fail(j.job.Description) {
		j.job.Status, j.job.RawStatus = StatusFailed, "failed"
		return j.job, nil
	}
	j.job.Status, j.job.RawStatus = StatusCompleted, "completed"
	j.job.OutputFileID = "file_mock_out_" + id
	return j.job, nil
}

func (m *MockBatchProvider) Output(ctx context.Context, job BatchJob) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[job.ID]
	if !ok || j.job.Status != StatusCompleted {
		return nil, fmt.Errorf("mock batch %s has no output", job.ID)
	}
	return j.output, nil
}

// Jobs returns a snapshot of every submitted job.
func (m *MockBatchProvider) Jobs() []BatchJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]BatchJob, 0, len(m.jobs))
	for i := 1; i <= m.seq; i++ {
		if j, ok := m.jobs[fmt.Sprintf("batch_mock_%d", i)]; ok {
			out = append(out, j.job)
		}
	}
	return out
}

func mockEnvelope(n int, customID, content string) map[string]any {
	return map[string]any{
		"id":        fmt.Sprintf("batch_req_mock_%d", n),
		"custom_id": customID,
		"response": map[string]any{
			"status_code": 200,
			"request_id":  fmt.Sprintf("req_mock_%d", n),
			"body": map[string]any{
				"object": "chat.completion",
				"model":  "mock",
				"choices": []any{map[string]any{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": content},
					"finish_reason": "stop",
				}},
				"usage": map[string]any{
					"prompt_tokens":     0,
					"completion_tokens": 0,
					"total_tokens":      0,
				},
			},
		},
		"error": nil,
	}
}
