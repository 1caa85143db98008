// Package batch turns downloaded documents into batch request files and
// drives those files through a batch inference provider.
package batch

import (
	"fedcite/internal/citations"
	"fedcite/internal/models"
)

const (
	ChatCompletionsPath = "/v1/chat/completions"
	DefaultModel        = "gpt-4o"
	DefaultTemperature  = 0.5
	DefaultTokenBudget  = 2500
	DefaultMaxLines     = 25
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type RequestBody struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	N           int       `json:"n"`
	Temperature float64   `json:"temperature"`
}

// Request is one line of a batch request file.
type Request struct {
	CustomID string      `json:"custom_id"`
	Method   string      `json:"method"`
	URL      string      `json:"url"`
	Body     RequestBody `json:"body"`
}

type RequestParams struct {
	Model       string
	Temperature float64
	System      string
	Prompt      string
}

func DefaultRequestParams() RequestParams {
	return RequestParams{
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		System:      citations.SystemInstruction,
		Prompt:      citations.ExtractionPrompt,
	}
}

// NewRequest wraps a chunk as a chat completion request: system instruction,
// extraction prompt, then the chunk body.
func NewRequest(chunk models.PromptChunk, p RequestParams) Request {
	return Request{
		CustomID: chunk.CustomID(),
		Method:   "POST",
		URL:      ChatCompletionsPath,
		Body: RequestBody{
			Model: p.Model,
			Messages: []Message{
				{Role: "system", Content: p.System},
				{Role: "user", Content: p.Prompt},
				{Role: "user", Content: chunk.Body},
			},
			N:           1,
			Temperature: p.Temperature,
		},
	}
}
