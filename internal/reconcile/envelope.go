package reconcile

import (
	"encoding/json"
	"fmt"
)

// Envelope is one line of a batch output file.
type Envelope struct {
	ID       string         `json:"id"`
	CustomID string         `json:"custom_id"`
	Response *responseBlock `json:"response"`
	Error    *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type responseBlock struct {
	StatusCode int `json:"status_code"`
	Body       struct {
		Choices []struct {
			Message *struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage Usage `json:"usage"`
	} `json:"body"`
}

// Content returns the first choice's completion text and whether a message
// was present at all.
func (e Envelope) Content() (string, bool) {
	if e.Response == nil || len(e.Response.Body.Choices) == 0 {
		return "", false
	}
	msg := e.Response.Body.Choices[0].Message
	if msg == nil {
		return "", false
	}
	return msg.Content, true
}

func (e Envelope) Usage() Usage {
	if e.Response == nil {
		return Usage{}
	}
	return e.Response.Body.Usage
}

func ParseEnvelope(line string) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(line), &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.CustomID == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing custom_id")
	}
	if env.Error != nil && env.Error.Message != "" {
		return env, fmt.Errorf("request %s failed: %s %s", env.CustomID, env.Error.Code, env.Error.Message)
	}
	return env, nil
}
