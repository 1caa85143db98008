package reconcile

import "fmt"

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (u *Usage) Add(o Usage) {
	u.PromptTokens += o.PromptTokens
	u.CompletionTokens += o.CompletionTokens
	u.TotalTokens += o.TotalTokens
}

// Rates are prices in dollars per million tokens.
type Rates struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

var DefaultRates = Rates{InputPerMillion: 1.25, OutputPerMillion: 5.00}

type Cost struct {
	Input  float64
	Output float64
}

func (c Cost) Total() float64 { return c.Input + c.Output }

func (c Cost) String() string {
	return fmt.Sprintf("input $%.4f, output $%.4f, total $%.4f", c.Input, c.Output, c.Total())
}

func (u Usage) Cost(r Rates) Cost {
	return Cost{
		Input:  float64(u.PromptTokens) / 1e6 * r.InputPerMillion,
		Output: float64(u.CompletionTokens) / 1e6 * r.OutputPerMillion,
	}
}
