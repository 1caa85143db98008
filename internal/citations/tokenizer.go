package citations

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer is the subset of a BPE encoding the chunker needs.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

type TiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

func NewTiktokenTokenizer(model string) (*TiktokenTokenizer, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("tiktoken encoding for %s: %w", model, err)
	}
	return &TiktokenTokenizer{enc: enc}, nil
}

func (t *TiktokenTokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *TiktokenTokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}
