// Package tokenizer provides token counting for usage accounting. The
// engine defaults to a cheap character-length estimate; hosts that want
// exact numbers can plug in the tiktoken-backed counter.
package tokenizer

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Counter counts the tokens a piece of text will consume.
type Counter interface {
	Count(text string) int
}

// Estimate approximates tokens from character length, one token per four
// characters, rounded up. This matches the accounting the engine was
// designed around and needs no vocabulary files.
type Estimate struct{}

// Count implements Counter.
func (Estimate) Count(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}

// Tiktoken counts tokens with the real BPE vocabulary of a model.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken builds a counter for the given model name.
func NewTiktoken(model string) (*Tiktoken, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding for model %q: %w", model, err)
	}
	return &Tiktoken{enc: enc}, nil
}

// Count implements Counter.
func (t *Tiktoken) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}
