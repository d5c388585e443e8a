package tokenizer

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const (
	defaultEncoding = "cl100k_base"
	// charsPerToken approximates English BPE density.
	charsPerToken = 4
)

// encoder is the subset of *tiktoken.Tiktoken used for counting.
type encoder interface {
	Encode(text string, allowedSpecial []string, disallowedSpecial []string) []int
}

// Counter counts prompt tokens with a BPE encoding, or estimates them when no
// encoding could be loaded.
type Counter struct {
	enc encoder
}

// NewCounter loads the encoding for model. Loading may need to fetch the BPE
// ranks; on failure the counter falls back to a length heuristic.
func NewCounter(model string, logger *slog.Logger) *Counter {
	logger = logger.With("component", "tokenizer")
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(defaultEncoding)
	}
	if err != nil {
		logger.Warn("tiktoken encoding unavailable, estimating tokens", "model", model, "error", err)
		return &Counter{}
	}
	return &Counter{enc: enc}
}

// NewHeuristicCounter returns a counter that never loads an encoding.
func NewHeuristicCounter() *Counter {
	return &Counter{}
}

// Count returns the token count of text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	if c.enc != nil {
		return len(c.enc.Encode(text, nil, nil))
	}
	return estimate(text)
}

func estimate(text string) int {
	runes := utf8.RuneCountInString(text)
	byChars := (runes + charsPerToken - 1) / charsPerToken
	if words := len(strings.Fields(text)); words > byChars {
		return words
	}
	return byChars
}
