package provider

import (
	"github.com/pkoukk/tiktoken-go"
)

// fallbackEncoding is used when a model has no registered tokenizer
// (Ollama model tags, future OpenAI models).
const fallbackEncoding = "cl100k_base"

// EstimateTokens approximates how many tokens text occupies for the given
// model. When no tokenizer data is available at all it falls back to the
// rough four-bytes-per-token heuristic, so the estimate is always usable
// for budget checks even offline.
func EstimateTokens(model, text string) int {
	if text == "" {
		return 0
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil {
		return (len(text) + 3) / 4
	}
	return len(enc.Encode(text, nil, nil))
}
