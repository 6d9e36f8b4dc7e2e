package provider

import (
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens("gpt-4o-mini", ""); got != 0 {
		t.Fatalf("empty text: got %d, want 0", got)
	}

	short := EstimateTokens("gpt-4o-mini", "hello world")
	if short <= 0 {
		t.Fatalf("short text: got %d, want > 0", short)
	}

	long := EstimateTokens("gpt-4o-mini", strings.Repeat("hello world ", 200))
	if long <= short {
		t.Fatalf("longer text must cost more tokens: short=%d long=%d", short, long)
	}
}

func TestEstimateTokens_UnknownModel(t *testing.T) {
	// Ollama tags have no tokenizer mapping; the estimate must still work.
	if got := EstimateTokens("llama3.2:3b-instruct", "a short prompt about lighthouses"); got <= 0 {
		t.Fatalf("got %d, want > 0", got)
	}
}
