package transcoder

import (
	"strings"
	"testing"
)

func TestLimitTokensShortTextUnchanged(t *testing.T) {
	codec, err := lookupCodec("gpt-4")
	if err != nil {
		t.Fatalf("codec lookup failed: %v", err)
	}
	text := "A short transcript."
	if got := limitTokens(text, codec, summaryTokenBudget); got != text {
		t.Fatalf("short text must pass through, got %q", got)
	}
}

func TestLimitTokensTruncatesLongText(t *testing.T) {
	codec, err := lookupCodec("gpt-4")
	if err != nil {
		t.Fatalf("codec lookup failed: %v", err)
	}
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 200)

	got := limitTokens(text, codec, summaryTokenBudget)
	if got == text {
		t.Fatal("expected truncation")
	}
	if !strings.HasPrefix(text, got) {
		t.Fatalf("truncated text is not a prefix of the input: %q", got)
	}
	n, err := codec.Count(got)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n > summaryTokenBudget {
		t.Fatalf("truncated text still counts %d tokens", n)
	}
}
