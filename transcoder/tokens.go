package transcoder

import (
	"github.com/tiktoken-go/tokenizer"
)

// summaryTokenBudget caps EncodeSummarized output.
const summaryTokenBudget = 500

// lookupCodec resolves a tokenizer for the given model id.
func lookupCodec(model string) (tokenizer.Codec, error) {
	return tokenizer.ForModel(tokenizer.Model(model))
}

// limitTokens returns the longest prefix of text that stays within maxTokens
// under the given codec. Codec failures fall back to the untruncated text.
func limitTokens(text string, codec tokenizer.Codec, maxTokens int) string {
	ids, _, err := codec.Encode(text)
	if err != nil || len(ids) <= maxTokens {
		return text
	}
	truncated, err := codec.Decode(ids[:maxTokens])
	if err != nil {
		return text
	}
	return truncated
}
