// Package transcoder converts between the two textual forms of an
// LLM-generated technical answer: the streaming pseudo-XML dialect the model
// writes, where code excerpts appear in QuotedCode/GeneratedCode tags, and a
// Markdown article where those excerpts are annotated fenced code blocks.
//
// The model emits tokens incrementally, so the input may be truncated or
// malformed at any point. Decoding is therefore best-effort and never fails:
// escaping is normalized, half-written tags are repaired, and anything that
// still cannot be mapped passes through verbatim.
package transcoder

import (
	"fmt"

	"github.com/yuin/goldmark/ast"
)

// Article is a decoded answer: a Markdown body plus an optional conclusion
// carried out-of-band via the summary footnote. Conclusion is nil when the
// generator supplied none.
type Article struct {
	Body       string
	Conclusion *string
}

// ErrorType classifies transcoding failures.
type ErrorType string

const (
	// ErrSegmentParse marks a tagged segment that cannot be mapped onto a
	// code chunk even after repair. It is always recovered internally; the
	// segment is passed through verbatim.
	ErrSegmentParse ErrorType = "segment_parse_error"
	// ErrModelLookup marks an unknown tokenizer model id, the only failure
	// EncodeSummarized surfaces.
	ErrModelLookup ErrorType = "model_lookup_error"
)

// TranscodeError wraps transcoding failures with context and type.
type TranscodeError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *TranscodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TranscodeError) Unwrap() error { return e.Err }

func segmentParseError(msg string, err error) error {
	return &TranscodeError{Type: ErrSegmentParse, Message: msg, Err: err}
}

// Decode converts a raw model message into a displayable article. Tagged code
// segments become annotated fenced blocks, and the summary footnote, when
// present, is split out as the conclusion.
func Decode(message string) Article {
	markdown := ForEachSegment(sanitize(message), func(segment string) (string, bool) {
		chunk, err := ParseCodeChunk(segment)
		if err != nil {
			return "", false
		}
		return chunk.Markdown(), true
	})

	root, src := parseWithSentinel(markdown)
	if conclusion, ok := extractConclusion(root, src); ok {
		return Article{Body: renderTree(root, src), Conclusion: &conclusion}
	}
	return Article{Body: renderTree(root, src)}
}

// Encode converts the article back to the model's tagged working format.
// Fenced blocks whose info string carries chunk metadata are rebuilt as
// tagged XML; all other blocks pass through. A conclusion, when present, is
// appended as the summary footnote definition.
func (a Article) Encode() string {
	root, src := parseArticle(a.Body)
	var next ast.Node
	for child := root.FirstChild(); child != nil; child = next {
		next = child.NextSibling()
		fence, ok := child.(*ast.FencedCodeBlock)
		if !ok {
			continue
		}
		info := ""
		if fence.Info != nil {
			info = string(fence.Info.Segment.Value(src))
		}
		tagged, ok := xmlFromFence(info, rawLines(fence, src))
		if !ok {
			continue
		}
		root.ReplaceChild(root, child, &xmlBlock{literal: tagged})
	}
	body := renderTree(root, src)

	if a.Conclusion != nil {
		return body + "\n\n[^" + summaryLabel + "]: " + *a.Conclusion
	}
	return body
}

// EncodeSummarized produces a compact transcript of the encoded article: code
// payloads are redacted and the result is truncated to a fixed token budget
// for the given tokenizer model. It fails only when the model id is unknown.
func (a Article) EncodeSummarized(model string) (string, error) {
	transcript := ForEachSegment(a.Encode(), func(segment string) (string, bool) {
		chunk, err := ParseCodeChunk(normalizeSegment(segment))
		if err != nil {
			return "", false
		}
		return chunk.RedactedXML(), true
	})

	codec, err := lookupCodec(model)
	if err != nil {
		return "", &TranscodeError{
			Type:    ErrModelLookup,
			Message: fmt.Sprintf("unknown tokenizer model %q", model),
			Err:     err,
		}
	}
	return limitTokens(transcript, codec, summaryTokenBudget), nil
}
