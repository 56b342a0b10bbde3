package transcoder

import (
	"regexp"
	"strings"
)

// textPass is one substitution step. Passes run in slice order; the order is
// a correctness invariant, not a tuning knob.
type textPass struct {
	old string
	new string
}

// unescapePasses reduce a payload to its literal form. The amp pass must run
// last so already-escaped entities are not unescaped twice.
var unescapePasses = []textPass{
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&amp;", "&"},
}

// escapePasses re-escape the literal form. The amp pass must run first so the
// entities produced by the angle-bracket passes are left alone.
var escapePasses = []textPass{
	{"&", "&amp;"},
	{"<", "&lt;"},
	{">", "&gt;"},
}

// closingOrder lists tag names innermost-first. Missing closers are appended
// in this order so a truncated segment still nests correctly.
var closingOrder = []string{
	"Code",
	"Language",
	"Path",
	"StartLine",
	"EndLine",
	"QuotedCode",
	"GeneratedCode",
}

var (
	htmlCommentPattern = regexp.MustCompile(`<!--.*?-->`)
	codePayloadPattern = regexp.MustCompile(`(?s)<(Generated|Quoted)Code>\s*<Code>(.*)`)
	danglingTagPattern = regexp.MustCompile(`<[^>]*$`)
)

// sanitize normalizes escaping and repairs truncated tags in every tagged
// segment of a raw model message, then strips HTML comments.
func sanitize(message string) string {
	sanitized := ForEachSegment(message, func(segment string) (string, bool) {
		return normalizeSegment(segment), true
	})
	return htmlCommentPattern.ReplaceAllString(sanitized, "")
}

// normalizeSegment rewrites one code segment so that its payload is escaped
// exactly once and every opened tag is closed. Segments that do not look like
// a code chunk are returned unchanged.
//
// The code payload runs from the opening <Code> tag to the first </Code>, or
// to the end of the segment when the generator stopped before closing it.
// Substitution cannot express "ampersand not already part of an entity", so
// the payload is first fully unescaped and then re-escaped. Given
// `&amp;foo < &bar&lt;i32&gt;()` the unescape passes yield
// `&foo < &bar<i32>()` and the escape passes yield
// `&amp;foo &lt; &amp;bar&lt;i32&gt;()`, escaped exactly once regardless of
// how the input was escaped.
//
// Tag repair then deletes a trailing half-written tag (`<foo` or `</`) and
// appends the missing closing tags in closingOrder, which makes the segment
// parseable at any truncation point.
func normalizeSegment(segment string) string {
	if !strings.HasPrefix(strings.TrimSpace(segment), "<") {
		return segment
	}
	m := codePayloadPattern.FindStringSubmatchIndex(segment)
	if m == nil {
		return segment
	}
	payloadStart := m[4]

	var buf strings.Builder
	buf.WriteString(segment[:payloadStart])

	payload := segment[payloadStart:]
	codeLen := len(payload)
	if i := strings.Index(payload, "</Code>"); i >= 0 {
		codeLen = i
	}
	code, tail := payload[:codeLen], payload[codeLen:]
	for _, p := range unescapePasses {
		code = strings.ReplaceAll(code, p.old, p.new)
	}
	for _, p := range escapePasses {
		code = strings.ReplaceAll(code, p.old, p.new)
	}
	buf.WriteString(code)
	buf.WriteString(tail)

	repaired := danglingTagPattern.ReplaceAllString(buf.String(), "")
	for _, tag := range closingOrder {
		opening := "<" + tag + ">"
		closing := "</" + tag + ">"
		if strings.Contains(repaired, opening) && !strings.Contains(repaired, closing) {
			repaired += closing
		}
	}
	return repaired
}
