package transcoder

import (
	"regexp"
	"strings"
)

// openTagPattern anchors a segment at a line that begins, after optional
// whitespace, with an opening tag.
var openTagPattern = regexp.MustCompile(`\n\s*(<(\w+)>)`)

// ForEachSegment rewrites every tagged segment of a document and passes the
// surrounding text through verbatim.
//
// A segment starts at a "newline, optional whitespace, <Identifier>" match
// and runs through the first matching closing tag, or to the end of the
// document when the closing tag is missing (the generator may stop
// mid-stream). The transform receives the raw segment text and reports a
// replacement; when the second result is false the segment is kept
// unchanged. Replacements are spliced in as-is and never re-scanned.
//
// The scan is heuristic on purpose: it must accept invalid XML, so it looks
// for the closing tag by name with no nesting awareness. When a code payload
// contains a literal closing-tag substring, for example
//
//	<Code>
//	    println!("code ends with </Code>");
//	</Code>
//
// the segment terminates at the first occurrence, halfway through the string
// literal. That ambiguity is inherent to accepting unescaped input and is
// kept rather than resolved by a conforming parser.
func ForEachSegment(doc string, transform func(segment string) (string, bool)) string {
	var out strings.Builder
	rest := doc
	for {
		m := openTagPattern.FindStringSubmatchIndex(rest)
		if m == nil {
			break
		}
		tagStart := m[2]
		name := rest[m[4]:m[5]]
		out.WriteString(rest[:tagStart])

		var segment string
		if i := strings.Index(rest[tagStart:], "</"+name+">"); i >= 0 {
			end := tagStart + i + len(name) + len("</>")
			segment = rest[tagStart:end]
			rest = rest[end:]
		} else {
			segment = rest[tagStart:]
			rest = ""
		}

		if replacement, ok := transform(segment); ok {
			out.WriteString(replacement)
		} else {
			out.WriteString(segment)
		}
	}
	out.WriteString(rest)
	return out.String()
}
