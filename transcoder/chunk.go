package transcoder

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ChunkKind discriminates the two code-chunk variants the generator emits.
type ChunkKind string

const (
	KindQuoted    ChunkKind = "Quoted"
	KindGenerated ChunkKind = "Generated"
)

// CodeChunk is a code excerpt lifted out of a tagged segment. Quoted chunks
// carry a source attribution (path plus an optional line span); generated
// chunks carry only a language. StartLine and EndLine are nil when the
// corresponding tag was absent from the input.
type CodeChunk struct {
	Kind      ChunkKind
	Code      string
	Language  string
	Path      string
	StartLine *int
	EndLine   *int
}

const redactionMarker = "[REDACTED]"

type quotedCodeXML struct {
	Code      string  `xml:"Code"`
	Language  string  `xml:"Language"`
	Path      string  `xml:"Path"`
	StartLine *string `xml:"StartLine"`
	EndLine   *string `xml:"EndLine"`
}

type generatedCodeXML struct {
	Code     string `xml:"Code"`
	Language string `xml:"Language"`
}

// ParseCodeChunk maps a repaired, escaped segment onto a CodeChunk. Unknown
// inner tags are ignored and missing fields keep their defaults. The returned
// error is a *TranscodeError of type ErrSegmentParse when the outer tag
// matches neither variant or the fragment cannot be decoded; callers recover
// by leaving the segment unchanged.
func ParseCodeChunk(segment string) (CodeChunk, error) {
	dec := xml.NewDecoder(strings.NewReader(segment))
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return CodeChunk{}, segmentParseError("no code chunk element found", nil)
			}
			return CodeChunk{}, segmentParseError("malformed segment", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "QuotedCode":
			var q quotedCodeXML
			if err := dec.DecodeElement(&q, &start); err != nil {
				return CodeChunk{}, segmentParseError("decode <QuotedCode>", err)
			}
			return CodeChunk{
				Kind:      KindQuoted,
				Code:      strings.TrimSpace(q.Code),
				Language:  strings.TrimSpace(q.Language),
				Path:      strings.TrimSpace(q.Path),
				StartLine: parseLineNumber(q.StartLine),
				EndLine:   parseLineNumber(q.EndLine),
			}, nil
		case "GeneratedCode":
			var g generatedCodeXML
			if err := dec.DecodeElement(&g, &start); err != nil {
				return CodeChunk{}, segmentParseError("decode <GeneratedCode>", err)
			}
			return CodeChunk{
				Kind:     KindGenerated,
				Code:     strings.TrimSpace(g.Code),
				Language: strings.TrimSpace(g.Language),
			}, nil
		default:
			return CodeChunk{}, segmentParseError(fmt.Sprintf("unknown chunk element <%s>", start.Name.Local), nil)
		}
	}
}

// parseLineNumber mirrors the generator's loose numeric fields: a tag that is
// present but empty means line zero, and an unparseable or negative value
// counts as absent.
func parseLineNumber(raw *string) *int {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		zero := 0
		return &zero
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// Markdown renders the chunk as a fenced code block whose info string carries
// the chunk metadata as comma-separated key:value pairs. Absent line numbers
// default to zero and absent path to the empty string.
func (c CodeChunk) Markdown() string {
	start, end := 0, 0
	if c.StartLine != nil {
		start = *c.StartLine
	}
	if c.EndLine != nil {
		end = *c.EndLine
	}
	return fmt.Sprintf("```type:%s,lang:%s,path:%s,lines:%d-%d\n%s\n```",
		c.Kind, c.Language, c.Path, start, end, c.Code)
}

// RedactedXML renders the chunk's tagged form with the code payload replaced
// by the redaction marker. All other fields survive; line tags are emitted
// only when the source segment carried them.
func (c CodeChunk) RedactedXML() string {
	var b strings.Builder
	switch c.Kind {
	case KindQuoted:
		b.WriteString("<QuotedCode>\n<Code>" + redactionMarker + "</Code>\n")
		b.WriteString("<Language>" + c.Language + "</Language>\n")
		b.WriteString("<Path>" + c.Path + "</Path>\n")
		if c.StartLine != nil {
			fmt.Fprintf(&b, "<StartLine>%d</StartLine>\n", *c.StartLine)
		}
		if c.EndLine != nil {
			fmt.Fprintf(&b, "<EndLine>%d</EndLine>\n", *c.EndLine)
		}
		b.WriteString("</QuotedCode>")
	case KindGenerated:
		b.WriteString("<GeneratedCode>\n<Code>" + redactionMarker + "</Code>\n")
		b.WriteString("<Language>" + c.Language + "</Language>\n")
		b.WriteString("</GeneratedCode>")
	}
	return b.String()
}

// xmlFromFence rebuilds the tagged form of a fenced code block from its info
// string. The bool result is false when the info string does not describe a
// Quoted or Generated chunk with the attributes that kind requires; such
// blocks stay ordinary Markdown code blocks.
func xmlFromFence(info, literal string) (string, bool) {
	attrs := parseFenceAttrs(info)
	switch attrs["type"] {
	case string(KindQuoted):
		path, okPath := attrs["path"]
		lang, okLang := attrs["lang"]
		lines, okLines := attrs["lines"]
		if !okPath || !okLang || !okLines {
			return "", false
		}
		span := strings.Split(lines, "-")
		if len(span) < 2 {
			return "", false
		}
		return fmt.Sprintf("<QuotedCode>\n<Code>\n%s</Code>\n<Language>%s</Language>\n<Path>%s</Path>\n<StartLine>%s</StartLine>\n<EndLine>%s</EndLine>\n</QuotedCode>",
			literal, lang, path, span[0], span[1]), true
	case string(KindGenerated):
		lang, ok := attrs["lang"]
		if !ok {
			return "", false
		}
		return fmt.Sprintf("<GeneratedCode>\n<Code>\n%s</Code>\n<Language>%s</Language>\n</GeneratedCode>", literal, lang), true
	}
	return "", false
}

// parseFenceAttrs splits "type:Quoted,lang:Rust,..." into a key/value map.
// Malformed entries are skipped and anything past a second colon is dropped.
func parseFenceAttrs(info string) map[string]string {
	attrs := make(map[string]string)
	for _, param := range strings.Split(info, ",") {
		parts := strings.Split(strings.TrimSpace(param), ":")
		if len(parts) < 2 {
			continue
		}
		attrs[parts[0]] = parts[1]
	}
	return attrs
}
