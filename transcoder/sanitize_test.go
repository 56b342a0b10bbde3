package transcoder

import (
	"strings"
	"testing"
)

func TestNormalizeQuotedSegment(t *testing.T) {
	input := `<QuotedCode>
<Code>
fn foo<T>(t: T) -> bool {
    &amp;foo < &bar&lt;i32&gt;(t)
}
</Code>
<Language>Rust</Language>
<Path>src/main.rs</Path>
<StartLine>10</StartLine>
<EndLine>12</EndLine>
</QuotedCode>`

	expected := `<QuotedCode>
<Code>
fn foo&lt;T&gt;(t: T) -&gt; bool {
    &amp;foo &lt; &amp;bar&lt;i32&gt;(t)
}
</Code>
<Language>Rust</Language>
<Path>src/main.rs</Path>
<StartLine>10</StartLine>
<EndLine>12</EndLine>
</QuotedCode>`

	if got := normalizeSegment(input); got != expected {
		t.Fatalf("normalize mismatch:\n%s", got)
	}
}

func TestNormalizeGeneratedSegment(t *testing.T) {
	input := `<GeneratedCode>
<Code>
fn foo<T>(t: T) -> bool {
    &amp;foo < &bar&lt;i32&gt;(t)
}
</Code>
<Language>Rust</Language>
</GeneratedCode>`

	expected := `<GeneratedCode>
<Code>
fn foo&lt;T&gt;(t: T) -&gt; bool {
    &amp;foo &lt; &amp;bar&lt;i32&gt;(t)
}
</Code>
<Language>Rust</Language>
</GeneratedCode>`

	if got := normalizeSegment(input); got != expected {
		t.Fatalf("normalize mismatch:\n%s", got)
	}
}

// Escaping must be exactly-once no matter how the input was escaped, so a
// second pass over already-normalized text may not change anything.
func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"<GeneratedCode>\n<Code>\na < b && c > d\n</Code>\n</GeneratedCode>",
		"<GeneratedCode>\n<Code>\na &lt; b &amp;&amp; c &gt; d\n</Code>\n</GeneratedCode>",
		"<GeneratedCode>\n<Code>\n&amp;foo < &bar&lt;i32&gt;()\n</Code>\n</GeneratedCode>",
		"<QuotedCode>\n<Code>\n&amp;amp;doubly &amp;lt;escaped&amp;gt;\n</Code>\n</QuotedCode>",
	}
	for _, input := range inputs {
		once := normalizeSegment(input)
		twice := normalizeSegment(once)
		if once != twice {
			t.Fatalf("normalize not idempotent for %q:\nonce:  %q\ntwice: %q", input, once, twice)
		}
	}
}

func TestNormalizeLeavesNonChunkSegments(t *testing.T) {
	inputs := []string{
		"plain text, no tags at all",
		"<Widget>\n<Code>x < y</Code>\n</Widget>",
		"<QuotedCode>\n<Co",
	}
	for _, input := range inputs {
		if got := normalizeSegment(input); got != input {
			t.Fatalf("expected %q unchanged, got %q", input, got)
		}
	}
}

func TestSanitizeArticle(t *testing.T) {
	input := `First, we test some *generated code* below:

<GeneratedCode>
<Code>
fn foo<T>(t: T) -> bool {
    &amp;foo < &bar&lt;i32&gt;(t)
}
</Code>
<Language>Rust</Language>
</GeneratedCode>

Then, we test some quoted code:

<QuotedCode>
<Code>
fn foo<T>(t: T) -> bool {
    &amp;foo < &bar&lt;i32&gt;(t)
}
</Code>
<Language>Rust</Language>
<Path>src/main.rs</Path>
<StartLine>10</StartLine>
<EndLine>12</EndLine>
</QuotedCode>

# Foo

These should result in sanitized XML output, while maintaining the rest of the markdown article.
`

	expected := `First, we test some *generated code* below:

<GeneratedCode>
<Code>
fn foo&lt;T&gt;(t: T) -&gt; bool {
    &amp;foo &lt; &amp;bar&lt;i32&gt;(t)
}
</Code>
<Language>Rust</Language>
</GeneratedCode>

Then, we test some quoted code:

<QuotedCode>
<Code>
fn foo&lt;T&gt;(t: T) -&gt; bool {
    &amp;foo &lt; &amp;bar&lt;i32&gt;(t)
}
</Code>
<Language>Rust</Language>
<Path>src/main.rs</Path>
<StartLine>10</StartLine>
<EndLine>12</EndLine>
</QuotedCode>

# Foo

These should result in sanitized XML output, while maintaining the rest of the markdown article.
`

	if got := sanitize(input); got != expected {
		t.Fatalf("sanitize mismatch:\n%s", got)
	}
}

func TestSanitizePartialGeneration(t *testing.T) {
	input := `First, we test some **partially** *generated code* below:

<GeneratedCode>
<Code>
fn foo<T>(t: T) -> bool {
    &amp;foo <
`

	expected := `First, we test some **partially** *generated code* below:

<GeneratedCode>
<Code>
fn foo&lt;T&gt;(t: T) -&gt; bool {
    &amp;foo &lt;
</Code></GeneratedCode>`

	if got := sanitize(input); got != expected {
		t.Fatalf("sanitize mismatch:\n%s", got)
	}
}

func TestSanitizeStripsHTMLComments(t *testing.T) {
	input := "Before <!-- hidden note --> after\n"
	expected := "Before  after\n"
	if got := sanitize(input); got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

// Cutting a well-formed chunk anywhere at or past the opening <Code> tag must
// still yield a deserializable segment after repair.
func TestRepairTruncatedQuotedChunk(t *testing.T) {
	base := "<QuotedCode>\n<Code>\nfn foo() -> i32 {\n    &amp;x < 42\n}\n</Code>\n<Language>Rust</Language>\n<Path>src/main.rs</Path>\n<StartLine>10</StartLine>\n<EndLine>12</EndLine>\n</QuotedCode>"

	min := strings.Index(base, "<Code>") + len("<Code>")
	for cut := min; cut <= len(base); cut++ {
		repaired := normalizeSegment(base[:cut])
		if _, err := ParseCodeChunk(repaired); err != nil {
			t.Fatalf("offset %d: parse failed: %v\nrepaired: %q", cut, err, repaired)
		}
	}
}

func TestRepairTruncatedGeneratedChunk(t *testing.T) {
	base := "<GeneratedCode>\n<Code>\nlet total = a + b;\n</Code>\n<Language>Rust</Language>\n</GeneratedCode>"

	min := strings.Index(base, "<Code>") + len("<Code>")
	for cut := min; cut <= len(base); cut++ {
		repaired := normalizeSegment(base[:cut])
		if _, err := ParseCodeChunk(repaired); err != nil {
			t.Fatalf("offset %d: parse failed: %v\nrepaired: %q", cut, err, repaired)
		}
	}
}

// The escape pass order is a correctness invariant: amp is unescaped last and
// re-escaped first.
func TestEscapePassOrder(t *testing.T) {
	unescapeWant := []textPass{{"&lt;", "<"}, {"&gt;", ">"}, {"&amp;", "&"}}
	escapeWant := []textPass{{"&", "&amp;"}, {"<", "&lt;"}, {">", "&gt;"}}
	for i, p := range unescapeWant {
		if unescapePasses[i] != p {
			t.Fatalf("unescape pass %d changed: %+v", i, unescapePasses[i])
		}
	}
	for i, p := range escapeWant {
		if escapePasses[i] != p {
			t.Fatalf("escape pass %d changed: %+v", i, escapePasses[i])
		}
	}
}

// Appended closers must appear innermost-first.
func TestClosingOrder(t *testing.T) {
	want := []string{"Code", "Language", "Path", "StartLine", "EndLine", "QuotedCode", "GeneratedCode"}
	if len(closingOrder) != len(want) {
		t.Fatalf("closing order length changed: %v", closingOrder)
	}
	for i, tag := range want {
		if closingOrder[i] != tag {
			t.Fatalf("closing order position %d changed: %v", i, closingOrder)
		}
	}
}
