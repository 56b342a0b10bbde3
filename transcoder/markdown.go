package transcoder

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// articleEngine parses article markdown. The footnote extension must be
// enabled so the conclusion footnote reaches the tree at all.
var articleEngine = goldmark.New(
	goldmark.WithExtensions(extension.Footnote),
)

// parseArticle parses markdown into a mutable tree together with the source
// buffer its segments reference.
func parseArticle(markdown string) (ast.Node, []byte) {
	src := []byte(markdown)
	root := articleEngine.Parser().Parse(text.NewReader(src))
	return root, src
}

// xmlBlock is a synthetic top-level block holding reconstructed tag text that
// must pass through rendering as an opaque literal. ast.HTMLBlock cannot
// serve here: its lines must reference the source buffer, while this literal
// is produced after parsing.
type xmlBlock struct {
	ast.BaseBlock
	literal string
}

var kindXMLBlock = ast.NewNodeKind("XMLBlock")

func (b *xmlBlock) Kind() ast.NodeKind { return kindXMLBlock }

func (b *xmlBlock) Dump(source []byte, level int) {
	ast.DumpHelper(b, source, level, map[string]string{"Literal": b.literal}, nil)
}

// renderTree serializes a (possibly mutated) tree back to CommonMark. Leaf
// blocks are emitted from their source segments so inline formatting
// round-trips byte for byte; synthesized nodes carry their own literals.
func renderTree(root ast.Node, src []byte) string {
	return strings.TrimSpace(renderChildren(root, src))
}

func renderChildren(n ast.Node, src []byte) string {
	var blocks []string
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if s := renderBlock(child, src); s != "" {
			blocks = append(blocks, s)
		}
	}
	return strings.Join(blocks, "\n\n")
}

func renderBlock(n ast.Node, src []byte) string {
	switch node := n.(type) {
	case *ast.Heading:
		return strings.Repeat("#", node.Level) + " " + blockText(node, src)
	case *ast.Paragraph, *ast.TextBlock:
		return blockText(n, src)
	case *ast.FencedCodeBlock:
		info := ""
		if node.Info != nil {
			info = string(node.Info.Segment.Value(src))
		}
		return "```" + info + "\n" + rawLines(node, src) + "```"
	case *ast.CodeBlock:
		return indentLines(rawLines(node, src), "    ")
	case *ast.Blockquote:
		return prefixLines(renderChildren(node, src), "> ")
	case *ast.List:
		return renderList(node, src)
	case *ast.ThematicBreak:
		return "---"
	case *ast.HTMLBlock:
		return htmlBlockText(node, src)
	case *xmlBlock:
		return node.literal
	case *extast.FootnoteList:
		return renderChildren(node, src)
	case *extast.Footnote:
		return renderFootnote(node, src)
	default:
		if s := blockText(n, src); s != "" {
			return s
		}
		return renderChildren(n, src)
	}
}

// blockText joins a block's source lines with the trailing newline removed.
func blockText(n ast.Node, src []byte) string {
	lines := n.Lines()
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return strings.TrimRight(b.String(), "\n")
}

// rawLines joins a block's source lines verbatim, guaranteeing a trailing
// newline so fence closers land on their own line.
func rawLines(n ast.Node, src []byte) string {
	lines := n.Lines()
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	out := b.String()
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}

func htmlBlockText(n *ast.HTMLBlock, src []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	if n.HasClosure() {
		b.Write(n.ClosureLine.Value(src))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderList(list *ast.List, src []byte) string {
	var items []string
	number := list.Start
	if number == 0 {
		number = 1
	}
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		marker := string(list.Marker) + " "
		if list.IsOrdered() {
			marker = fmt.Sprintf("%d%c ", number, list.Marker)
			number++
		}
		body := indentContinuation(renderChildren(item, src), len(marker))
		items = append(items, marker+body)
	}
	sep := "\n"
	if !list.IsTight {
		sep = "\n\n"
	}
	return strings.Join(items, sep)
}

func renderFootnote(f *extast.Footnote, src []byte) string {
	marker := "[^" + string(f.Ref) + "]: "
	return marker + indentContinuation(renderChildren(f, src), 4)
}

func prefixLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(prefix+line, " ")
	}
	return strings.Join(lines, "\n")
}

func indentLines(s, indent string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}

// indentContinuation indents every line after the first so multi-line list
// items and footnote bodies stay attached to their markers.
func indentContinuation(s string, width int) string {
	lines := strings.Split(s, "\n")
	pad := strings.Repeat(" ", width)
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = pad + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
