package transcoder

import (
	"errors"
	"strings"

	goorg "github.com/niklasfasching/go-org/org"
	"github.com/yuin/goldmark/ast"
)

// TextFormat enumerates article display targets.
type TextFormat string

const (
	FormatMarkdown TextFormat = "markdown"
	FormatOrg      TextFormat = "org"
)

// ErrUnsupportedFormat signals an unknown display format.
var ErrUnsupportedFormat = errors.New("unsupported article format")

// RenderArticle renders a decoded article for display in the given format.
// Markdown output appends the conclusion after a rule; Org output maps
// headings and fenced blocks onto their Org forms and is normalized through
// a go-org parse/write round-trip.
func RenderArticle(a Article, format TextFormat) (string, error) {
	switch format {
	case FormatMarkdown:
		if a.Conclusion != nil {
			return a.Body + "\n\n---\n\n" + *a.Conclusion, nil
		}
		return a.Body, nil
	case FormatOrg:
		return renderOrgArticle(a), nil
	default:
		return "", ErrUnsupportedFormat
	}
}

func renderOrgArticle(a Article) string {
	root, src := parseArticle(a.Body)
	var blocks []string
	for child := root.FirstChild(); child != nil; child = child.NextSibling() {
		switch node := child.(type) {
		case *ast.Heading:
			blocks = append(blocks, strings.Repeat("*", node.Level)+" "+blockText(node, src))
		case *ast.FencedCodeBlock:
			info := ""
			if node.Info != nil {
				info = string(node.Info.Segment.Value(src))
			}
			blocks = append(blocks, orgSrcBlock(info, rawLines(node, src)))
		case *ast.Blockquote:
			blocks = append(blocks, "#+BEGIN_QUOTE\n"+renderChildren(node, src)+"\n#+END_QUOTE")
		default:
			if s := renderBlock(child, src); s != "" {
				blocks = append(blocks, s)
			}
		}
	}
	if a.Conclusion != nil {
		blocks = append(blocks, "* Conclusion\n\n"+*a.Conclusion)
	}
	out := strings.Join(blocks, "\n\n")

	doc := goorg.New().Parse(strings.NewReader(out), "")
	normalized, err := doc.Write(goorg.NewOrgWriter())
	if err != nil {
		return out
	}
	return strings.TrimSpace(normalized)
}

// orgSrcBlock maps a fenced block onto an Org source block, pulling the
// language out of a chunk info string when one is present.
func orgSrcBlock(info, code string) string {
	lang := info
	if attrs := parseFenceAttrs(info); attrs["type"] != "" {
		lang = attrs["lang"]
	}
	if i := strings.IndexAny(lang, " \t"); i >= 0 {
		lang = lang[:i]
	}
	header := "#+BEGIN_SRC"
	if lang != "" {
		header += " " + lang
	}
	return header + "\n" + code + "#+END_SRC"
}
