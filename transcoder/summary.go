package transcoder

import (
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

// summaryLabel is the reserved footnote label carrying the conclusion.
const summaryLabel = "summary"

// parseWithSentinel parses article markdown with a synthetic reference to the
// summary footnote prepended. The engine drops footnote definitions that are
// never referenced, so without the sentinel a trailing summary definition
// would not survive into the tree. The sentinel paragraph is detached right
// after parsing so it never appears in output.
func parseWithSentinel(markdown string) (ast.Node, []byte) {
	root, src := parseArticle("[^" + summaryLabel + "]\n\n" + markdown)
	if first := root.FirstChild(); first != nil {
		root.RemoveChild(root, first)
	}
	return root, src
}

// extractConclusion looks for the summary footnote definition among the
// tree's top-level children, detaches it so it is excluded from the rendered
// body, and returns its first paragraph's text. The bool result is false when
// no such definition exists.
func extractConclusion(root ast.Node, src []byte) (string, bool) {
	for child := root.FirstChild(); child != nil; child = child.NextSibling() {
		list, ok := child.(*extast.FootnoteList)
		if !ok {
			continue
		}
		for note := list.FirstChild(); note != nil; note = note.NextSibling() {
			f, ok := note.(*extast.Footnote)
			if !ok || string(f.Ref) != summaryLabel {
				continue
			}
			para, ok := f.FirstChild().(*ast.Paragraph)
			if !ok {
				continue
			}
			conclusion := blockText(para, src)
			list.RemoveChild(list, f)
			if list.ChildCount() == 0 {
				root.RemoveChild(root, list)
			}
			return conclusion, true
		}
	}
	return "", false
}
