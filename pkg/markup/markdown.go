package markup

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var markdownParser = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)

// FromMarkdown converts a Markdown document into the same content
// operation model that Normalize produces from constrained markup. It is
// used for upstream generators that emit Markdown instead of tag markup.
//
// Emphasis maps to italic, strong emphasis to bold, headings become
// heading text runs; underline has no Markdown form. Unordered and
// ordered lists alike flatten to ListOp, pipe tables to TableOp. Any
// other block renders as its plain inner text.
func FromMarkdown(src []byte) []ContentOp {
	root := markdownParser.Parser().Parse(text.NewReader(src))

	var ops []ContentOp
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Heading:
			if r := inlineRun(n, src); r.Content != "" {
				ops = append(ops, TextOp{Content: r.Content + "\n", Styles: r.Styles, Heading: true})
			}
		case *ast.List:
			var items []Run
			for li := n.FirstChild(); li != nil; li = li.NextSibling() {
				if r := inlineRun(li, src); r.Content != "" {
					items = append(items, r)
				}
			}
			if len(items) > 0 {
				ops = append(ops, ListOp{Items: items})
			}
		case *east.Table:
			if op, ok := tableFromAST(n, src); ok {
				ops = append(ops, op)
			}
		case *ast.ThematicBreak:
			// no paragraph content
		default:
			if r := inlineRun(n, src); r.Content != "" {
				ops = append(ops, TextOp{Content: r.Content + "\n", Styles: r.Styles})
			}
		}
	}
	return ops
}

func tableFromAST(tbl *east.Table, src []byte) (TableOp, bool) {
	var rows [][]Run
	columns := 0
	for r := tbl.FirstChild(); r != nil; r = r.NextSibling() {
		switch r.(type) {
		case *east.TableHeader, *east.TableRow:
		default:
			continue
		}
		var row []Run
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			row = append(row, inlineRun(c, src))
		}
		if len(row) > columns {
			columns = len(row)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 || columns == 0 {
		return TableOp{}, false
	}
	for i, row := range rows {
		for len(row) < columns {
			row = append(row, Run{})
		}
		rows[i] = row
	}
	return TableOp{Rows: len(rows), Columns: columns, Cells: rows}, true
}

// inlineRun renders a node's inline content through the shared inline
// builder, which also takes care of whitespace collapsing and span
// bookkeeping.
func inlineRun(n ast.Node, src []byte) Run {
	b := newInlineBuilder()
	walkInline(b, n, src)
	return b.finish()
}

func walkInline(b *inlineBuilder, n ast.Node, src []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			b.writeText(string(c.Segment.Value(src)))
			if c.HardLineBreak() {
				b.newline()
			} else if c.SoftLineBreak() {
				b.writeText(" ")
			}
		case *ast.String:
			b.writeText(string(c.Value))
		case *ast.Emphasis:
			kind := StyleItalic
			if c.Level >= 2 {
				kind = StyleBold
			}
			prev := b.active[kind]
			b.setStyle(kind, true)
			walkInline(b, c, src)
			b.setStyle(kind, prev)
		case *ast.Paragraph, *ast.TextBlock:
			walkInline(b, c, src)
			b.newline()
		default:
			walkInline(b, c, src)
		}
	}
}
