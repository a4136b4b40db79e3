package markup

import (
	stdhtml "html"
	"strings"

	"golang.org/x/net/html"
)

// Normalize converts a constrained markup string into an ordered sequence
// of content operations. It never fails: unsupported tags are stripped,
// unmatched tags degrade to literal text, and unclosed style tags leave
// the style on for the remainder of the run.
//
// Entities are decoded before any structural split so that a payload that
// was HTML-escaped at a layer above (e.g. "&lt;table&gt;...") is still
// recognized structurally.
func Normalize(markup string) []ContentOp {
	decoded := stdhtml.UnescapeString(markup)
	p := &parser{z: html.NewTokenizer(strings.NewReader(decoded))}
	return p.parse()
}

type parser struct {
	z   *html.Tokenizer
	ops []ContentOp
}

func (p *parser) parse() []ContentOp {
	b := newInlineBuilder()
	for {
		tt := p.z.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.TextToken:
			b.writeText(string(p.z.Text()))
		case html.StartTagToken, html.SelfClosingTagToken:
			name := p.tagName()
			switch name {
			case "table":
				b = p.flushText(b)
				p.parseTable()
			case "ul":
				b = p.flushText(b)
				p.parseList()
			default:
				inlineToken(b, tt, name)
			}
		case html.EndTagToken:
			name := p.tagName()
			// Stray row or item closers outside their structure still act
			// as block boundaries.
			if name == "tr" || name == "li" {
				b.newline()
				continue
			}
			inlineToken(b, tt, name)
		}
	}
	p.flushText(b)
	return p.ops
}

func (p *parser) tagName() string {
	name, _ := p.z.TagName()
	return string(name)
}

func (p *parser) flushText(b *inlineBuilder) *inlineBuilder {
	if r := b.finish(); r.Content != "" {
		p.ops = append(p.ops, TextOp{Content: r.Content, Styles: r.Styles})
	}
	return newInlineBuilder()
}

// inlineToken handles the tags shared by text blocks, list items, and
// table cells: the five supported style tags, <br>, and the block-level
// closers that normalize to a newline. Anything else is stripped.
func inlineToken(b *inlineBuilder, tt html.TokenType, name string) {
	if tt == html.EndTagToken {
		switch name {
		case "b", "strong":
			b.setStyle(StyleBold, false)
		case "i", "em":
			b.setStyle(StyleItalic, false)
		case "u":
			b.setStyle(StyleUnderline, false)
		case "p", "div", "blockquote":
			b.newline()
		}
		return
	}
	switch name {
	case "b", "strong":
		b.setStyle(StyleBold, true)
	case "i", "em":
		b.setStyle(StyleItalic, true)
	case "u":
		b.setStyle(StyleUnderline, true)
	case "br":
		b.newline()
	}
}

// parseTable consumes tokens until </table> (or end of input, for an
// unclosed table) and emits a single TableOp. Tables never nest in this
// model, so no depth tracking is needed.
func (p *parser) parseTable() {
	var (
		rows  [][]Run
		row   []Run
		cell  *inlineBuilder
		inRow bool
	)

	closeCell := func() {
		if cell != nil {
			row = append(row, cell.finish())
			cell = nil
		}
	}
	closeRow := func() {
		closeCell()
		if inRow {
			rows = append(rows, row)
			row = nil
			inRow = false
		}
	}

loop:
	for {
		tt := p.z.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.TextToken:
			if cell != nil {
				cell.writeText(string(p.z.Text()))
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			switch name := p.tagName(); name {
			case "tr":
				closeRow()
				inRow = true
			case "td", "th":
				closeCell()
				if inRow {
					cell = newInlineBuilder()
				}
			default:
				if cell != nil {
					inlineToken(cell, tt, name)
				}
			}
		case html.EndTagToken:
			switch name := p.tagName(); name {
			case "td", "th":
				closeCell()
			case "tr":
				closeRow()
			case "table":
				break loop
			default:
				if cell != nil {
					inlineToken(cell, tt, name)
				}
			}
		}
	}
	closeRow()

	if len(rows) == 0 {
		return
	}

	columns := 0
	for _, r := range rows {
		if len(r) > columns {
			columns = len(r)
		}
	}
	if columns == 0 {
		return
	}
	for i, r := range rows {
		for len(r) < columns {
			r = append(r, Run{})
		}
		rows[i] = r
	}

	p.ops = append(p.ops, TableOp{Rows: len(rows), Columns: columns, Cells: rows})
}

// parseList consumes tokens until </ul> and emits a ListOp with one run
// per <li>. A nested <ul> is not supported and its closer terminates the
// outer list; its items degrade into the current item's text.
func (p *parser) parseList() {
	var (
		items []Run
		item  *inlineBuilder
	)

	closeItem := func() {
		if item != nil {
			items = append(items, item.finish())
			item = nil
		}
	}

loop:
	for {
		tt := p.z.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.TextToken:
			if item != nil {
				item.writeText(string(p.z.Text()))
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			switch name := p.tagName(); name {
			case "li":
				closeItem()
				item = newInlineBuilder()
			case "ul":
				// ignored; see above
			default:
				if item != nil {
					inlineToken(item, tt, name)
				}
			}
		case html.EndTagToken:
			switch name := p.tagName(); name {
			case "li":
				closeItem()
			case "ul":
				break loop
			default:
				if item != nil {
					inlineToken(item, tt, name)
				}
			}
		}
	}
	closeItem()

	var kept []Run
	for _, it := range items {
		if it.Content != "" {
			kept = append(kept, it)
		}
	}
	if len(kept) > 0 {
		p.ops = append(p.ops, ListOp{Items: kept})
	}
}
