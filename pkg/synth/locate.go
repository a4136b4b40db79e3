package synth

import (
	"strings"

	"google.golang.org/api/docs/v1"
)

// locateFreshTable scans the document's top-level blocks from the end
// backward and returns the last table that is structurally empty, i.e.
// whose every cell contains no text once stripped. A structural insert
// does not report where its content lives, so this heuristic is how a
// just-created table is told apart from its siblings: any pre-existing
// table already carries text, while a fresh one cannot.
//
// The heuristic is deliberately isolated here so the matching strategy
// can be strengthened (e.g. with a correlation id, should the API ever
// grow one) without touching the synthesis loop.
func locateFreshTable(doc *docs.Document) (*docs.Table, bool) {
	if doc.Body == nil {
		return nil, false
	}
	content := doc.Body.Content
	for i := len(content) - 1; i >= 0; i-- {
		t := content[i].Table
		if t == nil {
			continue
		}
		if tableIsEmpty(t) {
			return t, true
		}
	}
	return nil, false
}

func tableIsEmpty(t *docs.Table) bool {
	for _, row := range t.TableRows {
		for _, cell := range row.TableCells {
			if strings.TrimSpace(cellText(cell)) != "" {
				return false
			}
		}
	}
	return true
}

func cellText(cell *docs.TableCell) string {
	var sb strings.Builder
	for _, el := range cell.Content {
		if el.Paragraph == nil {
			continue
		}
		for _, pe := range el.Paragraph.Elements {
			if pe.TextRun != nil {
				sb.WriteString(pe.TextRun.Content)
			}
		}
	}
	return sb.String()
}

// cellInsertIndex returns the offset at which text is inserted into a
// cell: the start of the cell's first paragraph, before its trailing
// newline.
func cellInsertIndex(cell *docs.TableCell) (int64, bool) {
	for _, el := range cell.Content {
		if el.Paragraph != nil {
			return el.StartIndex, true
		}
	}
	return 0, false
}
