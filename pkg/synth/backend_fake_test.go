package synth

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/api/docs/v1"
)

// fakeBackend simulates the remote document contract: a single linear
// UTF-16 code-unit stream covering paragraphs and table cells, batches
// applied in array order, and structural inserts that report nothing
// about the created cells.
//
// The document is a list of blocks. A paragraph block stores its text
// without the implicit trailing newline (embedded newlines are allowed
// and count as one unit, which keeps the index arithmetic identical to a
// real paragraph split). Index assignment per block:
//
//	paragraph: [start, start+len16(text)+1)
//	table:     1 unit for the table, then per row 1 unit, then per cell
//	           1 unit plus the cell's paragraph
type fakeBackend struct {
	blocks []*fakeBlock

	batches  [][]*docs.Request
	styleLog []styleCall

	// failures remaining for BatchUpdate; each attempt consumes one.
	failBatches int
	// failFrom makes every BatchUpdate attempt from this ordinal
	// (1-based) onward fail, for partial-failure scenarios.
	failFrom int
	attempts int
	// fetches during which trailing empty tables stay invisible,
	// simulating eventual-consistency lag after a structural insert.
	lagFetches int
	// driftEvery injects one extra hidden character after every Nth
	// batch, simulating silent server-side drift.
	driftEvery int
}

type fakeBlock struct {
	table bool
	text  string
	cells [][]string
}

type styleCall struct {
	kind   string
	start  int64
	end    int64
	fields string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{blocks: []*fakeBlock{{}}}
}

func (f *fakeBackend) Fetch(_ context.Context) (*docs.Document, error) {
	blocks := f.blocks
	if f.lagFetches > 0 {
		f.lagFetches--
		blocks = withoutEmptyTables(blocks)
	}

	var content []*docs.StructuralElement
	pos := int64(1)
	for _, b := range blocks {
		start := pos
		if !b.table {
			end := start + len16(b.text) + 1
			content = append(content, &docs.StructuralElement{
				StartIndex: start,
				EndIndex:   end,
				Paragraph:  fakeParagraph(start, end, b.text),
			})
			pos = end
			continue
		}

		pos++ // table marker
		var rows []*docs.TableRow
		columns := 0
		for _, rowCells := range b.cells {
			pos++ // row marker
			rowStart := pos
			var cells []*docs.TableCell
			for _, cellText := range rowCells {
				cellStart := pos
				pos++ // cell marker
				parStart := pos
				parEnd := parStart + len16(cellText) + 1
				pos = parEnd
				cells = append(cells, &docs.TableCell{
					StartIndex: cellStart,
					EndIndex:   pos,
					Content: []*docs.StructuralElement{{
						StartIndex: parStart,
						EndIndex:   parEnd,
						Paragraph:  fakeParagraph(parStart, parEnd, cellText),
					}},
				})
			}
			if len(cells) > columns {
				columns = len(cells)
			}
			rows = append(rows, &docs.TableRow{StartIndex: rowStart, EndIndex: pos, TableCells: cells})
		}
		content = append(content, &docs.StructuralElement{
			StartIndex: start,
			EndIndex:   pos,
			Table: &docs.Table{
				Rows:      int64(len(b.cells)),
				Columns:   int64(columns),
				TableRows: rows,
			},
		})
	}

	return &docs.Document{Body: &docs.Body{Content: content}}, nil
}

func (f *fakeBackend) BatchUpdate(_ context.Context, requests []*docs.Request) error {
	f.attempts++
	if f.failFrom > 0 && f.attempts >= f.failFrom {
		return errors.New("backend unavailable")
	}
	if f.failBatches > 0 {
		f.failBatches--
		return errors.New("backend unavailable")
	}
	for _, req := range requests {
		if err := f.apply(req); err != nil {
			return err
		}
	}
	f.batches = append(f.batches, requests)
	if f.driftEvery > 0 && len(f.batches)%f.driftEvery == 0 {
		f.blocks[len(f.blocks)-1].text += "!"
	}
	return nil
}

func (f *fakeBackend) apply(req *docs.Request) error {
	switch {
	case req.InsertText != nil:
		return f.insertAt(req.InsertText.Location.Index, req.InsertText.Text)
	case req.InsertTable != nil:
		rows := make([][]string, req.InsertTable.Rows)
		for i := range rows {
			rows[i] = make([]string, req.InsertTable.Columns)
		}
		// A structural insert always leaves a paragraph after the table.
		f.blocks = append(f.blocks, &fakeBlock{table: true, cells: rows}, &fakeBlock{})
		return nil
	case req.UpdateTextStyle != nil:
		r := req.UpdateTextStyle.Range
		f.styleLog = append(f.styleLog, styleCall{"textStyle", r.StartIndex, r.EndIndex, req.UpdateTextStyle.Fields})
		return nil
	case req.UpdateParagraphStyle != nil:
		r := req.UpdateParagraphStyle.Range
		f.styleLog = append(f.styleLog, styleCall{"paragraphStyle", r.StartIndex, r.EndIndex, req.UpdateParagraphStyle.ParagraphStyle.NamedStyleType})
		return nil
	case req.CreateParagraphBullets != nil:
		r := req.CreateParagraphBullets.Range
		f.styleLog = append(f.styleLog, styleCall{"bullets", r.StartIndex, r.EndIndex, req.CreateParagraphBullets.BulletPreset})
		return nil
	}
	return errors.Errorf("fake backend: unsupported request %+v", req)
}

func (f *fakeBackend) insertAt(idx int64, text string) error {
	pos := int64(1)
	for _, b := range f.blocks {
		start := pos
		if !b.table {
			end := start + len16(b.text)
			if idx >= start && idx <= end {
				b.text = splice16(b.text, idx-start, text)
				return nil
			}
			pos = end + 1
			continue
		}

		pos++
		for r, rowCells := range b.cells {
			pos++
			for c, cellText := range rowCells {
				pos++ // cell marker
				parStart := pos
				parEnd := parStart + len16(cellText)
				if idx >= parStart && idx <= parEnd {
					b.cells[r][c] = splice16(cellText, idx-parStart, text)
					return nil
				}
				pos = parEnd + 1
			}
		}
	}
	return errors.Errorf("fake backend: insert index %d out of range", idx)
}

// text returns the concatenated paragraph text, table contents excluded.
func (f *fakeBackend) text() string {
	var sb strings.Builder
	for _, b := range f.blocks {
		if !b.table {
			sb.WriteString(b.text)
		}
	}
	return sb.String()
}

func (f *fakeBackend) tables() [][][]string {
	var out [][][]string
	for _, b := range f.blocks {
		if b.table {
			out = append(out, b.cells)
		}
	}
	return out
}

func (f *fakeBackend) styleCalls(kind string) []styleCall {
	var out []styleCall
	for _, c := range f.styleLog {
		if c.kind == kind {
			out = append(out, c)
		}
	}
	return out
}

func withoutEmptyTables(blocks []*fakeBlock) []*fakeBlock {
	var out []*fakeBlock
	for _, b := range blocks {
		if b.table && cellsEmpty(b.cells) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func cellsEmpty(cells [][]string) bool {
	for _, row := range cells {
		for _, c := range row {
			if c != "" {
				return false
			}
		}
	}
	return true
}

func fakeParagraph(start, end int64, text string) *docs.Paragraph {
	return &docs.Paragraph{
		Elements: []*docs.ParagraphElement{{
			StartIndex: start,
			EndIndex:   end,
			TextRun:    &docs.TextRun{Content: text + "\n"},
		}},
	}
}

func len16(s string) int64 {
	return utf16Len(s)
}

// splice16 inserts ins at the given code-unit offset.
func splice16(s string, off int64, ins string) string {
	var units int64
	for i, r := range s {
		if units == off {
			return s[:i] + ins + s[i:]
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
	}
	if units == off {
		return s + ins
	}
	panic(fmt.Sprintf("splice offset %d does not fall on a code point boundary of %q", off, s))
}
