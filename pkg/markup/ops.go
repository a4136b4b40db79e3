package markup

// StyleKind identifies an inline character style.
type StyleKind int

const (
	StyleBold StyleKind = iota
	StyleItalic
	StyleUnderline
)

func (k StyleKind) String() string {
	switch k {
	case StyleBold:
		return "bold"
	case StyleItalic:
		return "italic"
	case StyleUnderline:
		return "underline"
	}
	return "unknown"
}

// StyleSpan is a half-open [Start, End) range of code points within the
// owning payload's content. Spans of the same kind never overlap.
type StyleSpan struct {
	Start int       `json:"start"`
	End   int       `json:"end"`
	Kind  StyleKind `json:"kind"`
}

// Run is a plain text payload with its style spans. It is the unit shared
// by text blocks, list items, and table cells.
type Run struct {
	Content string      `json:"content"`
	Styles  []StyleSpan `json:"styles,omitempty"`
}

// ContentOp is one ordered unit of content to synthesize. Concatenated in
// order, the ops reconstruct the reading order of the source markup.
type ContentOp interface {
	isContentOp()
}

// TextOp is a contiguous run of text. Heading marks the run as a level-1
// heading; headings never originate from constrained markup but may be
// produced by the markdown front-end or the export layer.
type TextOp struct {
	Content string      `json:"content"`
	Styles  []StyleSpan `json:"styles,omitempty"`
	Heading bool        `json:"heading,omitempty"`
}

// ListOp is an unordered list rendered as one logical block.
type ListOp struct {
	Items []Run `json:"items"`
}

// TableOp is a rectangular grid. Cells may be empty; ragged source rows
// are padded to the widest row.
type TableOp struct {
	Rows    int     `json:"rows"`
	Columns int     `json:"columns"`
	Cells   [][]Run `json:"cells"`
}

func (TextOp) isContentOp()  {}
func (ListOp) isContentOp()  {}
func (TableOp) isContentOp() {}
