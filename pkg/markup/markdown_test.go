package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMarkdown_HeadingAndParagraph(t *testing.T) {
	ops := FromMarkdown([]byte("# Launch plan\n\nShips **next** week.\n"))

	require.Len(t, ops, 2)

	heading := ops[0].(TextOp)
	assert.True(t, heading.Heading)
	assert.Equal(t, "Launch plan\n", heading.Content)

	body := ops[1].(TextOp)
	assert.False(t, body.Heading)
	assert.Equal(t, "Ships next week.\n", body.Content)
	assert.Equal(t, []StyleSpan{{Start: 6, End: 10, Kind: StyleBold}}, body.Styles)
}

func TestFromMarkdown_EmphasisLevels(t *testing.T) {
	ops := FromMarkdown([]byte("*italic* and **bold** and ***both***\n"))

	require.Len(t, ops, 1)
	text := ops[0].(TextOp)
	assert.Equal(t, "italic and bold and both\n", text.Content)
	assert.ElementsMatch(t, []StyleSpan{
		{Start: 0, End: 6, Kind: StyleItalic},
		{Start: 11, End: 15, Kind: StyleBold},
		{Start: 20, End: 24, Kind: StyleBold},
		{Start: 20, End: 24, Kind: StyleItalic},
	}, text.Styles)
}

func TestFromMarkdown_ListFlattening(t *testing.T) {
	ops := FromMarkdown([]byte("- first\n- **second** item\n- third\n"))

	require.Len(t, ops, 1)
	list := ops[0].(ListOp)
	require.Len(t, list.Items, 3)
	assert.Equal(t, "first", list.Items[0].Content)
	assert.Equal(t, "second item", list.Items[1].Content)
	assert.Equal(t, []StyleSpan{{Start: 0, End: 6, Kind: StyleBold}}, list.Items[1].Styles)
	assert.Equal(t, "third", list.Items[2].Content)
}

func TestFromMarkdown_PipeTable(t *testing.T) {
	src := []byte(`| Plan | Price |
| ---- | ----- |
| Basic | 9 |
| Pro | 29 |
`)
	ops := FromMarkdown(src)

	require.Len(t, ops, 1)
	table := ops[0].(TableOp)
	assert.Equal(t, 3, table.Rows)
	assert.Equal(t, 2, table.Columns)
	assert.Equal(t, "Plan", table.Cells[0][0].Content)
	assert.Equal(t, "Price", table.Cells[0][1].Content)
	assert.Equal(t, "Pro", table.Cells[2][0].Content)
	assert.Equal(t, "29", table.Cells[2][1].Content)
}

func TestFromMarkdown_SoftBreaksJoinLines(t *testing.T) {
	ops := FromMarkdown([]byte("one\ntwo\nthree\n"))

	require.Len(t, ops, 1)
	assert.Equal(t, "one two three\n", ops[0].(TextOp).Content)
}

func TestFromMarkdown_Empty(t *testing.T) {
	assert.Empty(t, FromMarkdown(nil))
	assert.Empty(t, FromMarkdown([]byte("\n\n")))
}
