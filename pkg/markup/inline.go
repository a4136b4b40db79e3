package markup

// inlineBuilder accumulates the text of a single run while tracking the
// active style state. Whitespace is collapsed lazily: spaces and literal
// line breaks become a single pending space, block-tag sentinels become
// pending newlines (at most two in a row), and nothing pending is written
// until the next visible character arrives. Trailing whitespace therefore
// never needs a second pass.
type inlineBuilder struct {
	runes []rune
	spans []StyleSpan

	active [3]bool
	open   [3]int // index into spans of the extendable span per kind, -1 if closed

	pendingSpace    bool
	pendingNewlines int
}

func newInlineBuilder() *inlineBuilder {
	return &inlineBuilder{open: [3]int{-1, -1, -1}}
}

func (b *inlineBuilder) writeText(s string) {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
			// Leading whitespace and whitespace after a newline sentinel
			// are dropped, everything else collapses to one space.
			if len(b.runes) > 0 && b.pendingNewlines == 0 {
				b.pendingSpace = true
			}
		default:
			b.flushPending()
			b.writeRune(r, true)
		}
	}
}

// newline records a block-boundary sentinel. Consecutive sentinels are
// capped at two newlines, which collapses duplicate blank lines.
func (b *inlineBuilder) newline() {
	if len(b.runes) == 0 {
		return
	}
	b.pendingSpace = false
	if b.pendingNewlines < 2 {
		b.pendingNewlines++
	}
}

// setStyle toggles a style. Pending whitespace is flushed first so that it
// is styled according to the state it was seen in, not the new one.
func (b *inlineBuilder) setStyle(kind StyleKind, on bool) {
	if b.active[kind] == on {
		return
	}
	b.flushPending()
	b.active[kind] = on
	b.open[kind] = -1
}

func (b *inlineBuilder) flushPending() {
	if b.pendingNewlines > 0 {
		for i := 0; i < b.pendingNewlines; i++ {
			b.writeRune('\n', false)
		}
		b.pendingNewlines = 0
		b.pendingSpace = false
		// Spans do not cross paragraph boundaries.
		for k := range b.open {
			b.open[k] = -1
		}
		return
	}
	if b.pendingSpace {
		b.writeRune(' ', true)
		b.pendingSpace = false
	}
}

func (b *inlineBuilder) writeRune(r rune, styled bool) {
	idx := len(b.runes)
	b.runes = append(b.runes, r)
	if !styled {
		return
	}
	for k := range b.active {
		if !b.active[k] {
			continue
		}
		if i := b.open[k]; i >= 0 && b.spans[i].End == idx {
			b.spans[i].End = idx + 1
		} else {
			b.spans = append(b.spans, StyleSpan{Start: idx, End: idx + 1, Kind: StyleKind(k)})
			b.open[k] = len(b.spans) - 1
		}
	}
}

// finish trims trailing whitespace, clamps spans to the final length, and
// returns the accumulated run. The builder must not be reused afterwards.
func (b *inlineBuilder) finish() Run {
	b.pendingSpace = false
	b.pendingNewlines = 0

	n := len(b.runes)
	for n > 0 {
		switch b.runes[n-1] {
		case ' ', '\t', '\n', '\r':
			n--
		default:
			goto trimmed
		}
	}
trimmed:
	b.runes = b.runes[:n]

	var spans []StyleSpan
	for _, s := range b.spans {
		if s.Start >= n {
			continue
		}
		if s.End > n {
			s.End = n
		}
		spans = append(spans, s)
	}

	return Run{Content: string(b.runes), Styles: spans}
}
