package synth

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/api/docs/v1"

	"github.com/campaignkit/docweave/internal/ulid"
	"github.com/campaignkit/docweave/pkg/markup"
)

const (
	// DefaultBatchLimit is the queued-command threshold that forces a
	// flush. Sized against the remote request-size limit.
	DefaultBatchLimit = 30
	// DefaultRequestsPerMinute paces batch sends against the remote
	// write quota.
	DefaultRequestsPerMinute = 50
	// DefaultRetryDelay is waited before the single retry of a failed
	// batch and before the single re-fetch of an unlocatable table.
	DefaultRetryDelay = 2 * time.Second

	bulletPreset    = "BULLET_DISC_CIRCLE_SQUARE"
	charStyleFields = "bold,italic,underline"
)

// Options configures a Synthesizer. Zero values fall back to defaults;
// the rate parameters are configuration on purpose and should be sized
// from the target API's documented quota.
type Options struct {
	BatchLimit        int
	RequestsPerMinute int
	RetryDelay        time.Duration
	Logger            *zap.Logger
}

// Synthesizer renders content operations into a remote document through
// a Backend. A single Synthesizer may be reused, but renders of the same
// document must never run concurrently: each render predicts offsets
// from a cursor that any interleaved writer would silently invalidate.
// Renders of different documents may run in parallel freely.
type Synthesizer struct {
	backend    Backend
	batchLimit int
	limiter    *rate.Limiter
	retryDelay time.Duration
	logger     *zap.Logger
}

func New(backend Backend, opts Options) *Synthesizer {
	if opts.BatchLimit <= 0 {
		opts.BatchLimit = DefaultBatchLimit
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Synthesizer{
		backend:    backend,
		batchLimit: opts.BatchLimit,
		limiter:    rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60), 1),
		retryDelay: opts.RetryDelay,
		logger:     opts.Logger,
	}
}

// state is the per-render synthesis state. It is created inside
// Synthesize, seeded from one ground-truth fetch, and discarded after
// the final flush; it is never persisted or shared.
type state struct {
	groundTruthEnd   int64
	cursor           int64
	pending          []*docs.Request
	atParagraphStart bool
}

func (st *state) resync(doc *docs.Document) {
	st.groundTruthEnd = endIndex(doc)
	st.cursor = st.groundTruthEnd
}

// Synthesize appends the given operations to the end of the remote
// document, in order. On failure the error is terminal for this render;
// batches flushed before the failure remain applied.
func (s *Synthesizer) Synthesize(ctx context.Context, ops []markup.ContentOp) error {
	logger := s.logger.With(zap.String("renderId", ulid.GenerateID()))

	doc, err := s.fetch(ctx)
	if err != nil {
		return err
	}
	st := &state{atParagraphStart: true}
	st.resync(doc)

	logger.Debug("render started", zap.Int("ops", len(ops)), zap.Int64("end", st.groundTruthEnd))

	for _, op := range ops {
		switch op := op.(type) {
		case markup.TextOp:
			err = s.emitText(ctx, logger, st, markup.Run{Content: op.Content, Styles: op.Styles}, op.Heading, false)
		case markup.ListOp:
			err = s.emitList(ctx, logger, st, op)
		case markup.TableOp:
			err = s.emitTable(ctx, logger, st, op)
		default:
			err = errors.Errorf("unknown content op %T", op)
		}
		if err != nil {
			return err
		}
	}

	if err := s.flush(ctx, logger, st); err != nil {
		return err
	}
	logger.Debug("render finished", zap.Int64("end", st.groundTruthEnd))
	return nil
}

func (s *Synthesizer) emitText(ctx context.Context, logger *zap.Logger, st *state, run markup.Run, heading, bullet bool) error {
	if run.Content == "" {
		return nil
	}

	start := st.cursor
	st.pending = append(st.pending, insertTextRequest(start, run.Content))
	st.cursor += utf16Len(run.Content)
	end := st.cursor

	switch {
	case heading:
		st.pending = append(st.pending, paragraphStyleRequest(start, end, "HEADING_1"))
	case st.atParagraphStart:
		// Reset paragraph style only at a paragraph boundary. A reset
		// mid-paragraph would restyle text belonging to the previous run.
		st.pending = append(st.pending, paragraphStyleRequest(start, end, "NORMAL_TEXT"))
	}

	// Reset character styling to a known baseline first, so the inserted
	// text never inherits styling from its neighbors, then lay the spans
	// on top.
	st.pending = append(st.pending, charResetRequest(start, end))
	for _, span := range run.Styles {
		if span.End <= span.Start {
			continue
		}
		st.pending = append(st.pending, charStyleRequest(
			start+utf16Offset(run.Content, span.Start),
			start+utf16Offset(run.Content, span.End),
			span.Kind,
		))
	}

	if bullet {
		// Exclude the block's trailing newline so the paragraph after
		// the list does not get bulleted.
		bulletEnd := end
		if strings.HasSuffix(run.Content, "\n") {
			bulletEnd--
		}
		st.pending = append(st.pending, &docs.Request{
			CreateParagraphBullets: &docs.CreateParagraphBulletsRequest{
				Range:        docRange(start, bulletEnd),
				BulletPreset: bulletPreset,
			},
		})
	}

	st.atParagraphStart = strings.HasSuffix(run.Content, "\n")

	if len(st.pending) >= s.batchLimit {
		return s.flush(ctx, logger, st)
	}
	return nil
}

// emitList flattens the items into one block separated by newlines, with
// each item's spans shifted by its position in the block, and renders it
// as a single text insert with one bullet command spanning the block.
func (s *Synthesizer) emitList(ctx context.Context, logger *zap.Logger, st *state, op markup.ListOp) error {
	if len(op.Items) == 0 {
		return nil
	}
	if !st.atParagraphStart {
		if err := s.emitText(ctx, logger, st, markup.Run{Content: "\n"}, false, false); err != nil {
			return err
		}
	}

	var sb strings.Builder
	var styles []markup.StyleSpan
	offset := 0
	for _, item := range op.Items {
		for _, span := range item.Styles {
			styles = append(styles, markup.StyleSpan{
				Start: span.Start + offset,
				End:   span.End + offset,
				Kind:  span.Kind,
			})
		}
		sb.WriteString(item.Content)
		sb.WriteString("\n")
		offset += utf8.RuneCountInString(item.Content) + 1
	}

	return s.emitText(ctx, logger, st, markup.Run{Content: sb.String(), Styles: styles}, false, true)
}

// emitTable is the one structural operation: its result cannot be derived
// from the command alone, so the queue is flushed first, the shell is
// inserted synchronously, and the created table is found again in a fresh
// fetch before its cells are filled in reverse order.
func (s *Synthesizer) emitTable(ctx context.Context, logger *zap.Logger, st *state, op markup.TableOp) error {
	if op.Rows == 0 || op.Columns == 0 {
		return nil
	}
	if !st.atParagraphStart {
		if err := s.emitText(ctx, logger, st, markup.Run{Content: "\n"}, false, false); err != nil {
			return err
		}
	}

	// Every queued insertion shifts the table's position; the server must
	// be caught up before the structural insert.
	if err := s.flush(ctx, logger, st); err != nil {
		return err
	}

	insert := &docs.Request{
		InsertTable: &docs.InsertTableRequest{
			Location: &docs.Location{Index: st.cursor},
			Rows:     int64(op.Rows),
			Columns:  int64(op.Columns),
		},
	}
	if err := s.send(ctx, logger, []*docs.Request{insert}); err != nil {
		return err
	}

	// The insert does not report the new table's internal addressing, so
	// the cell offsets have to come from a fresh fetch.
	doc, err := s.fetch(ctx)
	if err != nil {
		return err
	}

	tbl, ok := locateFreshTable(doc)
	if !ok {
		logger.Warn("inserted table not visible yet, retrying fetch")
		if err := s.sleep(ctx); err != nil {
			return err
		}
		if doc, err = s.fetch(ctx); err != nil {
			return err
		}
		tbl, ok = locateFreshTable(doc)
	}

	if ok {
		if reqs := cellFillRequests(tbl, op); len(reqs) > 0 {
			if err := s.send(ctx, logger, reqs); err != nil {
				return err
			}
		}
	} else {
		// Best-effort degrade: an empty table shell is better than
		// failing the whole document.
		logger.Warn("could not locate inserted table, leaving it unpopulated",
			zap.Int("rows", op.Rows), zap.Int("columns", op.Columns))
	}

	// Ground-truth resync; everything after the table keys off this.
	if doc, err = s.fetch(ctx); err != nil {
		return err
	}
	st.resync(doc)
	st.atParagraphStart = true
	return nil
}

// cellFillRequests builds the insert and style commands for every
// non-empty cell, in reverse row and reverse column order so that no
// insertion shifts the offset of a cell still to be filled.
func cellFillRequests(tbl *docs.Table, op markup.TableOp) []*docs.Request {
	var reqs []*docs.Request
	for r := op.Rows - 1; r >= 0; r-- {
		if r >= len(tbl.TableRows) {
			continue
		}
		row := tbl.TableRows[r]
		for c := op.Columns - 1; c >= 0; c-- {
			if c >= len(row.TableCells) {
				continue
			}
			cell := op.Cells[r][c]
			if cell.Content == "" {
				continue
			}
			at, ok := cellInsertIndex(row.TableCells[c])
			if !ok {
				continue
			}
			cellEnd := at + utf16Len(cell.Content)
			reqs = append(reqs, insertTextRequest(at, cell.Content), charResetRequest(at, cellEnd))
			for _, span := range cell.Styles {
				if span.End <= span.Start {
					continue
				}
				reqs = append(reqs, charStyleRequest(
					at+utf16Offset(cell.Content, span.Start),
					at+utf16Offset(cell.Content, span.End),
					span.Kind,
				))
			}
		}
	}
	return reqs
}

// flush sends the queue as one batch and resynchronizes the cursor from
// a fresh fetch. The refetch is unconditional: style-only commands shift
// nothing, but catching any drift immediately is what keeps offset bugs
// from compounding silently.
func (s *Synthesizer) flush(ctx context.Context, logger *zap.Logger, st *state) error {
	if len(st.pending) == 0 {
		return nil
	}
	reqs := st.pending
	st.pending = nil

	if err := s.send(ctx, logger, reqs); err != nil {
		return err
	}

	doc, err := s.fetch(ctx)
	if err != nil {
		return err
	}
	actual := endIndex(doc)
	if actual != st.cursor {
		return errors.WithStack(&ResyncInconsistencyError{Predicted: st.cursor, Actual: actual})
	}
	st.groundTruthEnd = actual
	st.cursor = actual
	return nil
}

func (s *Synthesizer) send(ctx context.Context, logger *zap.Logger, reqs []*docs.Request) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return errors.WithStack(err)
	}
	err := s.backend.BatchUpdate(ctx, reqs)
	if err == nil {
		return nil
	}
	logger.Warn("batch update failed, retrying once", zap.Int("requests", len(reqs)), zap.Error(err))
	if err := s.sleep(ctx); err != nil {
		return err
	}
	if retryErr := s.backend.BatchUpdate(ctx, reqs); retryErr != nil {
		return errors.WithStack(&RemoteMutationError{Err: multierr.Append(err, retryErr)})
	}
	return nil
}

func (s *Synthesizer) fetch(ctx context.Context) (*docs.Document, error) {
	doc, err := s.backend.Fetch(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch document")
	}
	return doc, nil
}

func (s *Synthesizer) sleep(ctx context.Context) error {
	t := time.NewTimer(s.retryDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
}

func insertTextRequest(at int64, text string) *docs.Request {
	return &docs.Request{
		InsertText: &docs.InsertTextRequest{
			Location: &docs.Location{Index: at},
			Text:     text,
		},
	}
}

func paragraphStyleRequest(start, end int64, namedStyle string) *docs.Request {
	return &docs.Request{
		UpdateParagraphStyle: &docs.UpdateParagraphStyleRequest{
			Range:          docRange(start, end),
			ParagraphStyle: &docs.ParagraphStyle{NamedStyleType: namedStyle},
			Fields:         "namedStyleType",
		},
	}
}

func charResetRequest(start, end int64) *docs.Request {
	return &docs.Request{
		UpdateTextStyle: &docs.UpdateTextStyleRequest{
			Range: docRange(start, end),
			TextStyle: &docs.TextStyle{
				ForceSendFields: []string{"Bold", "Italic", "Underline"},
			},
			Fields: charStyleFields,
		},
	}
}

func charStyleRequest(start, end int64, kind markup.StyleKind) *docs.Request {
	style := &docs.TextStyle{}
	var field string
	switch kind {
	case markup.StyleBold:
		style.Bold = true
		field = "bold"
	case markup.StyleItalic:
		style.Italic = true
		field = "italic"
	case markup.StyleUnderline:
		style.Underline = true
		field = "underline"
	}
	return &docs.Request{
		UpdateTextStyle: &docs.UpdateTextStyleRequest{
			Range:     docRange(start, end),
			TextStyle: style,
			Fields:    field,
		},
	}
}

func docRange(start, end int64) *docs.Range {
	return &docs.Range{StartIndex: start, EndIndex: end}
}
